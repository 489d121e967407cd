//go:build !mcu

package platform

import (
	"sync"
	"time"

	"github.com/jangala-dev/nb-esp32-firmware/internal/peripherals"
)

// hostPin is an in-memory peripherals.GPIOPin/EchoPin, grounded on the
// teacher's services/hal/internal/platform/factories_host.go FakePin: a
// host build has no real electrical pins, so it models just enough state
// (direction, level) for the control plane and scheduler to run end to end
// off-target.
type hostPin struct {
	mu      sync.Mutex
	out     bool
	level   bool
	changed chan struct{}
}

func newHostPin() *hostPin {
	return &hostPin{changed: make(chan struct{}, 1)}
}

func (p *hostPin) ConfigureInput() error {
	p.mu.Lock()
	p.out = false
	p.mu.Unlock()
	return nil
}

func (p *hostPin) ConfigureOutput() error {
	p.mu.Lock()
	p.out = true
	p.mu.Unlock()
	return nil
}

func (p *hostPin) setLevel(v bool) {
	p.mu.Lock()
	p.level = v
	p.mu.Unlock()
	select {
	case p.changed <- struct{}{}:
	default:
	}
}

func (p *hostPin) High() { p.setLevel(true) }
func (p *hostPin) Low()  { p.setLevel(false) }

func (p *hostPin) Get() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level
}

// WaitForEdge polls for a level change, since a host stub has no real
// interrupt source to wait on.
func (p *hostPin) WaitForEdge(level bool, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	if p.Get() == level {
		return true
	}
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false
		}
		select {
		case <-p.changed:
			if p.Get() == level {
				return true
			}
		case <-time.After(remaining):
			return false
		}
	}
}

// hostPWM is an inert PWM channel: it records the last duty set so tests and
// the dev HTTP control plane can observe commands without real hardware.
type hostPWM struct {
	mu   sync.Mutex
	duty uint32
}

func (p *hostPWM) MaxDuty() uint32 { return 1 << 16 }

func (p *hostPWM) Set(duty uint32) {
	p.mu.Lock()
	p.duty = duty
	p.mu.Unlock()
}

// HostI2C is an inert I2C bus: Tx succeeds and zeroes the read buffer,
// matching factories_host.go's HostI2C, which records rather than emulates
// a transaction.
type HostI2C struct {
	mu     sync.Mutex
	LastTx struct {
		Addr uint16
		W    []byte
	}
}

func (h *HostI2C) Tx(addr uint16, w, r []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.LastTx.Addr = addr
	h.LastTx.W = append([]byte(nil), w...)
	for i := range r {
		r[i] = 0
	}
	return nil
}

// HostPins is the dev-build peripherals.PinProvider: enough to boot the
// broker, the scheduler, and the control-plane HTTP server on a laptop
// without an attached ESP32, for local development and the integration
// tests that exercise the full boot sequence.
type HostPins struct {
	mu   sync.Mutex
	pins map[int]*hostPin
	i2c  *HostI2C
}

func NewHostPins() *HostPins {
	return &HostPins{pins: make(map[int]*hostPin), i2c: &HostI2C{}}
}

// NewPins is the !mcu counterpart to pins_mcu.go's NewPins, giving
// cmd/firmware a single constructor name regardless of build target.
func NewPins() peripherals.PinProvider {
	return NewHostPins()
}

func (h *HostPins) pin(number int) *hostPin {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, ok := h.pins[number]
	if !ok {
		p = newHostPin()
		h.pins[number] = p
	}
	return p
}

func (h *HostPins) GPIOPin(number int) (peripherals.GPIOPin, error) {
	return h.pin(number), nil
}

func (h *HostPins) EchoPin(number int) (peripherals.EchoPin, error) {
	return h.pin(number), nil
}

func (h *HostPins) PWMChannel(number int) (peripherals.PWMChannel, error) {
	return &hostPWM{}, nil
}

func (h *HostPins) I2CBus(sdaPin, sclPin int) (peripherals.I2CBus, error) {
	return h.i2c, nil
}
