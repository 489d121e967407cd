//go:build mcu

package platform

import (
	"time"

	"machine"

	"github.com/jangala-dev/nb-esp32-firmware/internal/errcode"
	"github.com/jangala-dev/nb-esp32-firmware/internal/peripherals"
)

// mcuPin wraps a machine.Pin as a peripherals.GPIOPin/EchoPin. Grounded on
// the teacher's services/hal/internal/provider/rp2_resources.go rp2GPIO,
// generalized from the RP2-specific pin type to the ESP32 target.
type mcuPin struct {
	p machine.Pin
}

func (m mcuPin) ConfigureInput() error {
	m.p.Configure(machine.PinConfig{Mode: machine.PinInput})
	return nil
}

func (m mcuPin) ConfigureOutput() error {
	m.p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	return nil
}

func (m mcuPin) High() { m.p.High() }
func (m mcuPin) Low()  { m.p.Low() }
func (m mcuPin) Get() bool { return m.p.Get() }

// WaitForEdge polls the pin until it reads level or timeout elapses. The
// ESP32 port has no generic edge-interrupt-to-channel bridge in this
// module, so HCSR04's echo timing is measured by polling rather than by the
// interrupt path the RP2 GPIO handle above offers -- acceptable since the
// echo pulse window is tens of microseconds to a few milliseconds, well
// inside a tight poll loop's resolution.
func (m mcuPin) WaitForEdge(level bool, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if m.p.Get() == level {
			return true
		}
	}
	return false
}

// mcuPWM is one logical PWM channel, bound to a pin via the unified tinygo
// machine.PWM interface (Configure/Channel/Set/Top), not the RP2-specific
// per-slice controller the teacher's rp2_resources.go uses -- the ESP32
// LEDC peripheral is addressed by tinygo through that unified surface.
type mcuPWM struct {
	pwm     machine.PWM
	channel uint8
	top     uint32
}

func (p *mcuPWM) MaxDuty() uint32 { return p.top }
func (p *mcuPWM) Set(duty uint32) { p.pwm.Set(p.channel, duty) }

// mcuPins is the boot-time peripherals.PinProvider for an ESP32 target.
// Grounded on factories_rp2xxx.go's DefaultPinFactory/DefaultI2CFactory,
// adapted from the RP2 board's fixed GP numbering to ESP32's GPIO numbering
// and from RP2's PWM0..PWM7 slices to the ESP32's single LEDC-backed
// machine.PWM0.
type mcuPins struct {
	pwm machine.PWM
}

// NewPins configures the onboard PWM controller and returns the PinProvider
// the peripheral broker binds a Layout against.
func NewPins() peripherals.PinProvider {
	return &mcuPins{pwm: machine.PWM0}
}

func (m *mcuPins) GPIOPin(number int) (peripherals.GPIOPin, error) {
	return mcuPin{p: machine.Pin(number)}, nil
}

func (m *mcuPins) EchoPin(number int) (peripherals.EchoPin, error) {
	return mcuPin{p: machine.Pin(number)}, nil
}

func (m *mcuPins) PWMChannel(number int) (peripherals.PWMChannel, error) {
	pin := machine.Pin(number)
	if err := m.pwm.Configure(machine.PWMConfig{}); err != nil {
		return nil, &errcode.E{C: errcode.DriverProbe, Err: err, Msg: err.Error()}
	}
	ch, err := m.pwm.Channel(pin)
	if err != nil {
		return nil, &errcode.E{C: errcode.DriverProbe, Err: err, Msg: err.Error()}
	}
	return &mcuPWM{pwm: m.pwm, channel: ch, top: m.pwm.Top()}, nil
}

func (m *mcuPins) I2CBus(sdaPin, sclPin int) (peripherals.I2CBus, error) {
	bus := machine.I2C0
	err := bus.Configure(machine.I2CConfig{
		Frequency: 400 * machine.KHz,
		SDA:       machine.Pin(sdaPin),
		SCL:       machine.Pin(sclPin),
	})
	if err != nil {
		return nil, &errcode.E{C: errcode.DriverProbe, Err: err, Msg: err.Error()}
	}
	return bus, nil
}
