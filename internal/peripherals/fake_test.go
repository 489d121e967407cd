package peripherals

import (
	"time"
)

// fakeGPIOPin is an in-memory GPIOPin/EchoPin for tests.
type fakeGPIOPin struct {
	number int
	level  bool
	edges  chan bool // scripted level transitions for EchoPin tests
}

func (p *fakeGPIOPin) ConfigureInput() error  { return nil }
func (p *fakeGPIOPin) ConfigureOutput() error { return nil }
func (p *fakeGPIOPin) High()                  { p.level = true }
func (p *fakeGPIOPin) Low()                   { p.level = false }
func (p *fakeGPIOPin) Get() bool              { return p.level }

func (p *fakeGPIOPin) WaitForEdge(level bool, timeout time.Duration) bool {
	deadline := time.After(timeout)
	for {
		select {
		case v := <-p.edges:
			p.level = v
			if v == level {
				return true
			}
		case <-deadline:
			return false
		}
	}
}

// fakePWMChannel records every Set call in order, for testable property #2
// (zero-other-leg-first ordering).
type fakePWMChannel struct {
	maxDuty uint32
	sets    *[]uint32
}

func (c *fakePWMChannel) MaxDuty() uint32 { return c.maxDuty }
func (c *fakePWMChannel) Set(duty uint32) { *c.sets = append(*c.sets, duty) }

type fakeI2CBus struct{}

func (fakeI2CBus) Tx(addr uint16, w, r []byte) error {
	// Acknowledge status reads with "calibrated, not busy" so Configure()
	// calls in tests complete without real hardware.
	if len(r) > 0 {
		r[0] = 0x08
	}
	return nil
}

// fakePinProvider is a PinProvider over an in-memory pin/channel pool.
type fakePinProvider struct {
	pins     map[int]*fakeGPIOPin
	channels map[int]*fakePWMChannel
	sets     []uint32
}

func newFakePinProvider() *fakePinProvider {
	return &fakePinProvider{
		pins:     map[int]*fakeGPIOPin{},
		channels: map[int]*fakePWMChannel{},
	}
}

func (f *fakePinProvider) GPIOPin(number int) (GPIOPin, error) {
	p := &fakeGPIOPin{number: number, edges: make(chan bool, 4)}
	f.pins[number] = p
	return p, nil
}

func (f *fakePinProvider) EchoPin(number int) (EchoPin, error) {
	p := &fakeGPIOPin{number: number, edges: make(chan bool, 4)}
	f.pins[number] = p
	return p, nil
}

func (f *fakePinProvider) PWMChannel(number int) (PWMChannel, error) {
	c := &fakePWMChannel{maxDuty: 1000, sets: &f.sets}
	f.channels[number] = c
	return c, nil
}

func (f *fakePinProvider) I2CBus(sda, scl int) (I2CBus, error) {
	return fakeI2CBus{}, nil
}
