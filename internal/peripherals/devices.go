package peripherals

import (
	"time"

	"github.com/jangala-dev/nb-esp32-firmware/internal/x/mathx"
)

// DigitalIn reads a single GPIO, inverted by negated. Grounded on
// original_source/platform.rs's DigitalInController.
type DigitalIn struct {
	pin     GPIOPin
	negated bool
}

func NewDigitalIn(pin GPIOPin, negated bool) *DigitalIn { return &DigitalIn{pin: pin, negated: negated} }

// Get returns pin level XOR negated (spec §4.2).
func (d *DigitalIn) Get() bool { return d.pin.Get() != d.negated }

// DigitalOut drives a single GPIO, inverted by negated.
type DigitalOut struct {
	pin          GPIOPin
	negated      bool
	currentLevel bool
}

func NewDigitalOut(pin GPIOPin, negated bool) *DigitalOut {
	return &DigitalOut{pin: pin, negated: negated}
}

// Set drives the pin High iff value XOR negated (spec §4.2).
func (d *DigitalOut) Set(value bool) {
	level := value != d.negated
	if level {
		d.pin.High()
	} else {
		d.pin.Low()
	}
	d.currentLevel = level
}

func (d *DigitalOut) Current() bool { return d.currentLevel }

// Motor drives an H-bridge from a pair of PWM channels. Grounded on
// original_source/platform.rs's MotorController::set_power: clamp, compute
// duty from the configured max, zero the inactive leg before driving the
// active one so both legs are never energized together.
type Motor struct {
	positive PWMChannel
	negative PWMChannel
}

func NewMotor(positive, negative PWMChannel) *Motor {
	return &Motor{positive: positive, negative: negative}
}

const motorMaxInput = 255

// SetPower clamps p to [-255, 255], maps |p| to a duty cycle against the
// positive channel's max duty, and drives exactly one leg (spec §4.2,
// testable property #2).
func (m *Motor) SetPower(p int32) {
	p = mathx.Clamp(p, -motorMaxInput, motorMaxInput)
	maxDuty := m.positive.MaxDuty()
	duty := uint32(abs32(p)) * maxDuty / motorMaxInput
	if p >= 0 {
		m.negative.Set(0)
		m.positive.Set(duty)
	} else {
		m.positive.Set(0)
		m.negative.Set(duty)
	}
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

// MotorGroup applies one power value per member, in declaration order (spec
// §3/§4.2).
type MotorGroup struct {
	members []*Motor
}

func NewMotorGroup(members []*Motor) *MotorGroup { return &MotorGroup{members: members} }

func (g *MotorGroup) Len() int { return len(g.members) }

func (g *MotorGroup) SetPower(powers []int32) {
	for i, m := range g.members {
		if i >= len(powers) {
			return
		}
		m.SetPower(powers[i])
	}
}

// HCSR04 measures distance via a trigger/echo ultrasonic pulse. Grounded on
// original_source/platform.rs's HCSR04Controller::get_distance and
// measure_pulse.
type HCSR04 struct {
	trigger GPIOPin
	echo    EchoPin
	sleep   func(time.Duration)
}

func NewHCSR04(trigger GPIOPin, echo EchoPin) *HCSR04 {
	return &HCSR04{trigger: trigger, echo: echo, sleep: time.Sleep}
}

const (
	hcsr04TriggerHold = 10 * time.Microsecond
	hcsr04Timeout     = 50 * time.Millisecond
	// distanceFactor is half the speed of sound at sea level, in cm per µs.
	distanceFactor = 0.01715
)

// GetDistance drives the trigger pulse, measures the echo pulse width, and
// returns distance in centimeters, or 0 on timeout (spec §4.2, testable
// property #3).
func (h *HCSR04) GetDistance() float64 {
	h.trigger.High()
	h.sleep(hcsr04TriggerHold)
	h.trigger.Low()

	pulse := measurePulse(h.echo, hcsr04Timeout)
	if pulse == 0 {
		return 0
	}
	return float64(pulse.Microseconds()) * distanceFactor
}

// measurePulse waits for echo to rise then fall, both bounded by the same
// overall timeout, and returns the pulse width (0 on timeout).
func measurePulse(echo EchoPin, timeout time.Duration) time.Duration {
	deadline := time.Now().Add(timeout)
	if !echo.WaitForEdge(true, time.Until(deadline)) {
		return 0
	}
	start := time.Now()
	if !echo.WaitForEdge(false, time.Until(deadline)) {
		return 0
	}
	return time.Since(start)
}
