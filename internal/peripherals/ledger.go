package peripherals

import (
	"fmt"

	"github.com/jangala-dev/nb-esp32-firmware/internal/errcode"
)

// PwmChannelCount is the fixed cardinality of the PWM channel pool (spec §3:
// "fixed cardinality C, typically 8"), grounded on
// original_source/platform.rs's PwmManager, which pushes channel0..7 into a
// VecDeque.
const PwmChannelCount = 8

// pinDomain enumerates every GPIO number the target exposes as a
// general-purpose pin. Grounded on original_source/platform.rs's
// GpioManager::new, which inserts every ESP32 GPIO except the flash/
// strapping pins 22-25. Lives here (not in internal/platform) because
// internal/platform's PinProvider implementations import this package for
// the GPIOPin/PWMChannel/I2CBus interfaces -- the dependency can only run
// one way.
func pinDomain() []int {
	pins := make([]int, 0, 48)
	for n := 0; n <= 21; n++ {
		pins = append(pins, n)
	}
	for n := 26; n <= 48; n++ {
		pins = append(pins, n)
	}
	return pins
}

// ResourceLedger tracks pin and PWM-channel occupancy (spec §3). It never
// holds the electrical handles itself -- those come from a PinProvider --
// it only answers "is this pin/channel free" and hands out claims in FIFO
// order for the PWM pool, mirroring GpioManager/PwmManager.
type ResourceLedger struct {
	pins       map[int]bool // true once taken
	pwmChannels []int       // FIFO queue of free channel numbers
	i2cTaken   bool
}

// NewResourceLedger constructs a ledger over every pin in the platform's pin
// domain, with a full PWM channel pool and no I²C bus claimed yet.
func NewResourceLedger() *ResourceLedger {
	l := &ResourceLedger{pins: make(map[int]bool)}
	for _, p := range pinDomain() {
		l.pins[p] = false
	}
	for i := 0; i < PwmChannelCount; i++ {
		l.pwmChannels = append(l.pwmChannels, i)
	}
	return l
}

// ClaimPin marks pin as taken. It returns PinUnknown if pin is outside the
// platform's domain, PinAlreadyTaken if another peripheral already holds it.
func (l *ResourceLedger) ClaimPin(pin int) error {
	taken, known := l.pins[pin]
	if !known {
		return &errcode.E{C: errcode.PinUnknown, Msg: fmt.Sprintf("pin %d is not in the platform's pin domain", pin)}
	}
	if taken {
		return &errcode.E{C: errcode.PinAlreadyTaken, Msg: fmt.Sprintf("pin %d already taken", pin)}
	}
	l.pins[pin] = true
	return nil
}

// ClaimPWMChannel pops the next free channel number in FIFO order. It
// returns PwmOutOfChannels once the pool is exhausted.
func (l *ResourceLedger) ClaimPWMChannel() (int, error) {
	if len(l.pwmChannels) == 0 {
		return 0, errcode.PwmOutOfChannels
	}
	ch := l.pwmChannels[0]
	l.pwmChannels = l.pwmChannels[1:]
	return ch, nil
}

// ClaimI2C marks the shared I²C bus as configured. Only one bus is modeled
// (spec §3: "a pair of data/clock pin numbers"); device drivers multiplex it
// through a refcounted handle (see SharedI2C), not through repeated ledger
// claims.
func (l *ResourceLedger) ClaimI2C() error {
	if l.i2cTaken {
		return &errcode.E{C: errcode.BusError, Msg: "i2c bus already configured"}
	}
	l.i2cTaken = true
	return nil
}
