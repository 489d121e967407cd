// Package peripherals is the Peripheral Broker (spec §4.2): it parses a
// PeripheralLayout document, claims pins and PWM channels from a
// ResourceLedger, constructs device handles, and exposes a syscall
// Dispatcher. Grounded on the teacher's services/hal/internal/core package
// (ResourceRegistry/GPIOHandle/PWMHandle interfaces, Device/Builder
// registry) and on original_source/platform.rs's GpioManager/PwmManager/
// SharedI2c, which is the literal algorithm this package reproduces.
package peripherals

import "time"

// GPIOPin is the platform-supplied handle to a single digital pin. Owning a
// GPIOPin is exclusive: the ResourceLedger hands one out per pin at most
// once, mirroring original_source/platform.rs's GpioManager.take_convert
// (Option.take() on a BTreeMap entry).
type GPIOPin interface {
	ConfigureInput() error
	ConfigureOutput() error
	High()
	Low()
	Get() bool
}

// EchoPin is a GPIOPin that can additionally block waiting for a level
// transition, the capability HCSR04.getDistance needs to time the echo
// pulse (spec §4.2).
type EchoPin interface {
	GPIOPin
	// WaitForEdge blocks until the pin reads level or timeout elapses. ok is
	// false on timeout.
	WaitForEdge(level bool, timeout time.Duration) (ok bool)
}

// PWMChannel is one of the platform's fixed pool of PWM-capable outputs,
// bound to a specific pin once claimed.
type PWMChannel interface {
	MaxDuty() uint32
	Set(duty uint32)
}

// I2CBus is the common transactional interface every tinygo.org/x/drivers
// sensor package (and this module's own internal/peripherals/i2cdrv
// drivers) is written against.
type I2CBus interface {
	Tx(addr uint16, w, r []byte) error
}

// PinProvider is the platform-level factory the broker claims hardware
// through. A real boot sequence supplies one backed by the MCU's GPIO/PWM
// peripherals; tests supply a fake.
type PinProvider interface {
	GPIOPin(number int) (GPIOPin, error)
	EchoPin(number int) (EchoPin, error)
	PWMChannel(number int) (PWMChannel, error)
	I2CBus(sdaPin, sclPin int) (I2CBus, error)
}
