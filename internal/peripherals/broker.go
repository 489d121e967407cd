package peripherals

import (
	"fmt"

	"github.com/jangala-dev/nb-esp32-firmware/internal/errcode"
)

// Handles holds the constructed device instances by kind and name,
// grounded on original_source/platform.rs's PeripheralHandles.
type Handles struct {
	DigitalIns  map[string]*DigitalIn
	DigitalOuts map[string]*DigitalOut
	Motors      map[string]*Motor
	MotorGroups map[string]*MotorGroup
	HCSR04s     map[string]*HCSR04

	Temperature   map[string]*TemperatureSensor
	AmbientLight  map[string]*AmbientLightSensor
	Barometer     map[string]*BarometerSensor
	Accelerometer map[string]*AccelerometerSensor
	RGBMatrix     map[string]*RGBMatrixSensor
}

func newHandles() *Handles {
	return &Handles{
		DigitalIns:    map[string]*DigitalIn{},
		DigitalOuts:   map[string]*DigitalOut{},
		Motors:        map[string]*Motor{},
		MotorGroups:   map[string]*MotorGroup{},
		HCSR04s:       map[string]*HCSR04{},
		Temperature:   map[string]*TemperatureSensor{},
		AmbientLight:  map[string]*AmbientLightSensor{},
		Barometer:     map[string]*BarometerSensor{},
		Accelerometer: map[string]*AccelerometerSensor{},
		RGBMatrix:     map[string]*RGBMatrixSensor{},
	}
}

// MenuEntry names the user-facing operation labels exposed under one
// non-empty kind, used to render the guest-facing syscall menu (spec §4.2).
type MenuEntry struct {
	Kind string
	Ops  []string
}

// Broker owns the bound peripherals and answers syscalls. It is the single
// owner the scheduler's VM task talks to (spec §9: "a single owner behind a
// channel... This linearizes all hardware access").
type Broker struct {
	handles *Handles
}

// Bind materializes a Layout against a PinProvider. It never returns an
// error itself -- partial success is the supported outcome (spec §4.2) --
// instead it returns the constructed Broker, a Menu, and the InitErrors
// collected along the way.
func Bind(layout Layout, pins PinProvider) (*Broker, []MenuEntry, []InitError) {
	ledger := NewResourceLedger()
	handles := newHandles()
	var errs []InitError
	names := map[string]bool{}

	claimName := func(kind, name string) bool {
		if names[name] {
			errs = append(errs, InitError{Kind: kind, Name: name, Code: errcode.NameAlreadyTaken, Message: "name already taken"})
			return false
		}
		names[name] = true
		return true
	}

	var sharedI2C *SharedI2C
	if layout.I2C != nil {
		if err := ledger.ClaimI2C(); err != nil {
			errs = append(errs, newInitError("i2c", "bus", err))
		} else if err := ledger.ClaimPin(layout.I2C.GPIOSDA); err != nil {
			errs = append(errs, newInitError("i2c", "sda", err))
		} else if err := ledger.ClaimPin(layout.I2C.GPIOSCL); err != nil {
			errs = append(errs, newInitError("i2c", "scl", err))
		} else if bus, err := pins.I2CBus(layout.I2C.GPIOSDA, layout.I2C.GPIOSCL); err != nil {
			errs = append(errs, newInitError("i2c", "bus", err))
		} else {
			sharedI2C = NewSharedI2C(bus)
		}
	}

	for _, spec := range layout.DigitalIns {
		if !claimName("DigitalIn", spec.Name) {
			continue
		}
		pin, err := claimGPIOInput(ledger, pins, spec.GPIO)
		if err != nil {
			errs = append(errs, newInitError("DigitalIn", spec.Name, err))
			continue
		}
		handles.DigitalIns[spec.Name] = NewDigitalIn(pin, spec.Negated)
	}

	for _, spec := range layout.DigitalOuts {
		if !claimName("DigitalOut", spec.Name) {
			continue
		}
		pin, err := claimGPIOOutput(ledger, pins, spec.GPIO)
		if err != nil {
			errs = append(errs, newInitError("DigitalOut", spec.Name, err))
			continue
		}
		handles.DigitalOuts[spec.Name] = NewDigitalOut(pin, spec.Negated)
	}

	for _, spec := range layout.Motors {
		if !claimName("Motor", spec.Name) {
			continue
		}
		pos, neg, err := claimMotorPins(ledger, pins, spec.GPIOPositive, spec.GPIONegative)
		if err != nil {
			errs = append(errs, newInitError("Motor", spec.Name, err))
			continue
		}
		handles.Motors[spec.Name] = NewMotor(pos, neg)
	}

	for _, spec := range layout.MotorGroups {
		if !claimName("MotorGroup", spec.Name) {
			continue
		}
		members := make([]*Motor, 0, len(spec.Members))
		ok := true
		for _, m := range spec.Members {
			mot, found := handles.Motors[m]
			if !found {
				errs = append(errs, InitError{Kind: "MotorGroup", Name: spec.Name, Code: errcode.NameUnknown, Message: fmt.Sprintf("unknown motor %q", m)})
				ok = false
				break
			}
			members = append(members, mot)
		}
		if ok {
			handles.MotorGroups[spec.Name] = NewMotorGroup(members)
		}
	}

	for _, spec := range layout.HCSR04s {
		if !claimName("HCSR04", spec.Name) {
			continue
		}
		trigger, echo, err := claimHCSR04Pins(ledger, pins, spec.GPIOTrigger, spec.GPIOEcho)
		if err != nil {
			errs = append(errs, newInitError("HCSR04", spec.Name, err))
			continue
		}
		handles.HCSR04s[spec.Name] = NewHCSR04(trigger, echo)
	}

	bindI2CSensors(layout, sharedI2C, handles, names, claimName, &errs)

	menu := buildMenu(handles)
	return &Broker{handles: handles}, menu, errs
}

func claimGPIOInput(ledger *ResourceLedger, pins PinProvider, number int) (GPIOPin, error) {
	if err := ledger.ClaimPin(number); err != nil {
		return nil, err
	}
	pin, err := pins.GPIOPin(number)
	if err != nil {
		return nil, &errcode.E{C: errcode.PinInsufficientCapability, Err: err, Msg: err.Error()}
	}
	if err := pin.ConfigureInput(); err != nil {
		return nil, &errcode.E{C: errcode.DriverProbe, Err: err, Msg: err.Error()}
	}
	return pin, nil
}

func claimGPIOOutput(ledger *ResourceLedger, pins PinProvider, number int) (GPIOPin, error) {
	if err := ledger.ClaimPin(number); err != nil {
		return nil, err
	}
	pin, err := pins.GPIOPin(number)
	if err != nil {
		return nil, &errcode.E{C: errcode.PinInsufficientCapability, Err: err, Msg: err.Error()}
	}
	if err := pin.ConfigureOutput(); err != nil {
		return nil, &errcode.E{C: errcode.DriverProbe, Err: err, Msg: err.Error()}
	}
	return pin, nil
}

func claimMotorPins(ledger *ResourceLedger, pins PinProvider, posPin, negPin int) (PWMChannel, PWMChannel, error) {
	if err := ledger.ClaimPin(posPin); err != nil {
		return nil, nil, err
	}
	if err := ledger.ClaimPin(negPin); err != nil {
		return nil, nil, err
	}
	posCh, err := ledger.ClaimPWMChannel()
	if err != nil {
		return nil, nil, err
	}
	negCh, err := ledger.ClaimPWMChannel()
	if err != nil {
		return nil, nil, err
	}
	pos, err := pins.PWMChannel(posCh)
	if err != nil {
		return nil, nil, &errcode.E{C: errcode.DriverProbe, Err: err, Msg: err.Error()}
	}
	neg, err := pins.PWMChannel(negCh)
	if err != nil {
		return nil, nil, &errcode.E{C: errcode.DriverProbe, Err: err, Msg: err.Error()}
	}
	return pos, neg, nil
}

func claimHCSR04Pins(ledger *ResourceLedger, pins PinProvider, triggerPin, echoPin int) (GPIOPin, EchoPin, error) {
	if err := ledger.ClaimPin(triggerPin); err != nil {
		return nil, nil, err
	}
	if err := ledger.ClaimPin(echoPin); err != nil {
		return nil, nil, err
	}
	trigger, err := pins.GPIOPin(triggerPin)
	if err != nil {
		return nil, nil, &errcode.E{C: errcode.PinInsufficientCapability, Err: err, Msg: err.Error()}
	}
	if err := trigger.ConfigureOutput(); err != nil {
		return nil, nil, &errcode.E{C: errcode.DriverProbe, Err: err, Msg: err.Error()}
	}
	echo, err := pins.EchoPin(echoPin)
	if err != nil {
		return nil, nil, &errcode.E{C: errcode.PinInsufficientCapability, Err: err, Msg: err.Error()}
	}
	if err := echo.ConfigureInput(); err != nil {
		return nil, nil, &errcode.E{C: errcode.DriverProbe, Err: err, Msg: err.Error()}
	}
	return trigger, echo, nil
}

func bindI2CSensors(layout Layout, bus *SharedI2C, handles *Handles, names map[string]bool, claimName func(string, string) bool, errs *[]InitError) {
	type sensorSpec struct {
		kind string
		list []I2CSensorSpec
		add  func(name string, s *SharedI2C, addr uint16) error
	}
	specs := []sensorSpec{
		{"Temperature", layout.Temperature, func(name string, s *SharedI2C, addr uint16) error {
			dev, err := NewTemperatureSensor(s, addr)
			if err != nil {
				return err
			}
			handles.Temperature[name] = dev
			return nil
		}},
		{"AmbientLight", layout.AmbientLight, func(name string, s *SharedI2C, addr uint16) error {
			dev, err := NewAmbientLightSensor(s, addr)
			if err != nil {
				return err
			}
			handles.AmbientLight[name] = dev
			return nil
		}},
		{"Barometer", layout.Barometer, func(name string, s *SharedI2C, addr uint16) error {
			dev, err := NewBarometerSensor(s, addr)
			if err != nil {
				return err
			}
			handles.Barometer[name] = dev
			return nil
		}},
		{"Accelerometer", layout.Accelerometer, func(name string, s *SharedI2C, addr uint16) error {
			dev, err := NewAccelerometerSensor(s, addr)
			if err != nil {
				return err
			}
			handles.Accelerometer[name] = dev
			return nil
		}},
		{"RGBMatrix", layout.RGBMatrix, func(name string, s *SharedI2C, addr uint16) error {
			dev, err := NewRGBMatrixSensor(s, addr)
			if err != nil {
				return err
			}
			handles.RGBMatrix[name] = dev
			return nil
		}},
	}

	for _, sp := range specs {
		for _, spec := range sp.list {
			if !claimName(sp.kind, spec.Name) {
				continue
			}
			if bus == nil {
				*errs = append(*errs, InitError{Kind: sp.kind, Name: spec.Name, Code: errcode.I2cNotConfigured, Message: "no i2c bus configured"})
				continue
			}
			if err := sp.add(spec.Name, bus, spec.Address); err != nil {
				*errs = append(*errs, newInitError(sp.kind, spec.Name, err))
			}
		}
	}
}

func buildMenu(h *Handles) []MenuEntry {
	var menu []MenuEntry
	addIfNonEmpty := func(kind string, n int, ops ...string) {
		if n > 0 {
			menu = append(menu, MenuEntry{Kind: kind, Ops: ops})
		}
	}
	addIfNonEmpty("DigitalIn", len(h.DigitalIns), "get")
	addIfNonEmpty("DigitalOut", len(h.DigitalOuts), "set")
	addIfNonEmpty("Motor", len(h.Motors), "setPower")
	addIfNonEmpty("MotorGroup", len(h.MotorGroups), "setPower")
	addIfNonEmpty("HCSR04", len(h.HCSR04s), "getDistance")
	addIfNonEmpty("Temperature", len(h.Temperature), "getTemperature")
	addIfNonEmpty("AmbientLight", len(h.AmbientLight), "getLight")
	addIfNonEmpty("Barometer", len(h.Barometer), "getPressure")
	addIfNonEmpty("Accelerometer", len(h.Accelerometer), "getAcceleration")
	addIfNonEmpty("RGBMatrix", len(h.RGBMatrix), "setPixel")
	return menu
}
