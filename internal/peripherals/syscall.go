package peripherals

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUseDefault is returned by Call when name does not match the
// `<kind>.<instance>.<op>` grammar at all -- the caller should fall through
// to whatever other request handling exists, exactly as
// original_source/platform.rs's dispatch closure returns UseDefault when the
// name does not split into exactly three dotted segments.
var ErrUseDefault = errors.New("peripherals: not a syscall name")

// Call dispatches one guest syscall (spec §4.2). It never panics: every
// failure -- bad grammar aside -- comes back as a plain error whose message
// is meant to be shown to the guest program (spec §7: "every syscall
// returns either a value or a string error; no panic surface reaches the
// guest").
func (b *Broker) Call(name string, args []any) (any, error) {
	segs := strings.SplitN(name, ".", 3)
	if len(segs) != 3 {
		return nil, ErrUseDefault
	}
	kind, instance, op := segs[0], segs[1], segs[2]

	switch kind {
	case "DigitalIn":
		dev, ok := b.handles.DigitalIns[instance]
		if !ok {
			return nil, unknownErr(kind, instance)
		}
		if op != "get" {
			return nil, unknownOpErr(kind, instance, op)
		}
		if err := arity(args, 0, kind, instance, op); err != nil {
			return nil, err
		}
		return dev.Get(), nil

	case "DigitalOut":
		dev, ok := b.handles.DigitalOuts[instance]
		if !ok {
			return nil, unknownErr(kind, instance)
		}
		if op != "set" {
			return nil, unknownOpErr(kind, instance, op)
		}
		v, err := parseArgs1Bool(args, kind, instance, op)
		if err != nil {
			return nil, err
		}
		dev.Set(v)
		return nil, nil

	case "Motor":
		dev, ok := b.handles.Motors[instance]
		if !ok {
			// A motor group is also addressable under the Motor kind.
			if _, isGroup := b.handles.MotorGroups[instance]; isGroup {
				return b.Call("MotorGroup."+instance+"."+op, args)
			}
			return nil, unknownErr(kind, instance)
		}
		if op != "setPower" {
			return nil, unknownOpErr(kind, instance, op)
		}
		p, err := parseArgs1I32(args, kind, instance, op)
		if err != nil {
			return nil, err
		}
		dev.SetPower(p)
		return nil, nil

	case "MotorGroup":
		dev, ok := b.handles.MotorGroups[instance]
		if !ok {
			return nil, unknownErr(kind, instance)
		}
		if op != "setPower" {
			return nil, unknownOpErr(kind, instance, op)
		}
		if err := arity(args, dev.Len(), kind, instance, op); err != nil {
			return nil, err
		}
		powers := make([]int32, len(args))
		for i := range args {
			v, err := argI32(args, i, kind, instance, op)
			if err != nil {
				return nil, err
			}
			powers[i] = v
		}
		dev.SetPower(powers)
		return nil, nil

	case "HCSR04":
		dev, ok := b.handles.HCSR04s[instance]
		if !ok {
			return nil, unknownErr(kind, instance)
		}
		if op != "getDistance" {
			return nil, unknownOpErr(kind, instance, op)
		}
		if err := arity(args, 0, kind, instance, op); err != nil {
			return nil, err
		}
		return dev.GetDistance(), nil

	case "Temperature":
		dev, ok := b.handles.Temperature[instance]
		if !ok {
			return nil, unknownErr(kind, instance)
		}
		if op != "getTemperature" {
			return nil, unknownOpErr(kind, instance, op)
		}
		if err := arity(args, 0, kind, instance, op); err != nil {
			return nil, err
		}
		return dev.GetTemperature()

	case "AmbientLight":
		dev, ok := b.handles.AmbientLight[instance]
		if !ok {
			return nil, unknownErr(kind, instance)
		}
		if op != "getLight" {
			return nil, unknownOpErr(kind, instance, op)
		}
		if err := arity(args, 0, kind, instance, op); err != nil {
			return nil, err
		}
		return dev.GetLight()

	case "Barometer":
		dev, ok := b.handles.Barometer[instance]
		if !ok {
			return nil, unknownErr(kind, instance)
		}
		if op != "getPressure" {
			return nil, unknownOpErr(kind, instance, op)
		}
		if err := arity(args, 0, kind, instance, op); err != nil {
			return nil, err
		}
		return dev.GetPressure()

	case "Accelerometer":
		dev, ok := b.handles.Accelerometer[instance]
		if !ok {
			return nil, unknownErr(kind, instance)
		}
		if op != "getAcceleration" {
			return nil, unknownOpErr(kind, instance, op)
		}
		if err := arity(args, 0, kind, instance, op); err != nil {
			return nil, err
		}
		x, y, z, err := dev.GetAcceleration()
		if err != nil {
			return nil, err
		}
		return [3]float64{x, y, z}, nil

	case "RGBMatrix":
		dev, ok := b.handles.RGBMatrix[instance]
		if !ok {
			return nil, unknownErr(kind, instance)
		}
		if op != "setPixel" {
			return nil, unknownOpErr(kind, instance, op)
		}
		if err := arity(args, 3, kind, instance, op); err != nil {
			return nil, err
		}
		x, err := argU8(args, 0, kind, instance, op)
		if err != nil {
			return nil, err
		}
		y, err := argU8(args, 1, kind, instance, op)
		if err != nil {
			return nil, err
		}
		brightness, err := argU8(args, 2, kind, instance, op)
		if err != nil {
			return nil, err
		}
		if err := dev.SetPixel(int(x), int(y), brightness); err != nil {
			return nil, err
		}
		return nil, dev.Show()

	default:
		return nil, unknownErr(kind, instance)
	}
}

func unknownErr(kind, instance string) error {
	return fmt.Errorf("unknown %s peripheral: %q", kind, instance)
}

func unknownOpErr(kind, instance, op string) error {
	return fmt.Errorf("unknown %s operation: %q", kind, op)
}

// arity reports "expected N args, got M" (spec §4.2) when len(args) != want.
func arity(args []any, want int, kind, instance, op string) error {
	if len(args) != want {
		return fmt.Errorf("expected %d args, got %d", want, len(args))
	}
	return nil
}

func parseArgs1Bool(args []any, kind, instance, op string) (bool, error) {
	if err := arity(args, 1, kind, instance, op); err != nil {
		return false, err
	}
	return argBool(args, 0, kind, instance, op)
}

func parseArgs1I32(args []any, kind, instance, op string) (int32, error) {
	if err := arity(args, 1, kind, instance, op); err != nil {
		return 0, err
	}
	return argI32(args, 0, kind, instance, op)
}

func argBool(args []any, i int, kind, instance, op string) (bool, error) {
	v, ok := args[i].(bool)
	if !ok {
		return false, fmt.Errorf("%s.%s.%s expected a bool for arg %d, but got %v", kind, instance, op, i, args[i])
	}
	return v, nil
}

// argI32 accepts any finite numeric scalar and truncates to int32, the
// `number` argument kind spec §4.2 describes.
func argI32(args []any, i int, kind, instance, op string) (int32, error) {
	f, ok := asFloat(args[i])
	if !ok {
		return 0, fmt.Errorf("%s.%s.%s expected a number for arg %d, but got %v", kind, instance, op, i, args[i])
	}
	return int32(f), nil
}

// argU8 is the `u8` coercion: a number that must be an integer in [0, 255].
func argU8(args []any, i int, kind, instance, op string) (uint8, error) {
	f, ok := asFloat(args[i])
	if !ok || f != float64(int64(f)) || f < 0 || f > 255 {
		return 0, fmt.Errorf("%s.%s.%s expected a u8 for arg %d, but got %v", kind, instance, op, i, args[i])
	}
	return uint8(f), nil
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
