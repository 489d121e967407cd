package peripherals

import (
	"testing"
	"time"
)

// Testable property #1: ledger exclusivity.
func TestLedgerExclusivity(t *testing.T) {
	pins := newFakePinProvider()
	layout := Layout{
		DigitalOuts: []DigitalIOSpec{
			{Name: "a", GPIO: 4},
			{Name: "b", GPIO: 4}, // same pin as "a"
		},
	}
	broker, _, errs := Bind(layout, pins)
	if len(errs) != 1 {
		t.Fatalf("expected exactly one InitError, got %v", errs)
	}
	if errs[0].Code.Error() != "pin_already_taken" {
		t.Fatalf("expected pin_already_taken, got %v", errs[0])
	}
	if len(broker.handles.DigitalOuts) != 1 {
		t.Fatalf("expected exactly one bound DigitalOut, got %d", len(broker.handles.DigitalOuts))
	}
}

// Testable property #2: motor duty mapping and leg-zeroing order.
func TestMotorDutyMapping(t *testing.T) {
	pins := newFakePinProvider()
	layout := Layout{Motors: []MotorSpec{{Name: "L", GPIOPositive: 4, GPIONegative: 5}}}
	broker, _, errs := Bind(layout, pins)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if _, err := broker.Call("Motor.L.setPower", []any{128.0}); err != nil {
		t.Fatalf("Call: %v", err)
	}
	// maxDuty is 1000 in the fake; 128/255*1000 = 501 (integer division).
	wantDuty := uint32(128) * 1000 / 255
	if len(pins.sets) < 2 {
		t.Fatalf("expected at least 2 PWM Set calls, got %d", len(pins.sets))
	}
	neg := pins.sets[len(pins.sets)-2]
	pos := pins.sets[len(pins.sets)-1]
	if neg != 0 {
		t.Fatalf("negative leg should be zeroed before setting positive, got %d", neg)
	}
	if pos != wantDuty {
		t.Fatalf("positive duty = %d, want %d", pos, wantDuty)
	}

	if _, err := broker.Call("Motor.L.setPower", []any{-64.0}); err != nil {
		t.Fatalf("Call: %v", err)
	}
	wantDuty = uint32(64) * 1000 / 255
	pos = pins.sets[len(pins.sets)-2]
	neg = pins.sets[len(pins.sets)-1]
	if pos != 0 {
		t.Fatalf("positive leg should be zeroed before setting negative, got %d", pos)
	}
	if neg != wantDuty {
		t.Fatalf("negative duty = %d, want %d", neg, wantDuty)
	}
}

// Testable property #4: negation.
func TestNegation(t *testing.T) {
	pins := newFakePinProvider()
	layout := Layout{
		DigitalIns:  []DigitalIOSpec{{Name: "btn", GPIO: 10, Negated: true}},
		DigitalOuts: []DigitalIOSpec{{Name: "led", GPIO: 11, Negated: true}},
	}
	broker, _, errs := Bind(layout, pins)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	pins.pins[10].level = false
	v, err := broker.Call("DigitalIn.btn.get", nil)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if v != true {
		t.Fatalf("DigitalIn.get with negated=true and pin low = %v, want true", v)
	}

	if _, err := broker.Call("DigitalOut.led.set", []any{true}); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if pins.pins[11].level != false {
		t.Fatalf("DigitalOut.set(true) with negated=true should drive Low")
	}
}

// E2: empty layout.
func TestEmptyLayout(t *testing.T) {
	broker, menu, errs := Bind(Layout{}, newFakePinProvider())
	if len(menu) != 0 || len(errs) != 0 {
		t.Fatalf("expected empty menu and errors, got menu=%v errs=%v", menu, errs)
	}
	_, err := broker.Call("DigitalIn.x.get", nil)
	if err == nil || err.Error() != `unknown DigitalIn peripheral: "x"` {
		t.Fatalf("Call error = %v, want unknown DigitalIn peripheral message", err)
	}
}

// E3: motor group setPower applies per-member duty, arity mismatch errors.
func TestMotorGroupSetPower(t *testing.T) {
	pins := newFakePinProvider()
	layout := Layout{
		Motors: []MotorSpec{
			{Name: "L", GPIOPositive: 4, GPIONegative: 5},
			{Name: "R", GPIOPositive: 6, GPIONegative: 7},
		},
		MotorGroups: []MotorGroupSpec{{Name: "drive", Members: []string{"L", "R"}}},
	}
	broker, _, errs := Bind(layout, pins)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if _, err := broker.Call("Motor.drive.setPower", []any{128.0}); err == nil {
		t.Fatalf("expected arity error")
	} else if err.Error() != "expected 2 args, got 1" {
		t.Fatalf("arity error = %q, want %q", err.Error(), "expected 2 args, got 1")
	}

	if _, err := broker.Call("Motor.drive.setPower", []any{128.0, -64.0}); err != nil {
		t.Fatalf("Call: %v", err)
	}
	wantL := uint32(128) * 1000 / 255
	wantR := uint32(64) * 1000 / 255
	n := len(pins.sets)
	if n < 4 {
		t.Fatalf("expected at least 4 PWM Set calls, got %d", n)
	}
	// L: neg=0 then pos=wantL; R: pos=0 then neg=wantR.
	if pins.sets[n-4] != 0 || pins.sets[n-3] != wantL {
		t.Fatalf("L leg sets = %v, want [0 %d]", pins.sets[n-4:n-2], wantL)
	}
	if pins.sets[n-2] != 0 || pins.sets[n-1] != wantR {
		t.Fatalf("R leg sets = %v, want [0 %d]", pins.sets[n-2:n], wantR)
	}
}

// Testable property #3: HCSR04 semantics.
func TestHCSR04Distance(t *testing.T) {
	pins := newFakePinProvider()
	layout := Layout{HCSR04s: []HCSR04Spec{{Name: "front", GPIOTrigger: 2, GPIOEcho: 3}}}
	broker, _, errs := Bind(layout, pins)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	echo := pins.pins[3]
	hc := broker.handles.HCSR04s["front"]

	const pulseUs = 500
	go func() {
		time.Sleep(2 * time.Millisecond)
		echo.edges <- true
		time.Sleep(pulseUs * time.Microsecond)
		echo.edges <- false
	}()
	dist := hc.GetDistance()
	want := float64(pulseUs) * distanceFactor
	if diff := dist - want; diff < -0.5 || diff > 0.5 {
		t.Fatalf("GetDistance = %v, want ~%v", dist, want)
	}
}

// Testable property #3: timeout case returns 0.
func TestHCSR04Timeout(t *testing.T) {
	pins := newFakePinProvider()
	layout := Layout{HCSR04s: []HCSR04Spec{{Name: "front", GPIOTrigger: 2, GPIOEcho: 3}}}
	broker, _, errs := Bind(layout, pins)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	hc := broker.handles.HCSR04s["front"]
	if dist := hc.GetDistance(); dist != 0 {
		t.Fatalf("GetDistance on timeout = %v, want 0", dist)
	}
}
