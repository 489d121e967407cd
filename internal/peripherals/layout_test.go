package peripherals

import "testing"

// E3's literal layout JSON (spec §8), decoded through the real wire path --
// catches tag/shape drift that Layout{} struct literals in broker_test.go
// never exercise.
func TestParseLayoutE3(t *testing.T) {
	raw := []byte(`{"motors":[{"name":"L","gpio_positive":4,"gpio_negative":5},{"name":"R","gpio_positive":6,"gpio_negative":7}],"motor_groups":[{"name":"drive","members":["L","R"]}]}`)
	layout, err := ParseLayout(raw)
	if err != nil {
		t.Fatalf("ParseLayout: %v", err)
	}
	if len(layout.Motors) != 2 {
		t.Fatalf("Motors = %v, want 2 entries", layout.Motors)
	}
	if layout.Motors[0] != (MotorSpec{Name: "L", GPIOPositive: 4, GPIONegative: 5}) {
		t.Fatalf("Motors[0] = %+v", layout.Motors[0])
	}
	if layout.Motors[1] != (MotorSpec{Name: "R", GPIOPositive: 6, GPIONegative: 7}) {
		t.Fatalf("Motors[1] = %+v", layout.Motors[1])
	}
	if len(layout.MotorGroups) != 1 || layout.MotorGroups[0].Name != "drive" {
		t.Fatalf("MotorGroups = %+v", layout.MotorGroups)
	}
	if want := []string{"L", "R"}; len(layout.MotorGroups[0].Members) != 2 ||
		layout.MotorGroups[0].Members[0] != want[0] || layout.MotorGroups[0].Members[1] != want[1] {
		t.Fatalf("MotorGroups[0].Members = %v, want %v", layout.MotorGroups[0].Members, want)
	}

	if _, _, errs := Bind(layout, newFakePinProvider()); len(errs) != 0 {
		t.Fatalf("Bind on the parsed E3 layout: unexpected errors %v", errs)
	}
}

// i2c_addr and the plural sensor-family keys round-trip (spec §6).
func TestParseLayoutI2CSensors(t *testing.T) {
	raw := []byte(`{"i2c":{"gpio_sda":21,"gpio_scl":22},"temperatures":[{"name":"t1","i2c_addr":72}],"ambient_lights":[{"name":"a1","i2c_addr":35}]}`)
	layout, err := ParseLayout(raw)
	if err != nil {
		t.Fatalf("ParseLayout: %v", err)
	}
	if layout.I2C == nil || layout.I2C.GPIOSDA != 21 || layout.I2C.GPIOSCL != 22 {
		t.Fatalf("I2C = %+v", layout.I2C)
	}
	if len(layout.Temperature) != 1 || layout.Temperature[0].Address != 72 {
		t.Fatalf("Temperature = %+v", layout.Temperature)
	}
	if len(layout.AmbientLight) != 1 || layout.AmbientLight[0].Address != 35 {
		t.Fatalf("AmbientLight = %+v", layout.AmbientLight)
	}
}

// Unknown top-level fields are rejected (spec §6: "Unknown fields are rejected").
func TestParseLayoutRejectsUnknownFields(t *testing.T) {
	raw := []byte(`{"bogus":[{"name":"x"}]}`)
	if _, err := ParseLayout(raw); err == nil {
		t.Fatalf("expected an error for an unknown top-level field")
	}
}
