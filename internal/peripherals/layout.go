package peripherals

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Layout is the PeripheralLayout document (spec §3/§6): declarative,
// order-insensitive per kind, unknown fields rejected. Field names match
// spec §6's external JSON shape exactly.
type Layout struct {
	I2C *I2CPins `json:"i2c,omitempty"`

	DigitalIns  []DigitalIOSpec `json:"digital_ins,omitempty"`
	DigitalOuts []DigitalIOSpec `json:"digital_outs,omitempty"`

	Motors      []MotorSpec      `json:"motors,omitempty"`
	MotorGroups []MotorGroupSpec `json:"motor_groups,omitempty"`

	HCSR04s []HCSR04Spec `json:"hcsr04s,omitempty"`

	Temperature   []I2CSensorSpec `json:"temperatures,omitempty"`
	AmbientLight  []I2CSensorSpec `json:"ambient_lights,omitempty"`
	Barometer     []I2CSensorSpec `json:"barometers,omitempty"`
	Accelerometer []I2CSensorSpec `json:"accelerometers,omitempty"`
	RGBMatrix     []I2CSensorSpec `json:"rgb_matrices,omitempty"`
}

type I2CPins struct {
	GPIOSDA int `json:"gpio_sda"`
	GPIOSCL int `json:"gpio_scl"`
}

type DigitalIOSpec struct {
	Name    string `json:"name"`
	GPIO    int    `json:"gpio"`
	Negated bool   `json:"negated"`
}

type MotorSpec struct {
	Name         string `json:"name"`
	GPIOPositive int    `json:"gpio_positive"`
	GPIONegative int    `json:"gpio_negative"`
}

type MotorGroupSpec struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

type HCSR04Spec struct {
	Name        string `json:"name"`
	GPIOTrigger int    `json:"gpio_trigger"`
	GPIOEcho    int    `json:"gpio_echo"`
}

type I2CSensorSpec struct {
	Name    string `json:"name"`
	Address uint16 `json:"i2c_addr"`
}

// ParseLayout decodes raw JSON into a Layout, rejecting unknown fields (spec
// §6). A malformed or absent document is a ConfigParse error per §7, which
// the caller recovers from by proceeding with an empty Layout{}.
func ParseLayout(raw []byte) (Layout, error) {
	var l Layout
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&l); err != nil {
		return Layout{}, fmt.Errorf("parse peripheral layout: %w", err)
	}
	return l, nil
}
