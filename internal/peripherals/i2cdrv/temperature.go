// Package i2cdrv holds small register-level drivers for the I²C sensor
// families spec.md §3/§6 requires (temperature, ambient-light, barometer,
// accelerometer, RGB-matrix). Each is adapted from the teacher's own
// drivers/aht20 package, which predates (and is kept alongside) the
// teacher's later adoption of tinygo.org/x/drivers subpackages: a thin
// Device wrapping a drivers.I2C bus, fixed-point reads, no floating point on
// the hot path.
package i2cdrv

import (
	"errors"
	"time"

	"tinygo.org/x/drivers"
)

// AHT20Address is the temperature/humidity sensor's default 7-bit address.
const AHT20Address = 0x38

const (
	aht20CmdTrigger    = 0xAC
	aht20CmdInitialize = 0xBE
	aht20StatusBusy    = 0x80
	aht20StatusCalib   = 0x08
)

var ErrNotReady = errors.New("i2cdrv: not ready")

// Temperature wraps an AHT20-protocol temperature/humidity sensor.
type Temperature struct {
	bus  drivers.I2C
	addr uint16
	buf  [7]byte
}

func NewTemperature(bus drivers.I2C, addr uint16) *Temperature {
	if addr == 0 {
		addr = AHT20Address
	}
	return &Temperature{bus: bus, addr: addr}
}

// Configure initializes the sensor if it is not already calibrated.
func (t *Temperature) Configure() error {
	status := make([]byte, 1)
	if err := t.bus.Tx(t.addr, []byte{0x71}, status); err == nil && status[0]&aht20StatusCalib != 0 {
		return nil
	}
	if err := t.bus.Tx(t.addr, []byte{aht20CmdInitialize, 0x08, 0x00}, nil); err != nil {
		return err
	}
	time.Sleep(10 * time.Millisecond)
	return nil
}

// ReadDeciCelsius triggers a conversion and returns tenths of a degree
// Celsius, polling for up to collectTimeout.
func (t *Temperature) ReadDeciCelsius(collectTimeout time.Duration) (int32, error) {
	if err := t.bus.Tx(t.addr, []byte{aht20CmdTrigger, 0x33, 0x00}, nil); err != nil {
		return 0, err
	}
	deadline := time.Now().Add(collectTimeout)
	for {
		data := t.buf[:]
		if err := t.bus.Tx(t.addr, nil, data); err != nil {
			return 0, err
		}
		if data[0]&aht20StatusBusy == 0 {
			traw := (uint32(data[3]&0x0F) << 16) | (uint32(data[4]) << 8) | uint32(data[5])
			return ((int32(traw) * 2000) / 0x100000) - 500, nil
		}
		if time.Now().After(deadline) {
			return 0, ErrNotReady
		}
		time.Sleep(15 * time.Millisecond)
	}
}
