package i2cdrv

import "tinygo.org/x/drivers"

// AccelerometerAddress is the accelerometer's default 7-bit address.
const AccelerometerAddress = 0x53

const (
	accelRegPowerCtl = 0x2D
	accelRegDataFmt  = 0x31
	accelRegDataX0   = 0x32

	accelMeasureBit = 0x08
	accelFullRes    = 0x08
)

// Accelerometer wraps an ADXL345-protocol 3-axis accelerometer. Output is
// milli-g per axis at the default +/-2g full-resolution scale (~3.9 mg/LSB).
type Accelerometer struct {
	bus  drivers.I2C
	addr uint16
}

func NewAccelerometer(bus drivers.I2C, addr uint16) *Accelerometer {
	if addr == 0 {
		addr = AccelerometerAddress
	}
	return &Accelerometer{bus: bus, addr: addr}
}

func (a *Accelerometer) Configure() error {
	if err := a.bus.Tx(a.addr, []byte{accelRegDataFmt, accelFullRes}, nil); err != nil {
		return err
	}
	return a.bus.Tx(a.addr, []byte{accelRegPowerCtl, accelMeasureBit}, nil)
}

// ReadMilliG returns (x, y, z) in milli-g.
func (a *Accelerometer) ReadMilliG() (x, y, z int32, err error) {
	data := make([]byte, 6)
	if err = a.bus.Tx(a.addr, []byte{accelRegDataX0}, data); err != nil {
		return 0, 0, 0, err
	}
	rawX := int16(uint16(data[0]) | uint16(data[1])<<8)
	rawY := int16(uint16(data[2]) | uint16(data[3])<<8)
	rawZ := int16(uint16(data[4]) | uint16(data[5])<<8)
	const mgPerLSB = 39 // 3.9 mg/LSB * 10, integer math below divides by 10
	return int32(rawX) * mgPerLSB / 10, int32(rawY) * mgPerLSB / 10, int32(rawZ) * mgPerLSB / 10, nil
}
