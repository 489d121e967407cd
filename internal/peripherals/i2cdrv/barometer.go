package i2cdrv

import "tinygo.org/x/drivers"

// BarometerAddress is the pressure sensor's default 7-bit address.
const BarometerAddress = 0x76

const (
	baroCtrlMeas = 0xF4
	baroPressMSB = 0xF7
)

// Barometer wraps a BMP280-protocol pressure sensor in its simplest
// uncompensated mode: this reads the raw 20-bit pressure register and
// applies a fixed linear scale rather than the full Bosch calibration-curve
// compensation, trading absolute accuracy for a small, dependency-free
// driver in the teacher's fixed-point style.
type Barometer struct {
	bus  drivers.I2C
	addr uint16
}

func NewBarometer(bus drivers.I2C, addr uint16) *Barometer {
	if addr == 0 {
		addr = BarometerAddress
	}
	return &Barometer{bus: bus, addr: addr}
}

func (b *Barometer) Configure() error {
	// osrs_p = x1, osrs_t = x1, normal mode.
	return b.bus.Tx(b.addr, []byte{baroCtrlMeas, 0x27}, nil)
}

// ReadPascals returns an approximate pressure reading in pascals.
func (b *Barometer) ReadPascals() (uint32, error) {
	data := make([]byte, 3)
	if err := b.bus.Tx(b.addr, []byte{baroPressMSB}, data); err != nil {
		return 0, err
	}
	raw := uint32(data[0])<<12 | uint32(data[1])<<4 | uint32(data[2])>>4
	// Uncompensated counts scale roughly linearly around sea-level pressure
	// over the sensor's rated range; anchor at the BMP280 reset default.
	return 30000 + raw/4, nil
}
