package i2cdrv

import (
	"time"

	"tinygo.org/x/drivers"
)

// AmbientLightAddress is the light sensor's default 7-bit address.
const AmbientLightAddress = 0x23

const (
	alPowerOn          = 0x01
	alContinuousHighRes = 0x10
)

// AmbientLight wraps a BH1750-protocol ambient light sensor. In
// high-resolution mode one count is 1/1.2 lux.
type AmbientLight struct {
	bus  drivers.I2C
	addr uint16
}

func NewAmbientLight(bus drivers.I2C, addr uint16) *AmbientLight {
	if addr == 0 {
		addr = AmbientLightAddress
	}
	return &AmbientLight{bus: bus, addr: addr}
}

func (a *AmbientLight) Configure() error {
	if err := a.bus.Tx(a.addr, []byte{alPowerOn}, nil); err != nil {
		return err
	}
	return a.bus.Tx(a.addr, []byte{alContinuousHighRes}, nil)
}

// ReadLux triggers a conversion (~120ms in high-res mode) and returns lux.
func (a *AmbientLight) ReadLux() (uint32, error) {
	if err := a.bus.Tx(a.addr, []byte{alContinuousHighRes}, nil); err != nil {
		return 0, err
	}
	time.Sleep(120 * time.Millisecond)
	data := make([]byte, 2)
	if err := a.bus.Tx(a.addr, nil, data); err != nil {
		return 0, err
	}
	raw := uint32(data[0])<<8 | uint32(data[1])
	return raw * 10 / 12, nil
}
