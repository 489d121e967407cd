package peripherals

import (
	"time"

	"github.com/jangala-dev/nb-esp32-firmware/internal/peripherals/i2cdrv"
)

const aht20CollectTimeout = 250 * time.Millisecond

// TemperatureSensor, AmbientLightSensor, Barometer, Accelerometer, and
// RGBMatrix adapt the internal/peripherals/i2cdrv register drivers onto a
// SharedI2C handle -- each owns its own *SharedI2C clone so bus turns are
// serialized regardless of how many sensors share the physical bus (spec §3:
// "shared I²C bus handle, refcounted").

type TemperatureSensor struct{ drv *i2cdrv.Temperature }

func NewTemperatureSensor(bus *SharedI2C, addr uint16) (*TemperatureSensor, error) {
	drv := i2cdrv.NewTemperature(bus.Clone(), addr)
	if err := drv.Configure(); err != nil {
		return nil, err
	}
	return &TemperatureSensor{drv: drv}, nil
}

// GetTemperature returns degrees Celsius.
func (s *TemperatureSensor) GetTemperature() (float64, error) {
	deciC, err := s.drv.ReadDeciCelsius(aht20CollectTimeout)
	if err != nil {
		return 0, err
	}
	return float64(deciC) / 10, nil
}

type AmbientLightSensor struct{ drv *i2cdrv.AmbientLight }

func NewAmbientLightSensor(bus *SharedI2C, addr uint16) (*AmbientLightSensor, error) {
	drv := i2cdrv.NewAmbientLight(bus.Clone(), addr)
	if err := drv.Configure(); err != nil {
		return nil, err
	}
	return &AmbientLightSensor{drv: drv}, nil
}

func (s *AmbientLightSensor) GetLight() (float64, error) {
	lux, err := s.drv.ReadLux()
	if err != nil {
		return 0, err
	}
	return float64(lux), nil
}

type BarometerSensor struct{ drv *i2cdrv.Barometer }

func NewBarometerSensor(bus *SharedI2C, addr uint16) (*BarometerSensor, error) {
	drv := i2cdrv.NewBarometer(bus.Clone(), addr)
	if err := drv.Configure(); err != nil {
		return nil, err
	}
	return &BarometerSensor{drv: drv}, nil
}

func (s *BarometerSensor) GetPressure() (float64, error) {
	pa, err := s.drv.ReadPascals()
	if err != nil {
		return 0, err
	}
	return float64(pa), nil
}

type AccelerometerSensor struct{ drv *i2cdrv.Accelerometer }

func NewAccelerometerSensor(bus *SharedI2C, addr uint16) (*AccelerometerSensor, error) {
	drv := i2cdrv.NewAccelerometer(bus.Clone(), addr)
	if err := drv.Configure(); err != nil {
		return nil, err
	}
	return &AccelerometerSensor{drv: drv}, nil
}

// GetAcceleration returns (x, y, z) in units of g.
func (s *AccelerometerSensor) GetAcceleration() (x, y, z float64, err error) {
	mx, my, mz, err := s.drv.ReadMilliG()
	if err != nil {
		return 0, 0, 0, err
	}
	return float64(mx) / 1000, float64(my) / 1000, float64(mz) / 1000, nil
}

type RGBMatrixSensor struct{ drv *i2cdrv.RGBMatrix }

func NewRGBMatrixSensor(bus *SharedI2C, addr uint16) (*RGBMatrixSensor, error) {
	drv := i2cdrv.NewRGBMatrix(bus.Clone(), addr)
	if err := drv.Configure(); err != nil {
		return nil, err
	}
	return &RGBMatrixSensor{drv: drv}, nil
}

// SetPixel stages brightness 0-255 at (x, y); Show commits the frame.
func (s *RGBMatrixSensor) SetPixel(x, y int, brightness uint8) error {
	return s.drv.SetPixel(x, y, brightness)
}

func (s *RGBMatrixSensor) Show() error { return s.drv.Show() }
