package i2cdrv

import "tinygo.org/x/drivers"

// RGBMatrixAddress is the charlieplexed LED matrix's default 7-bit address.
const RGBMatrixAddress = 0x74

const (
	matrixRegMode   = 0x00
	matrixModePage  = 0xFD // select function-register page
	matrixFrameBase = 0x24 // first PWM register of frame 0
	matrixWidth     = 16
	matrixHeight    = 9
)

// RGBMatrix wraps an IS31FL3731-protocol charlieplexed RGB matrix driven in
// single-frame mode: SetPixel stages brightness in a local frame buffer,
// Show writes the whole buffer out in one transaction.
type RGBMatrix struct {
	bus   drivers.I2C
	addr  uint16
	frame [matrixWidth * matrixHeight]byte
}

func NewRGBMatrix(bus drivers.I2C, addr uint16) *RGBMatrix {
	if addr == 0 {
		addr = RGBMatrixAddress
	}
	return &RGBMatrix{bus: bus, addr: addr}
}

func (m *RGBMatrix) Configure() error {
	if err := m.bus.Tx(m.addr, []byte{matrixModePage, 0x00}, nil); err != nil {
		return err
	}
	return m.bus.Tx(m.addr, []byte{matrixRegMode, 0x00}, nil) // picture mode, frame 0
}

// SetPixel stages a brightness value (0-255) at (x, y) in the local frame
// buffer. It takes effect on the next Show.
func (m *RGBMatrix) SetPixel(x, y int, brightness uint8) error {
	if x < 0 || x >= matrixWidth || y < 0 || y >= matrixHeight {
		return errPixelOutOfRange
	}
	m.frame[y*matrixWidth+x] = brightness
	return nil
}

// Show writes the staged frame buffer to the device in one transaction.
func (m *RGBMatrix) Show() error {
	payload := make([]byte, 1+len(m.frame))
	payload[0] = matrixFrameBase
	copy(payload[1:], m.frame[:])
	return m.bus.Tx(m.addr, payload, nil)
}

var errPixelOutOfRange = &rangeError{"i2cdrv: pixel coordinates out of range"}

type rangeError struct{ msg string }

func (e *rangeError) Error() string { return e.msg }
