package peripherals

import "github.com/jangala-dev/nb-esp32-firmware/internal/errcode"

// InitError is one entry in the Vec<InitError> the Bind algorithm collects
// (spec §4.2): "<kind> <name>" context plus the underlying code. Bind never
// returns early on one of these -- one bad entry doesn't disable the rest
// of the device.
type InitError struct {
	Kind    string
	Name    string
	Code    errcode.Code
	Message string
}

func (e InitError) Error() string {
	if e.Message != "" {
		return e.Kind + " " + e.Name + ": " + e.Message
	}
	return e.Kind + " " + e.Name + ": " + string(e.Code)
}

func newInitError(kind, name string, err error) InitError {
	return InitError{Kind: kind, Name: name, Code: errcode.Of(err), Message: err.Error()}
}
