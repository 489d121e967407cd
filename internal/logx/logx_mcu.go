//go:build mcu

package logx

import (
	"github.com/jangala-dev/nb-esp32-firmware/internal/x/conv"
	"github.com/jangala-dev/nb-esp32-firmware/internal/x/fmtx"
	"github.com/jangala-dev/nb-esp32-firmware/internal/x/timex"
)

// DefaultOutput is the byte sink logged lines are written to on an MCU
// build. Set once by platform bootstrap before the first log call, the same
// convention as the teacher's x/fmtx_mcu.DefaultOutput.
var DefaultOutput interface{ Write(p []byte) (int, error) }

// Log avoids fmt entirely so a log-capable build doesn't pull the fmt
// package's reflection-based formatting onto the target.
func Log(lvl Level, msg string, fields ...Field) {
	if DefaultOutput == nil {
		return
	}
	var buf [24]byte
	ts := conv.Itoa(buf[:], int64(timex.NowMs()))

	write(lvl.String())
	write(" ")
	write(string(ts))
	write(" ")
	write(msg)
	for _, f := range fields {
		write(" ")
		write(f.Key)
		write("=")
		write(f.Val)
	}
	write("\n")
}

func write(s string) { DefaultOutput.Write([]byte(s)) }

func Infof(format string, args ...any)  { Log(Info, fmtx.Sprintf(format, args...)) }
func Warnf(format string, args ...any)  { Log(Warn, fmtx.Sprintf(format, args...)) }
func Errorf(format string, args ...any) { Log(Error, fmtx.Sprintf(format, args...)) }
