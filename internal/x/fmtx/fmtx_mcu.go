//go:build mcu

package fmtx

import "github.com/jangala-dev/nb-esp32-firmware/internal/x/conv"

// Sprintf is a small subset of fmt.Sprintf (%s %d %v %t %%, no flags/width)
// so an MCU build's log call sites don't pull fmt's reflection-based
// formatting onto the target. Adapted from the teacher's x/fmtx builder,
// built on this module's own internal/x/conv instead of a separate
// strconvx package.
func Sprintf(format string, args ...any) string {
	var b builder
	b.format(format, args...)
	return string(b.buf)
}

type builder struct{ buf []byte }

func (b *builder) str(s string) { b.buf = append(b.buf, s...) }

func (b *builder) any(v any) {
	switch x := v.(type) {
	case string:
		b.str(x)
	case error:
		b.str(x.Error())
	case bool:
		if x {
			b.str("true")
		} else {
			b.str("false")
		}
	case int:
		b.int64(int64(x))
	case int8:
		b.int64(int64(x))
	case int16:
		b.int64(int64(x))
	case int32:
		b.int64(int64(x))
	case int64:
		b.int64(x)
	case uint:
		b.uint64(uint64(x))
	case uint8:
		b.uint64(uint64(x))
	case uint16:
		b.uint64(uint64(x))
	case uint32:
		b.uint64(uint64(x))
	case uint64:
		b.uint64(x)
	default:
		b.str("<unk>")
	}
}

func (b *builder) int64(n int64) {
	var buf [20]byte
	b.buf = append(b.buf, conv.Itoa(buf[:], n)...)
}

func (b *builder) uint64(n uint64) {
	var buf [20]byte
	b.buf = append(b.buf, conv.Utoa(buf[:], n)...)
}

func (b *builder) format(format string, args ...any) {
	ai := 0
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' {
			b.buf = append(b.buf, c)
			continue
		}
		i++
		if i >= len(format) {
			break
		}
		verb := format[i]
		if verb == '%' {
			b.buf = append(b.buf, '%')
			continue
		}
		if ai >= len(args) {
			continue
		}
		arg := args[ai]
		ai++
		switch verb {
		case 's':
			if s, ok := arg.(string); ok {
				b.str(s)
			} else {
				b.any(arg)
			}
		case 'd', 't', 'v':
			b.any(arg)
		default:
			b.buf = append(b.buf, '%', verb)
		}
	}
}
