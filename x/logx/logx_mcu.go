//go:build rp2040 || rp2350

package logx

import (
	"io"
)

// DefaultOutput receives log lines on MCU builds. Set it from the platform
// bootstrap (e.g. a UART writer); the default discards.
var DefaultOutput io.Writer = discard{}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

var debug bool

func SetOutput(w io.Writer) { DefaultOutput = w }
func SetDebug(on bool)      { debug = on }

func Debugf(format string, a ...any) {
	if debug {
		emit("DBG", format, a)
	}
}
func Infof(format string, a ...any)  { emit("INF", format, a) }
func Warnf(format string, a ...any)  { emit("WRN", format, a) }
func Errorf(format string, a ...any) { emit("ERR", format, a) }

// emit handles the %d/%s/%x/%v subset the node's call sites use. Anything
// else is printed verbatim.
func emit(level, format string, args []any) {
	var buf [160]byte
	b := buf[:0]
	b = append(b, level...)
	b = append(b, ' ')

	n := 0
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' || i+1 >= len(format) {
			b = append(b, c)
			continue
		}
		i++
		verb := format[i]
		if verb == '%' {
			b = append(b, '%')
			continue
		}
		if n >= len(args) {
			b = append(b, '%', verb)
			continue
		}
		b = appendArg(b, verb, args[n])
		n++
	}
	b = append(b, '\r', '\n')
	_, _ = DefaultOutput.Write(b)
}

func appendArg(b []byte, verb byte, v any) []byte {
	switch verb {
	case 's':
		if s, ok := v.(string); ok {
			return append(b, s...)
		}
	case 'v', 'd':
		switch x := v.(type) {
		case int:
			return appendInt(b, int64(x))
		case int32:
			return appendInt(b, int64(x))
		case int64:
			return appendInt(b, x)
		case uint8:
			return appendUint(b, uint64(x))
		case uint16:
			return appendUint(b, uint64(x))
		case uint32:
			return appendUint(b, uint64(x))
		case string:
			return append(b, x...)
		case bool:
			if x {
				return append(b, "true"...)
			}
			return append(b, "false"...)
		}
	case 'x':
		switch x := v.(type) {
		case uint16:
			return appendHex(b, uint32(x), 4)
		case uint32:
			return appendHex(b, x, 8)
		case uint8:
			return appendHex(b, uint32(x), 2)
		}
	}
	// Stringer fallback covers gatt.Status and friends.
	if s, ok := v.(interface{ String() string }); ok {
		return append(b, s.String()...)
	}
	return append(b, '?')
}

func appendInt(b []byte, n int64) []byte {
	if n < 0 {
		b = append(b, '-')
		n = -n
	}
	return appendUint(b, uint64(n))
}

func appendUint(b []byte, n uint64) []byte {
	var tmp [20]byte
	i := len(tmp)
	if n == 0 {
		i--
		tmp[i] = '0'
	}
	for n > 0 {
		i--
		tmp[i] = byte('0' + n%10)
		n /= 10
	}
	return append(b, tmp[i:]...)
}

func appendHex(b []byte, n uint32, digits int) []byte {
	const hexd = "0123456789abcdef"
	b = append(b, '0', 'x')
	for j := digits - 1; j >= 0; j-- {
		b = append(b, hexd[(n>>(uint(j)*4))&0xf])
	}
	return b
}
