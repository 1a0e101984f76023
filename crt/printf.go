package crt

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/embwasm/hostshim"
)

// varargs walks a C-style argument area laid out in region memory:
// word-sized arguments at 4-byte alignment, 8-byte arguments realigned
// to 8. Floats arrive as doubles per the usual vararg promotion.
type varargs struct {
	r   hostshim.Region
	off uint32
}

func (v *varargs) word() (uint32, error) {
	buf, err := v.r.View(v.off, 4)
	if err != nil {
		return 0, err
	}
	v.off += 4
	return binary.LittleEndian.Uint32(buf), nil
}

func (v *varargs) long() (uint64, error) {
	v.off = (v.off + 7) &^ 7
	buf, err := v.r.View(v.off, 8)
	if err != nil {
		return 0, err
	}
	v.off += 8
	return binary.LittleEndian.Uint64(buf), nil
}

// Format renders a C-style format string against an argument area at argp.
// Supported conversions: d i u o x X c s f F e E g G p %, with the usual
// flags, width, and precision, and h/l/ll/z length modifiers (the target is
// ILP32, so only ll widens to 8 bytes). An unrecognized directive is copied
// through verbatim and consumes no argument.
func Format(r hostshim.Region, format string, argp uint32) (string, error) {
	var b strings.Builder
	args := &varargs{r: r, off: argp}

	i := 0
	for i < len(format) {
		if format[i] != '%' {
			b.WriteByte(format[i])
			i++
			continue
		}

		// Parse %[flags][width][.precision][length]verb.
		j := i + 1
		for j < len(format) && strings.IndexByte("-+ 0#", format[j]) >= 0 {
			j++
		}
		for j < len(format) && format[j] >= '0' && format[j] <= '9' {
			j++
		}
		if j < len(format) && format[j] == '.' {
			j++
			for j < len(format) && format[j] >= '0' && format[j] <= '9' {
				j++
			}
		}
		prefix := format[i+1 : j]

		longArg := false
		for j < len(format) {
			switch format[j] {
			case 'l':
				// A second 'l' widens; a single one does not on ILP32.
				if j+1 < len(format) && format[j+1] == 'l' {
					longArg = true
					j++
				}
				j++
				continue
			case 'h', 'z':
				j++
				continue
			}
			break
		}

		if j >= len(format) {
			// Trailing '%...' with no verb: pass it through.
			b.WriteString(format[i:])
			break
		}

		verb := format[j]
		switch verb {
		case 'd', 'i':
			var val int64
			if longArg {
				u, err := args.long()
				if err != nil {
					return "", err
				}
				val = int64(u)
			} else {
				w, err := args.word()
				if err != nil {
					return "", err
				}
				val = int64(int32(w))
			}
			fmt.Fprintf(&b, "%"+prefix+"d", val)
		case 'u':
			val, err := unsignedArg(args, longArg)
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, "%"+prefix+"d", val)
		case 'o', 'x', 'X':
			val, err := unsignedArg(args, longArg)
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, "%"+prefix+string(verb), val)
		case 'c':
			w, err := args.word()
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, "%"+prefix+"c", rune(w))
		case 's':
			ptr, err := args.word()
			if err != nil {
				return "", err
			}
			s, err := CString(r, ptr)
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, "%"+prefix+"s", s)
		case 'f', 'F', 'e', 'E', 'g', 'G':
			bits, err := args.long()
			if err != nil {
				return "", err
			}
			goVerb := verb
			if goVerb == 'F' {
				goVerb = 'f'
			}
			fmt.Fprintf(&b, "%"+prefix+string(goVerb), math.Float64frombits(bits))
		case 'p':
			w, err := args.word()
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, "0x%x", w)
		case '%':
			b.WriteByte('%')
		default:
			// Unknown conversion: verbatim pass-through, no argument
			// consumed.
			b.WriteString(format[i : j+1])
		}
		i = j + 1
	}

	return b.String(), nil
}

// Snprintf renders format into the buffer at dst, truncating to size-1
// bytes plus a null terminator, and returns the untruncated length.
func Snprintf(r hostshim.Region, dst, size uint32, format string, argp uint32) (uint32, error) {
	s, err := Format(r, format, argp)
	if err != nil {
		return 0, err
	}
	if size == 0 {
		return uint32(len(s)), nil
	}

	n := uint32(len(s))
	if n > size-1 {
		n = size - 1
	}
	buf, err := r.View(dst, n+1)
	if err != nil {
		return 0, err
	}
	copy(buf, s[:n])
	buf[n] = 0
	return uint32(len(s)), nil
}

// Printer routes rendered printf output to a structured logger, the
// target's only output channel.
type Printer struct {
	logger *zap.Logger
}

// NewPrinter creates a Printer. A nil logger discards output.
func NewPrinter(logger *zap.Logger) *Printer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Printer{logger: logger}
}

// Printf renders format against the argument area at argp and logs the
// result, returning the rendered length.
func (p *Printer) Printf(r hostshim.Region, format string, argp uint32) (int, error) {
	s, err := Format(r, format, argp)
	if err != nil {
		return 0, err
	}
	p.logger.Info(strings.TrimSuffix(s, "\n"))
	return len(s), nil
}

func unsignedArg(args *varargs, longArg bool) (uint64, error) {
	if longArg {
		return args.long()
	}
	w, err := args.word()
	return uint64(w), err
}
