package shell

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	printfFlags   = "-+ #0'"
	printfLengths = "hlLqjzt"
)

// formatPrintf renders format with args the way the printf built-in does.
// Conversions are %s %d %i %o %u %x %f and %%. Flags, width, precision and
// length modifiers are accepted but not applied. A numeric conversion given a
// non-numeric argument fails with [ErrInvalidArgument]; a missing argument
// renders as "" or 0. Failures are returned as a [*CommandError].
func formatPrintf(format string, args []Token) (string, error) {
	var b strings.Builder
	next := 0
	arg := func() (Token, bool) {
		if next >= len(args) {
			return Token{}, false
		}
		next++
		return args[next-1], true
	}

	for i := 0; i < len(format); i++ {
		c := format[i]
		switch c {
		case '\\':
			if i+1 < len(format) {
				i++
				b.WriteString(unescape(format[i]))
			} else {
				b.WriteByte('\\')
			}
			continue
		case '%':
		default:
			b.WriteByte(c)
			continue
		}

		// conversion spec: %[flags][width][.precision][length]verb
		start := i
		i++
		for i < len(format) && strings.IndexByte(printfFlags, format[i]) >= 0 {
			i++
		}
		for i < len(format) && (isDigit(format[i]) || format[i] == '.') {
			i++
		}
		for i < len(format) && strings.IndexByte(printfLengths, format[i]) >= 0 {
			i++
		}
		if i >= len(format) {
			return "", cmdErr(ErrInvalidArgument, fmt.Sprintf("printf: Invalid specifier %q", format[start:]))
		}
		spec := format[start : i+1]

		verb := format[i]
		if verb == '%' {
			b.WriteByte('%')
			continue
		}
		a, ok := arg()
		s, err := convert(verb, a, ok)
		if err != nil {
			return "", cmdErr(err, fmt.Sprintf("printf: Invalid specifier %q for argument %q", spec, a.String()))
		}
		b.WriteString(s)
	}
	return b.String(), nil
}

func convert(verb byte, a Token, present bool) (string, error) {
	if verb == 's' {
		if present && a.IsNum() {
			return "", ErrInvalidArgument
		}
		return a.String(), nil
	}

	switch verb {
	case 'd', 'i', 'o', 'u', 'x':
		n, ok := a.Int()
		if present && !ok {
			return "", ErrInvalidArgument
		}
		switch verb {
		case 'o':
			return strconv.FormatUint(uint64(n), 8), nil
		case 'u':
			return strconv.FormatUint(uint64(n), 10), nil
		case 'x':
			return strconv.FormatUint(uint64(n), 16), nil
		default:
			return strconv.FormatInt(n, 10), nil
		}
	case 'f':
		// integers and decimal text such as 1.5 are both numeric here
		var f float64
		if present {
			var err error
			if f, err = strconv.ParseFloat(a.String(), 64); err != nil {
				return "", ErrInvalidArgument
			}
		}
		return strconv.FormatFloat(f, 'f', 6, 64), nil
	}
	return "", ErrInvalidArgument
}

func unescape(c byte) string {
	switch c {
	case 'n':
		return "\n"
	case 't':
		return "\t"
	case 'r':
		return "\r"
	case 'a':
		return "\a"
	case '\\':
		return "\\"
	default:
		return "\\" + string(c)
	}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
