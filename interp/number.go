package interp

import (
	"strconv"
	"strings"

	"simforth/cell"
)

// toNumber parses a word as a numeric literal per spec.md §4.6: decimal (or
// current BASE) integers, the required 0x/0b/0o hex/binary/octal overrides
// (plus $ and % as additional hex/binary spellings), and floats (containing
// a '.' or a base-10 exponent) always read in base 10 regardless of BASE,
// with underscores allowed as digit-group separators anywhere in the
// literal. ok is false if text names no number.
func (vm *Interpreter) toNumber(text string) (c cell.Cell, ok bool) {
	clean := strings.ReplaceAll(text, "_", "")
	if clean == "" {
		return cell.Cell{}, false
	}

	neg := false
	rest := clean
	switch rest[0] {
	case '+':
		rest = rest[1:]
	case '-':
		neg = true
		rest = rest[1:]
	}
	if rest == "" {
		return cell.Cell{}, false
	}

	base := vm.currentBase()
	switch {
	case strings.HasPrefix(rest, "0x") || strings.HasPrefix(rest, "0X"):
		base, rest = 16, rest[2:]
	case strings.HasPrefix(rest, "0b") || strings.HasPrefix(rest, "0B"):
		base, rest = 2, rest[2:]
	case strings.HasPrefix(rest, "0o") || strings.HasPrefix(rest, "0O"):
		base, rest = 8, rest[2:]
	case strings.HasPrefix(rest, "$"):
		base, rest = 16, rest[1:]
	case strings.HasPrefix(rest, "%"):
		base, rest = 2, rest[1:]
	case looksFloat(rest, base):
		f, err := strconv.ParseFloat(rest, 64)
		if err != nil {
			return cell.Cell{}, false
		}
		if neg {
			f = -f
		}
		return cell.Float(f), true
	}
	if rest == "" {
		return cell.Cell{}, false
	}

	v, err := strconv.ParseInt(rest, base, 64)
	if err != nil {
		return cell.Cell{}, false
	}
	if neg {
		v = -v
	}
	return cell.Int(v), true
}

// looksFloat reports whether s should be parsed with strconv.ParseFloat
// rather than as a BASE-relative integer: it contains a decimal point, or an
// 'e'/'E' exponent marker -- but only when base is 10, since in any other
// base 'e'/'E' (and, properly, any letter digit below the radix) is just an
// ordinary digit, not an exponent marker (e.g. hex BASE's CAFE, BEEF, DEAD).
func looksFloat(s string, base int) bool {
	if strings.ContainsRune(s, '.') {
		return true
	}
	return base == 10 && strings.ContainsAny(s, "eE")
}
