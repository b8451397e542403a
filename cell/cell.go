// Package cell implements the tagged 64-bit value that flows through every
// SIMFORTH stack: a signed integer, an IEEE-754 double, or a raw dictionary
// address, picked apart and recombined by pattern match rather than by an
// inheritance hierarchy of value types.
package cell

import (
	"fmt"
	"math"
)

// Kind discriminates the variant held by a Cell.
type Kind uint8

const (
	// KindInt holds a signed integer in the range of a 56-bit-or-wider host
	// int; we use the full int64 range and wrap on overflow per spec.
	KindInt Kind = iota
	KindFloat
	KindAddr
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindAddr:
		return "addr"
	default:
		return "unknown"
	}
}

// Cell is the tagged union described by spec.md §3 and §9: { Int(i64) |
// Float(f64) | Addr(u32) }. The zero Cell is the integer 0.
type Cell struct {
	kind Kind
	bits uint64
}

// Int constructs an integer Cell. INTEGER -> CELL -> INTEGER round-trips.
func Int(v int64) Cell { return Cell{kind: KindInt, bits: uint64(v)} }

// Float constructs a float Cell. FLOAT -> CELL -> FLOAT round-trips.
func Float(v float64) Cell { return Cell{kind: KindFloat, bits: math.Float64bits(v)} }

// Addr constructs an address Cell: an untyped index into dictionary memory.
func Addr(v uint32) Cell { return Cell{kind: KindAddr, bits: uint64(v)} }

// Kind reports which variant this Cell holds.
func (c Cell) Kind() Kind { return c.kind }

// Int returns the integer value, converting floats by truncation and
// addresses by reinterpretation, matching the mixed-arithmetic coercion
// rules of §4.1 applied to a single operand.
func (c Cell) Int() int64 {
	switch c.kind {
	case KindFloat:
		return int64(math.Float64frombits(c.bits))
	case KindAddr:
		return int64(uint32(c.bits))
	default:
		return int64(c.bits)
	}
}

// Float returns the float value, converting integers per the mixed -> float
// coercion rule.
func (c Cell) Float() float64 {
	switch c.kind {
	case KindInt:
		return float64(int64(c.bits))
	case KindAddr:
		return float64(uint32(c.bits))
	default:
		return math.Float64frombits(c.bits)
	}
}

// Addr returns the address value, truncating integers and floats.
func (c Cell) Addr() uint32 {
	switch c.kind {
	case KindFloat:
		return uint32(int64(math.Float64frombits(c.bits)))
	case KindAddr:
		return uint32(c.bits)
	default:
		return uint32(c.bits)
	}
}

// IsFloat reports whether c holds a float.
func (c Cell) IsFloat() bool { return c.kind == KindFloat }

// String renders c for diagnostics (dump/trace), not for `.`'s
// BASE-sensitive output.
func (c Cell) String() string {
	switch c.kind {
	case KindFloat:
		return fmt.Sprintf("%g", c.Float())
	case KindAddr:
		return fmt.Sprintf("@%d", c.Addr())
	default:
		return fmt.Sprintf("%d", c.Int())
	}
}

// Raw returns the 64-bit pattern backing c, used to compile a Cell as a
// sequence of Tokens (dict.CompileCell) and to serialize dictionary images.
func (c Cell) Raw() uint64 { return c.bits }

// FromRaw reconstructs a Cell of the given kind from a raw bit pattern, the
// inverse of Raw, used when decoding LIT/FLIT literals out of a compiled body.
func FromRaw(k Kind, bits uint64) Cell { return Cell{kind: k, bits: bits} }

func bothInt(a, b Cell) bool { return a.kind != KindFloat && b.kind != KindFloat }

// arith applies an integer op and a float op to a and b, coercing per §4.1:
// integer op integer -> integer (wrapping, with Overflow reporting via ovf);
// float op float -> float; any float operand -> float.
func arith(a, b Cell, iop func(x, y int64) (int64, bool), fop func(x, y float64) float64) (Cell, bool) {
	if bothInt(a, b) {
		v, ovf := iop(a.Int(), b.Int())
		return Int(v), ovf
	}
	return Float(fop(a.Float(), b.Float())), false
}

// Add computes a+b. ovf is true iff both operands were integers and the
// addition overflowed a signed 64-bit result.
func Add(a, b Cell) (Cell, bool) {
	return arith(a, b, func(x, y int64) (int64, bool) {
		s := x + y
		overflow := (x > 0 && y > 0 && s < 0) || (x < 0 && y < 0 && s >= 0)
		return s, overflow
	}, func(x, y float64) float64 { return x + y })
}

// Sub computes a-b with the same coercion and overflow semantics as Add.
func Sub(a, b Cell) (Cell, bool) {
	return arith(a, b, func(x, y int64) (int64, bool) {
		d := x - y
		overflow := (x >= 0 && y < 0 && d < 0) || (x < 0 && y > 0 && d >= 0)
		return d, overflow
	}, func(x, y float64) float64 { return x - y })
}

// Mul computes a*b with the same coercion and overflow semantics as Add.
func Mul(a, b Cell) (Cell, bool) {
	return arith(a, b, func(x, y int64) (int64, bool) {
		p := x * y
		overflow := x != 0 && p/x != y
		return p, overflow
	}, func(x, y float64) float64 { return x * y })
}

// ErrDivideByZero is returned by Div and Mod when b is the integer 0.
var ErrDivideByZero = divideByZeroError{}

type divideByZeroError struct{}

func (divideByZeroError) Error() string { return "division by zero" }

// Div computes a/b, integer division truncating toward zero for two integer
// operands, float division otherwise.
func Div(a, b Cell) (Cell, error) {
	if bothInt(a, b) {
		y := b.Int()
		if y == 0 {
			return Cell{}, ErrDivideByZero
		}
		return Int(a.Int() / y), nil
	}
	y := b.Float()
	if y == 0 {
		return Cell{}, ErrDivideByZero
	}
	return Float(a.Float() / y), nil
}

// Mod computes a remainder of a/b truncated toward zero, integer-only per
// Forth convention; mixed or float operands convert to integer first.
func Mod(a, b Cell) (Cell, error) {
	y := b.Int()
	if y == 0 {
		return Cell{}, ErrDivideByZero
	}
	return Int(a.Int() % y), nil
}

// Negate computes -a, preserving a's kind.
func Negate(a Cell) Cell {
	if a.kind == KindFloat {
		return Float(-a.Float())
	}
	return Int(-a.Int())
}

// Abs computes |a|, preserving a's kind.
func Abs(a Cell) Cell {
	if a.kind == KindFloat {
		return Float(math.Abs(a.Float()))
	}
	v := a.Int()
	if v < 0 {
		v = -v
	}
	return Int(v)
}

// Min returns the lesser of a and b per Less's ordering.
func Min(a, b Cell) Cell {
	if Less(a, b) {
		return a
	}
	return b
}

// Max returns the greater of a and b per Less's ordering.
func Max(a, b Cell) Cell {
	if Less(b, a) {
		return a
	}
	return b
}

// And, Or, Xor, Invert, Lshift, Rshift operate on the integer view of their
// operands regardless of kind, matching bitwise words in a Forth with no
// separate boolean type.

func And(a, b Cell) Cell    { return Int(a.Int() & b.Int()) }
func Or(a, b Cell) Cell     { return Int(a.Int() | b.Int()) }
func Xor(a, b Cell) Cell    { return Int(a.Int() ^ b.Int()) }
func Invert(a Cell) Cell    { return Int(^a.Int()) }
func Lshift(a, n Cell) Cell { return Int(a.Int() << uint(n.Int())) }
func Rshift(a, n Cell) Cell { return Int(int64(uint64(a.Int()) >> uint(n.Int()))) }

// Equal reports a = b. NaN compares unequal to everything, per IEEE-754.
func Equal(a, b Cell) bool {
	if bothInt(a, b) {
		return a.Int() == b.Int()
	}
	x, y := a.Float(), b.Float()
	return x == y
}

// Less reports a < b. If either operand is a NaN float, Less is false
// (NaN is unordered).
func Less(a, b Cell) bool {
	if bothInt(a, b) {
		return a.Int() < b.Int()
	}
	x, y := a.Float(), b.Float()
	if math.IsNaN(x) || math.IsNaN(y) {
		return false
	}
	return x < y
}

// Greater reports a > b, with the same NaN-is-unordered rule as Less.
func Greater(a, b Cell) bool { return Less(b, a) }
