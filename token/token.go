// Package token defines the 16-bit opcode that threads SIMFORTH's compiled
// code, grounded on the teacher's vmCode* constant table (first.go) but
// widened to the spec's split between a primitive table and dictionary
// body offsets (spec.md §3).
package token

// Token is a 16-bit opcode. Values below PrimitiveMax select a primitive;
// values >= PrimitiveMax address the body of a secondary word, in units of
// Tokens relative to dictionary memory.
type Token uint16

// PrimitiveMax bounds the primitive table. It is deliberately small: the
// remaining ~61k values of the 16-bit Token space address dictionary bodies,
// and (since a dictionary header's previous_offset is itself a 16-bit *byte* offset, capping
// a single dictionary image at 65536 bytes) every reachable body offset
// divided by 2 comfortably fits above PrimitiveMax without wrapping.
const PrimitiveMax Token = 0x1000

// Primitive opcodes. This is the "complete set" spec.md §4.5 requires at
// minimum; ordering is insignificant beyond staying below PrimitiveMax.
const (
	Nop Token = iota

	// arithmetic / logical / comparison, §4.1
	Add
	Sub
	Mul
	Div
	Mod
	Negate
	Abs
	Min
	Max
	And
	Or
	Xor
	Invert
	Lshift
	Rshift
	Eq
	Ne
	Lt
	Gt
	Le
	Ge
	OverflowQ // OVERFLOW? -- supplemental, see SPEC_FULL.md

	// stack manipulation
	Dup
	Drop
	Swap
	Over
	Rot
	Nip
	Tuck
	Pick
	Roll
	ToR
	RFrom
	RFetch
	Depth

	// memory access
	Fetch
	Store
	CFetch
	CStore
	Comma

	// control flow (non-immediate primitives the inner interpreter runs)
	Branch
	ZeroBranch
	Exit
	Lit
	FLit
	PushPFA      // runtime marker compiled by CREATE; see interp's enter()
	DoesRun      // runtime op compiled by DOES>; patches CREATE's doesAddr slot and unwinds
	LoopEnter    // runtime op compiled by DO
	LoopNext     // runtime op compiled by LOOP
	LoopPlusNext // runtime op compiled by +LOOP
	LoopLeave    // runtime op compiled by LEAVE
	LoopIndex    // I, reads the innermost loop's index
	PrintLiteral // runtime op compiled by ." in compile state
	PushStringLit // runtime op compiled by S" in compile state

	// definition words
	Colon
	Semicolon
	Create
	Does
	Variable
	Constant
	Immediate

	// input/output
	Dot
	Emit
	CR
	Type
	Word
	Find

	// compile-time
	LeftBracket
	RightBracket
	Literal
	CompileComma
	Postpone

	// immediate structuring words
	If
	Else
	Then
	Begin
	Until
	While
	Repeat
	Do
	Loop
	PlusLoop
	Leave
	Recurse
	ParenComment
	BackslashComment
	DotQuote
	SQuote

	// vocabulary / session management
	Forget
	Hex
	Decimal

	numPrimitives
)

func init() {
	if numPrimitives > PrimitiveMax {
		panic("token: primitive table exceeds PrimitiveMax")
	}
}

// IsPrimitive reports whether t addresses the primitive table rather than a
// dictionary body.
func (t Token) IsPrimitive() bool { return t < PrimitiveMax }

// BodyOffset converts a secondary Token back to a byte offset into
// dictionary memory (the inverse of ForOffset).
func (t Token) BodyOffset() uint16 {
	return uint16(t-PrimitiveMax) * 2
}

// ForOffset constructs the Token that addresses the dictionary body
// starting at the given (token-aligned) byte offset.
func ForOffset(offset uint16) Token {
	return PrimitiveMax + Token(offset/2)
}
