// Package primitive declares the built-in word table spec.md §4.5 requires:
// the name, opcode, and immediate-ness of every primitive, used by the
// interpreter both to bootstrap dictionary headers for each one (so they
// are found by the same Dictionary.Find as any user word, per spec.md §2's
// "if found, it either executes ... honoring the immediate flag") and to
// resolve opcodes back to names for trace/dump diagnostics, grounded on the
// teacher's parallel vmCodeTable/vmCodeNames arrays (first.go).
//
// Execution itself is dispatched by package interp, which alone holds the
// stacks, dictionary, and input streams a primitive needs to run.
package primitive

import "simforth/token"

// Builtin names one primitive's dictionary-visible identity.
type Builtin struct {
	Name      string
	Token     token.Token
	Immediate bool
}

// Table lists every primitive in the order spec.md §4.5 groups them.
// Internal-only opcodes (BRANCH/0BRANCH/LIT/FLIT/EXIT) are not named here:
// they are never typed by a user, only compiled by other words, matching
// the teacher's treatment of pushint/compileme/compileit as nameless.
var Table = []Builtin{
	// arithmetic / logical / comparison
	{"+", token.Add, false},
	{"-", token.Sub, false},
	{"*", token.Mul, false},
	{"/", token.Div, false},
	{"MOD", token.Mod, false},
	{"NEGATE", token.Negate, false},
	{"ABS", token.Abs, false},
	{"MIN", token.Min, false},
	{"MAX", token.Max, false},
	{"AND", token.And, false},
	{"OR", token.Or, false},
	{"XOR", token.Xor, false},
	{"INVERT", token.Invert, false},
	{"LSHIFT", token.Lshift, false},
	{"RSHIFT", token.Rshift, false},
	{"=", token.Eq, false},
	{"<>", token.Ne, false},
	{"<", token.Lt, false},
	{">", token.Gt, false},
	{"<=", token.Le, false},
	{">=", token.Ge, false},
	{"OVERFLOW?", token.OverflowQ, false},

	// stack manipulation
	{"DUP", token.Dup, false},
	{"DROP", token.Drop, false},
	{"SWAP", token.Swap, false},
	{"OVER", token.Over, false},
	{"ROT", token.Rot, false},
	{"NIP", token.Nip, false},
	{"TUCK", token.Tuck, false},
	{"PICK", token.Pick, false},
	{"ROLL", token.Roll, false},
	{">R", token.ToR, false},
	{"R>", token.RFrom, false},
	{"R@", token.RFetch, false},
	{"DEPTH", token.Depth, false},

	// memory access
	{"@", token.Fetch, false},
	{"!", token.Store, false},
	{"C@", token.CFetch, false},
	{"C!", token.CStore, false},
	{",", token.Comma, false},

	// definition
	{":", token.Colon, true},
	{";", token.Semicolon, true},
	{"CREATE", token.Create, false},
	{"DOES>", token.Does, true},
	{"VARIABLE", token.Variable, false},
	{"CONSTANT", token.Constant, false},
	{"IMMEDIATE", token.Immediate, true},

	// input/output
	{".", token.Dot, false},
	{"EMIT", token.Emit, false},
	{"CR", token.CR, false},
	{"TYPE", token.Type, false},
	{"WORD", token.Word, false},
	{"FIND", token.Find, false},

	// compile-time
	{"[", token.LeftBracket, true},
	{"]", token.RightBracket, false},
	{"LITERAL", token.Literal, true},
	{"COMPILE,", token.CompileComma, false},
	{"POSTPONE", token.Postpone, true},

	// immediate structuring words
	{"IF", token.If, true},
	{"ELSE", token.Else, true},
	{"THEN", token.Then, true},
	{"BEGIN", token.Begin, true},
	{"UNTIL", token.Until, true},
	{"WHILE", token.While, true},
	{"REPEAT", token.Repeat, true},
	{"DO", token.Do, true},
	{"LOOP", token.Loop, true},
	{"+LOOP", token.PlusLoop, true},
	{"LEAVE", token.Leave, true},
	{"I", token.LoopIndex, false},
	{"RECURSE", token.Recurse, true},
	{"(", token.ParenComment, true},
	{"\\", token.BackslashComment, true},
	{".\"", token.DotQuote, true},
	{"S\"", token.SQuote, true},

	// vocabulary / session management
	{"FORGET", token.Forget, false},
	{"HEX", token.Hex, false},
	{"DECIMAL", token.Decimal, false},
}

// NameOf resolves a primitive Token back to its dictionary name, used by
// trace and dump diagnostics. Returns "" if t is not a named primitive
// (either it's a secondary's body offset, or one of the nameless internal
// opcodes like BRANCH/LIT/EXIT).
func NameOf(t token.Token) string {
	for _, b := range Table {
		if b.Token == t {
			return b.Name
		}
	}
	switch t {
	case token.Branch:
		return "branch"
	case token.ZeroBranch:
		return "0branch"
	case token.Exit:
		return "exit"
	case token.Lit:
		return "lit"
	case token.FLit:
		return "flit"
	default:
		return ""
	}
}
