// Package interp implements SIMFORTH's outer and inner interpreters
// (spec.md §4.6-4.7): the find/execute/compile/number state machine that
// drives a tokenizer.Word off a streams.Streams, and the threaded-code
// runner that walks a dict.Dictionary body one token.Token at a time.
// Structurally this plays the role of the teacher's core.go VM type, but
// the primitive set and control-flow compiling are SIMFORTH's own rather
// than gothird's single FIRST/then-combinator language.
package interp

import (
	"io"
	"sync/atomic"

	"simforth/cell"
	"simforth/dict"
	"simforth/stack"
	"simforth/streams"
	"simforth/token"
)

// State is the outer interpreter's mode, spec.md §4.6.
type State int

const (
	StateInterpret State = iota
	StateCompile
)

func (s State) String() string {
	if s == StateCompile {
		return "compile"
	}
	return "interpret"
}

const (
	defaultDataStackSize   = 256
	defaultReturnStackSize = 256
	defaultLoopStackSize   = 64
	defaultDictSize        = dict.DefaultMaxSize
	defaultStreamDepth     = 64
)

// loopFrame is one DO..LOOP activation's runtime state: the counted index
// and the exclusive limit it counts up to, per spec.md §4.7's "a bounded
// counted loop primitive pair".
type loopFrame struct {
	index, limit int64
}

// Observer hooks let an embedder watch the interpreter without SIMFORTH
// itself depending on any particular logging or UI library, per spec.md §6.
type (
	WordDefinedFunc func(name string)
	TraceFunc       func(format string, args ...interface{})
	ErrorFunc       func(err *Error)
	YieldFunc       func() error
)

// Interpreter is SIMFORTH's embeddable virtual machine: stacks, dictionary,
// input streams, and the outer/inner interpreter state machines that tie
// them together.
type Interpreter struct {
	ds *stack.Stack[cell.Cell]
	rs *stack.Stack[cell.Cell] // >R / R> / R@ auxiliary stack, spec.md §4.2
	ls *stack.Stack[loopFrame]

	dict *dict.Dictionary
	in   *streams.Streams

	out io.Writer

	state State

	// BASE is a real dictionary cell (like a VARIABLE), not a cached Go
	// field, so `BASE @`/`BASE !` observe and drive the same value the
	// number parser and `.` use -- initialBase only seeds it at Boot.
	initialBase int
	baseAddr    uint16

	overflow bool
	interrupt int32

	ip         uint16
	definition token.Token // token of the word currently being compiled, for RECURSE
	defName    string      // name of the word currently being compiled, for onWordDefined

	// compile-time control-flow bookkeeping; bounded by source nesting, not
	// a spec'd resource, so plain slices rather than stack.Stack.
	ctrl   []uint16
	leaves [][]uint16

	onWordDefined WordDefinedFunc
	onTrace       TraceFunc
	onError       ErrorFunc
	yield         YieldFunc
}

// Option configures a New Interpreter, the teacher's options.go functional
// pattern (VMOption) generalized to SIMFORTH's own knobs.
type Option func(*Interpreter, *config)

type config struct {
	dataStackSize, returnStackSize, loopStackSize, dictSize, streamDepth int
}

// WithDataStackSize bounds the data stack capacity (default 256 cells).
func WithDataStackSize(n int) Option {
	return func(_ *Interpreter, c *config) { c.dataStackSize = n }
}

// WithReturnStackSize bounds the >R/R>/R@ auxiliary stack capacity.
func WithReturnStackSize(n int) Option {
	return func(_ *Interpreter, c *config) { c.returnStackSize = n }
}

// WithDictionarySize bounds the dictionary's byte capacity (<=64KiB).
func WithDictionarySize(n int) Option {
	return func(_ *Interpreter, c *config) { c.dictSize = n }
}

// WithLoopStackSize bounds how many DO..LOOP nestings may be active at once.
func WithLoopStackSize(n int) Option {
	return func(_ *Interpreter, c *config) { c.loopStackSize = n }
}

// WithMaxStreamDepth bounds nested input source pushes (spec.md §5).
func WithMaxStreamDepth(n int) Option {
	return func(_ *Interpreter, c *config) { c.streamDepth = n }
}

// WithOutput sets the writer EMIT/TYPE/. write to (default io.Discard).
func WithOutput(w io.Writer) Option {
	return func(vm *Interpreter, _ *config) { vm.out = w }
}

// WithBase sets the numeric BASE Boot seeds the BASE cell with (default 10).
func WithBase(base int) Option {
	return func(vm *Interpreter, _ *config) { vm.initialBase = base }
}

// WithOnWordDefined installs a hook fired after every successful `;`.
func WithOnWordDefined(f WordDefinedFunc) Option {
	return func(vm *Interpreter, _ *config) { vm.onWordDefined = f }
}

// WithOnTrace installs a hook fired for inner-interpreter trace events.
func WithOnTrace(f TraceFunc) Option {
	return func(vm *Interpreter, _ *config) { vm.onTrace = f }
}

// WithOnError installs a hook fired whenever an *Error aborts evaluation,
// spec.md §7's on_error.
func WithOnError(f ErrorFunc) Option {
	return func(vm *Interpreter, _ *config) { vm.onError = f }
}

// WithYield installs a cooperative cancellation hook the outer interpreter
// calls after each word; returning a non-nil error aborts with Interrupted,
// spec.md §5's "a host-installable yield point".
func WithYield(f YieldFunc) Option {
	return func(vm *Interpreter, _ *config) { vm.yield = f }
}

// New constructs a ready-to-Boot Interpreter.
func New(opts ...Option) *Interpreter {
	c := config{
		dataStackSize:   defaultDataStackSize,
		returnStackSize: defaultReturnStackSize,
		loopStackSize:   defaultLoopStackSize,
		dictSize:        defaultDictSize,
		streamDepth:     defaultStreamDepth,
	}
	vm := &Interpreter{out: io.Discard, initialBase: 10}
	for _, opt := range opts {
		opt(vm, &c)
	}
	vm.ds = stack.New[cell.Cell]("data stack", c.dataStackSize)
	vm.rs = stack.New[cell.Cell]("return stack", c.returnStackSize)
	vm.ls = stack.New[loopFrame]("loop stack", c.loopStackSize)
	vm.dict = dict.New(c.dictSize)
	vm.in = streams.New(c.streamDepth)
	return vm
}

// Dictionary exposes the interpreter's dictionary, e.g. for saving an
// image or inspecting FIND results from outside the outer loop.
func (vm *Interpreter) Dictionary() *dict.Dictionary { return vm.dict }

// DataStack exposes the data stack, e.g. for a host REPL printing "ok. <n>".
func (vm *Interpreter) DataStack() *stack.Stack[cell.Cell] { return vm.ds }

// State reports whether the outer interpreter is interpreting or compiling.
func (vm *Interpreter) State() State { return vm.state }

// Base reports the current numeric base, halting BadBase if BASE's cell
// holds a value outside [2,36] (spec.md §3).
func (vm *Interpreter) Base() int { return vm.currentBase() }

// currentBase reads BASE's backing cell, the live value `BASE !` writes.
func (vm *Interpreter) currentBase() int {
	v := int64(vm.dict.LoadRaw(vm.baseAddr))
	if v < 2 || v > 36 {
		vm.haltf(BadBase, "%d", v)
	}
	return int(v)
}

// rawBase reads BASE's backing cell without validating it, for diagnostics
// (Dump) that must not panic on a corrupted BASE.
func (vm *Interpreter) rawBase() int64 { return int64(vm.dict.LoadRaw(vm.baseAddr)) }

// Interrupt cooperatively requests that the running evaluation abort at its
// next yield point with Interrupted, safe to call from another goroutine
// (spec.md §5).
func (vm *Interpreter) Interrupt() { atomic.StoreInt32(&vm.interrupt, 1) }

func (vm *Interpreter) interrupted() bool { return atomic.LoadInt32(&vm.interrupt) != 0 }

func (vm *Interpreter) clearInterrupt() { atomic.StoreInt32(&vm.interrupt, 0) }

func (vm *Interpreter) classify(err error) ErrorKind {
	switch e := err.(type) {
	case stack.OverflowError:
		if e.Kind == "return stack" {
			return ReturnStackOverflow
		}
		return StackOverflow
	case stack.UnderflowError:
		if e.Kind == "return stack" {
			return ReturnStackUnderflow
		}
		return StackUnderflow
	case dict.NameTooLongError:
		return NameTooLong
	case dict.OutOfSpaceError:
		return OutOfSpace
	case dict.UnknownWordError:
		return UnknownWord
	default:
		if err == dict.ErrNestedDefinition {
			return NestedDefinition
		}
		if err == cell.ErrDivideByZero {
			return DivideByZero
		}
		return IOError
	}
}

func (vm *Interpreter) pushDS(c cell.Cell) { vm.check(vm.ds.Push(c)) }

func (vm *Interpreter) popDS() cell.Cell {
	v, err := vm.ds.Pop()
	vm.check(err)
	return v
}

func (vm *Interpreter) peekDS(i int) cell.Cell {
	v, err := vm.ds.Peek(i)
	vm.check(err)
	return v
}

func isZero(c cell.Cell) bool {
	if c.IsFloat() {
		return c.Float() == 0
	}
	return c.Int() == 0
}

func boolCell(b bool) cell.Cell {
	if b {
		return cell.Int(-1) // Forth TRUE is all-bits-set
	}
	return cell.Int(0)
}
