package interp

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"simforth/cell"
	"simforth/internal/safe"
	"simforth/primitive"
	"simforth/streams"
	"simforth/token"
	"simforth/tokenizer"
)

// Boot installs every primitive from the primitive.Table into a fresh
// dictionary, spec.md §2's "the dictionary starts pre-populated with the
// primitive set". Call once before any Eval*.
func (vm *Interpreter) Boot() error {
	return safe.Guard("boot", func() error {
		for _, b := range primitive.Table {
			if _, err := vm.dict.Create(b.Name, b.Immediate); err != nil {
				return err
			}
			if err := vm.dict.CompileToken(b.Token); err != nil {
				return err
			}
			if err := vm.dict.CompileToken(token.Exit); err != nil {
				return err
			}
			vm.dict.Finalize()
		}

		// BASE is a VARIABLE, not a primitive opcode, so `!`/`@` can drive it
		// directly; HEX/DECIMAL and the number parser all read/write this
		// same cell via vm.baseAddr.
		if _, err := vm.dict.Create("BASE", false); err != nil {
			return err
		}
		if err := vm.dict.CompileToken(token.PushPFA); err != nil {
			return err
		}
		if err := vm.dict.CompileToken(0); err != nil { // doesAddr slot, unused
			return err
		}
		if err := vm.dict.CompileToken(token.Exit); err != nil {
			return err
		}
		vm.baseAddr = vm.dict.LatestBody() + prologueLen
		if err := vm.dict.CompileRaw(uint64(vm.initialBase)); err != nil {
			return err
		}
		vm.dict.Finalize()

		return nil
	})
}

// dispatch is one outer-interpreter step, spec.md §4.6: find, then either
// compile, execute, or (if not found) parse as a number.
func (vm *Interpreter) dispatch(word string) {
	tok, immediate, found := vm.dict.Find(word)
	if found {
		if vm.state == StateCompile && !immediate {
			vm.check(vm.dict.CompileToken(tok))
			return
		}
		vm.execute(tok)
		return
	}
	c, ok := vm.toNumber(word)
	if !ok {
		vm.halt(UnknownWord, word)
	}
	if vm.state == StateCompile {
		vm.compileLiteral(c)
		return
	}
	vm.pushDS(c)
}

// tryWord runs dispatch, recovering a single *Error so one bad word aborts
// only the current line rather than the whole Eval call, matching the
// teacher's per-command halt/recover boundary (core.go) generalized to
// SIMFORTH's "abort the current word, keep the session" contract (§7).
func (vm *Interpreter) tryWord(word string) (ferr *Error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(*Error); ok {
				ferr = e
				return
			}
			panic(r)
		}
	}()
	vm.dispatch(word)
	return nil
}

func (vm *Interpreter) recoverFromError() {
	vm.dict.AbortDefinition()
	vm.ds.Reset()
	vm.rs.Reset()
	vm.ls.Reset()
	vm.ctrl = nil
	vm.leaves = nil
	vm.state = StateInterpret
	vm.in.DiscardLine()
}

// interpretLoop runs the outer interpreter until its current input source
// is exhausted, spec.md §7's error-recovery contract: every *Error rewinds
// the smudged definition, clears both stacks, discards the rest of the
// offending line, and invokes on_error, but the loop itself continues.
func (vm *Interpreter) interpretLoop() *Error {
	for {
		if vm.interrupted() {
			vm.clearInterrupt()
			e := &Error{Kind: Interrupted, Location: vm.in.Loc()}
			vm.recoverFromError()
			if vm.onError != nil {
				vm.onError(e)
			}
			return e
		}

		word, err := tokenizer.Word(vm.in)
		if err == io.EOF {
			if vm.dict.Defining() {
				e := &Error{Kind: UnexpectedEOFInDefinition, Location: vm.in.Loc()}
				vm.recoverFromError()
				if vm.onError != nil {
					vm.onError(e)
				}
				return e
			}
			return nil
		}
		if err != nil {
			return &Error{Kind: IOError, Detail: err.Error(), Location: vm.in.Loc()}
		}

		if ferr := vm.tryWord(word); ferr != nil {
			vm.recoverFromError()
			if vm.onError != nil {
				vm.onError(ferr)
			}
		}

		if vm.yield != nil {
			if yerr := vm.yield(); yerr != nil {
				e := &Error{Kind: Interrupted, Detail: yerr.Error(), Location: vm.in.Loc()}
				vm.recoverFromError()
				if vm.onError != nil {
					vm.onError(e)
				}
				return e
			}
		}
	}
}

// EvalReader pushes r as a named input source and runs it to completion.
func (vm *Interpreter) EvalReader(name string, r io.Reader) error {
	if err := vm.in.Push(name, r); err != nil {
		return err
	}
	return safe.Guard(name, func() error {
		if ferr := vm.interpretLoop(); ferr != nil {
			return ferr
		}
		return nil
	})
}

// EvalString evaluates text as if typed at an interactive prompt, tagging
// its Location with name (used in error reporting). An empty name gets a
// synthetic <string#N> tag from streams.PushString.
func (vm *Interpreter) EvalString(name, text string) error {
	if err := vm.in.PushString(name, text); err != nil {
		return err
	}
	return safe.Guard(name, func() error {
		if ferr := vm.interpretLoop(); ferr != nil {
			return ferr
		}
		return nil
	})
}

// EvalFile opens and evaluates the named file.
func (vm *Interpreter) EvalFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return &Error{Kind: IOError, Detail: err.Error()}
	}
	return vm.EvalReader(path, f)
}

// EvalInteractive drives a simple line-at-a-time REPL: each line from r is
// evaluated as its own string source, then " ok" is written to w, or the
// error's text if EvalString returns one. Errors the outer loop recovers
// from mid-line go to the on_error hook only, and that line still ends with
// " ok". It is not the
// standalone front-end's option-parsed CLI (out of scope); just enough of a
// loop to exercise the embeddable API interactively.
func (vm *Interpreter) EvalInteractive(r io.Reader, w io.Writer) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if err := vm.EvalString(streams.Interactive, sc.Text()+"\n"); err != nil {
			fmt.Fprintf(w, "%v\n", err)
			continue
		}
		fmt.Fprintf(w, " ok\n")
	}
	return sc.Err()
}

// Find looks up name in the dictionary, exposing dict.Dictionary.Find
// without requiring callers to import the dict package directly.
func (vm *Interpreter) Find(name string) (addr uint32, immediate, found bool) {
	tok, imm, ok := vm.dict.Find(name)
	return uint32(tok), imm, ok
}

// ToNumber exposes the numeric-literal parser spec.md §4.6 describes,
// useful to a host building its own completion/diagnostic UI.
func (vm *Interpreter) ToNumber(text string) (cell.Cell, bool) { return vm.toNumber(text) }
