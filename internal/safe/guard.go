// Package safe implements the panic-to-error boundary used at every
// embeddable API entry point (interp.Interpreter.Eval*), adapted from the
// teacher's internal/panicerr: primitives and the inner interpreter signal
// failure by panicking with a typed error (spec.md §7's "errors abort the
// current outer-loop word"). The outer loop's per-word recover in interp
// turns an *interp.Error panic back into a returned error itself; Guard is
// the outer boundary that turns any panic reaching an entry point into a
// returned error.
package safe

import (
	"errors"
	"fmt"
	"runtime/debug"
)

// Guard runs f, recovering any panic into a returned error. Unlike the
// teacher's goroutine-wrapped panicerr.Recover (which exists there to also
// catch a stray runtime.Goexit from code under test), SIMFORTH's inner loop
// never spawns goroutines of its own, so Guard recovers in place: cheaper,
// and it preserves the caller's goroutine for context cancellation.
func Guard(name string, f func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = panicError{name, e, debug.Stack()}
			} else {
				err = panicError{name, fmt.Errorf("%v", r), debug.Stack()}
			}
		}
	}()
	return f()
}

type panicError struct {
	name  string
	err   error
	stack []byte
}

func (pe panicError) Error() string { return fmt.Sprintf("%s: %v", pe.name, pe.err) }

func (pe panicError) Format(f fmt.State, c rune) {
	fmt.Fprintf(f, "%s: %v", pe.name, pe.err)
	if c == 'v' && f.Flag('+') {
		fmt.Fprintf(f, "\nstack:\n%s", pe.stack)
	}
}

func (pe panicError) Unwrap() error { return pe.err }

// Stack returns the recovered stack trace, if err came from Guard.
func Stack(err error) string {
	var pe panicError
	if errors.As(err, &pe) {
		return string(pe.stack)
	}
	return ""
}
