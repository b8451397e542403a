// Command simforth is a minimal embedder demonstrating the interp API: it
// boots an Interpreter, evaluates each file argument in order, then drops
// into an interactive loop over stdin. Parsing real command-line options
// (--trace, --image, --no-rc, etc.) is the standalone front-end's job and
// explicitly out of scope here; this binary exists to exercise the library,
// not to be that front-end.
package main

import (
	"fmt"
	"os"

	"simforth/interp"
)

func main() {
	vm := interp.New(
		interp.WithOutput(os.Stdout),
		interp.WithOnError(func(err *interp.Error) {
			fmt.Fprintf(os.Stderr, "%v\n", err)
		}),
	)
	if err := vm.Boot(); err != nil {
		fmt.Fprintf(os.Stderr, "boot failed: %v\n", err)
		os.Exit(1)
	}

	for _, path := range os.Args[1:] {
		if err := vm.EvalFile(path); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			os.Exit(1)
		}
	}

	if err := vm.EvalInteractive(os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
