package interp

import (
	"fmt"
	"io"

	"simforth/dict"
)

// SaveImage serializes the dictionary to w in the bit-exact format spec.md
// §6 defines.
func (vm *Interpreter) SaveImage(w io.Writer) error {
	if err := vm.dict.Serialize(w); err != nil {
		return &Error{Kind: IOError, Detail: err.Error()}
	}
	return nil
}

// LoadImage replaces the dictionary's contents with a previously saved
// image, validating magic/version and CRC per spec.md §6. A failed load
// leaves the live dictionary untouched. After a successful load, BASE's cell
// is looked up in the loaded image so the number parser and `.` use it.
func (vm *Interpreter) LoadImage(r io.Reader) error {
	err := vm.dict.Deserialize(r)
	switch err {
	case nil:
		if tok, _, ok := vm.dict.Find("BASE"); ok {
			vm.baseAddr = tok.BodyOffset() + prologueLen
		}
		return nil
	case dict.ErrImageInvalid:
		return &Error{Kind: ImageInvalid}
	case dict.ErrImageCorrupt:
		return &Error{Kind: ImageCorrupt}
	default:
		return &Error{Kind: IOError, Detail: err.Error()}
	}
}

// Dump writes a diagnostic snapshot of both stacks and the dictionary,
// grounded on the teacher's internal/mem dumper and extended to SIMFORTH's
// two explicit stacks plus machine state.
func (vm *Interpreter) Dump(w io.Writer) {
	fmt.Fprintf(w, "state: %s  base: %d  overflow: %v\n", vm.state, vm.rawBase(), vm.overflow)
	fmt.Fprintf(w, "data stack (%d/%d): %v\n", vm.ds.Depth(), vm.ds.Cap(), vm.ds.Top(vm.ds.Depth()))
	fmt.Fprintf(w, "return stack (%d/%d): %v\n", vm.rs.Depth(), vm.rs.Cap(), vm.rs.Top(vm.rs.Depth()))
	vm.dict.Dump(w)
}
