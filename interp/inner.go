package interp

import (
	"simforth/cell"
	"simforth/token"
)

// execute runs one Token to completion: a primitive opcode runs directly,
// a secondary is entered and run until its EXIT, per spec.md §4.7.
func (vm *Interpreter) execute(tok token.Token) {
	if tok.IsPrimitive() {
		vm.runPrimitive(tok)
		return
	}
	vm.enter(tok)
}

// doesExit unwinds exactly one enter() frame early, the mechanism DOES>
// uses to stop a defining word's own body right where DOES> sits instead of
// falling through into the does-part compiled after it (spec.md §4.3's
// CREATE/DOES> pair).
type doesExit struct{}

// enter runs the inner interpreter (spec.md §4.7) over the secondary body
// entry addresses, fetching one Token at a time until EXIT.
func (vm *Interpreter) enter(entry token.Token) {
	bodyStart := entry.BodyOffset()
	savedIP := vm.ip
	vm.ip = bodyStart

	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(doesExit); ok {
				vm.ip = savedIP
				return
			}
			panic(r)
		}
	}()

	for {
		if vm.interrupted() {
			vm.clearInterrupt()
			vm.halt(Interrupted, "")
		}

		t := vm.dict.LoadToken(vm.ip)
		vm.ip += 2

		switch t {
		case token.Exit:
			vm.ip = savedIP
			return

		case token.PushPFA:
			pfa := bodyStart + 6
			vm.pushDS(cell.Addr(uint32(pfa)))
			does := vm.dict.LoadToken(vm.ip)
			vm.ip += 2
			if does != 0 {
				vm.enter(does)
			}

		case token.DoesRun:
			doesAddr := token.ForOffset(vm.ip)
			vm.dict.PatchToken(vm.dict.LatestBody()+2, doesAddr)
			panic(doesExit{})

		case token.Lit:
			bits := vm.dict.LoadRaw(vm.ip)
			vm.ip += 8
			vm.pushDS(cell.FromRaw(cell.KindInt, bits))

		case token.FLit:
			bits := vm.dict.LoadRaw(vm.ip)
			vm.ip += 8
			vm.pushDS(cell.FromRaw(cell.KindFloat, bits))

		case token.Branch:
			target := vm.dict.LoadToken(vm.ip)
			vm.ip = target.BodyOffset()

		case token.ZeroBranch:
			c := vm.popDS()
			target := vm.dict.LoadToken(vm.ip)
			if isZero(c) {
				vm.ip = target.BodyOffset()
			} else {
				vm.ip += 2
			}

		case token.LoopEnter:
			start := vm.popDS().Int()
			limit := vm.popDS().Int()
			vm.check(vm.ls.Push(loopFrame{index: start, limit: limit}))

		case token.LoopNext:
			vm.runLoopStep(1, true)

		case token.LoopPlusNext:
			inc := vm.popDS().Int()
			vm.runLoopStep(inc, false)

		case token.LoopLeave:
			_, _ = vm.ls.Pop()
			target := vm.dict.LoadToken(vm.ip)
			vm.ip = target.BodyOffset()

		case token.LoopIndex:
			fr, err := vm.ls.Peek(0)
			vm.check(err)
			vm.pushDS(cell.Int(fr.index))

		case token.PrintLiteral:
			n := int(vm.dict.LoadToken(vm.ip))
			vm.ip += 2
			vm.out.Write(vm.dict.ReadBytes(vm.ip, n))
			vm.ip += advance(n)

		case token.PushStringLit:
			n := int(vm.dict.LoadToken(vm.ip))
			vm.ip += 2
			vm.pushDS(cell.Addr(uint32(vm.ip)))
			vm.pushDS(cell.Int(int64(n)))
			vm.ip += advance(n)

		default:
			if vm.onTrace != nil {
				vm.onTrace("exec %s", t)
			}
			vm.execute(t)
		}
	}
}

// --- compile-time control-flow bookkeeping (spec.md §4.6, IF/BEGIN/DO et al.) ---

func (vm *Interpreter) requireCompiling(word string) {
	if vm.state != StateCompile {
		vm.haltf(InvalidToken, "%s used outside a definition", word)
	}
}

func (vm *Interpreter) pushCtrl(addr uint16) { vm.ctrl = append(vm.ctrl, addr) }

func (vm *Interpreter) popCtrl() uint16 {
	if len(vm.ctrl) == 0 {
		vm.halt(InvalidBranch, "unbalanced control-flow word")
	}
	addr := vm.ctrl[len(vm.ctrl)-1]
	vm.ctrl = vm.ctrl[:len(vm.ctrl)-1]
	return addr
}

func (vm *Interpreter) compileBranch(t token.Token, target token.Token) {
	vm.check(vm.dict.CompileToken(t))
	vm.check(vm.dict.CompileToken(target))
}

// compileBranchPlaceholder compiles t followed by a zero placeholder token
// and returns the placeholder's address for later PatchToken.
func (vm *Interpreter) compileBranchPlaceholder(t token.Token) uint16 {
	vm.check(vm.dict.CompileToken(t))
	addr := vm.dict.Here()
	vm.check(vm.dict.CompileToken(0))
	return addr
}

func (vm *Interpreter) patchHere(addr uint16) {
	vm.dict.PatchToken(addr, token.ForOffset(vm.dict.Here()))
}

// runLoopStep advances the innermost loop frame by inc and either branches
// back to the loop body (continuing) or pops the frame and falls through,
// shared by LOOP (inc fixed at 1, ascending-only) and +LOOP (signed inc,
// either direction), per spec.md §4.7's bounded counted loop.
func (vm *Interpreter) runLoopStep(inc int64, ascendingOnly bool) {
	fr, err := vm.ls.Peek(0)
	vm.check(err)
	fr.index += inc
	target := vm.dict.LoadToken(vm.ip)

	var cont bool
	if ascendingOnly {
		cont = fr.index < fr.limit
	} else {
		cont = (inc >= 0 && fr.index < fr.limit) || (inc < 0 && fr.index > fr.limit)
	}

	if cont {
		vm.check(vm.ls.SetTop(0, fr))
		vm.ip = target.BodyOffset()
	} else {
		_, _ = vm.ls.Pop()
		vm.ip += 2
	}
}

// advance rounds n up to an even byte count, the padding CompileBytes
// applies so Token-aligned reads resume correctly after inline text.
func advance(n int) uint16 {
	if n%2 == 1 {
		n++
	}
	return uint16(n)
}
