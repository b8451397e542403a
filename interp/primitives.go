package interp

import (
	"fmt"
	"strconv"

	"simforth/cell"
	"simforth/dict"
	"simforth/token"
	"simforth/tokenizer"
)

// runPrimitive executes one primitive opcode, spec.md §4.5. It is reached
// either because the outer interpreter found a word whose immediate flag
// demanded immediate execution, or because the inner interpreter fetched a
// primitive token out of a compiled body.
func (vm *Interpreter) runPrimitive(t token.Token) {
	switch t {

	// arithmetic / logical / comparison, §4.1
	case token.Add:
		vm.binOvf(cell.Add)
	case token.Sub:
		vm.binOvf(cell.Sub)
	case token.Mul:
		vm.binOvf(cell.Mul)
	case token.Div:
		b, a := vm.popDS(), vm.popDS()
		v, err := cell.Div(a, b)
		vm.check(err)
		vm.pushDS(v)
	case token.Mod:
		b, a := vm.popDS(), vm.popDS()
		v, err := cell.Mod(a, b)
		vm.check(err)
		vm.pushDS(v)
	case token.Negate:
		vm.pushDS(cell.Negate(vm.popDS()))
	case token.Abs:
		vm.pushDS(cell.Abs(vm.popDS()))
	case token.Min:
		b, a := vm.popDS(), vm.popDS()
		vm.pushDS(cell.Min(a, b))
	case token.Max:
		b, a := vm.popDS(), vm.popDS()
		vm.pushDS(cell.Max(a, b))
	case token.And:
		b, a := vm.popDS(), vm.popDS()
		vm.pushDS(cell.And(a, b))
	case token.Or:
		b, a := vm.popDS(), vm.popDS()
		vm.pushDS(cell.Or(a, b))
	case token.Xor:
		b, a := vm.popDS(), vm.popDS()
		vm.pushDS(cell.Xor(a, b))
	case token.Invert:
		vm.pushDS(cell.Invert(vm.popDS()))
	case token.Lshift:
		n, a := vm.popDS(), vm.popDS()
		vm.pushDS(cell.Lshift(a, n))
	case token.Rshift:
		n, a := vm.popDS(), vm.popDS()
		vm.pushDS(cell.Rshift(a, n))
	case token.Eq:
		b, a := vm.popDS(), vm.popDS()
		vm.pushDS(boolCell(cell.Equal(a, b)))
	case token.Ne:
		b, a := vm.popDS(), vm.popDS()
		vm.pushDS(boolCell(!cell.Equal(a, b)))
	case token.Lt:
		b, a := vm.popDS(), vm.popDS()
		vm.pushDS(boolCell(cell.Less(a, b)))
	case token.Gt:
		b, a := vm.popDS(), vm.popDS()
		vm.pushDS(boolCell(cell.Greater(a, b)))
	case token.Le:
		b, a := vm.popDS(), vm.popDS()
		vm.pushDS(boolCell(!cell.Greater(a, b)))
	case token.Ge:
		b, a := vm.popDS(), vm.popDS()
		vm.pushDS(boolCell(!cell.Less(a, b)))
	case token.OverflowQ:
		vm.pushDS(boolCell(vm.overflow))

	// stack manipulation
	case token.Dup:
		vm.pushDS(vm.peekDS(0))
	case token.Drop:
		vm.popDS()
	case token.Swap:
		vm.check(vm.ds.Swap())
	case token.Over:
		vm.pushDS(vm.peekDS(1))
	case token.Rot:
		vm.check(vm.ds.Rot())
	case token.Nip:
		b := vm.popDS()
		vm.popDS()
		vm.pushDS(b)
	case token.Tuck:
		b, a := vm.popDS(), vm.popDS()
		vm.pushDS(b)
		vm.pushDS(a)
		vm.pushDS(b)
	case token.Pick:
		n := vm.popDS()
		vm.check(vm.ds.Pick(int(n.Int())))
	case token.Roll:
		n := vm.popDS()
		vm.check(vm.ds.Roll(int(n.Int())))
	case token.ToR:
		vm.check(vm.rs.Push(vm.popDS()))
	case token.RFrom:
		v, err := vm.rs.Pop()
		vm.check(err)
		vm.pushDS(v)
	case token.RFetch:
		v, err := vm.rs.Peek(0)
		vm.check(err)
		vm.pushDS(v)
	case token.Depth:
		vm.pushDS(cell.Int(int64(vm.ds.Depth())))

	// memory access
	case token.Fetch:
		addr := vm.popDS().Addr()
		vm.pushDS(cell.FromRaw(cell.KindInt, vm.dict.LoadRaw(uint16(addr))))
	case token.Store:
		addr := vm.popDS().Addr()
		v := vm.popDS()
		vm.check(vm.dict.StoreRaw(uint16(addr), v.Raw()))
	case token.CFetch:
		addr := vm.popDS().Addr()
		vm.pushDS(cell.Int(int64(vm.dict.ReadByte(uint16(addr)))))
	case token.CStore:
		addr := vm.popDS().Addr()
		v := vm.popDS()
		vm.dict.WriteByte(uint16(addr), byte(v.Int()))
	case token.Comma:
		vm.check(vm.dict.CompileRaw(vm.popDS().Raw()))

	// definition words
	case token.Colon:
		vm.doColon()
	case token.Semicolon:
		vm.doSemicolon()
	case token.Create:
		vm.doCreate()
	case token.Does:
		vm.requireCompiling("DOES>")
		vm.check(vm.dict.CompileToken(token.DoesRun))
	case token.Variable:
		vm.doVariable()
	case token.Constant:
		vm.doConstant()
	case token.Immediate:
		vm.dict.MarkImmediate()

	// input/output
	case token.Dot:
		vm.doDot()
	case token.Emit:
		fmt.Fprintf(vm.out, "%c", rune(vm.popDS().Int()))
	case token.CR:
		fmt.Fprint(vm.out, "\n")
	case token.Type:
		n := vm.popDS().Int()
		addr := vm.popDS().Addr()
		vm.out.Write(vm.dict.ReadBytes(uint16(addr), int(n)))
	case token.Word:
		vm.doWord()
	case token.Find:
		vm.doFind()

	// compile-time
	case token.LeftBracket:
		vm.requireCompiling("[")
		vm.state = StateInterpret
	case token.RightBracket:
		vm.state = StateCompile
	case token.Literal:
		vm.requireCompiling("LITERAL")
		vm.compileLiteral(vm.popDS())
	case token.CompileComma:
		vm.requireCompiling("COMPILE,")
		vm.check(vm.dict.CompileToken(token.Token(vm.popDS().Addr())))
	case token.Postpone:
		vm.doPostpone()

	// immediate structuring words
	case token.If:
		vm.requireCompiling("IF")
		vm.pushCtrl(vm.compileBranchPlaceholder(token.ZeroBranch))
	case token.Else:
		vm.requireCompiling("ELSE")
		ifAddr := vm.popCtrl()
		elseAddr := vm.compileBranchPlaceholder(token.Branch)
		vm.patchHere(ifAddr)
		vm.pushCtrl(elseAddr)
	case token.Then:
		vm.requireCompiling("THEN")
		vm.patchHere(vm.popCtrl())
	case token.Begin:
		vm.requireCompiling("BEGIN")
		vm.pushCtrl(vm.dict.Here())
	case token.Until:
		vm.requireCompiling("UNTIL")
		vm.compileBranch(token.ZeroBranch, token.ForOffset(vm.popCtrl()))
	case token.While:
		vm.requireCompiling("WHILE")
		vm.pushCtrl(vm.compileBranchPlaceholder(token.ZeroBranch))
	case token.Repeat:
		vm.requireCompiling("REPEAT")
		whileAddr := vm.popCtrl()
		beginAddr := vm.popCtrl()
		vm.compileBranch(token.Branch, token.ForOffset(beginAddr))
		vm.patchHere(whileAddr)
	case token.Do:
		vm.requireCompiling("DO")
		vm.check(vm.dict.CompileToken(token.LoopEnter))
		vm.pushCtrl(vm.dict.Here())
		vm.leaves = append(vm.leaves, nil)
	case token.Loop:
		vm.requireCompiling("LOOP")
		vm.compileBranch(token.LoopNext, token.ForOffset(vm.popCtrl()))
		vm.patchLeaves()
	case token.PlusLoop:
		vm.requireCompiling("+LOOP")
		vm.compileBranch(token.LoopPlusNext, token.ForOffset(vm.popCtrl()))
		vm.patchLeaves()
	case token.Leave:
		vm.requireCompiling("LEAVE")
		if len(vm.leaves) == 0 {
			vm.halt(InvalidBranch, "LEAVE outside DO..LOOP")
		}
		addr := vm.compileBranchPlaceholder(token.LoopLeave)
		top := len(vm.leaves) - 1
		vm.leaves[top] = append(vm.leaves[top], addr)
	case token.Recurse:
		vm.requireCompiling("RECURSE")
		vm.check(vm.dict.CompileToken(vm.definition))
	case token.ParenComment:
		tokenizer.Parse(vm.in, ')')
	case token.BackslashComment:
		vm.in.DiscardLine()
	case token.DotQuote:
		vm.doDotQuote()
	case token.SQuote:
		vm.doSQuote()

	// vocabulary / session management
	case token.Forget:
		vm.doForget()
	case token.Hex:
		vm.check(vm.dict.StoreRaw(vm.baseAddr, 16))
	case token.Decimal:
		vm.check(vm.dict.StoreRaw(vm.baseAddr, 10))

	case token.Nop:
		// no-op

	default:
		vm.haltf(InvalidToken, "unimplemented primitive %d", t)
	}
}

func (vm *Interpreter) binOvf(op func(a, b cell.Cell) (cell.Cell, bool)) {
	b, a := vm.popDS(), vm.popDS()
	v, ovf := op(a, b)
	vm.overflow = ovf
	vm.pushDS(v)
}

func (vm *Interpreter) patchLeaves() {
	n := len(vm.leaves)
	if n == 0 {
		vm.halt(InvalidBranch, "unbalanced DO/LOOP")
	}
	addrs := vm.leaves[n-1]
	vm.leaves = vm.leaves[:n-1]
	for _, a := range addrs {
		vm.patchHere(a)
	}
}

func (vm *Interpreter) nextWordOrHalt(context string) string {
	w, err := tokenizer.Word(vm.in)
	if err != nil {
		vm.haltf(UnexpectedEOFInDefinition, "%s: expected a name", context)
	}
	return w
}

func (vm *Interpreter) doColon() {
	if vm.state == StateCompile {
		vm.halt(NestedDefinition, "")
	}
	name := vm.nextWordOrHalt(":")
	tok, err := vm.dict.Create(name, false)
	vm.check(err)
	vm.definition = tok
	vm.defName = name
	vm.state = StateCompile
}

func (vm *Interpreter) doSemicolon() {
	if vm.state != StateCompile {
		vm.halt(UnexpectedSemicolon, "")
	}
	vm.check(vm.dict.CompileToken(token.Exit))
	vm.dict.Finalize()
	vm.state = StateInterpret
	if vm.onWordDefined != nil {
		vm.onWordDefined(vm.defName)
	}
}

// prologueLen is PushPFA(2) + doesAddr slot(2) + Exit(2), the fixed header
// every CREATEd word carries before its parameter field, spec.md §4.3.
const prologueLen = 6

func (vm *Interpreter) compilePrologue() {
	vm.check(vm.dict.CompileToken(token.PushPFA))
	vm.check(vm.dict.CompileToken(0)) // doesAddr slot, patched by DOES>
	vm.check(vm.dict.CompileToken(token.Exit))
}

func (vm *Interpreter) doCreate() {
	name := vm.nextWordOrHalt("CREATE")
	_, err := vm.dict.Create(name, false)
	vm.check(err)
	vm.compilePrologue()
	vm.dict.Finalize()
	if vm.onWordDefined != nil {
		vm.onWordDefined(name)
	}
}

func (vm *Interpreter) doVariable() {
	name := vm.nextWordOrHalt("VARIABLE")
	_, err := vm.dict.Create(name, false)
	vm.check(err)
	vm.compilePrologue()
	vm.check(vm.dict.CompileRaw(0))
	vm.dict.Finalize()
	if vm.onWordDefined != nil {
		vm.onWordDefined(name)
	}
}

func (vm *Interpreter) doConstant() {
	v := vm.popDS()
	name := vm.nextWordOrHalt("CONSTANT")
	_, err := vm.dict.Create(name, false)
	vm.check(err)
	vm.compileLiteral(v)
	vm.check(vm.dict.CompileToken(token.Exit))
	vm.dict.Finalize()
	if vm.onWordDefined != nil {
		vm.onWordDefined(name)
	}
}

func (vm *Interpreter) compileLiteral(c cell.Cell) {
	if c.IsFloat() {
		vm.check(vm.dict.CompileToken(token.FLit))
	} else {
		vm.check(vm.dict.CompileToken(token.Lit))
	}
	vm.check(vm.dict.CompileRaw(c.Raw()))
}

func (vm *Interpreter) doDot() {
	c := vm.popDS()
	if c.IsFloat() {
		fmt.Fprintf(vm.out, "%g ", c.Float())
		return
	}
	fmt.Fprintf(vm.out, "%s ", strconv.FormatInt(c.Int(), vm.currentBase()))
}

func (vm *Interpreter) doWord() {
	w, err := tokenizer.Word(vm.in)
	if err != nil {
		vm.halt(IOError, "WORD: end of input")
	}
	off, werr := vm.dict.ScratchWrite([]byte(w))
	vm.check(werr)
	vm.pushDS(cell.Addr(uint32(off)))
}

func (vm *Interpreter) doFind() {
	addr := vm.popDS().Addr()
	n := vm.dict.ReadByte(uint16(addr))
	name := string(vm.dict.ReadBytes(uint16(addr)+1, int(n)))
	tok, immediate, found := vm.dict.Find(name)
	if !found {
		vm.pushDS(cell.Addr(addr))
		vm.pushDS(cell.Int(0))
		return
	}
	vm.pushDS(cell.Addr(uint32(tok)))
	if immediate {
		vm.pushDS(cell.Int(1))
	} else {
		vm.pushDS(cell.Int(-1))
	}
}

func (vm *Interpreter) doPostpone() {
	name := vm.nextWordOrHalt("POSTPONE")
	tok, _, found := vm.dict.Find(name)
	if !found {
		vm.halt(UnknownWord, name)
	}
	vm.check(vm.dict.CompileToken(tok))
}

func (vm *Interpreter) doDotQuote() {
	text, _ := tokenizer.Parse(vm.in, '"')
	if vm.state != StateCompile {
		fmt.Fprint(vm.out, text)
		return
	}
	vm.check(vm.dict.CompileToken(token.PrintLiteral))
	vm.check(vm.dict.CompileToken(token.Token(len(text))))
	vm.check(vm.dict.CompileBytes([]byte(text)))
}

func (vm *Interpreter) doSQuote() {
	text, _ := tokenizer.Parse(vm.in, '"')
	if vm.state != StateCompile {
		off, err := vm.dict.ScratchWriteRaw([]byte(text))
		vm.check(err)
		vm.pushDS(cell.Addr(uint32(off)))
		vm.pushDS(cell.Int(int64(len(text))))
		return
	}
	vm.check(vm.dict.CompileToken(token.PushStringLit))
	vm.check(vm.dict.CompileToken(token.Token(len(text))))
	vm.check(vm.dict.CompileBytes([]byte(text)))
}

func (vm *Interpreter) doForget() {
	name := vm.nextWordOrHalt("FORGET")
	err := vm.dict.Forget(name)
	if err != nil {
		if _, ok := err.(dict.UnknownWordError); ok {
			vm.halt(UnknownWord, name)
		}
		vm.check(err)
	}
}
