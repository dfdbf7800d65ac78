package vm

import (
	"encoding/binary"

	"github.com/rhoc-lang/rhoc/codeobj"
	"github.com/rhoc-lang/rhoc/errors"
	"github.com/rhoc-lang/rhoc/opcodes"
	"github.com/rhoc-lang/rhoc/values"
)

// runFrame is the dispatch loop of spec.md §4.5: read opcode, pop any
// handler whose range no longer covers pos, execute, repeat. It returns
// the frame's terminal value (RETURN's operand, or an unhandled
// Exc/Error propagating to the caller); run, which it wraps, also reports
// whether the frame merely suspended at a PRODUCE (generator resumption
// only — see generator.go).
func (vm *VM) runFrame(frame *Frame) values.Value {
	v, _ := vm.run(frame)
	return v
}

func (vm *VM) run(frame *Frame) (result values.Value, suspended bool) {
	code := frame.Code.Bytecode

	for {
		for len(frame.Handlers) > 0 {
			h := frame.Handlers[len(frame.Handlers)-1]
			if frame.pos < h.tryEnd {
				break
			}
			frame.Handlers = frame.Handlers[:len(frame.Handlers)-1]
		}

		if frame.pos >= len(code) {
			return values.Null(), false
		}

		op := opcodes.Op(code[frame.pos])
		instrPos := frame.pos
		operandPos := frame.pos + 1
		size := opcodes.OperandSize(op)
		var u16 uint16
		if size == 2 {
			u16 = binary.LittleEndian.Uint16(code[operandPos : operandPos+2])
		}
		frame.pos = operandPos + size
		vm.Profiler.count(op)

		switch op {
		case opcodes.NOP:

		case opcodes.LOAD_CONST:
			frame.push(loadConst(vm, frame, int(u16)))
		case opcodes.LOAD_NULL:
			frame.push(values.Null())
		case opcodes.LOAD_ITER_STOP:
			frame.push(values.IterStop())

		case opcodes.ADD, opcodes.SUB, opcodes.MUL, opcodes.DIV, opcodes.MOD, opcodes.POW,
			opcodes.BITAND, opcodes.BITOR, opcodes.BITXOR, opcodes.SHIFTL, opcodes.SHIFTR:
			rhs := frame.pop()
			lhs := frame.pop()
			r := values.BinaryOp(binOpFor(op), lhs, rhs)
			lhs.Release()
			rhs.Release()
			if prop, val := vm.raise(frame, r); prop {
				return val, false
			}

		case opcodes.IADD, opcodes.ISUB, opcodes.IMUL, opcodes.IDIV, opcodes.IMOD, opcodes.IPOW,
			opcodes.IBITAND, opcodes.IBITOR, opcodes.IBITXOR, opcodes.ISHIFTL, opcodes.ISHIFTR:
			rhs := frame.pop()
			lhs := frame.pop()
			r := values.InPlaceOp(binOpFor(inPlaceBase(op)), lhs, rhs)
			lhs.Release()
			rhs.Release()
			if prop, val := vm.raise(frame, r); prop {
				return val, false
			}

		case opcodes.BITNOT:
			v := frame.pop()
			r := values.UnaryBitNot(v)
			v.Release()
			if prop, val := vm.raise(frame, r); prop {
				return val, false
			}
		case opcodes.NOT:
			v := frame.pop()
			r := values.Bool(!v.Nonzero())
			v.Release()
			frame.push(r)
		case opcodes.UPLUS:
		case opcodes.UMINUS:
			v := frame.pop()
			r := values.UnaryMinus(v)
			v.Release()
			if prop, val := vm.raise(frame, r); prop {
				return val, false
			}

		case opcodes.MAKE_RANGE:
			step := frame.pop()
			stop := frame.pop()
			start := frame.pop()
			r := values.NewRange(start.I, stop.I, step.I)
			start.Release()
			stop.Release()
			step.Release()
			frame.push(r)
		case opcodes.IN:
			rhs := frame.pop()
			lhs := frame.pop()
			r := seqContains(rhs, lhs)
			lhs.Release()
			rhs.Release()
			if prop, val := vm.raise(frame, r); prop {
				return val, false
			}

		case opcodes.EQUAL, opcodes.NOTEQ:
			rhs := frame.pop()
			lhs := frame.pop()
			eq := values.Equal(lhs, rhs)
			if op == opcodes.NOTEQ && eq.Tag == values.TagBool {
				eq = values.Bool(!eq.B)
			}
			lhs.Release()
			rhs.Release()
			if prop, val := vm.raise(frame, eq); prop {
				return val, false
			}
		case opcodes.LT, opcodes.GT, opcodes.LE, opcodes.GE:
			rhs := frame.pop()
			lhs := frame.pop()
			c := values.Compare(lhs, rhs)
			lhs.Release()
			rhs.Release()
			if prop, val := vm.raise(frame, c); prop {
				return val, false
			}
			if c.Tag == values.TagInt {
				frame.push(values.Bool(cmpHolds(op, c.I)))
			}

		case opcodes.STORE:
			v := frame.pop()
			frame.Locals[int(u16)].Release()
			frame.Locals[int(u16)] = v
		case opcodes.STORE_GLOBAL:
			v := frame.pop()
			name := frame.Code.Symbols.Locals[int(u16)]
			frame.Globals.Set(name, v)
			v.Release()
		case opcodes.LOAD:
			v := frame.Locals[int(u16)]
			if v.IsEmpty() {
				return vm.fatal(frame, instrPos, errors.UnboundVariable, frame.Code.Symbols.Locals[int(u16)])
			}
			frame.push(v.Retain())
		case opcodes.LOAD_GLOBAL:
			name := frame.Code.Symbols.Locals[int(u16)]
			v, ok := frame.Globals.Get(name)
			if !ok {
				return vm.fatal(frame, instrPos, errors.UnboundVariable, name)
			}
			frame.push(v.Retain())
		case opcodes.LOAD_NAME:
			frame.push(frame.Frees[int(u16)].Retain())

		case opcodes.LOAD_ATTR:
			obj := frame.pop()
			name := frame.Code.Symbols.Attrs[int(u16)]
			r := values.GetAttr(obj, name)
			obj.Release()
			if prop, val := vm.raise(frame, r); prop {
				return val, false
			}
		case opcodes.SET_ATTR:
			val := frame.pop()
			obj := frame.pop()
			name := frame.Code.Symbols.Attrs[int(u16)]
			r := values.SetAttr(obj, name, val)
			obj.Release()
			val.Release()
			if prop, val2 := vm.raise(frame, r); prop {
				return val2, false
			}

		case opcodes.LOAD_INDEX:
			idx := frame.pop()
			obj := frame.pop()
			r := seqGet(obj, idx)
			obj.Release()
			idx.Release()
			if prop, val := vm.raise(frame, r); prop {
				return val, false
			}
		case opcodes.SET_INDEX:
			idx := frame.pop()
			obj := frame.pop()
			val := frame.pop()
			r := seqSet(obj, idx, val)
			obj.Release()
			idx.Release()
			val.Release()
			if prop, val2 := vm.raise(frame, r); prop {
				return val2, false
			}

		case opcodes.APPLY, opcodes.IAPPLY:
			item := frame.pop()
			obj := frame.pop()
			r := seqApply(obj, item, op == opcodes.IAPPLY)
			item.Release()
			if prop, val := vm.raise(frame, r); prop {
				return val, false
			}

		case opcodes.PRINT:
			v := frame.pop()
			vm.Print(v.String())
			v.Release()

		case opcodes.JMP:
			frame.pos = int(u16)
		case opcodes.JMP_BACK:
			frame.pos = int(u16)
		case opcodes.JMP_IF_TRUE:
			v := frame.pop()
			if v.Nonzero() {
				frame.pos = int(u16)
			}
			v.Release()
		case opcodes.JMP_IF_FALSE:
			v := frame.pop()
			if !v.Nonzero() {
				frame.pos = int(u16)
			}
			v.Release()
		case opcodes.JMP_IF_TRUE_ELSE_POP:
			if frame.top().Nonzero() {
				frame.pos = int(u16)
			} else {
				frame.pop().Release()
			}
		case opcodes.JMP_IF_FALSE_ELSE_POP:
			if !frame.top().Nonzero() {
				frame.pos = int(u16)
			} else {
				frame.pop().Release()
			}

		case opcodes.CALL:
			if prop, val := vm.dispatchCall(frame, u16); prop {
				return val, false
			}

		case opcodes.RETURN:
			v := frame.pop()
			if frame.IsGenerator {
				v.Release()
				return values.IterStop(), false
			}
			return v, false
		case opcodes.THROW:
			v := frame.pop()
			if v.Tag != values.TagExc && v.Tag != values.TagError {
				v.Release()
				v = values.Throw(values.TypeExceptionClass, "can only throw exception values")
			}
			if prop, val := vm.raise(frame, v); prop {
				return val, false
			}
		case opcodes.PRODUCE:
			v := frame.pop()
			return v, true

		case opcodes.TRY_BEGIN:
			tryLen := binary.LittleEndian.Uint16(code[operandPos : operandPos+2])
			handlerOff := binary.LittleEndian.Uint16(code[operandPos+2 : operandPos+4])
			tryStart := operandPos + 4
			frame.Handlers = append(frame.Handlers, handler{
				purgeWall:  frame.stackTop,
				handlerPos: int(handlerOff),
				tryEnd:     tryStart + int(tryLen),
			})
		case opcodes.TRY_END:
			if len(frame.Handlers) > 0 {
				frame.Handlers = frame.Handlers[:len(frame.Handlers)-1]
			}
			frame.push(values.Null())
		case opcodes.JMP_IF_EXC_MISMATCH:
			className := frame.pop()
			exc := frame.top()
			name, _ := values.AsString(className)
			if !excMatches(exc, name) {
				frame.pos = int(u16)
			}
			className.Release()

		case opcodes.MAKE_LIST:
			items := frame.popN(int(u16))
			frame.push(values.NewList(items))
			releaseAll(items)
		case opcodes.MAKE_TUPLE:
			items := frame.popN(int(u16))
			frame.push(values.NewTuple(items))
			releaseAll(items)
		case opcodes.MAKE_SET:
			items := frame.popN(int(u16))
			frame.push(values.NewSet(items))
			releaseAll(items)
		case opcodes.MAKE_DICT:
			n := int(u16)
			d := values.NewDict()
			pairs := frame.popN(2 * n)
			for i := 0; i < n; i++ {
				k, _ := values.AsString(pairs[2*i])
				d.Set(k, pairs[2*i+1])
			}
			frame.push(values.NewDictValue(d))
			releaseAll(pairs)

		case opcodes.IMPORT:
			name := frame.Code.Consts.Get(int(u16)).S
			r := vm.doImport(name)
			if prop, val := vm.raise(frame, r); prop {
				return val, false
			}
		case opcodes.EXPORT, opcodes.EXPORT_GLOBAL, opcodes.EXPORT_NAME:
			v := frame.pop()
			name := frame.Code.Consts.Get(int(u16)).S
			frame.Globals.Set("export:"+name, v)
			v.Release()

		case opcodes.RECEIVE:
			if frame.Mailbox == nil {
				return vm.fatal(frame, instrPos, errors.MultithreadingNotSupported, "receive outside an actor")
			}
			v, stop := frame.Mailbox.Receive()
			if stop {
				frame.reset()
				return values.Null(), false
			}
			frame.push(v)

		case opcodes.GET_ITER:
			v := frame.pop()
			iter := getIter(v)
			v.Release()
			if prop, val := vm.raise(frame, iter); prop {
				return val, false
			}
		case opcodes.LOOP_ITER:
			iter := frame.top()
			next := iterNext(iter)
			if values.IsIterStop(next) {
				frame.pos = int(u16)
			} else {
				frame.push(next)
			}

		case opcodes.MAKE_FUNCOBJ:
			frame.push(vm.makeFuncObj(frame, u16, KindFunction))
		case opcodes.MAKE_GENERATOR:
			frame.push(vm.makeFuncObj(frame, u16, KindGenerator))
		case opcodes.MAKE_ACTOR:
			frame.push(vm.makeFuncObj(frame, u16, KindActor))

		case opcodes.SEQ_EXPAND:
			if prop, val := vm.seqExpand(frame, int(u16)); prop {
				return val, false
			}

		case opcodes.POP:
			frame.pop().Release()
		case opcodes.DUP:
			frame.push(frame.top().Retain())
		case opcodes.DUP_TWO:
			a := frame.Stack[frame.stackTop-2]
			b := frame.Stack[frame.stackTop-1]
			frame.push(a.Retain())
			frame.push(b.Retain())
		case opcodes.ROT:
			a := frame.Stack[frame.stackTop-2]
			b := frame.Stack[frame.stackTop-1]
			frame.Stack[frame.stackTop-2] = b
			frame.Stack[frame.stackTop-1] = a
		case opcodes.ROT_THREE:
			n := frame.stackTop
			a := frame.Stack[n-3]
			b := frame.Stack[n-2]
			c := frame.Stack[n-1]
			frame.Stack[n-3] = c
			frame.Stack[n-2] = a
			frame.Stack[n-1] = b

		default:
			return vm.fatal(frame, instrPos, errors.InvalidBytecode, "unknown opcode")
		}
	}
}

// raise implements spec.md §4.5's "Exception semantics": a value tagged
// Exc or Error either jumps to the nearest enclosing handler, or — with
// none left on this frame — propagates to the caller.
func (vm *VM) raise(frame *Frame, v values.Value) (propagate bool, result values.Value) {
	if v.Tag != values.TagExc && v.Tag != values.TagError {
		frame.push(v)
		return false, values.Value{}
	}
	if len(frame.Handlers) == 0 {
		frame.truncateTo(0)
		values.AppendTraceback(v, frame.Code.Name, frame.Code.LineForOffset(frame.pos))
		return true, v
	}
	h := frame.Handlers[len(frame.Handlers)-1]
	frame.Handlers = frame.Handlers[:len(frame.Handlers)-1]
	frame.truncateTo(h.purgeWall)
	frame.push(v)
	frame.pos = h.handlerPos
	return false, values.Value{}
}

func (vm *VM) fatal(frame *Frame, pos int, kind errors.FatalErrorKind, detail string) (values.Value, bool) {
	line := frame.Code.LineForOffset(pos)
	err := errors.NewFatal(kind, "%s (line %d, in %s)", detail, line, frame.Code.Name)
	return values.FromError(err), false
}

func loadConst(vm *VM, frame *Frame, id int) values.Value {
	c := frame.Code.Consts.Get(id)
	if c.Kind == codeobj.ConstInt {
		return values.Int(c.I)
	}
	return loadConstRest(vm, frame, c)
}
