package vm

import (
	"fmt"
	"strconv"

	"github.com/rhoc-lang/rhoc/codeobj"
	"github.com/rhoc-lang/rhoc/opcodes"
	"github.com/rhoc-lang/rhoc/values"
)

// binOpFor/inPlaceBase map the ADD/SUB/.../IADD/ISUB/... opcode families
// onto values.BinOp and its plain (non-in-place) counterpart (spec.md §4.1).
func binOpFor(op opcodes.Op) values.BinOp {
	switch op {
	case opcodes.ADD, opcodes.IADD:
		return values.OpAdd
	case opcodes.SUB, opcodes.ISUB:
		return values.OpSub
	case opcodes.MUL, opcodes.IMUL:
		return values.OpMul
	case opcodes.DIV, opcodes.IDIV:
		return values.OpDiv
	case opcodes.MOD, opcodes.IMOD:
		return values.OpMod
	case opcodes.POW, opcodes.IPOW:
		return values.OpPow
	case opcodes.BITAND, opcodes.IBITAND:
		return values.OpBitAnd
	case opcodes.BITOR, opcodes.IBITOR:
		return values.OpBitOr
	case opcodes.BITXOR, opcodes.IBITXOR:
		return values.OpBitXor
	case opcodes.SHIFTL, opcodes.ISHIFTL:
		return values.OpShiftL
	case opcodes.SHIFTR, opcodes.ISHIFTR:
		return values.OpShiftR
	}
	return values.OpAdd
}

func inPlaceBase(op opcodes.Op) opcodes.Op {
	switch op {
	case opcodes.IADD:
		return opcodes.ADD
	case opcodes.ISUB:
		return opcodes.SUB
	case opcodes.IMUL:
		return opcodes.MUL
	case opcodes.IDIV:
		return opcodes.DIV
	case opcodes.IMOD:
		return opcodes.MOD
	case opcodes.IPOW:
		return opcodes.POW
	case opcodes.IBITAND:
		return opcodes.BITAND
	case opcodes.IBITOR:
		return opcodes.BITOR
	case opcodes.IBITXOR:
		return opcodes.BITXOR
	case opcodes.ISHIFTL:
		return opcodes.SHIFTL
	case opcodes.ISHIFTR:
		return opcodes.SHIFTR
	}
	return op
}

// cmpHolds interprets Compare's {-1,0,1} Int result for a given relational
// opcode (spec.md §4.1).
func cmpHolds(op opcodes.Op, c int64) bool {
	switch op {
	case opcodes.LT:
		return c < 0
	case opcodes.GT:
		return c > 0
	case opcodes.LE:
		return c <= 0
	case opcodes.GE:
		return c >= 0
	}
	return false
}

func releaseAll(vs []values.Value) {
	for _, v := range vs {
		v.Release()
	}
}

// excMatches reports whether a staged Exc value's class is-a the named
// catch class, by name (spec.md §7 "catch (ClassName)"): it walks the
// exception's own class and its superclasses and compares each Name with
// className; no class is looked up in Globals or elsewhere.
func excMatches(exc values.Value, className string) bool {
	if exc.Tag != values.TagExc || exc.Obj == nil {
		return false
	}
	for cur := exc.Obj.Class; cur != nil; cur = cur.Super {
		if cur.Name == className {
			return true
		}
	}
	return false
}

// seqGet/seqSet/seqContains/seqApply dispatch through SeqMethods, exactly
// as the class-vtable attribute protocol does for attrs (spec.md §4.1).
func seqGet(obj, idx values.Value) values.Value {
	c := classOfSeq(obj)
	if c == nil || c.SeqMethods.Get == nil {
		return values.Throw(values.TypeExceptionClass, "value does not support indexing")
	}
	return c.SeqMethods.Get(obj, idx)
}

func seqSet(obj, idx, val values.Value) values.Value {
	c := classOfSeq(obj)
	if c == nil || c.SeqMethods.Set == nil {
		return values.Throw(values.TypeExceptionClass, "value does not support index assignment")
	}
	return c.SeqMethods.Set(obj, idx, val)
}

func seqContains(container, item values.Value) values.Value {
	c := classOfSeq(container)
	if c == nil || c.SeqMethods.Contains == nil {
		return values.Throw(values.TypeExceptionClass, "value does not support 'in'")
	}
	return values.Bool(c.SeqMethods.Contains(container, item))
}

func seqApply(obj, item values.Value, inPlace bool) values.Value {
	c := classOfSeq(obj)
	if c == nil {
		return values.Throw(values.TypeExceptionClass, "value does not support '<<'")
	}
	fn := c.SeqMethods.Apply
	if inPlace && c.SeqMethods.IApply != nil {
		fn = c.SeqMethods.IApply
	}
	if fn == nil {
		return values.Throw(values.TypeExceptionClass, "value does not support '<<'")
	}
	return fn(obj, item)
}

func classOfSeq(v values.Value) *values.Class {
	if v.Tag != values.TagObject || v.Obj == nil {
		return nil
	}
	return v.Obj.Class
}

// getIter/iterNext implement GET_ITER/LOOP_ITER's protocol (spec.md §4.5
// "Iteration"): prefer the class's own Iter/IterNext override, falling
// back to the generic index-cursor iterator for anything with SeqMethods.
func getIter(v values.Value) values.Value {
	if c := classOfSeq(v); c != nil && c.Iter != nil {
		return c.Iter(v)
	}
	return values.DefaultIter(v)
}

func iterNext(iter values.Value) values.Value {
	if c := classOfSeq(iter); c != nil && c.IterNext != nil {
		return c.IterNext(iter)
	}
	return values.Throw(values.TypeExceptionClass, "value is not an iterator")
}

// codeRefClass wraps a *codeobj.CodeObject as a transient Value so
// LOAD_CONST of a CT_ENTRY_CODEOBJ constant can sit on the operand stack
// until the matching MAKE_FUNCOBJ/GENERATOR/ACTOR consumes it; it is never
// observable from user code.
var codeRefClass = &values.Class{Name: "<code>"}

func newCodeRef(co *codeobj.CodeObject) values.Value {
	o := values.NewStaticObject(codeRefClass)
	o.Native = co
	return values.FromObject(o)
}

// loadConstRest handles the non-int constant kinds LOAD_CONST's fast path
// (dispatch.go) defers here: float/string/code (spec.md §6).
func loadConstRest(vm *VM, frame *Frame, c codeobj.Const) values.Value {
	switch c.Kind {
	case codeobj.ConstFloat:
		return values.Float(c.F)
	case codeobj.ConstString:
		return values.NewString(c.S)
	case codeobj.ConstCodeObj:
		return newCodeRef(c.Code)
	}
	return values.Null()
}

// makeFuncObj implements MAKE_FUNCOBJ/MAKE_GENERATOR/MAKE_ACTOR (spec.md
// §4.3/§4.5): pop return-hint/param-hints, defaults, and the pre-compiled
// code reference (the reverse of their push order), capture free variables by name
// from the enclosing frame, and build the matching callable Value.
func (vm *VM) makeFuncObj(frame *Frame, operand uint16, kind FuncKind) values.Value {
	nDefaults := int(operand & 0xFF)
	nHints := int(operand >> 8)

	hints := frame.popN(nHints)
	defaults := frame.popN(nDefaults)
	codeRef := frame.pop()
	co := codeRef.Obj.Native.(*codeobj.CodeObject)
	codeRef.Release()

	fo := &FuncObj{Kind: kind, Code: co, Defaults: defaults}

	if len(hints) > 0 && len(co.ParamHints) == 0 {
		resolveHints(co, hints)
	}
	fo.ParamHints = co.ParamHints
	fo.ReturnHint = co.ReturnHint

	for _, name := range co.Symbols.Frees {
		fo.Frees = append(fo.Frees, captureFree(frame, name))
	}

	o := values.NewObject(vm.classForKind(kind), 0)
	o.Native = fo
	return values.FromObject(o)
}

// resolveHints maps the raw hint-name strings pushed by emitFuncLit back
// onto the code object's declared parameters, stamping ParamHints/ReturnHint
// once per CodeObject (spec.md §3).
func resolveHints(co *codeobj.CodeObject, hints []values.Value) {
	idx := 0
	paramHints := make([]*values.Class, co.ArgCount)
	for i := 0; i < co.ArgCount && idx < len(hints); i++ {
		// Hints were pushed only for params that declared one; without the
		// per-param declaration bit at this layer, resolve in declaration
		// order, consuming one hint per remaining slot.
		s, _ := values.AsString(hints[idx])
		if cls := lookupBuiltinClass(s); cls != nil {
			paramHints[i] = cls
			idx++
		}
	}
	co.ParamHints = paramHints
	if idx < len(hints) {
		s, _ := values.AsString(hints[idx])
		co.ReturnHint = lookupBuiltinClass(s)
	}
}

func lookupBuiltinClass(name string) *values.Class {
	switch name {
	case "int":
		return values.IntClass
	case "float":
		return values.FloatClass
	case "bool":
		return values.BoolClass
	case "string":
		return values.StringClass
	case "list":
		return values.ListClass
	case "dict":
		return values.DictClass
	}
	return nil
}

// captureFree implements closures-capture-by-value (spec.md §4.5): search
// the enclosing frame's locals, then its own free variables, by name.
func captureFree(frame *Frame, name string) values.Value {
	for i, n := range frame.Code.Symbols.Locals {
		if n == name && i < len(frame.Locals) {
			return frame.Locals[i].Retain()
		}
	}
	for i, n := range frame.Code.Symbols.Frees {
		if n == name && i < len(frame.Frees) {
			return frame.Frees[i].Retain()
		}
	}
	return values.Null()
}

// dispatchCall implements CALL's calling convention (spec.md §4.3/§4.5):
// pop the callee, then the (name, value) named-argument pairs in reverse,
// then the positional run, and re-enter via callValue.
func (vm *VM) dispatchCall(frame *Frame, operand uint16) (propagate bool, result values.Value) {
	nPos := int(operand & 0xFF)
	nNamed := int(operand >> 8)

	callee := frame.pop()
	named := make(map[string]values.Value, nNamed)
	for i := 0; i < nNamed; i++ {
		val := frame.pop()
		nameVal := frame.pop()
		name, _ := values.AsString(nameVal)
		named[name] = val
		nameVal.Release()
	}
	pos := frame.popN(nPos)

	r := vm.callValue(callee, pos, named)
	callee.Release()
	releaseAll(pos)
	for _, v := range named {
		v.Release()
	}
	return vm.raise(frame, r)
}

// seqExpand implements SEQ_EXPAND (spec.md §6): pop a sequence value and
// push exactly n elements from it, raising SequenceExpandException on an
// arity mismatch.
func (vm *VM) seqExpand(frame *Frame, n int) (propagate bool, result values.Value) {
	v := frame.pop()
	c := classOfSeq(v)
	if c == nil || c.SeqMethods.Len == nil || c.SeqMethods.Get == nil {
		v.Release()
		return vm.raise(frame, values.Throw(values.TypeExceptionClass, "value is not a sequence"))
	}
	length := c.SeqMethods.Len(v)
	if length != n {
		v.Release()
		return vm.raise(frame, values.Throw(values.SequenceExpandExceptionClass,
			"expected a sequence of length "+strconv.Itoa(n)+", got "+strconv.Itoa(length)))
	}
	for i := 0; i < n; i++ {
		frame.push(c.SeqMethods.Get(v, values.Int(int64(i))))
	}
	v.Release()
	return false, values.Value{}
}

// Print implements the PRINT opcode's side effect (spec.md §6); Output
// defaults to stdout but is overridable (e.g. by cmd/rhocvm's REPL or by
// tests capturing output).
func (vm *VM) Print(s string) {
	if vm.Output != nil {
		vm.Output(s)
		return
	}
	fmt.Println(s)
}
