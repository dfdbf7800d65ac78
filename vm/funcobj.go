package vm

import (
	"github.com/rhoc-lang/rhoc/codeobj"
	"github.com/rhoc-lang/rhoc/values"
)

// FuncKind distinguishes the three callable shapes MAKE_FUNCOBJ's family
// produces (spec.md §4.3/§4.5): a plain function/lambda runs straight
// through callUserFunc; a generator instead returns an iterator proxy; an
// actor instead spawns its own VM and thread.
type FuncKind byte

const (
	KindFunction FuncKind = iota
	KindGenerator
	KindActor
)

// FuncObj is the Native payload of a function/lambda value (spec.md §3):
// the compiled body plus whatever free variables its enclosing scope
// captured for it at MAKE_FUNCOBJ time (spec.md §4.5 closures capture by
// value — there is no STORE_NAME opcode, so Frees are read-only).
type FuncObj struct {
	Kind FuncKind
	Code *codeobj.CodeObject

	Defaults   []values.Value
	ParamHints []*values.Class
	ReturnHint *values.Class
	Frees      []values.Value
}

// funcClassFor returns the per-VM Class shared by every function/lambda
// value this VM creates; its Call slot closes over vm so CALL's generic
// class.call(...) dispatch (spec.md §4.5) can re-enter this VM's dispatch
// loop recursively without any global mutable state.
func (vm *VM) buildFuncClass() *values.Class {
	c := &values.Class{Name: "Function"}
	c.Call = func(callee values.Value, pos []values.Value, named map[string]values.Value) values.Value {
		return vm.callUserFunc(callee, pos, named)
	}
	c.Str = func(v values.Value) string {
		fo := v.Obj.Native.(*FuncObj)
		return "<function " + fo.Code.Name + ">"
	}
	return c
}

func (vm *VM) buildGeneratorClass() *values.Class {
	c := &values.Class{Name: "Generator"}
	c.Call = func(callee values.Value, pos []values.Value, named map[string]values.Value) values.Value {
		return vm.makeGeneratorProxy(callee, pos, named)
	}
	c.Str = func(v values.Value) string { return "<generator>" }
	return c
}

func (vm *VM) buildActorClass() *values.Class {
	c := &values.Class{Name: "Actor"}
	c.Call = func(callee values.Value, pos []values.Value, named map[string]values.Value) values.Value {
		return vm.spawnActor(callee, pos, named)
	}
	c.Str = func(v values.Value) string { return "<actor>" }
	return c
}

// classForKind picks the Class a freshly MAKE_FUNCOBJ/GENERATOR/ACTOR'd
// value should carry.
func (vm *VM) classForKind(kind FuncKind) *values.Class {
	switch kind {
	case KindGenerator:
		return vm.generatorClass
	case KindActor:
		return vm.actorClass
	default:
		return vm.funcClass
	}
}
