package vm

import (
	"fmt"

	"github.com/rhoc-lang/rhoc/codeobj"
	"github.com/rhoc-lang/rhoc/values"
)

// VM is one evaluator instance: a call stack of Frames plus the per-VM
// callable classes and frame pool that let CALL's generic dispatch
// (spec.md §4.5) re-enter this VM without global state. Each actor owns a
// separate VM and a background thread (spec.md §4.5 Scheduling model);
// the main interpreter thread owns exactly one.
type VM struct {
	frames []*Frame

	framePool map[*codeobj.CodeObject]*Frame

	Globals *values.DictObj

	funcClass      *values.Class
	generatorClass *values.Class
	actorClass     *values.Class

	Importer *Importer
	Profiler *Profiler

	// Output receives PRINT's rendered string (spec.md §6); nil defaults
	// to stdout (see helpers.go Print).
	Output func(string)

	// children are VMs spawned to execute freshly imported modules; kept
	// alive so their global frames survive for the life of this VM
	// (spec.md §4.5 "Import").
	children []*VM

	// actors are actors spawned from this VM, joined at shutdown
	// (spec.md §5 "Cancellation & shutdown").
	actors []*Actor
}

// New builds a VM with a fresh global namespace. importer may be nil for
// a throwaway VM (e.g. the compiler's own sub-evaluations); RunModule and
// IMPORT both tolerate a nil Importer by raising ImportException.
func New(importer *Importer) *VM {
	vm := &VM{
		framePool: make(map[*codeobj.CodeObject]*Frame),
		Globals:   values.NewDict(),
		Importer:  importer,
		Profiler:  NewProfiler(),
	}
	vm.funcClass = vm.buildFuncClass()
	vm.generatorClass = vm.buildGeneratorClass()
	vm.actorClass = vm.buildActorClass()
	return vm
}

// RunModule executes a freshly loaded module's top-level code object to
// completion in a frame and returns the frame's terminal value; the
// module's top-level bindings stay in vm.Globals, from which the importer
// builds the module value's contents (spec.md §4.5 "Import").
// A fatal internal error surfaces as the Value's TagError case, per
// spec.md §7's "two categories flow through the same Value channel".
func (vm *VM) RunModule(co *codeobj.CodeObject) values.Value {
	frame := vm.acquireFrame(co)
	vm.frames = append(vm.frames, frame)
	result := vm.runFrame(frame)
	vm.frames = vm.frames[:len(vm.frames)-1]
	vm.releaseFrame(frame)
	return result
}

// acquireFrame implements spec.md §4.5 "Frame acquisition": take the
// CodeObject's persisted frame if unowned, else allocate a fresh one.
func (vm *VM) acquireFrame(co *codeobj.CodeObject) *Frame {
	if f, ok := vm.framePool[co]; ok && !f.Owned {
		f.reset()
		f.Owned = true
		return f
	}
	f := newFrame(co, vm.Globals)
	f.Owned = true
	if _, exists := vm.framePool[co]; !exists {
		vm.framePool[co] = f
	}
	return f
}

// releaseFrame re-attaches a non-persistent frame to its code object's
// empty slot, or lets it be garbage collected (spec.md §4.5).
func (vm *VM) releaseFrame(f *Frame) {
	f.Owned = false
	if vm.framePool[f.Code] == nil {
		vm.framePool[f.Code] = f
	}
}

// callValue is the uniform call entry point the CALL opcode uses: any
// callable Value carries a Class with a Call slot (spec.md §4.5 "Calling
// convention").
func (vm *VM) callValue(callee values.Value, pos []values.Value, named map[string]values.Value) values.Value {
	if callee.Tag != values.TagObject || callee.Obj == nil || callee.Obj.Class.Call == nil {
		return values.Throw(values.TypeExceptionClass, "value is not callable")
	}
	return callee.Obj.Class.Call(callee, pos, named)
}

// callUserFunc implements the user-function calling convention of
// spec.md §4.5: validate/bind positional, named, and default arguments,
// enforce type hints, push a frame, re-enter the dispatch loop, and
// return RETURN's value (or propagate an exception/error).
func (vm *VM) callUserFunc(callee values.Value, pos []values.Value, named map[string]values.Value) values.Value {
	fo := callee.Obj.Native.(*FuncObj)
	frame := vm.acquireFrame(fo.Code)

	if err := bindArgs(frame, fo, pos, named); err != nil {
		vm.releaseFrame(frame)
		return values.FromExc(err)
	}

	frees := fo.Code.Symbols.Frees
	for i, name := range frees {
		_ = name
		if i < len(fo.Frees) {
			frame.freeVal(i, fo.Frees[i])
		}
	}

	vm.frames = append(vm.frames, frame)
	result := vm.runFrame(frame)
	vm.frames = vm.frames[:len(vm.frames)-1]
	vm.releaseFrame(frame)
	return result
}

// bindArgs validates arity and binds positional/named/default arguments
// into the frame's first ArgCount locals, then checks type hints
// (spec.md §4.5 "Calling convention", §6).
func bindArgs(frame *Frame, fo *FuncObj, pos []values.Value, named map[string]values.Value) *values.Object {
	argCount := fo.Code.ArgCount
	names := fo.Code.Symbols.Locals
	nRequired := argCount - len(fo.Defaults)

	for i := 0; i < argCount && i < len(pos); i++ {
		frame.Locals[i] = pos[i].Retain()
	}
	for i := len(pos); i < argCount; i++ {
		pname := ""
		if i < len(names) {
			pname = names[i]
		}
		if v, ok := named[pname]; ok {
			frame.Locals[i] = v.Retain()
			continue
		}
		defIdx := i - nRequired
		if defIdx >= 0 && defIdx < len(fo.Defaults) {
			frame.Locals[i] = fo.Defaults[defIdx].Retain()
			continue
		}
		return values.NewExceptionObject(values.TypeExceptionClass,
			fmt.Sprintf("%s() missing required argument: %q", fo.Code.Name, pname))
	}
	if len(pos) > argCount {
		return values.NewExceptionObject(values.TypeExceptionClass,
			fmt.Sprintf("%s() takes %d positional arguments but %d were given", fo.Code.Name, argCount, len(pos)))
	}

	for i, hint := range fo.ParamHints {
		if hint == nil || i >= argCount {
			continue
		}
		v := frame.Locals[i]
		if v.Tag == values.TagObject && v.Obj != nil && !v.Obj.Class.IsA(hint) {
			return values.NewExceptionObject(values.TypeExceptionClass,
				fmt.Sprintf("argument %q requires type %s", names[i], hint.Name))
		}
	}
	return nil
}
