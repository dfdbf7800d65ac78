package vm

import "github.com/rhoc-lang/rhoc/values"

// generatorProxy is the Native payload of a generator-call result: a
// persistent frame plus the VM it resumes in (spec.md §4.5 "Generator
// calls" — generators are persistent-frame coroutines, not goroutines).
// Unlike a plain function call, a generator's frame is never taken from
// the VM's shared frame pool: each live generator instance owns its own.
type generatorProxy struct {
	vm    *VM
	frame *Frame
	done  bool
}

var generatorProxyClass = &values.Class{Name: "GeneratorIterator"}

func init() {
	generatorProxyClass.Iter = func(v values.Value) values.Value { return v }
	generatorProxyClass.IterNext = func(v values.Value) values.Value {
		gp := v.Obj.Native.(*generatorProxy)
		if gp.done {
			return values.IterStop()
		}
		result, suspended := gp.vm.run(gp.frame)
		if !suspended {
			gp.done = true
		}
		return result
	}
}

// makeGeneratorProxy implements MAKE_GENERATOR's Call slot (spec.md
// §4.5): binding arguments allocates the generator's persistent frame but
// does not start running it — the first iternext() call (LOOP_ITER) does,
// per the "resumable on PRODUCE" model.
func (vm *VM) makeGeneratorProxy(callee values.Value, pos []values.Value, named map[string]values.Value) values.Value {
	fo := callee.Obj.Native.(*FuncObj)
	frame := newFrame(fo.Code, vm.Globals)
	frame.IsGenerator = true
	frame.Owned = true

	if err := bindArgs(frame, fo, pos, named); err != nil {
		return values.FromExc(err)
	}
	for i := range fo.Code.Symbols.Frees {
		if i < len(fo.Frees) {
			frame.freeVal(i, fo.Frees[i])
		}
	}

	gp := &generatorProxy{vm: vm, frame: frame}
	o := values.NewObject(generatorProxyClass, 0)
	o.Native = gp
	return values.FromObject(o)
}
