package vm

import "github.com/rhoc-lang/rhoc/values"

// ReachableCount walks every Value reachable from the VM's live frames
// (locals, value stack, free variables) through List/Dict containers and
// returns how many distinct heap objects it found. The refcounting scheme
// of spec.md §3 reclaims acyclic garbage on its own; this is a mark-only
// diagnostic a REPL's `gc.stats()` builtin can use to flag a growing live
// set, not a collector (SPEC_FULL §12 supplemented feature — the spec's
// Non-goals exclude a tracing collector), grounded on the teacher's
// `vm/class_manager.go` object-table bookkeeping.
func (vm *VM) ReachableCount() int {
	seen := make(map[*values.Object]bool)
	for _, f := range vm.frames {
		markFrame(f, seen)
	}
	for _, f := range vm.framePool {
		if !f.Owned {
			markFrame(f, seen)
		}
	}
	return len(seen)
}

func markFrame(f *Frame, seen map[*values.Object]bool) {
	for _, v := range f.Locals {
		markValue(v, seen)
	}
	for i := 0; i < f.stackTop; i++ {
		markValue(f.Stack[i], seen)
	}
	for _, v := range f.Frees {
		markValue(v, seen)
	}
}

func markValue(v values.Value, seen map[*values.Object]bool) {
	if v.Tag != values.TagObject && v.Tag != values.TagExc {
		return
	}
	if v.Obj == nil || seen[v.Obj] {
		return
	}
	seen[v.Obj] = true
	if list, ok := values.AsList(v); ok {
		for _, item := range list.Items {
			markValue(item, seen)
		}
	}
	if dict, ok := values.AsDict(v); ok {
		for _, k := range dict.Keys {
			if item, ok := dict.Get(k); ok {
				markValue(item, seen)
			}
		}
	}
}
