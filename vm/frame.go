// Package vm implements C5, the frame evaluator: a stack-based dispatch
// loop over a CodeObject's bytecode, plus the call/generator/actor/import
// machinery that drives it (spec.md §4.5, §5).
package vm

import (
	"github.com/rhoc-lang/rhoc/codeobj"
	"github.com/rhoc-lang/rhoc/values"
)

// handler is one entry of a frame's exception-handler stack, pushed by
// TRY_BEGIN and popped either by TRY_END or by exception propagation
// (spec.md §4.5).
type handler struct {
	purgeWall  int // value-stack depth to truncate to on catch
	handlerPos int // bytecode offset of the catch sequence
	tryEnd     int // bytecode offset just past the protected region
}

// Frame is one activation of a CodeObject (spec.md §3, §4.5). Frames are
// persisted on their CodeObject and reused across non-recursive calls
// (acquireFrame/releaseFrame in vm.go); Owned tracks whether this instance
// is currently on loan to a live call.
type Frame struct {
	Code *codeobj.CodeObject

	Locals   []values.Value
	Stack    []values.Value
	stackTop int

	Handlers []handler
	Globals  *values.DictObj
	Frees    []values.Value

	pos int // next instruction's byte offset

	Owned bool

	// Mailbox is non-nil only for an actor's persistent frame (spec.md §4.5.4).
	Mailbox *Mailbox

	// IsGenerator marks a generator body's frame: its RETURN converts to
	// the IterStop sentinel instead of surfacing the returned value
	// (spec.md §4.5 "Generator calls").
	IsGenerator bool

	// genDone is cleared when the frame is reset; nothing else reads or
	// sets it. Generator completion is tracked by generatorProxy.done
	// (spec.md §4.5 "Generator calls").
	genDone bool
}

func newFrame(code *codeobj.CodeObject, globals *values.DictObj) *Frame {
	return &Frame{
		Code:    code,
		Locals:  make([]values.Value, len(code.Symbols.Locals)),
		Stack:   make([]values.Value, code.StackDepth+4),
		Globals: globals,
		Frees:   make([]values.Value, len(code.Symbols.Frees)),
	}
}

// freeVal installs a captured free-variable value (spec.md §4.5 closures
// capture by value at MAKE_FUNCOBJ time).
func (f *Frame) freeVal(ordinal int, v values.Value) {
	if ordinal >= len(f.Frees) {
		return
	}
	f.Frees[ordinal] = v.Retain()
}

func (f *Frame) push(v values.Value) {
	if f.stackTop >= len(f.Stack) {
		f.Stack = append(f.Stack, v)
	} else {
		f.Stack[f.stackTop] = v
	}
	f.stackTop++
}

func (f *Frame) pop() values.Value {
	f.stackTop--
	v := f.Stack[f.stackTop]
	f.Stack[f.stackTop] = values.Value{}
	return v
}

func (f *Frame) top() values.Value { return f.Stack[f.stackTop-1] }

// popN pops the top n values in push order (oldest first), for opcodes
// like MAKE_LIST/MAKE_DICT/CALL that collect a run of operands.
func (f *Frame) popN(n int) []values.Value {
	out := make([]values.Value, n)
	for i := n - 1; i >= 0; i-- {
		out[i] = f.pop()
	}
	return out
}

// truncateTo releases every slot from the current stack top down to depth,
// per spec.md §5's refcounting rule for handler unwinding.
func (f *Frame) truncateTo(depth int) {
	for f.stackTop > depth {
		f.pop().Release()
	}
}

// reset clears a frame for reuse as a fresh activation (spec.md §4.5
// "Frame acquisition"; also used to recycle a generator/actor frame after
// it terminates).
func (f *Frame) reset() {
	for i := range f.Locals {
		f.Locals[i].Release()
		f.Locals[i] = values.Value{}
	}
	for i := range f.Frees {
		f.Frees[i].Release()
		f.Frees[i] = values.Value{}
	}
	f.truncateTo(0)
	f.Handlers = f.Handlers[:0]
	f.pos = 0
	f.genDone = false
}
