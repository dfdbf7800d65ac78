package values

import "sync/atomic"

// InfiniteRefcount is the sentinel refcount for statically allocated
// objects (classes, singletons, built-in modules) per spec.md §3.
const InfiniteRefcount = -1

// Object is any heap value: it carries a pointer to its Class plus a
// refcount (spec.md §3).
type Object struct {
	Class    *Class
	refcount int64

	// Fields is the member-descriptor-addressed storage for plain
	// instances. Built-in classes overlay richer native payloads via
	// Native (e.g. *List, *Dict, *Mailbox, *Module).
	Fields []Value
	Native interface{}

	// ExcMessage is set for exception instances; used by Value.String
	// and by traceback rendering.
	ExcMessage string
	Traceback  []TraceEntry
}

// TraceEntry is one (code-object name, line number) pair in a propagating
// error/exception's traceback (spec.md §3, Exception semantics in §4.5).
type TraceEntry struct {
	CodeName string
	Line     int
}

// NewObject allocates an instance with refcount 1 (spec.md §4.1 Lifecycle).
func NewObject(class *Class, nFields int) *Object {
	o := &Object{Class: class, refcount: 1}
	if nFields > 0 {
		o.Fields = make([]Value, nFields)
	}
	return o
}

// NewStaticObject allocates a statically-allocated object (refcount ∞):
// classes, singletons, built-in modules.
func NewStaticObject(class *Class) *Object {
	return &Object{Class: class, refcount: InfiniteRefcount}
}

func (o *Object) Retain() {
	if o == nil || o.refcount == InfiniteRefcount {
		return
	}
	atomic.AddInt64(&o.refcount, 1)
}

func (o *Object) Release() {
	if o == nil || o.refcount == InfiniteRefcount {
		return
	}
	if atomic.AddInt64(&o.refcount, -1) == 0 {
		if o.Class != nil && o.Class.Del != nil {
			o.Class.Del(o)
		}
	}
}

func (o *Object) Refcount() int64 { return o.refcount }
