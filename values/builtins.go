package values

import (
	"fmt"
	"strings"
)

// IntClass/FloatClass/BoolClass back the Int/Float/Bool Value tags with a
// vtable so BinaryOp's generic dispatch (spec.md §4.1) needs no special
// casing for primitive numeric types.
var (
	IntClass   *Class
	FloatClass *Class
	BoolClass  *Class
)

func init() {
	IntClass = &Class{Name: "Int"}
	IntClass.NumMethods = NumberMethods{
		Plus:  func(v Value) Value { return v },
		Minus: func(v Value) Value { return Int(-v.I) },
		Abs:   func(v Value) Value { if v.I < 0 { return Int(-v.I) }; return v },
		Add: func(a, b Value) Value {
			switch b.Tag {
			case TagInt:
				return Int(a.I + b.I)
			case TagFloat:
				return Float(float64(a.I) + b.F)
			}
			return unsupported("+")
		},
		Sub: func(a, b Value) Value {
			switch b.Tag {
			case TagInt:
				return Int(a.I - b.I)
			case TagFloat:
				return Float(float64(a.I) - b.F)
			}
			return unsupported("-")
		},
		Mul: func(a, b Value) Value {
			switch b.Tag {
			case TagInt:
				return Int(a.I * b.I)
			case TagFloat:
				return Float(float64(a.I) * b.F)
			}
			return unsupported("*")
		},
		Div: func(a, b Value) Value {
			switch b.Tag {
			case TagInt:
				if b.I == 0 {
					return divByZero()
				}
				return Float(float64(a.I) / float64(b.I))
			case TagFloat:
				if b.F == 0 {
					return divByZero()
				}
				return Float(float64(a.I) / b.F)
			}
			return unsupported("/")
		},
		Mod: func(a, b Value) Value {
			if b.Tag != TagInt {
				return unsupported("%")
			}
			if b.I == 0 {
				return divByZero()
			}
			return Int(a.I % b.I)
		},
		Pow: func(a, b Value) Value {
			if b.Tag != TagInt || b.I < 0 {
				return unsupported("**")
			}
			r := int64(1)
			for i := int64(0); i < b.I; i++ {
				r *= a.I
			}
			return Int(r)
		},
		BitAnd: func(a, b Value) Value { if b.Tag != TagInt { return unsupported("&") }; return Int(a.I & b.I) },
		BitOr:  func(a, b Value) Value { if b.Tag != TagInt { return unsupported("|") }; return Int(a.I | b.I) },
		BitXor: func(a, b Value) Value { if b.Tag != TagInt { return unsupported("^") }; return Int(a.I ^ b.I) },
		ShiftL: func(a, b Value) Value { if b.Tag != TagInt { return unsupported("<<") }; return Int(a.I << uint(b.I)) },
		ShiftR: func(a, b Value) Value { if b.Tag != TagInt { return unsupported(">>") }; return Int(a.I >> uint(b.I)) },
		BitNot: func(v Value) Value { return Int(^v.I) },
		Nonzero: func(v Value) bool { return v.I != 0 },
	}
	IntClass.Eq = func(a, b Value) Value {
		if b.Tag == TagInt {
			return Bool(a.I == b.I)
		}
		if b.Tag == TagFloat {
			return Bool(float64(a.I) == b.F)
		}
		return Bool(false)
	}
	IntClass.Cmp = func(a, b Value) Value {
		var bf float64
		switch b.Tag {
		case TagInt:
			bf = float64(b.I)
		case TagFloat:
			bf = b.F
		default:
			return unsupported("cmp")
		}
		af := float64(a.I)
		switch {
		case af < bf:
			return Int(-1)
		case af > bf:
			return Int(1)
		default:
			return Int(0)
		}
	}
	IntClass.Hash = func(v Value) Value { return Int(v.I) }
	IntClass.Str = func(v Value) string { return v.String() }

	FloatClass = &Class{Name: "Float"}
	FloatClass.NumMethods = NumberMethods{
		Plus:  func(v Value) Value { return v },
		Minus: func(v Value) Value { return Float(-v.F) },
		Abs:   func(v Value) Value { if v.F < 0 { return Float(-v.F) }; return v },
		Add: func(a, b Value) Value {
			if bf, ok := toFloat(b); ok {
				return Float(a.F + bf)
			}
			return unsupported("+")
		},
		Sub: func(a, b Value) Value {
			if bf, ok := toFloat(b); ok {
				return Float(a.F - bf)
			}
			return unsupported("-")
		},
		Mul: func(a, b Value) Value {
			if bf, ok := toFloat(b); ok {
				return Float(a.F * bf)
			}
			return unsupported("*")
		},
		Div: func(a, b Value) Value {
			if bf, ok := toFloat(b); ok {
				if bf == 0 {
					return divByZero()
				}
				return Float(a.F / bf)
			}
			return unsupported("/")
		},
		Nonzero: func(v Value) bool { return v.F != 0 },
	}
	FloatClass.Eq = func(a, b Value) Value {
		if bf, ok := toFloat(b); ok {
			return Bool(a.F == bf)
		}
		return Bool(false)
	}
	FloatClass.Cmp = func(a, b Value) Value {
		bf, ok := toFloat(b)
		if !ok {
			return unsupported("cmp")
		}
		switch {
		case a.F < bf:
			return Int(-1)
		case a.F > bf:
			return Int(1)
		default:
			return Int(0)
		}
	}
	FloatClass.Str = func(v Value) string { return v.String() }

	BoolClass = &Class{Name: "Bool"}
	BoolClass.NumMethods.Nonzero = func(v Value) bool { return v.B }
	BoolClass.Eq = func(a, b Value) Value {
		if b.Tag == TagBool {
			return Bool(a.B == b.B)
		}
		return Bool(false)
	}
	BoolClass.Str = func(v Value) string { return v.String() }
}

func toFloat(v Value) (float64, bool) {
	switch v.Tag {
	case TagInt:
		return float64(v.I), true
	case TagFloat:
		return v.F, true
	}
	return 0, false
}

// StringClass/StringObj back rhoc string literals: an immutable Go string
// wrapped in an Object's Native field, with sequence (len/get/concat) and
// number (+ as concatenation) vtables.
var StringClass *Class

type StringObj struct{ S string }

func NewString(s string) Value {
	o := NewObject(StringClass, 0)
	o.Native = &StringObj{S: s}
	return FromObject(o)
}

func AsString(v Value) (string, bool) {
	if v.Tag != TagObject || v.Obj == nil {
		return "", false
	}
	so, ok := v.Obj.Native.(*StringObj)
	if !ok {
		return "", false
	}
	return so.S, true
}

func init() {
	StringClass = &Class{Name: "String"}
	StringClass.NumMethods.Add = func(a, b Value) Value {
		as, _ := AsString(a)
		bs, ok := AsString(b)
		if !ok {
			return unsupported("+")
		}
		return NewString(as + bs)
	}
	StringClass.Eq = func(a, b Value) Value {
		as, _ := AsString(a)
		bs, ok := AsString(b)
		return Bool(ok && as == bs)
	}
	StringClass.Cmp = func(a, b Value) Value {
		as, _ := AsString(a)
		bs, ok := AsString(b)
		if !ok {
			return unsupported("cmp")
		}
		return Int(int64(strings.Compare(as, bs)))
	}
	StringClass.Str = func(v Value) string { s, _ := AsString(v); return s }
	StringClass.SeqMethods.Len = func(v Value) int { s, _ := AsString(v); return len([]rune(s)) }
	StringClass.SeqMethods.Get = func(v, idx Value) Value {
		s, _ := AsString(v)
		r := []rune(s)
		i := idx.I
		if i < 0 {
			i += int64(len(r))
		}
		if i < 0 || i >= int64(len(r)) {
			return FromExc(NewExceptionObject(IndexExceptionClass, "string index out of range"))
		}
		return NewString(string(r[i]))
	}
	StringClass.SeqMethods.Contains = func(v, sub Value) bool {
		s, _ := AsString(v)
		subs, _ := AsString(sub)
		return strings.Contains(s, subs)
	}
}

// ListClass/ListObj implement a mutable, growable sequence.
var ListClass *Class

type ListObj struct{ Items []Value }

func NewList(items []Value) Value {
	o := NewObject(ListClass, 0)
	cp := make([]Value, len(items))
	for i, it := range items {
		cp[i] = it.Retain()
	}
	o.Native = &ListObj{Items: cp}
	return FromObject(o)
}

func AsList(v Value) (*ListObj, bool) {
	if v.Tag != TagObject || v.Obj == nil {
		return nil, false
	}
	l, ok := v.Obj.Native.(*ListObj)
	return l, ok
}

func init() {
	ListClass = &Class{Name: "List"}
	ListClass.Del = func(o *Object) {
		if l, ok := o.Native.(*ListObj); ok {
			for _, it := range l.Items {
				it.Release()
			}
		}
	}
	ListClass.Str = func(v Value) string {
		l, _ := AsList(v)
		parts := make([]string, len(l.Items))
		for i, it := range l.Items {
			parts[i] = it.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	ListClass.SeqMethods.Len = func(v Value) int { l, _ := AsList(v); return len(l.Items) }
	ListClass.SeqMethods.Get = func(v, idx Value) Value {
		l, _ := AsList(v)
		i := idx.I
		if i < 0 {
			i += int64(len(l.Items))
		}
		if i < 0 || i >= int64(len(l.Items)) {
			return FromExc(NewExceptionObject(IndexExceptionClass, "list index out of range"))
		}
		return l.Items[i].Retain()
	}
	// Apply/IApply back the `<<` append operator (spec.md §6 opcode table
	// lists APPLY/IAPPLY with no further detail beyond "side effect").
	ListClass.SeqMethods.Apply = func(v, item Value) Value {
		l, _ := AsList(v)
		l.Items = append(l.Items, item.Retain())
		return v
	}
	ListClass.SeqMethods.IApply = ListClass.SeqMethods.Apply
	ListClass.SeqMethods.Set = func(v, idx, val Value) Value {
		l, _ := AsList(v)
		i := idx.I
		if i < 0 {
			i += int64(len(l.Items))
		}
		if i < 0 || i >= int64(len(l.Items)) {
			return FromExc(NewExceptionObject(IndexExceptionClass, "list index out of range"))
		}
		l.Items[i].Release()
		l.Items[i] = val.Retain()
		return Null()
	}
}

// DictClass/DictObj implement a string-keyed map used both for user dicts
// and Module.contents (spec.md §3 Module).
var DictClass *Class

type DictObj struct {
	Keys   []string
	Values map[string]Value
}

func NewDict() *DictObj { return &DictObj{Values: make(map[string]Value)} }

func (d *DictObj) Set(key string, v Value) {
	if _, exists := d.Values[key]; !exists {
		d.Keys = append(d.Keys, key)
	} else {
		d.Values[key].Release()
	}
	d.Values[key] = v.Retain()
}

func (d *DictObj) Get(key string) (Value, bool) {
	v, ok := d.Values[key]
	return v, ok
}

func NewDictValue(d *DictObj) Value {
	o := NewObject(DictClass, 0)
	o.Native = d
	return FromObject(o)
}

func AsDict(v Value) (*DictObj, bool) {
	if v.Tag != TagObject || v.Obj == nil {
		return nil, false
	}
	d, ok := v.Obj.Native.(*DictObj)
	return d, ok
}

func init() {
	DictClass = &Class{Name: "Dict"}
	DictClass.Del = func(o *Object) {
		if d, ok := o.Native.(*DictObj); ok {
			for _, v := range d.Values {
				v.Release()
			}
		}
	}
	DictClass.Str = func(v Value) string {
		d, _ := AsDict(v)
		parts := make([]string, 0, len(d.Keys))
		for _, k := range d.Keys {
			parts = append(parts, fmt.Sprintf("%q: %s", k, d.Values[k].String()))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	DictClass.SeqMethods.Len = func(v Value) int { d, _ := AsDict(v); return len(d.Keys) }
	DictClass.SeqMethods.Contains = func(v, key Value) bool {
		d, _ := AsDict(v)
		ks, _ := AsString(key)
		_, ok := d.Values[ks]
		return ok
	}
	DictClass.SeqMethods.Get = func(v, key Value) Value {
		d, _ := AsDict(v)
		ks, ok := AsString(key)
		if !ok {
			return FromExc(NewExceptionObject(TypeExceptionClass, "dict keys must be strings"))
		}
		val, ok := d.Get(ks)
		if !ok {
			return FromExc(NewExceptionObject(IndexExceptionClass, "no such key: "+ks))
		}
		return val.Retain()
	}
	DictClass.SeqMethods.Set = func(v, key, val Value) Value {
		d, _ := AsDict(v)
		ks, ok := AsString(key)
		if !ok {
			return FromExc(NewExceptionObject(TypeExceptionClass, "dict keys must be strings"))
		}
		d.Set(ks, val)
		return Null()
	}
	// Iterating a dict walks its keys in insertion order (spec.md §4.3
	// for-loops); values are reached via indexing inside the loop body.
	DictClass.Iter = func(v Value) Value {
		d, _ := AsDict(v)
		o := NewObject(dictKeyIterClass, 0)
		o.Native = &dictKeyIterObj{dict: v.Retain(), keys: d.Keys}
		return FromObject(o)
	}
}

// TupleClass/TupleObj implement an immutable, fixed-length sequence
// (spec.md §4.1 MAKE_TUPLE), grounded on the original's tupleobject.c:
// NewTuple retains each element it copies into the tuple, and
// the class wires no SeqMethods.Set, so SET_INDEX falls through to
// seqSet's "does not support index assignment" TypeException.
var TupleClass *Class

type TupleObj struct{ Items []Value }

func NewTuple(items []Value) Value {
	o := NewObject(TupleClass, 0)
	cp := make([]Value, len(items))
	for i, it := range items {
		cp[i] = it.Retain()
	}
	o.Native = &TupleObj{Items: cp}
	return FromObject(o)
}

func AsTuple(v Value) (*TupleObj, bool) {
	if v.Tag != TagObject || v.Obj == nil {
		return nil, false
	}
	t, ok := v.Obj.Native.(*TupleObj)
	return t, ok
}

func init() {
	TupleClass = &Class{Name: "Tuple"}
	TupleClass.Del = func(o *Object) {
		if t, ok := o.Native.(*TupleObj); ok {
			for _, it := range t.Items {
				it.Release()
			}
		}
	}
	TupleClass.Str = func(v Value) string {
		t, _ := AsTuple(v)
		if len(t.Items) == 0 {
			return "()"
		}
		parts := make([]string, len(t.Items))
		for i, it := range t.Items {
			parts[i] = it.String()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	}
	TupleClass.Eq = func(a, b Value) Value {
		bt, ok := AsTuple(b)
		if !ok {
			return Bool(false)
		}
		at, _ := AsTuple(a)
		if len(at.Items) != len(bt.Items) {
			return Bool(false)
		}
		for i := range at.Items {
			if !Equal(at.Items[i], bt.Items[i]).Nonzero() {
				return Bool(false)
			}
		}
		return Bool(true)
	}
	TupleClass.SeqMethods.Len = func(v Value) int { t, _ := AsTuple(v); return len(t.Items) }
	TupleClass.SeqMethods.Get = func(v, idx Value) Value {
		t, _ := AsTuple(v)
		if idx.Tag != TagInt {
			return Throw(TypeExceptionClass, "tuple indices must be integers")
		}
		i := idx.I
		if i < 0 {
			i += int64(len(t.Items))
		}
		if i < 0 || i >= int64(len(t.Items)) {
			return Throw(IndexExceptionClass, "tuple index out of range")
		}
		return t.Items[i].Retain()
	}
	// No Set: tuples are immutable (original tupleobject.c's seq_methods
	// has no .set slot), so SET_INDEX's seqSet dispatch rejects it.
}

// SetClass/SetObj implement a deduplicated, unordered collection (spec.md
// §4.1 MAKE_SET), grounded on the original's setobject.c: add rejects a
// value already eq to a stored element instead of appending a duplicate.
var SetClass *Class

type SetObj struct{ Items []Value }

// NewSet builds a Set from MAKE_SET's popped stack items, deduplicating by
// Equal exactly as rho_set_add refuses an element already `eq` to one on
// file (setobject.c's per-bucket eq scan, simplified here to a linear scan
// since rhoc sets are expected to stay small).
func NewSet(items []Value) Value {
	o := NewObject(SetClass, 0)
	s := &SetObj{}
	for _, it := range items {
		s.add(it)
	}
	o.Native = s
	return FromObject(o)
}

func (s *SetObj) add(v Value) bool {
	for _, existing := range s.Items {
		if Equal(existing, v).Nonzero() {
			return false
		}
	}
	s.Items = append(s.Items, v.Retain())
	return true
}

func (s *SetObj) contains(v Value) bool {
	for _, existing := range s.Items {
		if Equal(existing, v).Nonzero() {
			return true
		}
	}
	return false
}

func AsSet(v Value) (*SetObj, bool) {
	if v.Tag != TagObject || v.Obj == nil {
		return nil, false
	}
	s, ok := v.Obj.Native.(*SetObj)
	return s, ok
}

func init() {
	SetClass = &Class{Name: "Set"}
	SetClass.Del = func(o *Object) {
		if s, ok := o.Native.(*SetObj); ok {
			for _, it := range s.Items {
				it.Release()
			}
		}
	}
	SetClass.Str = func(v Value) string {
		s, _ := AsSet(v)
		if len(s.Items) == 0 {
			return "{}"
		}
		parts := make([]string, len(s.Items))
		for i, it := range s.Items {
			parts[i] = it.String()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	SetClass.SeqMethods.Len = func(v Value) int { s, _ := AsSet(v); return len(s.Items) }
	SetClass.SeqMethods.Contains = func(v, item Value) bool {
		s, _ := AsSet(v)
		return s.contains(item)
	}
	// Apply backs `<<` as set-add (mirrors List's append slot); adding an
	// already-present element is a silent no-op, as rho_set_add reports via
	// its boolean return rather than raising.
	SetClass.SeqMethods.Apply = func(v, item Value) Value {
		s, _ := AsSet(v)
		s.add(item)
		return v
	}
	SetClass.SeqMethods.IApply = SetClass.SeqMethods.Apply
	// No Get/Set: sets are unordered and indexed only via 'in' (Contains).
}

// ModuleClass wraps a DictObj with the attribute protocol `import`'s result
// needs (spec.md §4.5 "math.pi" via LOAD_ATTR), grounded on the original's
// module.c: attr_get reads straight from the module's contents dict instead
// of falling through to the member/method dictionary DictClass relies on,
// and attr_set is rejected outright, matching module_attr_set's
// "cannot re-assign module attributes".
var ModuleClass *Class

func NewModuleValue(d *DictObj) Value {
	o := NewObject(ModuleClass, 0)
	o.Native = d
	return FromObject(o)
}

func init() {
	ModuleClass = &Class{Name: "Module"}
	ModuleClass.Del = DictClass.Del
	ModuleClass.Str = func(v Value) string {
		d, _ := AsDict(v)
		return "<module, " + fmt.Sprint(len(d.Keys)) + " exports>"
	}
	ModuleClass.SeqMethods = DictClass.SeqMethods
	ModuleClass.AttrGet = func(self Value, name string) Value {
		d, _ := AsDict(self)
		v, ok := d.Get(name)
		if !ok {
			return Throw(AttributeExceptionClass, "no such attribute: "+name)
		}
		return v.Retain()
	}
	ModuleClass.AttrSet = func(self Value, name string, v Value) Value {
		return Throw(AttributeExceptionClass, "cannot re-assign module attributes")
	}
}

type dictKeyIterObj struct {
	dict Value
	keys []string
	idx  int
}

var dictKeyIterClass *Class

func init() {
	dictKeyIterClass = &Class{Name: "DictKeyIterator"}
	dictKeyIterClass.Del = func(o *Object) { o.Native.(*dictKeyIterObj).dict.Release() }
	dictKeyIterClass.IterNext = func(v Value) Value {
		it := v.Obj.Native.(*dictKeyIterObj)
		if it.idx >= len(it.keys) {
			return IterStop()
		}
		k := it.keys[it.idx]
		it.idx++
		return NewString(k)
	}
}

// RangeClass/RangeObj is the Value produced by MAKE_RANGE and consumed by
// GET_ITER/LOOP_ITER (spec.md §4.3).
var RangeClass *Class

type RangeObj struct {
	Start, Stop, Step, Cur int64
}

func NewRange(start, stop, step int64) Value {
	o := NewObject(RangeClass, 0)
	o.Native = &RangeObj{Start: start, Stop: stop, Step: step, Cur: start}
	return FromObject(o)
}

func init() {
	RangeClass = &Class{Name: "Range"}
	RangeClass.Str = func(v Value) string {
		r := v.Obj.Native.(*RangeObj)
		return fmt.Sprintf("range(%d, %d, %d)", r.Start, r.Stop, r.Step)
	}
}

// IterStopClass backs the singleton LOAD_ITER_STOP pushes: the sentinel a
// generator's implicit RETURN and an exhausted iterator's IterNext both
// produce (spec.md §4.3/§4.5). It carries no payload, only identity.
var IterStopClass = &Class{Name: "IterStop"}

var iterStopSingleton = NewStaticObject(IterStopClass)

func IterStop() Value { return FromObject(iterStopSingleton) }

func IsIterStop(v Value) bool {
	return v.Tag == TagObject && v.Obj == iterStopSingleton
}

// seqIterObj is the default GET_ITER result for any type whose Class
// exposes SeqMethods.Len/Get and no Iter of its own (List, String, Tuple) —
// a plain index cursor over the source value (spec.md §4.3 for-loops).
type seqIterObj struct {
	Source Value
	Idx    int
}

var SeqIterClass *Class

func init() {
	SeqIterClass = &Class{Name: "Iterator"}
	SeqIterClass.Del = func(o *Object) {
		it := o.Native.(*seqIterObj)
		it.Source.Release()
	}
	SeqIterClass.IterNext = func(v Value) Value {
		it := v.Obj.Native.(*seqIterObj)
		src := it.Source
		n := src.Obj.Class.SeqMethods.Len(src)
		if it.Idx >= n {
			return IterStop()
		}
		item := src.Obj.Class.SeqMethods.Get(src, Int(int64(it.Idx)))
		it.Idx++
		return item
	}
}

func newSeqIterator(source Value) Value {
	o := NewObject(SeqIterClass, 0)
	o.Native = &seqIterObj{Source: source.Retain()}
	return FromObject(o)
}

// DefaultIter builds the fallback index-cursor iterator GET_ITER uses for
// any class that declares SeqMethods.Len/Get but no Iter override — a
// Range iterates its own Start..Stop..Step span directly instead, since it
// has no backing SeqMethods (spec.md §4.3).
func DefaultIter(v Value) Value {
	if v.Tag == TagObject && v.Obj != nil {
		if v.Obj.Class == RangeClass {
			r := v.Obj.Native.(*RangeObj)
			return NewRange(r.Start, r.Stop, r.Step)
		}
		if v.Obj.Class.SeqMethods.Len != nil && v.Obj.Class.SeqMethods.Get != nil {
			return newSeqIterator(v)
		}
	}
	return Throw(TypeExceptionClass, "value is not iterable: '"+typeName(v)+"'")
}

func init() {
	RangeClass.IterNext = func(v Value) Value {
		r := v.Obj.Native.(*RangeObj)
		if (r.Step > 0 && r.Cur >= r.Stop) || (r.Step < 0 && r.Cur <= r.Stop) {
			return IterStop()
		}
		cur := r.Cur
		r.Cur += r.Step
		return Int(cur)
	}
}
