// Package values implements rhoc's tagged-union Value type and the
// reference-counted Object model described in spec.md §3.
package values

import "fmt"

// Tag identifies the kind of value held by a Value. The last two tags
// are internal sentinels: they never appear on a frame's value stack for a
// user-visible operation, since dispatch logic folds them into exceptions
// or fatal errors before they would be observed (spec.md §3).
type Tag byte

const (
	TagEmpty Tag = iota // slot not written (locals only)
	TagNull
	TagBool
	TagInt
	TagFloat
	TagObject
	TagExc
	TagError

	TagUnsupportedTypes // sentinel: operator slot declined to handle operands
	TagDivByZero        // sentinel: arithmetic op detected division by zero
)

func (t Tag) String() string {
	switch t {
	case TagEmpty:
		return "empty"
	case TagNull:
		return "null"
	case TagBool:
		return "bool"
	case TagInt:
		return "int"
	case TagFloat:
		return "float"
	case TagObject:
		return "object"
	case TagExc:
		return "exception"
	case TagError:
		return "error"
	default:
		return "sentinel"
	}
}

// Value is the tagged union described in spec.md §3. Only one of the
// fields is meaningful, as determined by Tag.
type Value struct {
	Tag   Tag
	I     int64
	F     float64
	B     bool
	Obj   *Object
	Err   error
	SName string // operator name, set only on TagUnsupportedTypes
}

func Empty() Value { return Value{Tag: TagEmpty} }
func Null() Value  { return Value{Tag: TagNull} }

func Bool(b bool) Value   { return Value{Tag: TagBool, B: b} }
func Int(i int64) Value   { return Value{Tag: TagInt, I: i} }
func Float(f float64) Value { return Value{Tag: TagFloat, F: f} }

func FromObject(o *Object) Value {
	if o != nil {
		o.Retain()
	}
	return Value{Tag: TagObject, Obj: o}
}

func FromExc(o *Object) Value {
	if o != nil {
		o.Retain()
	}
	return Value{Tag: TagExc, Obj: o}
}

func FromError(err error) Value { return Value{Tag: TagError, Err: err} }

func unsupported(op string) Value { return Value{Tag: TagUnsupportedTypes, SName: op} }
func divByZero() Value            { return Value{Tag: TagDivByZero} }

func (v Value) IsEmpty() bool  { return v.Tag == TagEmpty }
func (v Value) IsNull() bool   { return v.Tag == TagNull }
func (v Value) IsObject() bool { return v.Tag == TagObject }
func (v Value) IsExc() bool    { return v.Tag == TagExc }
func (v Value) IsError() bool  { return v.Tag == TagError }

// Nonzero implements truthiness per spec.md §8's `not not v == bool(nonzero(v))` law.
func (v Value) Nonzero() bool {
	switch v.Tag {
	case TagNull, TagEmpty:
		return false
	case TagBool:
		return v.B
	case TagInt:
		return v.I != 0
	case TagFloat:
		return v.F != 0
	case TagObject:
		if v.Obj == nil {
			return false
		}
		if nz := v.Obj.Class.NumMethods.Nonzero; nz != nil {
			return nz(v)
		}
		return true
	default:
		return false
	}
}

func (v Value) String() string {
	switch v.Tag {
	case TagNull:
		return "null"
	case TagEmpty:
		return ""
	case TagBool:
		if v.B {
			return "true"
		}
		return "false"
	case TagInt:
		return fmt.Sprintf("%d", v.I)
	case TagFloat:
		return fmt.Sprintf("%g", v.F)
	case TagObject:
		if v.Obj == nil {
			return "<nil object>"
		}
		if str := v.Obj.Class.Str; str != nil {
			return str(v)
		}
		return fmt.Sprintf("<%s>", v.Obj.Class.Name)
	case TagExc:
		if v.Obj == nil {
			return "<exception>"
		}
		return fmt.Sprintf("%s: %s", v.Obj.Class.Name, v.Obj.ExcMessage)
	case TagError:
		return v.Err.Error()
	default:
		return "<sentinel>"
	}
}

// Retain increments the refcount of the value's Object/Exc payload, if any.
// It is a no-op on non-Object/Exc values and on refcount-∞ objects (spec §3).
func (v Value) Retain() Value {
	if (v.Tag == TagObject || v.Tag == TagExc) && v.Obj != nil {
		v.Obj.Retain()
	}
	return v
}

// Release decrements the refcount, invoking the class destructor at zero.
func (v Value) Release() {
	if (v.Tag == TagObject || v.Tag == TagExc) && v.Obj != nil {
		v.Obj.Release()
	}
}
