package values

// MemberFlag bits on a member descriptor (spec.md §4.1 Attribute protocol).
type MemberFlag uint8

const (
	MemberReadonly MemberFlag = 1 << iota
	MemberTypeStrict
)

// Member describes one instance field.
type Member struct {
	Name   string
	Offset int
	Flags  MemberFlag
	Type   *Class // declared type for TYPE_STRICT narrowing, nil if untyped
}

// MethodFn is a native (or compiled-trampoline) method implementation.
type MethodFn func(self Value, args []Value) Value

// Method describes one method descriptor.
type Method struct {
	Name string
	Fn   MethodFn
}

// attrSlot is the tagged index the attribute dictionary maps a name to:
// either a member ordinal or a method ordinal (spec.md §4.1).
type attrSlot struct {
	isMethod bool
	ordinal  int
}

// NumberMethods is the arithmetic vtable (spec.md §3 Class).
type NumberMethods struct {
	Plus, Minus, Abs                     func(Value) Value
	Add, Sub, Mul, Div, Mod, Pow         func(Value, Value) Value
	IAdd, ISub, IMul, IDiv, IMod, IPow   func(Value, Value) Value
	RAdd, RSub, RMul, RDiv, RMod, RPow   func(Value, Value) Value
	BitAnd, BitOr, BitXor, ShiftL, ShiftR func(Value, Value) Value
	BitNot                               func(Value) Value
	Nonzero                              func(Value) bool
	ToInt                                func(Value) Value
	ToFloat                              func(Value) Value
}

// SeqMethods is the sequence-protocol vtable (spec.md §3 Class).
type SeqMethods struct {
	Len      func(Value) int
	Get      func(Value, Value) Value
	Set      func(Value, Value, Value) Value
	Contains func(Value, Value) bool
	Apply    func(Value, Value) Value
	IApply   func(Value, Value) Value
}

// Class is the runtime type descriptor described in spec.md §3.
type Class struct {
	Name  string
	Super *Class

	InstanceSize int
	Init         func(self Value, args []Value) Value
	Del          func(o *Object)

	Eq        func(a, b Value) Value
	Hash      func(Value) Value
	Cmp       func(a, b Value) Value
	Str       func(Value) string
	Call      func(callee Value, pos []Value, named map[string]Value) Value
	Print     func(Value)
	Iter      func(Value) Value
	IterNext  func(Value) Value
	AttrGet   func(self Value, name string) Value
	AttrSet   func(self Value, name string, v Value) Value

	NumMethods NumberMethods
	SeqMethods SeqMethods

	Members []Member
	Methods []Method

	attrs        map[string]attrSlot
	resolveCache map[string]int // method name -> resolved Methods index, once computed
}

// NewClass builds a Class and its attribute dictionary from Members/Methods.
func NewClass(name string, super *Class, members []Member, methods []Method) *Class {
	c := &Class{
		Name:    name,
		Super:   super,
		Members: members,
		Methods: methods,
		attrs:   make(map[string]attrSlot, len(members)+len(methods)),
	}
	for i, m := range members {
		c.attrs[m.Name] = attrSlot{isMethod: false, ordinal: i}
	}
	for i, m := range methods {
		c.attrs[m.Name] = attrSlot{isMethod: true, ordinal: i}
	}
	return c
}

// IsA reports whether class c is class target or a (transitive) subclass
// of it — used by try/catch type matching (spec.md §7).
func (c *Class) IsA(target *Class) bool {
	for cur := c; cur != nil; cur = cur.Super {
		if cur == target {
			return true
		}
	}
	return false
}

// ResolveMethod walks the super-chain once on miss and writes the resolved
// slot back into the querying class, a pragmatic cache (spec.md §4.1).
func (c *Class) ResolveMethod(name string) (*Method, bool) {
	if c.resolveCache != nil {
		if idx, ok := c.resolveCache[name]; ok {
			if idx < 0 {
				return nil, false
			}
			return &c.Methods[idx], true
		}
	}
	for cur := c; cur != nil; cur = cur.Super {
		if slot, ok := cur.attrs[name]; ok && slot.isMethod {
			c.cacheResolved(name, slot.ordinal, cur)
			return &cur.Methods[slot.ordinal], true
		}
	}
	c.cacheResolved(name, -1, nil)
	return nil, false
}

func (c *Class) cacheResolved(name string, methodIdx int, owner *Class) {
	if c.resolveCache == nil {
		c.resolveCache = make(map[string]int)
	}
	if owner == c || owner == nil {
		c.resolveCache[name] = methodIdx
		return
	}
	// Owner differs: cache the method descriptor pointer indirectly by
	// re-homing the ordinal through a synthetic copy so steady-state
	// dispatch from c is still a single map load.
	c.Methods = append(c.Methods, owner.Methods[methodIdx])
	c.resolveCache[name] = len(c.Methods) - 1
}

// GetAttr implements spec.md §4.1's op_get_attr: the class's attr_get
// override if present, else the default member/method dictionary lookup.
func GetAttr(v Value, name string) Value {
	if v.Tag == TagObject || v.Tag == TagExc {
		if v.Obj != nil && v.Obj.Class.AttrGet != nil {
			return v.Obj.Class.AttrGet(v, name)
		}
	}
	if r, ok := AttrGetDefault(v, name); ok {
		return r
	}
	return FromExc(NewExceptionObject(AttributeExceptionClass, "no such attribute: "+name))
}

// SetAttr implements spec.md §4.1's op_set_attr.
func SetAttr(v Value, name string, val Value) Value {
	if v.Tag == TagObject && v.Obj != nil && v.Obj.Class.AttrSet != nil {
		return v.Obj.Class.AttrSet(v, name, val)
	}
	return AttrSetDefault(v, name, val)
}

// AttrGetDefault implements the default (non-overridden) attribute read:
// member -> boxed field read; method -> bound Method value.
func AttrGetDefault(self Value, name string) (Value, bool) {
	if self.Tag != TagObject && self.Tag != TagExc || self.Obj == nil {
		return Value{}, false
	}
	class := self.Obj.Class
	for cur := class; cur != nil; cur = cur.Super {
		if slot, ok := cur.attrs[name]; ok {
			if slot.isMethod {
				return makeBoundMethod(self, &cur.Methods[slot.ordinal]), true
			}
			return self.Obj.Fields[cur.Members[slot.ordinal].Offset], true
		}
	}
	return Value{}, false
}

// BoundMethod is the Native payload of a Method object produced by
// attribute lookup (spec.md §4.1).
type BoundMethod struct {
	Receiver Value
	Method   *Method
}

var methodClass = &Class{Name: "Method"}

func makeBoundMethod(self Value, m *Method) Value {
	o := NewObject(methodClass, 0)
	o.Native = &BoundMethod{Receiver: self, Method: m}
	return FromObject(o)
}

// AttrSetDefault implements the default attribute write, honoring
// MemberReadonly/MemberTypeStrict (spec.md §4.1).
func AttrSetDefault(self Value, name string, v Value) Value {
	if self.Tag != TagObject || self.Obj == nil {
		return unsupported("set_attr")
	}
	class := self.Obj.Class
	for cur := class; cur != nil; cur = cur.Super {
		slot, ok := cur.attrs[name]
		if !ok || slot.isMethod {
			continue
		}
		member := cur.Members[slot.ordinal]
		if member.Flags&MemberReadonly != 0 {
			return FromExc(NewExceptionObject(AttributeExceptionClass,
				"attribute '"+name+"' is read-only"))
		}
		if member.Flags&MemberTypeStrict != 0 && member.Type != nil {
			if v.Tag != TagObject || v.Obj == nil || !v.Obj.Class.IsA(member.Type) {
				return FromExc(NewExceptionObject(TypeExceptionClass,
					"attribute '"+name+"' requires type "+member.Type.Name))
			}
		}
		old := self.Obj.Fields[member.Offset]
		old.Release()
		self.Obj.Fields[member.Offset] = v.Retain()
		return Null()
	}
	return FromExc(NewExceptionObject(AttributeExceptionClass, "no such attribute: "+name))
}
