package values

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewSet_DeduplicatesOnConstruction mirrors setobject.c's rho_set_add:
// a literal like `{1, 1, 2}` must collapse to two distinct elements, not
// three.
func TestNewSet_DeduplicatesOnConstruction(t *testing.T) {
	s := NewSet([]Value{Int(1), Int(1), Int(2)})
	obj, ok := AsSet(s)
	require.True(t, ok)
	assert.Equal(t, 2, SetClass.SeqMethods.Len(s))
	assert.True(t, obj.contains(Int(1)))
	assert.True(t, obj.contains(Int(2)))
	assert.False(t, obj.contains(Int(3)))
}

func TestSet_Contains(t *testing.T) {
	s := NewSet([]Value{NewString("a"), NewString("b")})
	assert.True(t, SetClass.SeqMethods.Contains(s, NewString("a")))
	assert.False(t, SetClass.SeqMethods.Contains(s, NewString("z")))
}

// TestTuple_IndexAssignmentUnsupported grounds tupleobject.c's immutability:
// the original's seq_methods wires no .set slot, so SET_INDEX's seqSet
// dispatch (vm/helpers.go) must reject it as a TypeException.
func TestTuple_IndexAssignmentUnsupported(t *testing.T) {
	tup := NewTuple([]Value{Int(1), Int(2)})
	assert.Nil(t, TupleClass.SeqMethods.Set)
	got := TupleClass.SeqMethods.Get(tup, Int(0))
	assert.Equal(t, int64(1), got.I)
}

func TestTuple_Equality(t *testing.T) {
	a := NewTuple([]Value{Int(1), Int(2)})
	b := NewTuple([]Value{Int(1), Int(2)})
	c := NewTuple([]Value{Int(1), Int(3)})
	assert.True(t, TupleClass.Eq(a, b).Nonzero())
	assert.False(t, TupleClass.Eq(a, c).Nonzero())
}

func TestTuple_IndexOutOfRange(t *testing.T) {
	tup := NewTuple([]Value{Int(1)})
	r := TupleClass.SeqMethods.Get(tup, Int(5))
	require.Equal(t, TagExc, r.Tag)
	assert.Equal(t, IndexExceptionClass, r.Obj.Class)
}

func TestModule_AttrGetReadsContentsAndAttrSetIsRejected(t *testing.T) {
	d := NewDict()
	d.Set("answer", Int(42))
	mod := NewModuleValue(d)

	v := ModuleClass.AttrGet(mod, "answer")
	require.Equal(t, TagInt, v.Tag)
	assert.Equal(t, int64(42), v.I)

	missing := ModuleClass.AttrGet(mod, "nope")
	require.Equal(t, TagExc, missing.Tag)
	assert.Equal(t, AttributeExceptionClass, missing.Obj.Class)

	setResult := ModuleClass.AttrSet(mod, "answer", Int(0))
	require.Equal(t, TagExc, setResult.Tag)
	assert.Equal(t, AttributeExceptionClass, setResult.Obj.Class)
}
