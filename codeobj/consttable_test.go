package codeobj

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstTable_InternDeduplicates(t *testing.T) {
	ct := NewConstTable()
	id1 := ct.InternInt(42)
	id2 := ct.InternInt(42)
	assert.Equal(t, id1, id2, "interning the same int twice must return the same id")
	assert.Equal(t, 1, ct.Len())

	sid1 := ct.InternString("hello")
	sid2 := ct.InternString("hello")
	assert.Equal(t, sid1, sid2)
	assert.NotEqual(t, id1, sid1)
}

func TestConstTable_DistinctValuesGetDistinctIDs(t *testing.T) {
	ct := NewConstTable()
	a := ct.InternInt(1)
	b := ct.InternInt(2)
	assert.NotEqual(t, a, b)
	assert.Equal(t, int64(1), ct.Get(a).I)
	assert.Equal(t, int64(2), ct.Get(b).I)
}

func TestConstTable_CodeConstantsNeverDeduplicate(t *testing.T) {
	ct := NewConstTable()
	sub1 := NewCodeObject("f")
	sub2 := NewCodeObject("f")
	id1 := ct.AddCode(sub1)
	id2 := ct.AddCode(sub2)
	assert.NotEqual(t, id1, id2, "each code constant is appended in definition order, never deduped")
}

func TestConstTable_IntFloatDistinctKeys(t *testing.T) {
	ct := NewConstTable()
	i := ct.InternInt(0)
	f := ct.InternFloat(0)
	assert.NotEqual(t, i, f, "int 0 and float 0.0 must not collide")
}
