package stdlib

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhoc-lang/rhoc/values"
)

func callNative(t *testing.T, mod *values.DictObj, name string, args ...values.Value) values.Value {
	t.Helper()
	fn, ok := mod.Get(name)
	require.True(t, ok, "module has no export %q", name)
	return fn.Obj.Class.Call(fn, args, nil)
}

func TestMathModule_Constants(t *testing.T) {
	m := MathModule()
	pi, ok := m.Get("pi")
	require.True(t, ok)
	assert.InDelta(t, 3.14159265, pi.F, 1e-6)
}

func TestMathModule_Sqrt(t *testing.T) {
	m := MathModule()
	r := callNative(t, m, "sqrt", values.Float(9))
	assert.Equal(t, values.TagFloat, r.Tag)
	assert.Equal(t, 3.0, r.F)
}

func TestMathModule_AbsPreservesIntType(t *testing.T) {
	m := MathModule()
	r := callNative(t, m, "abs", values.Int(-7))
	assert.Equal(t, values.TagInt, r.Tag)
	assert.Equal(t, int64(7), r.I)
}

func TestMathModule_PowWrongArity(t *testing.T) {
	m := MathModule()
	r := callNative(t, m, "pow", values.Int(2))
	assert.Equal(t, values.TagExc, r.Tag)
	assert.Equal(t, values.TypeExceptionClass, r.Obj.Class)
}

func TestMathModule_MinMax(t *testing.T) {
	m := MathModule()
	assert.Equal(t, int64(1), callNative(t, m, "min", values.Int(1), values.Int(2)).I)
	assert.Equal(t, int64(2), callNative(t, m, "max", values.Int(1), values.Int(2)).I)
}
