package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhoc-lang/rhoc/codeobj"
	"github.com/rhoc-lang/rhoc/opcodes"
	"github.com/rhoc-lang/rhoc/values"
)

// TestGenerator_ProducesThenStops exercises the persistent-frame coroutine
// directly: a generator body that PRODUCEs twice, then returns, must yield
// its two produced values across separate iternext calls and only then
// report IterStop (spec.md §4.5 "Generator calls").
func TestGenerator_ProducesThenStops(t *testing.T) {
	gen := codeobj.NewCodeObject("gen")
	ten := gen.Consts.InternInt(10)
	twenty := gen.Consts.InternInt(20)
	gen.Bytecode = []byte{
		byte(opcodes.LOAD_CONST), byte(ten), byte(ten >> 8),
		byte(opcodes.PRODUCE),
		byte(opcodes.LOAD_CONST), byte(twenty), byte(twenty >> 8),
		byte(opcodes.PRODUCE),
		byte(opcodes.LOAD_NULL),
		byte(opcodes.RETURN),
	}
	gen.StackDepth = 1

	machine := New(nil)
	fo := &FuncObj{Kind: KindGenerator, Code: gen}
	o := values.NewObject(machine.funcClass, 0)
	o.Native = fo
	callee := values.FromObject(o)

	proxy := machine.makeGeneratorProxy(callee, nil, nil)
	require.Equal(t, values.TagObject, proxy.Tag)

	first := generatorProxyClass.IterNext(proxy)
	require.Equal(t, values.TagInt, first.Tag)
	assert.Equal(t, int64(10), first.I)

	second := generatorProxyClass.IterNext(proxy)
	require.Equal(t, values.TagInt, second.Tag)
	assert.Equal(t, int64(20), second.I)

	third := generatorProxyClass.IterNext(proxy)
	assert.True(t, values.IsIterStop(third))
}
