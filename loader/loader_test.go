package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhoc-lang/rhoc/codeobj"
	"github.com/rhoc-lang/rhoc/errors"
	"github.com/rhoc-lang/rhoc/opcodes"
)

func buildSample() *codeobj.CodeObject {
	co := codeobj.NewCodeObject("<module>")
	co.ArgCount = 0
	co.StackDepth = 2
	co.TryCatchDepth = 1
	co.FirstLine = 1
	co.LineRuns = []codeobj.LineRun{{InsDelta: 3, LineDelta: 1}}
	co.Symbols.Locals = []string{"x"}
	co.Symbols.Attrs = []string{}
	co.Symbols.Frees = []string{}

	intID := co.Consts.InternInt(41)
	co.Bytecode = []byte{
		byte(opcodes.LOAD_CONST), byte(intID), byte(intID >> 8),
		byte(opcodes.LOAD_NULL),
		byte(opcodes.RETURN),
	}
	return co
}

func TestWriteLoad_RoundTrip(t *testing.T) {
	co := buildSample()
	raw := Write(co)

	got, err := Parse(raw)
	require.Nil(t, err)
	assert.Equal(t, co.StackDepth, got.StackDepth)
	assert.Equal(t, co.TryCatchDepth, got.TryCatchDepth)
	assert.Equal(t, co.FirstLine, got.FirstLine)
	assert.Equal(t, co.Symbols.Locals, got.Symbols.Locals)
	assert.Equal(t, co.Bytecode, got.Bytecode)
	assert.Equal(t, 1, got.Consts.Len())
	assert.Equal(t, int64(41), got.Consts.Get(0).I)
}

func TestWriteLoad_NestedCodeObject(t *testing.T) {
	co := codeobj.NewCodeObject("<module>")
	co.Bytecode = []byte{byte(opcodes.RETURN)}

	sub := codeobj.NewCodeObject("f")
	sub.ArgCount = 1
	sub.Bytecode = []byte{byte(opcodes.LOAD_NULL), byte(opcodes.RETURN)}
	co.Consts.AddCode(sub)

	raw := Write(co)
	got, err := Parse(raw)
	require.Nil(t, err)
	require.Equal(t, 1, got.Consts.Len())
	entry := got.Consts.Get(0)
	require.Equal(t, codeobj.ConstCodeObj, entry.Kind)
	assert.Equal(t, "f", entry.Code.Name)
	assert.Equal(t, 1, entry.Code.ArgCount)
	assert.Equal(t, sub.Bytecode, entry.Code.Bytecode)
}

func TestParse_BadMagicRejected(t *testing.T) {
	_, err := Parse([]byte{0, 0, 0, 0})
	require.NotNil(t, err)
	assert.Equal(t, errors.InvalidFileSignature, err.Kind)
}

func TestLoad_MissingFileIsNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/does-not-exist.rhoc")
	require.NotNil(t, err)
	assert.Equal(t, errors.NotFound, err.Kind)
}
