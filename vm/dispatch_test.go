package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhoc-lang/rhoc/codeobj"
	"github.com/rhoc-lang/rhoc/opcodes"
	"github.com/rhoc-lang/rhoc/values"
)

func u16op(v uint16) []byte { return []byte{byte(v), byte(v >> 8)} }

func TestVM_ArithmeticReturn(t *testing.T) {
	co := codeobj.NewCodeObject("<module>")
	two := co.Consts.InternInt(2)
	three := co.Consts.InternInt(3)
	four := co.Consts.InternInt(4)

	var code []byte
	code = append(code, byte(opcodes.LOAD_CONST))
	code = append(code, u16op(uint16(two))...)
	code = append(code, byte(opcodes.LOAD_CONST))
	code = append(code, u16op(uint16(three))...)
	code = append(code, byte(opcodes.LOAD_CONST))
	code = append(code, u16op(uint16(four))...)
	code = append(code, byte(opcodes.MUL))
	code = append(code, byte(opcodes.ADD))
	code = append(code, byte(opcodes.RETURN))
	co.Bytecode = code
	co.StackDepth = 3

	machine := New(nil)
	result := machine.RunModule(co)

	require.Equal(t, values.TagInt, result.Tag)
	assert.Equal(t, int64(14), result.I)
}

// TestVM_TryCatchRecoversFromException wraps a division by zero in a
// TRY_BEGIN/TRY_END region and confirms the handler runs with the staged
// exception value on the stack, truncated back to the handler's purge wall.
func TestVM_TryCatchRecoversFromException(t *testing.T) {
	co := codeobj.NewCodeObject("<module>")
	one := co.Consts.InternInt(1)
	zero := co.Consts.InternInt(0)
	co.Symbols.Locals = []string{"e"}

	var code []byte
	code = append(code, byte(opcodes.LOAD_CONST))
	code = append(code, u16op(uint16(one))...) // off 0..2
	code = append(code, byte(opcodes.LOAD_CONST))
	code = append(code, u16op(uint16(zero))...) // off 3..5

	tryBeginAt := len(code)
	code = append(code, byte(opcodes.TRY_BEGIN))
	code = append(code, 0, 0, 0, 0) // patched below: tryLen, handlerOff

	tryStart := len(code)
	code = append(code, byte(opcodes.DIV)) // the protected instruction
	tryLen := uint16(len(code) - tryStart)

	handlerOff := uint16(len(code))
	code = append(code, byte(opcodes.STORE))
	code = append(code, u16op(0)...)
	code = append(code, byte(opcodes.LOAD))
	code = append(code, u16op(0)...)
	code = append(code, byte(opcodes.RETURN))

	operandPos := tryBeginAt + 1
	copy(code[operandPos:operandPos+2], u16op(tryLen))
	copy(code[operandPos+2:operandPos+4], u16op(handlerOff))

	co.Bytecode = code
	co.StackDepth = 2
	co.TryCatchDepth = 1

	machine := New(nil)
	result := machine.RunModule(co)

	require.Equal(t, values.TagExc, result.Tag)
	assert.Equal(t, values.ArithmeticExceptionClass, result.Obj.Class)
}

func TestVM_FunctionCall(t *testing.T) {
	add := codeobj.NewCodeObject("add")
	add.ArgCount = 2
	add.Symbols.Locals = []string{"a", "b"}
	add.Bytecode = []byte{
		byte(opcodes.LOAD), 0, 0,
		byte(opcodes.LOAD), 1, 0,
		byte(opcodes.ADD),
		byte(opcodes.RETURN),
	}
	add.StackDepth = 2

	co := codeobj.NewCodeObject("<module>")
	codeID := co.Consts.AddCode(add)
	argTwo := co.Consts.InternInt(2)
	argThree := co.Consts.InternInt(3)

	var code []byte
	code = append(code, byte(opcodes.LOAD_CONST))
	code = append(code, u16op(uint16(argTwo))...)
	code = append(code, byte(opcodes.LOAD_CONST))
	code = append(code, u16op(uint16(argThree))...)
	code = append(code, byte(opcodes.LOAD_CONST))
	code = append(code, u16op(uint16(codeID))...)
	code = append(code, byte(opcodes.MAKE_FUNCOBJ))
	code = append(code, u16op(0)...)
	code = append(code, byte(opcodes.CALL))
	code = append(code, u16op(2)...) // nPos=2, nNamed=0
	code = append(code, byte(opcodes.RETURN))
	co.Bytecode = code
	co.StackDepth = 3

	machine := New(nil)
	result := machine.RunModule(co)

	require.Equal(t, values.TagInt, result.Tag)
	assert.Equal(t, int64(5), result.I)
}

// TestVM_MakeSetDeduplicatesViaOpcode exercises MAKE_SET through the real
// dispatch loop rather than calling values.NewSet directly: `{1, 1, 2}`
// must produce a 2-element Set, not a 3-element List (SPEC_FULL.md §12).
func TestVM_MakeSetDeduplicatesViaOpcode(t *testing.T) {
	co := codeobj.NewCodeObject("<module>")
	one := co.Consts.InternInt(1)
	two := co.Consts.InternInt(2)

	co.Bytecode = []byte{
		byte(opcodes.LOAD_CONST), byte(one), byte(one >> 8),
		byte(opcodes.LOAD_CONST), byte(one), byte(one >> 8),
		byte(opcodes.LOAD_CONST), byte(two), byte(two >> 8),
		byte(opcodes.MAKE_SET), 3, 0,
		byte(opcodes.RETURN),
	}
	co.StackDepth = 3

	machine := New(nil)
	result := machine.RunModule(co)

	require.Equal(t, values.TagObject, result.Tag)
	set, ok := values.AsSet(result)
	require.True(t, ok)
	assert.Equal(t, values.SetClass, result.Obj.Class)
	assert.Len(t, set.Items, 2)
}

// TestVM_MakeTupleRejectsIndexAssignment exercises MAKE_TUPLE and SET_INDEX
// together: a tuple literal must raise a TypeException on mutation instead
// of silently succeeding the way a List-backed stand-in would.
func TestVM_MakeTupleRejectsIndexAssignment(t *testing.T) {
	co := codeobj.NewCodeObject("<module>")
	one := co.Consts.InternInt(1)
	two := co.Consts.InternInt(2)
	zero := co.Consts.InternInt(0)
	nine := co.Consts.InternInt(9)
	co.Symbols.Locals = []string{"t"}

	co.Bytecode = []byte{
		byte(opcodes.LOAD_CONST), byte(one), byte(one >> 8),
		byte(opcodes.LOAD_CONST), byte(two), byte(two >> 8),
		byte(opcodes.MAKE_TUPLE), 2, 0,
		byte(opcodes.STORE), 0, 0,
		byte(opcodes.LOAD_CONST), byte(nine), byte(nine >> 8), // val (popped last)
		byte(opcodes.LOAD), 0, 0, // obj (popped 2nd)
		byte(opcodes.LOAD_CONST), byte(zero), byte(zero >> 8), // idx (popped 1st)
		byte(opcodes.SET_INDEX),
		byte(opcodes.RETURN),
	}
	co.StackDepth = 3

	machine := New(nil)
	result := machine.RunModule(co)

	require.Equal(t, values.TagExc, result.Tag)
	assert.Equal(t, values.TypeExceptionClass, result.Obj.Class)
}

func TestVM_UnboundLocalIsFatal(t *testing.T) {
	co := codeobj.NewCodeObject("<module>")
	co.Symbols.Locals = []string{"x"}
	co.Bytecode = []byte{
		byte(opcodes.LOAD), 0, 0,
		byte(opcodes.RETURN),
	}
	co.StackDepth = 1

	machine := New(nil)
	result := machine.RunModule(co)

	require.Equal(t, values.TagError, result.Tag)
}
