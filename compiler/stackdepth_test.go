package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rhoc-lang/rhoc/opcodes"
)

func u16bytes(v uint16) []byte {
	return []byte{byte(v), byte(v >> 8)}
}

func TestComputeStackDepth_Linear(t *testing.T) {
	var code []byte
	code = append(code, byte(opcodes.LOAD_CONST))
	code = append(code, u16bytes(0)...)
	code = append(code, byte(opcodes.LOAD_CONST))
	code = append(code, u16bytes(0)...)
	code = append(code, byte(opcodes.ADD))
	code = append(code, byte(opcodes.RETURN))

	assert.Equal(t, 2, ComputeStackDepth(code))
}

func TestComputeStackDepth_BranchTakesWorstArm(t *testing.T) {
	// JMP_IF_FALSE pops the predicate, then one arm pushes three more
	// values and returns, the other arm pushes only one and returns.
	// The bound must reflect the deeper arm.
	var code []byte
	code = append(code, byte(opcodes.LOAD_CONST))
	code = append(code, u16bytes(0)...) // depth 1: predicate
	jmpIfFalseAt := len(code)
	code = append(code, byte(opcodes.JMP_IF_FALSE))
	code = append(code, u16bytes(0)...) // patched below

	// true-arm: push 3 constants
	code = append(code, byte(opcodes.LOAD_CONST))
	code = append(code, u16bytes(0)...)
	code = append(code, byte(opcodes.LOAD_CONST))
	code = append(code, u16bytes(0)...)
	code = append(code, byte(opcodes.LOAD_CONST))
	code = append(code, u16bytes(0)...)
	code = append(code, byte(opcodes.RETURN))

	falseArm := uint16(len(code))
	code[jmpIfFalseAt+1] = byte(falseArm)
	code[jmpIfFalseAt+2] = byte(falseArm >> 8)

	// false-arm: push 1 constant
	code = append(code, byte(opcodes.LOAD_CONST))
	code = append(code, u16bytes(0)...)
	code = append(code, byte(opcodes.RETURN))

	assert.Equal(t, 3, ComputeStackDepth(code))
}
