package values

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBinaryOp_IntArithmetic(t *testing.T) {
	tests := []struct {
		name string
		op   BinOp
		a, b int64
		want int64
	}{
		{"add", OpAdd, 2, 3, 5},
		{"sub", OpSub, 5, 3, 2},
		{"mul", OpMul, 4, 3, 12},
		{"mod", OpMod, 7, 3, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := BinaryOp(tt.op, Int(tt.a), Int(tt.b))
			assert.Equal(t, TagInt, r.Tag)
			assert.Equal(t, tt.want, r.I)
		})
	}
}

func TestBinaryOp_DivisionByZeroRaisesException(t *testing.T) {
	r := BinaryOp(OpDiv, Int(1), Int(0))
	assert.Equal(t, TagExc, r.Tag)
	assert.Equal(t, ArithmeticExceptionClass, r.Obj.Class)
}

func TestBinaryOp_UnsupportedTypesRaisesTypeException(t *testing.T) {
	r := BinaryOp(OpAdd, Bool(true), Null())
	assert.Equal(t, TagExc, r.Tag)
	assert.Equal(t, TypeExceptionClass, r.Obj.Class)
}

func TestCompare_Ints(t *testing.T) {
	r := Compare(Int(1), Int(2))
	assert.Equal(t, TagInt, r.Tag)
	assert.Equal(t, int64(-1), r.I)
}

func TestEqual_IdentityFallback(t *testing.T) {
	assert.True(t, Equal(Int(3), Int(3)).Nonzero())
	assert.False(t, Equal(Int(3), Int(4)).Nonzero())
	assert.True(t, Equal(Null(), Null()).Nonzero())
}
