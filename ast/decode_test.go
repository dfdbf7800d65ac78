package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeProgram_LiteralAndBinaryExpr(t *testing.T) {
	src := `{
		"kind": "Program",
		"stmts": [
			{
				"kind": "ExprStmt",
				"x": {
					"kind": "BinaryExpr",
					"op": "+",
					"left": {"kind": "Literal", "lit_kind": "int", "int": 2},
					"right": {"kind": "Literal", "lit_kind": "int", "int": 3}
				}
			}
		]
	}`

	prog, err := DecodeProgram([]byte(src))
	require.NoError(t, err)
	require.Len(t, prog.Stmts, 1)

	es, ok := prog.Stmts[0].(*ExprStmt)
	require.True(t, ok)
	bin, ok := es.X.(*BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, BAdd, bin.Op)

	left, ok := bin.Left.(*Literal)
	require.True(t, ok)
	assert.Equal(t, LitInt, left.Kind)
	assert.Equal(t, int64(2), left.I)
}

func TestDecodeProgram_IdentifierBinding(t *testing.T) {
	src := `{
		"kind": "Program",
		"stmts": [
			{
				"kind": "ExprStmt",
				"x": {"kind": "Identifier", "binding": {"kind": "local", "name": "x", "ordinal": 1}}
			}
		]
	}`

	prog, err := DecodeProgram([]byte(src))
	require.NoError(t, err)
	es := prog.Stmts[0].(*ExprStmt)
	id, ok := es.X.(*Identifier)
	require.True(t, ok)
	assert.Equal(t, BindLocal, id.Binding.Kind)
	assert.Equal(t, "x", id.Binding.Name)
	assert.Equal(t, 1, id.Binding.Ordinal)
}

func TestDecodeProgram_RejectsWrongRootKind(t *testing.T) {
	_, err := DecodeProgram([]byte(`{"kind": "ExprStmt"}`))
	assert.Error(t, err)
}

func TestDecodeProgram_RejectsMalformedJSON(t *testing.T) {
	_, err := DecodeProgram([]byte(`not json`))
	assert.Error(t, err)
}
