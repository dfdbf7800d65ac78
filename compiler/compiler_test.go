package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhoc-lang/rhoc/ast"
	"github.com/rhoc-lang/rhoc/codeobj"
	"github.com/rhoc-lang/rhoc/opcodes"
	"github.com/rhoc-lang/rhoc/values"
	"github.com/rhoc-lang/rhoc/vm"
)

func intLit(v int64) *ast.Literal { return &ast.Literal{Kind: ast.LitInt, I: v} }

func TestCompileModule_ArithmeticReturnsViaPrint(t *testing.T) {
	prog := &ast.Program{
		Stmts: []ast.Stmt{
			&ast.PrintStmt{
				X: &ast.BinaryExpr{Op: ast.BAdd, Left: intLit(2), Right: intLit(3)},
			},
		},
	}

	co, err := CompileModule(prog)
	require.NoError(t, err)
	assert.NotEmpty(t, co.Bytecode)

	var printed []string
	machine := vm.New(nil)
	machine.Output = func(s string) { printed = append(printed, s) }
	result := machine.RunModule(co)

	assert.NotEqual(t, values.TagError, result.Tag)
	require.Len(t, printed, 1)
	assert.Equal(t, "5", printed[0])
}

func TestCompileModule_ReturnStmtPropagatesValue(t *testing.T) {
	prog := &ast.Program{
		Stmts: []ast.Stmt{
			&ast.ReturnStmt{X: intLit(41)},
		},
	}

	co, err := CompileModule(prog)
	require.NoError(t, err)

	machine := vm.New(nil)
	result := machine.RunModule(co)
	require.Equal(t, values.TagInt, result.Tag)
	assert.Equal(t, int64(41), result.I)
}

func TestCompileModule_IfStmtTakesTrueBranch(t *testing.T) {
	prog := &ast.Program{
		Stmts: []ast.Stmt{
			&ast.IfStmt{
				Branches: []ast.IfBranch{
					{Cond: &ast.Literal{Kind: ast.LitBool, B: true}, Body: []ast.Stmt{
						&ast.ReturnStmt{X: intLit(1)},
					}},
					{Cond: nil, Body: []ast.Stmt{
						&ast.ReturnStmt{X: intLit(0)},
					}},
				},
			},
		},
	}

	co, err := CompileModule(prog)
	require.NoError(t, err)

	machine := vm.New(nil)
	result := machine.RunModule(co)
	require.Equal(t, values.TagInt, result.Tag)
	assert.Equal(t, int64(1), result.I)
}

func TestComputeStackDepth_MatchesFinishedCodeObject(t *testing.T) {
	prog := &ast.Program{
		Stmts: []ast.Stmt{
			&ast.ExprStmt{X: &ast.BinaryExpr{Op: ast.BMul, Left: intLit(6), Right: intLit(7)}},
		},
	}
	co, err := CompileModule(prog)
	require.NoError(t, err)
	assert.Equal(t, ComputeStackDepth(co.Bytecode), co.StackDepth)
	assert.True(t, len(co.Bytecode) > 0)
	assert.Equal(t, byte(opcodes.POP), co.Bytecode[len(co.Bytecode)-1], "a bare expression statement discards its value")
	_ = codeobj.NewCodeObject // keep codeobj import meaningful if unused paths trimmed
}
