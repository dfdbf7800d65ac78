package compiler

import (
	"github.com/rhoc-lang/rhoc/ast"
	"github.com/rhoc-lang/rhoc/codeobj"
	"github.com/rhoc-lang/rhoc/opcodes"
)

// compileFuncBody compiles a function/lambda/generator/actor literal's
// body with a fresh sub-compiler, as spec.md §4.3 describes: the body is
// never emitted inline, only referenced via its constant-table entry.
func compileFuncBody(lit *ast.FuncLit) *codeobj.CodeObject {
	c := newCompiler(funcName(lit), lit.Kind == ast.KindGenerator)
	c.co.ArgCount = len(lit.Params)

	for i, p := range lit.Params {
		c.co.Symbols.SetLocalAt(i, p.Name)
	}

	fillConstants(c, lit.Body)
	for _, s := range lit.Body {
		_ = c.emitStmt(s)
	}
	// Implicit terminator: generators end iteration, everything else
	// falls off the end returning Null (spec.md §4.3).
	if lit.Kind == ast.KindGenerator {
		c.emit(opcodes.LOAD_ITER_STOP)
		c.emit(opcodes.RETURN)
	} else {
		c.emit(opcodes.LOAD_NULL)
		c.emit(opcodes.RETURN)
	}
	c.finish(lit.Line())
	return c.co
}

func funcName(lit *ast.FuncLit) string {
	if lit.Name != "" {
		return lit.Name
	}
	switch lit.Kind {
	case ast.KindLambda:
		return "<lambda>"
	case ast.KindGenerator:
		return "<generator>"
	case ast.KindActor:
		return "<actor>"
	default:
		return "<anonymous>"
	}
}
