package compiler

import "github.com/rhoc-lang/rhoc/ast"

// fillConstants is the first pass described in spec.md §4.3 ("fill_ct_from_ast"):
// every literal and every nested function/lambda/generator/actor gets a
// stable constant-table id before the emitting pass starts. Nested
// FuncLits are fully compiled here (with a fresh sub-compiler) so their
// CodeObject constant exists up front; the emitting pass later just
// issues LOAD_CONST <id> + MAKE_*.
func fillConstants(c *Compiler, stmts []ast.Stmt) { c.walkConstStmts(stmts) }

func (c *Compiler) walkConstStmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		c.walkConstStmt(s)
	}
}

func (c *Compiler) walkConstStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.ExprStmt:
		c.walkConstExpr(n.X)
	case *ast.AssignStmt:
		c.walkConstTarget(n.Target)
		c.walkConstExpr(n.Value)
	case *ast.CompoundAssignStmt:
		c.walkConstTarget(n.Target)
		c.walkConstExpr(n.Value)
	case *ast.IfStmt:
		for _, br := range n.Branches {
			if br.Cond != nil {
				c.walkConstExpr(br.Cond)
			}
			c.walkConstStmts(br.Body)
		}
	case *ast.WhileStmt:
		c.walkConstExpr(n.Cond)
		c.walkConstStmts(n.Body)
	case *ast.ForStmt:
		c.walkConstExpr(n.Iter)
		c.walkConstStmts(n.Body)
	case *ast.TryStmt:
		c.walkConstStmts(n.Body)
		c.walkConstStmts(n.Handler)
	case *ast.ThrowStmt:
		c.walkConstExpr(n.X)
	case *ast.ReturnStmt:
		if n.X != nil {
			c.walkConstExpr(n.X)
		}
	case *ast.PrintStmt:
		c.walkConstExpr(n.X)
	case *ast.ProduceStmt:
		c.walkConstExpr(n.X)
	case *ast.ExportStmt:
		if n.Value != nil {
			c.walkConstExpr(n.Value)
		}
	}
}

func (c *Compiler) walkConstTarget(t ast.AssignTarget) {
	switch t.Kind {
	case ast.TargetAttr:
		c.walkConstExpr(t.Obj)
	case ast.TargetIndex:
		c.walkConstExpr(t.Obj)
		c.walkConstExpr(t.Index)
	}
}

func (c *Compiler) walkConstExpr(e ast.Expr) {
	switch n := e.(type) {
	case *ast.Literal:
		switch n.Kind {
		case ast.LitInt:
			c.co.Consts.InternInt(n.I)
		case ast.LitFloat:
			c.co.Consts.InternFloat(n.F)
		case ast.LitString:
			c.co.Consts.InternString(n.S)
		}
	case *ast.AttrExpr:
		c.walkConstExpr(n.Obj)
	case *ast.IndexExpr:
		c.walkConstExpr(n.Obj)
		c.walkConstExpr(n.Index)
	case *ast.BinaryExpr:
		c.walkConstExpr(n.Left)
		c.walkConstExpr(n.Right)
	case *ast.UnaryExpr:
		c.walkConstExpr(n.Operand)
	case *ast.AndOrExpr:
		c.walkConstExpr(n.Left)
		c.walkConstExpr(n.Right)
	case *ast.CallExpr:
		c.walkConstExpr(n.Callee)
		for _, a := range n.Pos {
			c.walkConstExpr(a)
		}
		for _, a := range n.Named {
			c.co.Consts.InternString(a.Name)
			c.walkConstExpr(a.Value)
		}
	case *ast.ListExpr:
		for _, it := range n.Items {
			c.walkConstExpr(it)
		}
	case *ast.TupleExpr:
		for _, it := range n.Items {
			c.walkConstExpr(it)
		}
	case *ast.SetExpr:
		for _, it := range n.Items {
			c.walkConstExpr(it)
		}
	case *ast.DictExpr:
		for _, e := range n.Entries {
			c.walkConstExpr(e.Key)
			c.walkConstExpr(e.Value)
		}
	case *ast.RangeExpr:
		c.walkConstExpr(n.Start)
		c.walkConstExpr(n.Stop)
		if n.Step != nil {
			c.walkConstExpr(n.Step)
		}
	case *ast.FuncLit:
		sub := compileFuncBody(n)
		n.SetCodeConstID(c.co.Consts.AddCode(sub))
	}
}
