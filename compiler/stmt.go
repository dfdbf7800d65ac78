package compiler

import (
	"github.com/rhoc-lang/rhoc/ast"
	"github.com/rhoc-lang/rhoc/opcodes"
)

func (c *Compiler) emitStmt(s ast.Stmt) error {
	c.mark(s.Line())
	switch n := s.(type) {
	case *ast.ExprStmt:
		return c.emitExprStmt(n)
	case *ast.AssignStmt:
		return c.emitAssign(n)
	case *ast.CompoundAssignStmt:
		return c.emitCompoundAssign(n)
	case *ast.IfStmt:
		return c.emitIf(n)
	case *ast.WhileStmt:
		return c.emitWhile(n)
	case *ast.ForStmt:
		return c.emitFor(n)
	case *ast.TryStmt:
		return c.emitTry(n)
	case *ast.ThrowStmt:
		if err := c.emitExpr(n.X); err != nil {
			return err
		}
		c.emit(opcodes.THROW)
		return nil
	case *ast.ReturnStmt:
		return c.emitReturn(n)
	case *ast.BreakStmt:
		return c.emitBreak(n)
	case *ast.ContinueStmt:
		return c.emitContinue(n)
	case *ast.ImportStmt:
		return c.emitImport(n)
	case *ast.ExportStmt:
		return c.emitExport(n)
	case *ast.PrintStmt:
		if err := c.emitExpr(n.X); err != nil {
			return err
		}
		c.emit(opcodes.PRINT)
		return nil
	case *ast.ProduceStmt:
		if err := c.emitExpr(n.X); err != nil {
			return err
		}
		c.emit(opcodes.PRODUCE)
		return nil
	default:
		return compileErr(s.Line(), "unhandled statement node")
	}
}

// emitExprStmt emits the expression followed by a trailing POP, whatever
// the expression's form (calls and every other expression alike), since a
// statement never leaves a residual value on the stack (spec.md §3
// invariant: after a statement completes at module scope, val_stack ==
// val_stack_base).
func (c *Compiler) emitExprStmt(n *ast.ExprStmt) error {
	if err := c.emitExpr(n.X); err != nil {
		return err
	}
	c.emit(opcodes.POP)
	return nil
}

func (c *Compiler) emitAssign(n *ast.AssignStmt) error {
	switch n.Target.Kind {
	case ast.TargetName:
		if err := c.emitExpr(n.Value); err != nil {
			return err
		}
		ord := c.symbolOrdinalFor(n.Target.Binding)
		if n.Target.Binding.Kind == ast.BindGlobal {
			c.emit16(opcodes.STORE_GLOBAL, uint16(ord))
		} else {
			c.emit16(opcodes.STORE, uint16(ord))
		}
		return nil
	case ast.TargetAttr:
		if err := c.emitExpr(n.Target.Obj); err != nil {
			return err
		}
		if err := c.emitExpr(n.Value); err != nil {
			return err
		}
		// obj below, value on top: SET_ATTR's expected order
		c.emit16(opcodes.SET_ATTR, uint16(c.attrOrdinalFor(n.Target.Attr)))
		return nil
	case ast.TargetIndex:
		// Value first, then target, then index (spec.md §4.3): leaves
		// value deepest so SET_INDEX consumes three slots in one read.
		if err := c.emitExpr(n.Value); err != nil {
			return err
		}
		if err := c.emitExpr(n.Target.Obj); err != nil {
			return err
		}
		if err := c.emitExpr(n.Target.Index); err != nil {
			return err
		}
		c.emit(opcodes.SET_INDEX)
		return nil
	}
	return compileErr(n.Line(), "unhandled assignment target")
}

// emitCompoundAssign handles `x += y` for attribute/index targets via
// DUP/DUP_TWO to avoid re-evaluating the receiver (spec.md §4.3).
func (c *Compiler) emitCompoundAssign(n *ast.CompoundAssignStmt) error {
	switch n.Target.Kind {
	case ast.TargetName:
		ord := c.symbolOrdinalFor(n.Target.Binding)
		loadOp, storeOp := opcodes.LOAD, opcodes.STORE
		if n.Target.Binding.Kind == ast.BindGlobal {
			loadOp, storeOp = opcodes.LOAD_GLOBAL, opcodes.STORE_GLOBAL
		}
		c.emit16(loadOp, uint16(ord))
		if err := c.emitExpr(n.Value); err != nil {
			return err
		}
		c.emit(binOpcode(n.Op))
		c.emit16(storeOp, uint16(ord))
		return nil
	case ast.TargetAttr:
		if err := c.emitExpr(n.Target.Obj); err != nil {
			return err
		}
		c.emit(opcodes.DUP)
		attrID := uint16(c.attrOrdinalFor(n.Target.Attr))
		c.emit16(opcodes.LOAD_ATTR, attrID)
		if err := c.emitExpr(n.Value); err != nil {
			return err
		}
		c.emit(binOpcode(n.Op))
		c.emit16(opcodes.SET_ATTR, attrID)
		return nil
	case ast.TargetIndex:
		if err := c.emitExpr(n.Target.Obj); err != nil {
			return err
		}
		if err := c.emitExpr(n.Target.Index); err != nil {
			return err
		}
		c.emit(opcodes.DUP_TWO)
		c.emit(opcodes.LOAD_INDEX)
		if err := c.emitExpr(n.Value); err != nil {
			return err
		}
		c.emit(binOpcode(n.Op))
		c.emit(opcodes.ROT_THREE)
		c.emit(opcodes.SET_INDEX)
		return nil
	}
	return compileErr(n.Line(), "unhandled compound assignment target")
}

// emitIf reserves one forward-jump placeholder per branch and backpatches
// them all to the same post-chain offset (spec.md §4.3).
func (c *Compiler) emitIf(n *ast.IfStmt) error {
	var endJumps []int
	for i, br := range n.Branches {
		if br.Cond == nil { // trailing else
			if err := c.emitStmts(br.Body); err != nil {
				return err
			}
			continue
		}
		if err := c.emitExpr(br.Cond); err != nil {
			return err
		}
		skipPos := c.emitJumpPlaceholder(opcodes.JMP_IF_FALSE)
		if err := c.emitStmts(br.Body); err != nil {
			return err
		}
		if i < len(n.Branches)-1 {
			endJumps = append(endJumps, c.emitJumpPlaceholder(opcodes.JMP))
		}
		c.patchJumpHere(skipPos)
	}
	for _, pos := range endJumps {
		c.patchJumpHere(pos)
	}
	return nil
}

func (c *Compiler) emitStmts(stmts []ast.Stmt) error {
	for _, s := range stmts {
		if err := c.emitStmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiler) emitWhile(n *ast.WhileStmt) error {
	start := c.here()
	li := &loopInfo{startIns: start}
	c.loops = append(c.loops, li)

	if err := c.emitExpr(n.Cond); err != nil {
		return err
	}
	exitPos := c.emitJumpPlaceholder(opcodes.JMP_IF_FALSE)
	if err := c.emitStmts(n.Body); err != nil {
		return err
	}
	c.emit16(opcodes.JMP_BACK, uint16(start))
	c.patchJumpHere(exitPos)

	for _, b := range li.breaks {
		c.patchJumpHere(b)
	}
	c.loops = c.loops[:len(c.loops)-1]
	return nil
}

// emitFor emits GET_ITER then a LOOP_ITER-driven loop (spec.md §4.3): the
// loop variable (or tuple pattern expanded via SEQ_EXPAND) is stored each
// iteration; a final POP discards the iterator.
func (c *Compiler) emitFor(n *ast.ForStmt) error {
	if err := c.emitExpr(n.Iter); err != nil {
		return err
	}
	c.emit(opcodes.GET_ITER)

	start := c.here()
	li := &loopInfo{startIns: start}
	c.loops = append(c.loops, li)

	exitPos := c.emitJumpPlaceholder(opcodes.LOOP_ITER)
	if len(n.Vars) == 1 {
		ord := c.symbolOrdinalFor(n.Vars[0])
		c.emit16(opcodes.STORE, uint16(ord))
	} else {
		c.emit16(opcodes.SEQ_EXPAND, uint16(len(n.Vars)))
		// SEQ_EXPAND leaves the expanded values with the first loop
		// variable deepest; store back-to-front so each STORE consumes
		// the shallowest remaining slot.
		for i := len(n.Vars) - 1; i >= 0; i-- {
			ord := c.symbolOrdinalFor(n.Vars[i])
			c.emit16(opcodes.STORE, uint16(ord))
		}
	}
	if err := c.emitStmts(n.Body); err != nil {
		return err
	}
	c.emit16(opcodes.JMP_BACK, uint16(start))
	c.patchJumpHere(exitPos)
	for _, b := range li.breaks {
		c.patchJumpHere(b)
	}
	c.emit(opcodes.POP) // discard the iterator

	c.loops = c.loops[:len(c.loops)-1]
	return nil
}

func (c *Compiler) emitBreak(n *ast.BreakStmt) error {
	if len(c.loops) == 0 {
		return compileErr(n.Line(), "break outside loop")
	}
	li := c.loops[len(c.loops)-1]
	li.breaks = append(li.breaks, c.emitJumpPlaceholder(opcodes.JMP))
	return nil
}

func (c *Compiler) emitContinue(n *ast.ContinueStmt) error {
	if len(c.loops) == 0 {
		return compileErr(n.Line(), "continue outside loop")
	}
	li := c.loops[len(c.loops)-1]
	c.emit16(opcodes.JMP_BACK, uint16(li.startIns))
	return nil
}

// emitTry implements the try/catch sequence of spec.md §4.3.
func (c *Compiler) emitTry(n *ast.TryStmt) error {
	c.tryDepth++
	if c.tryDepth > c.maxTryDepth {
		c.maxTryDepth = c.tryDepth
	}

	tryBeginPos := c.emit16Pair(opcodes.TRY_BEGIN)
	tryStart := c.here()
	if err := c.emitStmts(n.Body); err != nil {
		return err
	}
	c.emit(opcodes.TRY_END)
	tryEnd := c.here()
	skipHandler := c.emitJumpPlaceholder(opcodes.JMP)
	handlerPos := c.here()

	catchClass := c.co.Consts.InternString(n.CatchType)
	c.emit16(opcodes.LOAD_CONST, uint16(catchClass))
	mismatchPos := c.emitJumpPlaceholder(opcodes.JMP_IF_EXC_MISMATCH)
	if n.CatchVar != "" {
		ord := c.co.Symbols.AddLocal(n.CatchVar)
		c.emit16(opcodes.STORE, uint16(ord))
	} else {
		c.emit(opcodes.POP)
	}
	if err := c.emitStmts(n.Handler); err != nil {
		return err
	}
	rethrowSkip := c.emitJumpPlaceholder(opcodes.JMP)
	c.patchJumpHere(mismatchPos)
	c.emit(opcodes.THROW)
	c.patchJumpHere(rethrowSkip)
	c.patchJumpHere(skipHandler)

	c.buf.WriteUint16At(tryBeginPos, uint16(tryEnd-tryStart))
	c.buf.WriteUint16At(tryBeginPos+2, uint16(handlerPos))

	c.tryDepth--
	return nil
}

// emit16Pair writes TRY_BEGIN with two reserved u16 operands and returns
// the position of the first.
func (c *Compiler) emit16Pair(op opcodes.Op) int {
	c.buf.WriteByte(byte(op))
	pos := c.buf.Len()
	c.buf.WriteUint16(0)
	c.buf.WriteUint16(0)
	c.insN++
	return pos
}

func (c *Compiler) emitReturn(n *ast.ReturnStmt) error {
	if c.isGenerator && n.X != nil {
		return compileErr(n.Line(), "return with a value is not allowed inside a generator")
	}
	if n.X != nil {
		if err := c.emitExpr(n.X); err != nil {
			return err
		}
	} else {
		c.emit(opcodes.LOAD_NULL)
	}
	c.emit(opcodes.RETURN)
	return nil
}

func (c *Compiler) emitImport(n *ast.ImportStmt) error {
	nameID := c.co.Consts.InternString(n.Name)
	c.emit16(opcodes.IMPORT, uint16(nameID))
	ord := c.symbolOrdinalFor(n.Binding)
	if n.Binding.Kind == ast.BindGlobal {
		c.emit16(opcodes.STORE_GLOBAL, uint16(ord))
	} else {
		c.emit16(opcodes.STORE, uint16(ord))
	}
	return nil
}

func (c *Compiler) emitExport(n *ast.ExportStmt) error {
	if n.Kind == ast.ExportGlobal {
		// SPEC_FULL §12: reject export of an unbound global name at
		// compile time instead of deferring to a runtime LOAD_GLOBAL
		// failure.
		if !c.globalIsKnown(n.Name) {
			return compileErr(n.Line(), "export global of unbound name %q", n.Name)
		}
	}
	nameID := uint16(c.co.Consts.InternString(n.Name))
	if n.Value != nil {
		if err := c.emitExpr(n.Value); err != nil {
			return err
		}
	} else {
		// Bare `export global <name>`/`export <name>` form (spec.md §4.3):
		// no expression was given, so the value to export is the name's
		// current binding, re-loaded by name through its symbol-table slot.
		ord := -1
		for i, local := range c.co.Symbols.Locals {
			if local == n.Name {
				ord = i
				break
			}
		}
		if ord < 0 {
			return compileErr(n.Line(), "export of unbound name %q", n.Name)
		}
		c.emit16(opcodes.LOAD_GLOBAL, uint16(ord))
	}
	switch n.Kind {
	case ast.ExportGlobal:
		c.emit16(opcodes.EXPORT_GLOBAL, nameID)
	case ast.ExportNamed:
		c.emit16(opcodes.EXPORT_NAME, nameID)
	default:
		c.emit16(opcodes.EXPORT, nameID)
	}
	return nil
}

// globalIsKnown is a conservative check: a name is known once the compiler
// has already recorded it in the symbol table's locals, which happens for
// every BindLocal or BindGlobal binding it has seen (assignment, import,
// loop variable) and for parameters. The
// external symbol-table builder is the authority on scoping; this is a
// belt-and-suspenders re-check, not a fresh resolution pass.
func (c *Compiler) globalIsKnown(name string) bool {
	for _, n := range c.co.Symbols.Locals {
		if n == name {
			return true
		}
	}
	return false
}
