package compiler

import (
	"github.com/rhoc-lang/rhoc/ast"
	"github.com/rhoc-lang/rhoc/opcodes"
)

var binOpTable = map[ast.BinOpKind]opcodes.Op{
	ast.BAdd: opcodes.ADD, ast.BSub: opcodes.SUB, ast.BMul: opcodes.MUL,
	ast.BDiv: opcodes.DIV, ast.BMod: opcodes.MOD, ast.BPow: opcodes.POW,
	ast.BBitAnd: opcodes.BITAND, ast.BBitOr: opcodes.BITOR, ast.BBitXor: opcodes.BITXOR,
	ast.BShiftL: opcodes.SHIFTL, ast.BShiftR: opcodes.SHIFTR,
	ast.BEqual: opcodes.EQUAL, ast.BNotEqual: opcodes.NOTEQ,
	ast.BLt: opcodes.LT, ast.BGt: opcodes.GT, ast.BLe: opcodes.LE, ast.BGe: opcodes.GE,
	ast.BIn: opcodes.IN,
}

func binOpcode(op ast.BinOpKind) opcodes.Op { return binOpTable[op] }

func (c *Compiler) emitLoadNull() { c.emit(opcodes.LOAD_NULL) }

func (c *Compiler) emitExpr(e ast.Expr) error {
	switch n := e.(type) {
	case *ast.Literal:
		return c.emitLiteral(n)
	case *ast.Identifier:
		return c.emitIdentifier(n)
	case *ast.AttrExpr:
		if err := c.emitExpr(n.Obj); err != nil {
			return err
		}
		c.emit16(opcodes.LOAD_ATTR, uint16(c.attrOrdinalFor(n.Attr)))
		return nil
	case *ast.IndexExpr:
		if err := c.emitExpr(n.Obj); err != nil {
			return err
		}
		if err := c.emitExpr(n.Index); err != nil {
			return err
		}
		c.emit(opcodes.LOAD_INDEX)
		return nil
	case *ast.BinaryExpr:
		if err := c.emitExpr(n.Left); err != nil {
			return err
		}
		if err := c.emitExpr(n.Right); err != nil {
			return err
		}
		c.emit(binOpcode(n.Op))
		return nil
	case *ast.UnaryExpr:
		return c.emitUnary(n)
	case *ast.AndOrExpr:
		return c.emitAndOr(n)
	case *ast.CallExpr:
		return c.emitCall(n)
	case *ast.ListExpr:
		return c.emitSeqLit(n.Items, opcodes.MAKE_LIST)
	case *ast.TupleExpr:
		return c.emitSeqLit(n.Items, opcodes.MAKE_TUPLE)
	case *ast.SetExpr:
		return c.emitSeqLit(n.Items, opcodes.MAKE_SET)
	case *ast.DictExpr:
		return c.emitDictLit(n)
	case *ast.RangeExpr:
		return c.emitRange(n)
	case *ast.FuncLit:
		return c.emitFuncLit(n)
	case *ast.ReceiveExpr:
		c.emit(opcodes.RECEIVE)
		return nil
	}
	return compileErr(e.Line(), "unhandled expression node")
}

func (c *Compiler) emitLiteral(n *ast.Literal) error {
	switch n.Kind {
	case ast.LitNull:
		c.emit(opcodes.LOAD_NULL)
	case ast.LitBool:
		// Bool literals are interned as the Int constants 1/0; the
		// constant table has no bool kind, so they load as Int values.
		c.loadConstInt(boolToInt(n.B))
	case ast.LitInt:
		c.loadConstInt(n.I)
	case ast.LitFloat:
		c.loadConstFloat(n.F)
	case ast.LitString:
		c.loadConstString(n.S)
	}
	return nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func (c *Compiler) emitIdentifier(n *ast.Identifier) error {
	ord := c.symbolOrdinalFor(n.Binding)
	switch n.Binding.Kind {
	case ast.BindGlobal:
		c.emit16(opcodes.LOAD_GLOBAL, uint16(ord))
	case ast.BindFree:
		c.emit16(opcodes.LOAD_NAME, uint16(ord))
	default:
		c.emit16(opcodes.LOAD, uint16(ord))
	}
	return nil
}

// emitUnary compiles unary operators. `+` compiles to NOP (spec.md §4.3:
// it is an identity on numeric types, and a type error on others is
// deferred to the first real operation).
func (c *Compiler) emitUnary(n *ast.UnaryExpr) error {
	if err := c.emitExpr(n.Operand); err != nil {
		return err
	}
	switch n.Op {
	case ast.UPlus:
		c.emit(opcodes.NOP)
	case ast.UMinus:
		c.emit(opcodes.UMINUS)
	case ast.UNot:
		c.emit(opcodes.NOT)
	case ast.UBitNot:
		c.emit(opcodes.BITNOT)
	}
	return nil
}

// emitAndOr uses short-circuit jumps that pop only if the jump is not
// taken (spec.md §4.3).
func (c *Compiler) emitAndOr(n *ast.AndOrExpr) error {
	if err := c.emitExpr(n.Left); err != nil {
		return err
	}
	op := opcodes.JMP_IF_FALSE_ELSE_POP
	if !n.IsAnd {
		op = opcodes.JMP_IF_TRUE_ELSE_POP
	}
	shortCircuit := c.emitJumpPlaceholder(op)
	if err := c.emitExpr(n.Right); err != nil {
		return err
	}
	c.patchJumpHere(shortCircuit)
	return nil
}

// emitCall emits positional args in source order, then named args as
// (name-const-id, value) pairs, then the callee, then CALL (spec.md §4.3).
func (c *Compiler) emitCall(n *ast.CallExpr) error {
	for _, a := range n.Pos {
		if err := c.emitExpr(a); err != nil {
			return err
		}
	}
	for _, a := range n.Named {
		nameID := c.co.Consts.InternString(a.Name)
		c.emit16(opcodes.LOAD_CONST, uint16(nameID))
		if err := c.emitExpr(a.Value); err != nil {
			return err
		}
	}
	if err := c.emitExpr(n.Callee); err != nil {
		return err
	}
	operand := uint16(len(n.Pos)) | uint16(len(n.Named))<<8
	c.emit16(opcodes.CALL, operand)
	return nil
}

func (c *Compiler) emitSeqLit(items []ast.Expr, op opcodes.Op) error {
	for _, it := range items {
		if err := c.emitExpr(it); err != nil {
			return err
		}
	}
	c.emit16(op, uint16(len(items)))
	return nil
}

func (c *Compiler) emitDictLit(n *ast.DictExpr) error {
	for _, entry := range n.Entries {
		if err := c.emitExpr(entry.Key); err != nil {
			return err
		}
		if err := c.emitExpr(entry.Value); err != nil {
			return err
		}
	}
	c.emit16(opcodes.MAKE_DICT, uint16(len(n.Entries)))
	return nil
}

func (c *Compiler) emitRange(n *ast.RangeExpr) error {
	if err := c.emitExpr(n.Start); err != nil {
		return err
	}
	if err := c.emitExpr(n.Stop); err != nil {
		return err
	}
	if n.Step != nil {
		if err := c.emitExpr(n.Step); err != nil {
			return err
		}
	} else {
		c.loadConstInt(1)
	}
	c.emit(opcodes.MAKE_RANGE)
	return nil
}

// emitFuncLit issues LOAD_CONST <id> for the pre-compiled CodeObject
// (filled in by the first pass), its parameter defaults and hints, and the
// matching MAKE_*. A lambda goes through the same path, with whatever
// defaults and hints its parameters declare (spec.md §4.3).
func (c *Compiler) emitFuncLit(n *ast.FuncLit) error {
	c.emit16(opcodes.LOAD_CONST, uint16(n.CodeConstID()))

	nDefaults := 0
	for _, p := range n.Params {
		if p.Default != nil {
			if err := c.emitExpr(p.Default); err != nil {
				return err
			}
			nDefaults++
		}
	}
	nHints := 0
	for _, p := range n.Params {
		if p.Hint != "" {
			c.loadConstString(p.Hint)
			nHints++
		}
	}
	if n.ReturnHint != "" {
		c.loadConstString(n.ReturnHint)
		nHints++
	}
	operand := uint16(nDefaults) | uint16(nHints)<<8

	switch n.Kind {
	case ast.KindGenerator:
		c.emit16(opcodes.MAKE_GENERATOR, operand)
	case ast.KindActor:
		c.emit16(opcodes.MAKE_ACTOR, operand)
	default:
		c.emit16(opcodes.MAKE_FUNCOBJ, operand)
	}
	return nil
}
