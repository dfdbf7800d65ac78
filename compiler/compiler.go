// Package compiler implements C3: it lowers an annotated AST into a
// CodeObject (bytecode + constant/symbol tables + line-number table),
// per spec.md §4.3.
package compiler

import (
	"fmt"

	"github.com/rhoc-lang/rhoc/ast"
	"github.com/rhoc-lang/rhoc/codeobj"
	"github.com/rhoc-lang/rhoc/errors"
	"github.com/rhoc-lang/rhoc/opcodes"
)

// Compiler emits bytecode for a single scope (module, function, lambda,
// generator body, or actor body). Nested function/generator/actor
// literals get their own fresh Compiler sharing nothing but the already-
// resolved Binding ordinals baked into the AST by the external
// symbol-table builder (spec.md §4.3).
type Compiler struct {
	co    *codeobj.CodeObject
	buf   *codeobj.Buffer
	lne   *codeobj.LineNoEncoder
	insN  int // running instruction count, for the line-number table

	loops       []*loopInfo
	tryDepth    int
	maxTryDepth int

	isGenerator bool
}

type loopInfo struct {
	startIns  int // byte offset of loop condition/iter re-check
	breaks    []int // positions of reserved 2-byte jump operands to backpatch
}

// CompileModule compiles a top-level program into its CodeObject, whose
// StackDepth and TryCatchDepth are the two module-level u16 depths the
// .rhoc header carries (spec.md §6).
func CompileModule(prog *ast.Program) (*codeobj.CodeObject, error) {
	c := newCompiler("<module>", false)
	fillConstants(c, prog.Stmts)
	for _, s := range prog.Stmts {
		if err := c.emitStmt(s); err != nil {
			return nil, err
		}
	}
	c.finish(prog.Line())
	return c.co, nil
}

func newCompiler(name string, isGenerator bool) *Compiler {
	co := codeobj.NewCodeObject(name)
	return &Compiler{
		co:          co,
		buf:         codeobj.NewBuffer(),
		lne:         codeobj.NewLineNoEncoder(0),
		isGenerator: isGenerator,
	}
}

func (c *Compiler) finish(firstLine int) {
	c.co.FirstLine = firstLine
	c.co.Bytecode = c.buf.Bytes()
	c.co.LineRuns = c.lne.Finish()
	c.co.StackDepth = ComputeStackDepth(c.co.Bytecode)
	c.co.TryCatchDepth = c.maxTryDepth
}

// mark records the current instruction as belonging to line, for the
// line-number table (spec.md §4.3).
func (c *Compiler) mark(line int) {
	if c.insN == 0 {
		c.lne = codeobj.NewLineNoEncoder(line)
	}
	c.lne.Mark(c.insN, line)
}

// emit writes a zero-operand opcode.
func (c *Compiler) emit(op opcodes.Op) int {
	pos := c.buf.Len()
	c.buf.WriteByte(byte(op))
	c.insN++
	return pos
}

// emit16 writes an opcode with a u16 operand, returning the operand's
// byte position (for later backpatching of jump targets).
func (c *Compiler) emit16(op opcodes.Op, operand uint16) int {
	c.buf.WriteByte(byte(op))
	opPos := c.buf.Len()
	c.buf.WriteUint16(operand)
	c.insN++
	return opPos
}

// emitJumpPlaceholder reserves a jump's operand for backpatching once the
// target offset is known.
func (c *Compiler) emitJumpPlaceholder(op opcodes.Op) int {
	return c.emit16(op, 0)
}

func (c *Compiler) patchJumpHere(operandPos int) {
	c.buf.WriteUint16At(operandPos, uint16(c.buf.Len()))
}

func (c *Compiler) patchJumpTo(operandPos int, target int) {
	c.buf.WriteUint16At(operandPos, uint16(target))
}

func (c *Compiler) here() int { return c.buf.Len() }

// loadConstInt interns an int literal into the constant table and emits
// LOAD_CONST <id> (spec.md §4.2/§4.3).
func (c *Compiler) loadConstInt(v int64) {
	id := c.co.Consts.InternInt(v)
	c.emit16(opcodes.LOAD_CONST, uint16(id))
}

func (c *Compiler) loadConstFloat(v float64) {
	id := c.co.Consts.InternFloat(v)
	c.emit16(opcodes.LOAD_CONST, uint16(id))
}

func (c *Compiler) loadConstString(v string) {
	id := c.co.Consts.InternString(v)
	c.emit16(opcodes.LOAD_CONST, uint16(id))
}

func (c *Compiler) symbolOrdinalFor(b ast.Binding) int {
	switch b.Kind {
	case ast.BindLocal, ast.BindGlobal:
		c.co.Symbols.SetLocalAt(b.Ordinal, b.Name)
	case ast.BindFree:
		c.co.Symbols.SetFreeAt(b.Ordinal, b.Name)
	}
	return b.Ordinal
}

func (c *Compiler) attrOrdinalFor(name string) int {
	return c.co.Symbols.AddAttr(name)
}

func compileErr(line int, format string, args ...interface{}) error {
	return &errors.CompileError{Line: line, Message: fmt.Sprintf(format, args...)}
}
