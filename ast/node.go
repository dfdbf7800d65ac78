// Package ast defines the node set the compiler (C3) consumes. Per
// spec.md §1 the lexer/parser/symbol-table builder are external
// collaborators; this package is the contract they produce against: a
// Program root whose identifiers already carry a resolved Binding.
package ast

// Node is the minimal interface every AST node implements, mirroring the
// Node/Visitor shape of the teacher's parser package, generalized away
// from PHP grammar to rhoc's statement/expression set.
type Node interface {
	Line() int
	Accept(v Visitor)
}

type Stmt interface {
	Node
	stmtNode()
}

type Expr interface {
	Node
	exprNode()
}

// BindingKind is how an external symbol-table builder has resolved an
// identifier, per spec.md §4.3's Input contract.
type BindingKind byte

const (
	BindLocal BindingKind = iota
	BindGlobal
	BindFree
	BindAttr
)

// Binding annotates an Identifier/AttrExpr with its resolved scope and
// ordinal (spec.md §4.3).
type Binding struct {
	Kind    BindingKind
	Name    string
	Ordinal int
}

// Visitor lets a caller walk the tree without a type switch in every
// client; the compiler implements it directly instead (a single recursive
// emit method per node kind, per spec.md §4.3), but other tools (a
// disassembler front-end, a linter) can use it too.
type Visitor interface {
	VisitProgram(*Program)
	VisitExprStmt(*ExprStmt)
	VisitAssignStmt(*AssignStmt)
	VisitCompoundAssignStmt(*CompoundAssignStmt)
	VisitIfStmt(*IfStmt)
	VisitWhileStmt(*WhileStmt)
	VisitForStmt(*ForStmt)
	VisitTryStmt(*TryStmt)
	VisitThrowStmt(*ThrowStmt)
	VisitReturnStmt(*ReturnStmt)
	VisitBreakStmt(*BreakStmt)
	VisitContinueStmt(*ContinueStmt)
	VisitImportStmt(*ImportStmt)
	VisitExportStmt(*ExportStmt)
	VisitPrintStmt(*PrintStmt)
	VisitProduceStmt(*ProduceStmt)

	VisitLiteral(*Literal)
	VisitIdentifier(*Identifier)
	VisitAttrExpr(*AttrExpr)
	VisitIndexExpr(*IndexExpr)
	VisitBinaryExpr(*BinaryExpr)
	VisitUnaryExpr(*UnaryExpr)
	VisitAndOrExpr(*AndOrExpr)
	VisitCallExpr(*CallExpr)
	VisitListExpr(*ListExpr)
	VisitTupleExpr(*TupleExpr)
	VisitSetExpr(*SetExpr)
	VisitDictExpr(*DictExpr)
	VisitRangeExpr(*RangeExpr)
	VisitFuncLit(*FuncLit)
	VisitReceiveExpr(*ReceiveExpr)
}

// base carries the source line every node needs.
type base struct{ line int }

func (b base) Line() int { return b.line }
