package ast

// Program is the compiler's root input: a list of top-level statements
// (spec.md §4.3 Input).
type Program struct {
	base
	Stmts []Stmt
}

func (n *Program) stmtNode()        {}
func (n *Program) Accept(v Visitor) { v.VisitProgram(n) }

// ExprStmt is an expression used as a statement. The compiler follows
// every expression statement, call or not, with a trailing POP; the node
// itself carries no restriction on the expression's form.
type ExprStmt struct {
	base
	X Expr
}

func (n *ExprStmt) stmtNode()        {}
func (n *ExprStmt) Accept(v Visitor) { v.VisitExprStmt(n) }

// AssignTargetKind selects STORE vs STORE_GLOBAL vs SET_ATTR vs SET_INDEX.
type AssignTargetKind byte

const (
	TargetName AssignTargetKind = iota
	TargetAttr
	TargetIndex
)

// AssignTarget describes the left-hand side of an assignment.
type AssignTarget struct {
	Kind    AssignTargetKind
	Binding Binding  // for TargetName
	Obj     Expr     // for TargetAttr/TargetIndex
	Attr    string   // for TargetAttr
	Index   Expr     // for TargetIndex
}

type AssignStmt struct {
	base
	Target AssignTarget
	Value  Expr
}

func (n *AssignStmt) stmtNode()        {}
func (n *AssignStmt) Accept(v Visitor) { v.VisitAssignStmt(n) }

// CompoundAssignStmt is `x += y` etc. (spec.md §4.3): attribute/index
// targets are compiled with DUP/DUP_TWO to avoid re-evaluating the
// receiver.
type CompoundAssignStmt struct {
	base
	Target AssignTarget
	Op     BinOpKind
	Value  Expr
}

func (n *CompoundAssignStmt) stmtNode()        {}
func (n *CompoundAssignStmt) Accept(v Visitor) { v.VisitCompoundAssignStmt(n) }

type IfBranch struct {
	Cond Expr // nil for the trailing `else`
	Body []Stmt
}

type IfStmt struct {
	base
	Branches []IfBranch
}

func (n *IfStmt) stmtNode()        {}
func (n *IfStmt) Accept(v Visitor) { v.VisitIfStmt(n) }

type WhileStmt struct {
	base
	Cond Expr
	Body []Stmt
}

func (n *WhileStmt) stmtNode()        {}
func (n *WhileStmt) Accept(v Visitor) { v.VisitWhileStmt(n) }

// ForStmt is `for <vars> in <iter> { body }`. Vars has more than one entry
// when the loop variable is a tuple pattern expanded via SEQ_EXPAND
// (spec.md §4.3).
type ForStmt struct {
	base
	Vars []Binding
	Iter Expr
	Body []Stmt
}

func (n *ForStmt) stmtNode()        {}
func (n *ForStmt) Accept(v Visitor) { v.VisitForStmt(n) }

// TryStmt is `try { Body } catch (CatchType) { Handler }` (spec.md §4.3).
type TryStmt struct {
	base
	Body      []Stmt
	CatchType string // resolved exception class name
	CatchVar  string // bound name for the caught exception, "" if unused
	Handler   []Stmt
}

func (n *TryStmt) stmtNode()        {}
func (n *TryStmt) Accept(v Visitor) { v.VisitTryStmt(n) }

type ThrowStmt struct {
	base
	X Expr
}

func (n *ThrowStmt) stmtNode()        {}
func (n *ThrowStmt) Accept(v Visitor) { v.VisitThrowStmt(n) }

// ReturnStmt's X is nil for a bare `return` and MUST be nil inside a
// generator body (spec.md §4.3: the parser catches this, compiler
// double-checks).
type ReturnStmt struct {
	base
	X Expr
}

func (n *ReturnStmt) stmtNode()        {}
func (n *ReturnStmt) Accept(v Visitor) { v.VisitReturnStmt(n) }

type BreakStmt struct{ base }

func (n *BreakStmt) stmtNode()        {}
func (n *BreakStmt) Accept(v Visitor) { v.VisitBreakStmt(n) }

type ContinueStmt struct{ base }

func (n *ContinueStmt) stmtNode()        {}
func (n *ContinueStmt) Accept(v Visitor) { v.VisitContinueStmt(n) }

// ImportStmt is `import name`.
type ImportStmt struct {
	base
	Name    string
	Binding Binding
}

func (n *ImportStmt) stmtNode()        {}
func (n *ImportStmt) Accept(v Visitor) { v.VisitImportStmt(n) }

// ExportKind selects EXPORT vs EXPORT_GLOBAL vs EXPORT_NAME (spec.md §4.3).
type ExportKind byte

const (
	ExportLocal ExportKind = iota
	ExportGlobal
	ExportNamed
)

type ExportStmt struct {
	base
	Kind  ExportKind
	Name  string
	Value Expr
}

func (n *ExportStmt) stmtNode()        {}
func (n *ExportStmt) Accept(v Visitor) { v.VisitExportStmt(n) }

// PrintStmt is `print <expr>` (used by spec.md §8's scenarios).
type PrintStmt struct {
	base
	X Expr
}

func (n *PrintStmt) stmtNode()        {}
func (n *PrintStmt) Accept(v Visitor) { v.VisitPrintStmt(n) }

// ProduceStmt is `produce <expr>` (generator yield, spec.md §4.3).
type ProduceStmt struct {
	base
	X Expr
}

func (n *ProduceStmt) stmtNode()        {}
func (n *ProduceStmt) Accept(v Visitor) { v.VisitProduceStmt(n) }
