package ast

// LitKind tags a Literal's payload.
type LitKind byte

const (
	LitNull LitKind = iota
	LitBool
	LitInt
	LitFloat
	LitString
)

type Literal struct {
	base
	Kind LitKind
	B    bool
	I    int64
	F    float64
	S    string
}

func (n *Literal) exprNode()        {}
func (n *Literal) Accept(v Visitor) { v.VisitLiteral(n) }

// Identifier is a resolved name reference: LOAD/LOAD_GLOBAL/LOAD_NAME
// depending on Binding.Kind (spec.md §4.3).
type Identifier struct {
	base
	Binding Binding
}

func (n *Identifier) exprNode()        {}
func (n *Identifier) Accept(v Visitor) { v.VisitIdentifier(n) }

// AttrExpr is `obj.name`. Obj is compiled first, then LOAD_ATTR <attr-id>.
type AttrExpr struct {
	base
	Obj  Expr
	Attr string
}

func (n *AttrExpr) exprNode()        {}
func (n *AttrExpr) Accept(v Visitor) { v.VisitAttrExpr(n) }

// IndexExpr is `obj[idx]`.
type IndexExpr struct {
	base
	Obj, Index Expr
}

func (n *IndexExpr) exprNode()        {}
func (n *IndexExpr) Accept(v Visitor) { v.VisitIndexExpr(n) }

// BinOpKind mirrors values.BinOp plus comparisons/equality, for the node
// the compiler switches on to pick an opcode.
type BinOpKind byte

const (
	BAdd BinOpKind = iota
	BSub
	BMul
	BDiv
	BMod
	BPow
	BBitAnd
	BBitOr
	BBitXor
	BShiftL
	BShiftR
	BEqual
	BNotEqual
	BLt
	BGt
	BLe
	BGe
	BIn
)

type BinaryExpr struct {
	base
	Op          BinOpKind
	Left, Right Expr
}

func (n *BinaryExpr) exprNode()        {}
func (n *BinaryExpr) Accept(v Visitor) { v.VisitBinaryExpr(n) }

type UnaryOpKind byte

const (
	UPlus UnaryOpKind = iota
	UMinus
	UNot
	UBitNot
)

type UnaryExpr struct {
	base
	Op      UnaryOpKind
	Operand Expr
}

func (n *UnaryExpr) exprNode()        {}
func (n *UnaryExpr) Accept(v Visitor) { v.VisitUnaryExpr(n) }

// AndOrExpr is short-circuiting `and`/`or` (spec.md §4.3).
type AndOrExpr struct {
	base
	IsAnd       bool
	Left, Right Expr
}

func (n *AndOrExpr) exprNode()        {}
func (n *AndOrExpr) Accept(v Visitor) { v.VisitAndOrExpr(n) }

// NamedArg is one `name = value` call argument.
type NamedArg struct {
	Name  string
	Value Expr
}

type CallExpr struct {
	base
	Callee Expr
	Pos    []Expr
	Named  []NamedArg
}

func (n *CallExpr) exprNode()        {}
func (n *CallExpr) Accept(v Visitor) { v.VisitCallExpr(n) }

type ListExpr struct {
	base
	Items []Expr
}

func (n *ListExpr) exprNode()        {}
func (n *ListExpr) Accept(v Visitor) { v.VisitListExpr(n) }

type TupleExpr struct {
	base
	Items []Expr
}

func (n *TupleExpr) exprNode()        {}
func (n *TupleExpr) Accept(v Visitor) { v.VisitTupleExpr(n) }

type SetExpr struct {
	base
	Items []Expr
}

func (n *SetExpr) exprNode()        {}
func (n *SetExpr) Accept(v Visitor) { v.VisitSetExpr(n) }

type DictEntry struct{ Key, Value Expr }

type DictExpr struct {
	base
	Entries []DictEntry
}

func (n *DictExpr) exprNode()        {}
func (n *DictExpr) Accept(v Visitor) { v.VisitDictExpr(n) }

// RangeExpr is `start..stop` or `start..stop..step`, compiled to MAKE_RANGE.
type RangeExpr struct {
	base
	Start, Stop, Step Expr // Step may be nil
}

func (n *RangeExpr) exprNode()        {}
func (n *RangeExpr) Accept(v Visitor) { v.VisitRangeExpr(n) }

// FuncKind distinguishes function/lambda/generator/actor literals, which
// all compile via the same MAKE_FUNCOBJ family (spec.md §4.3).
type FuncKind byte

const (
	KindFunction FuncKind = iota
	KindLambda
	KindGenerator
	KindActor
)

// Param is one declared parameter, with an optional default expression
// and an optional type-hint binding resolved by the symbol-table builder.
type Param struct {
	Name    string
	Default Expr // nil if required
	Hint    string
}

// FuncLit is a function/lambda/generator/actor literal. Its Body is
// compiled by a fresh sub-compiler sharing the symbol table (spec.md §4.3);
// the emitting pass only ever sees LOAD_CONST <id> + MAKE_* for it.
type FuncLit struct {
	base
	Kind       FuncKind
	Name       string
	Params     []Param
	ReturnHint string
	Body       []Stmt

	// codeConstID is filled in by the compiler's first pass (spec.md
	// §4.3): the constant-table id of this literal's pre-compiled
	// CodeObject, polled by the emitting pass when it reaches this node.
	codeConstID int
}

// CodeConstID returns the constant-table id the compiler's first pass
// assigned to this literal's CodeObject.
func (n *FuncLit) CodeConstID() int { return n.codeConstID }

// SetCodeConstID is called by the compiler's first pass once it has
// compiled this literal's body into a CodeObject constant.
func (n *FuncLit) SetCodeConstID(id int) { n.codeConstID = id }

func (n *FuncLit) exprNode()        {}
func (n *FuncLit) Accept(v Visitor) { v.VisitFuncLit(n) }

// ReceiveExpr is `receive` inside an actor body: blocks on the mailbox,
// pushes the dequeued Message (spec.md §4.5).
type ReceiveExpr struct{ base }

func (n *ReceiveExpr) exprNode()        {}
func (n *ReceiveExpr) Accept(v Visitor) { v.VisitReceiveExpr(n) }
