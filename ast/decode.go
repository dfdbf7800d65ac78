package ast

import (
	"encoding/json"
	"fmt"
)

// DecodeProgram parses the JSON interchange format an external front end
// (lexer/parser/symbol-table builder, spec.md §1/§4.3 — out of scope for
// this repository) emits as its compiler-facing contract: every node is a
// JSON object tagged by a "kind" field, with Stmt/Expr fields deferred
// via json.RawMessage until the concrete node type is known. This is the
// only place raw program text would ever need to cross into this
// repository, and it never does — cmd/rhocc's `compile` command consumes
// this format directly.
func DecodeProgram(data []byte) (*Program, error) {
	var raw rawNode
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("ast: invalid program json: %w", err)
	}
	if raw.Kind != "Program" {
		return nil, fmt.Errorf("ast: root node must be %q, got %q", "Program", raw.Kind)
	}
	stmts, err := decodeStmts(raw.Stmts)
	if err != nil {
		return nil, err
	}
	return &Program{base: base{line: raw.Line}, Stmts: stmts}, nil
}

// rawNode is the wire shape every node marshals to: a kind tag, this
// node's own scalar fields, and every possible child slot as deferred
// raw JSON. Decoding a concrete node type reads only the fields that
// kind actually uses.
type rawNode struct {
	Kind string `json:"kind"`
	Line int    `json:"line"`

	// scalars
	LitKind   string `json:"lit_kind"`
	Bool      bool   `json:"bool"`
	Int       int64  `json:"int"`
	Float     float64 `json:"float"`
	Str       string `json:"str"`
	Name      string `json:"name"`
	Attr      string `json:"attr"`
	Op        string `json:"op"`
	IsAnd     bool   `json:"is_and"`
	FuncKind  string `json:"func_kind"`
	ReturnHint string `json:"return_hint"`
	CatchType string `json:"catch_type"`
	CatchVar  string `json:"catch_var"`
	ExportKind string `json:"export_kind"`
	TargetKind string `json:"target_kind"`

	Binding *rawBinding `json:"binding"`

	// children, deferred
	X       json.RawMessage   `json:"x"`
	Obj     json.RawMessage   `json:"obj"`
	Index   json.RawMessage   `json:"index"`
	Left    json.RawMessage   `json:"left"`
	Right   json.RawMessage   `json:"right"`
	Operand json.RawMessage   `json:"operand"`
	Callee  json.RawMessage   `json:"callee"`
	Value   json.RawMessage   `json:"value"`
	Start   json.RawMessage   `json:"start"`
	Stop    json.RawMessage   `json:"stop"`
	Step    json.RawMessage   `json:"step"`
	Cond    json.RawMessage   `json:"cond"`
	Iter    json.RawMessage   `json:"iter"`

	Items   []json.RawMessage `json:"items"`
	Pos     []json.RawMessage `json:"pos"`
	Stmts   []json.RawMessage `json:"stmts"`
	Body    []json.RawMessage `json:"body"`
	Handler []json.RawMessage `json:"handler"`

	Named   []rawNamedArg  `json:"named"`
	Entries []rawDictEntry `json:"entries"`
	Params  []rawParam     `json:"params"`
	Vars    []rawBinding   `json:"vars"`
	Branches []rawBranch   `json:"branches"`

	Target *rawTarget `json:"target"`
}

type rawBinding struct {
	Kind    string `json:"kind"`
	Name    string `json:"name"`
	Ordinal int    `json:"ordinal"`
}

type rawNamedArg struct {
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value"`
}

type rawDictEntry struct {
	Key   json.RawMessage `json:"key"`
	Value json.RawMessage `json:"value"`
}

type rawParam struct {
	Name    string          `json:"name"`
	Default json.RawMessage `json:"default"`
	Hint    string          `json:"hint"`
}

type rawBranch struct {
	Cond json.RawMessage   `json:"cond"`
	Body []json.RawMessage `json:"body"`
}

type rawTarget struct {
	Kind    string          `json:"kind"`
	Binding *rawBinding     `json:"binding"`
	Obj     json.RawMessage `json:"obj"`
	Attr    string          `json:"attr"`
	Index   json.RawMessage `json:"index"`
}

func decodeBinding(b *rawBinding) Binding {
	if b == nil {
		return Binding{}
	}
	var kind BindingKind
	switch b.Kind {
	case "local":
		kind = BindLocal
	case "global":
		kind = BindGlobal
	case "free":
		kind = BindFree
	case "attr":
		kind = BindAttr
	}
	return Binding{Kind: kind, Name: b.Name, Ordinal: b.Ordinal}
}

func decodeStmts(raw []json.RawMessage) ([]Stmt, error) {
	out := make([]Stmt, 0, len(raw))
	for _, r := range raw {
		s, err := decodeStmt(r)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func decodeExprs(raw []json.RawMessage) ([]Expr, error) {
	out := make([]Expr, 0, len(raw))
	for _, r := range raw {
		e, err := decodeExpr(r)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func decodeExprOpt(raw json.RawMessage) (Expr, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	return decodeExpr(raw)
}

func decodeStmt(raw json.RawMessage) (Stmt, error) {
	var n rawNode
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, fmt.Errorf("ast: invalid statement json: %w", err)
	}
	b := base{line: n.Line}
	switch n.Kind {
	case "ExprStmt":
		x, err := decodeExpr(n.X)
		if err != nil {
			return nil, err
		}
		return &ExprStmt{base: b, X: x}, nil
	case "AssignStmt":
		target, err := decodeTarget(n.Target)
		if err != nil {
			return nil, err
		}
		value, err := decodeExpr(n.Value)
		if err != nil {
			return nil, err
		}
		return &AssignStmt{base: b, Target: target, Value: value}, nil
	case "CompoundAssignStmt":
		target, err := decodeTarget(n.Target)
		if err != nil {
			return nil, err
		}
		value, err := decodeExpr(n.Value)
		if err != nil {
			return nil, err
		}
		return &CompoundAssignStmt{base: b, Target: target, Op: decodeBinOp(n.Op), Value: value}, nil
	case "IfStmt":
		branches := make([]IfBranch, 0, len(n.Branches))
		for _, br := range n.Branches {
			cond, err := decodeExprOpt(br.Cond)
			if err != nil {
				return nil, err
			}
			body, err := decodeStmts(br.Body)
			if err != nil {
				return nil, err
			}
			branches = append(branches, IfBranch{Cond: cond, Body: body})
		}
		return &IfStmt{base: b, Branches: branches}, nil
	case "WhileStmt":
		cond, err := decodeExpr(n.Cond)
		if err != nil {
			return nil, err
		}
		body, err := decodeStmts(n.Body)
		if err != nil {
			return nil, err
		}
		return &WhileStmt{base: b, Cond: cond, Body: body}, nil
	case "ForStmt":
		vars := make([]Binding, 0, len(n.Vars))
		for i := range n.Vars {
			vars = append(vars, decodeBinding(&n.Vars[i]))
		}
		iter, err := decodeExpr(n.Iter)
		if err != nil {
			return nil, err
		}
		body, err := decodeStmts(n.Body)
		if err != nil {
			return nil, err
		}
		return &ForStmt{base: b, Vars: vars, Iter: iter, Body: body}, nil
	case "TryStmt":
		body, err := decodeStmts(n.Body)
		if err != nil {
			return nil, err
		}
		handler, err := decodeStmts(n.Handler)
		if err != nil {
			return nil, err
		}
		return &TryStmt{base: b, Body: body, CatchType: n.CatchType, CatchVar: n.CatchVar, Handler: handler}, nil
	case "ThrowStmt":
		x, err := decodeExpr(n.X)
		if err != nil {
			return nil, err
		}
		return &ThrowStmt{base: b, X: x}, nil
	case "ReturnStmt":
		x, err := decodeExprOpt(n.X)
		if err != nil {
			return nil, err
		}
		return &ReturnStmt{base: b, X: x}, nil
	case "BreakStmt":
		return &BreakStmt{base: b}, nil
	case "ContinueStmt":
		return &ContinueStmt{base: b}, nil
	case "ImportStmt":
		return &ImportStmt{base: b, Name: n.Name, Binding: decodeBinding(n.Binding)}, nil
	case "ExportStmt":
		value, err := decodeExprOpt(n.Value)
		if err != nil {
			return nil, err
		}
		return &ExportStmt{base: b, Kind: decodeExportKind(n.ExportKind), Name: n.Name, Value: value}, nil
	case "PrintStmt":
		x, err := decodeExpr(n.X)
		if err != nil {
			return nil, err
		}
		return &PrintStmt{base: b, X: x}, nil
	case "ProduceStmt":
		x, err := decodeExpr(n.X)
		if err != nil {
			return nil, err
		}
		return &ProduceStmt{base: b, X: x}, nil
	}
	return nil, fmt.Errorf("ast: unknown statement kind %q", n.Kind)
}

func decodeTarget(t *rawTarget) (AssignTarget, error) {
	if t == nil {
		return AssignTarget{}, fmt.Errorf("ast: assignment missing target")
	}
	at := AssignTarget{Binding: decodeBinding(t.Binding), Attr: t.Attr}
	switch t.Kind {
	case "attr":
		at.Kind = TargetAttr
		obj, err := decodeExpr(t.Obj)
		if err != nil {
			return at, err
		}
		at.Obj = obj
	case "index":
		at.Kind = TargetIndex
		obj, err := decodeExpr(t.Obj)
		if err != nil {
			return at, err
		}
		idx, err := decodeExpr(t.Index)
		if err != nil {
			return at, err
		}
		at.Obj, at.Index = obj, idx
	default:
		at.Kind = TargetName
	}
	return at, nil
}

func decodeExportKind(s string) ExportKind {
	switch s {
	case "global":
		return ExportGlobal
	case "named":
		return ExportNamed
	default:
		return ExportLocal
	}
}

func decodeBinOp(s string) BinOpKind {
	switch s {
	case "+":
		return BAdd
	case "-":
		return BSub
	case "*":
		return BMul
	case "/":
		return BDiv
	case "%":
		return BMod
	case "**":
		return BPow
	case "&":
		return BBitAnd
	case "|":
		return BBitOr
	case "^":
		return BBitXor
	case "<<":
		return BShiftL
	case ">>":
		return BShiftR
	case "==":
		return BEqual
	case "!=":
		return BNotEqual
	case "<":
		return BLt
	case ">":
		return BGt
	case "<=":
		return BLe
	case ">=":
		return BGe
	case "in":
		return BIn
	}
	return BAdd
}

func decodeUnaryOp(s string) UnaryOpKind {
	switch s {
	case "-":
		return UMinus
	case "!":
		return UNot
	case "~":
		return UBitNot
	default:
		return UPlus
	}
}

func decodeFuncKind(s string) FuncKind {
	switch s {
	case "lambda":
		return KindLambda
	case "generator":
		return KindGenerator
	case "actor":
		return KindActor
	default:
		return KindFunction
	}
}

func decodeExpr(raw json.RawMessage) (Expr, error) {
	var n rawNode
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, fmt.Errorf("ast: invalid expression json: %w", err)
	}
	b := base{line: n.Line}
	switch n.Kind {
	case "Literal":
		lit := &Literal{base: b, B: n.Bool, I: n.Int, F: n.Float, S: n.Str}
		switch n.LitKind {
		case "null":
			lit.Kind = LitNull
		case "bool":
			lit.Kind = LitBool
		case "int":
			lit.Kind = LitInt
		case "float":
			lit.Kind = LitFloat
		case "string":
			lit.Kind = LitString
		}
		return lit, nil
	case "Identifier":
		return &Identifier{base: b, Binding: decodeBinding(n.Binding)}, nil
	case "AttrExpr":
		obj, err := decodeExpr(n.Obj)
		if err != nil {
			return nil, err
		}
		return &AttrExpr{base: b, Obj: obj, Attr: n.Attr}, nil
	case "IndexExpr":
		obj, err := decodeExpr(n.Obj)
		if err != nil {
			return nil, err
		}
		idx, err := decodeExpr(n.Index)
		if err != nil {
			return nil, err
		}
		return &IndexExpr{base: b, Obj: obj, Index: idx}, nil
	case "BinaryExpr":
		left, err := decodeExpr(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := decodeExpr(n.Right)
		if err != nil {
			return nil, err
		}
		return &BinaryExpr{base: b, Op: decodeBinOp(n.Op), Left: left, Right: right}, nil
	case "UnaryExpr":
		operand, err := decodeExpr(n.Operand)
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{base: b, Op: decodeUnaryOp(n.Op), Operand: operand}, nil
	case "AndOrExpr":
		left, err := decodeExpr(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := decodeExpr(n.Right)
		if err != nil {
			return nil, err
		}
		return &AndOrExpr{base: b, IsAnd: n.IsAnd, Left: left, Right: right}, nil
	case "CallExpr":
		callee, err := decodeExpr(n.Callee)
		if err != nil {
			return nil, err
		}
		pos, err := decodeExprs(n.Pos)
		if err != nil {
			return nil, err
		}
		named := make([]NamedArg, 0, len(n.Named))
		for _, na := range n.Named {
			v, err := decodeExpr(na.Value)
			if err != nil {
				return nil, err
			}
			named = append(named, NamedArg{Name: na.Name, Value: v})
		}
		return &CallExpr{base: b, Callee: callee, Pos: pos, Named: named}, nil
	case "ListExpr":
		items, err := decodeExprs(n.Items)
		if err != nil {
			return nil, err
		}
		return &ListExpr{base: b, Items: items}, nil
	case "TupleExpr":
		items, err := decodeExprs(n.Items)
		if err != nil {
			return nil, err
		}
		return &TupleExpr{base: b, Items: items}, nil
	case "SetExpr":
		items, err := decodeExprs(n.Items)
		if err != nil {
			return nil, err
		}
		return &SetExpr{base: b, Items: items}, nil
	case "DictExpr":
		entries := make([]DictEntry, 0, len(n.Entries))
		for _, e := range n.Entries {
			k, err := decodeExpr(e.Key)
			if err != nil {
				return nil, err
			}
			v, err := decodeExpr(e.Value)
			if err != nil {
				return nil, err
			}
			entries = append(entries, DictEntry{Key: k, Value: v})
		}
		return &DictExpr{base: b, Entries: entries}, nil
	case "RangeExpr":
		start, err := decodeExpr(n.Start)
		if err != nil {
			return nil, err
		}
		stop, err := decodeExpr(n.Stop)
		if err != nil {
			return nil, err
		}
		step, err := decodeExprOpt(n.Step)
		if err != nil {
			return nil, err
		}
		return &RangeExpr{base: b, Start: start, Stop: stop, Step: step}, nil
	case "FuncLit":
		params := make([]Param, 0, len(n.Params))
		for _, p := range n.Params {
			def, err := decodeExprOpt(p.Default)
			if err != nil {
				return nil, err
			}
			params = append(params, Param{Name: p.Name, Default: def, Hint: p.Hint})
		}
		body, err := decodeStmts(n.Body)
		if err != nil {
			return nil, err
		}
		return &FuncLit{
			base: b, Kind: decodeFuncKind(n.FuncKind), Name: n.Name,
			Params: params, ReturnHint: n.ReturnHint, Body: body,
		}, nil
	case "ReceiveExpr":
		return &ReceiveExpr{base: b}, nil
	}
	return nil, fmt.Errorf("ast: unknown expression kind %q", n.Kind)
}
