package codeobj

import "github.com/rhoc-lang/rhoc/values"

// LineRun is one (instruction-delta, line-delta) pair of the line-number
// table (spec.md §4.3). Saturates at 255; a run that needs a larger delta
// is split into several rows. Terminated by a (0,0) sentinel that the
// writer (C4) appends when serializing and the loader drops when reading —
// it is not itself stored in LineRuns.
type LineRun struct {
	InsDelta  byte
	LineDelta byte
}

// CodeObject packages compiled code for one scope: module, function,
// lambda, generator body, or actor body (spec.md §3).
type CodeObject struct {
	Name        string
	Bytecode    []byte
	ArgCount    int
	StackDepth  int
	TryCatchDepth int

	Symbols  *SymbolTable
	Consts   *ConstTable

	FirstLine int
	LineRuns  []LineRun

	// ParamHints/ReturnHint are populated after a MAKE_FUNCOBJ/GENERATOR/
	// ACTOR instruction whose source carried type hints (spec.md §3).
	ParamHints []*values.Class
	ReturnHint *values.Class

	// lineCache memoizes byte-offset -> line lookups (spec.md §4.5,
	// "per-instruction caches"). Keyed by byte offset rather than a
	// parallel Vec<Cell<u32>> per instruction, since offsets are already
	// the natural index space for a flat bytecode stream.
	lineCache map[int]int
}

func NewCodeObject(name string) *CodeObject {
	return &CodeObject{
		Name:    name,
		Symbols: NewSymbolTable(),
		Consts:  NewConstTable(),
	}
}

// LineForOffset walks the line-number table, memoizing the result
// (spec.md §4.5 "Line-number lookup").
func (co *CodeObject) LineForOffset(offset int) int {
	if co.lineCache == nil {
		co.lineCache = make(map[int]int)
	}
	if line, ok := co.lineCache[offset]; ok {
		return line
	}
	insIdx := instructionIndexForOffset(co.Bytecode, offset)
	line := co.FirstLine
	insCursor := 0
	for _, run := range co.LineRuns {
		insCursor += int(run.InsDelta)
		if insCursor > insIdx {
			break
		}
		line += int(run.LineDelta)
	}
	co.lineCache[offset] = line
	return line
}
