package codeobj

import "github.com/rhoc-lang/rhoc/opcodes"

// instructionIndexForOffset walks bytecode from the start, counting whole
// instructions, until it reaches the instruction beginning at byte
// offset. Used by CodeObject.LineForOffset (spec.md §4.5).
func instructionIndexForOffset(code []byte, offset int) int {
	idx := 0
	pos := 0
	for pos < offset && pos < len(code) {
		op := opcodes.Op(code[pos])
		pos += 1 + opcodes.OperandSize(op)
		idx++
	}
	return idx
}

// LineNoEncoder accumulates (instruction-delta, line-delta) runs while the
// compiler emits instructions, saturating each run at 255 and splitting
// into continuation rows as needed (spec.md §4.3).
type LineNoEncoder struct {
	FirstLine  int
	runs       []LineRun
	lastIns    int
	lastLine   int
	started    bool
}

func NewLineNoEncoder(firstLine int) *LineNoEncoder {
	return &LineNoEncoder{FirstLine: firstLine, lastLine: firstLine}
}

// Mark records that the instruction at insIndex corresponds to line.
func (e *LineNoEncoder) Mark(insIndex, line int) {
	if !e.started {
		e.started = true
		e.lastIns = insIndex
		e.lastLine = line
		return
	}
	insDelta := insIndex - e.lastIns
	lineDelta := line - e.lastLine
	if insDelta == 0 && lineDelta == 0 {
		return
	}
	for insDelta > 0 || lineDelta != 0 {
		id := insDelta
		if id > 255 {
			id = 255
		}
		ld := lineDelta
		neg := ld < 0
		if neg {
			ld = -ld
		}
		if ld > 255 {
			ld = 255
		}
		if neg {
			ld = -ld
		}
		e.runs = append(e.runs, LineRun{InsDelta: byte(id), LineDelta: byte(int8(ld))})
		insDelta -= id
		lineDelta -= ld
		if id == 0 && ld == 0 {
			break
		}
	}
	e.lastIns = insIndex
	e.lastLine = line
}

// Finish returns the accumulated runs. The wire format appends a
// terminating (0,0) sentinel row after these (spec.md §6); CodeObject.LineRuns
// itself does not carry it (spec.md §4.3).
func (e *LineNoEncoder) Finish() []LineRun {
	return append([]LineRun{}, e.runs...)
}
