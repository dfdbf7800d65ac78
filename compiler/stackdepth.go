package compiler

import "github.com/rhoc-lang/rhoc/opcodes"

// ComputeStackDepth walks the emitted bytecode as a control-flow graph and
// returns the smallest value-stack depth guaranteed to be sufficient.
//
// spec.md's own description only requires the naive bound (every JMP_IF_*
// treated as always-taken, depth accumulated linearly); SPEC_FULL.md §12
// commits to a tighter, branch-aware bound instead: a worklist walk over
// byte offsets that visits each reachable instruction's successors at the
// depth the instruction leaves behind, and takes the max depth seen at any
// offset. This catches the case the naive bound misses — one arm of a
// branch needing more stack than the fallthrough — without the cost of a
// full symbolic-execution pass.
func ComputeStackDepth(bytecode []byte) int {
	seen := make(map[int]int)
	queue := []offsetDepth{{0, 0}}
	maxDepth := 0

	for len(queue) > 0 {
		cur := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		if prev, ok := seen[cur.offset]; ok && prev >= cur.depth {
			continue
		}
		seen[cur.offset] = cur.depth
		if cur.depth > maxDepth {
			maxDepth = cur.depth
		}
		if cur.offset >= len(bytecode) {
			continue
		}

		op := opcodes.Op(bytecode[cur.offset])
		operandSize := opcodes.OperandSize(op)
		var operand uint16
		if operandSize == 2 {
			operand = readU16(bytecode, cur.offset+1)
		}
		next := cur.offset + 1 + operandSize

		switch op {
		case opcodes.RETURN, opcodes.THROW:
			continue
		case opcodes.JMP:
			queue = append(queue, offsetDepth{int(operand), cur.depth})
		case opcodes.JMP_BACK:
			queue = append(queue, offsetDepth{int(operand), cur.depth})
		case opcodes.JMP_IF_TRUE, opcodes.JMP_IF_FALSE:
			queue = append(queue, offsetDepth{int(operand), cur.depth - 1})
			queue = append(queue, offsetDepth{next, cur.depth - 1})
		case opcodes.JMP_IF_TRUE_ELSE_POP, opcodes.JMP_IF_FALSE_ELSE_POP:
			queue = append(queue, offsetDepth{int(operand), cur.depth})
			queue = append(queue, offsetDepth{next, cur.depth - 1})
		case opcodes.JMP_IF_EXC_MISMATCH:
			queue = append(queue, offsetDepth{int(operand), cur.depth + opcodes.ExcMismatchEffect})
			queue = append(queue, offsetDepth{next, cur.depth + opcodes.ExcMismatchEffect})
		case opcodes.PRODUCE:
			queue = append(queue, offsetDepth{next, cur.depth - 1})
		default:
			queue = append(queue, offsetDepth{next, cur.depth + opcodes.StackEffect(op, operand)})
		}
	}

	return maxDepth
}

type offsetDepth struct {
	offset int
	depth  int
}

func readU16(b []byte, pos int) uint16 {
	return uint16(b[pos]) | uint16(b[pos+1])<<8
}
