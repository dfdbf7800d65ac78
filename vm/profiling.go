package vm

import (
	"fmt"
	"sort"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/rhoc-lang/rhoc/opcodes"
)

// Profiler counts per-opcode dispatch frequency, grounded on the teacher's
// vm/profiling.go. It is safe for concurrent use since actors (vm/actor.go)
// each own their own VM but may share a Profiler when a parent wants an
// aggregate count across its spawned children.
type Profiler struct {
	mu     sync.Mutex
	counts map[opcodes.Op]int64
	total  int64
}

func NewProfiler() *Profiler {
	return &Profiler{counts: make(map[opcodes.Op]int64)}
}

func (p *Profiler) count(op opcodes.Op) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.counts[op]++
	p.total++
	p.mu.Unlock()
}

// HotOp is one entry of Profiler.TopOps' report.
type HotOp struct {
	Op    opcodes.Op
	Count int64
}

// TopOps returns the n most-executed opcodes, most frequent first.
func (p *Profiler) TopOps(n int) []HotOp {
	p.mu.Lock()
	defer p.mu.Unlock()
	spots := make([]HotOp, 0, len(p.counts))
	for op, c := range p.counts {
		spots = append(spots, HotOp{Op: op, Count: c})
	}
	sort.Slice(spots, func(i, j int) bool {
		if spots[i].Count == spots[j].Count {
			return spots[i].Op < spots[j].Op
		}
		return spots[i].Count > spots[j].Count
	})
	if n <= 0 || n >= len(spots) {
		return spots
	}
	return spots[:n]
}

// Render renders a human-readable summary, using go-humanize for the
// total instruction count (spec.md's SPEC_FULL ambient-stack expansion:
// the teacher formats large counters this way throughout its CLI output).
func (p *Profiler) Render() string {
	p.mu.Lock()
	total := p.total
	p.mu.Unlock()
	if total == 0 {
		return "(no profiling data)"
	}
	lines := fmt.Sprintf("instructions executed: %s\n", humanize.Comma(total))
	for _, h := range p.TopOps(10) {
		lines += fmt.Sprintf("  %-24s %s\n", opName(h.Op), humanize.Comma(h.Count))
	}
	return lines
}

func opName(op opcodes.Op) string {
	return op.String()
}
