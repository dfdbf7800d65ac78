package codeobj

import "hash/fnv"

// ConstKind tags a constant-table entry (spec.md §6).
type ConstKind byte

const (
	ConstInt ConstKind = iota
	ConstFloat
	ConstString
	ConstCodeObj
)

// Const is one entry of the constant table. Code-object constants carry a
// *CodeObject; int/float/string constants carry their raw value.
type Const struct {
	Kind ConstKind
	I    int64
	F    float64
	S    string
	Code *CodeObject
}

// ConstTable interns int/float/string keys in a hash table (secondary
// hash to mitigate poor primary hashes), assigning sequential IDs. Code
// constants are NOT deduplicated: they are appended in definition order
// and never looked up by key (spec.md §4.2).
type ConstTable struct {
	entries []Const
	index   map[uint64][]int // primary+secondary hash -> candidate entry indices
}

func NewConstTable() *ConstTable {
	return &ConstTable{index: make(map[uint64][]int)}
}

func (ct *ConstTable) Len() int          { return len(ct.entries) }
func (ct *ConstTable) Entries() []Const  { return ct.entries }
func (ct *ConstTable) Get(id int) Const  { return ct.entries[id] }

func hashKey(kind ConstKind, s string, i int64, f float64) (uint64, uint64) {
	h := fnv.New64a()
	h.Write([]byte{byte(kind)})
	switch kind {
	case ConstString:
		h.Write([]byte(s))
	case ConstInt:
		var b [8]byte
		for j := range b {
			b[j] = byte(i >> (8 * j))
		}
		h.Write(b[:])
	case ConstFloat:
		var b [8]byte
		bits := mathFloatBits(f)
		for j := range b {
			b[j] = byte(bits >> (8 * j))
		}
		h.Write(b[:])
	}
	primary := h.Sum64()
	// Secondary hash mitigates a poor primary hash by mixing bits that the
	// primary hash alone would leave correlated across near-duplicate keys.
	secondary := primary ^ (primary >> 33) * 0xff51afd7ed558ccd
	return primary, secondary
}

func (ct *ConstTable) find(kind ConstKind, s string, i int64, f float64) int {
	_, key := hashKey(kind, s, i, f)
	for _, idx := range ct.index[key] {
		e := ct.entries[idx]
		if e.Kind != kind {
			continue
		}
		switch kind {
		case ConstString:
			if e.S == s {
				return idx
			}
		case ConstInt:
			if e.I == i {
				return idx
			}
		case ConstFloat:
			if e.F == f {
				return idx
			}
		}
	}
	return -1
}

func (ct *ConstTable) insert(kind ConstKind, s string, i int64, f float64) int {
	idx := len(ct.entries)
	ct.entries = append(ct.entries, Const{Kind: kind, I: i, F: f, S: s})
	_, key := hashKey(kind, s, i, f)
	ct.index[key] = append(ct.index[key], idx)
	return idx
}

// InternInt returns an existing id for v or assigns a fresh stable one. A
// constant's id, once assigned, never changes for the CodeObject's
// lifetime (spec.md §3 invariant).
func (ct *ConstTable) InternInt(v int64) int {
	if idx := ct.find(ConstInt, "", v, 0); idx >= 0 {
		return idx
	}
	return ct.insert(ConstInt, "", v, 0)
}

func (ct *ConstTable) InternFloat(v float64) int {
	if idx := ct.find(ConstFloat, "", 0, v); idx >= 0 {
		return idx
	}
	return ct.insert(ConstFloat, "", 0, v)
}

func (ct *ConstTable) InternString(v string) int {
	if idx := ct.find(ConstString, v, 0, 0); idx >= 0 {
		return idx
	}
	return ct.insert(ConstString, v, 0, 0)
}

// AddCode appends a (never deduplicated) code-object constant and returns
// its id, in definition order, so the compiler's emitting pass can "poll"
// ids in the same order the first pass filled them (spec.md §4.2/§4.3).
func (ct *ConstTable) AddCode(co *CodeObject) int {
	idx := len(ct.entries)
	ct.entries = append(ct.entries, Const{Kind: ConstCodeObj, Code: co})
	return idx
}
