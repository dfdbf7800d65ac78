package codeobj

// SymbolTable holds the three ordered string arrays a CodeObject carries:
// bound locals, referenced attributes, and free variables (spec.md §3,
// §6). Order is significant — it is the ordinal space that LOAD/STORE/
// LOAD_ATTR instructions index into.
type SymbolTable struct {
	Locals []string
	Attrs  []string
	Frees  []string
}

func NewSymbolTable() *SymbolTable { return &SymbolTable{} }

// AddLocal/AddAttr/AddFree append a name and return its ordinal, unless
// the name is already present, in which case the existing ordinal is
// returned (idempotent, matches the annotated-AST contract: an external
// symbol-table builder has already resolved duplicates before rhoc sees
// them, but the compiler's own bookkeeping stays defensive).
func (st *SymbolTable) AddLocal(name string) int { return addUnique(&st.Locals, name) }
func (st *SymbolTable) AddAttr(name string) int  { return addUnique(&st.Attrs, name) }
func (st *SymbolTable) AddFree(name string) int  { return addUnique(&st.Frees, name) }

func addUnique(arr *[]string, name string) int {
	for i, n := range *arr {
		if n == name {
			return i
		}
	}
	*arr = append(*arr, name)
	return len(*arr) - 1
}

// SetLocalAt/SetAttrAt/SetFreeAt record name at a pre-assigned ordinal
// (the external symbol-table builder already chose the ordinal when it
// annotated the AST — spec.md §4.3 Input — so the compiler only needs to
// mirror it into the serializable table, growing as needed).
func (st *SymbolTable) SetLocalAt(ordinal int, name string) { setAt(&st.Locals, ordinal, name) }
func (st *SymbolTable) SetAttrAt(ordinal int, name string)  { setAt(&st.Attrs, ordinal, name) }
func (st *SymbolTable) SetFreeAt(ordinal int, name string)  { setAt(&st.Frees, ordinal, name) }

func setAt(arr *[]string, ordinal int, name string) {
	for len(*arr) <= ordinal {
		*arr = append(*arr, "")
	}
	(*arr)[ordinal] = name
}
