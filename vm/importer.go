package vm

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/rhoc-lang/rhoc/loader"
	"github.com/rhoc-lang/rhoc/stdlib"
	"github.com/rhoc-lang/rhoc/values"
)

// Importer is the global import cache spec.md §4.5's "Import" describes: a
// module is loaded and run at most once per process, and every further
// `import` of the same resolved path reuses its exports dictionary. Each
// loaded module gets its own child VM (vm.children) so its global frame —
// and therefore its top-level state — survives for the life of the
// importing VM.
type Importer struct {
	mu      sync.Mutex
	baseDir string
	cache   map[string]values.Value // resolved path -> module Value
}

func NewImporter(baseDir string) *Importer {
	return &Importer{baseDir: baseDir, cache: make(map[string]values.Value)}
}

// doImport resolves a bare module name to "<baseDir>/<name>.rhoc", loads
// and runs it in a fresh child VM on first reference, and returns a Module
// Value wrapping a Dict of its exports (spec.md §4.5). A module that cannot
// be found or loaded surfaces as an ImportException, a normal, catchable
// program condition; an exception or fatal error raised by the module's
// own top-level code is returned unchanged.
func (vm *VM) doImport(name string) values.Value {
	if vm.Importer == nil {
		return values.Throw(values.ImportExceptionClass, "imports are not supported in this context")
	}
	return vm.Importer.resolve(vm, name)
}

func (imp *Importer) resolve(parent *VM, name string) values.Value {
	if mod, ok := builtinModule(name); ok {
		return mod
	}

	path := imp.resolvePath(name)

	imp.mu.Lock()
	if mod, ok := imp.cache[path]; ok {
		imp.mu.Unlock()
		return mod.Retain()
	}
	imp.mu.Unlock()

	co, ferr := loader.Load(path)
	if ferr != nil {
		return values.Throw(values.ImportExceptionClass, "cannot import '"+name+"': "+ferr.Error())
	}

	child := New(imp)
	child.Output = parent.Output
	child.Profiler = parent.Profiler
	result := child.RunModule(co)
	if result.IsError() || result.IsExc() {
		return result
	}

	mod := buildModuleValue(child.Globals)

	imp.mu.Lock()
	imp.cache[path] = mod
	imp.mu.Unlock()

	parent.children = append(parent.children, child)
	return mod.Retain()
}

// builtinModule returns rhoc's two built-in modules (SPEC_FULL.md §11.1)
// without touching disk; each is statically allocated (refcount = ∞) the
// first time it's imported anywhere in the process, per spec.md §3.
var (
	builtinOnce    sync.Once
	mathModuleVal  values.Value
	ioModuleVal    values.Value
)

func builtinModule(name string) (values.Value, bool) {
	builtinOnce.Do(func() {
		mathObj := values.NewStaticObject(values.ModuleClass)
		mathObj.Native = stdlib.MathModule()
		mathModuleVal = values.FromObject(mathObj)
		ioObj := values.NewStaticObject(values.ModuleClass)
		ioObj.Native = stdlib.IOModule(nil, nil)
		ioModuleVal = values.FromObject(ioObj)
	})
	switch name {
	case "math":
		return mathModuleVal, true
	case "io":
		return ioModuleVal, true
	}
	return values.Value{}, false
}

func (imp *Importer) resolvePath(name string) string {
	rel := strings.ReplaceAll(name, ".", string(filepath.Separator))
	return filepath.Join(imp.baseDir, rel+".rhoc")
}

// buildModuleValue collects every "export:"-prefixed global into a fresh
// Dict Value, keyed by the bare exported name (spec.md §4.5 EXPORT family).
func buildModuleValue(globals *values.DictObj) values.Value {
	d := values.NewDict()
	for _, k := range globals.Keys {
		if !strings.HasPrefix(k, "export:") {
			continue
		}
		v, ok := globals.Get(k)
		if !ok {
			continue
		}
		d.Set(strings.TrimPrefix(k, "export:"), v)
	}
	return values.NewModuleValue(d)
}
