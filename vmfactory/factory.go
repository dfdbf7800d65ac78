// Package vmfactory consolidates the VM-construction boilerplate that
// would otherwise be duplicated between cmd/rhocc and cmd/rhocvm,
// grounded on the teacher's vmfactory/factory.go ("This eliminates the
// need for manual CompilerCallback setup in every usage" — here it is
// the Importer/Profiler/Output wiring that every entry point needs
// identically).
package vmfactory

import (
	"os"

	"github.com/rhoc-lang/rhoc/vm"
	"github.com/rhoc-lang/rhoc/vmconfig"
)

// Factory builds *vm.VM instances that all share one Importer (so a
// `rhocvm repl` session and any module it imports see one import cache,
// spec.md §4.5) and one rhoc.yaml-derived Config.
type Factory struct {
	cfg      *vmconfig.Config
	importer *vm.Importer
}

// New builds a Factory rooted at cfg.ImportPath. A nil cfg falls back to
// vmconfig.Default().
func New(cfg *vmconfig.Config) *Factory {
	if cfg == nil {
		cfg = vmconfig.Default()
	}
	return &Factory{cfg: cfg, importer: vm.NewImporter(cfg.ImportPath)}
}

// CreateVM builds a VM wired to this factory's shared Importer. Output
// defaults to stdout; Profiler is always attached, but only rendered by
// a caller that asked for it (cfg.Profiling gates that, not construction,
// since a REPL may want to toggle profiling mid-session).
func (f *Factory) CreateVM() *vm.VM {
	machine := vm.New(f.importer)
	machine.Output = func(s string) { os.Stdout.WriteString(s) }
	return machine
}

// Config exposes the factory's resolved tunables, e.g. for rhocvm's
// `--profile` flag default.
func (f *Factory) Config() *vmconfig.Config {
	return f.cfg
}
