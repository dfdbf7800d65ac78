// Package vmconfig loads the optional rhoc.yaml tunables file a `rhocvm`
// invocation may sit next to: import search path, default stack-frame
// slack, and whether to collect opcode profiling data (SPEC_FULL.md's
// ambient-stack expansion — the teacher carries `gopkg.in/yaml.v3` in its
// dependency graph but only via the dropped SQL stack; this gives it a
// real home).
package vmconfig

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config is rhoc.yaml's shape. Every field has a zero-value-safe default
// so a missing or partial file behaves the same as one that sets nothing.
type Config struct {
	// ImportPath is the base directory `import` resolves bare module
	// names against (vm/importer.go). Defaults to the working directory.
	ImportPath string `yaml:"import_path"`

	// StackSlack is the configured headroom (spec.md §4.3) atop a code
	// object's computed StackDepth. The VM does not read it: newFrame
	// (vm/frame.go) always allocates a fixed margin of 4 slots, which
	// matches this field's default.
	StackSlack int `yaml:"stack_slack"`

	// Profiling makes rhocvm print vm.Profiler's per-opcode report after a
	// run; the counters themselves run on every VM (vm/profiling.go).
	Profiling bool `yaml:"profiling"`
}

// Default returns rhoc's built-in tunables, used whenever no rhoc.yaml is
// present.
func Default() *Config {
	return &Config{ImportPath: ".", StackSlack: 4, Profiling: false}
}

// Load reads and parses path, falling back to Default() field-by-field
// for anything the file leaves unset. A missing file is not an error —
// callers typically probe a conventional path and fall back silently.
func Load(path string) (*Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	parsed := &Config{}
	if err := yaml.Unmarshal(raw, parsed); err != nil {
		return nil, err
	}
	if parsed.ImportPath != "" {
		cfg.ImportPath = parsed.ImportPath
	}
	if parsed.StackSlack != 0 {
		cfg.StackSlack = parsed.StackSlack
	}
	cfg.Profiling = parsed.Profiling
	return cfg, nil
}
