package vmconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_PartialFileMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rhoc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("stack_slack: 16\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.StackSlack)
	assert.Equal(t, Default().ImportPath, cfg.ImportPath)
}

func TestLoad_FullFileOverridesEverything(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rhoc.yaml")
	contents := "import_path: /srv/modules\nstack_slack: 8\nprofiling: true\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/modules", cfg.ImportPath)
	assert.Equal(t, 8, cfg.StackSlack)
	assert.True(t, cfg.Profiling)
}

func TestLoad_InvalidYAMLReturnsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rhoc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("not: [valid"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
