package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_FullConfig(t *testing.T) {
	cfg, err := parse([]byte(`
scan_time_limit: 250ms
fuzz_permutations: 100
fuzz_buffers: 8
seed: 42
search_paths:
  - /opt/clap
  - /home/me/.clap
`))
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, cfg.ScanTimeLimit.Std())
	assert.Equal(t, 100, cfg.FuzzPermutations)
	assert.Equal(t, 8, cfg.FuzzBuffers)
	assert.Equal(t, uint64(42), cfg.Seed)
	assert.Equal(t, []string{"/opt/clap", "/home/me/.clap"}, cfg.SearchPaths)
}

func TestParse_UnknownKeysRejected(t *testing.T) {
	_, err := parse([]byte("fuz_permutations: 10\n"))
	require.Error(t, err, "typos must not silently fall back to defaults")
}

func TestParse_NegativeValuesRejected(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"permutations", "fuzz_permutations: -1\n"},
		{"buffers", "fuzz_buffers: -2\n"},
		{"scan limit", "scan_time_limit: -5ms\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFileIsAnError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadDefault_MissingFileGivesZeroConfig(t *testing.T) {
	// Run from an empty directory so no stray config file is picked up.
	t.Chdir(t.TempDir())

	cfg, err := LoadDefault()
	require.NoError(t, err)
	assert.Equal(t, &Config{}, cfg)
}

func TestLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clap-validator.yaml")
	require.NoError(t, os.WriteFile(path, []byte("seed: 7\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), cfg.Seed)
}
