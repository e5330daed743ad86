package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeEnv(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestSearchPathsFor_Linux(t *testing.T) {
	paths := searchPathsFor("linux", fakeEnv(map[string]string{"HOME": "/home/me"}))
	assert.Equal(t, []string{"/home/me/.clap", "/usr/lib/clap"}, paths)
}

func TestSearchPathsFor_LinuxWithoutHome(t *testing.T) {
	paths := searchPathsFor("linux", fakeEnv(nil))
	assert.Equal(t, []string{"/usr/lib/clap"}, paths)
}

func TestSearchPathsFor_Darwin(t *testing.T) {
	paths := searchPathsFor("darwin", fakeEnv(map[string]string{"HOME": "/Users/me"}))
	assert.Equal(t, []string{
		"/Users/me/Library/Audio/Plug-Ins/CLAP",
		"/Library/Audio/Plug-Ins/CLAP",
	}, paths)
}

func TestSearchPathsFor_Windows(t *testing.T) {
	paths := searchPathsFor("windows", fakeEnv(map[string]string{
		"LOCALAPPDATA":       `C:\Users\me\AppData\Local`,
		"COMMONPROGRAMFILES": `C:\Program Files\Common Files`,
	}))
	require.Len(t, paths, 2)
	assert.Contains(t, paths[0], "Programs")
	assert.Contains(t, paths[1], "CLAP")
}

func TestDiscover_FindsFilesAndBundleDirs(t *testing.T) {
	root := t.TempDir()

	// A plain shared-object plugin.
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "gain.clap"), []byte("x"), 0o644))

	// A macOS-style bundle directory; its contents must not be descended
	// into.
	bundle := filepath.Join(root, "Synth.clap")
	require.NoError(t, os.MkdirAll(filepath.Join(bundle, "Contents", "MacOS"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(bundle, "Contents", "MacOS", "inner.clap"), []byte("x"), 0o644))

	// Noise that must be ignored.
	require.NoError(t, os.WriteFile(filepath.Join(root, "readme.txt"), []byte("x"), 0o644))

	found := Discover([]string{root, filepath.Join(root, "does-not-exist")})

	assert.ElementsMatch(t, []string{
		filepath.Join(root, "sub", "gain.clap"),
		bundle,
	}, found)
}

func TestDiscover_MissingRootsAreSkipped(t *testing.T) {
	assert.Empty(t, Discover([]string{filepath.Join(t.TempDir(), "nope")}))
}

func TestTempDir_EndsWithValidatorDir(t *testing.T) {
	assert.Equal(t, "clap-validator", filepath.Base(TempDir()))
}

func TestEnsureTempDir_CreatesLazily(t *testing.T) {
	t.Setenv("TMPDIR", t.TempDir())

	dir, err := EnsureTempDir()
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
