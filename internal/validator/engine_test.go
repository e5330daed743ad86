package validator

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A path that cannot be loaded exercises the whole dispatch loop: every
// library test fails on the load, the plugin phase reports one load error,
// and nothing panics.
func TestRunner_MissingLibrary(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.clap")

	var records []Record
	var loadErrors []string
	runner := &Runner{
		Filter:  NewFilter("", false),
		Context: testContext(),
		Emit:    func(rec Record) { records = append(records, rec) },
		OnLoadError: func(path string, err error) {
			loadErrors = append(loadErrors, path)
			assert.ErrorContains(t, err, "nope.clap")
		},
	}

	tally := runner.Run([]string{missing})

	// Only library-level records; the plugin phase never got a library.
	require.Len(t, records, len(LibraryTests()))
	for _, rec := range records {
		assert.Equal(t, missing, rec.Path)
		assert.Empty(t, rec.PluginID)
	}

	// Results arrive in registration order.
	for i, tc := range LibraryTests() {
		assert.Equal(t, tc.Name, records[i].Result.Name)
	}

	assert.Equal(t, []string{missing}, loadErrors)
	assert.Zero(t, tally.Passed)
	assert.GreaterOrEqual(t, tally.Failed, 5, "library failures plus the load error")
	assert.Equal(t, 1, tally.ExitCode())
}

func TestRunner_FilterRestrictsTests(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.clap")

	var records []Record
	runner := &Runner{
		Filter:      NewFilter("scan-time", false),
		Context:     testContext(),
		Emit:        func(rec Record) { records = append(records, rec) },
		OnLoadError: func(string, error) {},
	}
	runner.Run([]string{missing})

	require.Len(t, records, 1)
	assert.Equal(t, "scan-time", records[0].Result.Name)
}

func TestRunner_InvertedFilter(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.clap")

	var records []Record
	runner := &Runner{
		Filter:      NewFilter("scan-time", true),
		Context:     testContext(),
		Emit:        func(rec Record) { records = append(records, rec) },
		OnLoadError: func(string, error) {},
	}
	runner.Run([]string{missing})

	require.Len(t, records, len(LibraryTests())-1)
	for _, rec := range records {
		assert.NotEqual(t, "scan-time", rec.Result.Name)
	}
}

func TestRunner_MultiplePathsKeepIssueOrder(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.clap")
	second := filepath.Join(dir, "b.clap")

	var paths []string
	runner := &Runner{
		Filter:      NewFilter("query-factory-nonexistent", false),
		Context:     testContext(),
		Emit:        func(rec Record) { paths = append(paths, rec.Path) },
		OnLoadError: func(string, error) {},
	}
	runner.Run([]string{first, second})

	assert.Equal(t, []string{first, second}, paths)
}
