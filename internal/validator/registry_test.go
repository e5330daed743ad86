package validator

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext() *RunContext {
	return NewRunContext(DefaultOptions(), nil, nil)
}

func TestRunLibraryTest_UnknownNameFails(t *testing.T) {
	result := RunLibraryTest(testContext(), "no-such-test", "/tmp/nope.clap")

	assert.Equal(t, StatusFailed, result.Status)
	assert.Contains(t, result.Details, "no-such-test")
}

func TestRunPluginTest_UnknownNameFails(t *testing.T) {
	result := RunPluginTest(testContext(), "no-such-test", nil, "com.example.gain")

	assert.Equal(t, StatusFailed, result.Status)
	assert.Contains(t, result.Details, "no-such-test")
}

func TestRunSafely_ConvertsPanicToCrashed(t *testing.T) {
	result := runSafely("boom", "a test that panics", func() TestResult {
		panic("plugin walked off a cliff")
	})

	assert.Equal(t, StatusCrashed, result.Status)
	assert.Equal(t, "boom", result.Name)
	assert.Contains(t, result.Details, "plugin walked off a cliff")
}

func TestRunSafely_PassesResultsThrough(t *testing.T) {
	want := success("fine", "a test that passes")
	got := runSafely("fine", "a test that passes", func() TestResult { return want })
	assert.Equal(t, want, got)
}

func TestRegistries_NamesAreStableLowercaseDash(t *testing.T) {
	nameRe := regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

	seen := make(map[string]struct{})
	for _, tc := range LibraryTests() {
		assert.Regexp(t, nameRe, tc.Name)
		assert.NotEmpty(t, tc.Description)
		_, dup := seen[tc.Name]
		require.False(t, dup, "duplicate test name %q", tc.Name)
		seen[tc.Name] = struct{}{}
	}
	for _, tc := range PluginTests() {
		assert.Regexp(t, nameRe, tc.Name)
		assert.NotEmpty(t, tc.Description)
		_, dup := seen[tc.Name]
		require.False(t, dup, "duplicate test name %q", tc.Name)
		seen[tc.Name] = struct{}{}
	}
}

func TestRegistries_CoverTheSpecifiedBattery(t *testing.T) {
	wantLibrary := []string{
		"scan-time",
		"scan-rtld-now",
		"query-factory-nonexistent",
		"create-id-with-trailing-garbage",
		"preset-discovery-descriptors",
	}
	wantPlugin := []string{
		"descriptor-consistency",
		"features-categories",
		"features-duplicates",
		"process-audio-out-of-place-basic",
		"process-note-out-of-place-basic",
		"process-note-inconsistent",
		"param-conversions",
		"param-fuzz-basic",
		"param-set-wrong-namespace",
		"state-invalid",
		"state-reproducibility-basic",
		"state-reproducibility-null-cookies",
		"state-reproducibility-flush",
		"state-buffered-streams",
	}

	var gotLibrary, gotPlugin []string
	for _, tc := range LibraryTests() {
		gotLibrary = append(gotLibrary, tc.Name)
	}
	for _, tc := range PluginTests() {
		gotPlugin = append(gotPlugin, tc.Name)
	}

	assert.Equal(t, wantLibrary, gotLibrary)
	assert.Equal(t, wantPlugin, gotPlugin)
}

func TestNewRunContext_DeterministicRNG(t *testing.T) {
	opts := DefaultOptions()
	a := NewRunContext(opts, nil, nil)
	b := NewRunContext(opts, nil, nil)

	for i := 0; i < 16; i++ {
		require.Equal(t, a.Rand().Float64(), b.Rand().Float64(), "same seed must give the same sequence")
	}
}
