package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestFilter_EmptyPatternMatchesEverything(t *testing.T) {
	assert.True(t, NewFilter("", false).Matches("state-reproducibility-basic"))
	// With no pattern, invert has nothing to negate.
	assert.True(t, NewFilter("", true).Matches("state-reproducibility-basic"))
	assert.True(t, (*Filter)(nil).Matches("anything"))
}

func TestFilter_RegexIsCaseInsensitive(t *testing.T) {
	f := NewFilter("STATE-.*-BASIC", false)
	assert.True(t, f.Matches("state-reproducibility-basic"))
	assert.False(t, f.Matches("param-fuzz-basic"))
}

func TestFilter_InvalidRegexFallsBackToSubstring(t *testing.T) {
	// "state-[" does not compile; as a substring it matches nothing real.
	f := NewFilter("state-[", false)
	assert.False(t, f.Matches("state-invalid"))
	assert.True(t, f.Matches("state-[weird]"))
}

func TestFilter_InvertNegatesMembership(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		test    string
		matches bool
	}{
		{"plain match", "param", "param-conversions", true},
		{"plain miss", "param", "scan-time", false},
		{"anchored", "^scan", "scan-rtld-now", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.matches, NewFilter(tt.pattern, false).Matches(tt.test))
			assert.Equal(t, !tt.matches, NewFilter(tt.pattern, true).Matches(tt.test))
		})
	}
}

// TestFilter_InvertProperty checks the negation law for arbitrary patterns
// and test names: with a non-empty pattern, the inverted filter must answer
// the opposite of the plain filter.
func TestFilter_InvertProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		pattern := rapid.StringMatching(`[a-z\-\[\]\(\*]{1,12}`).Draw(t, "pattern")
		name := rapid.StringMatching(`[a-z\-]{1,24}`).Draw(t, "name")

		plain := NewFilter(pattern, false).Matches(name)
		inverted := NewFilter(pattern, true).Matches(name)
		assert.Equal(t, plain, !inverted)
	})
}

// TestFilter_SubstringFallbackIsCaseSensitive pins the fallback semantics:
// an uncompilable pattern degrades to a case-sensitive substring match.
func TestFilter_SubstringFallbackIsCaseSensitive(t *testing.T) {
	f := NewFilter("STATE-[", false)
	assert.False(t, f.Matches("state-[invalid]"), "substring fallback must not fold case")
	assert.True(t, strings.Contains("STATE-[x]", "STATE-["))
	assert.True(t, f.Matches("STATE-[x]"))
}
