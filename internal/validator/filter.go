package validator

import (
	"regexp"
	"strings"
)

// Filter selects test cases by name.
//
// A non-empty pattern is applied case-insensitively as a regular expression
// over the test name. A pattern that does not compile falls back to a
// case-sensitive substring match. Invert negates membership; with no
// pattern at all every test matches regardless of invert.
type Filter struct {
	pattern string
	invert  bool
	re      *regexp.Regexp
}

// NewFilter builds a filter from a user pattern.
func NewFilter(pattern string, invert bool) *Filter {
	f := &Filter{pattern: pattern, invert: invert}
	if pattern != "" {
		if re, err := regexp.Compile("(?i)" + pattern); err == nil {
			f.re = re
		}
	}
	return f
}

// Matches reports whether the named test should run.
func (f *Filter) Matches(testName string) bool {
	if f == nil || f.pattern == "" {
		return true
	}
	var matched bool
	if f.re != nil {
		matched = f.re.MatchString(testName)
	} else {
		matched = strings.Contains(testName, f.pattern)
	}
	return matched != f.invert
}
