package validator

import (
	"github.com/calder-audio/clap-validator/internal/plugin"
)

// LibraryTest is a test case that runs against a library path without any
// plugin instance. Cases load (and tear down) the library themselves.
type LibraryTest struct {
	Name        string
	Description string
	Run         func(rc *RunContext, libraryPath string) TestResult
}

// PluginTest is a test case that runs once per (library, plugin id) pair.
// The engine owns the library; the case creates its own host and instance.
type PluginTest struct {
	Name        string
	Description string
	Run         func(rc *RunContext, lib *plugin.Library, pluginID string) TestResult
}

// LibraryTests returns the static registry of library-level test cases,
// registration order.
func LibraryTests() []LibraryTest {
	return libraryTests
}

// PluginTests returns the static registry of plugin-level test cases,
// registration order.
func PluginTests() []PluginTest {
	return pluginTests
}

// RunLibraryTest runs one named library test behind the panic boundary. An
// unknown name converts to a Failed result naming the test.
func RunLibraryTest(rc *RunContext, name, libraryPath string) TestResult {
	for _, tc := range libraryTests {
		if tc.Name == name {
			return runSafely(tc.Name, tc.Description, func() TestResult {
				return tc.Run(rc, libraryPath)
			})
		}
	}
	return failed(name, "Unknown test", "test %q not found", name)
}

// RunPluginTest runs one named plugin test behind the panic boundary. An
// unknown name converts to a Failed result naming the test.
func RunPluginTest(rc *RunContext, name string, lib *plugin.Library, pluginID string) TestResult {
	for _, tc := range pluginTests {
		if tc.Name == name {
			return runSafely(tc.Name, tc.Description, func() TestResult {
				return tc.Run(rc, lib, pluginID)
			})
		}
	}
	return failed(name, "Unknown test", "test %q not found", name)
}

// runSafely is the exception boundary: a panic escaping a test body becomes
// a Crashed result instead of unwinding into the dispatch loop.
func runSafely(name, description string, fn func() TestResult) (result TestResult) {
	defer func() {
		if r := recover(); r != nil {
			result = crashed(name, description, "%v", r)
		}
	}()
	return fn()
}

// checkCallbackError demotes an otherwise-passing result when the host
// recorded a thread violation while the test ran.
func checkCallbackError(host *plugin.Host, result TestResult) TestResult {
	msg, ok := host.TakeCallbackError()
	if !ok {
		return result
	}
	if result.Status == StatusFailed || result.Status == StatusCrashed {
		return result
	}
	return failed(result.Name, result.Description, "host callback error: %s", msg)
}
