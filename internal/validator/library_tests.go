package validator

import (
	"github.com/calder-audio/clap-validator/internal/plugin"
)

// libraryTests is the static registry of library-level test cases.
var libraryTests = []LibraryTest{
	{
		Name:        "scan-time",
		Description: "Checks whether the plugin library can be loaded and scanned within the configured time limit.",
		Run:         testScanTime,
	},
	{
		Name:        "scan-rtld-now",
		Description: "Re-opens the library with strict symbol binding; unresolved symbols that lazy binding would hide fail the load.",
		Run:         testScanStrictBinding,
	},
	{
		Name:        "query-factory-nonexistent",
		Description: "Queries the entry point for a factory with a non-existent ID. This should return a null pointer.",
		Run:         testQueryNonexistentFactory,
	},
	{
		Name:        "create-id-with-trailing-garbage",
		Description: "Attempts to create a plugin using an existing plugin ID with extra text appended. This should return a null pointer.",
		Run:         testCreateIDWithTrailingGarbage,
	},
	{
		Name:        "preset-discovery-descriptors",
		Description: "Probes the preset discovery factory; indexing and loading checks are reserved for a future release.",
		Run:         testPresetDiscovery,
	},
}

func testScanTime(rc *RunContext, libraryPath string) TestResult {
	const name = "scan-time"
	const desc = "Library load and metadata scan stays within the time limit."

	start := rc.Clock.Now()

	lib, err := plugin.Load(libraryPath)
	if err != nil {
		return failed(name, desc, "%v", err)
	}
	defer lib.Close()
	if _, err := lib.Metadata(); err != nil {
		return failed(name, desc, "%v", err)
	}

	elapsed := rc.Clock.Now().Sub(start)
	if elapsed > rc.Opts.ScanTimeLimit {
		return warning(name, desc, "scanning took %s (limit: %s)", elapsed, rc.Opts.ScanTimeLimit)
	}
	return successf(name, desc, "scanned in %s", elapsed)
}

func testScanStrictBinding(rc *RunContext, libraryPath string) TestResult {
	const name = "scan-rtld-now"
	const desc = "The library loads cleanly with strict (bind-now) symbol resolution."

	if !plugin.StrictBindingSupported() {
		return skipped(name, desc, "the platform loader has no strict binding mode")
	}
	if err := plugin.OpenStrict(libraryPath); err != nil {
		return failed(name, desc, "%v", err)
	}
	return success(name, desc)
}

func testQueryNonexistentFactory(rc *RunContext, libraryPath string) TestResult {
	const name = "query-factory-nonexistent"
	const desc = "get_factory with an impossible ID returns null."

	lib, err := plugin.Load(libraryPath)
	if err != nil {
		return failed(name, desc, "%v", err)
	}
	defer lib.Close()

	const bogusID = "com.calder-audio.factory.that.does.not.exist"
	if lib.FactoryExists(bogusID) {
		return failed(name, desc, "the entry point returned a non-null factory for ID %q", bogusID)
	}
	return success(name, desc)
}

func testCreateIDWithTrailingGarbage(rc *RunContext, libraryPath string) TestResult {
	const name = "create-id-with-trailing-garbage"
	const desc = "create_plugin with a real ID plus trailing garbage returns null."

	lib, err := plugin.Load(libraryPath)
	if err != nil {
		return failed(name, desc, "%v", err)
	}
	defer lib.Close()

	meta, err := lib.Metadata()
	if err != nil {
		return failed(name, desc, "%v", err)
	}
	if len(meta.Plugins) == 0 {
		return skipped(name, desc, "the library contains no plugins")
	}

	garbageID := meta.Plugins[0].ID + "-but-not-quite"

	host := plugin.NewHost()
	defer host.Close()

	if p, err := lib.CreatePlugin(garbageID, host); err == nil {
		p.Destroy()
		return failed(name, desc, "the factory created a plugin for the non-existent ID %q", garbageID)
	}
	return success(name, desc)
}

func testPresetDiscovery(rc *RunContext, libraryPath string) TestResult {
	const name = "preset-discovery-descriptors"
	const desc = "Preset discovery factory probe."

	lib, err := plugin.Load(libraryPath)
	if err != nil {
		return failed(name, desc, "%v", err)
	}
	defer lib.Close()

	if !lib.FactoryExists(plugin.PresetDiscoveryFactoryID) {
		return skipped(name, desc, "the library does not expose a preset discovery factory")
	}
	return skipped(name, desc, "preset indexing is not implemented yet")
}
