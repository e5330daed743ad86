package validator

import (
	"github.com/calder-audio/clap-validator/internal/plugin"
)

func testDescriptorConsistency(rc *RunContext, lib *plugin.Library, pluginID string) TestResult {
	const name = "descriptor-consistency"
	const desc = "Factory descriptor and instance descriptor must match."

	meta, err := lib.Metadata()
	if err != nil {
		return failed(name, desc, "%v", err)
	}
	factoryMeta := meta.Plugin(pluginID)
	if factoryMeta == nil {
		return failed(name, desc, "plugin ID %q not found in the factory", pluginID)
	}

	in, err := newInstance(lib, pluginID)
	if err != nil {
		return failed(name, desc, "%v", err)
	}
	defer in.Close()

	instanceMeta, err := in.Plugin.Descriptor()
	if err != nil {
		return failed(name, desc, "%v", err)
	}

	if factoryMeta.ID != instanceMeta.ID {
		return failed(name, desc, "plugin ID mismatch: factory=%q, instance=%q", factoryMeta.ID, instanceMeta.ID)
	}
	if factoryMeta.Name != instanceMeta.Name {
		return failed(name, desc, "plugin name mismatch: factory=%q, instance=%q", factoryMeta.Name, instanceMeta.Name)
	}

	return checkCallbackError(in.Host, success(name, desc))
}

// mainCategories are the feature tags that mark a plugin's primary kind.
var mainCategories = map[string]struct{}{
	plugin.FeatureInstrument:   {},
	plugin.FeatureAudioEffect:  {},
	plugin.FeatureNoteEffect:   {},
	plugin.FeatureNoteDetector: {},
	plugin.FeatureAnalyzer:     {},
}

func testFeaturesCategories(rc *RunContext, lib *plugin.Library, pluginID string) TestResult {
	const name = "features-categories"
	const desc = "The feature list must contain at least one main category."

	meta, err := lib.Metadata()
	if err != nil {
		return failed(name, desc, "%v", err)
	}
	pm := meta.Plugin(pluginID)
	if pm == nil {
		return failed(name, desc, "plugin ID %q not found in the factory", pluginID)
	}

	for _, feature := range pm.Features {
		if _, ok := mainCategories[feature]; ok {
			return success(name, desc)
		}
	}
	return failed(name, desc,
		"no main category feature found (expected one of instrument, audio-effect, note-effect, note-detector, analyzer); got %v",
		pm.Features)
}

func testFeaturesDuplicates(rc *RunContext, lib *plugin.Library, pluginID string) TestResult {
	const name = "features-duplicates"
	const desc = "The feature list must not repeat a tag."

	meta, err := lib.Metadata()
	if err != nil {
		return failed(name, desc, "%v", err)
	}
	pm := meta.Plugin(pluginID)
	if pm == nil {
		return failed(name, desc, "plugin ID %q not found in the factory", pluginID)
	}

	seen := make(map[string]struct{}, len(pm.Features))
	for _, feature := range pm.Features {
		if _, dup := seen[feature]; dup {
			return failed(name, desc, "duplicate feature %q", feature)
		}
		seen[feature] = struct{}{}
	}
	return success(name, desc)
}
