package validator

import (
	"bytes"

	"github.com/calder-audio/clap-validator/internal/plugin"
)

// bufferedStreamChunk is the per-read byte cap for the buffered-stream
// test. Small and prime so reads land on awkward boundaries.
const bufferedStreamChunk = 7

func testStateInvalid(rc *RunContext, lib *plugin.Library, pluginID string) TestResult {
	const name = "state-invalid"
	const desc = "Loading from a zero-byte stream must return false."

	in, err := newInstance(lib, pluginID)
	if err != nil {
		return failed(name, desc, "%v", err)
	}
	defer in.Close()

	state := in.Plugin.State()
	if state == nil {
		return skipped(name, desc, "the plugin does not expose the state extension")
	}

	if state.Load(nil, 0) {
		return failed(name, desc, "clap_plugin_state::load() accepted an empty stream")
	}
	return checkCallbackError(in.Host, success(name, desc))
}

// stateRoundTrip implements the shared body of the reproducibility tests.
// loadChunk caps per-read bytes on the second instance's load (0 = no cap);
// nullCookies strips cookies from the randomizing events; viaFlush replaces
// the second instance's state load with a parameter flush of the same
// values.
func stateRoundTrip(rc *RunContext, lib *plugin.Library, pluginID, name, desc string, loadChunk int, nullCookies, viaFlush bool) TestResult {
	first, err := newInstance(lib, pluginID)
	if err != nil {
		return failed(name, desc, "%v", err)
	}
	defer first.Close()

	state := first.Plugin.State()
	if state == nil {
		return skipped(name, desc, "the plugin does not expose the state extension")
	}

	params := first.Plugin.Params()
	var infos []plugin.ParamInfo
	var values map[uint32]float64
	if params != nil {
		if infos, err = params.Infos(); err != nil {
			return failed(name, desc, "%v", err)
		}
		values = randomParamValues(rc, infos)
		if err := applyViaProcess(first, infos, values, nullCookies); err != nil {
			return failed(name, desc, "%v", err)
		}
	} else if viaFlush {
		return skipped(name, desc, "the plugin does not expose the params extension")
	}

	saved, err := state.Save()
	if err != nil {
		return failed(name, desc, "%v", err)
	}

	second, err := newInstance(lib, pluginID)
	if err != nil {
		return failed(name, desc, "could not create a second instance: %v", err)
	}
	defer second.Close()

	secondState := second.Plugin.State()
	if secondState == nil {
		return failed(name, desc, "the second instance does not expose the state extension")
	}

	if viaFlush {
		secondParams := second.Plugin.Params()
		if secondParams == nil {
			return failed(name, desc, "the second instance does not expose the params extension")
		}
		secondInfos, err := secondParams.Infos()
		if err != nil {
			return failed(name, desc, "%v", err)
		}
		applyViaFlush(second, secondInfos, values)
	} else {
		if !secondState.Load(saved, loadChunk) {
			return failed(name, desc, "clap_plugin_state::load() rejected a state blob of %d bytes", len(saved))
		}
	}

	// Parameter values on the second instance must mirror the first.
	if params != nil {
		secondParams := second.Plugin.Params()
		if secondParams == nil {
			return failed(name, desc, "the second instance does not expose the params extension")
		}
		firstValues, err := params.Values(infos)
		if err != nil {
			return failed(name, desc, "%v", err)
		}
		secondValues, err := secondParams.Values(infos)
		if err != nil {
			return failed(name, desc, "%v", err)
		}
		for _, info := range infos {
			if firstValues[info.ID] != secondValues[info.ID] {
				return failed(name, desc,
					"parameter %q (%d) is %f on the first instance but %f after restore",
					info.Name, info.ID, firstValues[info.ID], secondValues[info.ID])
			}
			if v := secondValues[info.ID]; v < info.Min || v > info.Max {
				return failed(name, desc,
					"parameter %q (%d) is %f after restore, outside its range [%f, %f]",
					info.Name, info.ID, v, info.Min, info.Max)
			}
		}
	}

	resaved, err := secondState.Save()
	if err != nil {
		return failed(name, desc, "%v", err)
	}
	if !bytes.Equal(saved, resaved) {
		return failed(name, desc,
			"re-saved state differs from the original (%d vs %d bytes)", len(resaved), len(saved))
	}

	result := checkCallbackError(first.Host, successf(name, desc, "round-tripped %d bytes", len(saved)))
	return checkCallbackError(second.Host, result)
}

func testStateReproducibilityBasic(rc *RunContext, lib *plugin.Library, pluginID string) TestResult {
	return stateRoundTrip(rc, lib, pluginID,
		"state-reproducibility-basic",
		"Save, load into a fresh instance, and save again must be byte-identical.",
		0, false, false)
}

func testStateReproducibilityNullCookies(rc *RunContext, lib *plugin.Library, pluginID string) TestResult {
	return stateRoundTrip(rc, lib, pluginID,
		"state-reproducibility-null-cookies",
		"State reproducibility with parameter event cookies forced to null.",
		0, true, false)
}

func testStateReproducibilityFlush(rc *RunContext, lib *plugin.Library, pluginID string) TestResult {
	return stateRoundTrip(rc, lib, pluginID,
		"state-reproducibility-flush",
		"Setting the same values via params.flush must reproduce the saved state.",
		0, false, true)
}

func testStateBufferedStreams(rc *RunContext, lib *plugin.Library, pluginID string) TestResult {
	return stateRoundTrip(rc, lib, pluginID,
		"state-buffered-streams",
		"The round-trip must survive reads capped at a few bytes each.",
		bufferedStreamChunk, false, false)
}
