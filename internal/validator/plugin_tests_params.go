package validator

import (
	"math"

	"github.com/calder-audio/clap-validator/internal/plugin"
)

// conversionTolerance bounds the value drift allowed through a value → text
// → value round-trip, scaled to the parameter's range.
const conversionTolerance = 1e-4

func testParamConversions(rc *RunContext, lib *plugin.Library, pluginID string) TestResult {
	const name = "param-conversions"
	const desc = "Text conversions must be all-or-none and must round-trip."

	in, err := newInstance(lib, pluginID)
	if err != nil {
		return failed(name, desc, "%v", err)
	}
	defer in.Close()

	params := in.Plugin.Params()
	if params == nil {
		return skipped(name, desc, "the plugin does not expose the params extension")
	}
	infos, err := params.Infos()
	if err != nil {
		return failed(name, desc, "%v", err)
	}
	if len(infos) == 0 {
		return skipped(name, desc, "the plugin has no parameters")
	}

	supported := 0
	for _, info := range infos {
		text, ok := params.ValueToText(info.ID, info.Default)
		if !ok {
			continue
		}
		supported++

		parsed, ok := params.TextToValue(info.ID, text)
		if !ok {
			return failed(name, desc,
				"parameter %q (%d) supports value_to_text but not text_to_value", info.Name, info.ID)
		}

		tolerance := conversionTolerance
		if span := info.Max - info.Min; span > 0 {
			tolerance = conversionTolerance * span
		}
		if math.Abs(parsed-info.Default) > tolerance {
			return failed(name, desc,
				"parameter %q (%d): value %f formatted as %q parsed back to %f (tolerance %g)",
				info.Name, info.ID, info.Default, text, parsed, tolerance)
		}

		// Text must be a fixed point: formatting the parsed value again has
		// to reproduce the same string.
		text2, ok := params.ValueToText(info.ID, parsed)
		if !ok || text2 != text {
			return failed(name, desc,
				"parameter %q (%d): text %q is not stable through a parse/format cycle (got %q)",
				info.Name, info.ID, text, text2)
		}
	}

	if supported != 0 && supported != len(infos) {
		return failed(name, desc,
			"text conversions are supported for %d of %d parameters; support must be all-or-none",
			supported, len(infos))
	}
	if supported == 0 {
		return skipped(name, desc, "the plugin does not implement text conversions")
	}

	return checkCallbackError(in.Host, successf(name, desc, "round-tripped %d parameters", supported))
}

func testParamFuzzBasic(rc *RunContext, lib *plugin.Library, pluginID string) TestResult {
	const name = "param-fuzz-basic"
	const desc = "Random parameter permutations over random audio must keep the output finite."

	in, err := newInstance(lib, pluginID)
	if err != nil {
		return failed(name, desc, "%v", err)
	}
	defer in.Close()

	params := in.Plugin.Params()
	if params == nil {
		return skipped(name, desc, "the plugin does not expose the params extension")
	}
	infos, err := params.Infos()
	if err != nil {
		return failed(name, desc, "%v", err)
	}
	seenIDs := make(map[uint32]struct{}, len(infos))
	for _, info := range infos {
		if _, dup := seenIDs[info.ID]; dup {
			return failed(name, desc, "parameter ID %d appears more than once", info.ID)
		}
		seenIDs[info.ID] = struct{}{}
	}

	p := in.Plugin
	inCh, outCh := channelCounts(p)

	if err := p.Activate(testSampleRate, testBlockSize, testBlockSize); err != nil {
		return failed(name, desc, "%v", err)
	}
	defer p.Deactivate()
	if err := p.StartProcessing(); err != nil {
		return failed(name, desc, "%v", err)
	}
	defer p.StopProcessing()

	inBuf := plugin.NewAudioBuffers(inCh, testBlockSize)
	defer inBuf.Close()
	outBuf := plugin.NewAudioBuffers(outCh, testBlockSize)
	defer outBuf.Close()

	inQ := plugin.NewEventQueue()
	defer inQ.Close()
	outQ := plugin.NewOutEventQueue()
	defer outQ.Close()

	data := plugin.NewProcessData(inBuf, outBuf, inQ, outQ, testBlockSize, 0)
	defer data.Close()

	steady := int64(0)
	for perm := 0; perm < rc.Opts.FuzzPermutations; perm++ {
		values := randomParamValues(rc, infos)

		for buf := 0; buf < rc.Opts.FuzzBuffers; buf++ {
			inQ.Clear()
			if buf == 0 {
				queueParamValues(inQ, infos, values, false)
			}
			for ch := uint32(0); ch < inCh; ch++ {
				samples := inBuf.Channel(ch)
				for i := range samples {
					samples[i] = float32(rc.Rand().Float64()*2 - 1)
				}
			}

			data.SetSteadyTime(steady)
			mark := in.Host.MarkAudioThread()
			status := p.Process(data)
			mark.Release()
			steady += testBlockSize

			if status.Failed() {
				return failed(name, desc, "process returned CLAP_PROCESS_ERROR on permutation %d, buffer %d", perm, buf)
			}
			if ch, frame, bad := outBuf.FindNonFinite(); bad {
				return failed(name, desc,
					"non-finite value at channel %d, sample %d on permutation %d, buffer %d", ch, frame, perm, buf)
			}
		}
	}

	return checkCallbackError(in.Host, successf(name, desc, "ran %d permutations", rc.Opts.FuzzPermutations))
}

// wrongNamespaceID is a deliberately foreign event space; a conforming
// plugin must ignore PARAM_VALUE events carrying it.
const wrongNamespaceID uint16 = 0xB33F

func testParamWrongNamespace(rc *RunContext, lib *plugin.Library, pluginID string) TestResult {
	const name = "param-set-wrong-namespace"
	const desc = "PARAM_VALUE events outside the core namespace must be ignored."

	in, err := newInstance(lib, pluginID)
	if err != nil {
		return failed(name, desc, "%v", err)
	}
	defer in.Close()

	params := in.Plugin.Params()
	if params == nil {
		return skipped(name, desc, "the plugin does not expose the params extension")
	}
	infos, err := params.Infos()
	if err != nil {
		return failed(name, desc, "%v", err)
	}
	if len(infos) == 0 {
		return skipped(name, desc, "the plugin has no parameters")
	}

	before, err := params.Values(infos)
	if err != nil {
		return failed(name, desc, "%v", err)
	}

	// Target values are drawn at random within each parameter's range. They
	// are not forced to differ from the current values, so an obeyed event
	// whose target happens to equal the current value goes unnoticed.
	targets := randomParamValues(rc, infos)

	pass, err := runProcessPass(in, func(q *plugin.EventQueue) {
		for _, info := range infos {
			v, ok := targets[info.ID]
			if !ok {
				continue
			}
			q.PushParamValue(plugin.ParamValueEvent{
				SpaceID: wrongNamespaceID,
				ParamID: info.ID,
				Cookie:  info.Cookie,
				NoteID:  -1,
				Port:    -1,
				Channel: -1,
				Key:     -1,
				Value:   v,
			})
		}
	}, func(b *plugin.AudioBuffers) { b.Zero() })
	if err != nil {
		return failed(name, desc, "%v", err)
	}
	if pass.status.Failed() {
		return failed(name, desc, "process returned CLAP_PROCESS_ERROR")
	}

	after, err := params.Values(infos)
	if err != nil {
		return failed(name, desc, "%v", err)
	}
	for _, info := range infos {
		if before[info.ID] != after[info.ID] {
			return failed(name, desc,
				"parameter %q (%d) changed from %f to %f after an event in namespace 0x%04X",
				info.Name, info.ID, before[info.ID], after[info.ID], wrongNamespaceID)
		}
	}

	return checkCallbackError(in.Host, success(name, desc))
}
