package validator

import (
	"fmt"
	"math"

	"github.com/calder-audio/clap-validator/internal/plugin"
)

// pluginTests is the static registry of plugin-level test cases.
var pluginTests = []PluginTest{
	{
		Name:        "descriptor-consistency",
		Description: "The descriptor returned from the factory and the descriptor stored on the plugin instance should be equivalent.",
		Run:         testDescriptorConsistency,
	},
	{
		Name:        "features-categories",
		Description: "The plugin needs at least one of the main CLAP category features.",
		Run:         testFeaturesCategories,
	},
	{
		Name:        "features-duplicates",
		Description: "The plugin's features array should not contain duplicates.",
		Run:         testFeaturesDuplicates,
	},
	{
		Name:        "process-audio-out-of-place-basic",
		Description: "Processes a deterministic ramp out of place with default parameters; the output must be finite everywhere.",
		Run:         testProcessAudioBasic,
	},
	{
		Name:        "process-note-out-of-place-basic",
		Description: "Drives a plugin with note ports through one process call with empty note queues.",
		Run:         testProcessNoteBasic,
	},
	{
		Name:        "process-note-inconsistent",
		Description: "Sends mismatched note on/off pairs, redundant offs, and out-of-range indices; the plugin must not crash or emit non-finite output.",
		Run:         testProcessNoteInconsistent,
	},
	{
		Name:        "param-conversions",
		Description: "Value to text and text to value conversions must be supported for either all or none of the parameters, and must round-trip.",
		Run:         testParamConversions,
	},
	{
		Name:        "param-fuzz-basic",
		Description: "Processes random audio under random parameter permutations; output must stay finite and process must not error.",
		Run:         testParamFuzzBasic,
	},
	{
		Name:        "param-set-wrong-namespace",
		Description: "Parameter events in a foreign event namespace must leave every parameter value untouched.",
		Run:         testParamWrongNamespace,
	},
	{
		Name:        "state-invalid",
		Description: "Loading a zero-byte state stream must fail cleanly.",
		Run:         testStateInvalid,
	},
	{
		Name:        "state-reproducibility-basic",
		Description: "Saving, loading into a fresh instance, and saving again must reproduce identical state and parameter values.",
		Run:         testStateReproducibilityBasic,
	},
	{
		Name:        "state-reproducibility-null-cookies",
		Description: "State reproducibility with every parameter event cookie forced to null; plugins must re-resolve cookies by id.",
		Run:         testStateReproducibilityNullCookies,
	},
	{
		Name:        "state-reproducibility-flush",
		Description: "Setting the same parameter values through the flush mechanism must produce the same saved state.",
		Run:         testStateReproducibilityFlush,
	},
	{
		Name:        "state-buffered-streams",
		Description: "The save/load round-trip must survive a read stream that returns at most a few bytes per call.",
		Run:         testStateBufferedStreams,
	},
}

// instance bundles a host and an initialized plugin for one test.
type instance struct {
	Host   *plugin.Host
	Plugin *plugin.Plugin
}

// newInstance creates a host and an initialized plugin against it.
func newInstance(lib *plugin.Library, pluginID string) (*instance, error) {
	host := plugin.NewHost()
	p, err := lib.CreatePlugin(pluginID, host)
	if err != nil {
		host.Close()
		return nil, err
	}
	if err := p.Init(); err != nil {
		p.Destroy()
		host.Close()
		return nil, fmt.Errorf("failed to initialize plugin %q: %w", pluginID, err)
	}
	return &instance{Host: host, Plugin: p}, nil
}

// Close drains a pending main-thread callback, destroys the plugin, and
// releases the host, in that order.
func (in *instance) Close() {
	in.Host.HandleCallbacksOnce()
	in.Plugin.Destroy()
	in.Host.Close()
}

// channelCounts resolves the main port's channel counts, defaulting to mono
// when the plugin has no audio-ports extension.
func channelCounts(p *plugin.Plugin) (in, out uint32) {
	ports := p.AudioPorts()
	return ports.MainChannelCount(true, 1), ports.MainChannelCount(false, 1)
}

// processPass runs one full activate → process → deactivate pass over block
// buffers prepared by fill, with events queued by events. Returns the output
// buffers' finiteness verdict and the process status.
type processPass struct {
	status   plugin.ProcessStatus
	badChan  uint32
	badFrame int
	nonFin   bool
}

func runProcessPass(in *instance, events func(q *plugin.EventQueue), fill func(b *plugin.AudioBuffers)) (processPass, error) {
	p := in.Plugin
	inCh, outCh := channelCounts(p)

	if err := p.Activate(testSampleRate, testBlockSize, testBlockSize); err != nil {
		return processPass{}, err
	}
	defer p.Deactivate()
	if err := p.StartProcessing(); err != nil {
		return processPass{}, err
	}
	defer p.StopProcessing()

	inBuf := plugin.NewAudioBuffers(inCh, testBlockSize)
	defer inBuf.Close()
	outBuf := plugin.NewAudioBuffers(outCh, testBlockSize)
	defer outBuf.Close()
	if fill != nil {
		fill(inBuf)
	}

	inQ := plugin.NewEventQueue()
	defer inQ.Close()
	outQ := plugin.NewOutEventQueue()
	defer outQ.Close()
	if events != nil {
		events(inQ)
	}

	data := plugin.NewProcessData(inBuf, outBuf, inQ, outQ, testBlockSize, 0)
	defer data.Close()

	var pass processPass
	mark := in.Host.MarkAudioThread()
	pass.status = p.Process(data)
	mark.Release()

	pass.badChan, pass.badFrame, pass.nonFin = outBuf.FindNonFinite()
	return pass, nil
}

// randomParamValues draws one random value per writable parameter, rounding
// stepped parameters to integers.
func randomParamValues(rc *RunContext, infos []plugin.ParamInfo) map[uint32]float64 {
	values := make(map[uint32]float64, len(infos))
	for _, info := range infos {
		if info.IsReadonly() {
			continue
		}
		v := info.Min
		if info.Max > info.Min {
			v = info.Min + rc.Rand().Float64()*(info.Max-info.Min)
		}
		if info.IsStepped() {
			v = math.Round(v)
		}
		values[info.ID] = v
	}
	return values
}

// queueParamValues pushes one core-namespace PARAM_VALUE event per entry.
// Cookies come from the given infos unless nullCookies is set.
func queueParamValues(q *plugin.EventQueue, infos []plugin.ParamInfo, values map[uint32]float64, nullCookies bool) {
	for _, info := range infos {
		v, ok := values[info.ID]
		if !ok {
			continue
		}
		ev := plugin.ParamValueEvent{
			ParamID: info.ID,
			NoteID:  -1,
			Port:    -1,
			Channel: -1,
			Key:     -1,
			Value:   v,
		}
		if !nullCookies {
			ev.Cookie = info.Cookie
		}
		q.PushParamValue(ev)
	}
}

// applyViaProcess drives one process pass whose event queue sets values.
func applyViaProcess(in *instance, infos []plugin.ParamInfo, values map[uint32]float64, nullCookies bool) error {
	pass, err := runProcessPass(in, func(q *plugin.EventQueue) {
		queueParamValues(q, infos, values, nullCookies)
	}, func(b *plugin.AudioBuffers) { b.Zero() })
	if err != nil {
		return err
	}
	if pass.status.Failed() {
		return fmt.Errorf("process returned an error while applying parameter values")
	}
	return nil
}

// applyViaFlush delivers the values through params.flush while inactive.
func applyViaFlush(in *instance, infos []plugin.ParamInfo, values map[uint32]float64) {
	q := plugin.NewEventQueue()
	defer q.Close()
	out := plugin.NewOutEventQueue()
	defer out.Close()
	queueParamValues(q, infos, values, false)
	in.Plugin.Params().Flush(q, out)
}
