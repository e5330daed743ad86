package plugin

// Factory and extension identifiers from the CLAP ABI. Kept as Go constants
// so non-cgo packages can refer to them.
const (
	PluginFactoryID          = "clap.plugin-factory"
	PresetDiscoveryFactoryID = "clap.preset-discovery-factory/2"

	ExtThreadCheck = "clap.thread-check"
	ExtParams      = "clap.params"
	ExtState       = "clap.state"
	ExtNotePorts   = "clap.note-ports"
	ExtAudioPorts  = "clap.audio-ports"
)

// The five main category feature tags; every plugin must advertise at least
// one of them.
const (
	FeatureInstrument   = "instrument"
	FeatureAudioEffect  = "audio-effect"
	FeatureNoteEffect   = "note-effect"
	FeatureNoteDetector = "note-detector"
	FeatureAnalyzer     = "analyzer"
)

// CoreEventSpaceID is the namespace every validator-conforming plugin must
// honour for PARAM_VALUE events. Events in any other namespace must be
// ignored.
const CoreEventSpaceID uint16 = 0

// Event types from the core event space.
const (
	EventNoteOn     uint16 = 0
	EventNoteOff    uint16 = 1
	EventNoteChoke  uint16 = 2
	EventNoteEnd    uint16 = 3
	EventParamValue uint16 = 5
	EventMIDI       uint16 = 10
)

// Process statuses returned by clap_plugin.process.
type ProcessStatus int32

const (
	ProcessError              ProcessStatus = 0
	ProcessContinue           ProcessStatus = 1
	ProcessContinueIfNotQuiet ProcessStatus = 2
	ProcessTail               ProcessStatus = 3
	ProcessSleep              ProcessStatus = 4
)

// Failed reports whether the status is the error status.
func (s ProcessStatus) Failed() bool { return s == ProcessError }

// Parameter info flags.
const (
	ParamIsStepped  uint32 = 1 << 0
	ParamIsPeriodic uint32 = 1 << 1
	ParamIsHidden   uint32 = 1 << 2
	ParamIsReadonly uint32 = 1 << 3
	ParamIsBypass   uint32 = 1 << 4
)
