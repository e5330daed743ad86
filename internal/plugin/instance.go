package plugin

/*
#include <stdlib.h>
#include "bridge.h"
*/
import "C"

import (
	"errors"
	"unsafe"
)

// State is the lifecycle position of a plugin instance.
type State int

const (
	// StateInactive: created (and possibly initialized) but not activated.
	StateInactive State = iota
	// StateActiveSleeping: activated, not processing.
	StateActiveSleeping
	// StateActiveProcessing: between start_processing and stop_processing.
	StateActiveProcessing
)

func (s State) String() string {
	switch s {
	case StateInactive:
		return "inactive"
	case StateActiveSleeping:
		return "active-sleeping"
	case StateActiveProcessing:
		return "active-processing"
	default:
		return "unknown"
	}
}

// canActivate reports whether a transition into ActiveSleeping via activate
// is legal from s. Kept as a pure function so the transition table is
// testable without a native plugin.
func canActivate(s State, initialized bool) bool {
	return initialized && s == StateInactive
}

// canStartProcessing reports whether start_processing is legal from s.
func canStartProcessing(s State) bool { return s == StateActiveSleeping }

// Plugin is a state machine around a single native plugin pointer.
//
// Transitions that merely re-request the current adjacent state are no-ops;
// forbidden jumps fail without mutating state. Destroy cascades: a
// processing plugin is stopped, a sleeping one deactivated, an initialized
// one destroyed, and the host's current-plugin slot is always detached.
type Plugin struct {
	raw  *C.clap_plugin_t
	host *Host
	id   string

	state       State
	initialized bool
}

func newPlugin(raw *C.clap_plugin_t, host *Host, id string) *Plugin {
	p := &Plugin{raw: raw, host: host, id: id}
	host.setCurrent(p)
	return p
}

// ID returns the plugin id the instance was created with.
func (p *Plugin) ID() string { return p.id }

// CurrentState returns the instance's lifecycle state.
func (p *Plugin) CurrentState() State { return p.state }

// Init runs clap_plugin.init once. Calling Init again after success is a
// no-op.
func (p *Plugin) Init() error {
	if p.initialized {
		return nil
	}
	if !bool(C.clapval_plugin_init(p.raw)) {
		return errors.New("clap_plugin::init() returned false")
	}
	p.initialized = true
	return nil
}

// Activate moves Inactive(initialized) to ActiveSleeping.
func (p *Plugin) Activate(sampleRate float64, minFrames, maxFrames uint32) error {
	if p.state == StateActiveSleeping {
		return nil
	}
	if !canActivate(p.state, p.initialized) {
		return errors.New("activate is only legal on an initialized, inactive plugin")
	}
	if !bool(C.clapval_plugin_activate(p.raw, C.double(sampleRate), C.uint32_t(minFrames), C.uint32_t(maxFrames))) {
		return errors.New("clap_plugin::activate() returned false")
	}
	p.state = StateActiveSleeping
	return nil
}

// Deactivate moves back to Inactive, stopping processing first if needed.
func (p *Plugin) Deactivate() {
	if p.state == StateActiveProcessing {
		p.StopProcessing()
	}
	if p.state != StateActiveSleeping {
		return
	}
	C.clapval_plugin_deactivate(p.raw)
	p.state = StateInactive
}

// StartProcessing moves ActiveSleeping to ActiveProcessing. A plugin that
// does not implement start_processing is treated as not requiring it and
// the state still advances.
func (p *Plugin) StartProcessing() error {
	if p.state == StateActiveProcessing {
		return nil
	}
	if !canStartProcessing(p.state) {
		return errors.New("start_processing is only legal on an active, sleeping plugin")
	}
	if C.clapval_plugin_has_start_processing(p.raw) != 0 {
		if !bool(C.clapval_plugin_start_processing(p.raw)) {
			return errors.New("clap_plugin::start_processing() returned false")
		}
	}
	p.state = StateActiveProcessing
	return nil
}

// StopProcessing moves ActiveProcessing back to ActiveSleeping.
func (p *Plugin) StopProcessing() {
	if p.state != StateActiveProcessing {
		return
	}
	C.clapval_plugin_stop_processing(p.raw)
	p.state = StateActiveSleeping
}

// Process runs one process call. Defined only in ActiveProcessing; any
// other state yields ProcessError without touching the plugin.
func (p *Plugin) Process(data *ProcessData) ProcessStatus {
	if p.state != StateActiveProcessing {
		return ProcessError
	}
	return ProcessStatus(C.clapval_plugin_process(p.raw, data.c))
}

// Descriptor copies the descriptor stored on the instance itself, as
// opposed to the one served by the factory.
func (p *Plugin) Descriptor() (Metadata, error) {
	if p.raw.desc == nil {
		return Metadata{}, errors.New("the plugin instance carries no descriptor")
	}
	return metadataFromDescriptor(p.raw.desc)
}

// getExtension resolves a plugin-side extension pointer. Never cached.
func (p *Plugin) getExtension(id string) unsafe.Pointer {
	cID := C.CString(id)
	defer C.free(unsafe.Pointer(cID))
	return unsafe.Pointer(C.clapval_plugin_get_extension(p.raw, cID))
}

// HasExtension reports whether the plugin serves the extension id.
func (p *Plugin) HasExtension(id string) bool {
	return p.getExtension(id) != nil
}

// Params returns the params extension wrapper, or nil if unsupported.
func (p *Plugin) Params() *Params {
	ext := p.getExtension(ExtParams)
	if ext == nil {
		return nil
	}
	return &Params{plugin: p, ext: (*C.clap_plugin_params_t)(ext)}
}

// State returns the state extension wrapper, or nil if unsupported.
func (p *Plugin) State() *StateExt {
	ext := p.getExtension(ExtState)
	if ext == nil {
		return nil
	}
	return &StateExt{plugin: p, ext: (*C.clap_plugin_state_t)(ext)}
}

// NotePorts returns the note-ports extension wrapper, or nil if unsupported.
func (p *Plugin) NotePorts() *NotePorts {
	ext := p.getExtension(ExtNotePorts)
	if ext == nil {
		return nil
	}
	return &NotePorts{plugin: p, ext: (*C.clap_plugin_note_ports_t)(ext)}
}

// AudioPorts returns the audio-ports extension wrapper, or nil if
// unsupported.
func (p *Plugin) AudioPorts() *AudioPorts {
	ext := p.getExtension(ExtAudioPorts)
	if ext == nil {
		return nil
	}
	return &AudioPorts{plugin: p, ext: (*C.clap_plugin_audio_ports_t)(ext)}
}

// onMainThread forwards a pending callback request to the plugin.
func (p *Plugin) onMainThread() {
	C.clapval_plugin_on_main_thread(p.raw)
}

// Destroy tears the instance down in reverse of construction and detaches
// it from the host. Safe to call more than once; the plugin pointer is not
// kept after the native destroy has run.
func (p *Plugin) Destroy() {
	if p.raw == nil {
		return
	}
	if p.state == StateActiveProcessing {
		p.StopProcessing()
	}
	if p.state == StateActiveSleeping {
		p.Deactivate()
	}
	C.clapval_plugin_destroy(p.raw)
	p.raw = nil
	p.host.setCurrent(nil)
}
