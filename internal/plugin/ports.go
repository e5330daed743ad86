package plugin

/*
#include "bridge.h"
*/
import "C"

// NotePorts wraps the plugin-side note-ports extension. The validator only
// needs port counts to decide whether note tests apply.
type NotePorts struct {
	plugin *Plugin
	ext    *C.clap_plugin_note_ports_t
}

// Count returns the number of note ports in the given direction.
func (n *NotePorts) Count(isInput bool) uint32 {
	return uint32(C.clapval_note_ports_count(n.ext, n.plugin.raw, C.bool(isInput)))
}

// AudioPortInfo is an owned copy of one audio port record.
type AudioPortInfo struct {
	ID           uint32
	Name         string
	ChannelCount uint32
}

// AudioPorts wraps the plugin-side audio-ports extension.
type AudioPorts struct {
	plugin *Plugin
	ext    *C.clap_plugin_audio_ports_t
}

// Count returns the number of audio ports in the given direction.
func (a *AudioPorts) Count(isInput bool) uint32 {
	return uint32(C.clapval_audio_ports_count(a.ext, a.plugin.raw, C.bool(isInput)))
}

// Get copies the port record at index.
func (a *AudioPorts) Get(index uint32, isInput bool) (AudioPortInfo, bool) {
	var raw C.clap_audio_port_info_t
	if !bool(C.clapval_audio_ports_get(a.ext, a.plugin.raw, C.uint32_t(index), C.bool(isInput), &raw)) {
		return AudioPortInfo{}, false
	}
	return AudioPortInfo{
		ID:           uint32(raw.id),
		Name:         C.GoString(&raw.name[0]),
		ChannelCount: uint32(raw.channel_count),
	}, true
}

// MainChannelCount returns the channel count of the first port in the given
// direction, or fallback when the extension reports no ports.
func (a *AudioPorts) MainChannelCount(isInput bool, fallback uint32) uint32 {
	if a == nil || a.Count(isInput) == 0 {
		return fallback
	}
	if info, ok := a.Get(0, isInput); ok && info.ChannelCount > 0 {
		return info.ChannelCount
	}
	return fallback
}
