package plugin

/*
#include "bridge.h"
*/
import "C"

import "fmt"

// StateExt wraps the plugin-side state extension.
type StateExt struct {
	plugin *Plugin
	ext    *C.clap_plugin_state_t
}

// Save runs clap_plugin_state.save into an owned buffer.
func (s *StateExt) Save() ([]byte, error) {
	stream := NewOStream()
	defer stream.Close()
	if !bool(C.clapval_state_save(s.ext, s.plugin.raw, stream.c)) {
		return nil, fmt.Errorf("clap_plugin_state::save() returned false")
	}
	// Copy out of the stream before it goes away.
	blob := make([]byte, len(stream.Bytes()))
	copy(blob, stream.Bytes())
	return blob, nil
}

// Load feeds a blob to clap_plugin_state.load through a read stream.
// maxChunk > 0 caps the bytes returned per read, exercising the plugin's
// short-read handling.
func (s *StateExt) Load(blob []byte, maxChunk int) bool {
	stream := NewIStream(blob)
	stream.MaxChunk = maxChunk
	defer stream.Close()
	return bool(C.clapval_state_load(s.ext, s.plugin.raw, stream.c))
}
