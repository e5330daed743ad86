package validator

import (
	"github.com/calder-audio/clap-validator/internal/plugin"
)

func testProcessAudioBasic(rc *RunContext, lib *plugin.Library, pluginID string) TestResult {
	const name = "process-audio-out-of-place-basic"
	const desc = "Out-of-place processing of a deterministic ramp with empty event queues."

	in, err := newInstance(lib, pluginID)
	if err != nil {
		return failed(name, desc, "%v", err)
	}
	defer in.Close()

	pass, err := runProcessPass(in, nil, func(b *plugin.AudioBuffers) { b.FillRamp() })
	if err != nil {
		return failed(name, desc, "%v", err)
	}
	if pass.status.Failed() {
		return failed(name, desc, "process returned CLAP_PROCESS_ERROR")
	}
	if pass.nonFin {
		return failed(name, desc, "output contains a non-finite value at channel %d, sample %d", pass.badChan, pass.badFrame)
	}

	return checkCallbackError(in.Host, success(name, desc))
}

func testProcessNoteBasic(rc *RunContext, lib *plugin.Library, pluginID string) TestResult {
	const name = "process-note-out-of-place-basic"
	const desc = "One process call with empty note queues on a plugin with note ports."

	in, err := newInstance(lib, pluginID)
	if err != nil {
		return failed(name, desc, "%v", err)
	}
	defer in.Close()

	notePorts := in.Plugin.NotePorts()
	if notePorts == nil {
		return skipped(name, desc, "the plugin does not expose the note-ports extension")
	}

	pass, err := runProcessPass(in, nil, func(b *plugin.AudioBuffers) { b.Zero() })
	if err != nil {
		return failed(name, desc, "%v", err)
	}
	if pass.status.Failed() {
		return failed(name, desc, "process returned CLAP_PROCESS_ERROR")
	}
	if pass.nonFin {
		return failed(name, desc, "output contains a non-finite value at channel %d, sample %d", pass.badChan, pass.badFrame)
	}

	return checkCallbackError(in.Host, success(name, desc))
}

func testProcessNoteInconsistent(rc *RunContext, lib *plugin.Library, pluginID string) TestResult {
	const name = "process-note-inconsistent"
	const desc = "Mismatched note events must not crash the plugin or produce non-finite output."

	in, err := newInstance(lib, pluginID)
	if err != nil {
		return failed(name, desc, "%v", err)
	}
	defer in.Close()

	notePorts := in.Plugin.NotePorts()
	if notePorts == nil || notePorts.Count(true) == 0 {
		return skipped(name, desc, "the plugin has no note input ports")
	}

	pass, err := runProcessPass(in, func(q *plugin.EventQueue) {
		// An honest note, twice ended.
		q.PushNote(plugin.NoteEvent{Time: 0, Type: plugin.EventNoteOn, NoteID: 1, Port: 0, Channel: 0, Key: 64, Velocity: 0.8})
		q.PushNote(plugin.NoteEvent{Time: 16, Type: plugin.EventNoteOff, NoteID: 1, Port: 0, Channel: 0, Key: 64, Velocity: 0.5})
		q.PushNote(plugin.NoteEvent{Time: 17, Type: plugin.EventNoteOff, NoteID: 1, Port: 0, Channel: 0, Key: 64, Velocity: 0.5})
		// Offs and chokes for notes that never started.
		q.PushNote(plugin.NoteEvent{Time: 32, Type: plugin.EventNoteOff, NoteID: -1, Port: 0, Channel: 0, Key: 3, Velocity: 1})
		q.PushNote(plugin.NoteEvent{Time: 33, Type: plugin.EventNoteChoke, NoteID: -1, Port: 0, Channel: 0, Key: 12, Velocity: 0})
		// Out-of-range key and port indices.
		q.PushNote(plugin.NoteEvent{Time: 48, Type: plugin.EventNoteOn, NoteID: 2, Port: 0, Channel: 0, Key: 139, Velocity: 0.7})
		q.PushNote(plugin.NoteEvent{Time: 64, Type: plugin.EventNoteOn, NoteID: 3, Port: 99, Channel: 15, Key: 64, Velocity: 0.7})
		// A raw MIDI note-off for a note nobody started.
		q.PushMIDI(80, 0, [3]byte{0x80, 0x40, 0x40})
	}, func(b *plugin.AudioBuffers) { b.Zero() })
	if err != nil {
		return failed(name, desc, "%v", err)
	}
	if pass.nonFin {
		return failed(name, desc, "output contains a non-finite value at channel %d, sample %d", pass.badChan, pass.badFrame)
	}

	return checkCallbackError(in.Host, success(name, desc))
}
