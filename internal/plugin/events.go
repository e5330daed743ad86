package plugin

/*
#include <stdlib.h>
#include "bridge.h"
*/
import "C"

import (
	"runtime/cgo"
	"unsafe"
)

// ParamValueEvent describes a CLAP_EVENT_PARAM_VALUE event to queue.
// SpaceID defaults to the core event space; tests deliberately set it to a
// wrong namespace to probe that plugins ignore foreign events.
type ParamValueEvent struct {
	Time    uint32
	SpaceID uint16
	ParamID uint32
	Cookie  unsafe.Pointer
	NoteID  int32
	Port    int16
	Channel int16
	Key     int16
	Value   float64
}

// NoteEvent describes a note on/off/choke event.
type NoteEvent struct {
	Time     uint32
	Type     uint16
	NoteID   int32
	Port     int16
	Channel  int16
	Key      int16
	Velocity float64
}

// EventQueue is a host-owned clap_input_events list. Events are allocated
// in C memory so the pointers handed back from get stay valid for the whole
// process call.
type EventQueue struct {
	handle cgo.Handle
	list   *C.clap_input_events_t
	events []*C.clap_event_header_t
}

// NewEventQueue creates an empty input event list.
func NewEventQueue() *EventQueue {
	q := &EventQueue{}
	q.handle = cgo.NewHandle(q)
	q.list = C.clapval_in_events_new(C.uintptr_t(q.handle))
	return q
}

// Len returns the number of queued events.
func (q *EventQueue) Len() int { return len(q.events) }

// Clear drops all queued events.
func (q *EventQueue) Clear() {
	for _, ev := range q.events {
		C.free(unsafe.Pointer(ev))
	}
	q.events = nil
}

// PushParamValue queues a PARAM_VALUE event. A zero SpaceID means the core
// event space.
func (q *EventQueue) PushParamValue(ev ParamValueEvent) {
	raw := (*C.clap_event_param_value_t)(C.calloc(1, C.sizeof_clap_event_param_value_t))
	raw.header.size = C.sizeof_clap_event_param_value_t
	raw.header.time = C.uint32_t(ev.Time)
	raw.header.space_id = C.uint16_t(ev.SpaceID)
	raw.header._type = C.uint16_t(EventParamValue)
	raw.param_id = C.clap_id(ev.ParamID)
	raw.cookie = ev.Cookie
	raw.note_id = C.int32_t(ev.NoteID)
	raw.port_index = C.int16_t(ev.Port)
	raw.channel = C.int16_t(ev.Channel)
	raw.key = C.int16_t(ev.Key)
	raw.value = C.double(ev.Value)
	q.events = append(q.events, (*C.clap_event_header_t)(unsafe.Pointer(raw)))
}

// PushNote queues a note event of the given type (note on, off, or choke).
func (q *EventQueue) PushNote(ev NoteEvent) {
	raw := (*C.clap_event_note_t)(C.calloc(1, C.sizeof_clap_event_note_t))
	raw.header.size = C.sizeof_clap_event_note_t
	raw.header.time = C.uint32_t(ev.Time)
	raw.header.space_id = C.uint16_t(CoreEventSpaceID)
	raw.header._type = C.uint16_t(ev.Type)
	raw.note_id = C.int32_t(ev.NoteID)
	raw.port_index = C.int16_t(ev.Port)
	raw.channel = C.int16_t(ev.Channel)
	raw.key = C.int16_t(ev.Key)
	raw.velocity = C.double(ev.Velocity)
	q.events = append(q.events, (*C.clap_event_header_t)(unsafe.Pointer(raw)))
}

// PushMIDI queues a raw three-byte MIDI 1.0 event.
func (q *EventQueue) PushMIDI(time uint32, port uint16, data [3]byte) {
	raw := (*C.clap_event_midi_t)(C.calloc(1, C.sizeof_clap_event_midi_t))
	raw.header.size = C.sizeof_clap_event_midi_t
	raw.header.time = C.uint32_t(time)
	raw.header.space_id = C.uint16_t(CoreEventSpaceID)
	raw.header._type = C.uint16_t(EventMIDI)
	raw.port_index = C.uint16_t(port)
	for i, b := range data {
		raw.data[i] = C.uint8_t(b)
	}
	q.events = append(q.events, (*C.clap_event_header_t)(unsafe.Pointer(raw)))
}

// clapList returns the pinned C list to place into clap_process.
func (q *EventQueue) clapList() *C.clap_input_events_t { return q.list }

// Close frees the queued events and the list itself.
func (q *EventQueue) Close() {
	if q.list == nil {
		return
	}
	q.Clear()
	C.clapval_in_events_free(q.list)
	q.list = nil
	q.handle.Delete()
}

// EventHeader is a copy of a clap_event_header pushed by the plugin.
type EventHeader struct {
	Size    uint32
	Time    uint32
	SpaceID uint16
	Type    uint16
	Flags   uint32
}

// OutEventQueue is a host-owned clap_output_events sink. The validator
// accepts every pushed event and records its header.
type OutEventQueue struct {
	handle cgo.Handle
	list   *C.clap_output_events_t
	pushed []EventHeader
}

// NewOutEventQueue creates an empty output event sink.
func NewOutEventQueue() *OutEventQueue {
	q := &OutEventQueue{}
	q.handle = cgo.NewHandle(q)
	q.list = C.clapval_out_events_new(C.uintptr_t(q.handle))
	return q
}

// Pushed returns the headers of every event the plugin emitted.
func (q *OutEventQueue) Pushed() []EventHeader { return q.pushed }

// clapList returns the pinned C list to place into clap_process.
func (q *OutEventQueue) clapList() *C.clap_output_events_t { return q.list }

// Close frees the list.
func (q *OutEventQueue) Close() {
	if q.list == nil {
		return
	}
	C.clapval_out_events_free(q.list)
	q.list = nil
	q.handle.Delete()
}

//export clapvalInEventsSize
func clapvalInEventsSize(handle C.uintptr_t) C.uint32_t {
	q := cgo.Handle(handle).Value().(*EventQueue)
	return C.uint32_t(len(q.events))
}

//export clapvalInEventsGet
func clapvalInEventsGet(handle C.uintptr_t, index C.uint32_t) *C.clap_event_header_t {
	q := cgo.Handle(handle).Value().(*EventQueue)
	if int(index) >= len(q.events) {
		return nil
	}
	return q.events[index]
}

//export clapvalOutEventsTryPush
func clapvalOutEventsTryPush(handle C.uintptr_t, ev *C.clap_event_header_t) C.bool {
	q := cgo.Handle(handle).Value().(*OutEventQueue)
	if ev == nil {
		return C.bool(false)
	}
	q.pushed = append(q.pushed, EventHeader{
		Size:    uint32(ev.size),
		Time:    uint32(ev.time),
		SpaceID: uint16(ev.space_id),
		Type:    uint16(ev._type),
		Flags:   uint32(ev.flags),
	})
	return C.bool(true)
}
