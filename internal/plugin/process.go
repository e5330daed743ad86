package plugin

/*
#include <stdlib.h>
#include "bridge.h"
*/
import "C"

import (
	"math"
	"unsafe"
)

// AudioBuffers is one audio port's worth of 32-bit channel buffers,
// allocated in C memory so the pointers inside clap_process stay stable
// while the plugin runs.
type AudioBuffers struct {
	c        *C.clap_audio_buffer_t
	chanPtrs **C.float
	frames   uint32
	channels uint32
}

// NewAudioBuffers allocates channels × frames of zeroed 32-bit audio.
func NewAudioBuffers(channels, frames uint32) *AudioBuffers {
	b := &AudioBuffers{frames: frames, channels: channels}
	b.c = (*C.clap_audio_buffer_t)(C.calloc(1, C.sizeof_clap_audio_buffer_t))
	b.chanPtrs = (**C.float)(C.calloc(C.size_t(channels), C.size_t(unsafe.Sizeof((*C.float)(nil)))))

	ptrs := unsafe.Slice(b.chanPtrs, channels)
	for ch := range ptrs {
		ptrs[ch] = (*C.float)(C.calloc(C.size_t(frames), C.sizeof_float))
	}

	b.c.data32 = b.chanPtrs
	b.c.channel_count = C.uint32_t(channels)
	return b
}

// Channels returns the channel count.
func (b *AudioBuffers) Channels() uint32 { return b.channels }

// Frames returns the per-channel frame count.
func (b *AudioBuffers) Frames() uint32 { return b.frames }

// Channel returns a mutable Go view over one channel's C buffer.
func (b *AudioBuffers) Channel(ch uint32) []float32 {
	ptrs := unsafe.Slice(b.chanPtrs, b.channels)
	return unsafe.Slice((*float32)(unsafe.Pointer(ptrs[ch])), b.frames)
}

// FillRamp writes a deterministic ramp in [-0.5, 0.5) into every channel.
func (b *AudioBuffers) FillRamp() {
	for ch := uint32(0); ch < b.channels; ch++ {
		samples := b.Channel(ch)
		for i := range samples {
			samples[i] = float32(i)/float32(len(samples)) - 0.5
		}
	}
}

// Zero clears every channel.
func (b *AudioBuffers) Zero() {
	for ch := uint32(0); ch < b.channels; ch++ {
		samples := b.Channel(ch)
		for i := range samples {
			samples[i] = 0
		}
	}
}

// FindNonFinite returns the first channel and frame holding a NaN or
// infinity, if any.
func (b *AudioBuffers) FindNonFinite() (ch uint32, frame int, found bool) {
	for ch = 0; ch < b.channels; ch++ {
		for i, v := range b.Channel(ch) {
			if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
				return ch, i, true
			}
		}
	}
	return 0, 0, false
}

// Close frees the channel buffers and the port struct.
func (b *AudioBuffers) Close() {
	if b.c == nil {
		return
	}
	ptrs := unsafe.Slice(b.chanPtrs, b.channels)
	for ch := range ptrs {
		C.free(unsafe.Pointer(ptrs[ch]))
	}
	C.free(unsafe.Pointer(b.chanPtrs))
	C.free(unsafe.Pointer(b.c))
	b.c = nil
}

// ProcessData assembles a clap_process for one out-of-place process call.
type ProcessData struct {
	c   *C.clap_process_t
	in  *AudioBuffers
	out *AudioBuffers
}

// NewProcessData wires input/output buffers and event lists into a pinned
// clap_process struct. The buffers and queues stay owned by the caller.
func NewProcessData(in, out *AudioBuffers, inEvents *EventQueue, outEvents *OutEventQueue, frames uint32, steadyTime int64) *ProcessData {
	d := &ProcessData{in: in, out: out}
	d.c = (*C.clap_process_t)(C.calloc(1, C.sizeof_clap_process_t))
	d.c.steady_time = C.int64_t(steadyTime)
	d.c.frames_count = C.uint32_t(frames)
	d.c.audio_inputs = in.c
	d.c.audio_outputs = out.c
	d.c.audio_inputs_count = 1
	d.c.audio_outputs_count = 1
	d.c.in_events = inEvents.clapList()
	d.c.out_events = outEvents.clapList()
	return d
}

// SetSteadyTime updates the running sample clock between process calls.
func (d *ProcessData) SetSteadyTime(t int64) {
	d.c.steady_time = C.int64_t(t)
}

// Close frees the clap_process struct.
func (d *ProcessData) Close() {
	if d.c == nil {
		return
	}
	C.free(unsafe.Pointer(d.c))
	d.c = nil
}
