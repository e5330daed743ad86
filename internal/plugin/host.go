package plugin

/*
#include "bridge.h"
*/
import "C"

import (
	"runtime"
	"runtime/cgo"
	"sync"
	"sync/atomic"
)

// Host implements the host side of the CLAP ABI for validation.
//
// The clap_host struct and its extension tables are allocated in C so their
// addresses stay pinned after they have been handed to a plugin. host_data
// carries a cgo.Handle back to this object.
//
// The thread that constructs the Host is the main thread; thread checks
// compare against that identity rather than a role. The audio thread is a
// scoped registration (see MarkAudioThread) that exists only across process
// calls. Callbacks arriving on the wrong thread record a host-side error;
// only the first error is kept.
type Host struct {
	block  *C.clapval_host_block_t
	handle cgo.Handle

	mainThread uint64
	// Set while an AudioThreadMark is alive. Native thread ids have no null
	// value, so the mark stores a pointer and clears it to nil.
	audioThread atomic.Pointer[uint64]

	requestedRestart  atomic.Bool
	requestedCallback atomic.Bool

	errMu         sync.Mutex
	callbackError string

	// The plugin currently receiving on_main_thread callbacks. Main thread
	// only.
	current *Plugin
}

// NewHost creates a validator host owned by the calling thread. The caller
// should be locked to its OS thread for the host's lifetime so the main
// thread identity stays meaningful.
func NewHost() *Host {
	h := &Host{mainThread: currentThreadID()}
	h.handle = cgo.NewHandle(h)
	h.block = C.clapval_host_new(C.uintptr_t(h.handle))
	return h
}

// Close releases the pinned C host block. Must not be called while any
// plugin created against this host is still alive.
func (h *Host) Close() {
	if h.block == nil {
		return
	}
	C.clapval_host_free(h.block)
	h.block = nil
	h.handle.Delete()
}

// clapHost returns the pinned clap_host struct to hand to factories.
func (h *Host) clapHost() *C.clap_host_t {
	return &h.block.host
}

// IsMainThread reports whether the current OS thread is the thread that
// constructed the host and is not currently marked as the audio thread.
func (h *Host) IsMainThread() bool {
	return currentThreadID() == h.mainThread && !h.IsAudioThread()
}

// IsAudioThread reports whether an audio-thread mark is alive and owned by
// the current OS thread.
func (h *Host) IsAudioThread() bool {
	id := h.audioThread.Load()
	return id != nil && *id == currentThreadID()
}

// MarkAudioThread declares the current thread to be the plugin's audio
// thread until the returned mark is released. Marks must not nest from
// different threads.
func (h *Host) MarkAudioThread() *AudioThreadMark {
	id := currentThreadID()
	h.audioThread.Store(&id)
	return &AudioThreadMark{host: h}
}

// AudioThreadMark is a scoped audio-thread registration. While alive, the
// host's is_audio_thread query answers true for the marking thread and
// is_main_thread answers false from plugin callbacks issued inside process.
type AudioThreadMark struct {
	host *Host
	once sync.Once
}

// Release clears the registration. Safe to call more than once.
func (m *AudioThreadMark) Release() {
	m.once.Do(func() { m.host.audioThread.Store(nil) })
}

// TakeCallbackError returns the first thread-violation error recorded by a
// plugin callback and clears it. Tests call this after exercising a plugin;
// a recorded error converts an otherwise-passing test into a failure.
func (h *Host) TakeCallbackError() (string, bool) {
	h.errMu.Lock()
	defer h.errMu.Unlock()
	msg := h.callbackError
	h.callbackError = ""
	return msg, msg != ""
}

// setCallbackError stores msg unless an earlier error is already held.
func (h *Host) setCallbackError(msg string) {
	h.errMu.Lock()
	defer h.errMu.Unlock()
	if h.callbackError == "" {
		h.callbackError = msg
	}
}

// RestartRequested reports and clears the request_restart flag.
func (h *Host) RestartRequested() bool {
	return h.requestedRestart.Swap(false)
}

// CallbackRequested reports and clears the request_callback flag.
func (h *Host) CallbackRequested() bool {
	return h.requestedCallback.Swap(false)
}

// setCurrent registers p as the plugin receiving main-thread callbacks.
func (h *Host) setCurrent(p *Plugin) { h.current = p }

// HandleCallbacksOnce delivers a pending request_callback to the current
// plugin's on_main_thread, at most once per request. Main thread only.
func (h *Host) HandleCallbacksOnce() {
	if h.current != nil && h.requestedCallback.Swap(false) {
		h.current.onMainThread()
	}
}

// currentThreadID returns the native identity of the calling OS thread.
func currentThreadID() uint64 {
	return uint64(C.clapval_current_thread_id())
}

// LockMainThread pins the calling goroutine to its OS thread and returns an
// unlock func. The validator locks the test goroutine before constructing a
// host so the main-thread identity cannot migrate mid-test.
func LockMainThread() (unlock func()) {
	runtime.LockOSThread()
	return runtime.UnlockOSThread
}

//export clapvalHostGetExtension
func clapvalHostGetExtension(handle C.uintptr_t, id *C.char) C.int {
	if id == nil {
		return C.CLAPVAL_HOST_EXT_NONE
	}
	switch C.GoString(id) {
	case ExtThreadCheck:
		return C.CLAPVAL_HOST_EXT_THREAD_CHECK
	case ExtParams:
		return C.CLAPVAL_HOST_EXT_PARAMS
	case ExtState:
		return C.CLAPVAL_HOST_EXT_STATE
	default:
		return C.CLAPVAL_HOST_EXT_NONE
	}
}

//export clapvalHostRequestRestart
func clapvalHostRequestRestart(handle C.uintptr_t) {
	h := cgo.Handle(handle).Value().(*Host)
	h.requestedRestart.Store(true)
}

//export clapvalHostRequestProcess
func clapvalHostRequestProcess(handle C.uintptr_t) {
	// The validator never starts continuous audio; accepted silently.
	_ = handle
}

//export clapvalHostRequestCallback
func clapvalHostRequestCallback(handle C.uintptr_t) {
	h := cgo.Handle(handle).Value().(*Host)
	h.requestedCallback.Store(true)
}

//export clapvalHostIsMainThread
func clapvalHostIsMainThread(handle C.uintptr_t) C.bool {
	h := cgo.Handle(handle).Value().(*Host)
	return C.bool(h.IsMainThread())
}

//export clapvalHostIsAudioThread
func clapvalHostIsAudioThread(handle C.uintptr_t) C.bool {
	h := cgo.Handle(handle).Value().(*Host)
	return C.bool(h.IsAudioThread())
}

//export clapvalHostParamsRescan
func clapvalHostParamsRescan(handle C.uintptr_t, flags C.uint32_t) {
	h := cgo.Handle(handle).Value().(*Host)
	_ = flags
	if !h.IsMainThread() {
		h.setCallbackError("clap_host_params::rescan() must be called from the main thread")
	}
}

//export clapvalHostParamsClear
func clapvalHostParamsClear(handle C.uintptr_t, paramID C.clap_id, flags C.uint32_t) {
	h := cgo.Handle(handle).Value().(*Host)
	_, _ = paramID, flags
	if !h.IsMainThread() {
		h.setCallbackError("clap_host_params::clear() must be called from the main thread")
	}
}

//export clapvalHostParamsRequestFlush
func clapvalHostParamsRequestFlush(handle C.uintptr_t) {
	h := cgo.Handle(handle).Value().(*Host)
	if h.IsAudioThread() {
		h.setCallbackError("clap_host_params::request_flush() must not be called from the audio thread")
	}
}

//export clapvalHostStateMarkDirty
func clapvalHostStateMarkDirty(handle C.uintptr_t) {
	h := cgo.Handle(handle).Value().(*Host)
	if !h.IsMainThread() {
		h.setCallbackError("clap_host_state::mark_dirty() must be called from the main thread")
	}
}
