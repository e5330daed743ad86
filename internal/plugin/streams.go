package plugin

/*
#include "bridge.h"
*/
import "C"

import (
	"bytes"
	"runtime/cgo"
	"unsafe"
)

// OStream is a host-owned clap_ostream that collects everything the plugin
// writes during state save.
type OStream struct {
	handle cgo.Handle
	c      *C.clap_ostream_t
	buf    bytes.Buffer
}

// NewOStream creates an empty write stream.
func NewOStream() *OStream {
	s := &OStream{}
	s.handle = cgo.NewHandle(s)
	s.c = C.clapval_ostream_new(C.uintptr_t(s.handle))
	return s
}

// Bytes returns the collected state blob.
func (s *OStream) Bytes() []byte { return s.buf.Bytes() }

// Close frees the C stream struct.
func (s *OStream) Close() {
	if s.c == nil {
		return
	}
	C.clapval_ostream_free(s.c)
	s.c = nil
	s.handle.Delete()
}

// IStream is a host-owned clap_istream serving a fixed blob to the plugin
// during state load.
//
// MaxChunk, when positive, caps how many bytes a single read returns. The
// buffered-stream conformance test sets a small prime chunk size to force
// plugins to cope with short reads.
type IStream struct {
	handle   cgo.Handle
	c        *C.clap_istream_t
	data     []byte
	pos      int
	MaxChunk int
}

// NewIStream creates a read stream over data. A nil or empty blob yields an
// immediate end-of-stream.
func NewIStream(data []byte) *IStream {
	s := &IStream{data: data}
	s.handle = cgo.NewHandle(s)
	s.c = C.clapval_istream_new(C.uintptr_t(s.handle))
	return s
}

// nextChunk computes how many bytes the next read of want bytes returns.
// Pure so the short-read clamping is testable without cgo.
func (s *IStream) nextChunk(want int) int {
	n := len(s.data) - s.pos
	if n > want {
		n = want
	}
	if s.MaxChunk > 0 && n > s.MaxChunk {
		n = s.MaxChunk
	}
	if n < 0 {
		n = 0
	}
	return n
}

// Close frees the C stream struct.
func (s *IStream) Close() {
	if s.c == nil {
		return
	}
	C.clapval_istream_free(s.c)
	s.c = nil
	s.handle.Delete()
}

//export clapvalIStreamRead
func clapvalIStreamRead(handle C.uintptr_t, buffer unsafe.Pointer, size C.uint64_t) C.int64_t {
	s := cgo.Handle(handle).Value().(*IStream)
	n := s.nextChunk(int(size))
	if n == 0 {
		return 0
	}
	copy(unsafe.Slice((*byte)(buffer), n), s.data[s.pos:s.pos+n])
	s.pos += n
	return C.int64_t(n)
}

//export clapvalOStreamWrite
func clapvalOStreamWrite(handle C.uintptr_t, buffer unsafe.Pointer, size C.uint64_t) C.int64_t {
	s := cgo.Handle(handle).Value().(*OStream)
	if size == 0 {
		return 0
	}
	s.buf.Write(unsafe.Slice((*byte)(buffer), int(size)))
	return C.int64_t(size)
}
