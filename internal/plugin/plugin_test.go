package plugin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestVersion_IsCompatible(t *testing.T) {
	tests := []struct {
		version Version
		want    bool
	}{
		{Version{1, 0, 0}, true},
		{Version{1, 2, 2}, true},
		{Version{2, 0, 0}, true},
		{Version{0, 26, 0}, false},
		{Version{0, 0, 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.version.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.version.IsCompatible())
		})
	}
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "inactive", StateInactive.String())
	assert.Equal(t, "active-sleeping", StateActiveSleeping.String())
	assert.Equal(t, "active-processing", StateActiveProcessing.String())
}

func TestTransitionTable_NoSkippedStates(t *testing.T) {
	// Activation requires init and an inactive plugin.
	assert.True(t, canActivate(StateInactive, true))
	assert.False(t, canActivate(StateInactive, false))
	assert.False(t, canActivate(StateActiveSleeping, true))
	assert.False(t, canActivate(StateActiveProcessing, true))

	// Processing can only start from the sleeping state.
	assert.True(t, canStartProcessing(StateActiveSleeping))
	assert.False(t, canStartProcessing(StateInactive))
	assert.False(t, canStartProcessing(StateActiveProcessing))
}

func TestLibraryMetadata_PluginLookup(t *testing.T) {
	meta := &LibraryMetadata{
		Plugins: []Metadata{
			{ID: "com.example.gain", Name: "Gain"},
			{ID: "com.example.synth", Name: "Synth"},
		},
	}

	assert.Equal(t, "Synth", meta.Plugin("com.example.synth").Name)
	assert.Nil(t, meta.Plugin("com.example.missing"))
}

func TestIStream_NextChunkClampsReads(t *testing.T) {
	s := &IStream{data: make([]byte, 20)}

	// Unbounded stream serves whatever is asked, up to the remainder.
	assert.Equal(t, 16, s.nextChunk(16))
	s.pos = 18
	assert.Equal(t, 2, s.nextChunk(16))
	s.pos = 20
	assert.Equal(t, 0, s.nextChunk(16))

	// A chunk cap forces short reads.
	buffered := &IStream{data: make([]byte, 20), MaxChunk: 7}
	assert.Equal(t, 7, buffered.nextChunk(512))
	buffered.pos = 17
	assert.Equal(t, 3, buffered.nextChunk(512))
}

// TestIStream_ChunkedReadsDrainExactly checks that repeatedly reading with
// any chunk cap consumes the stream fully and never over-serves.
func TestIStream_ChunkedReadsDrainExactly(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		size := rapid.IntRange(0, 256).Draw(t, "size")
		maxChunk := rapid.IntRange(1, 16).Draw(t, "maxChunk")
		want := rapid.IntRange(1, 64).Draw(t, "want")

		s := &IStream{data: make([]byte, size), MaxChunk: maxChunk}

		total := 0
		for {
			n := s.nextChunk(want)
			if n == 0 {
				break
			}
			assert.LessOrEqual(t, n, maxChunk)
			assert.LessOrEqual(t, n, want)
			s.pos += n
			total += n
		}
		assert.Equal(t, size, total)
	})
}

func TestClen(t *testing.T) {
	assert.Equal(t, 3, clen([]byte{'a', 'b', 'c', 0, 'x'}))
	assert.Equal(t, 0, clen([]byte{0}))
	assert.Equal(t, 2, clen([]byte{'h', 'i'}), "unterminated buffers use the full length")
}
