package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBeginRun_AssignsTimeOrderedIDs(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first, err := s.BeginRun(ctx, time.Now())
	require.NoError(t, err)
	second, err := s.BeginRun(ctx, time.Now())
	require.NoError(t, err)

	parsed, err := uuid.Parse(first)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
	assert.Less(t, first, second, "v7 ids sort by creation time")
}

func TestWriteResult_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	runID, err := s.BeginRun(ctx, time.Now())
	require.NoError(t, err)

	results := []Result{
		{RunID: runID, Seq: 0, Path: "/plugins/gain.clap", Test: "scan-time", Status: "success", Details: "scanned in 4ms"},
		{RunID: runID, Seq: 1, Path: "/plugins/gain.clap", PluginID: "com.example.gain", Test: "descriptor-consistency", Status: "success"},
		{RunID: runID, Seq: 2, Path: "/plugins/gain.clap", PluginID: "com.example.gain", Test: "state-invalid", Status: "failed", Details: "accepted an empty stream"},
	}
	for _, r := range results {
		require.NoError(t, s.WriteResult(ctx, r))
	}

	got, err := s.Results(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, results, got)
}

func TestWriteResult_DuplicateSeqRejected(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	runID, err := s.BeginRun(ctx, time.Now())
	require.NoError(t, err)

	r := Result{RunID: runID, Seq: 0, Path: "/p.clap", Test: "scan-time", Status: "success"}
	require.NoError(t, s.WriteResult(ctx, r))
	assert.Error(t, s.WriteResult(ctx, r), "emission order is a primary key")
}

func TestFinishRun_StoresTally(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	runID, err := s.BeginRun(ctx, time.Date(2026, 8, 5, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NoError(t, s.FinishRun(ctx, runID, 10, 2, 1, 3))

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	assert.Equal(t, runID, runs[0].ID)
	assert.Equal(t, 10, runs[0].Passed)
	assert.Equal(t, 2, runs[0].Failed)
	assert.Equal(t, 1, runs[0].Skipped)
	assert.Equal(t, 3, runs[0].Warnings)
	assert.Equal(t, 2026, runs[0].StartedAt.Year())
}

func TestOpenInDir_CreatesDatabaseFile(t *testing.T) {
	dir := t.TempDir()

	s, err := OpenInDir(dir)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.BeginRun(context.Background(), time.Now())
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, FileName))
}
