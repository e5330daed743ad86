package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus_String_MatchesWireFormat(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusSuccess, "success"},
		{StatusFailed, "failed"},
		{StatusCrashed, "crashed"},
		{StatusSkipped, "skipped"},
		{StatusWarning, "warning"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.String())
		})
	}
}

func TestStatus_Fatal(t *testing.T) {
	assert.True(t, StatusFailed.Fatal())
	assert.True(t, StatusCrashed.Fatal())
	assert.False(t, StatusSuccess.Fatal())
	assert.False(t, StatusSkipped.Fatal())
	assert.False(t, StatusWarning.Fatal())
}

func TestTally_CountsEveryStatus(t *testing.T) {
	var tally Tally
	for _, s := range []Status{
		StatusSuccess, StatusSuccess,
		StatusFailed, StatusCrashed,
		StatusSkipped,
		StatusWarning, StatusWarning, StatusWarning,
	} {
		tally.Count(s)
	}

	assert.Equal(t, 2, tally.Passed)
	assert.Equal(t, 2, tally.Failed, "failed and crashed both count as failures")
	assert.Equal(t, 1, tally.Skipped)
	assert.Equal(t, 3, tally.Warnings)
}

func TestTally_ExitCode(t *testing.T) {
	tests := []struct {
		name  string
		tally Tally
		want  int
	}{
		{"clean run", Tally{Passed: 10}, 0},
		{"warnings do not fail the run", Tally{Passed: 3, Warnings: 2}, 0},
		{"skips do not fail the run", Tally{Skipped: 5}, 0},
		{"one failure fails the run", Tally{Passed: 9, Failed: 1}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.tally.ExitCode())
		})
	}
}
