package cli

import (
	"bytes"
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calder-audio/clap-validator/internal/validator"
)

// sampleRecords is a fixed record stream covering both test levels and
// every interesting status.
func sampleRecords() []validator.Record {
	return []validator.Record{
		{
			Path: "/plugins/gain.clap",
			Result: validator.TestResult{
				Name:    "scan-time",
				Status:  validator.StatusSuccess,
				Details: "scanned in 4ms",
			},
		},
		{
			Path: "/plugins/gain.clap",
			Result: validator.TestResult{
				Name:    "scan-rtld-now",
				Status:  validator.StatusSkipped,
				Details: "the platform loader has no strict binding mode",
			},
		},
		{
			Path:     "/plugins/gain.clap",
			PluginID: "com.example.gain",
			Result: validator.TestResult{
				Name:   "descriptor-consistency",
				Status: validator.StatusSuccess,
			},
		},
		{
			Path:     "/plugins/gain.clap",
			PluginID: "com.example.gain",
			Result: validator.TestResult{
				Name:    "param-set-wrong-namespace",
				Status:  validator.StatusFailed,
				Details: "parameter \"gain\" (0) changed from 0.500000 to 0.900000 after an event in namespace 0xB33F",
			},
		},
		{
			Path: "/plugins/synth.clap",
			Result: validator.TestResult{
				Name:    "scan-time",
				Status:  validator.StatusWarning,
				Details: "scanning took 250ms (limit: 100ms)",
			},
		},
	}
}

func sampleTally() validator.Tally {
	var tally validator.Tally
	for _, rec := range sampleRecords() {
		tally.Count(rec.Result.Status)
	}
	return tally
}

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestReportPrinter_TextRendering(t *testing.T) {
	var buf bytes.Buffer
	printer := newReportPrinter(&buf, false, false)
	for _, rec := range sampleRecords() {
		printer.Print(rec)
	}
	printer.PrintSummary(sampleTally())

	newGoldie(t).Assert(t, "validate_text", buf.Bytes())
}

func TestReportPrinter_OnlyFailed(t *testing.T) {
	var buf bytes.Buffer
	printer := newReportPrinter(&buf, false, true)
	for _, rec := range sampleRecords() {
		printer.Print(rec)
	}
	printer.PrintSummary(sampleTally())

	newGoldie(t).Assert(t, "validate_text_only_failed", buf.Bytes())
}

func TestReport_JSONRendering(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, buildReport(sampleRecords(), sampleTally())))

	newGoldie(t).Assert(t, "validate_json", buf.Bytes())
}

// reportSchema is the validate report contract in CUE.
const reportSchema = `
#Result: {
	path:       string
	plugin_id?: string & !=""
	test:       string & !=""
	status:     "success" | "failed" | "crashed" | "skipped" | "warning"
	details?:   string & !=""
}

#Report: {
	results: [...#Result]
	summary: {
		passed:   int & >=0
		failed:   int & >=0
		skipped:  int & >=0
		warnings: int & >=0
	}
}
`

func TestReport_JSONMatchesSchema(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, buildReport(sampleRecords(), sampleTally())))

	ctx := cuecontext.New()
	schema := ctx.CompileString(reportSchema).LookupPath(cue.ParsePath("#Report"))
	require.NoError(t, schema.Err())

	data := ctx.CompileBytes(buf.Bytes())
	require.NoError(t, data.Err())

	unified := schema.Unify(data)
	assert.NoError(t, unified.Validate(cue.Concrete(true)))
}

func TestReport_PluginIDOmittedForLibraryTests(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, buildReport(sampleRecords()[:1], validator.Tally{Passed: 1})))

	assert.NotContains(t, buf.String(), "plugin_id")
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(NewExitError(ExitFailure, "tests failed")))
	assert.Equal(t, ExitFailure, GetExitCode(assert.AnError), "plain errors are failures")
}

func TestStatusStyles_PlainBadges(t *testing.T) {
	styles := newStatusStyles(false)

	assert.Equal(t, "PASS", styles.badge(validator.StatusSuccess))
	assert.Equal(t, "FAIL", styles.badge(validator.StatusFailed))
	assert.Equal(t, "CRASH", styles.badge(validator.StatusCrashed))
	assert.Equal(t, "WARN", styles.badge(validator.StatusWarning))
	assert.Equal(t, "SKIP", styles.badge(validator.StatusSkipped))
}
