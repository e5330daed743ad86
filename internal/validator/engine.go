package validator

import (
	"io"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/calder-audio/clap-validator/internal/plugin"
)

// Defaults for the knobs a config file or flags can override.
const (
	DefaultScanTimeLimit    = 100 * time.Millisecond
	DefaultFuzzPermutations = 50
	DefaultFuzzBuffers      = 5
	DefaultSeed             = 0x1A2B3C4D
)

// Fixed processing format for the audio tests.
const (
	testSampleRate = 44100.0
	testBlockSize  = 512
)

// Clock abstracts wall time so the scan-time measurement is testable.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Options are the tunable knobs of a validation run.
type Options struct {
	// ScanTimeLimit is the threshold above which scan-time warns.
	ScanTimeLimit time.Duration
	// FuzzPermutations is the number of random parameter permutations the
	// fuzz test drives.
	FuzzPermutations int
	// FuzzBuffers is the number of random audio buffers processed per
	// permutation.
	FuzzBuffers int
	// Seed makes the randomized tests reproducible.
	Seed uint64
}

// DefaultOptions returns the options a bare run uses.
func DefaultOptions() Options {
	return Options{
		ScanTimeLimit:    DefaultScanTimeLimit,
		FuzzPermutations: DefaultFuzzPermutations,
		FuzzBuffers:      DefaultFuzzBuffers,
		Seed:             DefaultSeed,
	}
}

// RunContext carries the per-run dependencies into test cases.
type RunContext struct {
	Opts  Options
	Clock Clock
	Log   *slog.Logger
	rng   *rand.Rand
}

// NewRunContext builds a context with a deterministic RNG derived from the
// seed in opts.
func NewRunContext(opts Options, clock Clock, log *slog.Logger) *RunContext {
	if clock == nil {
		clock = SystemClock{}
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &RunContext{
		Opts:  opts,
		Clock: clock,
		Log:   log,
		rng:   rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9E3779B97F4A7C15)),
	}
}

// Rand returns the run's deterministic RNG.
func (rc *RunContext) Rand() *rand.Rand { return rc.rng }

// Runner dispatches the registered tests over a set of library paths.
type Runner struct {
	Filter   *Filter
	PluginID string
	Context  *RunContext

	// Emit receives every test record before any later test runs.
	Emit func(Record)
	// OnLoadError is called once per path that cannot be loaded; the path
	// is skipped for plugin-level tests and the tally counts a failure.
	OnLoadError func(path string, err error)
	// OnNote receives diagnostic notes (for example the incompatible-ABI
	// skip) that are not test results.
	OnNote func(path, msg string)
}

// Run executes library tests and plugin tests for every path, in issue
// order, and returns the aggregate tally.
//
// The calling goroutine is locked to its OS thread for the duration so the
// host's main-thread identity holds across every test.
func (r *Runner) Run(paths []string) Tally {
	unlock := plugin.LockMainThread()
	defer unlock()

	var tally Tally
	for _, path := range paths {
		r.runLibraryTests(path, &tally)
		r.runPluginTests(path, &tally)
	}
	return tally
}

func (r *Runner) emit(rec Record, tally *Tally) {
	tally.Count(rec.Result.Status)
	if r.Emit != nil {
		r.Emit(rec)
	}
}

func (r *Runner) runLibraryTests(path string, tally *Tally) {
	for _, tc := range LibraryTests() {
		if !r.Filter.Matches(tc.Name) {
			continue
		}
		result := RunLibraryTest(r.Context, tc.Name, path)
		r.emit(Record{Path: path, Result: result}, tally)
	}
}

func (r *Runner) runPluginTests(path string, tally *Tally) {
	lib, err := plugin.Load(path)
	if err != nil {
		tally.Failed++
		if r.OnLoadError != nil {
			r.OnLoadError(path, err)
		}
		return
	}
	defer lib.Close()

	meta, err := lib.Metadata()
	if err != nil {
		tally.Failed++
		if r.OnLoadError != nil {
			r.OnLoadError(path, err)
		}
		return
	}

	if !meta.Version.IsCompatible() {
		if r.OnNote != nil {
			r.OnNote(path, "skipping plugin tests: incompatible CLAP version "+meta.Version.String())
		}
		return
	}

	for _, pm := range meta.Plugins {
		if r.PluginID != "" && pm.ID != r.PluginID {
			continue
		}
		for _, tc := range PluginTests() {
			if !r.Filter.Matches(tc.Name) {
				continue
			}
			result := RunPluginTest(r.Context, tc.Name, lib, pm.ID)
			r.emit(Record{Path: path, PluginID: pm.ID, Result: result}, tally)
		}
	}
}
