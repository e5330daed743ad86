package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/calder-audio/clap-validator/internal/config"
	"github.com/calder-audio/clap-validator/internal/scanner"
	"github.com/calder-audio/clap-validator/internal/store"
	"github.com/calder-audio/clap-validator/internal/validator"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	PluginID     string
	TestFilter   string
	InvertFilter bool
	JSON         bool
	OnlyFailed   bool
	InProcess    bool
	Store        bool
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <path>...",
		Short: "Run the conformance tests against one or more plugin libraries",
		Long: `Run the conformance test battery against every given .clap library.

Library-level tests run once per path; plugin-level tests run once per
plugin the library exposes. The process exits 1 if any test failed or
crashed.

Examples:
  clap-validator validate /path/to/plugin.clap
  clap-validator validate plugin.clap --test 'state-.*' --json
  clap-validator validate plugin.clap --plugin-id com.example.gain`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.PluginID, "plugin-id", "", "only test the plugin with this ID")
	cmd.Flags().StringVar(&opts.TestFilter, "test", "", "only run tests matching this pattern (case-insensitive regex, substring fallback)")
	cmd.Flags().BoolVar(&opts.InvertFilter, "invert-filter", false, "invert the test filter")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "output a JSON report")
	cmd.Flags().BoolVar(&opts.OnlyFailed, "only-failed", false, "only show failed, crashed, and warning results in text output")
	cmd.Flags().BoolVar(&opts.InProcess, "in-process", false, "run the plugins in the validator process (the only supported mode)")
	cmd.Flags().BoolVar(&opts.Store, "store", false, "record the run in the history database under the validator temp dir")

	return cmd
}

// loadOptions merges the config file into the engine defaults.
func loadOptions(rootOpts *RootOptions) (validator.Options, *config.Config, error) {
	var cfg *config.Config
	var err error
	if rootOpts.ConfigPath != "" {
		cfg, err = config.Load(rootOpts.ConfigPath)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return validator.Options{}, nil, err
	}

	opts := validator.DefaultOptions()
	if cfg.ScanTimeLimit > 0 {
		opts.ScanTimeLimit = cfg.ScanTimeLimit.Std()
	}
	if cfg.FuzzPermutations > 0 {
		opts.FuzzPermutations = cfg.FuzzPermutations
	}
	if cfg.FuzzBuffers > 0 {
		opts.FuzzBuffers = cfg.FuzzBuffers
	}
	if cfg.Seed != 0 {
		opts.Seed = cfg.Seed
	}
	return opts, cfg, nil
}

func runValidate(opts *ValidateOptions, paths []string, cmd *cobra.Command) error {
	log := opts.Logger()

	engineOpts, _, err := loadOptions(opts.RootOptions)
	if err != nil {
		return NewExitError(ExitFailure, err.Error())
	}

	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	var printer *reportPrinter
	if !opts.JSON {
		printer = newReportPrinter(out, true, opts.OnlyFailed)
	}

	// The run history store is opt-in; the temp dir is created lazily here.
	var runStore *store.Store
	var runID string
	seq := 0
	if opts.Store {
		dir, err := scanner.EnsureTempDir()
		if err != nil {
			return NewExitError(ExitFailure, fmt.Sprintf("could not create the validator temp dir: %v", err))
		}
		runStore, err = store.OpenInDir(dir)
		if err != nil {
			return NewExitError(ExitFailure, fmt.Sprintf("could not open the run store: %v", err))
		}
		defer runStore.Close()
		runID, err = runStore.BeginRun(context.Background(), time.Now())
		if err != nil {
			return NewExitError(ExitFailure, fmt.Sprintf("could not record the run: %v", err))
		}
	}

	var records []validator.Record
	runner := &validator.Runner{
		Filter:   validator.NewFilter(opts.TestFilter, opts.InvertFilter),
		PluginID: opts.PluginID,
		Context:  validator.NewRunContext(engineOpts, nil, log),
		Emit: func(rec validator.Record) {
			if printer != nil {
				printer.Print(rec)
			} else {
				records = append(records, rec)
			}
			if runStore != nil {
				err := runStore.WriteResult(context.Background(), store.Result{
					RunID:    runID,
					Seq:      seq,
					Path:     rec.Path,
					PluginID: rec.PluginID,
					Test:     rec.Result.Name,
					Status:   rec.Result.Status.String(),
					Details:  rec.Result.Details,
				})
				if err != nil {
					log.Warn("could not record result", "err", err)
				}
				seq++
			}
		},
		OnLoadError: func(path string, err error) {
			fmt.Fprintf(errOut, "Error loading %s: %v\n", path, err)
		},
		OnNote: func(path, msg string) {
			fmt.Fprintf(errOut, "%s: %s\n", path, msg)
		},
	}

	tally := runner.Run(paths)

	if runStore != nil {
		if err := runStore.FinishRun(context.Background(), runID, tally.Passed, tally.Failed, tally.Skipped, tally.Warnings); err != nil {
			log.Warn("could not finish the recorded run", "err", err)
		}
	}

	if opts.JSON {
		if err := writeJSON(out, buildReport(records, tally)); err != nil {
			return NewExitError(ExitFailure, err.Error())
		}
	} else {
		printer.PrintSummary(tally)
	}

	if code := tally.ExitCode(); code != ExitSuccess {
		return NewExitError(code, fmt.Sprintf("%d test(s) failed", tally.Failed))
	}
	return nil
}
