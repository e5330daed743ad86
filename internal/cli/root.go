// Package cli wires the validator's cobra command tree.
package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	ConfigPath string
	Verbose    bool
}

// Logger builds the diagnostic logger. With --verbose diagnostics go to
// stderr, otherwise they are discarded; they never reach stdout, so
// machine-readable output stays clean.
func (o *RootOptions) Logger() *slog.Logger {
	if !o.Verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

// NewRootCommand creates the root command for the CLAP validator CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "clap-validator",
		Short: "Validate CLAP audio plugins",
		Long: `clap-validator loads CLAP plugin libraries, instantiates their plugins
against a validating host, and runs a battery of conformance tests covering
descriptors, features, audio and note processing, parameters, and state
serialization.`,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to a clap-validator.yaml config file")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose diagnostics on stderr")

	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewListCommand(opts))

	return cmd
}
