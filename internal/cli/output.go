package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/calder-audio/clap-validator/internal/validator"
)

// Exit codes. Test failures, crashes, load errors, and argument errors all
// exit 1.
const (
	ExitSuccess = 0
	ExitFailure = 1
)

// ExitError carries a process exit code out of a cobra RunE.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error { return e.Err }

// NewExitError creates an ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// GetExitCode extracts the exit code from an error. Any non-ExitError
// counts as a failure.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// statusStyles are the lipgloss badge styles for text output.
type statusStyles struct {
	pass  lipgloss.Style
	fail  lipgloss.Style
	warn  lipgloss.Style
	skip  lipgloss.Style
	plain bool
}

func newStatusStyles(color bool) statusStyles {
	if !color {
		return statusStyles{plain: true}
	}
	return statusStyles{
		pass: lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		fail: lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		warn: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		skip: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

func (s statusStyles) badge(status validator.Status) string {
	var label string
	var style lipgloss.Style
	switch status {
	case validator.StatusSuccess:
		label, style = "PASS", s.pass
	case validator.StatusFailed:
		label, style = "FAIL", s.fail
	case validator.StatusCrashed:
		label, style = "CRASH", s.fail
	case validator.StatusWarning:
		label, style = "WARN", s.warn
	case validator.StatusSkipped:
		label, style = "SKIP", s.skip
	default:
		label = "?"
	}
	if s.plain {
		return label
	}
	return style.Render(label)
}

// reportPrinter renders validation records as they are emitted, grouping
// them under path and plugin headers the way the results arrive.
type reportPrinter struct {
	w          io.Writer
	styles     statusStyles
	onlyFailed bool

	lastPath    string
	lastPlugin  string
	printedLibs bool
}

func newReportPrinter(w io.Writer, color, onlyFailed bool) *reportPrinter {
	return &reportPrinter{w: w, styles: newStatusStyles(color), onlyFailed: onlyFailed}
}

// Print renders one record, emitting section headers on path or plugin
// transitions.
func (p *reportPrinter) Print(rec validator.Record) {
	if rec.Path != p.lastPath {
		fmt.Fprintf(p.w, "\nValidating: %s\n", rec.Path)
		p.lastPath = rec.Path
		p.lastPlugin = ""
		p.printedLibs = false
	}
	if rec.PluginID == "" {
		if !p.printedLibs {
			fmt.Fprintf(p.w, "  Library tests:\n")
			p.printedLibs = true
		}
	} else if rec.PluginID != p.lastPlugin {
		fmt.Fprintf(p.w, "  Plugin: %s\n", rec.PluginID)
		p.lastPlugin = rec.PluginID
	}

	if p.onlyFailed && !rec.Result.Status.Fatal() && rec.Result.Status != validator.StatusWarning {
		return
	}

	fmt.Fprintf(p.w, "    [%s] %s\n", p.styles.badge(rec.Result.Status), rec.Result.Name)
	if rec.Result.Details != "" {
		fmt.Fprintf(p.w, "           %s\n", rec.Result.Details)
	}
}

// PrintSummary renders the final tally.
func (p *reportPrinter) PrintSummary(tally validator.Tally) {
	fmt.Fprintf(p.w, "\nSummary:\n")
	fmt.Fprintf(p.w, "  Passed:   %d\n", tally.Passed)
	fmt.Fprintf(p.w, "  Failed:   %d\n", tally.Failed)
	fmt.Fprintf(p.w, "  Skipped:  %d\n", tally.Skipped)
	fmt.Fprintf(p.w, "  Warnings: %d\n", tally.Warnings)
}

// reportResult is the JSON wire form of one test result.
type reportResult struct {
	Path     string `json:"path"`
	PluginID string `json:"plugin_id,omitempty"`
	Test     string `json:"test"`
	Status   string `json:"status"`
	Details  string `json:"details,omitempty"`
}

// reportSummary is the JSON wire form of the tally.
type reportSummary struct {
	Passed   int `json:"passed"`
	Failed   int `json:"failed"`
	Skipped  int `json:"skipped"`
	Warnings int `json:"warnings"`
}

// report is the machine-readable output of a validate run.
type report struct {
	Results []reportResult `json:"results"`
	Summary reportSummary  `json:"summary"`
}

func buildReport(records []validator.Record, tally validator.Tally) report {
	rep := report{Results: make([]reportResult, 0, len(records))}
	for _, rec := range records {
		rep.Results = append(rep.Results, reportResult{
			Path:     rec.Path,
			PluginID: rec.PluginID,
			Test:     rec.Result.Name,
			Status:   rec.Result.Status.String(),
			Details:  rec.Result.Details,
		})
	}
	rep.Summary = reportSummary{
		Passed:   tally.Passed,
		Failed:   tally.Failed,
		Skipped:  tally.Skipped,
		Warnings: tally.Warnings,
	}
	return rep
}

// writeJSON encodes v with two-space indentation.
func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
