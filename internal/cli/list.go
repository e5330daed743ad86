package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/calder-audio/clap-validator/internal/config"
	"github.com/calder-audio/clap-validator/internal/plugin"
	"github.com/calder-audio/clap-validator/internal/scanner"
	"github.com/calder-audio/clap-validator/internal/validator"
)

// NewListCommand creates the list command and its subcommands.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List installed plugins, test cases, or presets",
	}

	cmd.AddCommand(newListPluginsCommand(rootOpts))
	cmd.AddCommand(newListTestsCommand(rootOpts))
	cmd.AddCommand(newListPresetsCommand(rootOpts))

	return cmd
}

// pluginListing is the JSON wire form of one installed plugin.
type pluginListing struct {
	Path    string `json:"path"`
	ID      string `json:"id"`
	Name    string `json:"name"`
	Version string `json:"version"`
	Vendor  string `json:"vendor"`
}

func newListPluginsCommand(rootOpts *RootOptions) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "plugins",
		Short: "List all installed CLAP plugins",
		Long: `Walk the platform plugin directories recursively and list every plugin
found in libraries whose name ends in .clap. Libraries that fail to load
are reported on stderr and skipped.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runListPlugins(rootOpts, jsonOut, cmd)
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")
	return cmd
}

func runListPlugins(rootOpts *RootOptions, jsonOut bool, cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()
	log := rootOpts.Logger()

	searchPaths := scanner.SearchPaths()
	if rootOpts.ConfigPath != "" {
		if cfg, err := config.Load(rootOpts.ConfigPath); err == nil && len(cfg.SearchPaths) > 0 {
			searchPaths = cfg.SearchPaths
		}
	} else if cfg, err := config.LoadDefault(); err == nil && len(cfg.SearchPaths) > 0 {
		searchPaths = cfg.SearchPaths
	}
	log.Info("scanning for plugins", "dirs", searchPaths)

	unlock := plugin.LockMainThread()
	defer unlock()

	var listings []pluginListing
	for _, path := range scanner.Discover(searchPaths) {
		lib, err := plugin.Load(path)
		if err != nil {
			fmt.Fprintf(errOut, "Warning: could not load %s: %v\n", path, err)
			continue
		}
		meta, err := lib.Metadata()
		if err != nil {
			fmt.Fprintf(errOut, "Warning: could not scan %s: %v\n", path, err)
			lib.Close()
			continue
		}
		for _, pm := range meta.Plugins {
			listings = append(listings, pluginListing{
				Path:    path,
				ID:      pm.ID,
				Name:    pm.Name,
				Version: pm.Version,
				Vendor:  pm.Vendor,
			})
		}
		lib.Close()
	}

	// Locale-stable ordering by display name, then id.
	coll := collate.New(language.Und)
	sort.SliceStable(listings, func(i, j int) bool {
		if c := coll.CompareString(listings[i].Name, listings[j].Name); c != 0 {
			return c < 0
		}
		return listings[i].ID < listings[j].ID
	})

	if jsonOut {
		return writeJSON(out, map[string]any{"plugins": listings})
	}

	fmt.Fprintf(out, "Installed CLAP plugins:\n\n")
	if len(listings) == 0 {
		fmt.Fprintf(out, "  No plugins found.\n")
		return nil
	}
	for _, l := range listings {
		fmt.Fprintf(out, "  %s", l.Name)
		if l.Version != "" {
			fmt.Fprintf(out, " v%s", l.Version)
		}
		if l.Vendor != "" {
			fmt.Fprintf(out, " by %s", l.Vendor)
		}
		fmt.Fprintf(out, "\n    ID: %s\n    Path: %s\n\n", l.ID, l.Path)
	}
	return nil
}

// testListing is the JSON wire form of the test registries.
type testListing struct {
	LibraryTests map[string]string `json:"plugin-library-tests"`
	PluginTests  map[string]string `json:"plugin-tests"`
}

func newListTestsCommand(rootOpts *RootOptions) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:           "tests",
		Short:         "List all available test cases",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runListTests(jsonOut, cmd)
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")
	return cmd
}

func runListTests(jsonOut bool, cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	if jsonOut {
		listing := testListing{
			LibraryTests: make(map[string]string),
			PluginTests:  make(map[string]string),
		}
		for _, tc := range validator.LibraryTests() {
			listing.LibraryTests[tc.Name] = tc.Description
		}
		for _, tc := range validator.PluginTests() {
			listing.PluginTests[tc.Name] = tc.Description
		}
		return writeJSON(out, listing)
	}

	fmt.Fprintf(out, "Plugin library tests:\n")
	for _, tc := range validator.LibraryTests() {
		fmt.Fprintf(out, "  %s\n    %s\n\n", tc.Name, tc.Description)
	}
	fmt.Fprintf(out, "Plugin tests:\n")
	for _, tc := range validator.PluginTests() {
		fmt.Fprintf(out, "  %s\n    %s\n\n", tc.Name, tc.Description)
	}
	return nil
}

func newListPresetsCommand(rootOpts *RootOptions) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:           "presets",
		Short:         "List plugin presets (not implemented yet)",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if jsonOut {
				return writeJSON(out, map[string]any{
					"presets": []any{},
					"note":    "preset discovery is not implemented yet",
				})
			}
			fmt.Fprintf(out, "Preset discovery is not implemented yet.\n")
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")
	return cmd
}
