// Package cli implements the mapdraw command-line interface.
//
// # Commands
//
//   - draw: partition a unit graph into districts and write the plan
//   - stats: per-district statistics of a saved plan
//   - verify: coverage, orphan, contiguity and deviation checks of a plan
//   - datasets: list the graphs registered in the dataset directory
//   - serve: run the HTTP API
//   - cache: manage the local plan cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger is
// attached to the command context and handed to the pipeline, so the
// districting phases report progress through it.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mapdraw/pkg/buildinfo"
	"github.com/matzehuels/mapdraw/pkg/cache"
	"github.com/matzehuels/mapdraw/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "mapdraw"

	// envDatasets overrides the dataset directory.
	envDatasets = "MAPDRAW_DATASETS"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger  *log.Logger
	verbose bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "mapdraw partitions precinct graphs into balanced districts",
		Long: `mapdraw draws district plans: it grows contiguous regions from random
seeds over a precinct adjacency graph, closes the gaps between them, and swaps
boundary precincts until every district is within the allowed population
deviation.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c.SetLogLevel(levelFor(c.verbose))
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.drawCommand())
	root.AddCommand(c.statsCommand())
	root.AddCommand(c.verifyCommand())
	root.AddCommand(c.datasetsCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	cache, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, nil, c.Logger), nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/mapdraw/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// dataHome returns $XDG_DATA_HOME/mapdraw (~/.local/share/mapdraw).
func dataHome() string {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", appName)
}

// datasetDir returns the dataset directory: $MAPDRAW_DATASETS, or the
// datasets folder under the data home.
func datasetDir() string {
	if dir := os.Getenv(envDatasets); dir != "" {
		return dir
	}
	return filepath.Join(dataHome(), "datasets")
}

// plansDir returns where serve keeps plans without MongoDB.
func plansDir() string {
	return filepath.Join(dataHome(), "plans")
}
