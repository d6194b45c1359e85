package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	mdio "github.com/matzehuels/mapdraw/pkg/io"
	"github.com/matzehuels/mapdraw/pkg/pipeline"
)

// drawFlags holds the flags of the draw command that are not pipeline
// options.
type drawFlags struct {
	config    string
	output    string
	format    string
	datasets  string
	noCache   bool
	showTable bool
}

// drawCommand creates the draw command.
func (c *CLI) drawCommand() *cobra.Command {
	var flags drawFlags
	opts := pipeline.DefaultOptions()

	cmd := &cobra.Command{
		Use:   "draw [graph.json|graph.csv]",
		Short: "Draw a district plan",
		Long: `Draw a district plan for a precinct adjacency graph.

The graph is read from a JSON or CSV file, or from the dataset directory with
--state. Without either, an interactive picker lists the available datasets.
Settings may come from a TOML file (--config); flags override it.

The plan is written as a unit,district table (CSV) or as JSON. Runs are
deterministic, so repeated draws with the same graph and settings are served
from the local cache.`,
		Example: `  mapdraw draw --state GA -n 14
  mapdraw draw precincts.csv -n 8 --deviation 5000 -o plan.json
  mapdraw draw --config georgia.toml --seed 7`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			merged, err := mergeOptions(cmd, flags.config, opts)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				merged.GraphPath = args[0]
				merged.Dataset = ""
			}
			merged.DatasetDir = flags.datasets
			if merged.GraphPath == "" && merged.Dataset == "" {
				ds, err := pickDataset(flags.datasets)
				if err != nil {
					return err
				}
				merged.Dataset = ds.Code
			}
			if err := pipeline.ValidateFormat(flags.format); err != nil {
				return err
			}
			return c.runDraw(cmd.Context(), merged, flags)
		},
	}

	cmd.Flags().StringVarP(&opts.Dataset, "state", "s", "", "dataset code to draw (e.g. GA)")
	cmd.Flags().IntVarP(&opts.NumDistricts, "districts", "n", 0, "number of districts")
	cmd.Flags().IntVarP(&opts.AllowedDeviation, "deviation", "d", pipeline.DefaultAllowedDeviation, "allowed population gap between largest and smallest district")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", pipeline.DefaultSeed, "random seed")
	cmd.Flags().StringVar(&opts.Strategy, "strategy", pipeline.DefaultStrategy, "growth strategy: frontier, walk")
	cmd.Flags().StringVar(&opts.SeedPolicy, "seed-policy", pipeline.DefaultSeedPolicy, "seed placement: dart, isolated")
	cmd.Flags().IntVar(&opts.MaxBalanceRounds, "max-rounds", pipeline.DefaultMaxBalanceRounds, "maximum population balancing rounds")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "reject graphs with one-way adjacency")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "redraw even when a cached plan exists")
	cmd.Flags().StringVar(&opts.Stats.PartyA, "party-a", "", "attribute holding party A votes (for margins)")
	cmd.Flags().StringVar(&opts.Stats.PartyB, "party-b", "", "attribute holding party B votes (for margins)")

	cmd.Flags().StringVar(&flags.config, "config", "", "TOML run configuration")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (default <input>.plan.<format>)")
	cmd.Flags().StringVarP(&flags.format, "format", "f", pipeline.FormatCSV, "output format when --output has no extension: csv, json")
	cmd.Flags().StringVar(&flags.datasets, "datasets", datasetDir(), "dataset directory")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&flags.showTable, "table", false, "print per-district statistics")
	_ = cmd.RegisterFlagCompletionFunc("state", completeDatasets)

	return cmd
}

// optionFlags maps pipeline options to the draw flags that set them.
var optionFlags = map[string]func(dst *pipeline.Options, src pipeline.Options){
	"state":       func(d *pipeline.Options, s pipeline.Options) { d.Dataset = s.Dataset },
	"districts":   func(d *pipeline.Options, s pipeline.Options) { d.NumDistricts = s.NumDistricts },
	"deviation":   func(d *pipeline.Options, s pipeline.Options) { d.AllowedDeviation = s.AllowedDeviation },
	"seed":        func(d *pipeline.Options, s pipeline.Options) { d.Seed = s.Seed },
	"strategy":    func(d *pipeline.Options, s pipeline.Options) { d.Strategy = s.Strategy },
	"seed-policy": func(d *pipeline.Options, s pipeline.Options) { d.SeedPolicy = s.SeedPolicy },
	"max-rounds":  func(d *pipeline.Options, s pipeline.Options) { d.MaxBalanceRounds = s.MaxBalanceRounds },
	"strict":      func(d *pipeline.Options, s pipeline.Options) { d.Strict = s.Strict },
	"refresh":     func(d *pipeline.Options, s pipeline.Options) { d.Refresh = s.Refresh },
	"party-a":     func(d *pipeline.Options, s pipeline.Options) { d.Stats.PartyA = s.Stats.PartyA },
	"party-b":     func(d *pipeline.Options, s pipeline.Options) { d.Stats.PartyB = s.Stats.PartyB },
}

// mergeOptions returns flag values layered over the config file. Without a
// config file every flag value applies, defaults included.
func mergeOptions(cmd *cobra.Command, configPath string, flagOpts pipeline.Options) (pipeline.Options, error) {
	if configPath == "" {
		return flagOpts, nil
	}
	opts, err := pipeline.LoadOptions(configPath)
	if err != nil {
		return pipeline.Options{}, err
	}
	for name, apply := range optionFlags {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			apply(&opts, flagOpts)
		}
	}
	if cmd.Flags().Changed("state") {
		opts.GraphPath = ""
	}
	return opts, nil
}

// runDraw executes the pipeline and writes the plan.
func (c *CLI) runDraw(ctx context.Context, opts pipeline.Options, flags drawFlags) error {
	logger := loggerFromContext(ctx)
	opts.Logger = logger

	runner, err := c.newRunner(flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	source := opts.GraphPath
	if source == "" {
		source = opts.Dataset
	}
	prog := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Drawing %d districts for %s...", opts.NumDistricts, source))
	spinner.Start()
	restore := trackPhases(spinner, opts.NumDistricts)
	result, err := runner.Execute(ctx, opts)
	restore()
	if err != nil {
		if spinner.Cancelled() {
			spinner.StopWithError("Draw cancelled")
		} else {
			spinner.StopWithError("Draw failed")
		}
		return err
	}
	spinner.StopWithSuccess(fmt.Sprintf("Drew %d districts", opts.NumDistricts))
	prog.done("drew plan",
		"districts", opts.NumDistricts,
		"reason", result.Diagnostics.Reason,
		"deviation", result.Diagnostics.Deviation)

	printInfo("%s", StyleTitle.Render(source))
	printGraphStats(result.Stats.UnitCount, result.Stats.EdgeCount, result.CacheInfo.PlanHit)
	printOutcome(result.Diagnostics, opts.AllowedDeviation)

	if flags.showTable {
		renderStatsTable(os.Stdout, result.Summary(opts.Stats), nil)
	}

	out := outputPath(flags.output, flags.format, source)
	if err := mdio.ExportAssignment(result.Partition, out); err != nil {
		return fmt.Errorf("write plan: %w", err)
	}
	printSuccess("Wrote plan")
	printFile(out)

	graphArg := opts.GraphPath
	if graphArg == "" {
		graphArg = "--state " + opts.Dataset
	}
	printNextStep("Inspect", fmt.Sprintf("%s stats %s %s", appName, out, graphArg))
	return nil
}

// outputPath returns output when set, adding an extension for format when
// it has none. Otherwise it derives <base>.plan.<format> from the source.
func outputPath(output, format, source string) string {
	if output != "" {
		if filepath.Ext(output) == "" {
			return output + "." + format
		}
		return output
	}
	base := filepath.Base(source)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return base + ".plan." + format
}
