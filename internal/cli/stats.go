package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mapdraw/pkg/errors"
	mdio "github.com/matzehuels/mapdraw/pkg/io"
	"github.com/matzehuels/mapdraw/pkg/partition"
	"github.com/matzehuels/mapdraw/pkg/pipeline"
	"github.com/matzehuels/mapdraw/pkg/stats"
	"github.com/matzehuels/mapdraw/pkg/unitgraph"
)

// planSource names a saved plan and the graph it was drawn on.
type planSource struct {
	state     string
	datasets  string
	districts int
	strict    bool
}

func (s *planSource) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&s.state, "state", "s", "", "dataset code of the graph (instead of a graph file)")
	cmd.Flags().StringVar(&s.datasets, "datasets", datasetDir(), "dataset directory")
	cmd.Flags().IntVarP(&s.districts, "districts", "n", 0, "number of districts (CSV plans; inferred when 0)")
	cmd.Flags().BoolVar(&s.strict, "strict", false, "reject graphs with one-way adjacency")
	_ = cmd.RegisterFlagCompletionFunc("state", completeDatasets)
}

// load reads the graph named by args[1] or --state and replays the plan
// in args[0] over it.
func (s *planSource) load(ctx context.Context, c *CLI, args []string) (*partition.Partition, error) {
	opts := pipeline.Options{
		Dataset:    s.state,
		Strict:     s.strict,
		DatasetDir: s.datasets,
		Logger:     loggerFromContext(ctx),
	}
	if len(args) > 1 {
		opts.GraphPath = args[1]
		opts.Dataset = ""
	}
	if opts.GraphPath == "" && opts.Dataset == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "pass a graph file or --state")
	}

	runner, err := c.newRunner(true)
	if err != nil {
		return nil, err
	}
	defer runner.Close()

	g, err := runner.Load(ctx, opts)
	if err != nil {
		return nil, err
	}
	return loadPlan(args[0], g, s.districts)
}

func loadPlan(path string, g *unitgraph.Graph, n int) (*partition.Partition, error) {
	p, err := mdio.ImportAssignment(path, g, n)
	if err != nil {
		return nil, fmt.Errorf("load plan %s: %w", path, err)
	}
	return p, nil
}

// statsCommand creates the stats command.
func (c *CLI) statsCommand() *cobra.Command {
	var (
		src    planSource
		opts   stats.Options
		attrs  []string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "stats <plan> [graph]",
		Short: "Show per-district statistics of a plan",
		Long: `Show per-district statistics of a saved plan: unit count, population and
its deviation from the target, and the sums of the graph's numeric attributes.

With --party-a and --party-b the two-party margin (a-b)/(a+b) is added; a
graph with an "area" attribute also gets population density.`,
		Example: `  mapdraw stats GA.plan.csv --state GA --party-a G20PREDBID --party-b G20PRERTRU
  mapdraw stats plan.json precincts.json --json`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := src.load(cmd.Context(), c, args)
			if err != nil {
				return err
			}
			sum := stats.Summarize(p, opts)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), sum)
			}
			renderStatsTable(cmd.OutOrStdout(), sum, attrs)
			return nil
		},
	}

	src.register(cmd)
	cmd.Flags().StringVar(&opts.PartyA, "party-a", "", "attribute holding party A votes")
	cmd.Flags().StringVar(&opts.PartyB, "party-b", "", "attribute holding party B votes")
	cmd.Flags().StringVar(&opts.AreaKey, "area", stats.DefaultAreaKey, "attribute holding unit area")
	cmd.Flags().StringSliceVar(&attrs, "attr", nil, "attribute columns to show (repeatable)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")

	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
