package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mapdraw/pkg/pipeline"
)

// datasetsCommand creates the datasets command.
func (c *CLI) datasetsCommand() *cobra.Command {
	var (
		dir    string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "datasets",
		Short: "List the graphs in the dataset directory",
		Long: `List the graphs in the dataset directory. Each <CODE>.json or <CODE>.csv
file is a dataset that draw, stats and verify accept as --state CODE.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := pipeline.ListDatasets(dir)
			if err != nil {
				return err
			}
			if asJSON {
				if ds == nil {
					ds = []pipeline.Dataset{}
				}
				return writeJSON(cmd.OutOrStdout(), ds)
			}
			if len(ds) == 0 {
				printInfo("No datasets in %s", dir)
				return nil
			}
			rows := make([][]string, len(ds))
			for i, d := range ds {
				rows[i] = []string{d.Code, d.Name, d.Format}
			}
			t := table.New().
				Border(lipgloss.RoundedBorder()).
				BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
				Headers("Code", "Name", "Format").
				Rows(rows...).
				StyleFunc(func(row, col int) lipgloss.Style {
					switch {
					case row == -1:
						return styleHeader.Padding(0, 1)
					case col == 0:
						return lipgloss.NewStyle().Foreground(colorCyan).Padding(0, 1)
					}
					return lipgloss.NewStyle().Padding(0, 1)
				})
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			printDetail("Directory: %s", dir)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "datasets", datasetDir(), "dataset directory")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	return cmd
}

// completeDatasets completes --state with the codes in the dataset directory.
func completeDatasets(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	dir := datasetDir()
	if f := cmd.Flags().Lookup("datasets"); f != nil {
		dir = f.Value.String()
	}
	ds, err := pipeline.ListDatasets(dir)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	codes := make([]string, 0, len(ds))
	for _, d := range ds {
		codes = append(codes, d.Code+"\t"+d.Name)
	}
	return codes, cobra.ShellCompDirectiveNoFileComp
}
