package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mapdraw/pkg/districting"
	"github.com/matzehuels/mapdraw/pkg/partition"
	"github.com/matzehuels/mapdraw/pkg/pipeline"
)

// verifyReport holds the outcome of the plan checks.
type verifyReport struct {
	Unassigned int                      `json:"unassigned"`
	Orphans    []string                 `json:"orphans,omitempty"`
	Islands    []districting.Contiguity `json:"islands,omitempty"`
	Deviation  int                      `json:"deviation"`
	Allowed    int                      `json:"allowed"`
}

// Failed counts the failed checks. Split districts are reported but do not
// fail a plan.
func (r verifyReport) Failed() int {
	n := 0
	if r.Unassigned > 0 {
		n++
	}
	if len(r.Orphans) > 0 {
		n++
	}
	if r.Deviation > r.Allowed {
		n++
	}
	return n
}

func verifyPlan(p *partition.Partition, allowed int) verifyReport {
	g := p.Graph()
	orphans := districting.Orphans(p)
	ids := make([]string, len(orphans))
	for i, u := range orphans {
		ids[i] = g.ID(u)
	}
	return verifyReport{
		Unassigned: p.UnassignedCount(),
		Orphans:    ids,
		Islands:    districting.Islands(p),
		Deviation:  p.Deviation(),
		Allowed:    allowed,
	}
}

// verifyCommand creates the verify command.
func (c *CLI) verifyCommand() *cobra.Command {
	var (
		src     planSource
		allowed int
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "verify <plan> [graph]",
		Short: "Check a plan for coverage, orphans, contiguity and balance",
		Long: `Check a saved plan:

  coverage   every unit belongs to a district
  orphans    no unit is cut off from the rest of its district
  balance    the population gap is within --deviation
  islands    districts split into several pieces (reported, not failed)

The command exits non-zero when a check fails.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := src.load(cmd.Context(), c, args)
			if err != nil {
				return err
			}
			rep := verifyPlan(p, allowed)
			if asJSON {
				if err := writeJSON(cmd.OutOrStdout(), rep); err != nil {
					return err
				}
			} else {
				printVerifyReport(rep)
			}
			if n := rep.Failed(); n > 0 {
				return fmt.Errorf("plan failed %d check(s)", n)
			}
			return nil
		},
	}

	src.register(cmd)
	cmd.Flags().IntVarP(&allowed, "deviation", "d", pipeline.DefaultAllowedDeviation, "allowed population gap")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a report")

	return cmd
}

func printVerifyReport(r verifyReport) {
	check := func(ok bool, okMsg, failMsg string) {
		if ok {
			printSuccess("%s", okMsg)
		} else {
			printError("%s", failMsg)
		}
	}
	check(r.Unassigned == 0, "Every unit is assigned",
		fmt.Sprintf("%d units are unassigned", r.Unassigned))
	check(len(r.Orphans) == 0, "No orphaned units",
		fmt.Sprintf("%d orphaned units", len(r.Orphans)))
	for i, id := range r.Orphans {
		if i == 10 {
			printDetail("... and %d more", len(r.Orphans)-i)
			break
		}
		printDetail("%s", id)
	}
	check(r.Deviation <= r.Allowed,
		"Deviation "+strconv.Itoa(r.Deviation)+" within "+strconv.Itoa(r.Allowed),
		"Deviation "+strconv.Itoa(r.Deviation)+" exceeds "+strconv.Itoa(r.Allowed))
	if len(r.Islands) == 0 {
		printSuccess("Every district is contiguous")
		return
	}
	printWarning("%d districts are split", len(r.Islands))
	for _, is := range r.Islands {
		printDetail("district %d: pieces of %v units", is.District, is.Sizes)
	}
}
