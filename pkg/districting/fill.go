package districting

import (
	"math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mapdraw/pkg/errors"
	"github.com/matzehuels/mapdraw/pkg/partition"
)

// FillReport describes a gap-filling pass.
type FillReport struct {
	Rounds     int   `json:"rounds"`
	Filled     []int `json:"filled"` // units assigned in each round
	Unresolved []int `json:"unresolved,omitempty"`
}

// FillGaps assigns every unassigned unit that touches a district.
//
// Units are visited in index order each round, and assignments made earlier
// in a round are visible to later units. A unit bordering exactly one
// district joins it; a unit bordering several joins the least populous one,
// ties broken at random; a unit bordering none waits for a later round.
// Rounds repeat until nothing is unassigned or a round assigns nothing, in
// which case an UNRESOLVABLE_GAP error is returned alongside the report.
func FillGaps(p *partition.Partition, rng *rand.Rand, logger *log.Logger) (FillReport, error) {
	logger = orDiscard(logger)
	var rep FillReport
	for {
		holes := p.Unassigned()
		if len(holes) == 0 {
			return rep, nil
		}
		rep.Rounds++
		filled := 0
		for _, u := range holes {
			nd := p.NeighborDistricts(u)
			if len(nd) == 0 {
				continue
			}
			p.Assign(u, smallestDistrict(nd, p.Population, rng))
			filled++
		}
		rep.Filled = append(rep.Filled, filled)
		logger.Debug("gap fill round", "round", rep.Rounds, "holes", len(holes), "filled", filled)

		if filled == 0 {
			rep.Unresolved = holes
			logger.Warn("unassigned units cannot be reached from any district", "holes", len(holes))
			return rep, errors.New(errors.ErrCodeUnresolvableGap,
				"%d units border no district", len(holes))
		}
	}
}

// smallestDistrict returns the least populous district of ds, choosing
// uniformly among ties.
func smallestDistrict(ds []partition.District, popOf func(partition.District) int, rng *rand.Rand) partition.District {
	if len(ds) == 1 {
		return ds[0]
	}
	best := -1
	var ties []partition.District
	for _, d := range ds {
		pop := popOf(d)
		switch {
		case best < 0 || pop < best:
			best = pop
			ties = append(ties[:0], d)
		case pop == best:
			ties = append(ties, d)
		}
	}
	if len(ties) == 1 {
		return ties[0]
	}
	return ties[rng.IntN(len(ties))]
}
