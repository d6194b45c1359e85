package districting

import (
	"context"
	"math/rand/v2"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mapdraw/pkg/errors"
	"github.com/matzehuels/mapdraw/pkg/partition"
)

// Deadlock records a district that stopped growing below its target
// because no unassigned unit touches it.
type Deadlock struct {
	District   partition.District `json:"district"`
	Population int                `json:"population"`
	Target     int                `json:"target"`
	// Empty is set when the district never received a unit, because earlier
	// districts had claimed every unit before it started.
	Empty bool `json:"empty,omitempty"`
}

// Err returns the deadlock as a GROWTH_DEADLOCK error.
func (d Deadlock) Err() error {
	if d.Empty {
		return errors.New(errors.ErrCodeGrowthDeadlock,
			"district %d is empty: every unit was claimed before it could start (target %d)",
			d.District, d.Target)
	}
	return errors.New(errors.ErrCodeGrowthDeadlock,
		"district %d stopped at population %d (target %d): no reachable unassigned units",
		d.District, d.Population, d.Target)
}

// GrowthReport describes how a growth phase ended.
type GrowthReport struct {
	Rounds    int        `json:"rounds"`
	Holes     []int      `json:"holes"` // unassigned units at the start of each round
	Stagnated bool       `json:"stagnated"`
	Deadlocks []Deadlock `json:"deadlocks,omitempty"`
}

// GrowFrontier assigns seeds[k] to district k+1 and expands every district
// into its frontier, one round at a time.
//
// Each round visits the still-active districts in a freshly shuffled order.
// A district takes the units of its frontier one by one while its
// population is below target; it retires as soon as it reaches the target.
// Growth stops when every unit is assigned or when two consecutive rounds
// start with the same number of unassigned units.
//
// ctx is checked before every round; when it is done the partial report and
// ctx.Err() are returned.
func GrowFrontier(ctx context.Context, p *partition.Partition, seeds []int, rng *rand.Rand, logger *log.Logger) (GrowthReport, error) {
	logger = orDiscard(logger)
	for k, s := range seeds {
		p.Assign(s, partition.District(k+1))
		logger.Debug("seeded district", "district", k+1, "unit", p.Graph().ID(s))
	}

	target := p.Target()
	active := make([]partition.District, len(seeds))
	for k := range active {
		active[k] = partition.District(k + 1)
	}

	var rep GrowthReport
	for {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		holes := p.UnassignedCount()
		rep.Holes = append(rep.Holes, holes)
		if holes == 0 {
			break
		}
		if n := len(rep.Holes); n >= 2 && rep.Holes[n-1] == rep.Holes[n-2] {
			rep.Stagnated = true
			break
		}
		rep.Rounds++
		logger.Debug("growth round", "round", rep.Rounds, "holes", holes, "active", len(active))

		rng.Shuffle(len(active), func(i, j int) { active[i], active[j] = active[j], active[i] })
		var retired []partition.District
		for _, d := range active {
			frontier := p.Frontier(d)
			rng.Shuffle(len(frontier), func(i, j int) { frontier[i], frontier[j] = frontier[j], frontier[i] })
			for _, u := range frontier {
				if p.Population(d) >= target {
					break
				}
				if p.At(u).IsAssigned() {
					continue
				}
				p.Assign(u, d)
			}
			if p.Population(d) >= target {
				logger.Debug("district reached target", "district", d, "population", p.Population(d))
				retired = append(retired, d)
			}
		}
		active = slices.DeleteFunc(active, func(d partition.District) bool {
			return slices.Contains(retired, d)
		})
	}

	if rep.Stagnated {
		for _, d := range active {
			if pop := p.Population(d); pop < target && len(p.Frontier(d)) == 0 {
				rep.Deadlocks = append(rep.Deadlocks, Deadlock{District: d, Population: pop, Target: target})
			}
		}
		slices.SortFunc(rep.Deadlocks, func(a, b Deadlock) int { return int(a.District - b.District) })
	}
	logger.Info("frontier growth finished",
		"rounds", rep.Rounds,
		"holes", p.UnassignedCount(),
		"stagnated", rep.Stagnated,
		"deadlocks", len(rep.Deadlocks))
	return rep, nil
}
