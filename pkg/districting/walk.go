package districting

import (
	"context"
	"math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mapdraw/pkg/partition"
)

// State is the phase of a [Walker].
type State int

const (
	SelectingStart State = iota
	Growing
	Stuck
	Done
)

func (s State) String() string {
	switch s {
	case SelectingStart:
		return "selecting-start"
	case Growing:
		return "growing"
	case Stuck:
		return "stuck"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// Walker grows a single district by a random walk. It moves from the current
// unit to a random unassigned neighbor, claiming it. When the current unit
// has no unassigned neighbor the walker is Stuck and jumps to a random unit
// on the frontier of the whole district. It is Done when the district
// reaches its target or its frontier is empty.
type Walker struct {
	p      *partition.Partition
	d      partition.District
	policy SeedPolicy
	rng    *rand.Rand
	target int

	state State
	cur   int
	steps int
}

// NewWalker returns a walker for district d in the SelectingStart state.
func NewWalker(p *partition.Partition, d partition.District, policy SeedPolicy, rng *rand.Rand) *Walker {
	return &Walker{p: p, d: d, policy: policy, rng: rng, target: p.Target(), cur: -1}
}

// State returns the current state.
func (w *Walker) State() State { return w.state }

// Current returns the unit the walker stands on, or -1 before it started.
func (w *Walker) Current() int { return w.cur }

// Steps returns the number of units claimed so far.
func (w *Walker) Steps() int { return w.steps }

// Step performs one transition and returns the new state. Calling Step on a
// Done walker is a no-op.
func (w *Walker) Step() State {
	switch w.state {
	case SelectingStart:
		seeds, err := PickSeeds(w.p, 1, w.policy, w.rng)
		if err != nil {
			w.state = Done
			break
		}
		w.claim(seeds[0])
		w.state = Growing
	case Growing:
		if w.p.Population(w.d) >= w.target {
			w.state = Done
			break
		}
		next := w.p.UnassignedNeighbors(w.cur)
		if len(next) == 0 {
			w.state = Stuck
			break
		}
		w.claim(next[w.rng.IntN(len(next))])
	case Stuck:
		frontier := w.p.Frontier(w.d)
		if len(frontier) == 0 {
			w.state = Done
			break
		}
		w.claim(frontier[w.rng.IntN(len(frontier))])
		w.state = Growing
	}
	return w.state
}

// Run steps the walker until it is Done.
func (w *Walker) Run() {
	for w.Step() != Done {
	}
}

func (w *Walker) claim(u int) {
	w.p.Assign(u, w.d)
	w.cur = u
	w.steps++
}

// GrowWalk grows districts 1..n one after another with a [Walker] each.
// A district that finishes below target is recorded as a deadlock; the
// partition is left partial for the gap filler. A district whose walk could
// not even start is marked empty.
//
// ctx is checked before every step; when it is done the partial report and
// ctx.Err() are returned.
func GrowWalk(ctx context.Context, p *partition.Partition, policy SeedPolicy, rng *rand.Rand, logger *log.Logger) (GrowthReport, error) {
	logger = orDiscard(logger)
	target := p.Target()

	var rep GrowthReport
	for d := partition.District(1); int(d) <= p.NumDistricts(); d++ {
		rep.Holes = append(rep.Holes, p.UnassignedCount())
		rep.Rounds++

		w := NewWalker(p, d, policy, rng)
		for w.State() != Done {
			if err := ctx.Err(); err != nil {
				return rep, err
			}
			w.Step()
		}

		pop := p.Population(d)
		logger.Debug("walk finished", "district", d, "units", w.Steps(), "population", pop)
		if pop < target {
			rep.Deadlocks = append(rep.Deadlocks, Deadlock{
				District: d, Population: pop, Target: target, Empty: w.Steps() == 0,
			})
		}
	}
	logger.Info("random-walk growth finished",
		"districts", p.NumDistricts(),
		"holes", p.UnassignedCount(),
		"deadlocks", len(rep.Deadlocks))
	return rep, nil
}
