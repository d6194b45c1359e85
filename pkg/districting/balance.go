package districting

import (
	"context"
	"math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mapdraw/pkg/errors"
	"github.com/matzehuels/mapdraw/pkg/partition"
)

// DefaultMaxBalanceRounds bounds [Balance] when no limit is configured.
const DefaultMaxBalanceRounds = 20

// Reason says why a run or a balancing phase stopped.
type Reason string

const (
	ReasonConverged  Reason = "converged"
	ReasonCycle      Reason = "cycle-detected"
	ReasonRoundLimit Reason = "round-limit"
	ReasonDeadlock   Reason = "deadlock"
)

// Swap is a proposed or applied move of one boundary unit.
type Swap struct {
	Unit int
	From partition.District
	To   partition.District
}

// RoundResult summarizes one [SwapRound].
type RoundResult struct {
	Proposed  int `json:"proposed"`
	Applied   int `json:"applied"`
	Orphans   int `json:"orphans"`
	Deviation int `json:"deviation"`
	// Unsettled is set when orphan repair hit its pass limit.
	Unsettled bool `json:"unsettled,omitempty"`
}

// ProposeSwaps lists, in unit order, every boundary unit whose district is
// above target and whose least populous neighboring district is below it.
// The partition is not modified.
func ProposeSwaps(p *partition.Partition, rng *rand.Rand) []Swap {
	target := p.Target()
	pops := p.Populations()
	popOf := func(d partition.District) int { return pops[d-1] }

	var out []Swap
	for i := 0; i < p.Len(); i++ {
		own, ok := p.At(i).District()
		if !ok || popOf(own) <= target {
			continue
		}
		var others []partition.District
		for _, d := range p.NeighborDistricts(i) {
			if d != own {
				others = append(others, d)
			}
		}
		if len(others) == 0 {
			continue
		}
		to := smallestDistrict(others, popOf, rng)
		if popOf(to) < target {
			out = append(out, Swap{Unit: i, From: own, To: to})
		}
	}
	return out
}

// SwapRound proposes boundary moves, applies them one at a time against live
// populations, and then repairs orphans.
//
// A proposal is skipped when the acceptor is already at or above
// target + allowed/2, or the donor is at or below target - allowed/2.
// Comparisons are done on doubled values so odd allowances stay exact.
func SwapRound(p *partition.Partition, allowed int, rng *rand.Rand) RoundResult {
	target2 := 2 * p.Target()
	swaps := ProposeSwaps(p, rng)

	res := RoundResult{Proposed: len(swaps)}
	for _, s := range swaps {
		if 2*p.Population(s.To) >= target2+allowed {
			continue
		}
		if 2*p.Population(s.From) <= target2-allowed {
			continue
		}
		p.Assign(s.Unit, s.To)
		res.Applied++
	}
	moves, err := RepairOrphans(p, rng)
	res.Orphans = moves
	res.Unsettled = err != nil
	res.Deviation = p.Deviation()
	return res
}

// BalanceOptions configures [Balance].
type BalanceOptions struct {
	AllowedDeviation int
	MaxRounds        int
}

// BalanceReport describes a balancing phase.
type BalanceReport struct {
	Reason Reason `json:"reason"`
	Rounds int    `json:"rounds"`
	// Deviations starts with the deviation before the first round and holds
	// one entry per round after it.
	Deviations []int         `json:"deviations"`
	History    []RoundResult `json:"history,omitempty"`
	Best       int           `json:"best"`
	Restored   bool          `json:"restored"`
	// UnsettledRounds counts rounds whose orphan repair did not settle.
	UnsettledRounds int `json:"unsettled_rounds,omitempty"`
}

// Balance runs [SwapRound] until the deviation is at most the allowed
// deviation, the last four deviations form a cycle [a b a b], or the round
// limit is reached.
//
// On a cycle or at the round limit the lowest-deviation partition seen is
// restored and a BALANCING_CYCLE or ROUND_LIMIT_EXCEEDED error is returned
// together with the report.
//
// ctx is checked before every round; when it is done Balance returns
// ctx.Err() and leaves the partition as the last round left it.
func Balance(ctx context.Context, p *partition.Partition, opts BalanceOptions, rng *rand.Rand, logger *log.Logger) (BalanceReport, error) {
	logger = orDiscard(logger)
	if opts.MaxRounds <= 0 {
		opts.MaxRounds = DefaultMaxBalanceRounds
	}

	dev := p.Deviation()
	rep := BalanceReport{Deviations: []int{dev}, Best: dev}
	best := p.Snapshot()

	for {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		if dev <= opts.AllowedDeviation {
			rep.Reason = ReasonConverged
			break
		}
		if isTwoCycle(rep.Deviations) {
			rep.Reason = ReasonCycle
			break
		}
		if rep.Rounds >= opts.MaxRounds {
			rep.Reason = ReasonRoundLimit
			break
		}

		res := SwapRound(p, opts.AllowedDeviation, rng)
		rep.Rounds++
		rep.History = append(rep.History, res)
		if res.Unsettled {
			rep.UnsettledRounds++
		}
		dev = res.Deviation
		rep.Deviations = append(rep.Deviations, dev)
		logger.Debug("balance round",
			"round", rep.Rounds,
			"proposed", res.Proposed,
			"applied", res.Applied,
			"orphans", res.Orphans,
			"unsettled", res.Unsettled,
			"deviation", dev)

		if dev < rep.Best {
			rep.Best = dev
			best = p.Snapshot()
		}
	}

	if rep.Reason != ReasonConverged && dev > rep.Best {
		p.Restore(best)
		rep.Restored = true
	}
	logger.Info("balancing finished",
		"reason", rep.Reason,
		"rounds", rep.Rounds,
		"deviation", p.Deviation(),
		"allowed", opts.AllowedDeviation)

	switch rep.Reason {
	case ReasonCycle:
		return rep, errors.New(errors.ErrCodeBalancingCycle,
			"deviation oscillates %v; best %d", rep.Deviations[len(rep.Deviations)-4:], rep.Best)
	case ReasonRoundLimit:
		return rep, errors.New(errors.ErrCodeRoundLimitExceeded,
			"deviation %d still above %d after %d rounds", rep.Best, opts.AllowedDeviation, rep.Rounds)
	}
	return rep, nil
}

// isTwoCycle reports whether devs ends in [a b a b].
func isTwoCycle(devs []int) bool {
	n := len(devs)
	if n < 4 {
		return false
	}
	return devs[n-4] == devs[n-2] && devs[n-3] == devs[n-1]
}
