package districting

import (
	"context"
	"io"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mapdraw/pkg/errors"
	"github.com/matzehuels/mapdraw/pkg/observability"
	"github.com/matzehuels/mapdraw/pkg/partition"
	"github.com/matzehuels/mapdraw/pkg/unitgraph"
)

// Strategy selects the region-growth algorithm.
type Strategy int

const (
	// Frontier grows all districts together, round by round.
	Frontier Strategy = iota
	// Walk grows one district at a time by a random walk.
	Walk
)

func (s Strategy) String() string {
	switch s {
	case Frontier:
		return "frontier"
	case Walk:
		return "walk"
	default:
		return "unknown"
	}
}

// ParseStrategy accepts "frontier" (or "dart") and "walk".
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "frontier", "dart":
		return Frontier, nil
	case "walk", "random-walk":
		return Walk, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidConfig, "unknown growth strategy %q (want frontier or walk)", s)
}

// Config controls a districting run.
type Config struct {
	NumDistricts     int
	AllowedDeviation int
	Seed             uint64
	Strategy         Strategy
	SeedPolicy       SeedPolicy
	MaxBalanceRounds int // 0 means DefaultMaxBalanceRounds

	Logger *log.Logger // nil discards
}

// Validate checks the configuration against a graph.
func (c Config) Validate(g *unitgraph.Graph) error {
	if g == nil {
		return errors.New(errors.ErrCodeInvalidInput, "graph is required")
	}
	if c.NumDistricts < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "number of districts must be positive, got %d", c.NumDistricts)
	}
	if c.NumDistricts > g.Len() {
		return errors.New(errors.ErrCodeInvalidConfig,
			"cannot draw %d districts from %d units", c.NumDistricts, g.Len())
	}
	if c.AllowedDeviation < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "allowed deviation must not be negative, got %d", c.AllowedDeviation)
	}
	if c.MaxBalanceRounds < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "max balance rounds must not be negative, got %d", c.MaxBalanceRounds)
	}
	return nil
}

// Issue is a non-fatal condition met during a run.
type Issue struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

// Diagnostics describes how a run ended.
type Diagnostics struct {
	Reason      Reason `json:"reason"`
	Deviation   int    `json:"deviation"`
	Target      int    `json:"target"`
	Populations []int  `json:"populations"`
	Rounds      int    `json:"rounds"`

	Growth  GrowthReport  `json:"growth"`
	Fill    FillReport    `json:"fill"`
	Balance BalanceReport `json:"balance"`

	UnresolvedUnits []string     `json:"unresolved_units,omitempty"`
	Islands         []Contiguity `json:"islands,omitempty"`
	Issues          []Issue      `json:"issues,omitempty"`
}

// Has reports whether an issue with the given code was recorded.
func (d *Diagnostics) Has(code errors.Code) bool {
	for _, is := range d.Issues {
		if is.Code == code {
			return true
		}
	}
	return false
}

func (d *Diagnostics) record(err error) {
	d.Issues = append(d.Issues, Issue{Code: errors.GetCode(err), Message: errors.UserMessage(err)})
}

// Result is the outcome of [Run]. The partition may be partial when the
// reason is [ReasonDeadlock].
type Result struct {
	Partition   *partition.Partition
	Diagnostics Diagnostics
}

// NewRand returns the generator used by a run with the given seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
}

// Run draws cfg.NumDistricts districts over g.
//
// Only invalid configuration and context cancellation produce an error.
// Deadlocked growth, unreachable units and unbalanced outcomes are returned
// in the diagnostics of a non-nil result.
func Run(ctx context.Context, g *unitgraph.Graph, cfg Config) (*Result, error) {
	if err := cfg.Validate(g); err != nil {
		return nil, err
	}
	logger := orDiscard(cfg.Logger)
	p, err := partition.New(g, cfg.NumDistricts)
	if err != nil {
		return nil, err
	}
	rng := NewRand(cfg.Seed)
	res := &Result{Partition: p}
	diag := &res.Diagnostics
	diag.Target = p.Target()

	logger.Info("drawing districts",
		"units", g.Len(),
		"districts", cfg.NumDistricts,
		"target", diag.Target,
		"strategy", cfg.Strategy,
		"seed", cfg.Seed)

	hooks := observability.Districting()
	phase := func(ph observability.Phase) func(rounds int) {
		start := time.Now()
		hooks.OnPhaseStart(ctx, ph)
		return func(rounds int) { hooks.OnPhaseComplete(ctx, ph, rounds, time.Since(start)) }
	}

	grown := phase(observability.PhaseGrowth)
	switch cfg.Strategy {
	case Walk:
		diag.Growth, err = GrowWalk(ctx, p, cfg.SeedPolicy, rng, logger)
	default:
		var seeds []int
		seeds, err = PickSeeds(p, cfg.NumDistricts, cfg.SeedPolicy, rng)
		if err == nil {
			diag.Growth, err = GrowFrontier(ctx, p, seeds, rng, logger)
		}
	}
	grown(diag.Growth.Rounds)
	if err != nil {
		return nil, err
	}
	for _, d := range diag.Growth.Deadlocks {
		diag.record(d.Err())
	}

	if !p.IsComplete() {
		filled := phase(observability.PhaseFill)
		rep, err := FillGaps(p, rng, logger)
		filled(rep.Rounds)
		diag.Fill = rep
		if err != nil {
			diag.record(err)
			for _, u := range rep.Unresolved {
				diag.UnresolvedUnits = append(diag.UnresolvedUnits, g.ID(u))
			}
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if p.IsComplete() {
		balanced := phase(observability.PhaseBalance)
		rep, err := Balance(ctx, p, BalanceOptions{
			AllowedDeviation: cfg.AllowedDeviation,
			MaxRounds:        cfg.MaxBalanceRounds,
		}, rng, logger)
		balanced(rep.Rounds)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		diag.Balance = rep
		diag.Reason = rep.Reason
		diag.Rounds = rep.Rounds
		if err != nil {
			diag.record(err)
		}
		if rep.UnsettledRounds > 0 {
			diag.record(errors.New(errors.ErrCodeOrphanCycle,
				"orphan repair did not settle in %d of %d balance rounds; adjacency is likely one-way",
				rep.UnsettledRounds, rep.Rounds))
		}
	} else {
		diag.Reason = ReasonDeadlock
	}

	diag.Populations = p.Populations()
	diag.Deviation = p.Deviation()
	diag.Islands = Islands(p)
	if len(diag.Islands) > 0 {
		logger.Warn("districts are split into several pieces", "districts", len(diag.Islands))
	}
	logger.Info("districts drawn",
		"reason", diag.Reason,
		"deviation", diag.Deviation,
		"rounds", diag.Rounds,
		"issues", len(diag.Issues))
	return res, nil
}

func orDiscard(l *log.Logger) *log.Logger {
	if l == nil {
		return log.New(io.Discard)
	}
	return l
}
