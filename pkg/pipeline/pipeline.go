// Package pipeline provides the districting pipeline shared by the CLI and
// the HTTP API.
//
// The pipeline has two stages:
//
//  1. Load: read a unit graph from a dataset code, a JSON file or a CSV file
//  2. Draw: partition the graph into districts and collect diagnostics
//
// Draw results are cached under a key derived from the graph's content hash
// and the run options. Runs are deterministic, so a cached plan is identical
// to a fresh one.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.DefaultOptions()
//	opts.GraphPath = "GA.json"
//	opts.NumDistricts = 14
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Diagnostics.Reason, result.Diagnostics.Deviation)
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mapdraw/pkg/cache"
	"github.com/matzehuels/mapdraw/pkg/districting"
	"github.com/matzehuels/mapdraw/pkg/errors"
	"github.com/matzehuels/mapdraw/pkg/partition"
	"github.com/matzehuels/mapdraw/pkg/stats"
	"github.com/matzehuels/mapdraw/pkg/unitgraph"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultAllowedDeviation is the largest accepted gap between the most
	// and the least populous district.
	DefaultAllowedDeviation = 70000

	// DefaultSeed is the default random seed for reproducibility.
	DefaultSeed = uint64(2023)

	// DefaultStrategy is the default region-growth algorithm.
	DefaultStrategy = "frontier"

	// DefaultSeedPolicy is the default seed selection policy.
	DefaultSeedPolicy = "dart"

	// DefaultMaxBalanceRounds bounds population balancing.
	DefaultMaxBalanceRounds = districting.DefaultMaxBalanceRounds
)

// Format constants for assignment outputs.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// ValidFormats is the set of supported assignment formats.
var ValidFormats = map[string]bool{
	FormatCSV:  true,
	FormatJSON: true,
}

// ValidStrategies is the set of supported growth strategies.
var ValidStrategies = map[string]bool{
	"frontier": true,
	"walk":     true,
}

// ValidSeedPolicies is the set of supported seed policies.
var ValidSeedPolicies = map[string]bool{
	"dart":     true,
	"isolated": true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a districting run.
// It is decoded from JSON API requests and TOML run files alike.
type Options struct {
	// Load options
	Dataset   string `json:"dataset,omitempty" toml:"dataset"`  // dataset code, e.g. "GA"
	GraphPath string `json:"graph_path,omitempty" toml:"graph"` // JSON or CSV graph file
	Strict    bool   `json:"strict,omitempty" toml:"strict"`    // reject one-way adjacency
	Refresh   bool   `json:"refresh,omitempty" toml:"refresh"`  // bypass the plan cache

	// Draw options
	NumDistricts     int    `json:"num_districts" toml:"districts"`
	AllowedDeviation int    `json:"allowed_deviation,omitempty" toml:"allowed_deviation"`
	Seed             uint64 `json:"seed,omitempty" toml:"seed"`
	Strategy         string `json:"strategy,omitempty" toml:"strategy"`
	SeedPolicy       string `json:"seed_policy,omitempty" toml:"seed_policy"`
	MaxBalanceRounds int    `json:"max_balance_rounds,omitempty" toml:"max_balance_rounds"`

	// Stats options
	Stats stats.Options `json:"stats,omitempty" toml:"stats"`

	// Runtime options (not serialized)
	Logger     *log.Logger `json:"-" toml:"-"`
	DatasetDir string      `json:"-" toml:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the loaded unit graph.
	Graph *unitgraph.Graph

	// GraphHash is the content hash of the graph.
	GraphHash string

	// Partition is the drawn plan; it may be partial on deadlock.
	Partition *partition.Partition

	// Diagnostics describes how the run ended.
	Diagnostics districting.Diagnostics

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Summary computes per-district statistics for the result.
func (r *Result) Summary(opts stats.Options) stats.Summary {
	return stats.Summarize(r.Partition, opts)
}

// Stats contains pipeline execution statistics.
type Stats struct {
	UnitCount int
	EdgeCount int
	LoadTime  time.Duration
	DrawTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	PlanHit bool // Whether the plan came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that an assignment format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: csv, json)", format)
	}
	return nil
}

// ValidateStrategy checks that a growth strategy is valid.
func ValidateStrategy(s string) error {
	if !ValidStrategies[s] {
		return fmt.Errorf("invalid strategy: %q (must be one of: frontier, walk)", s)
	}
	return nil
}

// ValidateSeedPolicy checks that a seed policy is valid.
func ValidateSeedPolicy(s string) error {
	if !ValidSeedPolicies[s] {
		return fmt.Errorf("invalid seed_policy: %q (must be one of: dart, isolated)", s)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForDraw(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks that a graph source is set.
func (o *Options) ValidateForLoad() error {
	if o.Dataset == "" && o.GraphPath == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "dataset or graph path is required")
	}
	if o.Dataset != "" {
		if err := errors.ValidateDatasetCode(o.Dataset); err != nil {
			return err
		}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// DefaultOptions returns draw options carrying every default value. Decoders
// start from it so that a field the input leaves out keeps its default while
// an explicit zero, such as allowed_deviation = 0 or seed = 0, is kept.
func DefaultOptions() Options {
	return Options{
		AllowedDeviation: DefaultAllowedDeviation,
		Seed:             DefaultSeed,
		Strategy:         DefaultStrategy,
		SeedPolicy:       DefaultSeedPolicy,
		MaxBalanceRounds: DefaultMaxBalanceRounds,
	}
}

// SetDrawDefaults fills in the fields whose zero value means "unset": the
// strategy, the seed policy, the balancing round limit and the logger.
// AllowedDeviation and Seed are used as given, zero included; start from
// [DefaultOptions] to get their defaults.
func (o *Options) SetDrawDefaults() {
	if o.Strategy == "" {
		o.Strategy = DefaultStrategy
	}
	if o.SeedPolicy == "" {
		o.SeedPolicy = DefaultSeedPolicy
	}
	if o.MaxBalanceRounds == 0 {
		o.MaxBalanceRounds = DefaultMaxBalanceRounds
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForDraw sets defaults and validates drawing options.
// The graph source is not required, so the API can draw an inline graph.
func (o *Options) ValidateForDraw() error {
	o.SetDrawDefaults()
	if o.NumDistricts < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "num_districts must be positive, got %d", o.NumDistricts)
	}
	if o.AllowedDeviation < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "allowed_deviation must not be negative")
	}
	if o.MaxBalanceRounds < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "max_balance_rounds must not be negative")
	}
	if err := ValidateStrategy(o.Strategy); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "strategy")
	}
	if err := ValidateSeedPolicy(o.SeedPolicy); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "seed policy")
	}
	return nil
}

// DistrictingConfig converts the options into a districting configuration.
func (o *Options) DistrictingConfig() (districting.Config, error) {
	strategy, err := districting.ParseStrategy(o.Strategy)
	if err != nil {
		return districting.Config{}, err
	}
	policy, err := districting.ParseSeedPolicy(o.SeedPolicy)
	if err != nil {
		return districting.Config{}, err
	}
	return districting.Config{
		NumDistricts:     o.NumDistricts,
		AllowedDeviation: o.AllowedDeviation,
		Seed:             o.Seed,
		Strategy:         strategy,
		SeedPolicy:       policy,
		MaxBalanceRounds: o.MaxBalanceRounds,
		Logger:           o.Logger,
	}, nil
}

// GraphOptions returns the graph construction options.
func (o *Options) GraphOptions() []unitgraph.Option {
	if o.Strict {
		return []unitgraph.Option{unitgraph.WithStrictSymmetry()}
	}
	return nil
}

// PlanKeyOpts returns cache key options for a drawn plan.
func (o *Options) PlanKeyOpts() cache.PlanKeyOpts {
	return cache.PlanKeyOpts{
		NumDistricts:     o.NumDistricts,
		AllowedDeviation: o.AllowedDeviation,
		Seed:             o.Seed,
		Strategy:         o.Strategy,
		SeedPolicy:       o.SeedPolicy,
		MaxBalanceRounds: o.MaxBalanceRounds,
	}
}
