package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mapdraw/pkg/cache"
	"github.com/matzehuels/mapdraw/pkg/districting"
	"github.com/matzehuels/mapdraw/pkg/errors"
	mdio "github.com/matzehuels/mapdraw/pkg/io"
	"github.com/matzehuels/mapdraw/pkg/observability"
	"github.com/matzehuels/mapdraw/pkg/unitgraph"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// cachedPlan is the cache entry of a drawn plan.
type cachedPlan struct {
	Plan        mdio.Plan               `json:"plan"`
	Diagnostics districting.Diagnostics `json:"diagnostics"`
}

// Execute loads the graph named by opts and draws it.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	loadStart := time.Now()
	g, err := r.Load(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	loadTime := time.Since(loadStart)

	result, err := r.Draw(ctx, g, opts)
	if err != nil {
		return nil, fmt.Errorf("draw: %w", err)
	}
	result.Stats.LoadTime = loadTime
	return result, nil
}

// Load reads the graph from opts.GraphPath, or from the dataset registry
// when only opts.Dataset is set.
func (r *Runner) Load(ctx context.Context, opts Options) (*unitgraph.Graph, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLoad(); err != nil {
		return nil, err
	}

	path := opts.GraphPath
	if path == "" {
		ds, err := FindDataset(opts.DatasetDir, opts.Dataset)
		if err != nil {
			return nil, err
		}
		path = ds.Path
	}

	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, path)
	start := time.Now()
	g, err := mdio.ImportGraph(path, opts.GraphOptions()...)
	units := 0
	if g != nil {
		units = g.Len()
	}
	hooks.OnLoadComplete(ctx, path, units, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	opts.Logger.Info("loaded graph",
		"path", path,
		"units", g.Len(),
		"edges", g.EdgeCount(),
		"population", g.TotalPopulation())
	return g, nil
}

// Draw partitions g, consulting the plan cache unless opts.Refresh is set.
func (r *Runner) Draw(ctx context.Context, g *unitgraph.Graph, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForDraw(); err != nil {
		return nil, err
	}

	graphHash, err := GraphHash(g)
	if err != nil {
		return nil, err
	}
	result := &Result{
		Graph:     g,
		GraphHash: graphHash,
		Stats:     Stats{UnitCount: g.Len(), EdgeCount: g.EdgeCount()},
	}

	hooks := observability.Pipeline()
	hooks.OnDrawStart(ctx, g.Len(), opts.NumDistricts)
	start := time.Now()

	key := r.Keyer.PlanKey(graphHash, opts.PlanKeyOpts())
	if !opts.Refresh && r.fromCache(ctx, key, g, result) {
		result.Stats.DrawTime = time.Since(start)
		opts.Logger.Debug("plan cache hit", "key", key)
		hooks.OnDrawComplete(ctx, outcome(result), result.Stats.DrawTime, nil)
		return result, nil
	}

	cfg, err := opts.DistrictingConfig()
	if err != nil {
		return nil, err
	}
	res, err := districting.Run(ctx, g, cfg)
	result.Stats.DrawTime = time.Since(start)
	if err != nil {
		hooks.OnDrawComplete(ctx, observability.DrawOutcome{}, result.Stats.DrawTime, err)
		return nil, err
	}
	result.Partition = res.Partition
	result.Diagnostics = res.Diagnostics
	hooks.OnDrawComplete(ctx, outcome(result), result.Stats.DrawTime, nil)

	entry := cachedPlan{Plan: mdio.NewPlan(res.Partition), Diagnostics: res.Diagnostics}
	if err := cache.SetJSON(ctx, r.Cache, key, entry, cache.PlanTTL); err != nil {
		opts.Logger.Warn("could not cache plan", "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "plan", g.Len())
	}
	return result, nil
}

func (r *Runner) fromCache(ctx context.Context, key string, g *unitgraph.Graph, result *Result) bool {
	var entry cachedPlan
	if err := cache.GetJSON(ctx, r.Cache, key, &entry); err != nil {
		observability.Cache().OnCacheMiss(ctx, "plan")
		return false
	}
	p, err := entry.Plan.Partition(g)
	if err != nil {
		observability.Cache().OnCacheMiss(ctx, "plan")
		return false
	}
	observability.Cache().OnCacheHit(ctx, "plan")
	result.Partition = p
	result.Diagnostics = entry.Diagnostics
	result.CacheInfo.PlanHit = true
	return true
}

func outcome(r *Result) observability.DrawOutcome {
	return observability.DrawOutcome{
		Reason:    string(r.Diagnostics.Reason),
		Deviation: r.Diagnostics.Deviation,
		Rounds:    r.Diagnostics.Rounds,
		Issues:    len(r.Diagnostics.Issues),
		CacheHit:  r.CacheInfo.PlanHit,
	}
}

// GraphHash returns the content hash of g's canonical JSON encoding.
func GraphHash(g *unitgraph.Graph) (string, error) {
	h := cache.NewHasher()
	if err := mdio.WriteJSON(g, "", h); err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "hash graph")
	}
	return h.Sum(), nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
