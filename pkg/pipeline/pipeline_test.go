package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/mapdraw/pkg/cache"
	"github.com/matzehuels/mapdraw/pkg/districting"
	"github.com/matzehuels/mapdraw/pkg/errors"
	mdio "github.com/matzehuels/mapdraw/pkg/io"
	"github.com/matzehuels/mapdraw/pkg/observability"
	"github.com/matzehuels/mapdraw/pkg/stats"
	"github.com/matzehuels/mapdraw/pkg/unitgraph"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"csv", false},
		{"json", false},
		{"svg", true},
		{"CSV", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateStrategyAndPolicy(t *testing.T) {
	tests := []struct {
		value   string
		check   func(string) error
		wantErr bool
	}{
		{"frontier", ValidateStrategy, false},
		{"walk", ValidateStrategy, false},
		{"spiral", ValidateStrategy, true},
		{"dart", ValidateSeedPolicy, false},
		{"isolated", ValidateSeedPolicy, false},
		{"", ValidateSeedPolicy, true},
	}

	for _, tt := range tests {
		err := tt.check(tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("validate(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
		}
	}
}

func TestSetDrawDefaults(t *testing.T) {
	opts := Options{NumDistricts: 3}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.AllowedDeviation != 0 || opts.Seed != 0 {
		t.Errorf("zero deviation and seed must be kept, got %d and %d", opts.AllowedDeviation, opts.Seed)
	}
	if opts.Strategy != DefaultStrategy || opts.SeedPolicy != DefaultSeedPolicy {
		t.Errorf("Strategy = %q, SeedPolicy = %q", opts.Strategy, opts.SeedPolicy)
	}
	if opts.MaxBalanceRounds != DefaultMaxBalanceRounds {
		t.Errorf("MaxBalanceRounds = %d", opts.MaxBalanceRounds)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}

	// Idempotent
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Errorf("second call: %v", err)
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	if opts.AllowedDeviation != DefaultAllowedDeviation || opts.Seed != DefaultSeed {
		t.Errorf("deviation = %d, seed = %d", opts.AllowedDeviation, opts.Seed)
	}
	if opts.Strategy != DefaultStrategy || opts.SeedPolicy != DefaultSeedPolicy || opts.MaxBalanceRounds != DefaultMaxBalanceRounds {
		t.Errorf("unexpected defaults: %+v", opts)
	}
}

func TestValidateForDrawErrors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"no districts", Options{}},
		{"negative deviation", Options{NumDistricts: 2, AllowedDeviation: -1}},
		{"bad strategy", Options{NumDistricts: 2, Strategy: "spiral"}},
		{"bad policy", Options{NumDistricts: 2, SeedPolicy: "corner"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateForDraw()
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("err = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestValidateForLoad(t *testing.T) {
	if err := (&Options{}).ValidateForLoad(); err == nil {
		t.Error("missing source should fail")
	}
	if err := (&Options{Dataset: "../etc"}).ValidateForLoad(); err == nil {
		t.Error("bad dataset code should fail")
	}
	if err := (&Options{Dataset: "GA"}).ValidateForLoad(); err != nil {
		t.Errorf("GA: %v", err)
	}
}

func TestLoadOptions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.toml")
	content := `dataset = "GA"
districts = 14
allowed_deviation = 5000
seed = 7
strategy = "walk"

[stats]
party_a = "dem"
party_b = "rep"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	opts, err := LoadOptions(path)
	if err != nil {
		t.Fatalf("LoadOptions: %v", err)
	}
	if opts.Dataset != "GA" || opts.NumDistricts != 14 || opts.AllowedDeviation != 5000 || opts.Seed != 7 {
		t.Errorf("unexpected options: %+v", opts)
	}
	if opts.Strategy != "walk" || opts.Stats.PartyA != "dem" || opts.Stats.PartyB != "rep" {
		t.Errorf("unexpected options: %+v", opts)
	}

	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("distrcts = 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err = LoadOptions(bad)
	if !errors.Is(err, errors.ErrCodeInvalidConfig) || !strings.Contains(err.Error(), "distrcts") {
		t.Errorf("unknown key err = %v", err)
	}

	if _, err := LoadOptions(filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("missing file should fail")
	}

	tests := []struct {
		name      string
		content   string
		deviation int
		seed      uint64
	}{
		{"omitted keys keep defaults", "districts = 2\n", DefaultAllowedDeviation, DefaultSeed},
		{"explicit zeros are kept", "districts = 2\nallowed_deviation = 0\nseed = 0\n", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "run.toml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			opts, err := LoadOptions(path)
			if err != nil {
				t.Fatal(err)
			}
			if err := opts.ValidateForDraw(); err != nil {
				t.Fatal(err)
			}
			if opts.AllowedDeviation != tt.deviation || opts.Seed != tt.seed {
				t.Errorf("deviation = %d, seed = %d, want %d, %d", opts.AllowedDeviation, opts.Seed, tt.deviation, tt.seed)
			}
		})
	}

	escape := filepath.Join(dir, "escape.toml")
	if err := os.WriteFile(escape, []byte("graph = \"../secret.json\"\ndistricts = 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadOptions(escape); !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("escaping graph path err = %v, want INVALID_PATH", err)
	}
}

func writeGrid(t *testing.T, dir, name, title string, w, h int) string {
	t.Helper()
	g, err := unitgraph.NewGrid(w, h, func(int, int) int { return 100 })
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := mdio.ExportJSON(g, title, path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDatasets(t *testing.T) {
	dir := t.TempDir()
	writeGrid(t, dir, "GA.json", "Georgia", 3, 3)
	writeGrid(t, dir, "AZ.json", "", 2, 2)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	all, err := ListDatasets(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || all[0].Code != "AZ" || all[1].Code != "GA" {
		t.Fatalf("ListDatasets = %+v", all)
	}
	if all[0].Name != "AZ" || all[1].Name != "Georgia" {
		t.Errorf("names = %q, %q", all[0].Name, all[1].Name)
	}

	ds, err := FindDataset(dir, "ga")
	if err != nil || ds.Code != "GA" {
		t.Errorf("FindDataset(ga) = %+v, %v", ds, err)
	}
	if _, err := FindDataset(dir, "NV"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("FindDataset(NV) err = %v", err)
	}

	none, err := ListDatasets(filepath.Join(dir, "missing"))
	if err != nil || len(none) != 0 {
		t.Errorf("missing dir = %v, %v", none, err)
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	loads    int
	outcomes []observability.DrawOutcome
}

func (h *recordingHooks) OnLoadComplete(context.Context, string, int, time.Duration, error) {
	h.loads++
}

func (h *recordingHooks) OnDrawComplete(_ context.Context, o observability.DrawOutcome, _ time.Duration, _ error) {
	h.outcomes = append(h.outcomes, o)
}

func TestRunnerCachesPlans(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	defer observability.Reset()

	dir := t.TempDir()
	writeGrid(t, dir, "GA.json", "Georgia", 4, 4)
	c, err := cache.NewFileCache(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(c, nil, nil)
	defer runner.Close()

	opts := Options{Dataset: "GA", DatasetDir: dir, NumDistricts: 4, AllowedDeviation: 100, Seed: 3}
	first, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if first.CacheInfo.PlanHit {
		t.Error("first run should miss the cache")
	}
	if !first.Partition.IsComplete() || first.Diagnostics.Reason == "" {
		t.Errorf("first run: complete=%v reason=%q", first.Partition.IsComplete(), first.Diagnostics.Reason)
	}

	second, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.PlanHit {
		t.Error("second run should hit the cache")
	}
	if !first.Partition.Equal(second.Partition) {
		t.Error("cached plan differs from drawn plan")
	}
	if first.Diagnostics.Deviation != second.Diagnostics.Deviation || first.GraphHash != second.GraphHash {
		t.Error("cached diagnostics differ")
	}

	opts.Refresh = true
	third, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.PlanHit || !third.Partition.Equal(first.Partition) {
		t.Error("refresh should redraw the identical plan")
	}

	if hooks.loads != 3 || len(hooks.outcomes) != 3 || !hooks.outcomes[1].CacheHit {
		t.Errorf("hooks: loads=%d outcomes=%+v", hooks.loads, hooks.outcomes)
	}
}

func TestRunnerDrawInline(t *testing.T) {
	g, err := unitgraph.NewGrid(3, 3, func(int, int) int { return 100 })
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(nil, nil, nil)
	res, err := runner.Draw(context.Background(), g, Options{NumDistricts: 3, AllowedDeviation: 100})
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if res.Stats.UnitCount != 9 || res.Stats.EdgeCount != 12 {
		t.Errorf("stats = %+v", res.Stats)
	}
	if sum := res.Summary(stats.Options{}); sum.Statewide.Population != 900 {
		t.Errorf("statewide population = %d", sum.Statewide.Population)
	}

	if _, err := runner.Draw(context.Background(), g, Options{NumDistricts: 10}); err == nil {
		t.Error("more districts than units should fail")
	}
}

func TestRunnerDrawHonorsZeroDeviation(t *testing.T) {
	g, err := unitgraph.NewGrid(3, 3, func(int, int) int { return 100 })
	if err != nil {
		t.Fatal(err)
	}
	// 900 people never split evenly into 4 districts of whole units, so a
	// zero allowance can not converge. A defaulted 70000 would converge at once.
	res, err := NewRunner(nil, nil, nil).Draw(context.Background(), g, Options{NumDistricts: 4, AllowedDeviation: 0, Seed: 0})
	if err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if res.Diagnostics.Reason == districting.ReasonConverged {
		t.Errorf("reason = %s with deviation %d; allowed deviation 0 was replaced", res.Diagnostics.Reason, res.Diagnostics.Deviation)
	}
	if res.Diagnostics.Reason != districting.ReasonDeadlock && res.Diagnostics.Deviation == 0 {
		t.Error("deviation 0 is unreachable on a complete plan")
	}
}

func TestGraphHashStable(t *testing.T) {
	a, _ := unitgraph.NewGrid(3, 3, nil)
	b, _ := unitgraph.NewGrid(3, 3, nil)
	c, _ := unitgraph.NewGrid(3, 2, nil)

	ha, err := GraphHash(a)
	if err != nil {
		t.Fatal(err)
	}
	hb, _ := GraphHash(b)
	hc, _ := GraphHash(c)
	if ha != hb {
		t.Error("identical graphs should hash equally")
	}
	if ha == hc {
		t.Error("different graphs should hash differently")
	}
}

func TestExecuteMissingDataset(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	_, err := runner.Execute(context.Background(), Options{Dataset: "NV", DatasetDir: t.TempDir(), NumDistricts: 2})
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("err = %v, want NOT_FOUND", err)
	}
}

func TestExampleConfig(t *testing.T) {
	const config = "../../examples/demo.toml"
	opts, err := LoadOptions(config)
	if err != nil {
		t.Fatalf("LoadOptions: %v", err)
	}
	if want := filepath.Join("..", "..", "examples", "datasets", "DEMO.json"); opts.GraphPath != want {
		t.Errorf("graph path = %q, want %q", opts.GraphPath, want)
	}

	all, err := ListDatasets(filepath.Join(filepath.Dir(config), "datasets"))
	if err != nil {
		t.Fatalf("ListDatasets: %v", err)
	}
	if len(all) != 1 || all[0].Code != "DEMO" || all[0].Name != "Demo County" {
		t.Errorf("datasets = %+v", all)
	}

	res, err := NewRunner(nil, nil, nil).Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Stats.UnitCount != 16 {
		t.Errorf("units = %d, want 16", res.Stats.UnitCount)
	}
	sum := res.Summary(opts.Stats)
	if sum.Statewide.Population != 17500 {
		t.Errorf("population = %d, want 17500", sum.Statewide.Population)
	}
	if sum.Statewide.Margin == nil || sum.Statewide.Density == nil {
		t.Error("margin and density should be computed from the example attributes")
	}
}
