package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/matzehuels/mapdraw/pkg/cache"
	"github.com/matzehuels/mapdraw/pkg/districting"
	"github.com/matzehuels/mapdraw/pkg/errors"
	"github.com/matzehuels/mapdraw/pkg/unitgraph"
)

func drawnPlan(t *testing.T) (*unitgraph.Graph, *Plan) {
	t.Helper()
	g, err := unitgraph.NewGrid(3, 3, func(int, int) int { return 100 })
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	res, err := districting.Run(context.Background(), g, districting.Config{
		NumDistricts:     3,
		AllowedDeviation: 10,
		Seed:             7,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	opts := cache.PlanKeyOpts{NumDistricts: 3, AllowedDeviation: 10, Seed: 7}
	return g, NewPlan(res.Partition, res.Diagnostics, "abc123", opts)
}

func TestNewPlanReplays(t *testing.T) {
	g, pl := drawnPlan(t)
	if len(pl.Assignments) != g.Len() {
		t.Fatalf("assignments = %d, want %d", len(pl.Assignments), g.Len())
	}
	p, err := pl.Partition(g)
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	for _, row := range pl.Assignments {
		a, _ := p.Get(row.Unit)
		d, _ := a.District()
		if int(d) != row.District {
			t.Errorf("unit %s: district %d, want %d", row.Unit, d, row.District)
		}
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	_, first := drawnPlan(t)
	_, second := drawnPlan(t)
	if err := s.Put(ctx, first); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Put(ctx, second); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if first.ID == "" || first.ID == second.ID {
		t.Fatalf("ids not assigned: %q %q", first.ID, second.ID)
	}

	t.Run("get", func(t *testing.T) {
		got, err := s.Get(ctx, first.ID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.GraphHash != "abc123" || got.NumDistricts != 3 {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("list newest first", func(t *testing.T) {
		got, err := s.List(ctx, 0)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(got) != 2 || got[0].ID != second.ID {
			t.Errorf("List order wrong: %v", ids(got))
		}
		got, _ = s.List(ctx, 1)
		if len(got) != 1 {
			t.Errorf("List(1) = %d plans", len(got))
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := s.Delete(ctx, first.ID); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, err := s.Get(ctx, first.ID); !errors.Is(err, errors.ErrCodeNotFound) {
			t.Errorf("Get after delete: %v, want NOT_FOUND", err)
		}
		if err := s.Delete(ctx, first.ID); !errors.Is(err, errors.ErrCodeNotFound) {
			t.Errorf("second Delete: %v, want NOT_FOUND", err)
		}
	})
}

func TestPlanBSONRoundTrip(t *testing.T) {
	g, pl := drawnPlan(t)
	pl.ID = "plan-1"
	pl.Dataset = "GA"
	pl.CreatedAt = time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

	raw, err := bson.Marshal(pl)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("Unmarshal doc: %v", err)
	}
	if doc["_id"] != "plan-1" {
		t.Errorf("_id = %v", doc["_id"])
	}

	var back Plan
	if err := bson.Unmarshal(raw, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !back.CreatedAt.Equal(pl.CreatedAt) || back.Options != pl.Options {
		t.Errorf("round trip lost fields: %+v", back)
	}
	if back.Diagnostics.Reason != pl.Diagnostics.Reason || back.Diagnostics.Deviation != pl.Diagnostics.Deviation {
		t.Errorf("diagnostics = %+v, want %+v", back.Diagnostics, pl.Diagnostics)
	}

	want, _ := pl.Partition(g)
	got, err := back.Partition(g)
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	if !got.Equal(want) {
		t.Error("decoded plan replays to a different partition")
	}
}

func TestNewMongoStoreBadURI(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := NewMongoStore(ctx, "not-a-uri", ""); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("err = %v, want INVALID_CONFIG", err)
	}
}

func ids(pls []*Plan) []string {
	out := make([]string, len(pls))
	for i, pl := range pls {
		out[i] = pl.ID
	}
	return out
}

func TestNewPlanSummary(t *testing.T) {
	_, pl := drawnPlan(t)
	if pl.Summary.NumDistricts != 3 || pl.Summary.Statewide.Population != 900 {
		t.Errorf("summary = %+v", pl.Summary)
	}
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "plans")
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	_, first := drawnPlan(t)
	_, second := drawnPlan(t)
	for _, pl := range []*Plan{first, second} {
		if err := s.Put(ctx, pl); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, first.ID+".json")); err != nil {
		t.Fatalf("plan file missing: %v", err)
	}

	got, err := s.Get(ctx, first.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Assignments) != len(first.Assignments) {
		t.Errorf("assignments = %d, want %d", len(got.Assignments), len(first.Assignments))
	}
	if got.Summary.Statewide.Population != 900 {
		t.Errorf("summary not restored: population %d", got.Summary.Statewide.Population)
	}
	if !got.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, first.CreatedAt)
	}

	// Stray files are ignored.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	list, err := s.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].ID != second.ID {
		t.Errorf("List order wrong: %v", ids(list))
	}

	if err := s.Delete(ctx, first.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, first.ID); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Get after delete: %v, want NOT_FOUND", err)
	}
}

func TestFileStoreRejectsPaths(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if _, err := s.Get(ctx, "../secret"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Get(../secret) = %v, want NOT_FOUND", err)
	}
	if err := s.Delete(ctx, "../secret"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Delete(../secret) = %v, want NOT_FOUND", err)
	}
	_, pl := drawnPlan(t)
	pl.ID = "../../escape"
	if err := s.Put(ctx, pl); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Put(bad id) = %v, want INVALID_INPUT", err)
	}
}
