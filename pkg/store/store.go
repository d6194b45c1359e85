// Package store persists drawn plans for the HTTP API.
//
// A [Plan] holds everything needed to serve a plan again: its unit →
// district table, the options and graph hash it was drawn from, and the
// run diagnostics. [MemoryStore] keeps plans in process, [FileStore] writes
// one JSON file per plan for a single server, and [MongoStore] keeps them in
// a MongoDB collection shared by every server replica.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/mapdraw/pkg/cache"
	"github.com/matzehuels/mapdraw/pkg/districting"
	"github.com/matzehuels/mapdraw/pkg/partition"
	"github.com/matzehuels/mapdraw/pkg/stats"
	"github.com/matzehuels/mapdraw/pkg/unitgraph"
)

// DefaultListLimit caps List when no limit is given.
const DefaultListLimit = 50

// UnitDistrict is one row of a stored plan. District 0 means unassigned.
type UnitDistrict struct {
	Unit     string `json:"unit" bson:"unit"`
	District int    `json:"district" bson:"district"`
}

// Plan is a stored districting result.
type Plan struct {
	ID           string                  `json:"id" bson:"_id"`
	CreatedAt    time.Time               `json:"created_at" bson:"created_at"`
	Dataset      string                  `json:"dataset,omitempty" bson:"dataset,omitempty"`
	GraphHash    string                  `json:"graph_hash" bson:"graph_hash"`
	NumDistricts int                     `json:"num_districts" bson:"num_districts"`
	Options      cache.PlanKeyOpts       `json:"options" bson:"options"`
	Assignments  []UnitDistrict          `json:"assignments" bson:"assignments"`
	Diagnostics  districting.Diagnostics `json:"diagnostics" bson:"diagnostics"`

	// Summary is the statistics table computed when the plan was drawn.
	// The graph is not stored, so it cannot be recomputed later.
	Summary stats.Summary `json:"-" bson:"summary"`
}

// NewPlan builds a storable plan from a drawn partition. The id is left
// empty; stores assign one on Put.
func NewPlan(p *partition.Partition, diag districting.Diagnostics, graphHash string, opts cache.PlanKeyOpts) *Plan {
	return NewPlanWithStats(p, diag, graphHash, opts, stats.Options{})
}

// NewPlanWithStats is NewPlan with the statistics table computed under so.
func NewPlanWithStats(p *partition.Partition, diag districting.Diagnostics, graphHash string, opts cache.PlanKeyOpts, so stats.Options) *Plan {
	g := p.Graph()
	rows := make([]UnitDistrict, p.Len())
	for i := range rows {
		d, _ := p.At(i).District()
		rows[i] = UnitDistrict{Unit: g.ID(i), District: int(d)}
	}
	return &Plan{
		GraphHash:    graphHash,
		NumDistricts: p.NumDistricts(),
		Options:      opts,
		Assignments:  rows,
		Diagnostics:  diag,
		Summary:      stats.Summarize(p, so),
	}
}

// Mapping returns the plan as a unit → district table.
func (pl *Plan) Mapping() partition.Mapping {
	m := make(partition.Mapping, len(pl.Assignments))
	for _, row := range pl.Assignments {
		m[row.Unit] = row.District
	}
	return m
}

// Partition replays the plan over g.
func (pl *Plan) Partition(g *unitgraph.Graph) (*partition.Partition, error) {
	return partition.FromMapping(g, pl.NumDistricts, pl.Mapping())
}

// Store persists plans.
type Store interface {
	// Put stores pl, assigning ID and CreatedAt when they are empty.
	Put(ctx context.Context, pl *Plan) error
	// Get returns the plan with the given id, or a NOT_FOUND error.
	Get(ctx context.Context, id string) (*Plan, error)
	// List returns up to limit plans, newest first.
	List(ctx context.Context, limit int) ([]*Plan, error)
	// Delete removes a plan. Deleting a missing plan is a NOT_FOUND error.
	Delete(ctx context.Context, id string) error
	// Close releases backend resources.
	Close(ctx context.Context) error
}

// prepare fills the generated fields of a plan before insertion.
func prepare(pl *Plan, now func() time.Time) {
	if pl.ID == "" {
		pl.ID = uuid.NewString()
	}
	if pl.CreatedAt.IsZero() {
		pl.CreatedAt = now().UTC().Truncate(time.Millisecond)
	}
}
