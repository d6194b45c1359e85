// Package stats summarizes a partition district by district: population,
// unit counts, secondary attribute sums, two-party margin and density.
package stats

import (
	"slices"

	"github.com/matzehuels/mapdraw/pkg/partition"
)

// DefaultAreaKey is the attribute read as unit area for density.
const DefaultAreaKey = "area"

// Options selects which attributes feed the derived columns.
type Options struct {
	// PartyA and PartyB name the vote-count attributes compared by the
	// margin. The margin is omitted unless both are set.
	PartyA string `json:"party_a,omitempty" toml:"party_a"`
	PartyB string `json:"party_b,omitempty" toml:"party_b"`
	// AreaKey names the area attribute. Empty means DefaultAreaKey.
	AreaKey string `json:"area_key,omitempty" toml:"area_key"`
}

// Row is the summary of one district, or of the whole map.
type Row struct {
	District   int                `json:"district"` // 0 for the statewide row
	Units      int                `json:"units"`
	Population int                `json:"population"`
	Deviation  int                `json:"deviation"` // population - target
	Attrs      map[string]float64 `json:"attrs,omitempty"`
	Margin     *float64           `json:"margin,omitempty"`
	Density    *float64           `json:"density,omitempty"`
}

// Summary is the statistics table of a partition.
type Summary struct {
	NumDistricts int   `json:"num_districts"`
	Target       int   `json:"target"`
	Deviation    int   `json:"deviation"`
	Unassigned   int   `json:"unassigned"`
	Districts    []Row `json:"districts"`
	Statewide    Row   `json:"statewide"`
}

// Margin returns (a-b)/(a+b), from -1 to 1. Two zero totals give 0.
func Margin(a, b float64) float64 {
	if a+b == 0 {
		return 0
	}
	return (a - b) / (a + b)
}

// Density returns population per unit of area, or 0 for zero area.
func Density(population int, area float64) float64 {
	if area == 0 {
		return 0
	}
	return float64(population) / area
}

// Summarize computes the statistics of every district of p. Unassigned
// units count only toward the statewide row.
func Summarize(p *partition.Partition, opts Options) Summary {
	if opts.AreaKey == "" {
		opts.AreaKey = DefaultAreaKey
	}
	g := p.Graph()
	keys := g.AttrKeys()

	rows := make([]Row, p.NumDistricts())
	for k := range rows {
		rows[k] = Row{District: k + 1, Attrs: make(map[string]float64, len(keys))}
	}
	state := Row{Attrs: make(map[string]float64, len(keys))}

	for i := 0; i < p.Len(); i++ {
		add(&state, g.PopulationAt(i), keys, func(key string) float64 { return g.AttrAt(i, key) })
		if d, ok := p.At(i).District(); ok {
			add(&rows[d-1], g.PopulationAt(i), keys, func(key string) float64 { return g.AttrAt(i, key) })
		}
	}

	target := p.Target()
	for k := range rows {
		finish(&rows[k], target, keys, opts)
	}
	finish(&state, 0, keys, opts)
	state.Deviation = 0

	return Summary{
		NumDistricts: p.NumDistricts(),
		Target:       target,
		Deviation:    p.Deviation(),
		Unassigned:   p.UnassignedCount(),
		Districts:    rows,
		Statewide:    state,
	}
}

func add(r *Row, pop int, keys []string, attr func(string) float64) {
	r.Units++
	r.Population += pop
	for _, k := range keys {
		r.Attrs[k] += attr(k)
	}
}

func finish(r *Row, target int, keys []string, opts Options) {
	r.Deviation = r.Population - target
	if opts.PartyA != "" && opts.PartyB != "" {
		m := Margin(r.Attrs[opts.PartyA], r.Attrs[opts.PartyB])
		r.Margin = &m
	}
	if slices.Contains(keys, opts.AreaKey) {
		d := Density(r.Population, r.Attrs[opts.AreaKey])
		r.Density = &d
	}
	if len(r.Attrs) == 0 {
		r.Attrs = nil
	}
}
