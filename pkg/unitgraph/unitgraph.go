package unitgraph

import (
	"maps"
	"slices"

	"github.com/matzehuels/mapdraw/pkg/errors"
)

// Attributes stores secondary per-unit scalars such as vote totals or area.
// Missing keys read as zero.
type Attributes map[string]float64

// Unit is the construction-time description of one areal unit.
type Unit struct {
	ID         string     // Opaque, stable identifier
	Population int        // Non-negative head count
	Attrs      Attributes // Optional secondary scalars
	Neighbors  []string   // Ids of units this one touches or overlaps
}

// Option configures graph construction.
type Option func(*options)

type options struct {
	strict bool
}

// WithStrictSymmetry makes [New] reject one-way adjacency.
func WithStrictSymmetry() Option {
	return func(o *options) { o.strict = true }
}

// Graph is an immutable adjacency graph of areal units.
// The zero value is not usable; construct one with [New].
type Graph struct {
	ids   []string
	index map[string]int
	pops  []int
	attrs []Attributes
	adj   [][]int
	total int
}

// New builds a graph from units. Units keep their slice order as their index.
// Duplicate neighbor entries are collapsed.
func New(units []Unit, opts ...Option) (*Graph, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if len(units) == 0 {
		return nil, errors.New(errors.ErrCodeMalformedGraph, "graph has no units")
	}

	g := &Graph{
		ids:   make([]string, len(units)),
		index: make(map[string]int, len(units)),
		pops:  make([]int, len(units)),
		attrs: make([]Attributes, len(units)),
		adj:   make([][]int, len(units)),
	}

	for i, u := range units {
		if err := errors.ValidateUnitID(u.ID); err != nil {
			return nil, err
		}
		if _, dup := g.index[u.ID]; dup {
			return nil, errors.New(errors.ErrCodeMalformedGraph, "duplicate unit id %q", u.ID)
		}
		if u.Population < 0 {
			return nil, errors.New(errors.ErrCodeMalformedGraph, "unit %q has negative population %d", u.ID, u.Population)
		}
		g.ids[i] = u.ID
		g.index[u.ID] = i
		g.pops[i] = u.Population
		g.total += u.Population
		if len(u.Attrs) > 0 {
			g.attrs[i] = maps.Clone(u.Attrs)
		}
	}

	for i, u := range units {
		nbrs := make([]int, 0, len(u.Neighbors))
		for _, nb := range u.Neighbors {
			j, ok := g.index[nb]
			if !ok {
				return nil, errors.New(errors.ErrCodeMalformedGraph, "unit %q lists unknown neighbor %q", u.ID, nb)
			}
			if j == i {
				return nil, errors.New(errors.ErrCodeMalformedGraph, "unit %q lists itself as a neighbor", u.ID)
			}
			nbrs = append(nbrs, j)
		}
		slices.Sort(nbrs)
		g.adj[i] = slices.Compact(nbrs)
	}

	if o.strict {
		if err := g.checkSymmetry(); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func (g *Graph) checkSymmetry() error {
	for i, nbrs := range g.adj {
		for _, j := range nbrs {
			if _, ok := slices.BinarySearch(g.adj[j], i); !ok {
				return errors.New(errors.ErrCodeMalformedGraph,
					"asymmetric adjacency: %q lists %q but not the reverse", g.ids[i], g.ids[j])
			}
		}
	}
	return nil
}

// Len returns the number of units.
func (g *Graph) Len() int { return len(g.ids) }

// Units returns all unit ids in index order.
func (g *Graph) Units() []string { return slices.Clone(g.ids) }

// ID returns the id of the unit at index i.
func (g *Graph) ID(i int) string { return g.ids[i] }

// Index returns the index of the unit with the given id.
func (g *Graph) Index(id string) (int, bool) {
	i, ok := g.index[id]
	return i, ok
}

// Neighbors returns the ids of the units adjacent to id, or nil when id is unknown.
func (g *Graph) Neighbors(id string) []string {
	i, ok := g.index[id]
	if !ok {
		return nil
	}
	out := make([]string, len(g.adj[i]))
	for k, j := range g.adj[i] {
		out[k] = g.ids[j]
	}
	return out
}

// NeighborIndices returns the sorted neighbor indices of unit i.
// The returned slice is shared with the graph and must not be modified.
func (g *Graph) NeighborIndices(i int) []int { return g.adj[i] }

// Population returns the population of id, or zero when id is unknown.
func (g *Graph) Population(id string) int {
	if i, ok := g.index[id]; ok {
		return g.pops[i]
	}
	return 0
}

// PopulationAt returns the population of the unit at index i.
func (g *Graph) PopulationAt(i int) int { return g.pops[i] }

// TotalPopulation returns the sum of every unit's population.
func (g *Graph) TotalPopulation() int { return g.total }

// AttrAt returns attribute key of the unit at index i (zero when absent).
func (g *Graph) AttrAt(i int, key string) float64 { return g.attrs[i][key] }

// Attr returns attribute key of id (zero when absent or id is unknown).
func (g *Graph) Attr(id, key string) float64 {
	if i, ok := g.index[id]; ok {
		return g.attrs[i][key]
	}
	return 0
}

// AttrKeys returns the sorted union of attribute names across all units.
func (g *Graph) AttrKeys() []string {
	seen := make(map[string]struct{})
	for _, a := range g.attrs {
		for k := range a {
			seen[k] = struct{}{}
		}
	}
	return slices.Sorted(maps.Keys(seen))
}

// Unit returns a copy of the construction description of id.
func (g *Graph) Unit(id string) (Unit, bool) {
	i, ok := g.index[id]
	if !ok {
		return Unit{}, false
	}
	return Unit{
		ID:         id,
		Population: g.pops[i],
		Attrs:      maps.Clone(g.attrs[i]),
		Neighbors:  g.Neighbors(id),
	}, true
}

// EdgeCount returns the number of undirected adjacencies.
// One-way adjacencies count as one edge.
func (g *Graph) EdgeCount() int {
	n := 0
	for i, nbrs := range g.adj {
		for _, j := range nbrs {
			if j > i {
				n++
			} else if _, ok := slices.BinarySearch(g.adj[j], i); !ok {
				n++
			}
		}
	}
	return n
}
