// Package partition holds the mutable unit → district assignment that every
// districting phase reads and writes.
//
// A [Partition] is created fully unassigned over a [unitgraph.Graph] and a
// fixed district count. District membership and population are never stored:
// they are derived by scanning the assignment each time they are asked for,
// so no phase can observe a stale total after another phase moved a unit.
//
// A Partition is not safe for concurrent use. Exactly one phase owns it at a
// time; ownership passes from growth to gap filling to balancing.
package partition

import (
	"slices"

	"github.com/matzehuels/mapdraw/pkg/errors"
	"github.com/matzehuels/mapdraw/pkg/unitgraph"
)

// Partition maps every unit of a graph to a district or to Unassigned.
type Partition struct {
	g      *unitgraph.Graph
	n      int
	assign []District // 0 means unassigned
}

// New creates an unassigned partition of g into n districts.
// n must be between 1 and the number of units.
func New(g *unitgraph.Graph, n int) (*Partition, error) {
	if g == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "graph is required")
	}
	if n < 1 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "number of districts must be positive, got %d", n)
	}
	if n > g.Len() {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "cannot draw %d districts from %d units", n, g.Len())
	}
	return &Partition{g: g, n: n, assign: make([]District, g.Len())}, nil
}

// Graph returns the graph the partition covers.
func (p *Partition) Graph() *unitgraph.Graph { return p.g }

// NumDistricts returns the number of districts.
func (p *Partition) NumDistricts() int { return p.n }

// Len returns the number of units.
func (p *Partition) Len() int { return len(p.assign) }

// At returns the assignment of the unit at index i.
func (p *Partition) At(i int) Assignment { return Assignment{d: p.assign[i]} }

// Get returns the assignment of the unit with the given id.
func (p *Partition) Get(id string) (Assignment, bool) {
	i, ok := p.g.Index(id)
	if !ok {
		return Unassigned, false
	}
	return p.At(i), true
}

// Assign overwrites the assignment of unit i with district d.
// It panics if d is outside 1..NumDistricts.
func (p *Partition) Assign(i int, d District) {
	if d < 1 || int(d) > p.n {
		panic("partition: district out of range")
	}
	p.assign[i] = d
}

// Set overwrites the assignment of the unit with the given id.
func (p *Partition) Set(id string, a Assignment) error {
	i, ok := p.g.Index(id)
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "unknown unit %q", id)
	}
	if d, ok := a.District(); ok && int(d) > p.n {
		return errors.New(errors.ErrCodeInvalidInput, "district %d out of range 1..%d", d, p.n)
	}
	p.assign[i] = a.d
	return nil
}

// Unassign resets the unit at index i to Unassigned.
func (p *Partition) Unassign(i int) { p.assign[i] = 0 }

// Clear resets every unit to Unassigned.
func (p *Partition) Clear() { clear(p.assign) }

// Population returns the current population of district d.
func (p *Partition) Population(d District) int {
	total := 0
	for i, a := range p.assign {
		if a == d {
			total += p.g.PopulationAt(i)
		}
	}
	return total
}

// Populations returns the population of every district; element k holds
// district k+1.
func (p *Partition) Populations() []int {
	pops := make([]int, p.n)
	for i, a := range p.assign {
		if a != 0 {
			pops[a-1] += p.g.PopulationAt(i)
		}
	}
	return pops
}

// Deviation returns the difference between the most and least populous
// district. A single-district partition has deviation 0.
func (p *Partition) Deviation() int {
	pops := p.Populations()
	return slices.Max(pops) - slices.Min(pops)
}

// Target returns the ideal district population, total / n rounded down.
func (p *Partition) Target() int {
	return TargetPopulation(p.g.TotalPopulation(), p.n)
}

// TargetPopulation returns total / n rounded down.
func TargetPopulation(total, n int) int {
	if n <= 0 {
		return 0
	}
	return total / n
}

// Members returns the indices of units in district d, ascending.
func (p *Partition) Members(d District) []int {
	var out []int
	for i, a := range p.assign {
		if a == d {
			out = append(out, i)
		}
	}
	return out
}

// Unassigned returns the indices of unassigned units, ascending.
func (p *Partition) Unassigned() []int {
	var out []int
	for i, a := range p.assign {
		if a == 0 {
			out = append(out, i)
		}
	}
	return out
}

// UnassignedCount returns the number of unassigned units.
func (p *Partition) UnassignedCount() int {
	n := 0
	for _, a := range p.assign {
		if a == 0 {
			n++
		}
	}
	return n
}

// IsComplete reports whether every unit is assigned.
func (p *Partition) IsComplete() bool { return !slices.Contains(p.assign, 0) }

// NeighborDistricts returns the distinct districts among the neighbors of
// unit i, ascending. Unassigned neighbors are skipped.
func (p *Partition) NeighborDistricts(i int) []District {
	var out []District
	for _, j := range p.g.NeighborIndices(i) {
		if d := p.assign[j]; d != 0 && !slices.Contains(out, d) {
			out = append(out, d)
		}
	}
	slices.Sort(out)
	return out
}

// Frontier returns the unassigned units adjacent to any member of district
// d, ascending.
func (p *Partition) Frontier(d District) []int {
	mark := make([]bool, len(p.assign))
	var out []int
	for i, a := range p.assign {
		if a != d {
			continue
		}
		for _, j := range p.g.NeighborIndices(i) {
			if p.assign[j] == 0 && !mark[j] {
				mark[j] = true
				out = append(out, j)
			}
		}
	}
	slices.Sort(out)
	return out
}

// UnassignedNeighbors returns the unassigned neighbors of unit i, ascending.
func (p *Partition) UnassignedNeighbors(i int) []int {
	var out []int
	for _, j := range p.g.NeighborIndices(i) {
		if p.assign[j] == 0 {
			out = append(out, j)
		}
	}
	return out
}

// Snapshot is an opaque copy of a partition's assignments.
type Snapshot struct {
	assign []District
}

// Snapshot captures the current assignments.
func (p *Partition) Snapshot() Snapshot {
	return Snapshot{assign: slices.Clone(p.assign)}
}

// Restore overwrites every assignment from s. s must come from a partition
// over the same graph and district count.
func (p *Partition) Restore(s Snapshot) {
	copy(p.assign, s.assign)
}

// Clone returns an independent copy sharing the same graph.
func (p *Partition) Clone() *Partition {
	return &Partition{g: p.g, n: p.n, assign: slices.Clone(p.assign)}
}

// Equal reports whether q assigns every unit exactly as p does. The graphs
// may be distinct values, as long as they list the same unit ids in the same
// order.
func (p *Partition) Equal(q *Partition) bool {
	if p.n != q.n || !slices.Equal(p.assign, q.assign) {
		return false
	}
	if p.g == q.g {
		return true
	}
	for i := range p.assign {
		if p.g.ID(i) != q.g.ID(i) {
			return false
		}
	}
	return true
}
