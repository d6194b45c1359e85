package partition

import (
	"github.com/matzehuels/mapdraw/pkg/errors"
	"github.com/matzehuels/mapdraw/pkg/unitgraph"
)

// Mapping is the persisted form of a partition: unit id to district number,
// with 0 meaning unassigned.
type Mapping map[string]int

// Mapping returns the unit → district table for every unit.
func (p *Partition) Mapping() Mapping {
	m := make(Mapping, len(p.assign))
	for i, d := range p.assign {
		m[p.g.ID(i)] = int(d)
	}
	return m
}

// FromMapping rebuilds a partition of g into n districts from m.
//
// The mapping must cover exactly the units of g and only use districts in
// 0..n. Replaying the mapping returned by [Partition.Mapping] restores an
// identical partition.
func FromMapping(g *unitgraph.Graph, n int, m Mapping) (*Partition, error) {
	p, err := New(g, n)
	if err != nil {
		return nil, err
	}
	if len(m) != g.Len() {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"mapping covers %d units, graph has %d", len(m), g.Len())
	}
	for id, d := range m {
		i, ok := g.Index(id)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "mapping references unknown unit %q", id)
		}
		if d < 0 || d > n {
			return nil, errors.New(errors.ErrCodeInvalidInput,
				"unit %q mapped to district %d, want 0..%d", id, d, n)
		}
		p.assign[i] = District(d)
	}
	return p, nil
}

// MaxDistrict returns the largest district number used in m.
func (m Mapping) MaxDistrict() int {
	hi := 0
	for _, d := range m {
		hi = max(hi, d)
	}
	return hi
}
