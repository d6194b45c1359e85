package districting

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matzehuels/mapdraw/pkg/partition"
	"github.com/matzehuels/mapdraw/pkg/unitgraph"
)

// grid returns a w×h lattice with 100 people per cell, indexed row-major.
func grid(t *testing.T, w, h int) *unitgraph.Graph {
	t.Helper()
	g, err := unitgraph.NewGrid(w, h, func(int, int) int { return 100 })
	require.NoError(t, err)
	return g
}

// twoIslands returns two disconnected 2×2 blocks: units 0-3 and 4-7.
func twoIslands(t *testing.T) *unitgraph.Graph {
	t.Helper()
	block := func(prefix string) []unitgraph.Unit {
		id := func(k int) string { return prefix + string(rune('a'+k)) }
		return []unitgraph.Unit{
			{ID: id(0), Population: 100, Neighbors: []string{id(1), id(2)}},
			{ID: id(1), Population: 100, Neighbors: []string{id(0), id(3)}},
			{ID: id(2), Population: 100, Neighbors: []string{id(0), id(3)}},
			{ID: id(3), Population: 100, Neighbors: []string{id(1), id(2)}},
		}
	}
	g, err := unitgraph.New(append(block("n"), block("s")...), unitgraph.WithStrictSymmetry())
	require.NoError(t, err)
	return g
}

func newPartition(t *testing.T, g *unitgraph.Graph, n int) *partition.Partition {
	t.Helper()
	p, err := partition.New(g, n)
	require.NoError(t, err)
	return p
}

// assignAll sets unit i to ds[i]; 0 leaves it unassigned.
func assignAll(p *partition.Partition, ds ...partition.District) {
	for i, d := range ds {
		if d != 0 {
			p.Assign(i, d)
		}
	}
}
