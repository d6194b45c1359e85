package districting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/mapdraw/pkg/errors"
	"github.com/matzehuels/mapdraw/pkg/partition"
	"github.com/matzehuels/mapdraw/pkg/unitgraph"
)

func TestRepairOrphansCheckerboard(t *testing.T) {
	p := newPartition(t, grid(t, 3, 3), 2)
	assignAll(p, 1, 2, 1, 2, 1, 2, 1, 2, 1)
	require.Len(t, Orphans(p), 9)

	moves, err := RepairOrphans(p, NewRand(1))
	require.NoError(t, err)
	assert.Equal(t, 5, moves)
	assert.Len(t, p.Members(2), 9)
	assert.Empty(t, Orphans(p))
}

func TestRepairOrphansIdempotent(t *testing.T) {
	g := grid(t, 5, 5)
	for seed := uint64(1); seed <= 10; seed++ {
		p := newPartition(t, g, 3)
		rng := NewRand(seed)
		for i := 0; i < p.Len(); i++ {
			p.Assign(i, partition.District(1+rng.IntN(3)))
		}

		_, err := RepairOrphans(p, rng)
		require.NoError(t, err)
		after := p.Clone()
		moves, err := RepairOrphans(p, rng)
		require.NoError(t, err)
		assert.Zero(t, moves, "seed %d", seed)
		assert.True(t, p.Equal(after))

		for i := 0; i < p.Len(); i++ {
			own, _ := p.At(i).District()
			assert.Contains(t, p.NeighborDistricts(i), own, "seed %d unit %d has no same-district neighbor", seed, i)
		}
	}
}

func TestRepairOrphansIgnoresUnassignedSurroundings(t *testing.T) {
	p := newPartition(t, grid(t, 3, 1), 1)
	p.Assign(1, 1)

	moves, err := RepairOrphans(p, NewRand(1))
	require.NoError(t, err)
	assert.Zero(t, moves)
	assert.Empty(t, Orphans(p))
}

func TestRepairOrphansStopsOnOneWayRing(t *testing.T) {
	g, err := unitgraph.New([]unitgraph.Unit{
		{ID: "a", Population: 100, Neighbors: []string{"b"}},
		{ID: "b", Population: 100, Neighbors: []string{"c"}},
		{ID: "c", Population: 100, Neighbors: []string{"a"}},
	})
	require.NoError(t, err)
	p := newPartition(t, g, 3)
	assignAll(p, 1, 2, 3)

	type result struct {
		moves int
		err   error
	}
	done := make(chan result, 1)
	go func() {
		moves, err := RepairOrphans(p, NewRand(1))
		done <- result{moves, err}
	}()

	select {
	case r := <-done:
		assert.True(t, errors.Is(r.err, errors.ErrCodeOrphanCycle), "got %v", r.err)
		// Three units move in each of the EdgeCount+1 = 4 passes.
		assert.Equal(t, 12, r.moves)
		assert.True(t, p.IsComplete())
	case <-time.After(5 * time.Second):
		t.Fatal("RepairOrphans did not return on a one-way ring")
	}
}

func TestCheckContiguity(t *testing.T) {
	p := newPartition(t, grid(t, 3, 3), 2)
	assignAll(p, 1, 2, 1, 1, 2, 1, 1, 2, 1)

	got := CheckContiguity(p)
	require.Len(t, got, 2)
	assert.Equal(t, []int{3, 3}, got[0].Sizes)
	assert.False(t, got[0].Contiguous())
	assert.True(t, got[1].Contiguous())

	islands := Islands(p)
	require.Len(t, islands, 1)
	assert.Equal(t, partition.District(1), islands[0].District)
}
