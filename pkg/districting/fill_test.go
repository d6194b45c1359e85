package districting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/mapdraw/pkg/errors"
	"github.com/matzehuels/mapdraw/pkg/partition"
)

func TestFillGapsPrefersSmallest(t *testing.T) {
	p := newPartition(t, grid(t, 5, 1), 2)
	assignAll(p, 1, 0, 0, 0, 2)

	rep, err := FillGaps(p, NewRand(1), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Rounds)
	assert.Equal(t, []int{3}, rep.Filled)
	assert.Equal(t, partition.Mapping{
		"r0c0": 1, "r0c1": 1, "r0c2": 1, "r0c3": 2, "r0c4": 2,
	}, p.Mapping())
}

func TestFillGapsProgressIsMonotonic(t *testing.T) {
	p := newPartition(t, grid(t, 5, 1), 1)
	p.Assign(4, 1)

	rep, err := FillGaps(p, NewRand(1), nil)
	require.NoError(t, err)
	assert.Equal(t, 4, rep.Rounds)
	assert.Equal(t, []int{1, 1, 1, 1}, rep.Filled)
	for _, n := range rep.Filled {
		assert.Positive(t, n)
	}
	assert.True(t, p.IsComplete())
}

func TestFillGapsTieBreak(t *testing.T) {
	seen := map[partition.District]bool{}
	for seed := uint64(1); seed <= 30; seed++ {
		p := newPartition(t, grid(t, 3, 1), 2)
		assignAll(p, 1, 0, 2)
		_, err := FillGaps(p, NewRand(seed), nil)
		require.NoError(t, err)
		d, ok := p.At(1).District()
		require.True(t, ok)
		seen[d] = true
	}
	assert.Len(t, seen, 2, "equal neighbors are chosen at random")
}

func TestFillGapsUnresolvable(t *testing.T) {
	p := newPartition(t, twoIslands(t), 1)
	assignAll(p, 1, 1, 1, 1)

	rep, err := FillGaps(p, NewRand(1), nil)
	assert.True(t, errors.Is(err, errors.ErrCodeUnresolvableGap))
	assert.Equal(t, []int{4, 5, 6, 7}, rep.Unresolved)
	assert.Equal(t, []int{0}, rep.Filled)
}
