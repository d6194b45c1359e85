package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/mapdraw/pkg/partition"
	"github.com/matzehuels/mapdraw/pkg/unitgraph"
)

func TestMargin(t *testing.T) {
	tests := []struct {
		a, b, want float64
	}{
		{0, 0, 0},
		{10, 0, 1},
		{0, 10, -1},
		{30, 10, 0.5},
		{5, 5, 0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, Margin(tt.a, tt.b), 1e-12, "Margin(%v, %v)", tt.a, tt.b)
	}
}

func TestDensity(t *testing.T) {
	assert.Zero(t, Density(100, 0))
	assert.InDelta(t, 25.0, Density(100, 4), 1e-12)
}

func sample(t *testing.T) *partition.Partition {
	t.Helper()
	g, err := unitgraph.New([]unitgraph.Unit{
		{ID: "a", Population: 100, Attrs: unitgraph.Attributes{"dem": 30, "rep": 10, "area": 2}, Neighbors: []string{"b"}},
		{ID: "b", Population: 200, Attrs: unitgraph.Attributes{"dem": 0, "rep": 0, "area": 0}, Neighbors: []string{"a", "c"}},
		{ID: "c", Population: 300, Attrs: unitgraph.Attributes{"dem": 10, "rep": 30, "area": 3}, Neighbors: []string{"b"}},
	})
	require.NoError(t, err)
	p, err := partition.New(g, 3)
	require.NoError(t, err)
	p.Assign(0, 1)
	p.Assign(1, 2)
	return p
}

func TestSummarize(t *testing.T) {
	s := Summarize(sample(t), Options{PartyA: "dem", PartyB: "rep"})

	assert.Equal(t, 3, s.NumDistricts)
	assert.Equal(t, 200, s.Target)
	assert.Equal(t, 200, s.Deviation)
	assert.Equal(t, 1, s.Unassigned)
	require.Len(t, s.Districts, 3)

	d1 := s.Districts[0]
	assert.Equal(t, 1, d1.Units)
	assert.Equal(t, -100, d1.Deviation)
	require.NotNil(t, d1.Margin)
	assert.InDelta(t, 0.5, *d1.Margin, 1e-12)
	require.NotNil(t, d1.Density)
	assert.InDelta(t, 50.0, *d1.Density, 1e-12)

	d2 := s.Districts[1]
	assert.Zero(t, *d2.Margin, "zero votes on both sides")
	assert.Zero(t, *d2.Density, "zero area")

	d3 := s.Districts[2]
	assert.Zero(t, d3.Units)
	assert.Zero(t, d3.Population)

	assert.Equal(t, 600, s.Statewide.Population)
	assert.Equal(t, 3, s.Statewide.Units)
	assert.InDelta(t, 0.0, *s.Statewide.Margin, 1e-12)
	assert.InDelta(t, 120.0, *s.Statewide.Density, 1e-12)
}

func TestSummarizeWithoutParties(t *testing.T) {
	s := Summarize(sample(t), Options{})
	assert.Nil(t, s.Districts[0].Margin)
	assert.NotNil(t, s.Districts[0].Density)
	assert.Equal(t, 10.0, s.Districts[0].Attrs["rep"])
}
