package districting

import (
	"cmp"
	"slices"

	"github.com/matzehuels/mapdraw/pkg/partition"
)

// Contiguity is the connected-components breakdown of one district.
type Contiguity struct {
	District partition.District `json:"district"`
	// Sizes holds the unit count of each connected piece, largest first.
	Sizes []int `json:"sizes"`
}

// Contiguous reports whether the district is empty or a single piece.
func (c Contiguity) Contiguous() bool { return len(c.Sizes) <= 1 }

// CheckContiguity scans every district for disconnected pieces. Orphan
// repair only handles single-unit islands; this is how multi-unit islands
// are found. It never modifies p.
func CheckContiguity(p *partition.Partition) []Contiguity {
	g := p.Graph()
	out := make([]Contiguity, 0, p.NumDistricts())
	for d := partition.District(1); int(d) <= p.NumDistricts(); d++ {
		comps := g.ComponentsWhere(func(i int) bool {
			got, _ := p.At(i).District()
			return got == d
		})
		c := Contiguity{District: d, Sizes: make([]int, 0, len(comps))}
		for _, comp := range comps {
			c.Sizes = append(c.Sizes, len(comp))
		}
		slices.SortFunc(c.Sizes, func(a, b int) int { return cmp.Compare(b, a) })
		out = append(out, c)
	}
	return out
}

// Islands returns the districts split into more than one piece.
func Islands(p *partition.Partition) []Contiguity {
	var out []Contiguity
	for _, c := range CheckContiguity(p) {
		if !c.Contiguous() {
			out = append(out, c)
		}
	}
	return out
}
