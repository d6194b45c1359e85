package districting

import (
	"math/rand/v2"
	"strings"

	"github.com/matzehuels/mapdraw/pkg/errors"
	"github.com/matzehuels/mapdraw/pkg/partition"
)

// SeedPolicy controls which units may start a district.
type SeedPolicy int

const (
	// DartThrow picks uniformly among all unassigned units.
	DartThrow SeedPolicy = iota
	// Isolated picks only units whose neighbors are all unassigned and not
	// already picked. When no such unit is left it falls back to DartThrow.
	Isolated
)

func (s SeedPolicy) String() string {
	switch s {
	case DartThrow:
		return "dart"
	case Isolated:
		return "isolated"
	default:
		return "unknown"
	}
}

// ParseSeedPolicy accepts "dart" (or "dart-throw") and "isolated".
func ParseSeedPolicy(s string) (SeedPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "dart", "dart-throw":
		return DartThrow, nil
	case "isolated":
		return Isolated, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidConfig, "unknown seed policy %q (want dart or isolated)", s)
}

// PickSeeds returns n distinct unassigned unit indices chosen without
// replacement. It does not modify p.
func PickSeeds(p *partition.Partition, n int, policy SeedPolicy, rng *rand.Rand) ([]int, error) {
	free := p.Unassigned()
	if n > len(free) {
		return nil, errors.New(errors.ErrCodeInvalidConfig,
			"need %d seeds but only %d units are unassigned", n, len(free))
	}

	g := p.Graph()
	picked := make([]bool, p.Len())
	isolated := func(i int) bool {
		if picked[i] {
			return false
		}
		for _, j := range g.NeighborIndices(i) {
			if picked[j] || p.At(j).IsAssigned() {
				return false
			}
		}
		return true
	}

	seeds := make([]int, 0, n)
	for len(seeds) < n {
		var candidates []int
		if policy == Isolated {
			for _, i := range free {
				if isolated(i) {
					candidates = append(candidates, i)
				}
			}
		}
		if len(candidates) == 0 {
			for _, i := range free {
				if !picked[i] {
					candidates = append(candidates, i)
				}
			}
		}
		s := candidates[rng.IntN(len(candidates))]
		picked[s] = true
		seeds = append(seeds, s)
	}
	return seeds, nil
}
