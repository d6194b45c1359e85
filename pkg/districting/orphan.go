package districting

import (
	"math/rand/v2"
	"slices"

	"github.com/matzehuels/mapdraw/pkg/errors"
	"github.com/matzehuels/mapdraw/pkg/partition"
)

// RepairOrphans reassigns every assigned unit that has no neighbor in its own
// district to a uniformly random neighboring district. Units with no assigned
// neighbor at all are left alone.
//
// Moving one unit can orphan a neighbor already visited, so passes repeat
// until one changes nothing. On symmetric adjacency every move strictly
// increases the number of edges inside a district, so at most EdgeCount+1
// passes are needed and a second call on the result is a no-op. One-way
// adjacency can rotate units forever; after that many passes the repair
// stops with an ORPHAN_CYCLE error and the orphans left in place.
// It returns the number of moves made.
func RepairOrphans(p *partition.Partition, rng *rand.Rand) (int, error) {
	maxPasses := p.Graph().EdgeCount() + 1
	moves := 0
	for pass := 0; pass < maxPasses; pass++ {
		changed := 0
		for i := 0; i < p.Len(); i++ {
			own, ok := p.At(i).District()
			if !ok {
				continue
			}
			nd := p.NeighborDistricts(i)
			if len(nd) == 0 || slices.Contains(nd, own) {
				continue
			}
			p.Assign(i, nd[rng.IntN(len(nd))])
			changed++
		}
		moves += changed
		if changed == 0 {
			return moves, nil
		}
	}
	return moves, errors.New(errors.ErrCodeOrphanCycle,
		"orphan repair did not settle after %d passes (%d units still orphaned); adjacency is likely one-way",
		maxPasses, len(Orphans(p)))
}

// Orphans returns the assigned units that have at least one assigned
// neighbor but none in their own district.
func Orphans(p *partition.Partition) []int {
	var out []int
	for i := 0; i < p.Len(); i++ {
		own, ok := p.At(i).District()
		if !ok {
			continue
		}
		nd := p.NeighborDistricts(i)
		if len(nd) > 0 && !slices.Contains(nd, own) {
			out = append(out, i)
		}
	}
	return out
}
