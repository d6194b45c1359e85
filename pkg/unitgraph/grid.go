package unitgraph

import "fmt"

// GridID returns the unit id used by [NewGrid] for column x, row y.
func GridID(x, y int) string { return fmt.Sprintf("r%dc%d", y, x) }

// NewGrid builds a width×height lattice where each cell touches its four
// orthogonal neighbors. population reports the head count of cell (x, y);
// nil gives every cell a population of 1. Units are indexed row-major.
//
// Lattices are the standard synthetic input for exercising districting code:
// their geometry is obvious, and balanced answers are easy to state.
func NewGrid(width, height int, population func(x, y int) int) (*Graph, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("grid dimensions must be positive, got %dx%d", width, height)
	}
	if population == nil {
		population = func(int, int) int { return 1 }
	}

	units := make([]Unit, 0, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var nbrs []string
			for _, d := range [4][2]int{{0, -1}, {-1, 0}, {1, 0}, {0, 1}} {
				nx, ny := x+d[0], y+d[1]
				if nx >= 0 && nx < width && ny >= 0 && ny < height {
					nbrs = append(nbrs, GridID(nx, ny))
				}
			}
			units = append(units, Unit{
				ID:         GridID(x, y),
				Population: population(x, y),
				Neighbors:  nbrs,
			})
		}
	}
	return New(units, WithStrictSymmetry())
}
