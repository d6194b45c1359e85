package unitgraph

// Components returns the connected components of the graph, each as a list of
// unit indices in BFS order. Components are ordered by their smallest index.
// Adjacency is followed in the listed direction only, so a one-way neighbor
// reference still links the two units from the listing side.
func (g *Graph) Components() [][]int {
	return g.ComponentsWhere(func(int) bool { return true })
}

// ComponentsWhere returns the connected components of the subgraph induced by
// the units for which keep returns true.
func (g *Graph) ComponentsWhere(keep func(i int) bool) [][]int {
	seen := make([]bool, len(g.ids))
	var comps [][]int

	for i0 := range g.ids {
		if seen[i0] || !keep(i0) {
			continue
		}
		queue := []int{i0}
		seen[i0] = true
		for qi := 0; qi < len(queue); qi++ {
			u := queue[qi]
			for _, v := range g.adj[u] {
				if !seen[v] && keep(v) {
					seen[v] = true
					queue = append(queue, v)
				}
			}
		}
		comps = append(comps, queue)
	}
	return comps
}
