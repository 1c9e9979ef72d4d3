package dmesh

import "slices"

// ConnectFunc reports whether the triangles t0 and t1, which share edge eid,
// belong to the same component.
type ConnectFunc func(t0, t1, eid int) bool

// ConnectedComponents partitions tris into edge-connected components. Only
// triangles in tris are visited. A nil connect joins across every shared
// edge. Components are ordered by their smallest triangle id and each lists
// its triangles in ascending order.
func (m *Mesh) ConnectedComponents(tris []int, connect ConnectFunc) [][]int {
	member := make(map[int]bool, len(tris))
	for _, tid := range tris {
		if m.IsTriangle(tid) {
			member[tid] = false
		}
	}
	seeds := make([]int, 0, len(member))
	for tid := range member {
		seeds = append(seeds, tid)
	}
	slices.Sort(seeds)

	var components [][]int
	for _, seed := range seeds {
		if member[seed] {
			continue
		}
		member[seed] = true
		component := []int{seed}
		stack := []int{seed}
		for len(stack) > 0 {
			tid := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, eid := range m.triEdges[tid] {
				nb := m.otherEdgeTriangle(eid, tid)
				if nb == InvalidID {
					continue
				}
				visited, ok := member[nb]
				if !ok || visited {
					continue
				}
				if connect != nil && !connect(tid, nb, eid) {
					continue
				}
				member[nb] = true
				component = append(component, nb)
				stack = append(stack, nb)
			}
		}
		slices.Sort(component)
		components = append(components, component)
	}
	return components
}

// Components partitions the whole mesh into edge-connected components.
func (m *Mesh) Components() [][]int {
	return m.ConnectedComponents(m.TriangleIDs(), nil)
}
