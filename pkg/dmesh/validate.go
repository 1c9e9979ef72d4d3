package dmesh

import (
	"fmt"
	"slices"
)

// CheckValidity verifies the internal cross references of the mesh and
// returns the first inconsistency found.
func (m *Mesh) CheckValidity() error {
	vertices, triangles, edges := 0, 0, 0
	for tid, alive := range m.triAlive {
		if !alive {
			continue
		}
		triangles++
		tv := m.triangles[tid]
		for j := 0; j < 3; j++ {
			a, b := tv[j], tv[(j+1)%3]
			if !m.IsVertex(a) {
				return fmt.Errorf("triangle %d: dead vertex %d: %w", tid, a, ErrBrokenTopology)
			}
			eid := m.triEdges[tid][j]
			if !m.IsEdge(eid) {
				return fmt.Errorf("triangle %d: dead edge %d: %w", tid, eid, ErrBrokenTopology)
			}
			lo, hi := min(a, b), max(a, b)
			if m.edges[eid].v != [2]int{lo, hi} {
				return fmt.Errorf("triangle %d: edge %d does not join %d and %d: %w", tid, eid, a, b, ErrBrokenTopology)
			}
			if m.edges[eid].t[0] != tid && m.edges[eid].t[1] != tid {
				return fmt.Errorf("triangle %d: edge %d does not reference it: %w", tid, eid, ErrBrokenTopology)
			}
		}
	}
	for eid, alive := range m.edgeAlive {
		if !alive {
			continue
		}
		edges++
		e := m.edges[eid]
		if e.v[0] >= e.v[1] {
			return fmt.Errorf("edge %d: unsorted vertices: %w", eid, ErrBrokenTopology)
		}
		if !m.IsTriangle(e.t[0]) {
			return fmt.Errorf("edge %d: dead first triangle %d: %w", eid, e.t[0], ErrBrokenTopology)
		}
		if e.t[1] != InvalidID && !m.IsTriangle(e.t[1]) {
			return fmt.Errorf("edge %d: dead second triangle %d: %w", eid, e.t[1], ErrBrokenTopology)
		}
		for _, v := range e.v {
			if !slices.Contains(m.vertexEdges[v], eid) {
				return fmt.Errorf("edge %d: missing from vertex %d: %w", eid, v, ErrBrokenTopology)
			}
		}
	}
	for vid, alive := range m.vertexAlive {
		if !alive {
			continue
		}
		vertices++
		for _, eid := range m.vertexEdges[vid] {
			if !m.IsEdge(eid) {
				return fmt.Errorf("vertex %d: dead edge %d: %w", vid, eid, ErrBrokenTopology)
			}
		}
	}
	if vertices != m.vertexCount || triangles != m.triangleCount || edges != m.edgeCount {
		return fmt.Errorf("element counts out of sync: %w", ErrBrokenTopology)
	}
	return nil
}
