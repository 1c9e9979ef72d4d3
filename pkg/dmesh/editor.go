package dmesh

import (
	"fmt"
	"slices"

	"github.com/philipparndt/meshcut/pkg/geometry"
)

// DisconnectTriangles detaches the given triangles from the rest of the mesh
// by duplicating every vertex they share with an unselected triangle. It
// returns the map from original to duplicated vertex.
func (m *Mesh) DisconnectTriangles(tris []int) (map[int]int, error) {
	selected := make(map[int]struct{}, len(tris))
	for _, tid := range tris {
		if !m.IsTriangle(tid) {
			return nil, fmt.Errorf("disconnect triangle %d: %w", tid, ErrNotATriangle)
		}
		selected[tid] = struct{}{}
	}

	var shared []int
	seen := make(map[int]struct{})
	for _, tid := range tris {
		for _, v := range m.triangles[tid] {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			for _, vt := range m.VertexTriangles(v) {
				if _, ok := selected[vt]; !ok {
					shared = append(shared, v)
					break
				}
			}
		}
	}
	slices.Sort(shared)

	dup := make(map[int]int, len(shared))
	for _, v := range shared {
		dup[v] = m.AppendVertex(m.vertices[v])
	}

	for _, tid := range tris {
		tv := m.triangles[tid]
		changed := false
		for j, v := range tv {
			if nv, ok := dup[v]; ok {
				tv[j] = nv
				changed = true
			}
		}
		if !changed {
			continue
		}
		if err := m.SetTriangle(tid, tv, false); err != nil {
			return dup, fmt.Errorf("disconnect triangle %d: %w", tid, err)
		}
	}
	return dup, nil
}

// TriangleVertexSet returns the distinct vertices used by tris in ascending order.
func (m *Mesh) TriangleVertexSet(tris []int) []int {
	set := make(map[int]struct{})
	for _, tid := range tris {
		for _, v := range m.triangles[tid] {
			set[v] = struct{}{}
		}
	}
	out := make([]int, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

// TranslateVertices moves every listed vertex by offset.
func (m *Mesh) TranslateVertices(vids []int, offset geometry.Vector3) {
	for _, v := range vids {
		m.vertices[v] = m.vertices[v].Add(offset)
	}
}
