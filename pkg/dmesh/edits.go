package dmesh

import (
	"github.com/philipparndt/meshcut/pkg/geometry"
)

// EdgeSplitInfo describes the elements touched by SplitEdge.
type EdgeSplitInfo struct {
	OriginalEdge      int
	OriginalVertices  [2]int // in the orientation of the first triangle
	OriginalTriangles [2]int
	OtherVertices     [2]int // opposite vertices, InvalidID on a boundary
	NewVertex         int
	// NewEdges holds the new edges (f,b), (f,c) and (d,f); the last is
	// InvalidID on a boundary. The original edge now joins a and f.
	NewEdges     [3]int
	NewTriangles [2]int
	IsBoundary   bool
	SplitT       float64
}

// SplitEdge inserts a vertex on eab at parameter t, measured from the lower
// vertex id towards the higher one, and splits both adjacent triangles.
// Existing triangles keep their ids and keep the half touching the first
// oriented vertex.
func (m *Mesh) SplitEdge(eab int, t float64) (EdgeSplitInfo, error) {
	if !m.IsEdge(eab) {
		return EdgeSplitInfo{}, ErrNotAnEdge
	}
	e := m.edges[eab]
	t0 := e.t[0]
	if t0 == InvalidID {
		return EdgeSplitInfo{}, ErrBrokenTopology
	}
	a, b := e.v[0], e.v[1]
	t0v := m.triangles[t0]
	c := otherVertex(t0v, a, b)
	if !isOrderedInTriangle(t0v, a, b) {
		a, b = b, a
		t = 1 - t
	}

	info := EdgeSplitInfo{
		OriginalEdge:      eab,
		OriginalVertices:  [2]int{a, b},
		OriginalTriangles: [2]int{t0, InvalidID},
		OtherVertices:     [2]int{c, InvalidID},
		NewEdges:          [3]int{InvalidID, InvalidID, InvalidID},
		NewTriangles:      [2]int{InvalidID, InvalidID},
		SplitT:            t,
	}

	f := m.AppendVertex(m.vertices[a].Lerp(m.vertices[b], t))
	info.NewVertex = f

	ebc := m.findEdgeFromTri(b, c, t0)
	uv0 := m.splitCornerUVs(t0, a, b, t)

	m.replaceTriangleVertex(t0, b, f)
	t2 := m.addTriangle([3]int{f, b, c}, m.groups[t0])
	m.inheritAttributes(t2, t0, [3]geometry.Vector2{uv0.f, uv0.b, uv0.other})
	m.replaceEdgeTriangle(ebc, t0, t2)

	// the original edge becomes (a, f)
	m.replaceEdgeVertex(eab, b, f)
	m.vertexEdges[b] = removeValue(m.vertexEdges[b], eab)
	m.vertexEdges[f] = append(m.vertexEdges[f], eab)

	if e.t[1] == InvalidID {
		efb := m.addEdge(f, b, t2, InvalidID)
		efc := m.addEdge(f, c, t0, t2)
		m.replaceTriangleEdge(t0, ebc, efc)
		m.triEdges[t2] = [3]int{efb, ebc, efc}

		info.IsBoundary = true
		info.NewEdges = [3]int{efb, efc, InvalidID}
		info.NewTriangles[0] = t2
		return info, nil
	}

	t1 := e.t[1]
	t1v := m.triangles[t1]
	d := otherVertex(t1v, a, b)
	edb := m.findEdgeFromTri(d, b, t1)
	uv1 := m.splitCornerUVs(t1, a, b, t)

	m.replaceTriangleVertex(t1, b, f)
	t3 := m.addTriangle([3]int{f, d, b}, m.groups[t1])
	m.inheritAttributes(t3, t1, [3]geometry.Vector2{uv1.f, uv1.other, uv1.b})
	m.replaceEdgeTriangle(edb, t1, t3)

	efb := m.addEdge(f, b, t2, t3)
	efc := m.addEdge(f, c, t0, t2)
	edf := m.addEdge(d, f, t1, t3)
	m.replaceTriangleEdge(t0, ebc, efc)
	m.replaceTriangleEdge(t1, edb, edf)
	m.triEdges[t2] = [3]int{efb, ebc, efc}
	m.triEdges[t3] = [3]int{edf, edb, efb}

	info.OriginalTriangles[1] = t1
	info.OtherVertices[1] = d
	info.NewEdges = [3]int{efb, efc, edf}
	info.NewTriangles = [2]int{t2, t3}
	return info, nil
}

// splitUVs holds the corner UVs of a triangle about to be split, keyed by role.
type splitUVs struct {
	f, b, other geometry.Vector2
}

// splitCornerUVs interpolates the UV of the new vertex inside tid and updates
// the corner that now holds it.
func (m *Mesh) splitCornerUVs(tid, a, b int, t float64) splitUVs {
	if !m.hasUVs {
		return splitUVs{}
	}
	tv := m.triangles[tid]
	uv := m.uvs[tid]
	var ia, ib, io int
	for j, v := range tv {
		switch v {
		case a:
			ia = j
		case b:
			ib = j
		default:
			io = j
		}
	}
	s := splitUVs{f: uv[ia].Lerp(uv[ib], t), b: uv[ib], other: uv[io]}
	m.uvs[tid][ib] = s.f
	return s
}

// inheritAttributes copies the material of src into its new half dst and
// sets the corner UVs of dst.
func (m *Mesh) inheritAttributes(dst, src int, uv [3]geometry.Vector2) {
	if m.hasMaterials {
		m.materials[dst] = m.materials[src]
	}
	if m.hasUVs {
		m.uvs[dst] = uv
	}
}

// EdgeCollapseInfo describes the elements touched by CollapseEdge.
type EdgeCollapseInfo struct {
	KeptVertex       int
	RemovedVertex    int
	CollapsedEdge    int
	RemovedTriangles [2]int
	RemovedEdges     [2]int // (a,c) and (a,d)
	KeptEdges        [2]int // (b,c) and (b,d)
	IsBoundary       bool
	CollapseT        float64
}

// CollapseEdge merges vRemove into vKeep along their shared edge and moves
// vKeep to the interpolated position at t (0 keeps vKeep where it is).
// Collapses that would produce non-manifold topology are refused.
func (m *Mesh) CollapseEdge(vKeep, vRemove int, t float64) (EdgeCollapseInfo, error) {
	if !m.IsVertex(vKeep) || !m.IsVertex(vRemove) {
		return EdgeCollapseInfo{}, ErrNotAVertex
	}
	b, a := vKeep, vRemove
	eab := m.FindEdge(a, b)
	if eab == InvalidID {
		return EdgeCollapseInfo{}, ErrNotAnEdge
	}

	t0 := m.edges[eab].t[0]
	if t0 == InvalidID {
		return EdgeCollapseInfo{}, ErrBrokenTopology
	}
	c := otherVertex(m.triangles[t0], a, b)

	d := InvalidID
	t1 := m.edges[eab].t[1]
	boundary := t1 == InvalidID
	if !boundary {
		d = otherVertex(m.triangles[t1], a, b)
		if c == d {
			return EdgeCollapseInfo{}, ErrDuplicateTriangle
		}
	}

	// link condition: a and b may only share c and d as neighbours
	eac, ead := InvalidID, InvalidID
	for _, ea := range m.vertexEdges[a] {
		x := m.otherEdgeVertex(ea, a)
		switch x {
		case b:
			continue
		case c:
			eac = ea
			continue
		case d:
			ead = ea
			continue
		}
		for _, eb := range m.vertexEdges[b] {
			if m.otherEdgeVertex(eb, b) == x {
				return EdgeCollapseInfo{}, ErrInvalidNeighbourhood
			}
		}
	}

	if !boundary && len(m.vertexEdges[a]) == 3 {
		if edc := m.FindEdge(d, c); edc != InvalidID && m.edges[edc].t[1] != InvalidID {
			et := m.edges[edc].t
			if (m.triangleHasVertex(et[0], a) && m.triangleHasVertex(et[1], b)) ||
				(m.triangleHasVertex(et[0], b) && m.triangleHasVertex(et[1], a)) {
				return EdgeCollapseInfo{}, ErrCollapseTetrahedron
			}
		}
	} else if boundary && eac != InvalidID && m.IsBoundaryEdge(eac) {
		if ebc := m.findEdgeFromTri(b, c, t0); ebc != InvalidID && m.IsBoundaryEdge(ebc) {
			return EdgeCollapseInfo{}, ErrCollapseTriangle
		}
	}

	if !boundary && m.IsBoundaryVertex(a) && m.IsBoundaryVertex(b) {
		return EdgeCollapseInfo{}, ErrInvalidNeighbourhood
	}

	collapsed := m.vertices[b].Lerp(m.vertices[a], t)

	// move every element of a over to b
	tac, tad := InvalidID, InvalidID
	for _, ea := range m.VertexEdges(a) {
		x := m.otherEdgeVertex(ea, a)
		switch {
		case x == b:
			m.vertexEdges[b] = removeValue(m.vertexEdges[b], ea)
		case x == c:
			m.vertexEdges[c] = removeValue(m.vertexEdges[c], ea)
			tac = m.otherEdgeTriangle(ea, t0)
		case x == d:
			m.vertexEdges[d] = removeValue(m.vertexEdges[d], ea)
			tad = m.otherEdgeTriangle(ea, t1)
		default:
			m.replaceEdgeVertex(ea, a, b)
			m.vertexEdges[b] = append(m.vertexEdges[b], ea)
		}
		for _, tj := range m.edges[ea].t {
			if tj != InvalidID && tj != t0 && tj != t1 && m.triangleHasVertex(tj, a) {
				m.replaceTriangleVertex(tj, a, b)
			}
		}
	}

	info := EdgeCollapseInfo{
		KeptVertex:       b,
		RemovedVertex:    a,
		CollapsedEdge:    eab,
		RemovedTriangles: [2]int{t0, t1},
		RemovedEdges:     [2]int{eac, ead},
		KeptEdges:        [2]int{InvalidID, InvalidID},
		IsBoundary:       boundary,
		CollapseT:        t,
	}

	ebc := m.findEdgeFromTri(b, c, t0)
	ebd := InvalidID
	if !boundary {
		ebd = m.findEdgeFromTri(b, d, t1)
	}

	m.killVertex(a)
	m.killTriangle(t0)
	m.killEdge(eab)
	m.killEdge(eac)
	m.replaceEdgeTriangle(ebc, t0, tac)
	if tac != InvalidID {
		m.replaceTriangleEdge(tac, eac, ebc)
	}
	if !boundary {
		m.killTriangle(t1)
		m.killEdge(ead)
		m.replaceEdgeTriangle(ebd, t1, tad)
		if tad != InvalidID {
			m.replaceTriangleEdge(tad, ead, ebd)
		}
	}
	info.KeptEdges = [2]int{ebc, ebd}

	m.vertices[b] = collapsed
	return info, nil
}

func isOrderedInTriangle(tv [3]int, a, b int) bool {
	for j := 0; j < 3; j++ {
		if tv[j] == a && tv[(j+1)%3] == b {
			return true
		}
	}
	return false
}
