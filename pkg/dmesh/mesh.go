// Package dmesh implements an indexed, edge-based triangle mesh that supports
// local topological edits (edge split, edge collapse, triangle replacement).
//
// Vertex, edge and triangle ids are dense integers that are never reused while
// the mesh lives: removed elements leave a dead slot behind. This keeps ids
// handed out to callers stable across edits.
package dmesh

import (
	"slices"

	"github.com/philipparndt/meshcut/pkg/geometry"
)

// InvalidID marks an absent vertex, edge or triangle.
const InvalidID = -1

type edge struct {
	v [2]int // sorted, v[0] < v[1]
	t [2]int // t[1] is InvalidID on a boundary edge
}

// Mesh is a manifold-edge triangle mesh with per-triangle groups and
// optional per-triangle material ids and per-corner UVs.
type Mesh struct {
	vertices    []geometry.Vector3
	vertexAlive []bool
	vertexEdges [][]int

	triangles [][3]int
	triEdges  [][3]int
	triAlive  []bool
	groups    []int
	materials []int
	uvs       [][3]geometry.Vector2

	edges     []edge
	edgeAlive []bool

	vertexCount   int
	triangleCount int
	edgeCount     int
	nextGroupID   int

	hasMaterials bool
	hasUVs       bool
}

// New returns an empty mesh.
func New() *Mesh {
	return &Mesh{}
}

// EnableMaterials attaches a per-triangle material layer. Existing triangles get material 0.
func (m *Mesh) EnableMaterials() {
	if m.hasMaterials {
		return
	}
	m.hasMaterials = true
	m.materials = make([]int, len(m.triangles))
}

func (m *Mesh) HasMaterials() bool { return m.hasMaterials }

// EnableUVs attaches a per-triangle-corner UV layer initialised to zero.
func (m *Mesh) EnableUVs() {
	if m.hasUVs {
		return
	}
	m.hasUVs = true
	m.uvs = make([][3]geometry.Vector2, len(m.triangles))
}

func (m *Mesh) HasUVs() bool { return m.hasUVs }

func (m *Mesh) VertexCount() int   { return m.vertexCount }
func (m *Mesh) TriangleCount() int { return m.triangleCount }
func (m *Mesh) EdgeCount() int     { return m.edgeCount }

// MaxVertexID is one past the largest vertex id ever allocated.
func (m *Mesh) MaxVertexID() int   { return len(m.vertices) }
func (m *Mesh) MaxTriangleID() int { return len(m.triangles) }
func (m *Mesh) MaxEdgeID() int     { return len(m.edges) }

func (m *Mesh) IsVertex(vid int) bool {
	return vid >= 0 && vid < len(m.vertices) && m.vertexAlive[vid]
}

func (m *Mesh) IsTriangle(tid int) bool {
	return tid >= 0 && tid < len(m.triangles) && m.triAlive[tid]
}

func (m *Mesh) IsEdge(eid int) bool {
	return eid >= 0 && eid < len(m.edges) && m.edgeAlive[eid]
}

// AppendVertex adds an isolated vertex and returns its id.
func (m *Mesh) AppendVertex(p geometry.Vector3) int {
	m.vertices = append(m.vertices, p)
	m.vertexAlive = append(m.vertexAlive, true)
	m.vertexEdges = append(m.vertexEdges, nil)
	m.vertexCount++
	return len(m.vertices) - 1
}

func (m *Mesh) Vertex(vid int) geometry.Vector3 {
	return m.vertices[vid]
}

func (m *Mesh) SetVertex(vid int, p geometry.Vector3) {
	m.vertices[vid] = p
}

// AppendTriangle adds triangle tv in group gid. It fails without modifying
// the mesh when a vertex is invalid or repeated, when the triangle already
// exists in either winding, or when it would make an edge non-manifold.
func (m *Mesh) AppendTriangle(tv [3]int, gid int) (int, error) {
	if err := m.checkTriangle(tv); err != nil {
		return InvalidID, err
	}
	tid := m.addTriangle(tv, gid)
	m.linkTriangle(tid)
	return tid, nil
}

func (m *Mesh) checkTriangle(tv [3]int) error {
	for _, v := range tv {
		if !m.IsVertex(v) {
			return ErrInvalidTriangle
		}
	}
	if tv[0] == tv[1] || tv[1] == tv[2] || tv[0] == tv[2] {
		return ErrInvalidTriangle
	}
	for j := 0; j < 3; j++ {
		a, b := tv[j], tv[(j+1)%3]
		e := m.FindEdge(a, b)
		if e == InvalidID {
			continue
		}
		for _, t := range m.edges[e].t {
			if t != InvalidID && m.triangleHasVertex(t, tv[(j+2)%3]) {
				return ErrDuplicateTriangle
			}
		}
		// the neighbour must run the shared edge the other way
		if m.edges[e].t[1] != InvalidID || isOrderedInTriangle(m.triangles[m.edges[e].t[0]], a, b) {
			return ErrNonManifold
		}
	}
	return nil
}

// addTriangle allocates the triangle slot without connecting its edges.
func (m *Mesh) addTriangle(tv [3]int, gid int) int {
	m.triangles = append(m.triangles, tv)
	m.triEdges = append(m.triEdges, [3]int{InvalidID, InvalidID, InvalidID})
	m.triAlive = append(m.triAlive, true)
	m.groups = append(m.groups, gid)
	if m.hasMaterials {
		m.materials = append(m.materials, 0)
	}
	if m.hasUVs {
		m.uvs = append(m.uvs, [3]geometry.Vector2{})
	}
	if gid >= m.nextGroupID {
		m.nextGroupID = gid + 1
	}
	m.triangleCount++
	return len(m.triangles) - 1
}

func (m *Mesh) linkTriangle(tid int) {
	tv := m.triangles[tid]
	for j := 0; j < 3; j++ {
		a, b := tv[j], tv[(j+1)%3]
		e := m.FindEdge(a, b)
		if e == InvalidID {
			e = m.addEdge(a, b, tid, InvalidID)
		} else {
			m.edges[e].t[1] = tid
		}
		m.triEdges[tid][j] = e
	}
}

// unlinkTriangle detaches tid from its edges and removes edges left without triangles.
func (m *Mesh) unlinkTriangle(tid int) {
	for _, e := range m.triEdges[tid] {
		m.replaceEdgeTriangle(e, tid, InvalidID)
		if m.edges[e].t[0] == InvalidID {
			ev := m.edges[e].v
			m.vertexEdges[ev[0]] = removeValue(m.vertexEdges[ev[0]], e)
			m.vertexEdges[ev[1]] = removeValue(m.vertexEdges[ev[1]], e)
			m.killEdge(e)
		}
	}
	m.triEdges[tid] = [3]int{InvalidID, InvalidID, InvalidID}
}

func (m *Mesh) addEdge(a, b, t0, t1 int) int {
	if b < a {
		a, b = b, a
	}
	m.edges = append(m.edges, edge{v: [2]int{a, b}, t: [2]int{t0, t1}})
	m.edgeAlive = append(m.edgeAlive, true)
	eid := len(m.edges) - 1
	m.vertexEdges[a] = append(m.vertexEdges[a], eid)
	m.vertexEdges[b] = append(m.vertexEdges[b], eid)
	m.edgeCount++
	return eid
}

func (m *Mesh) killEdge(eid int) {
	m.edgeAlive[eid] = false
	m.edgeCount--
}

func (m *Mesh) killTriangle(tid int) {
	m.triAlive[tid] = false
	m.triangleCount--
}

func (m *Mesh) killVertex(vid int) {
	m.vertexAlive[vid] = false
	m.vertexEdges[vid] = nil
	m.vertexCount--
}

// RemoveTriangle deletes tid and any edges it leaves unused. When
// removeIsolated is set, vertices left without edges are removed too.
func (m *Mesh) RemoveTriangle(tid int, removeIsolated bool) error {
	if !m.IsTriangle(tid) {
		return ErrNotATriangle
	}
	tv := m.triangles[tid]
	m.unlinkTriangle(tid)
	m.killTriangle(tid)
	if removeIsolated {
		for _, v := range tv {
			if m.vertexAlive[v] && len(m.vertexEdges[v]) == 0 {
				m.killVertex(v)
			}
		}
	}
	return nil
}

// RemoveVertex deletes an isolated vertex.
func (m *Mesh) RemoveVertex(vid int) error {
	if !m.IsVertex(vid) {
		return ErrNotAVertex
	}
	if len(m.vertexEdges[vid]) != 0 {
		return ErrBrokenTopology
	}
	m.killVertex(vid)
	return nil
}

// SetTriangle replaces the vertices of tid in place, keeping its id, group,
// material and corner UVs. On failure the triangle is restored.
func (m *Mesh) SetTriangle(tid int, tv [3]int, removeIsolated bool) error {
	if !m.IsTriangle(tid) {
		return ErrNotATriangle
	}
	old := m.triangles[tid]
	m.unlinkTriangle(tid)
	if err := m.checkTriangle(tv); err != nil {
		m.linkTriangle(tid)
		return err
	}
	m.triangles[tid] = tv
	m.linkTriangle(tid)
	if removeIsolated {
		for _, v := range old {
			if m.vertexAlive[v] && len(m.vertexEdges[v]) == 0 {
				m.killVertex(v)
			}
		}
	}
	return nil
}

func (m *Mesh) Triangle(tid int) [3]int {
	return m.triangles[tid]
}

// TriangleEdges returns the edges of tid; edge j joins corner j and corner j+1.
func (m *Mesh) TriangleEdges(tid int) [3]int {
	return m.triEdges[tid]
}

func (m *Mesh) TriangleGroup(tid int) int {
	return m.groups[tid]
}

func (m *Mesh) SetTriangleGroup(tid, gid int) {
	m.groups[tid] = gid
	if gid >= m.nextGroupID {
		m.nextGroupID = gid + 1
	}
}

// AllocateGroupID returns a group id not used by any triangle so far.
func (m *Mesh) AllocateGroupID() int {
	gid := m.nextGroupID
	m.nextGroupID++
	return gid
}

// MaxGroupID is one past the largest group id seen.
func (m *Mesh) MaxGroupID() int { return m.nextGroupID }

func (m *Mesh) TriangleMaterial(tid int) int {
	if !m.hasMaterials {
		return 0
	}
	return m.materials[tid]
}

func (m *Mesh) SetTriangleMaterial(tid, material int) {
	if m.hasMaterials {
		m.materials[tid] = material
	}
}

func (m *Mesh) TriangleUVs(tid int) [3]geometry.Vector2 {
	if !m.hasUVs {
		return [3]geometry.Vector2{}
	}
	return m.uvs[tid]
}

func (m *Mesh) SetTriangleUVs(tid int, uv [3]geometry.Vector2) {
	if m.hasUVs {
		m.uvs[tid] = uv
	}
}

// EdgeVertices returns the edge endpoints, lower id first.
func (m *Mesh) EdgeVertices(eid int) [2]int {
	return m.edges[eid].v
}

// EdgeTriangles returns the triangles on either side of eid. The second entry
// is InvalidID for a boundary edge.
func (m *Mesh) EdgeTriangles(eid int) [2]int {
	return m.edges[eid].t
}

func (m *Mesh) IsBoundaryEdge(eid int) bool {
	return m.edges[eid].t[1] == InvalidID
}

func (m *Mesh) IsBoundaryVertex(vid int) bool {
	for _, e := range m.vertexEdges[vid] {
		if m.edges[e].t[1] == InvalidID {
			return true
		}
	}
	return false
}

// EdgeLength returns the distance between the endpoints of eid.
func (m *Mesh) EdgeLength(eid int) float64 {
	ev := m.edges[eid].v
	return m.vertices[ev[0]].Distance(m.vertices[ev[1]])
}

// FindEdge returns the edge joining a and b, or InvalidID.
func (m *Mesh) FindEdge(a, b int) int {
	if !m.IsVertex(a) || !m.IsVertex(b) {
		return InvalidID
	}
	lo, hi := a, b
	if hi < lo {
		lo, hi = hi, lo
	}
	for _, e := range m.vertexEdges[a] {
		if m.edges[e].v == [2]int{lo, hi} {
			return e
		}
	}
	return InvalidID
}

// findEdgeFromTri looks the edge (a, b) up among the edges of tid.
func (m *Mesh) findEdgeFromTri(a, b, tid int) int {
	lo, hi := a, b
	if hi < lo {
		lo, hi = hi, lo
	}
	for _, e := range m.triEdges[tid] {
		if e != InvalidID && m.edges[e].v == [2]int{lo, hi} {
			return e
		}
	}
	return InvalidID
}

// OrientedEdgeVertices returns the endpoints of eid in the order they are
// traversed by the edge's first triangle.
func (m *Mesh) OrientedEdgeVertices(eid int) [2]int {
	e := m.edges[eid]
	tv := m.triangles[e.t[0]]
	for j := 0; j < 3; j++ {
		if tv[j] == e.v[1] && tv[(j+1)%3] == e.v[0] {
			return [2]int{e.v[1], e.v[0]}
		}
	}
	return e.v
}

// EdgeOpposingVertices returns the vertex opposite eid in each adjacent
// triangle, InvalidID where there is no triangle.
func (m *Mesh) EdgeOpposingVertices(eid int) [2]int {
	e := m.edges[eid]
	out := [2]int{InvalidID, InvalidID}
	for i, t := range e.t {
		if t != InvalidID {
			out[i] = otherVertex(m.triangles[t], e.v[0], e.v[1])
		}
	}
	return out
}

// VertexEdges returns a copy of the edges incident to vid.
func (m *Mesh) VertexEdges(vid int) []int {
	return slices.Clone(m.vertexEdges[vid])
}

// VertexTriangles returns the distinct triangles using vid, in ascending id order.
func (m *Mesh) VertexTriangles(vid int) []int {
	var out []int
	for _, e := range m.vertexEdges[vid] {
		for _, t := range m.edges[e].t {
			if t != InvalidID && !slices.Contains(out, t) {
				out = append(out, t)
			}
		}
	}
	slices.Sort(out)
	return out
}

func (m *Mesh) VertexIDs() []int   { return aliveIDs(m.vertexAlive) }
func (m *Mesh) TriangleIDs() []int { return aliveIDs(m.triAlive) }
func (m *Mesh) EdgeIDs() []int     { return aliveIDs(m.edgeAlive) }

// BoundaryEdgeIDs returns the alive edges with a single triangle.
func (m *Mesh) BoundaryEdgeIDs() []int {
	var out []int
	for eid, alive := range m.edgeAlive {
		if alive && m.edges[eid].t[1] == InvalidID {
			out = append(out, eid)
		}
	}
	return out
}

func (m *Mesh) TriangleVertices(tid int) (geometry.Vector3, geometry.Vector3, geometry.Vector3) {
	tv := m.triangles[tid]
	return m.vertices[tv[0]], m.vertices[tv[1]], m.vertices[tv[2]]
}

// TriangleGeometry returns tid as a standalone triangle with its computed normal.
func (m *Mesh) TriangleGeometry(tid int) geometry.Triangle {
	a, b, c := m.TriangleVertices(tid)
	return geometry.NewTriangleFromVertices(a, b, c)
}

func (m *Mesh) TriangleArea(tid int) float64 {
	return m.TriangleGeometry(tid).Area()
}

func (m *Mesh) TriangleNormal(tid int) geometry.Vector3 {
	return m.TriangleGeometry(tid).Normal
}

func (m *Mesh) TriangleCentroid(tid int) geometry.Vector3 {
	return m.TriangleGeometry(tid).Center()
}

// Bounds returns the bounding box of all alive vertices.
func (m *Mesh) Bounds() geometry.BoundingBox {
	b := geometry.NewBoundingBox()
	for vid, alive := range m.vertexAlive {
		if alive {
			b.Extend(m.vertices[vid])
		}
	}
	return b
}

// Copy returns a deep copy with identical ids.
func (m *Mesh) Copy() *Mesh {
	c := *m
	c.vertices = slices.Clone(m.vertices)
	c.vertexAlive = slices.Clone(m.vertexAlive)
	c.vertexEdges = make([][]int, len(m.vertexEdges))
	for i, es := range m.vertexEdges {
		c.vertexEdges[i] = slices.Clone(es)
	}
	c.triangles = slices.Clone(m.triangles)
	c.triEdges = slices.Clone(m.triEdges)
	c.triAlive = slices.Clone(m.triAlive)
	c.groups = slices.Clone(m.groups)
	c.materials = slices.Clone(m.materials)
	c.uvs = slices.Clone(m.uvs)
	c.edges = slices.Clone(m.edges)
	c.edgeAlive = slices.Clone(m.edgeAlive)
	return &c
}

func (m *Mesh) replaceEdgeTriangle(eid, oldT, newT int) {
	e := &m.edges[eid]
	switch oldT {
	case e.t[0]:
		e.t[0] = newT
	case e.t[1]:
		e.t[1] = newT
	}
	if e.t[0] == InvalidID {
		e.t[0], e.t[1] = e.t[1], InvalidID
	}
}

func (m *Mesh) replaceEdgeVertex(eid, oldV, newV int) {
	e := &m.edges[eid]
	if e.v[0] == oldV {
		e.v[0] = newV
	} else if e.v[1] == oldV {
		e.v[1] = newV
	}
	if e.v[1] < e.v[0] {
		e.v[0], e.v[1] = e.v[1], e.v[0]
	}
}

func (m *Mesh) replaceTriangleVertex(tid, oldV, newV int) {
	for j := range m.triangles[tid] {
		if m.triangles[tid][j] == oldV {
			m.triangles[tid][j] = newV
			return
		}
	}
}

func (m *Mesh) replaceTriangleEdge(tid, oldE, newE int) {
	for j := range m.triEdges[tid] {
		if m.triEdges[tid][j] == oldE {
			m.triEdges[tid][j] = newE
			return
		}
	}
}

func (m *Mesh) otherEdgeTriangle(eid, tid int) int {
	e := m.edges[eid]
	if e.t[0] == tid {
		return e.t[1]
	}
	return e.t[0]
}

func (m *Mesh) otherEdgeVertex(eid, vid int) int {
	e := m.edges[eid]
	if e.v[0] == vid {
		return e.v[1]
	}
	return e.v[0]
}

func (m *Mesh) triangleHasVertex(tid, vid int) bool {
	return slices.Contains(m.triangles[tid][:], vid)
}

func otherVertex(tv [3]int, a, b int) int {
	for _, v := range tv {
		if v != a && v != b {
			return v
		}
	}
	return InvalidID
}

func aliveIDs(alive []bool) []int {
	out := make([]int, 0, len(alive))
	for id, ok := range alive {
		if ok {
			out = append(out, id)
		}
	}
	return out
}

func removeValue(s []int, v int) []int {
	if i := slices.Index(s, v); i >= 0 {
		return slices.Delete(s, i, i+1)
	}
	return s
}
