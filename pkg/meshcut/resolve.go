package meshcut

import (
	"math"
)

// deletePositiveSide removes every triangle with a vertex strictly on the
// positive side and none strictly on the negative side. Triangles still
// crossing the plane, because EdgeFilter kept their edges from being split,
// are kept.
func (c *PlaneCut) deletePositiveSide(st *cutState) {
	mesh := c.Mesh
	for _, tid := range mesh.TriangleIDs() {
		pos, neg := false, false
		for _, v := range mesh.Triangle(tid) {
			switch c.vertexSide(st, v) {
			case 1:
				pos = true
			case -1:
				neg = true
			}
		}
		if !pos || neg {
			continue
		}
		if err := mesh.RemoveTriangle(tid, true); err != nil {
			c.log().Warnf("remove triangle %d: %v", tid, err)
			continue
		}
		c.Stats.DeletedTriangles++
	}
}

// triangleSides assigns each live triangle to a side: the sign of its vertex
// furthest from the plane, with triangles lying in the plane on the negative
// side. The result is indexed by triangle id; dead ids hold 0.
func (c *PlaneCut) triangleSides(st *cutState) []int {
	mesh := c.Mesh
	sides := make([]int, mesh.MaxTriangleID())
	for _, tid := range mesh.TriangleIDs() {
		far := 0.0
		for _, v := range mesh.Triangle(tid) {
			if v < len(st.dist) && math.Abs(st.dist[v]) > math.Abs(far) {
				far = st.dist[v]
			}
		}
		if c.side(far) > 0 {
			sides[tid] = 1
		} else {
			sides[tid] = -1
		}
	}
	return sides
}

func positiveTriangles(sides []int) []int {
	var out []int
	for tid, s := range sides {
		if s > 0 {
			out = append(out, tid)
		}
	}
	return out
}

// disconnectPositiveSide gives the positive side its own copies of the
// vertices it shares with the negative side.
func (c *PlaneCut) disconnectPositiveSide(st *cutState, sides []int) error {
	dup, err := c.Mesh.DisconnectTriangles(positiveTriangles(sides))
	if err != nil {
		return err
	}
	for orig, nv := range dup {
		for len(st.dist) <= nv {
			st.dist = append(st.dist, InvalidDistance)
		}
		st.dist[nv] = st.dist[orig]
		if _, ok := st.onPlane[orig]; ok {
			st.onPlane[nv] = struct{}{}
		}
	}
	c.Stats.DuplicatedVertices = len(dup)
	return nil
}

// offsetPositiveSide moves the vertices used only by positive triangles
// along the plane normal.
func (c *PlaneCut) offsetPositiveSide(sides []int, offset float64) {
	mesh := c.Mesh
	var move []int
	for _, v := range mesh.TriangleVertexSet(positiveTriangles(sides)) {
		shared := false
		for _, t := range mesh.VertexTriangles(v) {
			if sides[t] < 0 {
				shared = true
				break
			}
		}
		if !shared {
			move = append(move, v)
		}
	}
	mesh.TranslateVertices(move, c.Plane.Normal.Mul(offset))
}

// labelComponents gives every connected component of each side its own
// label, negative side first, counting up from start.
func (c *PlaneCut) labelComponents(sides []int, labels map[int]int, start int) {
	mesh := c.Mesh
	components := mesh.ConnectedComponents(mesh.TriangleIDs(), func(t0, t1, _ int) bool {
		return sides[t0] == sides[t1]
	})
	next := start
	for _, side := range []int{-1, 1} {
		for _, comp := range components {
			if sides[comp[0]] != side {
				continue
			}
			for _, tid := range comp {
				labels[tid] = next
			}
			next++
		}
	}
}

// assignGroupsAcrossCut allocates a fresh group for every connected
// component, where components connect only through edges off the cut that
// join triangles of the same group.
func (c *PlaneCut) assignGroupsAcrossCut(st *cutState) {
	mesh := c.Mesh
	tris := mesh.TriangleIDs()
	if st.selection != nil {
		tris = tris[:0]
		for _, tid := range mesh.TriangleIDs() {
			if _, ok := st.selection[tid]; ok {
				tris = append(tris, tid)
			}
		}
	}
	components := mesh.ConnectedComponents(tris, func(t0, t1, eid int) bool {
		if _, ok := st.onCut[eid]; ok {
			return false
		}
		if _, ok := st.zero[eid]; ok {
			return false
		}
		return mesh.TriangleGroup(t0) == mesh.TriangleGroup(t1)
	})
	for _, comp := range components {
		gid := mesh.AllocateGroupID()
		for _, tid := range comp {
			mesh.SetTriangleGroup(tid, gid)
		}
	}
	c.log().Debugf("assigned %d groups", len(components))
}
