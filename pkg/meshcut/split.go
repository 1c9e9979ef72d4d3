package meshcut

import "github.com/philipparndt/meshcut/pkg/dmesh"

// splitCrossingEdges splits every edge whose endpoints lie strictly on
// opposite sides. Only edges that existed when the pass started are
// considered. Edges lying in the plane are recorded in st.zero, the new
// in-plane edges produced by splits in st.onCut.
func (c *PlaneCut) splitCrossingEdges(st *cutState) {
	mesh := c.Mesh
	for vid := range st.dist {
		if mesh.IsVertex(vid) && c.side(st.dist[vid]) == 0 {
			st.onPlane[vid] = struct{}{}
		}
	}

	maxEdge := mesh.MaxEdgeID()
	for eid := 0; eid < maxEdge; eid++ {
		if !mesh.IsEdge(eid) {
			continue
		}
		if c.EdgeFilter != nil && !c.EdgeFilter(eid) {
			continue
		}
		ev := mesh.EdgeVertices(eid)
		d0, d1 := st.dist[ev[0]], st.dist[ev[1]]
		s0, s1 := c.side(d0), c.side(d1)
		if s0 == 0 && s1 == 0 {
			st.zero[eid] = struct{}{}
			continue
		}
		if s0*s1 >= 0 {
			continue
		}

		info, err := mesh.SplitEdge(eid, d0/(d0-d1))
		if err != nil {
			c.log().Warnf("split edge %d: %v", eid, err)
			continue
		}
		c.Stats.SplitEdges++

		for len(st.dist) < mesh.MaxVertexID() {
			st.dist = append(st.dist, 0)
		}
		st.onPlane[info.NewVertex] = struct{}{}

		// the edges towards the opposite vertices lie in the plane only if
		// those vertices do
		for i, other := range info.OtherVertices {
			if other != dmesh.InvalidID && c.vertexSide(st, other) == 0 {
				st.onCut[info.NewEdges[1+i]] = struct{}{}
			}
		}

		if st.selection != nil {
			for i, t := range info.OriginalTriangles {
				if _, ok := st.selection[t]; ok && info.NewTriangles[i] != dmesh.InvalidID {
					st.selection[info.NewTriangles[i]] = struct{}{}
				}
			}
		}
	}
	c.log().Debugf("split %d edges, %d edges in plane", c.Stats.SplitEdges, len(st.zero))
}
