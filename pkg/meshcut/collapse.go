package meshcut

import (
	"slices"

	"github.com/philipparndt/meshcut/pkg/dmesh"
)

// collapseDegenerateEdges collapses in-plane edges no longer than
// DegenerateEdgeTol, keeping the lower vertex id at the edge midpoint, until
// a full pass makes no change. Collapses the mesh refuses are skipped.
func (c *PlaneCut) collapseDegenerateEdges(st *cutState) {
	mesh := c.Mesh
	candidates := make([]int, 0, len(st.onCut)+len(st.zero))
	for e := range st.onCut {
		candidates = append(candidates, e)
	}
	for e := range st.zero {
		candidates = append(candidates, e)
	}
	slices.Sort(candidates)

	tolSq := c.DegenerateEdgeTol * c.DegenerateEdgeTol
	for {
		collapsed := 0
		for _, eid := range candidates {
			if !mesh.IsEdge(eid) {
				continue
			}
			ev := mesh.EdgeVertices(eid)
			if mesh.Vertex(ev[0]).DistanceSquared(mesh.Vertex(ev[1])) > tolSq {
				continue
			}
			info, err := mesh.CollapseEdge(ev[0], ev[1], 0.5)
			if err != nil {
				c.log().Debugf("collapse edge %d: %v", eid, err)
				continue
			}
			collapsed++
			delete(st.onPlane, info.RemovedVertex)
			// the surviving edge of each merged pair takes over its membership
			for i, removed := range info.RemovedEdges {
				kept := info.KeptEdges[i]
				if removed == dmesh.InvalidID || kept == dmesh.InvalidID {
					continue
				}
				for _, set := range []map[int]struct{}{st.onCut, st.zero} {
					if _, ok := set[removed]; ok {
						set[kept] = struct{}{}
						if !slices.Contains(candidates, kept) {
							candidates = append(candidates, kept)
						}
					}
				}
			}
			if st.selection != nil {
				for _, t := range info.RemovedTriangles {
					if t != dmesh.InvalidID {
						delete(st.selection, t)
					}
				}
			}
		}
		c.Stats.CollapsedEdges += collapsed
		if collapsed == 0 {
			break
		}
	}

	for _, set := range []map[int]struct{}{st.onCut, st.zero} {
		for e := range set {
			if !mesh.IsEdge(e) {
				delete(set, e)
			}
		}
	}
}
