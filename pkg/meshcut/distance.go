package meshcut

import "github.com/philipparndt/meshcut/pkg/geometry"

// SignedDistances returns the signed distance of every vertex id in
// [0, MaxVertexID) to the plane. Deleted ids get invalid.
func (c *PlaneCut) SignedDistances(invalid float64) []float64 {
	dist := make([]float64, c.Mesh.MaxVertexID())
	for vid := range dist {
		if c.Mesh.IsVertex(vid) {
			dist[vid] = c.Plane.SignedDistance(c.Mesh.Vertex(vid))
		} else {
			dist[vid] = invalid
		}
	}
	return dist
}

// side classifies a distance: 0 within PlaneTolerance, otherwise its sign.
func (c *PlaneCut) side(d float64) int {
	return geometry.SideOf(d, c.PlaneTolerance)
}

// vertexSide classifies a vertex by its stored distance. Vertices created
// after the distances were computed lie on the plane.
func (c *PlaneCut) vertexSide(st *cutState, vid int) int {
	if vid >= len(st.dist) {
		return 0
	}
	return c.side(st.dist[vid])
}
