package meshcut

import (
	"errors"
	"fmt"
	"slices"

	"github.com/philipparndt/meshcut/pkg/geometry"
	"github.com/philipparndt/meshcut/pkg/polygon"
)

// FillType selects the SimpleHoleFill strategy.
type FillType int

const (
	// FillEarClipping triangulates the loop itself, adding no vertices.
	FillEarClipping FillType = iota
	// FillFan adds a vertex at the loop centroid and fans around it.
	FillFan
)

func (f FillType) String() string {
	switch f {
	case FillEarClipping:
		return "earclip"
	case FillFan:
		return "fan"
	}
	return "unknown"
}

var (
	errDegenerateLoop = errors.New("degenerate loop")
	errZeroArea       = errors.New("zero area")
)

// SimpleHoleFill caps every loop of every boundary that extracted cleanly.
// Spans and failed boundaries are left open. Fill triangles are listed per
// boundary in HoleFillTriangles.
func (c *PlaneCut) SimpleHoleFill(fillType FillType) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := c.checkpoint(PhaseFill); err != nil {
		return err
	}
	c.HoleFillTriangles = make([][]int, len(c.OpenBoundaries))
	for i, b := range c.OpenBoundaries {
		if b.CutLoopsFailed {
			c.log().Warnf("boundary %d: skipping fill, loops failed", b.Label)
			continue
		}
		frame := c.capFrame(b)
		for _, loop := range b.CutLoops {
			capLoop := slices.Clone(loop.Vertices)
			slices.Reverse(capLoop)

			var tris []int
			var err error
			switch fillType {
			case FillFan:
				tris, err = c.fillFan(capLoop, c.fillGroup(b), frame)
			default:
				tris, err = c.fillEarClip(capLoop, c.fillGroup(b), frame)
			}
			if err != nil {
				c.Stats.FailedFills++
				c.log().Warnf("boundary %d: fill %s: %v", b.Label, fillType, err)
				continue
			}
			c.HoleFillTriangles[i] = append(c.HoleFillTriangles[i], tris...)
		}
	}
	return nil
}

// HoleFill projects the loops of each boundary into the plane, nests them
// into polygons with holes and caps each polygon with tri. With fillSpans
// open spans are closed by a straight segment and filled as well. A polygon
// the triangulator cannot handle is left open and counted in
// Stats.FailedFills. A nil tri uses polygon.Tess.
func (c *PlaneCut) HoleFill(tri polygon.Triangulator, fillSpans bool) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := c.checkpoint(PhaseFill); err != nil {
		return err
	}
	if tri == nil {
		tri = polygon.Tess{}
	}
	c.HoleFillTriangles = make([][]int, len(c.OpenBoundaries))
	for i, b := range c.OpenBoundaries {
		if b.CutLoopsFailed {
			c.log().Warnf("boundary %d: skipping fill, loops failed", b.Label)
			continue
		}
		frame := c.capFrame(b)

		var chains [][]int
		for _, loop := range b.CutLoops {
			chains = append(chains, loop.Vertices)
		}
		if fillSpans {
			for _, span := range b.CutSpans {
				chains = append(chains, span.Vertices)
			}
		}
		polys := make([]polygon.Polygon, len(chains))
		for k, chain := range chains {
			capChain := slices.Clone(chain)
			slices.Reverse(capChain)
			chains[k] = capChain
			polys[k] = c.project(frame, capChain)
		}

		generals, owners, orphans := polygon.Nest(polys)
		if len(orphans) > 0 {
			c.Stats.FailedFills += len(orphans)
			c.log().Warnf("boundary %d: %d holes outside any loop", b.Label, len(orphans))
		}
		for k, g := range generals {
			var ids []int
			for _, owner := range owners[k] {
				ids = append(ids, chains[owner]...)
			}
			tris, err := c.fillGeneral(tri, g, ids, c.fillGroup(b), frame)
			if err != nil {
				c.Stats.FailedFills++
				c.log().Warnf("boundary %d: fill polygon %d: %v", b.Label, k, err)
				continue
			}
			c.HoleFillTriangles[i] = append(c.HoleFillTriangles[i], tris...)
		}
	}
	return nil
}

func (c *PlaneCut) fillGeneral(tri polygon.Triangulator, g polygon.General, ids []int, gid int, frame geometry.Frame) ([]int, error) {
	if g.Area() <= c.minFillArea() {
		return nil, errZeroArea
	}
	faces, err := tri.Triangulate(g)
	if err != nil {
		return nil, err
	}
	var added []int
	for _, f := range faces {
		for _, k := range f {
			if k < 0 || k >= len(ids) {
				c.rollback(added)
				return nil, fmt.Errorf("triangle index %d out of range", k)
			}
		}
		if geometry.Orient(g.Vertex(f[0]), g.Vertex(f[1]), g.Vertex(f[2])) < 0 {
			f[1], f[2] = f[2], f[1]
		}
		tid, err := c.appendFillTriangle([3]int{ids[f[0]], ids[f[1]], ids[f[2]]}, gid, frame)
		if err != nil {
			c.rollback(added)
			return nil, err
		}
		added = append(added, tid)
	}
	return added, nil
}

// fillEarClip triangulates capLoop in the plane of its own Newell normal.
func (c *PlaneCut) fillEarClip(capLoop []int, gid int, uvFrame geometry.Frame) ([]int, error) {
	if len(capLoop) < 3 {
		return nil, errDegenerateLoop
	}
	pts := make([]geometry.Vector3, len(capLoop))
	for i, v := range capLoop {
		pts[i] = c.Mesh.Vertex(v)
	}
	n := newellNormal(pts)
	if n.Length() < 1e-12 {
		return c.fillFan(capLoop, gid, uvFrame)
	}
	frame := geometry.NewFrame(pts[0], n)
	g := polygon.General{Outer: c.project(frame, capLoop)}
	if g.Area() <= c.minFillArea() {
		return nil, errZeroArea
	}

	faces, err := polygon.EarClipper{Strict: true}.Triangulate(g)
	if err != nil {
		return nil, err
	}
	var added []int
	for _, f := range faces {
		tid, err := c.appendFillTriangle([3]int{capLoop[f[0]], capLoop[f[1]], capLoop[f[2]]}, gid, uvFrame)
		if err != nil {
			c.rollback(added)
			return nil, err
		}
		added = append(added, tid)
	}
	return added, nil
}

// fillFan adds the loop centroid and connects it to every loop edge.
func (c *PlaneCut) fillFan(capLoop []int, gid int, uvFrame geometry.Frame) ([]int, error) {
	if len(capLoop) < 3 {
		return nil, errDegenerateLoop
	}
	var center geometry.Vector3
	for _, v := range capLoop {
		center = center.Add(c.Mesh.Vertex(v))
	}
	center = center.Mul(1 / float64(len(capLoop)))
	cv := c.Mesh.AppendVertex(center)

	var added []int
	for i := range capLoop {
		tid, err := c.appendFillTriangle([3]int{cv, capLoop[i], capLoop[(i+1)%len(capLoop)]}, gid, uvFrame)
		if err != nil {
			c.rollback(added)
			if c.Mesh.IsVertex(cv) {
				_ = c.Mesh.RemoveVertex(cv)
			}
			return nil, err
		}
		added = append(added, tid)
	}
	return added, nil
}

func (c *PlaneCut) appendFillTriangle(tv [3]int, gid int, frame geometry.Frame) (int, error) {
	mesh := c.Mesh
	a, b, d := mesh.Vertex(tv[0]), mesh.Vertex(tv[1]), mesh.Vertex(tv[2])
	if b.Sub(a).Cross(d.Sub(a)).Length()/2 <= c.minFillArea() {
		return -1, fmt.Errorf("fill triangle %v: %w", tv, errZeroArea)
	}
	tid, err := mesh.AppendTriangle(tv, gid)
	if err != nil {
		return tid, fmt.Errorf("append fill triangle %v: %w", tv, err)
	}
	if c.MaterialID >= 0 && mesh.HasMaterials() {
		mesh.SetTriangleMaterial(tid, c.MaterialID)
	}
	if mesh.HasUVs() {
		var uv [3]geometry.Vector2
		for j, v := range tv {
			uv[j] = frame.ToPlane(mesh.Vertex(v)).Mul(c.UVScaleFactor)
		}
		mesh.SetTriangleUVs(tid, uv)
	}
	c.Stats.FillTriangles++
	return tid, nil
}

func (c *PlaneCut) rollback(tris []int) {
	for _, tid := range tris {
		_ = c.Mesh.RemoveTriangle(tid, true)
		c.Stats.FillTriangles--
	}
}

// minFillArea is the area at or below which a cap or fill triangle is
// rejected.
func (c *PlaneCut) minFillArea() float64 {
	return max(c.DegenerateEdgeTol*c.DegenerateEdgeTol, 1e-18)
}

func (c *PlaneCut) fillGroup(b OpenBoundary) int {
	switch {
	case c.TransferGroupToFill:
		return b.Label
	case c.ConstantGroupID >= 0:
		return c.ConstantGroupID
	}
	return c.Mesh.AllocateGroupID()
}

// capFrame is the plane frame oriented the way caps over b face.
func (c *PlaneCut) capFrame(b OpenBoundary) geometry.Frame {
	if b.NormalSign < 0 {
		return geometry.FrameFromPlane(c.Plane.Flip())
	}
	return geometry.FrameFromPlane(c.Plane)
}

func (c *PlaneCut) project(frame geometry.Frame, vids []int) polygon.Polygon {
	p := make(polygon.Polygon, len(vids))
	for i, v := range vids {
		p[i] = frame.ToPlane(c.Mesh.Vertex(v))
	}
	return p
}

// newellNormal is the area-weighted normal of a closed 3D loop.
func newellNormal(pts []geometry.Vector3) geometry.Vector3 {
	var n geometry.Vector3
	for i, a := range pts {
		b := pts[(i+1)%len(pts)]
		n.X += (a.Y - b.Y) * (a.Z + b.Z)
		n.Y += (a.Z - b.Z) * (a.X + b.X)
		n.Z += (a.X - b.X) * (a.Y + b.Y)
	}
	return n
}
