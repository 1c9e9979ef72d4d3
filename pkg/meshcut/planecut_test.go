package meshcut

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/philipparndt/meshcut/pkg/dmesh"
	"github.com/philipparndt/meshcut/pkg/geometry"
	"github.com/philipparndt/meshcut/pkg/logging"
	"github.com/philipparndt/meshcut/pkg/polygon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitBox(storeys int) *dmesh.Mesh {
	return dmesh.NewBox(geometry.NewVector3(0, 0, 0), geometry.NewVector3(1, 1, 1), storeys)
}

func horizontal(z float64) geometry.Plane {
	return geometry.NewPlane(geometry.NewVector3(0, 0, z), geometry.NewVector3(0, 0, 1))
}

func tilted() geometry.Plane {
	return geometry.NewPlane(geometry.NewVector3(0.5, 0.5, 0.5), geometry.NewVector3(0.3, 0.2, 1))
}

func totalArea(m *dmesh.Mesh) float64 {
	area := 0.0
	for _, tid := range m.TriangleIDs() {
		area += m.TriangleArea(tid)
	}
	return area
}

// closedVolume asserts m is a valid closed surface and returns its volume.
func closedVolume(t *testing.T, m *dmesh.Mesh) float64 {
	t.Helper()
	require.NoError(t, m.CheckValidity())
	require.Empty(t, m.BoundaryEdgeIDs(), "surface is not closed")
	vol := 0.0
	for _, tid := range m.TriangleIDs() {
		vol += m.TriangleGeometry(tid).SignedVolume()
	}
	return vol
}

func requireLoopChains(t *testing.T, m *dmesh.Mesh, loop EdgeLoop) {
	t.Helper()
	n := len(loop.Vertices)
	require.Len(t, loop.Edges, n)
	for i, eid := range loop.Edges {
		ev := m.EdgeVertices(eid)
		a, b := loop.Vertices[i], loop.Vertices[(i+1)%n]
		assert.ElementsMatch(t, []int{a, b}, ev[:], "edge %d does not join %d and %d", eid, a, b)
	}
}

func TestSignedDistances(t *testing.T) {
	m := unitBox(1)
	extra := m.AppendVertex(geometry.NewVector3(5, 5, 5))
	require.NoError(t, m.RemoveVertex(extra))

	c := NewPlaneCut(m, horizontal(0.25))
	first := c.SignedDistances(InvalidDistance)
	second := c.SignedDistances(InvalidDistance)

	require.Len(t, first, m.MaxVertexID())
	assert.Equal(t, first, second)
	assert.InDelta(t, -0.25, first[0], 1e-12)
	assert.InDelta(t, 0.75, first[4], 1e-12)
	assert.Equal(t, InvalidDistance, first[extra])
}

func TestCutUnitCube(t *testing.T) {
	m := unitBox(1)
	c := NewPlaneCut(m, horizontal(0.5))

	require.NoError(t, c.Cut())
	require.NoError(t, m.CheckValidity())

	assert.Equal(t, 8, c.Stats.SplitEdges)
	assert.Equal(t, 14, c.Stats.DeletedTriangles)
	assert.Equal(t, 14, m.TriangleCount())
	assert.Equal(t, 12+2*c.Stats.SplitEdges-c.Stats.DeletedTriangles, m.TriangleCount())
	assert.Empty(t, c.ZeroEdges)
	assert.Len(t, c.OnCutEdges, 8)
	assert.Len(t, c.OnPlaneVertices, 8)

	for _, tid := range m.TriangleIDs() {
		for _, v := range m.Triangle(tid) {
			assert.LessOrEqual(t, m.Vertex(v).Z, 0.5+1e-12)
		}
	}

	require.Len(t, c.OpenBoundaries, 1)
	b := c.OpenBoundaries[0]
	assert.Equal(t, 0, b.Label)
	assert.Equal(t, 1, b.NormalSign)
	assert.False(t, b.CutLoopsFailed)
	assert.False(t, b.FoundOpenSpans)
	require.Len(t, b.CutLoops, 1)
	require.Len(t, b.CutLoops[0].Vertices, 8)
	requireLoopChains(t, m, b.CutLoops[0])

	require.NoError(t, c.SimpleHoleFill(FillEarClipping))
	require.Len(t, c.HoleFillTriangles, 1)
	assert.Len(t, c.HoleFillTriangles[0], 6)
	assert.Equal(t, 6, c.Stats.FillTriangles)
	assert.Equal(t, 20, m.TriangleCount())
	assert.InDelta(t, 0.5, closedVolume(t, m), 1e-9)

	for _, tid := range c.HoleFillTriangles[0] {
		assert.InDelta(t, 1.0, m.TriangleNormal(tid).Z, 1e-9, "fill triangle %d faces away from the cut", tid)
	}
}

func TestCutAlongExistingEdges(t *testing.T) {
	m := unitBox(2)
	c := NewPlaneCut(m, horizontal(0.5))

	require.NoError(t, c.Cut())

	assert.Zero(t, c.Stats.SplitEdges)
	assert.Len(t, c.ZeroEdges, 4)
	assert.Empty(t, c.OnCutEdges)
	assert.Equal(t, 10, c.Stats.DeletedTriangles)
	assert.Equal(t, 10, m.TriangleCount())
	require.Len(t, c.OpenBoundaries, 1)
	require.Len(t, c.OpenBoundaries[0].CutLoops, 1)
	requireLoopChains(t, m, c.OpenBoundaries[0].CutLoops[0])
	assert.Len(t, c.OpenBoundaries[0].CutLoops[0].Vertices, 4)

	require.NoError(t, c.SimpleHoleFill(FillEarClipping))
	assert.Len(t, c.HoleFillTriangles[0], 2)
	assert.Equal(t, 12, m.TriangleCount())
	assert.InDelta(t, 0.5, closedVolume(t, m), 1e-9)
}

func TestCutThroughDiagonal(t *testing.T) {
	m := unitBox(1)
	plane := geometry.NewPlane(geometry.NewVector3(0, 0, 0), geometry.NewVector3(1, -1, 0))
	c := NewPlaneCut(m, plane)

	require.NoError(t, c.Cut())

	assert.Zero(t, c.Stats.SplitEdges)
	var zero [][2]int
	for _, eid := range c.ZeroEdges {
		zero = append(zero, m.EdgeVertices(eid))
	}
	assert.ElementsMatch(t, [][2]int{{0, 2}, {4, 6}, {0, 4}, {2, 6}}, zero)
	assert.Equal(t, 6, m.TriangleCount())
	require.Len(t, c.OpenBoundaries[0].CutLoops, 1)
	assert.ElementsMatch(t, []int{0, 2, 4, 6}, c.OpenBoundaries[0].CutLoops[0].Vertices)

	require.NoError(t, c.SimpleHoleFill(FillEarClipping))
	assert.Len(t, c.HoleFillTriangles[0], 2)
	assert.InDelta(t, 0.5, closedVolume(t, m), 1e-9)
}

func TestCutTiltedPlaneLoops(t *testing.T) {
	m := unitBox(3)
	c := NewPlaneCut(m, tilted())

	require.NoError(t, c.Cut())
	require.NoError(t, m.CheckValidity())

	require.Len(t, c.OpenBoundaries, 1)
	b := c.OpenBoundaries[0]
	assert.False(t, b.CutLoopsFailed)
	assert.Empty(t, b.CutSpans)
	require.Len(t, b.CutLoops, 1)
	requireLoopChains(t, m, b.CutLoops[0])
	for _, v := range b.CutLoops[0].Vertices {
		assert.InDelta(t, 0, c.Plane.SignedDistance(m.Vertex(v)), 1e-9)
	}

	require.NoError(t, c.HoleFill(polygon.EarClipper{Strict: true}, false))
	assert.Zero(t, c.Stats.FailedFills)
	assert.Len(t, c.HoleFillTriangles[0], len(b.CutLoops[0].Vertices)-2)
	assert.Greater(t, closedVolume(t, m), 0.0)
}

func TestCutLeavesNothingOrEverything(t *testing.T) {
	t.Run("all below", func(t *testing.T) {
		m := unitBox(1)
		c := NewPlaneCut(m, horizontal(2))
		require.NoError(t, c.Cut())
		assert.Equal(t, 12, m.TriangleCount())
		assert.Zero(t, c.Stats.SplitEdges)
		require.Len(t, c.OpenBoundaries, 1)
		assert.Empty(t, c.OpenBoundaries[0].CutLoops)

		require.NoError(t, c.SimpleHoleFill(FillEarClipping))
		assert.Zero(t, c.Stats.FillTriangles)
	})
	t.Run("all above", func(t *testing.T) {
		m := unitBox(1)
		plane := geometry.NewPlane(geometry.NewVector3(0, 0, 2), geometry.NewVector3(0, 0, -1))
		c := NewPlaneCut(m, plane)
		require.NoError(t, c.Cut())
		assert.Zero(t, m.TriangleCount())
		assert.Zero(t, m.VertexCount())
		assert.Equal(t, 12, c.Stats.DeletedTriangles)
	})
}

func TestValidate(t *testing.T) {
	good := horizontal(0.5)
	tests := []struct {
		name  string
		setup func(c *PlaneCut)
		want  error
	}{
		{"nil mesh", func(c *PlaneCut) { c.Mesh = nil }, ErrNilMesh},
		{"zero normal", func(c *PlaneCut) { c.Plane.Normal = geometry.Vector3{} }, ErrInvalidPlane},
		{"non unit normal", func(c *PlaneCut) { c.Plane.Normal = geometry.NewVector3(0, 0, 2) }, ErrInvalidPlane},
		{"nan origin", func(c *PlaneCut) { c.Plane.Origin.X = math.NaN() }, ErrInvalidPlane},
		{"negative tolerance", func(c *PlaneCut) { c.PlaneTolerance = -1 }, ErrInvalidTolerance},
		{"nan edge tolerance", func(c *PlaneCut) { c.DegenerateEdgeTol = math.NaN() }, ErrInvalidTolerance},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := unitBox(1)
			c := NewPlaneCut(m, good)
			tt.setup(c)

			assert.ErrorIs(t, c.Validate(), tt.want)
			assert.ErrorIs(t, c.Cut(), tt.want)
			assert.ErrorIs(t, c.CutWithoutDelete(CutWithoutDeleteOptions{}), tt.want)
			assert.ErrorIs(t, c.SplitEdgesOnly(true, nil), tt.want)
			assert.Equal(t, 12, m.TriangleCount())
			assert.Equal(t, 8, m.VertexCount())
		})
	}
}

func TestCancel(t *testing.T) {
	m := unitBox(1)
	c := NewPlaneCut(m, horizontal(0.5))
	var seen []Phase
	c.Progress = func(p Phase) bool {
		seen = append(seen, p)
		return p != PhaseResolve
	}

	err := c.Cut()
	require.ErrorIs(t, err, ErrCancelled)
	assert.Equal(t, []Phase{PhaseSplit, PhaseCollapse, PhaseResolve}, seen)
	assert.Equal(t, 8, c.Stats.SplitEdges)
	assert.Equal(t, 28, m.TriangleCount())
	assert.Empty(t, c.OpenBoundaries)
	assert.NoError(t, m.CheckValidity())
}

func TestCollapseDegenerateCutEdge(t *testing.T) {
	m := dmesh.NewGrid(2, 1, 2, 1)
	c := NewPlaneCut(m, geometry.NewPlane(geometry.NewVector3(1.0001, 0, 0), geometry.NewVector3(1, 0, 0)))
	c.PlaneTolerance = 1e-9
	c.DegenerateEdgeTol = 1e-3

	require.NoError(t, c.Cut())
	require.NoError(t, m.CheckValidity())

	assert.Equal(t, 3, c.Stats.SplitEdges)
	assert.Equal(t, 1, c.Stats.CollapsedEdges)
	require.Len(t, c.OnCutEdges, 1)
	assert.Greater(t, m.EdgeLength(c.OnCutEdges[0]), c.DegenerateEdgeTol)

	require.Len(t, c.OpenBoundaries, 1)
	b := c.OpenBoundaries[0]
	assert.True(t, b.FoundOpenSpans)
	assert.False(t, b.CutLoopsFailed)
	assert.Empty(t, b.CutLoops)
	require.Len(t, b.CutSpans, 1)
	assert.Len(t, b.CutSpans[0].Vertices, 2)
	assert.Equal(t, c.OnCutEdges, b.CutSpans[0].Edges)
}

func TestCollapseDisabled(t *testing.T) {
	m := dmesh.NewGrid(2, 1, 2, 1)
	c := NewPlaneCut(m, geometry.NewPlane(geometry.NewVector3(1.0001, 0, 0), geometry.NewVector3(1, 0, 0)))
	c.PlaneTolerance = 1e-9
	c.DegenerateEdgeTol = 1e-3
	c.CollapseDegenerateEdgesOnCut = false

	require.NoError(t, c.Cut())
	assert.Zero(t, c.Stats.CollapsedEdges)
	assert.Len(t, c.OnCutEdges, 2)
}

func TestCutWithoutDeleteKeepsArea(t *testing.T) {
	m := unitBox(3)
	c := NewPlaneCut(m, tilted())

	require.NoError(t, c.CutWithoutDelete(CutWithoutDeleteOptions{}))
	require.NoError(t, m.CheckValidity())

	assert.Zero(t, c.Stats.DeletedTriangles)
	assert.InDelta(t, 6.0, totalArea(m), 1e-9)
	assert.Empty(t, m.BoundaryEdgeIDs())
	assert.Empty(t, c.OpenBoundaries)

	dist := c.SignedDistances(InvalidDistance)
	for _, eid := range m.EdgeIDs() {
		ev := m.EdgeVertices(eid)
		s0 := geometry.SideOf(dist[ev[0]], c.PlaneTolerance)
		s1 := geometry.SideOf(dist[ev[1]], c.PlaneTolerance)
		assert.NotEqual(t, -1, s0*s1, "edge %d still crosses the plane", eid)
	}
}

func TestCutWithoutDeleteSeparatesHalves(t *testing.T) {
	m := unitBox(1)
	c := NewPlaneCut(m, horizontal(0.5))
	labels := make(map[int]int)

	require.NoError(t, c.CutWithoutDelete(CutWithoutDeleteOptions{
		SplitVerticesAtPlane:    true,
		Labels:                  labels,
		NewLabelStartID:         10,
		AddBoundariesFirstHalf:  true,
		AddBoundariesSecondHalf: true,
	}))
	require.NoError(t, m.CheckValidity())

	assert.Equal(t, 8, c.Stats.DuplicatedVertices)
	assert.Len(t, m.Components(), 2)
	assert.Len(t, m.BoundaryEdgeIDs(), 16)
	assert.InDelta(t, 6.0, totalArea(m), 1e-9)

	require.Len(t, labels, m.TriangleCount())
	for tid, l := range labels {
		if m.TriangleCentroid(tid).Z < 0.5 {
			assert.Equal(t, 10, l)
		} else {
			assert.Equal(t, 11, l)
		}
	}

	require.Len(t, c.OpenBoundaries, 2)
	assert.Equal(t, 10, c.OpenBoundaries[0].Label)
	assert.Equal(t, 1, c.OpenBoundaries[0].NormalSign)
	assert.Equal(t, 11, c.OpenBoundaries[1].Label)
	assert.Equal(t, -1, c.OpenBoundaries[1].NormalSign)
	for _, b := range c.OpenBoundaries {
		require.Len(t, b.CutLoops, 1)
		assert.Len(t, b.CutLoops[0].Vertices, 8)
		requireLoopChains(t, m, b.CutLoops[0])
	}

	require.NoError(t, c.HoleFill(nil, false))
	assert.Zero(t, c.Stats.FailedFills)
	assert.Len(t, c.HoleFillTriangles[0], 6)
	assert.Len(t, c.HoleFillTriangles[1], 6)
	assert.InDelta(t, 1.0, closedVolume(t, m), 1e-9)
	for _, tid := range c.HoleFillTriangles[1] {
		assert.InDelta(t, -1.0, m.TriangleNormal(tid).Z, 1e-9)
	}
}

func TestCutWithoutDeleteSideBoundaries(t *testing.T) {
	m := unitBox(1)
	c := NewPlaneCut(m, horizontal(0.5))

	require.NoError(t, c.CutWithoutDelete(CutWithoutDeleteOptions{AddBoundariesSecondHalf: true}))

	require.Len(t, c.OpenBoundaries, 1)
	b := c.OpenBoundaries[0]
	assert.Equal(t, 1, b.Label)
	assert.Equal(t, -1, b.NormalSign)
	require.Len(t, b.CutLoops, 1)
	requireLoopChains(t, m, b.CutLoops[0])
}

func TestCutWithoutDeleteOffset(t *testing.T) {
	m := unitBox(1)
	c := NewPlaneCut(m, horizontal(0.5))

	require.NoError(t, c.CutWithoutDelete(CutWithoutDeleteOptions{SplitVerticesAtPlane: true, Offset: 0.25}))

	bounds := m.Bounds()
	assert.InDelta(t, 1.25, bounds.Max.Z, 1e-12)
	assert.InDelta(t, 0.0, bounds.Min.Z, 1e-12)
	for _, tid := range m.TriangleIDs() {
		z := m.TriangleCentroid(tid).Z
		assert.False(t, z > 0.5 && z < 0.75, "triangle %d inside the gap", tid)
	}
}

func TestSplitEdgesOnly(t *testing.T) {
	m := unitBox(1)
	c := NewPlaneCut(m, tilted())
	selection := map[int]struct{}{2: {}, 3: {}} // the y=0 wall

	require.NoError(t, c.SplitEdgesOnly(false, selection))
	require.NoError(t, m.CheckValidity())

	assert.Positive(t, c.Stats.SplitEdges)
	assert.Zero(t, c.Stats.DeletedTriangles)
	assert.Empty(t, c.OpenBoundaries)
	assert.Equal(t, 12+2*c.Stats.SplitEdges, m.TriangleCount())
	assert.Greater(t, len(selection), 2)
	for _, tid := range m.TriangleIDs() {
		_, selected := selection[tid]
		onWall := math.Abs(m.TriangleCentroid(tid).Y) < 1e-12
		assert.Equal(t, onWall, selected, "triangle %d", tid)
	}
}

func TestSplitEdgesOnlyAssignsGroups(t *testing.T) {
	m := unitBox(1)
	c := NewPlaneCut(m, horizontal(0.5))

	require.NoError(t, c.SplitEdgesOnly(true, nil))

	groups := make(map[int]bool)
	below, above := -1, -1
	for _, tid := range m.TriangleIDs() {
		g := m.TriangleGroup(tid)
		groups[g] = true
		if m.TriangleCentroid(tid).Z < 0.5 {
			if below >= 0 {
				assert.Equal(t, below, g)
			}
			below = g
		} else {
			if above >= 0 {
				assert.Equal(t, above, g)
			}
			above = g
		}
	}
	assert.Len(t, groups, 2)
	assert.NotEqual(t, below, above)
	assert.Positive(t, below)
	assert.Positive(t, above)
}

func TestSimpleHoleFillFan(t *testing.T) {
	m := unitBox(1)
	c := NewPlaneCut(m, horizontal(0.5))
	require.NoError(t, c.Cut())
	vertices := m.VertexCount()

	require.NoError(t, c.SimpleHoleFill(FillFan))

	assert.Len(t, c.HoleFillTriangles[0], 8)
	assert.Equal(t, vertices+1, m.VertexCount())
	assert.InDelta(t, 0.5, closedVolume(t, m), 1e-9)
}

func TestHoleFillAttributes(t *testing.T) {
	m := unitBox(1)
	m.EnableMaterials()
	m.EnableUVs()
	c := NewPlaneCut(m, horizontal(0.5))
	c.MaterialID = 7
	c.ConstantGroupID = 42
	c.UVScaleFactor = 2

	require.NoError(t, c.Cut())
	require.NoError(t, c.HoleFill(polygon.EarClipper{Strict: true}, false))

	frame := geometry.NewFrame(c.Plane.Origin, c.Plane.Normal)
	require.NotEmpty(t, c.HoleFillTriangles[0])
	for _, tid := range c.HoleFillTriangles[0] {
		assert.Equal(t, 7, m.TriangleMaterial(tid))
		assert.Equal(t, 42, m.TriangleGroup(tid))
		uv := m.TriangleUVs(tid)
		for j, v := range m.Triangle(tid) {
			want := frame.ToPlane(m.Vertex(v)).Mul(2)
			assert.InDelta(t, want.X, uv[j].X, 1e-12)
			assert.InDelta(t, want.Y, uv[j].Y, 1e-12)
		}
	}
}

func TestHoleFillTransfersLabel(t *testing.T) {
	m := unitBox(1)
	c := NewPlaneCut(m, horizontal(0.5))
	c.TransferGroupToFill = true

	require.NoError(t, c.CutWithoutDelete(CutWithoutDeleteOptions{
		SplitVerticesAtPlane:    true,
		Labels:                  map[int]int{},
		NewLabelStartID:         3,
		AddBoundariesSecondHalf: true,
	}))
	require.NoError(t, c.SimpleHoleFill(FillEarClipping))

	require.Len(t, c.HoleFillTriangles, 1)
	for _, tid := range c.HoleFillTriangles[0] {
		assert.Equal(t, 4, m.TriangleGroup(tid))
	}
}

func TestHoleFillTriangulatorFailure(t *testing.T) {
	tests := []struct {
		name string
		tri  polygon.TriangulatorFunc
	}{
		{"error", func(polygon.General) ([][3]int, error) { return nil, errors.New("boom") }},
		{"bad index", func(polygon.General) ([][3]int, error) { return [][3]int{{0, 1, 99}}, nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := unitBox(1)
			var warnings bytes.Buffer
			c := NewPlaneCut(m, horizontal(0.5))
			c.Log = logging.NewWriterLogger("test", false, &bytes.Buffer{}, &warnings)

			require.NoError(t, c.Cut())
			before := m.TriangleCount()
			require.NoError(t, c.HoleFill(tt.tri, false))

			assert.Equal(t, 1, c.Stats.FailedFills)
			assert.Zero(t, c.Stats.FillTriangles)
			assert.Empty(t, c.HoleFillTriangles[0])
			assert.Equal(t, before, m.TriangleCount())
			assert.Len(t, m.BoundaryEdgeIDs(), 8)
			assert.Contains(t, warnings.String(), "WARN")
		})
	}
}

func TestHoleFillSpans(t *testing.T) {
	m := dmesh.NewGrid(2, 2, 2, 2)
	// bend the grid into a trough so the cut leaves an open span
	for _, v := range m.VertexIDs() {
		p := m.Vertex(v)
		p.Z = (p.X - 1) * (p.X - 1)
		m.SetVertex(v, p)
	}
	c := NewPlaneCut(m, horizontal(0.5))

	require.NoError(t, c.Cut())
	b := c.OpenBoundaries[0]
	require.True(t, b.FoundOpenSpans)
	require.Len(t, b.CutSpans, 2)

	require.NoError(t, c.HoleFill(nil, false))
	assert.Zero(t, c.Stats.FillTriangles)

	// each span is a straight line, closing it encloses nothing
	require.NoError(t, c.HoleFill(nil, true))
	assert.Zero(t, c.Stats.FillTriangles)
	assert.Equal(t, 2, c.Stats.FailedFills)
	assert.Empty(t, c.HoleFillTriangles[0])
	for _, tid := range m.TriangleIDs() {
		assert.Greater(t, m.TriangleArea(tid), 1e-12, "triangle %d", tid)
	}
}

func TestHoleFillCapsSpans(t *testing.T) {
	m := unitBox(1)
	// open the y=1 wall so the cut leaves one U-shaped span
	require.NoError(t, m.RemoveTriangle(6, false))
	require.NoError(t, m.RemoveTriangle(7, false))
	c := NewPlaneCut(m, horizontal(0.5))

	require.NoError(t, c.Cut())
	b := c.OpenBoundaries[0]
	require.Empty(t, b.CutLoops)
	require.Len(t, b.CutSpans, 1)
	require.Len(t, b.CutSpans[0].Vertices, 7)

	require.NoError(t, c.HoleFill(nil, true))
	assert.Zero(t, c.Stats.FailedFills)
	require.Len(t, c.HoleFillTriangles[0], 5)
	area := 0.0
	for _, tid := range c.HoleFillTriangles[0] {
		area += m.TriangleArea(tid)
		assert.InDelta(t, 1.0, m.TriangleNormal(tid).Z, 1e-9)
	}
	assert.InDelta(t, 1.0, area, 1e-9)
}

// hollowBox is a 3x3x3 box with a 1x1x1 cavity in its centre.
func hollowBox() *dmesh.Mesh {
	m := dmesh.NewBox(geometry.NewVector3(0, 0, 0), geometry.NewVector3(3, 3, 3), 1)
	inner := dmesh.NewBox(geometry.NewVector3(1, 1, 1), geometry.NewVector3(2, 2, 2), 1)
	ids := make(map[int]int)
	for _, v := range inner.VertexIDs() {
		ids[v] = m.AppendVertex(inner.Vertex(v))
	}
	for _, tid := range inner.TriangleIDs() {
		tv := inner.Triangle(tid)
		// reversed, the cavity faces inwards
		_, _ = m.AppendTriangle([3]int{ids[tv[0]], ids[tv[2]], ids[tv[1]]}, 0)
	}
	return m
}

func TestHoleFillNestsCavity(t *testing.T) {
	m := hollowBox()
	c := NewPlaneCut(m, horizontal(1.5))

	require.NoError(t, c.Cut())
	require.Len(t, c.OpenBoundaries, 1)
	b := c.OpenBoundaries[0]
	require.Len(t, b.CutLoops, 2)
	for _, l := range b.CutLoops {
		requireLoopChains(t, m, l)
	}

	require.NoError(t, c.HoleFill(nil, false))
	assert.Zero(t, c.Stats.FailedFills)
	assert.Len(t, c.HoleFillTriangles[0], 16)
	assert.Equal(t, 16, c.Stats.FillTriangles)
	assert.InDelta(t, 13.0, closedVolume(t, m), 1e-9)
}

func TestSimpleHoleFillSkipsFailedLoops(t *testing.T) {
	// two pyramids touching at their apex, cut through the apex
	m := dmesh.New()
	apex := m.AppendVertex(geometry.NewVector3(0, 0, 0))
	var up, down [4]int
	for i, c := range [4][2]float64{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
		up[i] = m.AppendVertex(geometry.NewVector3(c[0], c[1], 1))
		down[i] = m.AppendVertex(geometry.NewVector3(c[0], c[1], -1))
	}
	for _, tv := range [][3]int{
		{up[0], up[1], up[2]}, {up[0], up[2], up[3]},
		{down[0], down[2], down[1]}, {down[0], down[3], down[2]},
	} {
		_, err := m.AppendTriangle(tv, 0)
		require.NoError(t, err)
	}
	for i := 0; i < 4; i++ {
		j := (i + 1) % 4
		_, err := m.AppendTriangle([3]int{apex, up[j], up[i]}, 0)
		require.NoError(t, err)
		_, err = m.AppendTriangle([3]int{apex, down[i], down[j]}, 0)
		require.NoError(t, err)
	}

	var warnings bytes.Buffer
	c := NewPlaneCut(m, geometry.NewPlane(geometry.NewVector3(0, 0, 0), geometry.NewVector3(1, 0, 0)))
	c.Log = logging.NewWriterLogger("test", false, &bytes.Buffer{}, &warnings)

	require.NoError(t, c.Cut())
	require.Len(t, c.OpenBoundaries, 1)
	assert.True(t, c.OpenBoundaries[0].CutLoopsFailed)
	before := m.TriangleCount()

	require.NoError(t, c.SimpleHoleFill(FillEarClipping))
	assert.Zero(t, c.Stats.FillTriangles)
	assert.Empty(t, c.HoleFillTriangles[0])
	assert.Equal(t, before, m.TriangleCount())
	assert.Contains(t, warnings.String(), "loops failed")
}

func TestEdgeFilter(t *testing.T) {
	m := unitBox(1)
	c := NewPlaneCut(m, horizontal(0.5))
	// only the x=0 wall
	c.EdgeFilter = func(eid int) bool {
		ev := m.EdgeVertices(eid)
		return m.Vertex(ev[0]).X == 0 && m.Vertex(ev[1]).X == 0
	}

	require.NoError(t, c.SplitEdgesOnly(false, nil))
	require.NoError(t, m.CheckValidity())
	assert.Equal(t, 3, c.Stats.SplitEdges)
	assert.Equal(t, 12+2*3, m.TriangleCount())
	for _, v := range c.OnPlaneVertices {
		assert.Zero(t, m.Vertex(v).X)
	}
}

func TestCutKeepsUnsplitCrossingTriangles(t *testing.T) {
	m := unitBox(1)
	c := NewPlaneCut(m, horizontal(0.5))
	c.EdgeFilter = func(int) bool { return false }

	require.NoError(t, c.Cut())

	assert.Zero(t, c.Stats.SplitEdges)
	// only the top face lies wholly above the plane
	assert.Equal(t, 2, c.Stats.DeletedTriangles)
	assert.Equal(t, 10, m.TriangleCount())
	require.Len(t, c.OpenBoundaries, 1)
	assert.Empty(t, c.OpenBoundaries[0].CutLoops)
	assert.Empty(t, c.OpenBoundaries[0].CutSpans)
}

func TestFillRejectsZeroAreaTriangle(t *testing.T) {
	m := dmesh.New()
	a := m.AppendVertex(geometry.NewVector3(0, 0, 0))
	b := m.AppendVertex(geometry.NewVector3(1, 0, 0))
	d := m.AppendVertex(geometry.NewVector3(2, 0, 0))
	c := NewPlaneCut(m, horizontal(0))

	_, err := c.appendFillTriangle([3]int{a, b, d}, 0, c.capFrame(OpenBoundary{NormalSign: 1}))
	assert.ErrorIs(t, err, errZeroArea)
	assert.Zero(t, m.TriangleCount())
	assert.Zero(t, c.Stats.FillTriangles)
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "split", PhaseSplit.String())
	assert.Equal(t, "fill", PhaseFill.String())
	assert.Equal(t, "fan", FillFan.String())
}
