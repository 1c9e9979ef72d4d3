package polygon

import (
	"errors"
	"testing"

	"github.com/philipparndt/meshcut/pkg/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(x0, y0, size float64) Polygon {
	return Polygon{
		geometry.NewVector2(x0, y0),
		geometry.NewVector2(x0+size, y0),
		geometry.NewVector2(x0+size, y0+size),
		geometry.NewVector2(x0, y0+size),
	}
}

func triangulatedArea(t *testing.T, g General, tris [][3]int) float64 {
	t.Helper()
	area := 0.0
	for _, tri := range tris {
		a, b, c := g.Vertex(tri[0]), g.Vertex(tri[1]), g.Vertex(tri[2])
		o := geometry.Orient(a, b, c)
		assert.Greater(t, o, 0.0, "triangle %v is not counter-clockwise", tri)
		area += o / 2
	}
	return area
}

func TestSignedArea(t *testing.T) {
	p := square(0, 0, 2)

	assert.InDelta(t, 4.0, p.SignedArea(), 1e-12)
	assert.InDelta(t, -4.0, p.Reversed().SignedArea(), 1e-12)
	assert.False(t, p.IsClockwise())
	assert.True(t, p.Reversed().IsClockwise())
	assert.InDelta(t, 4.0, p.Reversed().Area(), 1e-12)
}

func TestContains(t *testing.T) {
	p := square(0, 0, 2)

	assert.True(t, p.Contains(geometry.NewVector2(1, 1)))
	assert.False(t, p.Contains(geometry.NewVector2(3, 1)))
	assert.False(t, p.Contains(geometry.NewVector2(-0.5, 1)))
	assert.True(t, p.ContainsPolygon(square(0.5, 0.5, 1)))
	assert.False(t, p.ContainsPolygon(square(1.5, 1.5, 1)))
}

func TestNest(t *testing.T) {
	big := square(0, 0, 10)
	small := square(20, 0, 2)
	hole := square(2, 2, 2).Reversed()
	stray := square(50, 50, 1).Reversed()

	generals, owners, orphans := Nest([]Polygon{hole, big, stray, small})

	require.Len(t, generals, 2)
	assert.Equal(t, big, generals[0].Outer)
	assert.Equal(t, []Polygon{hole}, generals[0].Holes)
	assert.Empty(t, generals[1].Holes)
	assert.Equal(t, [][]int{{1, 0}, {3}}, owners)
	assert.Equal(t, []int{2}, orphans)
	assert.InDelta(t, 96.0, generals[0].Area(), 1e-12)
}

func TestNestPicksSmallestOuter(t *testing.T) {
	outer := square(0, 0, 10)
	inner := square(1, 1, 8)
	hole := square(4, 4, 1).Reversed()

	generals, _, _ := Nest([]Polygon{outer, inner, hole})

	require.Len(t, generals, 2)
	assert.Empty(t, generals[0].Holes)
	assert.Len(t, generals[1].Holes, 1)
}

func TestEarClipSquare(t *testing.T) {
	g := General{Outer: square(0, 0, 1)}

	tris, err := EarClipper{}.Triangulate(g)
	require.NoError(t, err)

	assert.Len(t, tris, 2)
	assert.InDelta(t, 1.0, triangulatedArea(t, g, tris), 1e-12)
}

func TestEarClipClockwiseInput(t *testing.T) {
	g := General{Outer: square(0, 0, 1).Reversed()}

	tris, err := EarClipper{}.Triangulate(g)
	require.NoError(t, err)

	assert.Len(t, tris, 2)
	assert.InDelta(t, 1.0, triangulatedArea(t, g, tris), 1e-12)
}

func TestEarClipConcave(t *testing.T) {
	l := Polygon{
		geometry.NewVector2(0, 0),
		geometry.NewVector2(2, 0),
		geometry.NewVector2(2, 1),
		geometry.NewVector2(1, 1),
		geometry.NewVector2(1, 2),
		geometry.NewVector2(0, 2),
	}
	g := General{Outer: l}

	tris, err := EarClipper{Strict: true}.Triangulate(g)
	require.NoError(t, err)

	assert.Len(t, tris, 4)
	assert.InDelta(t, 3.0, triangulatedArea(t, g, tris), 1e-12)
}

func TestEarClipCollinearVertices(t *testing.T) {
	p := Polygon{
		geometry.NewVector2(0, 0), geometry.NewVector2(0.5, 0),
		geometry.NewVector2(1, 0), geometry.NewVector2(1, 0.5),
		geometry.NewVector2(1, 1), geometry.NewVector2(0.5, 1),
		geometry.NewVector2(0, 1), geometry.NewVector2(0, 0.5),
	}
	g := General{Outer: p}

	tris, err := EarClipper{Strict: true}.Triangulate(g)
	require.NoError(t, err)

	assert.Len(t, tris, 6)
	assert.InDelta(t, 1.0, triangulatedArea(t, g, tris), 1e-12)
}

func TestEarClipWithHole(t *testing.T) {
	g := General{
		Outer: square(0, 0, 4),
		Holes: []Polygon{square(1, 1, 2).Reversed()},
	}

	tris, err := EarClipper{Strict: true}.Triangulate(g)
	require.NoError(t, err)

	assert.Len(t, tris, 8)
	assert.InDelta(t, 12.0, triangulatedArea(t, g, tris), 1e-9)
	used := map[int]bool{}
	for _, tri := range tris {
		for _, i := range tri {
			used[i] = true
		}
	}
	assert.Len(t, used, 8)
}

func TestEarClipTooFewVertices(t *testing.T) {
	_, err := EarClipper{}.Triangulate(General{Outer: square(0, 0, 1)[:2]})
	assert.ErrorIs(t, err, ErrTooFewVertices)
}

func TestTriangulatorFunc(t *testing.T) {
	boom := errors.New("boom")
	var tr Triangulator = TriangulatorFunc(func(General) ([][3]int, error) { return nil, boom })

	_, err := tr.Triangulate(General{Outer: square(0, 0, 1)})
	assert.ErrorIs(t, err, boom)
}

func TestTessSquare(t *testing.T) {
	g := General{Outer: square(1000, 1000, 1).Reversed()}

	tris, err := Tess{}.Triangulate(g)
	require.NoError(t, err)

	assert.Len(t, tris, 2)
	assert.InDelta(t, 1.0, triangulatedArea(t, g, tris), 1e-9)
}

func TestTessWithHoles(t *testing.T) {
	g := General{
		Outer: square(0, 0, 10),
		Holes: []Polygon{square(1, 1, 2).Reversed(), square(5, 5, 3)},
	}

	tris, err := Tess{}.Triangulate(g)
	require.NoError(t, err)

	assert.InDelta(t, 87.0, triangulatedArea(t, g, tris), 1e-6)
	used := map[int]bool{}
	for _, tri := range tris {
		for _, i := range tri {
			require.Less(t, i, g.VertexCount())
			used[i] = true
		}
	}
	assert.Len(t, used, 12)
}

func TestTessSelfIntersecting(t *testing.T) {
	bowtie := Polygon{
		geometry.NewVector2(0, 0),
		geometry.NewVector2(2, 2),
		geometry.NewVector2(2, 0),
		geometry.NewVector2(0, 2),
	}

	_, err := Tess{}.Triangulate(General{Outer: bowtie})
	assert.ErrorIs(t, err, ErrNewVertex)
}

func TestTessTooFewVertices(t *testing.T) {
	_, err := Tess{}.Triangulate(General{Outer: square(0, 0, 1)[:2]})
	assert.ErrorIs(t, err, ErrTooFewVertices)
}

func TestTessCollinearVertices(t *testing.T) {
	p := Polygon{
		geometry.NewVector2(0, 0), geometry.NewVector2(0.5, 0),
		geometry.NewVector2(1, 0), geometry.NewVector2(1, 0.5),
		geometry.NewVector2(1, 1), geometry.NewVector2(0.5, 1),
		geometry.NewVector2(0, 1), geometry.NewVector2(0, 0.5),
	}
	g := General{Outer: p}

	tris, err := Tess{}.Triangulate(g)
	require.NoError(t, err)

	assert.Len(t, tris, 6)
	assert.InDelta(t, 1.0, triangulatedArea(t, g, tris), 1e-9)
}

func TestFlipDegenerate(t *testing.T) {
	// 0-1-2 collinear along the bottom edge, 3 on top
	g := General{Outer: Polygon{
		geometry.NewVector2(0, 0),
		geometry.NewVector2(1, 0),
		geometry.NewVector2(2, 0),
		geometry.NewVector2(1, 1),
	}}

	tris, err := flipDegenerate(g, [][3]int{{0, 1, 2}, {2, 3, 0}}, 1e-12)
	require.NoError(t, err)
	require.Len(t, tris, 2)
	for _, tri := range tris {
		assert.Contains(t, tri[:], 1)
		assert.Contains(t, tri[:], 3)
	}
	assert.InDelta(t, 1.0, triangulatedArea(t, g, tris), 1e-12)

	_, err = flipDegenerate(g, [][3]int{{0, 1, 2}}, 1e-12)
	assert.Error(t, err)
}
