// Package polygon holds planar polygon helpers and the triangulators used to
// cap cut loops.
package polygon

import (
	"errors"
	"math"
	"slices"

	"github.com/philipparndt/meshcut/pkg/geometry"
)

var (
	ErrTooFewVertices = errors.New("polygon needs at least 3 vertices")
	ErrNoEar          = errors.New("no ear found")
)

// Polygon is a closed 2D vertex loop; the last vertex connects to the first.
type Polygon []geometry.Vector2

// SignedArea is positive for counter-clockwise loops.
func (p Polygon) SignedArea() float64 {
	area := 0.0
	for i := range p {
		a, b := p[i], p[(i+1)%len(p)]
		area += a.X*b.Y - b.X*a.Y
	}
	return area / 2
}

func (p Polygon) Area() float64 {
	return math.Abs(p.SignedArea())
}

func (p Polygon) IsClockwise() bool {
	return p.SignedArea() < 0
}

// Reversed returns a copy with the opposite winding.
func (p Polygon) Reversed() Polygon {
	out := slices.Clone(p)
	slices.Reverse(out)
	return out
}

// Contains reports whether q is strictly inside p (even-odd rule).
func (p Polygon) Contains(q geometry.Vector2) bool {
	inside := false
	for i, j := 0, len(p)-1; i < len(p); j, i = i, i+1 {
		a, b := p[i], p[j]
		if (a.Y > q.Y) != (b.Y > q.Y) {
			x := a.X + (q.Y-a.Y)*(b.X-a.X)/(b.Y-a.Y)
			if q.X < x {
				inside = !inside
			}
		}
	}
	return inside
}

// ContainsPolygon reports whether every vertex of other lies inside p.
func (p Polygon) ContainsPolygon(other Polygon) bool {
	for _, q := range other {
		if !p.Contains(q) {
			return false
		}
	}
	return len(other) > 0
}

// Bounds returns the component-wise minimum and maximum.
func (p Polygon) Bounds() (geometry.Vector2, geometry.Vector2) {
	lo := geometry.NewVector2(math.Inf(1), math.Inf(1))
	hi := geometry.NewVector2(math.Inf(-1), math.Inf(-1))
	for _, v := range p {
		lo = geometry.NewVector2(math.Min(lo.X, v.X), math.Min(lo.Y, v.Y))
		hi = geometry.NewVector2(math.Max(hi.X, v.X), math.Max(hi.Y, v.Y))
	}
	return lo, hi
}

// Centroid is the vertex average.
func (p Polygon) Centroid() geometry.Vector2 {
	var c geometry.Vector2
	for _, v := range p {
		c = c.Add(v)
	}
	if len(p) == 0 {
		return c
	}
	return c.Mul(1 / float64(len(p)))
}

// General is an outer loop with zero or more holes.
type General struct {
	Outer Polygon
	Holes []Polygon
}

// VertexCount is the number of vertices over the outer loop and all holes.
func (g General) VertexCount() int {
	n := len(g.Outer)
	for _, h := range g.Holes {
		n += len(h)
	}
	return n
}

// Vertex resolves a combined index: outer vertices first, then each hole in order.
func (g General) Vertex(i int) geometry.Vector2 {
	if i < len(g.Outer) {
		return g.Outer[i]
	}
	i -= len(g.Outer)
	for _, h := range g.Holes {
		if i < len(h) {
			return h[i]
		}
		i -= len(h)
	}
	panic("polygon: vertex index out of range")
}

// Area is the outer area minus the hole areas.
func (g General) Area() float64 {
	a := g.Outer.Area()
	for _, h := range g.Holes {
		a -= h.Area()
	}
	return a
}

// Nest sorts loops into generals: counter-clockwise loops are outers and
// clockwise loops are holes placed in the smallest outer containing them.
// Holes without a containing outer are returned by index in orphans.
func Nest(loops []Polygon) (generals []General, owners [][]int, orphans []int) {
	var outers []int
	for i, l := range loops {
		if !l.IsClockwise() {
			outers = append(outers, i)
		}
	}
	generals = make([]General, len(outers))
	owners = make([][]int, len(outers))
	for k, i := range outers {
		generals[k].Outer = loops[i]
		owners[k] = []int{i}
	}
	for i, l := range loops {
		if !l.IsClockwise() {
			continue
		}
		best, bestArea := -1, math.Inf(1)
		for k, oi := range outers {
			if a := loops[oi].Area(); a < bestArea && loops[oi].ContainsPolygon(l) {
				best, bestArea = k, a
			}
		}
		if best < 0 {
			orphans = append(orphans, i)
			continue
		}
		generals[best].Holes = append(generals[best].Holes, l)
		owners[best] = append(owners[best], i)
	}
	return generals, owners, orphans
}

// Triangulator fills a polygon with holes. Returned indices address the
// combined vertex list of the general (see General.Vertex) and every
// triangle is counter-clockwise.
type Triangulator interface {
	Triangulate(g General) ([][3]int, error)
}

// TriangulatorFunc adapts a function to the Triangulator interface.
type TriangulatorFunc func(g General) ([][3]int, error)

func (f TriangulatorFunc) Triangulate(g General) ([][3]int, error) {
	return f(g)
}
