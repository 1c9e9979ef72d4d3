package polygon

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/hajimehoshi/go-libtess2"
	"github.com/philipparndt/meshcut/pkg/geometry"
)

// ErrNewVertex is returned when the tessellation needs a vertex that is not
// part of the input, which happens for self-intersecting loops.
var ErrNewVertex = errors.New("tessellation added a vertex")

// Tess triangulates with libtess2 using the odd winding rule. Loop
// orientation does not matter. Coordinates are handed over as float32
// relative to the bounds centre.
type Tess struct{}

func (Tess) Triangulate(g General) (tris [][3]int, err error) {
	if len(g.Outer) < 3 {
		return nil, ErrTooFewVertices
	}
	defer func() {
		// libtess2 panics on assertion failures
		if r := recover(); r != nil {
			tris, err = nil, fmt.Errorf("libtess2: %v", r)
		}
	}()

	lo, hi := g.Outer.Bounds()
	center := lo.Add(hi).Mul(0.5)
	scale := math.Max(hi.Sub(lo).Length(), 1)

	type key struct{ x, y float32 }
	index := make(map[key]int, g.VertexCount())
	var inputs []libtess2.Vertex
	contours := make([]libtess2.Contour, 0, 1+len(g.Holes))
	for _, loop := range append([]Polygon{g.Outer}, g.Holes...) {
		contour := make(libtess2.Contour, len(loop))
		for i, p := range loop {
			d := p.Sub(center)
			v := libtess2.Vertex{X: float32(d.X), Y: float32(d.Y)}
			contour[i] = v
			if _, ok := index[key{v.X, v.Y}]; !ok {
				index[key{v.X, v.Y}] = len(inputs)
			}
			inputs = append(inputs, v)
		}
		contours = append(contours, contour)
	}

	elements, verts, err := libtess2.Tesselate(contours, libtess2.WindingRuleOdd)
	if err != nil {
		return nil, err
	}

	remap := make([]int, len(verts))
	tol := float32(scale * 1e-6)
	for i, v := range verts {
		if k, ok := index[key{v.X, v.Y}]; ok {
			remap[i] = k
			continue
		}
		k := nearest(inputs, v, tol)
		if k < 0 {
			return nil, fmt.Errorf("%w at (%g, %g)", ErrNewVertex, v.X, v.Y)
		}
		remap[i] = k
	}

	tris = make([][3]int, 0, len(elements)/3)
	for i := 0; i+2 < len(elements); i += 3 {
		t := [3]int{remap[elements[i]], remap[elements[i+1]], remap[elements[i+2]]}
		if t[0] == t[1] || t[1] == t[2] || t[2] == t[0] {
			return nil, fmt.Errorf("libtess2: coincident vertices in triangle %v", t)
		}
		tris = append(tris, orient(g, t))
	}
	return flipDegenerate(g, tris, scale*scale*1e-12)
}

// flipDegenerate flips the longest edge of every triangle of area at most eps
// with the triangle on its other side. libtess2 emits such triangles for
// collinear boundary vertices.
func flipDegenerate(g General, tris [][3]int, eps float64) ([][3]int, error) {
	area := func(t [3]int) float64 {
		return geometry.Orient(g.Vertex(t[0]), g.Vertex(t[1]), g.Vertex(t[2])) / 2
	}
	for n := 0; n < 4*len(tris); n++ {
		bad := slices.IndexFunc(tris, func(t [3]int) bool { return area(t) <= eps })
		if bad < 0 {
			return tris, nil
		}
		t := tris[bad]
		j, longest := 0, -1.0
		for k := 0; k < 3; k++ {
			if d := g.Vertex(t[(k+1)%3]).Sub(g.Vertex(t[k])).Length(); d > longest {
				j, longest = k, d
			}
		}
		a, b, m := t[j], t[(j+1)%3], t[(j+2)%3]

		other := -1
		for i, u := range tris {
			if i != bad && slices.Contains(u[:], a) && slices.Contains(u[:], b) {
				other = i
				break
			}
		}
		if other < 0 {
			return nil, fmt.Errorf("libtess2: degenerate triangle %v on the boundary", t)
		}
		u := tris[other]
		d := u[0] + u[1] + u[2] - a - b

		tris[bad] = orient(g, [3]int{a, m, d})
		tris[other] = orient(g, [3]int{m, b, d})
	}
	return nil, errors.New("libtess2: degenerate triangles left after flipping")
}

func orient(g General, t [3]int) [3]int {
	if geometry.Orient(g.Vertex(t[0]), g.Vertex(t[1]), g.Vertex(t[2])) < 0 {
		t[1], t[2] = t[2], t[1]
	}
	return t
}

// nearest returns the input closest to v within tol, or -1.
func nearest(inputs []libtess2.Vertex, v libtess2.Vertex, tol float32) int {
	best := -1
	bestD := tol * tol
	for i, p := range inputs {
		dx, dy := p.X-v.X, p.Y-v.Y
		if d := dx*dx + dy*dy; d <= bestD {
			best, bestD = i, d
		}
	}
	return best
}
