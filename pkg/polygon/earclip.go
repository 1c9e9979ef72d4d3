package polygon

import (
	"math"
	"slices"

	"github.com/philipparndt/meshcut/pkg/geometry"
)

// EarClipper triangulates by clipping convex corners. Holes are first
// bridged into the outer loop, turning the general into one weakly simple
// loop. When no ear can be found (self-overlapping input) the rest of the
// loop is closed with a fan unless Strict is set.
type EarClipper struct {
	Strict bool
}

func (e EarClipper) Triangulate(g General) ([][3]int, error) {
	if len(g.Outer) < 3 {
		return nil, ErrTooFewVertices
	}
	verts := make([]geometry.Vector2, 0, g.VertexCount())
	verts = append(verts, g.Outer...)

	loop := make([]int, len(g.Outer))
	for i := range loop {
		loop[i] = i
	}
	if g.Outer.IsClockwise() {
		slices.Reverse(loop)
	}

	holes := make([][]int, 0, len(g.Holes))
	for _, h := range g.Holes {
		if len(h) < 3 {
			verts = append(verts, h...)
			continue
		}
		idx := make([]int, len(h))
		for i := range h {
			idx[i] = len(verts) + i
		}
		verts = append(verts, h...)
		if !h.IsClockwise() {
			slices.Reverse(idx)
		}
		holes = append(holes, idx)
	}

	// bridge the hole reaching furthest right first
	slices.SortFunc(holes, func(a, b []int) int {
		return cmpFloat(maxX(verts, b), maxX(verts, a))
	})
	for _, h := range holes {
		loop = bridgeHole(verts, loop, h)
	}

	return e.clip(verts, loop)
}

func (e EarClipper) clip(verts []geometry.Vector2, loop []int) ([][3]int, error) {
	tris := make([][3]int, 0, len(loop)-2)
	for len(loop) > 3 {
		found := false
		for i := range loop {
			if isEar(verts, loop, i) {
				n := len(loop)
				tris = append(tris, [3]int{loop[(i-1+n)%n], loop[i], loop[(i+1)%n]})
				loop = slices.Delete(loop, i, i+1)
				found = true
				break
			}
		}
		if !found {
			if e.Strict {
				return tris, ErrNoEar
			}
			for i := 1; i < len(loop)-1; i++ {
				tris = append(tris, [3]int{loop[0], loop[i], loop[i+1]})
			}
			return tris, nil
		}
	}
	return append(tris, [3]int{loop[0], loop[1], loop[2]}), nil
}

// isEar reports whether the corner at loop[i] is convex and no other loop
// vertex lies inside the triangle it cuts off.
func isEar(verts []geometry.Vector2, loop []int, i int) bool {
	n := len(loop)
	ia, ib, ic := loop[(i-1+n)%n], loop[i], loop[(i+1)%n]
	a, b, c := verts[ia], verts[ib], verts[ic]
	if geometry.Orient(a, b, c) <= 0 {
		return false
	}
	for _, k := range loop {
		if k == ia || k == ib || k == ic {
			continue
		}
		p := verts[k]
		// bridge duplicates share a position with a corner
		if p == a || p == b || p == c {
			continue
		}
		if pointInTriangle(p, a, b, c) {
			return false
		}
	}
	return true
}

// pointInTriangle includes the triangle boundary.
func pointInTriangle(p, a, b, c geometry.Vector2) bool {
	d1 := geometry.Orient(a, b, p)
	d2 := geometry.Orient(b, c, p)
	d3 := geometry.Orient(c, a, p)
	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}

// bridgeHole splices a clockwise hole into a counter-clockwise loop through
// a mutually visible vertex pair, duplicating both bridge vertices.
func bridgeHole(verts []geometry.Vector2, loop, hole []int) []int {
	hm := 0
	for i, k := range hole {
		if verts[k].X > verts[hole[hm]].X {
			hm = i
		}
	}
	m := verts[hole[hm]]

	bridge := visibleVertex(verts, loop, m)

	out := make([]int, 0, len(loop)+len(hole)+2)
	out = append(out, loop[:bridge+1]...)
	for i := 0; i <= len(hole); i++ {
		out = append(out, hole[(hm+i)%len(hole)])
	}
	out = append(out, loop[bridge])
	out = append(out, loop[bridge+1:]...)
	return out
}

// visibleVertex returns the position in loop of a vertex visible from m,
// found by casting a ray from m towards +x.
func visibleVertex(verts []geometry.Vector2, loop []int, m geometry.Vector2) int {
	n := len(loop)
	best := -1
	bestX := math.Inf(1)
	var hit geometry.Vector2
	for i := range loop {
		a, b := verts[loop[i]], verts[loop[(i+1)%n]]
		if (a.Y > m.Y) == (b.Y > m.Y) && a.Y != m.Y && b.Y != m.Y {
			continue
		}
		if a.Y == b.Y {
			continue
		}
		x := a.X + (m.Y-a.Y)*(b.X-a.X)/(b.Y-a.Y)
		if x < m.X || x >= bestX {
			continue
		}
		bestX = x
		hit = geometry.NewVector2(x, m.Y)
		// the endpoint furthest in +x is the candidate
		if a.X > b.X {
			best = i
		} else {
			best = (i + 1) % n
		}
		if a == hit {
			best = i
		} else if b == hit {
			best = (i + 1) % n
		}
	}
	if best < 0 {
		// m lies outside the loop; fall back to the nearest vertex
		nearest, d := 0, math.Inf(1)
		for i, k := range loop {
			if dd := verts[k].Sub(m).Length(); dd < d {
				nearest, d = i, dd
			}
		}
		return nearest
	}

	p := verts[loop[best]]
	if p == hit {
		return best
	}

	// reflex vertices inside (m, hit, p) may block the view; take the one
	// closest in angle to the ray
	bestAngle := angleFromRay(m, p)
	for i := range loop {
		q := verts[loop[i]]
		if q == p || !isReflex(verts, loop, i) {
			continue
		}
		if !pointInTriangle(q, m, hit, p) && !pointInTriangle(q, m, p, hit) {
			continue
		}
		if ang := angleFromRay(m, q); ang < bestAngle || (ang == bestAngle && q.Sub(m).Length() < p.Sub(m).Length()) {
			best, bestAngle, p = i, ang, q
		}
	}
	return best
}

func isReflex(verts []geometry.Vector2, loop []int, i int) bool {
	n := len(loop)
	return geometry.Orient(verts[loop[(i-1+n)%n]], verts[loop[i]], verts[loop[(i+1)%n]]) < 0
}

func angleFromRay(m, q geometry.Vector2) float64 {
	d := q.Sub(m)
	return math.Abs(math.Atan2(d.Y, d.X))
}

func maxX(verts []geometry.Vector2, idx []int) float64 {
	x := math.Inf(-1)
	for _, k := range idx {
		x = math.Max(x, verts[k].X)
	}
	return x
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
