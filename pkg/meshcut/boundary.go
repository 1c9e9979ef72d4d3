package meshcut

import (
	"slices"

	"github.com/philipparndt/meshcut/pkg/dmesh"
)

// directedEdge is a cut edge oriented as its owning triangle runs it.
type directedEdge struct {
	eid      int
	from, to int
}

// extractBoundary walks the cut edges that bound the triangles accepted by
// inside into loops and spans. An edge bounds the set when exactly one of its
// triangles is inside; the walk follows that triangle's winding.
func (c *PlaneCut) extractBoundary(st *cutState, inside func(tid int) bool, label, normalSign int) OpenBoundary {
	mesh := c.Mesh
	b := OpenBoundary{Label: label, NormalSign: normalSign}

	var candidates []int
	for _, set := range []map[int]struct{}{st.onCut, st.zero} {
		for e := range set {
			if mesh.IsEdge(e) {
				candidates = append(candidates, e)
			}
		}
	}
	slices.Sort(candidates)
	candidates = slices.Compact(candidates)

	outgoing := make(map[int][]directedEdge)
	incoming := make(map[int]int)
	var all []directedEdge
	for _, eid := range candidates {
		owner := dmesh.InvalidID
		count := 0
		for _, t := range mesh.EdgeTriangles(eid) {
			if t != dmesh.InvalidID && inside(t) {
				owner = t
				count++
			}
		}
		if count != 1 {
			continue
		}
		from, to := orientInTriangle(mesh, eid, owner)
		de := directedEdge{eid: eid, from: from, to: to}
		outgoing[from] = append(outgoing[from], de)
		incoming[to]++
		all = append(all, de)
	}

	for v, out := range outgoing {
		if len(out) > 1 || incoming[v] > 1 {
			b.CutLoopsFailed = true
		}
	}

	visited := make(map[int]bool, len(all))
	walk := func(start directedEdge) (verts, edges []int, closed bool) {
		cur := start
		verts = append(verts, start.from)
		for {
			visited[cur.eid] = true
			edges = append(edges, cur.eid)
			if cur.to == start.from {
				return verts, edges, true
			}
			var next []directedEdge
			for _, de := range outgoing[cur.to] {
				if !visited[de.eid] {
					next = append(next, de)
				}
			}
			verts = append(verts, cur.to)
			if len(next) == 0 {
				return verts, edges, false
			}
			cur = next[0]
		}
	}

	record := func(verts, edges []int, closed bool) {
		if closed {
			b.CutLoops = append(b.CutLoops, EdgeLoop{Vertices: verts, Edges: edges})
			return
		}
		b.CutSpans = append(b.CutSpans, EdgeSpan{Vertices: verts, Edges: edges})
		b.FoundOpenSpans = true
	}

	// spans start where nothing comes in
	for _, de := range all {
		if !visited[de.eid] && incoming[de.from] == 0 {
			record(walk(de))
		}
	}
	for _, de := range all {
		if !visited[de.eid] {
			record(walk(de))
		}
	}
	if b.FoundOpenSpans {
		c.log().Warnf("boundary %d: %d open spans along the cut", label, len(b.CutSpans))
	}
	if b.CutLoopsFailed {
		c.log().Warnf("boundary %d: cut edges do not form simple loops", label)
	}
	return b
}

// orientInTriangle returns the endpoints of eid in the order tid runs them.
func orientInTriangle(mesh *dmesh.Mesh, eid, tid int) (int, int) {
	ev := mesh.EdgeVertices(eid)
	tv := mesh.Triangle(tid)
	for j := 0; j < 3; j++ {
		if tv[j] == ev[1] && tv[(j+1)%3] == ev[0] {
			return ev[1], ev[0]
		}
	}
	return ev[0], ev[1]
}

// extractSideBoundaries records the boundaries of CutWithoutDelete, per
// label when labels were requested and per side otherwise.
func (c *PlaneCut) extractSideBoundaries(st *cutState, sides []int, opts CutWithoutDeleteOptions) {
	wanted := func(side int) bool {
		return (side < 0 && opts.AddBoundariesFirstHalf) || (side > 0 && opts.AddBoundariesSecondHalf)
	}

	if opts.Labels == nil {
		for i, side := range []int{-1, 1} {
			if !wanted(side) {
				continue
			}
			b := c.extractBoundary(st, func(tid int) bool { return sides[tid] == side }, i, -side)
			c.OpenBoundaries = append(c.OpenBoundaries, b)
		}
		return
	}

	labelSide := make(map[int]int)
	for tid, l := range opts.Labels {
		if c.Mesh.IsTriangle(tid) {
			labelSide[l] = sides[tid]
		}
	}
	labels := make([]int, 0, len(labelSide))
	for l := range labelSide {
		labels = append(labels, l)
	}
	slices.Sort(labels)
	for _, l := range labels {
		side := labelSide[l]
		if !wanted(side) {
			continue
		}
		b := c.extractBoundary(st, func(tid int) bool {
			got, ok := opts.Labels[tid]
			return ok && got == l
		}, l, -side)
		c.OpenBoundaries = append(c.OpenBoundaries, b)
	}
}
