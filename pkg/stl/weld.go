package stl

import (
	"errors"
	"math"

	"github.com/philipparndt/meshcut/pkg/dmesh"
	"github.com/philipparndt/meshcut/pkg/geometry"
)

// DefaultWeldTolerance merges vertices closer than this when importing.
const DefaultWeldTolerance = 1e-6

// Welder appends vertices to a mesh, reusing an existing vertex when one lies
// within the tolerance. Vertices are bucketed on a grid ten tolerances wide.
type Welder struct {
	mesh    *dmesh.Mesh
	tol     float64
	cell    float64
	buckets map[[3]int][]int
}

func NewWelder(mesh *dmesh.Mesh, tolerance float64) *Welder {
	w := &Welder{mesh: mesh, tol: tolerance, buckets: make(map[[3]int][]int)}
	if tolerance > 0 {
		w.cell = tolerance * 10
	}
	return w
}

func (w *Welder) key(p geometry.Vector3) [3]int {
	if w.cell == 0 {
		// exact matching: bucket on the bit pattern
		return [3]int{int(math.Float64bits(p.X)), int(math.Float64bits(p.Y)), int(math.Float64bits(p.Z))}
	}
	return [3]int{
		int(math.Floor(p.X / w.cell)),
		int(math.Floor(p.Y / w.cell)),
		int(math.Floor(p.Z / w.cell)),
	}
}

// Add returns the id of the vertex at p, appending one if none is close enough.
func (w *Welder) Add(p geometry.Vector3) int {
	if w.cell == 0 {
		k := w.key(p)
		if ids, ok := w.buckets[k]; ok {
			return ids[0]
		}
		vid := w.mesh.AppendVertex(p)
		w.buckets[k] = []int{vid}
		return vid
	}

	lo := w.key(p.Sub(geometry.NewVector3(w.tol, w.tol, w.tol)))
	hi := w.key(p.Add(geometry.NewVector3(w.tol, w.tol, w.tol)))
	best, bestDist := -1, w.tol*w.tol
	for z := lo[2]; z <= hi[2]; z++ {
		for y := lo[1]; y <= hi[1]; y++ {
			for x := lo[0]; x <= hi[0]; x++ {
				for _, vid := range w.buckets[[3]int{x, y, z}] {
					if d := w.mesh.Vertex(vid).DistanceSquared(p); d <= bestDist {
						best, bestDist = vid, d
					}
				}
			}
		}
	}
	if best >= 0 {
		return best
	}
	vid := w.mesh.AppendVertex(p)
	k := w.key(p)
	w.buckets[k] = append(w.buckets[k], vid)
	return vid
}

// ImportStats reports what happened to the facets of a model on import.
type ImportStats struct {
	Facets      int
	Vertices    int
	Degenerate  int
	Duplicate   int
	NonManifold int
	// Flipped facets store a normal against their winding. They are
	// imported by winding.
	Flipped int
	// FacetArea and Bounds describe the facets as read, before any were
	// skipped.
	FacetArea float64
	Bounds    geometry.BoundingBox
}

// Skipped is the number of facets that did not make it into the mesh.
func (s ImportStats) Skipped() int {
	return s.Degenerate + s.Duplicate + s.NonManifold
}

// ToMesh welds the facets of m into an indexed mesh. Facets that collapse
// onto fewer than three vertices, repeat an existing triangle or would make
// the mesh non-manifold are skipped and counted.
func ToMesh(m *Model, tolerance float64) (*dmesh.Mesh, ImportStats) {
	mesh := dmesh.New()
	welder := NewWelder(mesh, tolerance)
	stats := ImportStats{
		Facets:    len(m.Triangles),
		Flipped:   m.FlippedNormals(),
		FacetArea: m.Area(),
		Bounds:    m.Bounds(),
	}

	for _, t := range m.Triangles {
		tv := [3]int{welder.Add(t.V1), welder.Add(t.V2), welder.Add(t.V3)}
		if _, err := mesh.AppendTriangle(tv, 0); err != nil {
			switch {
			case errors.Is(err, dmesh.ErrInvalidTriangle):
				stats.Degenerate++
			case errors.Is(err, dmesh.ErrDuplicateTriangle):
				stats.Duplicate++
			default:
				stats.NonManifold++
			}
		}
	}
	// welded vertices of skipped facets
	for _, vid := range mesh.VertexIDs() {
		if len(mesh.VertexEdges(vid)) == 0 {
			_ = mesh.RemoveVertex(vid)
		}
	}
	stats.Vertices = mesh.VertexCount()
	return mesh, stats
}

// FromMesh converts the live triangles of mesh back into a facet soup.
func FromMesh(mesh *dmesh.Mesh, name string) *Model {
	return FromTriangles(mesh, name, mesh.TriangleIDs())
}

// FromTriangles converts the given triangles of mesh, skipping dead ids.
func FromTriangles(mesh *dmesh.Mesh, name string, tids []int) *Model {
	m := NewModel(name)
	for _, tid := range tids {
		if !mesh.IsTriangle(tid) {
			continue
		}
		a, b, c := mesh.TriangleVertices(tid)
		m.AddTriangle(geometry.NewTriangleFromVertices(a, b, c))
	}
	return m
}
