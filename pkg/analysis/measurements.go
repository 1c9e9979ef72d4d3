// Package analysis measures indexed meshes: counts, extents, area, enclosed
// volume and the state of their boundary.
package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/philipparndt/meshcut/pkg/dmesh"
	"github.com/philipparndt/meshcut/pkg/geometry"
)

// EdgeInfo describes one mesh edge
type EdgeInfo struct {
	ID       int
	Start    geometry.Vector3
	End      geometry.Vector3
	Length   float64
	Boundary bool
}

// MeasurementResult contains the measurements of a mesh
type MeasurementResult struct {
	BoundingBox   geometry.BoundingBox
	Dimensions    geometry.Vector3
	Volume        float64
	SurfaceArea   float64
	VertexCount   int
	TriangleCount int
	EdgeCount     int
	BoundaryEdges int
	Components    int
	Groups        int
	Closed        bool
	MinEdgeLength float64
	MaxEdgeLength float64
	AvgEdgeLength float64
	AllEdges      []EdgeInfo
}

// AnalyzeMesh measures every live element of mesh. Volume is the signed
// volume enclosed by the surface and is only meaningful when Closed is set.
func AnalyzeMesh(mesh *dmesh.Mesh) *MeasurementResult {
	result := &MeasurementResult{
		BoundingBox:   mesh.Bounds(),
		VertexCount:   mesh.VertexCount(),
		TriangleCount: mesh.TriangleCount(),
		EdgeCount:     mesh.EdgeCount(),
		AllEdges:      make([]EdgeInfo, 0, mesh.EdgeCount()),
	}
	if !result.BoundingBox.IsEmpty() {
		result.Dimensions = result.BoundingBox.Size()
	}

	groups := make(map[int]struct{})
	for _, tid := range mesh.TriangleIDs() {
		tri := mesh.TriangleGeometry(tid)
		result.SurfaceArea += tri.Area()
		result.Volume += tri.SignedVolume()
		groups[mesh.TriangleGroup(tid)] = struct{}{}
	}
	result.Groups = len(groups)
	result.Components = len(mesh.Components())

	minLength := math.MaxFloat64
	maxLength := 0.0
	totalLength := 0.0
	for _, eid := range mesh.EdgeIDs() {
		ev := mesh.EdgeVertices(eid)
		edge := EdgeInfo{
			ID:       eid,
			Start:    mesh.Vertex(ev[0]),
			End:      mesh.Vertex(ev[1]),
			Length:   mesh.EdgeLength(eid),
			Boundary: mesh.IsBoundaryEdge(eid),
		}
		result.AllEdges = append(result.AllEdges, edge)
		if edge.Boundary {
			result.BoundaryEdges++
		}

		totalLength += edge.Length
		minLength = math.Min(minLength, edge.Length)
		maxLength = math.Max(maxLength, edge.Length)
	}

	result.Closed = result.TriangleCount > 0 && result.BoundaryEdges == 0
	if len(result.AllEdges) > 0 {
		result.MinEdgeLength = minLength
		result.MaxEdgeLength = maxLength
		result.AvgEdgeLength = totalLength / float64(len(result.AllEdges))
	}
	return result
}

// BoundaryEdgeList returns the edges with a single triangle
func (r *MeasurementResult) BoundaryEdgeList() []EdgeInfo {
	var edges []EdgeInfo
	for _, e := range r.AllEdges {
		if e.Boundary {
			edges = append(edges, e)
		}
	}
	return edges
}

// FindEdgesByLength finds all edges within a length range
func FindEdgesByLength(result *MeasurementResult, minLength, maxLength float64) []EdgeInfo {
	var edges []EdgeInfo
	for _, edge := range result.AllEdges {
		if edge.Length >= minLength && edge.Length <= maxLength {
			edges = append(edges, edge)
		}
	}
	return edges
}

// FindLongestEdges returns the N longest edges in the mesh
func FindLongestEdges(result *MeasurementResult, count int) []EdgeInfo {
	return sortedEdges(result, count, func(a, b EdgeInfo) bool { return a.Length > b.Length })
}

// FindShortestEdges returns the N shortest edges in the mesh
func FindShortestEdges(result *MeasurementResult, count int) []EdgeInfo {
	return sortedEdges(result, count, func(a, b EdgeInfo) bool { return a.Length < b.Length })
}

func sortedEdges(result *MeasurementResult, count int, less func(a, b EdgeInfo) bool) []EdgeInfo {
	edges := make([]EdgeInfo, len(result.AllEdges))
	copy(edges, result.AllEdges)

	sort.SliceStable(edges, func(i, j int) bool {
		return less(edges[i], edges[j])
	})

	if count > len(edges) {
		count = len(edges)
	}
	return edges[:count]
}

// FindNearestVertex finds the live vertex of mesh nearest to a given point.
// It returns -1 for an empty mesh.
func FindNearestVertex(mesh *dmesh.Mesh, point geometry.Vector3) (int, float64) {
	nearest := -1
	minDistance := math.MaxFloat64
	for _, vid := range mesh.VertexIDs() {
		if d := point.Distance(mesh.Vertex(vid)); d < minDistance {
			nearest, minDistance = vid, d
		}
	}
	return nearest, minDistance
}

// FormatMeasurement formats a measurement with appropriate units
func FormatMeasurement(value float64, unit string) string {
	if unit == "" {
		unit = "units"
	}
	return fmt.Sprintf("%.6f %s", value, unit)
}

// FormatVector formats a 3D vector
func FormatVector(v geometry.Vector3) string {
	return fmt.Sprintf("(%.6f, %.6f, %.6f)", v.X, v.Y, v.Z)
}
