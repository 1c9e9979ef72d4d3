// Package report records what a cut run did as JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/philipparndt/meshcut/pkg/analysis"
	"github.com/philipparndt/meshcut/pkg/dmesh"
	"github.com/philipparndt/meshcut/pkg/geometry"
	"github.com/philipparndt/meshcut/pkg/meshcut"
	"github.com/philipparndt/meshcut/version"
)

type Vector3Data struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func vec(v geometry.Vector3) Vector3Data {
	return Vector3Data{X: v.X, Y: v.Y, Z: v.Z}
}

type LoopData struct {
	Vertices int     `json:"vertices"`
	Length   float64 `json:"length"`
	Closed   bool    `json:"closed"`
}

type BoundaryData struct {
	Label          int        `json:"label"`
	NormalSign     int        `json:"normalSign"`
	Loops          []LoopData `json:"loops"`
	LoopsFailed    bool       `json:"loopsFailed,omitempty"`
	FoundOpenSpans bool       `json:"foundOpenSpans,omitempty"`
	FillTriangles  int        `json:"fillTriangles"`
}

type StatsData struct {
	SplitEdges         int `json:"splitEdges"`
	CollapsedEdges     int `json:"collapsedEdges"`
	DeletedTriangles   int `json:"deletedTriangles"`
	DuplicatedVertices int `json:"duplicatedVertices,omitempty"`
	FillTriangles      int `json:"fillTriangles"`
	FailedFills        int `json:"failedFills,omitempty"`
}

type CutData struct {
	Origin     Vector3Data    `json:"origin"`
	Normal     Vector3Data    `json:"normal"`
	Mode       string         `json:"mode"`
	Stats      StatsData      `json:"stats"`
	ZeroEdges  int            `json:"zeroEdges"`
	OnCutEdges int            `json:"onCutEdges"`
	Boundaries []BoundaryData `json:"boundaries"`
}

type MeshData struct {
	Vertices      int         `json:"vertices"`
	Triangles     int         `json:"triangles"`
	BoundaryEdges int         `json:"boundaryEdges"`
	Components    int         `json:"components"`
	Closed        bool        `json:"closed"`
	SurfaceArea   float64     `json:"surfaceArea"`
	Volume        float64     `json:"volume"`
	Min           Vector3Data `json:"min"`
	Max           Vector3Data `json:"max"`
}

type Report struct {
	Version string    `json:"version"`
	Input   string    `json:"input"`
	Output  []string  `json:"output,omitempty"`
	Before  MeshData  `json:"before"`
	Cuts    []CutData `json:"cuts"`
	After   MeshData  `json:"after"`
}

func New(input string, before *dmesh.Mesh) *Report {
	return &Report{
		Version: version.Version,
		Input:   input,
		Before:  Summarize(before),
	}
}

// Summarize measures a mesh for the report
func Summarize(mesh *dmesh.Mesh) MeshData {
	r := analysis.AnalyzeMesh(mesh)
	d := MeshData{
		Vertices:      r.VertexCount,
		Triangles:     r.TriangleCount,
		BoundaryEdges: r.BoundaryEdges,
		Components:    r.Components,
		Closed:        r.Closed,
		SurfaceArea:   r.SurfaceArea,
	}
	if r.Closed {
		d.Volume = r.Volume
	}
	if !r.BoundingBox.IsEmpty() {
		d.Min, d.Max = vec(r.BoundingBox.Min), vec(r.BoundingBox.Max)
	}
	return d
}

// AddCut records the outputs of the last operation of c.
func (r *Report) AddCut(mode string, c *meshcut.PlaneCut) {
	cut := CutData{
		Origin: vec(c.Plane.Origin),
		Normal: vec(c.Plane.Normal),
		Mode:   mode,
		Stats: StatsData{
			SplitEdges:         c.Stats.SplitEdges,
			CollapsedEdges:     c.Stats.CollapsedEdges,
			DeletedTriangles:   c.Stats.DeletedTriangles,
			DuplicatedVertices: c.Stats.DuplicatedVertices,
			FillTriangles:      c.Stats.FillTriangles,
			FailedFills:        c.Stats.FailedFills,
		},
		ZeroEdges:  len(c.ZeroEdges),
		OnCutEdges: len(c.OnCutEdges),
		Boundaries: make([]BoundaryData, 0, len(c.OpenBoundaries)),
	}
	for i, b := range c.OpenBoundaries {
		bd := BoundaryData{
			Label:          b.Label,
			NormalSign:     b.NormalSign,
			Loops:          make([]LoopData, 0, len(b.CutLoops)+len(b.CutSpans)),
			LoopsFailed:    b.CutLoopsFailed,
			FoundOpenSpans: b.FoundOpenSpans,
		}
		for _, l := range b.CutLoops {
			bd.Loops = append(bd.Loops, LoopData{Vertices: len(l.Vertices), Length: chainLength(c.Mesh, l.Edges), Closed: true})
		}
		for _, s := range b.CutSpans {
			bd.Loops = append(bd.Loops, LoopData{Vertices: len(s.Vertices), Length: chainLength(c.Mesh, s.Edges)})
		}
		if i < len(c.HoleFillTriangles) {
			bd.FillTriangles = len(c.HoleFillTriangles[i])
		}
		cut.Boundaries = append(cut.Boundaries, bd)
	}
	r.Cuts = append(r.Cuts, cut)
}

func chainLength(mesh *dmesh.Mesh, edges []int) float64 {
	total := 0.0
	for _, eid := range edges {
		if mesh.IsEdge(eid) {
			total += mesh.EdgeLength(eid)
		}
	}
	return total
}

// Finish records the final mesh and the files written.
func (r *Report) Finish(after *dmesh.Mesh, outputs ...string) {
	r.After = Summarize(after)
	r.Output = append(r.Output, outputs...)
}

func (r *Report) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// Write stores the report as indented JSON
func (r *Report) Write(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if err := r.Encode(f); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
