// Package job runs a cut recipe against an input file.
package job

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/philipparndt/meshcut/internal/config"
	"github.com/philipparndt/meshcut/internal/report"
	"github.com/philipparndt/meshcut/internal/source"
	"github.com/philipparndt/meshcut/pkg/dmesh"
	"github.com/philipparndt/meshcut/pkg/logging"
	"github.com/philipparndt/meshcut/pkg/meshcut"
	"github.com/philipparndt/meshcut/pkg/polygon"
	"github.com/philipparndt/meshcut/pkg/preview"
	"github.com/philipparndt/meshcut/pkg/stl"
)

// Result is the state after all planes of a recipe were applied.
type Result struct {
	Input  *source.Loaded
	Mesh   *dmesh.Mesh
	Report *report.Report
	// Cuts holds one PlaneCut per recipe plane, in order.
	Cuts []*meshcut.PlaneCut
	// Labels are the component labels of the last split plane.
	Labels map[int]int
}

// Run loads input and applies every plane of recipe in order. Defines are
// passed to openscad for .scad inputs.
func Run(ctx context.Context, recipe config.Recipe, input string, defines map[string]string, log logging.Logger) (*Result, error) {
	log = logging.OrNop(log)
	if len(recipe.Planes) == 0 {
		return nil, fmt.Errorf("%w: no planes", config.ErrInvalidRecipe)
	}
	loaded, err := source.Load(ctx, input, source.Options{
		WeldTolerance: recipe.WeldTolerance,
		Defines:       defines,
		Log:           log,
	})
	if err != nil {
		return nil, err
	}

	res := &Result{
		Input:  loaded,
		Mesh:   loaded.Mesh,
		Report: report.New(input, loaded.Mesh),
	}
	for i, p := range recipe.Planes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c := meshcut.NewPlaneCut(res.Mesh, p.Plane())
		c.Log = log
		recipe.Apply(c)
		c.Progress = func(meshcut.Phase) bool { return ctx.Err() == nil }

		if err := res.apply(c, p, recipe.Fill); err != nil {
			return nil, fmt.Errorf("plane %d: %w", i, err)
		}
		res.Cuts = append(res.Cuts, c)
		res.Report.AddCut(string(p.Mode), c)
		log.Infof("plane %d (%s): %d splits, %d triangles removed, %d fill triangles",
			i, p.Mode, c.Stats.SplitEdges, c.Stats.DeletedTriangles, c.Stats.FillTriangles)
	}
	return res, nil
}

func (r *Result) apply(c *meshcut.PlaneCut, p config.Step, fill config.Fill) error {
	switch p.Mode {
	case config.ModeEdges:
		return c.SplitEdgesOnly(true, nil)
	case config.ModeSplit:
		r.Labels = make(map[int]int)
		err := c.CutWithoutDelete(meshcut.CutWithoutDeleteOptions{
			SplitVerticesAtPlane:    true,
			Offset:                  p.Offset,
			Labels:                  r.Labels,
			NewLabelStartID:         p.LabelStart,
			AddBoundariesFirstHalf:  true,
			AddBoundariesSecondHalf: true,
		})
		if err != nil {
			return err
		}
		if err := Fill(c, fill); err != nil {
			return err
		}
		for k, tris := range c.HoleFillTriangles {
			for _, tid := range tris {
				r.Labels[tid] = c.OpenBoundaries[k].Label
			}
		}
		return nil
	}
	if err := c.Cut(); err != nil {
		return err
	}
	return Fill(c, fill)
}

// Fill caps the open boundaries of c the way fill asks for.
func Fill(c *meshcut.PlaneCut, fill config.Fill) error {
	switch fill.Method {
	case config.FillNone:
		return nil
	case config.FillFan:
		return c.SimpleHoleFill(meshcut.FillFan)
	case config.FillPlanar:
		return c.HoleFill(polygon.Tess{}, fill.Spans)
	}
	return c.SimpleHoleFill(meshcut.FillEarClipping)
}

// Parts groups the live triangles by the label of the last split plane,
// fill triangles included. Triangles added by later planes carry no label and
// are collected under -1.
func (r *Result) Parts() map[int][]int {
	if r.Labels == nil {
		return nil
	}
	parts := make(map[int][]int)
	for _, tid := range r.Mesh.TriangleIDs() {
		l, ok := r.Labels[tid]
		if !ok {
			l = -1
		}
		parts[l] = append(parts[l], tid)
	}
	return parts
}

// Overlay marks the fill triangles and boundary chains of every cut for a
// preview.
func (r *Result) Overlay() preview.Overlay {
	o := preview.Overlay{Highlight: make(map[int]struct{})}
	for _, c := range r.Cuts {
		for _, tris := range c.HoleFillTriangles {
			for _, tid := range tris {
				o.Highlight[tid] = struct{}{}
			}
		}
		for _, b := range c.OpenBoundaries {
			for _, l := range b.CutLoops {
				o.Loops = append(o.Loops, l.Vertices)
			}
			for _, s := range b.CutSpans {
				o.Spans = append(o.Spans, s.Vertices)
			}
		}
	}
	return o
}

// Write stores the mesh in path and records it in the report.
func (r *Result) Write(path string, format stl.Format) error {
	if err := stl.Write(path, stl.FromMesh(r.Mesh, r.Input.Name), format); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	r.Report.Finish(r.Mesh, path)
	return nil
}

// WriteParts stores every part in its own file next to base, named after
// the label, and returns the paths written.
func (r *Result) WriteParts(base string, format stl.Format) ([]string, error) {
	parts := r.Parts()
	if parts == nil {
		return nil, fmt.Errorf("no split plane in recipe")
	}
	labels := make([]int, 0, len(parts))
	for l := range parts {
		labels = append(labels, l)
	}
	slices.Sort(labels)

	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if ext == "" {
		ext = ".stl"
	}
	var written []string
	for _, l := range labels {
		name := fmt.Sprintf("%s-part%d", r.Input.Name, l)
		path := fmt.Sprintf("%s-part%d%s", stem, l, ext)
		if l < 0 {
			name = r.Input.Name + "-rest"
			path = stem + "-rest" + ext
		}
		if err := stl.Write(path, stl.FromTriangles(r.Mesh, name, parts[l]), format); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", path, err)
		}
		written = append(written, path)
	}
	r.Report.Finish(r.Mesh, written...)
	return written, nil
}

// DefaultOutput is the output path used when the recipe names none.
func DefaultOutput(input string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + "-cut.stl"
}
