// Package source loads STL and OpenSCAD inputs into welded meshes.
package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/philipparndt/meshcut/pkg/dmesh"
	"github.com/philipparndt/meshcut/pkg/logging"
	"github.com/philipparndt/meshcut/pkg/openscad"
	"github.com/philipparndt/meshcut/pkg/stl"
)

type Options struct {
	WeldTolerance float64
	// Defines are passed to openscad for .scad inputs.
	Defines map[string]string
	Log     logging.Logger
}

// Loaded is an input file read into memory
type Loaded struct {
	Path       string
	Name       string
	IsOpenSCAD bool
	Mesh       *dmesh.Mesh
	Import     stl.ImportStats
	Elapsed    time.Duration
}

// Load reads an STL, or renders an OpenSCAD file to a temporary STL first,
// and welds the facets into a mesh.
func Load(ctx context.Context, path string, opts Options) (*Loaded, error) {
	log := logging.OrNop(opts.Log)
	start := time.Now()
	ext := strings.ToLower(filepath.Ext(path))

	var model *stl.Model
	var err error
	switch {
	case openscad.IsSource(path):
		model, err = renderSCAD(ctx, path, opts, log)
	case ext == ".stl":
		model, err = stl.Parse(path)
		if err != nil {
			err = fmt.Errorf("failed to parse STL file: %w", err)
		}
	default:
		err = fmt.Errorf("unsupported file type: %s (expected .stl or .scad)", ext)
	}
	if err != nil {
		return nil, err
	}

	mesh, stats := stl.ToMesh(model, opts.WeldTolerance)
	if stats.Skipped() > 0 {
		log.Warnf("%s: skipped %d of %d facets (%d degenerate, %d duplicate, %d non-manifold)",
			filepath.Base(path), stats.Skipped(), stats.Facets, stats.Degenerate, stats.Duplicate, stats.NonManifold)
	}

	name := model.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	loaded := &Loaded{
		Path:       path,
		Name:       name,
		IsOpenSCAD: openscad.IsSource(path),
		Mesh:       mesh,
		Import:     stats,
		Elapsed:    time.Since(start),
	}
	log.Debugf("loaded %s: %d vertices, %d triangles in %.2fs",
		path, mesh.VertexCount(), mesh.TriangleCount(), loaded.Elapsed.Seconds())
	return loaded, nil
}

func renderSCAD(ctx context.Context, path string, opts Options, log logging.Logger) (*stl.Model, error) {
	log.Infof("Rendering OpenSCAD file: %s", path)
	renderer := openscad.NewRenderer(filepath.Dir(path))
	renderer.Defines = opts.Defines

	tmp, err := os.CreateTemp("", "meshcut-*.stl")
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := renderer.RenderToSTL(ctx, path, tmpPath); err != nil {
		return nil, fmt.Errorf("failed to render OpenSCAD file: %w", err)
	}
	model, err := stl.Parse(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rendered STL: %w", err)
	}
	return model, nil
}

// WatchList returns the files whose change should trigger a reload of path:
// the file itself, plus everything it uses or includes for OpenSCAD.
func WatchList(path string) ([]string, error) {
	if !openscad.IsSource(path) {
		return []string{path}, nil
	}
	deps, err := openscad.NewRenderer(filepath.Dir(path)).ResolveDependencies(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve dependencies: %w", err)
	}
	return deps, nil
}
