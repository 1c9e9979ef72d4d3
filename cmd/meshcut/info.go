package main

import (
	"fmt"
	"math"

	"github.com/philipparndt/meshcut/internal/source"
	"github.com/philipparndt/meshcut/pkg/analysis"
	"github.com/philipparndt/meshcut/pkg/geometry"
	"github.com/philipparndt/meshcut/pkg/stl"
	"github.com/spf13/cobra"
)

var (
	infoWeldTolerance float64
	infoNear          []float64
)

var infoCmd = &cobra.Command{
	Use:   "info [file]",
	Short: "Display general information about a model",
	Long:  "Show dimensions, triangle count, surface area, volume and whether the welded mesh is closed.",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)

	infoCmd.Flags().Float64Var(&infoWeldTolerance, "weld-tolerance", stl.DefaultWeldTolerance, "Distance within which STL vertices are merged")
	infoCmd.Flags().Float64SliceVar(&infoNear, "near", nil, "Also report the vertex nearest to x,y,z")
}

func runInfo(cmd *cobra.Command, args []string) error {
	filename := args[0]
	loaded, err := source.Load(cmd.Context(), filename, source.Options{
		WeldTolerance: infoWeldTolerance,
		Log:           newLogger(),
	})
	if err != nil {
		return err
	}
	mesh := loaded.Mesh
	result := analysis.AnalyzeMesh(mesh)
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "Model Information")
	fmt.Fprintln(out, "=================")
	fmt.Fprintf(out, "Name: %s\n", loaded.Name)
	fmt.Fprintf(out, "File: %s\n\n", filename)

	fmt.Fprintln(out, "Mesh:")
	imp := loaded.Import
	fmt.Fprintf(out, "  Facets read: %d\n", imp.Facets)
	if imp.Flipped > 0 {
		fmt.Fprintf(out, "  Facets with flipped normals: %d\n", imp.Flipped)
	}
	if imp.Skipped() > 0 {
		fmt.Fprintf(out, "  Facets skipped: %d (%d degenerate, %d duplicate, %d non-manifold)\n",
			imp.Skipped(), imp.Degenerate, imp.Duplicate, imp.NonManifold)
		fmt.Fprintf(out, "  Area lost to skipped facets: %s\n",
			analysis.FormatMeasurement(math.Max(imp.FacetArea-result.SurfaceArea, 0), "square units"))
		if imp.Bounds != result.BoundingBox {
			fmt.Fprintf(out, "  Facet bounds: %s to %s\n",
				analysis.FormatVector(imp.Bounds.Min), analysis.FormatVector(imp.Bounds.Max))
		}
	}
	fmt.Fprintf(out, "  Vertices: %d\n", result.VertexCount)
	fmt.Fprintf(out, "  Triangles: %d\n", result.TriangleCount)
	fmt.Fprintf(out, "  Edges: %d (%d on open boundaries)\n", result.EdgeCount, result.BoundaryEdges)
	fmt.Fprintf(out, "  Components: %d\n", result.Components)
	fmt.Fprintf(out, "  Closed: %t\n", result.Closed)
	fmt.Fprintf(out, "  Surface Area: %s\n\n", analysis.FormatMeasurement(result.SurfaceArea, "square units"))

	if result.BoundingBox.IsEmpty() {
		return nil
	}
	fmt.Fprintln(out, "Bounding Box:")
	fmt.Fprintf(out, "  Min: %s\n", analysis.FormatVector(result.BoundingBox.Min))
	fmt.Fprintf(out, "  Max: %s\n", analysis.FormatVector(result.BoundingBox.Max))
	fmt.Fprintf(out, "  Center: %s\n\n", analysis.FormatVector(result.BoundingBox.Center()))

	fmt.Fprintln(out, "Dimensions:")
	fmt.Fprintf(out, "  Width (X): %.6f units\n", result.Dimensions.X)
	fmt.Fprintf(out, "  Depth (Y): %.6f units\n", result.Dimensions.Y)
	fmt.Fprintf(out, "  Height (Z): %.6f units\n", result.Dimensions.Z)
	fmt.Fprintf(out, "  Diagonal: %.6f units\n", result.BoundingBox.Diagonal())
	if result.Closed {
		fmt.Fprintf(out, "  Volume: %.6f cubic units\n", result.Volume)
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Edge Lengths:")
	fmt.Fprintf(out, "  Minimum: %.6f units\n", result.MinEdgeLength)
	fmt.Fprintf(out, "  Maximum: %.6f units\n", result.MaxEdgeLength)
	fmt.Fprintf(out, "  Average: %.6f units\n", result.AvgEdgeLength)

	if infoNear != nil {
		if len(infoNear) != 3 {
			return fmt.Errorf("--near needs three values, got %d", len(infoNear))
		}
		p := geometry.NewVector3(infoNear[0], infoNear[1], infoNear[2])
		vid, d := analysis.FindNearestVertex(mesh, p)
		fmt.Fprintf(out, "\nNearest vertex to %s: #%d at %s (distance %.6f)\n",
			analysis.FormatVector(p), vid, analysis.FormatVector(mesh.Vertex(vid)), d)
	}
	return nil
}
