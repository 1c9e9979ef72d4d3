package main

import (
	"fmt"

	"github.com/philipparndt/meshcut/internal/source"
	"github.com/philipparndt/meshcut/pkg/analysis"
	"github.com/philipparndt/meshcut/pkg/stl"
	"github.com/spf13/cobra"
)

var (
	edgesCount     int
	edgesLongest   bool
	edgesShortest  bool
	edgesBoundary  bool
	edgesMinLength float64
	edgesMaxLength float64
)

var edgesCmd = &cobra.Command{
	Use:   "edges [file]",
	Short: "Analyze and measure edges of a model",
	Long:  "List the longest, shortest or open boundary edges, or edges within a length range.",
	Args:  cobra.ExactArgs(1),
	RunE:  runEdges,
}

func init() {
	rootCmd.AddCommand(edgesCmd)

	edgesCmd.Flags().IntVarP(&edgesCount, "count", "n", 10, "Number of edges to display")
	edgesCmd.Flags().BoolVarP(&edgesLongest, "longest", "l", false, "Show longest edges")
	edgesCmd.Flags().BoolVarP(&edgesShortest, "shortest", "s", false, "Show shortest edges")
	edgesCmd.Flags().BoolVarP(&edgesBoundary, "boundary", "b", false, "Show edges with a single triangle")
	edgesCmd.Flags().Float64Var(&edgesMinLength, "min", 0.0, "Minimum edge length filter")
	edgesCmd.Flags().Float64Var(&edgesMaxLength, "max", 0.0, "Maximum edge length filter")
}

func runEdges(cmd *cobra.Command, args []string) error {
	loaded, err := source.Load(cmd.Context(), args[0], source.Options{
		WeldTolerance: stl.DefaultWeldTolerance,
		Log:           newLogger(),
	})
	if err != nil {
		return err
	}
	result := analysis.AnalyzeMesh(loaded.Mesh)
	out := cmd.OutOrStdout()

	var edges []analysis.EdgeInfo
	var title string
	switch {
	case edgesLongest:
		edges = analysis.FindLongestEdges(result, edgesCount)
		title = fmt.Sprintf("Top %d Longest Edges", len(edges))
	case edgesShortest:
		edges = analysis.FindShortestEdges(result, edgesCount)
		title = fmt.Sprintf("Top %d Shortest Edges", len(edges))
	case edgesBoundary:
		edges = result.BoundaryEdgeList()
		title = fmt.Sprintf("Boundary Edges (showing up to %d of %d)", edgesCount, len(edges))
	case edgesMaxLength > 0:
		edges = analysis.FindEdgesByLength(result, edgesMinLength, edgesMaxLength)
		title = fmt.Sprintf("Edges between %.6f and %.6f units (found %d)", edgesMinLength, edgesMaxLength, len(edges))
	default:
		edges = result.AllEdges
		title = fmt.Sprintf("All Edges (showing up to %d of %d)", edgesCount, len(edges))
	}
	if len(edges) > edgesCount {
		edges = edges[:edgesCount]
	}

	fmt.Fprintln(out, title)
	fmt.Fprintln(out, "====================")
	fmt.Fprintf(out, "Total edges in model: %d\n", result.EdgeCount)
	fmt.Fprintf(out, "Min edge length: %.6f units\n", result.MinEdgeLength)
	fmt.Fprintf(out, "Max edge length: %.6f units\n", result.MaxEdgeLength)
	fmt.Fprintf(out, "Avg edge length: %.6f units\n\n", result.AvgEdgeLength)

	if len(edges) == 0 {
		fmt.Fprintln(out, "No edges found matching the criteria.")
		return nil
	}
	fmt.Fprintf(out, "%-6s %-35s %-35s %-15s\n", "Edge", "Start", "End", "Length")
	fmt.Fprintln(out, "-----------------------------------------------------------------------------------------------")
	for _, edge := range edges {
		fmt.Fprintf(out, "%-6d %-35s %-35s %-15.6f\n",
			edge.ID,
			analysis.FormatVector(edge.Start),
			analysis.FormatVector(edge.End),
			edge.Length)
	}
	return nil
}
