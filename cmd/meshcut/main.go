package main

import (
	"fmt"
	"os"

	"github.com/philipparndt/meshcut/pkg/logging"
	"github.com/philipparndt/meshcut/version"
	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "meshcut",
	Short: "Cut triangle meshes with planes",
	Long: `meshcut cuts STL and OpenSCAD models with planes. It splits the triangles
crossing each plane, removes or separates the sides and caps the open
boundaries left along the cut.`,
	Version:       version.GetFullVersion(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func newLogger() logging.Logger {
	return logging.NewDefaultLogger("meshcut", verbose)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
