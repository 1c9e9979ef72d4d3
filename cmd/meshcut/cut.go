package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/philipparndt/meshcut/internal/config"
	"github.com/philipparndt/meshcut/internal/job"
	"github.com/philipparndt/meshcut/internal/source"
	"github.com/philipparndt/meshcut/pkg/logging"
	"github.com/philipparndt/meshcut/pkg/preview"
	"github.com/philipparndt/meshcut/pkg/stl"
	"github.com/philipparndt/meshcut/pkg/watcher"
	"github.com/spf13/cobra"
)

var (
	cutRecipe         string
	cutOrigin         []float64
	cutNormal         []float64
	cutRotate         []float64
	cutFill           string
	cutSpans          bool
	cutOutput         string
	cutFormat         string
	cutPlaneTolerance float64
	cutWeldTolerance  float64
	cutNoCollapse     bool
	cutReport         string
	cutPreview        string
	cutWatch          bool
	cutDefines        map[string]string
)

var cutCmd = &cobra.Command{
	Use:   "cut [file]",
	Short: "Cut a model with a plane and cap the opening",
	Long: `Cut an STL or OpenSCAD model with a plane, delete everything on the side
the normal points to and cap the open boundary left along the cut.

A YAML recipe can describe several planes; flags override its values.`,
	Example: `  meshcut cut part.stl --origin 0,0,10 --normal 0,0,1
  meshcut cut part.scad --recipe halves.yaml --watch --preview cut.png`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCut,
}

func init() {
	rootCmd.AddCommand(cutCmd)

	f := cutCmd.Flags()
	f.StringVarP(&cutRecipe, "recipe", "r", "", "YAML recipe with planes and options")
	f.Float64SliceVar(&cutOrigin, "origin", nil, "Point on the plane (x,y,z)")
	f.Float64SliceVar(&cutNormal, "normal", nil, "Plane normal (x,y,z), pointing at the side to remove")
	f.Float64SliceVar(&cutRotate, "rotate", nil, "Rotate the normal by XYZ angles in degrees")
	f.StringVar(&cutFill, "fill", "", "Fill method: none, earclip, fan or planar")
	f.BoolVar(&cutSpans, "fill-spans", false, "Close and fill open spans (planar fill only)")
	f.StringVarP(&cutOutput, "output", "o", "", "Output STL file (default <input>-cut.stl)")
	f.StringVar(&cutFormat, "format", "", "Output format: binary or ascii")
	f.Float64Var(&cutPlaneTolerance, "plane-tolerance", 0, "Distance within which vertices count as on the plane")
	f.Float64Var(&cutWeldTolerance, "weld-tolerance", 0, "Distance within which STL vertices are merged")
	f.BoolVar(&cutNoCollapse, "no-collapse", false, "Keep degenerate edges along the cut")
	f.StringVar(&cutReport, "report", "", "Write a JSON report of the cut")
	f.StringVar(&cutPreview, "preview", "", "Render a PNG preview of the result")
	f.BoolVarP(&cutWatch, "watch", "w", false, "Cut again whenever the input changes")
	f.StringToStringVarP(&cutDefines, "define", "D", nil, "OpenSCAD variable definitions (name=value)")
}

// loadRecipe builds the recipe from --recipe and the flags that were set.
func loadRecipe(cmd *cobra.Command, args []string, mode config.Mode) (config.Recipe, string, error) {
	recipe := config.Default()
	if cutRecipe != "" {
		var err error
		if recipe, err = config.Load(cutRecipe); err != nil {
			return recipe, "", err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("origin") || flags.Changed("normal") {
		plane, err := planeFromFlags(cutOrigin, cutNormal, cutRotate)
		if err != nil {
			return recipe, "", err
		}
		plane.Mode = mode
		recipe.Planes = []config.Step{plane}
	}
	if flags.Changed("fill") {
		recipe.Fill.Method = config.FillMethod(cutFill)
	}
	if flags.Changed("fill-spans") {
		recipe.Fill.Spans = cutSpans
	}
	if flags.Changed("output") {
		recipe.Output = cutOutput
	}
	if flags.Changed("format") {
		recipe.Format = cutFormat
	}
	if flags.Changed("plane-tolerance") {
		recipe.PlaneTolerance = cutPlaneTolerance
	}
	if flags.Changed("weld-tolerance") {
		recipe.WeldTolerance = cutWeldTolerance
	}
	if flags.Changed("no-collapse") {
		recipe.CollapseDegenerateEdges = !cutNoCollapse
	}
	if len(args) > 0 {
		recipe.Input = args[0]
	}

	if recipe.Input == "" {
		return recipe, "", errors.New("no input file given")
	}
	if len(recipe.Planes) == 0 {
		return recipe, "", errors.New("no plane given: use --origin/--normal or a recipe")
	}
	if err := recipe.Validate(); err != nil {
		return recipe, "", err
	}
	return recipe, recipe.Input, nil
}

func planeFromFlags(origin, normal, rotate []float64) (config.Step, error) {
	var p config.Step
	if origin == nil {
		origin = []float64{0, 0, 0}
	}
	if normal == nil {
		normal = []float64{0, 0, 1}
	}
	for name, v := range map[string][]float64{"origin": origin, "normal": normal} {
		if len(v) != 3 {
			return p, fmt.Errorf("--%s needs three values, got %d", name, len(v))
		}
	}
	copy(p.Origin[:], origin)
	copy(p.Normal[:], normal)
	if rotate != nil {
		if len(rotate) != 3 {
			return p, fmt.Errorf("--rotate needs three values, got %d", len(rotate))
		}
		copy(p.Rotate[:], rotate)
	}
	return p, nil
}

func runCut(cmd *cobra.Command, args []string) error {
	log := newLogger()
	recipe, input, err := loadRecipe(cmd, args, config.ModeCut)
	if err != nil {
		return err
	}
	format, err := stl.ParseFormat(recipe.Format)
	if err != nil {
		return err
	}
	output := recipe.Output
	if output == "" {
		output = job.DefaultOutput(input)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	once := func() error {
		res, err := job.Run(ctx, recipe, input, cutDefines, log)
		if err != nil {
			return err
		}
		if err := res.Write(output, format); err != nil {
			return err
		}
		log.Infof("wrote %s (%d triangles)", output, res.Mesh.TriangleCount())
		return finishOutputs(res, log)
	}
	if err := once(); err != nil {
		if !cutWatch {
			return err
		}
		log.Errorf("%v", err)
	}
	if !cutWatch {
		return nil
	}
	return watch(ctx, input, log, once)
}

// finishOutputs writes the optional report and preview of a run.
func finishOutputs(res *job.Result, log logging.Logger) error {
	if cutReport != "" {
		if err := res.Report.Write(cutReport); err != nil {
			return err
		}
		log.Infof("wrote report %s", cutReport)
	}
	if cutPreview != "" {
		overlay := res.Overlay()
		opts := preview.DefaultOptions()
		opts.Caption = caption(res, overlay)
		img, err := preview.Render(res.Mesh, overlay, opts)
		if err != nil {
			return fmt.Errorf("failed to render preview: %w", err)
		}
		if err := preview.WritePNG(cutPreview, img); err != nil {
			return err
		}
		log.Infof("wrote preview %s", cutPreview)
	}
	return nil
}

// watch reruns fn whenever input or one of its dependencies changes, until
// ctx is cancelled.
func watch(ctx context.Context, input string, log logging.Logger, fn func() error) error {
	w, err := watcher.New(500*time.Millisecond, log)
	if err != nil {
		return err
	}
	defer w.Close()

	files, err := source.WatchList(input)
	if err != nil {
		return err
	}
	if err := w.Add(files...); err != nil {
		return err
	}
	log.Infof("watching %d file(s), press Ctrl+C to stop", len(files))

	err = w.Run(ctx, func(string) error {
		if err := fn(); err != nil {
			return err
		}
		// includes may have changed with the edit
		if files, err := source.WatchList(input); err == nil {
			return w.Add(files...)
		}
		return nil
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
