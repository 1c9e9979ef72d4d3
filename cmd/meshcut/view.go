package main

import (
	"errors"
	"fmt"
	"math"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/philipparndt/meshcut/internal/config"
	"github.com/philipparndt/meshcut/internal/job"
	"github.com/philipparndt/meshcut/pkg/preview"
	"github.com/spf13/cobra"
)

var (
	viewRecipe string
	viewPlanes []string
	viewFill   string
	viewSplit  bool
)

var viewCmd = &cobra.Command{
	Use:   "view [file]",
	Short: "Cut a model and show the result in a window",
	Long: `Cut an STL or OpenSCAD model and show the rendered result in a window. The
fill is highlighted and the cut loops are drawn on top. Nothing is written.`,
	Example: `  meshcut view part.stl --plane 0,0,10:0,0,1
  meshcut view part.scad --recipe halves.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runView,
}

func init() {
	rootCmd.AddCommand(viewCmd)

	f := viewCmd.Flags()
	f.StringVarP(&viewRecipe, "recipe", "r", "", "YAML recipe with planes and options")
	f.StringArrayVarP(&viewPlanes, "plane", "p", nil, "Plane as x,y,z:nx,ny,nz (repeatable)")
	f.StringVar(&viewFill, "fill", "", "Fill method: none, earclip, fan or planar")
	f.BoolVar(&viewSplit, "split", false, "Keep both sides instead of deleting the positive one")
}

func runView(cmd *cobra.Command, args []string) error {
	recipe := config.Default()
	if viewRecipe != "" {
		var err error
		if recipe, err = config.Load(viewRecipe); err != nil {
			return err
		}
	}
	if len(viewPlanes) > 0 {
		recipe.Planes = recipe.Planes[:0]
		for _, s := range viewPlanes {
			p, err := parsePlane(s)
			if err != nil {
				return err
			}
			p.Mode = config.ModeCut
			recipe.Planes = append(recipe.Planes, p)
		}
	}
	if viewSplit {
		for i := range recipe.Planes {
			recipe.Planes[i].Mode = config.ModeSplit
		}
	}
	if cmd.Flags().Changed("fill") {
		recipe.Fill.Method = config.FillMethod(viewFill)
	}
	if len(args) > 0 {
		recipe.Input = args[0]
	}
	if recipe.Input == "" {
		return errors.New("no input file given")
	}
	if len(recipe.Planes) == 0 {
		return errors.New("no plane given: use --plane or a recipe")
	}
	if err := recipe.Validate(); err != nil {
		return err
	}

	res, err := job.Run(cmd.Context(), recipe, recipe.Input, nil, newLogger())
	if err != nil {
		return err
	}

	a := app.New()
	w := a.NewWindow("meshcut - " + res.Input.Name)
	v := newResultView(res, preview.DefaultOptions())
	if err := v.render(); err != nil {
		return err
	}
	w.SetContent(v.content(w))
	w.Resize(fyne.NewSize(1000, 600))
	w.ShowAndRun()
	return nil
}

// caption sums up a result for the preview.
func caption(res *job.Result, overlay preview.Overlay) string {
	return fmt.Sprintf("%s: %d triangles, %d fill", res.Input.Name,
		res.Mesh.TriangleCount(), len(overlay.Highlight))
}

// resultView shows the rendered result and renders it again whenever the
// camera moves.
type resultView struct {
	res     *job.Result
	overlay preview.Overlay
	opts    preview.Options
	image   *canvas.Image
	info    *widget.Label
}

func newResultView(res *job.Result, opts preview.Options) *resultView {
	overlay := res.Overlay()
	opts.Caption = caption(res, overlay)
	if opts.Camera == nil {
		opts.Camera = preview.NewCamera(res.Mesh.Bounds())
	}
	img := canvas.NewImageFromImage(nil)
	img.FillMode = canvas.ImageFillContain
	img.SetMinSize(fyne.NewSize(float32(opts.Width), float32(opts.Height)))
	return &resultView{
		res:     res,
		overlay: overlay,
		opts:    opts,
		image:   img,
		info:    widget.NewLabel(resultInfo(res)),
	}
}

func (v *resultView) render() error {
	img, err := preview.Render(v.res.Mesh, v.overlay, v.opts)
	if err != nil {
		return fmt.Errorf("failed to render preview: %w", err)
	}
	v.image.Image = img
	v.image.Refresh()
	return nil
}

// move changes the camera and renders again, reporting failures in w.
func (v *resultView) move(w fyne.Window, change func(*preview.Camera)) func() {
	return func() {
		change(v.opts.Camera)
		if err := v.render(); err != nil {
			dialog.ShowError(err, w)
		}
	}
}

func (v *resultView) content(w fyne.Window) fyne.CanvasObject {
	const step = math.Pi / 12
	controls := container.NewGridWithColumns(2,
		widget.NewButton("Left", v.move(w, func(c *preview.Camera) { c.Rotate(-step, 0) })),
		widget.NewButton("Right", v.move(w, func(c *preview.Camera) { c.Rotate(step, 0) })),
		widget.NewButton("Up", v.move(w, func(c *preview.Camera) { c.Rotate(0, step) })),
		widget.NewButton("Down", v.move(w, func(c *preview.Camera) { c.Rotate(0, -step) })),
		widget.NewButton("Zoom in", v.move(w, func(c *preview.Camera) { c.Zoom(-0.2) })),
		widget.NewButton("Zoom out", v.move(w, func(c *preview.Camera) { c.Zoom(0.2) })),
	)
	panel := container.NewVBox(
		widget.NewLabel("Result:"),
		widget.NewSeparator(),
		v.info,
		widget.NewSeparator(),
		widget.NewLabel("View:"),
		controls,
	)
	side := container.NewVScroll(panel)
	side.SetMinSize(fyne.NewSize(260, 0))
	return container.NewBorder(nil, nil, nil, side, v.image)
}

// resultInfo lists what every plane of the run did.
func resultInfo(res *job.Result) string {
	s := fmt.Sprintf("Model: %s\nTriangles: %d\nVertices: %d\n",
		res.Input.Name, res.Mesh.TriangleCount(), res.Mesh.VertexCount())
	for i, c := range res.Cuts {
		loops := 0
		for _, b := range c.OpenBoundaries {
			loops += len(b.CutLoops)
		}
		s += fmt.Sprintf("\nPlane %d:\n  Splits: %d\n  Removed: %d\n  Loops: %d\n  Fill: %d\n  Failed fills: %d\n",
			i, c.Stats.SplitEdges, c.Stats.DeletedTriangles, loops, c.Stats.FillTriangles, c.Stats.FailedFills)
	}
	return s
}
