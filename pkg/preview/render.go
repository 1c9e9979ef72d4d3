// Package preview renders a mesh and its cut boundaries to a PNG without a
// display.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	"github.com/philipparndt/meshcut/pkg/dmesh"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Overlay marks what to emphasise on top of the mesh
type Overlay struct {
	// Highlight triangles are drawn in Options.Highlight, typically the fill.
	Highlight map[int]struct{}
	// Loops are closed vertex chains, Spans open ones.
	Loops [][]int
	Spans [][]int
}

type Options struct {
	Width, Height int
	Background    color.RGBA
	Surface       color.RGBA
	Highlight     color.RGBA
	Boundary      color.RGBA
	Caption       string
	// Camera defaults to one framing the mesh bounds.
	Camera *Camera
}

func DefaultOptions() Options {
	return Options{
		Width:      640,
		Height:     480,
		Background: color.RGBA{R: 32, G: 34, B: 40, A: 255},
		Surface:    color.RGBA{R: 180, G: 190, B: 205, A: 255},
		Highlight:  color.RGBA{R: 240, G: 160, B: 60, A: 255},
		Boundary:   color.RGBA{R: 255, G: 60, B: 60, A: 255},
	}
}

// Render draws the live triangles of mesh with flat shading lit from the
// eye, then the overlay chains and the caption.
func Render(mesh *dmesh.Mesh, overlay Overlay, opts Options) (*image.RGBA, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("invalid image size %dx%d", opts.Width, opts.Height)
	}
	cam := opts.Camera
	if cam == nil {
		cam = NewCamera(mesh.Bounds())
	}
	w, h := float64(opts.Width), float64(opts.Height)
	vp := cam.ViewProjection(w / h)
	eye := cam.Position()
	cv := newCanvas(opts.Width, opts.Height, opts.Background)

	for _, tid := range mesh.TriangleIDs() {
		var pts [3]screenPoint
		visible := true
		for j, v := range mesh.Triangle(tid) {
			x, y, z, ok := project(vp, mesh.Vertex(v), w, h)
			if !ok {
				visible = false
				break
			}
			pts[j] = screenPoint{x, y, z}
		}
		if !visible {
			continue
		}
		base := opts.Surface
		if _, ok := overlay.Highlight[tid]; ok {
			base = opts.Highlight
		}
		toEye := eye.Sub(mesh.TriangleCentroid(tid)).Normalize()
		intensity := 0.25 + 0.75*math.Abs(mesh.TriangleNormal(tid).Dot(toEye))
		cv.fillTriangle(pts, shade(base, intensity))
	}

	drawChain := func(chain []int, closed bool) {
		n := len(chain)
		last := n - 1
		if closed {
			last = n
		}
		for i := 0; i < last; i++ {
			a, b := chain[i], chain[(i+1)%n]
			if !mesh.IsVertex(a) || !mesh.IsVertex(b) {
				continue
			}
			x1, y1, _, ok1 := project(vp, mesh.Vertex(a), w, h)
			x2, y2, _, ok2 := project(vp, mesh.Vertex(b), w, h)
			if ok1 && ok2 {
				cv.drawLine(int(x1), int(y1), int(x2), int(y2), opts.Boundary)
			}
		}
	}
	for _, loop := range overlay.Loops {
		drawChain(loop, true)
	}
	for _, span := range overlay.Spans {
		drawChain(span, false)
	}

	if opts.Caption != "" {
		d := font.Drawer{
			Dst:  cv.img,
			Src:  image.NewUniform(color.RGBA{R: 255, G: 255, B: 255, A: 255}),
			Face: basicfont.Face7x13,
			Dot:  fixed.P(8, 8+basicfont.Face7x13.Ascent),
		}
		d.DrawString(opts.Caption)
	}
	return cv.img, nil
}

// WritePNG encodes img to path
func WritePNG(path string, img image.Image) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return nil
}
