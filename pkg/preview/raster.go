package preview

import (
	"image"
	"image/color"
	"math"
)

// canvas is an RGBA image with a depth buffer
type canvas struct {
	img   *image.RGBA
	depth []float64
}

func newCanvas(width, height int, background color.RGBA) *canvas {
	c := &canvas{
		img:   image.NewRGBA(image.Rect(0, 0, width, height)),
		depth: make([]float64, width*height),
	}
	for i := range c.depth {
		c.depth[i] = math.Inf(1)
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c.img.SetRGBA(x, y, background)
		}
	}
	return c
}

type screenPoint struct {
	x, y, z float64
}

func edgeFunction(a, b screenPoint, x, y float64) float64 {
	return (b.x-a.x)*(y-a.y) - (b.y-a.y)*(x-a.x)
}

// fillTriangle rasterizes a triangle of either winding with depth testing,
// sampling at pixel centers.
func (c *canvas) fillTriangle(p [3]screenPoint, col color.RGBA) {
	area := edgeFunction(p[0], p[1], p[2].x, p[2].y)
	if area == 0 {
		return
	}
	bounds := c.img.Bounds()
	minX := int(math.Max(0, math.Floor(math.Min(p[0].x, math.Min(p[1].x, p[2].x)))))
	maxX := int(math.Min(float64(bounds.Max.X-1), math.Ceil(math.Max(p[0].x, math.Max(p[1].x, p[2].x)))))
	minY := int(math.Max(0, math.Floor(math.Min(p[0].y, math.Min(p[1].y, p[2].y)))))
	maxY := int(math.Min(float64(bounds.Max.Y-1), math.Ceil(math.Max(p[0].y, math.Max(p[1].y, p[2].y)))))

	width := bounds.Max.X
	for y := minY; y <= maxY; y++ {
		fy := float64(y) + 0.5
		for x := minX; x <= maxX; x++ {
			fx := float64(x) + 0.5
			w0 := edgeFunction(p[1], p[2], fx, fy) / area
			w1 := edgeFunction(p[2], p[0], fx, fy) / area
			w2 := edgeFunction(p[0], p[1], fx, fy) / area
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			z := w0*p[0].z + w1*p[1].z + w2*p[2].z
			idx := y*width + x
			if z < c.depth[idx] {
				c.depth[idx] = z
				c.img.SetRGBA(x, y, col)
			}
		}
	}
}

// drawLine draws a line on top of everything using Bresenham's algorithm
func (c *canvas) drawLine(x1, y1, x2, y2 int, col color.RGBA) {
	bounds := c.img.Bounds()

	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	sx, sy := -1, -1
	if x1 < x2 {
		sx = 1
	}
	if y1 < y2 {
		sy = 1
	}

	err := dx - dy
	for {
		if x1 >= 0 && x1 < bounds.Max.X && y1 >= 0 && y1 < bounds.Max.Y {
			c.img.SetRGBA(x1, y1, col)
		}
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func shade(col color.RGBA, intensity float64) color.RGBA {
	intensity = math.Max(0, math.Min(1, intensity))
	return color.RGBA{
		R: uint8(float64(col.R) * intensity),
		G: uint8(float64(col.G) * intensity),
		B: uint8(float64(col.B) * intensity),
		A: col.A,
	}
}
