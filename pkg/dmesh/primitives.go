package dmesh

import "github.com/philipparndt/meshcut/pkg/geometry"

// NewBox builds a closed, outward-facing box between min and max. The walls
// are divided into storeys horizontal bands, so storeys=1 gives the classic
// 8 vertex, 12 triangle box. All triangles are in group 0.
func NewBox(min, max geometry.Vector3, storeys int) *Mesh {
	if storeys < 1 {
		storeys = 1
	}
	m := New()
	corners := [4][2]float64{{min.X, min.Y}, {max.X, min.Y}, {max.X, max.Y}, {min.X, max.Y}}
	for k := 0; k <= storeys; k++ {
		z := min.Z + (max.Z-min.Z)*float64(k)/float64(storeys)
		for _, c := range corners {
			m.AppendVertex(geometry.NewVector3(c[0], c[1], z))
		}
	}

	add := func(a, b, c int) {
		// cannot fail on a freshly built closed box
		_, _ = m.AppendTriangle([3]int{a, b, c}, 0)
	}
	add(0, 2, 1)
	add(0, 3, 2)
	for k := 0; k < storeys; k++ {
		for i := 0; i < 4; i++ {
			j := (i + 1) % 4
			a, b := 4*k+i, 4*k+j
			c, d := 4*(k+1)+j, 4*(k+1)+i
			add(a, b, c)
			add(a, c, d)
		}
	}
	top := 4 * storeys
	add(top, top+1, top+2)
	add(top, top+2, top+3)
	return m
}

// NewGrid builds an open, upward-facing rectangular grid in the z=0 plane
// with nx by ny cells, each split into two triangles.
func NewGrid(width, depth float64, nx, ny int) *Mesh {
	m := New()
	for j := 0; j <= ny; j++ {
		for i := 0; i <= nx; i++ {
			m.AppendVertex(geometry.NewVector3(width*float64(i)/float64(nx), depth*float64(j)/float64(ny), 0))
		}
	}
	row := nx + 1
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			a := j*row + i
			_, _ = m.AppendTriangle([3]int{a, a + 1, a + row + 1}, 0)
			_, _ = m.AppendTriangle([3]int{a, a + row + 1, a + row}, 0)
		}
	}
	return m
}
