package stl

import (
	"github.com/philipparndt/meshcut/pkg/geometry"
)

// Model is the facet soup of one STL solid, before welding.
type Model struct {
	Name      string
	Triangles []geometry.Triangle
}

func NewModel(name string) *Model {
	return &Model{Name: name}
}

func (m *Model) AddTriangle(t geometry.Triangle) {
	m.Triangles = append(m.Triangles, t)
}

func (m *Model) TriangleCount() int {
	return len(m.Triangles)
}

// Bounds covers every facet corner, including those of facets that welding
// later drops.
func (m *Model) Bounds() geometry.BoundingBox {
	b := geometry.NewBoundingBox()
	for _, t := range m.Triangles {
		b.Extend(t.V1)
		b.Extend(t.V2)
		b.Extend(t.V3)
	}
	return b
}

// Area sums the facet areas as stored in the file.
func (m *Model) Area() float64 {
	a := 0.0
	for _, t := range m.Triangles {
		a += t.Area()
	}
	return a
}

// FlippedNormals counts facets whose stored normal points against their
// winding. Facets stored without a normal are not counted.
func (m *Model) FlippedNormals() int {
	n := 0
	for _, t := range m.Triangles {
		if t.Normal.LengthSquared() == 0 {
			continue
		}
		if t.Normal.Dot(t.CalculateNormal()) < 0 {
			n++
		}
	}
	return n
}
