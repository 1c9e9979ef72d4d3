package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/philipparndt/meshcut/pkg/dmesh"
	"github.com/philipparndt/meshcut/pkg/geometry"
	"github.com/philipparndt/meshcut/pkg/meshcut"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const recipe = `
input: part.stl
format: ascii
plane_tolerance: 0.001
fill:
  method: planar
  group: 7
planes:
  - origin: [0, 0, 0.5]
    normal: [0, 0, 2]
  - origin: [0.5, 0, 0]
    normal: [0, 0, 1]
    rotate: [0, 90, 0]
    mode: split
    offset: 1.5
`

func TestParse(t *testing.T) {
	r, err := Parse([]byte(recipe))
	require.NoError(t, err)

	assert.Equal(t, "part.stl", r.Input)
	assert.Equal(t, "ascii", r.Format)
	assert.Equal(t, 0.001, r.PlaneTolerance)
	assert.Equal(t, meshcut.DefaultDegenerateEdgeTol, r.DegenerateEdgeTolerance, "default kept")
	assert.True(t, r.CollapseDegenerateEdges)
	assert.Equal(t, FillPlanar, r.Fill.Method)
	assert.Equal(t, 7, r.Fill.Group)
	assert.Equal(t, -1, r.Fill.Material)

	require.Len(t, r.Planes, 2)
	assert.Equal(t, ModeCut, r.Planes[0].Mode)
	assert.Equal(t, ModeSplit, r.Planes[1].Mode)

	p0 := r.Planes[0].Plane()
	assert.InDelta(t, 1.0, p0.Normal.Z, 1e-12)

	p1 := r.Planes[1].Plane()
	assert.InDelta(t, 1.0, p1.Normal.X, 1e-9)
	assert.InDelta(t, 0.0, p1.Normal.Z, 1e-9)
}

func TestValidate(t *testing.T) {
	tests := map[string]string{
		"mode":      "planes: [{origin: [0,0,0], normal: [0,0,1], mode: slice}]",
		"normal":    "planes: [{origin: [0,0,0], normal: [0,0,0]}]",
		"fill":      "fill: {method: magic}",
		"format":    "format: obj",
		"tolerance": "plane_tolerance: -1",
		"yaml":      "planes: {",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.ErrorIs(t, err, ErrInvalidRecipe)
		})
	}
}

func TestLoadAndMarshal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recipe.yaml")
	require.NoError(t, os.WriteFile(path, []byte(recipe), 0o644))

	r, err := Load(path)
	require.NoError(t, err)

	data, err := r.Marshal()
	require.NoError(t, err)
	again, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, r, again)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestApply(t *testing.T) {
	r := Default()
	r.PlaneTolerance = 0.01
	r.Fill.Material = 3
	r.CollapseDegenerateEdges = false

	c := meshcut.NewPlaneCut(dmesh.New(), geometry.NewPlane(geometry.Vector3{}, geometry.NewVector3(0, 0, 1)))
	r.Apply(c)

	assert.Equal(t, 0.01, c.PlaneTolerance)
	assert.Equal(t, 3, c.MaterialID)
	assert.Equal(t, -1, c.ConstantGroupID)
	assert.False(t, c.CollapseDegenerateEdgesOnCut)
}
