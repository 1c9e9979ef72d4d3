package main

import (
	"context"
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/philipparndt/meshcut/internal/config"
	"github.com/philipparndt/meshcut/internal/job"
	"github.com/philipparndt/meshcut/pkg/preview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultView(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	recipe := config.Default()
	recipe.Planes = []config.Step{{
		Origin: config.Vec3{0, 0, 0.5},
		Normal: config.Vec3{0, 0, 1},
		Mode:   config.ModeCut,
	}}
	res, err := job.Run(context.Background(), recipe, writeCube(t, t.TempDir()), nil, nil)
	require.NoError(t, err)

	opts := preview.DefaultOptions()
	opts.Width, opts.Height = 160, 120
	v := newResultView(res, opts)
	require.NoError(t, v.render())
	require.NotNil(t, v.image.Image)
	assert.Equal(t, 160, v.image.Image.Bounds().Dx())
	assert.Contains(t, v.info.Text, "Triangles: 20")
	assert.Contains(t, v.info.Text, "Fill: 6")
	assert.Equal(t, "box: 20 triangles, 6 fill", v.opts.Caption)

	w := a.NewWindow("view")
	defer w.Close()
	w.SetContent(v.content(w))

	before := v.image.Image
	yaw := v.opts.Camera.Yaw
	v.move(w, func(c *preview.Camera) { c.Rotate(0.5, 0) })()
	assert.InDelta(t, yaw+0.5, v.opts.Camera.Yaw, 1e-12)
	assert.NotSame(t, before, v.image.Image)
}

func TestViewNeedsPlane(t *testing.T) {
	_, err := execute(t, "view", writeCube(t, t.TempDir()))
	assert.ErrorContains(t, err, "no plane given")
}
