package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/tinyfx/pkg/bitmap"
	"github.com/taigrr/tinyfx/pkg/config"
	"github.com/taigrr/tinyfx/pkg/math3d"
	"github.com/taigrr/tinyfx/pkg/models"
	"github.com/taigrr/tinyfx/pkg/render"
)

const quadOBJ = `o quad
v -1 -1 0
v 1 -1 0
v 1 1 0
v -1 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
f 1/1 2/2 3/3 4/4
`

func writeQuad(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "quad.obj")
	require.NoError(t, os.WriteFile(path, []byte(quadOBJ), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&out)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRenderCommand(t *testing.T) {
	model := writeQuad(t)
	dir := filepath.Dir(model)
	img := filepath.Join(dir, "out.png")
	depth := filepath.Join(dir, "depth.bmp")

	out, err := execute(t, "render", model, "-o", img, "--depth", depth, "--width", "32", "--height", "24")
	require.NoError(t, err)
	assert.Contains(t, out, "triangles=2")

	bm, err := bitmap.Load(img)
	require.NoError(t, err)
	assert.Equal(t, 32, bm.Width())
	assert.Equal(t, 24, bm.Height())
	bg := config.Default().Viewport.Background.RGBA
	assert.Equal(t, bg, bm.Get(0, 0))
	assert.NotEqual(t, bg, bm.Get(16, 12), "quad covers the center")

	d, err := bitmap.Load(depth)
	require.NoError(t, err)
	assert.Equal(t, bitmap.Black, d.Get(0, 0), "far plane")
	assert.NotEqual(t, bitmap.Black, d.Get(16, 12))
}

func TestRenderPickMask(t *testing.T) {
	model := writeQuad(t)
	mask := filepath.Join(filepath.Dir(model), "mask.png")

	_, err := execute(t, "render", model, "-o", filepath.Join(filepath.Dir(model), "out.png"),
		"--pick", mask, "--width", "32", "--height", "24")
	require.NoError(t, err)

	bm, err := bitmap.Load(mask)
	require.NoError(t, err)
	assert.Equal(t, bitmap.Black, bm.Get(0, 0))
	assert.Equal(t, bitmap.White, bm.Get(16, 12))
}

func TestDrawFrameLightMarker(t *testing.T) {
	scene := config.Default()
	bg := scene.Viewport.Background.RGBA
	ctx := render.New()
	fb := bitmap.New(64, 64)
	require.NoError(t, ctx.SetViewport(fb))
	// The default view sits at the origin looking down -Z, so a light
	// travelling +Z puts the marker straight ahead.
	ctx.SetDiffuseDirection(0, 0, 1)
	empty := models.NewMesh("empty")

	_, err := drawFrame(ctx, scene, empty, math3d.Identity(), RenderModeTextured)
	require.NoError(t, err)
	assert.Equal(t, bg, fb.Get(32, 32))

	scene.Render.LightMarker = true
	_, err = drawFrame(ctx, scene, empty, math3d.Identity(), RenderModeTextured)
	require.NoError(t, err)
	assert.NotEqual(t, bg, fb.Get(32, 32))
	assert.Equal(t, bg, fb.Get(2, 2))
	assert.Nil(t, ctx.Texture())
}

func TestRenderCommandErrors(t *testing.T) {
	_, err := execute(t, "render")
	assert.ErrorIs(t, err, errNoModel)

	_, err = execute(t, "render", filepath.Join(t.TempDir(), "missing.obj"))
	assert.Error(t, err)

	model := writeQuad(t)
	_, err = execute(t, "render", model, "-o", filepath.Join(t.TempDir(), "out.gif"))
	assert.ErrorIs(t, err, bitmap.ErrUnknownFormat)

	_, err = execute(t, "render", model, "--flat", "--wireframe")
	assert.Error(t, err)
}

func TestRenderWithConfig(t *testing.T) {
	model := writeQuad(t)
	dir := filepath.Dir(model)
	scene := filepath.Join(dir, "scene.toml")
	require.NoError(t, os.WriteFile(scene, []byte(`
[viewport]
width = 20
height = 10
background = "#000000"

[light]
enabled = false

[model]
path = "`+filepath.ToSlash(model)+`"
`), 0o644))

	img := filepath.Join(dir, "out.bmp")
	_, err := execute(t, "render", "-c", scene, "-o", img)
	require.NoError(t, err)

	bm, err := bitmap.Load(img)
	require.NoError(t, err)
	assert.Equal(t, 20, bm.Width())
	assert.Equal(t, bitmap.Black, bm.Get(0, 0))
	assert.Equal(t, bitmap.White, bm.Get(10, 5), "unlit white material")
}

func TestSceneCommand(t *testing.T) {
	out, err := execute(t, "scene")
	require.NoError(t, err)
	assert.Contains(t, out, "[viewport]")
	assert.Contains(t, out, "background = '#1e1e28'")

	_, err = config.Parse([]byte(out))
	assert.NoError(t, err)
}

func TestSetTexture(t *testing.T) {
	mesh, err := models.NewLoader(nil).Load(writeQuad(t))
	require.NoError(t, err)
	require.Zero(t, mesh.MaterialCount())

	tex := bitmap.New(2, 2)
	setTexture(mesh, tex)
	require.Equal(t, 1, mesh.MaterialCount())
	for i := range mesh.Faces {
		assert.Same(t, tex, mesh.GetMaterial(mesh.GetFaceMaterial(i)).Texture)
	}
}

func TestSpin(t *testing.T) {
	s := NewSpin(60)
	assert.True(t, s.Resting())
	assert.True(t, s.Matrix().ApproxEqual(math3d.Identity(), 0))

	s.Impulse(0, 0.1, 0)
	s.Step()
	_, yaw, _ := s.Angles()
	assert.InDelta(t, 0.1, yaw, 1e-12)

	prev := yaw
	for range 600 {
		s.Step()
		_, yaw, _ = s.Angles()
		assert.GreaterOrEqual(t, yaw, prev, "critically damped spin never reverses")
		prev = yaw
	}
	assert.True(t, s.Resting())

	s.Reset()
	pitch, yaw, roll := s.Angles()
	assert.Zero(t, pitch+yaw+roll)
}

func TestScreenToLightDir(t *testing.T) {
	d := ScreenToLightDir(50, 25, 100, 50)
	assert.InDelta(t, 1, d.Z, 1e-9, "center faces the viewer")

	d = ScreenToLightDir(100, 25, 100, 50)
	assert.InDelta(t, 1, d.X, 1e-9)

	d = ScreenToLightDir(0, 0, 100, 50)
	assert.InDelta(t, 1, d.Len(), 1e-9)
	assert.Less(t, d.X, 0.0)
	assert.Greater(t, d.Y, 0.0)
}

func key(s string) uv.KeyPressEvent {
	return uv.KeyPressEvent{Code: []rune(s)[0], Text: s}
}

func newTestViewer(t *testing.T) *viewer {
	t.Helper()
	scene := config.Default()
	scene.Model.Path = writeQuad(t)
	mesh, err := loadMesh(scene, render.OSFiles{})
	require.NoError(t, err)
	v := newViewer(scene, mesh, 60)
	require.NoError(t, v.resize(16, 8))
	return v
}

func TestViewerHandle(t *testing.T) {
	v := newTestViewer(t)
	assert.Equal(t, 3.0, v.cam.Distance)

	quit, err := v.handle(key("x"))
	require.NoError(t, err)
	assert.False(t, quit)
	assert.Equal(t, RenderModeWireframe, v.state.Mode())
	v.handle(key("x"))
	v.handle(key("t"))
	assert.Equal(t, RenderModeFlat, v.state.Mode())

	v.handle(key("?"))
	assert.True(t, v.state.ShowHUD)

	v.handle(key("m"))
	assert.True(t, v.scene.Render.LightMarker)

	for range 100 {
		v.handle(uv.MouseWheelEvent{Button: uv.MouseWheelDown})
	}
	assert.Equal(t, maxDistance, v.cam.Distance)
	v.handle(uv.KeyPressEvent{Code: uv.KeyLeft})
	assert.InDelta(t, -orbitStep, v.cam.Yaw, 1e-12)
	v.handle(key("r"))
	assert.Equal(t, 3.0, v.cam.Distance)
	assert.Zero(t, v.cam.Yaw)

	v.handle(key("d"))
	assert.Equal(t, torqueStrength, v.torque[axisYaw])
	v.handle(uv.KeyReleaseEvent{Code: 'd', Text: "d"})
	assert.Zero(t, v.torque[axisYaw])

	v.handle(uv.MouseClickEvent{X: 2, Y: 2})
	v.handle(uv.MouseMotionEvent{X: 6, Y: 2})
	assert.False(t, v.spin.Resting())
	v.handle(uv.MouseReleaseEvent{})
	assert.False(t, v.dragging)

	v.handle(key("l"))
	assert.True(t, v.state.LightMode)
	v.handle(uv.MouseMotionEvent{X: 8, Y: 4})
	quit, _ = v.handle(uv.KeyPressEvent{Code: uv.KeyEscape})
	assert.False(t, quit, "escape leaves light mode first")
	assert.False(t, v.state.LightMode)

	quit, _ = v.handle(uv.KeyPressEvent{Code: uv.KeyEscape})
	assert.True(t, quit)

	require.NoError(t, func() error { _, err := v.handle(uv.WindowSizeEvent{Width: 20, Height: 6}); return err }())
	assert.Equal(t, 20, v.fb.Width())
	assert.Equal(t, 12, v.fb.Height())
}

func TestViewerStep(t *testing.T) {
	v := newTestViewer(t)

	n, err := v.step(1.0 / 60)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	bg := v.scene.Viewport.Background.RGBA
	assert.NotEqual(t, bg, v.fb.Get(8, 8))

	scr := uv.NewScreenBuffer(16, 8)
	v.state.ShowHUD = true
	v.hud.Frame(v.hud.since, n)
	v.present(scr)
	assert.Equal(t, "▀", scr.CellAt(8, 4).Content)

	v.state.RenderMode = RenderModeWireframe
	n, err = v.step(1.0 / 60)
	require.NoError(t, err)
	assert.Zero(t, n)
}
