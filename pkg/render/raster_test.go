package render

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/tinyfx/pkg/bitmap"
	"github.com/taigrr/tinyfx/pkg/math3d"
)

func TestBarycentric(t *testing.T) {
	a := math3d.V3(0, 4, 0)
	b := math3d.V3(4, 4, 0)
	c := math3d.V3(0, 0, 0)

	tests := []struct {
		name   string
		px, py float64
		want   math3d.Vec3
	}{
		{"vertex a", 0, 4, math3d.V3(1, 0, 0)},
		{"vertex b", 4, 4, math3d.V3(0, 1, 0)},
		{"vertex c", 0, 0, math3d.V3(0, 0, 1)},
		{"interior", 1.5, 2.5, math3d.V3(0.25, 0.375, 0.375)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := barycentric(a, b, c, tt.px, tt.py)
			assert.InDelta(t, tt.want.X, got.X, 1e-9)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-9)
			assert.InDelta(t, tt.want.Z, got.Z, 1e-9)
		})
	}

	t.Run("degenerate", func(t *testing.T) {
		got := barycentric(a, math3d.V3(2, 2, 0), math3d.V3(4, 0, 0), 1, 3)
		assert.Equal(t, math3d.V3(-1, 1, 1), got)
	})
}

func TestEndToEndVertexColors(t *testing.T) {
	ctx, bm, _ := newTestContext(t, 4, 4)

	require.NoError(t, ctx.Begin(Triangles))
	ctx.Vertex(-1, -1, 0.5)
	ctx.Color(1, 0, 0)
	ctx.Vertex(1, -1, 0.5)
	ctx.Color(0, 1, 0)
	ctx.Vertex(-1, 1, 0.5)
	ctx.Color(0, 0, 1)
	n, err := ctx.End()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// Pixel (1,2) sits at weights (0.25, 0.375, 0.375).
	mid := bm.Get(1, 2)
	assert.InDelta(t, 0.25*255, float64(mid.R), 2)
	assert.InDelta(t, 0.375*255, float64(mid.G), 2)
	assert.InDelta(t, 0.375*255, float64(mid.B), 2)

	corner := bm.Get(0, 3)
	assert.Greater(t, corner.R, uint8(150))
	assert.Less(t, corner.G, uint8(50))
	assert.Less(t, corner.B, uint8(50))

	assert.Equal(t, color.RGBA{}, bm.Get(3, 0), "outside the triangle")
	assert.InDelta(t, 0.5, ctx.Depth(1, 2), 1e-9)
}

func TestBackfaceCulling(t *testing.T) {
	draw := func(ctx *Context) int {
		require.NoError(t, ctx.Begin(Triangles))
		// Clockwise in NDC.
		ctx.Vertex(-0.9, -0.9, 0.5)
		ctx.Vertex(-0.9, 0.9, 0.5)
		ctx.Vertex(0.9, -0.9, 0.5)
		n, err := ctx.End()
		require.NoError(t, err)
		return n
	}

	ctx, bm, _ := newTestContext(t, 4, 4)
	assert.Equal(t, 0, draw(ctx))
	assert.Zero(t, countColor(bm, bitmap.White))

	ctx.SetBackfaceCulling(false)
	assert.Equal(t, 1, draw(ctx))
	assert.Equal(t, bitmap.White, bm.Get(0, 3))
}

func TestDepthMonotonicity(t *testing.T) {
	ctx, bm, _ := newTestContext(t, 16, 16)

	require.NoError(t, ctx.Begin(Triangles))
	for _, v := range [3]math3d.Vec2{{X: -0.8, Y: -0.8}, {X: 0.5, Y: -0.8}, {X: -0.8, Y: 0.5}} {
		ctx.Vertex(v.X, v.Y, 0.3)
		ctx.Color(1, 0, 0)
	}
	_, err := ctx.End()
	require.NoError(t, err)

	first := append([]color.RGBA(nil), bm.Pixels...)
	require.NotZero(t, countColor(bm, bitmap.Red))

	drawQuad(t, ctx, 0.6, math3d.V3(0, 0, 1))

	for i, p := range first {
		if p == bitmap.Red {
			assert.Equal(t, bitmap.Red, bm.Pixels[i], "pixel %d overwritten by farther geometry", i)
		} else {
			assert.Equal(t, bitmap.Blue, bm.Pixels[i], "pixel %d", i)
		}
	}
}

func TestPerspectiveCorrectInterpolation(t *testing.T) {
	const size = 64
	ctx, bm, _ := newTestContext(t, size, size)
	require.NoError(t, ctx.SetProjection(math3d.PerspectiveZO(math.Pi/2, 1, 0.1, 10)))

	verts := [3]math3d.Vec3{
		math3d.V3(-0.9, -0.9, -1),
		math3d.V3(3.6, -0.9, -4),
		math3d.V3(-0.9, 0.9, -1),
	}
	cols := [3]math3d.Vec3{{}, math3d.V3(1, 0, 0), {}}

	require.NoError(t, ctx.Begin(Triangles))
	for i := range verts {
		ctx.VertexV(verts[i])
		ctx.ColorV(cols[i])
	}
	n, err := ctx.End()
	require.NoError(t, err)
	require.Equal(t, 1, n)

	// Project independently and evaluate both interpolation rules at the
	// pixel containing the screen-space centroid.
	proj := ctx.Projection()
	var s [3]math3d.Vec2
	var w [3]float64
	for i, v := range verts {
		q := proj.MulVec4(math3d.V4FromV3(v, 1))
		w[i] = q.W
		s[i] = math3d.V2((q.X/q.W+1)*size/2, (1-q.Y/q.W)*size/2)
	}
	cx := int((s[0].X + s[1].X + s[2].X) / 3)
	cy := int((s[0].Y + s[1].Y + s[2].Y) / 3)
	p := math3d.V2(float64(cx)+0.5, float64(cy)+0.5)

	area := func(a, b, c math3d.Vec2) float64 { return b.Sub(a).Cross(c.Sub(a)) }
	total := area(s[0], s[1], s[2])
	l0 := area(p, s[1], s[2]) / total
	l1 := area(s[0], p, s[2]) / total
	l2 := area(s[0], s[1], p) / total

	naive := l1
	correct := (l1 / w[1]) / (l0/w[0] + l1/w[1] + l2/w[2])
	require.Greater(t, (naive-correct)*255, 20.0, "test triangle must make the rules differ")

	got := float64(bm.Get(cx, cy).R)
	assert.InDelta(t, correct*255, got, 2)
}

func TestTexturing(t *testing.T) {
	tex := bitmap.NewChecker(2, 2, 1, bitmap.Red, bitmap.Green)

	t.Run("samples", func(t *testing.T) {
		ctx, bm, _ := newTestContext(t, 4, 4)
		ctx.SetTexture(tex)
		drawQuad(t, ctx, 0.5, math3d.V3(1, 1, 1))
		assert.Equal(t, bitmap.Red, bm.Get(0, 0))
		assert.Equal(t, bitmap.Green, bm.Get(3, 0))
		assert.Equal(t, bitmap.Green, bm.Get(0, 3))
		assert.Equal(t, bitmap.Red, bm.Get(3, 3))
	})

	t.Run("color key", func(t *testing.T) {
		ctx, bm, _ := newTestContext(t, 4, 4)
		key := bitmap.NewChecker(2, 2, 1, bitmap.Red, bitmap.Green)
		key.SetColor(bitmap.RGBA(0, 255, 0, 0)) // alpha is ignored
		ctx.SetTexture(key)
		ctx.SetTransparent(true)
		drawQuad(t, ctx, 0.5, math3d.V3(1, 1, 1))
		assert.Equal(t, bitmap.Red, bm.Get(0, 0))
		assert.Equal(t, color.RGBA{}, bm.Get(3, 0))
		assert.Equal(t, 1.0, ctx.Depth(3, 0), "skipped pixels keep their depth")
	})

	t.Run("clip rectangle selects region", func(t *testing.T) {
		ctx, bm, _ := newTestContext(t, 4, 4)
		sub := bitmap.NewChecker(2, 2, 1, bitmap.Red, bitmap.Green)
		sub.SetClip(image.Rect(1, 0, 2, 1)) // the green texel only
		ctx.SetTexture(sub)
		drawQuad(t, ctx, 0.5, math3d.V3(1, 1, 1))
		assert.Equal(t, 16, countColor(bm, bitmap.Green))
	})

	t.Run("modulated by vertex color", func(t *testing.T) {
		ctx, bm, _ := newTestContext(t, 4, 4)
		ctx.SetTexture(tex)
		drawQuad(t, ctx, 0.5, math3d.V3(0.5, 0.5, 0.5))
		got := bm.Get(0, 0)
		assert.InDelta(t, 128, int(got.R), 1)
		assert.Zero(t, got.G)
	})

	t.Run("dither stays in texture", func(t *testing.T) {
		ctx, bm, _ := newTestContext(t, 8, 8)
		ctx.SetTexture(tex)
		ctx.SetTextureDither(true)
		drawQuad(t, ctx, 0.5, math3d.V3(1, 1, 1))
		assert.Equal(t, 64, countColor(bm, bitmap.Red)+countColor(bm, bitmap.Green))
	})

	t.Run("needs a texcoord per vertex", func(t *testing.T) {
		ctx, bm, _ := newTestContext(t, 4, 4)
		ctx.SetTexture(tex)
		require.NoError(t, ctx.Begin(TriangleStrip))
		ctx.Vertex(-1, 1, 0.5)
		ctx.Texcoord(0, 0)
		ctx.Vertex(-1, -1, 0.5)
		ctx.Vertex(1, 1, 0.5)
		ctx.Vertex(1, -1, 0.5)
		_, err := ctx.End()
		require.NoError(t, err)
		assert.Equal(t, 16, countColor(bm, bitmap.White))
	})
}

func TestUntexturedUsesTargetColor(t *testing.T) {
	ctx, bm, _ := newTestContext(t, 4, 4)
	require.NoError(t, ctx.SetTargetColor(bitmap.RGB(255, 0, 255)))
	require.NoError(t, ctx.Begin(TriangleStrip))
	for _, v := range [4]math3d.Vec2{{X: -1, Y: 1}, {X: -1, Y: -1}, {X: 1, Y: 1}, {X: 1, Y: -1}} {
		ctx.Vertex(v.X, v.Y, 0.5)
	}
	_, err := ctx.End()
	require.NoError(t, err)
	assert.Equal(t, 16, countColor(bm, bitmap.RGB(255, 0, 255)))
}

func TestBlend(t *testing.T) {
	ctx, bm, _ := newTestContext(t, 4, 4)
	bm.Clear(bitmap.Red)
	ctx.SetBlend(true)
	drawQuad(t, ctx, 0.5, math3d.V3(0, 0, 1))
	assert.Equal(t, bitmap.RGB(127, 0, 127), bm.Get(2, 2))
}

func TestPickBuffer(t *testing.T) {
	ctx, bm, _ := newTestContext(t, 4, 4)
	pick := bitmap.New(4, 4)
	pick.SetColor(bitmap.RGB(0, 0, 7))
	require.NoError(t, ctx.SetPick(pick))

	require.NoError(t, ctx.Begin(Triangles))
	ctx.Vertex(-1, -1, 0.5)
	ctx.Vertex(1, -1, 0.5)
	ctx.Vertex(-1, 1, 0.5)
	_, err := ctx.End()
	require.NoError(t, err)

	for i := range bm.Pixels {
		if bm.Pixels[i] == bitmap.White {
			assert.Equal(t, bitmap.RGB(0, 0, 7), pick.Pixels[i])
		} else {
			assert.Equal(t, color.RGBA{}, pick.Pixels[i])
		}
	}
}

func TestTargetClipBoundsRaster(t *testing.T) {
	ctx, bm, _ := newTestContext(t, 8, 8)
	bm.SetClip(image.Rect(2, 2, 4, 4))
	drawQuad(t, ctx, 0.5, math3d.V3(1, 1, 1))
	assert.Equal(t, 4, countColor(bm, bitmap.White))
	assert.Equal(t, bitmap.White, bm.Get(3, 3))
	assert.Equal(t, 1.0, ctx.Depth(0, 0))
}

func TestDrawDepth(t *testing.T) {
	ctx, _, _ := newTestContext(t, 4, 4)
	require.NoError(t, ctx.Begin(Triangles))
	ctx.Vertex(-1, -1, 0.5)
	ctx.Vertex(1, -1, 0.5)
	ctx.Vertex(-1, 1, 0.5)
	_, err := ctx.End()
	require.NoError(t, err)

	dest := bitmap.New(4, 4)
	require.NoError(t, ctx.DrawDepth(dest))
	assert.InDelta(t, 128, int(dest.Get(0, 3).R), 1)
	assert.Equal(t, bitmap.Black, dest.Get(3, 0))

	ctx.ClearDepth()
	require.NoError(t, ctx.DrawDepth(dest))
	assert.Equal(t, bitmap.Black, dest.Get(0, 3))
}
