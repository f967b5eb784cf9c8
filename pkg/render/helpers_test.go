package render

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taigrr/tinyfx/pkg/bitmap"
	"github.com/taigrr/tinyfx/pkg/math3d"
)

// errorRecorder collects everything reported to the sink.
type errorRecorder struct {
	errs []error
}

func (r *errorRecorder) Report(err error) { r.errs = append(r.errs, err) }

// newTestContext binds a w×h bitmap with identity matrices, so vertex
// coordinates are NDC and z is depth.
func newTestContext(t *testing.T, w, h int, opts ...Option) (*Context, *bitmap.Bitmap, *errorRecorder) {
	t.Helper()
	rec := &errorRecorder{}
	ctx := New(append([]Option{WithErrorSink(rec)}, opts...)...)
	bm := bitmap.New(w, h)
	require.NoError(t, ctx.SetViewport(bm))
	require.NoError(t, ctx.SetProjection(math3d.Identity()))
	return ctx, bm, rec
}

// drawQuad covers the whole viewport at depth z with a front-facing strip.
func drawQuad(t *testing.T, ctx *Context, z float64, col math3d.Vec3) int {
	t.Helper()
	require.NoError(t, ctx.Begin(TriangleStrip))
	for _, v := range [4]math3d.Vec2{{X: -1, Y: 1}, {X: -1, Y: -1}, {X: 1, Y: 1}, {X: 1, Y: -1}} {
		require.NoError(t, ctx.Vertex(v.X, v.Y, z))
		require.NoError(t, ctx.ColorV(col))
		require.NoError(t, ctx.Texcoord((v.X+1)/2, (1-v.Y)/2))
	}
	n, err := ctx.End()
	require.NoError(t, err)
	return n
}

func countColor(bm *bitmap.Bitmap, c color.RGBA) int {
	n := 0
	for _, p := range bm.Pixels {
		if p == c {
			n++
		}
	}
	return n
}
