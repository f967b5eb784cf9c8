package render

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taigrr/tinyfx/pkg/math3d"
)

func clipTri(a, b, c math3d.Vec4) [3]clipVertex {
	return [3]clipVertex{{pos: a}, {pos: b}, {pos: c}}
}

func TestIntersect(t *testing.T) {
	right := clipPlanes[3]
	v0 := math3d.V4(0, 0, 0.5, 1) // distance 1
	v1 := math3d.V4(3, 0, 0.5, 1) // distance -2
	tt := intersect(v0, v1, right)
	assert.InDelta(t, 1.0/3, tt, 1e-12)

	p := v0.Lerp(v1, tt)
	assert.InDelta(t, 0, p.Dot(right), 1e-12)
}

func TestClipFullyOutsideEachPlane(t *testing.T) {
	// A point outside exactly one plane for each entry of clipPlanes.
	outside := []math3d.Vec4{
		math3d.V4(0, 0, -0.5, 1), // near
		math3d.V4(0, 0, 1.5, 1),  // far
		math3d.V4(-2, 0, 0.5, 1), // left
		math3d.V4(2, 0, 0.5, 1),  // right
		math3d.V4(0, -2, 0.5, 1), // bottom
		math3d.V4(0, 2, 0.5, 1),  // top
	}
	for i, o := range outside {
		t.Run(clipPlaneName(i), func(t *testing.T) {
			ctx, _, _ := newTestContext(t, 8, 8)
			ctx.SetBackfaceCulling(false)
			tri := clipTri(o, math3d.V4(o.X+0.1, o.Y, o.Z, o.W), math3d.V4(o.X, o.Y+0.1, o.Z, o.W))
			assert.Equal(t, 0, ctx.clip(tri, 0))
		})
	}
}

func TestClipFullyInside(t *testing.T) {
	ctx, _, _ := newTestContext(t, 8, 8)
	tri := clipTri(math3d.V4(-0.5, -0.5, 0.5, 1), math3d.V4(0.5, -0.5, 0.5, 1), math3d.V4(-0.5, 0.5, 0.5, 1))
	assert.Equal(t, 1, ctx.clip(tri, 0))
}

func TestClipSinglePlaneSplits(t *testing.T) {
	tests := []struct {
		name string
		tri  [3]clipVertex
		want int
	}{
		{
			name: "one vertex outside right",
			tri:  clipTri(math3d.V4(-0.5, -0.5, 0.5, 1), math3d.V4(2, -0.5, 0.5, 1), math3d.V4(-0.5, 0.5, 0.5, 1)),
			want: 2,
		},
		{
			name: "two vertices outside right",
			tri:  clipTri(math3d.V4(0.5, -0.5, 0.5, 1), math3d.V4(2, -0.5, 0.5, 1), math3d.V4(2, 0.5, 0.5, 1)),
			want: 1,
		},
		{
			name: "one vertex behind near",
			tri:  clipTri(math3d.V4(-0.5, -0.5, 0.5, 1), math3d.V4(0.5, -0.5, -0.5, 1), math3d.V4(-0.5, 0.5, 0.5, 1)),
			want: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, _, _ := newTestContext(t, 8, 8)
			ctx.SetBackfaceCulling(false)
			got := ctx.clip(tt.tri, 0)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, got, 2)
		})
	}
}

func TestClipPreservesWinding(t *testing.T) {
	// Front-facing triangles stay front-facing after every split case, so
	// culling must not drop any of the pieces.
	tris := [][3]clipVertex{
		clipTri(math3d.V4(2, -0.5, 0.5, 1), math3d.V4(-0.5, 0.5, 0.5, 1), math3d.V4(-0.5, -0.5, 0.5, 1)),
		clipTri(math3d.V4(-0.5, -0.5, 0.5, 1), math3d.V4(2, -0.5, 0.5, 1), math3d.V4(-0.5, 0.5, 0.5, 1)),
		clipTri(math3d.V4(-0.5, 0.5, 0.5, 1), math3d.V4(-0.5, -0.5, 0.5, 1), math3d.V4(2, -0.5, 0.5, 1)),
	}
	for i, tri := range tris {
		ctx, _, _ := newTestContext(t, 8, 8)
		assert.Equal(t, 2, ctx.clip(tri, 0), "rotation %d", i)
	}
}

func TestClipInterpolatesAttributes(t *testing.T) {
	a := clipVertex{pos: math3d.V4(0, 0, 0.5, 1), uv: math3d.V2(0, 0), col: math3d.V3(1, 0, 0)}
	b := clipVertex{pos: math3d.V4(4, 0, 0.5, 1), uv: math3d.V2(1, 2), col: math3d.V3(0, 1, 0)}
	mid := a.lerp(b, 0.25)
	assert.Equal(t, math3d.V4(1, 0, 0.5, 1), mid.pos)
	assert.Equal(t, math3d.V2(0.25, 0.5), mid.uv)
	assert.Equal(t, math3d.V3(0.75, 0.25, 0), mid.col)
}

func clipPlaneName(i int) string {
	return [...]string{"near", "far", "left", "right", "bottom", "top"}[i]
}
