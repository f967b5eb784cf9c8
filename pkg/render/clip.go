package render

import "github.com/taigrr/tinyfx/pkg/math3d"

// clipVertex is one corner of a triangle in flight. Texcoord and color are
// carried in clip space and interpolated with the same parameter as the
// position.
type clipVertex struct {
	pos math3d.Vec4
	uv  math3d.Vec2
	col math3d.Vec3
}

func (a clipVertex) lerp(b clipVertex, t float64) clipVertex {
	return clipVertex{
		pos: a.pos.Lerp(b.pos, t),
		uv:  a.uv.Lerp(b.uv, t),
		col: a.col.Lerp(b.col, t),
	}
}

// Clip planes (a, b, c, d): a point is inside when a·x + b·y + c·z + d·w > 0.
var clipPlanes = [...]math3d.Vec4{
	{X: 0, Y: 0, Z: 1, W: 0},  // near
	{X: 0, Y: 0, Z: -1, W: 1}, // far
	{X: 1, Y: 0, Z: 0, W: 1},  // left
	{X: -1, Y: 0, Z: 0, W: 1}, // right
	{X: 0, Y: 1, Z: 0, W: 1},  // bottom
	{X: 0, Y: -1, Z: 0, W: 1}, // top
}

func insidePlane(v, p math3d.Vec4) bool {
	return v.Dot(p) > 0
}

// intersect returns the parameter t at which the segment v0→v1 crosses p.
func intersect(v0, v1, p math3d.Vec4) float64 {
	d0 := v0.Dot(p)
	d1 := v1.Dot(p)
	return d0 / (d0 - d1)
}

// clip clips tri against planes n and later, rasterizing what survives.
// It returns the number of triangles rasterized.
func (c *Context) clip(tri [3]clipVertex, n int) int {
	if n >= len(clipPlanes) {
		return c.rasterize(tri)
	}
	p := clipPlanes[n]

	var in [3]bool
	inside := 0
	for i := range tri {
		if insidePlane(tri[i].pos, p) {
			in[i] = true
			inside++
		}
	}

	switch inside {
	case 3:
		return c.clip(tri, n+1)

	case 2:
		// vp[0] is the outside vertex; winding is kept by the order of vp[1], vp[2].
		var vp [3]clipVertex
		switch {
		case !in[0]:
			vp = [3]clipVertex{tri[0], tri[2], tri[1]}
		case !in[1]:
			vp = [3]clipVertex{tri[1], tri[0], tri[2]}
		default:
			vp = [3]clipVertex{tri[2], tri[1], tri[0]}
		}
		q1 := vp[1].lerp(vp[0], intersect(vp[1].pos, vp[0].pos, p))
		q2 := vp[2].lerp(vp[0], intersect(vp[2].pos, vp[0].pos, p))

		return c.clip([3]clipVertex{vp[1], q1, vp[2]}, n+1) +
			c.clip([3]clipVertex{vp[2], q1, q2}, n+1)

	case 1:
		// vp[0] is the inside vertex.
		var vp [3]clipVertex
		switch {
		case in[0]:
			vp = tri
		case in[1]:
			vp = [3]clipVertex{tri[1], tri[2], tri[0]}
		default:
			vp = [3]clipVertex{tri[2], tri[0], tri[1]}
		}
		q1 := vp[0].lerp(vp[1], intersect(vp[0].pos, vp[1].pos, p))
		q2 := vp[0].lerp(vp[2], intersect(vp[0].pos, vp[2].pos, p))

		return c.clip([3]clipVertex{vp[0], q1, q2}, n+1)
	}

	return 0
}
