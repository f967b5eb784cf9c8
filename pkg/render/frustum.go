package render

import "github.com/taigrr/tinyfx/pkg/math3d"

// Frustum holds the clip planes carried back through a transform, in the
// order near, far, left, right, bottom, top. Each plane is (a, b, c, d) with
// a·x + b·y + c·z + d >= 0 on the visible side.
type Frustum [len(clipPlanes)]math3d.Vec4

// NewFrustum returns the frustum of m in the space m maps from. A clip
// plane P tested against m·p is the plane mᵀ·P tested against p.
func NewFrustum(m math3d.Mat4) Frustum {
	var f Frustum
	mt := m.Transpose()
	for i, p := range clipPlanes {
		f[i] = mt.MulVec4(p)
	}
	return f
}

// Contains reports whether p is on the visible side of every plane.
func (f Frustum) Contains(p math3d.Vec3) bool {
	q := math3d.V4FromV3(p, 1)
	for _, plane := range f {
		if q.Dot(plane) < 0 {
			return false
		}
	}
	return true
}

// Overlaps reports whether the box spanned by lo and hi may reach inside.
// Only the corner furthest along each plane's normal is tested, so boxes
// near a frustum edge can pass without being visible.
func (f Frustum) Overlaps(lo, hi math3d.Vec3) bool {
	for _, plane := range f {
		i := 0
		if plane.X >= 0 {
			i |= 1
		}
		if plane.Y >= 0 {
			i |= 2
		}
		if plane.Z >= 0 {
			i |= 4
		}
		if math3d.V4FromV3(boxCorner(lo, hi, i), 1).Dot(plane) < 0 {
			return false
		}
	}
	return true
}

// boxCorner returns corner i of the box spanned by lo and hi. Bits 0, 1
// and 2 of i pick the high end of X, Y and Z.
func boxCorner(lo, hi math3d.Vec3, i int) math3d.Vec3 {
	c := lo
	if i&1 != 0 {
		c.X = hi.X
	}
	if i&2 != 0 {
		c.Y = hi.Y
	}
	if i&4 != 0 {
		c.Z = hi.Z
	}
	return c
}

// Frustum returns the view frustum in object space for the current model,
// view and projection matrices.
func (c *Context) Frustum() Frustum {
	c.computeTransforms()
	return NewFrustum(c.xform)
}

// Visible reports whether the object-space box spanned by lo and hi may
// produce pixels under the current transforms.
func (c *Context) Visible(lo, hi math3d.Vec3) bool {
	return c.Frustum().Overlaps(lo, hi)
}
