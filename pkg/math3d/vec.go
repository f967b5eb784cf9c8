// Package math3d provides the float64 vectors and column-major matrices the
// tinyfx pipeline transforms, clips and interpolates with. All types are
// values; every operation returns a new value.
package math3d

import "math"

// Vec2 is a 2D vector, usually a texture coordinate.
type Vec2 struct{ X, Y float64 }

// Vec3 is a 3D point, direction or RGB triple.
type Vec3 struct{ X, Y, Z float64 }

// Vec4 is a homogeneous point in clip space.
type Vec4 struct{ X, Y, Z, W float64 }

// V2 returns the vector (x, y).
func V2(x, y float64) Vec2 { return Vec2{x, y} }

// V3 returns the vector (x, y, z).
func V3(x, y, z float64) Vec3 { return Vec3{x, y, z} }

// V4 returns the vector (x, y, z, w).
func V4(x, y, z, w float64) Vec4 { return Vec4{x, y, z, w} }

// V4FromV3 extends v with the given w.
func V4FromV3(v Vec3, w float64) Vec4 { return Vec4{v.X, v.Y, v.Z, w} }

// Zero3 returns (0, 0, 0).
func Zero3() Vec3 { return Vec3{} }

// Up returns +Y, the world up direction.
func Up() Vec3 { return Vec3{Y: 1} }

// Add returns a+b.
func (a Vec2) Add(b Vec2) Vec2 { return Vec2{a.X + b.X, a.Y + b.Y} }

// Sub returns a-b.
func (a Vec2) Sub(b Vec2) Vec2 { return Vec2{a.X - b.X, a.Y - b.Y} }

// Scale multiplies both components by s.
func (a Vec2) Scale(s float64) Vec2 { return Vec2{a.X * s, a.Y * s} }

// Lerp interpolates from a (t=0) to b (t=1).
func (a Vec2) Lerp(b Vec2, t float64) Vec2 { return a.Add(b.Sub(a).Scale(t)) }

// Cross returns the signed area of the parallelogram spanned by a and b,
// positive when b is counter-clockwise from a.
func (a Vec2) Cross(b Vec2) float64 { return a.X*b.Y - a.Y*b.X }

// Add returns a+b.
func (a Vec3) Add(b Vec3) Vec3 { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }

// Sub returns a-b.
func (a Vec3) Sub(b Vec3) Vec3 { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }

// Scale multiplies every component by s.
func (a Vec3) Scale(s float64) Vec3 { return Vec3{a.X * s, a.Y * s, a.Z * s} }

// Negate returns -a.
func (a Vec3) Negate() Vec3 { return Vec3{-a.X, -a.Y, -a.Z} }

// Dot returns the dot product of a and b.
func (a Vec3) Dot(b Vec3) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }

// LenSq returns the squared length of a.
func (a Vec3) LenSq() float64 { return a.Dot(a) }

// Len returns the length of a.
func (a Vec3) Len() float64 { return math.Sqrt(a.LenSq()) }

// Mul multiplies component-wise, as when modulating one color by another.
func (a Vec3) Mul(b Vec3) Vec3 { return Vec3{a.X * b.X, a.Y * b.Y, a.Z * b.Z} }

// Cross returns the right-handed cross product a × b.
func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{a.Y*b.Z - a.Z*b.Y, a.Z*b.X - a.X*b.Z, a.X*b.Y - a.Y*b.X}
}

// Normalize returns a unit vector along a, or the zero vector for zero input.
func (a Vec3) Normalize() Vec3 {
	l := a.Len()
	if l == 0 {
		return Vec3{}
	}
	return Vec3{a.X / l, a.Y / l, a.Z / l}
}

// Lerp interpolates from a (t=0) to b (t=1).
func (a Vec3) Lerp(b Vec3, t float64) Vec3 { return a.Add(b.Sub(a).Scale(t)) }

// Min and Max work per component; together they grow bounding boxes.
func (a Vec3) Min(b Vec3) Vec3 {
	return Vec3{math.Min(a.X, b.X), math.Min(a.Y, b.Y), math.Min(a.Z, b.Z)}
}

// Max is the per-component maximum.
func (a Vec3) Max(b Vec3) Vec3 {
	return Vec3{math.Max(a.X, b.X), math.Max(a.Y, b.Y), math.Max(a.Z, b.Z)}
}

// Clamp01 limits each component to [0, 1].
func (a Vec3) Clamp01() Vec3 { return Vec3{clamp01(a.X), clamp01(a.Y), clamp01(a.Z)} }

func clamp01(x float64) float64 { return math.Max(0, math.Min(1, x)) }

// Scale multiplies all four components by s, leaving the projected point
// unchanged.
func (a Vec4) Scale(s float64) Vec4 { return Vec4{a.X * s, a.Y * s, a.Z * s, a.W * s} }

// Dot returns the four-component dot product, the signed distance test used
// against clip planes.
func (a Vec4) Dot(b Vec4) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z + a.W*b.W }

// Lerp interpolates all four components, which is how clipping places new
// vertices on a plane in homogeneous space.
func (a Vec4) Lerp(b Vec4, t float64) Vec4 {
	return Vec4{
		a.X + (b.X-a.X)*t,
		a.Y + (b.Y-a.Y)*t,
		a.Z + (b.Z-a.Z)*t,
		a.W + (b.W-a.W)*t,
	}
}

// PerspectiveDivide maps a clip-space point to normalized device
// coordinates. A zero w leaves the components undivided.
func (a Vec4) PerspectiveDivide() Vec3 {
	if a.W == 0 {
		return Vec3{a.X, a.Y, a.Z}
	}
	return Vec3{a.X / a.W, a.Y / a.W, a.Z / a.W}
}
