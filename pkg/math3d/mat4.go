package math3d

import "math"

// Mat4 is a 4x4 matrix in column-major order: element (row, col) lives at
// index row+4*col and the translation occupies indices 12, 13 and 14.
type Mat4 [16]float64

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{0: 1, 5: 1, 10: 1, 15: 1}
}

// Translate returns a matrix that moves points by v.
func Translate(v Vec3) Mat4 {
	m := Identity()
	m[12], m[13], m[14] = v.X, v.Y, v.Z
	return m
}

// Scale returns a matrix that scales each axis by the matching component of v.
func Scale(v Vec3) Mat4 {
	m := Identity()
	m[0], m[5], m[10] = v.X, v.Y, v.Z
	return m
}

// RotateX rotates counter-clockwise by angle radians about the X axis when
// looking down it toward the origin. RotateY and RotateZ do the same for
// their axes.
func RotateX(angle float64) Mat4 {
	s, c := math.Sincos(angle)
	m := Identity()
	m[5], m[6], m[9], m[10] = c, s, -s, c
	return m
}

// RotateY rotates by angle radians about the Y axis.
func RotateY(angle float64) Mat4 {
	s, c := math.Sincos(angle)
	m := Identity()
	m[0], m[2], m[8], m[10] = c, -s, s, c
	return m
}

// RotateZ rotates by angle radians about the Z axis.
func RotateZ(angle float64) Mat4 {
	s, c := math.Sincos(angle)
	m := Identity()
	m[0], m[1], m[4], m[5] = c, s, -s, c
	return m
}

// Rotate rotates by angle radians about an arbitrary axis.
func Rotate(axis Vec3, angle float64) Mat4 {
	a := axis.Normalize()
	x, y, z := a.X, a.Y, a.Z
	s, c := math.Sincos(angle)
	t := 1 - c

	m := Identity()
	m[0], m[1], m[2] = t*x*x+c, t*x*y+s*z, t*x*z-s*y
	m[4], m[5], m[6] = t*x*y-s*z, t*y*y+c, t*y*z+s*x
	m[8], m[9], m[10] = t*x*z+s*y, t*y*z-s*x, t*z*z+c
	return m
}

// LookAt returns a right-handed view matrix for a camera at eye facing
// center. The camera looks down its own -Z axis.
func LookAt(eye, center, up Vec3) Mat4 {
	f := center.Sub(eye).Normalize()
	r := f.Cross(up).Normalize()
	u := r.Cross(f)

	m := Identity()
	m[0], m[4], m[8] = r.X, r.Y, r.Z
	m[1], m[5], m[9] = u.X, u.Y, u.Z
	m[2], m[6], m[10] = -f.X, -f.Y, -f.Z
	m[12], m[13], m[14] = -r.Dot(eye), -u.Dot(eye), f.Dot(eye)
	return m
}

// PerspectiveZO returns a perspective projection with vertical field of view
// fovy (radians). View depths -near and -far map to clip z/w of 0 and 1.
func PerspectiveZO(fovy, aspect, near, far float64) Mat4 {
	f := 1 / math.Tan(fovy/2)
	nf := 1 / (near - far)

	var m Mat4
	m[0] = f / aspect
	m[5] = f
	m[10] = far * nf
	m[11] = -1
	m[14] = far * near * nf
	return m
}

// Mul returns a*b, which applies b first.
func (a Mat4) Mul(b Mat4) Mat4 {
	var m Mat4
	for col := 0; col < 16; col += 4 {
		for row := range 4 {
			m[col+row] = a[row]*b[col] + a[row+4]*b[col+1] + a[row+8]*b[col+2] + a[row+12]*b[col+3]
		}
	}
	return m
}

// MulVec4 returns m*v.
func (m Mat4) MulVec4(v Vec4) Vec4 {
	var out [4]float64
	for row := range out {
		out[row] = m[row]*v.X + m[row+4]*v.Y + m[row+8]*v.Z + m[row+12]*v.W
	}
	return Vec4{out[0], out[1], out[2], out[3]}
}

// MulVec3 transforms v as a point. The w row is ignored.
func (m Mat4) MulVec3(v Vec3) Vec3 {
	p := m.MulVec4(V4FromV3(v, 1))
	return Vec3{p.X, p.Y, p.Z}
}

// MulVec3Dir transforms v as a direction, without translation.
func (m Mat4) MulVec3Dir(v Vec3) Vec3 {
	d := m.MulVec4(V4FromV3(v, 0))
	return Vec3{d.X, d.Y, d.Z}
}

// Transpose swaps rows and columns.
func (m Mat4) Transpose() Mat4 {
	var t Mat4
	for i := range t {
		t[i] = m[(i%4)*4+i/4]
	}
	return t
}

// minors holds the 2x2 determinants of every row pair, taken once over the
// left two columns and once over the right two. Both the determinant and
// the adjugate are built from them.
type minors struct {
	left, right [6]float64
}

func (m Mat4) minors() minors {
	var n minors
	pairs := [6][2]int{{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3}}
	for i, p := range pairs {
		r, s := p[0], p[1]
		n.left[i] = m[r]*m[4+s] - m[s]*m[4+r]
		n.right[i] = m[8+r]*m[12+s] - m[8+s]*m[12+r]
	}
	return n
}

func (n minors) det() float64 {
	l, r := n.left, n.right
	return l[0]*r[5] - l[1]*r[4] + l[2]*r[3] + l[3]*r[2] - l[4]*r[1] + l[5]*r[0]
}

// Determinant returns det(m); zero means m has no inverse.
func (m Mat4) Determinant() float64 {
	return m.minors().det()
}

// Inverse returns the inverse of m, or the identity when m is singular.
func (m Mat4) Inverse() Mat4 {
	n := m.minors()
	det := n.det()
	if det == 0 {
		return Identity()
	}
	l, r := n.left, n.right

	inv := Mat4{
		m[5]*r[5] - m[6]*r[4] + m[7]*r[3],
		m[2]*r[4] - m[1]*r[5] - m[3]*r[3],
		m[13]*l[5] - m[14]*l[4] + m[15]*l[3],
		m[10]*l[4] - m[9]*l[5] - m[11]*l[3],

		m[6]*r[2] - m[4]*r[5] - m[7]*r[1],
		m[0]*r[5] - m[2]*r[2] + m[3]*r[1],
		m[14]*l[2] - m[12]*l[5] - m[15]*l[1],
		m[8]*l[5] - m[10]*l[2] + m[11]*l[1],

		m[4]*r[4] - m[5]*r[2] + m[7]*r[0],
		m[1]*r[2] - m[0]*r[4] - m[3]*r[0],
		m[12]*l[4] - m[13]*l[2] + m[15]*l[0],
		m[9]*l[2] - m[8]*l[4] - m[11]*l[0],

		m[5]*r[1] - m[4]*r[3] - m[6]*r[0],
		m[0]*r[3] - m[1]*r[1] + m[2]*r[0],
		m[13]*l[1] - m[12]*l[3] - m[14]*l[0],
		m[8]*l[3] - m[9]*l[1] + m[10]*l[0],
	}
	for i := range inv {
		inv[i] /= det
	}
	return inv
}

// InverseTranspose returns the transpose of the inverse, the matrix that
// carries normals through a model transform with non-uniform scale.
func (m Mat4) InverseTranspose() Mat4 {
	return m.Inverse().Transpose()
}

// ApproxEqual reports whether every element of a and b differs by at most eps.
func (a Mat4) ApproxEqual(b Mat4, eps float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > eps {
			return false
		}
	}
	return true
}

// Get returns the element at (row, col).
func (m Mat4) Get(row, col int) float64 {
	return m[row+col*4]
}

// Translation returns the translation column.
func (m Mat4) Translation() Vec3 {
	return Vec3{m[12], m[13], m[14]}
}
