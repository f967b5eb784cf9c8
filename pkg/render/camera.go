package render

import (
	"math"

	"github.com/taigrr/tinyfx/pkg/math3d"
)

// maxPitch keeps the eye short of the poles, where the up vector and the
// view direction would be parallel.
const maxPitch = math.Pi/2 - 0.01

// Camera orbits a target point. Yaw turns around the world Y axis and Pitch
// raises the eye above the target's horizon; with both zero the eye sits on
// +Z looking toward -Z.
type Camera struct {
	Target     math3d.Vec3
	Distance   float64
	Yaw, Pitch float64 // radians

	FOV  float64 // vertical, radians
	Near float64
	Far  float64
}

// NewCamera returns a camera one unit in front of the origin with a 60°
// field of view.
func NewCamera() *Camera {
	return &Camera{Distance: 1, FOV: math.Pi / 3, Near: 0.1, Far: 100}
}

// Position returns the eye point.
func (c *Camera) Position() math3d.Vec3 {
	sy, cy := math.Sincos(c.Yaw)
	sp, cp := math.Sincos(c.Pitch)
	return c.Target.Add(math3d.V3(cp*sy, sp, cp*cy).Scale(c.Distance))
}

// Place moves the eye to eye while keeping the target. An eye on the
// target only resets the distance.
func (c *Camera) Place(eye math3d.Vec3) {
	off := eye.Sub(c.Target)
	c.Distance = off.Len()
	if c.Distance == 0 {
		return
	}
	c.Yaw = math.Atan2(off.X, off.Z)
	c.Pitch = clampPitch(math.Asin(off.Y / c.Distance))
}

// Orbit swings the eye around the target.
func (c *Camera) Orbit(dyaw, dpitch float64) {
	c.Yaw += dyaw
	c.Pitch = clampPitch(c.Pitch + dpitch)
}

// Zoom changes the distance to the target, staying within [lo, hi].
func (c *Camera) Zoom(delta, lo, hi float64) {
	c.Distance = min(max(c.Distance+delta, lo), hi)
}

func clampPitch(p float64) float64 {
	return min(max(p, -maxPitch), maxPitch)
}

// Forward returns the unit direction from the eye to the target.
func (c *Camera) Forward() math3d.Vec3 {
	return c.Target.Sub(c.Position()).Normalize()
}

// ViewMatrix returns the world-to-camera matrix.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	return math3d.LookAt(c.Position(), c.Target, math3d.Up())
}

// ProjectionMatrix returns the zero-to-one depth projection for aspect.
func (c *Camera) ProjectionMatrix(aspect float64) math3d.Mat4 {
	return math3d.PerspectiveZO(c.FOV, aspect, c.Near, c.Far)
}

// Apply installs the camera's view and projection in ctx, using the bound
// viewport's aspect ratio.
func (c *Camera) Apply(ctx *Context) error {
	if ctx.target == nil {
		return ctx.fail(ErrNoViewport)
	}
	if err := ctx.SetView(c.ViewMatrix()); err != nil {
		return err
	}
	return ctx.SetProjection(c.ProjectionMatrix(float64(ctx.width) / float64(ctx.height)))
}

// WorldToScreen projects a world point to pixel coordinates for a viewport
// of the given size. visible is false for points outside the frustum.
func (c *Camera) WorldToScreen(p math3d.Vec3, width, height int) (x, y, depth float64, visible bool) {
	xf := c.ProjectionMatrix(float64(width) / float64(height)).Mul(c.ViewMatrix())
	q := xf.MulVec4(math3d.V4FromV3(p, 1))
	for _, plane := range clipPlanes {
		if !insidePlane(q, plane) {
			return 0, 0, 0, false
		}
	}
	ndc := q.PerspectiveDivide()
	return (ndc.X + 1) * 0.5 * float64(width), (1 - ndc.Y) * 0.5 * float64(height), ndc.Z, true
}
