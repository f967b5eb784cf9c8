package render

import (
	"math"

	"github.com/taigrr/tinyfx/pkg/bitmap"
	"github.com/taigrr/tinyfx/pkg/math3d"
)

// SetModel replaces the model matrix. It is refused while a primitive is open.
func (c *Context) SetModel(m math3d.Mat4) error {
	if c.begun {
		return c.fail(ErrPrimitiveOpen)
	}
	c.model = m
	c.dirty = true
	return nil
}

// SetView replaces the view matrix. It is refused while a primitive is open.
func (c *Context) SetView(m math3d.Mat4) error {
	if c.begun {
		return c.fail(ErrPrimitiveOpen)
	}
	c.view = m
	c.dirty = true
	return nil
}

// SetProjection replaces the projection matrix. It is refused while a
// primitive is open.
func (c *Context) SetProjection(m math3d.Mat4) error {
	if c.begun {
		return c.fail(ErrPrimitiveOpen)
	}
	c.projection = m
	c.dirty = true
	return nil
}

// Model returns a copy of the model matrix.
func (c *Context) Model() math3d.Mat4 { return c.model }

// View returns a copy of the view matrix.
func (c *Context) View() math3d.Mat4 { return c.view }

// Projection returns a copy of the projection matrix.
func (c *Context) Projection() math3d.Mat4 { return c.projection }

// Transform returns projection·view·model, recomputing it if stale.
func (c *Context) Transform() math3d.Mat4 {
	c.computeTransforms()
	return c.xform
}

// computeTransforms refreshes the derived matrices when dirty.
func (c *Context) computeTransforms() {
	if !c.dirty {
		return
	}
	c.modelView = c.view.Mul(c.model)
	c.xform = c.projection.Mul(c.modelView)
	c.normalXform = c.model.InverseTranspose()
	c.dirty = false
}

func (c *Context) perspective(fovyDeg, near, far float64) math3d.Mat4 {
	aspect := 1.0
	if c.height > 0 {
		aspect = float64(c.width) / float64(c.height)
	}
	return math3d.PerspectiveZO(fovyDeg*math.Pi/180, aspect, near, far)
}

// MakeProjection replaces the projection with a perspective matrix for the
// bound viewport's aspect ratio. fovyDeg is the vertical field of view in
// degrees.
func (c *Context) MakeProjection(fovyDeg, near, far float64) error {
	if c.target == nil {
		return c.fail(ErrNoViewport)
	}
	return c.SetProjection(c.perspective(fovyDeg, near, far))
}

// ClearDepth resets every depth buffer entry to the far value 1.
func (c *Context) ClearDepth() {
	for i := range c.zbuf {
		c.zbuf[i] = 1
	}
}

// Depth returns the depth buffer value at (x, y), or 1 outside the viewport.
func (c *Context) Depth(x, y int) float64 {
	if x < 0 || x >= c.width || y < 0 || y >= c.height || c.zbuf == nil {
		return 1
	}
	return c.zbuf[y*c.width+x]
}

// DrawDepth writes a grayscale view of the depth buffer into dest, white
// for the nearest depth and black for the far plane.
func (c *Context) DrawDepth(dest Target) error {
	if c.target == nil {
		return c.fail(ErrNoViewport)
	}
	w := min(c.width, dest.Width())
	h := min(c.height, dest.Height())
	for y := range h {
		for x := range w {
			v := 1 - c.zbuf[y*c.width+x]
			dest.Set(x, y, bitmap.FromFloat(v, v, v))
		}
	}
	return nil
}
