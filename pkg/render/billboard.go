package render

import (
	"cmp"

	"github.com/taigrr/tinyfx/pkg/math3d"
)

// BillboardFlags select the billboard orientation and anchor.
type BillboardFlags int

const (
	// BillboardCylindrical keeps the view's vertical axis so the quad only
	// turns about Y. Without it the quad faces the camera fully.
	BillboardCylindrical BillboardFlags = 1 << iota
	// BillboardShaded lights the quad even when lighting is disabled.
	BillboardShaded
	// BillboardAnchorBottom places pos at the bottom edge of the quad.
	BillboardAnchorBottom
	// BillboardAnchorTop places pos at the top edge of the quad.
	BillboardAnchorTop
)

var (
	billboardCenter = [4]math3d.Vec3{{X: -0.5, Y: 0.5}, {X: -0.5, Y: -0.5}, {X: 0.5, Y: 0.5}, {X: 0.5, Y: -0.5}}
	billboardBottom = [4]math3d.Vec3{{X: -0.5, Y: 1}, {X: -0.5, Y: 0}, {X: 0.5, Y: 1}, {X: 0.5, Y: 0}}
	billboardTop    = [4]math3d.Vec3{{X: -0.5, Y: 0}, {X: -0.5, Y: -1}, {X: 0.5, Y: 0}, {X: 0.5, Y: -1}}
	billboardUV     = [4]math3d.Vec2{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 0}, {X: 1, Y: 1}}
)

// Billboard draws a camera-facing quad at pos using the bound texture. The
// eye position is taken from the inverse of the view matrix, which assumes
// the view has no scale or skew.
func (c *Context) Billboard(pos math3d.Vec3, scale float64, flags BillboardFlags) error {
	eye := c.view.Inverse().Translation()
	return c.BillboardEye(pos, eye, scale, flags)
}

// BillboardEye is Billboard with an explicit world-space eye position.
// The quad is scale units tall and as wide as the aspect of the texture's
// clip rectangle. When lighting is enabled, or BillboardShaded is set, a
// single color is computed from the direction between eye and pos.
func (c *Context) BillboardEye(pos, eye math3d.Vec3, scale float64, flags BillboardFlags) error {
	if c.target == nil {
		return c.fail(ErrNoViewport)
	}
	if c.begun {
		return c.fail(ErrPrimitiveOpen)
	}

	saveModel, saveView := c.model, c.view
	saveCull, saveLight := c.cullBackfaces, c.light.enabled
	defer func() {
		c.model, c.view = saveModel, saveView
		c.dirty = true
		c.cullBackfaces, c.light.enabled = saveCull, saveLight
	}()

	aspect := 1.0
	if c.texture != nil {
		r := c.texture.Clip()
		if r.Dy() > 0 {
			aspect = float64(r.Dx()) / float64(r.Dy())
		}
	}
	scaleX, scaleY := scale*aspect, scale

	mv := c.view.Mul(math3d.Translate(pos))
	mv[0], mv[1], mv[2] = scaleX, 0, 0
	if flags&BillboardCylindrical != 0 {
		mv[4] *= scaleY
		mv[5] *= scaleY
		mv[6] *= scaleY
	} else {
		mv[4], mv[5], mv[6] = 0, scaleY, 0
	}
	mv[8], mv[9], mv[10] = 0, 0, scale

	verts := &billboardCenter
	switch {
	case flags&BillboardAnchorBottom != 0:
		verts = &billboardBottom
	case flags&BillboardAnchorTop != 0:
		verts = &billboardTop
	}

	col := math3d.V3(1, 1, 1)
	if saveLight || flags&BillboardShaded != 0 {
		n := pos.Sub(eye).Normalize()
		intensity := max(n.Dot(c.light.direction), 0)
		col = c.light.diffuse.Scale(intensity).Add(c.light.ambient).Clamp01()
	}

	// Install the billboard transform directly; Begin leaves it alone while
	// dirty is clear.
	c.modelView = mv
	c.xform = c.projection.Mul(mv)
	c.dirty = false
	c.cullBackfaces = true
	c.light.enabled = false

	if err := c.Begin(TriangleStrip); err != nil {
		return err
	}
	// A rejected attribute still reaches the sink; the quad is closed
	// either way and the first rejection is returned.
	var err error
	for i := range verts {
		err = cmp.Or(err,
			c.VertexV(verts[i]),
			c.Texcoord(billboardUV[i].X, billboardUV[i].Y),
			c.ColorV(col))
	}
	_, endErr := c.End()
	return cmp.Or(err, endErr)
}
