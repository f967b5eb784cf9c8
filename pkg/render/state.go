package render

import (
	"fmt"
	"image/color"
)

// SetTexture binds the texture sampled by primitives with texcoords. The
// texture's clip rectangle selects the region sampled and its draw color is
// the transparency key. nil unbinds it.
func (c *Context) SetTexture(tex Target) { c.texture = tex }

// Texture returns the bound texture, or nil.
func (c *Context) Texture() Target { return c.texture }

// SetTransparent enables color-key transparency for textured pixels.
func (c *Context) SetTransparent(enabled bool) { c.transparent = enabled }

// SetTextureDither enables ordered sub-texel jitter, which approximates
// bilinear filtering at no per-pixel cost.
func (c *Context) SetTextureDither(enabled bool) { c.textureDither = enabled }

// SetBackfaceCulling toggles rejection of triangles facing away from the
// viewer. Culling is on by default.
func (c *Context) SetBackfaceCulling(enabled bool) { c.cullBackfaces = enabled }

// BackfaceCulling reports whether back faces are culled.
func (c *Context) BackfaceCulling() bool { return c.cullBackfaces }

// SetBlend enables averaging each shaded pixel with the destination.
func (c *Context) SetBlend(enabled bool) { c.blend = enabled }

// SetPick binds a surface that is stamped with its own draw color wherever
// a triangle writes the target. It must be at least as large as the
// viewport. nil unbinds it.
func (c *Context) SetPick(pick Target) error {
	if pick == nil {
		c.pick = nil
		return nil
	}
	if c.target == nil {
		return c.fail(ErrNoViewport)
	}
	if pick.Width() < c.width || pick.Height() < c.height {
		return c.fail(fmt.Errorf("%w: %dx%d < %dx%d", ErrPickTooSmall,
			pick.Width(), pick.Height(), c.width, c.height))
	}
	c.pick = pick
	return nil
}

// SetTargetColor sets the target's draw color, used by lines, points and
// untextured triangles.
func (c *Context) SetTargetColor(col color.RGBA) error {
	if c.target == nil {
		return c.fail(ErrNoViewport)
	}
	c.target.SetColor(col)
	return nil
}

// TargetColor returns the target's draw color.
func (c *Context) TargetColor() color.RGBA {
	if c.target == nil {
		return color.RGBA{}
	}
	return c.target.Color()
}
