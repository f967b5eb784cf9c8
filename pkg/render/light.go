package render

import (
	"math"

	"github.com/taigrr/tinyfx/pkg/math3d"
)

// Material scales the ambient and diffuse terms of the lighting equation
// and adds an emissive term.
type Material struct {
	Ambient  math3d.Vec3
	Diffuse  math3d.Vec3
	Emissive math3d.Vec3
}

// DefaultMaterial returns the coefficients used until SetMaterial is called.
func DefaultMaterial() Material {
	return Material{
		Ambient:  math3d.V3(0.2, 0.2, 0.2),
		Diffuse:  math3d.V3(0.8, 0.8, 0.8),
		Emissive: math3d.Vec3{},
	}
}

type lightState struct {
	enabled     bool
	ambient     math3d.Vec3
	diffuse     math3d.Vec3
	direction   math3d.Vec3 // unit length
	material    Material
	useMaterial bool
}

func defaultLight() lightState {
	return lightState{
		ambient:   math3d.V3(0.5, 0.5, 0.5),
		diffuse:   math3d.V3(0.5, 0.5, 0.5),
		direction: math3d.V3(0, 1, 0),
		material:  DefaultMaterial(),
	}
}

// SetLighting enables per-vertex lighting for primitives that carry a
// normal for every vertex.
func (c *Context) SetLighting(enabled bool) { c.light.enabled = enabled }

// Lighting reports whether lighting is enabled.
func (c *Context) Lighting() bool { return c.light.enabled }

// SetAmbient sets the ambient light color, clamped to [0, 1].
func (c *Context) SetAmbient(r, g, b float64) {
	c.light.ambient = math3d.V3(r, g, b).Clamp01()
}

// SetDiffuseColor sets the directional light's color, clamped to [0, 1].
func (c *Context) SetDiffuseColor(r, g, b float64) {
	c.light.diffuse = math3d.V3(r, g, b).Clamp01()
}

// SetDiffuseDirection sets the direction the light travels in. It is
// normalized.
func (c *Context) SetDiffuseDirection(x, y, z float64) {
	c.light.direction = math3d.V3(x, y, z).Normalize()
}

// DiffuseDirection returns the unit direction the light travels in.
func (c *Context) DiffuseDirection() math3d.Vec3 { return c.light.direction }

// SetMaterial binds material coefficients for subsequent lighting.
func (c *Context) SetMaterial(m Material) {
	c.light.material = m
	c.light.useMaterial = true
}

// Material returns the bound material coefficients and whether SetMaterial
// is in effect.
func (c *Context) Material() (Material, bool) {
	return c.light.material, c.light.useMaterial
}

// ResetMaterial returns to the plain ambient plus diffuse model.
func (c *Context) ResetMaterial() { c.light.useMaterial = false }

// computeLighting evaluates the light for an object-space normal.
func (c *Context) computeLighting(n0 math3d.Vec3) math3d.Vec3 {
	l := &c.light
	n := c.normalXform.MulVec3Dir(n0).Normalize()

	intensity := max(n.Dot(l.direction.Negate()), 0)
	diffuse := l.diffuse.Scale(intensity)

	var out math3d.Vec3
	if l.useMaterial {
		out = l.material.Ambient.Mul(l.ambient).
			Add(l.material.Diffuse.Mul(diffuse)).
			Add(l.material.Emissive)
	} else {
		out = diffuse.Add(l.ambient)
	}
	return out.Clamp01()
}

// FogMode selects the fog equation.
type FogMode int

const (
	FogNone FogMode = iota
	FogLinear
	FogExp
	FogExp2
)

func (m FogMode) String() string {
	switch m {
	case FogLinear:
		return "linear"
	case FogExp:
		return "exp"
	case FogExp2:
		return "exp2"
	}
	return "none"
}

// FogParams configures fog. Near and Far bound linear fog; Density drives
// the exponential modes.
type FogParams struct {
	Color   math3d.Vec3
	Near    float64
	Far     float64
	Density float64
}

// DefaultFogParams returns white fog from depth 0.5 to 1 with density 0.05.
func DefaultFogParams() FogParams {
	return FogParams{
		Color:   math3d.V3(1, 1, 1),
		Near:    0.5,
		Far:     1,
		Density: 0.05,
	}
}

// SetFog selects the fog equation; FogNone disables fog.
func (c *Context) SetFog(mode FogMode) { c.fog = mode }

// SetFogParams sets the fog color and range. The color is clamped to [0, 1].
func (c *Context) SetFogParams(p FogParams) {
	p.Color = p.Color.Clamp01()
	c.fogParam = p
}

// fogFactor returns how far toward the fog color a pixel at depth z moves.
func (c *Context) fogFactor(z float64) float64 {
	p := &c.fogParam
	switch c.fog {
	case FogLinear:
		if z >= p.Far {
			return 1
		}
		if p.Far <= p.Near {
			return 0
		}
		return (z - p.Near) / (p.Far - p.Near)
	case FogExp:
		return 1 - math.Exp(-p.Density*z)
	case FogExp2:
		return 1 - math.Exp(-p.Density*p.Density*z*z)
	}
	return 0
}

func (c *Context) applyFog(rgb math3d.Vec3, z float64) math3d.Vec3 {
	if c.fog == FogNone {
		return rgb
	}
	f := c.fogFactor(z)
	switch {
	case f <= 0:
		return rgb
	case f >= 1:
		return c.fogParam.Color
	}
	return rgb.Lerp(c.fogParam.Color, f)
}
