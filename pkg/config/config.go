// Package config describes a scene in TOML: viewport, camera, lighting,
// fog, pipeline toggles and the model to draw. A Scene is applied to a
// render.Context in one call.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/taigrr/tinyfx/pkg/math3d"
	"github.com/taigrr/tinyfx/pkg/render"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid scene")

const degree = math.Pi / 180

// Vec3 is a TOML array of three numbers.
type Vec3 [3]float64

// V returns v as a math3d vector.
func (v Vec3) V() math3d.Vec3 { return math3d.V3(v[0], v[1], v[2]) }

// Color is an opaque color written as "#rrggbb".
type Color struct {
	color.RGBA
}

// MarshalText implements encoding.TextMarshaler.
func (c Color) MarshalText() ([]byte, error) {
	return fmt.Appendf(nil, "#%02x%02x%02x", c.R, c.G, c.B), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Color) UnmarshalText(b []byte) error {
	var r, g, bl uint8
	s := string(b)
	if len(s) != 7 || s[0] != '#' {
		return fmt.Errorf("%w: color %q is not #rrggbb", ErrInvalid, s)
	}
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &bl); err != nil {
		return fmt.Errorf("%w: color %q: %v", ErrInvalid, s, err)
	}
	c.RGBA = color.RGBA{r, g, bl, 255}
	return nil
}

// FogMode is a fog equation written by name: none, linear, exp or exp2.
type FogMode struct {
	render.FogMode
}

// MarshalText implements encoding.TextMarshaler.
func (m FogMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *FogMode) UnmarshalText(b []byte) error {
	for _, mode := range []render.FogMode{render.FogNone, render.FogLinear, render.FogExp, render.FogExp2} {
		if strings.EqualFold(string(b), mode.String()) {
			m.FogMode = mode
			return nil
		}
	}
	return fmt.Errorf("%w: unknown fog mode %q", ErrInvalid, b)
}

// Scene is the root of a configuration file.
type Scene struct {
	Viewport Viewport  `toml:"viewport"`
	Camera   Camera    `toml:"camera"`
	Light    Light     `toml:"light"`
	Material *Material `toml:"material,omitempty"`
	Fog      Fog       `toml:"fog"`
	Render   Toggles   `toml:"render"`
	Model    Model     `toml:"model"`
}

// Viewport sizes the render target in pixels.
type Viewport struct {
	Width      int   `toml:"width"`
	Height     int   `toml:"height"`
	Background Color `toml:"background"`
	// Capacity is the per-primitive vertex capacity; 0 keeps the default.
	Capacity int `toml:"capacity,omitempty"`
}

// Camera places the eye. FOV is vertical, in degrees.
type Camera struct {
	Position Vec3    `toml:"position"`
	Target   Vec3    `toml:"target"`
	FOV      float64 `toml:"fov"`
	Near     float64 `toml:"near"`
	Far      float64 `toml:"far"`
}

// Light configures the single directional light.
type Light struct {
	Enabled   bool `toml:"enabled"`
	Ambient   Vec3 `toml:"ambient"`
	Diffuse   Vec3 `toml:"diffuse"`
	Direction Vec3 `toml:"direction"`
}

// Material overrides the lighting coefficients when present.
type Material struct {
	Ambient  Vec3 `toml:"ambient"`
	Diffuse  Vec3 `toml:"diffuse"`
	Emissive Vec3 `toml:"emissive"`
}

// Fog configures depth fog.
type Fog struct {
	Mode    FogMode `toml:"mode"`
	Color   Vec3    `toml:"color"`
	Near    float64 `toml:"near"`
	Far     float64 `toml:"far"`
	Density float64 `toml:"density"`
}

// Toggles switch pipeline features and debug overlays.
type Toggles struct {
	Cull        bool  `toml:"cull"`
	Blend       bool  `toml:"blend"`
	Transparent bool  `toml:"transparent"`
	Dither      bool  `toml:"dither"`
	Bounds      bool  `toml:"bounds"`
	Axes        bool  `toml:"axes"`
	LightMarker bool  `toml:"light_marker"`
	DrawColor   Color `toml:"draw_color"`
}

// Model names the mesh to draw and how to place it.
type Model struct {
	Path    string `toml:"path"`
	Texture string `toml:"texture,omitempty"`
	// Size rescales the mesh so its largest dimension matches; 0 keeps it.
	Size     float64 `toml:"size"`
	Rotation Vec3    `toml:"rotation"` // degrees about X, Y and Z
}

// Default returns the scene used when no file is given.
func Default() Scene {
	return Scene{
		Viewport: Viewport{
			Width:      320,
			Height:     240,
			Background: Color{color.RGBA{30, 30, 40, 255}},
		},
		Camera: Camera{
			Position: Vec3{0, 0, 3},
			FOV:      60,
			Near:     0.1,
			Far:      100,
		},
		Light: Light{
			Enabled:   true,
			Ambient:   Vec3{0.2, 0.2, 0.2},
			Diffuse:   Vec3{0.8, 0.8, 0.8},
			Direction: Vec3{-0.5, -1, -0.3},
		},
		Fog: Fog{
			Color:   Vec3{1, 1, 1},
			Near:    0.5,
			Far:     1,
			Density: 0.05,
		},
		Render: Toggles{
			Cull:      true,
			DrawColor: Color{color.RGBA{255, 255, 255, 255}},
		},
		Model: Model{Size: 2},
	}
}

// Parse decodes a TOML scene over the defaults. Unknown keys are rejected.
func Parse(data []byte) (Scene, error) {
	s := Default()
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Scene{}, fmt.Errorf("%w: %s", ErrInvalid, strict.String())
		}
		return Scene{}, fmt.Errorf("decode scene: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Scene{}, err
	}
	return s, nil
}

// Load reads and parses the named scene file.
func Load(src render.ByteSource, name string) (Scene, error) {
	data, err := src.ReadFile(name)
	if err != nil {
		return Scene{}, fmt.Errorf("read scene: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return Scene{}, fmt.Errorf("%s: %w", name, err)
	}
	return s, nil
}

// Encode writes s as TOML.
func (s Scene) Encode() ([]byte, error) {
	return toml.Marshal(s)
}

// Validate reports every out-of-range value, joined.
func (s Scene) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if s.Viewport.Width <= 0 || s.Viewport.Height <= 0 {
		bad("viewport %dx%d must be positive", s.Viewport.Width, s.Viewport.Height)
	}
	if s.Viewport.Capacity < 0 {
		bad("capacity %d is negative", s.Viewport.Capacity)
	}
	if s.Camera.FOV <= 0 || s.Camera.FOV >= 180 {
		bad("fov %g must be in (0, 180)", s.Camera.FOV)
	}
	if s.Camera.Near <= 0 || s.Camera.Far <= s.Camera.Near {
		bad("clip range [%g, %g] needs 0 < near < far", s.Camera.Near, s.Camera.Far)
	}
	if s.Camera.Position == s.Camera.Target {
		bad("camera position equals its target")
	}
	if s.Light.Direction == (Vec3{}) {
		bad("light direction is zero")
	}
	if s.Fog.Mode.FogMode == render.FogLinear && s.Fog.Far <= s.Fog.Near {
		bad("linear fog range [%g, %g] is empty", s.Fog.Near, s.Fog.Far)
	}
	if s.Model.Size < 0 {
		bad("model size %g is negative", s.Model.Size)
	}
	return errors.Join(errs...)
}

// Options returns the context options the scene implies.
func (s Scene) Options() []render.Option {
	if s.Viewport.Capacity > 0 {
		return []render.Option{render.WithCapacity(s.Viewport.Capacity)}
	}
	return nil
}

// NewCamera returns a camera placed as the scene describes.
func (s Scene) NewCamera() *render.Camera {
	cam := render.NewCamera()
	cam.FOV = s.Camera.FOV * degree
	cam.Near, cam.Far = s.Camera.Near, s.Camera.Far
	cam.Target = s.Camera.Target.V()
	cam.Place(s.Camera.Position.V())
	return cam
}

// Apply installs the camera, lighting, fog and toggles into ctx, which must
// have a viewport bound.
func (s Scene) Apply(ctx *render.Context) error {
	if err := s.NewCamera().Apply(ctx); err != nil {
		return err
	}
	if err := ctx.SetTargetColor(s.Render.DrawColor.RGBA); err != nil {
		return err
	}

	l := s.Light
	ctx.SetLighting(l.Enabled)
	ctx.SetAmbient(l.Ambient[0], l.Ambient[1], l.Ambient[2])
	ctx.SetDiffuseColor(l.Diffuse[0], l.Diffuse[1], l.Diffuse[2])
	ctx.SetDiffuseDirection(l.Direction[0], l.Direction[1], l.Direction[2])
	if m := s.Material; m != nil {
		ctx.SetMaterial(render.Material{
			Ambient:  m.Ambient.V(),
			Diffuse:  m.Diffuse.V(),
			Emissive: m.Emissive.V(),
		})
	} else {
		ctx.ResetMaterial()
	}

	ctx.SetFog(s.Fog.Mode.FogMode)
	ctx.SetFogParams(render.FogParams{
		Color:   s.Fog.Color.V(),
		Near:    s.Fog.Near,
		Far:     s.Fog.Far,
		Density: s.Fog.Density,
	})

	ctx.SetBackfaceCulling(s.Render.Cull)
	ctx.SetBlend(s.Render.Blend)
	ctx.SetTransparent(s.Render.Transparent)
	ctx.SetTextureDither(s.Render.Dither)
	return nil
}

// ModelTransform returns the model rotation as a matrix.
func (s Scene) ModelTransform() math3d.Mat4 {
	r := s.Model.Rotation
	return math3d.RotateX(r[0] * degree).
		Mul(math3d.RotateY(r[1] * degree)).
		Mul(math3d.RotateZ(r[2] * degree))
}
