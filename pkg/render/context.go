// Package render implements the tinyfx immediate-mode software pipeline:
// vertices are transformed to clip space as they are submitted, clipped
// against the view frustum in homogeneous space and rasterized with a
// per-pixel depth test into a caller-owned Target.
package render

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"

	"github.com/taigrr/tinyfx/pkg/bitmap"
	"github.com/taigrr/tinyfx/pkg/math3d"
)

// DefaultCapacity is the number of entries in each vertex attribute array.
const DefaultCapacity = 512

// Target is a pixel surface the pipeline draws into or samples from.
// *bitmap.Bitmap implements it.
type Target interface {
	Width() int
	Height() int
	Get(x, y int) color.RGBA
	Set(x, y int, c color.RGBA)
	PutPixel(x, y int)
	Clip() image.Rectangle
	Color() color.RGBA
	SetColor(c color.RGBA)
}

var _ Target = (*bitmap.Bitmap)(nil)

// Topology selects how End groups submitted vertices into triangles.
type Topology int

const (
	Triangles     Topology = iota // (0,1,2), (3,4,5), ...
	TriangleStrip                 // each vertex after the second with the previous two
	TriangleFan                   // each vertex after the second with vertex 0 and its predecessor
)

func (t Topology) String() string {
	switch t {
	case Triangles:
		return "triangles"
	case TriangleStrip:
		return "strip"
	case TriangleFan:
		return "fan"
	}
	return fmt.Sprintf("Topology(%d)", int(t))
}

// Context holds the complete pipeline state. A Context is not safe for
// concurrent use; independent contexts may be used from different
// goroutines.
type Context struct {
	log    *slog.Logger
	sink   ErrorSink
	source ByteSource

	target Target
	pick   Target
	width  int
	height int
	zbuf   []float64

	model      math3d.Mat4
	view       math3d.Mat4
	projection math3d.Mat4

	// Derived from the three matrices above while dirty is false.
	modelView   math3d.Mat4
	xform       math3d.Mat4
	normalXform math3d.Mat4
	dirty       bool

	arrays   attribArrays
	topology Topology
	begun    bool
	batch    batch

	texture       Target
	textureDither bool
	transparent   bool
	blend         bool
	cullBackfaces bool

	light    lightState
	fog      FogMode
	fogParam FogParams
}

// Option configures a Context.
type Option func(*Context)

// WithErrorSink routes reported errors to sink.
func WithErrorSink(sink ErrorSink) Option {
	return func(c *Context) {
		if sink != nil {
			c.sink = sink
		}
	}
}

// WithByteSource sets the source used by LoadTexture.
func WithByteSource(src ByteSource) Option {
	return func(c *Context) {
		if src != nil {
			c.source = src
		}
	}
}

// WithCapacity sets the per-primitive capacity of each attribute array.
func WithCapacity(n int) Option {
	return func(c *Context) {
		if n > 0 {
			c.arrays = newAttribArrays(n)
		}
	}
}

// WithLogger sets the logger used for debug output. The default error sink
// logs through it as well.
func WithLogger(l *slog.Logger) Option {
	return func(c *Context) {
		if l != nil {
			c.log = l
		}
	}
}

// New creates a context with no viewport bound.
func New(opts ...Option) *Context {
	c := &Context{
		log:    slog.Default(),
		source: OSFiles{},
		arrays: newAttribArrays(DefaultCapacity),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.sink == nil {
		c.sink = &SlogSink{Logger: c.log}
	}
	c.resetState()
	return c
}

// resetState restores every toggle and parameter to its default.
func (c *Context) resetState() {
	c.model = math3d.Identity()
	c.view = math3d.Identity()
	c.projection = math3d.Identity()
	c.dirty = true

	c.arrays.reset()
	c.begun = false
	c.batch = batch{}

	c.texture = nil
	c.pick = nil
	c.textureDither = false
	c.transparent = false
	c.blend = false
	c.cullBackfaces = true

	c.light = defaultLight()
	c.fog = FogNone
	c.fogParam = DefaultFogParams()
}

// fail reports err to the sink and returns it.
func (c *Context) fail(err error) error {
	c.sink.Report(err)
	return err
}

// Source returns the byte source resources are read from.
func (c *Context) Source() ByteSource { return c.source }

// LoadTexture reads and decodes an image through the context's byte source.
func (c *Context) LoadTexture(name string) (*bitmap.Bitmap, error) {
	data, err := c.source.ReadFile(name)
	if err != nil {
		return nil, c.fail(fmt.Errorf("render: read texture %q: %w", name, err))
	}
	bm, err := bitmap.DecodeBytes(data)
	if err != nil {
		return nil, c.fail(fmt.Errorf("render: texture %q: %w", name, err))
	}
	return bm, nil
}

// Capacity returns the number of vertices a single primitive can hold.
func (c *Context) Capacity() int { return c.arrays.capacity }

// Target returns the bound viewport target, or nil.
func (c *Context) Target() Target { return c.target }

// SetViewport binds target as the render target. It allocates a depth buffer
// of the target's size cleared to 1, resets the model and view matrices and
// installs a 60° perspective projection.
func (c *Context) SetViewport(target Target) error {
	if target == nil {
		return c.fail(fmt.Errorf("%w: nil target", ErrNoViewport))
	}
	if c.begun {
		return c.fail(ErrPrimitiveOpen)
	}
	c.target = target
	c.width = target.Width()
	c.height = target.Height()
	c.zbuf = make([]float64, c.width*c.height)
	c.ClearDepth()

	c.model = math3d.Identity()
	c.view = math3d.Identity()
	c.projection = c.perspective(60, 0.1, 10)
	c.dirty = true

	c.log.Debug("viewport bound", "width", c.width, "height", c.height)
	return nil
}

// Cleanup releases the depth buffer, unbinds every surface and resets all
// state to its defaults.
func (c *Context) Cleanup() {
	c.zbuf = nil
	c.target = nil
	c.width, c.height = 0, 0
	c.resetState()
}
