package render

import "github.com/taigrr/tinyfx/pkg/math3d"

// attribArrays are the fixed-capacity per-primitive vertex arrays. Positions
// are stored already transformed to clip space.
type attribArrays struct {
	capacity  int
	positions []math3d.Vec4
	texcoords []math3d.Vec2
	normals   []math3d.Vec3
	colors    []math3d.Vec3
	overflow  bool // an append was rejected during the current primitive
}

func newAttribArrays(capacity int) attribArrays {
	return attribArrays{
		capacity:  capacity,
		positions: make([]math3d.Vec4, 0, capacity),
		texcoords: make([]math3d.Vec2, 0, capacity),
		normals:   make([]math3d.Vec3, 0, capacity),
		colors:    make([]math3d.Vec3, 0, capacity),
	}
}

func (a *attribArrays) reset() {
	a.positions = a.positions[:0]
	a.texcoords = a.texcoords[:0]
	a.normals = a.normals[:0]
	a.colors = a.colors[:0]
	a.overflow = false
}

// attribs records which optional arrays match the vertex count of a batch.
type attribs uint8

const (
	attrTexcoord attribs = 1 << iota
	attrNormal
	attrColor
)

// batch is the shading variant of one primitive, fixed at End.
type batch struct {
	attrs    attribs
	lit      bool // lighting enabled and every vertex has a normal
	colored  bool // interpolate per-vertex colors
	textured bool // a texture is bound and every vertex has a texcoord
}

func (c *Context) newBatch() batch {
	var b batch
	n := len(c.arrays.positions)
	if len(c.arrays.texcoords) == n {
		b.attrs |= attrTexcoord
	}
	if len(c.arrays.normals) == n {
		b.attrs |= attrNormal
	}
	if len(c.arrays.colors) == n {
		b.attrs |= attrColor
	}
	b.lit = c.light.enabled && b.attrs&attrNormal != 0
	b.colored = b.lit || b.attrs&attrColor != 0
	b.textured = c.texture != nil && b.attrs&attrTexcoord != 0
	return b
}

// Begin opens a primitive of the given topology. Stale transforms are
// recomputed and every attribute array is emptied.
func (c *Context) Begin(t Topology) error {
	if c.target == nil {
		return c.fail(ErrNoViewport)
	}
	if c.begun {
		return c.fail(ErrPrimitiveOpen)
	}
	c.computeTransforms()
	c.topology = t
	c.arrays.reset()
	c.begun = true
	return nil
}

// reserve checks that a primitive is open and that there is room for one
// more entry in an array currently holding n.
func (c *Context) reserve(attribute string, n int) error {
	if !c.begun {
		return c.fail(ErrNotBegun)
	}
	if n >= c.arrays.capacity {
		err := &CapacityError{Attribute: attribute, Capacity: c.arrays.capacity}
		// Only the first rejection in a primitive reaches the sink.
		if !c.arrays.overflow {
			c.arrays.overflow = true
			c.sink.Report(err)
		}
		return err
	}
	return nil
}

// Vertex appends the position (x, y, z, 1), transformed to clip space.
func (c *Context) Vertex(x, y, z float64) error {
	if err := c.reserve("vertex", len(c.arrays.positions)); err != nil {
		return err
	}
	c.arrays.positions = append(c.arrays.positions, c.xform.MulVec4(math3d.V4(x, y, z, 1)))
	return nil
}

// VertexV is Vertex for a vector.
func (c *Context) VertexV(v math3d.Vec3) error { return c.Vertex(v.X, v.Y, v.Z) }

// Texcoord appends a texture coordinate.
func (c *Context) Texcoord(u, v float64) error {
	if err := c.reserve("texcoord", len(c.arrays.texcoords)); err != nil {
		return err
	}
	c.arrays.texcoords = append(c.arrays.texcoords, math3d.V2(u, v))
	return nil
}

// Normal appends an object-space normal.
func (c *Context) Normal(x, y, z float64) error {
	if err := c.reserve("normal", len(c.arrays.normals)); err != nil {
		return err
	}
	c.arrays.normals = append(c.arrays.normals, math3d.V3(x, y, z))
	return nil
}

// NormalV is Normal for a vector.
func (c *Context) NormalV(n math3d.Vec3) error { return c.Normal(n.X, n.Y, n.Z) }

// Color appends a vertex color with channels nominally in [0, 1].
func (c *Context) Color(r, g, b float64) error {
	if err := c.reserve("color", len(c.arrays.colors)); err != nil {
		return err
	}
	c.arrays.colors = append(c.arrays.colors, math3d.V3(r, g, b))
	return nil
}

// ColorV is Color for a vector.
func (c *Context) ColorV(v math3d.Vec3) error { return c.Color(v.X, v.Y, v.Z) }

// End closes the primitive, decomposes it into triangles and draws them in
// submission order. It returns the number of triangles rasterized after
// clipping and culling. A primitive that overflowed its arrays is drawn with
// the geometry accepted before the overflow.
func (c *Context) End() (int, error) {
	if !c.begun {
		return 0, c.fail(ErrNotBegun)
	}
	defer func() { c.begun = false }()

	c.batch = c.newBatch()
	n := len(c.arrays.positions)
	tris := 0
	switch c.topology {
	case Triangles:
		for i := 2; i < n; i += 3 {
			tris += c.triangle(i-2, i-1, i)
		}
	case TriangleStrip:
		for i := 2; i < n; i++ {
			if i&1 != 0 {
				tris += c.triangle(i-2, i, i-1)
			} else {
				tris += c.triangle(i-2, i-1, i)
			}
		}
	case TriangleFan:
		for i := 2; i < n; i++ {
			tris += c.triangle(i-1, i, 0)
		}
	}
	return tris, nil
}

// triangle assembles the clip vertices for indices i0, i1, i2, lights them
// and clips the result.
func (c *Context) triangle(i0, i1, i2 int) int {
	idx := [3]int{i0, i1, i2}
	var tri [3]clipVertex
	a := &c.arrays
	for k, i := range idx {
		tri[k].pos = a.positions[i]
		if c.batch.attrs&attrTexcoord != 0 {
			tri[k].uv = a.texcoords[i]
		}
		switch {
		case c.batch.lit:
			col := c.computeLighting(a.normals[i])
			if c.batch.attrs&attrColor != 0 {
				col = col.Add(a.colors[i]).Clamp01()
			}
			tri[k].col = col
		case c.batch.attrs&attrColor != 0:
			tri[k].col = a.colors[i]
		default:
			tri[k].col = math3d.V3(1, 1, 1)
		}
	}
	return c.clip(tri, 0)
}
