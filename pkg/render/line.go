package render

import "github.com/taigrr/tinyfx/pkg/math3d"

// lineDepthBias lets lines and points win depth ties against triangles
// they are drawn over.
const lineDepthBias = 2.220446049250313e-16

// Line draws a depth-tested segment between two object-space points in the
// target's draw color.
func (c *Context) Line(p0, p1 math3d.Vec3) error {
	if c.target == nil {
		return c.fail(ErrNoViewport)
	}
	c.computeTransforms()
	c.clipLine(c.xform.MulVec4(math3d.V4FromV3(p0, 1)), c.xform.MulVec4(math3d.V4FromV3(p1, 1)), 0)
	return nil
}

// Point draws a single depth-tested pixel at an object-space point in the
// target's draw color.
func (c *Context) Point(p math3d.Vec3) error {
	if c.target == nil {
		return c.fail(ErrNoViewport)
	}
	c.computeTransforms()
	q := c.xform.MulVec4(math3d.V4FromV3(p, 1))
	for _, plane := range clipPlanes {
		if !insidePlane(q, plane) {
			return nil
		}
	}
	s := c.toScreen(q)
	c.plot(int(s.X), int(s.Y), s.Z)
	return nil
}

func (c *Context) clipLine(p0, p1 math3d.Vec4, n int) {
	if n >= len(clipPlanes) {
		c.drawLine(c.toScreen(p0), c.toScreen(p1))
		return
	}
	p := clipPlanes[n]
	in0, in1 := insidePlane(p0, p), insidePlane(p1, p)
	switch {
	case !in0 && !in1:
		return
	case !in0:
		p0 = p0.Lerp(p1, intersect(p0, p1, p))
	case !in1:
		p1 = p0.Lerp(p1, intersect(p0, p1, p))
	}
	c.clipLine(p0, p1, n+1)
}

// plot writes the draw color at (x, y) if it is inside the clip rectangle,
// within the depth range and not behind the stored depth.
func (c *Context) plot(x, y int, z float64) {
	clip := c.target.Clip()
	if x < clip.Min.X || x >= clip.Max.X || y < clip.Min.Y || y >= clip.Max.Y {
		return
	}
	if x < 0 || x >= c.width || y < 0 || y >= c.height || z < 0 || z >= 1 {
		return
	}
	i := y*c.width + x
	if z < c.zbuf[i]+lineDepthBias {
		c.zbuf[i] = z
		c.target.Set(x, y, c.target.Color())
	}
}

// drawLine walks screen-space endpoints with Bresenham's algorithm,
// stepping depth linearly along each axis.
func (c *Context) drawLine(s0, s1 math3d.Vec3) {
	x0, y0, z0 := int(s0.X), int(s0.Y), s0.Z
	x1, y1, z1 := int(s1.X), int(s1.Y), s1.Z

	dx := abs(x1 - x0)
	dy := abs(y1 - y0)
	sx, sy := 1, 1
	if x0 >= x1 {
		sx = -1
	}
	if y0 >= y1 {
		sy = -1
	}

	var dzx, dzy float64
	if dx != 0 {
		dzx = (z1 - z0) / float64(dx)
	}
	if dy != 0 {
		dzy = (z1 - z0) / float64(dy)
	}

	err := dx - dy
	for {
		c.plot(x0, y0, z0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
			z0 += dzx
		}
		if e2 < dx {
			err += dx
			y0 += sy
			z0 += dzy
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
