package render

import (
	"image/color"

	"github.com/taigrr/tinyfx/pkg/bitmap"
	"github.com/taigrr/tinyfx/pkg/math3d"
)

var boxEdges = [12][2]int{
	{0, 1}, {1, 3}, {3, 2}, {2, 0}, // z = lo
	{4, 5}, {5, 7}, {7, 6}, {6, 4}, // z = hi
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// Lines draws each object-space segment in col, restoring the previous draw
// color afterwards.
func (c *Context) Lines(col color.RGBA, segs ...[2]math3d.Vec3) error {
	if c.target == nil {
		return c.fail(ErrNoViewport)
	}
	save := c.target.Color()
	defer c.target.SetColor(save)
	c.target.SetColor(col)
	for _, s := range segs {
		if err := c.Line(s[0], s[1]); err != nil {
			return err
		}
	}
	return nil
}

// DrawBox draws the edges of the object-space box spanned by lo and hi.
func (c *Context) DrawBox(lo, hi math3d.Vec3, col color.RGBA) error {
	var corners [8]math3d.Vec3
	for i := range corners {
		corners[i] = boxCorner(lo, hi, i)
	}
	segs := make([][2]math3d.Vec3, 0, len(boxEdges))
	for _, e := range boxEdges {
		segs = append(segs, [2]math3d.Vec3{corners[e[0]], corners[e[1]]})
	}
	return c.Lines(col, segs...)
}

// DrawAxes draws the X, Y and Z axes from the origin in red, green and blue.
func (c *Context) DrawAxes(length float64) error {
	o := math3d.Zero3()
	if err := c.Lines(bitmap.Red, [2]math3d.Vec3{o, math3d.V3(length, 0, 0)}); err != nil {
		return err
	}
	if err := c.Lines(bitmap.Green, [2]math3d.Vec3{o, math3d.V3(0, length, 0)}); err != nil {
		return err
	}
	return c.Lines(bitmap.Blue, [2]math3d.Vec3{o, math3d.V3(0, 0, length)})
}

// DrawGrid draws a square grid of the given size on the XZ plane at y=0.
func (c *Context) DrawGrid(size, step float64, col color.RGBA) error {
	if step <= 0 {
		return nil
	}
	half := size / 2
	var segs [][2]math3d.Vec3
	for x := -half; x <= half+1e-9; x += step {
		segs = append(segs, [2]math3d.Vec3{math3d.V3(x, 0, -half), math3d.V3(x, 0, half)})
	}
	for z := -half; z <= half+1e-9; z += step {
		segs = append(segs, [2]math3d.Vec3{math3d.V3(-half, 0, z), math3d.V3(half, 0, z)})
	}
	return c.Lines(col, segs...)
}
