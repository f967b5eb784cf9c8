package render

import (
	"image/color"
	"math"

	"github.com/taigrr/tinyfx/pkg/bitmap"
	"github.com/taigrr/tinyfx/pkg/math3d"
)

// Below this absolute determinant a triangle is treated as degenerate.
const degenerateArea = 1e-2

// ditherStep is the sub-texel offset unit for ordered texture dithering.
const ditherStep = 0.25

// barycentric returns the weights of p with respect to the screen-space
// triangle (a, b, c). Degenerate triangles yield a weight below zero so the
// pixel is rejected.
func barycentric(a, b, c math3d.Vec3, px, py float64) math3d.Vec3 {
	s0 := math3d.V3(c.X-a.X, b.X-a.X, a.X-px)
	s1 := math3d.V3(c.Y-a.Y, b.Y-a.Y, a.Y-py)
	u := s0.Cross(s1)
	if math.Abs(u.Z) <= degenerateArea {
		return math3d.V3(-1, 1, 1)
	}
	return math3d.V3(1-(u.X+u.Y)/u.Z, u.Y/u.Z, u.X/u.Z)
}

// toScreen maps a clip-space position to viewport pixels, keeping z/w as depth.
func (c *Context) toScreen(p math3d.Vec4) math3d.Vec3 {
	return math3d.V3(
		(p.X/p.W+1)*float64(c.width)/2,
		(-p.Y/p.W+1)*float64(c.height)/2,
		p.Z/p.W,
	)
}

// shader holds the per-triangle texture setup.
type shader struct {
	textured bool
	tex      Target
	tx, ty   int
	tw, th   int
	key      color.RGBA
	dither   [4]math3d.Vec2
	flat     math3d.Vec3 // texel used when untextured
}

func (c *Context) newShader() shader {
	var sh shader
	if c.batch.textured {
		r := c.texture.Clip()
		if r.Dx() > 0 && r.Dy() > 0 {
			sh.textured = true
			sh.tex = c.texture
			sh.tx, sh.ty = r.Min.X, r.Min.Y
			sh.tw, sh.th = r.Dx(), r.Dy()
			sh.key = c.texture.Color()
			tw, th := float64(sh.tw), float64(sh.th)
			sh.dither = [4]math3d.Vec2{
				{X: ditherStep * 1 / tw, Y: ditherStep * 0 / th},
				{X: ditherStep * 3 / tw, Y: ditherStep * 2 / th},
				{X: ditherStep * 2 / tw, Y: ditherStep * 3 / th},
				{X: ditherStep * 0 / tw, Y: ditherStep * 1 / th},
			}
			return sh
		}
	}
	r, g, b := bitmap.Normalize(c.target.Color())
	sh.flat = math3d.V3(r, g, b)
	return sh
}

// wrap01 wraps v into [0, 1).
func wrap01(v float64) float64 {
	v -= math.Floor(v)
	if v >= 1 {
		return 0
	}
	return v
}

// sample returns the normalized texel at uv and whether it is opaque.
func (sh *shader) sample(uv math3d.Vec2, transparent bool) (math3d.Vec3, bool) {
	u, v := wrap01(uv.X), wrap01(uv.Y)
	t := sh.tex.Get(int(u*float64(sh.tw))+sh.tx, int(v*float64(sh.th))+sh.ty)
	if transparent && bitmap.SameRGB(t, sh.key) {
		return math3d.Vec3{}, false
	}
	r, g, b := bitmap.Normalize(t)
	return math3d.V3(r, g, b), true
}

// rasterize draws one clipped triangle. It returns 1 if the triangle was
// scanned and 0 if it was culled as a back face.
func (c *Context) rasterize(tri [3]clipVertex) int {
	v0 := c.toScreen(tri[0].pos)
	v1 := c.toScreen(tri[1].pos)
	v2 := c.toScreen(tri[2].pos)

	// Counter-clockwise in NDC is clockwise on screen, where y points down.
	if c.cullBackfaces {
		n := v1.Sub(v0).Cross(v2.Sub(v0))
		if n.Z >= 0 {
			return 0
		}
	}

	clip := c.target.Clip()
	xmin := max(int(math.Floor(min(v0.X, v1.X, v2.X))), clip.Min.X, 0)
	xmax := min(int(math.Floor(max(v0.X, v1.X, v2.X))), clip.Max.X-1, c.width-1)
	ymin := max(int(math.Floor(min(v0.Y, v1.Y, v2.Y))), clip.Min.Y, 0)
	ymax := min(int(math.Floor(max(v0.Y, v1.Y, v2.Y))), clip.Max.Y-1, c.height-1)

	sh := c.newShader()

	for y := ymin; y <= ymax; y++ {
		for x := xmin; x <= xmax; x++ {
			bc := barycentric(v0, v1, v2, float64(x)+0.5, float64(y)+0.5)
			if bc.X < 0 || bc.Y < 0 || bc.Z < 0 {
				continue
			}

			// Perspective-correct weights.
			pc := math3d.V3(bc.X/tri[0].pos.W, bc.Y/tri[1].pos.W, bc.Z/tri[2].pos.W)
			pc = pc.Scale(1 / (pc.X + pc.Y + pc.Z))

			z := v0.Z*pc.X + v1.Z*pc.Y + v2.Z*pc.Z
			i := y*c.width + x
			if c.zbuf[i] <= z {
				continue
			}

			texel := sh.flat
			if sh.textured {
				uv := tri[0].uv.Scale(pc.X).Add(tri[1].uv.Scale(pc.Y)).Add(tri[2].uv.Scale(pc.Z))
				if c.textureDither {
					uv = uv.Add(sh.dither[((x&1)<<1)+(y&1)])
				}
				var ok bool
				if texel, ok = sh.sample(uv, c.transparent); !ok {
					continue
				}
			}

			rgb := math3d.V3(1, 1, 1)
			if c.batch.colored {
				rgb = tri[0].col.Scale(pc.X).Add(tri[1].col.Scale(pc.Y)).Add(tri[2].col.Scale(pc.Z)).Clamp01()
			}
			rgb = c.applyFog(rgb.Mul(texel), z)

			out := bitmap.FromFloat(rgb.X, rgb.Y, rgb.Z)
			if c.blend {
				out = bitmap.Average(out, c.target.Get(x, y))
			}

			c.target.Set(x, y, out)
			c.zbuf[i] = z
			if c.pick != nil {
				c.pick.PutPixel(x, y)
			}
		}
	}

	return 1
}
