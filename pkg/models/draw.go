package models

import (
	"cmp"
	"image/color"

	"github.com/taigrr/tinyfx/pkg/math3d"
	"github.com/taigrr/tinyfx/pkg/render"
)

// DrawOptions control Mesh.Draw.
type DrawOptions struct {
	// NoCull submits the mesh even when its bounds are outside the frustum.
	NoCull bool
	// Untextured ignores material textures.
	Untextured bool
	// Bounds draws the bounding box edges in BoundsColor after the faces.
	Bounds      bool
	BoundsColor color.RGBA
}

// Draw submits the mesh through ctx under its current transforms and returns
// the number of triangles rasterized. Consecutive faces sharing a material
// are sent as one triangle list, split to fit the context's capacity. Each
// vertex carries its normal and texcoord. Unlit, the material's base color
// is the vertex color; lit, it tints the lighting material instead. The
// bound texture and lighting material are restored afterwards.
func (m *Mesh) Draw(ctx *render.Context, opts DrawOptions) (int, error) {
	if len(m.Faces) == 0 {
		return 0, nil
	}
	if !opts.NoCull && !ctx.Visible(m.Bounds.Min, m.Bounds.Max) {
		return 0, nil
	}

	saved := ctx.Texture()
	defer ctx.SetTexture(saved)

	var lit *litState
	if ctx.Lighting() {
		base, bound := ctx.Material()
		lit = &litState{base: base, bound: bound}
		defer lit.restore(ctx)
	}

	perBatch := max(ctx.Capacity()/3, 1)
	total := 0
	for start := 0; start < len(m.Faces); {
		mat := m.Faces[start].Material
		end := start + 1
		for end < len(m.Faces) && end-start < perBatch && m.Faces[end].Material == mat {
			end++
		}

		n, err := m.drawFaces(ctx, m.Faces[start:end], m.material(mat), lit, opts)
		total += n
		if err != nil {
			return total, err
		}
		start = end
	}

	if opts.Bounds {
		if err := ctx.DrawBox(m.Bounds.Min, m.Bounds.Max, opts.BoundsColor); err != nil {
			return total, err
		}
	}
	return total, nil
}

func (m *Mesh) material(i int) Material {
	if mat := m.GetMaterial(i); mat != nil {
		return *mat
	}
	return DefaultMaterial()
}

// litState is the lighting material bound when a lit Draw started.
type litState struct {
	base  render.Material
	bound bool
}

// tint binds the lighting material for a mesh material of base color col.
// A white mesh material leaves the scene's lighting untouched.
func (s *litState) tint(ctx *render.Context, col math3d.Vec3) {
	switch {
	case s.bound:
		ctx.SetMaterial(render.Material{
			Ambient:  s.base.Ambient.Mul(col),
			Diffuse:  s.base.Diffuse.Mul(col),
			Emissive: s.base.Emissive,
		})
	case col == math3d.V3(1, 1, 1):
		ctx.ResetMaterial()
	default:
		ctx.SetMaterial(render.Material{Ambient: col, Diffuse: col})
	}
}

func (s *litState) restore(ctx *render.Context) {
	if s.bound {
		ctx.SetMaterial(s.base)
	} else {
		ctx.ResetMaterial()
	}
}

func (m *Mesh) drawFaces(ctx *render.Context, faces []Face, mat Material, lit *litState, opts DrawOptions) (int, error) {
	if mat.Texture != nil && !opts.Untextured {
		ctx.SetTexture(mat.Texture)
	} else {
		ctx.SetTexture(nil)
	}
	col := mat.Color()
	if lit != nil {
		lit.tint(ctx, col)
	}

	if err := ctx.Begin(render.Triangles); err != nil {
		return 0, err
	}
	var err error
	for _, f := range faces {
		for _, i := range f.V {
			v := &m.Vertices[i]
			err = cmp.Or(err,
				ctx.VertexV(v.Position),
				ctx.NormalV(v.Normal),
				ctx.Texcoord(v.UV.X, v.UV.Y))
			if lit == nil {
				err = cmp.Or(err, ctx.ColorV(col))
			}
		}
	}
	n, endErr := ctx.End()
	return n, cmp.Or(err, endErr)
}

// DrawWireframe draws each distinct face edge in col. Edges are depth tested
// against what is already in the depth buffer.
func (m *Mesh) DrawWireframe(ctx *render.Context, col color.RGBA) error {
	seen := make(map[[2]int]struct{}, len(m.Faces)*3/2)
	segs := make([][2]math3d.Vec3, 0, len(m.Faces)*3/2)
	for _, f := range m.Faces {
		for k := range 3 {
			a, b := f.V[k], f.V[(k+1)%3]
			if a > b {
				a, b = b, a
			}
			if _, ok := seen[[2]int{a, b}]; ok {
				continue
			}
			seen[[2]int{a, b}] = struct{}{}
			segs = append(segs, [2]math3d.Vec3{m.Vertices[a].Position, m.Vertices[b].Position})
		}
	}
	return ctx.Lines(col, segs...)
}
