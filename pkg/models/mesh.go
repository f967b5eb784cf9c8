// Package models loads triangle meshes from glTF and Wavefront OBJ files and
// replays them through a render.Context.
package models

import (
	"slices"

	"github.com/taigrr/tinyfx/pkg/bitmap"
	"github.com/taigrr/tinyfx/pkg/math3d"
)

// Mesh is an indexed triangle mesh.
type Mesh struct {
	Name      string
	Vertices  []MeshVertex
	Faces     []Face
	Materials []Material

	// Bounds is refreshed by CalculateBounds and Transform.
	Bounds Box
}

// Box is an axis-aligned bounding box.
type Box struct {
	Min, Max math3d.Vec3
}

func (b Box) Center() math3d.Vec3 { return b.Min.Add(b.Max).Scale(0.5) }
func (b Box) Size() math3d.Vec3 { return b.Max.Sub(b.Min) }

// MeshVertex holds all vertex attributes. UV has its origin at the top-left
// of the texture, matching the rasterizer.
type MeshVertex struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
	UV       math3d.Vec2
}

// Face is a counter-clockwise triangle.
type Face struct {
	V        [3]int // indices into Mesh.Vertices
	Material int    // index into Mesh.Materials, -1 for none
}

// Material is the subset of a surface description the pipeline can shade.
type Material struct {
	Name      string
	BaseColor [4]float64 // RGBA in 0-1 range
	Metallic  float64
	Roughness float64
	Texture   *bitmap.Bitmap // optional base color map
}

// DefaultMaterial is used for faces without a material.
func DefaultMaterial() Material {
	return Material{
		Name:      "default",
		BaseColor: [4]float64{1, 1, 1, 1},
		Roughness: 1,
	}
}

// Color returns the RGB part of the base color.
func (m *Material) Color() math3d.Vec3 {
	return math3d.V3(m.BaseColor[0], m.BaseColor[1], m.BaseColor[2])
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{Name: name}
}

// CalculateBounds recomputes Bounds from the vertex positions. An empty
// mesh gets a zero box.
func (m *Mesh) CalculateBounds() {
	var b Box
	for i, v := range m.Vertices {
		if i == 0 {
			b = Box{v.Position, v.Position}
			continue
		}
		b.Min, b.Max = b.Min.Min(v.Position), b.Max.Max(v.Position)
	}
	m.Bounds = b
}

func (m *Mesh) TriangleCount() int { return len(m.Faces) }
func (m *Mesh) VertexCount() int { return len(m.Vertices) }
func (m *Mesh) MaterialCount() int { return len(m.Materials) }

// ComputeNormals replaces every vertex normal with one derived from the
// faces. Flat normals give each vertex the normal of the last face that
// uses it. Smooth normals sum the unnormalized face normals, so larger
// faces weigh more.
func (m *Mesh) ComputeNormals(smooth bool) {
	sum := make([]math3d.Vec3, len(m.Vertices))
	for _, f := range m.Faces {
		p0, p1, p2 := m.Vertices[f.V[0]].Position, m.Vertices[f.V[1]].Position, m.Vertices[f.V[2]].Position
		n := p1.Sub(p0).Cross(p2.Sub(p0))
		for _, i := range f.V {
			if smooth {
				sum[i] = sum[i].Add(n)
			} else {
				sum[i] = n
			}
		}
	}
	for i, n := range sum {
		m.Vertices[i].Normal = n.Normalize()
	}
}

func (m *Mesh) hasNormals() bool {
	for _, v := range m.Vertices {
		if v.Normal.LenSq() > 1e-6 {
			return true
		}
	}
	return false
}

// Transform moves positions by mat and normals by its inverse transpose.
func (m *Mesh) Transform(mat math3d.Mat4) {
	nm := mat.InverseTranspose()
	for i := range m.Vertices {
		v := &m.Vertices[i]
		v.Position = mat.MulVec3(v.Position)
		v.Normal = nm.MulVec3Dir(v.Normal).Normalize()
	}
	m.CalculateBounds()
}

// Normalize centers the mesh on the origin and scales it uniformly so the
// longest side of its bounds is size. Degenerate meshes are left alone.
func (m *Mesh) Normalize(size float64) {
	ext := m.Bounds.Size()
	longest := max(ext.X, ext.Y, ext.Z)
	if longest == 0 {
		return
	}
	k := size / longest
	m.Transform(math3d.Scale(math3d.V3(k, k, k)).Mul(math3d.Translate(m.Bounds.Center().Negate())))
}

// Clone returns a copy that shares only textures with m.
func (m *Mesh) Clone() *Mesh {
	c := *m
	c.Vertices = slices.Clone(m.Vertices)
	c.Faces = slices.Clone(m.Faces)
	c.Materials = slices.Clone(m.Materials)
	return &c
}

// GetFaceMaterial returns the material index of face i, -1 for none.
func (m *Mesh) GetFaceMaterial(i int) int {
	return m.Faces[i].Material
}

// GetMaterial returns material i, or nil when i is out of range.
func (m *Mesh) GetMaterial(i int) *Material {
	if i < 0 || i >= len(m.Materials) {
		return nil
	}
	return &m.Materials[i]
}
