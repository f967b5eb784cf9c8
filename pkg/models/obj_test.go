package models

import (
	"bytes"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/tinyfx/pkg/bitmap"
	"github.com/taigrr/tinyfx/pkg/math3d"
)

const quadOBJ = `# unit quad
mtllib quad.mtl
o Quad
v -1 -1 0
v 1 -1 0
v 1 1 0
v -1 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
usemtl painted
f 1/1/1 2/2/1 3/3/1 4/4/1
`

const quadMTL = `newmtl painted
Kd 0.5 0.25 1
d 0.75
Pr 0.3
map_Kd -bm 1 tex/green.png
`

func greenPNG(t *testing.T) []byte {
	t.Helper()
	tex := bitmap.New(2, 2)
	tex.Clear(bitmap.Green)
	var buf bytes.Buffer
	require.NoError(t, tex.EncodePNG(&buf))
	return buf.Bytes()
}

func TestLoadOBJ(t *testing.T) {
	loader := newFSLoader(fstest.MapFS{
		"assets/quad.obj":      {Data: []byte(quadOBJ)},
		"assets/quad.mtl":      {Data: []byte(quadMTL)},
		"assets/tex/green.png": {Data: greenPNG(t)},
	})

	m, err := loader.Load("assets/quad.obj")
	require.NoError(t, err)
	assert.Equal(t, "Quad", m.Name)
	assert.Equal(t, 4, m.VertexCount())
	require.Equal(t, 2, m.TriangleCount())

	// The quad is split into a fan around its first vertex.
	assert.Equal(t, [3]int{0, 1, 2}, m.Faces[0].V)
	assert.Equal(t, [3]int{0, 2, 3}, m.Faces[1].V)

	// V runs up in OBJ and down in the rasterizer.
	assert.Equal(t, math3d.V2(0, 1), m.Vertices[0].UV)
	assert.Equal(t, math3d.V2(1, 0), m.Vertices[2].UV)
	assert.Equal(t, math3d.V3(0, 0, 1), m.Vertices[3].Normal)

	assert.Equal(t, math3d.V3(-1, -1, 0), m.Bounds.Min)
	assert.Equal(t, math3d.V3(1, 1, 0), m.Bounds.Max)

	require.Equal(t, 1, m.MaterialCount())
	mat := m.GetMaterial(m.Faces[1].Material)
	require.NotNil(t, mat)
	assert.Equal(t, "painted", mat.Name)
	assert.Equal(t, [4]float64{0.5, 0.25, 1, 0.75}, mat.BaseColor)
	assert.InDelta(t, 0.3, mat.Roughness, 1e-12)
	require.NotNil(t, mat.Texture)
	assert.Equal(t, bitmap.Green, mat.Texture.Get(0, 0))
}

func TestLoadOBJSharedAndNegativeIndices(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 0 1 0
v 1 1 0
f -4 -3 -2
f 3 2 4
`
	m, err := newFSLoader(fstest.MapFS{"m.obj": {Data: []byte(src)}}).Load("m.obj")
	require.NoError(t, err)
	assert.Equal(t, 4, m.VertexCount(), "vertices are shared between faces")
	assert.Equal(t, [3]int{0, 1, 2}, m.Faces[0].V)
	assert.Equal(t, [3]int{2, 1, 3}, m.Faces[1].V)
	assert.Equal(t, -1, m.Faces[0].Material)
	assert.Equal(t, "m.obj", m.Name)

	// No normals in the file, so smooth ones are generated.
	for _, v := range m.Vertices {
		assert.InDelta(t, 1, v.Normal.Z, 1e-9)
	}
}

func TestLoadOBJMissingLibrary(t *testing.T) {
	src := "mtllib nowhere.mtl\nv 0 0 0\nv 1 0 0\nv 0 1 0\nusemtl shiny\nf 1 2 3\n"
	m, err := newFSLoader(fstest.MapFS{"m.obj": {Data: []byte(src)}}).Load("m.obj")
	require.NoError(t, err)
	require.Equal(t, 1, m.MaterialCount())
	assert.Equal(t, "shiny", m.Materials[0].Name)
	assert.Equal(t, DefaultMaterial().BaseColor, m.Materials[0].BaseColor)
	assert.Equal(t, 0, m.Faces[0].Material)
}

func TestLoadOBJErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"short vertex", "v 1 2\n"},
		{"bad number", "v 1 x 3\n"},
		{"two-vertex face", "v 0 0 0\nv 1 0 0\nf 1 2\n"},
		{"index out of range", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 7\n"},
		{"zero index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n"},
		{"missing texcoord", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1/1 2/1 3/1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newFSLoader(fstest.MapFS{"m.obj": {Data: []byte(tt.src)}}).Load("m.obj")
			assert.ErrorIs(t, err, ErrMalformed)
			assert.ErrorContains(t, err, "m.obj:")
		})
	}
}
