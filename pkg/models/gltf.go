package models

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"path"

	"github.com/qmuntal/gltf"

	"github.com/taigrr/tinyfx/pkg/bitmap"
	"github.com/taigrr/tinyfx/pkg/math3d"
)

// LoadGLB loads a glTF or GLB file from the filesystem.
func LoadGLB(path string) (*Mesh, error) {
	return NewLoader(nil).LoadGLTF(path)
}

// LoadGLTF reads a glTF 2.0 document, binary or JSON, and flattens every
// triangle primitive of every mesh into one Mesh. Node transforms are not
// applied.
func (l *Loader) LoadGLTF(name string) (*Mesh, error) {
	data, err := l.Source.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read gltf: %w", err)
	}
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(bytes.NewReader(data)).Decode(doc); err != nil {
		return nil, fmt.Errorf("decode gltf: %w", err)
	}

	// External buffers are read through the loader's source.
	for i, buf := range doc.Buffers {
		if buf.Data != nil || buf.URI == "" {
			continue
		}
		if buf.Data, err = l.readURI(name, buf.URI); err != nil {
			return nil, fmt.Errorf("read buffer %d: %w", i, err)
		}
	}

	mesh := NewMesh(path.Base(name))
	mesh.Materials = l.gltfMaterials(doc, name)
	for _, m := range doc.Meshes {
		if err := addGLTFMesh(doc, m, mesh); err != nil {
			return nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
		}
	}

	l.finish(mesh, name)
	return mesh, nil
}

// gltfMaterials converts the document's materials. A texture that cannot be
// loaded is logged and left out.
func (l *Loader) gltfMaterials(doc *gltf.Document, name string) []Material {
	out := make([]Material, len(doc.Materials))
	for i, gm := range doc.Materials {
		m := DefaultMaterial()
		m.Name = gm.Name
		if pbr := gm.PBRMetallicRoughness; pbr != nil {
			m.BaseColor = pbr.BaseColorFactorOrDefault()
			m.Metallic = pbr.MetallicFactorOrDefault()
			m.Roughness = pbr.RoughnessFactorOrDefault()
			if pbr.BaseColorTexture != nil {
				tex, err := l.gltfTexture(doc, name, pbr.BaseColorTexture.Index)
				if err != nil {
					l.Log.Warn("texture skipped", "material", gm.Name, "err", err)
				}
				m.Texture = tex
			}
		}
		out[i] = m
	}
	return out
}

func (l *Loader) gltfTexture(doc *gltf.Document, name string, index int) (*bitmap.Bitmap, error) {
	if index < 0 || index >= len(doc.Textures) || doc.Textures[index].Source == nil {
		return nil, fmt.Errorf("%w: texture %d has no image", ErrMalformed, index)
	}
	src := *doc.Textures[index].Source
	if src < 0 || src >= len(doc.Images) {
		return nil, fmt.Errorf("%w: image %d out of range", ErrMalformed, src)
	}

	img := doc.Images[src]
	if img.BufferView == nil {
		return l.readTexture(name, img.URI)
	}
	data, err := bufferViewData(doc, *img.BufferView)
	if err != nil {
		return nil, err
	}
	return bitmap.DecodeBytes(data)
}

// addGLTFMesh appends the triangle primitives of m. glTF front faces wind
// counter-clockwise and texcoords start at the top-left, as in the
// rasterizer, so both are kept as stored.
func addGLTFMesh(doc *gltf.Document, m *gltf.Mesh, mesh *Mesh) error {
	for _, prim := range m.Primitives {
		switch prim.Mode {
		case gltf.PrimitiveTriangles, gltf.PrimitiveTriangleStrip, gltf.PrimitiveTriangleFan:
		default:
			continue
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		positions, err := readVec3Accessor(doc, posIdx)
		if err != nil {
			return fmt.Errorf("read positions: %w", err)
		}

		var normals []math3d.Vec3
		if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
			if normals, err = readVec3Accessor(doc, idx); err != nil {
				return fmt.Errorf("read normals: %w", err)
			}
		}

		var uvs []math3d.Vec2
		if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			if uvs, err = readVec2Accessor(doc, idx); err != nil {
				return fmt.Errorf("read texcoords: %w", err)
			}
		}

		base := len(mesh.Vertices)
		for i, p := range positions {
			v := MeshVertex{Position: p}
			if i < len(normals) {
				v.Normal = normals[i]
			}
			if i < len(uvs) {
				v.UV = uvs[i]
			}
			mesh.Vertices = append(mesh.Vertices, v)
		}

		var indices []int
		if prim.Indices != nil {
			if indices, err = readIndices(doc, *prim.Indices); err != nil {
				return fmt.Errorf("read indices: %w", err)
			}
		} else {
			indices = make([]int, len(positions))
			for i := range indices {
				indices[i] = i
			}
		}

		material := -1
		if prim.Material != nil && *prim.Material >= 0 && *prim.Material < len(mesh.Materials) {
			material = *prim.Material
		}

		for _, tri := range triangulate(prim.Mode, indices) {
			for k := range tri {
				if tri[k] < 0 || tri[k] >= len(positions) {
					return fmt.Errorf("%w: index %d out of range", ErrMalformed, tri[k])
				}
				tri[k] += base
			}
			mesh.Faces = append(mesh.Faces, Face{V: tri, Material: material})
		}
	}
	return nil
}

// triangulate splits an index stream into counter-clockwise triangles the
// same way the pipeline decomposes strips and fans.
func triangulate(mode gltf.PrimitiveMode, idx []int) [][3]int {
	var out [][3]int
	switch mode {
	case gltf.PrimitiveTriangleStrip:
		for i := 2; i < len(idx); i++ {
			if i&1 != 0 {
				out = append(out, [3]int{idx[i-2], idx[i], idx[i-1]})
			} else {
				out = append(out, [3]int{idx[i-2], idx[i-1], idx[i]})
			}
		}
	case gltf.PrimitiveTriangleFan:
		for i := 2; i < len(idx); i++ {
			out = append(out, [3]int{idx[0], idx[i-1], idx[i]})
		}
	default:
		for i := 0; i+2 < len(idx); i += 3 {
			out = append(out, [3]int{idx[i], idx[i+1], idx[i+2]})
		}
	}
	return out
}

// bufferViewData returns the bytes covered by a buffer view.
func bufferViewData(doc *gltf.Document, index int) ([]byte, error) {
	if index < 0 || index >= len(doc.BufferViews) {
		return nil, fmt.Errorf("%w: buffer view %d out of range", ErrMalformed, index)
	}
	bv := doc.BufferViews[index]
	if bv.Buffer < 0 || bv.Buffer >= len(doc.Buffers) {
		return nil, fmt.Errorf("%w: buffer %d out of range", ErrMalformed, bv.Buffer)
	}
	data := doc.Buffers[bv.Buffer].Data
	if data == nil {
		return nil, fmt.Errorf("%w: buffer %d has no data", ErrMalformed, bv.Buffer)
	}
	end := bv.ByteOffset + bv.ByteLength
	if bv.ByteOffset < 0 || end > len(data) {
		return nil, fmt.Errorf("%w: buffer view %d exceeds its buffer", ErrMalformed, index)
	}
	return data[bv.ByteOffset:end], nil
}

func accessor(doc *gltf.Document, index int) (*gltf.Accessor, error) {
	if index < 0 || index >= len(doc.Accessors) {
		return nil, fmt.Errorf("%w: accessor %d out of range", ErrMalformed, index)
	}
	return doc.Accessors[index], nil
}

// accessorElements returns the view bytes of an accessor, the byte stride
// between elements and the element count.
func accessorElements(doc *gltf.Document, index, size int) (data []byte, stride, count int, err error) {
	acr, err := accessor(doc, index)
	if err != nil {
		return nil, 0, 0, err
	}
	if acr.BufferView == nil {
		return nil, 0, 0, fmt.Errorf("%w: accessor %d has no buffer view", ErrMalformed, index)
	}
	view, err := bufferViewData(doc, *acr.BufferView)
	if err != nil {
		return nil, 0, 0, err
	}

	stride = doc.BufferViews[*acr.BufferView].ByteStride
	if stride == 0 {
		stride = size
	}
	count = acr.Count
	if acr.ByteOffset < 0 || acr.ByteOffset > len(view) ||
		count > 0 && acr.ByteOffset+(count-1)*stride+size > len(view) {
		return nil, 0, 0, fmt.Errorf("%w: accessor %d exceeds its buffer view", ErrMalformed, index)
	}
	return view[acr.ByteOffset:], stride, count, nil
}

func readFloat32(b []byte) float64 {
	return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
}

func readVec3Accessor(doc *gltf.Document, index int) ([]math3d.Vec3, error) {
	acr, err := accessor(doc, index)
	if err != nil {
		return nil, err
	}
	if acr.Type != gltf.AccessorVec3 || acr.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("%w: expected float VEC3, got %v", ErrMalformed, acr.Type)
	}
	data, stride, count, err := accessorElements(doc, index, 12)
	if err != nil {
		return nil, err
	}
	out := make([]math3d.Vec3, count)
	for i := range out {
		b := data[i*stride:]
		out[i] = math3d.V3(readFloat32(b), readFloat32(b[4:]), readFloat32(b[8:]))
	}
	return out, nil
}

func readVec2Accessor(doc *gltf.Document, index int) ([]math3d.Vec2, error) {
	acr, err := accessor(doc, index)
	if err != nil {
		return nil, err
	}
	if acr.Type != gltf.AccessorVec2 || acr.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("%w: expected float VEC2, got %v", ErrMalformed, acr.Type)
	}
	data, stride, count, err := accessorElements(doc, index, 8)
	if err != nil {
		return nil, err
	}
	out := make([]math3d.Vec2, count)
	for i := range out {
		b := data[i*stride:]
		out[i] = math3d.V2(readFloat32(b), readFloat32(b[4:]))
	}
	return out, nil
}

func readIndices(doc *gltf.Document, index int) ([]int, error) {
	acr, err := accessor(doc, index)
	if err != nil {
		return nil, err
	}
	var size int
	switch acr.ComponentType {
	case gltf.ComponentUbyte:
		size = 1
	case gltf.ComponentUshort:
		size = 2
	case gltf.ComponentUint:
		size = 4
	default:
		return nil, fmt.Errorf("%w: index component %v", ErrMalformed, acr.ComponentType)
	}

	data, stride, count, err := accessorElements(doc, index, size)
	if err != nil {
		return nil, err
	}
	out := make([]int, count)
	for i := range out {
		b := data[i*stride:]
		switch size {
		case 1:
			out[i] = int(b[0])
		case 2:
			out[i] = int(binary.LittleEndian.Uint16(b))
		default:
			out[i] = int(binary.LittleEndian.Uint32(b))
		}
	}
	return out, nil
}
