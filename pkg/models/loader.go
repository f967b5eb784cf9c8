package models

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/taigrr/tinyfx/pkg/bitmap"
	"github.com/taigrr/tinyfx/pkg/render"
)

var (
	// ErrUnknownFormat is returned for file extensions no loader handles.
	ErrUnknownFormat = errors.New("models: unknown model format")
	// ErrMalformed is returned for model data that cannot be interpreted.
	ErrMalformed = errors.New("models: malformed model")
)

// Loader reads models and their textures through a byte source.
type Loader struct {
	Source render.ByteSource
	Log    *slog.Logger

	// CalculateNormals fills in normals for meshes that have none.
	CalculateNormals bool
	// SmoothNormals averages generated normals across shared vertices.
	SmoothNormals bool
}

// NewLoader creates a loader reading from src, or the filesystem if src is
// nil, that generates smooth normals.
func NewLoader(src render.ByteSource) *Loader {
	if src == nil {
		src = render.OSFiles{}
	}
	return &Loader{
		Source:           src,
		Log:              slog.Default(),
		CalculateNormals: true,
		SmoothNormals:    true,
	}
}

// Load reads a model from the filesystem, choosing the format by extension.
func Load(path string) (*Mesh, error) {
	return NewLoader(nil).Load(path)
}

// Load reads the named model, choosing the format by extension: .glb and
// .gltf for glTF 2.0, .obj for Wavefront OBJ.
func (l *Loader) Load(name string) (*Mesh, error) {
	switch strings.ToLower(path.Ext(name)) {
	case ".glb", ".gltf":
		return l.LoadGLTF(name)
	case ".obj":
		return l.LoadOBJ(name)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, name)
}

// finish generates missing normals and bounds.
func (l *Loader) finish(mesh *Mesh, name string) {
	if l.CalculateNormals && !mesh.hasNormals() {
		mesh.ComputeNormals(l.SmoothNormals)
	}
	mesh.CalculateBounds()

	l.Log.Debug("model loaded",
		"name", name,
		"vertices", mesh.VertexCount(),
		"triangles", mesh.TriangleCount(),
		"materials", mesh.MaterialCount(),
	)
}

// resolve returns ref relative to the directory of the file base.
func resolve(base, ref string) string {
	if path.IsAbs(ref) {
		return ref
	}
	return path.Join(path.Dir(base), ref)
}

// readURI returns the bytes behind a data URI, or the file it names
// relative to base.
func (l *Loader) readURI(base, uri string) ([]byte, error) {
	if rest, ok := strings.CutPrefix(uri, "data:"); ok {
		meta, payload, found := strings.Cut(rest, ",")
		if !found || !strings.HasSuffix(meta, ";base64") {
			return nil, fmt.Errorf("%w: unsupported data URI", ErrMalformed)
		}
		return base64.StdEncoding.DecodeString(payload)
	}
	return l.Source.ReadFile(resolve(base, uri))
}

func (l *Loader) readTexture(base, uri string) (*bitmap.Bitmap, error) {
	data, err := l.readURI(base, uri)
	if err != nil {
		return nil, fmt.Errorf("read texture %q: %w", uri, err)
	}
	bm, err := bitmap.DecodeBytes(data)
	if err != nil {
		return nil, fmt.Errorf("decode texture %q: %w", uri, err)
	}
	return bm, nil
}
