package models

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	"github.com/taigrr/tinyfx/pkg/math3d"
)

// LoadOBJ reads a Wavefront OBJ file. Polygons are split into triangle fans,
// material libraries named by mtllib are read relative to the file, and
// texture V coordinates are flipped to a top-left origin.
func (l *Loader) LoadOBJ(name string) (*Mesh, error) {
	data, err := l.Source.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read obj: %w", err)
	}

	p := &objParser{
		loader:    l,
		name:      name,
		mesh:      NewMesh(path.Base(name)),
		materials: make(map[string]int),
		index:     make(map[[3]int]int),
		material:  -1,
	}
	if err := p.parse(bytes.NewReader(data)); err != nil {
		return nil, err
	}

	l.finish(p.mesh, name)
	return p.mesh, nil
}

type objParser struct {
	loader *Loader
	name   string
	mesh   *Mesh

	positions []math3d.Vec3
	texcoords []math3d.Vec2
	normals   []math3d.Vec3

	// index maps position/texcoord/normal triples to mesh vertices.
	index     map[[3]int]int
	materials map[string]int
	material  int
}

func (p *objParser) parse(r io.Reader) error {
	sc := bufio.NewScanner(r)
	for line := 1; sc.Scan(); line++ {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if err := p.statement(fields[0], fields[1:]); err != nil {
			return fmt.Errorf("%s:%d: %w", p.name, line, err)
		}
	}
	return sc.Err()
}

func (p *objParser) statement(keyword string, args []string) error {
	switch keyword {
	case "v":
		v, err := parseFloats(args, 3)
		if err != nil {
			return err
		}
		p.positions = append(p.positions, math3d.V3(v[0], v[1], v[2]))
	case "vt":
		v, err := parseFloats(args, 1)
		if err != nil {
			return err
		}
		uv := math3d.V2(v[0], 0)
		if len(v) > 1 {
			uv.Y = v[1]
		}
		uv.Y = 1 - uv.Y
		p.texcoords = append(p.texcoords, uv)
	case "vn":
		v, err := parseFloats(args, 3)
		if err != nil {
			return err
		}
		p.normals = append(p.normals, math3d.V3(v[0], v[1], v[2]))
	case "f":
		return p.face(args)
	case "o":
		if len(args) > 0 && p.mesh.Name == path.Base(p.name) {
			p.mesh.Name = args[0]
		}
	case "usemtl":
		if len(args) == 0 {
			p.material = -1
			return nil
		}
		i, ok := p.materials[args[0]]
		if !ok {
			m := DefaultMaterial()
			m.Name = args[0]
			i = p.addMaterial(m)
		}
		p.material = i
	case "mtllib":
		for _, lib := range args {
			p.mtllib(lib)
		}
	}
	// Groups, smoothing groups, lines and free-form geometry are ignored.
	return nil
}

func (p *objParser) addMaterial(m Material) int {
	p.mesh.Materials = append(p.mesh.Materials, m)
	i := len(p.mesh.Materials) - 1
	p.materials[m.Name] = i
	return i
}

func (p *objParser) face(args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("%w: face needs 3 vertices, got %d", ErrMalformed, len(args))
	}
	verts := make([]int, len(args))
	for i, a := range args {
		v, err := p.vertex(a)
		if err != nil {
			return err
		}
		verts[i] = v
	}
	for i := 2; i < len(verts); i++ {
		p.mesh.Faces = append(p.mesh.Faces, Face{
			V:        [3]int{verts[0], verts[i-1], verts[i]},
			Material: p.material,
		})
	}
	return nil
}

// vertex returns the mesh vertex for a v, v/vt, v//vn or v/vt/vn reference.
func (p *objParser) vertex(ref string) (int, error) {
	parts := strings.Split(ref, "/")
	if len(parts) > 3 {
		return 0, fmt.Errorf("%w: vertex reference %q", ErrMalformed, ref)
	}

	key := [3]int{-1, -1, -1}
	counts := [3]int{len(p.positions), len(p.texcoords), len(p.normals)}
	for i, s := range parts {
		if s == "" {
			if i == 0 {
				return 0, fmt.Errorf("%w: vertex reference %q", ErrMalformed, ref)
			}
			continue
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("%w: vertex reference %q", ErrMalformed, ref)
		}
		// Indices are 1-based; negative ones count back from the end.
		if n < 0 {
			n += counts[i]
		} else {
			n--
		}
		if n < 0 || n >= counts[i] {
			return 0, fmt.Errorf("%w: index %s out of range in %q", ErrMalformed, s, ref)
		}
		key[i] = n
	}

	if v, ok := p.index[key]; ok {
		return v, nil
	}
	v := MeshVertex{Position: p.positions[key[0]]}
	if key[1] >= 0 {
		v.UV = p.texcoords[key[1]]
	}
	if key[2] >= 0 {
		v.Normal = p.normals[key[2]]
	}
	p.mesh.Vertices = append(p.mesh.Vertices, v)
	i := len(p.mesh.Vertices) - 1
	p.index[key] = i
	return i, nil
}

// mtllib reads a material library. A missing or broken library is logged
// and the faces that use it fall back to default materials.
func (p *objParser) mtllib(lib string) {
	name := resolve(p.name, lib)
	data, err := p.loader.Source.ReadFile(name)
	if err != nil {
		p.loader.Log.Warn("material library skipped", "file", name, "err", err)
		return
	}
	if err := p.parseMTL(bytes.NewReader(data), name); err != nil {
		p.loader.Log.Warn("material library skipped", "file", name, "err", err)
	}
}

func (p *objParser) parseMTL(r io.Reader, name string) error {
	var cur *Material
	sc := bufio.NewScanner(r)
	for line := 1; sc.Scan(); line++ {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		keyword, args := fields[0], fields[1:]

		if keyword == "newmtl" {
			if len(args) == 0 {
				return fmt.Errorf("%s:%d: %w: newmtl without a name", name, line, ErrMalformed)
			}
			m := DefaultMaterial()
			m.Name = args[0]
			i, ok := p.materials[m.Name]
			if !ok {
				i = p.addMaterial(m)
			}
			cur = &p.mesh.Materials[i]
			continue
		}
		if cur == nil {
			continue
		}

		var err error
		switch keyword {
		case "Kd":
			var v []float64
			if v, err = parseFloats(args, 3); err == nil {
				cur.BaseColor[0], cur.BaseColor[1], cur.BaseColor[2] = v[0], v[1], v[2]
			}
		case "d":
			var v []float64
			if v, err = parseFloats(args, 1); err == nil {
				cur.BaseColor[3] = v[0]
			}
		case "Tr":
			var v []float64
			if v, err = parseFloats(args, 1); err == nil {
				cur.BaseColor[3] = 1 - v[0]
			}
		case "Pm":
			var v []float64
			if v, err = parseFloats(args, 1); err == nil {
				cur.Metallic = v[0]
			}
		case "Pr":
			var v []float64
			if v, err = parseFloats(args, 1); err == nil {
				cur.Roughness = v[0]
			}
		case "map_Kd":
			if len(args) == 0 {
				break
			}
			// Options precede the file name, which is the last field.
			tex, terr := p.loader.readTexture(name, args[len(args)-1])
			if terr != nil {
				p.loader.Log.Warn("texture skipped", "material", cur.Name, "err", terr)
				break
			}
			cur.Texture = tex
		}
		if err != nil {
			return fmt.Errorf("%s:%d: %w", name, line, err)
		}
	}
	return sc.Err()
}

// parseFloats parses at least n leading fields as floats.
func parseFloats(args []string, n int) ([]float64, error) {
	if len(args) < n {
		return nil, fmt.Errorf("%w: want %d numbers, got %d", ErrMalformed, n, len(args))
	}
	out := make([]float64, 0, len(args))
	for _, a := range args {
		f, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", ErrMalformed, a)
		}
		out = append(out, f)
	}
	return out, nil
}
