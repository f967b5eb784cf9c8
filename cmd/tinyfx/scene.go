package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taigrr/tinyfx/pkg/bitmap"
	"github.com/taigrr/tinyfx/pkg/config"
	"github.com/taigrr/tinyfx/pkg/math3d"
	"github.com/taigrr/tinyfx/pkg/models"
	"github.com/taigrr/tinyfx/pkg/render"
)

// RenderMode controls how the mesh is drawn
type RenderMode int

const (
	RenderModeTextured  RenderMode = iota // Material colors and textures, lit
	RenderModeFlat                        // Material colors only
	RenderModeWireframe                   // Face edges only
)

var wireColor = bitmap.RGB(0, 255, 128)

const (
	lightMarkerDistance = 1.5
	lightMarkerSize     = 0.2
)

func newSceneCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "scene",
		Short: "Print the scene file in effect (defaults unless --config is given)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			scene := config.Default()
			if root.config != "" {
				s, err := config.Load(render.OSFiles{}, root.config)
				if err != nil {
					return err
				}
				scene = s
			}
			data, err := scene.Encode()
			if err != nil {
				return fmt.Errorf("encode scene: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

// loadMesh reads the scene's model, applies its texture override and fits
// it to the scene's size.
func loadMesh(scene config.Scene, src render.ByteSource) (*models.Mesh, error) {
	mesh, err := models.NewLoader(src).Load(scene.Model.Path)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}

	if scene.Model.Texture != "" {
		data, err := src.ReadFile(scene.Model.Texture)
		if err != nil {
			return nil, fmt.Errorf("read texture: %w", err)
		}
		tex, err := bitmap.DecodeBytes(data)
		if err != nil {
			return nil, fmt.Errorf("decode texture: %w", err)
		}
		setTexture(mesh, tex)
	}

	if scene.Model.Size > 0 {
		mesh.Normalize(scene.Model.Size)
	}
	return mesh, nil
}

// setTexture binds tex to every material, giving faces without one a
// default material first.
func setTexture(mesh *models.Mesh, tex *bitmap.Bitmap) {
	fallback := -1
	for i := range mesh.Faces {
		if mesh.GetMaterial(mesh.GetFaceMaterial(i)) != nil {
			continue
		}
		if fallback < 0 {
			mesh.Materials = append(mesh.Materials, models.DefaultMaterial())
			fallback = len(mesh.Materials) - 1
		}
		mesh.Faces[i].Material = fallback
	}
	for i := range mesh.Materials {
		mesh.Materials[i].Texture = tex
	}
}

// drawFrame clears the viewport and depth buffer and draws one frame of
// mesh under model. It returns the number of triangles rasterized.
func drawFrame(ctx *render.Context, scene config.Scene, mesh *models.Mesh, model math3d.Mat4, mode RenderMode) (int, error) {
	target, ok := ctx.Target().(*bitmap.Bitmap)
	if !ok {
		return 0, render.ErrNoViewport
	}
	target.Clear(scene.Viewport.Background.RGBA)
	ctx.ClearDepth()
	if err := ctx.SetModel(model); err != nil {
		return 0, err
	}

	var n int
	var err error
	switch mode {
	case RenderModeWireframe:
		err = mesh.DrawWireframe(ctx, wireColor)
	default:
		n, err = mesh.Draw(ctx, models.DrawOptions{
			Untextured:  mode == RenderModeFlat,
			Bounds:      scene.Render.Bounds,
			BoundsColor: bitmap.Magenta,
		})
	}
	if err != nil {
		return n, err
	}

	if scene.Render.Axes {
		if err := ctx.DrawAxes(1); err != nil {
			return n, err
		}
	}
	if scene.Render.LightMarker {
		err = drawLightMarker(ctx)
	}
	return n, err
}

// drawLightMarker puts a small untextured billboard on the side the light
// comes from.
func drawLightMarker(ctx *render.Context) error {
	saved := ctx.Texture()
	defer ctx.SetTexture(saved)
	ctx.SetTexture(nil)

	pos := ctx.DiffuseDirection().Negate().Scale(lightMarkerDistance)
	return ctx.Billboard(pos, lightMarkerSize, render.BillboardShaded)
}
