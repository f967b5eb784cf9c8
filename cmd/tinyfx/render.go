package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/taigrr/tinyfx/pkg/bitmap"
	"github.com/taigrr/tinyfx/pkg/config"
	"github.com/taigrr/tinyfx/pkg/render"
)

type renderOptions struct {
	output string
	depth  string
	pick   string
	width  int
	height int
	flat   bool
	wire   bool
}

func newRenderCmd(root *rootOptions) *cobra.Command {
	opts := &renderOptions{}
	cmd := &cobra.Command{
		Use:   "render [model.obj|model.glb]",
		Short: "Render a model to a PNG or BMP image",
		Example: `  tinyfx render duck.glb -o duck.png
  tinyfx render -c scene.toml --depth depth.png
  tinyfx render duck.glb --pick mask.png`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := render.OSFiles{}
			scene, err := root.loadScene(src, args)
			if err != nil {
				return err
			}
			if opts.width > 0 {
				scene.Viewport.Width = opts.width
			}
			if opts.height > 0 {
				scene.Viewport.Height = opts.height
			}
			return renderImage(scene, src, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "out.png", "image file to write (.png or .bmp)")
	f.StringVar(&opts.depth, "depth", "", "also write the depth buffer as a grayscale image")
	f.StringVar(&opts.pick, "pick", "", "also write a mask of the pixels the frame covered")
	f.IntVar(&opts.width, "width", 0, "override the scene width")
	f.IntVar(&opts.height, "height", 0, "override the scene height")
	f.BoolVar(&opts.flat, "flat", false, "ignore textures")
	f.BoolVar(&opts.wire, "wireframe", false, "draw face edges only")
	cmd.MarkFlagsMutuallyExclusive("flat", "wireframe")
	return cmd
}

func renderImage(scene config.Scene, src render.ByteSource, opts *renderOptions) error {
	mesh, err := loadMesh(scene, src)
	if err != nil {
		return err
	}

	ctx := render.New(append(scene.Options(), render.WithByteSource(src))...)
	defer ctx.Cleanup()

	fb := bitmap.New(scene.Viewport.Width, scene.Viewport.Height)
	if err := ctx.SetViewport(fb); err != nil {
		return err
	}
	if err := scene.Apply(ctx); err != nil {
		return err
	}

	var pick *bitmap.Bitmap
	if opts.pick != "" {
		pick = bitmap.New(fb.Width(), fb.Height())
		pick.Clear(bitmap.Black)
		pick.SetColor(bitmap.White)
		if err := ctx.SetPick(pick); err != nil {
			return err
		}
	}

	mode := RenderModeTextured
	switch {
	case opts.wire:
		mode = RenderModeWireframe
	case opts.flat:
		mode = RenderModeFlat
	}
	n, err := drawFrame(ctx, scene, mesh, scene.ModelTransform(), mode)
	if err != nil {
		return err
	}

	if err := fb.Save(opts.output); err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	slog.Info("rendered",
		"model", scene.Model.Path,
		"output", opts.output,
		"size", fmt.Sprintf("%dx%d", fb.Width(), fb.Height()),
		"triangles", n,
	)

	if opts.depth != "" {
		depth := bitmap.New(fb.Width(), fb.Height())
		if err := ctx.DrawDepth(depth); err != nil {
			return err
		}
		if err := depth.Save(opts.depth); err != nil {
			return fmt.Errorf("write depth: %w", err)
		}
	}
	if pick != nil {
		if err := pick.Save(opts.pick); err != nil {
			return fmt.Errorf("write pick mask: %w", err)
		}
	}
	return nil
}
