// tinyfx - software 3D renderer
// Render OBJ and glTF models to PNG/BMP images or live in the terminal.
//
// Commands:
//
//	render  - Rasterize one frame to an image file (and optionally its depth buffer)
//	view    - Interactive terminal viewer
//	scene   - Print the default scene file
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/taigrr/tinyfx/pkg/config"
	"github.com/taigrr/tinyfx/pkg/render"
)

var version = "dev"

var errNoModel = errors.New("no model given (pass a path or set [model] path)")

// rootOptions are the flags shared by every command.
type rootOptions struct {
	config  string
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:          "tinyfx",
		Short:        "Software 3D rendering for images and terminals",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := slog.LevelInfo
			if opts.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
	}
	root.PersistentFlags().StringVarP(&opts.config, "config", "c", "", "scene file (TOML)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log debug output")

	root.AddCommand(
		newRenderCmd(opts),
		newViewCmd(opts),
		newSceneCmd(opts),
	)
	return root
}

// loadScene returns the scene named by --config, or the defaults. A model
// path argument replaces the file's.
func (o *rootOptions) loadScene(src render.ByteSource, args []string) (config.Scene, error) {
	scene := config.Default()
	if o.config != "" {
		s, err := config.Load(src, o.config)
		if err != nil {
			return config.Scene{}, err
		}
		scene = s
	}
	if len(args) > 0 {
		scene.Model.Path = args[0]
	}
	if scene.Model.Path == "" {
		return config.Scene{}, errNoModel
	}
	return scene, nil
}

func main() {
	err := fang.Execute(
		context.Background(),
		newRootCmd(),
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM),
	)
	if err != nil {
		os.Exit(1)
	}
}
