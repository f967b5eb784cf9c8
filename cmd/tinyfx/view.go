package main

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/spf13/cobra"

	"github.com/taigrr/tinyfx/pkg/bitmap"
	"github.com/taigrr/tinyfx/pkg/config"
	"github.com/taigrr/tinyfx/pkg/math3d"
	"github.com/taigrr/tinyfx/pkg/models"
	"github.com/taigrr/tinyfx/pkg/render"
)

const (
	torqueStrength = 3.0
	minDistance    = 1.0
	maxDistance    = 20.0
	orbitStep      = math.Pi / 36
)

const viewControls = `Controls:
  Mouse drag  - Rotate model
  Scroll, +/- - Zoom in/out
  W/S/A/D     - Pitch and yaw
  Arrow keys  - Orbit the camera
  Q/E         - Roll left/right
  Space       - Random spin
  R           - Reset view
  T           - Toggle texture
  X           - Toggle wireframe
  L           - Position light (mouse to aim, click to set)
  M           - Toggle light marker
  ?           - Toggle HUD overlay
  Esc         - Quit`

func newViewCmd(root *rootOptions) *cobra.Command {
	var fps int
	cmd := &cobra.Command{
		Use:   "view [model.obj|model.glb]",
		Short: "View a model interactively in the terminal",
		Long:  "View a model interactively in the terminal.\n\n" + viewControls,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := render.OSFiles{}
			scene, err := root.loadScene(src, args)
			if err != nil {
				return err
			}
			mesh, err := loadMesh(scene, src)
			if err != nil {
				return err
			}
			return runViewer(cmd.Context(), scene, mesh, fps)
		},
	}
	cmd.Flags().IntVar(&fps, "fps", 60, "target frames per second")
	return cmd
}

// ViewState holds the viewer's UI toggles
type ViewState struct {
	TextureEnabled bool
	RenderMode     RenderMode
	LightMode      bool        // aiming the light with the mouse
	LightDir       math3d.Vec3 // unit vector toward the light
	PendingLight   math3d.Vec3 // LightDir while aiming
	ShowHUD        bool
}

// Mode returns the render mode after applying the texture toggle.
func (v *ViewState) Mode() RenderMode {
	if v.RenderMode == RenderModeTextured && !v.TextureEnabled {
		return RenderModeFlat
	}
	return v.RenderMode
}

// ScreenToLightDir maps a cell position to a direction on the hemisphere
// facing the viewer.
func ScreenToLightDir(x, y, width, height int) math3d.Vec3 {
	nx := float64(x)/float64(width)*2 - 1
	ny := float64(y)/float64(height)*2 - 1

	lenSq := nx*nx + ny*ny
	if lenSq > 1 {
		l := math.Sqrt(lenSq)
		nx /= l
		ny /= l
		lenSq = 1
	}
	return math3d.V3(nx, -ny, math.Sqrt(1-lenSq)).Normalize()
}

// viewer is the state of one interactive session. Events and frames run on
// the same goroutine.
type viewer struct {
	scene config.Scene
	mesh  *models.Mesh
	ctx   *render.Context
	fb    *bitmap.Bitmap
	cam   *render.Camera
	spin  *Spin
	state ViewState
	hud   *HUD

	width, height int // terminal cells
	torque        [3]float64

	dragging     bool
	lastX, lastY int
}

func newViewer(scene config.Scene, mesh *models.Mesh, fps int) *viewer {
	v := &viewer{
		scene: scene,
		mesh:  mesh,
		ctx:   render.New(scene.Options()...),
		cam:   scene.NewCamera(),
		spin:  NewSpin(fps),
		hud:   NewHUD(filepath.Base(scene.Model.Path)),
		state: ViewState{
			TextureEnabled: true,
			LightDir:       scene.Light.Direction.V().Negate().Normalize(),
		},
	}
	return v
}

// resize rebinds a framebuffer of two pixel rows per terminal cell.
func (v *viewer) resize(width, height int) error {
	v.width, v.height = width, height
	v.fb = bitmap.New(max(width, 1), max(height*2, 1))
	if err := v.ctx.SetViewport(v.fb); err != nil {
		return err
	}
	return v.scene.Apply(v.ctx)
}

func (v *viewer) zoom(delta float64) {
	v.cam.Zoom(delta, minDistance, maxDistance)
}

// handle applies one terminal event and reports whether the viewer should
// quit.
func (v *viewer) handle(ev uv.Event) (quit bool, err error) {
	switch ev := ev.(type) {
	case uv.WindowSizeEvent:
		return false, v.resize(ev.Width, ev.Height)

	case uv.KeyPressEvent:
		switch {
		case ev.MatchString("esc", "escape"):
			if !v.state.LightMode {
				return true, nil
			}
			v.state.LightMode = false
		case ev.MatchString("ctrl+c"):
			return true, nil
		case ev.MatchString("w"):
			v.torque[axisPitch] = -torqueStrength
		case ev.MatchString("s"):
			v.torque[axisPitch] = torqueStrength
		case ev.MatchString("a"):
			v.torque[axisYaw] = -torqueStrength
		case ev.MatchString("d"):
			v.torque[axisYaw] = torqueStrength
		case ev.MatchString("left"):
			v.cam.Orbit(-orbitStep, 0)
		case ev.MatchString("right"):
			v.cam.Orbit(orbitStep, 0)
		case ev.MatchString("up"):
			v.cam.Orbit(0, orbitStep)
		case ev.MatchString("down"):
			v.cam.Orbit(0, -orbitStep)
		case ev.MatchString("q"):
			v.torque[axisRoll] = -torqueStrength
		case ev.MatchString("e"):
			v.torque[axisRoll] = torqueStrength
		case ev.MatchString("space"):
			v.spin.Impulse(
				(rand.Float64()-0.5)*1.5,
				(rand.Float64()-0.5)*1.5,
				(rand.Float64()-0.5)*1.5,
			)
		case ev.MatchString("r"):
			v.spin.Reset()
			v.torque = [3]float64{}
			v.cam.Place(v.scene.Camera.Position.V())
		case ev.MatchString("+", "="):
			v.zoom(-0.5)
		case ev.MatchString("-", "_"):
			v.zoom(0.5)
		case ev.MatchString("t"):
			v.state.TextureEnabled = !v.state.TextureEnabled
		case ev.MatchString("x"):
			if v.state.RenderMode == RenderModeWireframe {
				v.state.RenderMode = RenderModeTextured
			} else {
				v.state.RenderMode = RenderModeWireframe
			}
		case ev.MatchString("l"):
			v.state.LightMode = true
			v.state.PendingLight = v.state.LightDir
		case ev.MatchString("m"):
			v.scene.Render.LightMarker = !v.scene.Render.LightMarker
		case ev.MatchString("?", "shift+/"):
			v.state.ShowHUD = !v.state.ShowHUD
		}

	case uv.KeyReleaseEvent:
		switch {
		case ev.MatchString("w", "s"):
			v.torque[axisPitch] = 0
		case ev.MatchString("a", "d"):
			v.torque[axisYaw] = 0
		case ev.MatchString("q", "e"):
			v.torque[axisRoll] = 0
		}

	case uv.MouseClickEvent:
		if v.state.LightMode {
			v.state.LightDir = v.state.PendingLight
			v.state.LightMode = false
		} else {
			v.dragging = true
			v.lastX, v.lastY = ev.X, ev.Y
		}

	case uv.MouseReleaseEvent:
		v.dragging = false

	case uv.MouseMotionEvent:
		if v.state.LightMode {
			v.state.PendingLight = ScreenToLightDir(ev.X, ev.Y, v.width, v.height)
		} else if v.dragging {
			dx, dy := ev.X-v.lastX, ev.Y-v.lastY
			v.spin.Impulse(float64(dy)*0.03, float64(dx)*0.03, 0)
			v.lastX, v.lastY = ev.X, ev.Y
		}

	case uv.MouseWheelEvent:
		switch ev.Button {
		case uv.MouseWheelUp:
			v.zoom(-0.5)
		case uv.MouseWheelDown:
			v.zoom(0.5)
		}
	}
	return false, nil
}

// step advances the spin by dt seconds of held-key torque and draws a frame
// into the framebuffer.
func (v *viewer) step(dt float64) (int, error) {
	v.spin.Impulse(v.torque[axisPitch]*dt, v.torque[axisYaw]*dt, v.torque[axisRoll]*dt)
	// Key release events are not always reported
	for i := range v.torque {
		v.torque[i] *= 0.9
	}
	v.spin.Step()

	if err := v.cam.Apply(v.ctx); err != nil {
		return 0, err
	}

	light := v.state.LightDir
	if v.state.LightMode {
		light = v.state.PendingLight
	}
	v.ctx.SetDiffuseDirection(-light.X, -light.Y, -light.Z)

	model := v.spin.Matrix().Mul(v.scene.ModelTransform())
	return drawFrame(v.ctx, v.scene, v.mesh, model, v.state.Mode())
}

// present copies the framebuffer and HUD onto scr.
func (v *viewer) present(scr uv.Screen) {
	v.fb.Draw(scr, uv.Rect(0, 0, v.width, v.height))
	v.hud.Draw(scr, v.width, v.height, &v.state)
}

func runViewer(ctx context.Context, scene config.Scene, mesh *models.Mesh, fps int) error {
	if fps <= 0 {
		return fmt.Errorf("fps must be positive, got %d", fps)
	}

	term := uv.DefaultTerminal()
	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	if err := term.Resize(width, height); err != nil {
		return fmt.Errorf("resize terminal: %w", err)
	}
	// Any-event mouse tracking with SGR coordinates
	fmt.Fprint(os.Stdout, "\x1b[?1003h\x1b[?1006h")

	defer func() {
		fmt.Fprint(os.Stdout, "\x1b[?1003l\x1b[?1006l")
		term.ExitAltScreen()
		term.ShowCursor()
		if err := term.Shutdown(context.Background()); err != nil {
			slog.Warn("terminal shutdown", "err", err)
		}
	}()

	v := newViewer(scene, mesh, fps)
	defer v.ctx.Cleanup()
	if err := v.resize(width, height); err != nil {
		return err
	}
	slog.Debug("viewer started",
		"model", scene.Model.Path,
		"triangles", mesh.TriangleCount(),
		"cells", fmt.Sprintf("%dx%d", width, height),
	)

	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-term.Events():
			if resized, ok := ev.(uv.WindowSizeEvent); ok {
				term.Erase()
				if err := term.Resize(resized.Width, resized.Height); err != nil {
					return fmt.Errorf("resize terminal: %w", err)
				}
			}
			quit, err := v.handle(ev)
			if err != nil {
				return err
			}
			if quit {
				return nil
			}

		case now := <-ticker.C:
			dt := min(now.Sub(last).Seconds(), 0.1)
			last = now

			n, err := v.step(dt)
			if err != nil {
				return err
			}
			v.hud.Frame(now, n)
			v.present(term)
			if err := term.Display(); err != nil {
				return fmt.Errorf("display: %w", err)
			}
		}
	}
}
