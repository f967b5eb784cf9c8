package main

import (
	"fmt"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
)

// ANSI styling for HUD text
const (
	reset    = "\x1b[0m"
	bold     = "\x1b[1m"
	dim      = "\x1b[2m"
	bgBlack  = "\x1b[40m"
	fgWhite  = "\x1b[97m"
	fgGreen  = "\x1b[92m"
	fgYellow = "\x1b[93m"
	fgCyan   = "\x1b[96m"
)

// HUD is the overlay with model info and mode toggles
type HUD struct {
	filename  string
	triangles int
	fps       float64
	frames    int
	since     time.Time
}

// NewHUD creates a HUD for the named model.
func NewHUD(filename string) *HUD {
	return &HUD{filename: filename, since: time.Now()}
}

// Frame records a drawn frame and its triangle count.
func (h *HUD) Frame(now time.Time, triangles int) {
	h.triangles = triangles
	h.frames++
	if elapsed := now.Sub(h.since); elapsed >= time.Second {
		h.fps = float64(h.frames) / elapsed.Seconds()
		h.frames = 0
		h.since = now
	}
}

// Draw writes the overlay into the top and bottom rows of scr.
func (h *HUD) Draw(scr uv.Screen, width, height int, vs *ViewState) {
	text := func(col, row int, s string) {
		col = max(col, 0)
		if col >= width || row < 0 || row >= height {
			return
		}
		uv.NewStyledString(s).Draw(scr, uv.Rect(col, row, width-col, 1))
	}

	// Light mode always shows its indicator
	if vs.LightMode {
		msg := " ◉ LIGHT MODE - move mouse to aim, click to set, Esc to cancel "
		text((width-len([]rune(msg)))/2, height-1, bgBlack+bold+fgYellow+msg+reset)
		return
	}
	if !vs.ShowHUD {
		return
	}

	text(0, 0, fmt.Sprintf("%s%s %.0f FPS %s", bgBlack, fgGreen, h.fps, reset))
	text((width-len(h.filename)-2)/2, 0, fmt.Sprintf("%s%s%s %s %s", bold, bgBlack, fgWhite, h.filename, reset))
	tris := fmt.Sprintf(" %d tris ", h.triangles)
	text(width-len(tris), 0, bgBlack+fgCyan+bold+tris+reset)

	check := func(on bool) string {
		if on {
			return "[✓]"
		}
		return "[ ]"
	}
	modes := fmt.Sprintf("%s%s %s Texture  %s X-Ray (wireframe) %s",
		bgBlack, fgWhite,
		check(vs.TextureEnabled && vs.RenderMode != RenderModeWireframe),
		check(vs.RenderMode == RenderModeWireframe),
		reset)
	text(0, height-1, modes)

	hint := " L: position light "
	text(width-len(hint), height-1, bgBlack+dim+fgYellow+hint+reset)
}
