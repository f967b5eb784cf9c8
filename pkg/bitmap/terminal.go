package bitmap

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// halfBlock paints its foreground in the top half of a cell.
const halfBlock = "▀"

// Draw copies the bitmap into the cells of area, two pixel rows per cell:
// the upper pixel becomes the foreground of a half block and the lower one
// its background. Columns past the bitmap width are left untouched.
func (b *Bitmap) Draw(scr uv.Screen, area uv.Rectangle) {
	cols := min(area.Dx(), b.width)
	for row := range area.Dy() {
		for x := range cols {
			scr.SetCell(area.Min.X+x, area.Min.Y+row, &uv.Cell{
				Content: halfBlock,
				Width:   1,
				Style: uv.Style{
					Fg: opaque(b.Get(x, 2*row)),
					Bg: opaque(b.Get(x, 2*row+1)),
				},
			})
		}
	}
}

// opaque returns c, or nil for a fully transparent pixel so the terminal
// default shows through.
func opaque(c color.RGBA) color.Color {
	if c.A == 0 {
		return nil
	}
	return c
}
