// Package bitmap provides the pixel surfaces the tinyfx pipeline draws into
// and samples textures from.
package bitmap

import (
	"image"
	"image/color"
)

// Bitmap is a row-major RGBA pixel surface with a clip rectangle and a
// current draw color. The clip rectangle bounds PutPixel, DrawLine and
// FillRect; Set writes anywhere inside the bitmap.
type Bitmap struct {
	width  int
	height int
	Pixels []color.RGBA // Row-major pixel data

	clip  image.Rectangle
	color color.RGBA
}

// New creates a bitmap with the given dimensions. The clip rectangle covers
// the whole bitmap and the draw color is opaque white.
func New(width, height int) *Bitmap {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Bitmap{
		width:  width,
		height: height,
		Pixels: make([]color.RGBA, width*height),
		clip:   image.Rect(0, 0, width, height),
		color:  White,
	}
}

// Width returns the bitmap width in pixels.
func (b *Bitmap) Width() int { return b.width }

// Height returns the bitmap height in pixels.
func (b *Bitmap) Height() int { return b.height }

// Rect returns the full bitmap rectangle.
func (b *Bitmap) Rect() image.Rectangle {
	return image.Rect(0, 0, b.width, b.height)
}

// Clip returns the current clip rectangle.
func (b *Bitmap) Clip() image.Rectangle { return b.clip }

// SetClip sets the clip rectangle, intersected with the bitmap bounds.
func (b *Bitmap) SetClip(r image.Rectangle) {
	b.clip = r.Canon().Intersect(b.Rect())
}

// ResetClip restores the clip rectangle to the whole bitmap.
func (b *Bitmap) ResetClip() {
	b.clip = b.Rect()
}

// Color returns the current draw color.
func (b *Bitmap) Color() color.RGBA { return b.color }

// SetColor sets the current draw color.
func (b *Bitmap) SetColor(c color.RGBA) { b.color = c }

// Clear fills the whole bitmap with a solid color, ignoring the clip rectangle.
func (b *Bitmap) Clear(c color.RGBA) {
	for i := range b.Pixels {
		b.Pixels[i] = c
	}
}

// Set sets a pixel at (x, y) to the given color.
// Bounds checking is performed.
func (b *Bitmap) Set(x, y int, c color.RGBA) {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return
	}
	b.Pixels[y*b.width+x] = c
}

// Get returns the color at (x, y).
// Returns transparent black if out of bounds.
func (b *Bitmap) Get(x, y int) color.RGBA {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return color.RGBA{}
	}
	return b.Pixels[y*b.width+x]
}

// PutPixel plots the draw color at (x, y) if it lies inside the clip rectangle.
func (b *Bitmap) PutPixel(x, y int) {
	if !image.Pt(x, y).In(b.clip) {
		return
	}
	b.Pixels[y*b.width+x] = b.color
}

// DrawLine draws a line from (x0, y0) to (x1, y1) in the draw color using
// Bresenham's algorithm.
func (b *Bitmap) DrawLine(x0, y0, x1, y1 int) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		b.PutPixel(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// FillRect fills r, clipped, with the draw color.
func (b *Bitmap) FillRect(r image.Rectangle) {
	r = r.Canon().Intersect(b.clip)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := b.Pixels[y*b.width : (y+1)*b.width]
		for x := r.Min.X; x < r.Max.X; x++ {
			row[x] = b.color
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// ColorModel implements image.Image.
func (b *Bitmap) ColorModel() color.Model { return color.RGBAModel }

// Bounds implements image.Image.
func (b *Bitmap) Bounds() image.Rectangle { return b.Rect() }

// At implements image.Image.
func (b *Bitmap) At(x, y int) color.Color { return b.Get(x, y) }
