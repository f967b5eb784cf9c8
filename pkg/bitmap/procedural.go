package bitmap

import "image/color"

// NewChecker creates a checkerboard bitmap with cells of checkSize pixels.
func NewChecker(width, height, checkSize int, c1, c2 color.RGBA) *Bitmap {
	if checkSize < 1 {
		checkSize = 1
	}
	b := New(width, height)
	for y := range height {
		for x := range width {
			if (x/checkSize+y/checkSize)%2 == 0 {
				b.Set(x, y, c1)
			} else {
				b.Set(x, y, c2)
			}
		}
	}
	return b
}

// NewGradient creates a horizontal gradient from left to right.
func NewGradient(width, height int, left, right color.RGBA) *Bitmap {
	b := New(width, height)
	span := float64(max(width-1, 1))
	for y := range height {
		for x := range width {
			t := float64(x) / span
			b.Set(x, y, lerpColor(left, right, t))
		}
	}
	return b
}

func lerpColor(a, b color.RGBA, t float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(a.R)*(1-t) + float64(b.R)*t),
		G: uint8(float64(a.G)*(1-t) + float64(b.G)*t),
		B: uint8(float64(a.B)*(1-t) + float64(b.B)*t),
		A: uint8(float64(a.A)*(1-t) + float64(b.A)*t),
	}
}
