package bitmap

import "image/color"

// Colors for convenience
var (
	Black   = color.RGBA{0, 0, 0, 255}
	White   = color.RGBA{255, 255, 255, 255}
	Red     = color.RGBA{255, 0, 0, 255}
	Green   = color.RGBA{0, 255, 0, 255}
	Blue    = color.RGBA{0, 0, 255, 255}
	Magenta = color.RGBA{255, 0, 255, 255}
)

// RGB creates an opaque color from RGB values.
func RGB(r, g, b uint8) color.RGBA {
	return color.RGBA{r, g, b, 255}
}

// Pack returns c as 0xAARRGGBB.
func Pack(c color.RGBA) uint32 {
	return uint32(c.A)<<24 | uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// Unpack is the inverse of Pack.
func Unpack(v uint32) color.RGBA {
	return color.RGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: uint8(v >> 24),
	}
}

// SameRGB reports whether a and b match, ignoring alpha.
func SameRGB(a, b color.RGBA) bool {
	return a.R == b.R && a.G == b.G && a.B == b.B
}

// Normalize returns the RGB channels of c scaled to [0, 1].
func Normalize(c color.RGBA) (r, g, b float64) {
	return float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255
}

// FromFloat builds an opaque color from channels in [0, 1], clamping and
// rounding each.
func FromFloat(r, g, b float64) color.RGBA {
	return color.RGBA{unit8(r), unit8(g), unit8(b), 255}
}

func unit8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

// Average returns the per-channel mean of a and b, computed by halving each
// channel before adding so no channel overflows.
func Average(a, b color.RGBA) color.RGBA {
	return color.RGBA{
		R: a.R>>1 + b.R>>1,
		G: a.G>>1 + b.G>>1,
		B: a.B>>1 + b.B>>1,
		A: 255,
	}
}

// RGBA creates a color from RGBA values.
func RGBA(r, g, b, a uint8) color.RGBA {
	return color.RGBA{r, g, b, a}
}
