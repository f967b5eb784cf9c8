package bitmap

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // Register JPEG decoder
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
)

// ErrUnknownFormat is returned when saving to an extension with no encoder.
var ErrUnknownFormat = errors.New("bitmap: unknown image format")

// Decode reads a PNG, JPEG or BMP image from r.
func Decode(r io.Reader) (*Bitmap, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return FromImage(img), nil
}

// DecodeBytes decodes an image held in memory.
func DecodeBytes(data []byte) (*Bitmap, error) {
	return Decode(bytes.NewReader(data))
}

// Load reads and decodes an image file.
func Load(path string) (*Bitmap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// FromImage copies any image.Image into a new bitmap.
func FromImage(img image.Image) *Bitmap {
	bounds := img.Bounds()
	b := New(bounds.Dx(), bounds.Dy())

	for y := range b.height {
		for x := range b.width {
			r, g, bl, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			// RGBA returns 16-bit values, scale to 8-bit
			b.Pixels[y*b.width+x] = RGBA(uint8(r>>8), uint8(g>>8), uint8(bl>>8), uint8(a>>8))
		}
	}
	return b
}

// ToImage copies the bitmap into an *image.RGBA.
func (b *Bitmap) ToImage() *image.RGBA {
	img := image.NewRGBA(b.Rect())
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			img.SetRGBA(x, y, b.Pixels[y*b.width+x])
		}
	}
	return img
}

// EncodePNG writes the bitmap as PNG.
func (b *Bitmap) EncodePNG(w io.Writer) error {
	return png.Encode(w, b.ToImage())
}

// EncodeBMP writes the bitmap as BMP.
func (b *Bitmap) EncodeBMP(w io.Writer) error {
	return bmp.Encode(w, b.ToImage())
}

// Save writes the bitmap to path, choosing PNG or BMP from the extension.
func (b *Bitmap) Save(path string) error {
	var encode func(io.Writer) error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		encode = b.EncodePNG
	case ".bmp":
		encode = b.EncodeBMP
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
