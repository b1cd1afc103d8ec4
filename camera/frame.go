package camera

import (
	"image"
	"image/draw"
	"time"

	"github.com/gogpu/gputypes"
)

// Frame is one raw image delivered by a device.
//
// Frames are shared between subscribers and must be treated as read-only.
type Frame struct {
	Width, Height int

	// Stride is the byte distance between rows of Pix.
	Stride int
	Pix    []byte

	// Format is TextureFormatRGBA8Unorm or TextureFormatBGRA8Unorm.
	Format gputypes.TextureFormat

	Sequence  uint64
	Timestamp time.Time
}

// NewFrame copies img into an RGBA frame.
func NewFrame(img image.Image, seq uint64, ts time.Time) *Frame {
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return &Frame{
		Width:     b.Dx(),
		Height:    b.Dy(),
		Stride:    rgba.Stride,
		Pix:       rgba.Pix,
		Format:    gputypes.TextureFormatRGBA8Unorm,
		Sequence:  seq,
		Timestamp: ts,
	}
}

// Bounds returns the frame rectangle.
func (f *Frame) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.Width, f.Height)
}

// Valid reports whether the pixel buffer covers the frame dimensions.
func (f *Frame) Valid() bool {
	if f == nil || f.Width <= 0 || f.Height <= 0 || f.Stride < 4*f.Width {
		return false
	}
	switch f.Format {
	case gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatBGRA8Unorm:
	default:
		return false
	}
	return len(f.Pix) >= f.Stride*(f.Height-1)+4*f.Width
}

// RGBA returns a copy of the frame as an *image.RGBA, swizzling BGRA
// frames. It returns nil for an invalid frame.
func (f *Frame) RGBA() *image.RGBA {
	if !f.Valid() {
		return nil
	}
	img := image.NewRGBA(f.Bounds())
	row := 4 * f.Width
	for y := 0; y < f.Height; y++ {
		src := f.Pix[y*f.Stride : y*f.Stride+row]
		dst := img.Pix[y*img.Stride : y*img.Stride+row]
		copy(dst, src)
		if f.Format == gputypes.TextureFormatBGRA8Unorm {
			for i := 0; i < row; i += 4 {
				dst[i], dst[i+2] = dst[i+2], dst[i]
			}
		}
	}
	return img
}
