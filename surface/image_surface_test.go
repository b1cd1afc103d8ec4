// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"image"
	"image/color"
	"math"
	"testing"
)

var (
	red   = color.RGBA{255, 0, 0, 255}
	blue  = color.RGBA{0, 0, 255, 255}
	black = color.RGBA{0, 0, 0, 255}
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, c)
		}
	}
	return img
}

func isWhite(c color.RGBA) bool {
	return c.R == 255 && c.G == 255 && c.B == 255
}

func isDark(c color.RGBA) bool {
	return c.R < 64 && c.G < 64 && c.B < 64 && c.A == 255
}

// TestNewImageSurface tests surface creation.
func TestNewImageSurface(t *testing.T) {
	s := NewImageSurface(100, 50)
	defer s.Close()

	if s.Width() != 100 {
		t.Errorf("Width() = %d, want 100", s.Width())
	}
	if s.Height() != 50 {
		t.Errorf("Height() = %d, want 50", s.Height())
	}
	if s.Alpha() != 1 {
		t.Errorf("Alpha() = %v, want 1", s.Alpha())
	}
}

// TestNewImageSurfaceInvalidSize tests handling of invalid dimensions.
func TestNewImageSurfaceInvalidSize(t *testing.T) {
	s := NewImageSurface(0, -3)
	defer s.Close()

	if s.Width() != 1 || s.Height() != 1 {
		t.Errorf("expected 1x1, got %dx%d", s.Width(), s.Height())
	}
}

// TestImageSurfaceClear tests the Clear operation.
func TestImageSurfaceClear(t *testing.T) {
	s := NewImageSurface(10, 10)
	defer s.Close()

	s.SetAlpha(0.2)
	s.Clear(red)

	if c := s.Snapshot().RGBAAt(5, 5); c != red {
		t.Errorf("pixel = %v, want %v", c, red)
	}
}

// TestImageSurfaceFillRectangle tests filling a rectangle.
func TestImageSurfaceFillRectangle(t *testing.T) {
	s := NewImageSurface(100, 100)
	defer s.Close()
	s.Clear(color.White)

	path := NewPath()
	path.Rectangle(25, 25, 50, 50)
	s.Fill(path, FillStyle{Color: red})

	img := s.Snapshot()
	if c := img.RGBAAt(10, 10); !isWhite(c) {
		t.Errorf("corner pixel = %v, should be white", c)
	}
	if c := img.RGBAAt(50, 50); c != red {
		t.Errorf("center pixel = %v, should be red", c)
	}
	if c := img.RGBAAt(25, 25); c != red {
		t.Errorf("edge pixel = %v, should be red", c)
	}
	if c := img.RGBAAt(75, 75); !isWhite(c) {
		t.Errorf("pixel past edge = %v, should be white", c)
	}
}

// TestImageSurfaceFillCircle tests filling a circle.
func TestImageSurfaceFillCircle(t *testing.T) {
	s := NewImageSurface(100, 100)
	defer s.Close()
	s.Clear(color.White)

	path := NewPath()
	path.Circle(50, 50, 30)
	s.Fill(path, FillStyle{Color: blue})

	img := s.Snapshot()
	if c := img.RGBAAt(50, 50); c != blue {
		t.Errorf("center pixel = %v, should be blue", c)
	}
	if c := img.RGBAAt(50, 25); c != blue {
		t.Errorf("inside top pixel = %v, should be blue", c)
	}
	if c := img.RGBAAt(25, 25); !isWhite(c) {
		t.Errorf("pixel outside circle = %v, should be white", c)
	}
}

// TestImageSurfaceFillOffSurface tests paths that leave the surface.
func TestImageSurfaceFillOffSurface(t *testing.T) {
	s := NewImageSurface(20, 20)
	defer s.Close()
	s.Clear(color.White)

	path := NewPath()
	path.Rectangle(-50, -50, 60, 60)
	s.Fill(path, FillStyle{Color: red})

	img := s.Snapshot()
	if c := img.RGBAAt(0, 0); c != red {
		t.Errorf("pixel (0, 0) = %v, should be red", c)
	}
	if c := img.RGBAAt(12, 12); !isWhite(c) {
		t.Errorf("pixel (12, 12) = %v, should be white", c)
	}

	far := NewPath()
	far.Rectangle(100, 100, 10, 10)
	s.Fill(far, FillStyle{Color: red})
}

// TestImageSurfaceStrokeRectangle tests stroked outlines with mitered corners.
func TestImageSurfaceStrokeRectangle(t *testing.T) {
	s := NewImageSurface(100, 100)
	defer s.Close()
	s.Clear(color.White)

	path := NewPath()
	path.Rectangle(20, 20, 60, 60)
	s.Stroke(path, StrokeStyle{Color: black, Width: 4})

	img := s.Snapshot()
	for _, pt := range []image.Point{{20, 50}, {79, 50}, {50, 20}, {50, 79}, {19, 19}, {80, 80}} {
		if c := img.RGBAAt(pt.X, pt.Y); !isDark(c) {
			t.Errorf("stroke pixel %v = %v, should be dark", pt, c)
		}
	}
	for _, pt := range []image.Point{{50, 50}, {10, 10}, {30, 30}} {
		if c := img.RGBAAt(pt.X, pt.Y); !isWhite(c) {
			t.Errorf("pixel %v = %v, should be white", pt, c)
		}
	}
}

// TestImageSurfaceStrokeLine tests butt-capped open strokes.
func TestImageSurfaceStrokeLine(t *testing.T) {
	s := NewImageSurface(100, 100)
	defer s.Close()
	s.Clear(color.White)

	path := NewPath()
	path.MoveTo(10, 50)
	path.LineTo(90, 50)
	s.Stroke(path, StrokeStyle{Color: black, Width: 2})

	img := s.Snapshot()
	if c := img.RGBAAt(50, 49); !isDark(c) {
		t.Errorf("pixel above axis = %v, should be dark", c)
	}
	if c := img.RGBAAt(50, 50); !isDark(c) {
		t.Errorf("pixel below axis = %v, should be dark", c)
	}
	if c := img.RGBAAt(5, 50); !isWhite(c) {
		t.Errorf("pixel before start = %v, should be white", c)
	}
	if c := img.RGBAAt(50, 45); !isWhite(c) {
		t.Errorf("pixel off line = %v, should be white", c)
	}
}

// TestImageSurfacePushPop tests that state is scoped.
func TestImageSurfacePushPop(t *testing.T) {
	s := NewImageSurface(10, 10)
	defer s.Close()

	s.Push()
	s.SetAlpha(0.5)
	s.RotateAbout(1, 5, 5)
	s.Push()
	s.SetAlpha(2)
	if s.Alpha() != 1 {
		t.Errorf("SetAlpha(2) gave %v, want clamp to 1", s.Alpha())
	}
	s.Pop()
	if s.Alpha() != 0.5 {
		t.Errorf("inner Pop restored alpha %v, want 0.5", s.Alpha())
	}
	s.Pop()
	if s.Alpha() != 1 || !s.Matrix().IsIdentity() {
		t.Errorf("outer Pop left alpha %v, matrix %v", s.Alpha(), s.Matrix())
	}

	s.Pop()
	if s.Alpha() != 1 {
		t.Error("unbalanced Pop should be a no-op")
	}
}

// TestImageSurfaceAlphaFill tests that the surface alpha scales fills.
func TestImageSurfaceAlphaFill(t *testing.T) {
	s := NewImageSurface(20, 20)
	defer s.Close()
	s.Clear(color.White)

	s.SetAlpha(0.5)
	path := NewPath()
	path.Rectangle(0, 0, 20, 20)
	s.Fill(path, FillStyle{Color: black})

	c := s.Snapshot().RGBAAt(10, 10)
	if c.R < 120 || c.R > 136 || c.A != 255 {
		t.Errorf("half-alpha black over white = %v, want mid grey", c)
	}

	s.SetAlpha(0)
	s.Fill(path, FillStyle{Color: black})
	if got := s.Snapshot().RGBAAt(10, 10); got != c {
		t.Errorf("zero alpha fill changed pixel from %v to %v", c, got)
	}
}

// TestImageSurfaceRotateAbout tests clockwise rotation about a pivot.
func TestImageSurfaceRotateAbout(t *testing.T) {
	s := NewImageSurface(100, 100)
	defer s.Close()
	s.Clear(color.White)

	s.RotateAbout(math.Pi/2, 50, 50)
	path := NewPath()
	path.Rectangle(10, 45, 80, 10)
	s.Fill(path, FillStyle{Color: red})

	img := s.Snapshot()
	if c := img.RGBAAt(50, 15); c != red {
		t.Errorf("pixel (50, 15) = %v, want red after rotation", c)
	}
	if c := img.RGBAAt(15, 50); !isWhite(c) {
		t.Errorf("pixel (15, 50) = %v, want white after rotation", c)
	}
}

// TestImageSurfaceDrawImageStretch tests that images fill the destination.
func TestImageSurfaceDrawImageStretch(t *testing.T) {
	s := NewImageSurface(50, 50)
	defer s.Close()
	s.Clear(color.White)

	s.DrawImage(solid(2, 2, red), Rect{X: 10, Y: 10, W: 20, H: 20}, nil)

	img := s.Snapshot()
	for _, pt := range []image.Point{{11, 11}, {20, 20}, {28, 28}} {
		if c := img.RGBAAt(pt.X, pt.Y); c != red {
			t.Errorf("pixel %v = %v, want red", pt, c)
		}
	}
	for _, pt := range []image.Point{{5, 5}, {35, 35}, {20, 40}} {
		if c := img.RGBAAt(pt.X, pt.Y); !isWhite(c) {
			t.Errorf("pixel %v = %v, want white", pt, c)
		}
	}
}

// TestImageSurfaceDrawImageTranslate tests the unscaled path.
func TestImageSurfaceDrawImageTranslate(t *testing.T) {
	s := NewImageSurface(20, 20)
	defer s.Close()
	s.Clear(color.White)

	s.DrawImage(solid(3, 3, blue), Rect{X: 5, Y: 5, W: 3, H: 3}, nil)

	img := s.Snapshot()
	if c := img.RGBAAt(6, 6); c != blue {
		t.Errorf("pixel (6, 6) = %v, want blue", c)
	}
	if c := img.RGBAAt(4, 4); !isWhite(c) {
		t.Errorf("pixel (4, 4) = %v, want white", c)
	}
	if c := img.RGBAAt(8, 8); !isWhite(c) {
		t.Errorf("pixel (8, 8) = %v, want white", c)
	}
}

// TestImageSurfaceDrawImageAlpha tests option and surface alpha together.
func TestImageSurfaceDrawImageAlpha(t *testing.T) {
	tests := []struct {
		name         string
		surfaceAlpha float64
		optsAlpha    float64
	}{
		{"option alpha", 1, 0.5},
		{"surface alpha", 0.5, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewImageSurface(20, 20)
			defer s.Close()
			s.Clear(color.White)

			s.SetAlpha(tt.surfaceAlpha)
			s.DrawImage(solid(4, 4, black), Rect{W: 20, H: 20}, &DrawImageOptions{Alpha: tt.optsAlpha})

			c := s.Snapshot().RGBAAt(10, 10)
			if c.R < 120 || c.R > 136 {
				t.Errorf("pixel = %v, want mid grey", c)
			}
		})
	}
}

// TestImageSurfaceDrawImageEmpty tests degenerate destinations and sources.
func TestImageSurfaceDrawImageEmpty(t *testing.T) {
	s := NewImageSurface(10, 10)
	defer s.Close()
	s.Clear(color.White)

	src := solid(2, 2, red)
	s.DrawImage(src, Rect{W: 0, H: 10}, nil)
	s.DrawImage(src, Rect{W: 10, H: -1}, nil)
	empty := image.Rect(5, 5, 5, 5)
	s.DrawImage(src, Rect{W: 10, H: 10}, &DrawImageOptions{Alpha: 1, SrcRect: &empty})
	s.DrawImage(nil, Rect{W: 10, H: 10}, nil)

	if c := s.Snapshot().RGBAAt(5, 5); !isWhite(c) {
		t.Errorf("pixel = %v, want untouched white", c)
	}
}

// TestImageSurfaceSnapshotIsCopy tests snapshot independence.
func TestImageSurfaceSnapshotIsCopy(t *testing.T) {
	s := NewImageSurface(4, 4)
	defer s.Close()
	s.Clear(red)

	snap := s.Snapshot()
	snap.SetRGBA(0, 0, blue)
	if c := s.Image().RGBAAt(0, 0); c != red {
		t.Errorf("surface pixel changed to %v through snapshot", c)
	}
}

// TestImageSurfaceClose tests that Close is idempotent.
func TestImageSurfaceClose(t *testing.T) {
	s := NewImageSurface(10, 10)
	if err := s.Close(); err != nil {
		t.Errorf("first Close() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if s.Snapshot() != nil {
		t.Error("Snapshot() after Close should be nil")
	}
	s.Clear(red)
	s.Fill(NewPath(), FillStyle{})
}

// TestImageSurfaceFromImage tests rendering into an existing sub-image.
func TestImageSurfaceFromImage(t *testing.T) {
	parent := image.NewRGBA(image.Rect(0, 0, 20, 20))
	sub := parent.SubImage(image.Rect(10, 10, 20, 20)).(*image.RGBA)

	s := NewImageSurfaceFromImage(sub)
	if s.Width() != 10 || s.Height() != 10 {
		t.Fatalf("size = %dx%d, want 10x10", s.Width(), s.Height())
	}

	path := NewPath()
	path.Rectangle(0, 0, 5, 5)
	s.Fill(path, FillStyle{Color: red})

	if c := parent.RGBAAt(12, 12); c != red {
		t.Errorf("parent pixel (12, 12) = %v, want red", c)
	}
	if c := parent.RGBAAt(2, 2); c.A != 0 {
		t.Errorf("parent pixel (2, 2) = %v, want transparent", c)
	}
	if c := s.Snapshot().RGBAAt(2, 2); c != red {
		t.Errorf("snapshot pixel (2, 2) = %v, want red", c)
	}
}
