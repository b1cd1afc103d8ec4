// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"image"
	"image/color"
	"math"
	"runtime"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

func testFont(t *testing.T) *sfnt.Font {
	t.Helper()
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		t.Fatalf("opentype.Parse() error = %v", err)
	}
	return f
}

func testFace(t *testing.T, size float64) font.Face {
	t.Helper()
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		t.Fatalf("opentype.Parse() error = %v", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		t.Fatalf("opentype.NewFace() error = %v", err)
	}
	t.Cleanup(func() { _ = face.Close() })
	return face
}

// inkBounds returns the bounds of non-white pixels.
func inkBounds(img *image.RGBA) image.Rectangle {
	var r image.Rectangle
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if c := img.RGBAAt(x, y); c.R < 200 {
				r = r.Union(image.Rect(x, y, x+1, y+1))
			}
		}
	}
	return r
}

// TestDrawTextTopAnchored tests that at.Y is the top of the glyph box.
func TestDrawTextTopAnchored(t *testing.T) {
	face := testFace(t, 20)
	s := NewImageSurface(200, 100)
	defer s.Close()
	s.Clear(color.White)

	s.DrawText("Hello", Pt(10, 30), TextStyle{Face: face, Color: color.Black})

	ink := inkBounds(s.Snapshot())
	if ink.Empty() {
		t.Fatal("DrawText drew nothing")
	}
	if ink.Min.Y < 30 {
		t.Errorf("ink top = %d, want >= 30", ink.Min.Y)
	}
	if ink.Min.Y > 40 {
		t.Errorf("ink top = %d, want cap height near the anchor", ink.Min.Y)
	}
	if ink.Min.X < 9 || ink.Min.X > 14 {
		t.Errorf("ink left = %d, want near 10", ink.Min.X)
	}
}

// TestDrawTextAlign tests left, center and right anchoring.
func TestDrawTextAlign(t *testing.T) {
	face := testFace(t, 20)
	w, _ := MeasureText(face, "Align", 1)

	tests := []struct {
		name  string
		align Align
		minX  float64
	}{
		{"left", AlignLeft, 100},
		{"center", AlignCenter, 100 - w/2},
		{"right", AlignRight, 100 - w},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewImageSurface(200, 50)
			defer s.Close()
			s.Clear(color.White)

			s.DrawText("Align", Pt(100, 10), TextStyle{Face: face, Align: tt.align})

			ink := inkBounds(s.Snapshot())
			if d := float64(ink.Min.X) - tt.minX; d < -2 || d > 4 {
				t.Errorf("ink left = %d, want near %.1f", ink.Min.X, tt.minX)
			}
		})
	}
}

// TestDrawTextMultiline tests that lines stack downward.
func TestDrawTextMultiline(t *testing.T) {
	face := testFace(t, 16)
	s := NewImageSurface(100, 100)
	defer s.Close()
	s.Clear(color.White)

	s.DrawText("A\nB\nC", Pt(5, 5), TextStyle{Face: face})

	ink := inkBounds(s.Snapshot())
	lineHeight := float64(face.Metrics().Height) / 64
	if float64(ink.Dy()) < 2*lineHeight {
		t.Errorf("ink height = %d, want at least two line heights (%.1f)", ink.Dy(), 2*lineHeight)
	}

	_, h1 := MeasureText(face, "A", 1)
	_, h3 := MeasureText(face, "A\nB\nC", 1)
	if h3 <= h1 {
		t.Errorf("MeasureText height of 3 lines = %v, want > %v", h3, h1)
	}
}

// TestDrawTextAlphaAndNoFace tests alpha scoping and missing faces.
func TestDrawTextAlphaAndNoFace(t *testing.T) {
	s := NewImageSurface(100, 40)
	defer s.Close()
	s.Clear(color.White)

	s.DrawText("nothing", Pt(5, 5), TextStyle{})
	if ink := inkBounds(s.Snapshot()); !ink.Empty() {
		t.Errorf("DrawText without face drew %v", ink)
	}

	s.SetAlpha(0)
	s.DrawText("hidden", Pt(5, 5), TextStyle{Face: testFace(t, 16)})
	if ink := inkBounds(s.Snapshot()); !ink.Empty() {
		t.Errorf("DrawText at zero alpha drew %v", ink)
	}
}

// TestDrawTextOutlines tests outline text placement against the face path.
func TestDrawTextOutlines(t *testing.T) {
	f := testFont(t)
	face := testFace(t, 20)

	draw := func(style TextStyle) image.Rectangle {
		s := NewImageSurface(200, 100)
		defer s.Close()
		s.Clear(color.White)
		s.DrawText("Hello", Pt(10, 30), style)
		return inkBounds(s.Snapshot())
	}
	outline := draw(TextStyle{Font: f, Size: 20, Color: color.Black})
	tiled := draw(TextStyle{Face: face, Color: color.Black})

	if outline.Empty() {
		t.Fatal("DrawText with Font drew nothing")
	}
	if outline.Min.Y < 30 || outline.Min.Y > 40 {
		t.Errorf("outline ink top = %d, want in [30, 40]", outline.Min.Y)
	}
	for _, d := range []int{
		outline.Min.X - tiled.Min.X, outline.Max.X - tiled.Max.X,
		outline.Min.Y - tiled.Min.Y, outline.Max.Y - tiled.Max.Y,
	} {
		if d < -3 || d > 3 {
			t.Errorf("outline ink %v, want within 3px of face ink %v", outline, tiled)
			break
		}
	}
}

// TestDrawTextOutlinesAlignAndRotate tests right alignment and that outline
// text follows the transform.
func TestDrawTextOutlinesAlignAndRotate(t *testing.T) {
	f := testFont(t)

	s := NewImageSurface(200, 200)
	defer s.Close()
	s.Clear(color.White)
	s.DrawText("Wide", Pt(150, 20), TextStyle{Font: f, Size: 24, Align: AlignRight})
	ink := inkBounds(s.Snapshot())
	if ink.Max.X > 152 || ink.Max.X < 140 {
		t.Errorf("right-aligned ink right = %d, want near 150", ink.Max.X)
	}

	s.Clear(color.White)
	s.RotateAbout(math.Pi/2, 100, 100)
	s.DrawText("Wide", Pt(100, 100), TextStyle{Font: f, Size: 24})
	ink = inkBounds(s.Snapshot())
	if ink.Empty() {
		t.Fatal("rotated DrawText drew nothing")
	}
	if ink.Dy() <= ink.Dx() {
		t.Errorf("rotated ink %v, want taller than wide", ink)
	}
}

func allocatedBytes(fn func()) uint64 {
	var before, after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)
	fn()
	runtime.ReadMemStats(&after)
	return after.TotalAlloc - before.TotalAlloc
}

// TestDrawTextHugeSizeBounded tests that huge font sizes on a small surface
// allocate in proportion to the surface, not the text.
func TestDrawTextHugeSizeBounded(t *testing.T) {
	const size = 4000
	f := testFont(t)

	// Center the stem of an I on the surface.
	var buf sfnt.Buffer
	ppem := fixed.I(size)
	g, err := f.GlyphIndex(&buf, 'I')
	if err != nil {
		t.Fatalf("GlyphIndex() error = %v", err)
	}
	b, _, err := f.GlyphBounds(&buf, g, ppem, font.HintingNone)
	if err != nil {
		t.Fatalf("GlyphBounds() error = %v", err)
	}
	met, err := f.Metrics(&buf, ppem, font.HintingNone)
	if err != nil {
		t.Fatalf("Metrics() error = %v", err)
	}
	at := Pt(
		50-fixedFloat(b.Min.X+b.Max.X)/2,
		50-fixedFloat(met.Ascent)-fixedFloat(b.Min.Y+b.Max.Y)/2,
	)

	s := NewImageSurface(100, 100)
	defer s.Close()
	s.Clear(color.White)

	n := allocatedBytes(func() {
		s.DrawText("IIIIIIII", at, TextStyle{Font: f, Size: size, Color: color.Black})
	})
	if n > 8<<20 {
		t.Errorf("DrawText with Font allocated %d bytes, want < 8MiB", n)
	}
	if c := s.Image().RGBAAt(50, 50); c.R > 50 {
		t.Errorf("pixel (50,50) = %v, want glyph ink", c)
	}

	face := testFace(t, size)
	s.Clear(color.White)
	n = allocatedBytes(func() {
		s.DrawText("Hello, world", Pt(0, 0), TextStyle{Face: face})
	})
	if n > 128<<20 {
		t.Errorf("DrawText with Face allocated %d bytes, want < 128MiB", n)
	}
}
