// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

// ImageSurface is a CPU-based surface that renders to an *image.RGBA.
//
// Paths are rasterized with golang.org/x/image/vector, which gives
// anti-aliased coverage. Images are resampled through
// golang.org/x/image/draw under the full affine transform, and text is
// rendered to a glyph tile that takes the same route, so rotation and
// alpha apply uniformly to everything drawn.
//
// Example:
//
//	s := surface.NewImageSurface(800, 600)
//	defer s.Close()
//
//	s.Clear(color.White)
//	path := surface.NewPath()
//	path.Circle(400, 300, 100)
//	s.Fill(path, surface.FillStyle{Color: color.RGBA{255, 0, 0, 255}})
//
//	img := s.Snapshot()
type ImageSurface struct {
	width  int
	height int
	img    *image.RGBA

	ras *vector.Rasterizer

	matrix Matrix
	alpha  float64
	stack  []state

	// closed tracks if Close has been called
	closed bool
}

type state struct {
	matrix Matrix
	alpha  float64
}

// NewImageSurface creates a new CPU-based surface with the given dimensions.
func NewImageSurface(width, height int) *ImageSurface {
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}
	return newImageSurface(image.NewRGBA(image.Rect(0, 0, width, height)))
}

// NewImageSurfaceFromImage creates a surface backed by an existing image.
// The surface will render into the provided image directly.
func NewImageSurfaceFromImage(img *image.RGBA) *ImageSurface {
	return newImageSurface(img)
}

func newImageSurface(img *image.RGBA) *ImageSurface {
	b := img.Bounds()
	if b.Min != (image.Point{}) {
		// Rebase so surface coordinates start at zero; Pix already begins at b.Min.
		img = &image.RGBA{Pix: img.Pix, Stride: img.Stride, Rect: image.Rect(0, 0, b.Dx(), b.Dy())}
	}
	return &ImageSurface{
		width:  b.Dx(),
		height: b.Dy(),
		img:    img,
		ras:    &vector.Rasterizer{},
		matrix: Identity(),
		alpha:  1,
	}
}

// Width returns the surface width.
func (s *ImageSurface) Width() int {
	return s.width
}

// Height returns the surface height.
func (s *ImageSurface) Height() int {
	return s.height
}

// Clear fills the entire surface with the given color, ignoring the
// transform and alpha.
func (s *ImageSurface) Clear(c color.Color) {
	if s.closed {
		return
	}
	if c == nil {
		c = color.Transparent
	}
	draw.Draw(s.img, s.img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

// Push saves the current transform and alpha.
func (s *ImageSurface) Push() {
	s.stack = append(s.stack, state{matrix: s.matrix, alpha: s.alpha})
}

// Pop restores the state saved by the matching Push.
// Pop without a matching Push is a no-op.
func (s *ImageSurface) Pop() {
	if len(s.stack) == 0 {
		return
	}
	top := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	s.matrix, s.alpha = top.matrix, top.alpha
}

// SetAlpha sets the alpha multiplied into every subsequent draw.
// Values are clamped to [0, 1].
func (s *ImageSurface) SetAlpha(a float64) {
	switch {
	case math.IsNaN(a) || a < 0:
		a = 0
	case a > 1:
		a = 1
	}
	s.alpha = a
}

// Alpha returns the current alpha.
func (s *ImageSurface) Alpha() float64 {
	return s.alpha
}

// Transform multiplies the current transform by m. m applies first.
func (s *ImageSurface) Transform(m Matrix) {
	s.matrix = s.matrix.Multiply(m)
}

// RotateAbout rotates subsequent drawing by angle radians about (x, y).
func (s *ImageSurface) RotateAbout(angle, x, y float64) {
	s.Transform(Translate(x, y))
	s.Transform(Rotate(angle))
	s.Transform(Translate(-x, -y))
}

// Matrix returns the current transform.
func (s *ImageSurface) Matrix() Matrix {
	return s.matrix
}

// Fill fills the given path using the specified style.
func (s *ImageSurface) Fill(path *Path, style FillStyle) {
	if s.closed || path == nil || path.IsEmpty() {
		return
	}
	src, ok := s.source(style.Color)
	if !ok {
		return
	}

	m := s.matrix
	pts := make([]Point, len(path.points))
	for i, pt := range path.points {
		pts[i] = m.TransformPoint(pt)
	}
	r, ok := s.prepare(pts)
	if !ok {
		return
	}

	off := func(pt Point) (float32, float32) {
		return float32(pt.X - float64(r.Min.X)), float32(pt.Y - float64(r.Min.Y))
	}
	i := 0
	path.walk(func(v verb, _ []Point) {
		switch v {
		case verbMoveTo:
			// vector does not close the previous subpath on MoveTo.
			s.ras.ClosePath()
			s.ras.MoveTo(off(pts[i]))
		case verbLineTo:
			s.ras.LineTo(off(pts[i]))
		case verbQuadTo:
			bx, by := off(pts[i])
			cx, cy := off(pts[i+1])
			s.ras.QuadTo(bx, by, cx, cy)
		case verbCubicTo:
			bx, by := off(pts[i])
			cx, cy := off(pts[i+1])
			dx, dy := off(pts[i+2])
			s.ras.CubeTo(bx, by, cx, cy, dx, dy)
		case verbClose:
			s.ras.ClosePath()
		}
		i += verbPoints[v]
	})
	s.ras.ClosePath()
	s.ras.Draw(s.img, r, src, image.Point{})
}

// Stroke strokes the given path using the specified style.
// The width is in user units and scales with the transform.
func (s *ImageSurface) Stroke(path *Path, style StrokeStyle) {
	if s.closed || path == nil || path.IsEmpty() {
		return
	}
	src, ok := s.source(style.Color)
	if !ok {
		return
	}

	m := s.matrix
	quads := expandStroke(flatten(path, m.scaleFactor()), style)
	if len(quads) == 0 {
		return
	}
	pts := make([]Point, 0, 4*len(quads))
	for _, q := range quads {
		for _, pt := range q {
			pts = append(pts, m.TransformPoint(pt))
		}
	}
	r, ok := s.prepare(pts)
	if !ok {
		return
	}

	ox, oy := float64(r.Min.X), float64(r.Min.Y)
	for i := 0; i < len(pts); i += 4 {
		s.ras.MoveTo(float32(pts[i].X-ox), float32(pts[i].Y-oy))
		for _, pt := range pts[i+1 : i+4] {
			s.ras.LineTo(float32(pt.X-ox), float32(pt.Y-oy))
		}
		s.ras.ClosePath()
	}
	s.ras.Draw(s.img, r, src, image.Point{})
}

// DrawImage draws the whole of img, or opts.SrcRect of it, stretched into
// dst under the current transform.
func (s *ImageSurface) DrawImage(img image.Image, dst Rect, opts *DrawImageOptions) {
	if s.closed || img == nil || !(dst.W > 0 && dst.H > 0) {
		return
	}
	if opts == nil {
		opts = DefaultDrawImageOptions()
	}

	sr := img.Bounds()
	if opts.SrcRect != nil {
		sr = opts.SrcRect.Intersect(sr)
	}
	if sr.Empty() {
		return
	}

	alpha := s.alpha * opts.Alpha
	if !(alpha > 0) {
		return
	}

	m := s.matrix.
		Multiply(Translate(dst.X, dst.Y)).
		Multiply(Scale(dst.W/float64(sr.Dx()), dst.H/float64(sr.Dy()))).
		Multiply(Translate(-float64(sr.Min.X), -float64(sr.Min.Y)))

	var o *draw.Options
	if alpha < 1 {
		o = &draw.Options{SrcMask: image.NewUniform(color.Alpha16{A: uint16(alpha * 0xffff)})}
	}

	if o == nil && m.IsTranslation() && m.C == math.Trunc(m.C) && m.F == math.Trunc(m.F) {
		dr := sr.Add(image.Pt(int(m.C), int(m.F)))
		draw.Draw(s.img, dr, img, sr.Min, draw.Over)
		return
	}

	var t draw.Transformer = draw.BiLinear
	if opts.Filter == FilterNearest {
		t = draw.NearestNeighbor
	}
	t.Transform(s.img, m.Aff3(), img, sr, draw.Over, o)
}

// Flush ensures all pending operations are complete.
// For ImageSurface, this is a no-op.
func (s *ImageSurface) Flush() error {
	return nil
}

// Snapshot returns a copy of the current surface contents.
func (s *ImageSurface) Snapshot() *image.RGBA {
	if s.closed {
		return nil
	}
	result := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	draw.Draw(result, result.Bounds(), s.img, image.Point{}, draw.Src)
	return result
}

// Close releases resources associated with the surface.
func (s *ImageSurface) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.img = nil
	s.ras = nil
	s.stack = nil
	return nil
}

// Image returns the underlying image.RGBA.
// This is a direct reference, not a copy.
func (s *ImageSurface) Image() *image.RGBA {
	return s.img
}

// source returns a uniform premultiplied by the surface alpha, or false if
// nothing would be drawn.
func (s *ImageSurface) source(c color.Color) (*image.Uniform, bool) {
	if c == nil {
		c = color.Black
	}
	r, g, b, a := c.RGBA()
	if a == 0 || s.alpha <= 0 {
		return nil, false
	}
	k := s.alpha
	//nolint:gosec // G115: safe - scaled values stay within [0, 0xffff]
	return image.NewUniform(color.RGBA64{
		R: uint16(float64(r) * k),
		G: uint16(float64(g) * k),
		B: uint16(float64(b) * k),
		A: uint16(float64(a) * k),
	}), true
}

// prepare resets the rasterizer to the device bounds of pts clipped to the
// surface. Callers offset their points by the returned rectangle's Min.
func (s *ImageSurface) prepare(pts []Point) (image.Rectangle, bool) {
	minX, minY, maxX, maxY := pointBounds(pts)
	if math.IsNaN(minX+minY+maxX+maxY) {
		return image.Rectangle{}, false
	}
	r := image.Rect(
		int(math.Floor(max(minX, -1))), int(math.Floor(max(minY, -1))),
		int(math.Ceil(min(maxX, float64(s.width)+1))), int(math.Ceil(min(maxY, float64(s.height)+1))),
	).Intersect(image.Rect(0, 0, s.width, s.height))
	if r.Empty() {
		return image.Rectangle{}, false
	}
	s.ras.Reset(r.Dx(), r.Dy())
	return r, true
}

// Verify ImageSurface implements Surface interface.
var _ Surface = (*ImageSurface)(nil)
