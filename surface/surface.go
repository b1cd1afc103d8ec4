// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"image"
	"image/color"
)

// Surface is the drawing capability the compositor renders through.
//
// A Surface carries a current transform and alpha. Push saves both and Pop
// restores them, so per-layer state never leaks into the next draw.
// Everything drawn (paths, images and text) is transformed by the current
// matrix and multiplied by the current alpha.
//
// Surfaces are NOT thread-safe. Each surface should be used from a single
// goroutine, or external synchronization must be used.
//
// Example usage:
//
//	s := surface.NewImageSurface(800, 600)
//	defer s.Close()
//
//	s.Clear(color.White)
//	s.Push()
//	s.SetAlpha(0.5)
//	s.RotateAbout(math.Pi/4, 400, 300)
//	s.Fill(path, surface.FillStyle{Color: color.RGBA{255, 0, 0, 255}})
//	s.Pop()
//	img := s.Snapshot()
type Surface interface {
	// Width returns the surface width in pixels.
	Width() int

	// Height returns the surface height in pixels.
	Height() int

	// Clear fills the entire surface with the given color.
	// It ignores the current transform and alpha.
	Clear(c color.Color)

	// Fill fills the given path using the specified style.
	// The path is not modified or consumed.
	Fill(path *Path, style FillStyle)

	// Stroke strokes the given path using the specified style.
	// The path is not modified or consumed.
	Stroke(path *Path, style StrokeStyle)

	// DrawImage draws img stretched to fill dst. If opts is nil, default
	// options are used. A dst with non-positive width or height draws nothing.
	DrawImage(img image.Image, dst Rect, opts *DrawImageOptions)

	// DrawText draws s with the top of its glyph box at at.Y, aligned on
	// at.X according to style.Align.
	DrawText(s string, at Point, style TextStyle)

	// Push saves the current transform and alpha.
	Push()

	// Pop restores the most recently pushed transform and alpha.
	Pop()

	// SetAlpha sets the opacity applied to subsequent drawing, in [0, 1].
	SetAlpha(a float64)

	// Alpha returns the current opacity.
	Alpha() float64

	// Transform multiplies the current transform by m.
	Transform(m Matrix)

	// RotateAbout rotates subsequent drawing by angle radians about (x, y).
	// Positive angles turn clockwise on screen.
	RotateAbout(angle, x, y float64)

	// Flush ensures all pending drawing operations are complete.
	// For CPU surfaces, this is typically a no-op.
	Flush() error

	// Snapshot returns the current surface contents as an RGBA image.
	// The returned image is a copy; modifications to it do not affect the surface.
	Snapshot() *image.RGBA

	// Close releases all resources associated with the surface.
	// After Close, the surface must not be used.
	// Close is idempotent; multiple calls are safe.
	Close() error
}
