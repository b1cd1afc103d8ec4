// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
)

// LineCap specifies the shape of open path endpoints.
type LineCap uint8

const (
	// LineCapButt specifies a flat line cap (no extension).
	LineCapButt LineCap = iota

	// LineCapSquare specifies a square line cap (extends by half width).
	LineCapSquare
)

// FillStyle defines how to fill a path.
type FillStyle struct {
	// Color is the fill color. A nil color fills black.
	Color color.Color
}

// StrokeStyle defines how to stroke a path.
//
// Joins are mitered, falling back to a square extension of half the width
// for turns sharper than 90 degrees.
type StrokeStyle struct {
	// Color is the stroke color. A nil color strokes black.
	Color color.Color

	// Width is the line width in user units.
	Width float64

	// Cap is the line cap style of open subpaths.
	Cap LineCap
}

// DefaultStrokeStyle returns a StrokeStyle with default values.
// Uses black color, 1px width, butt caps.
func DefaultStrokeStyle() StrokeStyle {
	return StrokeStyle{
		Color: color.Black,
		Width: 1.0,
		Cap:   LineCapButt,
	}
}

// WithColor returns a copy with the specified color.
func (s StrokeStyle) WithColor(c color.Color) StrokeStyle {
	s.Color = c
	return s
}

// WithWidth returns a copy with the specified width.
func (s StrokeStyle) WithWidth(w float64) StrokeStyle {
	s.Width = w
	return s
}

// Filter specifies the interpolation mode for image scaling.
type Filter uint8

const (
	// FilterBilinear uses bilinear interpolation.
	FilterBilinear Filter = iota

	// FilterNearest uses nearest-neighbor interpolation.
	FilterNearest
)

// DrawImageOptions defines options for drawing images.
type DrawImageOptions struct {
	// SrcRect is the source rectangle within the image.
	// If nil, the entire image is used.
	SrcRect *image.Rectangle

	// Alpha is the opacity (0.0 = transparent, 1.0 = opaque), multiplied
	// with the surface alpha.
	Alpha float64

	// Filter is the interpolation mode for scaling.
	Filter Filter
}

// DefaultDrawImageOptions returns DrawImageOptions with default values.
func DefaultDrawImageOptions() *DrawImageOptions {
	return &DrawImageOptions{
		Alpha:  1.0,
		Filter: FilterBilinear,
	}
}

// Align is horizontal text alignment relative to the anchor point.
type Align uint8

const (
	// AlignLeft starts the line at the anchor.
	AlignLeft Align = iota

	// AlignCenter centers the line on the anchor.
	AlignCenter

	// AlignRight ends the line at the anchor.
	AlignRight
)

// TextStyle describes how DrawText renders a string.
type TextStyle struct {
	// Font, when set, is drawn as filled outlines at Size pixels per em
	// and takes precedence over Face.
	Font *sfnt.Font
	Size float64

	// Face supplies glyphs and metrics when Font is nil. DrawText draws
	// nothing without one of them.
	Face font.Face

	// Color is the glyph color. A nil color draws black.
	Color color.Color

	Align Align

	// LineSpacing multiplies the face's line height between lines.
	// Zero means 1.
	LineSpacing float64
}

// Point represents a 2D point with float64 coordinates.
type Point struct {
	X, Y float64
}

// Pt creates a Point from x, y coordinates.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Rect is an axis-aligned rectangle in user space.
type Rect struct {
	X, Y, W, H float64
}

// Options configures surface creation.
type Options struct {
	// Width is the surface width in pixels.
	Width int

	// Height is the surface height in pixels.
	Height int

	// BackgroundColor is the initial background color.
	// Default: transparent
	BackgroundColor color.Color

	// Custom options for specific backends.
	Custom map[string]any
}

// DefaultOptions returns Options with default values.
func DefaultOptions(width, height int) Options {
	return Options{
		Width:  width,
		Height: height,
	}
}
