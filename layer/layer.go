// Package layer defines the overlay layer model and the store that orders it.
//
// A Layer carries the geometry, opacity, rotation and draw order shared by
// every overlay, plus exactly one variant payload ([Image], [Text] or [Shape])
// in its Content field. Layers live in a [Store], which assigns identities and
// insertion sequences and hands out immutable, render-ordered snapshots.
//
// # Geometry units
//
// X, Y, Width and Height use one rule: a value strictly less than 1 is a
// fraction of the target surface dimension, any other value is pixels.
// Note that 1.0 is therefore one pixel, not 100%.
package layer

import (
	"fmt"
	"math"
)

// Variant identifies which payload a layer carries.
type Variant uint8

const (
	// VariantImage is a bitmap overlay.
	VariantImage Variant = iota + 1

	// VariantText is a text overlay.
	VariantText

	// VariantShape is a rectangle, circle or line overlay.
	VariantShape
)

// String returns the wire name of the variant.
func (v Variant) String() string {
	switch v {
	case VariantImage:
		return "image"
	case VariantText:
		return "text"
	case VariantShape:
		return "shape"
	}
	return fmt.Sprintf("Variant(%d)", uint8(v))
}

// ParseVariant parses a wire variant name.
func ParseVariant(s string) (Variant, error) {
	switch s {
	case "image":
		return VariantImage, nil
	case "text":
		return VariantText, nil
	case "shape":
		return VariantShape, nil
	}
	return 0, &ValidationError{Field: "type", Reason: fmt.Sprintf("unknown layer type %q", s)}
}

// Dimension is an optional width or height. The zero value is unset, which
// resolves to the full target dimension.
type Dimension struct {
	V     float64
	Valid bool
}

// Dim returns a set Dimension.
func Dim(v float64) Dimension {
	return Dimension{V: v, Valid: true}
}

// Layer is one overlay unit.
//
// Construct layers with [NewImage], [NewText] or [NewShape], which fill in the
// documented defaults. A zero Layer has Opacity 0 and draws nothing.
type Layer struct {
	// ID is unique within a Store. Empty IDs are generated on Add.
	ID string

	// ZIndex orders layers; higher draws later (on top).
	ZIndex int

	// Sequence is the insertion sequence assigned by the Store. It breaks
	// ZIndex ties: lower sequence draws first. Values set by callers are
	// overwritten on Add.
	Sequence uint64

	// X and Y are the origin of the layer, in the unit rule of the package doc.
	X, Y float64

	// Width and Height default to the full target dimension when unset.
	Width, Height Dimension

	// Opacity is clamped to [0, 1] before use.
	Opacity float64

	// Rotation is in degrees, clockwise on screen, about the resolved center.
	Rotation float64

	// Content is the variant payload: *Image, *Text or *Shape.
	Content Content
}

// Variant returns the variant of the layer's content, or 0 if it has none.
func (l Layer) Variant() Variant {
	if l.Content == nil {
		return 0
	}
	return l.Content.Variant()
}

// Clone returns a deep copy of l.
func (l Layer) Clone() Layer {
	if l.Content != nil {
		l.Content = l.Content.clone()
	}
	return l
}

// EffectiveOpacity returns Opacity clamped to [0, 1]. NaN is treated as 0.
func (l Layer) EffectiveOpacity() float64 {
	switch {
	case math.IsNaN(l.Opacity) || l.Opacity <= 0:
		return 0
	case l.Opacity >= 1:
		return 1
	}
	return l.Opacity
}

// NewImage returns an image layer reading from a local path or embedded data.
func NewImage(path string) Layer {
	return Layer{Opacity: 1, Content: &Image{Path: path}}
}

// NewRemoteImage returns an image layer fetched from url.
func NewRemoteImage(url string) Layer {
	return Layer{Opacity: 1, Content: &Image{URL: url}}
}

// NewText returns a text layer with the default text style.
func NewText(s string) Layer {
	t := DefaultText()
	t.Text = s
	return Layer{Opacity: 1, Content: t}
}

// NewShape returns a shape layer of the given kind with the default style.
func NewShape(kind ShapeKind) Layer {
	s := DefaultShape()
	s.Kind = kind
	return Layer{Opacity: 1, Content: s}
}

// At returns l moved to (x, y).
func (l Layer) At(x, y float64) Layer {
	l.X, l.Y = x, y
	return l
}

// Sized returns l with explicit width and height.
func (l Layer) Sized(w, h float64) Layer {
	l.Width, l.Height = Dim(w), Dim(h)
	return l
}

// OnZ returns l with the given z-index.
func (l Layer) OnZ(z int) Layer {
	l.ZIndex = z
	return l
}

// WithID returns l with the given identity.
func (l Layer) WithID(id string) Layer {
	l.ID = id
	return l
}
