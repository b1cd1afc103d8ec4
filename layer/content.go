package layer

import "fmt"

// Content is the variant payload of a layer. It is implemented only by
// *Image, *Text and *Shape.
type Content interface {
	Variant() Variant
	clone() Content
}

// Image is an overlay bitmap. Exactly one of Path or URL is set.
//
// Path may be a plain local path, a "~"-relative path, a file:// URI or a
// data: URI with base64 payload.
type Image struct {
	Path string
	URL  string
}

// Variant implements Content.
func (*Image) Variant() Variant { return VariantImage }

func (c *Image) clone() Content {
	cp := *c
	return &cp
}

// Source returns whichever of URL or Path is set, preferring URL.
func (c *Image) Source() string {
	if c.URL != "" {
		return c.URL
	}
	return c.Path
}

// Align is horizontal text alignment within the layer rectangle.
type Align uint8

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// String returns the wire name of the alignment.
func (a Align) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	}
	return fmt.Sprintf("Align(%d)", uint8(a))
}

// ParseAlign parses "left", "center" or "right". The empty string is left.
func ParseAlign(s string) (Align, error) {
	switch s {
	case "", "left":
		return AlignLeft, nil
	case "center", "centre":
		return AlignCenter, nil
	case "right":
		return AlignRight, nil
	}
	return 0, &ValidationError{Field: "textAlign", Reason: fmt.Sprintf("unknown alignment %q", s)}
}

// Default text style values.
const (
	DefaultFontSize  = 16.0
	DefaultFontColor = "#000000"
)

// Text is a text overlay. Colours are hex tokens parsed at draw time; a bad
// token falls back instead of failing the layer.
type Text struct {
	Text       string
	FontSize   float64
	FontColor  string
	FontFamily string

	// BackgroundColor fills the whole layer rectangle when non-empty.
	BackgroundColor string

	Padding float64
	Align   Align
}

// DefaultText returns a Text with the default style.
func DefaultText() *Text {
	return &Text{FontSize: DefaultFontSize, FontColor: DefaultFontColor}
}

// Variant implements Content.
func (*Text) Variant() Variant { return VariantText }

func (c *Text) clone() Content {
	cp := *c
	return &cp
}

// ShapeKind selects the geometry of a Shape.
type ShapeKind uint8

const (
	ShapeRectangle ShapeKind = iota
	ShapeCircle
	ShapeLine
)

// String returns the wire name of the shape kind.
func (k ShapeKind) String() string {
	switch k {
	case ShapeRectangle:
		return "rectangle"
	case ShapeCircle:
		return "circle"
	case ShapeLine:
		return "line"
	}
	return fmt.Sprintf("ShapeKind(%d)", uint8(k))
}

// ParseShapeKind parses "rectangle", "circle" or "line". The empty string is
// rectangle.
func ParseShapeKind(s string) (ShapeKind, error) {
	switch s {
	case "", "rectangle", "rect":
		return ShapeRectangle, nil
	case "circle":
		return ShapeCircle, nil
	case "line":
		return ShapeLine, nil
	}
	return 0, &ValidationError{Field: "shapeType", Reason: fmt.Sprintf("unknown shape type %q", s)}
}

// Default shape style values.
const (
	DefaultStrokeColor = "#000000"
	DefaultStrokeWidth = 1.0
	DefaultFillColor   = "transparent"
)

// Shape is a vector overlay.
type Shape struct {
	Kind        ShapeKind
	StrokeColor string
	StrokeWidth float64
	FillColor   string
}

// DefaultShape returns a rectangle with the default style.
func DefaultShape() *Shape {
	return &Shape{
		Kind:        ShapeRectangle,
		StrokeColor: DefaultStrokeColor,
		StrokeWidth: DefaultStrokeWidth,
		FillColor:   DefaultFillColor,
	}
}

// Variant implements Content.
func (*Shape) Variant() Variant { return VariantShape }

func (c *Shape) clone() Content {
	cp := *c
	return &cp
}
