package layer

// Patch is a partial layer update. Nil fields are left unchanged.
//
// Variant patches apply only when they match the existing layer's variant;
// a TextPatch sent to an image layer is ignored.
type Patch struct {
	ZIndex   *int
	X, Y     *float64
	Width    *Dimension
	Height   *Dimension
	Opacity  *float64
	Rotation *float64

	Image *ImagePatch
	Text  *TextPatch
	Shape *ShapePatch
}

// ImagePatch updates an image source. Setting either field replaces the
// source entirely.
type ImagePatch struct {
	Path *string
	URL  *string
}

// TextPatch updates text content and style.
type TextPatch struct {
	Text            *string
	FontSize        *float64
	FontColor       *string
	FontFamily      *string
	BackgroundColor *string
	Padding         *float64
	Align           *Align
}

// ShapePatch updates shape geometry and style.
type ShapePatch struct {
	Kind        *ShapeKind
	StrokeColor *string
	StrokeWidth *float64
	FillColor   *string
}

// Apply returns a copy of l with p applied. ID and Sequence are never changed.
func (p Patch) Apply(l Layer) Layer {
	l = l.Clone()
	set(&l.ZIndex, p.ZIndex)
	set(&l.X, p.X)
	set(&l.Y, p.Y)
	set(&l.Width, p.Width)
	set(&l.Height, p.Height)
	set(&l.Opacity, p.Opacity)
	set(&l.Rotation, p.Rotation)

	switch c := l.Content.(type) {
	case *Image:
		if p.Image != nil && (p.Image.Path != nil || p.Image.URL != nil) {
			c.Path, c.URL = "", ""
			set(&c.Path, p.Image.Path)
			set(&c.URL, p.Image.URL)
		}
	case *Text:
		if tp := p.Text; tp != nil {
			set(&c.Text, tp.Text)
			set(&c.FontSize, tp.FontSize)
			set(&c.FontColor, tp.FontColor)
			set(&c.FontFamily, tp.FontFamily)
			set(&c.BackgroundColor, tp.BackgroundColor)
			set(&c.Padding, tp.Padding)
			set(&c.Align, tp.Align)
		}
	case *Shape:
		if sp := p.Shape; sp != nil {
			set(&c.Kind, sp.Kind)
			set(&c.StrokeColor, sp.StrokeColor)
			set(&c.StrokeWidth, sp.StrokeWidth)
			set(&c.FillColor, sp.FillColor)
		}
	}
	return l
}

// IsZero reports whether p changes nothing.
func (p Patch) IsZero() bool {
	return p.ZIndex == nil && p.X == nil && p.Y == nil &&
		p.Width == nil && p.Height == nil &&
		p.Opacity == nil && p.Rotation == nil &&
		p.Image == nil && p.Text == nil && p.Shape == nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
