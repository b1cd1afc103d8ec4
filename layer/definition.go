package layer

// Definition is the flat wire form of a layer, as exchanged with the command
// layer. Absent fields take the layer defaults on create and are left
// unchanged on update.
type Definition struct {
	ID       string   `json:"id,omitempty" yaml:"id,omitempty"`
	Type     string   `json:"type,omitempty" yaml:"type,omitempty"`
	ZIndex   *int     `json:"zIndex,omitempty" yaml:"zIndex,omitempty"`
	X        *float64 `json:"x,omitempty" yaml:"x,omitempty"`
	Y        *float64 `json:"y,omitempty" yaml:"y,omitempty"`
	Width    *float64 `json:"width,omitempty" yaml:"width,omitempty"`
	Height   *float64 `json:"height,omitempty" yaml:"height,omitempty"`
	Opacity  *float64 `json:"opacity,omitempty" yaml:"opacity,omitempty"`
	Rotation *float64 `json:"rotation,omitempty" yaml:"rotation,omitempty"`

	ImagePath *string `json:"imagePath,omitempty" yaml:"imagePath,omitempty"`
	ImageURL  *string `json:"imageUrl,omitempty" yaml:"imageUrl,omitempty"`

	Text            *string  `json:"text,omitempty" yaml:"text,omitempty"`
	FontSize        *float64 `json:"fontSize,omitempty" yaml:"fontSize,omitempty"`
	FontColor       *string  `json:"fontColor,omitempty" yaml:"fontColor,omitempty"`
	FontFamily      *string  `json:"fontFamily,omitempty" yaml:"fontFamily,omitempty"`
	TextAlign       *string  `json:"textAlign,omitempty" yaml:"textAlign,omitempty"`
	BackgroundColor *string  `json:"backgroundColor,omitempty" yaml:"backgroundColor,omitempty"`
	Padding         *float64 `json:"padding,omitempty" yaml:"padding,omitempty"`

	ShapeType   *string  `json:"shapeType,omitempty" yaml:"shapeType,omitempty"`
	StrokeColor *string  `json:"strokeColor,omitempty" yaml:"strokeColor,omitempty"`
	StrokeWidth *float64 `json:"strokeWidth,omitempty" yaml:"strokeWidth,omitempty"`
	FillColor   *string  `json:"fillColor,omitempty" yaml:"fillColor,omitempty"`
}

// Layer builds a validated layer from d.
func (d Definition) Layer() (Layer, error) {
	v, err := ParseVariant(d.Type)
	if err != nil {
		return Layer{}, err
	}

	l := Layer{ID: d.ID, Opacity: 1}
	switch v {
	case VariantImage:
		l.Content = &Image{}
	case VariantText:
		l.Content = DefaultText()
	case VariantShape:
		l.Content = DefaultShape()
	}

	p, err := d.Patch()
	if err != nil {
		return Layer{}, err
	}
	l = p.Apply(l)
	if err := Validate(l); err != nil {
		return Layer{}, err
	}
	return l, nil
}

// Patch builds a partial update from the fields present in d. Type and ID
// are ignored. Variant fields are attached to every variant patch they
// belong to, so the patch applies to whatever variant the target layer has.
func (d Definition) Patch() (Patch, error) {
	p := Patch{
		ZIndex:   d.ZIndex,
		X:        d.X,
		Y:        d.Y,
		Opacity:  d.Opacity,
		Rotation: d.Rotation,
	}
	if d.Width != nil {
		p.Width = &Dimension{V: *d.Width, Valid: true}
	}
	if d.Height != nil {
		p.Height = &Dimension{V: *d.Height, Valid: true}
	}

	if d.ImagePath != nil || d.ImageURL != nil {
		p.Image = &ImagePatch{Path: d.ImagePath, URL: d.ImageURL}
	}

	if d.Text != nil || d.FontSize != nil || d.FontColor != nil || d.FontFamily != nil ||
		d.TextAlign != nil || d.BackgroundColor != nil || d.Padding != nil {
		tp := &TextPatch{
			Text:            d.Text,
			FontSize:        d.FontSize,
			FontColor:       d.FontColor,
			FontFamily:      d.FontFamily,
			BackgroundColor: d.BackgroundColor,
			Padding:         d.Padding,
		}
		if d.TextAlign != nil {
			a, err := ParseAlign(*d.TextAlign)
			if err != nil {
				return Patch{}, err
			}
			tp.Align = &a
		}
		p.Text = tp
	}

	if d.ShapeType != nil || d.StrokeColor != nil || d.StrokeWidth != nil || d.FillColor != nil {
		sp := &ShapePatch{
			StrokeColor: d.StrokeColor,
			StrokeWidth: d.StrokeWidth,
			FillColor:   d.FillColor,
		}
		if d.ShapeType != nil {
			k, err := ParseShapeKind(*d.ShapeType)
			if err != nil {
				return Patch{}, err
			}
			sp.Kind = &k
		}
		p.Shape = sp
	}
	return p, nil
}

// DefinitionOf returns the wire form of l with every field present.
func DefinitionOf(l Layer) Definition {
	d := Definition{
		ID:       l.ID,
		Type:     l.Variant().String(),
		ZIndex:   ptr(l.ZIndex),
		X:        ptr(l.X),
		Y:        ptr(l.Y),
		Opacity:  ptr(l.Opacity),
		Rotation: ptr(l.Rotation),
	}
	if l.Width.Valid {
		d.Width = ptr(l.Width.V)
	}
	if l.Height.Valid {
		d.Height = ptr(l.Height.V)
	}
	switch c := l.Content.(type) {
	case *Image:
		if c.Path != "" {
			d.ImagePath = ptr(c.Path)
		}
		if c.URL != "" {
			d.ImageURL = ptr(c.URL)
		}
	case *Text:
		d.Text = ptr(c.Text)
		d.FontSize = ptr(c.FontSize)
		d.FontColor = ptr(c.FontColor)
		d.FontFamily = ptr(c.FontFamily)
		d.TextAlign = ptr(c.Align.String())
		d.BackgroundColor = ptr(c.BackgroundColor)
		d.Padding = ptr(c.Padding)
	case *Shape:
		d.ShapeType = ptr(c.Kind.String())
		d.StrokeColor = ptr(c.StrokeColor)
		d.StrokeWidth = ptr(c.StrokeWidth)
		d.FillColor = ptr(c.FillColor)
	}
	return d
}

func ptr[T any](v T) *T { return &v }
