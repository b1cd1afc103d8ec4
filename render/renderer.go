package render

import (
	"errors"
	"fmt"
	"image"
	"math"
	"sync"

	"github.com/gogpu/overlaycam/fonts"
	"github.com/gogpu/overlaycam/hexcolor"
	"github.com/gogpu/overlaycam/layer"
	"github.com/gogpu/overlaycam/surface"
)

var (
	// ErrImageNotReady is returned when an image layer's pixels are not
	// available yet.
	ErrImageNotReady = errors.New("render: image not ready")

	// ErrUnknownVariant is returned for a layer without a recognised payload.
	ErrUnknownVariant = errors.New("render: unknown layer variant")
)

// Images resolves image layer payloads to decoded pixels without blocking.
type Images interface {
	Lookup(img *layer.Image) (image.Image, bool)
}

// ImageMap is an Images backed by a map keyed by the payload's source.
type ImageMap map[string]image.Image

// Lookup implements Images.
func (m ImageMap) Lookup(img *layer.Image) (image.Image, bool) {
	if img == nil {
		return nil, false
	}
	v, ok := m[img.Source()]
	return v, ok
}

var defaultBook = sync.OnceValue(func() *fonts.Book { return fonts.New() })

// Renderer draws single layers.
type Renderer struct {
	book *fonts.Book
}

// NewRenderer returns a Renderer resolving text fonts from book.
// A nil book uses a shared Book holding the Go fonts.
func NewRenderer(book *fonts.Book) *Renderer {
	if book == nil {
		book = defaultBook()
	}
	return &Renderer{book: book}
}

// Fonts returns the font book used for text layers.
func (r *Renderer) Fonts() *fonts.Book {
	return r.book
}

// Draw renders l into rect on target. Opacity and rotation are the caller's
// concern. images may be nil when the layer is not an image.
func (r *Renderer) Draw(target surface.Surface, l layer.Layer, rect layer.Rect, images Images) error {
	switch c := l.Content.(type) {
	case *layer.Text:
		if c == nil {
			break
		}
		r.drawText(target, c, rect)
		return nil
	case *layer.Shape:
		if c == nil {
			break
		}
		drawShape(target, c, rect)
		return nil
	case *layer.Image:
		if c == nil {
			break
		}
		return drawImage(target, c, rect, images)
	}
	return fmt.Errorf("%w: %T", ErrUnknownVariant, l.Content)
}

func (r *Renderer) drawText(target surface.Surface, t *layer.Text, rect layer.Rect) {
	if t.BackgroundColor != "" {
		if bg := hexcolor.ParseOr(t.BackgroundColor, hexcolor.Transparent); bg.A != 0 {
			p := surface.NewPath()
			p.Rectangle(rect.X, rect.Y, rect.W, rect.H)
			target.Fill(p, surface.FillStyle{Color: bg})
		}
	}
	if t.Text == "" {
		return
	}

	size := t.FontSize
	if !(size > 0) || math.IsInf(size, 0) {
		size = layer.DefaultFontSize
	}
	f, _ := r.book.Font(t.FontFamily)
	if f == nil {
		return
	}

	at := surface.Pt(rect.X+t.Padding, rect.Y+t.Padding)
	align := surface.AlignLeft
	switch t.Align {
	case layer.AlignCenter:
		at.X = rect.X + rect.W/2
		align = surface.AlignCenter
	case layer.AlignRight:
		at.X = rect.X + rect.W - t.Padding
		align = surface.AlignRight
	}
	target.DrawText(t.Text, at, surface.TextStyle{
		Font:  f,
		Size:  size,
		Color: hexcolor.ParseOr(t.FontColor, hexcolor.Black),
		Align: align,
	})
}

func drawShape(target surface.Surface, s *layer.Shape, rect layer.Rect) {
	stroke := surface.StrokeStyle{
		Color: hexcolor.ParseOr(s.StrokeColor, hexcolor.Black),
		Width: s.StrokeWidth,
	}
	fill := hexcolor.ParseOr(s.FillColor, hexcolor.Transparent)

	p := surface.NewPath()
	switch s.Kind {
	case layer.ShapeLine:
		p.MoveTo(rect.X, rect.Y)
		p.LineTo(rect.X+rect.W, rect.Y+rect.H)
		strokePath(target, p, stroke)
		return
	case layer.ShapeCircle:
		if rect.Empty() {
			return
		}
		cx, cy := rect.Center()
		p.Circle(cx, cy, min(rect.W, rect.H)/2)
	default:
		if rect.Empty() {
			return
		}
		p.Rectangle(rect.X, rect.Y, rect.W, rect.H)
	}

	if fill.A != 0 {
		target.Fill(p, surface.FillStyle{Color: fill})
	}
	strokePath(target, p, stroke)
}

func strokePath(target surface.Surface, p *surface.Path, style surface.StrokeStyle) {
	if !(style.Width > 0) || math.IsInf(style.Width, 0) {
		return
	}
	target.Stroke(p, style)
}

func drawImage(target surface.Surface, img *layer.Image, rect layer.Rect, images Images) error {
	if images == nil {
		return ErrImageNotReady
	}
	pix, ok := images.Lookup(img)
	if !ok || pix == nil {
		return ErrImageNotReady
	}
	target.DrawImage(pix, surface.Rect{X: rect.X, Y: rect.Y, W: rect.W, H: rect.H}, nil)
	return nil
}
