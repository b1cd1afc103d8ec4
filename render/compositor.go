package render

import (
	"image"
	"image/color"
	"math"
	"slices"

	"github.com/gogpu/overlaycam/internal/logging"
	"github.com/gogpu/overlaycam/layer"
	"github.com/gogpu/overlaycam/surface"
)

// Skip records a layer left out of a composite.
type Skip struct {
	ID  string
	Err error
}

// Report summarises one composite.
type Report struct {
	// Drawn counts layers that were rendered.
	Drawn int

	// Hidden counts layers with zero effective opacity.
	Hidden int

	Skipped []Skip
}

// Complete reports whether no layer was skipped.
func (r Report) Complete() bool {
	return len(r.Skipped) == 0
}

// Compositor draws a frame and a layer snapshot onto a surface.
type Compositor struct {
	renderer *Renderer

	// Background is drawn where the base frame does not cover the target,
	// and everywhere when there is no frame.
	Background color.Color
}

// NewCompositor returns a Compositor using r, or a default Renderer if r is nil.
func NewCompositor(r *Renderer) *Compositor {
	if r == nil {
		r = NewRenderer(nil)
	}
	return &Compositor{renderer: r, Background: color.Black}
}

// Renderer returns the layer renderer.
func (c *Compositor) Renderer() *Renderer {
	return c.renderer
}

// Composite clears target, draws base scaled to cover it, and draws every
// layer of snapshot on top. snapshot is not modified.
func (c *Compositor) Composite(target surface.Surface, base image.Image, snapshot []layer.Layer, images Images) Report {
	target.Clear(c.Background)
	if base != nil {
		DrawCover(target, base)
	}

	layers := slices.Clone(snapshot)
	layer.Sort(layers)

	var rep Report
	w, h := float64(target.Width()), float64(target.Height())
	for _, l := range layers {
		alpha := l.EffectiveOpacity()
		if alpha == 0 {
			rep.Hidden++
			continue
		}
		if err := c.drawLayer(target, l, w, h, alpha, images); err != nil {
			logging.Logger().Debug("render: layer skipped", "id", l.ID, "err", err)
			rep.Skipped = append(rep.Skipped, Skip{ID: l.ID, Err: err})
			continue
		}
		rep.Drawn++
	}
	return rep
}

func (c *Compositor) drawLayer(target surface.Surface, l layer.Layer, w, h, alpha float64, images Images) error {
	rect := layer.Resolve(l, w, h)

	target.Push()
	defer target.Pop()
	target.SetAlpha(alpha)
	if l.Rotation != 0 && !math.IsNaN(l.Rotation) && !math.IsInf(l.Rotation, 0) {
		cx, cy := rect.Center()
		target.RotateAbout(l.Rotation*math.Pi/180, cx, cy)
	}
	return c.renderer.Draw(target, l, rect, images)
}

// DrawCover draws img scaled to cover target, preserving its aspect ratio
// and cropping the excess evenly on both sides.
func DrawCover(target surface.Surface, img image.Image) {
	b := img.Bounds()
	if b.Empty() {
		return
	}
	tw, th := float64(target.Width()), float64(target.Height())
	bw, bh := float64(b.Dx()), float64(b.Dy())
	k := max(tw/bw, th/bh)
	dw, dh := bw*k, bh*k
	target.DrawImage(img, surface.Rect{X: (tw - dw) / 2, Y: (th - dh) / 2, W: dw, H: dh}, nil)
}
