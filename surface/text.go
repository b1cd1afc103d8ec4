// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"image"
	"image/color"
	"math"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// DrawText draws s with its glyph box top at at.Y. at.X is the left edge,
// center or right edge of each line depending on style.Align. Lines split on
// '\n' are stacked by the font's line height.
//
// With style.Font set, glyph outlines are filled like any other path. With
// only style.Face, each line is rendered into a tile clipped to the visible
// part of the surface and blitted through DrawImage. Either way the current
// transform and alpha apply, and memory use is bounded by the surface size
// rather than the font size.
func (s *ImageSurface) DrawText(text string, at Point, style TextStyle) {
	if s.closed || text == "" || s.alpha <= 0 {
		return
	}
	c := style.Color
	if c == nil {
		c = color.Black
	}
	switch {
	case style.Font != nil:
		s.drawOutlines(text, at, style, c)
	case style.Face != nil:
		s.drawTiles(text, at, style, c)
	}
}

func lineSpacing(v float64) float64 {
	if v > 0 {
		return v
	}
	return 1
}

func alignX(x, advance float64, a Align) float64 {
	switch a {
	case AlignCenter:
		return x - advance/2
	case AlignRight:
		return x - advance
	}
	return x
}

// drawOutlines fills every glyph of text as one path.
func (s *ImageSurface) drawOutlines(text string, at Point, style TextStyle, c color.Color) {
	if !(style.Size > 0) || math.IsInf(style.Size, 0) {
		return
	}
	f := style.Font
	ppem := fixed.Int26_6(math.Round(style.Size * 64))
	if ppem <= 0 {
		return
	}
	var buf sfnt.Buffer
	met, err := f.Metrics(&buf, ppem, font.HintingNone)
	if err != nil {
		return
	}
	lineHeight := fixedFloat(met.Height) * lineSpacing(style.LineSpacing)

	p := NewPath()
	for i, line := range strings.Split(text, "\n") {
		x := alignX(at.X, outlineAdvance(f, &buf, ppem, line), style.Align)
		baseline := at.Y + float64(i)*lineHeight + fixedFloat(met.Ascent)
		prev, first := sfnt.GlyphIndex(0), true
		for _, r := range line {
			g, err := f.GlyphIndex(&buf, r)
			if err != nil {
				continue
			}
			if !first {
				if k, err := f.Kern(&buf, prev, g, ppem, font.HintingNone); err == nil {
					x += fixedFloat(k)
				}
			}
			if segs, err := f.LoadGlyph(&buf, g, ppem, nil); err == nil {
				appendSegments(p, segs, x, baseline)
			}
			if adv, err := f.GlyphAdvance(&buf, g, ppem, font.HintingNone); err == nil {
				x += fixedFloat(adv)
			}
			prev, first = g, false
		}
	}
	s.Fill(p, FillStyle{Color: c})
}

// outlineAdvance returns the kerned advance width of line.
func outlineAdvance(f *sfnt.Font, buf *sfnt.Buffer, ppem fixed.Int26_6, line string) float64 {
	var adv fixed.Int26_6
	prev, first := sfnt.GlyphIndex(0), true
	for _, r := range line {
		g, err := f.GlyphIndex(buf, r)
		if err != nil {
			continue
		}
		if !first {
			if k, err := f.Kern(buf, prev, g, ppem, font.HintingNone); err == nil {
				adv += k
			}
		}
		if a, err := f.GlyphAdvance(buf, g, ppem, font.HintingNone); err == nil {
			adv += a
		}
		prev, first = g, false
	}
	return fixedFloat(adv)
}

// appendSegments adds glyph segments, whose y axis points down from the
// baseline, to p with the glyph origin at (x, y).
func appendSegments(p *Path, segs sfnt.Segments, x, y float64) {
	pt := func(v fixed.Point26_6) (float64, float64) {
		return x + fixedFloat(v.X), y + fixedFloat(v.Y)
	}
	for _, seg := range segs {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			p.MoveTo(pt(seg.Args[0]))
		case sfnt.SegmentOpLineTo:
			p.LineTo(pt(seg.Args[0]))
		case sfnt.SegmentOpQuadTo:
			bx, by := pt(seg.Args[0])
			cx, cy := pt(seg.Args[1])
			p.QuadTo(bx, by, cx, cy)
		case sfnt.SegmentOpCubeTo:
			bx, by := pt(seg.Args[0])
			cx, cy := pt(seg.Args[1])
			dx, dy := pt(seg.Args[2])
			p.CubicTo(bx, by, cx, cy, dx, dy)
		}
	}
}

// drawTiles renders each line of text through face into a tile.
func (s *ImageSurface) drawTiles(text string, at Point, style TextStyle, c color.Color) {
	m := s.matrix
	if math.Abs(m.A*m.E-m.B*m.D) < 1e-10 {
		return
	}
	visible := userBounds(m.Invert(), s.width, s.height)
	face := style.Face
	met := face.Metrics()
	lineHeight := fixedFloat(met.Height) * lineSpacing(style.LineSpacing)
	src := image.NewUniform(c)
	for i, line := range strings.Split(text, "\n") {
		adv := font.MeasureString(face, line)
		h := (met.Ascent + met.Descent).Ceil()
		margin := (met.Height / 4).Ceil()
		w := adv.Ceil() + 2*margin
		if w <= 2*margin || h <= 0 {
			continue
		}
		x := alignX(at.X, fixedFloat(adv), style.Align) - float64(margin)
		y := at.Y + float64(i)*lineHeight

		// Only the part of the tile that lands on the surface is allocated.
		clip := image.Rect(
			int(math.Floor(visible.X-x)), int(math.Floor(visible.Y-y)),
			int(math.Ceil(visible.X+visible.W-x)), int(math.Ceil(visible.Y+visible.H-y)),
		).Intersect(image.Rect(0, 0, w, h))
		if clip.Empty() {
			continue
		}
		tile := image.NewRGBA(clip)
		drawGlyphs(tile, face, line, fixed.Point26_6{X: fixed.I(margin), Y: met.Ascent}, src)
		s.DrawImage(tile, Rect{
			X: x + float64(clip.Min.X),
			Y: y + float64(clip.Min.Y),
			W: float64(clip.Dx()),
			H: float64(clip.Dy()),
		}, nil)
	}
}

// drawGlyphs draws line at dot like font.Drawer, but skips glyphs that
// fall outside dst so that they are never rasterized.
func drawGlyphs(dst *image.RGBA, face font.Face, line string, dot fixed.Point26_6, src image.Image) {
	clip := dst.Bounds()
	prev := rune(-1)
	for _, r := range line {
		if prev >= 0 {
			dot.X += face.Kern(prev, r)
		}
		b, adv, ok := face.GlyphBounds(r)
		if ok {
			gb := image.Rect(
				(dot.X+b.Min.X).Floor(), (dot.Y+b.Min.Y).Floor(),
				(dot.X+b.Max.X).Ceil(), (dot.Y+b.Max.Y).Ceil(),
			)
			if gb.Overlaps(clip) {
				if dr, mask, mp, _, ok := face.Glyph(dot, r); ok {
					draw.DrawMask(dst, dr, src, image.Point{}, mask, mp, draw.Over)
				}
			}
		}
		dot.X += adv
		prev = r
	}
}

// userBounds returns the user-space bounding box of the w by h device area
// under the inverse transform inv, grown by a pixel for filtering.
func userBounds(inv Matrix, w, h int) Rect {
	pts := []Point{
		inv.TransformPoint(Pt(0, 0)),
		inv.TransformPoint(Pt(float64(w), 0)),
		inv.TransformPoint(Pt(0, float64(h))),
		inv.TransformPoint(Pt(float64(w), float64(h))),
	}
	minX, minY, maxX, maxY := pointBounds(pts)
	return Rect{X: minX - 1, Y: minY - 1, W: maxX - minX + 2, H: maxY - minY + 2}
}

// MeasureText returns the advance width of the widest line of s and the
// stacked height of all lines.
func MeasureText(face font.Face, s string, lineSpacing float64) (w, h float64) {
	if face == nil || s == "" {
		return 0, 0
	}
	if lineSpacing <= 0 {
		lineSpacing = 1
	}
	met := face.Metrics()
	lines := strings.Split(s, "\n")
	for _, line := range lines {
		w = max(w, fixedFloat(font.MeasureString(face, line)))
	}
	h = fixedFloat(met.Height)*lineSpacing*float64(len(lines)-1) + fixedFloat(met.Ascent+met.Descent)
	return w, h
}

func fixedFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
