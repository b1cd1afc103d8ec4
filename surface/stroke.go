// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import "math"

// polyline is one flattened subpath.
type polyline struct {
	pts    []Point
	closed bool
}

// flatten converts p into polylines. scale is the device scale of the
// current transform; curves are split more finely as it grows.
func flatten(p *Path, scale float64) []polyline {
	var (
		out       []polyline
		pen       Point
		start     Point
		needStart = true
	)
	add := func(pt Point) {
		if needStart {
			out = append(out, polyline{pts: []Point{pen}})
			start = pen
			needStart = false
		}
		last := &out[len(out)-1]
		last.pts = append(last.pts, pt)
		pen = pt
	}

	p.walk(func(v verb, pts []Point) {
		switch v {
		case verbMoveTo:
			pen = pts[0]
			needStart = true
		case verbLineTo:
			add(pts[0])
		case verbQuadTo:
			p0 := pen
			n := curveSteps(scale, p0, pts[0], pts[1])
			for i := 1; i <= n; i++ {
				add(quadAt(p0, pts[0], pts[1], float64(i)/float64(n)))
			}
		case verbCubicTo:
			p0 := pen
			n := curveSteps(scale, p0, pts[0], pts[1], pts[2])
			for i := 1; i <= n; i++ {
				add(cubicAt(p0, pts[0], pts[1], pts[2], float64(i)/float64(n)))
			}
		case verbClose:
			if !needStart {
				out[len(out)-1].closed = true
				pen = start
				needStart = true
			}
		}
	})
	return out
}

// curveSteps picks a segment count from the control polygon length.
// Chord error stays roughly constant because it falls with the square of
// the step count.
func curveSteps(scale float64, pts ...Point) int {
	var l float64
	for i := 1; i < len(pts); i++ {
		l += math.Hypot(pts[i].X-pts[i-1].X, pts[i].Y-pts[i-1].Y)
	}
	n := int(math.Ceil(math.Sqrt(l * scale)))
	return min(max(n, 1), 100)
}

func quadAt(p0, p1, p2 Point, t float64) Point {
	mt := 1 - t
	return Point{
		X: mt*mt*p0.X + 2*mt*t*p1.X + t*t*p2.X,
		Y: mt*mt*p0.Y + 2*mt*t*p1.Y + t*t*p2.Y,
	}
}

func cubicAt(p0, p1, p2, p3 Point, t float64) Point {
	mt := 1 - t
	a, b, c, d := mt*mt*mt, 3*mt*mt*t, 3*mt*t*t, t*t*t
	return Point{
		X: a*p0.X + b*p1.X + c*p2.X + d*p3.X,
		Y: a*p0.Y + b*p1.Y + c*p2.Y + d*p3.Y,
	}
}

// expandStroke returns one quad per segment covering the stroke outline.
//
// Every quad is emitted with the same winding so overlaps at joins
// accumulate instead of cancelling. Segment ends are extended to the miter
// point at joins, capped at half the width.
func expandStroke(lines []polyline, style StrokeStyle) [][4]Point {
	if style.Width <= 0 || math.IsNaN(style.Width) {
		return nil
	}
	hw := style.Width / 2
	capExt := 0.0
	if style.Cap == LineCapSquare {
		capExt = hw
	}

	var quads [][4]Point
	for _, pl := range lines {
		pts := dedupe(pl.pts)
		if pl.closed && len(pts) > 1 && pts[0] == pts[len(pts)-1] {
			pts = pts[:len(pts)-1]
		}
		n := len(pts) - 1
		if pl.closed && len(pts) > 2 {
			n = len(pts)
		}
		if n < 1 {
			continue
		}

		dirs := make([]Point, n)
		for i := range n {
			a, b := pts[i], pts[(i+1)%len(pts)]
			l := math.Hypot(b.X-a.X, b.Y-a.Y)
			dirs[i] = Point{X: (b.X - a.X) / l, Y: (b.Y - a.Y) / l}
		}

		closed := pl.closed && len(pts) > 2
		for i := range n {
			a, b := pts[i], pts[(i+1)%len(pts)]
			d := dirs[i]

			startExt, endExt := capExt, capExt
			if closed || i > 0 {
				startExt = joinExtent(dirs[(i+n-1)%n], d, hw)
			}
			if closed || i < n-1 {
				endExt = joinExtent(d, dirs[(i+1)%n], hw)
			}

			a = Point{X: a.X - d.X*startExt, Y: a.Y - d.Y*startExt}
			b = Point{X: b.X + d.X*endExt, Y: b.Y + d.Y*endExt}
			nx, ny := -d.Y*hw, d.X*hw
			quads = append(quads, [4]Point{
				{a.X + nx, a.Y + ny},
				{b.X + nx, b.Y + ny},
				{b.X - nx, b.Y - ny},
				{a.X - nx, a.Y - ny},
			})
		}
	}
	return quads
}

// joinExtent is how far to extend a segment end so the outer edges of two
// segments with unit directions a and b meet.
func joinExtent(a, b Point, hw float64) float64 {
	cos := a.X*b.X + a.Y*b.Y
	switch {
	case cos >= 1-1e-12:
		return 0
	case cos <= 0:
		return hw
	}
	return hw * math.Sqrt((1-cos)/(1+cos))
}

func dedupe(pts []Point) []Point {
	out := make([]Point, 0, len(pts))
	for i, pt := range pts {
		if i > 0 && pt == out[len(out)-1] {
			continue
		}
		out = append(out, pt)
	}
	return out
}
