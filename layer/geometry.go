package layer

// Rect is a resolved layer rectangle in target pixels.
// Negative components are legal and are passed through to the renderer.
type Rect struct {
	X, Y, W, H float64
}

// Center returns the rotation pivot of r.
func (r Rect) Center() (x, y float64) {
	return r.X + r.W/2, r.Y + r.H/2
}

// Empty reports whether r has no positive area.
func (r Rect) Empty() bool {
	return !(r.W > 0 && r.H > 0)
}

// Resolve maps l's geometry onto a target of the given size.
//
// Each of X, Y, Width and Height below 1 is multiplied by the matching target
// dimension; anything else is taken as pixels. An unset Width or Height
// resolves to the full target dimension.
func Resolve(l Layer, targetW, targetH float64) Rect {
	r := Rect{
		X: unit(l.X, targetW),
		Y: unit(l.Y, targetH),
		W: targetW,
		H: targetH,
	}
	if l.Width.Valid {
		r.W = unit(l.Width.V, targetW)
	}
	if l.Height.Valid {
		r.H = unit(l.Height.V, targetH)
	}
	return r
}

func unit(v, total float64) float64 {
	if v < 1 {
		return v * total
	}
	return v
}
