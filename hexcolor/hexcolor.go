// Package hexcolor parses the colour tokens carried by overlay layers.
//
// Three forms are accepted:
//
//	"transparent"  alpha 0
//	"#RRGGBB"      opaque
//	"#RRGGBBAA"    explicit alpha, digits in that order
//
// Everything else is rejected with [ErrInvalidColor]. Renderers are expected
// to recover with [ParseOr] so that a single bad colour never aborts a
// composite.
package hexcolor

import (
	"errors"
	"image/color"
	"strings"
)

// TransparentToken is the sentinel token for a fully transparent colour.
const TransparentToken = "transparent"

// ErrInvalidColor is returned by Parse for malformed tokens.
var ErrInvalidColor = errors.New("hexcolor: invalid color")

// Common colours used as fallbacks by the render path.
var (
	Black       = color.NRGBA{A: 0xff}
	White       = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	Transparent = color.NRGBA{}
)

// Parse converts a colour token into a non-premultiplied RGBA value.
func Parse(token string) (color.NRGBA, error) {
	token = strings.TrimSpace(token)
	if strings.EqualFold(token, TransparentToken) {
		return Transparent, nil
	}
	if len(token) < 2 || token[0] != '#' {
		return color.NRGBA{}, invalid(token)
	}
	hex := token[1:]

	var r, g, b, a uint8
	a = 0xff
	ok := true
	switch len(hex) {
	case 6: // RRGGBB
		r, ok = pair(hex[0:2], ok)
		g, ok = pair(hex[2:4], ok)
		b, ok = pair(hex[4:6], ok)
	case 8: // RRGGBBAA
		r, ok = pair(hex[0:2], ok)
		g, ok = pair(hex[2:4], ok)
		b, ok = pair(hex[4:6], ok)
		a, ok = pair(hex[6:8], ok)
	default:
		return color.NRGBA{}, invalid(token)
	}
	if !ok {
		return color.NRGBA{}, invalid(token)
	}
	return color.NRGBA{R: r, G: g, B: b, A: a}, nil
}

// ParseOr parses token and returns fallback when it is empty or malformed.
func ParseOr(token string, fallback color.NRGBA) color.NRGBA {
	if token == "" {
		return fallback
	}
	c, err := Parse(token)
	if err != nil {
		return fallback
	}
	return c
}

// IsTransparent reports whether token is the transparent sentinel or any
// colour whose alpha is zero.
func IsTransparent(token string) bool {
	c, err := Parse(token)
	return err == nil && c.A == 0
}

// Format renders c as "#RRGGBBAA", or "#RRGGBB" when c is opaque.
func Format(c color.NRGBA) string {
	const digits = "0123456789ABCDEF"
	n := 6
	if c.A != 0xff {
		n = 8
	}
	buf := make([]byte, 0, n+1)
	buf = append(buf, '#')
	for _, v := range []uint8{c.R, c.G, c.B, c.A}[:n/2] {
		buf = append(buf, digits[v>>4], digits[v&0x0f])
	}
	return string(buf)
}

func invalid(token string) error {
	return &Error{Token: token}
}

// Error describes a rejected colour token. It unwraps to ErrInvalidColor.
type Error struct {
	Token string
}

func (e *Error) Error() string {
	return "hexcolor: invalid color " + quote(e.Token)
}

func (e *Error) Unwrap() error { return ErrInvalidColor }

func quote(s string) string { return `"` + s + `"` }

// pair decodes two hex digits. ok is threaded through so that a run of
// pairs can be checked once at the end.
func pair(s string, ok bool) (uint8, bool) {
	hi, ok1 := nibble(s[0])
	lo, ok2 := nibble(s[1])
	return hi<<4 | lo, ok && ok1 && ok2
}

func nibble(c byte) (uint8, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
