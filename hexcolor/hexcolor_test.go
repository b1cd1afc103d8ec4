package hexcolor

import (
	"errors"
	"image/color"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  color.NRGBA
	}{
		{"opaque red", "#FF0000", color.NRGBA{R: 255, A: 255}},
		{"lowercase", "#00ff7f", color.NRGBA{G: 255, B: 127, A: 255}},
		{"with alpha", "#00000080", color.NRGBA{A: 0x80}},
		{"rgba order", "#11223344", color.NRGBA{R: 0x11, G: 0x22, B: 0x33, A: 0x44}},
		{"transparent", "transparent", color.NRGBA{}},
		{"transparent mixed case", "Transparent", color.NRGBA{}},
		{"surrounding space", "  #FFFFFF ", color.NRGBA{R: 255, G: 255, B: 255, A: 255}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.token)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.token, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.token, got, tt.want)
			}
		})
	}
}

func TestParseInvalid(t *testing.T) {
	for _, token := range []string{
		"", "#", "FF0000", "#FFF", "#FFFF", "#GG0000", "#12345", "#1234567", "red", "#FF00000000",
	} {
		_, err := Parse(token)
		if !errors.Is(err, ErrInvalidColor) {
			t.Errorf("Parse(%q) error = %v, want ErrInvalidColor", token, err)
		}
	}
}

func TestParseOr(t *testing.T) {
	if got := ParseOr("#zzzzzz", Black); got != Black {
		t.Errorf("ParseOr(bad) = %v, want %v", got, Black)
	}
	if got := ParseOr("", Transparent); got != Transparent {
		t.Errorf("ParseOr(empty) = %v, want %v", got, Transparent)
	}
	if got := ParseOr("#FFFFFF", Black); got != White {
		t.Errorf("ParseOr(#FFFFFF) = %v, want %v", got, White)
	}
}

func TestIsTransparent(t *testing.T) {
	tests := map[string]bool{
		"transparent": true,
		"#12345600":   true,
		"#123456":     false,
		"garbage":     false,
	}
	for token, want := range tests {
		if got := IsTransparent(token); got != want {
			t.Errorf("IsTransparent(%q) = %v, want %v", token, got, want)
		}
	}
}

func TestFormatRoundTrip(t *testing.T) {
	for _, c := range []color.NRGBA{Black, White, {R: 1, G: 2, B: 3, A: 4}} {
		got, err := Parse(Format(c))
		if err != nil || got != c {
			t.Errorf("Parse(Format(%v)) = %v, %v", c, got, err)
		}
	}
}
