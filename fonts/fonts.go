// Package fonts resolves font family names to faces for text layers.
//
// A [Book] holds parsed fonts keyed by family. Names are matched after case
// folding with spaces removed, so "Go Mono", "go mono" and "GoMono" are the
// same family. The Go fonts are always present; system fonts can be added
// with [WithSystemFonts]. Unknown families resolve to the default family.
package fonts

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/text/cases"

	"github.com/gogpu/overlaycam/internal/logging"
)

// Built-in family names.
const (
	Go       = "Go"
	GoMono   = "Go Mono"
	GoBold   = "Go Bold"
	GoItalic = "Go Italic"
)

// DefaultSize is the face size used when a non-positive size is requested.
const DefaultSize = 16.0

var (
	// ErrNoFamilyName is returned when a registered font has no family name.
	ErrNoFamilyName = errors.New("fonts: font has no family name")

	// ErrInvalidFont is returned when font data cannot be parsed.
	ErrInvalidFont = errors.New("fonts: invalid font data")
)

// Book maps family names to fonts.
//
// Book is safe for concurrent use. Faces returned by Face are not: every
// call returns a new face, so each goroutine should request its own.
type Book struct {
	mu       sync.RWMutex
	families map[string]*family
	system   map[string][]systemFont
	def      string

	dpi     float64
	hinting font.Hinting
}

type family struct {
	name string
	font *opentype.Font
}

// Option configures a Book.
type Option func(*Book)

// WithDefaultFamily sets the family used for unknown names. The family must
// be registered by the time Face is called, or the Go family is used.
func WithDefaultFamily(name string) Option {
	return func(b *Book) {
		if name != "" {
			b.def = Key(name)
		}
	}
}

// WithDPI sets the resolution faces are created at. The default of 72
// makes sizes equal to pixels.
func WithDPI(dpi float64) Option {
	return func(b *Book) {
		if dpi > 0 {
			b.dpi = dpi
		}
	}
}

// WithHinting sets the hinting of created faces. The default is none,
// which keeps glyph shapes stable under rotation and scaling.
func WithHinting(h font.Hinting) Option {
	return func(b *Book) {
		b.hinting = h
	}
}

// New returns a Book holding the Go fonts.
func New(opts ...Option) *Book {
	b := &Book{
		families: make(map[string]*family),
		def:      Key(Go),
		dpi:      72,
	}
	for name, data := range map[string][]byte{
		Go:       goregular.TTF,
		GoMono:   gomono.TTF,
		GoBold:   gobold.TTF,
		GoItalic: goitalic.TTF,
	} {
		if err := b.RegisterAs(name, data); err != nil {
			panic(fmt.Sprintf("fonts: built-in %s: %v", name, err))
		}
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Key returns the normalized form of a family name used for matching.
func Key(name string) string {
	return strings.ReplaceAll(cases.Fold().String(strings.TrimSpace(name)), " ", "")
}

// Register parses an OpenType or TrueType font and registers it under the
// family name from its name table. It returns that name.
func (b *Book) Register(data []byte) (string, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidFont, err)
	}
	name, err := f.Name(nil, sfnt.NameIDFamily)
	if err != nil || strings.TrimSpace(name) == "" {
		return "", ErrNoFamilyName
	}
	b.add(name, f)
	return name, nil
}

// RegisterAs parses a font and registers it under the given family name,
// replacing any font already registered under that name.
func (b *Book) RegisterAs(name string, data []byte) error {
	if strings.TrimSpace(name) == "" {
		return ErrNoFamilyName
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidFont, err)
	}
	b.add(name, f)
	return nil
}

// RegisterFile reads and registers a font file, returning its family name.
func (b *Book) RegisterFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("fonts: read %s: %w", path, err)
	}
	name, err := b.Register(data)
	if err != nil {
		return "", fmt.Errorf("fonts: %s: %w", path, err)
	}
	return name, nil
}

func (b *Book) add(name string, f *opentype.Font) {
	b.mu.Lock()
	b.families[Key(name)] = &family{name: name, font: f}
	b.mu.Unlock()
}

// Has reports whether family resolves without falling back.
func (b *Book) Has(family string) bool {
	_, ok := b.lookup(family)
	return ok
}

// Families returns the registered family names, sorted.
func (b *Book) Families() []string {
	b.mu.RLock()
	names := make([]string, 0, len(b.families))
	for _, f := range b.families {
		names = append(names, f.name)
	}
	b.mu.RUnlock()
	slices.Sort(names)
	return names
}

// Face returns a new face for family at size pixels (at the default DPI),
// and whether family matched. An empty or unknown family returns the default
// family and false. Faces must not be shared between goroutines.
func (b *Book) Face(family string, size float64) (font.Face, bool) {
	if !(size > 0) {
		size = DefaultSize
	}
	f, ok := b.Font(family)
	if f == nil {
		return nil, false
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     b.dpi,
		Hinting: b.hinting,
	})
	if err != nil {
		logging.Logger().Warn("fonts: face creation failed", "family", family, "size", size, "err", err)
		return nil, false
	}
	return face, ok
}

// Font returns the parsed font for family and whether family matched. An
// empty or unknown family returns the default family and false. The result
// is nil only for a Book without fonts. Fonts are safe for concurrent use.
func (b *Book) Font(family string) (*opentype.Font, bool) {
	if f, ok := b.lookup(family); ok {
		return f, true
	}
	return b.fallback(), false
}

func (b *Book) lookup(name string) (*opentype.Font, bool) {
	if strings.TrimSpace(name) == "" {
		return nil, false
	}
	k := Key(name)
	b.mu.RLock()
	f, ok := b.families[k]
	b.mu.RUnlock()
	if ok {
		return f.font, true
	}
	if ft, ok := b.loadSystem(k); ok {
		return ft, true
	}
	return nil, false
}

func (b *Book) fallback() *opentype.Font {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if f, ok := b.families[b.def]; ok {
		return f.font
	}
	if f, ok := b.families[Key(Go)]; ok {
		return f.font
	}
	return nil
}
