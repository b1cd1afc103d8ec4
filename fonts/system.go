package fonts

import (
	"fmt"
	"math"
	"os"

	gtfont "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/fontscan"
	"golang.org/x/image/font/opentype"

	"github.com/gogpu/overlaycam/internal/logging"
)

type systemFont struct {
	path   string
	index  int
	weight float64
	normal bool
}

// scanLogger routes fontscan warnings to the package logger.
type scanLogger struct{}

func (scanLogger) Printf(format string, args ...any) {
	logging.Logger().Debug("fonts: " + fmt.Sprintf(format, args...))
}

// WithSystemFonts indexes installed system fonts so their families can be
// requested by name. The index is cached under cacheDir; an empty cacheDir
// uses the user cache directory. Scan failures are logged and leave the
// Book with the Go fonts only.
//
// Files are read lazily, on the first Face call for their family.
func WithSystemFonts(cacheDir string) Option {
	return func(b *Book) {
		if cacheDir == "" {
			if dir, err := os.UserCacheDir(); err == nil {
				cacheDir = dir
			}
		}
		footprints, err := fontscan.SystemFonts(scanLogger{}, cacheDir)
		if err != nil {
			logging.Logger().Warn("fonts: system font scan failed", "err", err)
			return
		}
		index := make(map[string][]systemFont)
		for _, fp := range footprints {
			k := Key(fp.Family)
			index[k] = append(index[k], systemFont{
				path:   fp.Location.File,
				index:  int(fp.Location.Index),
				weight: float64(fp.Aspect.Weight),
				normal: fp.Aspect.Style == gtfont.StyleNormal,
			})
		}
		b.mu.Lock()
		b.system = index
		b.mu.Unlock()
		logging.Logger().Debug("fonts: system fonts indexed", "families", len(index))
	}
}

// loadSystem parses the best regular face of a system family and registers
// it. Failed loads are dropped from the index so they are not retried.
func (b *Book) loadSystem(key string) (*opentype.Font, bool) {
	b.mu.RLock()
	candidates := b.system[key]
	b.mu.RUnlock()
	if len(candidates) == 0 {
		return nil, false
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.normal && !best.normal ||
			c.normal == best.normal && math.Abs(c.weight-400) < math.Abs(best.weight-400) {
			best = c
		}
	}

	f, err := parseSystem(best)
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.system, key)
	if err != nil {
		logging.Logger().Warn("fonts: system font load failed", "path", best.path, "err", err)
		return nil, false
	}
	if existing, ok := b.families[key]; ok {
		return existing.font, true
	}
	b.families[key] = &family{name: key, font: f}
	return f, true
}

func parseSystem(sf systemFont) (*opentype.Font, error) {
	data, err := os.ReadFile(sf.path)
	if err != nil {
		return nil, err
	}
	c, err := opentype.ParseCollection(data)
	if err != nil {
		return nil, err
	}
	if sf.index >= c.NumFonts() {
		return nil, fmt.Errorf("fonts: %s has %d faces, want index %d", sf.path, c.NumFonts(), sf.index)
	}
	return c.Font(sf.index)
}
