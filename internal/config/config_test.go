package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "overlaycamd.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoadOverridesDefaults(t *testing.T) {
	p := writeFile(t, `
server:
  addr: 127.0.0.1:9000
log:
  level: debug
  format: json
camera:
  facing: front
  still: 720x1280
capture:
  output_dir: /tmp/out
  resource_timeout: 5s
fonts:
  files: [/tmp/a.ttf]
`)
	cfg, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "front", cfg.Camera.Facing)
	assert.Equal(t, Size{W: 720, H: 1280}, cfg.Camera.Still)
	assert.Equal(t, Size{W: 360, H: 640}, cfg.Camera.Preview)
	assert.Equal(t, "/tmp/out", cfg.Capture.OutputDir)
	assert.Equal(t, 5*time.Second, cfg.Capture.ResourceTimeout)
	assert.Equal(t, []string{"/tmp/a.ttf"}, cfg.Fonts.Files)
}

func TestNewMissingFileUsesDefaults(t *testing.T) {
	cfg, err := New(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Server, cfg.Server)
	assert.NotContains(t, cfg.Capture.OutputDir, "~")
}

func TestNewReportsParseErrors(t *testing.T) {
	_, err := New(writeFile(t, "camera: [unclosed"))
	assert.Error(t, err)
}

func TestLoadExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	cfg, err := Load(writeFile(t, "capture:\n  gallery_dir: ~/Pictures\n"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "Pictures"), cfg.Capture.GalleryDir)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"level":   "log:\n  level: loud\n",
		"format":  "log:\n  format: xml\n",
		"size":    "camera:\n  still: big\n",
		"zero":    "camera:\n  preview: 0x10\n",
		"quality": "server:\n  preview_quality: 101\n",
		"fps":     "camera:\n  frame_rate: -1\n",
		"output":  "capture:\n  output_dir: \"\"\n",
		"facing":  "camera:\n  facing: sideways\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, body))
			assert.Error(t, err)
		})
	}
}

func TestSizeYAML(t *testing.T) {
	out, err := yaml.Marshal(struct {
		S Size `yaml:"s"`
	}{Size{W: 1080, H: 1920}})
	require.NoError(t, err)
	assert.Equal(t, "s: 1080x1920\n", string(out))

	s, err := ParseSize(" 12X34 ")
	require.NoError(t, err)
	assert.Equal(t, Size{W: 12, H: 34}, s)
}

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, l)
}
