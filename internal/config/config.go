// Package config loads the overlaycamd configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/overlaycam/camera"
)

// DefaultPath is the configuration file read by New.
const DefaultPath = "overlaycamd.yaml"

// Config is the daemon configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
	Camera  CameraConfig  `yaml:"camera"`
	Capture CaptureConfig `yaml:"capture"`
	Fonts   FontsConfig   `yaml:"fonts"`
}

type ServerConfig struct {
	Addr        string        `yaml:"addr"`
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// ShutdownTimeout bounds the graceful shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// PreviewQuality is the JPEG quality of websocket preview frames.
	PreviewQuality int `yaml:"preview_quality"`
}

type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level"`

	// Format is text or json.
	Format string `yaml:"format"`
}

// Size is a pixel size written as "WxH".
type Size struct {
	W, H int
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.W, s.H)
}

// MarshalYAML implements yaml.Marshaler.
func (s Size) MarshalYAML() (any, error) {
	return s.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *Size) UnmarshalYAML(n *yaml.Node) error {
	var v string
	if err := n.Decode(&v); err != nil {
		return err
	}
	p, err := ParseSize(v)
	if err != nil {
		return fmt.Errorf("line %d: %w", n.Line, err)
	}
	*s = p
	return nil
}

// ParseSize parses "WxH".
func ParseSize(v string) (Size, error) {
	var s Size
	if _, err := fmt.Sscanf(strings.ToLower(strings.TrimSpace(v)), "%dx%d", &s.W, &s.H); err != nil {
		return Size{}, fmt.Errorf("config: invalid size %q", v)
	}
	if s.W <= 0 || s.H <= 0 {
		return Size{}, fmt.Errorf("config: invalid size %q", v)
	}
	return s, nil
}

type CameraConfig struct {
	// Autostart starts the camera with Facing when the daemon starts.
	Autostart bool `yaml:"autostart"`

	Facing    string  `yaml:"facing"`
	Preview   Size    `yaml:"preview"`
	Still     Size    `yaml:"still"`
	FrameRate float64 `yaml:"frame_rate"`
	MaxZoom   float64 `yaml:"max_zoom"`
}

type CaptureConfig struct {
	// OutputDir receives captures requested as a location.
	OutputDir string `yaml:"output_dir"`

	// GalleryDir receives captures saved externally. Empty disables
	// external saving.
	GalleryDir string `yaml:"gallery_dir"`

	ResourceTimeout time.Duration `yaml:"resource_timeout"`
}

type FontsConfig struct {
	// Files are extra font files registered by family name.
	Files []string `yaml:"files"`

	// System enables lookup of installed fonts.
	System bool `yaml:"system"`

	// CacheDir holds the system font index. Empty uses the user cache dir.
	CacheDir string `yaml:"cache_dir"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			PreviewQuality:  60,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Camera: CameraConfig{
			Facing:    "back",
			Preview:   Size{W: 360, H: 640},
			Still:     Size{W: 1080, H: 1920},
			FrameRate: 15,
			MaxZoom:   8,
		},
		Capture: CaptureConfig{
			OutputDir:       "~/.cache/overlaycam",
			ResourceTimeout: 3 * time.Second,
		},
	}
}

// Load reads path over the defaults. Fields absent from the file keep their
// default values.
func Load(path string) (*Config, error) {
	p, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("config: read: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", p, err)
	}
	if err := cfg.expand(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// New loads path, falling back to the defaults when the file does not exist.
// Any other error is returned.
func New(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = Default()
		if err := cfg.expand(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return cfg, err
}

func (c *Config) expand() error {
	for _, p := range []*string{&c.Capture.OutputDir, &c.Capture.GalleryDir, &c.Fonts.CacheDir} {
		if *p == "" {
			continue
		}
		v, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		*p = v
	}
	for i, f := range c.Fonts.Files {
		v, err := homedir.Expand(f)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		c.Fonts.Files[i] = v
	}
	return nil
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", c.Log.Format)
	}
	if c.Server.PreviewQuality < 0 || c.Server.PreviewQuality > 100 {
		return fmt.Errorf("config: preview_quality %d out of range", c.Server.PreviewQuality)
	}
	if c.Camera.FrameRate < 0 {
		return fmt.Errorf("config: negative frame_rate")
	}
	if _, err := camera.ParseFacing(c.Camera.Facing); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Capture.OutputDir == "" {
		return fmt.Errorf("config: output_dir is required")
	}
	return nil
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("config: unknown log level %q", s)
	}
	return l, nil
}
