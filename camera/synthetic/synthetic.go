// Package synthetic provides a camera driver that produces a test pattern.
//
// It stands in for hardware in tests and in the daemon when no real device
// is configured. Only one device can be open at a time, as with a physical
// camera.
package synthetic

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/overlaycam/camera"
)

// Defaults.
const (
	DefaultPreviewWidth  = 360
	DefaultPreviewHeight = 640
	DefaultStillWidth    = 1080
	DefaultStillHeight   = 1920
	DefaultFrameRate     = 15
	DefaultMaxZoom       = 8
)

type config struct {
	previewW, previewH int
	stillW, stillH     int
	fps                float64
	caps               camera.Capabilities
	format             gputypes.TextureFormat
	stillDelay         time.Duration
}

// Option configures a Driver.
type Option func(*config)

// WithPreviewSize sets the size of streamed frames.
func WithPreviewSize(w, h int) Option {
	return func(c *config) { c.previewW, c.previewH = w, h }
}

// WithStillSize sets the size of captured stills.
func WithStillSize(w, h int) Option {
	return func(c *config) { c.stillW, c.stillH = w, h }
}

// WithFrameRate sets the streaming rate. Zero disables the stream; frames
// are then only delivered by Device.Emit.
func WithFrameRate(fps float64) Option {
	return func(c *config) { c.fps = fps }
}

// WithCapabilities sets what the devices report and honour.
func WithCapabilities(caps camera.Capabilities) Option {
	return func(c *config) { c.caps = caps }
}

// WithFormat sets the pixel layout of delivered frames.
func WithFormat(f gputypes.TextureFormat) Option {
	return func(c *config) { c.format = f }
}

// WithStillDelay makes CaptureStill take at least d.
func WithStillDelay(d time.Duration) Option {
	return func(c *config) { c.stillDelay = d }
}

// Driver opens synthetic devices.
type Driver struct {
	cfg config

	mu      sync.Mutex
	active  *Device
	opened  int
	openErr map[camera.Facing]error
}

// New returns a Driver. By default devices support every capability with a
// maximum zoom of 8 and stream BGRA frames.
func New(opts ...Option) *Driver {
	cfg := config{
		previewW: DefaultPreviewWidth,
		previewH: DefaultPreviewHeight,
		stillW:   DefaultStillWidth,
		stillH:   DefaultStillHeight,
		fps:      DefaultFrameRate,
		caps: camera.Capabilities{
			Flash: true, Torch: true, Zoom: true, Focus: true,
			MaxZoom: DefaultMaxZoom,
		},
		format: gputypes.TextureFormatBGRA8Unorm,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Driver{cfg: cfg, openErr: make(map[camera.Facing]error)}
}

// FailOpen makes Open fail with err for facing. A nil err clears it.
func (d *Driver) FailOpen(facing camera.Facing, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err == nil {
		delete(d.openErr, facing)
		return
	}
	d.openErr[facing] = err
}

// Active returns the open device, or nil.
func (d *Driver) Active() *Device {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active
}

// Opened returns how many devices have been opened.
func (d *Driver) Opened() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.opened
}

// Open implements camera.Driver.
func (d *Driver) Open(ctx context.Context, facing camera.Facing, sink camera.FrameSink) (camera.Device, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.openErr[facing]; err != nil {
		return nil, err
	}
	if d.active != nil {
		return nil, fmt.Errorf("%w: %s camera busy", camera.ErrDeviceUnavailable, d.active.facing)
	}
	dev := &Device{
		driver: d,
		cfg:    d.cfg,
		facing: facing,
		sink:   sink,
		stop:   make(chan struct{}),
	}
	d.active = dev
	d.opened++
	if d.cfg.fps > 0 {
		dev.wg.Add(1)
		go dev.stream()
	}
	return dev, nil
}

func (d *Driver) closed(dev *Device) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.active == dev {
		d.active = nil
	}
}
