package synthetic

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/overlaycam/camera"
)

var errClosed = errors.New("synthetic: device closed")

// Device is an open synthetic camera.
type Device struct {
	driver *Driver
	cfg    config
	facing camera.Facing
	sink   camera.FrameSink

	// emitMu serialises delivery with Close.
	emitMu sync.Mutex
	closed bool
	seq    uint64

	mu       sync.Mutex
	settings camera.Settings

	stop chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

// Facing returns the facing the device was opened for.
func (d *Device) Facing() camera.Facing {
	return d.facing
}

// Settings returns the configuration last applied to the device.
func (d *Device) Settings() camera.Settings {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := d.settings
	s.Facing = d.facing
	return s
}

// Capabilities implements camera.Device.
func (d *Device) Capabilities() camera.Capabilities {
	return d.cfg.caps
}

// SetFlash implements camera.Device.
func (d *Device) SetFlash(m camera.FlashMode) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.settings.Flash = m
	return nil
}

// SetZoom implements camera.Device.
func (d *Device) SetZoom(z float64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.settings.Zoom = z
	return nil
}

// SetFocus implements camera.Device.
func (d *Device) SetFocus(x, y float64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.settings.Focus = camera.FocusPoint{X: x, Y: y, Valid: true}
	return nil
}

// Emit delivers one preview frame synchronously and returns it. It returns
// nil once the device is closed.
func (d *Device) Emit() *camera.Frame {
	d.emitMu.Lock()
	defer d.emitMu.Unlock()
	if d.closed {
		return nil
	}
	d.seq++
	f := d.frame(d.cfg.previewW, d.cfg.previewH, d.seq)
	if d.sink != nil {
		d.sink(f)
	}
	return f
}

// CaptureStill implements camera.Device.
func (d *Device) CaptureStill(ctx context.Context) (*camera.Frame, error) {
	if d.cfg.stillDelay > 0 {
		t := time.NewTimer(d.cfg.stillDelay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-d.stop:
			return nil, errClosed
		}
	}
	d.emitMu.Lock()
	defer d.emitMu.Unlock()
	if d.closed {
		return nil, errClosed
	}
	return d.frame(d.cfg.stillW, d.cfg.stillH, d.seq), nil
}

// Close implements camera.Device.
func (d *Device) Close() error {
	d.once.Do(func() {
		close(d.stop)
		d.wg.Wait()
		d.emitMu.Lock()
		d.closed = true
		d.emitMu.Unlock()
		d.driver.closed(d)
	})
	return nil
}

func (d *Device) stream() {
	defer d.wg.Done()
	t := time.NewTicker(time.Duration(float64(time.Second) / d.cfg.fps))
	defer t.Stop()
	for {
		select {
		case <-d.stop:
			return
		case <-t.C:
			d.Emit()
		}
	}
}

func (d *Device) frame(w, h int, seq uint64) *camera.Frame {
	d.mu.Lock()
	torch := d.settings.Flash == camera.FlashTorch
	d.mu.Unlock()
	return &camera.Frame{
		Width:     w,
		Height:    h,
		Stride:    4 * w,
		Pix:       pattern(w, h, d.facing, seq, torch, d.cfg.format == gputypes.TextureFormatBGRA8Unorm),
		Format:    d.cfg.format,
		Sequence:  seq,
		Timestamp: time.Now(),
	}
}
