package camera

import "context"

// FrameSink receives preview frames. It is called from the device's
// delivery goroutine and must not block.
type FrameSink func(*Frame)

// Driver acquires camera devices.
type Driver interface {
	// Open acquires the device for facing and starts delivering preview
	// frames to sink. Errors that wrap ErrPermissionDenied are reported as
	// such; anything else is treated as the device being unavailable.
	Open(ctx context.Context, facing Facing, sink FrameSink) (Device, error)
}

// Capabilities describes which settings a device honours.
type Capabilities struct {
	Flash bool
	Torch bool
	Zoom  bool
	Focus bool

	// MaxZoom is the largest supported zoom factor. Values below 1 mean 1.
	MaxZoom float64
}

// Device is an acquired camera.
type Device interface {
	Capabilities() Capabilities
	SetFlash(FlashMode) error
	SetZoom(factor float64) error
	SetFocus(x, y float64) error

	// CaptureStill returns one full-resolution frame.
	CaptureStill(ctx context.Context) (*Frame, error)

	// Close releases the device. No frames are delivered after Close returns.
	Close() error
}
