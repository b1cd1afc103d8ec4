package camera

import "errors"

var (
	// ErrPermissionDenied is returned when the platform refuses camera access.
	ErrPermissionDenied = errors.New("camera: permission denied")

	// ErrDeviceUnavailable is returned when no device can be acquired for
	// the requested facing.
	ErrDeviceUnavailable = errors.New("camera: device unavailable")

	// ErrSessionNotActive is returned when an operation needs a previewing
	// session.
	ErrSessionNotActive = errors.New("camera: session not active")

	// ErrCaptureInProgress is returned when a capture overlaps another.
	ErrCaptureInProgress = errors.New("camera: capture in progress")
)
