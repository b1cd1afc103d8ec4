package camera

import (
	"fmt"
	"strings"
)

// Facing selects the physical camera.
type Facing uint8

const (
	FacingBack Facing = iota
	FacingFront
)

// Opposite returns the other facing.
func (f Facing) Opposite() Facing {
	if f == FacingFront {
		return FacingBack
	}
	return FacingFront
}

func (f Facing) String() string {
	if f == FacingFront {
		return "front"
	}
	return "back"
}

// ParseFacing parses "front" or "back". The empty string is back.
func ParseFacing(s string) (Facing, error) {
	switch strings.ToLower(s) {
	case "", "back", "rear":
		return FacingBack, nil
	case "front", "user":
		return FacingFront, nil
	}
	return 0, fmt.Errorf("camera: unknown facing %q", s)
}

// FlashMode is the flash setting used for captures.
type FlashMode uint8

const (
	FlashOff FlashMode = iota
	FlashOn
	FlashAuto
	// FlashTorch keeps the light on during preview.
	FlashTorch
)

var flashNames = [...]string{"off", "on", "auto", "torch"}

func (m FlashMode) String() string {
	if int(m) < len(flashNames) {
		return flashNames[m]
	}
	return fmt.Sprintf("FlashMode(%d)", m)
}

// ParseFlashMode parses one of off, on, auto or torch.
func ParseFlashMode(s string) (FlashMode, error) {
	for i, n := range flashNames {
		if strings.EqualFold(s, n) {
			return FlashMode(i), nil
		}
	}
	return 0, fmt.Errorf("camera: unknown flash mode %q", s)
}

// State is the lifecycle state of a Session.
type State uint8

const (
	StateIdle State = iota
	StateRequesting
	StatePreviewing
	StateCapturing
	StateSwitching
	StateStopped
)

var stateNames = [...]string{"idle", "requesting", "previewing", "capturing", "switching", "stopped"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", s)
}

// Active reports whether a device is held or being acquired.
func (s State) Active() bool {
	switch s {
	case StateRequesting, StatePreviewing, StateCapturing, StateSwitching:
		return true
	}
	return false
}

// FocusPoint is a normalised point of interest. The zero value means
// continuous autofocus.
type FocusPoint struct {
	X, Y  float64
	Valid bool
}

// Settings is the device configuration a Session re-applies on every
// acquisition.
type Settings struct {
	Facing Facing
	Flash  FlashMode
	Zoom   float64
	Focus  FocusPoint
}
