package capture

import (
	"fmt"
	"strings"
)

// DefaultQuality is the encoder quality used by DefaultRequest.
const DefaultQuality = 85

// Selector chooses how the encoded photo is returned.
type Selector uint8

const (
	// OutputLocation writes the photo to the saver and returns its location.
	OutputLocation Selector = iota
	// OutputBase64 returns the photo inline.
	OutputBase64
	// OutputBoth does both.
	OutputBoth
)

func (s Selector) String() string {
	switch s {
	case OutputBase64:
		return "base64"
	case OutputBoth:
		return "both"
	}
	return "location"
}

// ParseSelector parses location, base64 or both. The empty string is location.
func ParseSelector(s string) (Selector, error) {
	switch strings.ToLower(s) {
	case "", "location", "file", "uri":
		return OutputLocation, nil
	case "base64":
		return OutputBase64, nil
	case "both":
		return OutputBoth, nil
	}
	return 0, fmt.Errorf("capture: unknown output selector %q", s)
}

func (s Selector) wantsBase64() bool   { return s == OutputBase64 || s == OutputBoth }
func (s Selector) wantsLocation() bool { return s == OutputLocation || s == OutputBoth }

// Request describes one capture.
type Request struct {
	// Quality is 0 to 100; out of range values are clamped.
	Quality int

	Output Selector

	// SaveExternally also hands the photo to the external saver, typically
	// a gallery.
	SaveExternally bool
}

// DefaultRequest returns a request for a file at DefaultQuality.
func DefaultRequest() Request {
	return Request{Quality: DefaultQuality, Output: OutputLocation}
}

// Result describes a finished capture.
type Result struct {
	// Width and Height are the pixel size of the encoded photo.
	Width, Height int

	Base64           string
	Location         string
	ExternalLocation string
}
