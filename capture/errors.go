package capture

import "errors"

var (
	// ErrEncodeFailure is returned when the composited photo cannot be encoded.
	ErrEncodeFailure = errors.New("capture: encode failure")

	// ErrNoExternalSaver is returned for SaveExternally without an external saver.
	ErrNoExternalSaver = errors.New("capture: no external saver configured")
)
