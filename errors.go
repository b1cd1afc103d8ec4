package overlaycam

import (
	"errors"

	"github.com/gogpu/overlaycam/camera"
	"github.com/gogpu/overlaycam/capture"
	"github.com/gogpu/overlaycam/hexcolor"
	"github.com/gogpu/overlaycam/layer"
	"github.com/gogpu/overlaycam/resource"
)

// Errors returned by Camera, re-exported from the packages that produce them.
var (
	ErrPermissionDenied  = camera.ErrPermissionDenied
	ErrDeviceUnavailable = camera.ErrDeviceUnavailable
	ErrSessionNotActive  = camera.ErrSessionNotActive
	ErrCaptureInProgress = camera.ErrCaptureInProgress
	ErrInvalidLayerData  = layer.ErrInvalidLayerData
	ErrLayerNotFound     = layer.ErrNotFound
	ErrInvalidColor      = hexcolor.ErrInvalidColor
	ErrLoadFailure       = resource.ErrLoadFailure
	ErrEncodeFailure     = capture.ErrEncodeFailure
)

// Error codes reported by ErrorCode.
const (
	CodePermissionDenied    = "PermissionDenied"
	CodeDeviceUnavailable   = "DeviceUnavailable"
	CodeSessionNotActive    = "SessionNotActive"
	CodeCaptureInProgress   = "CaptureInProgress"
	CodeInvalidLayerData    = "InvalidLayerData"
	CodeLayerNotFound       = "LayerNotFound"
	CodeInvalidColor        = "InvalidColor"
	CodeResourceLoadFailure = "ResourceLoadFailure"
	CodeEncodeFailure       = "EncodeFailure"
	CodeInternal            = "Internal"
)

var codes = []struct {
	err  error
	code string
}{
	{ErrPermissionDenied, CodePermissionDenied},
	{ErrDeviceUnavailable, CodeDeviceUnavailable},
	{ErrSessionNotActive, CodeSessionNotActive},
	{ErrCaptureInProgress, CodeCaptureInProgress},
	{ErrInvalidLayerData, CodeInvalidLayerData},
	{ErrLayerNotFound, CodeLayerNotFound},
	{ErrInvalidColor, CodeInvalidColor},
	{ErrLoadFailure, CodeResourceLoadFailure},
	{ErrEncodeFailure, CodeEncodeFailure},
}

// ErrorCode maps err to its error code. It returns "" for nil and
// CodeInternal for errors outside the taxonomy.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return CodeInternal
}
