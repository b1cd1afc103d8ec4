package overlaycam_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/overlaycam"
	"github.com/gogpu/overlaycam/camera"
	"github.com/gogpu/overlaycam/camera/synthetic"
	"github.com/gogpu/overlaycam/capture"
	"github.com/gogpu/overlaycam/layer"
)

func newCamera(t *testing.T, opts ...overlaycam.Option) (*overlaycam.Camera, *synthetic.Driver) {
	t.Helper()
	d := synthetic.New(
		synthetic.WithFrameRate(0),
		synthetic.WithPreviewSize(36, 64),
		synthetic.WithStillSize(108, 192),
	)
	saver, err := capture.NewDirSaver(t.TempDir())
	require.NoError(t, err)
	opts = append([]overlaycam.Option{overlaycam.WithSaver(saver)}, opts...)
	cam := overlaycam.New(d, opts...)
	t.Cleanup(func() { _ = cam.Close() })
	return cam, d
}

func TestCameraCaptureWithLayers(t *testing.T) {
	cam, _ := newCamera(t)
	require.NoError(t, cam.Start(context.Background(), overlaycam.StartOptions{Facing: camera.FacingBack}))

	_, err := cam.AddLayer(layer.NewText("Hello").At(0.05, 0.9))
	require.NoError(t, err)
	_, err = cam.AddLayerDefinition(layer.Definition{
		Type:      "shape",
		ShapeType: ptr("circle"),
		FillColor: ptr("#FF000080"),
		Width:     ptr(0.5),
		Height:    ptr(0.5),
	})
	require.NoError(t, err)
	assert.Len(t, cam.Layers(), 2)

	res, err := cam.Capture(context.Background(), capture.Request{Quality: 85, Output: capture.OutputBoth})
	require.NoError(t, err)
	assert.Equal(t, 108, res.Width)
	assert.Equal(t, 192, res.Height)
	assert.FileExists(t, res.Location)

	data, err := base64.StdEncoding.DecodeString(res.Base64)
	require.NoError(t, err)
	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 108, 192), img.Bounds())
}

func TestCameraCaptureBeforeStart(t *testing.T) {
	cam, _ := newCamera(t)
	_, err := cam.Capture(context.Background(), capture.DefaultRequest())
	assert.ErrorIs(t, err, overlaycam.ErrSessionNotActive)
	assert.Equal(t, overlaycam.CodeSessionNotActive, overlaycam.ErrorCode(err))
}

func TestCameraLayerOperations(t *testing.T) {
	n := 0
	cam, _ := newCamera(t, overlaycam.WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("layer-%d", n)
	}))

	id, err := cam.AddLayer(layer.NewShape(layer.ShapeRectangle))
	require.NoError(t, err)
	assert.Equal(t, "layer-1", id)

	z := 4
	require.NoError(t, cam.UpdateLayer(id, layer.Patch{ZIndex: &z}))
	got, ok := cam.Layer(id)
	require.True(t, ok)
	assert.Equal(t, 4, got.ZIndex)

	err = cam.UpdateLayer("missing", layer.Patch{ZIndex: &z})
	assert.ErrorIs(t, err, overlaycam.ErrLayerNotFound)
	assert.Equal(t, overlaycam.CodeLayerNotFound, overlaycam.ErrorCode(err))

	err = cam.UpdateLayerDefinition("missing", layer.Definition{ShapeType: ptr("hexagon")})
	assert.Equal(t, overlaycam.CodeLayerNotFound, overlaycam.ErrorCode(err))
	err = cam.UpdateLayerDefinition(id, layer.Definition{ShapeType: ptr("hexagon")})
	assert.Equal(t, overlaycam.CodeInvalidLayerData, overlaycam.ErrorCode(err))

	require.NoError(t, cam.UpdateLayerDefinition(id, layer.Definition{StrokeColor: ptr("#00FF00")}))
	got, _ = cam.Layer(id)
	assert.Equal(t, "#00FF00", got.Content.(*layer.Shape).StrokeColor)

	_, err = cam.AddLayerDefinition(layer.Definition{Type: "hologram"})
	assert.Equal(t, overlaycam.CodeInvalidLayerData, overlaycam.ErrorCode(err))

	cam.RemoveLayer(id)
	cam.RemoveLayer(id)
	assert.Empty(t, cam.Layers())

	_, _ = cam.AddLayer(layer.NewText("a"))
	_, _ = cam.AddLayer(layer.NewText("b"))
	cam.ClearLayers()
	assert.Empty(t, cam.Layers())
}

func TestCamerasDoNotShareLayers(t *testing.T) {
	a, _ := newCamera(t)
	b, _ := newCamera(t)
	_, err := a.AddLayer(layer.NewText("only a"))
	require.NoError(t, err)
	assert.Len(t, a.Layers(), 1)
	assert.Empty(t, b.Layers())
}

func TestCameraPreview(t *testing.T) {
	cam, d := newCamera(t)
	require.NoError(t, cam.Start(context.Background(), overlaycam.StartOptions{Viewport: image.Pt(18, 32)}))

	d.Active().Emit()
	require.Eventually(t, func() bool { return cam.Preview().Rendered() >= 1 }, 2*time.Second, time.Millisecond)
	assert.Equal(t, image.Rect(0, 0, 18, 32), cam.Preview().Latest().Bounds())

	cam.Stop()
	assert.Equal(t, camera.StateStopped, cam.State())
	assert.False(t, cam.Preview().Running())

	require.NoError(t, cam.Start(context.Background(), overlaycam.StartOptions{}))
	assert.True(t, cam.Preview().Running())
}

func TestCameraGestures(t *testing.T) {
	cam, _ := newCamera(t)
	require.NoError(t, cam.Start(context.Background(), overlaycam.StartOptions{Viewport: image.Pt(100, 200)}))

	cam.HandleTap(50, 50)
	cam.HandlePinch(2)
	assert.False(t, cam.Settings().Focus.Valid)
	assert.Equal(t, 1.0, cam.Settings().Zoom)

	require.NoError(t, cam.Start(context.Background(), overlaycam.StartOptions{
		Viewport:     image.Pt(100, 200),
		ZoomGesture:  true,
		FocusGesture: true,
	}))
	cam.HandleTap(50, 50)
	assert.Equal(t, camera.FocusPoint{X: 0.5, Y: 0.25, Valid: true}, cam.Settings().Focus)

	cam.HandlePinch(2)
	cam.HandlePinch(2)
	assert.Equal(t, 4.0, cam.Settings().Zoom)
	cam.HandlePinch(10)
	assert.Equal(t, 8.0, cam.Settings().Zoom)
	cam.HandlePinch(-1)
	assert.Equal(t, 8.0, cam.Settings().Zoom)
}

func TestCameraSwitchAndSettings(t *testing.T) {
	cam, d := newCamera(t)
	require.NoError(t, cam.Start(context.Background(), overlaycam.StartOptions{}))
	cam.SetFlashMode(camera.FlashAuto)
	cam.SetZoom(15)
	cam.SetFocus(0.1, 0.9)

	require.NoError(t, cam.SwitchCamera(context.Background()))
	got := d.Active().Settings()
	assert.Equal(t, camera.FacingFront, got.Facing)
	assert.Equal(t, camera.FlashAuto, got.Flash)
	assert.Equal(t, 8.0, got.Zoom)

	d.FailOpen(camera.FacingBack, errors.New("gone"))
	err := cam.SwitchCamera(context.Background())
	assert.Equal(t, overlaycam.CodeDeviceUnavailable, overlaycam.ErrorCode(err))
	assert.Equal(t, camera.StateIdle, cam.State())
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{overlaycam.ErrPermissionDenied, overlaycam.CodePermissionDenied},
		{fmt.Errorf("wrapped: %w", overlaycam.ErrCaptureInProgress), overlaycam.CodeCaptureInProgress},
		{overlaycam.ErrEncodeFailure, overlaycam.CodeEncodeFailure},
		{overlaycam.ErrLoadFailure, overlaycam.CodeResourceLoadFailure},
		{overlaycam.ErrInvalidColor, overlaycam.CodeInvalidColor},
		{errors.New("disk on fire"), overlaycam.CodeInternal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, overlaycam.ErrorCode(tt.err), "%v", tt.err)
	}
}

func TestSetLogger(t *testing.T) {
	var buf bytes.Buffer
	overlaycam.SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	defer overlaycam.SetLogger(nil)

	cam, _ := newCamera(t)
	require.NoError(t, cam.Start(context.Background(), overlaycam.StartOptions{}))
	cam.Stop()
	assert.Contains(t, buf.String(), "camera: device acquired")

	overlaycam.SetLogger(nil)
	assert.NotNil(t, overlaycam.Logger())
	assert.False(t, overlaycam.Logger().Enabled(context.Background(), slog.LevelError))
}

func ptr[T any](v T) *T { return &v }
