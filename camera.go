package overlaycam

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"sync"

	"github.com/gogpu/overlaycam/camera"
	"github.com/gogpu/overlaycam/capture"
	"github.com/gogpu/overlaycam/layer"
	"github.com/gogpu/overlaycam/preview"
	"github.com/gogpu/overlaycam/render"
	"github.com/gogpu/overlaycam/resource"
)

// StartOptions configures Start.
type StartOptions struct {
	Facing camera.Facing

	// Viewport is the preview output size. The zero value follows the
	// camera frame size.
	Viewport image.Point

	// ZoomGesture enables HandlePinch.
	ZoomGesture bool

	// FocusGesture enables HandleTap.
	FocusGesture bool
}

// Camera is one camera view with its overlays.
//
// Each Camera owns its own layers; nothing is shared between instances.
// All methods are safe for concurrent use.
type Camera struct {
	session *camera.Session
	store   *layer.Store
	loader  *resource.Loader
	comp    *render.Compositor
	preview *preview.Loop
	capture *capture.Coordinator

	mu       sync.Mutex
	gestures StartOptions
}

// New returns a Camera that acquires devices through driver.
func New(driver camera.Driver, opts ...Option) *Camera {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	var storeOpts []layer.StoreOption
	if o.idGen != nil {
		storeOpts = append(storeOpts, layer.WithIDGenerator(o.idGen))
	}

	c := &Camera{
		session: camera.NewSession(driver, o.sessionOpts...),
		store:   layer.NewStore(storeOpts...),
		loader:  resource.NewLoader(o.loaderOpts...),
		comp:    render.NewCompositor(render.NewRenderer(o.fonts)),
	}
	c.preview = preview.NewLoop(c.session, c.store,
		preview.WithImages(c.loader),
		preview.WithCompositor(c.comp),
		preview.WithSurfaceBackend(o.backend),
	)

	capOpts := []capture.Option{
		capture.WithCompositor(c.comp),
		capture.WithResourceTimeout(o.resourceTimeout),
		capture.WithSurfaceBackend(o.backend),
	}
	if o.saver != nil {
		capOpts = append(capOpts, capture.WithSaver(o.saver))
	}
	if o.external != nil {
		capOpts = append(capOpts, capture.WithExternalSaver(o.external))
	}
	c.capture = capture.NewCoordinator(c.session, c.store, c.loader, capOpts...)
	return c
}

// Start acquires the camera and starts the live preview. Start on a
// running camera only updates the viewport and gesture settings.
func (c *Camera) Start(ctx context.Context, opts StartOptions) error {
	c.mu.Lock()
	c.gestures = opts
	c.mu.Unlock()
	c.preview.SetViewport(opts.Viewport.X, opts.Viewport.Y)

	if err := c.session.Start(ctx, opts.Facing); err != nil {
		return err
	}
	if !c.preview.Running() {
		if err := c.preview.Start(context.Background()); err != nil && !errors.Is(err, preview.ErrRunning) {
			return err
		}
	}
	return nil
}

// Stop stops the preview and releases the camera. It is idempotent.
func (c *Camera) Stop() {
	c.preview.Stop()
	c.session.Stop()
}

// Close stops the camera and cancels outstanding image loads.
func (c *Camera) Close() error {
	c.Stop()
	return c.loader.Close()
}

// State returns the session state.
func (c *Camera) State() camera.State {
	return c.session.State()
}

// Settings returns the stored device configuration.
func (c *Camera) Settings() camera.Settings {
	return c.session.Settings()
}

// Capture takes a photo with the current overlays.
func (c *Camera) Capture(ctx context.Context, req capture.Request) (*capture.Result, error) {
	return c.capture.Capture(ctx, req)
}

// SwitchCamera swaps between the front and back cameras.
func (c *Camera) SwitchCamera(ctx context.Context) error {
	return c.session.SwitchCamera(ctx)
}

// SetFlashMode sets the flash mode. Unsupported modes are stored and ignored.
func (c *Camera) SetFlashMode(m camera.FlashMode) {
	c.session.SetFlashMode(m)
}

// SetZoom sets the zoom factor, clamped to the device range.
func (c *Camera) SetZoom(factor float64) {
	c.session.SetZoom(factor)
}

// SetFocus sets a normalised focus point.
func (c *Camera) SetFocus(x, y float64) {
	c.session.SetFocus(x, y)
}

// HandleTap focuses on a tap at (px, py) in preview pixels. It does nothing
// unless the focus gesture is enabled.
func (c *Camera) HandleTap(px, py float64) {
	c.mu.Lock()
	g := c.gestures
	c.mu.Unlock()
	if !g.FocusGesture {
		return
	}
	w, h := g.Viewport.X, g.Viewport.Y
	if w <= 0 || h <= 0 {
		f := c.session.LatestFrame()
		if f == nil {
			return
		}
		w, h = f.Width, f.Height
	}
	c.session.SetFocus(px/float64(w), py/float64(h))
}

// HandlePinch multiplies the zoom by scale. It does nothing unless the zoom
// gesture is enabled.
func (c *Camera) HandlePinch(scale float64) {
	c.mu.Lock()
	enabled := c.gestures.ZoomGesture
	c.mu.Unlock()
	if !enabled || !(scale > 0) || math.IsInf(scale, 0) {
		return
	}
	c.session.SetZoom(c.session.Settings().Zoom * scale)
}

// AddLayer adds l and returns its id. Adding an id that already exists
// replaces that layer and moves it to the top of its z-index.
func (c *Camera) AddLayer(l layer.Layer) (string, error) {
	id, err := c.store.Add(l)
	if err != nil {
		return "", err
	}
	c.prefetch(l)
	c.retain()
	return id, nil
}

// AddLayerDefinition adds a layer described by a wire definition.
func (c *Camera) AddLayerDefinition(d layer.Definition) (string, error) {
	l, err := d.Layer()
	if err != nil {
		return "", err
	}
	return c.AddLayer(l)
}

// UpdateLayer applies p to the layer id.
func (c *Camera) UpdateLayer(id string, p layer.Patch) error {
	if err := c.store.Update(id, p); err != nil {
		return err
	}
	if l, ok := c.store.Get(id); ok {
		c.prefetch(l)
	}
	c.retain()
	return nil
}

// UpdateLayerDefinition applies the fields present in d to the layer id.
// An unknown id is reported before any problem with d.
func (c *Camera) UpdateLayerDefinition(id string, d layer.Definition) error {
	if _, ok := c.store.Get(id); !ok {
		return fmt.Errorf("%w: %q", layer.ErrNotFound, id)
	}
	p, err := d.Patch()
	if err != nil {
		return err
	}
	return c.UpdateLayer(id, p)
}

// RemoveLayer removes the layer id. Removing an unknown id does nothing.
func (c *Camera) RemoveLayer(id string) {
	if c.store.Remove(id) {
		c.retain()
	}
}

// ClearLayers removes every layer.
func (c *Camera) ClearLayers() {
	c.store.Clear()
	c.loader.Retain(nil)
}

// Layers returns the layers in render order.
func (c *Camera) Layers() []layer.Layer {
	return c.store.Snapshot()
}

// Layer returns the layer id.
func (c *Camera) Layer(id string) (layer.Layer, bool) {
	return c.store.Get(id)
}

// Preview returns the live preview loop.
func (c *Camera) Preview() *preview.Loop {
	return c.preview
}

// prefetch starts loading an image layer's pixels so that preview and
// capture find them ready.
func (c *Camera) prefetch(l layer.Layer) {
	if img, ok := l.Content.(*layer.Image); ok {
		if src := resource.SourceOf(img); !src.IsZero() {
			c.loader.Load(src)
		}
	}
}

// retain drops cached images no layer refers to.
func (c *Camera) retain() {
	var keep []resource.Source
	for _, l := range c.store.Snapshot() {
		if img, ok := l.Content.(*layer.Image); ok {
			keep = append(keep, resource.SourceOf(img))
		}
	}
	c.loader.Retain(keep)
}
