package capture

import (
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/gogpu/overlaycam/camera"
	"github.com/gogpu/overlaycam/internal/logging"
	"github.com/gogpu/overlaycam/layer"
	"github.com/gogpu/overlaycam/render"
	"github.com/gogpu/overlaycam/resource"
	"github.com/gogpu/overlaycam/surface"
)

// DefaultResourceTimeout bounds the wait for overlay images.
const DefaultResourceTimeout = 3 * time.Second

// Camera supplies full-resolution stills.
type Camera interface {
	State() camera.State
	Capture(ctx context.Context) (*camera.Frame, error)
}

// Layers supplies layer snapshots.
type Layers interface {
	Snapshot() []layer.Layer
}

// Resources loads overlay images.
type Resources interface {
	Load(src resource.Source) *resource.Future
}

// Coordinator produces captures. At most one capture runs at a time.
type Coordinator struct {
	camera    Camera
	layers    Layers
	resources Resources

	compositor *render.Compositor
	encoder    Encoder
	saver      Saver
	external   Saver
	backend    string
	timeout    time.Duration
	newName    func() string

	busy atomic.Bool
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithSaver sets where location outputs are written. The default writes
// to an "overlaycam" directory under the system temp dir.
func WithSaver(s Saver) Option {
	return func(c *Coordinator) { c.saver = s }
}

// WithExternalSaver sets the saver used for SaveExternally.
func WithExternalSaver(s Saver) Option {
	return func(c *Coordinator) { c.external = s }
}

// WithResourceTimeout bounds the wait for overlay images still loading.
func WithResourceTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithCompositor sets the compositor, for example to share a font book
// with the preview.
func WithCompositor(comp *render.Compositor) Option {
	return func(c *Coordinator) {
		if comp != nil {
			c.compositor = comp
		}
	}
}

// WithEncoder replaces the JPEG encoder.
func WithEncoder(enc Encoder) Option {
	return func(c *Coordinator) {
		if enc != nil {
			c.encoder = enc
		}
	}
}

// WithSurfaceBackend selects the surface registry backend used for the
// composite. The default picks the best available backend.
func WithSurfaceBackend(name string) Option {
	return func(c *Coordinator) { c.backend = name }
}

// WithNameGenerator sets how output file names are chosen.
func WithNameGenerator(fn func() string) Option {
	return func(c *Coordinator) {
		if fn != nil {
			c.newName = fn
		}
	}
}

// NewCoordinator returns a Coordinator. resources may be nil when no image
// layers are used.
func NewCoordinator(cam Camera, layers Layers, resources Resources, opts ...Option) *Coordinator {
	c := &Coordinator{
		camera:    cam,
		layers:    layers,
		resources: resources,
		encoder:   EncodeJPEG,
		timeout:   DefaultResourceTimeout,
		newName: func() string {
			return "overlaycam-" + uuid.NewString() + ".jpg"
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.compositor == nil {
		c.compositor = render.NewCompositor(nil)
	}
	if c.saver == nil {
		if s, err := NewDirSaver(filepath.Join(os.TempDir(), "overlaycam")); err == nil {
			c.saver = s
		}
	}
	return c
}

// Busy reports whether a capture is running.
func (c *Coordinator) Busy() bool {
	return c.busy.Load()
}

// Capture produces one photo. It fails with camera.ErrCaptureInProgress when
// another capture is running and with camera.ErrSessionNotActive when the
// camera is not previewing. It never returns a partial result.
func (c *Coordinator) Capture(ctx context.Context, req Request) (*Result, error) {
	if !c.busy.CompareAndSwap(false, true) {
		return nil, camera.ErrCaptureInProgress
	}
	defer c.busy.Store(false)

	if c.camera.State() != camera.StatePreviewing {
		return nil, camera.ErrSessionNotActive
	}
	if req.SaveExternally && c.external == nil {
		return nil, ErrNoExternalSaver
	}

	start := time.Now()
	snap := c.layers.Snapshot()
	frame, err := c.camera.Capture(ctx)
	if err != nil {
		return nil, err
	}
	images := c.await(ctx, snap)

	img, err := c.composite(frame, snap, images)
	if err != nil {
		return nil, err
	}
	data, err := encode(c.encoder, img, req.Quality)
	if err != nil {
		return nil, err
	}

	res := &Result{Width: img.Bounds().Dx(), Height: img.Bounds().Dy()}
	if req.Output.wantsBase64() {
		res.Base64 = base64.StdEncoding.EncodeToString(data)
	}
	if err := c.deliver(ctx, req, data, res); err != nil {
		return nil, err
	}
	logging.Logger().Info("capture: done",
		"width", res.Width, "height", res.Height, "bytes", len(data),
		"location", res.Location, "elapsed", time.Since(start))
	return res, nil
}

// await resolves the images of snap, waiting at most the resource timeout
// for those still loading. Images that fail or time out are left out.
func (c *Coordinator) await(ctx context.Context, snap []layer.Layer) render.ImageMap {
	images := render.ImageMap{}
	if c.resources == nil {
		return images
	}

	seen := map[string]bool{}
	var futures []*resource.Future
	for _, l := range snap {
		img, ok := l.Content.(*layer.Image)
		if !ok || img == nil || l.EffectiveOpacity() == 0 {
			continue
		}
		src := resource.SourceOf(img)
		if src.IsZero() || seen[src.Key()] {
			continue
		}
		seen[src.Key()] = true
		futures = append(futures, c.resources.Load(src))
	}
	if len(futures) == 0 {
		return images
	}

	wctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var mu sync.Mutex
	var g errgroup.Group
	for _, f := range futures {
		g.Go(func() error {
			img, err := f.Wait(wctx)
			if err != nil {
				logging.Logger().Warn("capture: overlay image dropped", "source", f.Source().String(), "err", err)
				return nil
			}
			src := f.Source()
			mu.Lock()
			images[(&layer.Image{Path: src.Path, URL: src.URL}).Source()] = img
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return images
}

func (c *Coordinator) composite(frame *camera.Frame, snap []layer.Layer, images render.Images) (*image.RGBA, error) {
	base := frame.RGBA()
	if base == nil {
		return nil, fmt.Errorf("capture: invalid frame %dx%d", frame.Width, frame.Height)
	}
	opts := surface.Options{Width: frame.Width, Height: frame.Height}
	var (
		s   surface.Surface
		err error
	)
	if c.backend != "" {
		s, err = surface.NewSurfaceByNameWithOptions(c.backend, opts)
	} else {
		s, err = surface.NewSurfaceWithOptions(opts)
	}
	if err != nil {
		return nil, fmt.Errorf("capture: surface: %w", err)
	}
	defer s.Close()

	rep := c.compositor.Composite(s, base, snap, images)
	for _, sk := range rep.Skipped {
		logging.Logger().Debug("capture: layer skipped", "id", sk.ID, "err", sk.Err)
	}
	if err := s.Flush(); err != nil {
		return nil, fmt.Errorf("capture: flush: %w", err)
	}
	img := s.Snapshot()
	if img == nil {
		return nil, fmt.Errorf("capture: surface returned no pixels")
	}
	return img, nil
}

// deliver writes the requested outputs. On failure every output written so
// far is removed.
func (c *Coordinator) deliver(ctx context.Context, req Request, data []byte, res *Result) error {
	name := c.newName()
	if req.Output.wantsLocation() {
		if c.saver == nil {
			return fmt.Errorf("capture: no saver configured")
		}
		loc, err := c.saver.Save(ctx, name, data)
		if err != nil {
			return err
		}
		res.Location = loc
	}
	if req.SaveExternally {
		loc, err := c.external.Save(ctx, name, data)
		if err != nil {
			if res.Location != "" {
				if rerr := c.saver.Remove(res.Location); rerr != nil {
					logging.Logger().Warn("capture: cleanup failed", "location", res.Location, "err", rerr)
				}
				res.Location = ""
			}
			return fmt.Errorf("capture: external save: %w", err)
		}
		res.ExternalLocation = loc
	}
	return nil
}
