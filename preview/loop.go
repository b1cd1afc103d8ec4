// Package preview composites the live camera stream.
//
// A [Loop] keeps only the newest frame that has not been composited yet.
// One worker goroutine renders it, so at most one composite is in flight and
// a slow composite drops intermediate frames instead of queueing them.
// Image layers that are still loading are skipped until they are ready.
package preview

import (
	"context"
	"errors"
	"image"
	"sync"
	"sync/atomic"

	"github.com/gogpu/overlaycam/camera"
	"github.com/gogpu/overlaycam/internal/logging"
	"github.com/gogpu/overlaycam/layer"
	"github.com/gogpu/overlaycam/render"
	"github.com/gogpu/overlaycam/surface"
)

// ErrRunning is returned by Start on a running loop.
var ErrRunning = errors.New("preview: loop already running")

// Frames is a source of camera frames.
type Frames interface {
	Subscribe(fn func(*camera.Frame)) (cancel func())
}

// Layers supplies layer snapshots.
type Layers interface {
	Snapshot() []layer.Layer
}

// Loop composites frames as they arrive.
type Loop struct {
	frames Frames
	layers Layers
	images render.Images
	comp   *render.Compositor

	backend string
	vpW     atomic.Int64
	vpH     atomic.Int64

	mu      sync.Mutex
	pending *camera.Frame
	wake    chan struct{}
	cancel  func()
	done    chan struct{}

	latest   atomic.Pointer[image.RGBA]
	dropped  atomic.Uint64
	rendered atomic.Uint64

	subMu   sync.RWMutex
	subs    map[uint64]func(*image.RGBA)
	nextSub uint64
}

// Option configures a Loop.
type Option func(*Loop)

// WithViewport sets the output size. Without it each composite has the size
// of its frame.
func WithViewport(w, h int) Option {
	return func(l *Loop) { l.SetViewport(w, h) }
}

// WithImages sets the non-blocking image lookup for image layers.
func WithImages(images render.Images) Option {
	return func(l *Loop) { l.images = images }
}

// WithCompositor sets the compositor.
func WithCompositor(c *render.Compositor) Option {
	return func(l *Loop) {
		if c != nil {
			l.comp = c
		}
	}
}

// WithSurfaceBackend selects a named surface backend.
func WithSurfaceBackend(name string) Option {
	return func(l *Loop) { l.backend = name }
}

// NewLoop returns a stopped Loop.
func NewLoop(frames Frames, layers Layers, opts ...Option) *Loop {
	l := &Loop{
		frames: frames,
		layers: layers,
		wake:   make(chan struct{}, 1),
		subs:   make(map[uint64]func(*image.RGBA)),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.comp == nil {
		l.comp = render.NewCompositor(nil)
	}
	return l
}

// SetViewport changes the output size. Non-positive sizes follow the frame.
func (l *Loop) SetViewport(w, h int) {
	if w <= 0 || h <= 0 {
		w, h = 0, 0
	}
	l.vpW.Store(int64(w))
	l.vpH.Store(int64(h))
}

// Start subscribes to frames and starts the worker. The loop runs until
// Stop is called or ctx is done.
func (l *Loop) Start(ctx context.Context) error {
	l.mu.Lock()
	if l.cancel != nil {
		l.mu.Unlock()
		return ErrRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	l.cancel, l.done = cancel, done
	l.mu.Unlock()

	go l.run(ctx, done)

	// Subscribing takes the source's lock, which frame delivery holds while
	// calling offer, so it must happen without l.mu.
	unsubscribe := l.frames.Subscribe(l.offer)

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.done != done {
		// Stopped meanwhile.
		unsubscribe()
		return nil
	}
	l.cancel = func() {
		unsubscribe()
		cancel()
	}
	return nil
}

// Stop stops the worker and waits for it to exit. The latest output is kept.
func (l *Loop) Stop() {
	l.mu.Lock()
	cancel, done := l.cancel, l.done
	l.cancel, l.done = nil, nil
	l.pending = nil
	l.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether the worker is active.
func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cancel != nil
}

// offer replaces the pending frame. It never blocks.
func (l *Loop) offer(f *camera.Frame) {
	l.mu.Lock()
	if l.cancel == nil {
		l.mu.Unlock()
		return
	}
	if l.pending != nil {
		l.dropped.Add(1)
		logging.Logger().Debug("preview: frame coalesced", "sequence", l.pending.Sequence)
	}
	l.pending = f
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *Loop) take() *camera.Frame {
	l.mu.Lock()
	defer l.mu.Unlock()
	f := l.pending
	l.pending = nil
	return f
}

func (l *Loop) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	var s surface.Surface
	defer func() {
		if s != nil {
			s.Close()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-l.wake:
		}
		f := l.take()
		if f == nil {
			continue
		}
		var err error
		s, err = l.surfaceFor(s, f)
		if err != nil {
			logging.Logger().Warn("preview: surface", "err", err)
			continue
		}
		l.render(s, f)
	}
}

// surfaceFor returns s if it already has the output size for f, or a new
// surface otherwise.
func (l *Loop) surfaceFor(s surface.Surface, f *camera.Frame) (surface.Surface, error) {
	w, h := int(l.vpW.Load()), int(l.vpH.Load())
	if w == 0 || h == 0 {
		w, h = f.Width, f.Height
	}
	if s != nil && s.Width() == w && s.Height() == h {
		return s, nil
	}
	if s != nil {
		s.Close()
	}
	opts := surface.Options{Width: w, Height: h}
	if l.backend != "" {
		return surface.NewSurfaceByNameWithOptions(l.backend, opts)
	}
	return surface.NewSurfaceWithOptions(opts)
}

func (l *Loop) render(s surface.Surface, f *camera.Frame) {
	base := f.RGBA()
	if base == nil {
		logging.Logger().Debug("preview: invalid frame", "sequence", f.Sequence)
		return
	}
	l.comp.Composite(s, base, l.layers.Snapshot(), l.images)
	if err := s.Flush(); err != nil {
		logging.Logger().Warn("preview: flush", "err", err)
		return
	}
	out := s.Snapshot()
	if out == nil {
		return
	}
	l.latest.Store(out)
	l.rendered.Add(1)

	l.subMu.RLock()
	defer l.subMu.RUnlock()
	for _, fn := range l.subs {
		fn(out)
	}
}

// Latest returns the most recent composite, or nil. The image is shared
// and must not be modified.
func (l *Loop) Latest() *image.RGBA {
	return l.latest.Load()
}

// Dropped returns how many frames were replaced before being composited.
func (l *Loop) Dropped() uint64 {
	return l.dropped.Load()
}

// Rendered returns how many composites have been produced.
func (l *Loop) Rendered() uint64 {
	return l.rendered.Load()
}

// Subscribe registers fn for every composite. fn runs on the worker and
// delays the next composite while it runs. The image must not be modified.
func (l *Loop) Subscribe(fn func(*image.RGBA)) (cancel func()) {
	l.subMu.Lock()
	id := l.nextSub
	l.nextSub++
	l.subs[id] = fn
	l.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.subMu.Lock()
			delete(l.subs, id)
			l.subMu.Unlock()
		})
	}
}
