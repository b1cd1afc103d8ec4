package camera

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/gogpu/overlaycam/internal/logging"
)

// Session drives one camera device.
//
// All methods are safe for concurrent use. Device configuration calls are
// serialised with state changes; device acquisition and still capture run
// without holding the session lock.
type Session struct {
	driver Driver

	mu       sync.Mutex
	state    State
	settings Settings
	dev      Device
	caps     Capabilities

	// acquiring is closed once the latest device acquisition has returned,
	// including the release of a device opened for a stale generation.
	// Each acquisition waits for the previous one before opening, so at most
	// one device is held at a time.
	acquiring chan struct{}

	// gen identifies the current device. It changes whenever a device is
	// released, so frames from a released device can be recognised.
	gen atomic.Uint64

	latest atomic.Pointer[Frame]

	subMu   sync.RWMutex
	subs    map[uint64]func(*Frame)
	nextSub uint64

	hook func(from, to State)
}

// Option configures a Session.
type Option func(*Session)

// WithFlashMode sets the initial flash mode.
func WithFlashMode(m FlashMode) Option {
	return func(s *Session) { s.settings.Flash = m }
}

// WithZoom sets the initial zoom factor.
func WithZoom(z float64) Option {
	return func(s *Session) { s.settings.Zoom = clampZoom(z, Capabilities{}) }
}

// WithStateHook registers fn to be called after every state transition.
// fn runs with the session lock held and must not call back into the session.
func WithStateHook(fn func(from, to State)) Option {
	return func(s *Session) { s.hook = fn }
}

// NewSession returns an idle session that acquires devices through d.
func NewSession(d Driver, opts ...Option) *Session {
	s := &Session{
		driver:   d,
		settings: Settings{Zoom: 1},
		subs:     make(map[uint64]func(*Frame)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Settings returns the stored device configuration.
func (s *Session) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// Capabilities returns the capabilities of the current device, or the zero
// value when none is held.
func (s *Session) Capabilities() Capabilities {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.caps
}

// Start acquires the device for facing and begins previewing. Start on a
// session that already holds or is acquiring a device does nothing.
func (s *Session) Start(ctx context.Context, facing Facing) error {
	s.mu.Lock()
	if s.state.Active() {
		s.mu.Unlock()
		return nil
	}
	s.setState(StateRequesting)
	g := s.gen.Add(1)
	prev, done := s.acquiring, make(chan struct{})
	s.acquiring = done
	s.mu.Unlock()

	return s.acquire(ctx, facing, g, prev, done)
}

// SwitchCamera releases the current device and acquires the opposite one.
// On failure the session is left idle.
func (s *Session) SwitchCamera(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StatePreviewing {
		s.mu.Unlock()
		return ErrSessionNotActive
	}
	s.setState(StateSwitching)
	old := s.dev
	s.dev, s.caps = nil, Capabilities{}
	g := s.gen.Add(1)
	facing := s.settings.Facing.Opposite()
	prev, done := s.acquiring, make(chan struct{})
	s.acquiring = done
	s.mu.Unlock()

	s.latest.Store(nil)
	release(old)
	return s.acquire(ctx, facing, g, prev, done)
}

// acquire waits for the acquisition behind prev, opens a device for
// generation g and moves the session to Previewing, or back to Idle on
// failure. done is closed once both this and the earlier acquisition have
// returned.
func (s *Session) acquire(ctx context.Context, facing Facing, g uint64, prev, done chan struct{}) error {
	var dev Device
	err := waitFor(ctx, prev)
	waited := err == nil
	if !waited {
		// The earlier Open is still running; later acquisitions keep
		// waiting for it through done.
		go func() {
			<-prev
			close(done)
		}()
	} else {
		defer close(done)
		dev, err = s.driver.Open(ctx, facing, s.sink(g))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if waited && s.acquiring == done {
		s.acquiring = nil
	}
	if s.gen.Load() != g {
		// Stopped while the device was being acquired.
		if dev != nil {
			release(dev)
		}
		if err != nil {
			return classify(err)
		}
		return ErrSessionNotActive
	}
	if err != nil {
		s.setState(StateIdle)
		err = classify(err)
		logging.Logger().Warn("camera: acquire failed", "facing", facing.String(), "err", err)
		return err
	}

	s.dev, s.caps = dev, dev.Capabilities()
	s.settings.Facing = facing
	s.applyLocked()
	s.setState(StatePreviewing)
	logging.Logger().Info("camera: device acquired", "facing", facing.String())
	return nil
}

func waitFor(ctx context.Context, ch chan struct{}) error {
	if ch == nil {
		return nil
	}
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func classify(err error) error {
	switch {
	case errors.Is(err, ErrPermissionDenied), errors.Is(err, ErrDeviceUnavailable):
		return err
	}
	return fmt.Errorf("%w: %w", ErrDeviceUnavailable, err)
}

// Stop releases the device and the latest frame. It is idempotent.
func (s *Session) Stop() {
	s.mu.Lock()
	if s.state == StateStopped && s.dev == nil {
		s.mu.Unlock()
		return
	}
	dev := s.dev
	s.dev, s.caps = nil, Capabilities{}
	s.gen.Add(1)
	s.setState(StateStopped)
	s.mu.Unlock()

	s.latest.Store(nil)
	if dev != nil {
		release(dev)
		logging.Logger().Info("camera: device released")
	}
}

func release(dev Device) {
	if dev == nil {
		return
	}
	if err := dev.Close(); err != nil {
		logging.Logger().Warn("camera: device close failed", "err", err)
	}
}

// Capture takes one full-resolution still. The session returns to
// Previewing whether or not the capture succeeds.
func (s *Session) Capture(ctx context.Context) (*Frame, error) {
	s.mu.Lock()
	switch s.state {
	case StateCapturing:
		s.mu.Unlock()
		return nil, ErrCaptureInProgress
	case StatePreviewing:
	default:
		s.mu.Unlock()
		return nil, ErrSessionNotActive
	}
	s.setState(StateCapturing)
	dev := s.dev
	g := s.gen.Load()
	s.mu.Unlock()

	f, err := dev.CaptureStill(ctx)

	s.mu.Lock()
	if s.gen.Load() == g && s.state == StateCapturing {
		s.setState(StatePreviewing)
	}
	s.mu.Unlock()

	if err != nil {
		return nil, fmt.Errorf("camera: capture: %w", err)
	}
	if !f.Valid() {
		return nil, errors.New("camera: capture: device returned an invalid frame")
	}
	return f, nil
}

// SetFlashMode stores m and applies it when the device supports it.
func (s *Session) SetFlashMode(m FlashMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.Flash = m
	if s.dev != nil {
		s.applyFlash()
	}
}

// SetZoom stores factor, clamped to [1, MaxZoom], and applies it when the
// device supports zoom.
func (s *Session) SetZoom(factor float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.Zoom = clampZoom(factor, s.caps)
	if s.dev != nil {
		s.applyZoom()
	}
}

// SetFocus stores the normalised focus point, clamped to [0, 1], and
// applies it when the device supports focus.
func (s *Session) SetFocus(x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.Focus = FocusPoint{X: clamp01(x), Y: clamp01(y), Valid: true}
	if s.dev != nil {
		s.applyFocus()
	}
}

// ClearFocus returns to continuous autofocus for the next device.
func (s *Session) ClearFocus() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.Focus = FocusPoint{}
}

func (s *Session) applyLocked() {
	s.settings.Zoom = clampZoom(s.settings.Zoom, s.caps)
	s.applyFlash()
	s.applyZoom()
	if s.settings.Focus.Valid {
		s.applyFocus()
	}
}

func (s *Session) applyFlash() {
	ok := s.caps.Flash
	if s.settings.Flash == FlashTorch {
		ok = s.caps.Torch
	}
	if !ok {
		return
	}
	if err := s.dev.SetFlash(s.settings.Flash); err != nil {
		logging.Logger().Warn("camera: set flash failed", "mode", s.settings.Flash.String(), "err", err)
	}
}

func (s *Session) applyZoom() {
	if !s.caps.Zoom {
		return
	}
	if err := s.dev.SetZoom(s.settings.Zoom); err != nil {
		logging.Logger().Warn("camera: set zoom failed", "zoom", s.settings.Zoom, "err", err)
	}
}

func (s *Session) applyFocus() {
	if !s.caps.Focus {
		return
	}
	f := s.settings.Focus
	if err := s.dev.SetFocus(f.X, f.Y); err != nil {
		logging.Logger().Warn("camera: set focus failed", "x", f.X, "y", f.Y, "err", err)
	}
}

func clampZoom(z float64, caps Capabilities) float64 {
	if math.IsNaN(z) || z < 1 {
		return 1
	}
	if caps.MaxZoom >= 1 && z > caps.MaxZoom {
		return caps.MaxZoom
	}
	return z
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// setState must be called with mu held.
func (s *Session) setState(to State) {
	from := s.state
	if from == to {
		return
	}
	s.state = to
	logging.Logger().Debug("camera: state", "from", from.String(), "to", to.String())
	if s.hook != nil {
		s.hook(from, to)
	}
}

// sink returns the frame callback for device generation g.
func (s *Session) sink(g uint64) FrameSink {
	return func(f *Frame) {
		if f == nil || s.gen.Load() != g {
			return
		}
		s.latest.Store(f)
		if s.gen.Load() != g {
			s.latest.CompareAndSwap(f, nil)
			return
		}
		s.subMu.RLock()
		defer s.subMu.RUnlock()
		for _, fn := range s.subs {
			fn(f)
		}
	}
}

// LatestFrame returns the most recent preview frame, or nil.
func (s *Session) LatestFrame() *Frame {
	return s.latest.Load()
}

// Subscribe registers fn for every preview frame of the current and future
// devices. fn runs on the delivery goroutine and must not block.
// The returned function removes the subscription.
func (s *Session) Subscribe(fn func(*Frame)) (cancel func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}
