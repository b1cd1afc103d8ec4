// Package resource loads overlay images asynchronously.
//
// A [Loader] starts at most one fetch per distinct [Source] and hands out a
// [Future] for it. The preview path peeks futures without blocking; capture
// waits on them with a deadline. Sources are local paths (including "~" and
// file:// forms), data: URIs and http(s) URLs. Content is sniffed before
// decoding; PNG, JPEG, GIF, WebP, BMP and TIFF are supported.
package resource

import (
	"context"
	"errors"
	"fmt"
	"image"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/gogpu/overlaycam/internal/logging"
	"github.com/gogpu/overlaycam/layer"
)

// ErrLoadFailure wraps every error produced while fetching or decoding.
var ErrLoadFailure = errors.New("resource: load failure")

// ErrClosed is returned for loads started after Close.
var ErrClosed = errors.New("resource: loader closed")

// LoadError reports which source failed.
type LoadError struct {
	Source Source
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("resource: load %s: %v", e.Source, e.Err)
}

// Unwrap returns both ErrLoadFailure and the cause.
func (e *LoadError) Unwrap() []error {
	return []error{ErrLoadFailure, e.Err}
}

// Defaults.
const (
	DefaultMaxBytes    = 32 << 20
	DefaultConcurrency = 4
	DefaultTimeout     = 30 * time.Second
)

// Loader fetches and decodes images, deduplicating by source.
//
// Failed loads stay cached until the source is forgotten, so a broken
// overlay is not refetched for every preview frame.
type Loader struct {
	client    *http.Client
	maxBytes  int64
	timeout   time.Duration
	userAgent string
	sem       *semaphore.Weighted

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	entries map[string]*Future
	closed  bool
}

// Option configures a Loader.
type Option func(*Loader)

// WithHTTPClient sets the client used for remote sources.
func WithHTTPClient(c *http.Client) Option {
	return func(l *Loader) {
		if c != nil {
			l.client = c
		}
	}
}

// WithMaxBytes caps the size of a single resource.
func WithMaxBytes(n int64) Option {
	return func(l *Loader) {
		if n > 0 {
			l.maxBytes = n
		}
	}
}

// WithTimeout bounds each individual fetch.
func WithTimeout(d time.Duration) Option {
	return func(l *Loader) {
		if d > 0 {
			l.timeout = d
		}
	}
}

// WithConcurrency bounds the number of fetches in flight.
func WithConcurrency(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.sem = semaphore.NewWeighted(int64(n))
		}
	}
}

// WithUserAgent sets the User-Agent header of remote requests.
func WithUserAgent(ua string) Option {
	return func(l *Loader) {
		l.userAgent = ua
	}
}

// NewLoader returns a ready Loader. Call Close to cancel outstanding loads.
func NewLoader(opts ...Option) *Loader {
	ctx, cancel := context.WithCancel(context.Background())
	l := &Loader{
		client:   http.DefaultClient,
		maxBytes: DefaultMaxBytes,
		timeout:  DefaultTimeout,
		sem:      semaphore.NewWeighted(DefaultConcurrency),
		ctx:      ctx,
		cancel:   cancel,
		entries:  make(map[string]*Future),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load returns the future for src, starting a fetch if none exists.
func (l *Loader) Load(src Source) *Future {
	k := src.Key()
	l.mu.Lock()
	defer l.mu.Unlock()
	if f, ok := l.entries[k]; ok {
		return f
	}
	if l.closed {
		return failed(src, ErrClosed)
	}

	ctx, cancel := context.WithTimeout(l.ctx, l.timeout)
	f := newFuture(src, cancel)
	l.entries[k] = f
	go l.run(ctx, f)
	return f
}

func (l *Loader) run(ctx context.Context, f *Future) {
	defer f.cancel()
	if err := l.sem.Acquire(ctx, 1); err != nil {
		f.resolve(nil, &LoadError{Source: f.src, Err: err})
		return
	}
	defer l.sem.Release(1)

	start := time.Now()
	img, err := l.load(ctx, f.src)
	if err != nil {
		err = &LoadError{Source: f.src, Err: err}
		logging.Logger().Warn("resource: load failed", "source", f.src.String(), "err", err)
	} else {
		b := img.Bounds()
		logging.Logger().Debug("resource: loaded", "source", f.src.String(),
			"width", b.Dx(), "height", b.Dy(), "elapsed", time.Since(start))
	}
	f.resolve(img, err)
}

func (l *Loader) load(ctx context.Context, src Source) (image.Image, error) {
	data, err := l.fetch(ctx, src)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return decode(data)
}

// Lookup returns the decoded image for an image layer if it is ready,
// starting its load otherwise. It never blocks.
func (l *Loader) Lookup(img *layer.Image) (image.Image, bool) {
	src := SourceOf(img)
	if src.IsZero() {
		return nil, false
	}
	return l.Load(src).Peek()
}

// Forget cancels and drops the entry for src.
func (l *Loader) Forget(src Source) {
	l.mu.Lock()
	f, ok := l.entries[src.Key()]
	delete(l.entries, src.Key())
	l.mu.Unlock()
	if ok {
		f.Cancel()
	}
}

// Retain drops every entry whose source is not in keep, cancelling loads
// still in flight.
func (l *Loader) Retain(keep []Source) {
	want := make(map[string]bool, len(keep))
	for _, s := range keep {
		want[s.Key()] = true
	}
	var dropped []*Future
	l.mu.Lock()
	for k, f := range l.entries {
		if !want[k] {
			dropped = append(dropped, f)
			delete(l.entries, k)
		}
	}
	l.mu.Unlock()
	for _, f := range dropped {
		f.Cancel()
	}
}

// Len returns the number of cached entries.
func (l *Loader) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Close cancels every outstanding load. Later loads fail with ErrClosed.
func (l *Loader) Close() error {
	l.mu.Lock()
	l.closed = true
	l.entries = make(map[string]*Future)
	l.mu.Unlock()
	l.cancel()
	return nil
}
