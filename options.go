package overlaycam

import (
	"time"

	"github.com/gogpu/overlaycam/camera"
	"github.com/gogpu/overlaycam/capture"
	"github.com/gogpu/overlaycam/fonts"
	"github.com/gogpu/overlaycam/resource"
)

// Option configures a Camera during creation.
//
// Example:
//
//	gallery, _ := capture.NewDirSaver("~/Pictures/overlaycam")
//	cam := overlaycam.New(driver,
//	    overlaycam.WithExternalSaver(gallery),
//	    overlaycam.WithResourceTimeout(5*time.Second),
//	)
type Option func(*options)

type options struct {
	fonts           *fonts.Book
	saver           capture.Saver
	external        capture.Saver
	resourceTimeout time.Duration
	backend         string
	idGen           func() string
	loaderOpts      []resource.Option
	sessionOpts     []camera.Option
}

func defaultOptions() options {
	return options{
		resourceTimeout: capture.DefaultResourceTimeout,
	}
}

// WithFonts sets the font book for text layers. The default holds the Go
// fonts.
func WithFonts(b *fonts.Book) Option {
	return func(o *options) { o.fonts = b }
}

// WithSaver sets where captures requested as a location are written.
func WithSaver(s capture.Saver) Option {
	return func(o *options) { o.saver = s }
}

// WithExternalSaver sets the saver used when a capture asks to be saved
// externally, such as a gallery directory.
func WithExternalSaver(s capture.Saver) Option {
	return func(o *options) { o.external = s }
}

// WithResourceTimeout bounds how long a capture waits for overlay images.
func WithResourceTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.resourceTimeout = d
		}
	}
}

// WithSurfaceBackend selects the surface registry backend for preview and
// capture composites.
func WithSurfaceBackend(name string) Option {
	return func(o *options) { o.backend = name }
}

// WithIDGenerator sets how layer ids are generated.
func WithIDGenerator(fn func() string) Option {
	return func(o *options) { o.idGen = fn }
}

// WithLoaderOptions passes options to the image resource loader.
func WithLoaderOptions(opts ...resource.Option) Option {
	return func(o *options) { o.loaderOpts = append(o.loaderOpts, opts...) }
}

// WithSessionOptions passes options to the camera session.
func WithSessionOptions(opts ...camera.Option) Option {
	return func(o *options) { o.sessionOpts = append(o.sessionOpts, opts...) }
}
