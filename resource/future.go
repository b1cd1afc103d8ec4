package resource

import (
	"context"
	"image"
	"sync"
)

// Future is the eventual result of one load.
type Future struct {
	src    Source
	cancel context.CancelFunc

	done chan struct{}
	once sync.Once
	img  image.Image
	err  error
}

func newFuture(src Source, cancel context.CancelFunc) *Future {
	return &Future{src: src, cancel: cancel, done: make(chan struct{})}
}

func failed(src Source, err error) *Future {
	f := newFuture(src, func() {})
	f.resolve(nil, &LoadError{Source: src, Err: err})
	return f
}

func (f *Future) resolve(img image.Image, err error) {
	f.once.Do(func() {
		f.img, f.err = img, err
		close(f.done)
	})
}

// Source returns the source being loaded.
func (f *Future) Source() Source {
	return f.src
}

// Done is closed once the load has finished.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Peek returns the image if the load finished successfully. It never blocks.
func (f *Future) Peek() (image.Image, bool) {
	select {
	case <-f.done:
		return f.img, f.err == nil
	default:
		return nil, false
	}
}

// Err returns the load error, or nil while the load is running or after it
// succeeded.
func (f *Future) Err() error {
	select {
	case <-f.done:
		return f.err
	default:
		return nil
	}
}

// Wait blocks until the load finishes or ctx is done. A ctx error does not
// cancel the load.
func (f *Future) Wait(ctx context.Context) (image.Image, error) {
	select {
	case <-f.done:
		return f.img, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Cancel aborts the load if it is still running.
func (f *Future) Cancel() {
	f.cancel()
}
