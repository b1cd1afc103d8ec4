// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"sync"
)

// Factory creates a render target for a composite.
type Factory func(opts Options) (Surface, error)

// Backend is a named way of creating surfaces.
type Backend struct {
	Name string

	// Priority orders backends when none is named; higher wins. The
	// built-in "image" backend uses 10.
	Priority int

	Factory Factory

	// Available reports whether the backend can create surfaces on this
	// system. Nil means always.
	Available func() bool
}

func (b *Backend) available() bool {
	return b.Available == nil || b.Available()
}

// Registry holds the backends that preview and capture draw through.
// The zero value is empty and ready to use.
type Registry struct {
	mu       sync.RWMutex
	backends map[string]*Backend
}

var defaultRegistry = &Registry{}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds b to the default registry, replacing any backend of the
// same name.
func Register(b Backend) {
	defaultRegistry.Register(b)
}

// Backends returns the names of the default registry's available
// backends, preferred first.
func Backends() []string {
	return defaultRegistry.Backends()
}

// NewSurface creates a width by height surface on the preferred backend.
func NewSurface(width, height int) (Surface, error) {
	return defaultRegistry.NewSurface("", Options{Width: width, Height: height})
}

// NewSurfaceWithOptions creates a surface on the preferred backend.
func NewSurfaceWithOptions(opts Options) (Surface, error) {
	return defaultRegistry.NewSurface("", opts)
}

// NewSurfaceByNameWithOptions creates a surface on the named backend.
func NewSurfaceByNameWithOptions(name string, opts Options) (Surface, error) {
	return defaultRegistry.NewSurface(name, opts)
}

// Register adds b, replacing any backend of the same name.
func (r *Registry) Register(b Backend) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.backends == nil {
		r.backends = make(map[string]*Backend)
	}
	r.backends[b.Name] = &b
}

// Backends returns the names of the available backends, highest priority
// first and by name within a priority.
func (r *Registry) Backends() []string {
	var names []string
	for _, b := range r.ranked() {
		names = append(names, b.Name)
	}
	return names
}

// NewSurface creates a surface on the named backend or, when name is empty,
// on the first available backend whose factory succeeds.
func (r *Registry) NewSurface(name string, opts Options) (Surface, error) {
	if name != "" {
		r.mu.RLock()
		b, ok := r.backends[name]
		r.mu.RUnlock()
		switch {
		case !ok:
			return nil, &BackendNotFoundError{Name: name}
		case !b.available():
			return nil, &BackendUnavailableError{Name: name}
		}
		return b.Factory(opts)
	}

	var errs []error
	for _, b := range r.ranked() {
		s, err := b.Factory(opts)
		if err == nil {
			return s, nil
		}
		errs = append(errs, fmt.Errorf("surface: %s: %w", b.Name, err))
	}
	if len(errs) == 0 {
		return nil, ErrNoBackendAvailable
	}
	return nil, errors.Join(errs...)
}

func (r *Registry) ranked() []*Backend {
	r.mu.RLock()
	out := make([]*Backend, 0, len(r.backends))
	for _, b := range r.backends {
		out = append(out, b)
	}
	r.mu.RUnlock()

	out = slices.DeleteFunc(out, func(b *Backend) bool { return !b.available() })
	slices.SortFunc(out, func(a, b *Backend) int {
		if c := cmp.Compare(b.Priority, a.Priority); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}

// ErrNoBackendAvailable is returned when no backend can create surfaces.
var ErrNoBackendAvailable = errors.New("surface: no backend available")

// BackendNotFoundError indicates a named backend is not registered.
type BackendNotFoundError struct {
	Name string
}

func (e *BackendNotFoundError) Error() string {
	return "surface: backend not found: " + e.Name
}

// BackendUnavailableError indicates a backend exists but is not available.
type BackendUnavailableError struct {
	Name string
}

func (e *BackendUnavailableError) Error() string {
	return "surface: backend unavailable: " + e.Name
}

// InvalidSizeError is returned by a factory asked for an empty surface.
type InvalidSizeError struct {
	Width, Height int
}

func (e *InvalidSizeError) Error() string {
	return fmt.Sprintf("surface: invalid size %dx%d", e.Width, e.Height)
}

// ImageBackend is the registry name of the built-in CPU surface.
const ImageBackend = "image"

func newImageBackend(opts Options) (Surface, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, &InvalidSizeError{Width: opts.Width, Height: opts.Height}
	}
	s := NewImageSurface(opts.Width, opts.Height)
	if opts.BackgroundColor != nil {
		s.Clear(opts.BackgroundColor)
	}
	return s, nil
}

func init() {
	Register(Backend{Name: ImageBackend, Priority: 10, Factory: newImageBackend})
}
