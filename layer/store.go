package layer

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// Store holds the layers of one camera view.
//
// Store is safe for concurrent use. Readers never see live layers: Snapshot
// and Get return deep copies, so a composite in progress is unaffected by
// later mutations.
type Store struct {
	mu     sync.RWMutex
	layers map[string]Layer
	seq    uint64
	newID  func() string
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithIDGenerator sets the function used to name layers added without an ID.
// The default generates random UUIDs.
func WithIDGenerator(fn func() string) StoreOption {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// NewStore returns an empty store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		layers: make(map[string]Layer),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add validates l and inserts it, returning its id.
//
// An empty ID is replaced by a generated one. Adding an ID that is already
// present replaces that layer; the replacement gets a fresh sequence and so
// draws after earlier layers with the same ZIndex.
func (s *Store) Add(l Layer) (string, error) {
	if err := Validate(l); err != nil {
		return "", err
	}
	l = l.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	if l.ID == "" {
		l.ID = s.newID()
	}
	s.seq++
	l.Sequence = s.seq
	s.layers[l.ID] = l
	return l.ID, nil
}

// Update applies p to the layer with the given id. The layer keeps its
// sequence. Returns ErrNotFound if id is not present.
func (s *Store) Update(id string, p Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.layers[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	next := p.Apply(l)
	if err := Validate(next); err != nil {
		return err
	}
	s.layers[id] = next
	return nil
}

// Remove deletes the layer with the given id. Removing an unknown id is a
// no-op. It reports whether a layer was removed.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.layers[id]
	delete(s.layers, id)
	return ok
}

// Clear removes every layer.
func (s *Store) Clear() {
	s.mu.Lock()
	clear(s.layers)
	s.mu.Unlock()
}

// Get returns a copy of the layer with the given id.
func (s *Store) Get(id string) (Layer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.layers[id]
	if !ok {
		return Layer{}, false
	}
	return l.Clone(), true
}

// Len returns the number of layers.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.layers)
}

// Snapshot returns a deep copy of every layer in render order.
func (s *Store) Snapshot() []Layer {
	s.mu.RLock()
	out := make([]Layer, 0, len(s.layers))
	for _, l := range s.layers {
		out = append(out, l.Clone())
	}
	s.mu.RUnlock()
	Sort(out)
	return out
}

// Sort orders layers for drawing: ascending ZIndex, then ascending Sequence.
// The sort is stable, so layers that tie on both keep their relative order.
func Sort(layers []Layer) {
	slices.SortStableFunc(layers, func(a, b Layer) int {
		if c := cmp.Compare(a.ZIndex, b.ZIndex); c != 0 {
			return c
		}
		return cmp.Compare(a.Sequence, b.Sequence)
	})
}

// Validate reports whether l can be stored.
func Validate(l Layer) error {
	switch c := l.Content.(type) {
	case *Image:
		if c == nil {
			return &ValidationError{Field: "content", Reason: "nil image"}
		}
		if (c.Path == "") == (c.URL == "") {
			return &ValidationError{Field: "image", Reason: "exactly one of path or url is required"}
		}
	case *Text:
		if c == nil {
			return &ValidationError{Field: "content", Reason: "nil text"}
		}
		if !finite(c.FontSize) || !finite(c.Padding) {
			return &ValidationError{Field: "text", Reason: "non-finite size or padding"}
		}
	case *Shape:
		if c == nil {
			return &ValidationError{Field: "content", Reason: "nil shape"}
		}
		if !finite(c.StrokeWidth) {
			return &ValidationError{Field: "strokeWidth", Reason: "not finite"}
		}
	case nil:
		return &ValidationError{Field: "type", Reason: "missing content"}
	default:
		return &ValidationError{Field: "type", Reason: fmt.Sprintf("unsupported content %T", c)}
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"x", l.X}, {"y", l.Y},
		{"width", l.Width.V}, {"height", l.Height.V},
		{"opacity", l.Opacity}, {"rotation", l.Rotation},
	} {
		if !finite(f.v) {
			return &ValidationError{Field: f.name, Reason: "not finite"}
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
