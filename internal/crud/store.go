package crud

import (
	"context"
	"net/http"
	"sync"

	"labadmin/internal/logging"

	"go.uber.org/zap"
)

// Store holds the authoritative in-memory copy of one collection. Every
// mutation is followed by a full Load; there are no partial updates.
type Store[T Record] struct {
	desc      Descriptor
	transport Transport

	mu     sync.RWMutex
	items  []T
	loaded bool
}

// NewStore returns an empty store for desc.
func NewStore[T Record](desc Descriptor, transport Transport) *Store[T] {
	return &Store[T]{desc: desc, transport: transport}
}

// Load fetches the full collection. On failure the previous collection is
// kept and a KindFetchFailed error is returned. No retry is attempted.
func (s *Store[T]) Load(ctx context.Context) error {
	var items []T
	req := Request{Method: http.MethodGet, Path: s.desc.Paths.List}
	if err := s.transport.Do(ctx, req, &items); err != nil {
		logging.Get(logging.CategoryStore).Warn("collection load failed",
			zap.String("entity", s.desc.Name), zap.Error(err))
		return &Error{Kind: KindFetchFailed, Entity: s.desc.Name, Err: err}
	}
	s.Replace(items)
	logging.Get(logging.CategoryStore).Debug("collection replaced",
		zap.String("entity", s.desc.Name), zap.Int("count", len(items)))
	return nil
}

// Replace atomically swaps the held collection. A nil slice becomes empty.
func (s *Store[T]) Replace(items []T) {
	if items == nil {
		items = []T{}
	}
	s.mu.Lock()
	s.items = items
	s.loaded = true
	s.mu.Unlock()
}

// Items returns a copy of the collection for rendering.
func (s *Store[T]) Items() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// Len is the collection size.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Loaded reports whether at least one load succeeded.
func (s *Store[T]) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Find returns the entity with id.
func (s *Store[T]) Find(id Identifier) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, it := range s.items {
		if it.RecordID() == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// RemoveLocal drops id from the local copy after a confirmed delete. The next
// Load is authoritative.
func (s *Store[T]) RemoveLocal(id Identifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := make([]T, 0, len(s.items))
	for _, it := range s.items {
		if it.RecordID() != id {
			kept = append(kept, it)
		}
	}
	s.items = kept
}
