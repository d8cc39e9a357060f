package state

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const genericFailure = "Falha na comunicação com o servidor"

// Entity is anything with a server-assigned identifier.
type Entity interface {
	EntityID() int64
}

// Resource is the transport for one collection. P is the request payload used
// by Create and Update.
type Resource[T Entity, P any] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, payload P) (T, error)
	Update(ctx context.Context, id int64, payload P) (T, error)
	Delete(ctx context.Context, id int64) error
}

// Config wires a Store. Resource is required; everything else has defaults.
type Config[T Entity, P any] struct {
	Name     string
	Resource Resource[T, P]
	Messages Messages
	Logger   *slog.Logger

	// Normalize runs on every entity received from the backend before it is stored.
	Normalize func(T) T
	// Merge combines the stored entity with an Update response.
	Merge func(prev, next T) T
	// Clone deep-copies an entity for snapshots. Shallow copies are used when nil.
	Clone func(T) T
}

// Snapshot is an immutable view of a collection.
type Snapshot[T any] struct {
	Items               []T
	Status              Status
	Error               string
	Generation          uint64 // incremented on every successful FetchAll
	LastFetched         time.Time
	ConsecutiveFailures int
}

// IsOffline returns true when FetchAll has failed repeatedly.
func (s Snapshot[T]) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store keeps one entity collection in sync with the backend.
//
// Writes happen only after a response arrives, under the store's mutex. Two
// in-flight mutations on the same store are not ordered: the last response to
// arrive wins.
type Store[T Entity, P any] struct {
	name      string
	resource  Resource[T, P]
	messages  Messages
	logger    *slog.Logger
	normalize func(T) T
	merge     func(prev, next T) T
	clone     func(T) T

	mu       sync.RWMutex
	snapshot Snapshot[T]
	subs     map[chan struct{}]struct{}
}

// New builds a Store from cfg.
func New[T Entity, P any](cfg Config[T, P]) *Store[T, P] {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	msgs := cfg.Messages
	for _, m := range []*string{&msgs.Fetch, &msgs.Create, &msgs.Update, &msgs.Delete} {
		if *m == "" {
			*m = genericFailure
		}
	}
	return &Store[T, P]{
		name:      cfg.Name,
		resource:  cfg.Resource,
		messages:  msgs,
		logger:    cfg.Logger.With(slog.String("store", cfg.Name)),
		normalize: cfg.Normalize,
		merge:     cfg.Merge,
		clone:     cfg.Clone,
		subs:      make(map[chan struct{}]struct{}),
	}
}

// Name returns the collection name used in logs and errors.
func (s *Store[T, P]) Name() string { return s.name }

// Snapshot returns a copy of the current state.
func (s *Store[T, P]) Snapshot() Snapshot[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Items = s.cloneItems(s.snapshot.Items)
	return snap
}

// Find returns a copy of the entity with id.
func (s *Store[T, P]) Find(id int64) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if idx := s.indexOf(id); idx >= 0 {
		return s.cloneOne(s.snapshot.Items[idx]), true
	}
	var zero T
	return zero, false
}

// FetchAll replaces the collection with the backend's. On failure the status
// becomes failed and the previously fetched items are kept for display.
func (s *Store[T, P]) FetchAll(ctx context.Context) error {
	s.mu.Lock()
	s.snapshot.Status = StatusLoading
	s.snapshot.Error = ""
	s.mu.Unlock()
	s.notify()

	items, err := s.resource.List(ctx)

	s.mu.Lock()
	if err != nil {
		opErr := newOpError(s.name, "fetch", err, s.messages.Fetch)
		s.snapshot.Status = StatusFailed
		s.snapshot.Error = opErr.Message
		s.snapshot.ConsecutiveFailures++
		s.mu.Unlock()
		s.notify()
		s.logger.Warn("fetch failed", slog.Any("error", err))
		return opErr
	}
	fresh := make([]T, 0, len(items))
	for _, item := range items {
		fresh = append(fresh, s.normalizeOne(item))
	}
	s.snapshot.Items = fresh
	s.snapshot.Status = StatusSucceeded
	s.snapshot.Generation++
	s.snapshot.LastFetched = time.Now()
	s.snapshot.ConsecutiveFailures = 0
	s.mu.Unlock()
	s.notify()

	s.logger.Debug("fetched", slog.Int("count", len(fresh)))
	return nil
}

// Create sends payload and appends the created entity. Store state is
// untouched on failure.
func (s *Store[T, P]) Create(ctx context.Context, payload P) (T, error) {
	created, err := s.resource.Create(ctx, payload)
	if err != nil {
		var zero T
		return zero, newOpError(s.name, "create", err, s.messages.Create)
	}
	created = s.normalizeOne(created)

	s.mu.Lock()
	s.snapshot.Items = append(s.snapshot.Items, created)
	s.mu.Unlock()
	s.notify()
	return s.cloneOne(created), nil
}

// Update sends payload for id and replaces the stored entity in place. An id
// missing from the local collection is logged and otherwise ignored.
func (s *Store[T, P]) Update(ctx context.Context, id int64, payload P) (T, error) {
	updated, err := s.resource.Update(ctx, id, payload)
	if err != nil {
		var zero T
		return zero, newOpError(s.name, "update", err, s.messages.Update)
	}

	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		s.inconsistent("update", id)
		return s.cloneOne(s.normalizeOne(updated)), nil
	}
	// Merge sees the raw response so it can tell omitted fields from empty ones.
	if s.merge != nil {
		updated = s.merge(s.snapshot.Items[idx], updated)
	}
	updated = s.normalizeOne(updated)
	s.snapshot.Items[idx] = updated
	s.mu.Unlock()
	s.notify()
	return s.cloneOne(updated), nil
}

// Delete removes id after the backend acknowledges it. The backend's rejection
// reason is returned verbatim.
func (s *Store[T, P]) Delete(ctx context.Context, id int64) error {
	if err := s.resource.Delete(ctx, id); err != nil {
		return newOpError(s.name, "delete", err, s.messages.Delete)
	}

	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		s.inconsistent("delete", id)
		return nil
	}
	kept := make([]T, 0, len(s.snapshot.Items)-1)
	kept = append(kept, s.snapshot.Items[:idx]...)
	kept = append(kept, s.snapshot.Items[idx+1:]...)
	s.snapshot.Items = kept
	s.mu.Unlock()
	s.notify()
	return nil
}

// Subscribe returns a channel signalled after every state change and a func
// that detaches it. Signals coalesce: a slow reader sees at most one pending.
func (s *Store[T, P]) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, ch)
			s.mu.Unlock()
		})
	}
}

// replace swaps the entity with id for next wholesale.
func (s *Store[T, P]) replace(op string, id int64, next T) bool {
	next = s.normalizeOne(next)
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		s.inconsistent(op, id)
		return false
	}
	s.snapshot.Items[idx] = next
	s.mu.Unlock()
	s.notify()
	return true
}

// modify rewrites the entity with id through fn.
func (s *Store[T, P]) modify(op string, id int64, fn func(T) T) bool {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		s.inconsistent(op, id)
		return false
	}
	s.snapshot.Items[idx] = fn(s.snapshot.Items[idx])
	s.mu.Unlock()
	s.notify()
	return true
}

func (s *Store[T, P]) inconsistent(op string, id int64) {
	s.logger.Warn("entity missing from local collection",
		slog.String("op", op),
		slog.Int64("id", id))
}

func (s *Store[T, P]) notify() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// indexOf must be called with mu held.
func (s *Store[T, P]) indexOf(id int64) int {
	for i, item := range s.snapshot.Items {
		if item.EntityID() == id {
			return i
		}
	}
	return -1
}

func (s *Store[T, P]) normalizeOne(item T) T {
	if s.normalize == nil {
		return item
	}
	return s.normalize(item)
}

func (s *Store[T, P]) cloneOne(item T) T {
	if s.clone == nil {
		return item
	}
	return s.clone(item)
}

func (s *Store[T, P]) cloneItems(items []T) []T {
	if len(items) == 0 {
		return nil
	}
	dup := make([]T, len(items))
	for i, item := range items {
		dup[i] = s.cloneOne(item)
	}
	return dup
}
