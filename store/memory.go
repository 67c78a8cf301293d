package store

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store implementation.
type MemoryStore[V any] struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List // front is the least recently written
	policy  Policy
}

type entry[V any] struct {
	key       string
	value     V
	expiresAt time.Time
}

// NewMemoryStore creates a new in-memory store with the given policy.
func NewMemoryStore[V any](policy Policy) *MemoryStore[V] {
	return &MemoryStore[V]{
		entries: make(map[string]*list.Element),
		order:   list.New(),
		policy:  policy,
	}
}

// Get retrieves a value from the store. Returns (zero, false) on miss or expiry.
func (s *MemoryStore[V]) Get(_ context.Context, key string) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero V
	el, ok := s.entries[key]
	if !ok {
		return zero, false
	}

	e := el.Value.(*entry[V])
	if s.expiredLocked(e) {
		// Expired - clean up lazily
		s.removeLocked(el)
		return zero, false
	}

	return e.value, true
}

// Set stores a value, refreshing its expiry and its eviction position.
func (s *MemoryStore[V]) Set(_ context.Context, key string, value V) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	var expiresAt time.Time
	if s.policy.Expires() {
		expiresAt = s.policy.now().Add(s.policy.TTL)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.entries[key]; ok {
		e := el.Value.(*entry[V])
		e.value = value
		e.expiresAt = expiresAt
		s.order.MoveToBack(el)
		return nil
	}

	if s.policy.Bounded() {
		for s.order.Len() >= s.policy.MaxEntries {
			s.removeLocked(s.order.Front())
		}
	}

	s.entries[key] = s.order.PushBack(&entry[V]{
		key:       key,
		value:     value,
		expiresAt: expiresAt,
	})
	return nil
}

// Delete removes a value from the store. Idempotent - no error on miss.
func (s *MemoryStore[V]) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	if el, ok := s.entries[key]; ok {
		s.removeLocked(el)
	}
	s.mu.Unlock()
	return nil
}

// Len returns the number of records held, including expired records not
// yet collected.
func (s *MemoryStore[V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}

func (s *MemoryStore[V]) expiredLocked(e *entry[V]) bool {
	return !e.expiresAt.IsZero() && s.policy.now().After(e.expiresAt)
}

func (s *MemoryStore[V]) removeLocked(el *list.Element) {
	e := s.order.Remove(el).(*entry[V])
	delete(s.entries, e.key)
}

// Ensure MemoryStore implements Store
var _ Store[bool] = (*MemoryStore[bool])(nil)
