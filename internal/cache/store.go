// Package cache holds the most recent successful result of each distinct
// (operation, parameters) pair. Entries carry a freshness window after which
// reads refetch, and a retention bound after which they are evicted lazily.
// Invalidation marks matching keys stale and notifies subscribers; it is the
// cross-view consistency mechanism between mutation and query bindings.
package cache

import (
	"strings"
	"sync"
	"time"
)

// DefaultRetention is the maximum age of any entry. Older entries are evicted
// on next access, never swept proactively.
const DefaultRetention = 30 * time.Minute

// Key joins key parts into a cache key. Parts derived from parameters keep
// every parameterization distinct.
func Key(parts ...string) string {
	return strings.Join(parts, "/")
}

type entry struct {
	value    any
	storedAt time.Time
	freshFor time.Duration
	stale    bool
}

// Subscriber is notified with the invalidated key prefix. Notification happens
// synchronously before Invalidate returns, so state observed afterwards
// already reflects the invalidation.
type Subscriber func(prefix string)

type subscription struct {
	prefix string
	fn     Subscriber
}

// Store is the process-wide cache shared by all bindings.
type Store struct {
	mu        sync.RWMutex
	entries   map[string]entry
	retention time.Duration
	subs      map[int]subscription
	nextSubID int

	now func() time.Time
}

// NewStore creates a new cache store. A non-positive retention uses
// DefaultRetention.
func NewStore(retention time.Duration) *Store {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Store{
		entries:   make(map[string]entry),
		retention: retention,
		subs:      make(map[int]subscription),
		now:       time.Now,
	}
}

// Get returns the cached value for key regardless of freshness. Entries past
// the retention bound are evicted and reported as missing.
func (s *Store) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	if s.now().Sub(e.storedAt) > s.retention {
		delete(s.entries, key)
		return nil, false
	}
	return e.value, true
}

// GetFresh returns the cached value only when the entry is within its
// freshness window and has not been invalidated.
func (s *Store) GetFresh(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	age := s.now().Sub(e.storedAt)
	if age > s.retention {
		delete(s.entries, key)
		return nil, false
	}
	if e.stale || age > e.freshFor {
		return nil, false
	}
	return e.value, true
}

// Put overwrites the entry for key and resets its freshness clock.
func (s *Store) Put(key string, value any, freshFor time.Duration) {
	s.mu.Lock()
	s.entries[key] = entry{
		value:    value,
		storedAt: s.now(),
		freshFor: freshFor,
	}
	s.mu.Unlock()
}

// IsStale reports whether the entry for key is missing, invalidated, or past
// its freshness window.
func (s *Store) IsStale(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	if !ok {
		return true
	}
	age := s.now().Sub(e.storedAt)
	return e.stale || age > e.freshFor || age > s.retention
}

// Invalidate marks every entry whose key starts with prefix as stale and
// notifies matching subscribers before returning. It returns the number of
// entries marked.
func (s *Store) Invalidate(prefix string) int {
	s.mu.Lock()
	marked := 0
	for key, e := range s.entries {
		if strings.HasPrefix(key, prefix) && !e.stale {
			e.stale = true
			s.entries[key] = e
			marked++
		}
	}
	var notify []Subscriber
	for _, sub := range s.subs {
		if strings.HasPrefix(sub.prefix, prefix) || strings.HasPrefix(prefix, sub.prefix) {
			notify = append(notify, sub.fn)
		}
	}
	s.mu.Unlock()

	// Subscribers run outside the lock; they may read or write the store.
	for _, fn := range notify {
		fn(prefix)
	}
	return marked
}

// Subscribe registers a subscriber for invalidations touching the given key
// prefix. The returned cancel releases the subscription and is safe to call
// more than once.
func (s *Store) Subscribe(prefix string, fn Subscriber) (cancel func()) {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = subscription{prefix: prefix, fn: fn}
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// Len returns the number of live entries. Intended for diagnostics.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
