// Package queries pairs every backend operation with cache and state
// management: query bindings for reads, mutation bindings for writes.
package queries

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/caffeinepub/xoroots-football-coaching-platform/internal/api"
	"github.com/caffeinepub/xoroots-football-coaching-platform/internal/cache"
	"github.com/caffeinepub/xoroots-football-coaching-platform/internal/notify"

	"github.com/rs/zerolog/log"
)

// Result is the tri-state outcome of a query binding: loading, error, or
// data. Every failure path resolves to one of these, never a panic or an
// unhandled rejection.
type Result[T any] struct {
	Data      T
	Err       error
	Loading   bool
	Fetched   bool
	UpdatedAt time.Time
}

// Query binds one read operation to one cache key. Reads consult the cache
// first; a miss or stale entry triggers a fetch with exactly one automatic
// retry. Unauthorized failures on caller-scoped reads resolve to the
// binding's empty default instead of an error.
type Query[T any] struct {
	name     string
	key      string
	freshFor time.Duration
	store    *cache.Store
	enabled  func() bool
	// inert bindings model absent selection state: they return the default
	// without ever calling the facade.
	inert       bool
	fetch       func(context.Context) (T, error)
	softDefault func() T

	mu       sync.Mutex
	res      Result[T]
	inflight bool
}

// Key returns the binding's cache key.
func (q *Query[T]) Key() string { return q.key }

// Result returns a snapshot of the binding's current state.
func (q *Query[T]) Result() Result[T] {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.res
}

// IsStale reports whether the bound cache entry needs a refetch.
func (q *Query[T]) IsStale() bool {
	if q.inert {
		return false
	}
	return q.store.IsStale(q.key)
}

// Get returns the bound value, serving the cache when fresh and fetching
// otherwise. Inert or gated bindings return the empty default without
// calling the facade.
func (q *Query[T]) Get(ctx context.Context) (T, error) {
	if q.inert || (q.enabled != nil && !q.enabled()) {
		return q.softDefault(), nil
	}
	if v, ok := q.store.GetFresh(q.key); ok {
		if typed, ok := v.(T); ok {
			q.setData(typed)
			return typed, nil
		}
	}
	return q.doFetch(ctx)
}

// Refetch fetches regardless of freshness. The manual retry path after a
// surfaced error.
func (q *Query[T]) Refetch(ctx context.Context) (T, error) {
	if q.inert || (q.enabled != nil && !q.enabled()) {
		return q.softDefault(), nil
	}
	return q.doFetch(ctx)
}

func (q *Query[T]) doFetch(ctx context.Context) (T, error) {
	q.mu.Lock()
	if q.inflight {
		// Another fetch is already running; serve the current snapshot
		// rather than stacking requests for the same key.
		res := q.res
		q.mu.Unlock()
		return res.Data, res.Err
	}
	q.inflight = true
	q.res.Loading = true
	q.mu.Unlock()

	defer func() {
		q.mu.Lock()
		q.inflight = false
		q.res.Loading = false
		q.mu.Unlock()
	}()

	value, err := q.fetch(ctx)
	if err != nil && !api.IsUnauthorized(err) {
		// One automatic retry for reads; writes never retry.
		value, err = q.fetch(ctx)
	}
	if err != nil {
		if api.IsUnauthorized(err) && q.softDefault != nil {
			// Expected transient state for unauthenticated callers, not a
			// failure to surface.
			def := q.softDefault()
			q.store.Put(q.key, def, q.freshFor)
			q.setData(def)
			return def, nil
		}
		q.mu.Lock()
		q.res.Err = err
		q.mu.Unlock()
		var zero T
		return zero, err
	}

	q.store.Put(q.key, value, q.freshFor)
	q.setData(value)
	return value, nil
}

func (q *Query[T]) setData(value T) {
	q.mu.Lock()
	q.res = Result[T]{
		Data:      value,
		Fetched:   true,
		UpdatedAt: time.Now(),
	}
	q.mu.Unlock()
}

// Bind makes the binding active: invalidations touching its key trigger one
// background refetch. The subscription is released when the returned release
// runs or when ctx ends, whichever comes first.
func (q *Query[T]) Bind(ctx context.Context) (release func()) {
	if q.inert {
		return func() {}
	}
	cancel := q.store.Subscribe(q.key, func(string) {
		go func() {
			if _, err := q.Refetch(ctx); err != nil {
				log.Debug().Err(err).Str("query", q.name).Msg("Refetch after invalidation failed")
			}
		}()
	})
	stop := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-stop:
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			cancel()
		})
	}
}

// Poll refetches the binding at the given interval until ctx ends or the
// returned stop runs. Used for live-polled flags such as the admin banner.
func (q *Query[T]) Poll(ctx context.Context, interval time.Duration) (stop func()) {
	pollCtx, cancel := context.WithCancel(ctx)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-pollCtx.Done():
				return
			case <-ticker.C:
				if _, err := q.Refetch(pollCtx); err != nil {
					log.Debug().Err(err).Str("query", q.name).Msg("Poll refetch failed")
				}
			}
		}
	}()
	return cancel
}

// Mutation wraps one write operation. Run calls the facade exactly once (no
// automatic retry), then invalidates the declared cache key prefixes before
// returning. On failure the cache is left untouched and the failure is
// surfaced through the notifier.
type Mutation[P, R any] struct {
	name          string
	store         *cache.Store
	notifier      notify.Notifier
	guard         func(P) error
	run           func(context.Context, P) (R, error)
	seed          func(P, R)
	invalidates   func(P) []string
	successMsg    func(P) string
	failurePrefix string

	pending atomic.Bool
}

// Pending reports whether an invocation is in flight. The UI disables the
// triggering control while it is.
func (m *Mutation[P, R]) Pending() bool {
	return m.pending.Load()
}

// Run executes the mutation: guard, facade call, cache seeding, declared
// invalidations, notification. Invalidations are sequenced before Run
// returns.
func (m *Mutation[P, R]) Run(ctx context.Context, params P) (R, error) {
	var zero R
	if m.guard != nil {
		if err := m.guard(params); err != nil {
			m.notifier.Error(fmt.Sprintf("%s: %v", m.failurePrefix, err))
			return zero, err
		}
	}

	m.pending.Store(true)
	defer m.pending.Store(false)

	result, err := m.run(ctx, params)
	if err != nil {
		m.notifier.Error(fmt.Sprintf("%s: %v", m.failurePrefix, err))
		return zero, err
	}

	if m.seed != nil {
		m.seed(params, result)
	}
	if m.invalidates != nil {
		for _, prefix := range m.invalidates(params) {
			m.store.Invalidate(prefix)
		}
	}
	if m.successMsg != nil {
		if msg := m.successMsg(params); msg != "" {
			m.notifier.Success(msg)
		}
	}
	return result, nil
}
