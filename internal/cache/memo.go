// Package cache memoizes expensive derivations such as parsed uploads and
// profile reports.
package cache

import (
	"context"
	"math"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// Memo is a bounded LRU memo. Concurrent calls for the same key share one
// computation. Errors are returned to every waiter but never stored.
type Memo[V any] struct {
	items *lru.Cache[string, V]
	group singleflight.Group
	// gen moves on every Invalidate; a computation started under an older
	// generation is handed to its waiters but not stored.
	gen atomic.Uint64
}

// New returns a memo holding at most capacity values; capacity <= 0 means
// unbounded.
func New[V any](capacity int) *Memo[V] {
	if capacity <= 0 {
		capacity = math.MaxInt32
	}
	items, err := lru.New[string, V](capacity)
	if err != nil {
		// only returned for a non-positive size
		panic(err)
	}
	return &Memo[V]{items: items}
}

// Do returns the value stored for key, computing it with fn on a miss.
// cached is true when fn was not run by this call.
//
// fn runs detached from the caller's cancellation, because other callers may
// be waiting on the same result. Each caller stops waiting when its own ctx
// is done.
func (m *Memo[V]) Do(ctx context.Context, key string, fn func(context.Context) (V, error)) (val V, cached bool, err error) {
	if v, ok := m.items.Get(key); ok {
		return v, true, nil
	}
	if err := ctx.Err(); err != nil {
		return val, false, err
	}
	ran := false
	gen := m.gen.Load()
	detached := context.WithoutCancel(ctx)
	ch := m.group.DoChan(key, func() (any, error) {
		if v, ok := m.items.Get(key); ok {
			return v, nil
		}
		ran = true
		v, err := fn(detached)
		if err == nil && m.gen.Load() == gen {
			m.items.Add(key, v)
		}
		return v, err
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return val, !ran, res.Err
		}
		v, _ := res.Val.(V)
		return v, !ran, nil
	case <-ctx.Done():
		return val, false, ctx.Err()
	}
}

// Get returns a stored value without computing anything.
func (m *Memo[V]) Get(key string) (V, bool) { return m.items.Get(key) }

// Invalidate drops key. Waiters of an in-flight computation still receive
// its result, but it will not be stored and later calls start afresh.
func (m *Memo[V]) Invalidate(key string) {
	m.gen.Add(1)
	m.items.Remove(key)
	m.group.Forget(key)
}

// Len returns the number of stored values.
func (m *Memo[V]) Len() int { return m.items.Len() }
