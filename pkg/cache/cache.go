// Package cache provides an in-process read-through cache with a fixed TTL.
package cache

import (
	"strings"
	"sync"
	"time"
)

type entry[T any] struct {
	data      T
	expiresAt time.Time
}

// Store is a keyed TTL cache. Values expire after the store's TTL and are
// reaped by CleanExpired; reads never return expired entries.
type Store[T any] struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[string]entry[T]
}

func NewStore[T any](ttl time.Duration) *Store[T] {
	return &Store[T]{
		ttl:   ttl,
		items: make(map[string]entry[T]),
	}
}

// Get retrieves a value from the cache.
func (s *Store[T]) Get(key string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	e, ok := s.items[key]
	if !ok {
		return zero, false
	}
	if time.Now().After(e.expiresAt) {
		delete(s.items, key)
		return zero, false
	}
	return e.data, true
}

// Set stores a value with the store's TTL.
func (s *Store[T]) Set(key string, data T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = entry[T]{data: data, expiresAt: time.Now().Add(s.ttl)}
}

// GetOrLoad returns the cached value for key, invoking loader on a miss and
// caching its result. Concurrent misses for the same key may invoke the
// loader more than once; loaders must be side-effect-free reads.
func (s *Store[T]) GetOrLoad(key string, loader func() (T, error)) (T, error) {
	if v, ok := s.Get(key); ok {
		return v, nil
	}
	v, err := loader()
	if err != nil {
		var zero T
		return zero, err
	}
	s.Set(key, v)
	return v, nil
}

// Delete removes a key from the cache.
func (s *Store[T]) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
}

// DeletePrefix removes every key with the given prefix. Used to invalidate
// a key family (e.g. all cached reports for one user) on write.
func (s *Store[T]) DeletePrefix(prefix string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.items {
		if strings.HasPrefix(k, prefix) {
			delete(s.items, k)
		}
	}
}

// Size returns the current number of items in the cache.
func (s *Store[T]) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// CleanExpired removes all expired entries and returns the count removed.
func (s *Store[T]) CleanExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	removed := 0
	for k, e := range s.items {
		if now.After(e.expiresAt) {
			delete(s.items, k)
			removed++
		}
	}
	return removed
}

// Cleaner is implemented by stores that support expiry cleanup.
type Cleaner interface {
	CleanExpired() int
}

// Janitor periodically reaps expired entries from registered stores.
type Janitor struct {
	stores []Cleaner
	stop   chan struct{}
	done   chan struct{}
}

func NewJanitor(stores ...Cleaner) *Janitor {
	return &Janitor{
		stores: stores,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start begins periodic cleanup in a background goroutine.
func (j *Janitor) Start(interval time.Duration) {
	go func() {
		defer close(j.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				for _, s := range j.stores {
					s.CleanExpired()
				}
			case <-j.stop:
				return
			}
		}
	}()
}

// Stop halts the cleanup goroutine and waits for it to exit.
func (j *Janitor) Stop() {
	close(j.stop)
	<-j.done
}
