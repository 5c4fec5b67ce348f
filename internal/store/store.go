// Package store is a thread-safe in-memory registry with TTL eviction,
// used to hold uploaded trees and comparison reports between requests.
package store

import (
	"context"
	"sync"
	"time"
)

type entry[T any] struct {
	value   T
	updated time.Time
}

// Store maps string IDs to values, evicting entries idle longer than ttl.
type Store[T any] struct {
	mu    sync.Mutex
	items map[string]entry[T]
	ttl   time.Duration
}

func New[T any](ttl time.Duration) *Store[T] {
	return &Store[T]{
		items: make(map[string]entry[T]),
		ttl:   ttl,
	}
}

func (s *Store[T]) Put(id string, v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[id] = entry[T]{value: v, updated: time.Now()}
}

func (s *Store[T]) Get(id string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.items[id]
	return e.value, ok
}

func (s *Store[T]) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
}

func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Cleanup removes expired entries.
func (s *Store[T]) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, e := range s.items {
		if now.Sub(e.updated) > s.ttl {
			delete(s.items, id)
		}
	}
}

// StartCleanup runs Cleanup on an interval until the context is canceled.
func (s *Store[T]) StartCleanup(ctx context.Context, every time.Duration) {
	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Cleanup()
			}
		}
	}()
}
