// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

// Package lookup keeps keyed snapshots of remote listings.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var ErrNotFound = errors.New("key not found")

// Loader fetches the complete listing the snapshot is built from.
type Loader[V any] func(ctx context.Context) ([]V, error)

// Snapshot is an in-memory index over a bulk listing. It loads on first use
// and only reloads on Refresh or after Invalidate. A miss never triggers a fetch.
type Snapshot[K comparable, V any] struct {
	name   string
	load   Loader[V]
	key    func(V) K
	mu     sync.Mutex
	items  map[K]V
	loaded bool
}

func (s *Snapshot[K, V]) ensure(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	values, err := s.load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", s.name, err)
	}

	items := make(map[K]V, len(values))
	for _, v := range values {
		items[s.key(v)] = v
	}
	s.items = items
	s.loaded = true
	return nil
}

func (s *Snapshot[K, V]) Get(ctx context.Context, key K) (V, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero V
	if err := s.ensure(ctx); err != nil {
		return zero, err
	}
	v, ok := s.items[key]
	if !ok {
		return zero, fmt.Errorf("%s %v: %w", s.name, key, ErrNotFound)
	}
	return v, nil
}

func (s *Snapshot[K, V]) All(ctx context.Context) (map[K]V, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensure(ctx); err != nil {
		return nil, err
	}
	out := make(map[K]V, len(s.items))
	for k, v := range s.items {
		out[k] = v
	}
	return out, nil
}

// Refresh reloads the snapshot immediately.
func (s *Snapshot[K, V]) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loaded = false
	return s.ensure(ctx)
}

// Invalidate drops the snapshot so the next read reloads it.
func (s *Snapshot[K, V]) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loaded = false
	s.items = nil
}

func New[K comparable, V any](name string, load Loader[V], key func(V) K) *Snapshot[K, V] {
	return &Snapshot[K, V]{name: name, load: load, key: key}
}
