// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueBoundedPutBlocks(t *testing.T) {
	q := NewQueue[int](2)
	ctx := context.Background()

	require.NoError(t, q.Put(ctx, 1))
	require.NoError(t, q.Put(ctx, 2))
	assert.Equal(t, 2, q.Len())

	done := make(chan error, 1)
	go func() { done <- q.Put(ctx, 3) }()

	assert.Never(t, func() bool { return len(done) > 0 }, 50*time.Millisecond, 5*time.Millisecond)

	item, ok, err := q.Get(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, item)

	assert.NoError(t, <-done)
	assert.Equal(t, 2, q.Len())
}

func TestQueueUnbounded(t *testing.T) {
	q := NewQueue[int](0)
	ctx := context.Background()

	for i := range 100 {
		require.NoError(t, q.Put(ctx, i))
	}
	assert.Equal(t, 100, q.Len())
}

func TestQueueCloseDrains(t *testing.T) {
	q := NewQueue[string](0)
	ctx := context.Background()

	require.NoError(t, q.Put(ctx, "a"))
	q.Close()
	q.Close()

	assert.ErrorIs(t, q.Put(ctx, "b"), ErrQueueClosed)

	item, ok, err := q.Get(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "a", item)

	_, ok, err = q.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestQueueHonoursContext(t *testing.T) {
	q := NewQueue[int](1)
	require.NoError(t, q.Put(context.Background(), 1))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, q.Put(ctx, 2), context.DeadlineExceeded)

	empty := NewQueue[int](1)
	ctx, cancel = context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, ok, err := empty.Get(ctx)
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
