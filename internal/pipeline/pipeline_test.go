// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package pipeline

import (
	"context"
	"errors"
	"iter"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// counting yields 1..n and records how many items it handed out.
func counting(n int, yielded *atomic.Int32) Producer[int] {
	return func(ctx context.Context) iter.Seq2[int, error] {
		return func(yield func(int, error) bool) {
			for i := 1; i <= n; i++ {
				if yielded != nil {
					yielded.Add(1)
				}
				if !yield(i, nil) {
					return
				}
			}
		}
	}
}

func double(_ context.Context, i int) (int, error) {
	return i * 2, nil
}

func TestRunPreservesOrder(t *testing.T) {
	var (
		mu    sync.Mutex
		order []int
	)
	record := func(_ context.Context, i int) (int, error) {
		mu.Lock()
		defer mu.Unlock()
		order = append(order, i)
		return i, nil
	}

	for _, capacity := range []int{0, 1, 2} {
		order = nil
		p := New(counting(5, nil), record, WithCapacity(capacity))

		produced, consumed, err := p.Run(context.Background())

		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3, 4, 5}, produced)
		assert.Equal(t, []int{1, 2, 3, 4, 5}, consumed)
		assert.Equal(t, []int{1, 2, 3, 4, 5}, order)
		assert.Equal(t, StateDone, p.State())
	}
}

func TestRunBackpressure(t *testing.T) {
	var yielded atomic.Int32
	gate := make(chan struct{})
	started := make(chan struct{}, 5)

	consumer := func(ctx context.Context, i int) (int, error) {
		started <- struct{}{}
		select {
		case <-gate:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
		return i, nil
	}

	p := New(counting(5, &yielded), consumer, WithCapacity(2))

	var (
		consumed []int
		err      error
		wg       sync.WaitGroup
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, consumed, err = p.Run(context.Background())
	}()

	<-started
	// Item 1 is held by the consumer, 2 and 3 fill the queue, 4 is stuck in Put.
	assert.Eventually(t, func() bool { return yielded.Load() == 4 }, time.Second, 5*time.Millisecond)
	assert.Never(t, func() bool { return yielded.Load() > 4 }, 100*time.Millisecond, 5*time.Millisecond)
	assert.Equal(t, StateRunning, p.State())

	close(gate)
	wg.Wait()

	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, consumed)
	assert.Equal(t, int32(5), yielded.Load())
}

func TestRunConsumerError(t *testing.T) {
	boom := errors.New("upload failed")
	var calls atomic.Int32
	consumer := func(_ context.Context, i int) (int, error) {
		calls.Add(1)
		if i == 3 {
			return 0, boom
		}
		return i, nil
	}

	p := New(counting(5, nil), consumer, WithCapacity(2))
	_, consumed, err := p.Run(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, StageConsumer, perr.Stage)
	assert.Equal(t, []int{1, 2}, consumed)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, StateFailed, p.State())
}

func TestRunProducerError(t *testing.T) {
	boom := errors.New("disk full")
	producer := func(context.Context) iter.Seq2[int, error] {
		return func(yield func(int, error) bool) {
			if !yield(1, nil) {
				return
			}
			if !yield(2, nil) {
				return
			}
			yield(0, boom)
		}
	}

	p := New(producer, double)
	produced, consumed, err := p.Run(context.Background())

	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, StageProducer, perr.Stage)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []int{1, 2}, produced)
	assert.Equal(t, []int{2, 4}, consumed)
	assert.Equal(t, StateFailed, p.State())
}

func TestRunOnlyOnce(t *testing.T) {
	p := New(counting(1, nil), double)

	_, _, err := p.Run(context.Background())
	require.NoError(t, err)

	_, _, err = p.Run(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyStarted)
}

func TestRunContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	blocked := func(ctx context.Context, i int) (int, error) {
		cancel()
		<-ctx.Done()
		return 0, ctx.Err()
	}

	p := New(counting(5, nil), blocked, WithCapacity(1))
	_, _, err := p.Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateFailed, p.State())
}

func TestStream(t *testing.T) {
	p := New(counting(5, nil), double, WithCapacity(2))

	results := make([]int, 0)
	for r, err := range p.Stream(context.Background()) {
		require.NoError(t, err)
		results = append(results, r)
	}

	assert.Equal(t, []int{2, 4, 6, 8, 10}, results)
	assert.Equal(t, StateDone, p.State())
}

func TestStreamConsumerErrorCancelsProducer(t *testing.T) {
	var yielded atomic.Int32
	boom := errors.New("boom")
	consumer := func(_ context.Context, i int) (int, error) {
		if i == 3 {
			return 0, boom
		}
		return i, nil
	}

	p := New(counting(1000, &yielded), consumer, WithCapacity(2))

	results := make([]int, 0)
	var streamErr error
	for r, err := range p.Stream(context.Background()) {
		if err != nil {
			streamErr = err
			break
		}
		results = append(results, r)
	}

	assert.ErrorIs(t, streamErr, boom)
	assert.Equal(t, []int{1, 2}, results)
	assert.Less(t, yielded.Load(), int32(1000))
	assert.Equal(t, StateFailed, p.State())
}

func TestStreamEarlyBreak(t *testing.T) {
	var yielded atomic.Int32
	p := New(counting(1000, &yielded), double, WithCapacity(1))

	for r, err := range p.Stream(context.Background()) {
		require.NoError(t, err)
		if r == 4 {
			break
		}
	}

	assert.Less(t, yielded.Load(), int32(1000))
	assert.Equal(t, StateDone, p.State())
}

func TestStreamProducerError(t *testing.T) {
	boom := errors.New("bad chunk")
	producer := func(context.Context) iter.Seq2[int, error] {
		return func(yield func(int, error) bool) {
			if yield(1, nil) {
				yield(0, boom)
			}
		}
	}

	p := New(producer, double)

	var (
		results []int
		errs    []error
	)
	for r, err := range p.Stream(context.Background()) {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		results = append(results, r)
	}

	assert.Equal(t, []int{2}, results)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], boom)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "draining", StateDraining.String())
	assert.Equal(t, "State(9)", State(9).String())
	assert.True(t, StateFailed.Terminal())
	assert.False(t, StateRunning.Terminal())
}
