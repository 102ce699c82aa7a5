// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

// Package pipeline runs a producer and a consumer on two goroutines joined by a Queue.
package pipeline

import (
	"context"
	"iter"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/canonical/utill/internal/logging"
	"github.com/canonical/utill/internal/tracing"
)

// Producer lazily yields work items. Yielding a non-nil error ends production
// and fails the run once the consumer reaches it.
type Producer[T any] func(ctx context.Context) iter.Seq2[T, error]

// Consumer processes one item. It owns the item once called.
type Consumer[T, R any] func(ctx context.Context, item T) (R, error)

type config struct {
	capacity int
	logger   logging.LoggerInterface
	tracer   tracing.TracingInterface
}

type Option func(*config)

// WithCapacity bounds the queue. Zero or less leaves it unbounded.
func WithCapacity(n int) Option {
	return func(c *config) {
		c.capacity = n
	}
}

func WithLogger(logger logging.LoggerInterface) Option {
	return func(c *config) {
		c.logger = logger
	}
}

func WithTracer(tracer tracing.TracingInterface) Option {
	return func(c *config) {
		c.tracer = tracer
	}
}

// envelope tags a producer failure so it travels through the queue in order.
type envelope[T any] struct {
	item T
	err  error
}

// Pipeline is single use.
type Pipeline[T, R any] struct {
	producer Producer[T]
	consumer Consumer[T, R]
	state    atomic.Int32

	capacity int
	logger   logging.LoggerInterface
	tracer   tracing.TracingInterface
}

func (p *Pipeline[T, R]) State() State {
	return State(p.state.Load())
}

func (p *Pipeline[T, R]) start() error {
	if !p.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return ErrAlreadyStarted
	}
	return nil
}

func (p *Pipeline[T, R]) finish(err error) {
	if err != nil {
		p.state.Store(int32(StateFailed))
		return
	}
	p.state.Store(int32(StateDone))
}

// produce feeds the queue until the producer is exhausted, fails or ctx ends.
// The queue is always closed on return.
func (p *Pipeline[T, R]) produce(ctx context.Context, q *Queue[envelope[T]]) ([]T, error) {
	defer q.Close()

	produced := make([]T, 0)
	for item, err := range p.producer(ctx) {
		if err != nil {
			p.logger.Errorf("Producer error: %v", err)
			return produced, q.Put(ctx, envelope[T]{err: err})
		}
		if err := q.Put(ctx, envelope[T]{item: item}); err != nil {
			return produced, err
		}
		produced = append(produced, item)
		p.logger.Debugf("Produced %v", item)
	}

	p.state.CompareAndSwap(int32(StateRunning), int32(StateDraining))
	p.logger.Debug("Producer finished")
	return produced, nil
}

// consume handles the next item. done is true at the end of the stream.
func (p *Pipeline[T, R]) consume(ctx context.Context, q *Queue[envelope[T]]) (result R, done bool, err error) {
	env, ok, err := q.Get(ctx)
	if err != nil {
		return result, false, err
	}
	if !ok {
		return result, true, nil
	}
	if env.err != nil {
		return result, false, &Error{Stage: StageProducer, Err: env.err}
	}

	result, err = p.consumer(ctx, env.item)
	if err != nil {
		p.logger.Errorf("Consumer error processing %v: %v", env.item, err)
		return result, false, &Error{Stage: StageConsumer, Err: err}
	}
	p.logger.Debugf("Consumed %v", env.item)
	return result, false, nil
}

// Run drives the producer and the consumer to completion and returns what was
// produced and consumed. On failure the consumed results stop at the last item
// processed successfully, and the first error is returned.
func (p *Pipeline[T, R]) Run(ctx context.Context) ([]T, []R, error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.Pipeline.Run")
	defer span.End()

	if err := p.start(); err != nil {
		return nil, nil, err
	}

	q := NewQueue[envelope[T]](p.capacity)
	g, gctx := errgroup.WithContext(ctx)

	var produced []T
	g.Go(func() error {
		var err error
		produced, err = p.produce(gctx, q)
		return err
	})

	consumed := make([]R, 0)
	g.Go(func() error {
		for {
			r, done, err := p.consume(gctx, q)
			if err != nil {
				return err
			}
			if done {
				return nil
			}
			consumed = append(consumed, r)
		}
	})

	err := g.Wait()
	p.finish(err)
	return produced, consumed, err
}

// Stream runs the producer in the background and the consumer in the
// iterating goroutine, yielding results as they complete. A consumer failure
// or an early break cancels the producer and waits for it to stop.
func (p *Pipeline[T, R]) Stream(ctx context.Context) iter.Seq2[R, error] {
	return func(yield func(R, error) bool) {
		var zero R
		if err := p.start(); err != nil {
			yield(zero, err)
			return
		}

		ctx, cancel := context.WithCancel(ctx)
		q := NewQueue[envelope[T]](p.capacity)

		var g errgroup.Group
		g.Go(func() error {
			_, err := p.produce(ctx, q)
			return err
		})

		var err error
		defer func() {
			cancel()
			_ = g.Wait()
			p.finish(err)
		}()

		for {
			var (
				r    R
				done bool
			)
			r, done, err = p.consume(ctx, q)
			if err != nil {
				yield(zero, err)
				return
			}
			if done {
				return
			}
			if !yield(r, nil) {
				p.logger.Debug("Stream stopped by caller")
				return
			}
		}
	}
}

func New[T, R any](producer Producer[T], consumer Consumer[T, R], opts ...Option) *Pipeline[T, R] {
	cfg := config{
		logger: logging.NewNoopLogger(),
		tracer: tracing.NewNoopTracer(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	p := new(Pipeline[T, R])
	p.producer = producer
	p.consumer = consumer
	p.capacity = cfg.capacity
	p.logger = cfg.logger
	p.tracer = cfg.tracer

	return p
}
