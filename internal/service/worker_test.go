package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startPool(t *testing.T, pool *WorkerPool) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- pool.Run(ctx) }()
	return cancel, done
}

func TestWorkerPool_RunsSubmittedTasks(t *testing.T) {
	pool := NewWorkerPool(WorkerPoolOptions{Concurrency: 3, QueueSize: 10})
	cancel, done := startPool(t, pool)
	defer func() {
		cancel()
		<-done
	}()

	var ran atomic.Int64
	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		err := pool.TrySubmit(Task{
			ID: string(rune('a' + i)),
			Run: func(context.Context) {
				defer wg.Done()
				ran.Add(1)
			},
		})
		require.NoError(t, err)
	}

	wg.Wait()
	assert.Equal(t, int64(10), ran.Load())
}

func TestWorkerPool_TrySubmitQueueFull(t *testing.T) {
	// Not started: nothing drains the queue.
	pool := NewWorkerPool(WorkerPoolOptions{Concurrency: 1, QueueSize: 2})
	noop := func(context.Context) {}

	require.NoError(t, pool.TrySubmit(Task{ID: "1", Run: noop}))
	require.NoError(t, pool.TrySubmit(Task{ID: "2", Run: noop}))
	require.ErrorIs(t, pool.TrySubmit(Task{ID: "3", Run: noop}), ErrQueueFull)
	assert.Equal(t, 2, pool.QueueDepth())
}

func TestWorkerPool_TrySubmitRequiresRun(t *testing.T) {
	pool := NewWorkerPool(WorkerPoolOptions{})
	require.Error(t, pool.TrySubmit(Task{ID: "x"}))
}

func TestWorkerPool_ShutdownDropsQueuedTasks(t *testing.T) {
	pool := NewWorkerPool(WorkerPoolOptions{Concurrency: 1, QueueSize: 4})
	cancel, done := startPool(t, pool)

	started := make(chan struct{})
	release := make(chan struct{})
	var runCtxErr atomic.Value

	require.NoError(t, pool.TrySubmit(Task{
		ID: "blocking",
		Run: func(ctx context.Context) {
			close(started)
			select {
			case <-ctx.Done():
				runCtxErr.Store(ctx.Err())
			case <-release:
			}
		},
	}))
	<-started

	var dropped atomic.Int64
	var dropCtxErr atomic.Value
	for _, id := range []string{"q1", "q2"} {
		require.NoError(t, pool.TrySubmit(Task{
			ID:  id,
			Run: func(context.Context) { t.Errorf("queued task %s should not run", id) },
			Drop: func(ctx context.Context) {
				dropped.Add(1)
				if ctx.Err() != nil {
					dropCtxErr.Store(ctx.Err())
				}
			},
		}))
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("pool did not stop")
	}

	assert.Equal(t, int64(2), dropped.Load())
	assert.Nil(t, dropCtxErr.Load(), "drop hooks get an uncancelled context")
	assert.Equal(t, context.Canceled, runCtxErr.Load())
	require.ErrorIs(t, pool.TrySubmit(Task{ID: "late", Run: func(context.Context) {}}), ErrPoolClosed)
}

func TestWorkerPool_RecoversTaskPanic(t *testing.T) {
	pool := NewWorkerPool(WorkerPoolOptions{Concurrency: 1, QueueSize: 4})
	cancel, done := startPool(t, pool)
	defer func() {
		cancel()
		<-done
	}()

	require.NoError(t, pool.TrySubmit(Task{ID: "boom", Run: func(context.Context) { panic("boom") }}))

	ran := make(chan struct{})
	require.NoError(t, pool.TrySubmit(Task{ID: "after", Run: func(context.Context) { close(ran) }}))

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not survive a panicking task")
	}
}

func TestWorkerPool_RunTwice(t *testing.T) {
	pool := NewWorkerPool(WorkerPoolOptions{})
	cancel, done := startPool(t, pool)
	defer func() {
		cancel()
		<-done
	}()

	require.Eventually(t, func() bool { return pool.started.Load() }, time.Second, 5*time.Millisecond)
	require.Error(t, pool.Run(context.Background()))
}

func TestWorkerPool_ReportsGauges(t *testing.T) {
	sink := newRecordingSink()
	pool := NewWorkerPool(WorkerPoolOptions{Concurrency: 1, QueueSize: 2, Metrics: sink})
	cancel, done := startPool(t, pool)
	defer func() {
		cancel()
		<-done
	}()

	finished := make(chan struct{})
	require.NoError(t, pool.TrySubmit(Task{ID: "g", Run: func(context.Context) { close(finished) }}))
	<-finished

	require.Eventually(t, func() bool {
		sink.mu.Lock()
		defer sink.mu.Unlock()
		_, depth := sink.gauges["worker.queue_depth"]
		inflight, ok := sink.gauges["worker.in_flight"]
		return depth && ok && inflight == 0
	}, time.Second, 5*time.Millisecond)
}
