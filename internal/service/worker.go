package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/sbobine/sbobine-api/internal/observability/metrics"
)

var (
	// ErrQueueFull is returned by TrySubmit when every queue slot is taken.
	ErrQueueFull = errors.New("worker queue is full")
	// ErrPoolClosed is returned by TrySubmit once the pool has begun shutting down.
	ErrPoolClosed = errors.New("worker pool is closed")
)

// Task is one unit of work accepted by the pool.
type Task struct {
	ID string
	// Run executes the task. ctx is cancelled when the pool shuts down.
	Run func(ctx context.Context)
	// Drop is called for tasks still queued at shutdown. ctx is not cancelled.
	Drop func(ctx context.Context)
}

// WorkerPoolOptions configures a WorkerPool.
type WorkerPoolOptions struct {
	Concurrency int
	QueueSize   int
	Logger      *slog.Logger
	Metrics     metrics.Sink
}

// WorkerPool runs tasks on a fixed number of workers fed by a bounded queue.
type WorkerPool struct {
	queue       chan Task
	concurrency int
	logger      *slog.Logger
	metrics     metrics.Sink

	mu       sync.RWMutex // guards closed against concurrent sends
	closed   bool
	started  atomic.Bool
	inFlight atomic.Int64
}

// NewWorkerPool constructs a pool. Workers start when Run is called.
func NewWorkerPool(opts WorkerPoolOptions) *WorkerPool {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkerPool{
		queue:       make(chan Task, max(opts.QueueSize, 1)),
		concurrency: max(opts.Concurrency, 1),
		logger:      logger.With("component", "worker_pool"),
		metrics:     metrics.OrNoop(opts.Metrics),
	}
}

// TrySubmit enqueues task without blocking.
func (p *WorkerPool) TrySubmit(task Task) error {
	if task.Run == nil {
		return errors.New("task run func is required")
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.queue <- task:
		p.reportDepth()
		return nil
	default:
		return ErrQueueFull
	}
}

// Run starts the workers and blocks until ctx is cancelled. It then stops accepting
// tasks, waits for in-flight tasks to observe cancellation and hands every queued
// task to its Drop hook.
func (p *WorkerPool) Run(ctx context.Context) error {
	if !p.started.CompareAndSwap(false, true) {
		return errors.New("worker pool already running")
	}

	p.logger.InfoContext(ctx, "starting worker pool",
		"concurrency", p.concurrency,
		"queue_size", cap(p.queue),
	)

	group, gctx := errgroup.WithContext(ctx)
	for range p.concurrency {
		group.Go(func() error { return p.runWorkerLoop(gctx) })
	}

	<-gctx.Done()

	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	err := group.Wait()
	dropped := p.drain(context.WithoutCancel(ctx))

	p.logger.InfoContext(ctx, "worker pool stopped", "dropped", dropped)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// QueueDepth returns the number of tasks waiting for a worker.
func (p *WorkerPool) QueueDepth() int { return len(p.queue) }

// InFlight returns the number of tasks currently running.
func (p *WorkerPool) InFlight() int64 { return p.inFlight.Load() }

func (p *WorkerPool) runWorkerLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case task := <-p.queue:
			p.reportDepth()
			if ctx.Err() != nil {
				p.dropTask(context.WithoutCancel(ctx), task)
				return nil
			}
			p.execute(ctx, task)
		}
	}
}

func (p *WorkerPool) execute(ctx context.Context, task Task) {
	p.metrics.Gauge("worker.in_flight", float64(p.inFlight.Add(1)), nil)
	defer func() {
		p.metrics.Gauge("worker.in_flight", float64(p.inFlight.Add(-1)), nil)
		if r := recover(); r != nil {
			p.logger.ErrorContext(ctx, "worker task panicked",
				"task_id", task.ID,
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()),
			)
		}
	}()
	task.Run(ctx)
}

func (p *WorkerPool) drain(ctx context.Context) int {
	dropped := 0
	for {
		select {
		case task := <-p.queue:
			p.dropTask(ctx, task)
			dropped++
		default:
			p.reportDepth()
			return dropped
		}
	}
}

func (p *WorkerPool) dropTask(ctx context.Context, task Task) {
	if task.Drop == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			p.logger.ErrorContext(ctx, "worker drop hook panicked", "task_id", task.ID, "panic", fmt.Sprint(r))
		}
	}()
	task.Drop(ctx)
}

func (p *WorkerPool) reportDepth() {
	p.metrics.Gauge("worker.queue_depth", float64(len(p.queue)), nil)
}
