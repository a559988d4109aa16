package service

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/figmachat/figmachat-backend/internal/demos/domain"
	"github.com/figmachat/figmachat-backend/internal/observability"
	"github.com/figmachat/figmachat-backend/internal/platform/logger"
)

// Creator is satisfied by *DemoService.
type Creator interface {
	MaybeCreate(ctx context.Context, projectID, chatID, userMessage, assistantMessage string) (*domain.Demo, error)
}

// Runner executes demo jobs in the background. Jobs are best-effort: errors
// and panics are logged and dropped, and nothing is retried.
type Runner struct {
	creator Creator
	sem     *semaphore.Weighted
	timeout time.Duration
	metrics *observability.Metrics
	log     *logger.Logger

	base   context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewRunner(creator Creator, maxConcurrency int, timeout time.Duration, metrics *observability.Metrics, log *logger.Logger) *Runner {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	base, cancel := context.WithCancel(context.Background())
	return &Runner{
		creator: creator,
		sem:     semaphore.NewWeighted(int64(maxConcurrency)),
		timeout: timeout,
		metrics: metrics,
		log:     log.With("component", "DemoRunner"),
		base:    base,
		cancel:  cancel,
	}
}

// Trigger schedules demo detection for one chat turn and returns immediately.
// ctx only contributes values such as the request id; its cancellation is ignored.
func (r *Runner) Trigger(ctx context.Context, projectID, chatID, userMessage, assistantMessage string) {
	log := r.log.For(ctx).With("project_id", projectID, "chat_id", chatID)

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		log.Warn("demo runner closed, dropping job")
		r.metrics.DemoJob(observability.DemoDropped)
		return
	}
	r.wg.Add(1)
	r.mu.Unlock()

	go r.run(context.WithoutCancel(ctx), log, projectID, chatID, userMessage, assistantMessage)
}

func (r *Runner) run(parent context.Context, log *logger.Logger, projectID, chatID, userMessage, assistantMessage string) {
	defer r.wg.Done()
	defer func() {
		if p := recover(); p != nil {
			log.Error("demo job panicked", "panic", fmt.Sprint(p), "stack", string(debug.Stack()))
			r.metrics.DemoJob(observability.DemoFailed)
		}
	}()

	if err := r.sem.Acquire(r.base, 1); err != nil {
		log.Warn("demo job dropped at shutdown")
		r.metrics.DemoJob(observability.DemoDropped)
		return
	}
	defer r.sem.Release(1)

	ctx := parent
	var cancel context.CancelFunc
	if r.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()
	stop := context.AfterFunc(r.base, cancel)
	defer stop()

	start := time.Now()
	d, err := r.creator.MaybeCreate(ctx, projectID, chatID, userMessage, assistantMessage)
	switch {
	case err != nil:
		log.Error("web demo generation failed", "error", err, "elapsed", time.Since(start).String())
		r.metrics.DemoJob(observability.DemoFailed)
	case d == nil:
		log.Debug("no web demo requested")
		r.metrics.DemoJob(observability.DemoSkipped)
	default:
		log.Info("web demo created", "demo_id", d.ID, "name", d.Name, "elapsed", time.Since(start).String())
		r.metrics.DemoJob(observability.DemoCreated)
	}
}

// Close stops accepting jobs and waits for running ones. If ctx expires first,
// in-flight jobs are cancelled and ctx.Err() is returned.
func (r *Runner) Close(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.cancel()
		return nil
	case <-ctx.Done():
		r.cancel()
		return ctx.Err()
	}
}
