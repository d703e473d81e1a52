// Package worker runs predictors over queued inference jobs.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/eegscreen/internal/adapters/mq/queue"
	"github.com/okian/eegscreen/internal/domain/model"
	"github.com/okian/eegscreen/pkg/logger"
	"github.com/okian/eegscreen/pkg/metrics"
)

// Default worker configuration constants.
const (
	workerShutdownTimeout = 5 * time.Second
	poolShutdownTimeout   = 30 * time.Second
)

// Job abstracts what workers read off the queue.
type Job = model.Job

// Predictor scores one normalized recording.
type Predictor interface {
	Predict(ctx context.Context, samples []float64) (float64, error)
	Name() string
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// Worker runs predictions for queued jobs.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown stops the worker without draining the queue.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker for jobs from an in-process queue.
type InMemoryWorker struct {
	queue     Queue
	predictor Predictor
	name      string

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	processed *atomic.Int64

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, predictor Predictor, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     q,
		predictor: predictor,
		name:      "worker",
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		processed: new(atomic.Int64),
		logger:    logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop. It returns when ctx is done, Shutdown is
// called or the queue is closed and drained.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.process(job); err != nil {
				w.logger.Debug(ctx, "job finished with error",
					logger.String("job_id", job.ID),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown stops the worker and waits for the current job to finish.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// process runs the predictor under the submitter's context and replies.
func (w *InMemoryWorker) process(job Job) error { //nolint:gocritic // hugeParam: Job is passed by value for channel semantics
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	ctx := job.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		// The submitter already gave up; do not burn CPU on it.
		metrics.RecordErrorByComponent("worker", "abandoned")
		job.Complete(model.Result{Err: err})
		return err
	}

	metrics.AddWorkerBusy(1)
	p, err := w.predictor.Predict(ctx, job.Samples)
	metrics.AddWorkerBusy(-1)
	latency := time.Since(start)
	w.processed.Add(1)

	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordInferenceError()
		kind := "predict_error"
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			kind = "cancelled"
		}
		metrics.RecordErrorByComponent("worker", kind)
		job.Complete(model.Result{Predictor: w.predictor.Name(), Latency: latency, Err: err})
		return fmt.Errorf("predict job %s: %w", job.ID, err)
	}

	metrics.RecordInferenceLatency(w.predictor.Name(), float64(latency.Microseconds())/1000)
	job.Complete(model.Result{
		Probability: p,
		Predictor:   w.predictor.Name(),
		Latency:     latency,
	})
	return nil
}

// Pool manages the workers sharing one queue.
type Pool struct {
	workers   []*InMemoryWorker
	queue     queue.Queue
	predictor Predictor

	processed atomic.Int64
	stopOnce  sync.Once
	// cancel ends the context the workers and their queue readers run under.
	cancel context.CancelFunc

	logger logger.Logger
}

// NewPool creates a new worker pool. A non-positive count uses one worker
// per CPU.
func NewPool(workerCount int, q queue.Queue, predictor Predictor) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	pool := &Pool{
		workers:   make([]*InMemoryWorker, workerCount),
		queue:     q,
		predictor: predictor,
		logger:    logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		w := NewInMemoryWorker(q, predictor, WithName("worker-"+strconv.Itoa(i)))
		w.processed = &pool.processed
		pool.workers[i] = w
	}

	metrics.UpdateWorkerCount(workerCount)
	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	for _, w := range p.workers {
		go w.Run(runCtx)
	}
	p.logger.Info(ctx, "worker pool started",
		logger.Int("workers", len(p.workers)),
		logger.String("predictor", p.predictor.Name()),
	)
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Processed returns how many jobs reached the predictor.
func (p *Pool) Processed() int64 {
	return p.processed.Load()
}

// Submit enqueues a job without blocking.
func (p *Pool) Submit(ctx context.Context, job Job) error { //nolint:gocritic // hugeParam: Job is passed by value for channel semantics
	if p.queue.Enqueue(ctx, job) {
		return nil
	}
	switch {
	case p.queue.IsClosed():
		return ErrPoolClosed
	case ctx.Err() != nil:
		return ctx.Err()
	default:
		return ErrBackpressure
	}
}

// Predict submits samples and waits for the probability or for ctx.
func (p *Pool) Predict(ctx context.Context, id string, samples []float64) (model.Result, error) {
	job, reply := model.NewJob(ctx, id, samples)
	if err := p.Submit(ctx, job); err != nil {
		return model.Result{}, err
	}
	select {
	case r := <-reply:
		return r, r.Err
	case <-ctx.Done():
		return model.Result{}, ctx.Err()
	}
}

// Stop stops all workers without draining the queue. A job a queue reader
// already took but could not hand over is completed with context.Canceled.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		for _, w := range p.workers {
			w.shutdownOnce.Do(func() { close(w.shutdown) })
		}
		if p.cancel != nil {
			p.cancel()
		}
		for _, w := range p.workers {
			select {
			case <-w.done:
			case <-time.After(workerShutdownTimeout):
			}
		}
	})
}

// Shutdown closes the queue, lets workers drain what is already queued and
// then stops them. Workers still busy when ctx or the pool timeout expires
// are abandoned.
func (p *Pool) Shutdown(ctx context.Context) error {
	if err := p.queue.Close(); err != nil {
		p.logger.Error(ctx, "error closing queue", logger.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut bool
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			timedOut = true
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	p.Stop()
	if timedOut {
		return fmt.Errorf("worker pool shutdown: %w", shutdownCtx.Err())
	}
	return nil
}
