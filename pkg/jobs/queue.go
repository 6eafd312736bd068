package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// ErrQueueClosed is returned by Enqueue before Start or after Stop.
var ErrQueueClosed = errors.New("queue is not running")

const maxRetryDelay = time.Minute

// Job is a unit of background work. Attempt counts previous failures.
type Job struct {
	ID       string
	Type     string
	Attempt  int
	Enqueued time.Time
}

// Handler runs one job. A returned error schedules a retry.
type Handler func(context.Context, Job) error

// QueueConfig tunes the worker pool. Zero values fall back to defaults.
type QueueConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
	Logger     *zap.Logger
}

// Queue runs jobs on a fixed pool of goroutines and retries failures with
// exponential backoff.
type Queue struct {
	name    string
	handler Handler
	cfg     QueueConfig
	logger  *zap.Logger

	mu      sync.RWMutex
	ch      chan Job
	ctx     context.Context
	cancel  context.CancelFunc
	running bool

	workers sync.WaitGroup
	retries sync.WaitGroup
	pending atomic.Int64
}

// NewQueue builds an idle queue; call Start to begin consuming.
func NewQueue(name string, handler Handler, cfg QueueConfig) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 8
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Queue{
		name:    name,
		handler: handler,
		cfg:     cfg,
		logger:  logger.With(zap.String("queue", name)),
		ch:      make(chan Job, cfg.BufferSize),
	}
}

// Start launches the workers. Calling it twice is a no-op.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.running {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	q.running = true
	for i := 0; i < q.cfg.Workers; i++ {
		q.workers.Add(1)
		go q.work(i + 1)
	}
	q.logger.Info("queue started", zap.Int("workers", q.cfg.Workers))
}

// Stop cancels in-flight work and waits for workers and scheduled retries.
// Jobs still buffered are dropped; the export service recovers them from the
// database on next boot.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return
	}
	q.running = false
	q.cancel()
	q.mu.Unlock()

	q.workers.Wait()
	q.retries.Wait()
	q.logger.Info("queue stopped", zap.Int64("dropped", q.pending.Load()))
}

// Enqueue hands a job to the pool, blocking while the buffer is full.
func (q *Queue) Enqueue(job Job) error {
	q.mu.RLock()
	running, ctx := q.running, q.ctx
	q.mu.RUnlock()
	if !running {
		return fmt.Errorf("%s: %w", q.name, ErrQueueClosed)
	}
	if job.Enqueued.IsZero() {
		job.Enqueued = time.Now().UTC()
	}

	q.pending.Add(1)
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		q.pending.Add(-1)
		return fmt.Errorf("%s: %w", q.name, ErrQueueClosed)
	}
}

// Pending reports jobs that are buffered or waiting on a retry timer.
func (q *Queue) Pending() int64 {
	return q.pending.Load()
}

func (q *Queue) work(id int) {
	defer q.workers.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case job := <-q.ch:
			q.pending.Add(-1)
			if err := q.run(job); err != nil {
				q.retry(job, err, id)
			}
		}
	}
}

func (q *Queue) run(job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return q.handler(q.ctx, job)
}

func (q *Queue) retry(job Job, cause error, worker int) {
	fields := []zap.Field{
		zap.String("job_id", job.ID),
		zap.String("type", job.Type),
		zap.Int("worker", worker),
		zap.Error(cause),
	}
	if q.ctx.Err() != nil {
		return
	}
	if job.Attempt >= q.cfg.MaxRetries {
		q.logger.Error("job failed permanently", append(fields, zap.Int("attempts", job.Attempt+1))...)
		return
	}

	job.Attempt++
	delay := Backoff(q.cfg.RetryDelay, job.Attempt)
	q.logger.Warn("job failed, retry scheduled", append(fields, zap.Int("attempt", job.Attempt), zap.Duration("delay", delay))...)

	q.pending.Add(1)
	q.retries.Add(1)
	go func() {
		defer q.retries.Done()
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-q.ctx.Done():
			q.pending.Add(-1)
		case <-timer.C:
			select {
			case q.ch <- job:
			case <-q.ctx.Done():
				q.pending.Add(-1)
			}
		}
	}()
}

// Backoff doubles base for every attempt after the first, capped at one minute.
func Backoff(base time.Duration, attempt int) time.Duration {
	if attempt <= 1 {
		return base
	}
	delay := base
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= maxRetryDelay {
			return maxRetryDelay
		}
	}
	return delay
}
