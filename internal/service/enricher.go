package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mnemograph/mnemo/internal/metrics"
)

const (
	defaultEnrichWorkers     = 2
	defaultEnrichBuffer      = 64
	defaultEnrichTaskTimeout = 30 * time.Second
)

// EnrichTask is one unit of post-ingest work, such as a contradiction
// sweep over a new memory.
type EnrichTask func(ctx context.Context)

// TaskQueue runs enrichment work on a fixed worker pool behind a bounded
// buffer. Submission never blocks the caller: when the buffer is full the
// task is dropped and counted, so a slow model can delay enrichment but
// never ingestion.
type TaskQueue struct {
	logger  *zap.Logger
	metrics *metrics.Sink

	workers     int
	taskTimeout time.Duration

	tasks  chan EnrichTask
	stopCh chan struct{}
	wg     sync.WaitGroup
}

func NewTaskQueue(workers, buffer int, logger *zap.Logger, sink *metrics.Sink) *TaskQueue {
	if workers <= 0 {
		workers = defaultEnrichWorkers
	}
	if buffer <= 0 {
		buffer = defaultEnrichBuffer
	}
	return &TaskQueue{
		logger:      logger,
		metrics:     sink,
		workers:     workers,
		taskTimeout: defaultEnrichTaskTimeout,
		tasks:       make(chan EnrichTask, buffer),
		stopCh:      make(chan struct{}),
	}
}

func (q *TaskQueue) SetTaskTimeout(d time.Duration) {
	q.taskTimeout = d
}

// Start launches the worker pool.
func (q *TaskQueue) Start() {
	q.logger.Info("enrichment queue started",
		zap.Int("workers", q.workers),
		zap.Int("buffer", cap(q.tasks)))

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go func() {
			defer q.wg.Done()
			for {
				select {
				case task := <-q.tasks:
					q.runTask(task)
				case <-q.stopCh:
					return
				}
			}
		}()
	}
}

// Stop drains nothing: workers finish their current task and exit.
// Buffered tasks that never ran are logged as dropped.
func (q *TaskQueue) Stop() {
	close(q.stopCh)
	q.wg.Wait()

	remaining := len(q.tasks)
	if remaining > 0 {
		q.logger.Warn("enrichment queue stopped with tasks pending", zap.Int("pending", remaining))
	}
	q.logger.Info("enrichment queue stopped")
}

// Submit enqueues a task, reporting whether it was accepted. A full
// buffer drops the task rather than blocking the ingest path.
func (q *TaskQueue) Submit(task EnrichTask) bool {
	select {
	case q.tasks <- task:
		return true
	default:
		q.metrics.TaskDropped()
		q.logger.Warn("enrichment queue full, task dropped")
		return false
	}
}

func (q *TaskQueue) runTask(task EnrichTask) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("enrichment task panicked", zap.Any("panic", r))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), q.taskTimeout)
	defer cancel()
	task(ctx)
}
