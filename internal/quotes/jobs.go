package quotes

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/atharvakonge/portfolio-ledger/internal/logging"
	"github.com/atharvakonge/portfolio-ledger/internal/models"
)

var (
	ErrQueueFull   = errors.New("quote queue is full")
	ErrQueueClosed = errors.New("quote queue is stopped")
)

// quoteJob is one queued batch
type quoteJob struct {
	id     string
	inputs []models.QuoteInput
}

// JobQueue runs batch lookups on a fixed worker pool and keeps each job's
// status until it has been finished for longer than the result TTL.
type JobQueue struct {
	workers int
	queue   chan quoteJob
	stopCh  chan struct{}
	wg      sync.WaitGroup
	fetcher Batcher
	ttl     time.Duration
	logger  *logging.Logger
	now     func() time.Time

	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once

	mu   sync.RWMutex
	jobs map[string]*models.QuoteJobStatus
}

// NewJobQueue creates a queue with a buffer of queueSize jobs
func NewJobQueue(fetcher Batcher, workers, queueSize int, ttl time.Duration, logger *logging.Logger) *JobQueue {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &JobQueue{
		workers: workers,
		queue:   make(chan quoteJob, queueSize),
		stopCh:  make(chan struct{}),
		fetcher: fetcher,
		ttl:     ttl,
		logger:  logger,
		now:     time.Now,
		ctx:     ctx,
		cancel:  cancel,
		jobs:    make(map[string]*models.QuoteJobStatus),
	}
}

// Start starts the worker pool and the expiry sweep
func (q *JobQueue) Start() {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
	q.wg.Add(1)
	go q.janitor()
	q.logger.Info().Int("workers", q.workers).Msg("Started quote workers")
}

// Stop gracefully stops all workers. Jobs still queued stay PENDING.
func (q *JobQueue) Stop() {
	q.stopOnce.Do(func() {
		close(q.stopCh)
		q.cancel()
	})
	q.wg.Wait()
	q.logger.Info().Msg("Quote queue stopped")
}

// Submit enqueues a batch without blocking and returns its task id.
func (q *JobQueue) Submit(inputs []models.QuoteInput) (string, error) {
	select {
	case <-q.stopCh:
		return "", ErrQueueClosed
	default:
	}

	id := uuid.NewString()
	q.mu.Lock()
	q.jobs[id] = &models.QuoteJobStatus{TaskID: id, Status: models.JobPending}
	q.mu.Unlock()

	select {
	case q.queue <- quoteJob{id: id, inputs: inputs}:
		return id, nil
	default:
		q.mu.Lock()
		delete(q.jobs, id)
		q.mu.Unlock()
		return "", ErrQueueFull
	}
}

// Status reports the job's state. Unknown and expired ids read as PENDING,
// with no result.
func (q *JobQueue) Status(id string) models.QuoteJobStatus {
	q.mu.RLock()
	defer q.mu.RUnlock()

	st, ok := q.jobs[id]
	if !ok || q.expired(st) {
		return models.QuoteJobStatus{TaskID: id, Status: models.JobPending}
	}
	return *st
}

// worker processes jobs from the queue
func (q *JobQueue) worker(id int) {
	defer q.wg.Done()

	for {
		select {
		case <-q.stopCh:
			q.logger.Debug().Int("worker", id).Msg("Quote worker stopping")
			return

		case job := <-q.queue:
			q.logger.Debug().Int("worker", id).Str("task_id", job.id).Int("inputs", len(job.inputs)).Msg("Processing quote job")
			q.process(job)
		}
	}
}

// process runs one job. A panic fails the job instead of the worker.
func (q *JobQueue) process(job quoteJob) {
	q.update(job.id, func(st *models.QuoteJobStatus) {
		st.Status = models.JobStarted
	})

	defer func() {
		if r := recover(); r != nil {
			q.logger.Error().
				Str("task_id", job.id).
				Str("panic", fmt.Sprintf("%v", r)).
				Str("stack", string(debug.Stack())).
				Msg("Recovered from panic in quote job")
			q.finish(job.id, nil, fmt.Sprintf("internal error: %v", r))
		}
	}()

	quotes := q.fetcher.FetchAll(q.ctx, job.inputs)
	if err := q.ctx.Err(); err != nil {
		q.finish(job.id, nil, err.Error())
		return
	}
	q.finish(job.id, quotes, "")
}

func (q *JobQueue) finish(id string, quotes []models.Quote, errMsg string) {
	q.update(id, func(st *models.QuoteJobStatus) {
		if errMsg != "" {
			st.Status = models.JobFailure
			st.Error = errMsg
			st.Result = nil
		} else {
			st.Status = models.JobSuccess
			st.Result = quotes
		}
		st.FinishedAt = q.now()
	})
}

func (q *JobQueue) update(id string, fn func(*models.QuoteJobStatus)) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if st, ok := q.jobs[id]; ok {
		fn(st)
	}
}

func (q *JobQueue) expired(st *models.QuoteJobStatus) bool {
	return q.ttl > 0 && st.Status.Terminal() && q.now().Sub(st.FinishedAt) > q.ttl
}

// janitor drops expired results so the table does not grow without bound
func (q *JobQueue) janitor() {
	defer q.wg.Done()

	interval := q.ttl / 2
	if interval <= 0 || interval > time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-q.stopCh:
			return
		case <-ticker.C:
			q.sweep()
		}
	}
}

func (q *JobQueue) sweep() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for id, st := range q.jobs {
		if q.expired(st) {
			delete(q.jobs, id)
		}
	}
}
