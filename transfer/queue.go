package transfer

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/noh-rs/nohrs/errors"
	"github.com/noh-rs/nohrs/vfs"
)

// DefaultWorkers bounds how many jobs run concurrently.
const DefaultWorkers = 4

// DefaultRetries is how many times a retryable copy failure is reattempted.
const DefaultRetries = 2

// Queue runs transfer jobs on a bounded worker pool. Admission accounting
// lives in Submit, so enqueueing never blocks: jobs past the worker limit
// wait in pending until a worker frees up.
type Queue struct {
	mounts  *vfs.Mounts
	logger  *slog.Logger
	workers int
	retries int
	backoff time.Duration

	mu      sync.Mutex
	jobs    map[string]*jobRecord
	pending []*jobRecord
	active  int

	pool *errgroup.Group
}

type jobRecord struct {
	job    Job
	ctx    context.Context
	cancel context.CancelFunc
}

// QueueOption configures a Queue.
type QueueOption func(*Queue)

// WithWorkers sets the number of concurrent jobs.
func WithWorkers(n int) QueueOption {
	return func(q *Queue) {
		if n > 0 {
			q.workers = n
		}
	}
}

// WithRetries sets how often a retryable failure is reattempted.
func WithRetries(n int) QueueOption {
	return func(q *Queue) {
		if n >= 0 {
			q.retries = n
		}
	}
}

// WithQueueLogger sets the logger. The default discards everything.
func WithQueueLogger(logger *slog.Logger) QueueOption {
	return func(q *Queue) {
		q.logger = logger
	}
}

// withBackoff shortens the retry delay in tests.
func withBackoff(d time.Duration) QueueOption {
	return func(q *Queue) {
		q.backoff = d
	}
}

// NewQueue creates a queue over the given mounts.
func NewQueue(mounts *vfs.Mounts, opts ...QueueOption) *Queue {
	q := &Queue{
		mounts:  mounts,
		logger:  slog.New(slog.DiscardHandler),
		workers: DefaultWorkers,
		retries: DefaultRetries,
		backoff: 500 * time.Millisecond,
		jobs:    make(map[string]*jobRecord),
		pool:    new(errgroup.Group),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Submit validates the request, enqueues a job, and returns its snapshot.
// It never blocks: when every worker is busy the job waits in pending and
// the snapshot reports StateQueued.
func (q *Queue) Submit(req Request) (*Job, error) {
	if _, _, err := q.mounts.Resolve(req.Src); err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidInput, "resolve source")
	}
	if _, _, err := q.mounts.Resolve(req.Dst); err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidInput, "resolve destination")
	}

	ctx, cancel := context.WithCancel(context.Background())
	rec := &jobRecord{
		job: Job{
			ID:        uuid.NewString(),
			Src:       req.Src,
			Dst:       req.Dst,
			Policy:    req.Policy,
			State:     StateQueued,
			CreatedAt: time.Now(),
		},
		ctx:    ctx,
		cancel: cancel,
	}

	q.mu.Lock()
	q.jobs[rec.job.ID] = rec
	// Snapshot before a worker starts mutating the record.
	snapshot := rec.job
	start := q.active < q.workers
	if start {
		q.active++
	} else {
		q.pending = append(q.pending, rec)
	}
	q.mu.Unlock()

	if start {
		q.spawn(rec)
	}
	return &snapshot, nil
}

// spawn starts a worker for rec. The worker drains pending jobs before it
// exits, so a job handed off in Submit is always picked up. The active
// count bounds concurrent workers, which keeps pool.Go from ever blocking.
func (q *Queue) spawn(rec *jobRecord) {
	q.pool.Go(func() error {
		for rec != nil {
			q.run(rec.ctx, rec)

			q.mu.Lock()
			if len(q.pending) > 0 {
				rec = q.pending[0]
				q.pending = q.pending[1:]
			} else {
				rec = nil
				q.active--
			}
			q.mu.Unlock()
		}
		return nil
	})
}

// run executes one job to completion.
func (q *Queue) run(ctx context.Context, rec *jobRecord) {
	if ctx.Err() != nil {
		q.finish(rec, StateCanceled, nil)
		return
	}

	q.mu.Lock()
	rec.job.State = StateRunning
	rec.job.StartedAt = time.Now()
	q.mu.Unlock()

	q.logger.Info("transfer started", "job", rec.job.ID, "src", rec.job.Src, "dst", rec.job.Dst)

	err := q.execute(ctx, rec)
	switch {
	case err == nil:
		q.finish(rec, StateDone, nil)
	case ctx.Err() != nil:
		q.finish(rec, StateCanceled, nil)
	default:
		q.logger.Warn("transfer failed", "job", rec.job.ID, "error", err)
		q.finish(rec, StateFailed, err)
	}
}

func (q *Queue) finish(rec *jobRecord, state State, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	rec.job.State = state
	rec.job.FinishedAt = time.Now()
	if err != nil {
		rec.job.Error = err.Error()
	}
}

// Job returns a snapshot of the identified job.
func (q *Queue) Job(id string) (*Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	rec, ok := q.jobs[id]
	if !ok {
		return nil, errors.Newf(errors.CodeNotFound, "no transfer job %s", id)
	}
	snapshot := rec.job
	return &snapshot, nil
}

// Jobs returns snapshots of all jobs, newest first.
func (q *Queue) Jobs() []Job {
	q.mu.Lock()
	defer q.mu.Unlock()

	jobs := make([]Job, 0, len(q.jobs))
	for _, rec := range q.jobs {
		jobs = append(jobs, rec.job)
	}
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
	return jobs
}

// Cancel stops a queued or running job. Canceling a finished job is a no-op.
func (q *Queue) Cancel(id string) error {
	q.mu.Lock()
	rec, ok := q.jobs[id]
	q.mu.Unlock()
	if !ok {
		return errors.Newf(errors.CodeNotFound, "no transfer job %s", id)
	}

	rec.cancel()
	return nil
}

// Wait blocks until every submitted job has finished.
func (q *Queue) Wait() {
	_ = q.pool.Wait()
}
