package queue

import (
	"context"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/recollect/core"
)

// DefaultWorkers is the default worker pool width for background jobs.
const DefaultWorkers = 2

// Status classifies where a job is in its lifecycle.
type Status string

const (
	// StatusQueued means the job is waiting for a worker.
	StatusQueued Status = "queued"
	// StatusProcessing means a worker is running the job.
	StatusProcessing Status = "processing"
	// StatusFinished means the job completed and its result is available.
	StatusFinished Status = "finished"
	// StatusFailed means the job returned an error.
	StatusFailed Status = "failed"
)

// JobFunc is the unit of background work. The returned value is retained
// on the job for polling.
type JobFunc func(ctx context.Context) (any, error)

// JobInfo is a point-in-time snapshot of a job.
type JobInfo struct {
	ID     core.ID
	Status Status
	Result any
	Err    error
}

// Queue runs jobs on a bounded worker pool and retains their outcomes
// for polling. It is an in-process stand-in for a broker-backed queue:
// jobs do not survive a restart.
type Queue struct {
	pool *ants.Pool

	mu     sync.Mutex
	nextID core.ID
	jobs   map[core.ID]*JobInfo
}

// Option configures a Queue.
type Option func(*Queue) error

// WithWorkers sets the worker pool size.
// Default is DefaultWorkers, with a minimum of 1.
func WithWorkers(size int) Option {
	return func(q *Queue) error {
		if size < 1 {
			size = 1
		}
		if q.pool != nil {
			q.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		q.pool = pool
		return nil
	}
}

// New creates a job queue.
func New(opts ...Option) (*Queue, error) {
	pool, err := ants.NewPool(DefaultWorkers)
	if err != nil {
		return nil, err
	}

	q := &Queue{
		pool: pool,
		jobs: make(map[core.ID]*JobInfo),
	}
	for _, opt := range opts {
		if optErr := opt(q); optErr != nil {
			q.Release()
			return nil, optErr
		}
	}
	return q, nil
}

// Submit schedules a job and returns its ID immediately.
// The job runs with the background context: submission outlives the
// caller's request scope.
func (q *Queue) Submit(fn JobFunc) (core.ID, error) {
	if fn == nil {
		return 0, ErrNilJob
	}

	q.mu.Lock()
	q.nextID++
	id := q.nextID
	q.jobs[id] = &JobInfo{ID: id, Status: StatusQueued}
	q.mu.Unlock()

	err := q.pool.Submit(func() {
		q.setStatus(id, StatusProcessing)

		result, jobErr := fn(context.Background())

		q.mu.Lock()
		defer q.mu.Unlock()
		job := q.jobs[id]
		if jobErr != nil {
			job.Status = StatusFailed
			job.Err = jobErr
		} else {
			job.Status = StatusFinished
			job.Result = result
		}
	})
	if err != nil {
		q.mu.Lock()
		delete(q.jobs, id)
		q.mu.Unlock()
		return 0, err
	}

	return id, nil
}

// Poll returns a snapshot of the job's current state.
func (q *Queue) Poll(id core.ID) (*JobInfo, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	job, exists := q.jobs[id]
	if !exists {
		return nil, ErrJobNotFound
	}

	snapshot := *job
	return &snapshot, nil
}

// Release stops the worker pool. Pending jobs are abandoned.
func (q *Queue) Release() {
	if q.pool != nil {
		q.pool.Release()
	}
}

func (q *Queue) setStatus(id core.ID, status Status) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if job, exists := q.jobs[id]; exists {
		job.Status = status
	}
}
