package decoder

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
)

// ErrPoolClosed is returned for work submitted after Close.
var ErrPoolClosed = errors.New("worker pool closed")

type job struct {
	fn     func() error
	result chan error
}

// PoolStats is a snapshot of pool counters.
type PoolStats struct {
	Workers       int   `json:"workers"`
	TotalJobs     int64 `json:"total_jobs"`
	CompletedJobs int64 `json:"completed_jobs"`
	FailedJobs    int64 `json:"failed_jobs"`
	ActiveWorkers int64 `json:"active_workers"`
}

// WorkerPool bounds how many decodes run at once. Callers queue independently;
// there is no lock shared between submissions.
type WorkerPool struct {
	workers   int
	jobQueue  chan job
	done      chan struct{}
	wg        sync.WaitGroup
	startOnce sync.Once
	closeOnce sync.Once

	totalJobs     atomic.Int64
	completedJobs atomic.Int64
	failedJobs    atomic.Int64
	activeWorkers atomic.Int64
}

// NewWorkerPool creates a new worker pool with the specified number of workers
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	return &WorkerPool{
		workers:  workers,
		jobQueue: make(chan job, workers*2),
		done:     make(chan struct{}),
	}
}

// Start launches the workers. Calling it more than once has no effect.
func (wp *WorkerPool) Start() {
	wp.startOnce.Do(func() {
		for i := 0; i < wp.workers; i++ {
			wp.wg.Add(1)
			go wp.worker()
		}
	})
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()
	for {
		select {
		case j := <-wp.jobQueue:
			wp.run(j)
		case <-wp.done:
			return
		}
	}
}

func (wp *WorkerPool) run(j job) {
	wp.activeWorkers.Add(1)

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic during decode: %v", r)
			}
		}()
		return j.fn()
	}()

	// Counters settle before the submitter is released.
	wp.activeWorkers.Add(-1)
	if err != nil {
		wp.failedJobs.Add(1)
	}
	wp.completedJobs.Add(1)
	j.result <- err
}

// Do queues fn and waits for it to finish, returning its error. ctx only
// bounds the wait for a free slot; a job that has started runs to completion.
// A panic inside fn is returned as an error.
func (wp *WorkerPool) Do(ctx context.Context, fn func() error) error {
	j := job{fn: fn, result: make(chan error, 1)}

	select {
	case <-wp.done:
		return ErrPoolClosed
	default:
	}

	select {
	case wp.jobQueue <- j:
		wp.totalJobs.Add(1)
	case <-ctx.Done():
		return ctx.Err()
	case <-wp.done:
		return ErrPoolClosed
	}

	select {
	case err := <-j.result:
		return err
	case <-wp.done:
		return ErrPoolClosed
	}
}

// Stats returns a snapshot of the pool counters.
func (wp *WorkerPool) Stats() PoolStats {
	return PoolStats{
		Workers:       wp.workers,
		TotalJobs:     wp.totalJobs.Load(),
		CompletedJobs: wp.completedJobs.Load(),
		FailedJobs:    wp.failedJobs.Load(),
		ActiveWorkers: wp.activeWorkers.Load(),
	}
}

// Close stops the workers and waits for running jobs to return.
func (wp *WorkerPool) Close() {
	wp.closeOnce.Do(func() {
		close(wp.done)
	})
	wp.wg.Wait()
}
