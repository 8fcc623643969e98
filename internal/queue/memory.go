package queue

import (
	"context"
	"sync"

	"github.com/aminulbx/genboard/internal/apperror"
)

// Memory is the default in-process queue: a bounded channel. A buffered
// channel already gives us FIFO delivery and exactly-once claim under
// concurrent receivers, so the implementation is mostly the backpressure
// edge cases.
type Memory struct {
	jobs      chan Job
	closeOnce sync.Once
}

var _ Queue = (*Memory)(nil)

// NewMemory creates an in-process queue holding at most capacity pending
// jobs.
func NewMemory(capacity int) *Memory {
	if capacity <= 0 {
		capacity = 64
	}
	return &Memory{jobs: make(chan Job, capacity)}
}

func (m *Memory) Enqueue(ctx context.Context, job Job) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	select {
	case m.jobs <- job:
		return nil
	default:
		// Fail fast rather than block the request goroutine.
		return apperror.Unavailable("job queue is full")
	}
}

func (m *Memory) Dequeue(ctx context.Context) (Job, error) {
	select {
	case job, ok := <-m.jobs:
		if !ok {
			return Job{}, ErrClosed
		}
		return job, nil
	case <-ctx.Done():
		return Job{}, ctx.Err()
	}
}

// Close closes the channel. Pending jobs remain receivable until drained;
// after that Dequeue returns ErrClosed. Enqueue after Close panics, so the
// server shuts the HTTP listener down first.
func (m *Memory) Close() error {
	m.closeOnce.Do(func() { close(m.jobs) })
	return nil
}
