// Package queue decouples request acceptance from AI execution latency.
//
// The orchestrator enqueues a job per accepted generation request; the worker
// pool dequeues them. The contract both backends implement:
//
//   - each enqueued job is delivered to exactly one dequeuing worker
//   - FIFO order between Enqueue and Dequeue
//   - a job is never silently dropped — that would strand a generation in
//     pending forever
//
// Backpressure policy: Enqueue FAILS FAST. When the queue is at capacity it
// returns apperror.ErrUnavailable instead of blocking the request goroutine;
// the orchestrator then parks the generation as failed and the caller sees
// 503. Blocking would be the other valid choice, but it ties up HTTP workers
// behind a slow AI backend.
package queue

import (
	"context"
	"errors"
)

// ErrClosed is returned by Dequeue once the queue has shut down and drained.
var ErrClosed = errors.New("queue: closed")

// Job is the ephemeral unit of work handed from the orchestrator to a
// worker. It has no identity of its own beyond the generation it wraps.
type Job struct {
	GenerationID string `json:"generationId"`
	Prompt       string `json:"prompt"`
}

// Queue accepts generation jobs for asynchronous processing.
type Queue interface {
	// Enqueue admits the job or fails fast with apperror.ErrUnavailable
	// when the queue is at capacity.
	Enqueue(ctx context.Context, job Job) error
	// Dequeue blocks until a job is available, ctx is cancelled, or the
	// queue is closed. Each job is delivered to exactly one caller.
	Dequeue(ctx context.Context) (Job, error)
	// Close stops the queue. Jobs already admitted may still be drained by
	// Dequeue before it starts returning ErrClosed.
	Close() error
}
