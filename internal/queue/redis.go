package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aminulbx/genboard/internal/apperror"
)

const defaultRedisKey = "genboard:jobs"

// Redis is a Redis-list-backed queue for deployments where the worker pool
// runs in a separate process from the API. LPUSH + BRPOP gives the same
// contract as the channel backend: FIFO, and the atomic BRPOP guarantees a
// job is claimed by exactly one worker.
type Redis struct {
	client   *redis.Client
	key      string
	capacity int64
}

var _ Queue = (*Redis)(nil)

// NewRedis creates a queue on the given client. capacity bounds the list
// length the same way the channel buffer bounds the in-process queue.
func NewRedis(client *redis.Client, capacity int) *Redis {
	if capacity <= 0 {
		capacity = 64
	}
	return &Redis{
		client:   client,
		key:      defaultRedisKey,
		capacity: int64(capacity),
	}
}

func (r *Redis) Enqueue(ctx context.Context, job Job) error {
	// LLEN-then-LPUSH is not atomic, so a burst can briefly overshoot the
	// cap by a few jobs. The cap exists as backpressure, not as an exact
	// bound, so that is acceptable.
	length, err := r.client.LLen(ctx, r.key).Result()
	if err != nil {
		return fmt.Errorf("queue: checking queue length: %w", err)
	}
	if length >= r.capacity {
		return apperror.Unavailable("job queue is full")
	}

	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("queue: encoding job: %w", err)
	}
	if err := r.client.LPush(ctx, r.key, payload).Err(); err != nil {
		return fmt.Errorf("queue: pushing job: %w", err)
	}
	return nil
}

func (r *Redis) Dequeue(ctx context.Context) (Job, error) {
	for {
		// A short poll interval keeps workers responsive to ctx
		// cancellation even against servers that do not interrupt BRPOP.
		res, err := r.client.BRPop(ctx, time.Second, r.key).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				select {
				case <-ctx.Done():
					return Job{}, ctx.Err()
				default:
					continue
				}
			}
			if ctx.Err() != nil {
				return Job{}, ctx.Err()
			}
			return Job{}, fmt.Errorf("queue: popping job: %w", err)
		}

		// BRPOP returns [key, value].
		var job Job
		if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
			return Job{}, fmt.Errorf("queue: decoding job: %w", err)
		}
		return job, nil
	}
}

// Close is a no-op: the redis client's lifecycle belongs to the caller that
// constructed it.
func (r *Redis) Close() error {
	return nil
}
