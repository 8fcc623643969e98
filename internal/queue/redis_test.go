package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aminulbx/genboard/internal/apperror"
)

func newTestRedisQueue(t *testing.T, capacity int) *Redis {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedis(client, capacity)
}

func TestRedisEnqueueDequeue_FIFO(t *testing.T) {
	q := newTestRedisQueue(t, 10)
	ctx := context.Background()

	for _, id := range []string{"g1", "g2", "g3"} {
		require.NoError(t, q.Enqueue(ctx, Job{GenerationID: id, Prompt: "make a modal"}))
	}

	for _, want := range []string{"g1", "g2", "g3"} {
		job, err := q.Dequeue(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, job.GenerationID)
		assert.Equal(t, "make a modal", job.Prompt)
	}
}

func TestRedisEnqueue_FailsFastWhenFull(t *testing.T) {
	q := newTestRedisQueue(t, 2)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, Job{GenerationID: "g1"}))
	require.NoError(t, q.Enqueue(ctx, Job{GenerationID: "g2"}))

	err := q.Enqueue(ctx, Job{GenerationID: "g3"})
	assert.True(t, errors.Is(err, apperror.ErrUnavailable))
}

func TestRedisDequeue_ContextCancel(t *testing.T) {
	q := newTestRedisQueue(t, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := q.Dequeue(ctx)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
