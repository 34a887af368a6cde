package queue

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProducer(t *testing.T) (Producer, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewProducer(rdb), rdb
}

func TestEnqueuePushesToQueue(t *testing.T) {
	producer, rdb := newTestProducer(t)
	ctx := context.Background()

	now := time.Now()
	job := Job{
		ID:        "job-1",
		Type:      JobTypeRoomActivity,
		Payload:   MustMarshal(map[string]any{"channel_id": 3}),
		Priority:  2,
		MaxRetry:  3,
		CreatedAt: now.Unix(),
		ExpireAt:  now.Add(5 * time.Minute).Unix(),
	}
	require.NoError(t, producer.Enqueue(ctx, job))

	members, err := rdb.ZRange(ctx, QueueKey, 0, -1).Result()
	require.NoError(t, err)
	require.Len(t, members, 1)

	var stored Job
	require.NoError(t, json.Unmarshal([]byte(members[0]), &stored))
	assert.Equal(t, "job-1", stored.ID)
	assert.Equal(t, JobTypeRoomActivity, stored.Type)
}

func TestEnqueueOrdersByPriorityThenExpiry(t *testing.T) {
	producer, rdb := newTestProducer(t)
	ctx := context.Background()

	base := time.Now().Unix()
	low := Job{ID: "low", Type: JobTypeRoomActivity, Priority: 5, ExpireAt: base}
	urgent := Job{ID: "urgent", Type: JobTypeRoomActivity, Priority: 1, ExpireAt: base + 300}

	require.NoError(t, producer.Enqueue(ctx, low))
	require.NoError(t, producer.Enqueue(ctx, urgent))

	members, err := rdb.ZRange(ctx, QueueKey, 0, -1).Result()
	require.NoError(t, err)
	require.Len(t, members, 2)

	var first Job
	require.NoError(t, json.Unmarshal([]byte(members[0]), &first))
	assert.Equal(t, "urgent", first.ID)
}
