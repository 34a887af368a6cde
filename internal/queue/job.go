package queue

import "encoding/json"

// Job types handled by the worker pool.
const (
	JobTypeRoomActivity = "room_activity"
)

// QueueKey is the Redis sorted set holding pending jobs; score encodes
// priority then expiry so the pool drains urgent work first.
const QueueKey = "priority_queue"

// DLQKey is the Redis list jobs land on after exhausting their retries,
// before the DLQ worker persists them to Mongo.
const DLQKey = "priority_queue_dlq"

type Job struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Priority  int             `json:"priority"`
	Retry     int             `json:"retry"`
	MaxRetry  int             `json:"max_retry"`
	ErrorMsg  string          `json:"error_msg,omitempty"`
	CreatedAt int64           `json:"created_at"`
	ExpireAt  int64           `json:"expired_at"`
}

func MustMarshal(payload any) json.RawMessage {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil
	}

	return b
}
