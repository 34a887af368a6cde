package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Message is append-only; ObjectIDs are monotonic per process and sends are
// serialized per room, so _id order is insertion order within a room.
type Message struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	RoomID    int64         `bson:"roomId"`
	SenderID  string        `bson:"senderId"`
	Content   string        `bson:"content"`
	CreatedAt time.Time     `bson:"createdAt"`
}
