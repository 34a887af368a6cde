package message_repo

import (
	"context"

	"github.com/xenn00/campus-chat/internal/entity"
	app_error "github.com/xenn00/campus-chat/internal/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type MessageRepoContract interface {
	// Append persists one message; the log is append-only, nothing ever
	// mutates or deletes a stored message.
	Append(ctx context.Context, msg *entity.Message) (bson.ObjectID, *app_error.AppError)
	// ListByRoom returns the full history for a room channel in insertion
	// order (oldest first).
	ListByRoom(ctx context.Context, channelID int64) ([]*entity.Message, *app_error.AppError)
}
