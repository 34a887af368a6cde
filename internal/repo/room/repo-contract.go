package room_repo

import (
	"context"
	"time"

	"github.com/xenn00/campus-chat/internal/entity"
	app_error "github.com/xenn00/campus-chat/internal/errors"
)

type RoomRepoContract interface {
	// FindRoomID resolves the room for an unordered user pair; 0 means absent.
	FindRoomID(ctx context.Context, userA, userB string) (int64, *app_error.AppError)
	// FindOrCreateRoom is idempotent: concurrent callers for the same pair
	// always end up with the same room.
	FindOrCreateRoom(ctx context.Context, userA, userB string) (*entity.Room, *app_error.AppError)
	FindRoomByID(ctx context.Context, roomID int64) (*entity.Room, *app_error.AppError)

	// CreateGroup creates a named group room owned by ownerID and enrolls the
	// owner plus the given members in one transaction.
	CreateGroup(ctx context.Context, name, ownerID string, members []string) (*entity.GroupRoom, *app_error.AppError)
	FindGroupByID(ctx context.Context, groupID int64) (*entity.GroupRoom, *app_error.AppError)
	// TouchRoomActivity bumps last-message metadata for either a direct room
	// or (via the channel offset) a group room. Called from the worker, not
	// the send hot path.
	TouchRoomActivity(ctx context.Context, channelID int64, at time.Time) error
}
