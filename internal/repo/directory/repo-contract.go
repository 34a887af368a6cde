package directory_repo

import (
	"context"

	"github.com/xenn00/campus-chat/internal/entity"
	app_error "github.com/xenn00/campus-chat/internal/errors"
)

// DirectoryContract is the identity & social-graph boundary. Accounts,
// friend requests and role management happen elsewhere; the chat core only
// reads this data to gate joins and sends.
type DirectoryContract interface {
	ResolveUser(ctx context.Context, userID string) (*entity.User, *app_error.AppError)
	AreFriends(ctx context.Context, userA, userB string) (bool, *app_error.AppError)
	IsMuted(ctx context.Context, userID string) (bool, *app_error.AppError)

	GroupMembers(ctx context.Context, groupID int64) ([]string, *app_error.AppError)
	IsGroupMember(ctx context.Context, userID string, groupID int64) (bool, *app_error.AppError)
	IsGroupOwner(ctx context.Context, userID string, groupID int64) (bool, *app_error.AppError)
	AddGroupMember(ctx context.Context, groupID int64, userID string) *app_error.AppError
	RemoveGroupMember(ctx context.Context, groupID int64, userID string) *app_error.AppError
}
