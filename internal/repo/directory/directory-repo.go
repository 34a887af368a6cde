package directory_repo

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/xenn00/campus-chat/internal/entity"
	app_error "github.com/xenn00/campus-chat/internal/errors"
	"gorm.io/gorm"
)

type DirectoryRepo struct {
	DB *gorm.DB
}

func NewDirectoryRepo(db *gorm.DB) DirectoryContract {
	return &DirectoryRepo{DB: db}
}

func (r *DirectoryRepo) ResolveUser(ctx context.Context, userID string) (*entity.User, *app_error.AppError) {
	var user entity.User
	if err := r.DB.WithContext(ctx).Where("id = ? AND is_active", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, app_error.UnknownUser(userID)
		}
		log.Error().Err(err).Str("userID", userID).Msg("failed to resolve user")
		return nil, app_error.Persistence("failed to resolve user")
	}
	return &user, nil
}

func (r *DirectoryRepo) AreFriends(ctx context.Context, userA, userB string) (bool, *app_error.AppError) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&entity.Friendship{}).
		Where("(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)",
			userA, userB, userB, userA).
		Count(&count).Error
	if err != nil {
		return false, app_error.Persistence("failed to query friendship")
	}
	return count > 0, nil
}

func (r *DirectoryRepo) IsMuted(ctx context.Context, userID string) (bool, *app_error.AppError) {
	user, appErr := r.ResolveUser(ctx, userID)
	if appErr != nil {
		return false, appErr
	}
	return user.IsMuted, nil
}

func (r *DirectoryRepo) GroupMembers(ctx context.Context, groupID int64) ([]string, *app_error.AppError) {
	var members []string
	err := r.DB.WithContext(ctx).Model(&entity.GroupMember{}).
		Where("group_id = ?", groupID).
		Pluck("user_id", &members).Error
	if err != nil {
		return nil, app_error.Persistence("failed to fetch group members")
	}
	return members, nil
}

func (r *DirectoryRepo) IsGroupMember(ctx context.Context, userID string, groupID int64) (bool, *app_error.AppError) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&entity.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	if err != nil {
		return false, app_error.Persistence("failed to query group membership")
	}
	return count > 0, nil
}

func (r *DirectoryRepo) IsGroupOwner(ctx context.Context, userID string, groupID int64) (bool, *app_error.AppError) {
	var group entity.GroupRoom
	if err := r.DB.WithContext(ctx).Where("id = ?", groupID).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, app_error.NewAppError(http.StatusNotFound, "group not found", "not-found")
		}
		return false, app_error.Persistence("failed to fetch group")
	}
	return group.OwnerID == userID, nil
}

func (r *DirectoryRepo) AddGroupMember(ctx context.Context, groupID int64, userID string) *app_error.AppError {
	member := entity.GroupMember{GroupID: groupID, UserID: userID}
	if err := r.DB.WithContext(ctx).Create(&member).Error; err != nil {
		// Re-adding an existing member is benign.
		if isDuplicateErr(err) {
			return nil
		}
		return app_error.Persistence("failed to add group member")
	}
	return nil
}

func (r *DirectoryRepo) RemoveGroupMember(ctx context.Context, groupID int64, userID string) *app_error.AppError {
	err := r.DB.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&entity.GroupMember{}).Error
	if err != nil {
		return app_error.Persistence("failed to remove group member")
	}
	return nil
}

func isDuplicateErr(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique")
}
