package directory_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/xenn00/campus-chat/internal/entity"
	app_error "github.com/xenn00/campus-chat/internal/errors"
	"github.com/xenn00/campus-chat/internal/utils"
)

// userCacheTTL is short on purpose: mute flags and deactivations must take
// effect within a minute without an invalidation channel.
const userCacheTTL = time.Minute

// CachedDirectory fronts the directory with a Redis read-through cache for
// user lookups, which sit on the hot path of every join and send.
type CachedDirectory struct {
	Inner DirectoryContract
	Redis *redis.Client
}

func NewCachedDirectory(inner DirectoryContract, rdb *redis.Client) DirectoryContract {
	return &CachedDirectory{Inner: inner, Redis: rdb}
}

func userCacheKey(userID string) string {
	return fmt.Sprintf("directory:user:%s", userID)
}

func (c *CachedDirectory) ResolveUser(ctx context.Context, userID string) (*entity.User, *app_error.AppError) {
	cached, appErr := utils.GetCacheData[entity.User](ctx, c.Redis, userCacheKey(userID))
	if appErr == nil && cached != nil {
		return cached, nil
	}

	user, appErr := c.Inner.ResolveUser(ctx, userID)
	if appErr != nil {
		return nil, appErr
	}

	if err := utils.SetCacheData(ctx, c.Redis, userCacheKey(userID), user, userCacheTTL); err != nil {
		log.Warn().Err(err).Str("userID", userID).Msg("failed to cache user lookup")
	}
	return user, nil
}

func (c *CachedDirectory) IsMuted(ctx context.Context, userID string) (bool, *app_error.AppError) {
	user, appErr := c.ResolveUser(ctx, userID)
	if appErr != nil {
		return false, appErr
	}
	return user.IsMuted, nil
}

func (c *CachedDirectory) AreFriends(ctx context.Context, userA, userB string) (bool, *app_error.AppError) {
	return c.Inner.AreFriends(ctx, userA, userB)
}

func (c *CachedDirectory) GroupMembers(ctx context.Context, groupID int64) ([]string, *app_error.AppError) {
	return c.Inner.GroupMembers(ctx, groupID)
}

func (c *CachedDirectory) IsGroupMember(ctx context.Context, userID string, groupID int64) (bool, *app_error.AppError) {
	return c.Inner.IsGroupMember(ctx, userID, groupID)
}

func (c *CachedDirectory) IsGroupOwner(ctx context.Context, userID string, groupID int64) (bool, *app_error.AppError) {
	return c.Inner.IsGroupOwner(ctx, userID, groupID)
}

func (c *CachedDirectory) AddGroupMember(ctx context.Context, groupID int64, userID string) *app_error.AppError {
	return c.Inner.AddGroupMember(ctx, groupID, userID)
}

func (c *CachedDirectory) RemoveGroupMember(ctx context.Context, groupID int64, userID string) *app_error.AppError {
	return c.Inner.RemoveGroupMember(ctx, groupID, userID)
}
