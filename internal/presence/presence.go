package presence

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	app_error "github.com/xenn00/campus-chat/internal/errors"
	directory_repo "github.com/xenn00/campus-chat/internal/repo/directory"
)

// staleTTL is a safety net only: presence is cleared explicitly on
// disconnect, the TTL just keeps a crashed process from leaving users
// "online" forever.
const staleTTL = 24 * time.Hour

type Tracker struct {
	Redis     *redis.Client
	Directory directory_repo.DirectoryContract
}

func NewTracker(rdb *redis.Client, dir directory_repo.DirectoryContract) *Tracker {
	return &Tracker{Redis: rdb, Directory: dir}
}

func presenceKey(userID string) string {
	return fmt.Sprintf("presence:%s", userID)
}

// SetOnline is idempotent. An unknown user is an error the caller is
// expected to log and otherwise ignore; the connection event that triggered
// it is simply dropped.
func (t *Tracker) SetOnline(ctx context.Context, userID string, online bool) *app_error.AppError {
	if _, appErr := t.Directory.ResolveUser(ctx, userID); appErr != nil {
		return appErr
	}

	// Going offline keeps the hash around so room_id survives as a
	// reconnect hint; only the online flag flips.
	key := presenceKey(userID)
	if !online {
		if err := t.Redis.HSet(ctx, key, "online", "0").Err(); err != nil {
			return app_error.Persistence("failed to clear presence")
		}
		return nil
	}

	pipe := t.Redis.TxPipeline()
	pipe.HSet(ctx, key, "online", "1")
	pipe.Expire(ctx, key, staleTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return app_error.Persistence("failed to mark presence")
	}
	return nil
}

func (t *Tracker) IsOnline(ctx context.Context, userID string) (bool, *app_error.AppError) {
	val, err := t.Redis.HGet(ctx, presenceKey(userID), "online").Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, app_error.Persistence("failed to read presence")
	}
	return val == "1", nil
}

// AttachRoom records which room channel the user's live connection sits in,
// so a reconnect can pick the room back up.
func (t *Tracker) AttachRoom(ctx context.Context, userID string, channelID int64) {
	if err := t.Redis.HSet(ctx, presenceKey(userID), "room_id", channelID).Err(); err != nil {
		log.Warn().Err(err).Str("userID", userID).Msg("failed to record attached room")
	}
}

func (t *Tracker) DetachRoom(ctx context.Context, userID string) {
	if err := t.Redis.HDel(ctx, presenceKey(userID), "room_id").Err(); err != nil {
		log.Warn().Err(err).Str("userID", userID).Msg("failed to clear attached room")
	}
}

func (t *Tracker) AttachedRoom(ctx context.Context, userID string) (int64, bool) {
	val, err := t.Redis.HGet(ctx, presenceKey(userID), "room_id").Int64()
	if err != nil {
		return 0, false
	}
	return val, true
}
