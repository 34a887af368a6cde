package room_repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xenn00/campus-chat/internal/entity"
	app_error "github.com/xenn00/campus-chat/internal/errors"
	"gorm.io/gorm"
)

const createAttempts = 3

type RoomRepo struct {
	DB *gorm.DB
}

func NewRoomRepo(db *gorm.DB) RoomRepoContract {
	return &RoomRepo{DB: db}
}

// PairKey normalizes an unordered user pair into the unique lookup key, so
// (A,B) and (B,A) resolve to the same room row.
func PairKey(userA, userB string) string {
	if userA > userB {
		userA, userB = userB, userA
	}
	return userA + "|" + userB
}

func (r *RoomRepo) FindRoomID(ctx context.Context, userA, userB string) (int64, *app_error.AppError) {
	var room entity.Room
	err := r.DB.WithContext(ctx).Where("pair_key = ?", PairKey(userA, userB)).First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, app_error.Persistence("failed to query room directory")
	}
	return room.ID, nil
}

func (r *RoomRepo) FindOrCreateRoom(ctx context.Context, userA, userB string) (*entity.Room, *app_error.AppError) {
	pairKey := PairKey(userA, userB)

	find := func() (*entity.Room, error) {
		var room entity.Room
		if err := r.DB.WithContext(ctx).Where("pair_key = ?", pairKey).First(&room).Error; err != nil {
			return nil, err
		}
		return &room, nil
	}
	create := func() (*entity.Room, error) {
		return r.createRoom(ctx, pairKey, userA, userB)
	}

	return findOrCreate(pairKey, find, create)
}

// findOrCreate retries the find-then-create sequence on a unique violation:
// either the peer created the pair first (the re-find wins) or another pair
// grabbed the same free id (allocation retries). Anything else is a hard
// persistence failure.
func findOrCreate(pairKey string, find, create func() (*entity.Room, error)) (*entity.Room, *app_error.AppError) {
	for attempt := 0; attempt < createAttempts; attempt++ {
		room, err := find()
		if err == nil {
			return room, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, app_error.Persistence("failed to query room directory")
		}

		created, createErr := create()
		if createErr == nil {
			return created, nil
		}

		if isDuplicateErr(createErr) {
			log.Warn().Str("pairKey", pairKey).Int("attempt", attempt+1).Msg("room create race, retrying")
			continue
		}
		return nil, app_error.Persistence("failed to create room")
	}

	return nil, app_error.Persistence("failed to create room after retries")
}

func (r *RoomRepo) createRoom(ctx context.Context, pairKey, userA, userB string) (*entity.Room, error) {
	var room *entity.Room
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []int64
		if err := tx.Model(&entity.Room{}).Order("id").Pluck("id", &ids).Error; err != nil {
			return err
		}

		room = &entity.Room{
			ID:      nextFreeRoomID(ids),
			PairKey: pairKey,
			UserA:   userA,
			UserB:   userB,
		}
		return tx.Create(room).Error
	})
	if err != nil {
		return nil, err
	}

	log.Info().Int64("roomID", room.ID).Str("userA", userA).Str("userB", userB).Msg("room created")
	return room, nil
}

// nextFreeRoomID picks the smallest positive id not in use. ids must be
// sorted ascending; direct rooms never reach the group channel range.
func nextFreeRoomID(ids []int64) int64 {
	free := int64(1)
	for _, id := range ids {
		if id > free {
			break
		}
		if id == free {
			free++
		}
	}
	return free
}

func isDuplicateErr(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique")
}

func (r *RoomRepo) FindRoomByID(ctx context.Context, roomID int64) (*entity.Room, *app_error.AppError) {
	var room entity.Room
	if err := r.DB.WithContext(ctx).Where("id = ?", roomID).First(&room).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, app_error.NewAppError(404, "room not found", "not-found")
		}
		log.Error().Err(err).Int64("roomID", roomID).Msg("failed to fetch room")
		return nil, app_error.Persistence("failed to fetch room")
	}
	return &room, nil
}

func (r *RoomRepo) CreateGroup(ctx context.Context, name, ownerID string, members []string) (*entity.GroupRoom, *app_error.AppError) {
	group := &entity.GroupRoom{
		Name:    name,
		OwnerID: ownerID,
	}

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(group).Error; err != nil {
			return err
		}

		enrolled := map[string]struct{}{ownerID: {}}
		rows := []entity.GroupMember{{GroupID: group.ID, UserID: ownerID}}
		for _, member := range members {
			if _, ok := enrolled[member]; ok {
				continue
			}
			enrolled[member] = struct{}{}
			rows = append(rows, entity.GroupMember{GroupID: group.ID, UserID: member})
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		log.Error().Err(err).Str("name", name).Str("ownerID", ownerID).Msg("failed to create group room")
		return nil, app_error.Persistence("failed to create group")
	}

	log.Info().Int64("groupID", group.ID).Str("ownerID", ownerID).Int("members", len(members)+1).Msg("group room created")
	return group, nil
}

func (r *RoomRepo) FindGroupByID(ctx context.Context, groupID int64) (*entity.GroupRoom, *app_error.AppError) {
	var group entity.GroupRoom
	if err := r.DB.WithContext(ctx).Where("id = ?", groupID).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, app_error.NewAppError(404, "group not found", "not-found")
		}
		return nil, app_error.Persistence("failed to fetch group")
	}
	return &group, nil
}

func (r *RoomRepo) TouchRoomActivity(ctx context.Context, channelID int64, at time.Time) error {
	updates := map[string]any{
		"last_message_at": at,
		"message_count":   gorm.Expr("message_count + ?", 1),
	}

	if entity.IsGroupChannel(channelID) {
		return r.DB.WithContext(ctx).Model(&entity.GroupRoom{}).
			Where("id = ?", channelID-entity.GroupChannelOffset).
			Updates(updates).Error
	}

	return r.DB.WithContext(ctx).Model(&entity.Room{}).
		Where("id = ?", channelID).
		Updates(updates).Error
}
