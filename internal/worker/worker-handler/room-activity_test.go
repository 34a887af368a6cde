package worker_handler

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenn00/campus-chat/internal/entity"
	app_error "github.com/xenn00/campus-chat/internal/errors"
	"github.com/xenn00/campus-chat/internal/utils/types"
)

type stubRoomRepo struct {
	touchedChannel int64
	touchedAt      time.Time
	touchErr       error
}

func (s *stubRoomRepo) FindRoomID(ctx context.Context, userA, userB string) (int64, *app_error.AppError) {
	return 0, nil
}

func (s *stubRoomRepo) FindOrCreateRoom(ctx context.Context, userA, userB string) (*entity.Room, *app_error.AppError) {
	return nil, nil
}

func (s *stubRoomRepo) FindRoomByID(ctx context.Context, roomID int64) (*entity.Room, *app_error.AppError) {
	return nil, nil
}

func (s *stubRoomRepo) CreateGroup(ctx context.Context, name, ownerID string, members []string) (*entity.GroupRoom, *app_error.AppError) {
	return nil, nil
}

func (s *stubRoomRepo) FindGroupByID(ctx context.Context, groupID int64) (*entity.GroupRoom, *app_error.AppError) {
	return nil, nil
}

func (s *stubRoomRepo) TouchRoomActivity(ctx context.Context, channelID int64, at time.Time) error {
	s.touchedChannel = channelID
	s.touchedAt = at
	return s.touchErr
}

func TestHandleRoomActivity(t *testing.T) {
	repo := &stubRoomRepo{}
	handler := NewWorkerHandler(repo)

	at := time.Now().UTC().Truncate(time.Millisecond)
	payload, err := json.Marshal(types.RoomActivityPayload{ChannelID: 7, At: at})
	require.NoError(t, err)

	require.NoError(t, handler.HandleRoomActivity(context.Background(), payload))
	assert.Equal(t, int64(7), repo.touchedChannel)
	assert.True(t, repo.touchedAt.Equal(at))
}

func TestHandleRoomActivityInvalidPayload(t *testing.T) {
	handler := NewWorkerHandler(&stubRoomRepo{})

	err := handler.HandleRoomActivity(context.Background(), []byte("not-json"))
	assert.Error(t, err)
}

func TestHandleRoomActivityPropagatesRepoError(t *testing.T) {
	repo := &stubRoomRepo{touchErr: errors.New("db down")}
	handler := NewWorkerHandler(repo)

	payload, err := json.Marshal(types.RoomActivityPayload{ChannelID: 1, At: time.Now()})
	require.NoError(t, err)

	err = handler.HandleRoomActivity(context.Background(), payload)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}
