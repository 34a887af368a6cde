package chat_service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/xenn00/campus-chat/internal/entity"
	app_error "github.com/xenn00/campus-chat/internal/errors"
	"github.com/xenn00/campus-chat/internal/queue"
	"github.com/xenn00/campus-chat/internal/websocket"
)

func asAppErr(v any) *app_error.AppError {
	if v == nil {
		return nil
	}
	return v.(*app_error.AppError)
}

type mockRoomRepo struct {
	mock.Mock
}

func (m *mockRoomRepo) FindRoomID(ctx context.Context, userA, userB string) (int64, *app_error.AppError) {
	args := m.Called(ctx, userA, userB)
	return args.Get(0).(int64), asAppErr(args.Get(1))
}

func (m *mockRoomRepo) FindOrCreateRoom(ctx context.Context, userA, userB string) (*entity.Room, *app_error.AppError) {
	args := m.Called(ctx, userA, userB)
	if args.Get(0) == nil {
		return nil, asAppErr(args.Get(1))
	}
	return args.Get(0).(*entity.Room), asAppErr(args.Get(1))
}

func (m *mockRoomRepo) FindRoomByID(ctx context.Context, roomID int64) (*entity.Room, *app_error.AppError) {
	args := m.Called(ctx, roomID)
	if args.Get(0) == nil {
		return nil, asAppErr(args.Get(1))
	}
	return args.Get(0).(*entity.Room), asAppErr(args.Get(1))
}

func (m *mockRoomRepo) CreateGroup(ctx context.Context, name, ownerID string, members []string) (*entity.GroupRoom, *app_error.AppError) {
	args := m.Called(ctx, name, ownerID, members)
	if args.Get(0) == nil {
		return nil, asAppErr(args.Get(1))
	}
	return args.Get(0).(*entity.GroupRoom), asAppErr(args.Get(1))
}

func (m *mockRoomRepo) FindGroupByID(ctx context.Context, groupID int64) (*entity.GroupRoom, *app_error.AppError) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, asAppErr(args.Get(1))
	}
	return args.Get(0).(*entity.GroupRoom), asAppErr(args.Get(1))
}

func (m *mockRoomRepo) TouchRoomActivity(ctx context.Context, channelID int64, at time.Time) error {
	args := m.Called(ctx, channelID, at)
	return args.Error(0)
}

type mockMessageRepo struct {
	mock.Mock
}

func (m *mockMessageRepo) Append(ctx context.Context, msg *entity.Message) (bson.ObjectID, *app_error.AppError) {
	args := m.Called(ctx, msg)
	return args.Get(0).(bson.ObjectID), asAppErr(args.Get(1))
}

func (m *mockMessageRepo) ListByRoom(ctx context.Context, channelID int64) ([]*entity.Message, *app_error.AppError) {
	args := m.Called(ctx, channelID)
	if args.Get(0) == nil {
		return nil, asAppErr(args.Get(1))
	}
	return args.Get(0).([]*entity.Message), asAppErr(args.Get(1))
}

type mockDirectory struct {
	mock.Mock
}

func (m *mockDirectory) ResolveUser(ctx context.Context, userID string) (*entity.User, *app_error.AppError) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, asAppErr(args.Get(1))
	}
	return args.Get(0).(*entity.User), asAppErr(args.Get(1))
}

func (m *mockDirectory) AreFriends(ctx context.Context, userA, userB string) (bool, *app_error.AppError) {
	args := m.Called(ctx, userA, userB)
	return args.Bool(0), asAppErr(args.Get(1))
}

func (m *mockDirectory) IsMuted(ctx context.Context, userID string) (bool, *app_error.AppError) {
	args := m.Called(ctx, userID)
	return args.Bool(0), asAppErr(args.Get(1))
}

func (m *mockDirectory) GroupMembers(ctx context.Context, groupID int64) ([]string, *app_error.AppError) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, asAppErr(args.Get(1))
	}
	return args.Get(0).([]string), asAppErr(args.Get(1))
}

func (m *mockDirectory) IsGroupMember(ctx context.Context, userID string, groupID int64) (bool, *app_error.AppError) {
	args := m.Called(ctx, userID, groupID)
	return args.Bool(0), asAppErr(args.Get(1))
}

func (m *mockDirectory) IsGroupOwner(ctx context.Context, userID string, groupID int64) (bool, *app_error.AppError) {
	args := m.Called(ctx, userID, groupID)
	return args.Bool(0), asAppErr(args.Get(1))
}

func (m *mockDirectory) AddGroupMember(ctx context.Context, groupID int64, userID string) *app_error.AppError {
	args := m.Called(ctx, groupID, userID)
	return asAppErr(args.Get(0))
}

func (m *mockDirectory) RemoveGroupMember(ctx context.Context, groupID int64, userID string) *app_error.AppError {
	args := m.Called(ctx, groupID, userID)
	return asAppErr(args.Get(0))
}

type mockProducer struct {
	mock.Mock
}

func (m *mockProducer) Enqueue(ctx context.Context, job queue.Job) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

type fakeClient struct {
	id     string
	userID string

	mu     sync.Mutex
	frames [][]byte
	closed bool
}

func newFakeClient(id, userID string) *fakeClient {
	return &fakeClient{id: id, userID: userID}
}

func (c *fakeClient) ConnID() string { return c.id }
func (c *fakeClient) UserID() string { return c.userID }

func (c *fakeClient) Send(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, data)
	return true
}

func (c *fakeClient) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

func (c *fakeClient) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *fakeClient) received() []websocket.OutgoingMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	var msgs []websocket.OutgoingMessage
	for _, frame := range c.frames {
		var msg websocket.OutgoingMessage
		if err := json.Unmarshal(frame, &msg); err == nil {
			msgs = append(msgs, msg)
		}
	}
	return msgs
}

func (c *fakeClient) lastOfType(eventType string) (websocket.OutgoingMessage, bool) {
	msgs := c.received()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Type == eventType {
			return msgs[i], true
		}
	}
	return websocket.OutgoingMessage{}, false
}
