package chat_service

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/xenn00/campus-chat/internal/dtos/chat_dto"
	"github.com/xenn00/campus-chat/internal/entity"
	app_error "github.com/xenn00/campus-chat/internal/errors"
	"github.com/xenn00/campus-chat/internal/presence"
	"github.com/xenn00/campus-chat/internal/registry"
	"github.com/xenn00/campus-chat/internal/websocket"
)

type fixture struct {
	svc      ChatOrchestratorContract
	hub      *websocket.Hub
	registry *registry.RoomRegistry
	rooms    *mockRoomRepo
	msgs     *mockMessageRepo
	dir      *mockDirectory
	producer *mockProducer
	tracker  *presence.Tracker
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	rooms := new(mockRoomRepo)
	msgs := new(mockMessageRepo)
	dir := new(mockDirectory)
	producer := new(mockProducer)

	tracker := presence.NewTracker(rdb, dir)
	reg := registry.NewRoomRegistry()
	hub := websocket.NewHub()

	return &fixture{
		svc:      NewChatService(reg, tracker, hub, rooms, msgs, dir, producer),
		hub:      hub,
		registry: reg,
		rooms:    rooms,
		msgs:     msgs,
		dir:      dir,
		producer: producer,
		tracker:  tracker,
	}
}

func (f *fixture) knownUser(userID string) {
	f.dir.On("ResolveUser", mock.Anything, userID).Return(&entity.User{ID: userID, IsActive: true}, nil)
}

func TestJoinAllocatesRoomAndNotifies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.knownUser("alice")
	f.knownUser("bob")
	f.dir.On("AreFriends", mock.Anything, "alice", "bob").Return(true, nil)
	f.rooms.On("FindOrCreateRoom", mock.Anything, "alice", "bob").Return(&entity.Room{ID: 1, UserA: "alice", UserB: "bob"}, nil)

	alice := newFakeClient("c1", "alice")
	require.Nil(t, f.svc.Join(ctx, alice, "bob"))

	roomID, ok := f.registry.RoomID("alice")
	require.True(t, ok)
	assert.Equal(t, int64(1), roomID)

	joined, ok := alice.lastOfType(websocket.EventRoomJoined)
	require.True(t, ok)
	assert.Equal(t, int64(1), joined.RoomID)

	// The join notice goes to the other occupants, not the joiner.
	_, ok = alice.lastOfType(websocket.EventSystem)
	assert.False(t, ok)
}

func TestJoinSymmetricPairSharesRoom(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.knownUser("alice")
	f.knownUser("bob")
	f.dir.On("AreFriends", mock.Anything, "alice", "bob").Return(true, nil)
	f.dir.On("AreFriends", mock.Anything, "bob", "alice").Return(true, nil)
	room := &entity.Room{ID: 1, UserA: "alice", UserB: "bob"}
	f.rooms.On("FindOrCreateRoom", mock.Anything, "alice", "bob").Return(room, nil)
	f.rooms.On("FindOrCreateRoom", mock.Anything, "bob", "alice").Return(room, nil)

	alice := newFakeClient("c1", "alice")
	bob := newFakeClient("c2", "bob")
	require.Nil(t, f.svc.Join(ctx, alice, "bob"))
	require.Nil(t, f.svc.Join(ctx, bob, "alice"))

	aliceRoom, _ := f.registry.RoomID("alice")
	bobRoom, _ := f.registry.RoomID("bob")
	assert.Equal(t, aliceRoom, bobRoom)
	assert.Len(t, f.registry.UsersInRoom(1), 2)

	notice, ok := alice.lastOfType(websocket.EventSystem)
	require.True(t, ok)
	assert.Contains(t, notice.Content, "bob has joined the room")
	assert.Equal(t, websocket.ColorGreen, notice.Color)
}

func TestJoinRejectsNonFriend(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.knownUser("alice")
	f.knownUser("mallory")
	f.dir.On("AreFriends", mock.Anything, "alice", "mallory").Return(false, nil)

	alice := newFakeClient("c1", "alice")
	appErr := f.svc.Join(ctx, alice, "mallory")

	require.NotNil(t, appErr)
	assert.Equal(t, app_error.KindAccessDenied, appErr.Field)

	// No room is allocated for a rejected join.
	f.rooms.AssertNotCalled(t, "FindOrCreateRoom", mock.Anything, mock.Anything, mock.Anything)
	_, ok := f.registry.RoomID("alice")
	assert.False(t, ok)
}

func TestJoinRejectsUnknownPeer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.knownUser("alice")
	f.dir.On("ResolveUser", mock.Anything, "ghost").Return(nil, app_error.UnknownUser("ghost"))

	alice := newFakeClient("c1", "alice")
	appErr := f.svc.Join(ctx, alice, "ghost")

	require.NotNil(t, appErr)
	assert.Equal(t, app_error.KindUnknownPeer, appErr.Field)
}

func TestSendRequiresRoom(t *testing.T) {
	f := newFixture(t)

	alice := newFakeClient("c1", "alice")
	appErr := f.svc.Send(context.Background(), alice, "hi")

	require.NotNil(t, appErr)
	assert.Equal(t, app_error.KindAccessDenied, appErr.Field)
}

func TestSendRequiresSecondParticipant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.knownUser("alice")
	f.knownUser("bob")
	f.dir.On("AreFriends", mock.Anything, "alice", "bob").Return(true, nil)
	f.dir.On("IsMuted", mock.Anything, "alice").Return(false, nil)
	f.rooms.On("FindOrCreateRoom", mock.Anything, "alice", "bob").Return(&entity.Room{ID: 1}, nil)

	alice := newFakeClient("c1", "alice")
	require.Nil(t, f.svc.Join(ctx, alice, "bob"))

	appErr := f.svc.Send(ctx, alice, "hello?")
	require.NotNil(t, appErr)
	assert.Equal(t, app_error.KindAccessDenied, appErr.Field)
	f.msgs.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestSendAppendsAndBroadcasts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.knownUser("alice")
	f.knownUser("bob")
	f.dir.On("AreFriends", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
	f.dir.On("IsMuted", mock.Anything, "alice").Return(false, nil)
	room := &entity.Room{ID: 1, UserA: "alice", UserB: "bob"}
	f.rooms.On("FindOrCreateRoom", mock.Anything, mock.Anything, mock.Anything).Return(room, nil)
	f.msgs.On("Append", mock.Anything, mock.Anything).Return(bson.NewObjectID(), nil)
	f.producer.On("Enqueue", mock.Anything, mock.Anything).Return(nil)

	alice := newFakeClient("c1", "alice")
	bob := newFakeClient("c2", "bob")
	require.Nil(t, f.svc.Join(ctx, alice, "bob"))
	require.Nil(t, f.svc.Join(ctx, bob, "alice"))

	require.Nil(t, f.svc.Send(ctx, alice, "hi"))

	chat, ok := bob.lastOfType(websocket.EventChat)
	require.True(t, ok)
	assert.Equal(t, "alice", chat.SenderID)
	assert.Equal(t, "hi", chat.Content)
	assert.Equal(t, int64(1), chat.RoomID)

	// Sender sees their own message too.
	_, ok = alice.lastOfType(websocket.EventChat)
	assert.True(t, ok)

	f.msgs.AssertCalled(t, "Append", mock.Anything, mock.MatchedBy(func(msg *entity.Message) bool {
		return msg.RoomID == 1 && msg.SenderID == "alice" && msg.Content == "hi"
	}))
	f.producer.AssertCalled(t, "Enqueue", mock.Anything, mock.Anything)
}

func TestSendMutedRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.knownUser("alice")
	f.knownUser("bob")
	f.dir.On("AreFriends", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
	f.dir.On("IsMuted", mock.Anything, "alice").Return(true, nil)
	f.rooms.On("FindOrCreateRoom", mock.Anything, mock.Anything, mock.Anything).Return(&entity.Room{ID: 1}, nil)

	alice := newFakeClient("c1", "alice")
	require.Nil(t, f.svc.Join(ctx, alice, "bob"))

	appErr := f.svc.Send(ctx, alice, "hi")
	require.NotNil(t, appErr)
	assert.Equal(t, app_error.KindMuted, appErr.Field)
	f.msgs.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestHistoryReplaysInsertionOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.knownUser("alice")
	f.knownUser("bob")
	f.dir.On("AreFriends", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
	f.rooms.On("FindOrCreateRoom", mock.Anything, mock.Anything, mock.Anything).Return(&entity.Room{ID: 1}, nil)
	f.msgs.On("ListByRoom", mock.Anything, int64(1)).Return([]*entity.Message{
		{RoomID: 1, SenderID: "alice", Content: "hi"},
		{RoomID: 1, SenderID: "bob", Content: "yo"},
	}, nil)

	alice := newFakeClient("c1", "alice")
	bob := newFakeClient("c2", "bob")
	require.Nil(t, f.svc.Join(ctx, alice, "bob"))
	require.Nil(t, f.svc.Join(ctx, bob, "alice"))

	require.Nil(t, f.svc.History(ctx, bob))

	history, ok := bob.lastOfType(websocket.EventHistory)
	require.True(t, ok)
	require.Len(t, history.Messages, 2)
	assert.Equal(t, websocket.HistoryEntry{Sender: "alice", Content: "hi"}, history.Messages[0])
	assert.Equal(t, websocket.HistoryEntry{Sender: "bob", Content: "yo"}, history.Messages[1])

	// History goes to the requester only.
	_, ok = alice.lastOfType(websocket.EventHistory)
	assert.False(t, ok)
}

func TestLeaveDetachesAndNotifiesRoom(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.knownUser("alice")
	f.knownUser("bob")
	f.dir.On("AreFriends", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
	f.rooms.On("FindOrCreateRoom", mock.Anything, mock.Anything, mock.Anything).Return(&entity.Room{ID: 1}, nil)

	alice := newFakeClient("c1", "alice")
	bob := newFakeClient("c2", "bob")
	require.Nil(t, f.svc.Join(ctx, alice, "bob"))
	require.Nil(t, f.svc.Join(ctx, bob, "alice"))

	require.Nil(t, f.svc.Leave(ctx, alice))

	_, ok := f.registry.RoomID("alice")
	assert.False(t, ok)

	notice, ok := bob.lastOfType(websocket.EventSystem)
	require.True(t, ok)
	assert.Contains(t, notice.Content, "alice has left the room")
	assert.Equal(t, websocket.ColorRed, notice.Color)
}

func TestDisconnectKeepsRoomHintForReconnect(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.knownUser("alice")
	f.knownUser("bob")
	f.dir.On("AreFriends", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
	f.rooms.On("FindOrCreateRoom", mock.Anything, mock.Anything, mock.Anything).Return(&entity.Room{ID: 1}, nil)

	alice := newFakeClient("c1", "alice")
	require.Nil(t, f.svc.Join(ctx, alice, "bob"))

	f.svc.Disconnect(ctx, alice)

	online, appErr := f.tracker.IsOnline(ctx, "alice")
	require.Nil(t, appErr)
	assert.False(t, online)
	_, ok := f.registry.RoomID("alice")
	assert.False(t, ok)
}

func TestConnectWithValidHintReattaches(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.knownUser("alice")
	f.rooms.On("FindRoomByID", mock.Anything, int64(1)).Return(&entity.Room{ID: 1, UserA: "alice", UserB: "bob"}, nil)

	alice := newFakeClient("c1", "alice")
	f.svc.Connect(ctx, alice, 1)

	roomID, ok := f.registry.RoomID("alice")
	require.True(t, ok)
	assert.Equal(t, int64(1), roomID)

	joined, ok := alice.lastOfType(websocket.EventRoomJoined)
	require.True(t, ok)
	assert.Equal(t, int64(1), joined.RoomID)
}

func TestConnectWithForeignHintIgnored(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.knownUser("mallory")
	f.rooms.On("FindRoomByID", mock.Anything, int64(1)).Return(&entity.Room{ID: 1, UserA: "alice", UserB: "bob"}, nil)

	mallory := newFakeClient("c1", "mallory")
	f.svc.Connect(ctx, mallory, 1)

	_, ok := f.registry.RoomID("mallory")
	assert.False(t, ok)
}

func TestConnectUnknownUserKeepsConnectionOpen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.dir.On("ResolveUser", mock.Anything, "ghost").Return(nil, app_error.UnknownUser("ghost"))

	ghost := newFakeClient("c1", "ghost")
	f.svc.Connect(ctx, ghost, 1)

	// The failed presence update is reported and dropped; the socket is
	// not torn down and no room work happens.
	assert.False(t, ghost.isClosed())
	errMsg, ok := ghost.lastOfType(websocket.EventError)
	require.True(t, ok)
	assert.Equal(t, app_error.KindUnknownUser, errMsg.Data["kind"])

	_, ok = f.registry.RoomID("ghost")
	assert.False(t, ok)
	f.rooms.AssertNotCalled(t, "FindRoomByID", mock.Anything, mock.Anything)
}

func TestGroupSendRequiresJoin(t *testing.T) {
	f := newFixture(t)

	alice := newFakeClient("c1", "alice")
	appErr := f.svc.SendGroup(context.Background(), alice, 1, "hi all")

	require.NotNil(t, appErr)
	assert.Equal(t, app_error.KindAccessDenied, appErr.Field)
}

func TestGroupJoinAndSend(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.knownUser("alice")
	f.rooms.On("FindGroupByID", mock.Anything, int64(1)).Return(&entity.GroupRoom{ID: 1, Name: "study", OwnerID: "alice"}, nil)
	f.dir.On("IsGroupMember", mock.Anything, "alice", int64(1)).Return(true, nil)
	f.dir.On("IsMuted", mock.Anything, "alice").Return(false, nil)
	f.msgs.On("Append", mock.Anything, mock.Anything).Return(bson.NewObjectID(), nil)
	f.producer.On("Enqueue", mock.Anything, mock.Anything).Return(nil)

	alice := newFakeClient("c1", "alice")
	require.Nil(t, f.svc.JoinGroup(ctx, alice, 1))

	channelID := entity.GroupChannelID(1)
	roomID, ok := f.registry.RoomID("alice")
	require.True(t, ok)
	assert.Equal(t, channelID, roomID)

	require.Nil(t, f.svc.SendGroup(ctx, alice, 1, "hi all"))
	f.msgs.AssertCalled(t, "Append", mock.Anything, mock.MatchedBy(func(msg *entity.Message) bool {
		return msg.RoomID == channelID && msg.Content == "hi all"
	}))
}

func TestGroupJoinRejectsNonMember(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.knownUser("mallory")
	f.rooms.On("FindGroupByID", mock.Anything, int64(1)).Return(&entity.GroupRoom{ID: 1}, nil)
	f.dir.On("IsGroupMember", mock.Anything, "mallory", int64(1)).Return(false, nil)

	mallory := newFakeClient("c1", "mallory")
	appErr := f.svc.JoinGroup(ctx, mallory, 1)

	require.NotNil(t, appErr)
	assert.Equal(t, app_error.KindAccessDenied, appErr.Field)
}

func TestRemoveGroupMemberEvictsAttachedUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.knownUser("alice")
	f.knownUser("bob")
	f.rooms.On("FindGroupByID", mock.Anything, int64(1)).Return(&entity.GroupRoom{ID: 1, OwnerID: "alice"}, nil)
	f.dir.On("IsGroupMember", mock.Anything, "bob", int64(1)).Return(true, nil)
	f.dir.On("IsGroupOwner", mock.Anything, "alice", int64(1)).Return(true, nil)
	f.dir.On("RemoveGroupMember", mock.Anything, int64(1), "bob").Return(nil)

	bob := newFakeClient("c1", "bob")
	require.Nil(t, f.svc.JoinGroup(ctx, bob, 1))

	require.Nil(t, f.svc.RemoveGroupMember(ctx, 1, "alice", "bob"))

	_, ok := f.registry.RoomID("bob")
	assert.False(t, ok)
	assert.False(t, f.hub.IsUserInRoom(entity.GroupChannelID(1), "bob"))
}

func TestAddGroupMemberRequiresOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.dir.On("IsGroupOwner", mock.Anything, "bob", int64(1)).Return(false, nil)

	appErr := f.svc.AddGroupMember(ctx, 1, "bob", "carol")
	require.NotNil(t, appErr)
	assert.Equal(t, app_error.KindAccessDenied, appErr.Field)
	f.dir.AssertNotCalled(t, "AddGroupMember", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateGroupResolvesAllMembers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.knownUser("alice")
	f.dir.On("ResolveUser", mock.Anything, "ghost").Return(nil, app_error.UnknownUser("ghost"))

	_, appErr := f.svc.CreateGroup(ctx, chat_dto.CreateGroupRequest{
		Name:    "study",
		OwnerID: "alice",
		Members: []string{"ghost"},
	})

	require.NotNil(t, appErr)
	assert.Equal(t, app_error.KindUnknownPeer, appErr.Field)
	f.rooms.AssertNotCalled(t, "CreateGroup", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHistoryByRoomMapsEntries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.rooms.On("FindRoomByID", mock.Anything, int64(7)).Return(&entity.Room{ID: 7, UserA: "alice", UserB: "bob"}, nil)
	f.msgs.On("ListByRoom", mock.Anything, int64(7)).Return([]*entity.Message{
		{RoomID: 7, SenderID: "alice", Content: "hi"},
	}, nil)

	resp, appErr := f.svc.HistoryByRoom(ctx, "alice", 7)
	require.Nil(t, appErr)
	assert.Equal(t, int64(7), resp.RoomID)
	require.Len(t, resp.Messages, 1)
	assert.Equal(t, "alice", resp.Messages[0].Sender)
	assert.Equal(t, "hi", resp.Messages[0].Content)
}

func TestHistoryByRoomRejectsNonParticipant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.rooms.On("FindRoomByID", mock.Anything, int64(7)).Return(&entity.Room{ID: 7, UserA: "alice", UserB: "bob"}, nil)

	_, appErr := f.svc.HistoryByRoom(ctx, "mallory", 7)
	require.NotNil(t, appErr)
	assert.Equal(t, app_error.KindAccessDenied, appErr.Field)
	f.msgs.AssertNotCalled(t, "ListByRoom", mock.Anything, mock.Anything)
}

func TestHistoryByRoomAllowsGroupMember(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	channelID := entity.GroupChannelID(3)
	f.dir.On("IsGroupMember", mock.Anything, "carol", int64(3)).Return(true, nil)
	f.msgs.On("ListByRoom", mock.Anything, channelID).Return([]*entity.Message{}, nil)

	resp, appErr := f.svc.HistoryByRoom(ctx, "carol", channelID)
	require.Nil(t, appErr)
	assert.Equal(t, channelID, resp.RoomID)
}
