package chat_service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/xenn00/campus-chat/internal/dtos/chat_dto"
	"github.com/xenn00/campus-chat/internal/entity"
	app_error "github.com/xenn00/campus-chat/internal/errors"
	"github.com/xenn00/campus-chat/internal/presence"
	"github.com/xenn00/campus-chat/internal/queue"
	"github.com/xenn00/campus-chat/internal/registry"
	directory_repo "github.com/xenn00/campus-chat/internal/repo/directory"
	message_repo "github.com/xenn00/campus-chat/internal/repo/message"
	room_repo "github.com/xenn00/campus-chat/internal/repo/room"
	"github.com/xenn00/campus-chat/internal/utils/types"
	"github.com/xenn00/campus-chat/internal/websocket"
)

const activityJobTTL = 5 * time.Minute

type ChatService struct {
	Registry  *registry.RoomRegistry
	Presence  *presence.Tracker
	Hub       *websocket.Hub
	RoomRepo  room_repo.RoomRepoContract
	MsgRepo   message_repo.MessageRepoContract
	Directory directory_repo.DirectoryContract
	Producer  queue.Producer

	// Keyed locks: pair locks serialize room allocation per user pair, room
	// locks serialize append+broadcast (and history snapshots) per channel.
	mu     sync.Mutex
	pairMu map[string]*sync.Mutex
	roomMu map[int64]*sync.Mutex
}

func NewChatService(
	reg *registry.RoomRegistry,
	pres *presence.Tracker,
	hub *websocket.Hub,
	rooms room_repo.RoomRepoContract,
	msgs message_repo.MessageRepoContract,
	dir directory_repo.DirectoryContract,
	producer queue.Producer,
) ChatOrchestratorContract {
	return &ChatService{
		Registry:  reg,
		Presence:  pres,
		Hub:       hub,
		RoomRepo:  rooms,
		MsgRepo:   msgs,
		Directory: dir,
		Producer:  producer,
		pairMu:    make(map[string]*sync.Mutex),
		roomMu:    make(map[int64]*sync.Mutex),
	}
}

// Connect marks the user online and, when the client carries a last-known
// room id, re-attaches it after re-checking membership.
func (c *ChatService) Connect(ctx context.Context, client websocket.Client, roomIDHint int64) {
	userID := client.UserID()

	// Presence failures are non-fatal: the event is reported and dropped,
	// the connection stays up so the client can retry.
	if appErr := c.Presence.SetOnline(ctx, userID, true); appErr != nil {
		log.Warn().Str("userID", userID).Str("reason", appErr.Message).Msg("chat: presence update failed on connect")
		c.Hub.SendTo(client, websocket.NewErrorMessage(appErr.Message, appErr.Field, appErr.Retryable()))
		return
	}

	if roomIDHint == 0 {
		return
	}

	ok, appErr := c.mayAttach(ctx, userID, roomIDHint)
	if appErr != nil || !ok {
		log.Info().Str("userID", userID).Int64("roomID", roomIDHint).Msg("chat: stale room hint ignored")
		c.Presence.DetachRoom(ctx, userID)
		return
	}

	c.attach(ctx, client, roomIDHint)
	c.Hub.SendTo(client, websocket.NewRoomJoinedMessage(roomIDHint, "Reconnected to your room."))
	c.Hub.Broadcast(roomIDHint, websocket.NewSystemMessage(
		roomIDHint,
		fmt.Sprintf("%s has reconnected.", userID),
		websocket.ColorGreen,
	), client)
}

func (c *ChatService) Disconnect(ctx context.Context, client websocket.Client) {
	userID := client.UserID()
	c.detach(ctx, client, fmt.Sprintf("%s has disconnected.", userID))

	if appErr := c.Presence.SetOnline(ctx, userID, false); appErr != nil {
		log.Warn().Str("userID", userID).Str("reason", appErr.Message).Msg("chat: failed to mark offline")
	}
}

// Join resolves (or allocates) the direct room for the sender/peer pair and
// attaches the sender to it. Concurrent joins of the same pair converge on
// one room.
func (c *ChatService) Join(ctx context.Context, client websocket.Client, peerID string) *app_error.AppError {
	userID := client.UserID()

	sender, appErr := c.Directory.ResolveUser(ctx, userID)
	if appErr != nil {
		return appErr
	}
	if sender.IsMuted {
		return app_error.Muted()
	}
	if _, appErr := c.Directory.ResolveUser(ctx, peerID); appErr != nil {
		return app_error.UnknownPeer(peerID)
	}

	friends, appErr := c.Directory.AreFriends(ctx, userID, peerID)
	if appErr != nil {
		return appErr
	}
	if !friends {
		return app_error.AccessDenied(fmt.Sprintf("%s is not your friend", peerID))
	}

	pairLock := c.pairLock(room_repo.PairKey(userID, peerID))
	pairLock.Lock()
	room, appErr := c.RoomRepo.FindOrCreateRoom(ctx, userID, peerID)
	pairLock.Unlock()
	if appErr != nil {
		return appErr
	}

	c.detach(ctx, client, leftRoomNotice(userID))
	c.attach(ctx, client, room.ID)

	c.Hub.SendTo(client, websocket.NewRoomJoinedMessage(room.ID, fmt.Sprintf("Joined room %d.", room.ID)))
	c.Hub.Broadcast(room.ID, websocket.NewSystemMessage(
		room.ID,
		fmt.Sprintf("%s has joined the room. Now talking to %s.", userID, peerID),
		websocket.ColorGreen,
	), client)

	return nil
}

// Send appends one message to the sender's current room and fans it out.
// Append and broadcast happen under the room lock, so the durable order and
// the delivered order agree.
func (c *ChatService) Send(ctx context.Context, client websocket.Client, content string) *app_error.AppError {
	userID := client.UserID()

	roomID, ok := c.Registry.RoomID(userID)
	if ok && entity.IsGroupChannel(roomID) {
		return app_error.AccessDenied("use a group send for group rooms")
	}
	if !ok {
		return app_error.AccessDenied("join a room before sending")
	}

	if appErr := c.sendGates(ctx, userID); appErr != nil {
		return appErr
	}
	if len(c.Registry.UsersInRoom(roomID)) < 2 {
		return app_error.AccessDenied("no one else is in the room yet")
	}

	return c.deliver(ctx, roomID, userID, content)
}

// History replays the full room log to the requesting connection only. The
// snapshot is taken under the room lock so it never interleaves with a send.
func (c *ChatService) History(ctx context.Context, client websocket.Client) *app_error.AppError {
	roomID, ok := c.Registry.RoomID(client.UserID())
	if !ok {
		return app_error.AccessDenied("join a room before requesting history")
	}
	return c.replay(ctx, client, roomID)
}

func (c *ChatService) Leave(ctx context.Context, client websocket.Client) *app_error.AppError {
	c.detach(ctx, client, leftRoomNotice(client.UserID()))
	return nil
}

func (c *ChatService) JoinGroup(ctx context.Context, client websocket.Client, groupID int64) *app_error.AppError {
	userID := client.UserID()

	if _, appErr := c.Directory.ResolveUser(ctx, userID); appErr != nil {
		return appErr
	}
	if _, appErr := c.RoomRepo.FindGroupByID(ctx, groupID); appErr != nil {
		return appErr
	}

	member, appErr := c.Directory.IsGroupMember(ctx, userID, groupID)
	if appErr != nil {
		return appErr
	}
	if !member {
		return app_error.AccessDenied("you are not a member of this group")
	}

	channelID := entity.GroupChannelID(groupID)
	c.detach(ctx, client, leftRoomNotice(userID))
	c.attach(ctx, client, channelID)

	c.Hub.SendTo(client, websocket.NewRoomJoinedMessage(channelID, fmt.Sprintf("Joined group %d.", groupID)))
	c.Hub.Broadcast(channelID, websocket.NewSystemMessage(
		channelID,
		fmt.Sprintf("%s has joined the group.", userID),
		websocket.ColorGreen,
	), client)

	return nil
}

func (c *ChatService) SendGroup(ctx context.Context, client websocket.Client, groupID int64, content string) *app_error.AppError {
	userID := client.UserID()
	channelID := entity.GroupChannelID(groupID)

	current, ok := c.Registry.RoomID(userID)
	if !ok || current != channelID {
		return app_error.AccessDenied("join the group before sending")
	}

	if appErr := c.sendGates(ctx, userID); appErr != nil {
		return appErr
	}

	return c.deliver(ctx, channelID, userID, content)
}

func (c *ChatService) GroupHistory(ctx context.Context, client websocket.Client, groupID int64) *app_error.AppError {
	member, appErr := c.Directory.IsGroupMember(ctx, client.UserID(), groupID)
	if appErr != nil {
		return appErr
	}
	if !member {
		return app_error.AccessDenied("you are not a member of this group")
	}
	return c.replay(ctx, client, entity.GroupChannelID(groupID))
}

// HistoryByRoom serves the REST history read. The caller must be a
// participant of the room (or a member of the group channel), same as the
// socket path.
func (c *ChatService) HistoryByRoom(ctx context.Context, callerID string, channelID int64) (*chat_dto.HistoryResponse, *app_error.AppError) {
	allowed, appErr := c.mayAttach(ctx, callerID, channelID)
	if appErr != nil {
		return nil, appErr
	}
	if !allowed {
		return nil, app_error.AccessDenied("you are not a participant of this room")
	}

	lock := c.roomLock(channelID)
	lock.Lock()
	messages, appErr := c.MsgRepo.ListByRoom(ctx, channelID)
	lock.Unlock()
	if appErr != nil {
		return nil, appErr
	}

	resp := &chat_dto.HistoryResponse{
		RoomID:   channelID,
		Messages: make([]chat_dto.HistoryEntryResponse, 0, len(messages)),
	}
	for _, msg := range messages {
		resp.Messages = append(resp.Messages, chat_dto.HistoryEntryResponse{
			Sender:    msg.SenderID,
			Content:   msg.Content,
			CreatedAt: msg.CreatedAt,
		})
	}
	return resp, nil
}

func (c *ChatService) CreateGroup(ctx context.Context, req chat_dto.CreateGroupRequest) (*chat_dto.GroupResponse, *app_error.AppError) {
	if _, appErr := c.Directory.ResolveUser(ctx, req.OwnerID); appErr != nil {
		return nil, appErr
	}
	for _, member := range req.Members {
		if _, appErr := c.Directory.ResolveUser(ctx, member); appErr != nil {
			return nil, app_error.UnknownPeer(member)
		}
	}

	group, appErr := c.RoomRepo.CreateGroup(ctx, req.Name, req.OwnerID, req.Members)
	if appErr != nil {
		return nil, appErr
	}

	return &chat_dto.GroupResponse{
		GroupID:   group.ID,
		ChannelID: entity.GroupChannelID(group.ID),
		Name:      group.Name,
		OwnerID:   group.OwnerID,
		CreatedAt: group.CreatedAt,
	}, nil
}

func (c *ChatService) AddGroupMember(ctx context.Context, groupID int64, actorID, userID string) *app_error.AppError {
	if appErr := c.requireOwner(ctx, groupID, actorID); appErr != nil {
		return appErr
	}
	if _, appErr := c.Directory.ResolveUser(ctx, userID); appErr != nil {
		return app_error.UnknownPeer(userID)
	}
	return c.Directory.AddGroupMember(ctx, groupID, userID)
}

func (c *ChatService) RemoveGroupMember(ctx context.Context, groupID int64, actorID, userID string) *app_error.AppError {
	if appErr := c.requireOwner(ctx, groupID, actorID); appErr != nil {
		return appErr
	}
	if appErr := c.Directory.RemoveGroupMember(ctx, groupID, userID); appErr != nil {
		return appErr
	}

	// Evicted members lose their live attachment too.
	channelID := entity.GroupChannelID(groupID)
	if current, ok := c.Registry.RoomID(userID); ok && current == channelID {
		c.Registry.Leave(userID)
		for _, client := range c.Hub.RoomClients(channelID) {
			if client.UserID() == userID {
				c.Hub.Unsubscribe(client, channelID)
			}
		}
		c.Presence.DetachRoom(ctx, userID)
	}
	return nil
}

func (c *ChatService) requireOwner(ctx context.Context, groupID int64, actorID string) *app_error.AppError {
	owner, appErr := c.Directory.IsGroupOwner(ctx, actorID, groupID)
	if appErr != nil {
		return appErr
	}
	if !owner {
		return app_error.AccessDenied("only the group owner can manage members")
	}
	return nil
}

func (c *ChatService) sendGates(ctx context.Context, userID string) *app_error.AppError {
	muted, appErr := c.Directory.IsMuted(ctx, userID)
	if appErr != nil {
		return appErr
	}
	if muted {
		return app_error.Muted()
	}
	return nil
}

func (c *ChatService) deliver(ctx context.Context, channelID int64, senderID, content string) *app_error.AppError {
	lock := c.roomLock(channelID)
	lock.Lock()
	defer lock.Unlock()

	msg := &entity.Message{
		RoomID:   channelID,
		SenderID: senderID,
		Content:  content,
	}
	if _, appErr := c.MsgRepo.Append(ctx, msg); appErr != nil {
		return appErr
	}

	c.Hub.Broadcast(channelID, websocket.NewChatMessage(channelID, senderID, content), nil)
	c.enqueueActivity(ctx, channelID)
	return nil
}

func (c *ChatService) replay(ctx context.Context, client websocket.Client, channelID int64) *app_error.AppError {
	lock := c.roomLock(channelID)
	lock.Lock()
	messages, appErr := c.MsgRepo.ListByRoom(ctx, channelID)
	lock.Unlock()
	if appErr != nil {
		return appErr
	}

	entries := make([]websocket.HistoryEntry, 0, len(messages))
	for _, msg := range messages {
		entries = append(entries, websocket.HistoryEntry{
			Sender:  msg.SenderID,
			Content: msg.Content,
		})
	}

	c.Hub.SendTo(client, websocket.NewHistoryMessage(channelID, entries))
	return nil
}

func (c *ChatService) attach(ctx context.Context, client websocket.Client, channelID int64) {
	c.Registry.Join(client.UserID(), channelID)
	c.Hub.Subscribe(client, channelID)
	c.Presence.AttachRoom(ctx, client.UserID(), channelID)
}

// detach removes the client's current attachment, if any, and notifies the
// room it left behind; an empty notice keeps the departure silent.
func (c *ChatService) detach(ctx context.Context, client websocket.Client, notice string) {
	userID := client.UserID()
	roomID, ok := c.Registry.RoomID(userID)
	if !ok {
		return
	}

	c.Hub.Unsubscribe(client, roomID)
	c.Registry.Leave(userID)
	c.Presence.DetachRoom(ctx, userID)

	if notice != "" {
		c.Hub.Broadcast(roomID, websocket.NewSystemMessage(roomID, notice, websocket.ColorRed), nil)
	}
}

func leftRoomNotice(userID string) string {
	return fmt.Sprintf("%s has left the room.", userID)
}

func (c *ChatService) mayAttach(ctx context.Context, userID string, channelID int64) (bool, *app_error.AppError) {
	if entity.IsGroupChannel(channelID) {
		return c.Directory.IsGroupMember(ctx, userID, channelID-entity.GroupChannelOffset)
	}

	room, appErr := c.RoomRepo.FindRoomByID(ctx, channelID)
	if appErr != nil {
		return false, appErr
	}
	return room.UserA == userID || room.UserB == userID, nil
}

func (c *ChatService) enqueueActivity(ctx context.Context, channelID int64) {
	now := time.Now()
	job := queue.Job{
		ID:        uuid.New().String(),
		Type:      queue.JobTypeRoomActivity,
		Payload:   queue.MustMarshal(types.RoomActivityPayload{ChannelID: channelID, At: now}),
		Priority:  2,
		MaxRetry:  3,
		CreatedAt: now.Unix(),
		ExpireAt:  now.Add(activityJobTTL).Unix(),
	}

	if err := c.Producer.Enqueue(ctx, job); err != nil {
		log.Warn().Err(err).Int64("channelID", channelID).Msg("chat: failed to enqueue room activity job")
	}
}

func (c *ChatService) pairLock(key string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	lock, ok := c.pairMu[key]
	if !ok {
		lock = &sync.Mutex{}
		c.pairMu[key] = lock
	}
	return lock
}

func (c *ChatService) roomLock(channelID int64) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	lock, ok := c.roomMu[channelID]
	if !ok {
		lock = &sync.Mutex{}
		c.roomMu[channelID] = lock
	}
	return lock
}
