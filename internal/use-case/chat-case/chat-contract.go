package chat_service

import (
	"context"

	"github.com/xenn00/campus-chat/internal/dtos/chat_dto"
	app_error "github.com/xenn00/campus-chat/internal/errors"
	"github.com/xenn00/campus-chat/internal/websocket"
)

// ChatOrchestratorContract drives every room interaction. Socket-facing
// operations take the live client so replies and notices can be routed; the
// REST surface works on ids alone.
type ChatOrchestratorContract interface {
	Connect(ctx context.Context, client websocket.Client, roomIDHint int64)
	Disconnect(ctx context.Context, client websocket.Client)

	Join(ctx context.Context, client websocket.Client, peerID string) *app_error.AppError
	Send(ctx context.Context, client websocket.Client, content string) *app_error.AppError
	History(ctx context.Context, client websocket.Client) *app_error.AppError
	Leave(ctx context.Context, client websocket.Client) *app_error.AppError

	JoinGroup(ctx context.Context, client websocket.Client, groupID int64) *app_error.AppError
	SendGroup(ctx context.Context, client websocket.Client, groupID int64, content string) *app_error.AppError
	GroupHistory(ctx context.Context, client websocket.Client, groupID int64) *app_error.AppError

	HistoryByRoom(ctx context.Context, callerID string, channelID int64) (*chat_dto.HistoryResponse, *app_error.AppError)
	CreateGroup(ctx context.Context, req chat_dto.CreateGroupRequest) (*chat_dto.GroupResponse, *app_error.AppError)
	AddGroupMember(ctx context.Context, groupID int64, actorID, userID string) *app_error.AppError
	RemoveGroupMember(ctx context.Context, groupID int64, actorID, userID string) *app_error.AppError
}
