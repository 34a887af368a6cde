package ws_handler

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"

	"github.com/xenn00/campus-chat/internal/dtos/chat_dto"
	app_error "github.com/xenn00/campus-chat/internal/errors"
	chat_service "github.com/xenn00/campus-chat/internal/use-case/chat-case"
	"github.com/xenn00/campus-chat/internal/websocket"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// opTimeout bounds every socket-triggered operation; a stuck store must not
// pin the read pump forever.
const opTimeout = 5 * time.Second

// WSEventHandler turns raw socket frames into orchestrator calls and routes
// rejections back to the offending connection.
type WSEventHandler struct {
	Hub      *websocket.Hub
	Service  chat_service.ChatOrchestratorContract
	Validate *validator.Validate
}

func NewWSEventHandler(hub *websocket.Hub, service chat_service.ChatOrchestratorContract) *WSEventHandler {
	return &WSEventHandler{
		Hub:      hub,
		Service:  service,
		Validate: validator.New(),
	}
}

func (h *WSEventHandler) Connected(ctx context.Context, client websocket.Client, roomIDHint int64) {
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	h.Service.Connect(opCtx, client, roomIDHint)
}

func (h *WSEventHandler) Disconnected(ctx context.Context, client websocket.Client) {
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	h.Service.Disconnect(opCtx, client)
}

func (h *WSEventHandler) Event(ctx context.Context, client websocket.Client, raw []byte) {
	var evt chat_dto.WSIncomingEvent
	if err := json.Unmarshal(raw, &evt); err != nil {
		h.reject(client, app_error.NewAppError(400, "invalid event payload", app_error.KindValidation))
		return
	}
	if err := h.Validate.Struct(evt); err != nil {
		h.reject(client, app_error.NewAppError(400, "invalid event: "+err.Error(), app_error.KindValidation))
		return
	}

	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if appErr := h.dispatch(opCtx, client, evt); appErr != nil {
		log.Info().
			Str("userID", client.UserID()).
			Str("event", evt.Type).
			Str("reason", appErr.Message).
			Msg("ws event rejected")
		h.reject(client, appErr)
	}
}

func (h *WSEventHandler) dispatch(ctx context.Context, client websocket.Client, evt chat_dto.WSIncomingEvent) *app_error.AppError {
	switch evt.Type {
	case chat_dto.EventJoin:
		if evt.Peer == "" {
			return missingField("peer")
		}
		return h.Service.Join(ctx, client, evt.Peer)

	case chat_dto.EventSend:
		if evt.Content == "" {
			return missingField("content")
		}
		return h.Service.Send(ctx, client, evt.Content)

	case chat_dto.EventHistory:
		return h.Service.History(ctx, client)

	case chat_dto.EventLeave:
		return h.Service.Leave(ctx, client)

	case chat_dto.EventJoinGroup:
		if evt.GroupID == 0 {
			return missingField("group_id")
		}
		return h.Service.JoinGroup(ctx, client, evt.GroupID)

	case chat_dto.EventSendGroup:
		if evt.GroupID == 0 {
			return missingField("group_id")
		}
		if evt.Content == "" {
			return missingField("content")
		}
		return h.Service.SendGroup(ctx, client, evt.GroupID, evt.Content)

	case chat_dto.EventGroupHistory:
		if evt.GroupID == 0 {
			return missingField("group_id")
		}
		return h.Service.GroupHistory(ctx, client, evt.GroupID)
	}

	return app_error.NewAppError(400, "unknown event type: "+evt.Type, app_error.KindValidation)
}

func (h *WSEventHandler) reject(client websocket.Client, appErr *app_error.AppError) {
	h.Hub.SendTo(client, websocket.NewErrorMessage(appErr.Message, appErr.Field, appErr.Retryable()))
}

func missingField(field string) *app_error.AppError {
	return app_error.NewAppError(400, field+" is required for this event", app_error.KindValidation)
}
