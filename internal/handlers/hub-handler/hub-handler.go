package hub_handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/xenn00/campus-chat/internal/dtos/chat_dto"
	app_error "github.com/xenn00/campus-chat/internal/errors"
	"github.com/xenn00/campus-chat/internal/handlers"
	"github.com/xenn00/campus-chat/internal/middleware"
	"github.com/xenn00/campus-chat/internal/presence"
	"github.com/xenn00/campus-chat/internal/registry"
	"github.com/xenn00/campus-chat/internal/websocket"
)

type HubHandler struct {
	Hub      *websocket.Hub
	WS       *websocket.Handler
	Presence *presence.Tracker
	Registry *registry.RoomRegistry
}

func NewHubHandler(hub *websocket.Hub, ws *websocket.Handler, pres *presence.Tracker, reg *registry.RoomRegistry) *HubHandler {
	return &HubHandler{
		Hub:      hub,
		WS:       ws,
		Presence: pres,
		Registry: reg,
	}
}

func (h *HubHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
		"service":   "campus-chat",
	})
}

func (h *HubHandler) HandleGetStats(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	stats := h.Hub.Stats()
	resp := map[string]any{
		"hub":                stats,
		"active_connections": h.WS.ActiveConnections(),
		"attached_users":     h.Registry.Size(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handlers.CreateResponse("get websocket stats", resp, requestID(r)))
	return nil
}

func (h *HubHandler) HandleGetRoomStats(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	roomID, err := strconv.ParseInt(chi.URLParam(r, "roomId"), 10, 64)
	if err != nil {
		return app_error.NewAppError(http.StatusBadRequest, "room id must be numeric", "room-id")
	}

	stats := h.Hub.RoomStats(roomID)
	stats["attached_users"] = h.Registry.UsersInRoom(roomID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handlers.CreateResponse("get websocket room stats", stats, requestID(r)))
	return nil
}

func (h *HubHandler) HandleGetUserStatus(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	userID := chi.URLParam(r, "userId")

	online, appErr := h.Presence.IsOnline(r.Context(), userID)
	if appErr != nil {
		return appErr
	}

	resp := chat_dto.UserStatusResponse{
		UserID: userID,
		Online: online,
	}
	if roomID, ok := h.Registry.RoomID(userID); ok {
		resp.RoomID = roomID
		resp.InRoom = true
	}
	if _, ok := h.Presence.AttachedRoom(r.Context(), userID); ok {
		resp.Attached = true
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handlers.CreateResponse("successful get user status", resp, requestID(r)))
	return nil
}

func requestID(r *http.Request) string {
	reqID, ok := r.Context().Value(middleware.RequestIdKey).(string)
	if !ok {
		return "unknown"
	}
	return reqID
}
