package chat_handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/xenn00/campus-chat/internal/dtos/chat_dto"
	app_error "github.com/xenn00/campus-chat/internal/errors"
	"github.com/xenn00/campus-chat/internal/handlers"
	"github.com/xenn00/campus-chat/internal/middleware"
	chat_service "github.com/xenn00/campus-chat/internal/use-case/chat-case"
)

type ChatHandler struct {
	Validate *validator.Validate
	Service  chat_service.ChatOrchestratorContract
}

func NewChatHandler(service chat_service.ChatOrchestratorContract) *ChatHandler {
	return &ChatHandler{
		Validate: validator.New(),
		Service:  service,
	}
}

// GetHistory serves the room log over REST, mostly for the web client's
// initial page render before the socket is up. Only participants of the room
// get a reply.
func (h *ChatHandler) GetHistory(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	roomID, err := strconv.ParseInt(chi.URLParam(r, "roomId"), 10, 64)
	if err != nil {
		return app_error.NewAppError(http.StatusBadRequest, "room id must be numeric", "room-id")
	}

	caller, appErr := callerID(r)
	if appErr != nil {
		return appErr
	}

	resp, appErr := h.Service.HistoryByRoom(r.Context(), caller, roomID)
	if appErr != nil {
		return appErr
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handlers.CreateResponse("get room history", resp, requestID(r)))
	return nil
}

func (h *ChatHandler) CreateGroup(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	var req chat_dto.CreateGroupRequest
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return app_error.NewAppError(http.StatusBadRequest, "Invalid JSON", "body")
	}
	if err := h.Validate.Struct(req); err != nil {
		return app_error.NewAppError(http.StatusBadRequest, fmt.Sprintf("Invalid fields: %v", err), "validation")
	}

	resp, appErr := h.Service.CreateGroup(r.Context(), req)
	if appErr != nil {
		return appErr
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(handlers.CreateResponse("group created", resp, requestID(r)))
	return nil
}

func (h *ChatHandler) AddGroupMember(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	groupID, actorID, req, appErr := h.memberRequest(r)
	if appErr != nil {
		return appErr
	}

	if appErr := h.Service.AddGroupMember(r.Context(), groupID, actorID, req.UserID); appErr != nil {
		return appErr
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handlers.CreateResponse("member added", map[string]any{
		"group_id": groupID,
		"user_id":  req.UserID,
	}, requestID(r)))
	return nil
}

func (h *ChatHandler) RemoveGroupMember(w http.ResponseWriter, r *http.Request) *app_error.AppError {
	groupID, actorID, req, appErr := h.memberRequest(r)
	if appErr != nil {
		return appErr
	}

	if appErr := h.Service.RemoveGroupMember(r.Context(), groupID, actorID, req.UserID); appErr != nil {
		return appErr
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(handlers.CreateResponse("member removed", map[string]any{
		"group_id": groupID,
		"user_id":  req.UserID,
	}, requestID(r)))
	return nil
}

func (h *ChatHandler) memberRequest(r *http.Request) (int64, string, *chat_dto.GroupMemberRequest, *app_error.AppError) {
	groupID, err := strconv.ParseInt(chi.URLParam(r, "groupId"), 10, 64)
	if err != nil {
		return 0, "", nil, app_error.NewAppError(http.StatusBadRequest, "group id must be numeric", "group-id")
	}

	actorID, appErr := callerID(r)
	if appErr != nil {
		return 0, "", nil, appErr
	}

	var req chat_dto.GroupMemberRequest
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return 0, "", nil, app_error.NewAppError(http.StatusBadRequest, "Invalid JSON", "body")
	}
	if err := h.Validate.Struct(req); err != nil {
		return 0, "", nil, app_error.NewAppError(http.StatusBadRequest, fmt.Sprintf("Invalid fields: %v", err), "validation")
	}

	return groupID, actorID, &req, nil
}

// Identity is asserted upstream; the proxy injects the caller id.
func callerID(r *http.Request) (string, *app_error.AppError) {
	id := r.Header.Get("X-User-ID")
	if id == "" {
		return "", app_error.NewAppError(http.StatusUnauthorized, "caller identity missing", "x-user-id")
	}
	return id, nil
}

func requestID(r *http.Request) string {
	reqID, ok := r.Context().Value(middleware.RequestIdKey).(string)
	if !ok {
		return "unknown"
	}
	return reqID
}
