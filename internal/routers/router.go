package routers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	chat_handler "github.com/xenn00/campus-chat/internal/handlers/chat-handler"
	hub_handler "github.com/xenn00/campus-chat/internal/handlers/hub-handler"
	"github.com/xenn00/campus-chat/internal/middleware"
	"github.com/xenn00/campus-chat/internal/websocket"
)

type Deps struct {
	WS   *websocket.Handler
	Chat *chat_handler.ChatHandler
	Hub  *hub_handler.HubHandler
}

func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.WithRequestId)
	ChatRouter(r, deps.Chat, deps.WS)
	HubRouter(r, deps.Hub)
	return r
}
