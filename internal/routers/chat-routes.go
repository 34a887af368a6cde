package routers

import (
	"github.com/go-chi/chi/v5"

	"github.com/xenn00/campus-chat/internal/handlers"
	chat_handler "github.com/xenn00/campus-chat/internal/handlers/chat-handler"
	"github.com/xenn00/campus-chat/internal/websocket"
)

func ChatRouter(r chi.Router, chat *chat_handler.ChatHandler, ws *websocket.Handler) {
	r.Get("/ws", ws.HandleWS)

	r.Route("/api/v1/chat", func(r chi.Router) {
		r.Get("/rooms/{roomId}/messages", handlers.WrapHandler(chat.GetHistory))

		r.Post("/groups", handlers.WrapHandler(chat.CreateGroup))
		r.Post("/groups/{groupId}/members", handlers.WrapHandler(chat.AddGroupMember))
		r.Delete("/groups/{groupId}/members", handlers.WrapHandler(chat.RemoveGroupMember))
	})
}
