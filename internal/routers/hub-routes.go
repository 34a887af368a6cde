package routers

import (
	"github.com/go-chi/chi/v5"

	"github.com/xenn00/campus-chat/internal/handlers"
	hub_handler "github.com/xenn00/campus-chat/internal/handlers/hub-handler"
)

func HubRouter(r chi.Router, hub *hub_handler.HubHandler) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", hub.HandleHealth)
		r.Get("/stats", handlers.WrapHandler(hub.HandleGetStats))

		r.Get("/rooms/{roomId}/stats", handlers.WrapHandler(hub.HandleGetRoomStats))
		r.Get("/users/{userId}/status", handlers.WrapHandler(hub.HandleGetUserStatus))
	})
}
