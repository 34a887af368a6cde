package worker_handler

import (
	room_repo "github.com/xenn00/campus-chat/internal/repo/room"
)

type WorkerHandler struct {
	RoomRepo room_repo.RoomRepoContract
}

func NewWorkerHandler(rooms room_repo.RoomRepoContract) *WorkerHandler {
	return &WorkerHandler{
		RoomRepo: rooms,
	}
}
