package chat_dto

import "time"

type HistoryEntryResponse struct {
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type HistoryResponse struct {
	RoomID   int64                  `json:"room_id"`
	Messages []HistoryEntryResponse `json:"messages"`
}

type GroupResponse struct {
	GroupID   int64     `json:"group_id"`
	ChannelID int64     `json:"channel_id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

type UserStatusResponse struct {
	UserID   string `json:"user_id"`
	Online   bool   `json:"online"`
	RoomID   int64  `json:"room_id,omitempty"`
	InRoom   bool   `json:"in_room"`
	Attached bool   `json:"attached"`
}
