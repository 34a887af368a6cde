package websocket

import "time"

const (
	EventSystem     = "system"
	EventChat       = "chat"
	EventHistory    = "history"
	EventRoomJoined = "room_joined"
	EventError      = "error"
)

// Colors match what the web client renders for system notices.
const (
	ColorGreen = "green"
	ColorRed   = "red"
	ColorBlack = "black"
)

type OutgoingMessage struct {
	Type      string         `json:"type"`
	RoomID    int64          `json:"room_id,omitempty"`
	SenderID  string         `json:"sender_id,omitempty"`
	Content   string         `json:"content,omitempty"`
	Color     string         `json:"color,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	Messages  []HistoryEntry `json:"messages,omitempty"`
	Timestamp int64          `json:"timestamp"`
}

type HistoryEntry struct {
	Sender  string `json:"sender"`
	Content string `json:"content"`
}

func NewSystemMessage(roomID int64, content, color string) OutgoingMessage {
	return OutgoingMessage{
		Type:      EventSystem,
		RoomID:    roomID,
		Content:   content,
		Color:     color,
		Timestamp: time.Now().Unix(),
	}
}

func NewChatMessage(roomID int64, senderID, content string) OutgoingMessage {
	return OutgoingMessage{
		Type:      EventChat,
		RoomID:    roomID,
		SenderID:  senderID,
		Content:   content,
		Color:     ColorBlack,
		Timestamp: time.Now().Unix(),
	}
}

func NewHistoryMessage(roomID int64, entries []HistoryEntry) OutgoingMessage {
	return OutgoingMessage{
		Type:      EventHistory,
		RoomID:    roomID,
		Messages:  entries,
		Timestamp: time.Now().Unix(),
	}
}

func NewRoomJoinedMessage(roomID int64, content string) OutgoingMessage {
	return OutgoingMessage{
		Type:      EventRoomJoined,
		RoomID:    roomID,
		Content:   content,
		Color:     ColorGreen,
		Timestamp: time.Now().Unix(),
	}
}

func NewErrorMessage(content, kind string, retryable bool) OutgoingMessage {
	return OutgoingMessage{
		Type:    EventError,
		Content: content,
		Data: map[string]any{
			"kind":      kind,
			"retryable": retryable,
		},
		Timestamp: time.Now().Unix(),
	}
}
