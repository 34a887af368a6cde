package chat_dto

// WSIncomingEvent is the single envelope for everything a connection sends.
// Which fields are required depends on Type; the dispatcher checks those
// after envelope validation.
type WSIncomingEvent struct {
	Type    string `json:"type" validate:"required,oneof=join send history leave join_group send_group group_history"`
	Peer    string `json:"peer,omitempty"`
	RoomID  int64  `json:"room_id,omitempty"`
	GroupID int64  `json:"group_id,omitempty"`
	Content string `json:"content,omitempty" validate:"omitempty,max=4096"`
}

const (
	EventJoin         = "join"
	EventSend         = "send"
	EventHistory      = "history"
	EventLeave        = "leave"
	EventJoinGroup    = "join_group"
	EventSendGroup    = "send_group"
	EventGroupHistory = "group_history"
)
