package chat_dto

type GetHistoryRequest struct {
	RoomID int64 `json:"room_id" validate:"required,min=1"`
}

type CreateGroupRequest struct {
	Name    string   `json:"name" validate:"required,min=1,max=128"`
	OwnerID string   `json:"owner_id" validate:"required"`
	Members []string `json:"members" validate:"omitempty,dive,required"`
}

type GroupMemberRequest struct {
	UserID string `json:"user_id" validate:"required"`
}
