package worker_handler

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/xenn00/campus-chat/internal/utils/types"
)

func (wh *WorkerHandler) HandleRoomActivity(ctx context.Context, raw json.RawMessage) error {
	var payload types.RoomActivityPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("invalid room activity payload: %w", err)
	}

	if err := wh.RoomRepo.TouchRoomActivity(ctx, payload.ChannelID, payload.At); err != nil {
		return fmt.Errorf("failed to bump room activity: %w", err)
	}
	return nil
}
