package types

import "time"

// RoomActivityPayload is the job payload for bumping room last-message
// metadata off the send hot path.
type RoomActivityPayload struct {
	ChannelID int64     `json:"channel_id"`
	At        time.Time `json:"at"`
}
