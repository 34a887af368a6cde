package entity

// GroupChannelOffset maps GroupRoom.ID into the broadcast-channel id space.
// Direct rooms are allocated strictly below it, so the two id ranges never
// collide and a channel id alone tells you which kind of room it is.
const GroupChannelOffset int64 = 1_000_000

func GroupChannelID(groupID int64) int64 {
	return groupID + GroupChannelOffset
}

func IsGroupChannel(channelID int64) bool {
	return channelID >= GroupChannelOffset
}
