package registry

import (
	"sync"
)

// RoomRegistry answers "who is actively attached to which room right now".
// It is process-local and rebuilt from connect events; the durable room
// directory stays the source of truth for room existence.
type RoomRegistry struct {
	mu     sync.RWMutex
	byUser map[string]int64
}

func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{
		byUser: make(map[string]int64),
	}
}

// Join overwrites any prior mapping: a user is attached to at most one room.
func (r *RoomRegistry) Join(userID string, roomID int64) {
	r.mu.Lock()
	r.byUser[userID] = roomID
	r.mu.Unlock()
}

func (r *RoomRegistry) Leave(userID string) {
	r.mu.Lock()
	delete(r.byUser, userID)
	r.mu.Unlock()
}

func (r *RoomRegistry) RoomID(userID string) (int64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	roomID, ok := r.byUser[userID]
	return roomID, ok
}

func (r *RoomRegistry) UsersInRoom(roomID int64) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var users []string
	for user, id := range r.byUser {
		if id == roomID {
			users = append(users, user)
		}
	}
	return users
}

func (r *RoomRegistry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser)
}
