package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Hub is the per-room broadcast fan-out. Delivery to subscribers of one room
// happens under that room's lock, so per-room order equals broadcast order;
// there is no ordering across rooms. Delivery is at-most-once: a connection
// that is gone or too slow simply misses the frame, replay comes from the
// durable message log.
type Hub struct {
	rooms map[int64]map[Client]struct{}
	locks map[int64]*sync.Mutex
	mu    sync.RWMutex

	stats   HubStats
	statsMu sync.RWMutex
}

type HubStats struct {
	TotalRooms       int       `json:"total_rooms"`
	TotalClients     int       `json:"total_clients"`
	TotalConnections int64     `json:"total_connections"`
	MessagesSent     int64     `json:"messages_sent"`
	StartedAt        time.Time `json:"started_at"`
}

func NewHub() *Hub {
	return &Hub{
		rooms: make(map[int64]map[Client]struct{}),
		locks: make(map[int64]*sync.Mutex),
		stats: HubStats{StartedAt: time.Now()},
	}
}

func (h *Hub) Subscribe(client Client, roomID int64) {
	h.mu.Lock()
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[Client]struct{})
	}
	h.rooms[roomID][client] = struct{}{}
	size := len(h.rooms[roomID])
	h.mu.Unlock()

	h.updateStats(func(stats *HubStats) {
		stats.TotalConnections++
	})

	log.Info().Int64("roomID", roomID).Str("connID", client.ConnID()).Str("userID", client.UserID()).Int("roomSize", size).Msg("ws: client subscribed to room")
}

func (h *Hub) Unsubscribe(client Client, roomID int64) {
	h.mu.Lock()
	if clients, ok := h.rooms[roomID]; ok {
		delete(clients, client)
		// Room locks are kept: rooms are never destroyed and reaping a lock
		// another broadcast may still hold would break per-room ordering.
		if len(clients) == 0 {
			delete(h.rooms, roomID)
		}
	}
	h.mu.Unlock()

	log.Info().Int64("roomID", roomID).Str("connID", client.ConnID()).Str("userID", client.UserID()).Msg("ws: client unsubscribed from room")
}

// Broadcast delivers one event to every subscriber of the room, skipping
// except when set.
func (h *Hub) Broadcast(roomID int64, msg OutgoingMessage, except Client) {
	msg.RoomID = roomID

	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Int64("roomID", roomID).Msg("ws: failed to marshal broadcast message")
		return
	}

	lock := h.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	h.mu.RLock()
	var targets []Client
	for client := range h.rooms[roomID] {
		if except != nil && client == except {
			continue
		}
		targets = append(targets, client)
	}
	h.mu.RUnlock()

	for _, client := range targets {
		if !client.Send(data) {
			// Slow consumer: drop the frame and evict the connection rather
			// than stall the room.
			log.Warn().Int64("roomID", roomID).Str("connID", client.ConnID()).Msg("ws: slow consumer, closing client")
			go client.Close()
		}
	}

	h.updateStats(func(stats *HubStats) {
		stats.MessagesSent += int64(len(targets))
	})
}

// SendTo delivers one event to a single connection only (history replays,
// join confirmations, error events).
func (h *Hub) SendTo(client Client, msg OutgoingMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("connID", client.ConnID()).Msg("ws: failed to marshal direct message")
		return
	}

	if !client.Send(data) {
		log.Warn().Str("connID", client.ConnID()).Msg("ws: client buffer full, dropping direct message")
	}
}

func (h *Hub) RoomClients(roomID int64) []Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var clients []Client
	for client := range h.rooms[roomID] {
		clients = append(clients, client)
	}
	return clients
}

func (h *Hub) IsUserInRoom(roomID int64, userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[roomID] {
		if client.UserID() == userID {
			return true
		}
	}
	return false
}

func (h *Hub) RoomStats(roomID int64) map[string]any {
	h.mu.RLock()
	defer h.mu.RUnlock()

	stats := map[string]any{
		"room_id": roomID,
		"exists":  false,
	}

	if clients, ok := h.rooms[roomID]; ok {
		uniqueUsers := make(map[string]struct{})
		for client := range clients {
			uniqueUsers[client.UserID()] = struct{}{}
		}
		stats["exists"] = true
		stats["connections"] = len(clients)
		stats["unique_users"] = len(uniqueUsers)
	}

	return stats
}

func (h *Hub) Stats() HubStats {
	h.statsMu.RLock()
	stats := h.stats
	h.statsMu.RUnlock()

	h.mu.RLock()
	stats.TotalRooms = len(h.rooms)
	total := 0
	for _, clients := range h.rooms {
		total += len(clients)
	}
	stats.TotalClients = total
	h.mu.RUnlock()

	return stats
}

// Close evicts every connection; used on shutdown.
func (h *Hub) Close() {
	h.mu.RLock()
	var all []Client
	for _, clients := range h.rooms {
		for client := range clients {
			all = append(all, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range all {
		client.Close()
	}

	log.Info().Int("clients", len(all)).Msg("ws: hub shutdown completed")
}

func (h *Hub) roomLock(roomID int64) *sync.Mutex {
	h.mu.Lock()
	defer h.mu.Unlock()
	lock, ok := h.locks[roomID]
	if !ok {
		lock = &sync.Mutex{}
		h.locks[roomID] = lock
	}
	return lock
}

func (h *Hub) updateStats(fn func(*HubStats)) {
	h.statsMu.Lock()
	fn(&h.stats)
	h.statsMu.Unlock()
}
