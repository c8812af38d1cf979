package ws

import (
	"sync"

	"github.com/Pranaykumar222/CampusConnect/internal/metrics"
)

// RemotePublishFunc forwards a room broadcast to other instances. Optional;
// wired up when the redis bridge is enabled.
type RemotePublishFunc func(room, exceptUserID string, data []byte)

// Hub is the process-wide presence registry plus room membership table.
// Each user has at most one registered session (last connect wins) and a
// personal room keyed by their own user id.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client             // userID -> current session
	rooms   map[string]map[string]struct{} // room -> member userIDs

	publishRemote RemotePublishFunc
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		rooms:   make(map[string]map[string]struct{}),
	}
}

// SetRemotePublisher must be called before any session connects.
func (h *Hub) SetRemotePublisher(fn RemotePublishFunc) {
	h.publishRemote = fn
}

// Register makes c the current session for its user, replacing any prior
// entry. The replaced session stops receiving pushes but is not closed here;
// its own teardown handles that. The user is auto-joined to their personal
// room.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, had := h.clients[c.UserID]; !had {
		metrics.ActiveSessions.Inc()
	}
	h.clients[c.UserID] = c
	h.joinLocked(c.UserID, c.UserID)
}

// Unregister removes the user's entry only when it still points at c. A
// stale disconnect racing a fresh reconnect must not evict the newer
// session or its room memberships.
func (h *Hub) Unregister(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	current, ok := h.clients[c.UserID]
	if !ok || current != c {
		return false
	}
	delete(h.clients, c.UserID)
	for room, members := range h.rooms {
		delete(members, c.UserID)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	metrics.ActiveSessions.Dec()
	return true
}

func (h *Hub) Lookup(userID string) (*Client, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.clients[userID]
	return c, ok
}

func (h *Hub) IsOnline(userID string) bool {
	_, ok := h.Lookup(userID)
	return ok
}

func (h *Hub) JoinRoom(room, userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.joinLocked(room, userID)
}

func (h *Hub) LeaveRoom(room, userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if members, ok := h.rooms[room]; ok {
		delete(members, userID)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

func (h *Hub) joinLocked(room, userID string) {
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[string]struct{})
	}
	h.rooms[room][userID] = struct{}{}
}

// Broadcast pushes an event to every session in the room, including the
// originator's.
func (h *Hub) Broadcast(room, event string, payload any) {
	h.broadcast(room, "", event, payload)
}

// BroadcastExcept pushes an event to every room member but one. Used for
// typing indicators and seen receipts, which the actor does not need back.
func (h *Hub) BroadcastExcept(room, exceptUserID, event string, payload any) {
	h.broadcast(room, exceptUserID, event, payload)
}

// SendToUser pushes an addressed event to a single user's session, if any.
func (h *Hub) SendToUser(userID, event string, payload any) bool {
	data, err := encodeEnvelope(event, payload)
	if err != nil {
		return false
	}
	if h.publishRemote != nil {
		h.publishRemote(userID, "", data)
	}
	h.mu.RLock()
	c, ok := h.clients[userID]
	h.mu.RUnlock()
	if !ok {
		return false
	}
	return c.Send(data)
}

func (h *Hub) broadcast(room, exceptUserID, event string, payload any) {
	data, err := encodeEnvelope(event, payload)
	if err != nil {
		return
	}
	h.DeliverLocal(room, exceptUserID, data)
	if h.publishRemote != nil {
		h.publishRemote(room, exceptUserID, data)
	}
}

// DeliverLocal fans an already-encoded envelope out to local room members.
// Also the entry point for envelopes arriving over the cross-instance bridge.
func (h *Hub) DeliverLocal(room, exceptUserID string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for userID := range h.rooms[room] {
		if userID == exceptUserID {
			continue
		}
		if c, ok := h.clients[userID]; ok {
			c.Send(data)
		}
	}
}
