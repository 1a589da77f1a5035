package hub

import (
	"log/slog"
)

// Fan-out primitives. All best-effort: at-most-once, no ordering guarantee
// across recipients, silent drop when a connection's send buffer is gone.
// These are also the entry points REST handlers use to push events to live
// clients (chat persisted via REST, purchase/customization pushes, admin
// actions).

// BroadcastGlobal serializes once and sends to every authenticated
// connection.
func (h *Hub) BroadcastGlobal(eventType string, data any) {
	frame, err := NewEvent(eventType, data).Encode()
	if err != nil {
		slog.Error("Failed to encode broadcast", "eventType", eventType, "error", err)
		return
	}
	for _, c := range h.registry.All() {
		c.enqueue(frame)
	}
}

// broadcastGlobalExcept is BroadcastGlobal skipping one connection, used by
// the handshake so a client does not receive its own user_online event.
func (h *Hub) broadcastGlobalExcept(skip *Client, eventType string, data any) {
	frame, err := NewEvent(eventType, data).Encode()
	if err != nil {
		slog.Error("Failed to encode broadcast", "eventType", eventType, "error", err)
		return
	}
	for _, c := range h.registry.All() {
		if c == skip {
			continue
		}
		c.enqueue(frame)
	}
}

// BroadcastToRoom delivers message to every live connection of each room
// participant except excludeUserID's. Participants come from an
// authoritative store lookup per broadcast, not from the cached membership
// index. A store failure degrades to no delivery.
func (h *Hub) BroadcastToRoom(roomID string, message *Outbound, excludeUserID string) {
	participants, err := h.store.GetParticipantsOfRoom(h.ctx, roomID)
	if err != nil {
		slog.Error("Failed to resolve room participants", "roomID", roomID, "error", err)
		return
	}

	frame, err := message.Encode()
	if err != nil {
		slog.Error("Failed to encode room broadcast", "roomID", roomID, "error", err)
		return
	}

	for _, userID := range participants {
		if userID == excludeUserID {
			continue
		}
		for _, c := range h.registry.Connections(userID) {
			c.enqueue(frame)
		}
	}
}

// BroadcastToTopic delivers to every connection whose subscription set holds
// topic. Subscriptions are per-connection: a user with two tabs may receive
// on one and not the other.
func (h *Hub) BroadcastToTopic(topic, eventType string, data any) {
	frame, err := NewEvent(eventType, data).Encode()
	if err != nil {
		slog.Error("Failed to encode topic broadcast", "topic", topic, "error", err)
		return
	}
	for _, c := range h.registry.All() {
		if c.subscribedTo(topic) {
			c.enqueue(frame)
		}
	}
}

// SendToUser delivers message to every live connection owned by userID.
func (h *Hub) SendToUser(userID string, message *Outbound) {
	frame, err := message.Encode()
	if err != nil {
		slog.Error("Failed to encode user message", "userID", userID, "error", err)
		return
	}
	for _, c := range h.registry.Connections(userID) {
		c.enqueue(frame)
	}
}
