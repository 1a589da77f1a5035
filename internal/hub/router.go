package hub

import (
	"time"

	"log/slog"
)

// Frame handlers. All run on an authenticated connection; dispatch enforces
// that before calling in here.

func (h *Hub) handleJoinChat(c *Client, data *RoomData) {
	user := c.currentUser()
	if !h.membership.CanJoin(user.ID, data.ChatID) {
		slog.Debug("Join rejected", "clientID", c.id, "userID", user.ID, "chatID", data.ChatID)
		c.sendError("Access denied to chat")
		return
	}

	c.setRoomID(data.ChatID)
	c.Send(NewEvent(EventJoinedChat, map[string]any{"chatId": data.ChatID}))
}

func (h *Hub) handleLeaveChat(c *Client, data *RoomData) {
	c.clearRoomID(data.ChatID)
	c.Send(NewEvent(EventLeftChat, map[string]any{"chatId": data.ChatID}))
}

// handleTyping relays a typing indicator to the other participants of the
// connection's active room. A frame for a room the connection is not
// currently in is dropped without a reply.
func (h *Hub) handleTyping(c *Client, data *RoomData, eventType string) {
	if c.roomID() != data.ChatID {
		return
	}

	user := c.currentUser()
	h.BroadcastToRoom(data.ChatID, NewEvent(eventType, map[string]any{
		"userId":   user.ID,
		"username": user.Username,
		"chatId":   data.ChatID,
	}), user.ID)
}

func (h *Hub) handleSubscribe(c *Client, topic string) {
	c.subscribe(topic)
	c.Send(NewEvent(EventSubscribed, map[string]any{"topic": topic}))
}

func (h *Hub) handleSubscribeAdmin(c *Client) {
	if !c.currentUser().IsAdmin() {
		c.sendError("Admin access required")
		return
	}
	h.handleSubscribe(c, TopicAdminUpdates)
}

func (h *Hub) handleOnlineUsers(c *Client) {
	c.Send(NewEvent(EventOnlineUsers, map[string]any{
		"users": h.registry.OnlineUserIDs(),
	}))
}

func (h *Hub) handleSetStatus(c *Client, data *StatusData) {
	// Only the client-settable states. Anything else would let a client
	// forge reserved presence events like user_offline.
	switch data.Status {
	case StatusOnline, StatusAway, StatusBusy:
	default:
		slog.Debug("Invalid status rejected", "clientID", c.id, "status", data.Status)
		c.sendError("Invalid status")
		return
	}

	user := c.currentUser()
	c.setStatus(data.Status)

	h.BroadcastGlobal("user_"+data.Status, map[string]any{
		"userId":   user.ID,
		"username": user.Username,
		"status":   data.Status,
	})
}

// handleAdminBroadcast relays an arbitrary event to every connection.
// A non-admin sender is dropped silently; replying would leak which frame
// types exist to non-privileged clients, and the web client never sends it.
func (h *Hub) handleAdminBroadcast(c *Client, data *BroadcastData) {
	user := c.currentUser()
	if !user.IsAdmin() {
		slog.Debug("Non-admin broadcast dropped", "clientID", c.id, "userID", user.ID)
		return
	}

	h.BroadcastGlobal(data.Event, data.Data)
	h.publishEvent(Event{Type: "admin_broadcast", UserID: user.ID, Detail: data.Event, At: time.Now()})
}
