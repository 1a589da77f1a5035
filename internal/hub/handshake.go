package hub

import (
	"time"

	"log/slog"
)

// handleAuthenticate runs the handshake: validate the bearer credential,
// resolve the user record, promote the connection to authenticated state,
// load room membership and announce the user to everyone else.
//
// The user_online broadcast is deliberately unconditional: a second tab for
// an already-online user re-announces. Clients treat the event as
// idempotent, and suppressing it here would change observable behavior.
func (h *Hub) handleAuthenticate(c *Client, data *AuthenticateData) {
	if data == nil || data.Token == "" {
		c.Send(NewAuthError("Token required"))
		return
	}

	subjectID, err := h.verifier.Verify(data.Token)
	if err != nil {
		slog.Debug("Credential rejected", "clientID", c.id, "error", err)
		c.Send(NewAuthError("Invalid or expired token"))
		return
	}

	user, err := h.store.GetUserByID(h.ctx, subjectID)
	if err != nil {
		slog.Error("User lookup failed", "subjectID", subjectID, "error", err)
		c.Send(NewAuthError("Invalid or expired token"))
		return
	}
	if user == nil {
		c.Send(NewAuthError("User not found"))
		return
	}

	// A connection keeps one identity for its lifetime. Allowing a switch
	// here would strand the previous user's registry entry on a socket it
	// no longer owns, so it would stay online with no live connection.
	if existing := c.currentUser(); existing != nil && existing.ID != user.ID {
		slog.Warn("Identity switch rejected", "clientID", c.id, "userID", existing.ID, "attemptedID", user.ID)
		c.Send(NewAuthError("Already authenticated"))
		return
	}

	c.setUser(user)
	first := h.registry.Register(user.ID, c)
	h.membership.Load(h.ctx, user.ID)

	slog.Info("Client authenticated", "clientID", c.id, "userID", user.ID, "username", user.Username)

	c.Send(NewEvent(EventAuthenticated, map[string]any{
		"userId":      user.ID,
		"username":    user.Username,
		"role":        user.Role,
		"onlineUsers": h.registry.OnlineUserIDs(),
	}))

	h.broadcastGlobalExcept(c, EventUserOnline, map[string]any{
		"userId":   user.ID,
		"username": user.Username,
	})

	if first {
		h.notifyPresence(user.ID, true)
		h.publishEvent(Event{Type: EventUserOnline, UserID: user.ID, At: time.Now()})
	}
}
