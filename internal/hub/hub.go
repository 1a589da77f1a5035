package hub

import (
	"context"
	"sync"
	"time"

	"log/slog"
)

// TokenVerifier validates a bearer credential and resolves it to the subject
// user id it was issued for.
type TokenVerifier interface {
	Verify(token string) (subjectID string, err error)
}

// Store is the read-only slice of the platform's persistence layer the hub
// depends on. Lookups are authoritative; the hub caches nothing except the
// per-session membership index.
type Store interface {
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetRoomIDsForUser(ctx context.Context, userID string) ([]string, error)
	GetParticipantsOfRoom(ctx context.Context, roomID string) ([]string, error)
}

// PresenceNotifier mirrors online/offline transitions to an external
// projection (Redis) so REST queries never touch the hub. Best-effort.
type PresenceNotifier interface {
	UserOnline(ctx context.Context, userID string) error
	UserOffline(ctx context.Context, userID string) error
}

// Event is one audit record emitted on presence transitions and admin
// broadcasts.
type Event struct {
	Type   string    `json:"type"`
	UserID string    `json:"userId,omitempty"`
	Detail string    `json:"detail,omitempty"`
	At     time.Time `json:"at"`
}

// EventPublisher ships audit events to an external sink (Kafka). Best-effort.
type EventPublisher interface {
	Publish(event Event) error
}

const defaultPingInterval = 30 * time.Second

// Hub is the single in-process coordinator for presence and chat fan-out:
// it authenticates socket connections, tracks which users are online, routes
// frames to room participants and propagates topic events to subscribed
// clients. One instance per process; no cross-instance fan-out.
type Hub struct {
	registry   *Registry
	membership *MembershipIndex
	verifier   TokenVerifier
	store      Store

	// Optional collaborators, nil-safe.
	presence PresenceNotifier
	events   EventPublisher

	pingInterval time.Duration

	mu      sync.RWMutex
	clients map[*Client]struct{} // every open socket, authenticated or not

	ctx    context.Context
	cancel context.CancelFunc
}

// NewHub wires the hub with its collaborators. presence and events may be
// nil; the hub then skips the corresponding side effects.
func NewHub(verifier TokenVerifier, store Store, presence PresenceNotifier, events EventPublisher) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		registry:     NewRegistry(),
		membership:   NewMembershipIndex(store),
		verifier:     verifier,
		store:        store,
		presence:     presence,
		events:       events,
		pingInterval: defaultPingInterval,
		clients:      make(map[*Client]struct{}),
		ctx:          ctx,
		cancel:       cancel,
	}
}

// SetPingInterval overrides the liveness sweep interval. Must be called
// before Run.
func (h *Hub) SetPingInterval(d time.Duration) {
	h.pingInterval = d
}

// Registry exposes presence queries to REST collaborators.
func (h *Hub) Registry() *Registry {
	return h.registry
}

// Run drives the liveness sweep until ctx is cancelled, then tears down
// every remaining connection.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.sweep()
		case <-ctx.Done():
			slog.Info("Hub shutting down")
			h.Stop()
			return
		case <-h.ctx.Done():
			return
		}
	}
}

// Stop cancels the hub context and closes every open connection.
func (h *Hub) Stop() {
	h.cancel()
	for _, c := range h.snapshotClients() {
		h.disconnect(c)
	}
}

// Attach takes ownership of an upgraded connection and starts its pumps.
func (h *Hub) Attach(conn Conn) *Client {
	c := newClient(h, conn)

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	slog.Info("Connection attached", "clientID", c.id)

	go c.writePump()
	go c.readPump()
	return c
}

func (h *Hub) snapshotClients() []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	return clients
}

// disconnect runs the single teardown path shared by socket close, transport
// error and liveness eviction: registry cleanup, then the offline broadcast
// when the last connection of a user goes away. Idempotent per client.
func (h *Hub) disconnect(c *Client) {
	h.mu.Lock()
	_, tracked := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()

	c.teardown()

	if !tracked {
		return
	}

	user := c.currentUser()
	if user == nil {
		slog.Debug("Unauthenticated connection closed", "clientID", c.id)
		return
	}

	slog.Info("Connection closed", "clientID", c.id, "userID", user.ID)

	if wentOffline := h.registry.Unregister(user.ID, c); wentOffline {
		h.membership.Forget(user.ID)
		h.BroadcastGlobal(EventUserOffline, map[string]any{
			"userId":   user.ID,
			"username": user.Username,
		})
		h.notifyPresence(user.ID, false)
		h.publishEvent(Event{Type: EventUserOffline, UserID: user.ID, At: time.Now()})
	}
}

// dispatch decodes one inbound frame and routes it. Called from each
// connection's read pump; registry and membership guard their own state, so
// frames from different connections may interleave freely.
func (h *Hub) dispatch(c *Client, raw []byte) {
	in, err := DecodeInbound(raw)
	if err != nil {
		slog.Debug("Malformed frame", "clientID", c.id, "error", err)
		c.sendError("Invalid message format")
		return
	}

	if in.Type == MessageTypeAuthenticate {
		h.handleAuthenticate(c, in.Authenticate)
		return
	}

	if in.Type == MessageTypeUnknown {
		c.sendError("Unknown message type")
		return
	}

	if !c.authenticated() {
		c.sendError("Not authenticated")
		return
	}

	switch in.Type {
	case MessageTypeJoinChat:
		h.handleJoinChat(c, in.Room)
	case MessageTypeLeaveChat:
		h.handleLeaveChat(c, in.Room)
	case MessageTypeTypingStart:
		h.handleTyping(c, in.Room, EventUserTypingStart)
	case MessageTypeTypingStop:
		h.handleTyping(c, in.Room, EventUserTypingStop)
	case MessageTypeSubscribeStore:
		h.handleSubscribe(c, TopicStoreUpdates)
	case MessageTypeSubscribeAdmin:
		h.handleSubscribeAdmin(c)
	case MessageTypeOnlineUsers:
		h.handleOnlineUsers(c)
	case MessageTypeSetStatus:
		h.handleSetStatus(c, in.Status)
	case MessageTypeBroadcast:
		h.handleAdminBroadcast(c, in.Broadcast)
	}
}

func (h *Hub) notifyPresence(userID string, online bool) {
	if h.presence == nil {
		return
	}
	var err error
	if online {
		err = h.presence.UserOnline(h.ctx, userID)
	} else {
		err = h.presence.UserOffline(h.ctx, userID)
	}
	if err != nil {
		slog.Error("Presence mirror update failed", "userID", userID, "online", online, "error", err)
	}
}

func (h *Hub) publishEvent(event Event) {
	if h.events == nil {
		return
	}
	if err := h.events.Publish(event); err != nil {
		slog.Error("Event publish failed", "eventType", event.Type, "error", err)
	}
}
