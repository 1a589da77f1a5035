package hub

import (
	"context"
	"sync"

	"log/slog"
)

// MembershipIndex caches, per user, the set of chat room ids the user
// participates in. The set is loaded once per authentication event and kept
// for the lifetime of the user's connections; it is deliberately not
// invalidated when membership changes elsewhere. A user added to a room
// mid-session sees it after reconnecting. Accepted staleness, not a bug.
type MembershipIndex struct {
	store Store

	mu    sync.RWMutex
	rooms map[string]map[string]struct{}
}

func NewMembershipIndex(store Store) *MembershipIndex {
	return &MembershipIndex{
		store: store,
		rooms: make(map[string]map[string]struct{}),
	}
}

// Load queries the store for all room ids the user currently participates in
// and replaces the cached set. A store failure degrades to an empty set so a
// flaky store never blocks the handshake.
func (m *MembershipIndex) Load(ctx context.Context, userID string) {
	roomIDs, err := m.store.GetRoomIDsForUser(ctx, userID)
	if err != nil {
		slog.Error("Failed to load room membership", "userID", userID, "error", err)
		roomIDs = nil
	}

	set := make(map[string]struct{}, len(roomIDs))
	for _, id := range roomIDs {
		set[id] = struct{}{}
	}

	m.mu.Lock()
	m.rooms[userID] = set
	m.mu.Unlock()
}

// CanJoin reports whether roomID is in the user's loaded membership set.
func (m *MembershipIndex) CanJoin(userID, roomID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	set, ok := m.rooms[userID]
	if !ok {
		return false
	}
	_, ok = set[roomID]
	return ok
}

// Forget drops the cached set once the user's last connection is gone.
func (m *MembershipIndex) Forget(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rooms, userID)
}
