package hub

import "sync"

// Registry maps an authenticated user id to the set of live connections that
// user currently holds (multiple tabs/devices). It owns only the mapping;
// broadcasting on state transitions is the caller's responsibility so the
// registry stays testable in isolation.
//
// Invariant: the registry never holds an empty connection set. Removing the
// last connection deletes the user key, and that deletion is the "user went
// offline" signal.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]map[*Client]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[string]map[*Client]struct{}),
	}
}

// Register adds client to the set for userID, creating the set if absent.
// Idempotent for the same client. Returns true when this is the user's first
// live connection.
func (r *Registry) Register(userID string, client *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.conns[userID]
	if !ok {
		set = make(map[*Client]struct{})
		r.conns[userID] = set
	}
	set[client] = struct{}{}
	return !ok
}

// Unregister removes client from the set for userID. Returns true when the
// set emptied, i.e. the user has gone offline. Unknown pairs are a no-op.
func (r *Registry) Unregister(userID string, client *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.conns[userID]
	if !ok {
		return false
	}
	if _, ok := set[client]; !ok {
		return false
	}
	delete(set, client)
	if len(set) == 0 {
		delete(r.conns, userID)
		return true
	}
	return false
}

// IsOnline reports whether a non-empty connection set exists for userID.
func (r *Registry) IsOnline(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.conns[userID]
	return ok
}

// OnlineUserIDs returns a snapshot of all user ids with at least one live
// connection.
func (r *Registry) OnlineUserIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.conns))
	for userID := range r.conns {
		ids = append(ids, userID)
	}
	return ids
}

// Connections returns a snapshot of the live connections owned by userID.
func (r *Registry) Connections(userID string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.conns[userID]
	clients := make([]*Client, 0, len(set))
	for client := range set {
		clients = append(clients, client)
	}
	return clients
}

// All returns a snapshot of every registered connection.
func (r *Registry) All() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clients := make([]*Client, 0)
	for _, set := range r.conns {
		for client := range set {
			clients = append(clients, client)
		}
	}
	return clients
}
