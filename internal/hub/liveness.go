package hub

import (
	"log/slog"
)

// sweep is one heartbeat pass over every open connection, authenticated or
// not. A connection that has not ponged since the previous pass is evicted
// through the normal disconnect path; the rest get their liveness flag
// cleared and a ping. A fresh connection therefore has one full interval to
// answer before eviction.
func (h *Hub) sweep() {
	for _, c := range h.snapshotClients() {
		if c.isClosed() {
			continue
		}
		if !c.sweepAlive() {
			slog.Info("Evicting unresponsive connection", "clientID", c.id, "userID", c.UserID())
			h.disconnect(c)
			continue
		}
		c.requestPing()
	}
}
