package hub

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	// Outgoing frame buffer per connection
	sendBufferSize = 256
)

var ErrClientDisconnected = fmt.Errorf("client disconnected")

// Conn is the slice of *websocket.Conn the hub needs. Kept as an interface
// so the connection state machine is testable without a real socket.
type Conn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	SetReadLimit(limit int64)
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(string) error)
	Close() error
}

// User is the record a credential resolves to.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// IsAdmin reports whether the user may use admin-only frame types.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == "admin"
}

// Client is one live socket session. All mutable state lives here, owned by
// the hub, never on the transport handle. A client is either unauthenticated
// (nil user, no room access) or authenticated (user set, membership loaded).
type Client struct {
	id   string
	hub  *Hub
	conn Conn

	send     chan []byte
	pingReq  chan struct{}
	closed   int32 // atomic; set once on teardown
	alive    int32 // atomic; cleared by the liveness sweep, set by pong
	stopOnce sync.Once
	done     chan struct{}

	mu            sync.RWMutex
	user          *User
	currentRoomID string
	subscriptions map[string]bool
	status        string
}

func newClient(h *Hub, conn Conn) *Client {
	return &Client{
		id:            uuid.New().String(),
		hub:           h,
		conn:          conn,
		send:          make(chan []byte, sendBufferSize),
		pingReq:       make(chan struct{}, 1),
		alive:         1,
		done:          make(chan struct{}),
		subscriptions: make(map[string]bool),
		status:        StatusOnline,
	}
}

func (c *Client) ID() string {
	return c.id
}

// UserID returns the owning user's id, or "" before authentication.
func (c *Client) UserID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.user == nil {
		return ""
	}
	return c.user.ID
}

func (c *Client) currentUser() *User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.user
}

func (c *Client) authenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.user != nil
}

func (c *Client) setUser(u *User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = u
}

func (c *Client) roomID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.currentRoomID
}

func (c *Client) setRoomID(roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentRoomID = roomID
}

// clearRoomID resets the active room only when it still matches roomID.
func (c *Client) clearRoomID(roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.currentRoomID == roomID {
		c.currentRoomID = ""
	}
}

func (c *Client) subscribe(topic string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscriptions[topic] = true
}

func (c *Client) subscribedTo(topic string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.subscriptions[topic]
}

func (c *Client) setStatus(status string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = status
}

func (c *Client) Status() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

func (c *Client) isClosed() bool {
	return atomic.LoadInt32(&c.closed) == 1
}

// markAlive is called from the pong handler.
func (c *Client) markAlive() {
	atomic.StoreInt32(&c.alive, 1)
}

// sweepAlive clears the liveness flag and reports whether the client had
// responded since the previous sweep.
func (c *Client) sweepAlive() bool {
	return atomic.SwapInt32(&c.alive, 0) == 1
}

// enqueue hands a pre-serialized frame to the write pump. Delivery is
// best-effort: a closed client or a full buffer drops the frame.
func (c *Client) enqueue(frame []byte) error {
	if c.isClosed() {
		return ErrClientDisconnected
	}
	select {
	case c.send <- frame:
		return nil
	case <-c.done:
		return ErrClientDisconnected
	default:
		slog.Warn("Send buffer full, dropping frame", "clientID", c.id, "userID", c.UserID())
		return ErrClientDisconnected
	}
}

// Send serializes and enqueues one frame for this client.
func (c *Client) Send(msg *Outbound) error {
	data, err := msg.Encode()
	if err != nil {
		return err
	}
	return c.enqueue(data)
}

func (c *Client) sendError(message string) {
	c.Send(NewError(message))
}

// requestPing asks the write pump to emit a ping control frame. Coalesces
// when a previous request is still pending.
func (c *Client) requestPing() {
	select {
	case c.pingReq <- struct{}{}:
	default:
	}
}

// teardown marks the client closed and closes the underlying socket. Safe to
// call from both the read pump exit and the liveness sweep.
func (c *Client) teardown() {
	c.stopOnce.Do(func() {
		atomic.StoreInt32(&c.closed, 1)
		close(c.done)
		if err := c.conn.Close(); err != nil {
			slog.Debug("Error closing connection", "clientID", c.id, "error", err)
		}
	})
}

func (c *Client) readPump() {
	defer func() {
		c.hub.disconnect(c)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetPongHandler(func(string) error {
		c.markAlive()
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Error("WebSocket read error", "clientID", c.id, "userID", c.UserID(), "error", err)
			} else {
				slog.Debug("WebSocket connection closed", "clientID", c.id, "userID", c.UserID())
			}
			return
		}
		c.hub.dispatch(c, raw)
	}
}

func (c *Client) writePump() {
	for {
		select {
		case frame, ok := <-c.send:
			if !ok {
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				slog.Debug("Write error", "clientID", c.id, "error", err)
				c.teardown()
				return
			}

		case <-c.pingReq:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				slog.Debug("Ping error", "clientID", c.id, "error", err)
				c.teardown()
				return
			}

		case <-c.done:
			return
		}
	}
}
