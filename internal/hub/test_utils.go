package hub

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// mockConn implements the Conn interface for tests that drive the hub
// without a real socket.
type mockConn struct {
	mu       sync.Mutex
	written  [][]byte
	pings    int
	closed   bool
	readCh   chan []byte
	closeErr error
}

func newMockConn() *mockConn {
	return &mockConn{
		readCh:   make(chan []byte),
		closeErr: errors.New("connection closed"),
	}
}

func (m *mockConn) ReadMessage() (int, []byte, error) {
	data, ok := <-m.readCh
	if !ok {
		return 0, nil, m.closeErr
	}
	return 1, data, nil
}

func (m *mockConn) WriteMessage(messageType int, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return m.closeErr
	}
	if messageType == websocket.PingMessage {
		m.pings++
		return nil
	}
	m.written = append(m.written, data)
	return nil
}

func (m *mockConn) SetReadLimit(int64) {}

func (m *mockConn) SetWriteDeadline(time.Time) error { return nil }

func (m *mockConn) SetPongHandler(func(string) error) {}

func (m *mockConn) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockConn) isConnClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// stubVerifier resolves fixed tokens to subject ids.
type stubVerifier struct {
	subjects map[string]string
}

func (v *stubVerifier) Verify(token string) (string, error) {
	if subject, ok := v.subjects[token]; ok {
		return subject, nil
	}
	return "", errors.New("invalid token")
}

// stubStore is an in-memory Store with a failure switch for the degradation
// paths.
type stubStore struct {
	mu           sync.Mutex
	users        map[string]*User
	rooms        map[string][]string // userID -> room ids
	participants map[string][]string // roomID -> user ids
	fail         bool
}

func newStubStore() *stubStore {
	return &stubStore{
		users:        make(map[string]*User),
		rooms:        make(map[string][]string),
		participants: make(map[string][]string),
	}
}

func (s *stubStore) GetUserByID(_ context.Context, id string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return nil, errors.New("store unavailable")
	}
	return s.users[id], nil
}

func (s *stubStore) GetRoomIDsForUser(_ context.Context, userID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return nil, errors.New("store unavailable")
	}
	return s.rooms[userID], nil
}

func (s *stubStore) GetParticipantsOfRoom(_ context.Context, roomID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return nil, errors.New("store unavailable")
	}
	return s.participants[roomID], nil
}

func (s *stubStore) setFail(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = fail
}

// recordingNotifier counts presence transitions.
type recordingNotifier struct {
	mu      sync.Mutex
	online  []string
	offline []string
}

func (n *recordingNotifier) UserOnline(_ context.Context, userID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.online = append(n.online, userID)
	return nil
}

func (n *recordingNotifier) UserOffline(_ context.Context, userID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.offline = append(n.offline, userID)
	return nil
}

// recordingPublisher captures audit events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *recordingPublisher) Publish(event Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}
