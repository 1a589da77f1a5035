package hub

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatchMalformedJSON(t *testing.T) {
	h, _ := newTestHub()
	c := connect(h)

	send(h, c, `{not json`)

	out := recv(t, c)
	assert.Equal(t, EventError, out.Type)
	assert.Equal(t, "Invalid message format", out.Message)
	assert.False(t, c.isClosed(), "connection stays open after a protocol error")
}

func TestDispatchUnknownType(t *testing.T) {
	h, _ := newTestHub()
	c := connect(h)

	send(h, c, `{"type":"launch_rocket","data":{}}`)

	out := recv(t, c)
	assert.Equal(t, EventError, out.Type)
	assert.Equal(t, "Unknown message type", out.Message)
}

func TestDispatchRequiresAuthentication(t *testing.T) {
	h, _ := newTestHub()
	c := connect(h)

	send(h, c, `{"type":"join_chat","data":{"chatId":"room-1"}}`)

	out := recv(t, c)
	assert.Equal(t, EventError, out.Type)
	assert.Equal(t, "Not authenticated", out.Message)
}

// Scenario: bob belongs to room-1 only. Joining room-2 is denied regardless
// of timing; joining room-1 succeeds.
func TestJoinChatMembershipGating(t *testing.T) {
	h, store := newTestHub()
	store.rooms["bob"] = []string{"room-1"}

	bob := connect(h)
	authenticate(t, h, bob, "bob-token")

	send(h, bob, `{"type":"join_chat","data":{"chatId":"room-2"}}`)
	out := recv(t, bob)
	assert.Equal(t, EventError, out.Type)
	assert.Equal(t, "Access denied to chat", out.Message)
	assert.Empty(t, bob.roomID())

	send(h, bob, `{"type":"join_chat","data":{"chatId":"room-1"}}`)
	out = recv(t, bob)
	assert.Equal(t, EventJoinedChat, out.Type)
	assert.Equal(t, "room-1", dataField(t, out, "chatId"))
	assert.Equal(t, "room-1", bob.roomID())
}

func TestLeaveChatClearsOnlyMatchingRoom(t *testing.T) {
	h, store := newTestHub()
	store.rooms["bob"] = []string{"room-1"}

	bob := connect(h)
	authenticate(t, h, bob, "bob-token")
	send(h, bob, `{"type":"join_chat","data":{"chatId":"room-1"}}`)
	recv(t, bob)

	send(h, bob, `{"type":"leave_chat","data":{"chatId":"room-9"}}`)
	out := recv(t, bob)
	assert.Equal(t, EventLeftChat, out.Type)
	assert.Equal(t, "room-1", bob.roomID(), "mismatched leave keeps the active room")

	send(h, bob, `{"type":"leave_chat","data":{"chatId":"room-1"}}`)
	recv(t, bob)
	assert.Empty(t, bob.roomID())
}

// Scenario: carol and dave share room-1; carol's typing indicator reaches
// dave but never echoes back to carol.
func TestTypingRelay(t *testing.T) {
	h, store := newTestHub()
	store.users["carol"] = &User{ID: "carol", Username: "carol", Role: "user"}
	store.users["dave"] = &User{ID: "dave", Username: "dave", Role: "user"}
	h.verifier.(*stubVerifier).subjects["carol-token"] = "carol"
	h.verifier.(*stubVerifier).subjects["dave-token"] = "dave"
	store.rooms["carol"] = []string{"room-1"}
	store.rooms["dave"] = []string{"room-1"}
	store.participants["room-1"] = []string{"carol", "dave"}

	carol := connect(h)
	authenticate(t, h, carol, "carol-token")
	dave := connect(h)
	authenticate(t, h, dave, "dave-token")
	recv(t, carol) // dave's user_online

	send(h, carol, `{"type":"join_chat","data":{"chatId":"room-1"}}`)
	recv(t, carol)
	send(h, dave, `{"type":"join_chat","data":{"chatId":"room-1"}}`)
	recv(t, dave)

	send(h, carol, `{"type":"typing_start","data":{"chatId":"room-1"}}`)

	out := recv(t, dave)
	assert.Equal(t, EventUserTypingStart, out.Type)
	assert.Equal(t, "carol", dataField(t, out, "userId"))
	assert.Equal(t, "room-1", dataField(t, out, "chatId"))
	recvNone(t, carol)

	send(h, carol, `{"type":"typing_stop","data":{"chatId":"room-1"}}`)
	out = recv(t, dave)
	assert.Equal(t, EventUserTypingStop, out.Type)
}

func TestTypingOutsideActiveRoomIsDropped(t *testing.T) {
	h, store := newTestHub()
	store.rooms["bob"] = []string{"room-1", "room-2"}
	store.participants["room-2"] = []string{"bob", "alice"}

	alice := connect(h)
	authenticate(t, h, alice, "alice-token")
	bob := connect(h)
	authenticate(t, h, bob, "bob-token")
	recv(t, alice) // bob's user_online

	send(h, bob, `{"type":"join_chat","data":{"chatId":"room-1"}}`)
	recv(t, bob)

	// bob is a member of room-2 but not currently in it.
	send(h, bob, `{"type":"typing_start","data":{"chatId":"room-2"}}`)
	recvNone(t, alice)
	recvNone(t, bob)
}

func TestSubscribeStoreUpdates(t *testing.T) {
	h, _ := newTestHub()
	bob := connect(h)
	authenticate(t, h, bob, "bob-token")

	send(h, bob, `{"type":"subscribe_store_updates"}`)

	out := recv(t, bob)
	assert.Equal(t, EventSubscribed, out.Type)
	assert.Equal(t, TopicStoreUpdates, dataField(t, out, "topic"))
	assert.True(t, bob.subscribedTo(TopicStoreUpdates))
}

func TestSubscribeAdminUpdatesRequiresAdminRole(t *testing.T) {
	h, _ := newTestHub()

	bob := connect(h)
	authenticate(t, h, bob, "bob-token")
	send(h, bob, `{"type":"subscribe_admin_updates"}`)
	out := recv(t, bob)
	assert.Equal(t, EventError, out.Type)
	assert.Equal(t, "Admin access required", out.Message)
	assert.False(t, bob.subscribedTo(TopicAdminUpdates))

	root := connect(h)
	authenticate(t, h, root, "root-token")
	recv(t, bob) // root's user_online
	send(h, root, `{"type":"subscribe_admin_updates"}`)
	out = recv(t, root)
	assert.Equal(t, EventSubscribed, out.Type)
	assert.True(t, root.subscribedTo(TopicAdminUpdates))
}

func TestRequestOnlineUsers(t *testing.T) {
	h, _ := newTestHub()

	alice := connect(h)
	authenticate(t, h, alice, "alice-token")
	bob := connect(h)
	authenticate(t, h, bob, "bob-token")
	recv(t, alice) // bob's user_online

	send(h, bob, `{"type":"request_online_users"}`)

	out := recv(t, bob)
	require.Equal(t, EventOnlineUsers, out.Type)
	assert.ElementsMatch(t, []any{"alice", "bob"}, dataField(t, out, "users"))
}

func TestSetStatusBroadcastsGlobally(t *testing.T) {
	h, _ := newTestHub()

	alice := connect(h)
	authenticate(t, h, alice, "alice-token")
	bob := connect(h)
	authenticate(t, h, bob, "bob-token")
	recv(t, alice) // bob's user_online

	send(h, bob, `{"type":"set_status","data":{"status":"away"}}`)

	assert.Equal(t, "away", bob.Status())

	out := recv(t, alice)
	assert.Equal(t, "user_away", out.Type)
	assert.Equal(t, "bob", dataField(t, out, "userId"))

	// set_status is a global broadcast; the sender hears it too.
	out = recv(t, bob)
	assert.Equal(t, "user_away", out.Type)
}

// The status value is constrained to the client-settable states, so a
// client cannot forge reserved presence events like user_offline.
func TestSetStatusRejectsUnknownStatus(t *testing.T) {
	h, _ := newTestHub()

	alice := connect(h)
	authenticate(t, h, alice, "alice-token")
	bob := connect(h)
	authenticate(t, h, bob, "bob-token")
	recv(t, alice) // bob's user_online

	send(h, bob, `{"type":"set_status","data":{"status":"offline"}}`)

	out := recv(t, bob)
	assert.Equal(t, EventError, out.Type)
	assert.Equal(t, "Invalid status", out.Message)
	assert.Equal(t, StatusOnline, bob.Status())
	assert.True(t, h.registry.IsOnline("bob"))
	recvNone(t, alice)

	send(h, bob, `{"type":"set_status","data":{"status":"busy"}}`)
	out = recv(t, alice)
	assert.Equal(t, "user_busy", out.Type)
	assert.Equal(t, StatusBusy, bob.Status())
	recv(t, bob) // global broadcast includes the sender
}

// Scenario: a non-admin broadcast frame is dropped without a reply; the
// admin path relays the event to every connection.
func TestAdminBroadcastGating(t *testing.T) {
	h, _ := newTestHub()

	alice := connect(h)
	authenticate(t, h, alice, "alice-token")
	bob := connect(h)
	authenticate(t, h, bob, "bob-token")
	recv(t, alice) // bob's user_online

	send(h, bob, `{"type":"broadcast","data":{"event":"maintenance","data":{"minutes":5}}}`)
	recvNone(t, alice)
	recvNone(t, bob)

	root := connect(h)
	authenticate(t, h, root, "root-token")
	recv(t, alice)
	recv(t, bob)

	send(h, root, `{"type":"broadcast","data":{"event":"maintenance","data":{"minutes":5}}}`)

	for _, c := range []*Client{alice, bob, root} {
		out := recv(t, c)
		assert.Equal(t, "maintenance", out.Type)
	}
}
