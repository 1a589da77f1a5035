package hub

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryMultiplicity(t *testing.T) {
	r := NewRegistry()
	h := NewHub(&stubVerifier{}, newStubStore(), nil, nil)

	c1 := newClient(h, newMockConn())
	c2 := newClient(h, newMockConn())
	c3 := newClient(h, newMockConn())

	assert.True(t, r.Register("alice", c1), "first connection should report first=true")
	assert.False(t, r.Register("alice", c2))
	assert.False(t, r.Register("alice", c3))
	assert.True(t, r.IsOnline("alice"))

	assert.False(t, r.Unregister("alice", c1))
	assert.True(t, r.IsOnline("alice"))
	assert.False(t, r.Unregister("alice", c2))
	assert.True(t, r.IsOnline("alice"))

	// Exactly one offline signal, on the last unregister.
	assert.True(t, r.Unregister("alice", c3))
	assert.False(t, r.IsOnline("alice"))
}

func TestRegistryRegisterIdempotent(t *testing.T) {
	r := NewRegistry()
	h := NewHub(&stubVerifier{}, newStubStore(), nil, nil)
	c := newClient(h, newMockConn())

	r.Register("alice", c)
	r.Register("alice", c)

	require.Len(t, r.Connections("alice"), 1)
	assert.True(t, r.Unregister("alice", c), "single unregister should empty the set")
}

func TestRegistryNeverHoldsEmptySet(t *testing.T) {
	r := NewRegistry()
	h := NewHub(&stubVerifier{}, newStubStore(), nil, nil)
	c := newClient(h, newMockConn())

	r.Register("alice", c)
	r.Unregister("alice", c)

	assert.Empty(t, r.OnlineUserIDs())
	assert.False(t, r.IsOnline("alice"))
}

func TestRegistryUnknownUnregisterIsNoop(t *testing.T) {
	r := NewRegistry()
	h := NewHub(&stubVerifier{}, newStubStore(), nil, nil)
	c := newClient(h, newMockConn())

	assert.False(t, r.Unregister("ghost", c))
}

func TestRegistrySnapshots(t *testing.T) {
	r := NewRegistry()
	h := NewHub(&stubVerifier{}, newStubStore(), nil, nil)

	a1 := newClient(h, newMockConn())
	a2 := newClient(h, newMockConn())
	b1 := newClient(h, newMockConn())

	r.Register("alice", a1)
	r.Register("alice", a2)
	r.Register("bob", b1)

	assert.ElementsMatch(t, []string{"alice", "bob"}, r.OnlineUserIDs())
	assert.ElementsMatch(t, []*Client{a1, a2}, r.Connections("alice"))
	assert.Len(t, r.All(), 3)
}
