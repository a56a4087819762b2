package server

import (
	"testing"

	"github.com/jmorales-dev/nutrichat/internal/types"
	"github.com/stretchr/testify/assert"
)

func newRegistryClient(userId int) *Client {
	return &Client{
		user: types.User{Id: userId, Nombre: "test-user"},
		send: make(chan *ServerEvent, 1),
		stop: make(chan struct{}),
	}
}

func TestRegistry_RegisterUnregister(t *testing.T) {
	r := NewRegistry()

	c1 := newRegistryClient(1)
	c2 := newRegistryClient(1)
	c3 := newRegistryClient(2)

	r.Register(c1)
	r.Register(c2)
	r.Register(c3)

	assert.Len(t, r.SessionsFor(1), 2, "expected two sessions for user 1")
	assert.Len(t, r.SessionsFor(2), 1, "expected one session for user 2")
	assert.Equal(t, 3, r.Len(), "expected three sessions in total")
	assert.Len(t, r.All(), 3, "expected All to return every session")

	r.Unregister(c1)
	assert.Len(t, r.SessionsFor(1), 1, "expected one session left for user 1")
	assert.Equal(t, 2, r.Len(), "expected two sessions after unregister")

	r.Unregister(c2)
	r.Unregister(c3)
	assert.Empty(t, r.SessionsFor(1), "expected no sessions left for user 1")
	assert.Zero(t, r.Len(), "expected empty registry")
}

func TestRegistry_RegisterIdempotent(t *testing.T) {
	r := NewRegistry()
	c := newRegistryClient(1)

	r.Register(c)
	r.Register(c)

	assert.Len(t, r.SessionsFor(1), 1, "expected double registration to count once")
}

func TestRegistry_UnregisterUnknownClient(t *testing.T) {
	r := NewRegistry()

	assert.NotPanics(t, func() {
		r.Unregister(newRegistryClient(1))
	}, "expected unregistering an unknown session to be a no-op")
	assert.Zero(t, r.Len(), "expected registry to stay empty")
}

func TestRegistry_SessionsForUnknownUser(t *testing.T) {
	r := NewRegistry()

	sessions := r.SessionsFor(99)
	assert.NotNil(t, sessions, "expected an empty slice, not nil")
	assert.Empty(t, sessions, "expected no sessions for unknown user")
}
