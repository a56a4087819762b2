package server

import (
	"testing"
	"time"

	"github.com/jmorales-dev/nutrichat/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestClient_QueueEvent(t *testing.T) {
	c := &Client{
		user: types.User{Id: 1, Nombre: "test-user"},
		send: make(chan *ServerEvent, 1),
		stop: make(chan struct{}),
	}

	ev := NewMessageEvent(&types.Message{Id: 1, FromId: 1, ToId: 2, Mensaje: "hola"})

	assert.True(t, c.queueEvent(ev), "expected event to be queued")
	assert.Len(t, c.send, 1, "expected event in the send buffer")

	assert.False(t, c.queueEvent(ev), "expected queueing to fail on a full buffer")
	assert.Len(t, c.send, 1, "expected no second event in the send buffer")
}

func TestClient_StopClientIdempotent(t *testing.T) {
	c := NewClient(types.User{Id: 1}, nil, nil, nil)

	assert.NotPanics(t, func() {
		c.stopClient()
		c.stopClient()
	}, "expected repeated stops to be safe")

	select {
	case <-c.stop:
	default:
		t.Error("expected stop channel to be closed")
	}
}

func Test_serializeEvent(t *testing.T) {
	fecha := time.Date(2025, time.March, 14, 9, 26, 53, 0, time.UTC)
	ev := NewMessageEvent(&types.Message{
		Id:         7,
		FromId:     1,
		FromNombre: "ana",
		ToId:       0,
		Mensaje:    "hola a todos",
		Fecha:      fecha,
	})

	bytes, err := serializeEvent(ev)
	assert.NoError(t, err, "expected event to serialize")
	assert.JSONEq(t,
		`{"event":"nuevoMensaje","message":{"id":7,"fromId":1,"fromNombre":"ana","toId":0,"mensaje":"hola a todos","fecha":"2025-03-14T09:26:53Z"}}`,
		string(bytes),
		"expected the wire format clients listen for",
	)
}
