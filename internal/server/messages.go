package server

import (
	"encoding/json"
	"time"

	"github.com/jmorales-dev/nutrichat/internal/types"
)

// EventNewMessage is the event name clients listen for; it is kept from
// the web client's wire contract.
const EventNewMessage = "nuevoMensaje"

type ServerEvent struct {
	Event   string         `json:"event"`
	Message *types.Message `json:"message,omitempty"`
}

func NewMessageEvent(msg *types.Message) *ServerEvent {
	return &ServerEvent{
		Event:   EventNewMessage,
		Message: msg,
	}
}

func serializeEvent(e *ServerEvent) ([]byte, error) {
	return json.Marshal(e)
}

func Now() time.Time {
	return time.Now().UTC().Round(time.Millisecond)
}
