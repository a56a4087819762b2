package types

import (
	"fmt"
	"time"
)

const (
	RoleNutricionista = "nutricionista"
	RolePaciente      = "paciente"
)

type User struct {
	Id        int       `json:"id"`
	Nombre    string    `json:"nombre"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

type Message struct {
	Id         int       `json:"id"`
	FromId     int       `json:"fromId"`
	FromNombre string    `json:"fromNombre"`
	ToId       int       `json:"toId"`
	Mensaje    string    `json:"mensaje"`
	Archivo    string    `json:"archivo,omitempty"`
	Fecha      time.Time `json:"fecha"`
}

type Video struct {
	Id        int       `json:"id"`
	UserId    int       `json:"user_id"`
	Titulo    string    `json:"titulo"`
	Url       string    `json:"url"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

type Goal struct {
	Id          int       `json:"id"`
	UserId      int       `json:"user_id"`
	Descripcion string    `json:"descripcion"`
	Completada  bool      `json:"completada"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

// BroadcastWireId is the reserved recipient id shared by all identities.
// It only exists at the wire boundary; everywhere else a Recipient is used.
const BroadcastWireId = 0

// Recipient is the addressing target of a message: either the direct
// channel with a single user or the broadcast channel.
type Recipient struct {
	userId    int
	broadcast bool
}

func Direct(userId int) Recipient {
	return Recipient{userId: userId}
}

func Broadcast() Recipient {
	return Recipient{broadcast: true}
}

// ParseRecipient decodes the wire integer into a Recipient. The zero
// sentinel means broadcast; negative ids are rejected.
func ParseRecipient(wireId int) (Recipient, error) {
	if wireId < 0 {
		return Recipient{}, fmt.Errorf("invalid recipient id %d", wireId)
	}
	if wireId == BroadcastWireId {
		return Broadcast(), nil
	}
	return Direct(wireId), nil
}

func (r Recipient) IsBroadcast() bool {
	return r.broadcast
}

// UserId returns the peer id of a direct recipient. It is zero for the
// broadcast channel.
func (r Recipient) UserId() int {
	if r.broadcast {
		return 0
	}
	return r.userId
}

func (r Recipient) WireId() int {
	if r.broadcast {
		return BroadcastWireId
	}
	return r.userId
}
