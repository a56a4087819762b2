package database

import "time"

type User struct {
	Id           int
	Nombre       string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// Message mirrors a row of the mensajes table. FromId is zero when the
// sending account has been deleted (from_id is NULL). ToId carries the
// wire encoding: zero means broadcast.
type Message struct {
	Id         int
	FromId     int
	FromNombre string
	ToId       int
	Mensaje    string
	Archivo    string
	Fecha      time.Time
}

type Video struct {
	Id        int
	UserId    int
	Titulo    string
	Url       string
	CreatedAt time.Time
}

type Goal struct {
	Id          int
	UserId      int
	Descripcion string
	Completada  bool
	CreatedAt   time.Time
}

type CreateUserParams struct {
	Nombre       string
	PasswordHash string
	Role         string
}

type CreateMessageParams struct {
	FromId  int
	ToId    int
	Mensaje string
	Archivo string
}

type CreateVideoParams struct {
	UserId int
	Titulo string
	Url    string
}

type CreateGoalParams struct {
	UserId      int
	Descripcion string
}
