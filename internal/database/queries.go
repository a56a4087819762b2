package database

import (
	"database/sql"
	"errors"
	"time"
)

// ErrEmptyMessage is returned when a message has neither a body nor an
// attachment. The CHECK constraint enforces the same invariant in the
// schema; validating here keeps the row out of the database entirely.
var ErrEmptyMessage = errors.New("message body and attachment are both empty")

const deletedUserNombre = "(eliminado)"

const messageColumns = `m.id, m.from_id, COALESCE(u.nombre, '` + deletedUserNombre + `'), m.to_id, m.mensaje, m.archivo, m.fecha`

func (db *PgNutriChatRepository) CreateUser(params CreateUserParams) (User, error) {
	res := db.conn.QueryRow(
		"INSERT INTO users (nombre, password_hash, role, created_at) "+
			"VALUES ($1, $2, $3, $4) RETURNING id, nombre, role, created_at",
		params.Nombre,
		params.PasswordHash,
		params.Role,
		time.Now().UTC(),
	)

	var u User
	err := res.Scan(
		&u.Id,
		&u.Nombre,
		&u.Role,
		&u.CreatedAt,
	)

	return u, err
}

func (db *PgNutriChatRepository) GetUserById(id int) (User, error) {
	row := db.conn.QueryRow(
		"SELECT id, nombre, password_hash, role, created_at FROM users "+
			"WHERE id = $1 LIMIT 1",
		id,
	)

	var u User
	err := row.Scan(
		&u.Id,
		&u.Nombre,
		&u.PasswordHash,
		&u.Role,
		&u.CreatedAt,
	)

	return u, err
}

func (db *PgNutriChatRepository) GetUserByNombre(nombre string) (User, error) {
	row := db.conn.QueryRow(
		"SELECT id, nombre, password_hash, role, created_at FROM users "+
			"WHERE LOWER(nombre) = LOWER($1) LIMIT 1",
		nombre,
	)

	var u User
	err := row.Scan(
		&u.Id,
		&u.Nombre,
		&u.PasswordHash,
		&u.Role,
		&u.CreatedAt,
	)

	return u, err
}

func (db *PgNutriChatRepository) ListUsers() ([]User, error) {
	rows, err := db.conn.Query(
		"SELECT id, nombre, role, created_at FROM users ORDER BY id DESC",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users = make([]User, 0)
	for rows.Next() {
		var u User
		if err = rows.Scan(&u.Id, &u.Nombre, &u.Role, &u.CreatedAt); err != nil {
			break
		}

		users = append(users, u)
	}

	return users, err
}

// DeleteUser removes the account. Sent messages are kept with a NULL
// sender so the other participant's history survives.
func (db *PgNutriChatRepository) DeleteUser(id int) error {
	res, err := db.conn.Exec("DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (db *PgNutriChatRepository) CreateMessage(params CreateMessageParams) (Message, error) {
	if params.Mensaje == "" && params.Archivo == "" {
		return Message{}, ErrEmptyMessage
	}

	var archivo any
	if params.Archivo != "" {
		archivo = params.Archivo
	}

	res := db.conn.QueryRow(
		"INSERT INTO mensajes (from_id, to_id, mensaje, archivo) "+
			"VALUES ($1, $2, $3, $4) RETURNING id, fecha",
		params.FromId,
		params.ToId,
		params.Mensaje,
		archivo,
	)

	msg := Message{
		FromId:  params.FromId,
		ToId:    params.ToId,
		Mensaje: params.Mensaje,
		Archivo: params.Archivo,
	}
	err := res.Scan(&msg.Id, &msg.Fecha)

	return msg, err
}

func (db *PgNutriChatRepository) BroadcastMessages() ([]Message, error) {
	rows, err := db.conn.Query(
		"SELECT "+messageColumns+" FROM mensajes m "+
			"LEFT JOIN users u ON m.from_id = u.id "+
			"WHERE m.to_id = 0 ORDER BY m.fecha, m.id",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMessages(rows)
}

func (db *PgNutriChatRepository) DirectMessages(userId, peerId int) ([]Message, error) {
	rows, err := db.conn.Query(
		"SELECT "+messageColumns+" FROM mensajes m "+
			"LEFT JOIN users u ON m.from_id = u.id "+
			"WHERE (m.from_id = $1 AND m.to_id = $2) OR (m.from_id = $2 AND m.to_id = $1) "+
			"ORDER BY m.fecha, m.id",
		userId,
		peerId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMessages(rows)
}

func scanMessages(rows *sql.Rows) ([]Message, error) {
	var messages = make([]Message, 0)
	for rows.Next() {
		var (
			msg     Message
			fromId  sql.NullInt64
			archivo sql.NullString
		)
		if err := rows.Scan(&msg.Id, &fromId, &msg.FromNombre, &msg.ToId, &msg.Mensaje, &archivo, &msg.Fecha); err != nil {
			return nil, err
		}

		msg.FromId = int(fromId.Int64)
		msg.Archivo = archivo.String
		messages = append(messages, msg)
	}

	return messages, rows.Err()
}

func (db *PgNutriChatRepository) CreateVideo(params CreateVideoParams) (Video, error) {
	res := db.conn.QueryRow(
		"INSERT INTO videos (user_id, titulo, url, created_at) "+
			"VALUES ($1, $2, $3, $4) RETURNING id, user_id, titulo, url, created_at",
		params.UserId,
		params.Titulo,
		params.Url,
		time.Now().UTC(),
	)

	var v Video
	err := res.Scan(&v.Id, &v.UserId, &v.Titulo, &v.Url, &v.CreatedAt)

	return v, err
}

func (db *PgNutriChatRepository) ListVideos(userId int) ([]Video, error) {
	rows, err := db.conn.Query(
		"SELECT id, user_id, titulo, url, created_at FROM videos "+
			"WHERE user_id = $1 ORDER BY id",
		userId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var videos = make([]Video, 0)
	for rows.Next() {
		var v Video
		if err = rows.Scan(&v.Id, &v.UserId, &v.Titulo, &v.Url, &v.CreatedAt); err != nil {
			break
		}

		videos = append(videos, v)
	}

	return videos, err
}

func (db *PgNutriChatRepository) DeleteVideo(id int) error {
	res, err := db.conn.Exec("DELETE FROM videos WHERE id = $1", id)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (db *PgNutriChatRepository) CreateGoal(params CreateGoalParams) (Goal, error) {
	res := db.conn.QueryRow(
		"INSERT INTO metas (user_id, descripcion, created_at) "+
			"VALUES ($1, $2, $3) RETURNING id, user_id, descripcion, completada, created_at",
		params.UserId,
		params.Descripcion,
		time.Now().UTC(),
	)

	var g Goal
	err := res.Scan(&g.Id, &g.UserId, &g.Descripcion, &g.Completada, &g.CreatedAt)

	return g, err
}

func (db *PgNutriChatRepository) ListGoals(userId int) ([]Goal, error) {
	rows, err := db.conn.Query(
		"SELECT id, user_id, descripcion, completada, created_at FROM metas "+
			"WHERE user_id = $1 ORDER BY id",
		userId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var goals = make([]Goal, 0)
	for rows.Next() {
		var g Goal
		if err = rows.Scan(&g.Id, &g.UserId, &g.Descripcion, &g.Completada, &g.CreatedAt); err != nil {
			break
		}

		goals = append(goals, g)
	}

	return goals, err
}

// CompleteGoal marks the goal done. A non-zero ownerId restricts the
// update to goals belonging to that user; zero means no restriction.
func (db *PgNutriChatRepository) CompleteGoal(id, ownerId int) (Goal, error) {
	res := db.conn.QueryRow(
		"UPDATE metas SET completada = TRUE WHERE id = $1 AND ($2 = 0 OR user_id = $2) "+
			"RETURNING id, user_id, descripcion, completada, created_at",
		id,
		ownerId,
	)

	var g Goal
	err := res.Scan(&g.Id, &g.UserId, &g.Descripcion, &g.Completada, &g.CreatedAt)

	return g, err
}

func (db *PgNutriChatRepository) DeleteGoal(id int) error {
	res, err := db.conn.Exec("DELETE FROM metas WHERE id = $1", id)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}

	return nil
}
