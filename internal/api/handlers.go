package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/jmorales-dev/nutrichat/internal/database"
	"github.com/jmorales-dev/nutrichat/internal/server"
	"github.com/jmorales-dev/nutrichat/internal/types"
)

const unknownSenderNombre = "Desconocido"

type LoginRequest struct {
	Nombre   string `json:"nombre"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
	Id    int    `json:"id"`
	Role  string `json:"role"`
}

type CreateUserRequest struct {
	Nombre   string `json:"nombre"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type SendMessageRequest struct {
	ToId    int    `json:"toId"`
	Mensaje string `json:"mensaje"`
}

type AckResponse struct {
	Ok bool `json:"ok"`
}

type VerifyTokenResponse struct {
	Ok   bool   `json:"ok"`
	Id   int    `json:"id"`
	Role string `json:"role"`
}

type CreateVideoRequest struct {
	UserId int    `json:"user_id"`
	Titulo string `json:"titulo"`
	Url    string `json:"url"`
}

type CreateGoalRequest struct {
	UserId      int    `json:"user_id"`
	Descripcion string `json:"descripcion"`
}

func (s *NutriChatApp) writeJson(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if v == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Printf("json encode: %v", err)
	}
}

func (s *NutriChatApp) healthCheck(w http.ResponseWriter, _ *http.Request) {
	if err := s.db.Ping(); err != nil {
		s.log.Println("health check:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *NutriChatApp) login(w http.ResponseWriter, r *http.Request) {
	var lr LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&lr); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if lr.Nombre == "" || lr.Password == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	dbUser, err := s.db.GetUserByNombre(lr.Nombre)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if !verifyPassword(dbUser.PasswordHash, lr.Password) {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	token, err := s.createToken(dbUser.Id, dbUser.Role, tokenValidity)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, LoginResponse{
		Token: token,
		Id:    dbUser.Id,
		Role:  dbUser.Role,
	})
}

func (s *NutriChatApp) createUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if req.Nombre == "" || req.Password == "" || req.Role == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if req.Role != types.RoleNutricionista && req.Role != types.RolePaciente {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if _, err := s.db.GetUserByNombre(req.Nombre); err == nil {
		// name already taken
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	} else if !errors.Is(err, sql.ErrNoRows) {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	pwdHash, err := hashPassword(req.Password)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	newUser, err := s.db.CreateUser(database.CreateUserParams{
		Nombre:       req.Nombre,
		PasswordHash: pwdHash,
		Role:         req.Role,
	})
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusCreated, types.User{
		Id:        newUser.Id,
		Nombre:    newUser.Nombre,
		Role:      newUser.Role,
		CreatedAt: newUser.CreatedAt,
	})
}

func (s *NutriChatApp) listUsers(w http.ResponseWriter, _ *http.Request) {
	dbUsers, err := s.db.ListUsers()
	if err != nil {
		s.log.Println("list users:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	users := make([]types.User, 0, len(dbUsers))
	for _, u := range dbUsers {
		users = append(users, types.User{
			Id:        u.Id,
			Nombre:    u.Nombre,
			Role:      u.Role,
			CreatedAt: u.CreatedAt,
		})
	}

	s.writeJson(w, http.StatusOK, users)
}

func (s *NutriChatApp) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.db.DeleteUser(id); err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusNoContent, nil)
}

func (s *NutriChatApp) verifyTokenStatus(w http.ResponseWriter, r *http.Request) {
	ident, ok := IdentityFrom(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, VerifyTokenResponse{
		Ok:   true,
		Id:   ident.Id,
		Role: ident.Role,
	})
}

// sendMessage accepts a JSON body or, when an attachment rides along, a
// multipart form. The message is persisted first; realtime delivery only
// happens once the row is durable.
func (s *NutriChatApp) sendMessage(w http.ResponseWriter, r *http.Request) {
	ident, ok := IdentityFrom(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var (
		toId    int
		mensaje string
		archivo string
	)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxAttachmentSize); err != nil {
			errResp := NewBadRequestError()
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}

		var err error
		if toIdStr := r.FormValue("toId"); toIdStr != "" {
			toId, err = strconv.Atoi(toIdStr)
			if err != nil {
				errResp := NewBadRequestError()
				s.writeJson(w, errResp.StatusCode, errResp)
				return
			}
		}

		mensaje = r.FormValue("mensaje")
		if mensaje == "" {
			mensaje = r.FormValue("mensajeGrupal")
		}

		archivo, err = s.saveAttachment(r)
		if err != nil {
			var errResp *ApiError
			if errors.Is(err, errUnsupportedFileType) {
				errResp = NewBadRequestError()
			} else {
				s.log.Println("save attachment:", err)
				errResp = NewInternalServerError(err)
			}
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}
	} else {
		var req SendMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errResp := NewBadRequestError()
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}
		toId = req.ToId
		mensaje = req.Mensaje
	}

	recipient, err := types.ParseRecipient(toId)
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if mensaje == "" && archivo == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	dbMsg, err := s.db.CreateMessage(database.CreateMessageParams{
		FromId:  ident.Id,
		ToId:    recipient.WireId(),
		Mensaje: mensaje,
		Archivo: archivo,
	})
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, database.ErrEmptyMessage) {
			errResp = NewBadRequestError()
		} else {
			s.log.Println("create message:", err)
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	fromNombre := unknownSenderNombre
	if sender, err := s.db.GetUserById(ident.Id); err == nil {
		fromNombre = sender.Nombre
	} else {
		s.log.Println("resolve sender name:", err)
	}

	s.cs.Deliver(&types.Message{
		Id:         dbMsg.Id,
		FromId:     dbMsg.FromId,
		FromNombre: fromNombre,
		ToId:       dbMsg.ToId,
		Mensaje:    dbMsg.Mensaje,
		Archivo:    dbMsg.Archivo,
		Fecha:      dbMsg.Fecha,
	})

	s.writeJson(w, http.StatusOK, AckResponse{Ok: true})
}

func (s *NutriChatApp) chatHistory(w http.ResponseWriter, r *http.Request) {
	ident, ok := IdentityFrom(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	toId, err := strconv.Atoi(r.PathValue("toId"))
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	recipient, err := types.ParseRecipient(toId)
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var dbMsgs []database.Message
	if recipient.IsBroadcast() {
		dbMsgs, err = s.db.BroadcastMessages()
	} else {
		dbMsgs, err = s.db.DirectMessages(ident.Id, recipient.UserId())
	}
	if err != nil {
		s.log.Println("chat history:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	messages := make([]types.Message, 0, len(dbMsgs))
	for _, m := range dbMsgs {
		messages = append(messages, types.Message{
			Id:         m.Id,
			FromId:     m.FromId,
			FromNombre: m.FromNombre,
			ToId:       m.ToId,
			Mensaje:    m.Mensaje,
			Archivo:    m.Archivo,
			Fecha:      m.Fecha,
		})
	}

	s.writeJson(w, http.StatusOK, messages)
}

func (s *NutriChatApp) serveWs(w http.ResponseWriter, r *http.Request) {
	ident, ok := IdentityFrom(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	user, err := s.db.GetUserById(ident.Id)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}

			return slices.Contains(s.allowedOrigins, origin)
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Println("error upgrading connection:", err)
		return
	}

	client := server.NewClient(types.User{
		Id:        user.Id,
		Nombre:    user.Nombre,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}, conn, s.cs, s.log)

	s.cs.RegisterClient(client)
	go client.Write()
	go client.Read()
}

func (s *NutriChatApp) createVideo(w http.ResponseWriter, r *http.Request) {
	var req CreateVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if req.UserId <= 0 || req.Titulo == "" || req.Url == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	video, err := s.db.CreateVideo(database.CreateVideoParams{
		UserId: req.UserId,
		Titulo: req.Titulo,
		Url:    req.Url,
	})
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusCreated, types.Video{
		Id:        video.Id,
		UserId:    video.UserId,
		Titulo:    video.Titulo,
		Url:       video.Url,
		CreatedAt: video.CreatedAt,
	})
}

func (s *NutriChatApp) listVideos(w http.ResponseWriter, r *http.Request) {
	ident, ok := IdentityFrom(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	userId, err := strconv.Atoi(r.PathValue("userId"))
	if err != nil || userId <= 0 {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	// patients only see their own videos
	if ident.Role != types.RoleNutricionista && ident.Id != userId {
		errResp := NewForbiddenError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	dbVideos, err := s.db.ListVideos(userId)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	videos := make([]types.Video, 0, len(dbVideos))
	for _, v := range dbVideos {
		videos = append(videos, types.Video{
			Id:        v.Id,
			UserId:    v.UserId,
			Titulo:    v.Titulo,
			Url:       v.Url,
			CreatedAt: v.CreatedAt,
		})
	}

	s.writeJson(w, http.StatusOK, videos)
}

func (s *NutriChatApp) deleteVideo(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.db.DeleteVideo(id); err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusNoContent, nil)
}

func (s *NutriChatApp) createGoal(w http.ResponseWriter, r *http.Request) {
	var req CreateGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if req.UserId <= 0 || req.Descripcion == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	goal, err := s.db.CreateGoal(database.CreateGoalParams{
		UserId:      req.UserId,
		Descripcion: req.Descripcion,
	})
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusCreated, types.Goal{
		Id:          goal.Id,
		UserId:      goal.UserId,
		Descripcion: goal.Descripcion,
		Completada:  goal.Completada,
		CreatedAt:   goal.CreatedAt,
	})
}

func (s *NutriChatApp) listGoals(w http.ResponseWriter, r *http.Request) {
	ident, ok := IdentityFrom(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	userId, err := strconv.Atoi(r.PathValue("userId"))
	if err != nil || userId <= 0 {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if ident.Role != types.RoleNutricionista && ident.Id != userId {
		errResp := NewForbiddenError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	dbGoals, err := s.db.ListGoals(userId)
	if err != nil {
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	goals := make([]types.Goal, 0, len(dbGoals))
	for _, g := range dbGoals {
		goals = append(goals, types.Goal{
			Id:          g.Id,
			UserId:      g.UserId,
			Descripcion: g.Descripcion,
			Completada:  g.Completada,
			CreatedAt:   g.CreatedAt,
		})
	}

	s.writeJson(w, http.StatusOK, goals)
}

func (s *NutriChatApp) completeGoal(w http.ResponseWriter, r *http.Request) {
	ident, ok := IdentityFrom(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	// the practitioner may complete any goal, a patient only their own
	ownerId := ident.Id
	if ident.Role == types.RoleNutricionista {
		ownerId = 0
	}

	goal, err := s.db.CompleteGoal(id, ownerId)
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, types.Goal{
		Id:          goal.Id,
		UserId:      goal.UserId,
		Descripcion: goal.Descripcion,
		Completada:  goal.Completada,
		CreatedAt:   goal.CreatedAt,
	})
}

func (s *NutriChatApp) deleteGoal(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := s.db.DeleteGoal(id); err != nil {
		var errResp *ApiError
		if errors.Is(err, sql.ErrNoRows) {
			errResp = NewNotFoundError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusNoContent, nil)
}
