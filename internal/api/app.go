package api

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/jmorales-dev/nutrichat/internal/config"
	"github.com/jmorales-dev/nutrichat/internal/database"
	"github.com/jmorales-dev/nutrichat/internal/server"
	"github.com/jmorales-dev/nutrichat/internal/stats"
	"github.com/jmorales-dev/nutrichat/internal/types"
)

type NutriChatApp struct {
	log            *log.Logger
	db             database.NutriChatRepository
	mux            *http.Server
	cs             *server.ChatServer
	stats          stats.StatsProvider
	signingKey     []byte
	uploadsDir     string
	allowedOrigins []string
}

func NewNutriChatApp(mux *http.ServeMux, logger *log.Logger, cs *server.ChatServer, db database.NutriChatRepository, sp stats.StatsProvider, cfg *config.Config) *NutriChatApp {
	s := &NutriChatApp{
		log:            logger,
		db:             db,
		cs:             cs,
		stats:          sp,
		signingKey:     cfg.SigningKey,
		uploadsDir:     cfg.UploadsDir,
		allowedOrigins: cfg.AllowedOrigins,
	}

	mux.HandleFunc("GET /healthz", s.healthCheck)
	mux.HandleFunc("POST /login", s.login)
	mux.Handle("POST /create-user", s.authMiddleware(s.requireRole(types.RoleNutricionista, s.createUser)))
	mux.Handle("GET /users", s.authMiddleware(s.requireRole(types.RoleNutricionista, s.listUsers)))
	mux.Handle("DELETE /users/{id}", s.authMiddleware(s.requireRole(types.RoleNutricionista, s.deleteUser)))
	mux.Handle("POST /chat/send", s.authMiddleware(s.sendMessage))
	mux.Handle("GET /chat/{toId}", s.authMiddleware(s.chatHistory))
	mux.Handle("GET /verify-token", s.authMiddleware(s.verifyTokenStatus))
	mux.Handle("POST /videos", s.authMiddleware(s.requireRole(types.RoleNutricionista, s.createVideo)))
	mux.Handle("GET /videos/{userId}", s.authMiddleware(s.listVideos))
	mux.Handle("DELETE /videos/{id}", s.authMiddleware(s.requireRole(types.RoleNutricionista, s.deleteVideo)))
	mux.Handle("POST /goals", s.authMiddleware(s.requireRole(types.RoleNutricionista, s.createGoal)))
	mux.Handle("GET /goals/{userId}", s.authMiddleware(s.listGoals))
	mux.Handle("PUT /goals/{id}/complete", s.authMiddleware(s.completeGoal))
	mux.Handle("DELETE /goals/{id}", s.authMiddleware(s.requireRole(types.RoleNutricionista, s.deleteGoal)))
	mux.Handle("GET /ws", s.authMiddleware(s.serveWs))
	mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadsDir))))

	h := handlers.CORS(
		handlers.MaxAge(3600),
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Origin", "Content-Type", "Accept", "Authorization"}),
		handlers.AllowCredentials(),
	)(mux)

	h = s.errorHandler(h)

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: h,
	}

	s.mux = srv
	return s
}

func (s *NutriChatApp) Start() error {
	if err := os.MkdirAll(s.uploadsDir, 0o755); err != nil {
		return fmt.Errorf("create uploads dir: %w", err)
	}

	s.log.Printf("starting server on %s\n", s.mux.Addr)
	return s.mux.ListenAndServe()
}

func (s *NutriChatApp) Shutdown(ctx context.Context) error {
	s.log.Println("shutting down HTTP server...")
	if err := s.mux.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}

// EnsureSeedPractitioner creates the initial practitioner account when it
// does not exist yet, so a fresh deployment is usable without manual SQL.
func (s *NutriChatApp) EnsureSeedPractitioner(nombre, password string) error {
	_, err := s.db.GetUserByNombre(nombre)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("look up seed user: %w", err)
	}

	pwdHash, err := hashPassword(password)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}

	u, err := s.db.CreateUser(database.CreateUserParams{
		Nombre:       nombre,
		PasswordHash: pwdHash,
		Role:         types.RoleNutricionista,
	})
	if err != nil {
		return fmt.Errorf("create seed user: %w", err)
	}

	s.log.Printf("created initial practitioner account %q (id %d)", u.Nombre, u.Id)
	return nil
}
