package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jmorales-dev/nutrichat/internal/api"
	"github.com/jmorales-dev/nutrichat/internal/config"
	"github.com/jmorales-dev/nutrichat/internal/database"
	"github.com/jmorales-dev/nutrichat/internal/server"
	"github.com/jmorales-dev/nutrichat/internal/stats"
	_ "github.com/lib/pq"
)

const defaultSigningKey = "wT0phFUusHZIrDhL9bUKPUhwaxKhpi/SaI6PtgB+MgU="

type stringSliceFlag []string

func (s *stringSliceFlag) String() string {
	return strings.Join(*s, ",")
}

func (s *stringSliceFlag) Set(value string) error {
	*s = append(*s, strings.Split(value, ",")...)
	return nil
}

var (
	addr           string
	dsn            string
	signingKey     string
	uploadsDir     string
	seedNombre     string
	seedPassword   string
	allowedOrigins stringSliceFlag
)

func main() {
	flag.StringVar(&addr, "addr", "localhost:3000", "server address")
	flag.StringVar(&dsn, "dsn", "host=localhost user=postgres password=postgres dbname=postgres sslmode=disable", "database connection string")
	flag.StringVar(&signingKey, "signing-key", defaultSigningKey, "base64 encoded signing key")
	flag.StringVar(&uploadsDir, "uploads-dir", "uploads", "directory for uploaded attachments")
	flag.StringVar(&seedNombre, "seed-nombre", "katya cruz", "name of the initial practitioner account")
	flag.StringVar(&seedPassword, "seed-password", "", "password of the initial practitioner account; no account is seeded when empty")
	flag.Var(&allowedOrigins, "allowed-origins", "comma-separated list of allowed origins for CORS")
	flag.Parse()

	logger := log.New(os.Stderr, "[nutrichat] ", log.LstdFlags)

	cfg, err := config.NewConfig(addr, dsn, signingKey, allowedOrigins, uploadsDir)
	if err != nil {
		logger.Fatal("config:", err)
	}

	dbConn, err := database.NewPgNutriChatRepository(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("db open:", err)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Fatal("db close:", err)
		}
	}()

	mux := http.NewServeMux()

	statsUpdater := stats.NewStatsUpdater(mux)

	registry := server.NewRegistry()
	chatServer, err := server.NewChatServer(logger, registry, statsUpdater)
	if err != nil {
		logger.Fatal("new chat server:", err)
	}

	app := api.NewNutriChatApp(mux, logger, chatServer, dbConn, statsUpdater, cfg)

	if seedPassword != "" {
		if err := app.EnsureSeedPractitioner(seedNombre, seedPassword); err != nil {
			logger.Fatal("seed practitioner:", err)
		}
	}

	statsUpdater.Run()
	defer statsUpdater.Stop()

	go chatServer.Run()

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Start()
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigs:
		logger.Printf("received signal: %s\n", sig)
	case err := <-errCh:
		logger.Println("server:", err)
	}

	shutDownCtx, cancel := context.WithTimeout(
		context.Background(),
		10*time.Second,
	)
	defer cancel()

	if err := app.Shutdown(shutDownCtx); err != nil {
		logger.Fatalln("HTTP server shutdown:", err)
	}

	logger.Println("shutting down chat server...")
	if err := chatServer.Shutdown(shutDownCtx); err != nil {
		logger.Fatalln("chat server shutdown:", err)
	}

	logger.Println("shutdown complete")
}
