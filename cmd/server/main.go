/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the Sitebook server. Handles configuration,
  dependency wiring, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration from the environment (PORT is required)
  2. Build the zap logger
  3. Open the SQLite store
  4. Wire the API handler and router
  5. Start the server with graceful shutdown

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close the database connection
  4. Exit

FLAGS:
  -db   overrides DB_PATH (use ":memory:" for an in-memory database)

SEE ALSO:
  - config/config.go: environment variables
  - api/server.go: router configuration
*/
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/woodline/sitebook/api"
	"github.com/woodline/sitebook/config"
	"github.com/woodline/sitebook/logger"
	"github.com/woodline/sitebook/store/sqlite"
)

func main() {
	dbFlag := flag.String("db", "", "SQLite database path (overrides DB_PATH)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}
	if *dbFlag != "" {
		cfg.DBPath = *dbFlag
	}

	zlog, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zlog.Sync()

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		zlog.Fatal("failed to open database", zap.String("path", cfg.DBPath), zap.Error(err))
	}
	defer store.Close()

	auth := &api.Auth{
		AdminUser:    cfg.Auth.AdminUser,
		PasswordHash: cfg.Auth.PasswordHash,
		Allowlist:    cfg.Auth.Allowlist,
		Secret:       []byte(cfg.Auth.JWTSecret),
		TokenTTL:     cfg.Auth.TokenTTL,
	}
	uploader := api.NewUploader(cfg.Upload.Endpoint, cfg.Upload.Timeout, cfg.Upload.Dir, zlog)
	handler := api.NewHandler(store, uploader, auth, zlog)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // uploads and exports need headroom
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		zlog.Info("server starting",
			zap.String("addr", server.Addr),
			zap.String("db", cfg.DBPath))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		zlog.Fatal("forced shutdown", zap.Error(err))
	}
	zlog.Info("server stopped")
}
