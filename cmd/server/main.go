package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/CodeforSusono/baseball-broadcast-board/internal/config"
	"github.com/CodeforSusono/baseball-broadcast-board/internal/logging"
	"github.com/CodeforSusono/baseball-broadcast-board/internal/server"
	"github.com/CodeforSusono/baseball-broadcast-board/internal/session"
	"github.com/CodeforSusono/baseball-broadcast-board/internal/store"
	"github.com/CodeforSusono/baseball-broadcast-board/internal/version"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func runGracefulShutdown(srv *server.Server, sess *session.Session) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		sess.Stop()

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	// Initialize structured logging
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port,
		"build", version.Get().String())

	gameStore := store.New(cfg.DataDir)

	sess := session.New(gameStore, clock, session.Options{
		HandshakeTimeout: cfg.HandshakeTimeout,
		GracePeriod:      cfg.ReloadGracePeriod,
	})

	srv := server.NewServer(cfg, sess, clock)

	done := runGracefulShutdown(srv, sess)

	slog.Info("Server starting", "port", cfg.Port)
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
