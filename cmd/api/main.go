package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/feedback-board/backend/internal/auth"
	"github.com/emilythestrangee/feedback-board/backend/internal/config"
	"github.com/emilythestrangee/feedback-board/backend/internal/database"
	"github.com/emilythestrangee/feedback-board/backend/internal/feedback"
	"github.com/emilythestrangee/feedback-board/backend/internal/handlers"
	"github.com/emilythestrangee/feedback-board/backend/internal/middleware"
	"github.com/emilythestrangee/feedback-board/backend/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	gin.SetMode(cfg.GinMode)
	slog.SetDefault(newLogger(cfg.GinMode))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		slog.Error("database setup failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("Database schema ready")

	svc := feedback.NewService(db.GetDB())
	verifier := auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.Audience)

	srv := server.NewServer(&cfg, db, handlers.NewHandler(svc), middleware.Authenticate(verifier, svc))

	go func() {
		<-ctx.Done()
		slog.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("graceful shutdown failed", "error", err)
		}
	}()

	slog.Info("Listening", "port", cfg.Port)
	err = srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server closed", "error", err)
		os.Exit(1)
	}
	slog.Info("Server closed")
}

func newLogger(mode string) *slog.Logger {
	if mode == gin.ReleaseMode {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
