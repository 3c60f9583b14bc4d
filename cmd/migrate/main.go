// Command migrate applies the database schema and, with -promote, grants the
// admin role to an existing user.
package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"time"

	_ "github.com/lib/pq"

	"github.com/emilythestrangee/feedback-board/backend/internal/config"
	"github.com/emilythestrangee/feedback-board/backend/internal/database"
)

func main() {
	promote := flag.String("promote", "", "provider subject of a user to make admin")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		slog.Error("database ping failed", "error", err)
		os.Exit(1)
	}

	if err := database.Migrate(ctx, db); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready")

	if *promote == "" {
		return
	}

	ok, err := database.PromoteAdmin(ctx, db, *promote)
	if err != nil {
		slog.Error("promotion failed", "subject", *promote, "error", err)
		os.Exit(1)
	}
	if !ok {
		slog.Error("no user with that subject has signed in yet", "subject", *promote)
		os.Exit(1)
	}
	slog.Info("User promoted to admin", "subject", *promote)
}
