package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emberline-pos/api/internal/config"
	"github.com/emberline-pos/api/internal/database"
	"github.com/emberline-pos/api/internal/logger"
	"github.com/emberline-pos/api/internal/router"
	"github.com/emberline-pos/api/internal/session"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(".env")
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(logger.ParseLevel(cfg.LogLevel))
	slog.SetDefault(log)

	// An unreachable database is not fatal: the server starts in demo
	// mode with the built-in roster and menu.
	var pool *pgxpool.Pool
	var queries *database.Queries
	pool, err = database.Connect(ctx, cfg.DatabaseURL())
	if err != nil {
		log.Warn("database unreachable, starting in demo mode", "error", err)
		pool = nil
	} else {
		if err := database.Migrate(cfg.DatabaseURL()); err != nil {
			log.Error("run migrations", "error", err)
			os.Exit(1)
		}
		queries = database.New(pool)
		defer pool.Close()
	}

	sessions := session.NewStore(cfg.SessionTTL)
	r := router.New(queries, pool, sessions, log)

	log.Info("starting server", "port", cfg.Port, "demo_mode", pool == nil)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
