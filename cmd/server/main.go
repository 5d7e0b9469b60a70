package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/leca/flipbook/internal/config"
	"github.com/leca/flipbook/internal/database"
	"github.com/leca/flipbook/internal/router"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.Load()

	// Schema creation and the one-time legacy migration run here; the
	// process does not serve traffic if either fails.
	db, err := database.NewSQLiteDB(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	srv := router.New(db, cfg)

	slog.Info("starting server", "addr", cfg.ListenAddr)
	if err := http.ListenAndServe(cfg.ListenAddr, srv.Router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
