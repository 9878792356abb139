// Command server runs the shopping-list web application.
//
// main only reads configuration, builds the logger and hands off to
// internal/server; everything else lives in internal packages.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/sakif/shopping-list/internal/config"
	"github.com/sakif/shopping-list/internal/logging"
	"github.com/sakif/shopping-list/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := logging.Setup(cfg.LogLevel)

	srv, err := server.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until the server is shut down (Ctrl+C or SIGTERM).
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
