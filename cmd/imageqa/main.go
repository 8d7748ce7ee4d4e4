package main

import (
	"context"
	"log/slog"
	"os"

	"imageqa/internal/di"
)

func main() {
	// bootstrap-логгер: используется только до инициализации основного
	bootstrapLogger := slog.New(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
	)
	bootstrapLogger.Info("starting application")

	application, err := di.BuildApp()
	if err != nil {
		bootstrapLogger.Error("failed to build app", "error", err)
		os.Exit(1)
	}

	logger := application.LoggerIns()
	logger.Info("application initialized successfully")

	if err := application.Run(context.Background()); err != nil {
		logger.Error("application run failed", "error", err)
		os.Exit(1)
	}
}
