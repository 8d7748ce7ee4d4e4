package app

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"

	"imageqa/internal/config"
	"imageqa/internal/handler"
)

// App — собранное приложение со всеми зависимостями.
type App struct {
	Config       *config.Config
	logger       *slog.Logger
	db           *sqlx.DB
	imageHandler *handler.ImageHandler
}

func NewApp(cfg *config.Config,
	logger *slog.Logger,
	db *sqlx.DB,
	imageHandler *handler.ImageHandler) *App {
	return &App{
		Config:       cfg,
		logger:       logger,
		db:           db,
		imageHandler: imageHandler,
	}
}

// LoggerIns возвращает основной логгер приложения.
func (a *App) LoggerIns() *slog.Logger {
	return a.logger
}

// Run запускает HTTP-сервер и блокируется до сигнала завершения.
func (a *App) Run(ctx context.Context) error {
	// канал для graceful shutdown
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErr := runServer(ctx, a.Config, a.imageHandler, a.logger)

	a.logger.Info("shutting down application")

	// аккуратно закрываем ресурсы, в том числе при ошибке сервера
	if err := a.Shutdown(); err != nil {
		a.logger.Error("shutdown error", "error", err)
		if serverErr == nil {
			serverErr = err
		}
	}

	if serverErr != nil {
		return serverErr
	}

	a.logger.Info("application stopped")
	return nil
}

// Shutdown закрывает все ресурсы приложения.
func (a *App) Shutdown() error {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			return fmt.Errorf("ошибка закрытия БД: %w", err)
		}
	}
	return nil
}
