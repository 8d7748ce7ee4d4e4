package app

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"imageqa/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRun_ClosesResourcesOnServerError(t *testing.T) {
	// Ленивое открытие: соединение не устанавливается до первого запроса
	db, err := sqlx.Open("postgres", "postgres://localhost:1/imageqa?sslmode=disable")
	if err != nil {
		t.Fatalf("sqlx.Open() вернул ошибку: %v", err)
	}

	cfg := &config.Config{ServerPort: "not-a-port"}

	// Обработчик не нужен: сервер падает до первого запроса
	application := NewApp(cfg, testLogger(), db, nil)

	if err := application.Run(context.Background()); err == nil {
		t.Fatal("Run() должен вернуть ошибку при некорректном порте")
	}

	err = db.Ping()
	if err == nil || !strings.Contains(err.Error(), "database is closed") {
		t.Errorf("Ping() = %v, соединение с бд должно быть закрыто после Run()", err)
	}
}
