package logger

import (
	"io"
	"log/slog"
	"os"
	"time"
)

// Поддерживаемые форматы вывода.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// SlogConfig описывает параметры логгера (можно расширить позже)
type SlogConfig struct {
	Level  string // "debug", "info", "warn", "error"
	Format string // FormatJSON или FormatText
}

// NewSlog создаёт и настраивает slog.Logger поверх stdout.
func NewSlog(cfg SlogConfig) *slog.Logger {
	return slog.New(newHandler(os.Stdout, cfg))
}

// newHandler собирает slog.Handler по конфигурации. На уровне debug
// дополнительно включается source-атрибут.
func newHandler(w io.Writer, cfg SlogConfig) slog.Handler {
	lvl := parseLevel(cfg.Level)
	opts := &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl == slog.LevelDebug,
	}

	if cfg.Format == FormatText {
		return slog.NewTextHandler(w, opts)
	}

	// Timestamp в человекочитаемом виде
	opts.ReplaceAttr = func(groups []string, a slog.Attr) slog.Attr {
		if a.Key == slog.TimeKey {
			a.Value = slog.StringValue(time.Now().Format(time.RFC3339))
		}
		return a
	}
	return slog.NewJSONHandler(w, opts)
}

// parseLevel переводит строковый уровень в slog.Level,
// по умолчанию info.
func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
