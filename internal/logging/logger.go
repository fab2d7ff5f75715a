package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/herbal-remedy-api/internal/config"
)

// New builds a slog.Logger for cfg and installs it as the process default,
// so packages that call slog.Info/Warn directly share the same handler.
func New(cfg *config.Config) *slog.Logger {
	l := newLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(l)
	return l
}

func newLogger(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
