// Package logging holds the process-wide slog logger. Components derive a
// tagged logger with New("search"), New("catalog") and so on.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	mu   sync.RWMutex
	base = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
)

// Init replaces the base logger. level is one of debug, info, warn, error;
// anything else means info. A nil w writes to stderr.
func Init(level string, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	l := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)}))

	mu.Lock()
	base = l
	mu.Unlock()
	slog.SetDefault(l)
	return l
}

// New returns the base logger tagged with component.
func New(component string) *slog.Logger {
	mu.RLock()
	l := base
	mu.RUnlock()
	if component == "" {
		return l
	}
	return l.With("component", component)
}

func ParseLevel(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
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
