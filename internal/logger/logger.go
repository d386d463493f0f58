// Package logger configures the process-wide slog default used by every
// command, including the long-lived daemon.
package logger

import (
	"log/slog"
	"os"
	"time"

	serrors "github.com/standup-agent/standup/internal/errors"

	"github.com/lmittmann/tint"
)

// ParseLevel maps a configured level name to its slog level. Unknown names
// are a configuration error so a typo in log_level does not silently change
// verbosity.
func ParseLevel(name string) (slog.Level, error) {
	switch name {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, serrors.Config("unknown log level " + name)
	}
}

// Setup installs the default logger at the given level. An unrecognized
// level falls back to info with a warning rather than aborting the command.
func Setup(level string) {
	logLevel, err := ParseLevel(level)

	handler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      logLevel,
		TimeFormat: time.TimeOnly,
	})

	slog.SetDefault(slog.New(handler))

	if err != nil {
		slog.Warn("Falling back to info logging", "log_level", level)
	}
}
