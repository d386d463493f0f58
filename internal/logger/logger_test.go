package logger

import (
	"log/slog"
	"testing"

	serrors "github.com/standup-agent/standup/internal/errors"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		name string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tc := range cases {
		got, err := ParseLevel(tc.name)
		if err != nil {
			t.Errorf("ParseLevel(%q) returned error: %v", tc.name, err)
		}
		if got != tc.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestParseLevelUnknown(t *testing.T) {
	got, err := ParseLevel("verbose")
	if err == nil {
		t.Fatal("expected an error for an unknown level name")
	}
	if !serrors.IsCategory(err, serrors.ErrConfig) {
		t.Errorf("expected a config error, got %v", err)
	}
	if got != slog.LevelInfo {
		t.Errorf("unknown level should fall back to info, got %v", got)
	}
}
