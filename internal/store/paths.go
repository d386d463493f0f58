package store

import (
	"os"
	"path/filepath"
	"strings"
)

const appDirName = "standup-agent"

// ResolveBaseDir resolves the per-user directory holding config.json and the
// persistent stores. An explicit path wins, then STANDUP_CONFIG_DIR, then the
// platform user config directory.
func ResolveBaseDir(explicit string) (string, error) {
	if trimmed := strings.TrimSpace(explicit); trimmed != "" {
		return expand(trimmed)
	}

	if env := strings.TrimSpace(os.Getenv("STANDUP_CONFIG_DIR")); env != "" {
		return expand(env)
	}

	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, appDirName), nil
}

// ConfigPath returns the persisted JSON config path for a base dir.
func ConfigPath(baseDir string) string {
	return filepath.Join(baseDir, "config.json")
}

// HistoryPath returns the standup history index path for a base dir.
func HistoryPath(baseDir string) string {
	return filepath.Join(baseDir, "history.json")
}

// TasksPath returns the work log index path for a base dir.
func TasksPath(baseDir string) string {
	return filepath.Join(baseDir, "tasks.json")
}

// SessionsDir returns the chat session directory for a base dir.
func SessionsDir(baseDir string) string {
	return filepath.Join(baseDir, "sessions")
}

// VectorsDir returns the semantic index directory for a base dir.
func VectorsDir(baseDir string) string {
	return filepath.Join(baseDir, "vectors")
}

// LockPath returns the store lock file path for a base dir.
func LockPath(baseDir string) string {
	return filepath.Join(baseDir, "store.lock")
}

// EnsureDir creates a directory and its parents if absent.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}

func expand(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	}
	return filepath.Abs(path)
}
