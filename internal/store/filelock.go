package store

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// FileLock is a short-lived exclusive lock around one store operation. Every
// read-modify-write acquires it and releases it before returning, so no lock
// is held across user interaction pauses.
type FileLock struct {
	fileLock   *flock.Flock
	lockPath   string
	acquiredAt time.Time
}

type FileLockConfig struct {
	LockRetry    time.Duration
	LockMaxRetry int
}

func DefaultFileLockConfig() *FileLockConfig {
	return &FileLockConfig{
		LockRetry:    50 * time.Millisecond,
		LockMaxRetry: 100,
	}
}

// AcquireLock takes the store lock for a base dir, retrying briefly if another
// invocation holds it.
func AcquireLock(baseDir string, cfg *FileLockConfig) (*FileLock, error) {
	if cfg == nil {
		cfg = DefaultFileLockConfig()
	}

	if err := EnsureDir(baseDir); err != nil {
		return nil, fmt.Errorf("failed to create store dir: %w", err)
	}

	lockPath := LockPath(baseDir)
	fl := flock.New(lockPath)

	for i := 0; i < cfg.LockMaxRetry; i++ {
		locked, err := fl.TryLock()
		if err != nil {
			return nil, fmt.Errorf("failed to attempt lock: %w", err)
		}
		if locked {
			return &FileLock{
				fileLock:   fl,
				lockPath:   lockPath,
				acquiredAt: time.Now(),
			}, nil
		}
		if i < cfg.LockMaxRetry-1 {
			time.Sleep(cfg.LockRetry)
		}
	}

	return nil, fmt.Errorf("store %s is locked by another standup instance",
		filepath.Dir(lockPath))
}

func (fl *FileLock) Release() {
	if fl.fileLock == nil {
		return
	}

	if err := fl.fileLock.Unlock(); err != nil {
		slog.Error("Failed to release store lock", "path", fl.lockPath, "error", err)
	} else {
		slog.Debug("Store lock released",
			"path", fl.lockPath,
			"held_duration_ms", time.Since(fl.acquiredAt).Milliseconds(),
		)
	}

	fl.fileLock = nil
}

func (fl *FileLock) IsLocked() bool {
	return fl.fileLock != nil
}
