// Package session persists resumable chat conversations as append-only JSONL
// transcripts, one file per session key, with an index.json recording
// per-session metadata. Each operation opens, uses, and releases the storage
// within the call; nothing is held across user pauses.
package session

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	serrors "github.com/standup-agent/standup/internal/errors"
	"github.com/standup-agent/standup/internal/store"

	"github.com/natefinch/atomic"
	"github.com/oklog/ulid/v2"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// KindSummary marks assistant turns whose content is a full standup
// summary, so a resumed session can pick up the latest draft.
const KindSummary = "summary"

// Turn is one entry in a session transcript.
type Turn struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Kind      string    `json:"kind,omitempty"`
	Timestamp time.Time `json:"ts"`
}

// Meta is the indexed metadata for one session.
type Meta struct {
	Key       string    `json:"key"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type indexFile struct {
	Sessions map[string]Meta `json:"sessions"`
}

const keyPrefix = "chat_"

// ResolveKey derives the session key: chat_{name} for an explicitly named
// session, chat_{username}_{date} otherwise. The date is the day the session
// is created; resuming an existing session reuses its original key.
func ResolveKey(explicitName, username string, day time.Time) string {
	if name := strings.TrimSpace(explicitName); name != "" {
		return keyPrefix + sanitize(name)
	}
	return fmt.Sprintf("%s%s_%s", keyPrefix, sanitize(username), day.Format("2006-01-02"))
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		default:
			return '_'
		}
	}, s)
}

type Store struct {
	baseDir string
	lockCfg *store.FileLockConfig
}

func NewStore(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// Load returns the full turn history for a key in original append order. A
// key with no transcript is a new session and yields an empty history.
func (s *Store) Load(key string) ([]Turn, error) {
	data, err := os.ReadFile(s.transcriptPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, serrors.Wrap(err, "read transcript")
	}

	var turns []Turn
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		var turn Turn
		if err := json.Unmarshal([]byte(line), &turn); err != nil {
			return nil, serrors.Wrap(err, "parse transcript line")
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

// Append adds one turn to a session transcript. Prior turns are never
// rewritten: the transcript is opened O_APPEND, the line is written and
// synced, then the index entry is touched.
func (s *Store) Append(key string, turn Turn) error {
	if turn.ID == "" {
		turn.ID = ulid.Make().String()
	}
	if turn.Timestamp.IsZero() {
		turn.Timestamp = time.Now().UTC()
	}

	lock, err := store.AcquireLock(s.baseDir, s.lockCfg)
	if err != nil {
		return err
	}
	defer lock.Release()

	if err := store.EnsureDir(s.sessionsDir()); err != nil {
		return serrors.Wrap(err, "create sessions dir")
	}

	line, err := json.Marshal(turn)
	if err != nil {
		return serrors.Wrap(err, "marshal turn")
	}

	f, err := os.OpenFile(s.transcriptPath(key), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return serrors.Wrap(err, "open transcript")
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return serrors.Wrap(err, "append turn")
	}
	if err := f.Sync(); err != nil {
		return serrors.Wrap(err, "sync transcript")
	}

	return s.touchIndex(key, turn.Timestamp)
}

// ListRecent returns session metadata ordered most-recently-active first.
func (s *Store) ListRecent(limit int) ([]Meta, error) {
	idx, err := s.loadIndex()
	if err != nil {
		return nil, err
	}

	metas := make([]Meta, 0, len(idx.Sessions))
	for _, meta := range idx.Sessions {
		metas = append(metas, meta)
	}

	sort.Slice(metas, func(i, j int) bool {
		if !metas[i].UpdatedAt.Equal(metas[j].UpdatedAt) {
			return metas[i].UpdatedAt.After(metas[j].UpdatedAt)
		}
		return metas[i].Key < metas[j].Key
	})

	if limit > 0 && len(metas) > limit {
		metas = metas[:limit]
	}
	return metas, nil
}

// Delete removes one session's transcript and index entry.
func (s *Store) Delete(key string) error {
	lock, err := store.AcquireLock(s.baseDir, s.lockCfg)
	if err != nil {
		return err
	}
	defer lock.Release()

	idx, err := s.loadIndex()
	if err != nil {
		return err
	}
	if _, ok := idx.Sessions[key]; !ok {
		return serrors.NotFound("session " + key)
	}

	if err := os.Remove(s.transcriptPath(key)); err != nil && !os.IsNotExist(err) {
		return serrors.Wrap(err, "delete transcript")
	}

	delete(idx.Sessions, key)
	return s.writeIndex(idx)
}

// ClearAll removes every session and returns the count removed.
func (s *Store) ClearAll() (int, error) {
	lock, err := store.AcquireLock(s.baseDir, s.lockCfg)
	if err != nil {
		return 0, err
	}
	defer lock.Release()

	idx, err := s.loadIndex()
	if err != nil {
		return 0, err
	}

	count := len(idx.Sessions)
	if count == 0 {
		return 0, nil
	}

	for key := range idx.Sessions {
		if err := os.Remove(s.transcriptPath(key)); err != nil && !os.IsNotExist(err) {
			return 0, serrors.Wrap(err, "delete transcript "+key)
		}
	}

	idx.Sessions = make(map[string]Meta)
	return count, s.writeIndex(idx)
}

func (s *Store) touchIndex(key string, at time.Time) error {
	idx, err := s.loadIndex()
	if err != nil {
		return err
	}

	meta, ok := idx.Sessions[key]
	if !ok {
		meta = Meta{Key: key, CreatedAt: at}
	}
	meta.UpdatedAt = at
	idx.Sessions[key] = meta

	return s.writeIndex(idx)
}

func (s *Store) loadIndex() (*indexFile, error) {
	idx := &indexFile{Sessions: make(map[string]Meta)}

	data, err := os.ReadFile(s.indexPath())
	if err != nil {
		if os.IsNotExist(err) {
			return idx, nil
		}
		return nil, serrors.Wrap(err, "read session index")
	}

	if err := json.Unmarshal(data, idx); err != nil {
		return nil, serrors.Wrap(err, "parse session index")
	}
	if idx.Sessions == nil {
		idx.Sessions = make(map[string]Meta)
	}
	return idx, nil
}

func (s *Store) writeIndex(idx *indexFile) error {
	if err := store.EnsureDir(s.sessionsDir()); err != nil {
		return serrors.Wrap(err, "create sessions dir")
	}

	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return serrors.Wrap(err, "marshal session index")
	}

	if err := atomic.WriteFile(s.indexPath(), bytes.NewReader(data)); err != nil {
		return serrors.Wrap(err, "write session index")
	}
	return nil
}

func (s *Store) sessionsDir() string {
	return store.SessionsDir(s.baseDir)
}

func (s *Store) indexPath() string {
	return filepath.Join(s.sessionsDir(), "index.json")
}

func (s *Store) transcriptPath(key string) string {
	return filepath.Join(s.sessionsDir(), key+".jsonl")
}
