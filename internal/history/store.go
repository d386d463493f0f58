// Package history persists one standup record per calendar day. The store is
// a single JSON index file rewritten atomically on every mutation, guarded by
// a short-lived file lock so each operation is a self-contained
// acquire-use-release.
package history

import (
	"bytes"
	"encoding/json"
	"os"
	"sort"
	"time"

	serrors "github.com/standup-agent/standup/internal/errors"
	"github.com/standup-agent/standup/internal/github"
	"github.com/standup-agent/standup/internal/store"

	"github.com/natefinch/atomic"
	"github.com/oklog/ulid/v2"
)

const DateFormat = "2006-01-02"

// Record is one generated standup. At most one unnamed record exists per
// calendar date; named records are strict inserts.
type Record struct {
	ID        string                 `json:"id"`
	Date      string                 `json:"date"`
	Name      string                 `json:"name,omitempty"`
	Activity  *github.ActivityReport `json:"activity,omitempty"`
	Summary   string                 `json:"summary"`
	CreatedAt time.Time              `json:"created_at"`
	Seq       uint64                 `json:"seq"`
}

type index struct {
	NextSeq uint64   `json:"next_seq"`
	Records []Record `json:"records"`
}

type Store struct {
	baseDir string
	lockCfg *store.FileLockConfig
}

func NewStore(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// Save persists a record. An unnamed record replaces any existing record for
// the same date; a named record must not collide with an existing name on
// that date. The write is all-or-nothing: the index is mutated in memory and
// replaced atomically.
func (s *Store) Save(rec Record) (Record, error) {
	if rec.Date == "" {
		rec.Date = time.Now().Format(DateFormat)
	}
	if _, err := time.Parse(DateFormat, rec.Date); err != nil {
		return Record{}, serrors.InvalidInput("date must be YYYY-MM-DD, got " + rec.Date)
	}
	if rec.Summary == "" {
		return Record{}, serrors.InvalidInput("summary is required")
	}

	lock, err := store.AcquireLock(s.baseDir, s.lockCfg)
	if err != nil {
		return Record{}, err
	}
	defer lock.Release()

	idx, err := s.load()
	if err != nil {
		return Record{}, err
	}

	rec.ID = newULID()
	rec.CreatedAt = time.Now().UTC()
	rec.Seq = idx.NextSeq
	idx.NextSeq++

	if rec.Name == "" {
		kept := idx.Records[:0]
		for _, existing := range idx.Records {
			if existing.Date == rec.Date && existing.Name == "" {
				continue
			}
			kept = append(kept, existing)
		}
		idx.Records = kept
	} else {
		for _, existing := range idx.Records {
			if existing.Date == rec.Date && existing.Name == rec.Name {
				return Record{}, serrors.Wrap(serrors.ErrConflict,
					"record "+rec.Name+" already exists for "+rec.Date)
			}
		}
	}

	idx.Records = append(idx.Records, rec)

	if err := s.write(idx); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Get returns the unnamed record for a date. Absence is an expected steady
// state, reported via the bool, never as an error.
func (s *Store) Get(date string) (Record, bool, error) {
	idx, err := s.load()
	if err != nil {
		return Record{}, false, err
	}

	for _, rec := range idx.Records {
		if rec.Date == date && rec.Name == "" {
			return rec, true, nil
		}
	}
	return Record{}, false, nil
}

// Recent returns up to limit records, most recent first. Ordering is explicit
// (date, then insert sequence) rather than storage order.
func (s *Store) Recent(limit int) ([]Record, error) {
	idx, err := s.load()
	if err != nil {
		return nil, err
	}

	records := make([]Record, len(idx.Records))
	copy(records, idx.Records)

	sort.Slice(records, func(i, j int) bool {
		if records[i].Date != records[j].Date {
			return records[i].Date > records[j].Date
		}
		return records[i].Seq > records[j].Seq
	})

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// Clear removes the records for one date, or every record when date is empty,
// and returns the exact count removed.
func (s *Store) Clear(date string) (int, error) {
	lock, err := store.AcquireLock(s.baseDir, s.lockCfg)
	if err != nil {
		return 0, err
	}
	defer lock.Release()

	idx, err := s.load()
	if err != nil {
		return 0, err
	}

	if date == "" {
		removed := len(idx.Records)
		if removed == 0 {
			return 0, nil
		}
		idx.Records = nil
		return removed, s.write(idx)
	}

	kept := idx.Records[:0]
	removed := 0
	for _, rec := range idx.Records {
		if rec.Date == date {
			removed++
			continue
		}
		kept = append(kept, rec)
	}
	if removed == 0 {
		return 0, nil
	}

	idx.Records = kept
	return removed, s.write(idx)
}

// Prune removes unnamed records older than keepDays and returns the count.
func (s *Store) Prune(keepDays int) (int, error) {
	if keepDays <= 0 {
		return 0, nil
	}

	lock, err := store.AcquireLock(s.baseDir, s.lockCfg)
	if err != nil {
		return 0, err
	}
	defer lock.Release()

	idx, err := s.load()
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().AddDate(0, 0, -keepDays).Format(DateFormat)
	kept := idx.Records[:0]
	removed := 0
	for _, rec := range idx.Records {
		if rec.Name == "" && rec.Date < cutoff {
			removed++
			continue
		}
		kept = append(kept, rec)
	}
	if removed == 0 {
		return 0, nil
	}

	idx.Records = kept
	return removed, s.write(idx)
}

func (s *Store) load() (*index, error) {
	idx := &index{}

	data, err := os.ReadFile(store.HistoryPath(s.baseDir))
	if err != nil {
		if os.IsNotExist(err) {
			return idx, nil
		}
		return nil, serrors.Wrap(err, "read history index")
	}

	if err := json.Unmarshal(data, idx); err != nil {
		return nil, serrors.Wrap(err, "parse history index")
	}
	return idx, nil
}

func (s *Store) write(idx *index) error {
	if err := store.EnsureDir(s.baseDir); err != nil {
		return serrors.Wrap(err, "create history dir")
	}

	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return serrors.Wrap(err, "marshal history index")
	}

	if err := atomic.WriteFile(store.HistoryPath(s.baseDir), bytes.NewReader(data)); err != nil {
		return serrors.Wrap(err, "write history index")
	}
	return nil
}

func newULID() string {
	return ulid.Make().String()
}
