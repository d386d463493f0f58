// Package tasks persists the work log: what the user says they are working
// on, independent of what GitHub shows. Like the history store it is a
// single JSON index rewritten atomically per mutation under a short-lived
// file lock.
package tasks

import (
	"bytes"
	"encoding/json"
	"os"
	"sort"
	"strings"
	"time"

	serrors "github.com/standup-agent/standup/internal/errors"
	"github.com/standup-agent/standup/internal/store"

	"github.com/natefinch/atomic"
	"github.com/oklog/ulid/v2"
)

type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusAbandoned  Status = "abandoned"
)

// Update is one progress note on a task.
type Update struct {
	ID        string    `json:"id"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

// Task is one logged piece of work with its running notes.
type Task struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Status        Status    `json:"status"`
	Tags          []string  `json:"tags,omitempty"`
	RelatedPRs    []string  `json:"related_prs,omitempty"`
	RelatedIssues []string  `json:"related_issues,omitempty"`
	Updates       []Update  `json:"updates,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	CompletedAt   time.Time `json:"completed_at,omitzero"`
}

type index struct {
	Tasks []Task `json:"tasks"`
}

type Store struct {
	baseDir string
	lockCfg *store.FileLockConfig
}

func NewStore(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// Log records a new in-progress task and returns it.
func (s *Store) Log(title string, tags []string) (Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Task{}, serrors.InvalidInput("task title is required")
	}

	lock, err := store.AcquireLock(s.baseDir, s.lockCfg)
	if err != nil {
		return Task{}, err
	}
	defer lock.Release()

	idx, err := s.load()
	if err != nil {
		return Task{}, err
	}

	now := time.Now().UTC()
	task := Task{
		ID:        ulid.Make().String(),
		Title:     title,
		Status:    StatusInProgress,
		Tags:      tags,
		CreatedAt: now,
		UpdatedAt: now,
	}
	idx.Tasks = append(idx.Tasks, task)

	if err := s.write(idx); err != nil {
		return Task{}, err
	}
	return task, nil
}

// Get looks a task up by full ID or unambiguous ID prefix. Absence is
// reported via the bool; an ambiguous prefix is an input error.
func (s *Store) Get(id string) (Task, bool, error) {
	idx, err := s.load()
	if err != nil {
		return Task{}, false, err
	}

	i, err := findTask(idx, id)
	if err != nil {
		return Task{}, false, err
	}
	if i < 0 {
		return Task{}, false, nil
	}
	return idx.Tasks[i], true, nil
}

// AddNote appends a progress note and touches the task's activity time.
func (s *Store) AddNote(id, note string) (Task, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return Task{}, serrors.InvalidInput("note is required")
	}

	return s.mutate(id, func(task *Task, now time.Time) error {
		task.Updates = append(task.Updates, Update{
			ID:        ulid.Make().String(),
			Note:      note,
			CreatedAt: now,
		})
		return nil
	})
}

// SetStatus moves a task to a new status. Completing stamps CompletedAt.
func (s *Store) SetStatus(id string, status Status) (Task, error) {
	switch status {
	case StatusInProgress, StatusCompleted, StatusAbandoned:
	default:
		return Task{}, serrors.InvalidInput("unknown task status " + string(status))
	}

	return s.mutate(id, func(task *Task, now time.Time) error {
		task.Status = status
		if status == StatusCompleted && task.CompletedAt.IsZero() {
			task.CompletedAt = now
		}
		return nil
	})
}

// Complete marks a task done, recording an optional closing note first.
func (s *Store) Complete(id, note string) (Task, error) {
	note = strings.TrimSpace(note)

	return s.mutate(id, func(task *Task, now time.Time) error {
		if note != "" {
			task.Updates = append(task.Updates, Update{
				ID:        ulid.Make().String(),
				Note:      note,
				CreatedAt: now,
			})
		}
		task.Status = StatusCompleted
		if task.CompletedAt.IsZero() {
			task.CompletedAt = now
		}
		return nil
	})
}

// LinkPR attaches a pull request reference to a task, once.
func (s *Store) LinkPR(id, ref string) (Task, error) {
	return s.link(id, ref, func(task *Task) *[]string { return &task.RelatedPRs })
}

// LinkIssue attaches an issue reference to a task, once.
func (s *Store) LinkIssue(id, ref string) (Task, error) {
	return s.link(id, ref, func(task *Task) *[]string { return &task.RelatedIssues })
}

// List returns tasks ordered by last activity, newest first, optionally
// filtered by status.
func (s *Store) List(status Status) ([]Task, error) {
	idx, err := s.load()
	if err != nil {
		return nil, err
	}

	var tasks []Task
	for _, task := range idx.Tasks {
		if status != "" && task.Status != status {
			continue
		}
		tasks = append(tasks, task)
	}

	sortByActivity(tasks)
	return tasks, nil
}

// ForStandup returns the tasks a standup should mention: anything still in
// progress, plus anything touched within the lookback window.
func (s *Store) ForStandup(daysBack int) ([]Task, error) {
	if daysBack <= 0 {
		daysBack = 1
	}

	idx, err := s.load()
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -daysBack)
	var tasks []Task
	for _, task := range idx.Tasks {
		if task.Status == StatusInProgress || task.UpdatedAt.After(cutoff) {
			tasks = append(tasks, task)
		}
	}

	sortByActivity(tasks)
	return tasks, nil
}

// ClearAll deletes the whole work log and returns the exact count removed.
func (s *Store) ClearAll() (int, error) {
	lock, err := store.AcquireLock(s.baseDir, s.lockCfg)
	if err != nil {
		return 0, err
	}
	defer lock.Release()

	idx, err := s.load()
	if err != nil {
		return 0, err
	}

	removed := len(idx.Tasks)
	if removed == 0 {
		return 0, nil
	}

	idx.Tasks = nil
	return removed, s.write(idx)
}

func (s *Store) mutate(id string, apply func(task *Task, now time.Time) error) (Task, error) {
	lock, err := store.AcquireLock(s.baseDir, s.lockCfg)
	if err != nil {
		return Task{}, err
	}
	defer lock.Release()

	idx, err := s.load()
	if err != nil {
		return Task{}, err
	}

	i, err := findTask(idx, id)
	if err != nil {
		return Task{}, err
	}
	if i < 0 {
		return Task{}, serrors.NotFound("task " + id)
	}

	now := time.Now().UTC()
	if err := apply(&idx.Tasks[i], now); err != nil {
		return Task{}, err
	}
	idx.Tasks[i].UpdatedAt = now

	if err := s.write(idx); err != nil {
		return Task{}, err
	}
	return idx.Tasks[i], nil
}

func (s *Store) link(id, ref string, field func(task *Task) *[]string) (Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Task{}, serrors.InvalidInput("reference is required")
	}

	return s.mutate(id, func(task *Task, now time.Time) error {
		refs := field(task)
		for _, existing := range *refs {
			if existing == ref {
				return nil
			}
		}
		*refs = append(*refs, ref)
		return nil
	})
}

func findTask(idx *index, id string) (int, error) {
	if id == "" {
		return -1, serrors.InvalidInput("task id is required")
	}

	found := -1
	for i, task := range idx.Tasks {
		if task.ID == id {
			return i, nil
		}
		if strings.HasPrefix(task.ID, id) {
			if found >= 0 {
				return -1, serrors.InvalidInput("task id " + id + " is ambiguous")
			}
			found = i
		}
	}
	return found, nil
}

func sortByActivity(tasks []Task) {
	sort.Slice(tasks, func(i, j int) bool {
		if !tasks[i].UpdatedAt.Equal(tasks[j].UpdatedAt) {
			return tasks[i].UpdatedAt.After(tasks[j].UpdatedAt)
		}
		return tasks[i].ID < tasks[j].ID
	})
}

func (s *Store) load() (*index, error) {
	idx := &index{}

	data, err := os.ReadFile(store.TasksPath(s.baseDir))
	if err != nil {
		if os.IsNotExist(err) {
			return idx, nil
		}
		return nil, serrors.Wrap(err, "read task index")
	}

	if err := json.Unmarshal(data, idx); err != nil {
		return nil, serrors.Wrap(err, "parse task index")
	}
	return idx, nil
}

func (s *Store) write(idx *index) error {
	if err := store.EnsureDir(s.baseDir); err != nil {
		return serrors.Wrap(err, "create config dir")
	}

	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return serrors.Wrap(err, "marshal task index")
	}

	if err := atomic.WriteFile(store.TasksPath(s.baseDir), bytes.NewReader(data)); err != nil {
		return serrors.Wrap(err, "write task index")
	}
	return nil
}
