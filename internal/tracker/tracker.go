// Package tracker applies user actions to the habit store and persists the
// whole store after every successful change.
package tracker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/theirongolddev/habitboard/internal/model"
	"github.com/theirongolddev/habitboard/internal/persist"
)

// maxImportSize bounds a backup file read by Import.
const maxImportSize = 10 << 20

// Gateway is the persistence contract the tracker needs.
type Gateway interface {
	Load(ctx context.Context) *persist.LoadResult
	Attempt(ctx context.Context, s *model.Store) persist.SaveReport
}

// SaveState is the state of the most recent save attempt.
type SaveState int

const (
	Idle SaveState = iota
	Attempting
	Succeeded
	Failed
)

func (s SaveState) String() string {
	switch s {
	case Attempting:
		return "saving"
	case Succeeded:
		return "saved"
	case Failed:
		return "save failed"
	default:
		return "idle"
	}
}

// SaveStatus describes the most recent save attempt. When State is Failed,
// Fallback holds the serialized document for the user to keep by hand.
type SaveStatus struct {
	State    SaveState
	At       time.Time
	Backend  string
	Version  int64
	Fallback []byte
	Err      error
}

// ImportError reports a rejected backup; the store is left untouched.
type ImportError struct {
	Err error
}

func (e *ImportError) Error() string { return fmt.Sprintf("invalid backup file: %v", e.Err) }

func (e *ImportError) Unwrap() error { return e.Err }

// Tracker owns the session's store. It is not safe for concurrent use.
type Tracker struct {
	store   *model.Store
	gateway Gateway
	status  SaveStatus
	source  string
	now     func() time.Time
	logger  *slog.Logger
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.logger = l
		}
	}
}

// Open loads the store through the gateway, falling back to the default
// store when nothing could be loaded. A store whose journal was migrated
// from the legacy form is saved immediately.
func Open(ctx context.Context, gw Gateway, opts ...Option) *Tracker {
	t := &Tracker{gateway: gw, now: time.Now, logger: slog.Default()}
	for _, opt := range opts {
		opt(t)
	}

	res := gw.Load(ctx)
	if res == nil {
		t.logger.Info("starting from default habits")
		t.store = model.DefaultStore()
		t.source = "default"
		return t
	}

	t.store = res.Store
	t.source = res.Source
	if res.Migrated {
		t.logger.Info("legacy journal migrated, saving")
		t.persist(ctx)
	}
	return t
}

// Source names where the current store was loaded from ("default" when it
// was not loaded at all).
func (t *Tracker) Source() string { return t.source }

// Snapshot returns a deep copy of the current store.
func (t *Tracker) Snapshot() *model.Store { return t.store.Clone() }

// LastSave returns the status of the most recent save attempt.
func (t *Tracker) LastSave() SaveStatus { return t.status }

// persist saves the full store. A failed save leaves the store as it is;
// local state then runs ahead of the remote until the next success.
func (t *Tracker) persist(ctx context.Context) SaveStatus {
	t.status = SaveStatus{State: Attempting, At: t.now()}

	rep := t.gateway.Attempt(ctx, t.store)
	t.status.Backend = rep.Backend
	t.status.Version = rep.Version
	t.status.At = t.now()
	if rep.OK {
		t.status.State = Succeeded
		return t.status
	}

	t.status.State = Failed
	t.status.Err = rep.Err
	t.status.Fallback = rep.Payload
	if rep.Payload == nil {
		t.status.Fallback, _ = model.Encode(t.store)
	}
	return t.status
}

// mutate applies fn and persists when fn succeeds. Rejected actions change
// nothing and do not touch storage.
func (t *Tracker) mutate(ctx context.Context, action string, fn func(*model.Store) error) (SaveStatus, error) {
	if err := fn(t.store); err != nil {
		t.logger.Debug("action rejected", "action", action, "err", err)
		return t.status, err
	}
	return t.persist(ctx), nil
}

// CreateHabit adds a habit and saves.
func (t *Tracker) CreateHabit(ctx context.Context, name, color string) (model.Habit, SaveStatus, error) {
	var h model.Habit
	st, err := t.mutate(ctx, "create_habit", func(s *model.Store) error {
		var err error
		h, err = s.CreateHabit(name, color)
		return err
	})
	return h, st, err
}

// DeleteHabit removes a habit with its history and saves.
func (t *Tracker) DeleteHabit(ctx context.Context, name string) (SaveStatus, error) {
	return t.mutate(ctx, "delete_habit", func(s *model.Store) error {
		return s.DeleteHabit(name)
	})
}

// SetHabitColor recolors a habit and saves.
func (t *Tracker) SetHabitColor(ctx context.Context, name, color string) (SaveStatus, error) {
	return t.mutate(ctx, "set_color", func(s *model.Store) error {
		return s.SetHabitColor(name, color)
	})
}

// AddOccurrence logs one occurrence and saves. It returns the new count.
func (t *Tracker) AddOccurrence(ctx context.Context, name string, d model.Date) (int, SaveStatus, error) {
	return t.AddOccurrences(ctx, name, d, 1)
}

// AddOccurrences logs times occurrences on d and saves once.
func (t *Tracker) AddOccurrences(ctx context.Context, name string, d model.Date, times int) (int, SaveStatus, error) {
	if times < 1 {
		return 0, t.status, &model.ValidationError{Field: "count", Reason: "must be at least 1"}
	}
	var n int
	st, err := t.mutate(ctx, "add_occurrence", func(s *model.Store) error {
		for range times {
			var err error
			if n, err = s.AddOccurrence(name, d); err != nil {
				return err
			}
		}
		return nil
	})
	return n, st, err
}

// RemoveOccurrence takes one occurrence off and saves. Removing from a day
// with no activity returns a NotFoundError and changes nothing.
func (t *Tracker) RemoveOccurrence(ctx context.Context, name string, d model.Date) (int, SaveStatus, error) {
	var n int
	st, err := t.mutate(ctx, "remove_occurrence", func(s *model.Store) error {
		var err error
		n, err = s.RemoveOccurrence(name, d)
		return err
	})
	return n, st, err
}

// AddJournalEntry appends a journal entry and saves.
func (t *Tracker) AddJournalEntry(ctx context.Context, d model.Date, text string) (model.JournalEntry, SaveStatus, error) {
	var e model.JournalEntry
	st, err := t.mutate(ctx, "add_journal_entry", func(s *model.Store) error {
		var err error
		e, err = s.AppendJournalEntry(d, text)
		return err
	})
	return e, st, err
}

// UpdateJournalEntry rewrites the entry at stored index i and saves.
func (t *Tracker) UpdateJournalEntry(ctx context.Context, i int, text string) (SaveStatus, error) {
	return t.mutate(ctx, "update_journal_entry", func(s *model.Store) error {
		return s.UpdateJournalEntry(i, text)
	})
}

// DeleteJournalEntry removes the entry at stored index i and saves.
func (t *Tracker) DeleteJournalEntry(ctx context.Context, i int) (SaveStatus, error) {
	return t.mutate(ctx, "delete_journal_entry", func(s *model.Store) error {
		_, err := s.DeleteJournalEntry(i)
		return err
	})
}

// Import replaces the whole store with a backup document and saves. A
// backup that cannot be read or decoded is rejected with an *ImportError
// and the current store is kept.
func (t *Tracker) Import(ctx context.Context, r io.Reader) (SaveStatus, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxImportSize+1))
	if err != nil {
		return t.status, &ImportError{Err: err}
	}
	if len(data) > maxImportSize {
		return t.status, &ImportError{Err: errors.New("file too large")}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return t.status, &ImportError{Err: errors.New("file is empty")}
	}

	s, migrated, err := model.Load(data)
	if err != nil {
		return t.status, &ImportError{Err: err}
	}
	t.logger.Info("backup imported", "habits", s.Len(), "entries", len(s.Journal()), "migrated", migrated)
	t.store = s
	t.source = "import"
	return t.persist(ctx), nil
}

// Export writes the current store as a backup document.
func (t *Tracker) Export(w io.Writer) error {
	data, err := model.Encode(t.store)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// SaveNow persists the current store without changing it.
func (t *Tracker) SaveNow(ctx context.Context) SaveStatus {
	return t.persist(ctx)
}

// Reload replaces the store with the remote document. It reports false and
// keeps the current store when nothing could be loaded.
func (t *Tracker) Reload(ctx context.Context) bool {
	res := t.gateway.Load(ctx)
	if res == nil {
		return false
	}
	t.store = res.Store
	t.source = res.Source
	if res.Migrated {
		t.persist(ctx)
	}
	return true
}

// WriteFallback writes the fallback document of a failed save to path so the
// data survives the session. It is a no-op for any other state.
func WriteFallback(path string, st SaveStatus) error {
	if st.State != Failed || len(st.Fallback) == 0 || path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating backup dir: %w", err)
	}
	data := append(bytes.Clone(st.Fallback), '\n')
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing backup: %w", err)
	}
	return nil
}
