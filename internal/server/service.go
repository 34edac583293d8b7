// Package server exposes the habit tracker over a local HTTP API with a
// server-sent change stream.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/theirongolddev/habitboard/internal/model"
	"github.com/theirongolddev/habitboard/internal/tracker"
)

// Config controls the server runtime behavior.
type Config struct {
	Addr         string
	CORSOrigins  []string
	Backend      string
	SyncInterval time.Duration // 0 disables periodic reloads
	EventsBuffer int
	Today        func() model.Date
}

// Event is emitted whenever the store changes.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action,omitempty"`
	Habits    int       `json:"habits"`
	Entries   int       `json:"entries"`
	Save      SaveDTO   `json:"save"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	Source          string    `json:"source"`
	Backend         string    `json:"backend"`
	SyncIntervalSec int       `json:"sync_interval_sec"`
	LastSyncAt      time.Time `json:"last_sync_at,omitzero"`
	SyncCount       int64     `json:"sync_count"`
	Habits          int       `json:"habits"`
	Entries         int       `json:"entries"`
	LastSave        SaveDTO   `json:"last_save"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service owns the tracker for the lifetime of the server. Every tracker
// call goes through trMu; event state is guarded by mu.
type Service struct {
	cfg    Config
	logger *slog.Logger

	trMu    sync.Mutex
	tracker *tracker.Tracker

	mu          sync.RWMutex
	startedAt   time.Time
	lastSyncAt  time.Time
	syncCount   int64
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a service serving tr.
func New(cfg Config, tr *tracker.Tracker, logger *slog.Logger) *Service {
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8788"
	}
	if cfg.Today == nil {
		cfg.Today = model.Today
	}
	if cfg.SyncInterval > 0 && cfg.SyncInterval < 10*time.Second {
		cfg.SyncInterval = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		cfg:       cfg,
		logger:    logger,
		tracker:   tr,
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Run serves the API until ctx is canceled. When a sync interval is set the
// store is reloaded from the remote on every tick.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.logger.Info("serving", "addr", s.cfg.Addr, "backend", s.cfg.Backend)

	var tick <-chan time.Time
	if s.cfg.SyncInterval > 0 {
		ticker := time.NewTicker(s.cfg.SyncInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case <-tick:
			s.syncOnce(ctx)
		case err := <-errCh:
			return fmt.Errorf("http server: %w", err)
		}
	}
}

// syncOnce reloads the remote document. It is skipped while local changes
// are unsaved, so a failed save is never overwritten by the older remote.
func (s *Service) syncOnce(ctx context.Context) bool {
	s.trMu.Lock()
	if s.tracker.LastSave().State == tracker.Failed {
		s.trMu.Unlock()
		s.logger.Debug("sync skipped, local changes unsaved")
		return false
	}
	before := s.tracker.Snapshot()
	reloaded := s.tracker.Reload(ctx)
	changed := reloaded && !before.Equal(s.tracker.Snapshot())
	ev := s.eventLocked("reload")
	s.trMu.Unlock()

	s.mu.Lock()
	s.lastSyncAt = time.Now()
	s.syncCount++
	s.mu.Unlock()

	if changed {
		s.publishEvent(ev)
	}
	return changed
}

// eventLocked builds an event from the tracker state. trMu must be held.
func (s *Service) eventLocked(action string) Event {
	snap := s.tracker.Snapshot()
	typ := "change"
	if action == "reload" {
		typ = "reload"
	}
	return Event{
		Type:      typ,
		Timestamp: time.Now(),
		Action:    action,
		Habits:    snap.Len(),
		Entries:   len(snap.Journal()),
		Save:      saveDTO(s.tracker.LastSave()),
	}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.nextEventID++
	ev.ID = s.nextEventID
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) status() Status {
	s.trMu.Lock()
	snap := s.tracker.Snapshot()
	source := s.tracker.Source()
	last := s.tracker.LastSave()
	s.trMu.Unlock()

	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		Source:          source,
		Backend:         s.cfg.Backend,
		SyncIntervalSec: int(s.cfg.SyncInterval.Seconds()),
		LastSyncAt:      s.lastSyncAt,
		SyncCount:       s.syncCount,
		Habits:          snap.Len(),
		Entries:         len(snap.Journal()),
		LastSave:        saveDTO(last),
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
