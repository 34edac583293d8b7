package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/theirongolddev/habitboard/internal/model"
	"github.com/theirongolddev/habitboard/internal/pipeline"
	"github.com/theirongolddev/habitboard/internal/tracker"
)

const maxBodySize = 1 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError maps action errors onto status codes: rejected input is 400,
// unknown habits or entries 404, name clashes 409 and unreadable backups 422.
func writeError(w http.ResponseWriter, err error) {
	var (
		status = http.StatusInternalServerError
		kind   = "internal"
		ie     *tracker.ImportError
		verrs  validator.ValidationErrors
	)
	switch {
	case errors.As(err, &ie):
		status, kind = http.StatusUnprocessableEntity, "import"
	case errors.As(err, &verrs), model.IsValidation(err):
		status, kind = http.StatusBadRequest, "validation"
	case model.IsNotFound(err):
		status, kind = http.StatusNotFound, "not_found"
	case model.IsDuplicate(err):
		status, kind = http.StatusConflict, "duplicate"
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Kind: kind})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg, Kind: "validation"})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		badRequest(w, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	if err := validate.Struct(v); err != nil {
		writeError(w, err)
		return false
	}
	return true
}

// period reads ?month=YYYY-MM, defaulting to the current month.
func (s *Service) period(r *http.Request) (int, time.Month, error) {
	raw := r.URL.Query().Get("month")
	if raw == "" {
		today := s.cfg.Today()
		return today.Year(), today.Month(), nil
	}
	t, err := time.Parse("2006-01", raw)
	if err != nil {
		return 0, 0, &model.ValidationError{Field: "month", Reason: fmt.Sprintf("%q is not YYYY-MM", raw)}
	}
	return t.Year(), t.Month(), nil
}

func monthLabel(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, int(month))
}

// habitParam returns the decoded {name} segment. chi routes on RawPath when
// the request carries one (e.g. an escaped "/"), and the segment is still
// escaped then; otherwise it was decoded with r.URL.Path already.
func habitParam(r *http.Request) string {
	name := chi.URLParam(r, "name")
	if r.URL.RawPath == "" {
		return name
	}
	if un, err := url.PathUnescape(name); err == nil {
		return un
	}
	return name
}

func indexParam(r *http.Request) (int, error) {
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		return 0, &model.ValidationError{Field: "index", Reason: "must be an integer"}
	}
	return i, nil
}

// snapshot returns a copy of the store taken under the tracker lock.
func (s *Service) snapshot() *model.Store {
	s.trMu.Lock()
	defer s.trMu.Unlock()
	return s.tracker.Snapshot()
}

// mutate runs an action under the tracker lock, publishes a change event on
// success and writes the result with its save status.
func (s *Service) mutate(w http.ResponseWriter, r *http.Request, action string, status int,
	fn func(ctx context.Context, tr *tracker.Tracker) (any, tracker.SaveStatus, error),
) {
	s.trMu.Lock()
	result, st, err := fn(r.Context(), s.tracker)
	if err != nil {
		s.trMu.Unlock()
		writeError(w, err)
		return
	}
	ev := s.eventLocked(action)
	s.trMu.Unlock()

	s.publishEvent(ev)
	if st.State == tracker.Failed {
		s.logger.Warn("save failed", "action", action, "err", st.Err)
	}
	writeJSON(w, status, MutationResponse{Result: result, Save: saveDTO(st)})
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.status())
}

func (s *Service) handleStore(w http.ResponseWriter, _ *http.Request) {
	snap := s.snapshot()
	dto := StoreDTO{Habits: []HabitDTO{}, Journal: []JournalDTO{}}
	for _, h := range snap.Habits() {
		dto.Habits = append(dto.Habits, habitDTO(h))
	}
	for i, e := range snap.Journal() {
		dto.Journal = append(dto.Journal, journalDTO(model.JournalItem{Index: i, JournalEntry: e}))
	}
	writeJSON(w, http.StatusOK, dto)
}

func (s *Service) handleSummary(w http.ResponseWriter, r *http.Request) {
	year, month, err := s.period(r)
	if err != nil {
		writeError(w, err)
		return
	}
	today := s.cfg.Today()
	sums, err := pipeline.Summaries(s.snapshot(), year, month, today)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := SummaryResponse{Month: monthLabel(year, month), Today: today.String(), Habits: []SummaryDTO{}}
	for _, h := range sums {
		resp.Habits = append(resp.Habits, SummaryDTO(h))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Service) handleCalendar(w http.ResponseWriter, r *http.Request) {
	year, month, err := s.period(r)
	if err != nil {
		writeError(w, err)
		return
	}
	grid, err := pipeline.MonthGrid(year, month)
	if err != nil {
		writeError(w, err)
		return
	}

	snap := s.snapshot()
	resp := CalendarResponse{Month: monthLabel(year, month), Weeks: grid.Weeks, Days: map[string][]DayMarkDTO{}}
	for day := 1; day <= model.DaysIn(year, month); day++ {
		d := model.MustDate(year, month, day)
		for _, m := range pipeline.DayMarks(snap, d) {
			resp.Days[d.String()] = append(resp.Days[d.String()], DayMarkDTO(m))
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Service) handleDistribution(w http.ResponseWriter, r *http.Request) {
	year, month, err := s.period(r)
	if err != nil {
		writeError(w, err)
		return
	}
	dist, err := pipeline.Distribution(s.snapshot(), year, month)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := DistributionResponse{Month: monthLabel(year, month), Total: dist.Total, Shares: []ShareDTO{}}
	for _, sh := range dist.Shares {
		resp.Shares = append(resp.Shares, ShareDTO(sh))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Service) handleHeatmap(w http.ResponseWriter, r *http.Request) {
	year, month, err := s.period(r)
	if err != nil {
		writeError(w, err)
		return
	}
	hm, err := pipeline.Heatmap(s.snapshot(), habitParam(r), year, month)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := HeatmapResponse{Habit: hm.Habit, Color: hm.Color, Month: monthLabel(year, month), Max: hm.Max}
	for _, c := range hm.Cells {
		resp.Cells = append(resp.Cells, HeatmapCellDTO{Date: c.Date.String(), Count: c.Count, Intensity: c.Intensity})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Service) handleListHabits(w http.ResponseWriter, _ *http.Request) {
	habits := []HabitDTO{}
	for _, h := range s.snapshot().Habits() {
		habits = append(habits, habitDTO(h))
	}
	writeJSON(w, http.StatusOK, habits)
}

func (s *Service) handleCreateHabit(w http.ResponseWriter, r *http.Request) {
	var req createHabitRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s.mutate(w, r, "create_habit", http.StatusCreated, func(ctx context.Context, tr *tracker.Tracker) (any, tracker.SaveStatus, error) {
		h, st, err := tr.CreateHabit(ctx, req.Name, req.Color)
		return habitDTO(h), st, err
	})
}

func (s *Service) handleDeleteHabit(w http.ResponseWriter, r *http.Request) {
	name := habitParam(r)
	s.mutate(w, r, "delete_habit", http.StatusOK, func(ctx context.Context, tr *tracker.Tracker) (any, tracker.SaveStatus, error) {
		st, err := tr.DeleteHabit(ctx, name)
		return nil, st, err
	})
}

func (s *Service) handleSetColor(w http.ResponseWriter, r *http.Request) {
	var req colorRequest
	if !decodeBody(w, r, &req) {
		return
	}
	name := habitParam(r)
	s.mutate(w, r, "set_color", http.StatusOK, func(ctx context.Context, tr *tracker.Tracker) (any, tracker.SaveStatus, error) {
		st, err := tr.SetHabitColor(ctx, name, req.Color)
		return nil, st, err
	})
}

func (s *Service) handleAddOccurrence(w http.ResponseWriter, r *http.Request) {
	var req occurrenceRequest
	if !decodeBody(w, r, &req) {
		return
	}
	d, err := model.ParseDate(req.Date)
	if err != nil {
		writeError(w, err)
		return
	}
	name := habitParam(r)
	s.mutate(w, r, "add_occurrence", http.StatusOK, func(ctx context.Context, tr *tracker.Tracker) (any, tracker.SaveStatus, error) {
		n, st, err := tr.AddOccurrence(ctx, name, d)
		return map[string]int{"count": n}, st, err
	})
}

func (s *Service) handleRemoveOccurrence(w http.ResponseWriter, r *http.Request) {
	d, err := model.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, err)
		return
	}
	name := habitParam(r)
	s.mutate(w, r, "remove_occurrence", http.StatusOK, func(ctx context.Context, tr *tracker.Tracker) (any, tracker.SaveStatus, error) {
		n, st, err := tr.RemoveOccurrence(ctx, name, d)
		return map[string]int{"count": n}, st, err
	})
}

func (s *Service) handleListJournal(w http.ResponseWriter, r *http.Request) {
	entries := s.snapshot().Journal()
	var items []model.JournalItem
	if r.URL.Query().Get("order") == "stored" {
		items = make([]model.JournalItem, len(entries))
		for i, e := range entries {
			items[i] = model.JournalItem{Index: i, JournalEntry: e}
		}
	} else {
		items = pipeline.JournalNewestFirst(entries)
	}

	out := make([]JournalDTO, 0, len(items))
	for _, item := range items {
		out = append(out, journalDTO(item))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Service) handleAddJournal(w http.ResponseWriter, r *http.Request) {
	var req journalRequest
	if !decodeBody(w, r, &req) {
		return
	}
	d, err := model.ParseDate(req.Date)
	if err != nil {
		writeError(w, err)
		return
	}
	s.mutate(w, r, "add_journal_entry", http.StatusCreated, func(ctx context.Context, tr *tracker.Tracker) (any, tracker.SaveStatus, error) {
		e, st, err := tr.AddJournalEntry(ctx, d, req.Text)
		index := len(tr.Snapshot().Journal()) - 1
		return journalDTO(model.JournalItem{Index: index, JournalEntry: e}), st, err
	})
}

func (s *Service) handleUpdateJournal(w http.ResponseWriter, r *http.Request) {
	i, err := indexParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req journalUpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s.mutate(w, r, "update_journal_entry", http.StatusOK, func(ctx context.Context, tr *tracker.Tracker) (any, tracker.SaveStatus, error) {
		st, err := tr.UpdateJournalEntry(ctx, i, req.Text)
		return nil, st, err
	})
}

func (s *Service) handleDeleteJournal(w http.ResponseWriter, r *http.Request) {
	i, err := indexParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	s.mutate(w, r, "delete_journal_entry", http.StatusOK, func(ctx context.Context, tr *tracker.Tracker) (any, tracker.SaveStatus, error) {
		st, err := tr.DeleteJournalEntry(ctx, i)
		return nil, st, err
	})
}

func (s *Service) handleExport(w http.ResponseWriter, _ *http.Request) {
	s.trMu.Lock()
	defer s.trMu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="habit_tracker_backup.json"`)
	if err := s.tracker.Export(w); err != nil {
		s.logger.Error("export failed", "err", err)
	}
}

func (s *Service) handleImport(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, "import", http.StatusOK, func(ctx context.Context, tr *tracker.Tracker) (any, tracker.SaveStatus, error) {
		st, err := tr.Import(ctx, r.Body)
		return nil, st, err
	})
}

func (s *Service) handleSaveStatus(w http.ResponseWriter, _ *http.Request) {
	s.trMu.Lock()
	st := s.tracker.LastSave()
	s.trMu.Unlock()
	writeJSON(w, http.StatusOK, saveDTO(st))
}

func (s *Service) handleSave(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, "save", http.StatusOK, func(ctx context.Context, tr *tracker.Tracker) (any, tracker.SaveStatus, error) {
		return nil, tr.SaveNow(ctx), nil
	})
}

func (s *Service) handleSync(w http.ResponseWriter, r *http.Request) {
	changed := s.syncOnce(r.Context())
	writeJSON(w, http.StatusOK, map[string]bool{"changed": changed})
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current state immediately.
	s.trMu.Lock()
	current := s.eventLocked("")
	s.trMu.Unlock()
	current.Type = "snapshot"
	writeSSE(w, current)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}
