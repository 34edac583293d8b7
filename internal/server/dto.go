package server

import (
	"bytes"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/theirongolddev/habitboard/internal/model"
	"github.com/theirongolddev/habitboard/internal/tracker"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify),
		goldmark.WithRendererOptions(html.WithHardWraps()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

// renderMarkdown converts journal text to sanitized HTML. Conversion errors
// fall back to the escaped plain text.
func renderMarkdown(text string) string {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(text), &buf); err != nil {
		return sanitizer.Sanitize(text)
	}
	return string(sanitizer.SanitizeBytes(buf.Bytes()))
}

// SaveDTO is the wire form of a tracker.SaveStatus. Fallback carries the
// document to keep by hand when the save failed.
type SaveDTO struct {
	State    string    `json:"state"`
	At       time.Time `json:"at,omitzero"`
	Backend  string    `json:"backend,omitempty"`
	Version  int64     `json:"version,omitempty"`
	Error    string    `json:"error,omitempty"`
	Fallback string    `json:"fallback,omitempty"`
}

func saveDTO(st tracker.SaveStatus) SaveDTO {
	dto := SaveDTO{
		State:   st.State.String(),
		At:      st.At,
		Backend: st.Backend,
		Version: st.Version,
	}
	if st.Err != nil {
		dto.Error = st.Err.Error()
	}
	if st.State == tracker.Failed {
		dto.Fallback = string(st.Fallback)
	}
	return dto
}

type HabitDTO struct {
	Name        string         `json:"name"`
	Color       string         `json:"color"`
	Total       int            `json:"total"`
	Occurrences map[string]int `json:"occurrences"`
}

func habitDTO(h model.Habit) HabitDTO {
	occ := make(map[string]int, len(h.Occurrences))
	for d, c := range h.Occurrences {
		occ[d.String()] = c
	}
	return HabitDTO{Name: h.Name, Color: h.Color, Total: h.Total(), Occurrences: occ}
}

type JournalDTO struct {
	Index int    `json:"index"`
	Date  string `json:"date"`
	Text  string `json:"text"`
	HTML  string `json:"html"`
}

func journalDTO(item model.JournalItem) JournalDTO {
	return JournalDTO{
		Index: item.Index,
		Date:  item.Date.String(),
		Text:  item.Text,
		HTML:  renderMarkdown(item.Text),
	}
}

type StoreDTO struct {
	Habits  []HabitDTO   `json:"habits"`
	Journal []JournalDTO `json:"journal"`
}

type SummaryDTO struct {
	Name          string `json:"name"`
	Color         string `json:"color"`
	Total         int    `json:"total"`
	ActiveDays    int    `json:"active_days"`
	Streak        int    `json:"streak"`
	LongestStreak int    `json:"longest_streak"`
}

type SummaryResponse struct {
	Month  string       `json:"month"`
	Today  string       `json:"today"`
	Habits []SummaryDTO `json:"habits"`
}

type DayMarkDTO struct {
	Habit string `json:"habit"`
	Color string `json:"color"`
	Count int    `json:"count"`
}

type CalendarResponse struct {
	Month string                  `json:"month"`
	Weeks [][7]int                `json:"weeks"`
	Days  map[string][]DayMarkDTO `json:"days"`
}

type ShareDTO struct {
	Name         string  `json:"name"`
	Color        string  `json:"color"`
	Count        int     `json:"count"`
	SharePercent float64 `json:"share_percent"`
}

type DistributionResponse struct {
	Month  string     `json:"month"`
	Total  int        `json:"total"`
	Shares []ShareDTO `json:"shares"`
}

type HeatmapCellDTO struct {
	Date      string  `json:"date"`
	Count     int     `json:"count"`
	Intensity float64 `json:"intensity"`
}

type HeatmapResponse struct {
	Habit string           `json:"habit"`
	Color string           `json:"color"`
	Month string           `json:"month"`
	Max   int              `json:"max"`
	Cells []HeatmapCellDTO `json:"cells"`
}

// MutationResponse wraps the result of an action with its save status.
type MutationResponse struct {
	Result any     `json:"result,omitempty"`
	Save   SaveDTO `json:"save"`
}

type createHabitRequest struct {
	Name  string `json:"name" validate:"required,max=64"`
	Color string `json:"color" validate:"omitempty,hexcolor"`
}

type colorRequest struct {
	Color string `json:"color" validate:"required,hexcolor"`
}

type occurrenceRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
}

type journalRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
	Text string `json:"text" validate:"required"`
}

type journalUpdateRequest struct {
	Text string `json:"text" validate:"required"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}
