// Package model defines the habit store, its invariants and the persisted
// document format.
package model

import (
	"slices"
	"strings"
)

const (
	// ReservedName is the document key that holds the journal; no habit may
	// use it.
	ReservedName = "notes"
	// DefaultColor is assigned to habits created without a color.
	DefaultColor = "#9B59B6"
)

// Habit is a named activity with per-day occurrence counts.
// Every key in Occurrences has a count of at least 1.
type Habit struct {
	Name        string
	Color       string
	Occurrences map[Date]int
}

// Count returns the number of occurrences logged on d (0 when absent).
func (h Habit) Count(d Date) int {
	return h.Occurrences[d]
}

// Done reports whether the habit was logged at least once on d.
func (h Habit) Done(d Date) bool {
	_, ok := h.Occurrences[d]
	return ok
}

// Dates returns the logged dates in ascending order.
func (h Habit) Dates() []Date {
	dates := make([]Date, 0, len(h.Occurrences))
	for d := range h.Occurrences {
		dates = append(dates, d)
	}
	slices.SortFunc(dates, func(a, b Date) int { return a.compare(b) })
	return dates
}

// Total returns the sum of all counts.
func (h Habit) Total() int {
	total := 0
	for _, c := range h.Occurrences {
		total += c
	}
	return total
}

func (h *Habit) clone() *Habit {
	occ := make(map[Date]int, len(h.Occurrences))
	for d, c := range h.Occurrences {
		occ[d] = c
	}
	return &Habit{Name: h.Name, Color: h.Color, Occurrences: occ}
}

// JournalEntry is a free-text note tied to a calendar date. Several entries
// may share a date.
type JournalEntry struct {
	Date Date
	Text string
}

// Store is the root aggregate: every habit plus the journal. It is the unit
// of persistence and is not safe for concurrent use.
type Store struct {
	habits  map[string]*Habit
	order   []string
	journal []JournalEntry
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{habits: make(map[string]*Habit)}
}

// DefaultStore returns the store used when nothing could be loaded.
func DefaultStore() *Store {
	s := NewStore()
	s.putHabit("Tennis", "#FF6B6B")
	s.putHabit("DSA Solving", "#4ECDC4")
	s.putHabit("Finance Learning", "#FFE66D")
	return s
}

func (s *Store) putHabit(name, color string) *Habit {
	h := &Habit{Name: name, Color: color, Occurrences: make(map[Date]int)}
	s.habits[name] = h
	s.order = append(s.order, name)
	return h
}

func (s *Store) lookup(name string) (*Habit, error) {
	h, ok := s.habits[name]
	if !ok {
		return nil, &NotFoundError{Kind: "habit", Name: name}
	}
	return h, nil
}

// Len returns the number of habits.
func (s *Store) Len() int { return len(s.order) }

// HabitNames returns habit names in creation (document) order.
func (s *Store) HabitNames() []string {
	return slices.Clone(s.order)
}

// HasHabit reports whether a habit named name exists.
func (s *Store) HasHabit(name string) bool {
	_, ok := s.habits[name]
	return ok
}

// Habit returns a copy of the named habit.
func (s *Store) Habit(name string) (Habit, error) {
	h, err := s.lookup(name)
	if err != nil {
		return Habit{}, err
	}
	return *h.clone(), nil
}

// Habits returns copies of all habits in order.
func (s *Store) Habits() []Habit {
	out := make([]Habit, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, *s.habits[name].clone())
	}
	return out
}

// CreateHabit adds a new habit with no history. Surrounding whitespace is
// trimmed from name; an empty color falls back to DefaultColor.
func (s *Store) CreateHabit(name, color string) (Habit, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Habit{}, &ValidationError{Field: "name", Reason: "habit name is empty"}
	}
	if name == ReservedName {
		return Habit{}, &DuplicateNameError{Name: name, Reserved: true}
	}
	if s.HasHabit(name) {
		return Habit{}, &DuplicateNameError{Name: name}
	}
	color = strings.TrimSpace(color)
	if color == "" {
		color = DefaultColor
	}
	return *s.putHabit(name, color).clone(), nil
}

// DeleteHabit removes the habit and its whole occurrence history.
func (s *Store) DeleteHabit(name string) error {
	if _, err := s.lookup(name); err != nil {
		return err
	}
	delete(s.habits, name)
	s.order = slices.DeleteFunc(s.order, func(n string) bool { return n == name })
	return nil
}

// SetHabitColor replaces the habit's color.
func (s *Store) SetHabitColor(name, color string) error {
	h, err := s.lookup(name)
	if err != nil {
		return err
	}
	color = strings.TrimSpace(color)
	if color == "" {
		return &ValidationError{Field: "color", Reason: "color is empty"}
	}
	h.Color = color
	return nil
}

// AddOccurrence logs one occurrence on d and returns the new count.
func (s *Store) AddOccurrence(name string, d Date) (int, error) {
	h, err := s.lookup(name)
	if err != nil {
		return 0, err
	}
	if d.IsZero() {
		return 0, &ValidationError{Field: "date", Reason: "date is required"}
	}
	h.Occurrences[d]++
	return h.Occurrences[d], nil
}

// RemoveOccurrence takes one occurrence off d and returns the remaining
// count. A count that reaches zero removes the date entirely.
func (s *Store) RemoveOccurrence(name string, d Date) (int, error) {
	h, err := s.lookup(name)
	if err != nil {
		return 0, err
	}
	c, ok := h.Occurrences[d]
	if !ok {
		return 0, &NotFoundError{Kind: "occurrence", Name: name, Date: d}
	}
	if c <= 1 {
		delete(h.Occurrences, d)
		return 0, nil
	}
	h.Occurrences[d] = c - 1
	return c - 1, nil
}

// Count returns the occurrences of name on d, 0 when the habit or the date
// is absent.
func (s *Store) Count(name string, d Date) int {
	if h, ok := s.habits[name]; ok {
		return h.Occurrences[d]
	}
	return 0
}

// AppendJournalEntry appends an entry. Text is trimmed; internal newlines
// are kept verbatim.
func (s *Store) AppendJournalEntry(d Date, text string) (JournalEntry, error) {
	if d.IsZero() {
		return JournalEntry{}, &ValidationError{Field: "date", Reason: "date is required"}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return JournalEntry{}, &ValidationError{Field: "text", Reason: "journal entry is empty"}
	}
	e := JournalEntry{Date: d, Text: text}
	s.journal = append(s.journal, e)
	return e, nil
}

// UpdateJournalEntry replaces the text of the entry at stored index i.
func (s *Store) UpdateJournalEntry(i int, text string) error {
	if err := s.checkJournalIndex(i); err != nil {
		return err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return &ValidationError{Field: "text", Reason: "journal entry is empty"}
	}
	s.journal[i].Text = text
	return nil
}

// DeleteJournalEntry removes the entry at stored index i and returns it.
func (s *Store) DeleteJournalEntry(i int) (JournalEntry, error) {
	if err := s.checkJournalIndex(i); err != nil {
		return JournalEntry{}, err
	}
	e := s.journal[i]
	s.journal = slices.Delete(s.journal, i, i+1)
	return e, nil
}

func (s *Store) checkJournalIndex(i int) error {
	if i < 0 || i >= len(s.journal) {
		return &ValidationError{Field: "index", Reason: "no journal entry at that position"}
	}
	return nil
}

// Journal returns the entries in stored order.
func (s *Store) Journal() []JournalEntry {
	return slices.Clone(s.journal)
}

// Clone returns a deep copy.
func (s *Store) Clone() *Store {
	c := &Store{
		habits:  make(map[string]*Habit, len(s.habits)),
		order:   slices.Clone(s.order),
		journal: slices.Clone(s.journal),
	}
	for name, h := range s.habits {
		c.habits[name] = h.clone()
	}
	return c
}

// Equal reports whether both stores hold the same habits, in the same
// order, with the same history and journal.
func (s *Store) Equal(other *Store) bool {
	if !slices.Equal(s.order, other.order) || !slices.Equal(s.journal, other.journal) {
		return false
	}
	for name, h := range s.habits {
		o, ok := other.habits[name]
		if !ok || h.Color != o.Color || len(h.Occurrences) != len(o.Occurrences) {
			return false
		}
		for d, c := range h.Occurrences {
			if o.Occurrences[d] != c {
				return false
			}
		}
	}
	return true
}
