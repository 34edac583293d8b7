package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// NotesForm identifies which shape the journal had in a decoded document.
type NotesForm int

const (
	// NotesAbsent means the document had no "notes" key (or it was null).
	NotesAbsent NotesForm = iota
	// NotesEntries is the current form: a list of {date, text} objects.
	NotesEntries
	// NotesLegacy is the old form: one text blob per year, keyed by year.
	NotesLegacy
)

func (f NotesForm) String() string {
	switch f {
	case NotesEntries:
		return "entries"
	case NotesLegacy:
		return "legacy"
	default:
		return "absent"
	}
}

// LegacyNote is one year's blob from the legacy journal form.
type LegacyNote struct {
	Year int
	Text string
}

// HabitRecord is a habit as it appears in a document.
type HabitRecord struct {
	Name  string
	Color string
	Count map[Date]int
}

// Document is the decoded persisted form, before it becomes a Store. The
// journal is a tagged union: Entries is set for NotesEntries, Legacy for
// NotesLegacy.
type Document struct {
	Habits  []HabitRecord
	Notes   NotesForm
	Entries []JournalEntry
	Legacy  []LegacyNote
}

type entryJSON struct {
	Date string `json:"date"`
	Text string `json:"text"`
}

type habitJSON struct {
	Color string         `json:"color"`
	Count map[string]int `json:"count"`
}

// Decode parses a persisted document. Habit and legacy-year order follow the
// document. Counts of zero or less are dropped.
func Decode(data []byte) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	if err := expectDelim(dec, '{'); err != nil {
		return nil, &DocumentError{Err: err}
	}

	doc := &Document{}
	index := make(map[string]int)
	for dec.More() {
		key, err := objectKey(dec)
		if err != nil {
			return nil, &DocumentError{Err: err}
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, &DocumentError{Path: key, Err: err}
		}

		if key == ReservedName {
			if err := doc.decodeNotes(raw); err != nil {
				return nil, &DocumentError{Path: key, Err: err}
			}
			continue
		}

		rec, err := decodeHabit(key, raw)
		if err != nil {
			return nil, &DocumentError{Path: key, Err: err}
		}
		if i, dup := index[key]; dup {
			doc.Habits[i] = rec
			continue
		}
		index[key] = len(doc.Habits)
		doc.Habits = append(doc.Habits, rec)
	}

	if err := expectDelim(dec, '}'); err != nil {
		return nil, &DocumentError{Err: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &DocumentError{Err: errors.New("trailing data after document")}
	}
	return doc, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

func objectKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected object key, got %v", tok)
	}
	return key, nil
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

func firstByte(raw json.RawMessage) byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}

func decodeHabit(name string, raw json.RawMessage) (HabitRecord, error) {
	if name == "" {
		return HabitRecord{}, errors.New("habit name is empty")
	}
	if firstByte(raw) != '{' {
		return HabitRecord{}, errors.New("habit must be an object")
	}

	var h struct {
		Color *string                `json:"color"`
		Count map[string]json.Number `json:"count"`
	}
	if err := json.Unmarshal(raw, &h); err != nil {
		return HabitRecord{}, err
	}

	rec := HabitRecord{Name: name, Color: DefaultColor, Count: make(map[Date]int, len(h.Count))}
	if h.Color != nil && *h.Color != "" {
		rec.Color = *h.Color
	}
	for key, num := range h.Count {
		d, err := ParseDate(key)
		if err != nil {
			return HabitRecord{}, fmt.Errorf("count: %w", err)
		}
		n, err := strconv.Atoi(num.String())
		if err != nil {
			return HabitRecord{}, fmt.Errorf("count %s: %q is not an integer", key, num)
		}
		if n > 0 {
			rec.Count[d] = n
		}
	}
	return rec, nil
}

func (doc *Document) decodeNotes(raw json.RawMessage) error {
	switch firstByte(raw) {
	case '[':
		var entries []entryJSON
		if err := json.Unmarshal(raw, &entries); err != nil {
			return err
		}
		doc.Notes = NotesEntries
		doc.Entries = make([]JournalEntry, 0, len(entries))
		doc.Legacy = nil
		for i, e := range entries {
			d, err := ParseDate(e.Date)
			if err != nil {
				return fmt.Errorf("entry %d: %w", i, err)
			}
			doc.Entries = append(doc.Entries, JournalEntry{Date: d, Text: e.Text})
		}
		return nil
	case '{':
		legacy, err := decodeLegacyNotes(raw)
		if err != nil {
			return err
		}
		doc.Notes = NotesLegacy
		doc.Legacy = legacy
		doc.Entries = nil
		return nil
	default:
		if isNull(raw) {
			doc.Notes = NotesAbsent
			doc.Entries, doc.Legacy = nil, nil
			return nil
		}
		return errors.New("notes must be a list or a year map")
	}
}

// decodeLegacyNotes reads {"<year>": "<text>"} keeping key order.
func decodeLegacyNotes(raw json.RawMessage) ([]LegacyNote, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}
	var notes []LegacyNote
	for dec.More() {
		key, err := objectKey(dec)
		if err != nil {
			return nil, err
		}
		var text string
		if err := dec.Decode(&text); err != nil {
			return nil, fmt.Errorf("year %s: %w", key, err)
		}
		year, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("%q is not a year", key)
		}
		if _, err := NewDate(year, 1, 1); err != nil {
			return nil, err
		}
		notes = append(notes, LegacyNote{Year: year, Text: text})
	}
	return notes, expectDelim(dec, '}')
}

// MigrateLegacyJournal converts a legacy year map into journal entries dated
// January 1st of each year. It reports whether anything changed; running it
// on an already migrated document is a no-op.
func (doc *Document) MigrateLegacyJournal() bool {
	if doc.Notes != NotesLegacy {
		return false
	}
	entries := make([]JournalEntry, 0, len(doc.Legacy))
	for _, n := range doc.Legacy {
		entries = append(entries, JournalEntry{Date: MustDate(n.Year, 1, 1), Text: n.Text})
	}
	doc.Notes = NotesEntries
	doc.Entries = entries
	doc.Legacy = nil
	return true
}

// Store builds a Store from the document, migrating a legacy journal first.
func (doc *Document) Store() *Store {
	doc.MigrateLegacyJournal()
	s := NewStore()
	for _, rec := range doc.Habits {
		h := s.putHabit(rec.Name, rec.Color)
		for d, c := range rec.Count {
			h.Occurrences[d] = c
		}
	}
	s.journal = append(s.journal, doc.Entries...)
	return s
}

// Load decodes a persisted document into a Store. migrated reports that the
// journal was converted from its legacy form and the result should be
// persisted again.
func Load(data []byte) (s *Store, migrated bool, err error) {
	doc, err := Decode(data)
	if err != nil {
		return nil, false, err
	}
	migrated = doc.MigrateLegacyJournal()
	return doc.Store(), migrated, nil
}

// Encode serializes the store in canonical form: two-space indentation,
// habits in store order, dates ascending, and the journal last under
// "notes" as a list.
func Encode(s *Store) ([]byte, error) {
	var compact bytes.Buffer
	compact.WriteByte('{')
	for i, name := range s.order {
		if i > 0 {
			compact.WriteByte(',')
		}
		h := s.habits[name]
		rec := habitJSON{Color: h.Color, Count: make(map[string]int, len(h.Occurrences))}
		for d, c := range h.Occurrences {
			rec.Count[d.String()] = c
		}
		if err := writeMember(&compact, name, rec); err != nil {
			return nil, fmt.Errorf("encoding habit %q: %w", name, err)
		}
	}

	entries := make([]entryJSON, 0, len(s.journal))
	for _, e := range s.journal {
		entries = append(entries, entryJSON{Date: e.Date.String(), Text: e.Text})
	}
	if len(s.order) > 0 {
		compact.WriteByte(',')
	}
	if err := writeMember(&compact, ReservedName, entries); err != nil {
		return nil, fmt.Errorf("encoding journal: %w", err)
	}
	compact.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "  "); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func writeMember(buf *bytes.Buffer, key string, v any) error {
	if err := writeJSON(buf, key); err != nil {
		return err
	}
	buf.WriteByte(':')
	return writeJSON(buf, v)
}

func writeJSON(buf *bytes.Buffer, v any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	// Encoder terminates every value with a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}
