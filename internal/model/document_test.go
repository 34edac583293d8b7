package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLegacyJournalMigration(t *testing.T) {
	doc, err := Decode([]byte(`{"notes": {"2023": "hello"}}`))
	require.NoError(t, err)
	require.Equal(t, NotesLegacy, doc.Notes)

	assert.True(t, doc.MigrateLegacyJournal())
	want := []JournalEntry{{Date: MustDate(2023, time.January, 1), Text: "hello"}}
	assert.Equal(t, want, doc.Entries)

	// Second run is a no-op.
	assert.False(t, doc.MigrateLegacyJournal())
	assert.Equal(t, want, doc.Entries)
	assert.Equal(t, NotesEntries, doc.Notes)
}

func TestLegacyJournalKeepsDocumentOrder(t *testing.T) {
	s, migrated, err := Load([]byte(`{"notes": {"2024": "b", "2022": "a"}}`))
	require.NoError(t, err)
	assert.True(t, migrated)

	j := s.Journal()
	require.Len(t, j, 2)
	assert.Equal(t, "2024-01-01", j[0].Date.String())
	assert.Equal(t, "2022-01-01", j[1].Date.String())
}

func TestLoadCurrentForm(t *testing.T) {
	data := []byte(`{
	  "Tennis": {"color": "#FF6B6B", "count": {"2024-02-01": 2, "2024-01-31": 1, "2024-01-15": 0}},
	  "DSA Solving": {"color": "#4ECDC4", "count": {}},
	  "notes": [{"date": "2024-02-01", "text": "line one\nline two"}]
	}`)

	s, migrated, err := Load(data)
	require.NoError(t, err)
	assert.False(t, migrated)

	assert.Equal(t, []string{"Tennis", "DSA Solving"}, s.HabitNames())
	assert.Equal(t, 2, s.Count("Tennis", feb01))
	h, _ := s.Habit("Tennis")
	assert.Len(t, h.Occurrences, 2, "non-positive counts are dropped")
	assert.Equal(t, "line one\nline two", s.Journal()[0].Text)
}

func TestLoadMissingNotesAndColor(t *testing.T) {
	s, migrated, err := Load([]byte(`{"Chess": {"count": {"2024-01-31": 3}}, "notes": null}`))
	require.NoError(t, err)
	assert.False(t, migrated)

	h, err := s.Habit("Chess")
	require.NoError(t, err)
	assert.Equal(t, DefaultColor, h.Color)
	assert.Equal(t, 3, h.Count(jan31))
	assert.Empty(t, s.Journal())
}

func TestDecodeRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"not json":        `{"Tennis":`,
		"array":           `[1, 2]`,
		"empty input":     ``,
		"habit string":    `{"Tennis": "red"}`,
		"bad date key":    `{"Tennis": {"color": "#fff", "count": {"2024-02-30": 1}}}`,
		"fractional":      `{"Tennis": {"color": "#fff", "count": {"2024-02-01": 1.5}}}`,
		"bad entry date":  `{"notes": [{"date": "yesterday", "text": "x"}]}`,
		"notes number":    `{"notes": 7}`,
		"legacy non-year": `{"notes": {"someday": "x"}}`,
		"empty name":      `{"": {"color": "#fff"}}`,
		"trailing data":   `{} {}`,
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := Load([]byte(in))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedDocument)
		})
	}
}

func TestEncodeCanonical(t *testing.T) {
	s := NewStore()
	_, _ = s.CreateHabit("Tennis", "#FF6B6B")
	_, _ = s.AddOccurrence("Tennis", feb01)
	_, _ = s.AddOccurrence("Tennis", jan31)
	_, _ = s.CreateHabit("Empty", "#000")
	_, _ = s.AppendJournalEntry(feb01, "a <b> & c")

	got, err := Encode(s)
	require.NoError(t, err)

	want := `{
  "Tennis": {
    "color": "#FF6B6B",
    "count": {
      "2024-01-31": 1,
      "2024-02-01": 1
    }
  },
  "Empty": {
    "color": "#000",
    "count": {}
  },
  "notes": [
    {
      "date": "2024-02-01",
      "text": "a <b> & c"
    }
  ]
}`
	assert.Equal(t, want, string(got))
	assert.True(t, json.Valid(got))
}

func TestEncodeEmptyStore(t *testing.T) {
	got, err := Encode(NewStore())
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"notes\": []\n}", string(got))
}

func TestEncodeLoadRoundTrip(t *testing.T) {
	s := DefaultStore()
	_, _ = s.AddOccurrence("DSA Solving", jan31)
	_, _ = s.AddOccurrence("DSA Solving", jan31)
	_, _ = s.AppendJournalEntry(jan31, "done")

	data, err := Encode(s)
	require.NoError(t, err)
	back, migrated, err := Load(data)
	require.NoError(t, err)
	assert.False(t, migrated)
	assert.True(t, s.Equal(back))
}
