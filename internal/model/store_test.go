package model

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	jan31 = MustDate(2024, time.January, 31)
	feb01 = MustDate(2024, time.February, 1)
)

func TestDefaultStore(t *testing.T) {
	s := DefaultStore()

	assert.Equal(t, []string{"Tennis", "DSA Solving", "Finance Learning"}, s.HabitNames())
	h, err := s.Habit("Tennis")
	require.NoError(t, err)
	assert.Equal(t, "#FF6B6B", h.Color)
	assert.Empty(t, h.Occurrences)
	assert.Empty(t, s.Journal())
}

func TestCreateHabit(t *testing.T) {
	s := NewStore()

	h, err := s.CreateHabit("  Reading ", "")
	require.NoError(t, err)
	assert.Equal(t, "Reading", h.Name)
	assert.Equal(t, DefaultColor, h.Color)

	_, err = s.CreateHabit("Reading", "#000000")
	var dup *DuplicateNameError
	require.ErrorAs(t, err, &dup)
	assert.False(t, dup.Reserved)

	_, err = s.CreateHabit("notes", "#000000")
	require.ErrorAs(t, err, &dup)
	assert.True(t, dup.Reserved)
	assert.True(t, IsDuplicate(err))

	_, err = s.CreateHabit("   ", "#000000")
	assert.True(t, IsValidation(err))

	// Names are case-sensitive.
	_, err = s.CreateHabit("reading", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Reading", "reading"}, s.HabitNames())
}

func TestAddRemoveOccurrenceRoundTrip(t *testing.T) {
	s := DefaultStore()
	_, err := s.AddOccurrence("Tennis", jan31)
	require.NoError(t, err)
	before, _ := s.Habit("Tennis")

	n, err := s.AddOccurrence("Tennis", jan31)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = s.RemoveOccurrence("Tennis", jan31)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	after, _ := s.Habit("Tennis")
	assert.Equal(t, before.Occurrences, after.Occurrences)
}

func TestRemoveLastOccurrenceDeletesKey(t *testing.T) {
	s := DefaultStore()
	_, err := s.AddOccurrence("Tennis", feb01)
	require.NoError(t, err)

	n, err := s.RemoveOccurrence("Tennis", feb01)
	require.NoError(t, err)
	assert.Zero(t, n)

	h, _ := s.Habit("Tennis")
	_, present := h.Occurrences[feb01]
	assert.False(t, present, "date key must be removed, not set to zero")
}

func TestRemoveOccurrenceMissing(t *testing.T) {
	s := DefaultStore()

	_, err := s.RemoveOccurrence("Tennis", feb01)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "occurrence", nf.Kind)
	assert.Equal(t, feb01, nf.Date)

	_, err = s.RemoveOccurrence("Chess", feb01)
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "habit", nf.Kind)

	_, err = s.AddOccurrence("Chess", feb01)
	assert.True(t, IsNotFound(err))
}

func TestDeleteHabitDiscardsHistory(t *testing.T) {
	s := DefaultStore()
	_, _ = s.AddOccurrence("Tennis", feb01)

	require.NoError(t, s.DeleteHabit("Tennis"))
	assert.False(t, s.HasHabit("Tennis"))
	assert.Equal(t, []string{"DSA Solving", "Finance Learning"}, s.HabitNames())

	_, err := s.CreateHabit("Tennis", "")
	require.NoError(t, err)
	h, _ := s.Habit("Tennis")
	assert.Empty(t, h.Occurrences)

	assert.True(t, IsNotFound(s.DeleteHabit("Chess")))
}

func TestSetHabitColor(t *testing.T) {
	s := DefaultStore()
	require.NoError(t, s.SetHabitColor("Tennis", "#123456"))
	h, _ := s.Habit("Tennis")
	assert.Equal(t, "#123456", h.Color)

	assert.True(t, IsNotFound(s.SetHabitColor("Chess", "#123456")))
	assert.True(t, IsValidation(s.SetHabitColor("Tennis", " ")))
}

func TestJournal(t *testing.T) {
	s := NewStore()

	e, err := s.AppendJournalEntry(feb01, "  first line\nsecond line\n\n")
	require.NoError(t, err)
	assert.Equal(t, "first line\nsecond line", e.Text)

	_, err = s.AppendJournalEntry(feb01, " \n\t ")
	assert.True(t, IsValidation(err))
	assert.Len(t, s.Journal(), 1)

	_, err = s.AppendJournalEntry(feb01, "same day")
	require.NoError(t, err)

	require.NoError(t, s.UpdateJournalEntry(1, "edited"))
	assert.Equal(t, "edited", s.Journal()[1].Text)
	assert.True(t, IsValidation(s.UpdateJournalEntry(1, "")))
	assert.True(t, IsValidation(s.UpdateJournalEntry(5, "x")))

	removed, err := s.DeleteJournalEntry(0)
	require.NoError(t, err)
	assert.Equal(t, "first line\nsecond line", removed.Text)
	assert.Len(t, s.Journal(), 1)
}

func TestHabitReturnsCopy(t *testing.T) {
	s := DefaultStore()
	h, _ := s.Habit("Tennis")
	h.Occurrences[feb01] = 9

	assert.Zero(t, s.Count("Tennis", feb01))
}

func TestCloneIsIndependent(t *testing.T) {
	s := DefaultStore()
	_, _ = s.AddOccurrence("Tennis", feb01)
	c := s.Clone()
	require.True(t, s.Equal(c))

	_, _ = c.AddOccurrence("Tennis", feb01)
	_, _ = c.AppendJournalEntry(feb01, "x")

	assert.Equal(t, 1, s.Count("Tennis", feb01))
	assert.Empty(t, s.Journal())
	assert.False(t, s.Equal(c))
}

func TestErrorsUnwrapToSentinels(t *testing.T) {
	assert.True(t, errors.Is(&ValidationError{}, ErrValidation))
	assert.True(t, errors.Is(&NotFoundError{}, ErrNotFound))
	assert.True(t, errors.Is(&DuplicateNameError{}, ErrDuplicateName))
	assert.True(t, IsUserError(&NotFoundError{}))
	assert.False(t, IsUserError(errors.New("boom")))
}
