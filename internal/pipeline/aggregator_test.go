package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/habitboard/internal/model"
)

func date(t *testing.T, s string) model.Date {
	t.Helper()
	d, err := model.ParseDate(s)
	require.NoError(t, err)
	return d
}

// storeWith builds a store with one habit "h" logged on the given dates.
func storeWith(t *testing.T, dates ...string) *model.Store {
	t.Helper()
	s := model.NewStore()
	_, err := s.CreateHabit("h", "#fff")
	require.NoError(t, err)
	for _, d := range dates {
		_, err := s.AddOccurrence("h", date(t, d))
		require.NoError(t, err)
	}
	return s
}

func TestStreak(t *testing.T) {
	tests := []struct {
		name  string
		dates []string
		asOf  string
		want  int
	}{
		{"no history", nil, "2024-02-01", 0},
		{"reference day missing", []string{"2024-01-30", "2024-01-31"}, "2024-02-01", 0},
		{"month boundary", []string{"2024-01-31", "2024-02-01"}, "2024-02-01", 2},
		{"year boundary", []string{"2023-12-31", "2024-01-01"}, "2024-01-01", 2},
		{"leap day", []string{"2024-02-28", "2024-02-29", "2024-03-01"}, "2024-03-01", 3},
		{"gap stops the walk", []string{"2024-01-01", "2024-01-03", "2024-01-04"}, "2024-01-04", 2},
		{"counts do not matter", []string{"2024-01-03", "2024-01-03", "2024-01-03", "2024-01-04"}, "2024-01-04", 2},
		{"future entries ignored", []string{"2024-01-04", "2024-01-05"}, "2024-01-04", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := storeWith(t, tt.dates...)
			got, err := Streak(s, "h", date(t, tt.asOf))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLongestStreak(t *testing.T) {
	s := storeWith(t, "2023-12-30", "2023-12-31", "2024-01-01", "2024-01-05", "2024-01-06")
	got, err := LongestStreak(s, "h")
	require.NoError(t, err)
	assert.Equal(t, 3, got)

	empty := storeWith(t)
	got, err = LongestStreak(empty, "h")
	require.NoError(t, err)
	assert.Zero(t, got)
}

func TestTotalForPeriod(t *testing.T) {
	s := storeWith(t, "2024-03-01", "2024-03-01", "2024-03-31", "2024-02-29", "2024-04-01", "2023-03-15")

	got, err := TotalForPeriod(s, "h", 2024, time.March)
	require.NoError(t, err)
	assert.Equal(t, 3, got)

	_, err = TotalForPeriod(s, "h", 2024, 13)
	assert.True(t, model.IsValidation(err))
}

func TestDeletedHabitIsNotFound(t *testing.T) {
	s := storeWith(t, "2024-03-01")
	require.NoError(t, s.DeleteHabit("h"))

	_, err := TotalForPeriod(s, "h", 2024, time.March)
	assert.True(t, model.IsNotFound(err))
	_, err = Streak(s, "h", date(t, "2024-03-01"))
	assert.True(t, model.IsNotFound(err))
}

func TestPeriodTotalsAndSummaries(t *testing.T) {
	s := model.DefaultStore()
	for _, d := range []string{"2024-03-01", "2024-03-02", "2024-03-02"} {
		_, err := s.AddOccurrence("Tennis", date(t, d))
		require.NoError(t, err)
	}
	_, err := s.AddOccurrence("DSA Solving", date(t, "2024-02-29"))
	require.NoError(t, err)

	totals, err := PeriodTotals(s, 2024, time.March)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Tennis": 3, "DSA Solving": 0, "Finance Learning": 0}, totals)

	sums, err := Summaries(s, 2024, time.March, date(t, "2024-03-02"))
	require.NoError(t, err)
	require.Len(t, sums, 3)
	assert.Equal(t, "Tennis", sums[0].Name)
	assert.Equal(t, 3, sums[0].Total)
	assert.Equal(t, 2, sums[0].ActiveDays)
	assert.Equal(t, 2, sums[0].Streak)
	assert.Equal(t, 0, sums[1].Streak)
	assert.Equal(t, 1, sums[1].LongestStreak)
}

func TestDistribution(t *testing.T) {
	s := model.NewStore()
	for _, name := range []string{"a", "b", "c"} {
		_, err := s.CreateHabit(name, "")
		require.NoError(t, err)
	}
	_, _ = s.AddOccurrence("a", date(t, "2024-05-01"))
	_, _ = s.AddOccurrence("b", date(t, "2024-05-02"))
	_, _ = s.AddOccurrence("b", date(t, "2024-05-03"))

	dist, err := Distribution(s, 2024, time.May)
	require.NoError(t, err)
	assert.False(t, dist.Empty())
	assert.Equal(t, 3, dist.Total)
	require.Len(t, dist.Shares, 3)
	assert.InDelta(t, 33.3, dist.Shares[0].SharePercent, 1e-9)
	assert.InDelta(t, 66.7, dist.Shares[1].SharePercent, 1e-9)
	assert.Zero(t, dist.Shares[2].SharePercent)

	empty, err := Distribution(s, 2024, time.June)
	require.NoError(t, err)
	assert.True(t, empty.Empty())
}
