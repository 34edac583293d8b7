package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/habitboard/internal/model"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-4200, "-4,200"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatNumber(tt.in))
	}
}

func TestFormatters(t *testing.T) {
	assert.Equal(t, "1 day", FormatStreak(1))
	assert.Equal(t, "0 days", FormatStreak(0))
	assert.Equal(t, "February 2024", FormatMonth(2024, time.February))
	assert.Equal(t, "33.3%", FormatPercent(33.3))
	assert.Equal(t, "01 Feb 2024", FormatJournalDate(model.MustDate(2024, time.February, 1)))
	assert.Equal(t, "Mo", FormatDayOfWeek(0))
	assert.Equal(t, "Su", FormatDayOfWeek(6))
	assert.Equal(t, "??", FormatDayOfWeek(7))
	assert.Equal(t, "a\nb\nc", NormalizeNewlines("a\r\nb\rc"))
}

func TestParseMonth(t *testing.T) {
	y, m, err := ParseMonth("2024-02")
	require.NoError(t, err)
	assert.Equal(t, 2024, y)
	assert.Equal(t, time.February, m)

	_, _, err = ParseMonth("2024-13")
	assert.Error(t, err)
	_, _, err = ParseMonth("feb")
	assert.Error(t, err)
}

func TestRenderDots(t *testing.T) {
	marks := []model.DayMark{{Habit: "a", Color: "#FF0000", Count: 2}, {Habit: "b", Color: "#00FF00", Count: 1}}
	assert.Equal(t, 3, strings.Count(RenderDots(marks, 4), "●"))

	marks[0].Count = 6
	out := RenderDots(marks, 4)
	assert.Equal(t, 2, strings.Count(out, "●"))
	assert.Contains(t, out, "+5")

	assert.Empty(t, RenderDots(nil, 4))
}

func TestRenderCalendar(t *testing.T) {
	grid := model.MonthGrid{Year: 2024, Month: time.February, Weeks: [][7]int{
		{0, 0, 0, 1, 2, 3, 4},
		{5, 6, 7, 8, 9, 10, 11},
	}}
	marks := func(day int) []model.DayMark {
		if day == 2 {
			return []model.DayMark{{Habit: "h", Color: "#FF0000", Count: 2}}
		}
		return nil
	}

	out := RenderCalendar(grid, marks, model.MustDate(2024, time.February, 8))
	assert.Contains(t, out, "February 2024")
	assert.Contains(t, out, "Mo")
	assert.Contains(t, out, "11")
	assert.Equal(t, 2, strings.Count(out, "●"))
}

func TestRenderHeatmap(t *testing.T) {
	hm := model.Heatmap{Habit: "Tennis", Color: "#FF6B6B", Year: 2024, Month: time.February, Max: 2}
	for day := 1; day <= 3; day++ {
		hm.Cells = append(hm.Cells, model.HeatmapCell{Date: model.MustDate(2024, time.February, day)})
	}
	hm.Cells[1].Count, hm.Cells[1].Intensity = 2, 1

	out := RenderHeatmap(hm)
	assert.Contains(t, out, "Tennis")
	assert.Contains(t, out, "max 2/day")
	assert.Contains(t, out, "█")
	assert.Equal(t, 2, strings.Count(out, "·"))
}

func TestRenderDistribution(t *testing.T) {
	empty := RenderDistribution(model.Distribution{Year: 2024, Month: time.March}, 20)
	assert.Contains(t, empty, "No activity this month")

	dist := model.Distribution{Year: 2024, Month: time.February, Total: 3, Shares: []model.HabitShare{
		{Name: "Tennis", Color: "#FF6B6B", Count: 2, SharePercent: 66.7},
		{Name: "Chess", Color: "#4ECDC4", Count: 1, SharePercent: 33.3},
	}}
	out := RenderDistribution(dist, 20)
	assert.Contains(t, out, "66.7% (2)")
	assert.Contains(t, out, "33.3% (1)")
}

func TestRenderJournal(t *testing.T) {
	assert.Contains(t, RenderJournal(nil), "No journal entries yet")

	items := []model.JournalItem{
		{Index: 1, JournalEntry: model.JournalEntry{Date: model.MustDate(2024, time.February, 2), Text: "second"}},
		{Index: 0, JournalEntry: model.JournalEntry{Date: model.MustDate(2024, time.February, 1), Text: "first\r\nline"}},
	}
	out := RenderJournal(items)
	assert.Less(t, strings.Index(out, "02 Feb 2024"), strings.Index(out, "01 Feb 2024"))
	assert.Contains(t, out, "#1")
	assert.NotContains(t, out, "\r")
}

func TestRenderTable(t *testing.T) {
	out := RenderTable(Table{
		Title:   "Habits",
		Headers: []string{"Habit", "Total"},
		Rows:    [][]string{{"Tennis", "12"}, {"---"}, {"All", "12"}},
	})
	assert.Contains(t, out, "Habits")
	assert.Contains(t, out, "Tennis")
	assert.Equal(t, 2, strings.Count(out, "├"))
	assert.Empty(t, RenderTable(Table{}))
}
