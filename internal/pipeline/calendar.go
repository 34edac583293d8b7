package pipeline

import (
	"time"

	"github.com/theirongolddev/habitboard/internal/model"
)

// MonthGrid lays out the month in Monday-first weeks.
func MonthGrid(year int, month time.Month) (model.MonthGrid, error) {
	if err := checkPeriod(year, month); err != nil {
		return model.MonthGrid{}, err
	}

	grid := model.MonthGrid{Year: year, Month: month}
	first := model.MustDate(year, month, 1)
	// Monday = column 0.
	col := (int(first.Weekday()) + 6) % 7

	var week [7]int
	for day := 1; day <= model.DaysIn(year, month); day++ {
		week[col] = day
		col++
		if col == 7 {
			grid.Weeks = append(grid.Weeks, week)
			week = [7]int{}
			col = 0
		}
	}
	if col > 0 {
		grid.Weeks = append(grid.Weeks, week)
	}
	return grid, nil
}

// DayMarks lists, in habit order, every habit logged on d with its count.
func DayMarks(s *model.Store, d model.Date) []model.DayMark {
	var marks []model.DayMark
	for _, h := range s.Habits() {
		if c := h.Count(d); c > 0 {
			marks = append(marks, model.DayMark{Habit: h.Name, Color: h.Color, Count: c})
		}
	}
	return marks
}

// Heatmap returns one cell per day of the month for the habit, with each
// count scaled against the month's busiest day.
func Heatmap(s *model.Store, name string, year int, month time.Month) (model.Heatmap, error) {
	if err := checkPeriod(year, month); err != nil {
		return model.Heatmap{}, err
	}
	h, err := s.Habit(name)
	if err != nil {
		return model.Heatmap{}, err
	}

	hm := model.Heatmap{Habit: h.Name, Color: h.Color, Year: year, Month: month}
	days := model.DaysIn(year, month)
	hm.Cells = make([]model.HeatmapCell, 0, days)
	for day := 1; day <= days; day++ {
		d := model.MustDate(year, month, day)
		c := h.Count(d)
		hm.Max = max(hm.Max, c)
		hm.Cells = append(hm.Cells, model.HeatmapCell{Date: d, Count: c})
	}
	if hm.Max > 0 {
		for i := range hm.Cells {
			hm.Cells[i].Intensity = float64(hm.Cells[i].Count) / float64(hm.Max)
		}
	}
	return hm, nil
}

// ShiftMonth moves year/month by delta months.
func ShiftMonth(year int, month time.Month, delta int) (int, time.Month) {
	idx := year*12 + int(month-1) + delta
	return idx / 12, time.Month(idx%12 + 1)
}

// DailyTotals returns, for each day of the month, the sum of counts across
// all habits. Index 0 is day 1.
func DailyTotals(s *model.Store, year int, month time.Month) ([]int, error) {
	if err := checkPeriod(year, month); err != nil {
		return nil, err
	}
	totals := make([]int, model.DaysIn(year, month))
	for _, h := range s.Habits() {
		for d, c := range h.Occurrences {
			if d.InMonth(year, month) {
				totals[d.Day()-1] += c
			}
		}
	}
	return totals, nil
}
