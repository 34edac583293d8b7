// Package pipeline derives streaks, totals and display views from a habit
// store. Every function is read-only with respect to the store.
package pipeline

import (
	"fmt"
	"time"

	"github.com/theirongolddev/habitboard/internal/model"
)

func checkPeriod(year int, month time.Month) error {
	if month < time.January || month > time.December {
		return &model.ValidationError{Field: "month", Reason: fmt.Sprintf("month %d out of range", int(month))}
	}
	if year < 1 || year > 9999 {
		return &model.ValidationError{Field: "year", Reason: fmt.Sprintf("year %d out of range", year)}
	}
	return nil
}

// Streak returns the number of consecutive days, ending at and including
// asOf, on which the habit was logged. It is 0 when asOf itself has no entry.
func Streak(s *model.Store, name string, asOf model.Date) (int, error) {
	h, err := s.Habit(name)
	if err != nil {
		return 0, err
	}
	return streak(h, asOf), nil
}

func streak(h model.Habit, asOf model.Date) int {
	n := 0
	for d := asOf; h.Done(d); d = d.PrevDay() {
		n++
	}
	return n
}

// LongestStreak returns the longest run of consecutive logged days in the
// habit's whole history.
func LongestStreak(s *model.Store, name string) (int, error) {
	h, err := s.Habit(name)
	if err != nil {
		return 0, err
	}
	return longestStreak(h), nil
}

func longestStreak(h model.Habit) int {
	best, run := 0, 0
	var prev model.Date
	for _, d := range h.Dates() {
		if run > 0 && prev.NextDay() == d {
			run++
		} else {
			run = 1
		}
		best = max(best, run)
		prev = d
	}
	return best
}

// TotalForPeriod sums the habit's counts over the given month.
func TotalForPeriod(s *model.Store, name string, year int, month time.Month) (int, error) {
	if err := checkPeriod(year, month); err != nil {
		return 0, err
	}
	h, err := s.Habit(name)
	if err != nil {
		return 0, err
	}
	return totalForPeriod(h, year, month), nil
}

func totalForPeriod(h model.Habit, year int, month time.Month) int {
	total := 0
	for d, c := range h.Occurrences {
		if d.InMonth(year, month) {
			total += c
		}
	}
	return total
}

// PeriodTotals maps every habit to its total for the month.
func PeriodTotals(s *model.Store, year int, month time.Month) (map[string]int, error) {
	if err := checkPeriod(year, month); err != nil {
		return nil, err
	}
	totals := make(map[string]int, s.Len())
	for _, h := range s.Habits() {
		totals[h.Name] = totalForPeriod(h, year, month)
	}
	return totals, nil
}

// Summaries builds the summary cards for the month, in habit order. Streaks
// are measured as of today.
func Summaries(s *model.Store, year int, month time.Month, today model.Date) ([]model.HabitSummary, error) {
	if err := checkPeriod(year, month); err != nil {
		return nil, err
	}
	habits := s.Habits()
	out := make([]model.HabitSummary, 0, len(habits))
	for _, h := range habits {
		active := 0
		for d := range h.Occurrences {
			if d.InMonth(year, month) {
				active++
			}
		}
		out = append(out, model.HabitSummary{
			Name:          h.Name,
			Color:         h.Color,
			Total:         totalForPeriod(h, year, month),
			ActiveDays:    active,
			Streak:        streak(h, today),
			LongestStreak: longestStreak(h),
		})
	}
	return out, nil
}
