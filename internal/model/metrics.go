package model

import "time"

// HabitSummary holds the per-habit card values for one month.
type HabitSummary struct {
	Name          string
	Color         string
	Total         int // occurrences in the month
	ActiveDays    int // days in the month with at least one occurrence
	Streak        int // current streak as of the reference date
	LongestStreak int
}

// HabitShare is one habit's slice of a month's distribution.
type HabitShare struct {
	Name         string
	Color        string
	Count        int
	SharePercent float64 // rounded to one decimal place
}

// Distribution holds the month's totals across habits.
type Distribution struct {
	Year   int
	Month  time.Month
	Total  int
	Shares []HabitShare
}

// Empty reports whether nothing was logged in the month.
func (d Distribution) Empty() bool { return d.Total == 0 }

// HeatmapCell is one day of a habit heatmap.
type HeatmapCell struct {
	Date      Date
	Count     int
	Intensity float64 // Count relative to the month's busiest day, 0..1
}

// Heatmap holds one habit's per-day counts for a month.
type Heatmap struct {
	Habit string
	Color string
	Year  int
	Month time.Month
	Max   int
	Cells []HeatmapCell
}

// MonthGrid lays a month out in Monday-first weeks. Days outside the month
// are 0.
type MonthGrid struct {
	Year  int
	Month time.Month
	Weeks [][7]int
}

// DayMark is one habit's contribution to a calendar day.
type DayMark struct {
	Habit string
	Color string
	Count int
}

// JournalItem pairs a journal entry with its stored position, so a display
// order can still address the entry for edits.
type JournalItem struct {
	Index int
	JournalEntry
}
