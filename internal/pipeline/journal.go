package pipeline

import (
	"slices"

	"github.com/theirongolddev/habitboard/internal/model"
)

// JournalNewestFirst returns the entries ordered by date, newest first.
// Entries sharing a date keep their stored order.
func JournalNewestFirst(entries []model.JournalEntry) []model.JournalItem {
	items := make([]model.JournalItem, len(entries))
	for i, e := range entries {
		items[i] = model.JournalItem{Index: i, JournalEntry: e}
	}
	slices.SortStableFunc(items, func(a, b model.JournalItem) int {
		switch {
		case a.Date.After(b.Date):
			return -1
		case a.Date.Before(b.Date):
			return 1
		default:
			return 0
		}
	})
	return items
}
