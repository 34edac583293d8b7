package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/habitboard/internal/model"
)

const (
	calendarCellWidth = 5
	dotsPerCell       = calendarCellWidth - 1
	journalCardWidth  = 55
)

// DotStyle returns a foreground style for a habit color. Colors that are not
// hex or ANSI codes render uncolored.
func DotStyle(color string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

// RenderDots draws one colored dot per occurrence across the marks. When the
// total exceeds limit, the tail is replaced by a muted "+N" marker so the
// result never exceeds limit cells.
func RenderDots(marks []model.DayMark, limit int) string {
	total := 0
	for _, m := range marks {
		total += m.Count
	}
	if total <= limit {
		return drawDots(marks, total)
	}
	keep := limit - 2
	for keep > 0 && keep+len(fmt.Sprintf("+%d", total-keep)) > limit {
		keep--
	}
	return drawDots(marks, keep) + mutedStyle.Render(fmt.Sprintf("+%d", total-keep))
}

func drawDots(marks []model.DayMark, limit int) string {
	var b strings.Builder
	shown := 0
	for _, m := range marks {
		for i := 0; i < m.Count && shown < limit; i++ {
			b.WriteString(DotStyle(m.Color).Render("●"))
			shown++
		}
	}
	return b.String()
}

// RenderCalendar draws a Monday-first month grid. Each day shows its number
// and, below it, a dot per logged occurrence in the habit's color. today is
// highlighted when it falls in the month.
func RenderCalendar(grid model.MonthGrid, marks func(day int) []model.DayMark, today model.Date) string {
	var b strings.Builder

	b.WriteString("  ")
	b.WriteString(headerStyle.Render(FormatMonth(grid.Year, grid.Month)))
	b.WriteString("\n  ")
	for col := 0; col < 7; col++ {
		b.WriteString(dimStyle.Render(pad(FormatDayOfWeek(col), calendarCellWidth, false)))
	}
	b.WriteString("\n")

	for _, week := range grid.Weeks {
		var nums, dots strings.Builder
		for _, day := range week {
			if day == 0 {
				nums.WriteString(strings.Repeat(" ", calendarCellWidth))
				dots.WriteString(strings.Repeat(" ", calendarCellWidth))
				continue
			}
			num := fmt.Sprintf("%2d", day)
			if today.InMonth(grid.Year, grid.Month) && today.Day() == day {
				num = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent).Render(num)
			} else {
				num = valueStyle.Render(num)
			}
			nums.WriteString(pad(num, calendarCellWidth, false))
			dots.WriteString(pad(RenderDots(marks(day), dotsPerCell), calendarCellWidth, false))
		}
		b.WriteString("  " + strings.TrimRight(nums.String(), " ") + "\n")
		b.WriteString("  " + strings.TrimRight(dots.String(), " ") + "\n")
	}
	return b.String()
}

// RenderLegend lists habits with their color dot.
func RenderLegend(habits []model.Habit) string {
	parts := make([]string, 0, len(habits))
	for _, h := range habits {
		parts = append(parts, DotStyle(h.Color).Render("●")+" "+h.Name)
	}
	return "  " + strings.Join(parts, "   ")
}

// RenderHeatmap draws a habit's month as one shaded block per day, laid out
// in Monday-first weeks.
func RenderHeatmap(hm model.Heatmap) string {
	shades := []string{"·", "░", "▒", "▓", "█"}
	style := DotStyle(hm.Color)

	var b strings.Builder
	b.WriteString("  ")
	b.WriteString(style.Render(hm.Habit))
	b.WriteString(mutedStyle.Render(fmt.Sprintf("  %s  (max %d/day)", FormatMonth(hm.Year, hm.Month), hm.Max)))
	b.WriteString("\n  ")
	if len(hm.Cells) == 0 {
		return b.String()
	}

	col := (int(hm.Cells[0].Date.Weekday()) + 6) % 7
	b.WriteString(strings.Repeat("  ", col))
	for _, cell := range hm.Cells {
		idx := 0
		if cell.Count > 0 {
			idx = 1 + int(cell.Intensity*float64(len(shades)-2)+0.5)
			idx = min(idx, len(shades)-1)
		}
		if idx == 0 {
			b.WriteString(dimStyle.Render(shades[0]))
		} else {
			b.WriteString(style.Render(shades[idx]))
		}
		col++
		if col == 7 {
			b.WriteString("\n  ")
			col = 0
		} else {
			b.WriteString(" ")
		}
	}
	return strings.TrimRight(b.String(), " ") + "\n"
}

// RenderDistribution draws one bar per habit, sized by its share of the
// month, or a placeholder when nothing was logged.
func RenderDistribution(dist model.Distribution, barWidth int) string {
	var b strings.Builder
	b.WriteString("  ")
	b.WriteString(headerStyle.Render("Distribution " + FormatMonth(dist.Year, dist.Month)))
	b.WriteString("\n")
	if dist.Empty() {
		b.WriteString(mutedStyle.Render("  No activity this month"))
		b.WriteString("\n")
		return b.String()
	}

	labelWidth := 0
	for _, s := range dist.Shares {
		labelWidth = max(labelWidth, lipgloss.Width(s.Name))
	}
	for _, s := range dist.Shares {
		b.WriteString(RenderHorizontalBar(s.Name, labelWidth, s.SharePercent, 100, barWidth, s.Color))
		b.WriteString(mutedStyle.Render(fmt.Sprintf(" %s (%d)", FormatPercent(s.SharePercent), s.Count)))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderJournalCard draws one entry as a bordered card headed by its date
// and stored index.
func RenderJournalCard(item model.JournalItem) string {
	head := headerStyle.Render(FormatJournalDate(item.Date)) + mutedStyle.Render(fmt.Sprintf("  #%d", item.Index))
	body := valueStyle.Render(NormalizeNewlines(item.Text))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(journalCardWidth).
		Padding(0, 1).
		Render(head + "\n" + body)
}

// RenderJournal draws the given entries as cards, in order.
func RenderJournal(items []model.JournalItem) string {
	if len(items) == 0 {
		return mutedStyle.Render("  No journal entries yet") + "\n"
	}
	cards := make([]string, len(items))
	for i, item := range items {
		cards[i] = RenderJournalCard(item)
	}
	return strings.Join(cards, "\n") + "\n"
}
