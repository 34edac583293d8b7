// Package components provides reusable TUI widgets for the habit dashboard.
package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/habitboard/internal/cli"
	"github.com/theirongolddev/habitboard/internal/model"
	"github.com/theirongolddev/habitboard/internal/tui/theme"
)

// LayoutRow distributes totalWidth into n widths that sum to exactly totalWidth.
// First items absorb the remainder from integer division.
func LayoutRow(totalWidth, n int) []int {
	if n <= 0 {
		return nil
	}
	base := totalWidth / n
	remainder := totalWidth % n
	widths := make([]int, n)
	for i := range widths {
		widths[i] = base
		if i < remainder {
			widths[i]++
		}
	}
	return widths
}

// HabitCard renders one habit's monthly summary: a colored title, the month
// total and the current streak. outerWidth includes the border.
func HabitCard(s model.HabitSummary, outerWidth int) string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(s.Color)).
		BorderBackground(t.Background).
		Background(t.Surface).
		Width(max(outerWidth-2, 10)).
		Padding(0, 1)

	titleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(s.Color)).Background(t.Surface).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)

	streak := cli.FormatStreak(s.Streak)
	if s.Streak > 0 {
		streak = "🔥 " + streak
	}

	content := titleStyle.Render(Truncate(s.Name, outerWidth-4)) + "\n" +
		labelStyle.Render("this month ") + valueStyle.Render(cli.FormatNumber(int64(s.Total))) + "\n" +
		labelStyle.Render("streak     ") + valueStyle.Render(streak) + "\n" +
		labelStyle.Render(fmt.Sprintf("best %s · %d active days", cli.FormatStreak(s.LongestStreak), s.ActiveDays))

	return cardStyle.Render(content)
}

// HabitCardGrid lays habit cards out perCard wide, wrapping into rows.
func HabitCardGrid(sums []model.HabitSummary, totalWidth, perRow int) string {
	if len(sums) == 0 {
		return ""
	}
	perRow = max(perRow, 1)

	var rows []string
	for start := 0; start < len(sums); start += perRow {
		end := min(start+perRow, len(sums))
		widths := LayoutRow(totalWidth, perRow)
		cards := make([]string, 0, end-start)
		for i, s := range sums[start:end] {
			cards = append(cards, HabitCard(s, widths[i]))
		}
		rows = append(rows, CardRow(cards))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// ContentCard renders a bordered content card with an optional title.
// outerWidth controls the total rendered width including border.
func ContentCard(title, body string, outerWidth int, focused bool) string {
	t := theme.Active

	border := t.Border
	if focused {
		border = t.BorderAccent
	}
	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		BorderBackground(t.Background).
		Background(t.Surface).
		Width(max(outerWidth-2, 10)).
		Padding(0, 1)

	titleStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface).
		Bold(true)

	content := ""
	if title != "" {
		content = titleStyle.Render(title) + "\n"
	}
	content += body

	return cardStyle.Render(content)
}

// CardRow joins pre-rendered card strings horizontally.
func CardRow(cards []string) string {
	if len(cards) == 0 {
		return ""
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

// CardInnerWidth returns the usable text width inside a ContentCard
// given its outer width (subtracts border + padding).
func CardInnerWidth(outerWidth int) int {
	return max(outerWidth-4, 10)
}

// Truncate shortens s to limit runes, ending with an ellipsis when cut.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
