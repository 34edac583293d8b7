package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/habitboard/internal/tui/theme"
)

// DailyChart renders per-day totals as a vertical bar chart, one column per
// day, with the peak on the Y axis and day numbers every five days below.
func DailyChart(totals []int, height int) string {
	if len(totals) == 0 {
		return ""
	}
	t := theme.Active
	height = max(height, 2)

	peak := 0
	for _, v := range totals {
		peak = max(peak, v)
	}

	axisStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	barStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	blank := lipgloss.NewStyle().Background(t.Surface)

	if peak == 0 {
		return axisStyle.Render("no activity this month")
	}

	blocks := []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	labelW := len(fmt.Sprint(peak)) + 1

	var b strings.Builder
	for row := height; row >= 1; row-- {
		label := ""
		if row == height {
			label = fmt.Sprint(peak)
		}
		b.WriteString(axisStyle.Render(fmt.Sprintf("%*s│", labelW, label)))

		// filled counts the eighths of this row the bar reaches.
		for _, v := range totals {
			eighths := v * height * 8 / peak
			filled := eighths - (row-1)*8
			switch {
			case filled >= 8:
				b.WriteString(barStyle.Render("█"))
			case filled > 0:
				b.WriteString(barStyle.Render(string(blocks[filled])))
			default:
				b.WriteString(blank.Render(" "))
			}
			b.WriteString(blank.Render(" "))
		}
		b.WriteString("\n")
	}

	b.WriteString(axisStyle.Render(fmt.Sprintf("%*s└", labelW, "0")))
	b.WriteString(axisStyle.Render(strings.Repeat("─", len(totals)*2)))
	b.WriteString("\n")

	labels := []byte(strings.Repeat(" ", len(totals)*2))
	for day := 1; day <= len(totals); day++ {
		if day == 1 || day%5 == 0 {
			copy(labels[(day-1)*2:], fmt.Sprint(day))
		}
	}
	b.WriteString(blank.Render(strings.Repeat(" ", labelW+1)))
	b.WriteString(axisStyle.Render(strings.TrimRight(string(labels), " ")))

	return b.String()
}
