package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/habitboard/internal/pipeline"
	"github.com/theirongolddev/habitboard/internal/tui/components"
	"github.com/theirongolddev/habitboard/internal/tui/theme"
)

const (
	habitCardMinW = 30
	chartHeight   = 8
	shareLabelW   = 16
)

func (a App) renderDashboardTab(cw int) string {
	t := theme.Active
	var b strings.Builder

	sums, err := pipeline.Summaries(a.snap, a.year, a.month, a.opts.Today())
	if err != nil {
		return err.Error()
	}
	if len(sums) == 0 {
		dim := lipgloss.NewStyle().Foreground(t.TextDim)
		return "\n" + dim.Render("  No habits yet. Press n to create one.")
	}

	// Row 1: habit cards
	perRow := max(min(len(sums), cw/habitCardMinW), 1)
	b.WriteString(components.HabitCardGrid(sums, cw, perRow))
	b.WriteString("\n")

	// Row 2: distribution and daily activity
	halves := components.LayoutRow(cw, 2)

	dist, err := pipeline.Distribution(a.snap, a.year, a.month)
	if err != nil {
		return err.Error()
	}
	var distBody string
	if dist.Empty() {
		distBody = lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Render("No activity this month")
	} else {
		barW := max(components.CardInnerWidth(halves[0])-shareLabelW-12, 4)
		lines := make([]string, len(dist.Shares))
		for i, share := range dist.Shares {
			lines[i] = components.ShareBar(share, shareLabelW, barW)
		}
		distBody = strings.Join(lines, "\n")
	}
	distCard := components.ContentCard(fmt.Sprintf("Distribution (%d total)", dist.Total), distBody, halves[0], false)

	totals, err := pipeline.DailyTotals(a.snap, a.year, a.month)
	if err != nil {
		return err.Error()
	}
	chartCard := components.ContentCard("Daily Activity", components.DailyChart(totals, chartHeight), halves[1], false)

	b.WriteString(components.CardRow([]string{distCard, chartCard}))
	return b.String()
}
