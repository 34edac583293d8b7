package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/habitboard/internal/cli"
	"github.com/theirongolddev/habitboard/internal/model"
	"github.com/theirongolddev/habitboard/internal/pipeline"
	"github.com/theirongolddev/habitboard/internal/tui/components"
	"github.com/theirongolddev/habitboard/internal/tui/theme"
)

const (
	minCellWidth   = 6
	maxCellWidth   = 14
	dayPanelMinW   = 30
	calendarBorder = 4
)

func (a App) renderCalendarTab(cw int) string {
	t := theme.Active

	grid, err := pipeline.MonthGrid(a.year, a.month)
	if err != nil {
		return err.Error()
	}
	today := a.opts.Today()

	cellW := min(max((cw-calendarBorder-dayPanelMinW)/7, minCellWidth), maxCellWidth)
	calW := cellW*7 + calendarBorder

	headStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Width(cellW).Align(lipgloss.Center)
	heads := make([]string, 7)
	for col := range heads {
		heads[col] = headStyle.Render(cli.FormatDayOfWeek(col))
	}

	rows := []string{lipgloss.JoinHorizontal(lipgloss.Top, heads...)}
	for _, week := range grid.Weeks {
		cells := make([]string, 7)
		for col, day := range week {
			cells[col] = a.renderDayCell(day, cellW, today)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}

	cal := components.ContentCard(cli.FormatMonth(a.year, a.month), lipgloss.JoinVertical(lipgloss.Left, rows...), calW, true)
	legend := lipgloss.NewStyle().Foreground(t.TextMuted).Render(cli.RenderLegend(a.snap.Habits()))

	panelW := cw - calW
	if panelW < dayPanelMinW {
		return lipgloss.JoinVertical(lipgloss.Left, cal, a.renderDayPanel(cw), legend)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		components.CardRow([]string{cal, a.renderDayPanel(panelW)}),
		legend,
	)
}

// renderDayCell draws one calendar cell: the day number on top and a dot per
// logged occurrence below. Padding days render blank.
func (a App) renderDayCell(day, cellW int, today model.Date) string {
	t := theme.Active

	bg := t.Surface
	if day == a.day {
		bg = t.SurfaceHover
	}
	cell := lipgloss.NewStyle().Background(bg).Width(cellW).Height(2).Padding(0, 1)
	if day == 0 {
		return cell.Render("")
	}

	numStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(bg)
	d := model.MustDate(a.year, a.month, day)
	if d.Equal(today) {
		numStyle = numStyle.Foreground(t.Accent).Bold(true).Underline(true)
	}

	dots := cli.RenderDots(pipeline.DayMarks(a.snap, d), cellW-2)
	return cell.Render(numStyle.Render(fmt.Sprintf("%d", day)) + "\n" + dots)
}

// renderDayPanel shows what was logged and written on the selected day.
func (a App) renderDayPanel(outerW int) string {
	t := theme.Active
	d := a.selectedDate()
	innerW := components.CardInnerWidth(outerW)

	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	var b strings.Builder
	marks := pipeline.DayMarks(a.snap, d)
	if len(marks) == 0 {
		b.WriteString(dimStyle.Render("nothing logged"))
		b.WriteString("\n")
	}
	for _, m := range marks {
		b.WriteString(cli.DotStyle(m.Color).Background(t.Surface).Render("●"))
		b.WriteString(valueStyle.Render(" " + m.Habit))
		b.WriteString(mutedStyle.Render(fmt.Sprintf(" ×%d", m.Count)))
		b.WriteString("\n")
	}

	var notes []string
	for _, e := range a.snap.Journal() {
		if e.Date.Equal(d) {
			first, _, _ := strings.Cut(cli.NormalizeNewlines(e.Text), "\n")
			notes = append(notes, first)
		}
	}
	if len(notes) > 0 {
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render("Journal"))
		b.WriteString("\n")
		for _, n := range notes {
			b.WriteString(valueStyle.Render("· " + components.Truncate(n, innerW-2)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("a log · x remove · e write"))

	return components.ContentCard(cli.FormatJournalDate(d), b.String(), outerW, false)
}
