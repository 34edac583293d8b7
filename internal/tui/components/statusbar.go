package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/habitboard/internal/tracker"
	"github.com/theirongolddev/habitboard/internal/tui/theme"
)

// RenderStatusBar renders the bottom status bar: key hints on the left, the
// last save outcome (or a transient message) on the right.
func RenderStatusBar(width int, st tracker.SaveStatus, busy bool, flash string) string {
	t := theme.Active

	base := lipgloss.NewStyle().Background(t.Surface)
	hint := base.Foreground(t.TextMuted)

	left := hint.Render(" ? help  q quit  [/] month  a add  x remove")

	var right string
	switch {
	case flash != "":
		right = base.Foreground(t.TextPrimary).Render(flash)
	case busy:
		right = base.Foreground(t.Orange).Render("saving…")
	default:
		right = SaveLabel(st)
	}
	right += base.Render(" ")

	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	return left + base.Render(strings.Repeat(" ", gap)) + right
}

// SaveLabel renders the save state in its status color.
func SaveLabel(st tracker.SaveStatus) string {
	t := theme.Active
	style := lipgloss.NewStyle().Background(t.Surface)

	switch st.State {
	case tracker.Succeeded:
		label := "saved"
		if st.Backend != "" {
			label += " to " + st.Backend
		}
		if !st.At.IsZero() {
			label += " " + st.At.Format("15:04:05")
		}
		return style.Foreground(t.Green).Render(label)
	case tracker.Failed:
		return style.Foreground(t.Red).Bold(true).Render("save failed, backup written")
	case tracker.Attempting:
		return style.Foreground(t.Orange).Render("saving…")
	default:
		return style.Foreground(t.TextDim).Render("not saved yet")
	}
}
