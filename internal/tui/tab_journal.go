package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/habitboard/internal/cli"
	"github.com/theirongolddev/habitboard/internal/pipeline"
	"github.com/theirongolddev/habitboard/internal/tui/components"
	"github.com/theirongolddev/habitboard/internal/tui/theme"
)

// renderJournalTab lists entries newest first, scrolled so the entry under
// the cursor stays visible within h lines.
func (a App) renderJournalTab(cw, h int) string {
	t := theme.Active

	items := pipeline.JournalNewestFirst(a.snap.Journal())
	if len(items) == 0 {
		dim := lipgloss.NewStyle().Foreground(t.TextDim)
		return "\n" + dim.Render("  No journal entries yet. Press e to write one.")
	}

	cards := make([]string, len(items))
	for i, item := range items {
		title := fmt.Sprintf("%s  #%d", cli.FormatJournalDate(item.Date), item.Index)
		cards[i] = components.ContentCard(title, cli.NormalizeNewlines(item.Text), cw, i == a.journalCursor)
	}

	start := journalScrollStart(cards, a.journalCursor, h-1)

	var b strings.Builder
	hint := lipgloss.NewStyle().Foreground(t.TextDim).Render(
		fmt.Sprintf("  %d entries · j/k select · enter edit · d delete · e new", len(items)))
	b.WriteString(hint)
	for _, c := range cards[start:] {
		b.WriteString("\n")
		b.WriteString(c)
	}
	return b.String()
}

// journalScrollStart returns the first card to draw so that cards[start]
// through cards[cursor] fit in h lines, preferring the top of the list.
func journalScrollStart(cards []string, cursor, h int) int {
	if cursor <= 0 || cursor >= len(cards) {
		return 0
	}
	start := 0
	used := 0
	for i := 0; i <= cursor; i++ {
		used += lipgloss.Height(cards[i])
	}
	for start < cursor && used > h {
		used -= lipgloss.Height(cards[start])
		start++
	}
	return start
}
