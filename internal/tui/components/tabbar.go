package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/habitboard/internal/tui/theme"
)

// Tab represents a single tab in the tab bar.
type Tab struct {
	Name string
	Key  string
}

// Tabs defines all available tabs, in display order.
var Tabs = []Tab{
	{Name: "Calendar", Key: "1"},
	{Name: "Dashboard", Key: "2"},
	{Name: "Journal", Key: "3"},
}

const tabPadding = 1

// tabLabel is the visible text of a tab. Inactive tabs show their shortcut.
func tabLabel(tab Tab, active bool) string {
	if active {
		return tab.Name
	}
	return tab.Name + " " + tab.Key
}

// TabVisualWidth returns the rendered width of a tab, matching RenderTabBar.
func TabVisualWidth(tab Tab, active bool) int {
	return lipgloss.Width(tabLabel(tab, active)) + 2*tabPadding
}

// RenderTabBar renders a single-row tab bar with the given active index,
// followed by right-aligned text (the selected month).
func RenderTabBar(activeIdx int, width int, right string) string {
	t := theme.Active

	activeStyle := lipgloss.NewStyle().
		Foreground(t.Accent).
		Background(t.SurfaceHover).
		Bold(true).
		Padding(0, tabPadding)

	inactiveStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface).
		Padding(0, tabPadding)

	sepStyle := lipgloss.NewStyle().
		Foreground(t.Border).
		Background(t.Surface)

	parts := make([]string, len(Tabs))
	for i, tab := range Tabs {
		if i == activeIdx {
			parts[i] = activeStyle.Render(tabLabel(tab, true))
		} else {
			parts[i] = inactiveStyle.Render(tabLabel(tab, false))
		}
	}
	left := strings.Join(parts, sepStyle.Render("│"))

	rightStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.Surface).
		Bold(true)
	r := rightStyle.Render(right + " ")

	gap := max(width-lipgloss.Width(left)-lipgloss.Width(r), 0)
	fill := lipgloss.NewStyle().Background(t.Surface).Render(strings.Repeat(" ", gap))
	return left + fill + r
}

// TabIdxByKey returns the tab index for a given key press, or -1.
func TabIdxByKey(key string) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}
