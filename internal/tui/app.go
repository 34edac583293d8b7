// Package tui provides the interactive Bubble Tea habit dashboard.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/habitboard/internal/cli"
	"github.com/theirongolddev/habitboard/internal/model"
	"github.com/theirongolddev/habitboard/internal/pipeline"
	"github.com/theirongolddev/habitboard/internal/tracker"
	"github.com/theirongolddev/habitboard/internal/tui/components"
	"github.com/theirongolddev/habitboard/internal/tui/theme"
)

const (
	tabCalendar = iota
	tabDashboard
	tabJournal
)

const (
	minTerminalWidth = 80
	maxContentWidth  = 160
	minContentHeight = 5
	flashDuration    = 4 * time.Second
)

// Options configures the dashboard.
type Options struct {
	// Open loads the tracker. It runs off the UI goroutine.
	Open func(ctx context.Context) *tracker.Tracker
	// BackupPath receives the fallback document whenever a save fails.
	BackupPath string
	Today      func() model.Date
	Year       int
	Month      time.Month
}

// openedMsg is sent once the tracker has loaded.
type openedMsg struct {
	tr   *tracker.Tracker
	snap *model.Store
}

// actionMsg reports a finished mutation or persistence action.
type actionMsg struct {
	action string
	snap   *model.Store
	status tracker.SaveStatus
	err    error
	flash  string
}

type clearFlashMsg struct{ seq int }

// App is the root Bubble Tea model. The tracker is only touched inside
// commands while busy is set; rendering reads the snap copy.
type App struct {
	opts    Options
	tr      *tracker.Tracker
	snap    *model.Store
	status  tracker.SaveStatus
	loaded  bool
	busy    bool
	spinner spinner.Model

	width     int
	height    int
	activeTab int
	showHelp  bool

	year  int
	month time.Month
	day   int // selected day of the month on the calendar

	journalCursor int

	form     *huh.Form
	formKind formKind
	vals     *formValues

	flash    string
	flashSeq int
}

// NewApp creates a new TUI app model.
func NewApp(opts Options) App {
	if opts.Today == nil {
		opts.Today = model.Today
	}
	today := opts.Today()
	if opts.Year == 0 {
		opts.Year, opts.Month = today.Year(), today.Month()
	}

	day := 1
	if today.InMonth(opts.Year, opts.Month) {
		day = today.Day()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	return App{
		opts:    opts,
		year:    opts.Year,
		month:   opts.Month,
		day:     day,
		spinner: sp,
		vals:    &formValues{},
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		openCmd(a.opts.Open),
		a.spinner.Tick,
	)
}

func openCmd(open func(ctx context.Context) *tracker.Tracker) tea.Cmd {
	return func() tea.Msg {
		tr := open(context.Background())
		return openedMsg{tr: tr, snap: tr.Snapshot()}
	}
}

// runAction executes fn against the tracker off the UI goroutine. A failed
// save also writes the fallback document to the backup path.
func (a *App) runAction(action string, fn func(ctx context.Context, tr *tracker.Tracker) (tracker.SaveStatus, string, error)) tea.Cmd {
	a.busy = true
	tr := a.tr
	backup := a.opts.BackupPath
	return func() tea.Msg {
		st, flash, err := fn(context.Background(), tr)
		msg := actionMsg{action: action, snap: tr.Snapshot(), status: st, err: err, flash: flash}
		if err == nil && st.State == tracker.Failed {
			if werr := tracker.WriteFallback(backup, st); werr != nil {
				msg.flash = "save failed and backup could not be written: " + werr.Error()
			} else {
				msg.flash = "save failed, backup written to " + backup
			}
		}
		return msg
	}
}

func (a *App) setFlash(text string) tea.Cmd {
	a.flash = text
	a.flashSeq++
	seq := a.flashSeq
	return tea.Tick(flashDuration, func(time.Time) tea.Msg { return clearFlashMsg{seq: seq} })
}

func (a App) selectedDate() model.Date {
	return model.MustDate(a.year, a.month, a.day)
}

func (a *App) shiftMonth(delta int) {
	a.year, a.month = pipeline.ShiftMonth(a.year, a.month, delta)
	a.day = min(a.day, model.DaysIn(a.year, a.month))
}

func (a *App) moveDay(delta int) {
	a.day = min(max(a.day+delta, 1), model.DaysIn(a.year, a.month))
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.form != nil {
			a.form = a.form.WithWidth(min(msg.Width, 70))
		}
		return a, nil

	case openedMsg:
		a.tr = msg.tr
		a.snap = msg.snap
		a.status = msg.tr.LastSave()
		a.loaded = true
		if src := msg.tr.Source(); src == "default" {
			cmd := a.setFlash("no saved data found, starting with default habits")
			return a, cmd
		}
		return a, nil

	case actionMsg:
		a.busy = false
		a.snap = msg.snap
		a.clampJournalCursor()
		if msg.err != nil {
			cmd := a.setFlash(userMessage(msg.err))
			return a, cmd
		}
		a.status = msg.status
		if msg.flash != "" {
			cmd := a.setFlash(msg.flash)
			return a, cmd
		}
		return a, nil

	case clearFlashMsg:
		if msg.seq == a.flashSeq {
			a.flash = ""
		}
		return a, nil

	case spinner.TickMsg:
		if !a.loaded || a.busy {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.busy || a.showHelp || a.form != nil {
			return a, nil
		}
		return a.updateMouse(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if !a.loaded || a.busy {
			return a, nil
		}
		if a.form != nil {
			return a.updateForm(msg)
		}
		return a.updateKey(msg)
	}

	// Forward unhandled messages to the active form (cursor blinks, etc.)
	if a.form != nil {
		return a.updateForm(msg)
	}
	return a, nil
}

func (a App) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if a.activeTab == tabJournal && a.journalCursor > 0 {
			a.journalCursor--
		}
	case tea.MouseButtonWheelDown:
		if a.activeTab == tabJournal {
			a.journalCursor++
			a.clampJournalCursor()
		}
	case tea.MouseButtonLeft:
		if msg.Action == tea.MouseActionPress && msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.activeTab = tab
			}
		}
	}
	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	if tab := components.TabIdxByKey(key); tab >= 0 {
		a.activeTab = tab
		return a, nil
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	case "shift+tab":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		return a, nil
	case "[":
		a.shiftMonth(-1)
		return a, nil
	case "]":
		a.shiftMonth(1)
		return a, nil
	case "t":
		today := a.opts.Today()
		a.year, a.month, a.day = today.Year(), today.Month(), today.Day()
		return a, nil
	case "a":
		return a.openForm(formAddActivity)
	case "x":
		return a.openForm(formRemoveActivity)
	case "n":
		return a.openForm(formNewHabit)
	case "D":
		return a.openForm(formDeleteHabit)
	case "C":
		return a.openForm(formRecolorHabit)
	case "e":
		return a.openForm(formNewEntry)
	case "s":
		cmd := a.runAction("save", func(ctx context.Context, tr *tracker.Tracker) (tracker.SaveStatus, string, error) {
			st := tr.SaveNow(ctx)
			if st.State == tracker.Succeeded {
				return st, "saved to " + st.Backend, nil
			}
			return st, "", nil
		})
		return a, cmd
	case "r":
		if a.status.State == tracker.Failed {
			cmd := a.setFlash("local changes are not saved yet, press s first")
			return a, cmd
		}
		cmd := a.runAction("reload", func(ctx context.Context, tr *tracker.Tracker) (tracker.SaveStatus, string, error) {
			if tr.Reload(ctx) {
				return tr.LastSave(), "reloaded from " + tr.Source(), nil
			}
			return tr.LastSave(), "nothing to load, keeping current data", nil
		})
		return a, cmd
	}

	switch a.activeTab {
	case tabCalendar:
		switch key {
		case "left", "h":
			a.moveDay(-1)
		case "right", "l":
			a.moveDay(1)
		case "up", "k":
			a.moveDay(-7)
		case "down", "j":
			a.moveDay(7)
		case "enter":
			return a.openForm(formAddActivity)
		}
	case tabJournal:
		switch key {
		case "up", "k":
			if a.journalCursor > 0 {
				a.journalCursor--
			}
		case "down", "j":
			a.journalCursor++
			a.clampJournalCursor()
		case "enter":
			return a.openForm(formEditEntry)
		case "d", "delete":
			return a.openForm(formDeleteEntry)
		}
	case tabDashboard:
		switch key {
		case "left", "h":
			a.shiftMonth(-1)
		case "right", "l":
			a.shiftMonth(1)
		}
	}
	return a, nil
}

func (a *App) clampJournalCursor() {
	n := 0
	if a.snap != nil {
		n = len(a.snap.Journal())
	}
	a.journalCursor = min(a.journalCursor, n-1)
	a.journalCursor = max(a.journalCursor, 0)
}

// userMessage turns an action error into status bar text.
func userMessage(err error) string {
	var ie *tracker.ImportError
	switch {
	case model.IsUserError(err):
		return err.Error()
	case errors.As(err, &ie):
		return "Invalid backup file!"
	default:
		return "error: " + err.Error()
	}
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.form != nil {
		return a.viewForm()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  habitboard needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)

	logoStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.Surface).
		Bold(true)

	subtitleStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ habitboard"))
	b.WriteString(subtitleStyle.Render(" · Habit Tracker"))
	b.WriteString("\n\n")
	b.WriteString(a.spinner.View())
	b.WriteString(subtitleStyle.Render(" Loading habits..."))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewForm() string {
	t := theme.Active
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 2).
		Render(a.form.View())
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)

	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")

	sections := []struct {
		title    string
		bindings []struct{ key, desc string }
	}{
		{"Navigation", []struct{ key, desc string }{
			{"1 2 3", "Calendar / Dashboard / Journal"},
			{"tab", "Next tab"},
			{"[ ]", "Previous / next month"},
			{"t", "Jump to today"},
			{"← → ↑ ↓", "Move the selected day"},
			{"j k", "Select journal entry"},
		}},
		{"Actions", []struct{ key, desc string }{
			{"a / enter", "Log activity"},
			{"x", "Remove one activity"},
			{"n", "New habit"},
			{"C", "Change habit color"},
			{"D", "Delete habit"},
			{"e", "New journal entry"},
			{"enter / d", "Edit / delete journal entry"},
			{"s", "Save now"},
			{"r", "Reload from storage"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}
	for i, sec := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(sectionStyle.Render(sec.title))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind.key)),
				descStyle.Render(bind.desc))
		}
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := components.RenderTabBar(a.activeTab, w, cli.FormatMonth(a.year, a.month))
	statusBar := components.RenderStatusBar(w, a.status, a.busy, a.flash)

	contentH := max(h-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	switch a.activeTab {
	case tabCalendar:
		content = a.renderCalendarTab(cw)
	case tabDashboard:
		content = a.renderDashboardTab(cw)
	case tabJournal:
		content = a.renderJournalTab(cw, contentH)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Helpers ────────────────────────────────────────────────────

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes are derived from the same width rules used by RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW

		// Separator is one column between tabs.
		if i < len(components.Tabs)-1 {
			pos++
		}
	}
	return -1
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")

	var result strings.Builder
	for i, line := range lines {
		placed := lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
		result.WriteString(placed)
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}
