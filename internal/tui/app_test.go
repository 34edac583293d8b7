package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/habitboard/internal/model"
	"github.com/theirongolddev/habitboard/internal/persist"
	"github.com/theirongolddev/habitboard/internal/tracker"
	"github.com/theirongolddev/habitboard/internal/tui/components"
)

type fakeGateway struct {
	fail  bool
	saves int
}

func (g *fakeGateway) Load(_ context.Context) *persist.LoadResult { return nil }

func (g *fakeGateway) Attempt(_ context.Context, s *model.Store) persist.SaveReport {
	g.saves++
	payload, _ := model.Encode(s)
	if g.fail {
		return persist.SaveReport{Backend: "fake", Payload: payload, Err: errors.New("offline")}
	}
	return persist.SaveReport{OK: true, Backend: "fake", Payload: payload, Version: int64(g.saves)}
}

var testToday = model.MustDate(2024, time.February, 14)

func newTestApp(t *testing.T, gw *fakeGateway) App {
	t.Helper()
	opts := Options{
		Open:       func(ctx context.Context) *tracker.Tracker { return tracker.Open(ctx, gw) },
		BackupPath: filepath.Join(t.TempDir(), "backup", "habit_tracker_backup.json"),
		Today:      func() model.Date { return testToday },
	}
	a := NewApp(opts)
	a = step(a, tea.WindowSizeMsg{Width: 120, Height: 40})
	return step(a, openCmd(opts.Open)())
}

func step(a App, msg tea.Msg) App {
	m, _ := a.Update(msg)
	return m.(App)
}

// finish runs an action command to completion and feeds its result back.
func finish(t *testing.T, a App, cmd tea.Cmd) App {
	t.Helper()
	require.NotNil(t, cmd)
	require.True(t, a.busy)
	return step(a, cmd())
}

func key(s string) tea.KeyMsg {
	switch s {
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestTabAtXMatchesTabWidths(t *testing.T) {
	names := []string{"Calendar", "Dashboard", "Journal"}
	for active := range names {
		a := App{activeTab: active}
		pos := 0

		for i, name := range names {
			w := len(name) + 2 // horizontal padding
			if i != active {
				w += 2 // inactive tabs append " <key>"
			}
			assert.Equal(t, w, components.TabVisualWidth(components.Tabs[i], i == active))

			x := pos + w/2
			assert.Equal(t, i, a.tabAtX(x), "active=%d x=%d", active, x)
			pos += w
			if i < len(names)-1 {
				pos++ // separator
			}
		}
		assert.Equal(t, -1, a.tabAtX(pos+5))
	}
}

func TestOpenStartsOnTodaysMonth(t *testing.T) {
	a := newTestApp(t, &fakeGateway{})

	assert.True(t, a.loaded)
	assert.Equal(t, 2024, a.year)
	assert.Equal(t, time.February, a.month)
	assert.Equal(t, 14, a.day)
	assert.Contains(t, a.flash, "default habits")
	assert.Equal(t, []string{"Tennis", "DSA Solving", "Finance Learning"}, a.snap.HabitNames())
}

func TestMonthNavigationClampsSelectedDay(t *testing.T) {
	a := newTestApp(t, &fakeGateway{})
	a.day = 31
	a.month = time.January

	a = step(a, key("]"))
	assert.Equal(t, time.February, a.month)
	assert.Equal(t, 29, a.day, "2024 is a leap year")

	a = step(a, key("["))
	a = step(a, key("["))
	assert.Equal(t, 2023, a.year)
	assert.Equal(t, time.December, a.month)

	a = step(a, key("t"))
	assert.Equal(t, testToday, a.selectedDate())
}

func TestCalendarCursorStaysInMonth(t *testing.T) {
	a := newTestApp(t, &fakeGateway{})
	a.day = 1

	a = step(a, key("left"))
	assert.Equal(t, 1, a.day)
	a = step(a, key("down"))
	assert.Equal(t, 8, a.day)
	a = step(a, key("right"))
	assert.Equal(t, 9, a.day)
	a.day = 27
	a = step(a, key("down"))
	assert.Equal(t, 29, a.day)
}

func TestTabSwitching(t *testing.T) {
	a := newTestApp(t, &fakeGateway{})

	a = step(a, key("2"))
	assert.Equal(t, tabDashboard, a.activeTab)
	a = step(a, key("tab"))
	assert.Equal(t, tabJournal, a.activeTab)
	a = step(a, key("tab"))
	assert.Equal(t, tabCalendar, a.activeTab)

	a = step(a, tea.MouseMsg{X: 14, Y: 0, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	assert.Equal(t, tabDashboard, a.activeTab)
}

func TestAddActivityRunsThroughTracker(t *testing.T) {
	gw := &fakeGateway{}
	a := newTestApp(t, gw)

	cmd := a.submitForm(formAddActivity, formValues{habit: "Tennis", date: "2024-02-14"})
	require.True(t, a.busy)

	// Input is ignored while the action runs.
	a = step(a, key("]"))
	assert.Equal(t, time.February, a.month)

	a = finish(t, a, cmd)
	assert.False(t, a.busy)
	assert.Equal(t, 1, a.snap.Count("Tennis", testToday))
	assert.Equal(t, tracker.Succeeded, a.status.State)
	assert.Contains(t, a.flash, "Tennis logged")
	assert.Equal(t, 1, gw.saves)
}

func TestUserErrorsFlash(t *testing.T) {
	gw := &fakeGateway{}
	a := newTestApp(t, gw)

	cmd := a.submitForm(formRemoveActivity, formValues{habit: "Tennis", date: "2024-02-14"})
	a = finish(t, a, cmd)

	assert.NotEmpty(t, a.flash)
	assert.NotContains(t, a.flash, "error:")
	assert.Equal(t, 0, gw.saves)
}

func TestFailedSaveWritesBackupAndBlocksReload(t *testing.T) {
	gw := &fakeGateway{fail: true}
	a := newTestApp(t, gw)

	cmd := a.submitForm(formNewHabit, formValues{name: "Reading", color: "#A78BFA"})
	a = finish(t, a, cmd)

	assert.Equal(t, tracker.Failed, a.status.State)
	assert.True(t, a.snap.HasHabit("Reading"), "local store keeps the change")
	assert.Contains(t, a.flash, "backup written")

	data, err := os.ReadFile(a.opts.BackupPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Reading"`)

	a = step(a, key("r"))
	assert.False(t, a.busy, "reload refused while changes are unsaved")
	assert.Contains(t, a.flash, "not saved")
}

func TestJournalCursorFollowsDeletes(t *testing.T) {
	a := newTestApp(t, &fakeGateway{})

	for _, d := range []string{"2024-02-01", "2024-02-10"} {
		cmd := a.submitForm(formNewEntry, formValues{date: d, text: "entry " + d})
		a = finish(t, a, cmd)
	}
	a = step(a, key("3"))
	a = step(a, key("j"))
	require.Equal(t, 1, a.journalCursor)

	item, ok := a.selectedItem()
	require.True(t, ok)
	assert.Equal(t, "entry 2024-02-01", item.Text, "newest first")
	assert.Equal(t, 0, item.Index)

	cmd := a.submitForm(formDeleteEntry, formValues{index: item.Index, confirm: true})
	a = finish(t, a, cmd)
	assert.Equal(t, 0, a.journalCursor)
	assert.Len(t, a.snap.Journal(), 1)
}

func TestUnconfirmedDeleteDoesNothing(t *testing.T) {
	gw := &fakeGateway{}
	a := newTestApp(t, gw)

	assert.Nil(t, a.submitForm(formDeleteHabit, formValues{habit: "Tennis"}))
	assert.False(t, a.busy)
	assert.Equal(t, 0, gw.saves)
}

func TestOpenFormWithoutTarget(t *testing.T) {
	a := newTestApp(t, &fakeGateway{})

	m, _ := a.openForm(formRemoveActivity)
	a = m.(App)
	assert.Nil(t, a.form)
	assert.Contains(t, a.flash, "nothing logged")

	m, _ = a.openForm(formNewHabit)
	a = m.(App)
	assert.NotNil(t, a.form)
	assert.Equal(t, formNewHabit, a.formKind)

	a = step(a, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, a.form)
}

func TestViewRendersEveryTab(t *testing.T) {
	a := newTestApp(t, &fakeGateway{})
	cmd := a.submitForm(formAddActivity, formValues{habit: "Tennis", date: "2024-02-14"})
	a = finish(t, a, cmd)

	for _, tc := range []struct {
		key  string
		want string
	}{
		{"1", "14 Feb 2024"},
		{"2", "Distribution"},
		{"3", "No journal entries yet"},
	} {
		a = step(a, key(tc.key))
		assert.Contains(t, a.View(), tc.want, "tab %s", tc.key)
	}

	a.width = 60
	assert.Contains(t, a.View(), "Terminal too narrow")
}
