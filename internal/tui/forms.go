package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/habitboard/internal/cli"
	"github.com/theirongolddev/habitboard/internal/model"
	"github.com/theirongolddev/habitboard/internal/pipeline"
	"github.com/theirongolddev/habitboard/internal/tracker"
)

type formKind int

const (
	formNone formKind = iota
	formAddActivity
	formRemoveActivity
	formNewHabit
	formDeleteHabit
	formRecolorHabit
	formNewEntry
	formEditEntry
	formDeleteEntry
)

// formValues holds the fields bound to the open form.
type formValues struct {
	habit   string
	date    string
	name    string
	color   string
	text    string
	index   int
	confirm bool
}

// Palette offered when creating or recoloring a habit.
var Palette = []struct {
	Name  string
	Color string
}{
	{"Coral", "#FF6B6B"},
	{"Teal", "#4ECDC4"},
	{"Sunflower", "#FFE66D"},
	{"Lavender", "#A78BFA"},
	{"Sky", "#60A5FA"},
	{"Mint", "#34D399"},
	{"Tangerine", "#FB923C"},
	{"Rose", "#F472B6"},
}

func paletteOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], len(Palette))
	for i, p := range Palette {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(p.Color)).Render("●")
		opts[i] = huh.NewOption(swatch+" "+p.Name, p.Color)
	}
	return opts
}

func habitOptions(s *model.Store) []huh.Option[string] {
	habits := s.Habits()
	opts := make([]huh.Option[string], len(habits))
	for i, h := range habits {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(h.Color)).Render("●")
		opts[i] = huh.NewOption(swatch+" "+h.Name, h.Name)
	}
	return opts
}

// loggedHabitOptions lists only habits with an occurrence on d.
func loggedHabitOptions(s *model.Store, d model.Date) []huh.Option[string] {
	var opts []huh.Option[string]
	for _, m := range pipeline.DayMarks(s, d) {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(m.Color)).Render("●")
		opts = append(opts, huh.NewOption(fmt.Sprintf("%s %s (%d)", swatch, m.Habit, m.Count), m.Habit))
	}
	return opts
}

func validateDate(s string) error {
	if _, err := model.ParseDate(strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("use YYYY-MM-DD")
	}
	return nil
}

func validateName(s *model.Store) func(string) error {
	return func(v string) error {
		v = strings.TrimSpace(v)
		switch {
		case v == "":
			return fmt.Errorf("name is required")
		case s.HasHabit(v):
			return fmt.Errorf("a habit named %q already exists", v)
		}
		return nil
	}
}

func validateText(v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("entry text is required")
	}
	return nil
}

// selectedItem returns the journal item under the cursor.
func (a App) selectedItem() (model.JournalItem, bool) {
	items := pipeline.JournalNewestFirst(a.snap.Journal())
	if a.journalCursor < 0 || a.journalCursor >= len(items) {
		return model.JournalItem{}, false
	}
	return items[a.journalCursor], true
}

// newForm builds the huh form for kind, or returns a flash message when the
// form cannot be shown.
func (a App) newForm(kind formKind, v *formValues) (*huh.Form, string) {
	s := a.snap
	day := a.selectedDate()
	*v = formValues{date: day.String()}

	switch kind {
	case formAddActivity:
		if s.Len() == 0 {
			return nil, "create a habit first (n)"
		}
		v.habit = s.HabitNames()[0]
		return huh.NewForm(huh.NewGroup(
			huh.NewSelect[string]().
				Title("Log activity").
				Options(habitOptions(s)...).
				Value(&v.habit),
			huh.NewInput().
				Title("Date").
				Value(&v.date).
				Validate(validateDate),
		)), ""

	case formRemoveActivity:
		opts := loggedHabitOptions(s, day)
		if len(opts) == 0 {
			return nil, "nothing logged on " + cli.FormatJournalDate(day)
		}
		v.habit = opts[0].Value
		return huh.NewForm(huh.NewGroup(
			huh.NewSelect[string]().
				Title("Remove one activity on " + cli.FormatJournalDate(day)).
				Options(opts...).
				Value(&v.habit),
		)), ""

	case formNewHabit:
		v.color = Palette[s.Len()%len(Palette)].Color
		return huh.NewForm(huh.NewGroup(
			huh.NewInput().
				Title("New habit").
				Placeholder("e.g. Reading").
				CharLimit(64).
				Value(&v.name).
				Validate(validateName(s)),
			huh.NewSelect[string]().
				Title("Color").
				Options(paletteOptions()...).
				Value(&v.color),
		)), ""

	case formRecolorHabit:
		if s.Len() == 0 {
			return nil, "no habits yet"
		}
		v.habit = s.HabitNames()[0]
		v.color = Palette[0].Color
		return huh.NewForm(huh.NewGroup(
			huh.NewSelect[string]().
				Title("Habit").
				Options(habitOptions(s)...).
				Value(&v.habit),
			huh.NewSelect[string]().
				Title("New color").
				Options(paletteOptions()...).
				Value(&v.color),
		)), ""

	case formDeleteHabit:
		if s.Len() == 0 {
			return nil, "no habits yet"
		}
		v.habit = s.HabitNames()[0]
		return huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[string]().
					Title("Delete habit").
					Options(habitOptions(s)...).
					Value(&v.habit),
			),
			huh.NewGroup(
				huh.NewConfirm().
					Title("Delete this habit and all of its history?").
					Affirmative("Delete").
					Negative("Cancel").
					Value(&v.confirm),
			),
		), ""

	case formNewEntry:
		return huh.NewForm(huh.NewGroup(
			huh.NewInput().
				Title("Date").
				Value(&v.date).
				Validate(validateDate),
			huh.NewText().
				Title("Journal entry").
				Description("Markdown is fine. Tab to move on.").
				Value(&v.text).
				Validate(validateText),
		)), ""

	case formEditEntry:
		item, ok := a.selectedItem()
		if !ok {
			return nil, "no journal entry selected"
		}
		v.index = item.Index
		v.text = item.Text
		return huh.NewForm(huh.NewGroup(
			huh.NewText().
				Title("Edit entry of " + cli.FormatJournalDate(item.Date)).
				Value(&v.text).
				Validate(validateText),
		)), ""

	case formDeleteEntry:
		item, ok := a.selectedItem()
		if !ok {
			return nil, "no journal entry selected"
		}
		v.index = item.Index
		return huh.NewForm(huh.NewGroup(
			huh.NewConfirm().
				Title("Delete the entry of " + cli.FormatJournalDate(item.Date) + "?").
				Affirmative("Delete").
				Negative("Cancel").
				Value(&v.confirm),
		)), ""
	}
	return nil, ""
}

func (a App) openForm(kind formKind) (tea.Model, tea.Cmd) {
	form, flash := a.newForm(kind, a.vals)
	if form == nil {
		if flash != "" {
			cmd := a.setFlash(flash)
			return a, cmd
		}
		return a, nil
	}
	a.form = form.WithShowHelp(true).WithWidth(min(max(a.width, 40), 70))
	a.formKind = kind
	return a, a.form.Init()
}

func (a App) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
		a.form, a.formKind = nil, formNone
		return a, nil
	}

	form, cmd := a.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.form = f
	}

	switch a.form.State {
	case huh.StateCompleted:
		kind := a.formKind
		a.form, a.formKind = nil, formNone
		cmd := a.submitForm(kind, *a.vals)
		return a, cmd
	case huh.StateAborted:
		a.form, a.formKind = nil, formNone
		return a, nil
	}
	return a, cmd
}

// submitForm turns a completed form into a tracker action.
func (a *App) submitForm(kind formKind, v formValues) tea.Cmd {
	date, _ := model.ParseDate(strings.TrimSpace(v.date))

	switch kind {
	case formAddActivity:
		return a.runAction("add", func(ctx context.Context, tr *tracker.Tracker) (tracker.SaveStatus, string, error) {
			n, st, err := tr.AddOccurrence(ctx, v.habit, date)
			return st, fmt.Sprintf("%s logged on %s (%d that day)", v.habit, cli.FormatJournalDate(date), n), err
		})
	case formRemoveActivity:
		return a.runAction("remove", func(ctx context.Context, tr *tracker.Tracker) (tracker.SaveStatus, string, error) {
			n, st, err := tr.RemoveOccurrence(ctx, v.habit, date)
			return st, fmt.Sprintf("removed one %s on %s (%d left)", v.habit, cli.FormatJournalDate(date), n), err
		})
	case formNewHabit:
		name := strings.TrimSpace(v.name)
		return a.runAction("create", func(ctx context.Context, tr *tracker.Tracker) (tracker.SaveStatus, string, error) {
			_, st, err := tr.CreateHabit(ctx, name, v.color)
			return st, "created " + name, err
		})
	case formRecolorHabit:
		return a.runAction("color", func(ctx context.Context, tr *tracker.Tracker) (tracker.SaveStatus, string, error) {
			st, err := tr.SetHabitColor(ctx, v.habit, v.color)
			return st, "recolored " + v.habit, err
		})
	case formDeleteHabit:
		if !v.confirm {
			return nil
		}
		return a.runAction("delete", func(ctx context.Context, tr *tracker.Tracker) (tracker.SaveStatus, string, error) {
			st, err := tr.DeleteHabit(ctx, v.habit)
			return st, "deleted " + v.habit, err
		})
	case formNewEntry:
		return a.runAction("journal", func(ctx context.Context, tr *tracker.Tracker) (tracker.SaveStatus, string, error) {
			_, st, err := tr.AddJournalEntry(ctx, date, v.text)
			return st, "entry added for " + cli.FormatJournalDate(date), err
		})
	case formEditEntry:
		return a.runAction("journal", func(ctx context.Context, tr *tracker.Tracker) (tracker.SaveStatus, string, error) {
			st, err := tr.UpdateJournalEntry(ctx, v.index, v.text)
			return st, "entry updated", err
		})
	case formDeleteEntry:
		if !v.confirm {
			return nil
		}
		return a.runAction("journal", func(ctx context.Context, tr *tracker.Tracker) (tracker.SaveStatus, string, error) {
			st, err := tr.DeleteJournalEntry(ctx, v.index)
			return st, "entry deleted", err
		})
	}
	return nil
}
