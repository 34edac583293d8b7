package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/habitboard/internal/config"
	"github.com/theirongolddev/habitboard/internal/model"
	"github.com/theirongolddev/habitboard/internal/persist"
	"github.com/theirongolddev/habitboard/internal/tracker"
	"github.com/theirongolddev/habitboard/internal/tui"
	"github.com/theirongolddev/habitboard/internal/tui/theme"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if !config.Exists() {
		if err := runSetupWizard(&cfg); err != nil {
			return err
		}
	}
	theme.SetActive(cfg.Appearance.Theme)

	year, month, err := selectedMonth()
	if err != nil {
		return err
	}

	// Progress lines and log output would tear the alt screen.
	flagQuiet = true
	closeLog := logToFile(filepath.Join(config.DataDir(), "tui.log"))
	defer closeLog()

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	gw, history, err := buildGateway(context.Background(), cfg)
	if err != nil {
		return err
	}
	if history != nil {
		defer func() { _ = history.Close() }()
	}

	app := tui.NewApp(tui.Options{
		Open: func(ctx context.Context) *tracker.Tracker {
			return openTracker(ctx, gw)
		},
		BackupPath: config.BackupPath(cfg),
		Today:      model.Today,
		Year:       year,
		Month:      month,
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}

// logToFile sends log output to path for the lifetime of the TUI, or drops
// it when the file cannot be opened.
func logToFile(path string) func() {
	level := slog.LevelWarn
	if flagVerbose {
		level = slog.LevelDebug
	}
	var w io.Writer = io.Discard
	closeFn := func() {}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err == nil {
		//nolint:gosec // log path is under the user's data dir
		if f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600); err == nil {
			w = f
			closeFn = func() { _ = f.Close() }
		}
	}
	logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return closeFn
}

func openTracker(ctx context.Context, gw *persist.Gateway) *tracker.Tracker {
	return tracker.Open(ctx, gw, tracker.WithLogger(logger))
}
