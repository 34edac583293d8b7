// Package cmd implements the habitboard CLI commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/habitboard/internal/cli"
	"github.com/theirongolddev/habitboard/internal/config"
	"github.com/theirongolddev/habitboard/internal/gist"
	"github.com/theirongolddev/habitboard/internal/model"
	"github.com/theirongolddev/habitboard/internal/persist"
	"github.com/theirongolddev/habitboard/internal/s3doc"
	"github.com/theirongolddev/habitboard/internal/store"
	"github.com/theirongolddev/habitboard/internal/tracker"
	"github.com/theirongolddev/habitboard/internal/tui/theme"
)

var (
	flagMonth   string
	flagDate    string
	flagDay     int
	flagQuiet   bool
	flagVerbose bool
	flagOffline bool
)

var logger = slog.Default()

var rootCmd = &cobra.Command{
	Use:   "habitboard",
	Short: "Habit tracker with a calendar, streaks and a journal",
	Long: "Log daily habits, see streaks and monthly distribution, and keep a journal.\n" +
		"Data lives in one JSON document stored in a GitHub gist, an S3 bucket or locally.",
	PersistentPreRun: func(_ *cobra.Command, _ []string) { setupLogger() },
	RunE:             runSummary,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagMonth, "month", "m", "", "Month to show, YYYY-MM (default current)")
	rootCmd.PersistentFlags().StringVar(&flagDate, "date", "", "Date to act on, YYYY-MM-DD (default today)")
	rootCmd.PersistentFlags().IntVarP(&flagDay, "day", "d", 0, "Day of the selected month to act on")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Debug logging on stderr")
	rootCmd.PersistentFlags().BoolVar(&flagOffline, "offline", false, "Skip the remote store and use local snapshots only")
}

func setupLogger() {
	level := slog.LevelWarn
	cfg, _ := config.Load()
	if cfg.General.LogLevel != "" {
		_ = level.UnmarshalText([]byte(cfg.General.LogLevel))
	}
	switch {
	case flagVerbose:
		level = slog.LevelDebug
	case flagQuiet:
		level = slog.LevelError
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// progress prints human-facing feedback to stderr unless --quiet.
func progress(format string, args ...any) {
	if flagQuiet {
		return
	}
	fmt.Fprintf(os.Stderr, "  "+format+"\n", args...)
}

// selectedMonth returns --month, or the current month.
func selectedMonth() (int, time.Month, error) {
	if flagMonth == "" {
		today := model.Today()
		return today.Year(), today.Month(), nil
	}
	return cli.ParseMonth(flagMonth)
}

// selectedDate resolves --date, then --day within the selected month, then
// today.
func selectedDate() (model.Date, error) {
	if flagDate != "" {
		return model.ParseDate(flagDate)
	}
	if flagDay != 0 {
		y, m, err := selectedMonth()
		if err != nil {
			return model.Date{}, err
		}
		return model.NewDate(y, m, flagDay)
	}
	return model.Today(), nil
}

// session is one command's view of the persisted habits.
type session struct {
	cfg     config.Config
	gw      *persist.Gateway
	history *store.History
	tr      *tracker.Tracker
}

func (s *session) Close() {
	if s.history != nil {
		_ = s.history.Close()
	}
}

// openSession loads the config, builds the gateway and opens the tracker.
func openSession(ctx context.Context) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	theme.SetActive(cfg.Appearance.Theme)

	gw, history, err := buildGateway(ctx, cfg)
	if err != nil {
		return nil, err
	}
	progress("Loading habits from %s...", gw.BackendName())
	tr := openTracker(ctx, gw)
	if tr.Source() == persist.SourceMirror {
		progress("Remote unavailable, using the latest local snapshot")
	}
	return &session{cfg: cfg, gw: gw, history: history, tr: tr}, nil
}

// buildGateway wires the configured remote backend and the local snapshot
// mirror. A backend that cannot be constructed is left out, so the gateway
// reports it as unavailable instead of failing the command.
func buildGateway(ctx context.Context, cfg config.Config) (*persist.Gateway, *store.History, error) {
	local := cfg.Storage.Driver == config.DriverLocal || flagOffline

	var history *store.History
	if cfg.Storage.Mirror || local {
		h, err := store.Open(config.HistoryPath(cfg))
		if err != nil {
			if local {
				return nil, nil, err
			}
			logger.Warn("local snapshot history unavailable", "err", err)
		} else {
			history = h
		}
	}

	opts := persist.Options{
		Timeout: time.Duration(cfg.Storage.TimeoutSec) * time.Second,
		Keep:    cfg.Local.Keep,
		Logger:  logger,
	}

	// The local driver stores the document in the history itself.
	if local {
		return persist.New(persist.NewLocalBackend(history), nil, opts), history, nil
	}

	remote, err := buildRemote(ctx, cfg)
	if err != nil {
		logger.Warn("remote document store not configured", "driver", cfg.Storage.Driver, "err", err)
	}
	return persist.New(remote, history, opts), history, nil
}

func buildRemote(ctx context.Context, cfg config.Config) (persist.Backend, error) {
	switch cfg.Storage.Driver {
	case config.DriverGist:
		opts := []gist.Option{gist.WithFilename(cfg.Gist.Filename)}
		if cfg.Gist.APIURL != "" {
			opts = append(opts, gist.WithBaseURL(cfg.Gist.APIURL))
		}
		c := gist.NewClient(config.GetGistToken(cfg), config.GetGistID(cfg), opts...)
		if c == nil {
			return nil, errors.New("gist id or token missing")
		}
		return c, nil
	case config.DriverS3:
		st, err := s3doc.New(ctx, s3doc.Config{
			Bucket:          cfg.S3.Bucket,
			Key:             cfg.S3.Key,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			PathStyle:       cfg.S3.PathStyle,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
		}, logger)
		if err != nil {
			return nil, err
		}
		return st, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}

// reportSave prints the outcome of a save. A failed save writes the document
// to the backup file and fails the command so the change is not lost silently.
func (s *session) reportSave(st tracker.SaveStatus) error {
	if st.State != tracker.Failed {
		if st.State == tracker.Succeeded {
			progress("%s", cli.Success("Saved to "+st.Backend))
		}
		return nil
	}
	path := config.BackupPath(s.cfg)
	if err := tracker.WriteFallback(path, st); err != nil {
		return fmt.Errorf("save failed (%w) and the backup could not be written: %v", st.Err, err)
	}
	return fmt.Errorf("save failed: %w; your data was written to %s", st.Err, path)
}
