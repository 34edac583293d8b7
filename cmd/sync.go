package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/habitboard/internal/cli"
	"github.com/theirongolddev/habitboard/internal/config"
	"github.com/theirongolddev/habitboard/internal/persist"
	"github.com/theirongolddev/habitboard/internal/store"
	"github.com/theirongolddev/habitboard/internal/tracker"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Pull from or push to the remote document store",
}

var syncPullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Load the remote document and show what it holds",
	RunE:  runSyncPull,
}

var syncPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Save the current document to the remote again",
	RunE:  runSyncPush,
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the storage configuration and local snapshot state",
	RunE:  runSyncStatus,
}

func init() {
	syncCmd.AddCommand(syncPullCmd, syncPushCmd, syncStatusCmd)
	rootCmd.AddCommand(syncCmd)
}

func runSyncPull(_ *cobra.Command, _ []string) error {
	sess, err := openSession(context.Background())
	if err != nil {
		return err
	}
	defer sess.Close()

	printPull(os.Stdout, sess.tr)
	return nil
}

// printPull reports what opening the session loaded. Opening already fetched
// the remote, so pull does not fetch again.
func printPull(w io.Writer, tr *tracker.Tracker) {
	snap := tr.Snapshot()
	switch tr.Source() {
	case "default":
		fmt.Fprintln(w, "  Nothing to load; the remote document is empty or unreachable.")
	case persist.SourceMirror:
		fmt.Fprintf(w, "  Remote unreachable; latest local snapshot has %d habits and %d journal entries\n",
			snap.Len(), len(snap.Journal()))
	default:
		fmt.Fprintf(w, "  Loaded %d habits and %d journal entries from %s\n",
			snap.Len(), len(snap.Journal()), tr.Source())
	}
}

func runSyncPush(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	sess, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	if sess.tr.Source() == "default" {
		return errors.New("nothing was loaded; refusing to overwrite the remote with the default habits")
	}
	return sess.reportSave(sess.tr.SaveNow(ctx))
}

func runSyncStatus(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("  Driver:   %s\n", cfg.Storage.Driver)
	switch cfg.Storage.Driver {
	case config.DriverGist:
		id := config.GetGistID(cfg)
		if id == "" {
			id = cli.Warn("not configured")
		}
		token := cli.Warn("not configured")
		if config.GetGistToken(cfg) != "" {
			token = "set"
		}
		fmt.Printf("  Gist:     %s (%s)\n", id, cfg.Gist.Filename)
		fmt.Printf("  Token:    %s\n", token)
	case config.DriverS3:
		bucket := cfg.S3.Bucket
		if bucket == "" {
			bucket = cli.Warn("not configured")
		}
		fmt.Printf("  Object:   s3://%s/%s (%s)\n", bucket, cfg.S3.Key, cfg.S3.Region)
		if cfg.S3.Endpoint != "" {
			fmt.Printf("  Endpoint: %s\n", cfg.S3.Endpoint)
		}
	}
	fmt.Printf("  Timeout:  %ds\n", cfg.Storage.TimeoutSec)
	fmt.Println()

	if !cfg.Storage.Mirror && cfg.Storage.Driver != config.DriverLocal {
		fmt.Println("  Local snapshots: disabled")
		return nil
	}

	h, err := store.Open(config.HistoryPath(cfg))
	if err != nil {
		return err
	}
	defer func() { _ = h.Close() }()

	return printHistoryState(os.Stdout, h, config.HistoryPath(cfg))
}

// printHistoryState reports the snapshot count, the newest snapshot and,
// when the newest never reached the remote, the last one that did.
func printHistoryState(w io.Writer, h *store.History, path string) error {
	n, err := h.Count()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "  Local snapshots: %d in %s\n", n, path)

	latest, err := h.Latest()
	switch {
	case errors.Is(err, store.ErrNoSnapshot):
		return nil
	case err != nil:
		return err
	}
	if latest.RemoteOK {
		fmt.Fprintf(w, "  Latest:          v%d %s, %s\n", latest.Version,
			latest.SavedAt.Local().Format(time.DateTime), cli.Success("accepted by remote"))
		return nil
	}
	fmt.Fprintf(w, "  Latest:          v%d %s, %s\n", latest.Version,
		latest.SavedAt.Local().Format(time.DateTime), cli.Warn("not on remote"))

	remote, err := h.LatestRemote()
	switch {
	case errors.Is(err, store.ErrNoSnapshot):
		fmt.Fprintf(w, "  Last on remote:  %s\n", cli.Warn("never"))
		return nil
	case err != nil:
		return err
	}
	fmt.Fprintf(w, "  Last on remote:  v%d %s\n", remote.Version, remote.SavedAt.Local().Format(time.DateTime))
	return nil
}
