package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/habitboard/internal/cli"
)

var flagHistoryLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List local snapshots of saved documents",
	RunE:  runHistory,
}

var restoreCmd = &cobra.Command{
	Use:   "restore <version>",
	Short: "Restore a local snapshot and save it to the remote",
	Args:  cobra.ExactArgs(1),
	RunE:  runRestore,
}

func init() {
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "l", 20, "Show at most this many snapshots (0 for all)")
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(restoreCmd)
}

var errNoHistory = errors.New("local snapshots are disabled; set storage.mirror = true")

func runHistory(_ *cobra.Command, _ []string) error {
	sess, err := openSession(context.Background())
	if err != nil {
		return err
	}
	defer sess.Close()
	if sess.history == nil {
		return errNoHistory
	}

	snaps, err := sess.history.List(flagHistoryLimit)
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		fmt.Println("\n  No snapshots yet.")
		return nil
	}

	rows := make([][]string, len(snaps))
	for i, s := range snaps {
		remote := cli.Success("yes")
		if !s.RemoteOK {
			remote = cli.Warn("no")
		}
		rows[i] = []string{
			strconv.FormatInt(s.Version, 10),
			s.SavedAt.Local().Format(time.DateTime),
			s.Source,
			remote,
			cli.FormatNumber(int64(s.Size)),
			s.Checksum[:min(12, len(s.Checksum))],
		}
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Snapshots",
		Headers: []string{"Version", "Saved", "Source", "Remote", "Bytes", "SHA-256"},
		Rows:    rows,
	}))
	fmt.Println()
	return nil
}

func runRestore(_ *cobra.Command, args []string) error {
	version, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid version %q", args[0])
	}

	ctx := context.Background()
	sess, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()
	if sess.history == nil {
		return errNoHistory
	}

	snap, err := sess.history.Get(version)
	if err != nil {
		return fmt.Errorf("snapshot v%d: %w", version, err)
	}
	st, err := sess.tr.Import(ctx, bytes.NewReader(snap.Payload))
	if err != nil {
		return err
	}
	fmt.Printf("  Restored snapshot v%d from %s\n", version, snap.SavedAt.Local().Format(time.DateTime))
	return sess.reportSave(st)
}
