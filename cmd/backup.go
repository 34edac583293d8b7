package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/habitboard/internal/cli"
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write a backup of all habits and journal entries (stdout by default)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExport,
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace all data with a backup file (- reads stdin)",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}

func runExport(_ *cobra.Command, args []string) error {
	sess, err := openSession(context.Background())
	if err != nil {
		return err
	}
	defer sess.Close()

	if len(args) == 0 || args[0] == "-" {
		return sess.tr.Export(os.Stdout)
	}

	f, err := os.OpenFile(args[0], os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating backup file: %w", err)
	}
	if err := sess.tr.Export(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing backup: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing backup: %w", err)
	}
	progress("%s", cli.Success("Backup written to "+args[0]))
	return nil
}

func runImport(_ *cobra.Command, args []string) error {
	var r io.Reader = os.Stdin
	if args[0] != "-" {
		//nolint:gosec // backup path is chosen by the local user
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening backup: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	ctx := context.Background()
	sess, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	st, err := sess.tr.Import(ctx, r)
	if err != nil {
		return err
	}
	snap := sess.tr.Snapshot()
	fmt.Printf("  Imported %d habits and %d journal entries\n", snap.Len(), len(snap.Journal()))
	return sess.reportSave(st)
}
