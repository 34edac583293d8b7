package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/habitboard/internal/cli"
)

var flagCount int

var addCmd = &cobra.Command{
	Use:   "add <habit>",
	Short: "Log an activity for a habit (default today)",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdd,
}

var removeCmd = &cobra.Command{
	Use:     "remove <habit>",
	Aliases: []string{"rm"},
	Short:   "Remove one logged activity from a day (default today)",
	Args:    cobra.ExactArgs(1),
	RunE:    runRemove,
}

func init() {
	addCmd.Flags().IntVarP(&flagCount, "count", "n", 1, "Number of activities to log")
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(removeCmd)
}

func runAdd(_ *cobra.Command, args []string) error {
	day, err := selectedDate()
	if err != nil {
		return err
	}

	ctx := context.Background()
	sess, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	n, st, err := sess.tr.AddOccurrences(ctx, args[0], day, flagCount)
	if err != nil {
		return err
	}

	fmt.Printf("  %s on %s: %d\n", args[0], cli.FormatJournalDate(day), n)
	return sess.reportSave(st)
}

func runRemove(_ *cobra.Command, args []string) error {
	day, err := selectedDate()
	if err != nil {
		return err
	}

	ctx := context.Background()
	sess, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	n, st, err := sess.tr.RemoveOccurrence(ctx, args[0], day)
	if err != nil {
		return err
	}

	fmt.Printf("  %s on %s: %d\n", args[0], cli.FormatJournalDate(day), n)
	return sess.reportSave(st)
}
