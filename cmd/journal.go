package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/habitboard/internal/cli"
	"github.com/theirongolddev/habitboard/internal/model"
	"github.com/theirongolddev/habitboard/internal/pipeline"
)

var flagJournalLimit int

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Write, list, edit and delete journal entries",
}

var journalAddCmd = &cobra.Command{
	Use:   "add [text...]",
	Short: "Add an entry for a date (default today); reads stdin when text is - or omitted",
	RunE:  runJournalAdd,
}

var journalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List entries, newest first",
	RunE:  runJournalList,
}

var journalEditCmd = &cobra.Command{
	Use:   "edit <index> [text...]",
	Short: "Replace the text of an entry; reads stdin when text is - or omitted",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runJournalEdit,
}

var journalDeleteCmd = &cobra.Command{
	Use:   "delete <index>",
	Short: "Delete an entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalDelete,
}

func init() {
	journalListCmd.Flags().IntVarP(&flagJournalLimit, "limit", "l", 0, "Show at most this many entries")
	journalDeleteCmd.Flags().BoolVarP(&flagYes, "yes", "y", false, "Do not ask for confirmation")

	journalCmd.AddCommand(journalAddCmd, journalListCmd, journalEditCmd, journalDeleteCmd)
	rootCmd.AddCommand(journalCmd)
}

// entryText joins args, or reads stdin when there are none or the only one
// is "-".
func entryText(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 && !(len(args) == 1 && args[0] == "-") {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(io.LimitReader(stdin, 1<<20))
	if err != nil {
		return "", fmt.Errorf("reading entry from stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

func parseIndex(s string) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, &model.ValidationError{Field: "index", Reason: fmt.Sprintf("%q is not a number", s)}
	}
	return i, nil
}

func runJournalAdd(_ *cobra.Command, args []string) error {
	day, err := selectedDate()
	if err != nil {
		return err
	}
	text, err := entryText(args, os.Stdin)
	if err != nil {
		return err
	}

	ctx := context.Background()
	sess, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	e, st, err := sess.tr.AddJournalEntry(ctx, day, text)
	if err != nil {
		return err
	}
	fmt.Printf("  Entry added for %s (#%d)\n", cli.FormatJournalDate(e.Date), len(sess.tr.Snapshot().Journal())-1)
	return sess.reportSave(st)
}

func runJournalList(_ *cobra.Command, _ []string) error {
	sess, err := openSession(context.Background())
	if err != nil {
		return err
	}
	defer sess.Close()

	items := pipeline.JournalNewestFirst(sess.tr.Snapshot().Journal())
	if flagMonth != "" {
		year, month, err := selectedMonth()
		if err != nil {
			return err
		}
		filtered := items[:0]
		for _, it := range items {
			if it.Date.InMonth(year, month) {
				filtered = append(filtered, it)
			}
		}
		items = filtered
	}
	if flagJournalLimit > 0 && len(items) > flagJournalLimit {
		items = items[:flagJournalLimit]
	}

	fmt.Println()
	fmt.Print(cli.RenderJournal(items))
	fmt.Println()
	return nil
}

func runJournalEdit(_ *cobra.Command, args []string) error {
	i, err := parseIndex(args[0])
	if err != nil {
		return err
	}
	text, err := entryText(args[1:], os.Stdin)
	if err != nil {
		return err
	}

	ctx := context.Background()
	sess, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	st, err := sess.tr.UpdateJournalEntry(ctx, i, text)
	if err != nil {
		return err
	}
	fmt.Printf("  Entry #%d updated\n", i)
	return sess.reportSave(st)
}

func runJournalDelete(_ *cobra.Command, args []string) error {
	i, err := parseIndex(args[0])
	if err != nil {
		return err
	}

	ctx := context.Background()
	sess, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	entries := sess.tr.Snapshot().Journal()
	if i < 0 || i >= len(entries) {
		return &model.ValidationError{Field: "index", Reason: fmt.Sprintf("no entry #%d", i)}
	}

	if !flagYes {
		confirmed := false
		err := huh.NewConfirm().
			Title(fmt.Sprintf("Delete the entry of %s?", cli.FormatJournalDate(entries[i].Date))).
			Affirmative("Delete").
			Negative("Cancel").
			Value(&confirmed).
			Run()
		if err != nil {
			return err
		}
		if !confirmed {
			return errors.New("cancelled")
		}
	}

	st, err := sess.tr.DeleteJournalEntry(ctx, i)
	if err != nil {
		return err
	}
	fmt.Printf("  Entry #%d deleted\n", i)
	return sess.reportSave(st)
}
