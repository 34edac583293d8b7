package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/habitboard/internal/cli"
	"github.com/theirongolddev/habitboard/internal/model"
	"github.com/theirongolddev/habitboard/internal/pipeline"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Monthly totals and streaks per habit",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(_ *cobra.Command, _ []string) error {
	year, month, err := selectedMonth()
	if err != nil {
		return err
	}

	sess, err := openSession(context.Background())
	if err != nil {
		return err
	}
	defer sess.Close()

	snap := sess.tr.Snapshot()
	if snap.Len() == 0 {
		fmt.Println("\n  No habits yet.")
		fmt.Println("  Create one with `habitboard habit create <name>`.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("HABITS  " + cli.FormatMonth(year, month)))
	fmt.Println()
	if err := printSummary(snap, year, month); err != nil {
		return err
	}

	dist, err := pipeline.Distribution(snap, year, month)
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Print(cli.RenderDistribution(dist, 30))
	fmt.Println()
	return nil
}

func printSummary(snap *model.Store, year int, month time.Month) error {
	sums, err := pipeline.Summaries(snap, year, month, model.Today())
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(sums)+2)
	total := 0
	for _, s := range sums {
		total += s.Total
		rows = append(rows, []string{
			cli.DotStyle(s.Color).Render("●") + " " + s.Name,
			cli.FormatNumber(int64(s.Total)),
			fmt.Sprintf("%d", s.ActiveDays),
			cli.FormatStreak(s.Streak),
			cli.FormatStreak(s.LongestStreak),
		})
	}
	rows = append(rows, []string{"---"}, []string{"Total", cli.FormatNumber(int64(total)), "", "", ""})

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Habit", "This month", "Active days", "Streak", "Best"},
		Rows:    rows,
	}))
	return nil
}
