package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/habitboard/internal/cli"
	"github.com/theirongolddev/habitboard/internal/pipeline"
)

const dashboardJournalEntries = 3

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Calendar, summary, distribution and recent journal in one view",
	RunE:  runDashboard,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(_ *cobra.Command, _ []string) error {
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

	fmt.Println()
	fmt.Println(cli.RenderTitle("HABITBOARD  " + cli.FormatMonth(year, month)))
	fmt.Println()
	if err := printCalendar(snap, year, month); err != nil {
		return err
	}
	if snap.Len() > 0 {
		if err := printSummary(snap, year, month); err != nil {
			return err
		}
		fmt.Println()
	}

	dist, err := pipeline.Distribution(snap, year, month)
	if err != nil {
		return err
	}
	fmt.Print(cli.RenderDistribution(dist, 30))

	totals, err := pipeline.DailyTotals(snap, year, month)
	if err != nil {
		return err
	}
	if !dist.Empty() {
		vals := make([]float64, len(totals))
		for i, v := range totals {
			vals[i] = float64(v)
		}
		fmt.Printf("\n  %s  %s\n", cli.Muted("Daily"), cli.RenderSparkline(vals))
	}

	items := pipeline.JournalNewestFirst(snap.Journal())
	if len(items) > dashboardJournalEntries {
		items = items[:dashboardJournalEntries]
	}
	fmt.Println()
	fmt.Print(cli.RenderJournal(items))
	fmt.Println()
	return nil
}
