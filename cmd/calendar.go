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

var flagCalendarHabit string

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Month calendar with a dot per logged activity",
	Long: "Show the selected month as a calendar. With --habit, show that habit's\n" +
		"month as a heatmap instead.",
	RunE: runCalendar,
}

func init() {
	calendarCmd.Flags().StringVar(&flagCalendarHabit, "habit", "", "Show a heatmap for one habit")
	rootCmd.AddCommand(calendarCmd)
}

func runCalendar(_ *cobra.Command, _ []string) error {
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

	if flagCalendarHabit != "" {
		hm, err := pipeline.Heatmap(snap, flagCalendarHabit, year, month)
		if err != nil {
			return err
		}
		fmt.Print(cli.RenderHeatmap(hm))
		fmt.Println()
		return nil
	}

	return printCalendar(snap, year, month)
}

func printCalendar(snap *model.Store, year int, month time.Month) error {
	grid, err := pipeline.MonthGrid(year, month)
	if err != nil {
		return err
	}
	marks := func(day int) []model.DayMark {
		return pipeline.DayMarks(snap, model.MustDate(year, month, day))
	}
	fmt.Print(cli.RenderCalendar(grid, marks, model.Today()))
	fmt.Println()
	fmt.Println(cli.RenderLegend(snap.Habits()))
	fmt.Println()
	return nil
}
