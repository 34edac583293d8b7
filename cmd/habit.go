package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/habitboard/internal/cli"
	"github.com/theirongolddev/habitboard/internal/model"
	"github.com/theirongolddev/habitboard/internal/pipeline"
)

var (
	flagHabitColor string
	flagYes        bool
)

var habitCmd = &cobra.Command{
	Use:   "habit",
	Short: "Create, recolor, delete and list habits",
}

var habitCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a habit",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runHabitCreate,
}

var habitDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a habit and all of its history",
	Args:  cobra.ExactArgs(1),
	RunE:  runHabitDelete,
}

var habitColorCmd = &cobra.Command{
	Use:   "color <name> <color>",
	Short: "Change a habit's color",
	Args:  cobra.ExactArgs(2),
	RunE:  runHabitColor,
}

var habitListCmd = &cobra.Command{
	Use:   "list",
	Short: "List habits with all-time totals and streaks",
	RunE:  runHabitList,
}

func init() {
	habitCreateCmd.Flags().StringVarP(&flagHabitColor, "color", "c", "", "Hex color, e.g. #4ECDC4")
	habitDeleteCmd.Flags().BoolVarP(&flagYes, "yes", "y", false, "Do not ask for confirmation")

	habitCmd.AddCommand(habitCreateCmd, habitDeleteCmd, habitColorCmd, habitListCmd)
	rootCmd.AddCommand(habitCmd)
}

func runHabitCreate(_ *cobra.Command, args []string) error {
	ctx := context.Background()
	sess, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	h, st, err := sess.tr.CreateHabit(ctx, strings.Join(args, " "), flagHabitColor)
	if err != nil {
		return err
	}
	fmt.Printf("  Created %s %s\n", cli.DotStyle(h.Color).Render("●"), h.Name)
	return sess.reportSave(st)
}

func runHabitDelete(_ *cobra.Command, args []string) error {
	ctx := context.Background()
	sess, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	h, err := sess.tr.Snapshot().Habit(args[0])
	if err != nil {
		return err
	}

	if !flagYes {
		confirmed := false
		err := huh.NewConfirm().
			Title(fmt.Sprintf("Delete %s and its %d logged activities?", h.Name, h.Total())).
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

	st, err := sess.tr.DeleteHabit(ctx, h.Name)
	if err != nil {
		return err
	}
	fmt.Printf("  Deleted %s\n", h.Name)
	return sess.reportSave(st)
}

func runHabitColor(_ *cobra.Command, args []string) error {
	ctx := context.Background()
	sess, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	st, err := sess.tr.SetHabitColor(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Printf("  %s %s\n", cli.DotStyle(args[1]).Render("●"), args[0])
	return sess.reportSave(st)
}

func runHabitList(_ *cobra.Command, _ []string) error {
	sess, err := openSession(context.Background())
	if err != nil {
		return err
	}
	defer sess.Close()

	snap := sess.tr.Snapshot()
	if snap.Len() == 0 {
		fmt.Println("\n  No habits yet.")
		return nil
	}

	today := model.Today()
	rows := make([][]string, 0, snap.Len())
	for _, h := range snap.Habits() {
		streak, _ := pipeline.Streak(snap, h.Name, today)
		longest, _ := pipeline.LongestStreak(snap, h.Name)
		rows = append(rows, []string{
			cli.DotStyle(h.Color).Render("●") + " " + h.Name,
			h.Color,
			cli.FormatNumber(int64(h.Total())),
			fmt.Sprintf("%d", len(h.Dates())),
			cli.FormatStreak(streak),
			cli.FormatStreak(longest),
		})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Habits",
		Headers: []string{"Habit", "Color", "Total", "Days", "Streak", "Best"},
		Rows:    rows,
	}))
	fmt.Println()
	return nil
}
