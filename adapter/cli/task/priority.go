package task

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/edusense/edusense/adapter/cli"
	"github.com/edusense/edusense/internal/coursework/application/queries"
	"github.com/edusense/edusense/internal/coursework/application/services"
)

var priorityCmd = &cobra.Command{
	Use:   "priority [task-id]",
	Short: "Show the priority report for a task",
	Long: `Score a task and explain the result factor by factor.

The final score also lands on the task itself, so the next list shows it.

Examples:
  edusense task priority 550e8400-e29b-41d4-a716-446655440000`,
	Aliases: []string{"score"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.PriorityReportHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		taskID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid task ID: %w", err)
		}

		ctx := cmd.Context()
		report, err := app.PriorityReportHandler.Handle(ctx, queries.GetPriorityReportQuery{
			TaskID: taskID,
			UserID: app.CurrentUserID,
		})
		if err != nil {
			return fmt.Errorf("failed to score task: %w", err)
		}

		fmt.Printf("\n  Priority Report: %s\n", report.Title)
		fmt.Println(strings.Repeat("=", 60))
		fmt.Printf("  Score:     %.1f/100 (%s)\n", report.FinalScore, report.PriorityLabel)
		fmt.Printf("  Days left: %.1f\n", report.DaysRemaining)

		fmt.Println("\n  BREAKDOWN")
		fmt.Println(strings.Repeat("-", 60))
		printFactor("Deadline proximity", report.Breakdown.DeadlineProximity)
		printFactor("Difficulty", report.Breakdown.Difficulty)
		printFactor("Status", report.Breakdown.Status)
		printFactor("Overdue penalty", report.Breakdown.OverduePenalty)

		if report.Suggestion != "" {
			fmt.Printf("\n  Suggestion: %s\n", report.Suggestion)
		}
		fmt.Println()

		return nil
	},
}

func printFactor(name string, f services.Factor) {
	fmt.Printf("  %-20s %5.1f x %.2f = %5.1f  %s\n", name, f.Score, f.Weight, f.WeightedScore, f.Reason)
}
