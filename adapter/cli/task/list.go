package task

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/edusense/edusense/adapter/cli"
	"github.com/edusense/edusense/internal/coursework/application/queries"
)

var status string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	Long: `List tasks ordered by deadline, the most urgent first.

Filter Options:
  --status   Filter by status (pending, in_progress, completed)

Examples:
  edusense task list                        # All tasks
  edusense task list --status pending      # Only pending tasks
  edusense task list --status completed    # Only completed tasks`,
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ListTasksHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		query := queries.ListTasksQuery{
			UserID: app.CurrentUserID,
			Status: status,
		}

		ctx := cmd.Context()
		tasks, err := app.ListTasksHandler.Handle(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to list tasks: %w", err)
		}

		if len(tasks) == 0 {
			fmt.Println("No tasks found.")
			return nil
		}

		fmt.Printf("Tasks (%d):\n", len(tasks))
		fmt.Println(strings.Repeat("-", 60))

		now := time.Now()
		for _, t := range tasks {
			statusIcon := getStatusIcon(t.Status)
			difficultyBadge := getDifficultyBadge(t.Difficulty)

			dueMarker := ""
			if t.Status != "completed" {
				if t.Deadline.Before(now) {
					dueMarker = " [OVERDUE]"
				} else if t.Deadline.Year() == now.Year() && t.Deadline.Month() == now.Month() && t.Deadline.Day() == now.Day() {
					dueMarker = " [TODAY]"
				}
			}

			fmt.Printf("%s %s %s%s\n", statusIcon, t.Title, difficultyBadge, dueMarker)
			fmt.Printf("   ID: %s\n", t.ID.String()[:8])
			fmt.Printf("   Subject: %s\n", t.Subject)
			fmt.Printf("   Due: %s\n", t.Deadline.Format("2006-01-02"))
			if t.PriorityScore != nil {
				fmt.Printf("   Priority: %.1f\n", *t.PriorityScore)
			}
			fmt.Println()
		}

		return nil
	},
}

func getStatusIcon(status string) string {
	switch status {
	case "completed":
		return "[x]"
	case "in_progress":
		return "[>]"
	default:
		return "[ ]"
	}
}

func getDifficultyBadge(difficulty string) string {
	switch difficulty {
	case "hard":
		return "(!!)"
	case "medium":
		return "(~)"
	case "easy":
		return "(.)"
	default:
		return ""
	}
}

func init() {
	listCmd.Flags().StringVarP(&status, "status", "s", "", "filter by status (pending, in_progress, completed)")
}
