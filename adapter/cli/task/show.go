package task

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/edusense/edusense/adapter/cli"
	"github.com/edusense/edusense/internal/coursework/application/queries"
)

var showCmd = &cobra.Command{
	Use:   "show [task-id]",
	Short: "Show task details",
	Long: `Display detailed information about a specific task.

Examples:
  edusense task show 550e8400-e29b-41d4-a716-446655440000`,
	Aliases: []string{"get", "view"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.GetTaskHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		taskID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid task ID: %w", err)
		}

		query := queries.GetTaskQuery{
			TaskID: taskID,
			UserID: app.CurrentUserID,
		}

		ctx := cmd.Context()
		task, err := app.GetTaskHandler.Handle(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to get task: %w", err)
		}

		fmt.Printf("Task: %s\n", task.ID)
		fmt.Printf("  Title:      %s\n", task.Title)
		fmt.Printf("  Subject:    %s\n", task.Subject)
		fmt.Printf("  Status:     %s\n", formatStatus(task.Status))
		fmt.Printf("  Difficulty: %s\n", task.Difficulty)

		if task.Description != "" {
			fmt.Printf("  Description: %s\n", task.Description)
		}

		fmt.Printf("  Due:        %s\n", task.Deadline.Format("2006-01-02 15:04"))

		if task.PriorityScore != nil {
			fmt.Printf("  Priority:   %.1f\n", *task.PriorityScore)
		}

		fmt.Printf("  Created:    %s\n", task.CreatedAt.Format("2006-01-02 15:04"))

		return nil
	},
}

func formatStatus(status string) string {
	switch status {
	case "pending":
		return "Pending"
	case "in_progress":
		return "In Progress"
	case "completed":
		return "Completed"
	default:
		return status
	}
}
