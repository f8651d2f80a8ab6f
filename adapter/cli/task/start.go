package task

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/edusense/edusense/adapter/cli"
	"github.com/edusense/edusense/internal/coursework/application/commands"
)

var startCmd = &cobra.Command{
	Use:   "start [task-id]",
	Short: "Start working on a task",
	Long: `Mark a task as in progress to indicate you're actively working on it.

Examples:
  edusense task start 550e8400-e29b-41d4-a716-446655440000`,
	Aliases: []string{"begin"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.StartTaskHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		taskID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid task ID: %w", err)
		}

		startCmd := commands.StartTaskCommand{
			TaskID: taskID,
			UserID: app.CurrentUserID,
		}

		ctx := cmd.Context()
		if err := app.StartTaskHandler.Handle(ctx, startCmd); err != nil {
			return fmt.Errorf("failed to start task: %w", err)
		}

		fmt.Printf("Task started: %s\n", taskID)
		return nil
	},
}
