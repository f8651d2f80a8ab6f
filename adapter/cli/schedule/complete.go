package schedule

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/edusense/edusense/adapter/cli"
	"github.com/edusense/edusense/internal/studyplan/application/commands"
)

var completeCmd = &cobra.Command{
	Use:   "complete [schedule-id]",
	Short: "Mark a schedule as completed",
	Long: `Mark a study schedule as worked through.

Examples:
  edusense schedule complete 550e8400-e29b-41d4-a716-446655440000`,
	Aliases: []string{"done"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CompleteScheduleHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		scheduleID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid schedule ID: %w", err)
		}

		completeCmd := commands.CompleteScheduleCommand{
			ScheduleID: scheduleID,
			UserID:     app.CurrentUserID,
		}

		ctx := cmd.Context()
		if err := app.CompleteScheduleHandler.Handle(ctx, completeCmd); err != nil {
			return fmt.Errorf("failed to complete schedule: %w", err)
		}

		fmt.Printf("Schedule completed: %s\n", scheduleID)
		return nil
	},
}
