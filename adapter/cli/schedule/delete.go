package schedule

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/edusense/edusense/adapter/cli"
	"github.com/edusense/edusense/internal/studyplan/application/commands"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [schedule-id]",
	Short: "Delete a schedule",
	Long: `Delete a study schedule permanently.

Examples:
  edusense schedule delete 550e8400-e29b-41d4-a716-446655440000`,
	Aliases: []string{"rm"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.DeleteScheduleHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		scheduleID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid schedule ID: %w", err)
		}

		deleteCmd := commands.DeleteScheduleCommand{
			ScheduleID: scheduleID,
			UserID:     app.CurrentUserID,
		}

		ctx := cmd.Context()
		if err := app.DeleteScheduleHandler.Handle(ctx, deleteCmd); err != nil {
			return fmt.Errorf("failed to delete schedule: %w", err)
		}

		fmt.Printf("Schedule deleted: %s\n", scheduleID)
		return nil
	},
}
