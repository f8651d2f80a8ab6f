package schedule

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/edusense/edusense/adapter/cli"
	"github.com/edusense/edusense/internal/studyplan/application/queries"
)

var showCmd = &cobra.Command{
	Use:   "show [schedule-id]",
	Short: "Show a schedule with its sessions",
	Long: `Display a study schedule day by day.

Examples:
  edusense schedule show 550e8400-e29b-41d4-a716-446655440000`,
	Aliases: []string{"get", "view"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.GetScheduleHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		scheduleID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid schedule ID: %w", err)
		}

		query := queries.GetScheduleQuery{
			ScheduleID: scheduleID,
			UserID:     app.CurrentUserID,
		}

		ctx := cmd.Context()
		schedule, err := app.GetScheduleHandler.Handle(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to get schedule: %w", err)
		}

		fmt.Printf("%s\n", schedule.Title)
		fmt.Println(strings.Repeat("=", 60))
		fmt.Printf("  Subject: %s\n", schedule.Subject)
		fmt.Printf("  Status:  %s\n", schedule.Status)
		fmt.Printf("  Due:     %s\n", schedule.Deadline.Format("2006-01-02"))
		fmt.Printf("  Plan:    %d topics over %d days (%.1f hours)\n",
			schedule.TotalTopics, schedule.TotalDays, schedule.TotalHours)
		fmt.Printf("  Source:  %s\n", schedule.Source)

		if schedule.AISummary != "" {
			fmt.Printf("\n  %s\n", schedule.AISummary)
		}

		fmt.Println("\n  SESSIONS")
		fmt.Println(strings.Repeat("-", 60))

		for _, session := range schedule.Sessions {
			fmt.Printf("  Day %d - %s %s (%.1fh, %s focus)\n",
				session.Day, session.DayName, session.Date, session.DurationHours, session.FocusLevel)
			for _, topic := range session.Topics {
				fmt.Printf("    - %s\n", topic)
			}
			if session.Tips != "" {
				fmt.Printf("    tip: %s\n", session.Tips)
			}
			fmt.Println()
		}

		if len(schedule.AITips) > 0 {
			fmt.Println("  TIPS")
			fmt.Println(strings.Repeat("-", 60))
			for _, tip := range schedule.AITips {
				fmt.Printf("  - %s\n", tip)
			}
		}

		return nil
	},
}
