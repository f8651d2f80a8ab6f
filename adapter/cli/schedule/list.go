package schedule

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/edusense/edusense/adapter/cli"
	"github.com/edusense/edusense/internal/studyplan/application/queries"
)

var listStatus string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List study schedules",
	Long: `List study schedules, the newest first.

Filter Options:
  --status   Filter by status (active, completed)

Examples:
  edusense schedule list
  edusense schedule list --status active`,
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ListSchedulesHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		query := queries.ListSchedulesQuery{
			UserID: app.CurrentUserID,
			Status: listStatus,
		}

		ctx := cmd.Context()
		schedules, err := app.ListSchedulesHandler.Handle(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to list schedules: %w", err)
		}

		if len(schedules) == 0 {
			fmt.Println("No schedules found.")
			return nil
		}

		fmt.Printf("Schedules (%d):\n", len(schedules))
		fmt.Println(strings.Repeat("-", 60))

		for _, s := range schedules {
			statusIcon := "[ ]"
			if s.Status == "completed" {
				statusIcon = "[x]"
			}

			fmt.Printf("%s %s (%s)\n", statusIcon, s.Title, s.Source)
			fmt.Printf("   ID: %s\n", s.ID.String()[:8])
			fmt.Printf("   Subject: %s\n", s.Subject)
			fmt.Printf("   Due: %s\n", s.Deadline.Format("2006-01-02"))
			fmt.Printf("   Plan: %d topics over %d days (%.1f hours)\n", s.TotalTopics, s.TotalDays, s.TotalHours)
			fmt.Println()
		}

		return nil
	},
}

func init() {
	listCmd.Flags().StringVarP(&listStatus, "status", "s", "", "filter by status (active, completed)")
}
