package schedule

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/edusense/edusense/adapter/cli"
	"github.com/edusense/edusense/internal/shared/infrastructure/security"
	"github.com/edusense/edusense/internal/studyplan/application/commands"
)

var (
	genSubject  string
	genTitle    string
	genDeadline string
	genTaskID   string
	genMaterial string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a study schedule",
	Long: `Generate a day-by-day study plan for a subject.

Pass course material with --material to get topic-aware sessions; without
it the plan covers the subject generically. When an AI planner is
configured it drafts the sessions, otherwise deterministic rules do.

Examples:
  edusense schedule generate -s "Computer Science" --due 2026-09-15
  edusense schedule generate -s Biology --due 2026-09-20 --material notes.md
  edusense schedule generate -s Physics --due 2026-09-10 --task 550e8400-e29b-41d4-a716-446655440000`,
	Aliases: []string{"gen", "plan"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.GenerateScheduleHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		parsed, err := time.Parse("2006-01-02", genDeadline)
		if err != nil {
			return fmt.Errorf("invalid deadline format (use YYYY-MM-DD): %w", err)
		}
		due := time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 23, 59, 59, 0, time.Local)

		genCmd := commands.GenerateScheduleCommand{
			UserID:   app.CurrentUserID,
			Title:    genTitle,
			Subject:  genSubject,
			Deadline: due,
		}

		if genTaskID != "" {
			taskID, err := uuid.Parse(genTaskID)
			if err != nil {
				return fmt.Errorf("invalid task ID: %w", err)
			}
			genCmd.TaskID = &taskID
		}

		if genMaterial != "" {
			material, err := security.SafeReadFile(genMaterial)
			if err != nil {
				return fmt.Errorf("failed to read material file: %w", err)
			}
			genCmd.MaterialText = string(material)
		}

		ctx := cmd.Context()
		result, err := app.GenerateScheduleHandler.Handle(ctx, genCmd)
		if err != nil {
			return fmt.Errorf("failed to generate schedule: %w", err)
		}

		fmt.Printf("Schedule generated: %s\n", result.ScheduleID)
		fmt.Printf("  source: %s\n", result.Source)

		feas := result.Feasibility
		if feas.Feasible {
			fmt.Printf("  feasible: yes (%.0f%% of available time)\n", feas.UtilizationPct)
		} else {
			fmt.Printf("  feasible: NO (%.0f%% of available time)\n", feas.UtilizationPct)
		}
		if feas.Recommendation != "" {
			fmt.Printf("  note: %s\n", feas.Recommendation)
		}

		fmt.Printf("\nRun 'edusense schedule show %s' to see the sessions.\n", result.ScheduleID)
		return nil
	},
}

func init() {
	generateCmd.Flags().StringVarP(&genSubject, "subject", "s", "", "course subject (required)")
	generateCmd.Flags().StringVarP(&genTitle, "title", "t", "", "schedule title (defaults to \"<subject> Study Plan\")")
	generateCmd.Flags().StringVar(&genDeadline, "due", "", "exam or hand-in date (YYYY-MM-DD, required)")
	generateCmd.Flags().StringVar(&genTaskID, "task", "", "link the schedule to a task by ID")
	generateCmd.Flags().StringVarP(&genMaterial, "material", "m", "", "path to a course material file (markdown or plain text)")
	generateCmd.MarkFlagRequired("subject")
	generateCmd.MarkFlagRequired("due")
}
