package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/edusense/edusense/internal/coursework/application/queries"
)

var workloadCmd = &cobra.Command{
	Use:   "workload",
	Short: "Show the overload risk report",
	Long: `Analyze all active tasks and report the risk of overload.

The report scores task density, difficulty clustering, weekly load, and
deadline spacing, and suggests what to do about the biggest problem.

Examples:
  edusense workload`,
	Aliases: []string{"risk"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.WorkloadReportHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		ctx := cmd.Context()
		report, err := app.WorkloadReportHandler.Handle(ctx, queries.GetWorkloadReportQuery{
			UserID: app.CurrentUserID,
		})
		if err != nil {
			return fmt.Errorf("failed to analyze workload: %w", err)
		}

		fmt.Printf("\n  Workload Report\n")
		fmt.Println(strings.Repeat("=", 60))
		fmt.Printf("  Risk:         %s (%.1f/100)\n", strings.ToUpper(report.RiskLevel), report.RiskScore)
		fmt.Printf("  Active tasks: %d\n", report.ActiveTasks)

		if len(report.Warnings) > 0 {
			fmt.Println("\n  WARNINGS")
			fmt.Println(strings.Repeat("-", 60))
			for _, w := range report.Warnings {
				fmt.Printf("  [%s] %s\n", w.Severity, w.Message)
				for _, title := range w.Tasks {
					fmt.Printf("      - %s\n", title)
				}
			}
		}

		if report.Suggestion != "" {
			fmt.Printf("\n  Suggestion: %s\n", report.Suggestion)
		}
		fmt.Println()

		return nil
	},
}

func init() {
	rootCmd.AddCommand(workloadCmd)
}
