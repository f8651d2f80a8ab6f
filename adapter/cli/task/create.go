package task

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/edusense/edusense/adapter/cli"
	"github.com/edusense/edusense/internal/coursework/application/commands"
)

var (
	subject     string
	description string
	deadline    string
	difficulty  string
)

var createCmd = &cobra.Command{
	Use:   "create [title]",
	Short: "Create a new task",
	Long: `Create a new coursework task with a title, subject, and deadline.

Examples:
  edusense task create "Linear algebra problem set" -s Mathematics --due 2026-09-12
  edusense task create "Lab report" -s Chemistry --due 2026-09-05 -d hard
  edusense task create "Read chapter 4" -s History --due 2026-09-20 -d easy`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CreateTaskHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		title := args[0]

		parsed, err := time.Parse("2006-01-02", deadline)
		if err != nil {
			return fmt.Errorf("invalid deadline format (use YYYY-MM-DD): %w", err)
		}
		// Deadlines land at end of day so "due today" stays valid all day.
		due := time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 23, 59, 59, 0, time.Local)

		createCmd := commands.CreateTaskCommand{
			UserID:      app.CurrentUserID,
			Title:       title,
			Subject:     subject,
			Description: description,
			Deadline:    due,
			Difficulty:  difficulty,
		}

		ctx := cmd.Context()
		result, err := app.CreateTaskHandler.Handle(ctx, createCmd)
		if err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}

		fmt.Printf("Task created: %s\n", result.TaskID)
		fmt.Printf("  title:      %s\n", title)
		fmt.Printf("  subject:    %s\n", subject)
		fmt.Printf("  due:        %s\n", due.Format("2006-01-02"))
		fmt.Printf("  difficulty: %s\n", difficulty)

		return nil
	},
}

func init() {
	createCmd.Flags().StringVarP(&subject, "subject", "s", "", "course subject (required)")
	createCmd.Flags().StringVar(&description, "description", "", "task description")
	createCmd.Flags().StringVar(&deadline, "due", "", "deadline (YYYY-MM-DD, required)")
	createCmd.Flags().StringVarP(&difficulty, "difficulty", "d", "medium", "difficulty (easy, medium, hard)")
	createCmd.MarkFlagRequired("subject")
	createCmd.MarkFlagRequired("due")
}
