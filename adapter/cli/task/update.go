package task

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/edusense/edusense/adapter/cli"
	"github.com/edusense/edusense/internal/coursework/application/commands"
)

var (
	updateTitle       string
	updateSubject     string
	updateDescription string
	updateDue         string
	updateDifficulty  string
)

var updateCmd = &cobra.Command{
	Use:   "update [task-id]",
	Short: "Update a task",
	Long: `Update the properties of an existing task. Only the flags you pass
change; everything else stays as it is.

Examples:
  edusense task update abc123 --title "New title"
  edusense task update abc123 --difficulty hard
  edusense task update abc123 --due 2026-10-01`,
	Aliases: []string{"edit"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.UpdateTaskHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		taskID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid task ID: %w", err)
		}

		updateTaskCmd := commands.UpdateTaskCommand{
			TaskID: taskID,
			UserID: app.CurrentUserID,
		}

		flagsProvided := false

		if cmd.Flags().Changed("title") {
			updateTaskCmd.Title = &updateTitle
			flagsProvided = true
		}

		if cmd.Flags().Changed("subject") {
			updateTaskCmd.Subject = &updateSubject
			flagsProvided = true
		}

		if cmd.Flags().Changed("description") {
			updateTaskCmd.Description = &updateDescription
			flagsProvided = true
		}

		if cmd.Flags().Changed("difficulty") {
			updateTaskCmd.Difficulty = &updateDifficulty
			flagsProvided = true
		}

		if cmd.Flags().Changed("due") {
			parsed, err := time.Parse("2006-01-02", updateDue)
			if err != nil {
				return fmt.Errorf("invalid due date format (use YYYY-MM-DD): %w", err)
			}
			due := time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 23, 59, 59, 0, time.Local)
			updateTaskCmd.Deadline = &due
			flagsProvided = true
		}

		if !flagsProvided {
			return fmt.Errorf("no updates provided - use flags like --title, --subject, --difficulty, or --due")
		}

		ctx := cmd.Context()
		if err := app.UpdateTaskHandler.Handle(ctx, updateTaskCmd); err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}

		fmt.Printf("Task updated: %s\n", taskID)
		return nil
	},
}

func init() {
	updateCmd.Flags().StringVarP(&updateTitle, "title", "t", "", "new title for the task")
	updateCmd.Flags().StringVar(&updateSubject, "subject", "", "new course subject")
	updateCmd.Flags().StringVar(&updateDescription, "description", "", "new task description")
	updateCmd.Flags().StringVar(&updateDue, "due", "", "new deadline (YYYY-MM-DD)")
	updateCmd.Flags().StringVar(&updateDifficulty, "difficulty", "", "new difficulty (easy, medium, hard)")
}
