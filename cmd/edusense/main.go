package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/edusense/edusense/adapter/cli"
	"github.com/edusense/edusense/adapter/cli/schedule"
	"github.com/edusense/edusense/adapter/cli/task"
	"github.com/edusense/edusense/internal/app"
	"github.com/edusense/edusense/pkg/config"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		// In development without .env, use defaults
		logger.Warn("failed to load config, using development mode", "error", err)
		cfg = &config.Config{AppEnv: "development"}
	}

	if cfg.IsDevelopment() {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	cli.SetLogger(logger)

	// Try to initialize the full container
	var cliApp *cli.App
	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		if cfg.IsDevelopment() {
			logger.Warn("failed to initialize container, running in limited mode", "error", err)
			// In development, allow CLI to run without database
			cliApp = nil
		} else {
			logger.Error("failed to initialize container", "error", err)
			os.Exit(1)
		}
	} else {
		defer container.Close()

		// Start outbox processor in background (optional in CLI)
		if cfg.OutboxProcessorEnabled {
			go container.OutboxProcessor.Start(ctx)
		} else {
			logger.Info("outbox processor disabled in CLI")
		}

		cliApp = cli.NewApp(
			container.CreateTaskHandler,
			container.UpdateTaskHandler,
			container.StartTaskHandler,
			container.CompleteTaskHandler,
			container.DeleteTaskHandler,
			container.GetTaskHandler,
			container.ListTasksHandler,
			container.PriorityReportHandler,
			container.WorkloadReportHandler,
			container.GenerateScheduleHandler,
			container.CompleteScheduleHandler,
			container.DeleteScheduleHandler,
			container.GetScheduleHandler,
			container.ListSchedulesHandler,
		)

		// Terminal commands act as the local account; API clients
		// authenticate per request instead.
		userID, err := container.EnsureLocalUser(ctx)
		if err != nil {
			logger.Error("failed to resolve local user", "error", err)
			os.Exit(1)
		}
		cliApp.SetCurrentUserID(userID)
	}

	cli.SetApp(cliApp)

	// Register commands
	cli.AddCommand(task.Cmd)
	cli.AddCommand(schedule.Cmd)

	cli.Execute()
}
