package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/edusense/edusense/adapter/api"
	internalApp "github.com/edusense/edusense/internal/app"
	"github.com/edusense/edusense/pkg/config"
	"github.com/edusense/edusense/pkg/observability"
)

var serveAddr string

// serveCmd runs the HTTP API. It builds its own container so the command
// works without the interactive App being wired.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start the EduSense HTTP API server.

The server exposes auth, task, report, and schedule endpoints and keeps
running until interrupted. Configuration comes from the environment; see
.env.example for the available settings.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if serveAddr != "" {
			cfg.HTTPAddr = serveAddr
		}

		srvLogger := observability.NewLogger(observability.LogConfig{
			Level:          observability.LogLevel(cfg.LogLevel),
			Format:         logFormatFor(cfg),
			ServiceName:    "edusense-api",
			ServiceVersion: Version,
		})

		container, err := internalApp.NewContainer(ctx, cfg, srvLogger)
		if err != nil {
			return err
		}
		defer container.Close()

		if cfg.OutboxProcessorEnabled {
			if err := container.OutboxProcessor.Start(ctx); err != nil {
				return fmt.Errorf("failed to start outbox processor: %w", err)
			}
		}

		serverCfg := api.DefaultServerConfig()
		serverCfg.Addr = cfg.HTTPAddr
		if len(cfg.CORSOrigins) > 0 {
			serverCfg.AllowedOrigins = cfg.CORSOrigins
		}

		server := api.NewServer(serverCfg, api.Handlers{
			Auth: api.NewAuthHandler(api.AuthHandlerConfig{
				Auth:         container.AuthService,
				SecureCookie: cfg.IsProduction(),
				Logger:       srvLogger,
			}),
			Tasks: api.NewTaskHandler(api.TaskHandlerConfig{
				CreateTask:     container.CreateTaskHandler,
				UpdateTask:     container.UpdateTaskHandler,
				StartTask:      container.StartTaskHandler,
				CompleteTask:   container.CompleteTaskHandler,
				DeleteTask:     container.DeleteTaskHandler,
				GetTask:        container.GetTaskHandler,
				ListTasks:      container.ListTasksHandler,
				PriorityReport: container.PriorityReportHandler,
				WorkloadReport: container.WorkloadReportHandler,
				Logger:         srvLogger,
			}),
			Schedules: api.NewScheduleHandler(api.ScheduleHandlerConfig{
				GenerateSchedule: container.GenerateScheduleHandler,
				CompleteSchedule: container.CompleteScheduleHandler,
				DeleteSchedule:   container.DeleteScheduleHandler,
				GetSchedule:      container.GetScheduleHandler,
				ListSchedules:    container.ListSchedulesHandler,
				Logger:           srvLogger,
			}),
			Tokens: container.TokenManager,
		}, container.Health, srvLogger)

		errCh := make(chan error, 1)
		go func() {
			if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	},
}

func logFormatFor(cfg *config.Config) observability.LogFormat {
	if cfg.IsProduction() {
		return observability.LogFormatJSON
	}
	return observability.LogFormatText
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides HTTP_ADDR)")
	rootCmd.AddCommand(serveCmd)
}
