package cli

import (
	"github.com/google/uuid"

	taskCommands "github.com/edusense/edusense/internal/coursework/application/commands"
	taskQueries "github.com/edusense/edusense/internal/coursework/application/queries"
	scheduleCommands "github.com/edusense/edusense/internal/studyplan/application/commands"
	scheduleQueries "github.com/edusense/edusense/internal/studyplan/application/queries"
)

// App holds the CLI application dependencies.
type App struct {
	// Task Command Handlers
	CreateTaskHandler   *taskCommands.CreateTaskHandler
	UpdateTaskHandler   *taskCommands.UpdateTaskHandler
	StartTaskHandler    *taskCommands.StartTaskHandler
	CompleteTaskHandler *taskCommands.CompleteTaskHandler
	DeleteTaskHandler   *taskCommands.DeleteTaskHandler

	// Task Query Handlers
	GetTaskHandler        *taskQueries.GetTaskHandler
	ListTasksHandler      *taskQueries.ListTasksHandler
	PriorityReportHandler *taskQueries.GetPriorityReportHandler
	WorkloadReportHandler *taskQueries.GetWorkloadReportHandler

	// Schedule Command Handlers
	GenerateScheduleHandler *scheduleCommands.GenerateScheduleHandler
	CompleteScheduleHandler *scheduleCommands.CompleteScheduleHandler
	DeleteScheduleHandler   *scheduleCommands.DeleteScheduleHandler

	// Schedule Query Handlers
	GetScheduleHandler   *scheduleQueries.GetScheduleHandler
	ListSchedulesHandler *scheduleQueries.ListSchedulesHandler

	// Current user (the local account in CLI mode)
	CurrentUserID uuid.UUID
}

// NewApp creates a new CLI application with the provided handlers.
func NewApp(
	createTaskHandler *taskCommands.CreateTaskHandler,
	updateTaskHandler *taskCommands.UpdateTaskHandler,
	startTaskHandler *taskCommands.StartTaskHandler,
	completeTaskHandler *taskCommands.CompleteTaskHandler,
	deleteTaskHandler *taskCommands.DeleteTaskHandler,
	getTaskHandler *taskQueries.GetTaskHandler,
	listTasksHandler *taskQueries.ListTasksHandler,
	priorityReportHandler *taskQueries.GetPriorityReportHandler,
	workloadReportHandler *taskQueries.GetWorkloadReportHandler,
	generateScheduleHandler *scheduleCommands.GenerateScheduleHandler,
	completeScheduleHandler *scheduleCommands.CompleteScheduleHandler,
	deleteScheduleHandler *scheduleCommands.DeleteScheduleHandler,
	getScheduleHandler *scheduleQueries.GetScheduleHandler,
	listSchedulesHandler *scheduleQueries.ListSchedulesHandler,
) *App {
	return &App{
		CreateTaskHandler:       createTaskHandler,
		UpdateTaskHandler:       updateTaskHandler,
		StartTaskHandler:        startTaskHandler,
		CompleteTaskHandler:     completeTaskHandler,
		DeleteTaskHandler:       deleteTaskHandler,
		GetTaskHandler:          getTaskHandler,
		ListTasksHandler:        listTasksHandler,
		PriorityReportHandler:   priorityReportHandler,
		WorkloadReportHandler:   workloadReportHandler,
		GenerateScheduleHandler: generateScheduleHandler,
		CompleteScheduleHandler: completeScheduleHandler,
		DeleteScheduleHandler:   deleteScheduleHandler,
		GetScheduleHandler:      getScheduleHandler,
		ListSchedulesHandler:    listSchedulesHandler,
	}
}

// SetCurrentUserID updates the current user ID.
func (a *App) SetCurrentUserID(id uuid.UUID) {
	a.CurrentUserID = id
}

// app is the global CLI application instance
var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}
