package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/edusense/edusense/internal/coursework/application/commands"
	"github.com/edusense/edusense/internal/coursework/application/queries"
)

// TaskHandler handles coursework task routes, including the priority and
// workload report endpoints.
type TaskHandler struct {
	createTask     *commands.CreateTaskHandler
	updateTask     *commands.UpdateTaskHandler
	startTask      *commands.StartTaskHandler
	completeTask   *commands.CompleteTaskHandler
	deleteTask     *commands.DeleteTaskHandler
	getTask        *queries.GetTaskHandler
	listTasks      *queries.ListTasksHandler
	priorityReport *queries.GetPriorityReportHandler
	workloadReport *queries.GetWorkloadReportHandler
	logger         *slog.Logger
}

// TaskHandlerConfig holds dependencies for the task handler.
type TaskHandlerConfig struct {
	CreateTask     *commands.CreateTaskHandler
	UpdateTask     *commands.UpdateTaskHandler
	StartTask      *commands.StartTaskHandler
	CompleteTask   *commands.CompleteTaskHandler
	DeleteTask     *commands.DeleteTaskHandler
	GetTask        *queries.GetTaskHandler
	ListTasks      *queries.ListTasksHandler
	PriorityReport *queries.GetPriorityReportHandler
	WorkloadReport *queries.GetWorkloadReportHandler
	Logger         *slog.Logger
}

// NewTaskHandler creates a new task handler.
func NewTaskHandler(cfg TaskHandlerConfig) *TaskHandler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &TaskHandler{
		createTask:     cfg.CreateTask,
		updateTask:     cfg.UpdateTask,
		startTask:      cfg.StartTask,
		completeTask:   cfg.CompleteTask,
		deleteTask:     cfg.DeleteTask,
		getTask:        cfg.GetTask,
		listTasks:      cfg.ListTasks,
		priorityReport: cfg.PriorityReport,
		workloadReport: cfg.WorkloadReport,
		logger:         cfg.Logger,
	}
}

type createTaskRequest struct {
	Title       string    `json:"title"`
	Subject     string    `json:"subject"`
	Description string    `json:"description"`
	Deadline    time.Time `json:"deadline"`
	Difficulty  string    `json:"difficulty"`
}

// updateTaskRequest carries a partial update. Absent fields stay
// unchanged.
type updateTaskRequest struct {
	Title       *string    `json:"title"`
	Subject     *string    `json:"subject"`
	Description *string    `json:"description"`
	Deadline    *time.Time `json:"deadline"`
	Difficulty  *string    `json:"difficulty"`
}

// Create handles POST /api/tasks
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.createTask.Handle(r.Context(), commands.CreateTaskCommand{
		UserID:      userID,
		Title:       req.Title,
		Subject:     req.Subject,
		Description: req.Description,
		Deadline:    req.Deadline,
		Difficulty:  req.Difficulty,
	})
	if err != nil {
		respondError(w, r, h.logger, err, "Failed to create task")
		return
	}

	h.respondWithTask(w, r, result.TaskID, userID, http.StatusCreated)
}

// List handles GET /api/tasks
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	tasks, err := h.listTasks.Handle(r.Context(), queries.ListTasksQuery{
		UserID: userID,
		Status: r.URL.Query().Get("status"),
	})
	if err != nil {
		respondError(w, r, h.logger, err, "Failed to list tasks")
		return
	}

	writeJSON(w, http.StatusOK, tasks)
}

// Get handles GET /api/tasks/{id}
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	taskID, ok := pathID(w, r)
	if !ok {
		return
	}

	h.respondWithTask(w, r, taskID, userID, http.StatusOK)
}

// Update handles PUT /api/tasks/{id}
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	taskID, ok := pathID(w, r)
	if !ok {
		return
	}

	var req updateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	err := h.updateTask.Handle(r.Context(), commands.UpdateTaskCommand{
		TaskID:      taskID,
		UserID:      userID,
		Title:       req.Title,
		Subject:     req.Subject,
		Description: req.Description,
		Deadline:    req.Deadline,
		Difficulty:  req.Difficulty,
	})
	if err != nil {
		respondError(w, r, h.logger, err, "Failed to update task")
		return
	}

	h.respondWithTask(w, r, taskID, userID, http.StatusOK)
}

// Delete handles DELETE /api/tasks/{id}
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	taskID, ok := pathID(w, r)
	if !ok {
		return
	}

	err := h.deleteTask.Handle(r.Context(), commands.DeleteTaskCommand{
		TaskID: taskID,
		UserID: userID,
	})
	if err != nil {
		respondError(w, r, h.logger, err, "Failed to delete task")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Task deleted successfully"})
}

// Start handles POST /api/tasks/{id}/start
func (h *TaskHandler) Start(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	taskID, ok := pathID(w, r)
	if !ok {
		return
	}

	err := h.startTask.Handle(r.Context(), commands.StartTaskCommand{
		TaskID: taskID,
		UserID: userID,
	})
	if err != nil {
		respondError(w, r, h.logger, err, "Failed to start task")
		return
	}

	h.respondWithTask(w, r, taskID, userID, http.StatusOK)
}

// Complete handles POST /api/tasks/{id}/complete
func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	taskID, ok := pathID(w, r)
	if !ok {
		return
	}

	err := h.completeTask.Handle(r.Context(), commands.CompleteTaskCommand{
		TaskID: taskID,
		UserID: userID,
	})
	if err != nil {
		respondError(w, r, h.logger, err, "Failed to complete task")
		return
	}

	h.respondWithTask(w, r, taskID, userID, http.StatusOK)
}

// Priority handles GET /api/tasks/{id}/priority
func (h *TaskHandler) Priority(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	taskID, ok := pathID(w, r)
	if !ok {
		return
	}

	report, err := h.priorityReport.Handle(r.Context(), queries.GetPriorityReportQuery{
		TaskID: taskID,
		UserID: userID,
	})
	if err != nil {
		respondError(w, r, h.logger, err, "Failed to compute priority report")
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// Workload handles GET /api/workload
func (h *TaskHandler) Workload(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	report, err := h.workloadReport.Handle(r.Context(), queries.GetWorkloadReportQuery{
		UserID: userID,
	})
	if err != nil {
		respondError(w, r, h.logger, err, "Failed to compute workload report")
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// respondWithTask reads the task back and writes it, so mutations return
// the fresh state the way a plain GET would.
func (h *TaskHandler) respondWithTask(w http.ResponseWriter, r *http.Request, taskID, userID uuid.UUID, status int) {
	dto, err := h.getTask.Handle(r.Context(), queries.GetTaskQuery{
		TaskID: taskID,
		UserID: userID,
	})
	if err != nil {
		respondError(w, r, h.logger, err, "Failed to load task")
		return
	}
	writeJSON(w, status, dto)
}

// pathID parses the {id} path variable. Writes a 400 and returns false
// when it is not a UUID.
func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid ID in path")
		return uuid.Nil, false
	}
	return id, true
}
