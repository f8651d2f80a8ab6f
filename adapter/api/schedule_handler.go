package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/edusense/edusense/internal/studyplan/application/commands"
	"github.com/edusense/edusense/internal/studyplan/application/queries"
	"github.com/edusense/edusense/internal/studyplan/application/services"
)

// ScheduleHandler handles study schedule routes.
type ScheduleHandler struct {
	generateSchedule *commands.GenerateScheduleHandler
	completeSchedule *commands.CompleteScheduleHandler
	deleteSchedule   *commands.DeleteScheduleHandler
	getSchedule      *queries.GetScheduleHandler
	listSchedules    *queries.ListSchedulesHandler
	logger           *slog.Logger
}

// ScheduleHandlerConfig holds dependencies for the schedule handler.
type ScheduleHandlerConfig struct {
	GenerateSchedule *commands.GenerateScheduleHandler
	CompleteSchedule *commands.CompleteScheduleHandler
	DeleteSchedule   *commands.DeleteScheduleHandler
	GetSchedule      *queries.GetScheduleHandler
	ListSchedules    *queries.ListSchedulesHandler
	Logger           *slog.Logger
}

// NewScheduleHandler creates a new schedule handler.
func NewScheduleHandler(cfg ScheduleHandlerConfig) *ScheduleHandler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &ScheduleHandler{
		generateSchedule: cfg.GenerateSchedule,
		completeSchedule: cfg.CompleteSchedule,
		deleteSchedule:   cfg.DeleteSchedule,
		getSchedule:      cfg.GetSchedule,
		listSchedules:    cfg.ListSchedules,
		logger:           cfg.Logger,
	}
}

// generateScheduleRequest carries the material to plan from. MaterialText
// is the already-extracted course text; it may be empty for a generic
// plan over the subject.
type generateScheduleRequest struct {
	TaskID       *uuid.UUID `json:"task_id"`
	Title        string     `json:"title"`
	Subject      string     `json:"subject"`
	MaterialText string     `json:"material_text"`
	Deadline     time.Time  `json:"deadline"`
}

// generateScheduleResponse is the stored schedule plus the feasibility
// assessment computed during generation.
type generateScheduleResponse struct {
	Schedule    *queries.StudyScheduleDTO `json:"schedule"`
	Feasibility services.Feasibility      `json:"feasibility"`
}

// Generate handles POST /api/study-schedules/generate
func (h *ScheduleHandler) Generate(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req generateScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.generateSchedule.Handle(r.Context(), commands.GenerateScheduleCommand{
		UserID:       userID,
		TaskID:       req.TaskID,
		Title:        req.Title,
		Subject:      req.Subject,
		MaterialText: req.MaterialText,
		Deadline:     req.Deadline,
	})
	if err != nil {
		respondError(w, r, h.logger, err, "Failed to generate study schedule")
		return
	}

	dto, err := h.getSchedule.Handle(r.Context(), queries.GetScheduleQuery{
		ScheduleID: result.ScheduleID,
		UserID:     userID,
	})
	if err != nil {
		respondError(w, r, h.logger, err, "Failed to load study schedule")
		return
	}

	writeJSON(w, http.StatusCreated, generateScheduleResponse{
		Schedule:    dto,
		Feasibility: result.Feasibility,
	})
}

// List handles GET /api/study-schedules
func (h *ScheduleHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	schedules, err := h.listSchedules.Handle(r.Context(), queries.ListSchedulesQuery{
		UserID: userID,
		Status: r.URL.Query().Get("status"),
	})
	if err != nil {
		respondError(w, r, h.logger, err, "Failed to list study schedules")
		return
	}

	writeJSON(w, http.StatusOK, schedules)
}

// Get handles GET /api/study-schedules/{id}
func (h *ScheduleHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	scheduleID, ok := pathID(w, r)
	if !ok {
		return
	}

	h.respondWithSchedule(w, r, scheduleID, userID, http.StatusOK)
}

// Complete handles POST /api/study-schedules/{id}/complete
func (h *ScheduleHandler) Complete(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	scheduleID, ok := pathID(w, r)
	if !ok {
		return
	}

	err := h.completeSchedule.Handle(r.Context(), commands.CompleteScheduleCommand{
		ScheduleID: scheduleID,
		UserID:     userID,
	})
	if err != nil {
		respondError(w, r, h.logger, err, "Failed to complete study schedule")
		return
	}

	h.respondWithSchedule(w, r, scheduleID, userID, http.StatusOK)
}

// Delete handles DELETE /api/study-schedules/{id}
func (h *ScheduleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	scheduleID, ok := pathID(w, r)
	if !ok {
		return
	}

	err := h.deleteSchedule.Handle(r.Context(), commands.DeleteScheduleCommand{
		ScheduleID: scheduleID,
		UserID:     userID,
	})
	if err != nil {
		respondError(w, r, h.logger, err, "Failed to delete study schedule")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Schedule deleted successfully"})
}

func (h *ScheduleHandler) respondWithSchedule(w http.ResponseWriter, r *http.Request, scheduleID, userID uuid.UUID, status int) {
	dto, err := h.getSchedule.Handle(r.Context(), queries.GetScheduleQuery{
		ScheduleID: scheduleID,
		UserID:     userID,
	})
	if err != nil {
		respondError(w, r, h.logger, err, "Failed to load study schedule")
		return
	}
	writeJSON(w, status, dto)
}
