// Package commands contains the write-side handlers for study schedules.
// Every handler runs inside a unit of work and stages domain events in the
// outbox alongside the aggregate change.
package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	sharedApplication "github.com/edusense/edusense/internal/shared/application"
	"github.com/edusense/edusense/internal/shared/infrastructure/outbox"
	"github.com/edusense/edusense/internal/studyplan/application/services"
	"github.com/edusense/edusense/internal/studyplan/domain"
)

// GenerateScheduleCommand contains the data needed to generate a schedule.
// MaterialText is already-extracted course text; an empty value still
// yields a generic plan over the subject.
type GenerateScheduleCommand struct {
	UserID       uuid.UUID
	TaskID       *uuid.UUID
	Title        string
	Subject      string
	MaterialText string
	Deadline     time.Time
}

// GenerateScheduleResult reports the stored schedule, how it was drafted,
// and whether the material fits the time left.
type GenerateScheduleResult struct {
	ScheduleID  uuid.UUID
	Source      domain.Source
	Feasibility services.Feasibility
}

// GenerateScheduleHandler handles the GenerateScheduleCommand. When an AI
// drafter is configured it gets the first attempt; any drafting failure
// falls back to the deterministic planner, so generation itself never
// fails on the AI path.
type GenerateScheduleHandler struct {
	scheduleRepo domain.Repository
	outboxRepo   outbox.Repository
	uow          sharedApplication.UnitOfWork
	drafter      services.Drafter
	logger       *slog.Logger
	now          func() time.Time
}

// NewGenerateScheduleHandler creates a new GenerateScheduleHandler. The
// drafter may be nil, in which case every schedule is planned by rules.
func NewGenerateScheduleHandler(
	scheduleRepo domain.Repository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	drafter services.Drafter,
	logger *slog.Logger,
) *GenerateScheduleHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GenerateScheduleHandler{
		scheduleRepo: scheduleRepo,
		outboxRepo:   outboxRepo,
		uow:          uow,
		drafter:      drafter,
		logger:       logger,
		now:          time.Now,
	}
}

// Handle executes the GenerateScheduleCommand.
func (h *GenerateScheduleHandler) Handle(ctx context.Context, cmd GenerateScheduleCommand) (*GenerateScheduleResult, error) {
	subject := strings.TrimSpace(cmd.Subject)
	if subject == "" {
		return nil, domain.ErrEmptySubject
	}
	if cmd.Deadline.IsZero() {
		return nil, domain.ErrMissingDeadline
	}

	title := strings.TrimSpace(cmd.Title)
	if title == "" {
		title = subject + " Study Plan"
	}

	now := h.now().UTC()
	concepts := services.ExtractConcepts(cmd.MaterialText)
	feasibility := services.CheckFeasibility(concepts, now, cmd.Deadline)

	draft, err := h.draft(ctx, cmd, title, subject, concepts, now)
	if err != nil {
		return nil, err
	}

	var result *GenerateScheduleResult

	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		schedule, err := domain.NewStudySchedule(cmd.UserID, cmd.TaskID, title, subject, cmd.Deadline, draft)
		if err != nil {
			return err
		}

		if err := h.scheduleRepo.Save(txCtx, schedule); err != nil {
			return err
		}

		events := schedule.DomainEvents()
		sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(cmd.UserID))

		msgs := make([]*outbox.Message, 0, len(events))
		for _, event := range events {
			msg, err := outbox.NewMessage(event)
			if err != nil {
				return err
			}
			msgs = append(msgs, msg)
		}
		if err := h.outboxRepo.SaveBatch(txCtx, msgs); err != nil {
			return err
		}

		result = &GenerateScheduleResult{
			ScheduleID:  schedule.ID(),
			Source:      schedule.Source(),
			Feasibility: feasibility,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (h *GenerateScheduleHandler) draft(ctx context.Context, cmd GenerateScheduleCommand, title, subject string, concepts []domain.Concept, now time.Time) (domain.Draft, error) {
	if h.drafter != nil {
		start, end := services.PlanWindow(now, cmd.Deadline)

		drafted, err := h.drafter.DraftSchedule(ctx, services.DraftRequest{
			Title:        title,
			Subject:      subject,
			MaterialText: cmd.MaterialText,
			Concepts:     concepts,
			WindowStart:  start,
			WindowEnd:    end,
		})
		if err == nil {
			return *drafted, nil
		}

		h.logger.WarnContext(ctx, "ai drafting failed, falling back to rule-based planner",
			"subject", subject, "error", err)
	}

	return services.RuleBasedDraft(title, subject, concepts, now, cmd.Deadline)
}
