package queries

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/edusense/edusense/internal/coursework/application/services"
	"github.com/edusense/edusense/internal/coursework/domain/task"
	"github.com/edusense/edusense/internal/shared/infrastructure/cache"
)

// GetPriorityReportQuery contains the parameters for scoring one task.
type GetPriorityReportQuery struct {
	TaskID uuid.UUID
	UserID uuid.UUID
}

// GetPriorityReportHandler computes the explainable priority report for a
// task. Reports are cached briefly and the final score is written back to
// the task row, both best effort: a failing cache or write never fails the
// request.
type GetPriorityReportHandler struct {
	taskRepo    task.Repository
	engine      *services.PriorityEngine
	reportCache cache.ReportCache
	cacheTTL    time.Duration
	logger      *slog.Logger
	now         func() time.Time
}

// NewGetPriorityReportHandler creates a new GetPriorityReportHandler.
// The cache may be nil, in which case every report is computed fresh.
func NewGetPriorityReportHandler(
	taskRepo task.Repository,
	engine *services.PriorityEngine,
	reportCache cache.ReportCache,
	cacheTTL time.Duration,
	logger *slog.Logger,
) *GetPriorityReportHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GetPriorityReportHandler{
		taskRepo:    taskRepo,
		engine:      engine,
		reportCache: reportCache,
		cacheTTL:    cacheTTL,
		logger:      logger,
		now:         time.Now,
	}
}

// Handle executes the GetPriorityReportQuery.
func (h *GetPriorityReportHandler) Handle(ctx context.Context, query GetPriorityReportQuery) (*PriorityReportDTO, error) {
	now := h.now().UTC()

	t, err := h.taskRepo.FindByID(ctx, query.TaskID)
	if err != nil {
		return nil, err
	}
	if t.UserID() != query.UserID {
		return nil, task.ErrNotFound
	}

	// The key carries the task version and a one-minute time bucket, so an
	// edit or the passage of time moves to a fresh key without explicit
	// invalidation. Stale entries fall out via TTL.
	key := priorityCacheKey(query.UserID, t.ID(), t.Version(), now)

	if cached := h.fromCache(ctx, key); cached != nil {
		return cached, nil
	}

	report := h.engine.Score(services.PrioritySignals{
		Deadline:   t.Deadline(),
		Difficulty: t.Difficulty(),
		Status:     t.Status(),
	}, now)

	dto := &PriorityReportDTO{
		TaskID:         t.ID(),
		Title:          t.Title(),
		PriorityReport: report,
	}

	if err := h.taskRepo.UpdatePriorityScore(ctx, t.ID(), report.FinalScore); err != nil {
		h.logger.WarnContext(ctx, "failed to persist priority score", "task_id", t.ID(), "error", err)
	}

	h.toCache(ctx, key, dto)

	return dto, nil
}

func (h *GetPriorityReportHandler) fromCache(ctx context.Context, key string) *PriorityReportDTO {
	if h.reportCache == nil {
		return nil
	}

	data, err := h.reportCache.Get(ctx, key)
	if err != nil {
		if err != cache.ErrCacheMiss {
			h.logger.DebugContext(ctx, "priority report cache read failed", "error", err)
		}
		return nil
	}

	var dto PriorityReportDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		// Corrupt entry; drop it and recompute.
		_ = h.reportCache.Delete(ctx, key)
		return nil
	}
	return &dto
}

func (h *GetPriorityReportHandler) toCache(ctx context.Context, key string, dto *PriorityReportDTO) {
	if h.reportCache == nil {
		return
	}

	data, err := json.Marshal(dto)
	if err != nil {
		return
	}
	if err := h.reportCache.Set(ctx, key, data, h.cacheTTL); err != nil {
		h.logger.DebugContext(ctx, "priority report cache write failed", "error", err)
	}
}
