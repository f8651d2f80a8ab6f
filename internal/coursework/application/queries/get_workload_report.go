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

// GetWorkloadReportQuery contains the parameters for the overload analysis.
type GetWorkloadReportQuery struct {
	UserID uuid.UUID
}

// GetWorkloadReportHandler computes the overload risk report across all of
// a user's tasks. Cached under a one-minute time bucket, best effort.
type GetWorkloadReportHandler struct {
	taskRepo    task.Repository
	analyzer    *services.WorkloadAnalyzer
	reportCache cache.ReportCache
	cacheTTL    time.Duration
	logger      *slog.Logger
	now         func() time.Time
}

// NewGetWorkloadReportHandler creates a new GetWorkloadReportHandler.
// The cache may be nil, in which case every report is computed fresh.
func NewGetWorkloadReportHandler(
	taskRepo task.Repository,
	analyzer *services.WorkloadAnalyzer,
	reportCache cache.ReportCache,
	cacheTTL time.Duration,
	logger *slog.Logger,
) *GetWorkloadReportHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GetWorkloadReportHandler{
		taskRepo:    taskRepo,
		analyzer:    analyzer,
		reportCache: reportCache,
		cacheTTL:    cacheTTL,
		logger:      logger,
		now:         time.Now,
	}
}

// Handle executes the GetWorkloadReportQuery.
func (h *GetWorkloadReportHandler) Handle(ctx context.Context, query GetWorkloadReportQuery) (*services.WorkloadReport, error) {
	now := h.now().UTC()
	key := workloadCacheKey(query.UserID, now)

	if cached := h.fromCache(ctx, key); cached != nil {
		return cached, nil
	}

	tasks, err := h.taskRepo.FindByUserID(ctx, query.UserID)
	if err != nil {
		return nil, err
	}

	report := h.analyzer.Analyze(tasks, now)

	h.toCache(ctx, key, &report)

	return &report, nil
}

func (h *GetWorkloadReportHandler) fromCache(ctx context.Context, key string) *services.WorkloadReport {
	if h.reportCache == nil {
		return nil
	}

	data, err := h.reportCache.Get(ctx, key)
	if err != nil {
		if err != cache.ErrCacheMiss {
			h.logger.DebugContext(ctx, "workload report cache read failed", "error", err)
		}
		return nil
	}

	var report services.WorkloadReport
	if err := json.Unmarshal(data, &report); err != nil {
		_ = h.reportCache.Delete(ctx, key)
		return nil
	}
	return &report
}

func (h *GetWorkloadReportHandler) toCache(ctx context.Context, key string, report *services.WorkloadReport) {
	if h.reportCache == nil {
		return
	}

	data, err := json.Marshal(report)
	if err != nil {
		return
	}
	if err := h.reportCache.Set(ctx, key, data, h.cacheTTL); err != nil {
		h.logger.DebugContext(ctx, "workload report cache write failed", "error", err)
	}
}
