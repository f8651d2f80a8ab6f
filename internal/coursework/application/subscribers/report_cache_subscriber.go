package subscribers

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/edusense/edusense/internal/coursework/application/queries"
	"github.com/edusense/edusense/internal/coursework/domain/task"
	"github.com/edusense/edusense/internal/shared/infrastructure/cache"
	"github.com/edusense/edusense/internal/shared/infrastructure/eventbus"
)

// ReportCacheSubscriber drops a user's cached priority and workload
// reports whenever one of their tasks changes, so the next read computes
// fresh scores instead of serving the previous cache bucket.
type ReportCacheSubscriber struct {
	reportCache cache.ReportCache
	logger      *slog.Logger
}

// NewReportCacheSubscriber creates a new report cache subscriber.
func NewReportCacheSubscriber(reportCache cache.ReportCache, logger *slog.Logger) *ReportCacheSubscriber {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportCacheSubscriber{
		reportCache: reportCache,
		logger:      logger,
	}
}

// EventTypes returns the task events that invalidate cached reports.
func (s *ReportCacheSubscriber) EventTypes() []string {
	return []string{
		task.RoutingKeyCreated,
		task.RoutingKeyStarted,
		task.RoutingKeyUpdated,
		task.RoutingKeyCompleted,
		task.RoutingKeyDeleted,
	}
}

// Handle deletes every cached report belonging to the event's user. All
// task events invalidate the same way: any change can move priority
// scores and overload risk. Failures are logged, not returned; cache
// entries carry a time bucket and age out on their own.
func (s *ReportCacheSubscriber) Handle(ctx context.Context, event *eventbus.ConsumedEvent) error {
	userID := event.Metadata.UserID
	if userID == uuid.Nil {
		s.logger.DebugContext(ctx, "task event without user metadata, reports expire on their own",
			"routing_key", event.RoutingKey,
			"event_id", event.EventID,
		)
		return nil
	}

	prefix := queries.ReportCachePrefix(userID)
	if err := s.reportCache.DeleteByPrefix(ctx, prefix); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate report cache",
			"routing_key", event.RoutingKey,
			"user_id", userID,
			"error", err,
		)
		return nil
	}

	s.logger.DebugContext(ctx, "invalidated report cache",
		"routing_key", event.RoutingKey,
		"user_id", userID,
	)
	return nil
}
