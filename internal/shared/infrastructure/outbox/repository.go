package outbox

import (
	"context"
	"time"
)

// Repository persists outbox messages. SaveBatch must join the caller's
// transaction when one is carried in the context.
type Repository interface {
	// Save stores a single message and fills in its assigned ID.
	Save(ctx context.Context, msg *Message) error

	// SaveBatch stores several messages atomically.
	SaveBatch(ctx context.Context, msgs []*Message) error

	// GetUnpublished returns messages due for publishing, oldest first.
	// Messages waiting on a retry backoff are excluded.
	GetUnpublished(ctx context.Context, limit int) ([]*Message, error)

	// MarkPublished records a successful publish.
	MarkPublished(ctx context.Context, id int64) error

	// MarkFailed records a failed attempt and schedules the next retry.
	MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error

	// MarkDead parks a message that exhausted its retries.
	MarkDead(ctx context.Context, id int64, reason string) error

	// GetFailed returns messages with at least one failed attempt that are
	// still eligible for retry.
	GetFailed(ctx context.Context, maxRetries, limit int) ([]*Message, error)

	// DeleteOld removes published messages past the retention window and
	// returns how many were deleted.
	DeleteOld(ctx context.Context, olderThanDays int) (int64, error)
}
