package outbox

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/edusense/edusense/internal/shared/infrastructure/database"
)

// sqliteTimeLayout is fixed width so stored timestamps compare correctly
// as strings in WHERE clauses and ORDER BY.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteRepository stores outbox messages in SQLite. Timestamps are stored
// as RFC 3339 text in UTC.
type SQLiteRepository struct {
	conn database.Connection
}

// NewSQLiteRepository creates a SQLite outbox repository.
func NewSQLiteRepository(conn database.Connection) *SQLiteRepository {
	return &SQLiteRepository{conn: conn}
}

const sqliteInsertMessage = `
	INSERT INTO outbox_messages (
		event_id, aggregate_type, aggregate_id, event_type, routing_key,
		payload, metadata, created_at, next_retry_at, dead_lettered_at, dead_letter_reason
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const sqliteSelectMessage = `
	SELECT id, event_id, aggregate_type, aggregate_id, event_type, routing_key,
	       payload, metadata, created_at, published_at, next_retry_at, retry_count,
	       last_error, dead_lettered_at, dead_letter_reason
	FROM outbox_messages
`

// Save stores a single message and fills in its assigned ID.
func (r *SQLiteRepository) Save(ctx context.Context, msg *Message) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	result, err := exec.Exec(ctx, sqliteInsertMessage,
		msg.EventID.String(),
		msg.AggregateType,
		msg.AggregateID.String(),
		msg.EventType,
		msg.RoutingKey,
		string(msg.Payload),
		nullableJSON(msg.Metadata),
		sqliteTime(msg.CreatedAt),
		sqliteTimePtr(msg.NextRetryAt),
		sqliteTimePtr(msg.DeadLetteredAt),
		msg.DeadLetterReason,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	msg.ID = id
	return nil
}

// SaveBatch stores several messages atomically. It joins the transaction in
// the context when one exists, otherwise it opens its own.
func (r *SQLiteRepository) SaveBatch(ctx context.Context, msgs []*Message) error {
	if len(msgs) == 0 {
		return nil
	}

	if _, ok := database.TxInfoFromContext(ctx); ok {
		for _, msg := range msgs {
			if err := r.Save(ctx, msg); err != nil {
				return err
			}
		}
		return nil
	}

	tx, err := r.conn.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	txCtx := database.WithTx(ctx, tx, true)
	for _, msg := range msgs {
		if err := r.Save(txCtx, msg); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// GetUnpublished returns messages due for publishing, oldest first.
func (r *SQLiteRepository) GetUnpublished(ctx context.Context, limit int) ([]*Message, error) {
	query := sqliteSelectMessage + `
	WHERE published_at IS NULL
	  AND dead_lettered_at IS NULL
	  AND (next_retry_at IS NULL OR next_retry_at <= ?)
	ORDER BY created_at
	LIMIT ?`

	rows, err := r.conn.Query(ctx, query, sqliteTime(time.Now()), limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return scanSQLiteMessages(rows)
}

// MarkPublished records a successful publish.
func (r *SQLiteRepository) MarkPublished(ctx context.Context, id int64) error {
	query := `UPDATE outbox_messages SET published_at = ?, dead_lettered_at = NULL WHERE id = ?`
	_, err := r.conn.Exec(ctx, query, sqliteTime(time.Now()), id)
	return err
}

// MarkFailed records a failed attempt and schedules the next retry.
func (r *SQLiteRepository) MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	query := `
		UPDATE outbox_messages
		SET retry_count = retry_count + 1,
		    last_error = ?,
		    next_retry_at = ?
		WHERE id = ?`
	_, err := r.conn.Exec(ctx, query, errMsg, sqliteTime(nextRetryAt), id)
	return err
}

// MarkDead parks a message that exhausted its retries.
func (r *SQLiteRepository) MarkDead(ctx context.Context, id int64, reason string) error {
	query := `
		UPDATE outbox_messages
		SET dead_lettered_at = ?,
		    dead_letter_reason = ?
		WHERE id = ?`
	_, err := r.conn.Exec(ctx, query, sqliteTime(time.Now()), reason, id)
	return err
}

// GetFailed returns messages with failed attempts still eligible for retry.
func (r *SQLiteRepository) GetFailed(ctx context.Context, maxRetries, limit int) ([]*Message, error) {
	query := sqliteSelectMessage + `
	WHERE published_at IS NULL
	  AND dead_lettered_at IS NULL
	  AND retry_count > 0
	  AND retry_count < ?
	  AND (next_retry_at IS NULL OR next_retry_at <= ?)
	ORDER BY created_at
	LIMIT ?`

	rows, err := r.conn.Query(ctx, query, maxRetries, sqliteTime(time.Now()), limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return scanSQLiteMessages(rows)
}

// DeleteOld removes published messages past the retention window.
func (r *SQLiteRepository) DeleteOld(ctx context.Context, olderThanDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -olderThanDays)
	query := `
		DELETE FROM outbox_messages
		WHERE published_at IS NOT NULL
		  AND published_at < ?`
	result, err := r.conn.Exec(ctx, query, sqliteTime(cutoff))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func scanSQLiteMessages(rows database.Rows) ([]*Message, error) {
	var messages []*Message

	for rows.Next() {
		var (
			msg       Message
			payload   string
			metadata  sql.NullString
			createdAt string
			published sql.NullString
			nextRetry sql.NullString
			deadAt    sql.NullString
		)
		err := rows.Scan(
			&msg.ID,
			&msg.EventID,
			&msg.AggregateType,
			&msg.AggregateID,
			&msg.EventType,
			&msg.RoutingKey,
			&payload,
			&metadata,
			&createdAt,
			&published,
			&nextRetry,
			&msg.RetryCount,
			&msg.LastError,
			&deadAt,
			&msg.DeadLetterReason,
		)
		if err != nil {
			return nil, err
		}

		msg.Payload = []byte(payload)
		if metadata.Valid {
			msg.Metadata = []byte(metadata.String)
		}

		if msg.CreatedAt, err = parseSQLiteTime(createdAt); err != nil {
			return nil, err
		}
		if msg.PublishedAt, err = parseSQLiteTimePtr(published); err != nil {
			return nil, err
		}
		if msg.NextRetryAt, err = parseSQLiteTimePtr(nextRetry); err != nil {
			return nil, err
		}
		if msg.DeadLetteredAt, err = parseSQLiteTimePtr(deadAt); err != nil {
			return nil, err
		}

		messages = append(messages, &msg)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return messages, nil
}

func sqliteTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

func sqliteTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return sqliteTime(*t)
}

func nullableJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

func parseSQLiteTime(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored timestamp %q: %w", value, err)
	}
	return t, nil
}

func parseSQLiteTimePtr(value sql.NullString) (*time.Time, error) {
	if !value.Valid {
		return nil, nil
	}
	t, err := parseSQLiteTime(value.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
