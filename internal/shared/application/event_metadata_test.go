package application

import (
	"testing"

	"github.com/edusense/edusense/internal/shared/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEventMetadata(t *testing.T) {
	t.Run("creates metadata with user ID", func(t *testing.T) {
		userID := uuid.New()

		metadata := NewEventMetadata(userID)

		assert.Equal(t, userID, metadata.UserID)
		assert.NotEqual(t, uuid.Nil, metadata.CorrelationID)
		assert.NotEqual(t, uuid.Nil, metadata.CausationID)
	})

	t.Run("generates unique correlation IDs per command", func(t *testing.T) {
		userID := uuid.New()

		metadata1 := NewEventMetadata(userID)
		metadata2 := NewEventMetadata(userID)

		assert.NotEqual(t, metadata1.CorrelationID, metadata2.CorrelationID)
		assert.NotEqual(t, metadata1.CausationID, metadata2.CausationID)
	})
}

type stampedEvent struct {
	domain.BaseEvent
}

func TestApplyEventMetadata(t *testing.T) {
	t.Run("stamps metadata on events with setter", func(t *testing.T) {
		userID := uuid.New()

		event := &stampedEvent{
			BaseEvent: domain.NewBaseEvent(uuid.New(), "test", "test.created"),
		}

		metadata := NewEventMetadata(userID)

		ApplyEventMetadata([]domain.DomainEvent{event}, metadata)

		assert.Equal(t, userID, event.Metadata().UserID)
		assert.Equal(t, metadata.CorrelationID, event.Metadata().CorrelationID)
		assert.Equal(t, metadata.CausationID, event.Metadata().CausationID)
	})

	t.Run("stamps every event in the batch", func(t *testing.T) {
		userID := uuid.New()

		event1 := &stampedEvent{
			BaseEvent: domain.NewBaseEvent(uuid.New(), "test", "test.first"),
		}
		event2 := &stampedEvent{
			BaseEvent: domain.NewBaseEvent(uuid.New(), "test", "test.second"),
		}

		metadata := NewEventMetadata(userID)

		ApplyEventMetadata([]domain.DomainEvent{event1, event2}, metadata)

		assert.Equal(t, metadata.CorrelationID, event1.Metadata().CorrelationID)
		assert.Equal(t, metadata.CorrelationID, event2.Metadata().CorrelationID)
	})

	t.Run("handles empty and nil event lists", func(t *testing.T) {
		metadata := NewEventMetadata(uuid.New())

		require.NotPanics(t, func() {
			ApplyEventMetadata([]domain.DomainEvent{}, metadata)
		})
		require.NotPanics(t, func() {
			ApplyEventMetadata(nil, metadata)
		})
	})
}
