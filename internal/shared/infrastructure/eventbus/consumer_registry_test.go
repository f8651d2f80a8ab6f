package eventbus_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edusense/edusense/internal/shared/infrastructure/eventbus"
)

type mockConsumer struct {
	eventTypes []string
	events     []*eventbus.ConsumedEvent
	err        error
}

func (m *mockConsumer) EventTypes() []string {
	return m.eventTypes
}

func (m *mockConsumer) Handle(_ context.Context, event *eventbus.ConsumedEvent) error {
	m.events = append(m.events, event)
	return m.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

func TestConsumerRegistry_Register(t *testing.T) {
	registry := eventbus.NewConsumerRegistry(testLogger())

	consumer := &mockConsumer{
		eventTypes: []string{"coursework.task.created", "coursework.task.completed"},
	}

	registry.Register(consumer)

	assert.Len(t, registry.GetConsumers("coursework.task.created"), 1)
	assert.Len(t, registry.GetConsumers("coursework.task.completed"), 1)
	assert.Empty(t, registry.GetConsumers("unknown.event.type"))
}

func TestConsumerRegistry_MultipleConsumers(t *testing.T) {
	registry := eventbus.NewConsumerRegistry(testLogger())

	consumer1 := &mockConsumer{
		eventTypes: []string{"coursework.task.created"},
	}
	consumer2 := &mockConsumer{
		eventTypes: []string{"coursework.task.created", "coursework.task.deleted"},
	}

	registry.Register(consumer1)
	registry.Register(consumer2)

	assert.Len(t, registry.GetConsumers("coursework.task.created"), 2)
	assert.Len(t, registry.GetConsumers("coursework.task.deleted"), 1)
	assert.Equal(t, 3, registry.ConsumerCount())
}

func TestConsumerRegistry_Dispatch(t *testing.T) {
	t.Run("delivers event to subscribed consumer", func(t *testing.T) {
		registry := eventbus.NewConsumerRegistry(testLogger())
		consumer := &mockConsumer{eventTypes: []string{"coursework.task.created"}}
		registry.Register(consumer)

		event := &eventbus.ConsumedEvent{
			EventID:    uuid.New(),
			RoutingKey: "coursework.task.created",
		}

		err := registry.Dispatch(context.Background(), event)

		require.NoError(t, err)
		require.Len(t, consumer.events, 1)
		assert.Equal(t, event.EventID, consumer.events[0].EventID)
	})

	t.Run("ignores events without subscribers", func(t *testing.T) {
		registry := eventbus.NewConsumerRegistry(testLogger())

		err := registry.Dispatch(context.Background(), &eventbus.ConsumedEvent{
			RoutingKey: "identity.user.registered",
		})

		assert.NoError(t, err)
	})

	t.Run("continues past a failing consumer and returns its error", func(t *testing.T) {
		registry := eventbus.NewConsumerRegistry(testLogger())
		failing := &mockConsumer{
			eventTypes: []string{"coursework.task.created"},
			err:        errors.New("handler broken"),
		}
		healthy := &mockConsumer{eventTypes: []string{"coursework.task.created"}}
		registry.Register(failing)
		registry.Register(healthy)

		err := registry.Dispatch(context.Background(), &eventbus.ConsumedEvent{
			RoutingKey: "coursework.task.created",
		})

		assert.EqualError(t, err, "handler broken")
		assert.Len(t, healthy.events, 1)
	})
}

func TestConsumerRegistry_GetAllEventTypes(t *testing.T) {
	registry := eventbus.NewConsumerRegistry(testLogger())
	registry.Register(&mockConsumer{
		eventTypes: []string{"coursework.task.created", "studyplan.schedule.generated"},
	})

	types := registry.GetAllEventTypes()

	assert.ElementsMatch(t, []string{"coursework.task.created", "studyplan.schedule.generated"}, types)
}
