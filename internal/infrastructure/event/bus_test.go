package event

import (
	"context"
	"errors"
	"testing"

	"github.com/donortrack/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Donation", uuid.New())}
}

func recorder(types []string, seen *[]string) *HandlerFunc {
	return &HandlerFunc{Types: types, Fn: func(_ context.Context, evt shared.DomainEvent) error {
		*seen = append(*seen, evt.EventType())
		return nil
	}}
}

func TestInMemoryEventBus_RoutesByType(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	var created, all []string
	bus.Subscribe(recorder([]string{"DonationCreated"}, &created))
	bus.Subscribe(recorder(nil, &all))

	require.NoError(t, bus.Publish(context.Background(),
		newTestEvent("DonationCreated"),
		newTestEvent("DonationStatusChanged"),
	))

	assert.Equal(t, []string{"DonationCreated"}, created)
	assert.Equal(t, []string{"DonationCreated", "DonationStatusChanged"}, all)
}

func TestInMemoryEventBus_ExplicitTypesOverrideHandler(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	var seen []string
	bus.Subscribe(recorder([]string{"A"}, &seen), "B")

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("A"), newTestEvent("B")))
	assert.Equal(t, []string{"B"}, seen)
}

func TestInMemoryEventBus_FailingHandlersAreIsolated(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	bus := NewInMemoryEventBus(zap.New(core))
	var seen []string

	bus.Subscribe(&HandlerFunc{Fn: func(context.Context, shared.DomainEvent) error {
		return errors.New("downstream unavailable")
	}})
	bus.Subscribe(&HandlerFunc{Fn: func(context.Context, shared.DomainEvent) error {
		panic("bad handler")
	}})
	bus.Subscribe(recorder(nil, &seen))

	err := bus.Publish(context.Background(), newTestEvent("DonationCreated"))
	require.NoError(t, err)
	assert.Equal(t, []string{"DonationCreated"}, seen)
	assert.Equal(t, 2, logs.FilterMessage("Event handler failed").Len())
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	var seen []string
	h := recorder([]string{"A"}, &seen)
	bus.Subscribe(h)
	bus.Unsubscribe(h)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("A")))
	assert.Empty(t, seen)
}
