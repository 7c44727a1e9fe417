package telemetry

import (
	"context"
	"fmt"

	"github.com/donortrack/backend/internal/domain/donation"
	"github.com/donortrack/backend/internal/domain/identity"
	"github.com/donortrack/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var _ shared.EventHandler = (*DonationMetrics)(nil)

var (
	attrEvent    = attribute.Key("event")
	attrCurrency = attribute.Key("currency")
	attrRole     = attribute.Key("role")
)

// DonationMetrics turns ledger and identity events into business metrics
type DonationMetrics struct {
	events      metric.Int64Counter
	amount      metric.Float64Histogram
	settled     metric.Float64UpDownCounter
	registrants metric.Int64Counter
}

// NewDonationMetrics creates the business instruments on meter
func NewDonationMetrics(meter metric.Meter) (*DonationMetrics, error) {
	events, err := meter.Int64Counter("donation_events_total",
		metric.WithDescription("Donation lifecycle events by type"),
		metric.WithUnit("{event}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create donation_events_total: %w", err)
	}
	amount, err := meter.Float64Histogram("donation_amount",
		metric.WithDescription("Pledged donation amounts"),
		metric.WithExplicitBucketBoundaries(AmountBuckets...))
	if err != nil {
		return nil, fmt.Errorf("failed to create donation_amount: %w", err)
	}
	settled, err := meter.Float64UpDownCounter("donation_settled_amount_total",
		metric.WithDescription("Net settled amount; refunds count negative"))
	if err != nil {
		return nil, fmt.Errorf("failed to create donation_settled_amount_total: %w", err)
	}
	registrants, err := meter.Int64Counter("users_registered_total",
		metric.WithDescription("Accounts registered by role"),
		metric.WithUnit("{user}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create users_registered_total: %w", err)
	}
	return &DonationMetrics{events: events, amount: amount, settled: settled, registrants: registrants}, nil
}

// EventTypes implements shared.EventHandler
func (m *DonationMetrics) EventTypes() []string {
	return []string{
		donation.EventTypeDonationCreated,
		donation.EventTypeDonationCompleted,
		donation.EventTypeDonationFailed,
		donation.EventTypeDonationRefunded,
		identity.EventTypeUserRegistered,
	}
}

// Handle implements shared.EventHandler
func (m *DonationMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *donation.DonationCreatedEvent:
		m.count(ctx, event)
		m.amount.Record(ctx, toFloat(e.Amount), metric.WithAttributes(attrCurrency.String(e.Currency)))
	case *donation.DonationCompletedEvent:
		m.count(ctx, event)
		m.settled.Add(ctx, toFloat(e.Amount))
	case *donation.DonationRefundedEvent:
		m.count(ctx, event)
		m.settled.Add(ctx, -toFloat(e.Amount))
	case *donation.DonationFailedEvent:
		m.count(ctx, event)
	case *identity.UserRegisteredEvent:
		m.registrants.Add(ctx, 1, metric.WithAttributes(attrRole.String(string(e.Role))))
	}
	return nil
}

func (m *DonationMetrics) count(ctx context.Context, event shared.DomainEvent) {
	m.events.Add(ctx, 1, metric.WithAttributes(attrEvent.String(event.EventType())))
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
