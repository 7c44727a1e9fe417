package telemetry_test

import (
	"context"
	"testing"

	"github.com/donortrack/backend/internal/domain/donation"
	"github.com/donortrack/backend/internal/domain/identity"
	"github.com/donortrack/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap/zaptest"
)

func TestDonationMetrics_Handle(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	mp := telemetry.NewMeterProviderWithReader(reader, zaptest.NewLogger(t))
	t.Cleanup(func() { _ = mp.Shutdown(ctx) })

	m, err := telemetry.NewDonationMetrics(mp.Meter("test"))
	require.NoError(t, err)
	assert.Contains(t, m.EventTypes(), donation.EventTypeDonationRefunded)

	d, err := donation.NewDonation(uuid.New(), uuid.New(), decimal.NewFromInt(40), "usd", "card", "")
	require.NoError(t, err)
	require.NoError(t, m.Handle(ctx, donation.NewDonationCreatedEvent(d)))
	require.NoError(t, d.Complete("txn"))
	require.NoError(t, m.Handle(ctx, donation.NewDonationCompletedEvent(d, donation.StatusPending)))
	require.NoError(t, m.Handle(ctx, donation.NewDonationRefundedEvent(d, "duplicate charge")))

	user, err := identity.NewUser("Ada", "ada@example.org", "supersecret", identity.RoleDonor)
	require.NoError(t, err)
	require.NoError(t, m.Handle(ctx, identity.NewUserRegisteredEvent(user)))

	metrics := collect(t, reader)

	events := metrics["donation_events_total"].Data.(metricdata.Sum[int64])
	var total int64
	for _, dp := range events.DataPoints {
		total += dp.Value
	}
	assert.Equal(t, int64(3), total)

	settled := metrics["donation_settled_amount_total"].Data.(metricdata.Sum[float64])
	require.Len(t, settled.DataPoints, 1)
	assert.InDelta(t, 0.0, settled.DataPoints[0].Value, 1e-9)

	amounts := metrics["donation_amount"].Data.(metricdata.Histogram[float64])
	require.Len(t, amounts.DataPoints, 1)
	assert.Equal(t, uint64(1), amounts.DataPoints[0].Count)

	registered := metrics["users_registered_total"].Data.(metricdata.Sum[int64])
	require.Len(t, registered.DataPoints, 1)
	role, ok := registered.DataPoints[0].Attributes.Value("role")
	require.True(t, ok)
	assert.Equal(t, string(identity.RoleDonor), role.AsString())
}
