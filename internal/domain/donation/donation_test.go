package donation

import (
	"testing"

	"github.com/donortrack/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDonation(t *testing.T) *Donation {
	t.Helper()
	d, err := NewDonation(uuid.New(), uuid.New(), decimal.NewFromInt(50), "", "card", "")
	require.NoError(t, err)
	return d
}

func TestNewDonation(t *testing.T) {
	t.Run("creates pending donation with defaults", func(t *testing.T) {
		donor := uuid.New()
		project := uuid.New()
		d, err := NewDonation(donor, project, decimal.RequireFromString("25.50"), "eur", " card ", "Great cause, keep it up")
		require.NoError(t, err)

		assert.Equal(t, StatusPending, d.Status)
		assert.Equal(t, "EUR", d.Currency)
		assert.Equal(t, "card", d.PaymentMethod)
		assert.Equal(t, donor, d.DonorID)
		require.NotNil(t, d.ProjectID)
		assert.Equal(t, project, *d.ProjectID)
		assert.True(t, d.Amount.Equal(decimal.RequireFromString("25.5")))
		assert.Equal(t, "Great cause, keep it up", d.Notes)

		events := d.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeDonationCreated, events[0].EventType())
		assert.Equal(t, d.ID, events[0].AggregateID())
	})

	t.Run("defaults currency to USD", func(t *testing.T) {
		d := newTestDonation(t)
		assert.Equal(t, DefaultCurrency, d.Currency)
	})

	testCases := []struct {
		name    string
		donor   uuid.UUID
		project uuid.UUID
		amount  decimal.Decimal
		method  string
		curr    string
	}{
		{"zero amount", uuid.New(), uuid.New(), decimal.Zero, "card", "USD"},
		{"negative amount", uuid.New(), uuid.New(), decimal.NewFromInt(-5), "card", "USD"},
		{"sub-cent amount", uuid.New(), uuid.New(), decimal.RequireFromString("0.001"), "card", "USD"},
		{"fractional cent", uuid.New(), uuid.New(), decimal.RequireFromString("10.005"), "card", "USD"},
		{"amount over column limit", uuid.New(), uuid.New(), decimal.RequireFromString("99999999999999.99"), "card", "USD"},
		{"missing donor", uuid.Nil, uuid.New(), decimal.NewFromInt(5), "card", "USD"},
		{"missing project", uuid.New(), uuid.Nil, decimal.NewFromInt(5), "card", "USD"},
		{"missing payment method", uuid.New(), uuid.New(), decimal.NewFromInt(5), "  ", "USD"},
		{"bad currency", uuid.New(), uuid.New(), decimal.NewFromInt(5), "card", "DOLLARS"},
	}
	for _, tc := range testCases {
		t.Run("rejects "+tc.name, func(t *testing.T) {
			d, err := NewDonation(tc.donor, tc.project, tc.amount, tc.curr, tc.method, "")
			assert.Nil(t, d)
			assert.True(t, shared.IsValidation(err))
		})
	}
}

func TestValidateAmount(t *testing.T) {
	for _, ok := range []string{"0.01", "10.50", "10.500", "9999999999.99"} {
		assert.NoError(t, ValidateAmount(decimal.RequireFromString(ok)), ok)
	}
	for _, bad := range []string{"0", "0.001", "10.005", "10000000000"} {
		assert.True(t, shared.IsValidation(ValidateAmount(decimal.RequireFromString(bad))), bad)
	}
}

func TestStatus_CanTransitionTo(t *testing.T) {
	allowed := map[Status][]Status{
		StatusPending:   {StatusCompleted, StatusFailed},
		StatusCompleted: {StatusRefunded},
	}
	all := []Status{StatusPending, StatusCompleted, StatusFailed, StatusRefunded}

	for _, from := range all {
		for _, to := range all {
			expected := false
			for _, ok := range allowed[from] {
				if ok == to {
					expected = true
				}
			}
			assert.Equal(t, expected, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}

	assert.True(t, StatusFailed.IsTerminal())
	assert.True(t, StatusRefunded.IsTerminal())
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusCompleted.IsTerminal())
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus(" completed ")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, s)

	_, err = ParseStatus("CANCELLED")
	assert.True(t, shared.IsValidation(err))
}

func TestDonation_Lifecycle(t *testing.T) {
	t.Run("complete then refund", func(t *testing.T) {
		d := newTestDonation(t)
		d.ClearDomainEvents()

		require.NoError(t, d.Complete("txn_123"))
		assert.Equal(t, StatusCompleted, d.Status)
		assert.Equal(t, "txn_123", d.TransactionID)

		require.NoError(t, d.Refund("changed my mind"))
		assert.Equal(t, StatusRefunded, d.Status)
		assert.Equal(t, "changed my mind", d.Notes)
		assert.Equal(t, 3, d.GetVersion())

		events := d.GetDomainEvents()
		require.Len(t, events, 2)
		assert.Equal(t, EventTypeDonationCompleted, events[0].EventType())
		completed, ok := events[0].(*DonationCompletedEvent)
		require.True(t, ok)
		assert.Equal(t, "txn_123", completed.TransactionID)
		assert.Equal(t, EventTypeDonationRefunded, events[1].EventType())
	})

	t.Run("refunded cannot be completed", func(t *testing.T) {
		d := newTestDonation(t)
		require.NoError(t, d.Complete(""))
		require.NoError(t, d.Refund(""))

		err := d.TransitionTo(StatusCompleted, "")
		assert.True(t, shared.IsInvalidTransition(err))
		assert.Equal(t, StatusRefunded, d.Status)
	})

	t.Run("failed is terminal", func(t *testing.T) {
		d := newTestDonation(t)
		require.NoError(t, d.Fail("card declined"))

		assert.True(t, shared.IsInvalidTransition(d.Complete("txn")))
		assert.True(t, shared.IsInvalidTransition(d.Refund("")))
		assert.Empty(t, d.TransactionID)
	})

	t.Run("pending cannot be refunded", func(t *testing.T) {
		d := newTestDonation(t)
		assert.True(t, shared.IsInvalidTransition(d.Refund("")))
	})

	t.Run("reason is appended to existing notes", func(t *testing.T) {
		d, err := NewDonation(uuid.New(), uuid.New(), decimal.NewFromInt(10), "USD", "paypal", "in memory of Ada")
		require.NoError(t, err)
		require.NoError(t, d.Fail("insufficient funds"))
		assert.Equal(t, "in memory of Ada\ninsufficient funds", d.Notes)
	})
}

func TestDonation_Ownership(t *testing.T) {
	d := newTestDonation(t)
	assert.True(t, d.IsOwnedBy(d.DonorID))
	assert.False(t, d.IsOwnedBy(uuid.New()))
	assert.True(t, d.HasProject())

	d.ProjectID = nil
	assert.False(t, d.HasProject())
}
