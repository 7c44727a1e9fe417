package donation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/donortrack/backend/internal/domain/donation"
	"github.com/donortrack/backend/internal/domain/project"
	"github.com/donortrack/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type ledgerFixture struct {
	donations *memoryDonationRepo
	projects  *memoryProjectRepo
	project   *project.Project
	service   *LedgerService
}

func newLedgerFixture(t *testing.T, reverseOnFailure bool) *ledgerFixture {
	t.Helper()
	donations := newMemoryDonationRepo()
	projects := newMemoryProjectRepo()

	p, err := project.NewProject(uuid.New(), "Clean Water", "Wells", "Health", "Kenya",
		decimal.NewFromInt(10000), time.Now(), nil)
	require.NoError(t, err)
	p.CurrentAmount = decimal.RequireFromString("1000.00")
	projects.add(p)

	svc := NewLedgerService(LedgerServiceConfig{
		TxScope:          NewNoOpTransactionScope(donations, projects),
		DonationRepo:     donations,
		ProjectRepo:      projects,
		ReverseOnFailure: reverseOnFailure,
		Logger:           zaptest.NewLogger(t),
	})
	return &ledgerFixture{donations: donations, projects: projects, project: p, service: svc}
}

func (f *ledgerFixture) create(t *testing.T, donor uuid.UUID, amount string) *donation.Donation {
	t.Helper()
	d, err := f.service.CreateDonation(context.Background(), CreateDonationInput{
		DonorID:       donor,
		ProjectID:     f.project.ID,
		Amount:        decimal.RequireFromString(amount),
		PaymentMethod: "card",
	})
	require.NoError(t, err)
	return d
}

func TestLedgerService_CreateDonation(t *testing.T) {
	ctx := context.Background()

	t.Run("persists pending donation and increments project", func(t *testing.T) {
		f := newLedgerFixture(t, true)
		d := f.create(t, uuid.New(), "25.50")

		assert.Equal(t, donation.StatusPending, d.Status)
		assert.Equal(t, "USD", d.Currency)
		assert.Equal(t, "1025.5", f.projects.total(f.project.ID).String())

		stored, err := f.donations.FindByID(ctx, d.ID)
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Empty(t, d.GetDomainEvents(), "events are drained after publishing")
	})

	t.Run("unknown project is not found and nothing is written", func(t *testing.T) {
		f := newLedgerFixture(t, true)
		_, err := f.service.CreateDonation(ctx, CreateDonationInput{
			DonorID:       uuid.New(),
			ProjectID:     uuid.New(),
			Amount:        decimal.NewFromInt(10),
			PaymentMethod: "card",
		})
		assert.True(t, shared.IsNotFound(err))
		assert.Empty(t, f.donations.donations)
	})

	t.Run("non-positive amount is a validation error", func(t *testing.T) {
		f := newLedgerFixture(t, true)
		_, err := f.service.CreateDonation(ctx, CreateDonationInput{
			DonorID:       uuid.New(),
			ProjectID:     f.project.ID,
			Amount:        decimal.Zero,
			PaymentMethod: "card",
		})
		assert.True(t, shared.IsValidation(err))
		assert.Equal(t, "1000", f.projects.total(f.project.ID).String())
	})

	t.Run("publishes created event", func(t *testing.T) {
		f := newLedgerFixture(t, true)
		publisher := new(MockEventPublisher)
		publisher.On("Publish", mock.Anything, mock.MatchedBy(func(events []shared.DomainEvent) bool {
			return len(events) == 1 && events[0].EventType() == donation.EventTypeDonationCreated
		})).Return(nil).Once()
		f.service.eventPublisher = publisher

		f.create(t, uuid.New(), "10")
		publisher.AssertExpectations(t)
	})

	t.Run("publish failure does not fail the request", func(t *testing.T) {
		f := newLedgerFixture(t, true)
		publisher := new(MockEventPublisher)
		publisher.On("Publish", mock.Anything, mock.Anything).Return(errors.New("bus down"))
		f.service.eventPublisher = publisher

		d := f.create(t, uuid.New(), "10")
		assert.NotNil(t, d)
	})
}

func TestLedgerService_CreateThenRefundRestoresTotal(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, true)
	donor := uuid.New()
	before := f.projects.total(f.project.ID)

	d := f.create(t, donor, "123.45")
	assert.True(t, f.projects.total(f.project.ID).Equal(before.Add(decimal.RequireFromString("123.45"))))

	_, err := f.service.UpdateDonationStatus(ctx, UpdateStatusInput{DonationID: d.ID, RequesterID: donor, Status: "COMPLETED"})
	require.NoError(t, err)

	refunded, err := f.service.UpdateDonationStatus(ctx, UpdateStatusInput{
		DonationID: d.ID, RequesterID: donor, Status: "REFUNDED", Reason: "duplicate charge",
	})
	require.NoError(t, err)
	assert.Equal(t, donation.StatusRefunded, refunded.Status)
	assert.Equal(t, "duplicate charge", refunded.Notes)
	assert.True(t, f.projects.total(f.project.ID).Equal(before))
}

func TestLedgerService_UpdateDonationStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("other donors get not found", func(t *testing.T) {
		f := newLedgerFixture(t, true)
		d := f.create(t, uuid.New(), "10")

		_, err := f.service.UpdateDonationStatus(ctx, UpdateStatusInput{DonationID: d.ID, RequesterID: uuid.New(), Status: "COMPLETED"})
		assert.True(t, shared.IsNotFound(err))
	})

	t.Run("missing donation is not found", func(t *testing.T) {
		f := newLedgerFixture(t, true)
		_, err := f.service.UpdateDonationStatus(ctx, UpdateStatusInput{DonationID: uuid.New(), RequesterID: uuid.New(), Status: "FAILED"})
		assert.True(t, shared.IsNotFound(err))
	})

	t.Run("refunded to completed is an invalid transition", func(t *testing.T) {
		f := newLedgerFixture(t, true)
		donor := uuid.New()
		d := f.create(t, donor, "10")
		for _, status := range []string{"COMPLETED", "REFUNDED"} {
			_, err := f.service.UpdateDonationStatus(ctx, UpdateStatusInput{DonationID: d.ID, RequesterID: donor, Status: status})
			require.NoError(t, err)
		}
		total := f.projects.total(f.project.ID)

		_, err := f.service.UpdateDonationStatus(ctx, UpdateStatusInput{DonationID: d.ID, RequesterID: donor, Status: "COMPLETED"})
		assert.True(t, shared.IsInvalidTransition(err))
		assert.True(t, f.projects.total(f.project.ID).Equal(total))
	})

	t.Run("unknown status is a validation error", func(t *testing.T) {
		f := newLedgerFixture(t, true)
		_, err := f.service.UpdateDonationStatus(ctx, UpdateStatusInput{DonationID: uuid.New(), RequesterID: uuid.New(), Status: "CANCELLED"})
		assert.True(t, shared.IsValidation(err))
	})

	t.Run("failure reverses increment when configured", func(t *testing.T) {
		f := newLedgerFixture(t, true)
		donor := uuid.New()
		d := f.create(t, donor, "40")

		_, err := f.service.UpdateDonationStatus(ctx, UpdateStatusInput{DonationID: d.ID, RequesterID: donor, Status: "FAILED"})
		require.NoError(t, err)
		assert.Equal(t, "1000", f.projects.total(f.project.ID).String())
	})

	t.Run("failure keeps increment when reversal disabled", func(t *testing.T) {
		f := newLedgerFixture(t, false)
		donor := uuid.New()
		d := f.create(t, donor, "40")

		_, err := f.service.UpdateDonationStatus(ctx, UpdateStatusInput{DonationID: d.ID, RequesterID: donor, Status: "FAILED"})
		require.NoError(t, err)
		assert.Equal(t, "1040", f.projects.total(f.project.ID).String())
	})

	t.Run("deleted project skips adjustment", func(t *testing.T) {
		f := newLedgerFixture(t, true)
		donor := uuid.New()
		d := f.create(t, donor, "40")
		_, err := f.service.UpdateDonationStatus(ctx, UpdateStatusInput{DonationID: d.ID, RequesterID: donor, Status: "COMPLETED"})
		require.NoError(t, err)

		stored := f.donations.donations[d.ID]
		stored.ProjectID = nil
		f.donations.donations[d.ID] = stored

		_, err = f.service.UpdateDonationStatus(ctx, UpdateStatusInput{DonationID: d.ID, RequesterID: donor, Status: "REFUNDED"})
		require.NoError(t, err)
		assert.Equal(t, "1040", f.projects.total(f.project.ID).String())
	})

	t.Run("save failure leaves project untouched", func(t *testing.T) {
		f := newLedgerFixture(t, true)
		donor := uuid.New()
		d := f.create(t, donor, "40")
		f.donations.saveErr = errors.New("db down")

		_, err := f.service.UpdateDonationStatus(ctx, UpdateStatusInput{DonationID: d.ID, RequesterID: donor, Status: "FAILED"})
		assert.Error(t, err)
		assert.Equal(t, "1040", f.projects.total(f.project.ID).String())
	})
}

func TestLedgerService_ListAndGet(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, true)
	donor := uuid.New()
	for i := 0; i < 12; i++ {
		f.create(t, donor, "5")
	}
	f.create(t, uuid.New(), "5")

	page, err := f.service.ListDonations(ctx, ListInput{DonorID: donor})
	require.NoError(t, err)
	assert.Equal(t, int64(12), page.Total)
	assert.Len(t, page.Items, 10)
	assert.Equal(t, 2, page.TotalPages)
	require.NotNil(t, page.Items[0].Project)
	assert.Equal(t, "Clean Water", page.Items[0].Project.Title)
	assert.Equal(t, UnknownOrganization, page.Items[0].Project.Organization)

	completed, err := f.service.ListDonations(ctx, ListInput{DonorID: donor, Status: "completed"})
	require.NoError(t, err)
	assert.Zero(t, completed.Total)

	_, err = f.service.ListDonations(ctx, ListInput{DonorID: donor, Status: "bogus"})
	assert.True(t, shared.IsValidation(err))

	view, err := f.service.GetDonation(ctx, donor, page.Items[0].ID)
	require.NoError(t, err)
	assert.Equal(t, page.Items[0].ID, view.ID)

	_, err = f.service.GetDonation(ctx, uuid.New(), page.Items[0].ID)
	assert.True(t, shared.IsNotFound(err))
}
