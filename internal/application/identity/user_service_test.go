package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/donortrack/backend/internal/domain/identity"
	"github.com/donortrack/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockDonationStats struct {
	mock.Mock
}

func (m *MockDonationStats) CompletedTotals(ctx context.Context, donorID uuid.UUID) (int64, decimal.Decimal, error) {
	args := m.Called(ctx, donorID)
	return args.Get(0).(int64), args.Get(1).(decimal.Decimal), args.Error(2)
}

type MockProjectStats struct {
	mock.Mock
}

func (m *MockProjectStats) CountActiveByNGO(ctx context.Context, ngoID uuid.UUID) (int64, error) {
	args := m.Called(ctx, ngoID)
	return args.Get(0).(int64), args.Error(1)
}

func seedUser(t *testing.T, repo *memoryUserRepo, role identity.Role) *identity.User {
	t.Helper()
	user, err := identity.NewUser("Test User", uuid.NewString()+"@example.org", "supersecret", role)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestUserService_GetProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("donor stats skip projects", func(t *testing.T) {
		repo := newMemoryUserRepo()
		user := seedUser(t, repo, identity.RoleDonor)
		donations := new(MockDonationStats)
		projects := new(MockProjectStats)
		donations.On("CompletedTotals", mock.Anything, user.ID).
			Return(int64(3), decimal.RequireFromString("150.50"), nil)

		svc := NewUserService(UserServiceConfig{UserRepo: repo, Donations: donations, Projects: projects})
		profile, err := svc.GetProfile(ctx, user.ID)
		require.NoError(t, err)

		assert.Equal(t, user.ID, profile.ID)
		assert.Equal(t, int64(3), profile.Stats.TotalDonations)
		assert.Equal(t, "150.5", profile.Stats.TotalDonated.String())
		assert.Zero(t, profile.Stats.ActiveProjects)
		projects.AssertNotCalled(t, "CountActiveByNGO", mock.Anything, mock.Anything)
	})

	t.Run("ngo admin counts active projects", func(t *testing.T) {
		repo := newMemoryUserRepo()
		user := seedUser(t, repo, identity.RoleNGOAdmin)
		donations := new(MockDonationStats)
		projects := new(MockProjectStats)
		donations.On("CompletedTotals", mock.Anything, user.ID).Return(int64(0), decimal.Zero, nil)
		projects.On("CountActiveByNGO", mock.Anything, user.ID).Return(int64(2), nil)

		svc := NewUserService(UserServiceConfig{UserRepo: repo, Donations: donations, Projects: projects})
		profile, err := svc.GetProfile(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), profile.Stats.ActiveProjects)
	})

	t.Run("unknown user", func(t *testing.T) {
		svc := NewUserService(UserServiceConfig{UserRepo: newMemoryUserRepo()})
		_, err := svc.GetProfile(ctx, uuid.New())
		assert.True(t, shared.IsNotFound(err))
	})

	t.Run("stats failure propagates", func(t *testing.T) {
		repo := newMemoryUserRepo()
		user := seedUser(t, repo, identity.RoleDonor)
		donations := new(MockDonationStats)
		donations.On("CompletedTotals", mock.Anything, user.ID).
			Return(int64(0), decimal.Zero, errors.New("db down"))

		svc := NewUserService(UserServiceConfig{UserRepo: repo, Donations: donations})
		_, err := svc.GetProfile(ctx, user.ID)
		assert.ErrorContains(t, err, "db down")
	})
}

func TestUserService_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryUserRepo()
	user := seedUser(t, repo, identity.RoleDonor)
	svc := NewUserService(UserServiceConfig{UserRepo: repo})

	name := "  Renamed  "
	bio := "Giving monthly"
	profile, err := svc.UpdateProfile(ctx, UpdateProfileInput{UserID: user.ID, Name: &name, Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", profile.Name)
	assert.Equal(t, "Giving monthly", profile.Bio)
	assert.True(t, profile.Stats.TotalDonated.IsZero())

	stored, _ := repo.FindByID(ctx, user.ID)
	assert.Equal(t, "Renamed", stored.Name)

	empty := " "
	_, err = svc.UpdateProfile(ctx, UpdateProfileInput{UserID: user.ID, Name: &empty})
	assert.True(t, shared.IsValidation(err))
}
