package identity

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/donortrack/backend/internal/domain/identity"
	"github.com/donortrack/backend/internal/domain/shared"
	"github.com/donortrack/backend/internal/infrastructure/auth"
	"github.com/donortrack/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// memoryUserRepo is an in-memory identity.UserRepository
type memoryUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*identity.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[uuid.UUID]*identity.User)}
}

func (r *memoryUserRepo) Create(_ context.Context, user *identity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return shared.ErrAlreadyExists
		}
	}
	r.users[user.ID] = user
	return nil
}

func (r *memoryUserRepo) Update(_ context.Context, user *identity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}

func (r *memoryUserRepo) FindByID(_ context.Context, id uuid.UUID) (*identity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[id], nil
}

func (r *memoryUserRepo) FindByEmail(_ context.Context, email string) (*identity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *memoryUserRepo) NamesByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make(map[uuid.UUID]string, len(ids))
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			names[id] = u.Name
		}
	}
	return names, nil
}

func (r *memoryUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	u, _ := r.FindByEmail(ctx, email)
	return u != nil, nil
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

type authFixture struct {
	svc       *AuthService
	repo      *memoryUserRepo
	jwt       *auth.JWTService
	blacklist *auth.InMemoryTokenBlacklist
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	repo := newMemoryUserRepo()
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "donortrack-test",
		MaxRefreshCount:        5,
	})
	blacklist := auth.NewInMemoryTokenBlacklist()
	svc := NewAuthService(AuthServiceConfig{
		UserRepo:   repo,
		JWTService: jwtService,
		Blacklist:  blacklist,
		Logger:     zaptest.NewLogger(t),
	})
	return &authFixture{svc: svc, repo: repo, jwt: jwtService, blacklist: blacklist}
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("registers donor and publishes event", func(t *testing.T) {
		f := newAuthFixture(t)
		publisher := new(MockEventPublisher)
		publisher.On("Publish", mock.Anything, mock.MatchedBy(func(events []shared.DomainEvent) bool {
			return len(events) == 1 && events[0].EventType() == identity.EventTypeUserRegistered
		})).Return(nil).Once()
		f.svc.eventPublisher = publisher

		result, err := f.svc.Register(ctx, RegisterInput{
			Name:     "Ada Donor",
			Email:    "  Ada@Example.ORG ",
			Password: "supersecret",
		})
		require.NoError(t, err)
		assert.Equal(t, "ada@example.org", result.User.Email)
		assert.Equal(t, identity.RoleDonor, result.User.Role)
		assert.NotEmpty(t, result.AccessToken)
		assert.NotEmpty(t, result.RefreshToken)
		assert.Equal(t, "Bearer", result.TokenType)

		claims, err := f.jwt.ValidateAccessToken(result.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, result.User.ID.String(), claims.UserID)
		publisher.AssertExpectations(t)
	})

	t.Run("ngo user type becomes NGO admin", func(t *testing.T) {
		f := newAuthFixture(t)
		result, err := f.svc.Register(ctx, RegisterInput{
			Name: "Green Earth", Email: "ngo@example.org", Password: "supersecret", UserType: "ngo",
		})
		require.NoError(t, err)
		assert.Equal(t, identity.RoleNGOAdmin, result.User.Role)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		f := newAuthFixture(t)
		_, err := f.svc.Register(ctx, RegisterInput{Name: "A", Email: "dup@example.org", Password: "supersecret"})
		require.NoError(t, err)

		_, err = f.svc.Register(ctx, RegisterInput{Name: "B", Email: "DUP@example.org", Password: "supersecret"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrAlreadyExists))
	})

	t.Run("short password is rejected", func(t *testing.T) {
		f := newAuthFixture(t)
		_, err := f.svc.Register(ctx, RegisterInput{Name: "A", Email: "a@example.org", Password: "short"})
		require.Error(t, err)
		assert.True(t, shared.IsValidation(err))
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	_, err := f.svc.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.org", Password: "supersecret"})
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		result, err := f.svc.Login(ctx, LoginInput{Email: "ADA@example.org", Password: "supersecret", IP: "127.0.0.1"})
		require.NoError(t, err)
		assert.Equal(t, "Ada", result.User.Name)
	})

	t.Run("wrong password and unknown email look the same", func(t *testing.T) {
		_, wrongPassword := f.svc.Login(ctx, LoginInput{Email: "ada@example.org", Password: "not-the-password"})
		_, unknownEmail := f.svc.Login(ctx, LoginInput{Email: "nobody@example.org", Password: "supersecret"})
		require.Error(t, wrongPassword)
		require.Error(t, unknownEmail)
		assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
		assert.True(t, errors.Is(wrongPassword, shared.ErrUnauthorized))
	})
}

func TestAuthService_Refresh(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	registered, err := f.svc.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.org", Password: "supersecret"})
	require.NoError(t, err)

	refreshed, err := f.svc.Refresh(ctx, registered.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, registered.RefreshToken, refreshed.RefreshToken)

	claims, err := f.jwt.ValidateRefreshToken(refreshed.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, 1, claims.RefreshCount)

	// the rotated token is single use
	_, err = f.svc.Refresh(ctx, registered.RefreshToken)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrUnauthorized))

	_, err = f.svc.Refresh(ctx, registered.AccessToken)
	assert.True(t, errors.Is(err, shared.ErrUnauthorized))
}

func TestAuthService_LogoutRevokesAccessToken(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	result, err := f.svc.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.org", Password: "supersecret"})
	require.NoError(t, err)

	claims, err := f.svc.Authenticate(ctx, result.AccessToken)
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, LogoutInput{
		UserID:   result.User.ID,
		TokenJTI: claims.ID,
		TokenTTL: claims.GetRemainingTTL(),
	}))

	_, err = f.svc.Authenticate(ctx, result.AccessToken)
	assert.ErrorIs(t, err, auth.ErrTokenRevoked)
}

func TestAuthService_ChangePassword(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	result, err := f.svc.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.org", Password: "supersecret"})
	require.NoError(t, err)

	t.Run("wrong current password", func(t *testing.T) {
		err := f.svc.ChangePassword(ctx, ChangePasswordInput{
			UserID: result.User.ID, OldPassword: "incorrect", NewPassword: "anothersecret",
		})
		require.Error(t, err)
		assert.True(t, shared.IsValidation(err))
	})

	t.Run("unknown user", func(t *testing.T) {
		err := f.svc.ChangePassword(ctx, ChangePasswordInput{
			UserID: uuid.New(), OldPassword: "supersecret", NewPassword: "anothersecret",
		})
		assert.True(t, shared.IsNotFound(err))
	})

	t.Run("revokes earlier tokens", func(t *testing.T) {
		require.NoError(t, f.svc.ChangePassword(ctx, ChangePasswordInput{
			UserID: result.User.ID, OldPassword: "supersecret", NewPassword: "anothersecret",
		}))

		_, err := f.svc.Authenticate(ctx, result.AccessToken)
		assert.ErrorIs(t, err, auth.ErrTokenRevoked)

		_, err = f.svc.Refresh(ctx, result.RefreshToken)
		assert.True(t, errors.Is(err, shared.ErrUnauthorized))

		user, _ := f.repo.FindByID(ctx, result.User.ID)
		assert.True(t, user.VerifyPassword("anothersecret"))
	})
}

func TestAuthService_WithoutBlacklist(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	f.svc.blacklist = nil

	result, err := f.svc.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.org", Password: "supersecret"})
	require.NoError(t, err)
	require.NoError(t, f.svc.Logout(ctx, LogoutInput{UserID: result.User.ID, TokenJTI: "jti", TokenTTL: time.Minute}))

	_, err = f.svc.Authenticate(ctx, result.AccessToken)
	assert.NoError(t, err)
}
