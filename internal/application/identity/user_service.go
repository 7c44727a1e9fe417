package identity

import (
	"context"
	"fmt"

	"github.com/donortrack/backend/internal/domain/identity"
	"github.com/donortrack/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DonationStats reports a donor's completed giving
type DonationStats interface {
	CompletedTotals(ctx context.Context, donorID uuid.UUID) (int64, decimal.Decimal, error)
}

// ProjectStats reports projects administered by an NGO
type ProjectStats interface {
	CountActiveByNGO(ctx context.Context, ngoID uuid.UUID) (int64, error)
}

// UserService serves the current user's profile
type UserService struct {
	userRepo  identity.UserRepository
	donations DonationStats
	projects  ProjectStats
	logger    *zap.Logger
}

// UserServiceConfig holds dependencies for the user service
type UserServiceConfig struct {
	UserRepo  identity.UserRepository
	Donations DonationStats
	Projects  ProjectStats
	Logger    *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(config UserServiceConfig) *UserService {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		userRepo:  config.UserRepo,
		donations: config.Donations,
		projects:  config.Projects,
		logger:    logger,
	}
}

// GetProfile returns the user with donation and project stats
func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*ProfileResult, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats, err := s.stats(ctx, user)
	if err != nil {
		return nil, err
	}
	return &ProfileResult{UserInfo: ToUserInfo(user), Stats: stats}, nil
}

// UpdateProfile applies profile edits and returns the refreshed profile
func (s *UserService) UpdateProfile(ctx context.Context, input UpdateProfileInput) (*ProfileResult, error) {
	user, err := s.load(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if err := user.UpdateProfile(identity.Profile{
		Name:     input.Name,
		Image:    input.Image,
		Phone:    input.Phone,
		Location: input.Location,
		Bio:      input.Bio,
	}); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.logger.Info("Profile updated", zap.String("user_id", user.ID.String()))

	stats, err := s.stats(ctx, user)
	if err != nil {
		return nil, err
	}
	return &ProfileResult{UserInfo: ToUserInfo(user), Stats: stats}, nil
}

func (s *UserService) load(ctx context.Context, userID uuid.UUID) (*identity.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, shared.NewNotFoundError("User")
	}
	return user, nil
}

func (s *UserService) stats(ctx context.Context, user *identity.User) (UserStats, error) {
	stats := UserStats{TotalDonated: decimal.Zero}
	if s.donations != nil {
		count, total, err := s.donations.CompletedTotals(ctx, user.ID)
		if err != nil {
			return stats, fmt.Errorf("failed to load donation stats: %w", err)
		}
		stats.TotalDonations = count
		stats.TotalDonated = total
	}
	if user.IsNGOAdmin() && s.projects != nil {
		active, err := s.projects.CountActiveByNGO(ctx, user.ID)
		if err != nil {
			return stats, fmt.Errorf("failed to load project stats: %w", err)
		}
		stats.ActiveProjects = active
	}
	return stats, nil
}
