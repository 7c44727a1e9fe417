package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/donortrack/backend/internal/domain/identity"
	"github.com/donortrack/backend/internal/domain/shared"
	"github.com/donortrack/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

var errInvalidCredentials = shared.NewDomainError(shared.CodeUnauthorized, "Invalid email or password")

// AuthService handles registration and authentication
type AuthService struct {
	userRepo       identity.UserRepository
	jwtService     *auth.JWTService
	blacklist      auth.TokenBlacklist
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// AuthServiceConfig holds dependencies for the auth service
type AuthServiceConfig struct {
	UserRepo   identity.UserRepository
	JWTService *auth.JWTService
	// Blacklist is optional; without it logout only drops the client's token
	Blacklist      auth.TokenBlacklist
	EventPublisher shared.EventPublisher
	Logger         *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(config AuthServiceConfig) *AuthService {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		userRepo:       config.UserRepo,
		jwtService:     config.JWTService,
		blacklist:      config.Blacklist,
		eventPublisher: config.EventPublisher,
		logger:         logger,
	}
}

// Register creates a donor or NGO admin account and signs it in
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	email, err := identity.NormalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, "An account with this email already exists")
	}

	user, err := identity.NewUser(input.Name, email, input.Password, identity.RoleForUserType(input.UserType))
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// a concurrent registration may have won the unique index
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, shared.NewDomainError(shared.CodeAlreadyExists, "An account with this email already exists")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	events := user.PullDomainEvents()
	if s.eventPublisher != nil && len(events) > 0 {
		if err := s.eventPublisher.Publish(ctx, events...); err != nil {
			s.logger.Warn("Failed to publish user events", zap.String("user_id", user.ID.String()), zap.Error(err))
		}
	}

	s.logger.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)))
	return s.issue(user)
}

// Login verifies credentials and issues tokens. Unknown emails and wrong
// passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	email, err := identity.NormalizeEmail(input.Email)
	if err != nil {
		return nil, errInvalidCredentials
	}
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil || !user.VerifyPassword(input.Password) {
		s.logger.Warn("Failed login attempt", zap.String("ip", input.IP))
		return nil, errInvalidCredentials
	}

	s.logger.Info("User logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("ip", input.IP))
	return s.issue(user)
}

// Refresh rotates a refresh token, reloading the user so role changes apply
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, shared.NewDomainError(shared.CodeUnauthorized, "Invalid or expired refresh token")
	}
	if err := s.checkRevoked(ctx, claims); err != nil {
		return nil, err
	}
	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, shared.NewDomainError(shared.CodeUnauthorized, "Invalid refresh token")
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, shared.NewDomainError(shared.CodeUnauthorized, "User no longer exists")
	}

	pair, err := s.jwtService.RotateTokenPair(claims, tokenInput(user))
	if errors.Is(err, auth.ErrMaxRefreshExceeded) {
		return nil, shared.NewDomainError(shared.CodeUnauthorized, "Session expired, please log in again")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to rotate tokens: %w", err)
	}
	if s.blacklist != nil {
		if err := s.blacklist.Revoke(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
			s.logger.Warn("Failed to revoke rotated refresh token", zap.Error(err))
		}
	}
	return toAuthResult(pair, user), nil
}

// Logout revokes the presented access token
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	if s.blacklist == nil || input.TokenJTI == "" {
		return nil
	}
	if err := s.blacklist.Revoke(ctx, input.TokenJTI, input.TokenTTL); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	s.logger.Info("User logged out", zap.String("user_id", input.UserID.String()))
	return nil
}

// ChangePassword verifies the old password, stores the new one and revokes
// every token issued before the change
func (s *AuthService) ChangePassword(ctx context.Context, input ChangePasswordInput) error {
	user, err := s.userRepo.FindByID(ctx, input.UserID)
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return shared.NewNotFoundError("User")
	}
	if err := user.ChangePassword(input.OldPassword, input.NewPassword); err != nil {
		return err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if s.blacklist != nil {
		ttl := s.jwtService.RefreshTokenExpiration()
		if err := s.blacklist.RevokeUser(ctx, user.ID.String(), ttl); err != nil {
			s.logger.Warn("Failed to revoke existing sessions", zap.String("user_id", user.ID.String()), zap.Error(err))
		}
	}
	return nil
}

// Authenticate validates an access token for request middleware, including
// revocation checks
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*auth.Claims, error) {
	claims, err := s.jwtService.ValidateAccessToken(accessToken)
	if err != nil {
		return nil, err
	}
	if err := s.checkRevoked(ctx, claims); err != nil {
		return nil, auth.ErrTokenRevoked
	}
	return claims, nil
}

func (s *AuthService) checkRevoked(ctx context.Context, claims *auth.Claims) error {
	if s.blacklist == nil {
		return nil
	}
	revoked, err := s.blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		// fail open: the token signature is valid and the store is advisory
		s.logger.Warn("Token blacklist unavailable", zap.Error(err))
		return nil
	}
	if !revoked {
		revoked, err = s.blacklist.IsUserRevoked(ctx, claims.UserID, claims.GetIssuedAtTime())
		if err != nil {
			s.logger.Warn("Token blacklist unavailable", zap.Error(err))
			return nil
		}
	}
	if revoked {
		return shared.NewDomainError(shared.CodeUnauthorized, "Token has been revoked")
	}
	return nil
}

func (s *AuthService) issue(user *identity.User) (*AuthResult, error) {
	pair, err := s.jwtService.GenerateTokenPair(tokenInput(user))
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}
	return toAuthResult(pair, user), nil
}

func tokenInput(u *identity.User) auth.GenerateTokenInput {
	return auth.GenerateTokenInput{UserID: u.ID, Email: u.Email, Role: string(u.Role)}
}

func toAuthResult(pair *auth.TokenPair, u *identity.User) *AuthResult {
	return &AuthResult{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
		User:                  ToUserInfo(u),
	}
}
