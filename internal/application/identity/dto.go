package identity

import (
	"time"

	"github.com/donortrack/backend/internal/domain/identity"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RegisterInput contains the input for registration. UserType "ngo" registers
// an NGO administrator; anything else a donor.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	UserType string
}

// LoginInput contains the input for user login
type LoginInput struct {
	Email    string
	Password string
	IP       string // Client IP for login tracking
}

// AuthResult contains issued tokens and the authenticated user
type AuthResult struct {
	AccessToken           string    `json:"accessToken"`
	RefreshToken          string    `json:"refreshToken"`
	AccessTokenExpiresAt  time.Time `json:"accessTokenExpiresAt"`
	RefreshTokenExpiresAt time.Time `json:"refreshTokenExpiresAt"`
	TokenType             string    `json:"tokenType"`
	User                  UserInfo  `json:"user"`
}

// LogoutInput identifies the token being retired
type LogoutInput struct {
	UserID   uuid.UUID
	TokenJTI string
	TokenTTL time.Duration
}

// ChangePasswordInput contains the input for password change
type ChangePasswordInput struct {
	UserID      uuid.UUID
	OldPassword string
	NewPassword string
}

// UserInfo is the public view of a user
type UserInfo struct {
	ID        uuid.UUID     `json:"id"`
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	Role      identity.Role `json:"role"`
	Image     string        `json:"image,omitempty"`
	Phone     string        `json:"phone,omitempty"`
	Location  string        `json:"location,omitempty"`
	Bio       string        `json:"bio,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
}

// ToUserInfo converts a user aggregate
func ToUserInfo(u *identity.User) UserInfo {
	return UserInfo{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		Image:     u.Image,
		Phone:     u.Phone,
		Location:  u.Location,
		Bio:       u.Bio,
		CreatedAt: u.CreatedAt,
	}
}

// UserStats summarizes a user's activity
type UserStats struct {
	TotalDonations int64           `json:"totalDonations"`
	TotalDonated   decimal.Decimal `json:"totalDonated"`
	ActiveProjects int64           `json:"activeProjects"`
}

// ProfileResult is the current user's profile with stats
type ProfileResult struct {
	UserInfo
	Stats UserStats `json:"stats"`
}

// UpdateProfileInput carries profile edits; nil fields are unchanged
type UpdateProfileInput struct {
	UserID   uuid.UUID
	Name     *string
	Image    *string
	Phone    *string
	Location *string
	Bio      *string
}
