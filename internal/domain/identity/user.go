package identity

import (
	"regexp"
	"strings"

	"github.com/donortrack/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Role determines what a user may do
type Role string

const (
	RoleDonor       Role = "DONOR"
	RoleNGOAdmin    Role = "NGO_ADMIN"
	RoleSystemAdmin Role = "SYSTEM_ADMIN"
)

// IsValid checks if the role is a known value
func (r Role) IsValid() bool {
	switch r {
	case RoleDonor, RoleNGOAdmin, RoleSystemAdmin:
		return true
	}
	return false
}

// RoleForUserType maps the registration userType field to a role.
// Only "ngo" selects NGO_ADMIN; anything else registers a donor.
func RoleForUserType(userType string) Role {
	if strings.EqualFold(strings.TrimSpace(userType), "ngo") {
		return RoleNGOAdmin
	}
	return RoleDonor
}

// Password cost for bcrypt
const bcryptCost = 12

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// User represents a donor, NGO administrator or system administrator
type User struct {
	shared.BaseAggregateRoot
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Image        string
	Phone        string
	Location     string
	Bio          string
}

// NewUser creates a new user with a hashed password
func NewUser(name, email, password string, role Role) (*User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("Name is required")
	}
	if len(name) > 200 {
		return nil, shared.NewValidationError("Name cannot exceed 200 characters")
	}
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, shared.NewValidationError("Invalid role %q", role)
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	user := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Email:             email,
		PasswordHash:      passwordHash,
		Role:              role,
	}

	user.AddDomainEvent(NewUserRegisteredEvent(user))

	return user, nil
}

// Profile carries editable profile fields. Nil means unchanged.
type Profile struct {
	Name     *string
	Image    *string
	Phone    *string
	Location *string
	Bio      *string
}

// UpdateProfile applies profile edits
func (u *User) UpdateProfile(p Profile) error {
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return shared.NewValidationError("Name cannot be empty")
		}
		if len(name) > 200 {
			return shared.NewValidationError("Name cannot exceed 200 characters")
		}
		u.Name = name
	}
	if p.Phone != nil {
		if len(*p.Phone) > 50 {
			return shared.NewValidationError("Phone cannot exceed 50 characters")
		}
		u.Phone = strings.TrimSpace(*p.Phone)
	}
	if p.Image != nil {
		if len(*p.Image) > 500 {
			return shared.NewValidationError("Image URL cannot exceed 500 characters")
		}
		u.Image = *p.Image
	}
	if p.Location != nil {
		u.Location = strings.TrimSpace(*p.Location)
	}
	if p.Bio != nil {
		u.Bio = strings.TrimSpace(*p.Bio)
	}

	u.MarkModified()
	return nil
}

// ChangePassword changes the user's password
func (u *User) ChangePassword(oldPassword, newPassword string) error {
	if !u.VerifyPassword(oldPassword) {
		return shared.NewValidationError("Current password is incorrect")
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	passwordHash, err := hashPassword(newPassword)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	u.PasswordHash = passwordHash
	u.MarkModified()
	return nil
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// IsNGOAdmin reports whether the user administers projects
func (u *User) IsNGOAdmin() bool {
	return u.Role == RoleNGOAdmin
}

// NormalizeEmail lower-cases and validates an email address
func NormalizeEmail(email string) (string, error) {
	return normalizeEmail(email)
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", shared.NewValidationError("Email is required")
	}
	if len(email) > 200 {
		return "", shared.NewValidationError("Email cannot exceed 200 characters")
	}
	if !emailRegex.MatchString(email) {
		return "", shared.NewValidationError("Please enter a valid email address")
	}
	return email, nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return shared.NewValidationError("Password must be at least 8 characters")
	}
	// bcrypt ignores input beyond 72 bytes
	if len(password) > 72 {
		return shared.NewValidationError("Password cannot exceed 72 characters")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
