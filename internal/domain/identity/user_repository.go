package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository persists accounts. Lookups return nil, nil when nothing
// matches; emails are compared in their normalized form.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// NamesByIDs resolves organization names for listings; unknown IDs
	// are left out of the map
	NamesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}
