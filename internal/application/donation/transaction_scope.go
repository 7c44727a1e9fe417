package donation

import (
	"context"

	"github.com/donortrack/backend/internal/domain/donation"
	"github.com/donortrack/backend/internal/domain/project"
)

// TransactionScope provides transactional access to the ledger repositories.
// The donation write and the project running-total adjustment are committed
// or rolled back together.
type TransactionScope interface {
	// Execute runs fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos LedgerRepositories) error) error
}

// LedgerRepositories provides repositories bound to the same transaction
type LedgerRepositories interface {
	DonationRepo() donation.DonationRepository
	ProjectRepo() project.ProjectRepository
}

// NoOpTransactionScope runs fn directly against the given repositories.
// This is useful for testing with in-memory fakes.
type NoOpTransactionScope struct {
	donationRepo donation.DonationRepository
	projectRepo  project.ProjectRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(donationRepo donation.DonationRepository, projectRepo project.ProjectRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{donationRepo: donationRepo, projectRepo: projectRepo}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos LedgerRepositories) error) error {
	return fn(s)
}

// DonationRepo returns the donation repository.
func (s *NoOpTransactionScope) DonationRepo() donation.DonationRepository {
	return s.donationRepo
}

// ProjectRepo returns the project repository.
func (s *NoOpTransactionScope) ProjectRepo() project.ProjectRepository {
	return s.projectRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ LedgerRepositories = (*NoOpTransactionScope)(nil)
