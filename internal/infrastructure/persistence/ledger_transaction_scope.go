package persistence

import (
	"context"

	appdonation "github.com/donortrack/backend/internal/application/donation"
	"github.com/donortrack/backend/internal/domain/donation"
	"github.com/donortrack/backend/internal/domain/project"
	"gorm.io/gorm"
)

// GormLedgerTransactionScope runs ledger writes in one database transaction
type GormLedgerTransactionScope struct {
	db *gorm.DB
}

// NewGormLedgerTransactionScope creates a new GormLedgerTransactionScope
func NewGormLedgerTransactionScope(db *gorm.DB) *GormLedgerTransactionScope {
	return &GormLedgerTransactionScope{db: db}
}

// Execute commits when fn returns nil and rolls back otherwise
func (s *GormLedgerTransactionScope) Execute(ctx context.Context, fn func(repos appdonation.LedgerRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormLedgerRepositories{tx: tx})
	})
}

type gormLedgerRepositories struct {
	tx *gorm.DB
}

func (r *gormLedgerRepositories) DonationRepo() donation.DonationRepository {
	return NewGormDonationRepository(r.tx)
}

func (r *gormLedgerRepositories) ProjectRepo() project.ProjectRepository {
	return NewGormProjectRepository(r.tx)
}

var _ appdonation.TransactionScope = (*GormLedgerTransactionScope)(nil)
