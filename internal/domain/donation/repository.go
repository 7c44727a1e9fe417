package donation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DonationRepository defines the interface for donation persistence
type DonationRepository interface {
	// Create persists a new donation
	Create(ctx context.Context, d *Donation) error

	// Save persists status, notes and transaction reference of an existing donation
	Save(ctx context.Context, d *Donation) error

	// FindByID returns nil, nil when the donation does not exist
	FindByID(ctx context.Context, id uuid.UUID) (*Donation, error)

	// FindByDonor lists a donor's donations, newest first
	FindByDonor(ctx context.Context, donorID uuid.UUID, filter ListFilter) ([]*Donation, int64, error)

	// FindCompletedInRange returns a donor's COMPLETED donations with
	// created_at in [start, end], oldest first
	FindCompletedInRange(ctx context.Context, donorID uuid.UUID, start, end time.Time) ([]*Donation, error)

	// FindRecentCompletedByProject returns the latest completed donations to a project
	FindRecentCompletedByProject(ctx context.Context, projectID uuid.UUID, limit int) ([]*Donation, error)

	// CountByProject counts all donations referencing a project
	CountByProject(ctx context.Context, projectID uuid.UUID) (int64, error)

	// CompletedTotals returns count and sum of a donor's COMPLETED donations
	CompletedTotals(ctx context.Context, donorID uuid.UUID) (int64, decimal.Decimal, error)
}

// ListFilter narrows a donor's donation listing
type ListFilter struct {
	Page      int
	PageSize  int
	Status    *Status
	ProjectID *uuid.UUID
}
