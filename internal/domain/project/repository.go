package project

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProjectRepository defines the interface for project persistence
type ProjectRepository interface {
	// Create persists a new project
	Create(ctx context.Context, p *Project) error

	// Update persists editable fields. It never writes current_amount.
	Update(ctx context.Context, p *Project) error

	// FindByID returns nil, nil when the project does not exist
	FindByID(ctx context.Context, id uuid.UUID) (*Project, error)

	// FindByIDs returns the projects that still exist among ids
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Project, error)

	// FindAll lists projects, newest first
	FindAll(ctx context.Context, filter Filter) ([]*Project, int64, error)

	// FindRelated returns other ACTIVE projects in the same category
	FindRelated(ctx context.Context, p *Project, limit int) ([]*Project, error)

	// AdjustCurrentAmount atomically adds delta (which may be negative) to
	// the running total without reading it first.
	AdjustCurrentAmount(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error

	// CountActiveByNGO counts ACTIVE projects owned by an NGO
	CountActiveByNGO(ctx context.Context, ngoID uuid.UUID) (int64, error)

	// AddMilestone, AddUpdate and AddImpactMetric persist child entities
	AddMilestone(ctx context.Context, m *Milestone) error
	AddUpdate(ctx context.Context, u *Update) error
	AddImpactMetric(ctx context.Context, m *ImpactMetric) error

	// Milestones returns all milestones ordered by target date ascending
	Milestones(ctx context.Context, projectID uuid.UUID) ([]*Milestone, error)

	// LatestUpdates returns the most recent updates first
	LatestUpdates(ctx context.Context, projectID uuid.UUID, limit int) ([]*Update, error)

	// LatestImpactMetrics returns the most recent metrics first
	LatestImpactMetrics(ctx context.Context, projectID uuid.UUID, limit int) ([]*ImpactMetric, error)
}

// Filter contains filter options for listing projects
type Filter struct {
	Page     int
	PageSize int
	Category string
	Status   *Status
	Location string
	// Search matches title or description, case-insensitive
	Search string
}
