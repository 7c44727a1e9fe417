package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/donortrack/backend/internal/domain/donation"
	"github.com/donortrack/backend/internal/domain/shared"
	"github.com/donortrack/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormDonationRepository implements donation.DonationRepository using GORM
type GormDonationRepository struct {
	db *gorm.DB
}

// NewGormDonationRepository creates a new GormDonationRepository
func NewGormDonationRepository(db *gorm.DB) *GormDonationRepository {
	return &GormDonationRepository{db: db}
}

// Create persists a new donation
func (r *GormDonationRepository) Create(ctx context.Context, d *donation.Donation) error {
	if err := r.db.WithContext(ctx).Create(models.DonationModelFromDomain(d)).Error; err != nil {
		return translateWriteError(err)
	}
	return nil
}

// Save writes the mutable fields of a donation, guarded by its version.
// The aggregate has already incremented Version, so the stored row must still
// be at Version-1.
func (r *GormDonationRepository) Save(ctx context.Context, d *donation.Donation) error {
	result := r.db.WithContext(ctx).
		Model(&models.DonationModel{}).
		Where("id = ? AND version = ?", d.ID, d.Version-1).
		Updates(map[string]any{
			"status":         string(d.Status),
			"notes":          d.Notes,
			"transaction_id": d.TransactionID,
			"version":        d.Version,
			"updated_at":     d.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&models.DonationModel{}).Where("id = ?", d.ID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return shared.NewNotFoundError("Donation")
	}
	return shared.ErrConcurrentModification
}

// FindByID returns nil, nil when the donation does not exist
func (r *GormDonationRepository) FindByID(ctx context.Context, id uuid.UUID) (*donation.Donation, error) {
	var m models.DonationModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindByDonor lists a donor's donations, newest first
func (r *GormDonationRepository) FindByDonor(ctx context.Context, donorID uuid.UUID, filter donation.ListFilter) ([]*donation.Donation, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.DonationModel{}).Where("donor_id = ?", donorID)
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count donations: %w", err)
	}

	page := shared.Filter{Page: filter.Page, PageSize: filter.PageSize}.Normalize(10)
	var rows []models.DonationModel
	if err := query.Order("created_at DESC, id DESC").
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return toDonations(rows), total, nil
}

// FindCompletedInRange returns a donor's COMPLETED donations created in
// [start, end], oldest first
func (r *GormDonationRepository) FindCompletedInRange(ctx context.Context, donorID uuid.UUID, start, end time.Time) ([]*donation.Donation, error) {
	var rows []models.DonationModel
	err := r.db.WithContext(ctx).
		Where("donor_id = ? AND status = ?", donorID, string(donation.StatusCompleted)).
		Where("created_at >= ? AND created_at <= ?", start, end).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDonations(rows), nil
}

// FindRecentCompletedByProject returns the latest completed donations to a project
func (r *GormDonationRepository) FindRecentCompletedByProject(ctx context.Context, projectID uuid.UUID, limit int) ([]*donation.Donation, error) {
	var rows []models.DonationModel
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND status = ?", projectID, string(donation.StatusCompleted)).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDonations(rows), nil
}

// CountByProject counts every donation referencing a project
func (r *GormDonationRepository) CountByProject(ctx context.Context, projectID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.DonationModel{}).Where("project_id = ?", projectID).Count(&count).Error
	return count, err
}

// CompletedTotals returns count and sum of a donor's COMPLETED donations
func (r *GormDonationRepository) CompletedTotals(ctx context.Context, donorID uuid.UUID) (int64, decimal.Decimal, error) {
	var totals struct {
		Count int64
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Model(&models.DonationModel{}).
		Select("COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total").
		Where("donor_id = ? AND status = ?", donorID, string(donation.StatusCompleted)).
		Scan(&totals).Error
	if err != nil {
		return 0, decimal.Zero, err
	}
	return totals.Count, totals.Total, nil
}

func toDonations(rows []models.DonationModel) []*donation.Donation {
	out := make([]*donation.Donation, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out
}

var _ donation.DonationRepository = (*GormDonationRepository)(nil)
