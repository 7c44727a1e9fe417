package persistence

import (
	"context"
	"fmt"
	"strings"

	"github.com/donortrack/backend/internal/domain/project"
	"github.com/donortrack/backend/internal/domain/shared"
	"github.com/donortrack/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormProjectRepository implements project.ProjectRepository using GORM
type GormProjectRepository struct {
	db *gorm.DB
}

// NewGormProjectRepository creates a new GormProjectRepository
func NewGormProjectRepository(db *gorm.DB) *GormProjectRepository {
	return &GormProjectRepository{db: db}
}

// Create persists a new project
func (r *GormProjectRepository) Create(ctx context.Context, p *project.Project) error {
	if err := r.db.WithContext(ctx).Create(models.ProjectModelFromDomain(p)).Error; err != nil {
		return translateWriteError(err)
	}
	return nil
}

// Update writes editable fields, guarded by version. current_amount is left
// to AdjustCurrentAmount.
func (r *GormProjectRepository) Update(ctx context.Context, p *project.Project) error {
	result := r.db.WithContext(ctx).
		Model(&models.ProjectModel{}).
		Where("id = ? AND version = ?", p.ID, p.Version-1).
		Updates(map[string]any{
			"title":         p.Title,
			"description":   p.Description,
			"category":      p.Category,
			"location":      p.Location,
			"target_amount": p.TargetAmount,
			"status":        string(p.Status),
			"images":        pq.StringArray(p.Images),
			"start_date":    p.StartDate,
			"end_date":      p.EndDate,
			"version":       p.Version,
			"updated_at":    p.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrentModification
	}
	return nil
}

// FindByID returns nil, nil when the project does not exist
func (r *GormProjectRepository) FindByID(ctx context.Context, id uuid.UUID) (*project.Project, error) {
	var m models.ProjectModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindByIDs returns the projects that still exist among ids
func (r *GormProjectRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*project.Project, error) {
	if len(ids) == 0 {
		return []*project.Project{}, nil
	}
	var rows []models.ProjectModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return toProjects(rows), nil
}

// FindAll lists projects matching filter, newest first
func (r *GormProjectRepository) FindAll(ctx context.Context, filter project.Filter) ([]*project.Project, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ProjectModel{})
	if filter.Category != "" {
		query = query.Where("LOWER(category) = LOWER(?)", project.NormalizeCategory(filter.Category))
	}
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	if filter.Location != "" {
		query = query.Where(`LOWER(location) LIKE ? ESCAPE '\'`, likePattern(filter.Location))
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count projects: %w", err)
	}

	page := shared.Filter{Page: filter.Page, PageSize: filter.PageSize}.Normalize(12)
	var rows []models.ProjectModel
	if err := query.Order("created_at DESC, id DESC").
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return toProjects(rows), total, nil
}

// FindRelated returns other ACTIVE projects in the same category, newest first
func (r *GormProjectRepository) FindRelated(ctx context.Context, p *project.Project, limit int) ([]*project.Project, error) {
	var rows []models.ProjectModel
	err := r.db.WithContext(ctx).
		Where("LOWER(category) = LOWER(?) AND status = ? AND id <> ?", p.Category, string(project.StatusActive), p.ID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toProjects(rows), nil
}

// AdjustCurrentAmount adds delta in a single UPDATE so concurrent settlements
// never lose an increment
func (r *GormProjectRepository) AdjustCurrentAmount(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error {
	result := r.db.WithContext(ctx).
		Model(&models.ProjectModel{}).
		Where("id = ?", id).
		UpdateColumn("current_amount", gorm.Expr("current_amount + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Project")
	}
	return nil
}

// CountActiveByNGO counts ACTIVE projects owned by an NGO
func (r *GormProjectRepository) CountActiveByNGO(ctx context.Context, ngoID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ProjectModel{}).
		Where("ngo_id = ? AND status = ?", ngoID, string(project.StatusActive)).
		Count(&count).Error
	return count, err
}

// AddMilestone persists a milestone
func (r *GormProjectRepository) AddMilestone(ctx context.Context, m *project.Milestone) error {
	return r.db.WithContext(ctx).Create(models.MilestoneModelFromDomain(m)).Error
}

// AddUpdate persists an update post
func (r *GormProjectRepository) AddUpdate(ctx context.Context, u *project.Update) error {
	return r.db.WithContext(ctx).Create(models.UpdateModelFromDomain(u)).Error
}

// AddImpactMetric persists an impact metric
func (r *GormProjectRepository) AddImpactMetric(ctx context.Context, m *project.ImpactMetric) error {
	return r.db.WithContext(ctx).Create(models.ImpactMetricModelFromDomain(m)).Error
}

// Milestones returns all milestones by target date ascending
func (r *GormProjectRepository) Milestones(ctx context.Context, projectID uuid.UUID) ([]*project.Milestone, error) {
	var rows []models.MilestoneModel
	if err := r.db.WithContext(ctx).Where("project_id = ?", projectID).Order("target_date ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*project.Milestone, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// LatestUpdates returns the newest updates first
func (r *GormProjectRepository) LatestUpdates(ctx context.Context, projectID uuid.UUID, limit int) ([]*project.Update, error) {
	var rows []models.UpdateModel
	if err := r.db.WithContext(ctx).Where("project_id = ?", projectID).Order("created_at DESC, id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*project.Update, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// LatestImpactMetrics returns the most recent metrics first
func (r *GormProjectRepository) LatestImpactMetrics(ctx context.Context, projectID uuid.UUID, limit int) ([]*project.ImpactMetric, error) {
	var rows []models.ImpactMetricModel
	if err := r.db.WithContext(ctx).Where("project_id = ?", projectID).Order("date DESC, created_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*project.ImpactMetric, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// ImpactMetricsByProjects groups every metric of the given projects by
// project, most recent first
func (r *GormProjectRepository) ImpactMetricsByProjects(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]*project.ImpactMetric, error) {
	out := make(map[uuid.UUID][]*project.ImpactMetric, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.ImpactMetricModel
	if err := r.db.WithContext(ctx).Where("project_id IN ?", ids).Order("date DESC, created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		m := rows[i].ToDomain()
		out[m.ProjectID] = append(out[m.ProjectID], m)
	}
	return out, nil
}

func toProjects(rows []models.ProjectModel) []*project.Project {
	out := make([]*project.Project, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out
}

// likePattern lower-cases s and escapes LIKE wildcards
func likePattern(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
	return "%" + s + "%"
}

var _ project.ProjectRepository = (*GormProjectRepository)(nil)
