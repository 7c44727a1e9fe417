package models

import (
	"time"

	"github.com/donortrack/backend/internal/domain/project"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// ProjectModel is the persistence model for projects
type ProjectModel struct {
	AggregateModel
	Title         string          `gorm:"type:varchar(200);not null"`
	Description   string          `gorm:"type:text;not null"`
	Category      string          `gorm:"type:varchar(100);not null;index"`
	Location      string          `gorm:"type:varchar(200);not null"`
	TargetAmount  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CurrentAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Status        string          `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
	NGOID         uuid.UUID       `gorm:"column:ngo_id;type:uuid;not null;index"`
	Images        pq.StringArray  `gorm:"type:text[]"`
	StartDate     time.Time       `gorm:"not null"`
	EndDate       *time.Time
}

// TableName returns the table name for GORM
func (ProjectModel) TableName() string {
	return "projects"
}

// ToDomain converts to the domain aggregate
func (m *ProjectModel) ToDomain() *project.Project {
	images := []string(m.Images)
	if images == nil {
		images = make([]string, 0)
	}
	return &project.Project{
		BaseAggregateRoot: m.ToDomainAggregate(),
		Title:             m.Title,
		Description:       m.Description,
		Category:          m.Category,
		Location:          m.Location,
		TargetAmount:      m.TargetAmount,
		CurrentAmount:     m.CurrentAmount,
		Status:            project.Status(m.Status),
		NGOID:             m.NGOID,
		Images:            images,
		StartDate:         m.StartDate,
		EndDate:           m.EndDate,
	}
}

// FromDomain populates the model from the domain aggregate
func (m *ProjectModel) FromDomain(p *project.Project) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.Title = p.Title
	m.Description = p.Description
	m.Category = p.Category
	m.Location = p.Location
	m.TargetAmount = p.TargetAmount
	m.CurrentAmount = p.CurrentAmount
	m.Status = string(p.Status)
	m.NGOID = p.NGOID
	m.Images = pq.StringArray(p.Images)
	m.StartDate = p.StartDate
	m.EndDate = p.EndDate
}

// ProjectModelFromDomain creates a model from the domain aggregate
func ProjectModelFromDomain(p *project.Project) *ProjectModel {
	m := &ProjectModel{}
	m.FromDomain(p)
	return m
}

// MilestoneModel is the persistence model for project milestones
type MilestoneModel struct {
	BaseModel
	ProjectID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Title        string          `gorm:"type:varchar(200);not null"`
	Description  string          `gorm:"type:text"`
	TargetAmount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TargetDate   time.Time       `gorm:"not null"`
	Completed    bool            `gorm:"not null;default:false"`
	CompletedAt  *time.Time
}

// TableName returns the table name for GORM
func (MilestoneModel) TableName() string {
	return "milestones"
}

// ToDomain converts to the domain entity
func (m *MilestoneModel) ToDomain() *project.Milestone {
	return &project.Milestone{
		BaseEntity:   m.BaseModel.ToDomain(),
		ProjectID:    m.ProjectID,
		Title:        m.Title,
		Description:  m.Description,
		TargetAmount: m.TargetAmount,
		TargetDate:   m.TargetDate,
		Completed:    m.Completed,
		CompletedAt:  m.CompletedAt,
	}
}

// MilestoneModelFromDomain creates a model from the domain entity
func MilestoneModelFromDomain(ms *project.Milestone) *MilestoneModel {
	m := &MilestoneModel{
		ProjectID:    ms.ProjectID,
		Title:        ms.Title,
		Description:  ms.Description,
		TargetAmount: ms.TargetAmount,
		TargetDate:   ms.TargetDate,
		Completed:    ms.Completed,
		CompletedAt:  ms.CompletedAt,
	}
	m.FromDomainBaseEntity(ms.BaseEntity)
	return m
}

// UpdateModel is the persistence model for project update posts
type UpdateModel struct {
	BaseModel
	ProjectID uuid.UUID      `gorm:"type:uuid;not null;index"`
	Title     string         `gorm:"type:varchar(200);not null"`
	Content   string         `gorm:"type:text;not null"`
	Images    pq.StringArray `gorm:"type:text[]"`
}

// TableName returns the table name for GORM
func (UpdateModel) TableName() string {
	return "project_updates"
}

// ToDomain converts to the domain entity
func (m *UpdateModel) ToDomain() *project.Update {
	images := []string(m.Images)
	if images == nil {
		images = make([]string, 0)
	}
	return &project.Update{
		BaseEntity: m.BaseModel.ToDomain(),
		ProjectID:  m.ProjectID,
		Title:      m.Title,
		Content:    m.Content,
		Images:     images,
	}
}

// UpdateModelFromDomain creates a model from the domain entity
func UpdateModelFromDomain(u *project.Update) *UpdateModel {
	m := &UpdateModel{
		ProjectID: u.ProjectID,
		Title:     u.Title,
		Content:   u.Content,
		Images:    pq.StringArray(u.Images),
	}
	m.FromDomainBaseEntity(u.BaseEntity)
	return m
}

// ImpactMetricModel is the persistence model for reported impact metrics
type ImpactMetricModel struct {
	BaseModel
	ProjectID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	MetricName string          `gorm:"type:varchar(200);not null"`
	Value      decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Unit       string          `gorm:"type:varchar(50);not null"`
	Date       time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ImpactMetricModel) TableName() string {
	return "impact_metrics"
}

// ToDomain converts to the domain entity
func (m *ImpactMetricModel) ToDomain() *project.ImpactMetric {
	return &project.ImpactMetric{
		BaseEntity: m.BaseModel.ToDomain(),
		ProjectID:  m.ProjectID,
		MetricName: m.MetricName,
		Value:      m.Value,
		Unit:       m.Unit,
		Date:       m.Date,
	}
}

// ImpactMetricModelFromDomain creates a model from the domain entity
func ImpactMetricModelFromDomain(im *project.ImpactMetric) *ImpactMetricModel {
	m := &ImpactMetricModel{
		ProjectID:  im.ProjectID,
		MetricName: im.MetricName,
		Value:      im.Value,
		Unit:       im.Unit,
		Date:       im.Date,
	}
	m.FromDomainBaseEntity(im.BaseEntity)
	return m
}
