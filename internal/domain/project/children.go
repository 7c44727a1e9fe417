package project

import (
	"strings"
	"time"

	"github.com/donortrack/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Milestone is a funding goal along the way to the project target
type Milestone struct {
	shared.BaseEntity
	ProjectID    uuid.UUID
	Title        string
	Description  string
	TargetAmount decimal.Decimal
	TargetDate   time.Time
	Completed    bool
	CompletedAt  *time.Time
}

// NewMilestone creates a pending milestone for a project
func NewMilestone(projectID uuid.UUID, title, description string, target decimal.Decimal, targetDate time.Time) (*Milestone, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, shared.NewValidationError("Milestone title is required")
	}
	if target.IsNegative() {
		return nil, shared.NewValidationError("Milestone target amount cannot be negative")
	}
	if targetDate.IsZero() {
		return nil, shared.NewValidationError("Milestone target date is required")
	}
	return &Milestone{
		BaseEntity:   shared.NewBaseEntity(),
		ProjectID:    projectID,
		Title:        title,
		Description:  strings.TrimSpace(description),
		TargetAmount: target,
		TargetDate:   targetDate,
	}, nil
}

// MarkCompleted flags the milestone as achieved
func (m *Milestone) MarkCompleted(at time.Time) {
	if m.Completed {
		return
	}
	m.Completed = true
	m.CompletedAt = &at
	m.Touch()
}

// Update is a progress post published by the NGO
type Update struct {
	shared.BaseEntity
	ProjectID uuid.UUID
	Title     string
	Content   string
	Images    []string
}

// NewUpdate creates a project update post
func NewUpdate(projectID uuid.UUID, title, content string, images []string) (*Update, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" || content == "" {
		return nil, shared.NewValidationError("Update title and content are required")
	}
	if images == nil {
		images = make([]string, 0)
	}
	return &Update{
		BaseEntity: shared.NewBaseEntity(),
		ProjectID:  projectID,
		Title:      title,
		Content:    content,
		Images:     images,
	}, nil
}

// ImpactMetric is a measured outcome reported by the NGO, e.g. "wells built"
type ImpactMetric struct {
	shared.BaseEntity
	ProjectID  uuid.UUID
	MetricName string
	Value      decimal.Decimal
	Unit       string
	Date       time.Time
}

// NewImpactMetric records a measured outcome
func NewImpactMetric(projectID uuid.UUID, name string, value decimal.Decimal, unit string, date time.Time) (*ImpactMetric, error) {
	name = strings.TrimSpace(name)
	unit = strings.TrimSpace(unit)
	if name == "" || unit == "" {
		return nil, shared.NewValidationError("Metric name and unit are required")
	}
	if value.IsNegative() {
		return nil, shared.NewValidationError("Metric value cannot be negative")
	}
	if date.IsZero() {
		date = time.Now()
	}
	return &ImpactMetric{
		BaseEntity: shared.NewBaseEntity(),
		ProjectID:  projectID,
		MetricName: name,
		Value:      value,
		Unit:       unit,
		Date:       date,
	}, nil
}
