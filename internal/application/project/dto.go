package project

import (
	"time"

	"github.com/donortrack/backend/internal/domain/project"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateProjectRequest represents a request to create a project
type CreateProjectRequest struct {
	Title        string          `json:"title" binding:"required,min=1,max=200"`
	Description  string          `json:"description" binding:"required"`
	Category     string          `json:"category" binding:"required,max=100"`
	Location     string          `json:"location" binding:"required,max=200"`
	TargetAmount decimal.Decimal `json:"targetAmount"`
	Images       []string        `json:"images" binding:"omitempty,dive,url"`
	StartDate    *time.Time      `json:"startDate"`
	EndDate      *time.Time      `json:"endDate"`
}

// UpdateProjectRequest represents a partial project update. The running
// total is not part of it.
type UpdateProjectRequest struct {
	Title        *string          `json:"title" binding:"omitempty,min=1,max=200"`
	Description  *string          `json:"description"`
	Category     *string          `json:"category" binding:"omitempty,max=100"`
	Location     *string          `json:"location" binding:"omitempty,max=200"`
	TargetAmount *decimal.Decimal `json:"targetAmount"`
	Status       *string          `json:"status" binding:"omitempty,oneof=ACTIVE COMPLETED SUSPENDED"`
	Images       []string         `json:"images" binding:"omitempty,dive,url"`
	StartDate    *time.Time       `json:"startDate"`
	EndDate      *time.Time       `json:"endDate"`
}

// AddUpdateRequest represents a progress post
type AddUpdateRequest struct {
	Title   string   `json:"title" binding:"required,max=200"`
	Content string   `json:"content" binding:"required"`
	Images  []string `json:"images" binding:"omitempty,dive,url"`
}

// AddMilestoneRequest represents a new milestone
type AddMilestoneRequest struct {
	Title        string          `json:"title" binding:"required,max=200"`
	Description  string          `json:"description"`
	TargetAmount decimal.Decimal `json:"targetAmount"`
	TargetDate   time.Time       `json:"targetDate" binding:"required"`
}

// AddMetricRequest represents a measured outcome
type AddMetricRequest struct {
	MetricName string          `json:"metricName" binding:"required,max=100"`
	Value      decimal.Decimal `json:"value"`
	Unit       string          `json:"unit" binding:"required,max=50"`
	Date       *time.Time      `json:"date"`
}

// ListProjectsQuery represents the catalog filters
type ListProjectsQuery struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Category string `form:"category"`
	Status   string `form:"status" binding:"omitempty,oneof=ACTIVE COMPLETED SUSPENDED"`
	Location string `form:"location"`
	Search   string `form:"search" binding:"max=100"`
}

// ProjectResponse represents a project in API responses
type ProjectResponse struct {
	ID            uuid.UUID       `json:"id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Category      string          `json:"category"`
	Location      string          `json:"location"`
	TargetAmount  decimal.Decimal `json:"targetAmount"`
	CurrentAmount decimal.Decimal `json:"currentAmount"`
	Progress      decimal.Decimal `json:"progress"`
	Status        project.Status  `json:"status"`
	NGOID         uuid.UUID       `json:"ngoId"`
	Organization  string          `json:"organization"`
	Images        []string        `json:"images"`
	StartDate     time.Time       `json:"startDate"`
	EndDate       *time.Time      `json:"endDate,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// MilestoneResponse represents a milestone in API responses
type MilestoneResponse struct {
	ID           uuid.UUID       `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description,omitempty"`
	TargetAmount decimal.Decimal `json:"targetAmount"`
	TargetDate   time.Time       `json:"targetDate"`
	Completed    bool            `json:"completed"`
	CompletedAt  *time.Time      `json:"completedAt,omitempty"`
}

// UpdateResponse represents a project update in API responses
type UpdateResponse struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Images    []string  `json:"images"`
	CreatedAt time.Time `json:"createdAt"`
}

// MetricResponse represents an impact metric in API responses
type MetricResponse struct {
	ID         uuid.UUID       `json:"id"`
	MetricName string          `json:"metricName"`
	Value      decimal.Decimal `json:"value"`
	Unit       string          `json:"unit"`
	Date       time.Time       `json:"date"`
}

// ProjectDetailResponse is a project with its children and donation count
type ProjectDetailResponse struct {
	ProjectResponse
	Milestones    []MilestoneResponse `json:"milestones"`
	Updates       []UpdateResponse    `json:"updates"`
	ImpactMetrics []MetricResponse    `json:"impactMetrics"`
	DonationCount int64               `json:"donationCount"`
}

// ToProjectResponse converts a project; org is the owning NGO's display name
func ToProjectResponse(p *project.Project, org string) ProjectResponse {
	images := p.Images
	if images == nil {
		images = make([]string, 0)
	}
	return ProjectResponse{
		ID:            p.ID,
		Title:         p.Title,
		Description:   p.Description,
		Category:      p.Category,
		Location:      p.Location,
		TargetAmount:  p.TargetAmount,
		CurrentAmount: p.CurrentAmount,
		Progress:      p.Progress(),
		Status:        p.Status,
		NGOID:         p.NGOID,
		Organization:  org,
		Images:        images,
		StartDate:     p.StartDate,
		EndDate:       p.EndDate,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// ToMilestoneResponse converts a milestone
func ToMilestoneResponse(m *project.Milestone) MilestoneResponse {
	return MilestoneResponse{
		ID:           m.ID,
		Title:        m.Title,
		Description:  m.Description,
		TargetAmount: m.TargetAmount,
		TargetDate:   m.TargetDate,
		Completed:    m.Completed,
		CompletedAt:  m.CompletedAt,
	}
}

// ToUpdateResponse converts a project update
func ToUpdateResponse(u *project.Update) UpdateResponse {
	images := u.Images
	if images == nil {
		images = make([]string, 0)
	}
	return UpdateResponse{ID: u.ID, Title: u.Title, Content: u.Content, Images: images, CreatedAt: u.CreatedAt}
}

// ToMetricResponse converts an impact metric
func ToMetricResponse(m *project.ImpactMetric) MetricResponse {
	return MetricResponse{ID: m.ID, MetricName: m.MetricName, Value: m.Value, Unit: m.Unit, Date: m.Date}
}
