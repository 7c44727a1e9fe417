package project

import (
	"github.com/donortrack/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant for Project
const AggregateTypeProject = "Project"

// Project domain event types
const (
	EventTypeProjectCreated = "ProjectCreated"
)

// ProjectCreatedEvent is published when an NGO opens a new project
type ProjectCreatedEvent struct {
	shared.BaseDomainEvent
	NGOID        uuid.UUID       `json:"ngo_id"`
	Title        string          `json:"title"`
	Category     string          `json:"category"`
	TargetAmount decimal.Decimal `json:"target_amount"`
}

// NewProjectCreatedEvent creates a new ProjectCreatedEvent
func NewProjectCreatedEvent(p *Project) *ProjectCreatedEvent {
	return &ProjectCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProjectCreated, AggregateTypeProject, p.ID),
		NGOID:           p.NGOID,
		Title:           p.Title,
		Category:        p.Category,
		TargetAmount:    p.TargetAmount,
	}
}
