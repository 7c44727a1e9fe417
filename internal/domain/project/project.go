package project

import (
	"strings"
	"time"

	"github.com/donortrack/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
)

// Status represents the status of a project
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
	StatusSuspended Status = "SUSPENDED"
)

// IsValid checks if the status is a known value
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusCompleted, StatusSuspended:
		return true
	}
	return false
}

var hundred = decimal.NewFromInt(100)

// Project is the aggregate root for a fundraising project owned by an NGO.
// CurrentAmount is a running counter maintained by the donation ledger and is
// never recomputed from donations.
type Project struct {
	shared.BaseAggregateRoot
	Title         string
	Description   string
	Category      string
	Location      string
	TargetAmount  decimal.Decimal
	CurrentAmount decimal.Decimal
	Status        Status
	NGOID         uuid.UUID
	Images        []string
	StartDate     time.Time
	EndDate       *time.Time
}

// NewProject creates an ACTIVE project with a zero running total
func NewProject(ngoID uuid.UUID, title, description, category, location string, target decimal.Decimal, start time.Time, end *time.Time) (*Project, error) {
	if ngoID == uuid.Nil {
		return nil, shared.NewValidationError("NGO is required")
	}
	p := &Project{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CurrentAmount:     decimal.Zero,
		Status:            StatusActive,
		NGOID:             ngoID,
		Images:            make([]string, 0),
	}
	if start.IsZero() {
		start = time.Now()
	}
	if err := p.applyDetails(title, description, category, location, target, start, end); err != nil {
		return nil, err
	}

	p.AddDomainEvent(NewProjectCreatedEvent(p))
	return p, nil
}

// Details carries the editable fields of a project. Nil means unchanged.
type Details struct {
	Title        *string
	Description  *string
	Category     *string
	Location     *string
	TargetAmount *decimal.Decimal
	Status       *Status
	Images       []string
	StartDate    *time.Time
	EndDate      *time.Time
}

// Update applies owner edits. The running total is not editable.
func (p *Project) Update(d Details) error {
	title, desc, cat, loc := p.Title, p.Description, p.Category, p.Location
	target, start, end := p.TargetAmount, p.StartDate, p.EndDate
	if d.Title != nil {
		title = *d.Title
	}
	if d.Description != nil {
		desc = *d.Description
	}
	if d.Category != nil {
		cat = *d.Category
	}
	if d.Location != nil {
		loc = *d.Location
	}
	if d.TargetAmount != nil {
		target = *d.TargetAmount
	}
	if d.StartDate != nil {
		start = *d.StartDate
	}
	if d.EndDate != nil {
		end = d.EndDate
	}
	if d.Status != nil && !d.Status.IsValid() {
		return shared.NewValidationError("Invalid project status %q", *d.Status)
	}

	if err := p.applyDetails(title, desc, cat, loc, target, start, end); err != nil {
		return err
	}
	if d.Status != nil {
		p.Status = *d.Status
	}
	if d.Images != nil {
		p.Images = d.Images
	}
	p.MarkModified()
	return nil
}

func (p *Project) applyDetails(title, description, category, location string, target decimal.Decimal, start time.Time, end *time.Time) error {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	location = strings.TrimSpace(location)
	category = NormalizeCategory(category)

	switch {
	case title == "":
		return shared.NewValidationError("Title is required")
	case len(title) > 200:
		return shared.NewValidationError("Title cannot exceed 200 characters")
	case description == "":
		return shared.NewValidationError("Description is required")
	case category == "":
		return shared.NewValidationError("Category is required")
	case location == "":
		return shared.NewValidationError("Location is required")
	case !target.IsPositive():
		return shared.NewValidationError("Target amount must be greater than zero")
	}
	if end != nil && end.Before(start) {
		return shared.NewValidationError("End date cannot be before start date")
	}

	p.Title = title
	p.Description = description
	p.Category = category
	p.Location = location
	p.TargetAmount = target
	p.StartDate = start
	p.EndDate = end
	return nil
}

// Progress returns the funded percentage capped at 100, 0 when there is no target
func (p *Project) Progress() decimal.Decimal {
	if !p.TargetAmount.IsPositive() {
		return decimal.Zero
	}
	pct := p.CurrentAmount.Div(p.TargetAmount).Mul(hundred).Round(2)
	if pct.GreaterThan(hundred) {
		return hundred
	}
	if pct.IsNegative() {
		return decimal.Zero
	}
	return pct
}

// IsOwnedBy reports whether the NGO admin owns this project
func (p *Project) IsOwnedBy(ngoID uuid.UUID) bool {
	return p.NGOID == ngoID
}

// NormalizeCategory trims and collapses whitespace. The label keeps the
// casing it was entered with.
func NormalizeCategory(category string) string {
	return strings.Join(strings.Fields(category), " ")
}

// CategoryKey is the case-folded grouping key of a category label, so that
// "health" and "Health" fall in the same bucket.
func CategoryKey(category string) string {
	// Casers carry state and must not be shared across goroutines.
	return cases.Fold().String(NormalizeCategory(category))
}

// SameCategory reports whether two labels group together
func SameCategory(a, b string) bool {
	return CategoryKey(a) == CategoryKey(b)
}
