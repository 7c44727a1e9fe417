package report

import (
	"sort"
	"strings"
	"time"

	"github.com/donortrack/backend/internal/domain/donation"
	"github.com/donortrack/backend/internal/domain/project"
	"github.com/donortrack/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Type selects which report shape is built
type Type string

const (
	TypeDonation  Type = "donation"
	TypeFinancial Type = "financial"
	TypeImpact    Type = "impact"
)

// UnknownCategory labels donations whose project no longer exists
const UnknownCategory = "Unknown"

// monthKeyLayout formats the YYYY-MM grouping key
const monthKeyLayout = "2006-01"

// ParseType converts a raw report type, defaulting to donation when empty
func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case "":
		return TypeDonation, nil
	case TypeDonation, TypeFinancial, TypeImpact:
		return t, nil
	}
	return "", shared.NewValidationError("Invalid report type %q", s)
}

// Report is a derived, read-only view over a donor's completed donations
type Report interface {
	Type() Type
	// Table returns the detail records for tabular export
	Table() Table
}

// DateRange is the requested reporting window. Nil bounds are open.
type DateRange struct {
	Start *time.Time `json:"startDate"`
	End   *time.Time `json:"endDate"`
}

// NewDateRange validates that start is not after end
func NewDateRange(start, end *time.Time) (DateRange, error) {
	if start != nil && end != nil && start.After(*end) {
		return DateRange{}, shared.NewValidationError("Start date must not be after end date")
	}
	return DateRange{Start: start, End: end}, nil
}

// Bounds resolves open bounds: start defaults to the Unix epoch, end to now
func (r DateRange) Bounds(now time.Time) (time.Time, time.Time) {
	start := time.Unix(0, 0).UTC()
	end := now
	if r.Start != nil {
		start = *r.Start
	}
	if r.End != nil {
		end = *r.End
	}
	return start, end
}

// Input is everything a builder needs. Donations may contain rows outside
// the range or with other statuses; builders filter them again.
type Input struct {
	DonorID   uuid.UUID
	Range     DateRange
	Now       time.Time
	Donations []*donation.Donation
	// Projects indexes the referenced projects that still exist
	Projects map[uuid.UUID]*project.Project
	// Metrics holds each project's impact metrics; only impact reports read it
	Metrics map[uuid.UUID][]*project.ImpactMetric
}

// completed returns the donor's COMPLETED donations inside the range, oldest first
func (in Input) completed() []*donation.Donation {
	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}
	start, end := in.Range.Bounds(now)

	out := make([]*donation.Donation, 0, len(in.Donations))
	for _, d := range in.Donations {
		if d == nil || d.Status != donation.StatusCompleted {
			continue
		}
		if in.DonorID != uuid.Nil && d.DonorID != in.DonorID {
			continue
		}
		if d.CreatedAt.Before(start) || d.CreatedAt.After(end) {
			continue
		}
		out = append(out, d)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (in Input) project(d *donation.Donation) *project.Project {
	if !d.HasProject() || in.Projects == nil {
		return nil
	}
	return in.Projects[*d.ProjectID]
}

func monthKey(t time.Time) string {
	return t.UTC().Format(monthKeyLayout)
}

// average divides total by count rounding half away from zero to cents, 0 when count is 0
func average(total decimal.Decimal, count int) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return total.DivRound(decimal.NewFromInt(int64(count)), 2)
}
