package report

import (
	"context"
	"fmt"
	"time"

	"github.com/donortrack/backend/internal/domain/donation"
	"github.com/donortrack/backend/internal/domain/project"
	"github.com/donortrack/backend/internal/domain/report"
	"github.com/donortrack/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DonationReader fetches the rows a report aggregates
type DonationReader interface {
	FindCompletedInRange(ctx context.Context, donorID uuid.UUID, start, end time.Time) ([]*donation.Donation, error)
}

// ProjectReader resolves the projects referenced by donations
type ProjectReader interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*project.Project, error)
	ImpactMetricsByProjects(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]*project.ImpactMetric, error)
}

// ReportService loads a donor's donations and hands them to the pure builders
type ReportService struct {
	donations DonationReader
	projects  ProjectReader
	ratios    report.ImpactRatios
	now       func() time.Time
	logger    *zap.Logger
}

// ReportServiceConfig holds dependencies for the report service
type ReportServiceConfig struct {
	Donations DonationReader
	Projects  ProjectReader
	// Ratios overrides the default impact ratios when non-zero
	Ratios *report.ImpactRatios
	// Now is the clock used for open-ended ranges; defaults to time.Now
	Now    func() time.Time
	Logger *zap.Logger
}

// NewReportService creates a new ReportService
func NewReportService(config ReportServiceConfig) *ReportService {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ratios := report.DefaultImpactRatios()
	if config.Ratios != nil {
		ratios = *config.Ratios
	}
	now := config.Now
	if now == nil {
		now = time.Now
	}
	return &ReportService{
		donations: config.Donations,
		projects:  config.Projects,
		ratios:    ratios,
		now:       now,
		logger:    logger,
	}
}

// BuildInput selects the report to build
type BuildInput struct {
	Type    report.Type
	DonorID uuid.UUID
	Range   report.DateRange
}

// BuildReport recomputes a report from the donor's completed donations.
// An empty range yields a zero-valued report, never an error.
func (s *ReportService) BuildReport(ctx context.Context, input BuildInput) (report.Report, error) {
	now := s.now()
	start, end := input.Range.Bounds(now)

	donations, err := s.donations.FindCompletedInRange(ctx, input.DonorID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load donations: %w", err)
	}

	projects, err := s.loadProjects(ctx, donations)
	if err != nil {
		return nil, err
	}

	in := report.Input{
		DonorID:   input.DonorID,
		Range:     input.Range,
		Now:       now,
		Donations: donations,
		Projects:  projects,
	}

	if input.Type == report.TypeImpact && len(projects) > 0 {
		ids := make([]uuid.UUID, 0, len(projects))
		for id := range projects {
			ids = append(ids, id)
		}
		in.Metrics, err = s.projects.ImpactMetricsByProjects(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to load impact metrics: %w", err)
		}
	}

	var r report.Report
	switch input.Type {
	case report.TypeDonation:
		r = report.BuildDonationReport(in)
	case report.TypeFinancial:
		r = report.BuildFinancialReport(in)
	case report.TypeImpact:
		r = report.BuildImpactReport(in, s.ratios)
	default:
		return nil, shared.NewValidationError("Invalid report type %q", input.Type)
	}

	s.logger.Debug("Report built",
		zap.String("type", string(input.Type)),
		zap.String("donor_id", input.DonorID.String()),
		zap.Int("donations", len(donations)))
	return r, nil
}

func (s *ReportService) loadProjects(ctx context.Context, donations []*donation.Donation) (map[uuid.UUID]*project.Project, error) {
	ids := make([]uuid.UUID, 0)
	seen := make(map[uuid.UUID]bool)
	for _, d := range donations {
		if d.HasProject() && !seen[*d.ProjectID] {
			seen[*d.ProjectID] = true
			ids = append(ids, *d.ProjectID)
		}
	}

	out := make(map[uuid.UUID]*project.Project, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	projects, err := s.projects.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load projects: %w", err)
	}
	for _, p := range projects {
		out[p.ID] = p
	}
	return out, nil
}
