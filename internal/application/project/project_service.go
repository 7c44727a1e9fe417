package project

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/donortrack/backend/internal/domain/identity"
	"github.com/donortrack/backend/internal/domain/project"
	"github.com/donortrack/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultPageSize     = 12
	detailUpdatesLimit  = 5
	detailMetricsLimit  = 10
	defaultRelatedLimit = 3
	unknownOrganization = "Unknown Organization"
)

// DonationCounter counts donations referencing a project
type DonationCounter interface {
	CountByProject(ctx context.Context, projectID uuid.UUID) (int64, error)
}

// ProjectService handles the project catalog and NGO project management
type ProjectService struct {
	projectRepo    project.ProjectRepository
	userRepo       identity.UserRepository
	donations      DonationCounter
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// ProjectServiceConfig holds dependencies for the project service
type ProjectServiceConfig struct {
	ProjectRepo    project.ProjectRepository
	UserRepo       identity.UserRepository
	Donations      DonationCounter
	EventPublisher shared.EventPublisher
	Logger         *zap.Logger
}

// NewProjectService creates a new ProjectService
func NewProjectService(config ProjectServiceConfig) *ProjectService {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProjectService{
		projectRepo:    config.ProjectRepo,
		userRepo:       config.UserRepo,
		donations:      config.Donations,
		eventPublisher: config.EventPublisher,
		logger:         logger,
	}
}

// List returns a page of projects, newest first
func (s *ProjectService) List(ctx context.Context, query ListProjectsQuery) (shared.Paginated[ProjectResponse], error) {
	f := shared.Filter{Page: query.Page, PageSize: query.Limit}.Normalize(defaultPageSize)
	filter := project.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		Category: strings.TrimSpace(query.Category),
		Location: strings.TrimSpace(query.Location),
		Search:   strings.TrimSpace(query.Search),
	}
	if filter.Category != "" {
		filter.Category = project.NormalizeCategory(filter.Category)
	}
	if query.Status != "" {
		status := project.Status(strings.ToUpper(query.Status))
		if !status.IsValid() {
			return shared.Paginated[ProjectResponse]{}, shared.NewValidationError("Invalid project status %q", query.Status)
		}
		filter.Status = &status
	}

	items, total, err := s.projectRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[ProjectResponse]{}, fmt.Errorf("failed to list projects: %w", err)
	}
	responses, err := s.toResponses(ctx, items)
	if err != nil {
		return shared.Paginated[ProjectResponse]{}, err
	}
	return shared.NewPaginated(responses, total, f.Page, f.PageSize), nil
}

// GetByID returns a project with milestones, recent updates and metrics
func (s *ProjectService) GetByID(ctx context.Context, id uuid.UUID) (*ProjectDetailResponse, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	milestones, err := s.projectRepo.Milestones(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load milestones: %w", err)
	}
	updates, err := s.projectRepo.LatestUpdates(ctx, id, detailUpdatesLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load updates: %w", err)
	}
	metrics, err := s.projectRepo.LatestImpactMetrics(ctx, id, detailMetricsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load impact metrics: %w", err)
	}
	var count int64
	if s.donations != nil {
		if count, err = s.donations.CountByProject(ctx, id); err != nil {
			return nil, fmt.Errorf("failed to count donations: %w", err)
		}
	}

	responses, err := s.toResponses(ctx, []*project.Project{p})
	if err != nil {
		return nil, err
	}
	detail := &ProjectDetailResponse{
		ProjectResponse: responses[0],
		Milestones:      make([]MilestoneResponse, 0, len(milestones)),
		Updates:         make([]UpdateResponse, 0, len(updates)),
		ImpactMetrics:   make([]MetricResponse, 0, len(metrics)),
		DonationCount:   count,
	}
	for _, m := range milestones {
		detail.Milestones = append(detail.Milestones, ToMilestoneResponse(m))
	}
	for _, u := range updates {
		detail.Updates = append(detail.Updates, ToUpdateResponse(u))
	}
	for _, m := range metrics {
		detail.ImpactMetrics = append(detail.ImpactMetrics, ToMetricResponse(m))
	}
	return detail, nil
}

// Related returns other active projects in the same category
func (s *ProjectService) Related(ctx context.Context, id uuid.UUID, limit int) ([]ProjectResponse, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 20 {
		limit = defaultRelatedLimit
	}
	items, err := s.projectRepo.FindRelated(ctx, p, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load related projects: %w", err)
	}
	return s.toResponses(ctx, items)
}

// Create creates an ACTIVE project owned by the calling NGO admin
func (s *ProjectService) Create(ctx context.Context, ngoID uuid.UUID, req CreateProjectRequest) (*ProjectResponse, error) {
	start := time.Now()
	if req.StartDate != nil {
		start = *req.StartDate
	}
	p, err := project.NewProject(ngoID, req.Title, req.Description, req.Category, req.Location, req.TargetAmount, start, req.EndDate)
	if err != nil {
		return nil, err
	}
	if req.Images != nil {
		p.Images = req.Images
	}

	if err := s.projectRepo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	s.publish(ctx, p)

	s.logger.Info("Project created",
		zap.String("project_id", p.ID.String()),
		zap.String("ngo_id", ngoID.String()),
		zap.String("category", p.Category))
	return s.response(ctx, p)
}

// Update edits a project the NGO admin owns
func (s *ProjectService) Update(ctx context.Context, ngoID, id uuid.UUID, req UpdateProjectRequest) (*ProjectResponse, error) {
	p, err := s.findOwned(ctx, ngoID, id)
	if err != nil {
		return nil, err
	}

	details := project.Details{
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		Location:     req.Location,
		TargetAmount: req.TargetAmount,
		Images:       req.Images,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
	}
	if req.Status != nil {
		status := project.Status(strings.ToUpper(*req.Status))
		details.Status = &status
	}
	if err := p.Update(details); err != nil {
		return nil, err
	}
	if err := s.projectRepo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	return s.response(ctx, p)
}

// AddUpdate posts a progress update to an owned project
func (s *ProjectService) AddUpdate(ctx context.Context, ngoID, id uuid.UUID, req AddUpdateRequest) (*UpdateResponse, error) {
	if _, err := s.findOwned(ctx, ngoID, id); err != nil {
		return nil, err
	}
	u, err := project.NewUpdate(id, req.Title, req.Content, req.Images)
	if err != nil {
		return nil, err
	}
	if err := s.projectRepo.AddUpdate(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to add project update: %w", err)
	}
	resp := ToUpdateResponse(u)
	return &resp, nil
}

// AddMilestone adds a milestone to an owned project
func (s *ProjectService) AddMilestone(ctx context.Context, ngoID, id uuid.UUID, req AddMilestoneRequest) (*MilestoneResponse, error) {
	if _, err := s.findOwned(ctx, ngoID, id); err != nil {
		return nil, err
	}
	m, err := project.NewMilestone(id, req.Title, req.Description, req.TargetAmount, req.TargetDate)
	if err != nil {
		return nil, err
	}
	if err := s.projectRepo.AddMilestone(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to add milestone: %w", err)
	}
	resp := ToMilestoneResponse(m)
	return &resp, nil
}

// AddImpactMetric records a measured outcome for an owned project
func (s *ProjectService) AddImpactMetric(ctx context.Context, ngoID, id uuid.UUID, req AddMetricRequest) (*MetricResponse, error) {
	if _, err := s.findOwned(ctx, ngoID, id); err != nil {
		return nil, err
	}
	var date time.Time
	if req.Date != nil {
		date = *req.Date
	}
	m, err := project.NewImpactMetric(id, req.MetricName, req.Value, req.Unit, date)
	if err != nil {
		return nil, err
	}
	if err := s.projectRepo.AddImpactMetric(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to add impact metric: %w", err)
	}
	resp := ToMetricResponse(m)
	return &resp, nil
}

func (s *ProjectService) find(ctx context.Context, id uuid.UUID) (*project.Project, error) {
	p, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	if p == nil {
		return nil, shared.NewNotFoundError("Project")
	}
	return p, nil
}

// findOwned hides other NGOs' projects behind the same 404 as missing ones
func (s *ProjectService) findOwned(ctx context.Context, ngoID, id uuid.UUID) (*project.Project, error) {
	p, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	if p == nil || !p.IsOwnedBy(ngoID) {
		return nil, shared.NewDomainError(shared.CodeNotFound, "Project not found or access denied")
	}
	return p, nil
}

func (s *ProjectService) response(ctx context.Context, p *project.Project) (*ProjectResponse, error) {
	responses, err := s.toResponses(ctx, []*project.Project{p})
	if err != nil {
		return nil, err
	}
	return &responses[0], nil
}

func (s *ProjectService) toResponses(ctx context.Context, items []*project.Project) ([]ProjectResponse, error) {
	names := map[uuid.UUID]string{}
	if s.userRepo != nil && len(items) > 0 {
		ids := make([]uuid.UUID, 0, len(items))
		seen := make(map[uuid.UUID]bool)
		for _, p := range items {
			if !seen[p.NGOID] {
				seen[p.NGOID] = true
				ids = append(ids, p.NGOID)
			}
		}
		var err error
		if names, err = s.userRepo.NamesByIDs(ctx, ids); err != nil {
			return nil, fmt.Errorf("failed to load organizations: %w", err)
		}
	}

	out := make([]ProjectResponse, 0, len(items))
	for _, p := range items {
		org, ok := names[p.NGOID]
		if !ok || org == "" {
			org = unknownOrganization
		}
		out = append(out, ToProjectResponse(p, org))
	}
	return out, nil
}

func (s *ProjectService) publish(ctx context.Context, p *project.Project) {
	events := p.PullDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish project events",
			zap.String("project_id", p.ID.String()),
			zap.Error(err))
	}
}
