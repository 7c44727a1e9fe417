package donation

import (
	"context"
	"fmt"

	"github.com/donortrack/backend/internal/domain/donation"
	"github.com/donortrack/backend/internal/domain/identity"
	"github.com/donortrack/backend/internal/domain/project"
	"github.com/donortrack/backend/internal/domain/shared"
	"github.com/donortrack/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultListLimit   = 10
	defaultRecentLimit = 5
)

// LedgerService creates donations and moves them through their lifecycle,
// keeping each project's running total in step.
type LedgerService struct {
	txScope          TransactionScope
	donationRepo     donation.DonationRepository
	projectRepo      project.ProjectRepository
	userRepo         identity.UserRepository
	eventPublisher   shared.EventPublisher
	reverseOnFailure bool
	logger           *zap.Logger
}

// LedgerServiceConfig holds dependencies for the ledger service
type LedgerServiceConfig struct {
	TxScope      TransactionScope
	DonationRepo donation.DonationRepository
	ProjectRepo  project.ProjectRepository
	// UserRepo resolves organization names for listings; optional
	UserRepo       identity.UserRepository
	EventPublisher shared.EventPublisher
	// ReverseOnFailure also reverses the creation-time increment when a
	// pending donation fails. Refunds always reverse it.
	ReverseOnFailure bool
	Logger           *zap.Logger
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(config LedgerServiceConfig) *LedgerService {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerService{
		txScope:          config.TxScope,
		donationRepo:     config.DonationRepo,
		projectRepo:      config.ProjectRepo,
		userRepo:         config.UserRepo,
		eventPublisher:   config.EventPublisher,
		reverseOnFailure: config.ReverseOnFailure,
		logger:           logger,
	}
}

// CreateDonation records a PENDING donation and optimistically adds its
// amount to the project's running total in the same transaction.
func (s *LedgerService) CreateDonation(ctx context.Context, input CreateDonationInput) (*donation.Donation, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "create_donation",
		telemetry.SpanAttrProjectID, input.ProjectID.String(),
		telemetry.SpanAttrAmount, input.Amount.String())
	defer span.End()

	d, err := donation.NewDonation(input.DonorID, input.ProjectID, input.Amount, input.Currency, input.PaymentMethod, input.Notes)
	if err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos LedgerRepositories) error {
		p, err := repos.ProjectRepo().FindByID(ctx, input.ProjectID)
		if err != nil {
			return fmt.Errorf("failed to load project: %w", err)
		}
		if p == nil {
			return shared.NewNotFoundError("Project")
		}
		if err := repos.DonationRepo().Create(ctx, d); err != nil {
			return fmt.Errorf("failed to create donation: %w", err)
		}
		if err := repos.ProjectRepo().AdjustCurrentAmount(ctx, p.ID, d.Amount); err != nil {
			return fmt.Errorf("failed to increment project total: %w", err)
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrDonationID, d.ID.String())

	s.logger.Info("Donation created",
		zap.String("donation_id", d.ID.String()),
		zap.String("project_id", input.ProjectID.String()),
		zap.String("amount", d.Amount.String()),
		zap.String("currency", d.Currency))

	s.publish(ctx, d)
	return d, nil
}

// UpdateDonationStatus applies a donor-requested status change. Donations the
// requester does not own are reported as not found.
func (s *LedgerService) UpdateDonationStatus(ctx context.Context, input UpdateStatusInput) (*donation.Donation, error) {
	if input.DonationID == uuid.Nil {
		return nil, shared.NewValidationError("Donation ID is required")
	}
	target, err := donation.ParseStatus(input.Status)
	if err != nil {
		return nil, err
	}

	var d *donation.Donation
	err = s.txScope.Execute(ctx, func(repos LedgerRepositories) error {
		found, err := repos.DonationRepo().FindByID(ctx, input.DonationID)
		if err != nil {
			return fmt.Errorf("failed to load donation: %w", err)
		}
		if found == nil || !found.IsOwnedBy(input.RequesterID) {
			return shared.NewNotFoundError("Donation")
		}
		d = found
		return s.applyTransition(ctx, repos, d, target, input.Reason, "")
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, d)
	return d, nil
}

// settle moves a PENDING donation to target. Donations that already left
// PENDING are returned untouched with applied=false.
func (s *LedgerService) settle(ctx context.Context, id uuid.UUID, target donation.Status, transactionID, reason string) (d *donation.Donation, applied bool, err error) {
	err = s.txScope.Execute(ctx, func(repos LedgerRepositories) error {
		found, err := repos.DonationRepo().FindByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load donation: %w", err)
		}
		if found == nil {
			return shared.NewNotFoundError("Donation")
		}
		d = found
		if d.Status != donation.StatusPending {
			return nil
		}
		applied = true
		return s.applyTransition(ctx, repos, d, target, reason, transactionID)
	})
	if err != nil {
		return nil, false, err
	}
	if applied {
		s.publish(ctx, d)
	}
	return d, applied, nil
}

// applyTransition changes status, persists it and reverses the project
// increment when the new status calls for it.
func (s *LedgerService) applyTransition(ctx context.Context, repos LedgerRepositories, d *donation.Donation, target donation.Status, reason, transactionID string) error {
	from := d.Status
	var err error
	if target == donation.StatusCompleted {
		err = d.Complete(transactionID)
	} else {
		err = d.TransitionTo(target, reason)
	}
	if err != nil {
		return err
	}

	if err := repos.DonationRepo().Save(ctx, d); err != nil {
		return err
	}

	if !s.reverses(from, target) {
		return nil
	}
	if !d.HasProject() {
		s.logger.Warn("Skipping project adjustment for donation without project",
			zap.String("donation_id", d.ID.String()),
			zap.String("status", string(target)))
		return nil
	}
	if err := repos.ProjectRepo().AdjustCurrentAmount(ctx, *d.ProjectID, d.Amount.Neg()); err != nil {
		return fmt.Errorf("failed to decrement project total: %w", err)
	}
	return nil
}

func (s *LedgerService) reverses(from, to donation.Status) bool {
	switch {
	case from == donation.StatusCompleted && to == donation.StatusRefunded:
		return true
	case from == donation.StatusPending && to == donation.StatusFailed:
		return s.reverseOnFailure
	}
	return false
}

// GetDonation returns one of the requester's donations
func (s *LedgerService) GetDonation(ctx context.Context, requesterID, id uuid.UUID) (*DonationView, error) {
	d, err := s.donationRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load donation: %w", err)
	}
	if d == nil || !d.IsOwnedBy(requesterID) {
		return nil, shared.NewNotFoundError("Donation")
	}
	views, err := s.toViews(ctx, []*donation.Donation{d})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ListDonations pages through a donor's donations, newest first
func (s *LedgerService) ListDonations(ctx context.Context, input ListInput) (shared.Paginated[DonationView], error) {
	f := shared.Filter{Page: input.Page, PageSize: input.Limit}.Normalize(defaultListLimit)
	filter := donation.ListFilter{Page: f.Page, PageSize: f.PageSize, ProjectID: input.ProjectID}
	if input.Status != "" {
		status, err := donation.ParseStatus(input.Status)
		if err != nil {
			return shared.Paginated[DonationView]{}, err
		}
		filter.Status = &status
	}

	items, total, err := s.donationRepo.FindByDonor(ctx, input.DonorID, filter)
	if err != nil {
		return shared.Paginated[DonationView]{}, fmt.Errorf("failed to list donations: %w", err)
	}
	views, err := s.toViews(ctx, items)
	if err != nil {
		return shared.Paginated[DonationView]{}, err
	}
	return shared.NewPaginated(views, total, f.Page, f.PageSize), nil
}

// RecentForProject returns the latest completed donations to a project
func (s *LedgerService) RecentForProject(ctx context.Context, projectID uuid.UUID, limit int) ([]DonationView, error) {
	if limit <= 0 || limit > 50 {
		limit = defaultRecentLimit
	}
	items, err := s.donationRepo.FindRecentCompletedByProject(ctx, projectID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent donations: %w", err)
	}
	return s.toViews(ctx, items)
}

// View decorates a single donation with its project summary
func (s *LedgerService) View(ctx context.Context, d *donation.Donation) (DonationView, error) {
	views, err := s.toViews(ctx, []*donation.Donation{d})
	if err != nil {
		return DonationView{}, err
	}
	return views[0], nil
}

func (s *LedgerService) toViews(ctx context.Context, items []*donation.Donation) ([]DonationView, error) {
	ids := make([]uuid.UUID, 0, len(items))
	seen := make(map[uuid.UUID]bool)
	for _, d := range items {
		if d.HasProject() && !seen[*d.ProjectID] {
			seen[*d.ProjectID] = true
			ids = append(ids, *d.ProjectID)
		}
	}

	refs := make(map[uuid.UUID]*ProjectRef, len(ids))
	if len(ids) > 0 {
		projects, err := s.projectRepo.FindByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to load projects: %w", err)
		}
		ngoIDs := make([]uuid.UUID, 0, len(projects))
		for _, p := range projects {
			ngoIDs = append(ngoIDs, p.NGOID)
		}
		names := map[uuid.UUID]string{}
		if s.userRepo != nil && len(ngoIDs) > 0 {
			if names, err = s.userRepo.NamesByIDs(ctx, ngoIDs); err != nil {
				return nil, fmt.Errorf("failed to load organizations: %w", err)
			}
		}
		for _, p := range projects {
			org, ok := names[p.NGOID]
			if !ok || org == "" {
				org = UnknownOrganization
			}
			refs[p.ID] = &ProjectRef{ID: p.ID, Title: p.Title, Organization: org}
		}
	}

	views := make([]DonationView, 0, len(items))
	for _, d := range items {
		var ref *ProjectRef
		if d.HasProject() {
			ref = refs[*d.ProjectID]
		}
		views = append(views, ToDonationView(d, ref))
	}
	return views, nil
}

func (s *LedgerService) publish(ctx context.Context, d *donation.Donation) {
	events := d.PullDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		// the ledger change is already committed
		s.logger.Warn("Failed to publish donation events",
			zap.String("donation_id", d.ID.String()),
			zap.Error(err))
	}
}
