package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	appdonation "github.com/donortrack/backend/internal/application/donation"
	appidentity "github.com/donortrack/backend/internal/application/identity"
	appproject "github.com/donortrack/backend/internal/application/project"
	"github.com/donortrack/backend/internal/domain/donation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	categories     = []string{"Education", "Health", "Environment", "Clean Water", "Food Security"}
	paymentMethods = []string{"card", "paypal", "bank_transfer"}
	metrics        = []struct{ name, unit string }{
		{"People reached", "people"},
		{"Trees planted", "trees"},
		{"Meals served", "meals"},
		{"Class hours", "hours"},
	}
)

type accountService interface {
	Register(ctx context.Context, input appidentity.RegisterInput) (*appidentity.AuthResult, error)
}

type projectService interface {
	Create(ctx context.Context, ngoID uuid.UUID, req appproject.CreateProjectRequest) (*appproject.ProjectResponse, error)
	AddMilestone(ctx context.Context, ngoID, id uuid.UUID, req appproject.AddMilestoneRequest) (*appproject.MilestoneResponse, error)
	AddUpdate(ctx context.Context, ngoID, id uuid.UUID, req appproject.AddUpdateRequest) (*appproject.UpdateResponse, error)
	AddImpactMetric(ctx context.Context, ngoID, id uuid.UUID, req appproject.AddMetricRequest) (*appproject.MetricResponse, error)
}

type ledgerService interface {
	CreateDonation(ctx context.Context, input appdonation.CreateDonationInput) (*donation.Donation, error)
	UpdateDonationStatus(ctx context.Context, input appdonation.UpdateStatusInput) (*donation.Donation, error)
}

type settlementService interface {
	SettleDonation(ctx context.Context, notice appdonation.SettlementNotice) (*appdonation.SettlementResult, error)
}

// SeedOptions sizes the generated data set
type SeedOptions struct {
	Donors            int
	Projects          int
	DonationsPerDonor int
	Password          string
	Seed              uint64
}

// SeedSummary counts what was written. Outstanding is the amount still held
// by projects: pending plus completed donations.
type SeedSummary struct {
	Users       int
	Projects    int
	Donations   int
	ByStatus    map[donation.Status]int
	Outstanding decimal.Decimal
}

// Seeder generates demo data through the application services so every
// ledger invariant holds for the result
type Seeder struct {
	accounts    accountService
	projects    projectService
	ledger      ledgerService
	settlements settlementService
	faker       *gofakeit.Faker
	logger      *zap.Logger
}

func NewSeeder(accounts accountService, projects projectService, ledger ledgerService, settlements settlementService, seed uint64, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{
		accounts:    accounts,
		projects:    projects,
		ledger:      ledger,
		settlements: settlements,
		faker:       gofakeit.New(seed),
		logger:      logger,
	}
}

func (s *Seeder) Run(ctx context.Context, opts SeedOptions) (*SeedSummary, error) {
	summary := &SeedSummary{ByStatus: make(map[donation.Status]int)}

	ngo, err := s.accounts.Register(ctx, appidentity.RegisterInput{
		Name:     s.faker.Company(),
		Email:    "ngo@example.org",
		Password: opts.Password,
		UserType: "ngo",
	})
	if err != nil {
		return nil, fmt.Errorf("register ngo: %w", err)
	}
	summary.Users++

	projectIDs := make([]uuid.UUID, 0, opts.Projects)
	for i := 0; i < opts.Projects; i++ {
		id, err := s.seedProject(ctx, ngo.User.ID)
		if err != nil {
			return nil, err
		}
		projectIDs = append(projectIDs, id)
		summary.Projects++
	}
	if len(projectIDs) == 0 {
		return summary, nil
	}

	for i := 0; i < opts.Donors; i++ {
		donor, err := s.accounts.Register(ctx, appidentity.RegisterInput{
			Name:     s.faker.Name(),
			Email:    fmt.Sprintf("%s.%d@example.org", strings.ToLower(s.faker.FirstName()), i+1),
			Password: opts.Password,
		})
		if err != nil {
			return nil, fmt.Errorf("register donor: %w", err)
		}
		summary.Users++

		for j := 0; j < opts.DonationsPerDonor; j++ {
			projectID := projectIDs[s.faker.Number(0, len(projectIDs)-1)]
			d, err := s.seedDonation(ctx, donor.User.ID, projectID)
			if err != nil {
				return nil, err
			}
			summary.Donations++
			summary.ByStatus[d.Status]++
			if d.Status == donation.StatusPending || d.Status == donation.StatusCompleted {
				summary.Outstanding = summary.Outstanding.Add(d.Amount)
			}
		}
	}

	s.logger.Info("Seed complete",
		zap.Int("users", summary.Users),
		zap.Int("projects", summary.Projects),
		zap.Int("donations", summary.Donations))
	return summary, nil
}

func (s *Seeder) seedProject(ctx context.Context, ngoID uuid.UUID) (uuid.UUID, error) {
	f := s.faker
	start := time.Now().UTC().AddDate(0, -f.Number(1, 12), 0)
	end := start.AddDate(1, 0, 0)
	p, err := s.projects.Create(ctx, ngoID, appproject.CreateProjectRequest{
		Title:        f.ProductName(),
		Description:  f.Paragraph(2, 3, 12, " "),
		Category:     f.RandomString(categories),
		Location:     f.City() + ", " + f.Country(),
		TargetAmount: decimal.NewFromInt(int64(f.Number(50, 1000)) * 100),
		StartDate:    &start,
		EndDate:      &end,
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("create project: %w", err)
	}

	for i := 1; i <= 3; i++ {
		if _, err := s.projects.AddMilestone(ctx, ngoID, p.ID, appproject.AddMilestoneRequest{
			Title:        f.Sentence(4),
			Description:  f.Sentence(10),
			TargetAmount: p.TargetAmount.Mul(decimal.NewFromInt(int64(i))).Div(decimal.NewFromInt(3)).Round(2),
			TargetDate:   start.AddDate(0, 4*i, 0),
		}); err != nil {
			return uuid.Nil, fmt.Errorf("add milestone: %w", err)
		}
	}
	if _, err := s.projects.AddUpdate(ctx, ngoID, p.ID, appproject.AddUpdateRequest{
		Title:   f.Sentence(5),
		Content: f.Paragraph(1, 4, 12, " "),
	}); err != nil {
		return uuid.Nil, fmt.Errorf("add update: %w", err)
	}
	for _, m := range metrics {
		if f.Bool() {
			continue
		}
		if _, err := s.projects.AddImpactMetric(ctx, ngoID, p.ID, appproject.AddMetricRequest{
			MetricName: m.name,
			Value:      decimal.NewFromInt(int64(f.Number(10, 5000))),
			Unit:       m.unit,
		}); err != nil {
			return uuid.Nil, fmt.Errorf("add metric: %w", err)
		}
	}
	return p.ID, nil
}

// seedDonation settles roughly 80% of donations, fails 10% and leaves the
// rest pending; one in ten completed donations is refunded
func (s *Seeder) seedDonation(ctx context.Context, donorID, projectID uuid.UUID) (*donation.Donation, error) {
	f := s.faker
	d, err := s.ledger.CreateDonation(ctx, appdonation.CreateDonationInput{
		DonorID:       donorID,
		ProjectID:     projectID,
		Amount:        decimal.NewFromFloat(f.Float64Range(5, 500)).Round(2),
		Currency:      "USD",
		PaymentMethod: f.RandomString(paymentMethods),
	})
	if err != nil {
		return nil, fmt.Errorf("create donation: %w", err)
	}

	roll := f.Number(1, 100)
	var outcome donation.Status
	switch {
	case roll <= 80:
		outcome = donation.StatusCompleted
	case roll <= 90:
		outcome = donation.StatusFailed
	default:
		return d, nil
	}
	if _, err := s.settlements.SettleDonation(ctx, appdonation.SettlementNotice{
		DonationID:    d.ID,
		Outcome:       string(outcome),
		TransactionID: "txn_" + strings.ReplaceAll(f.UUID(), "-", "")[:16],
	}); err != nil {
		return nil, fmt.Errorf("settle donation: %w", err)
	}
	d.Status = outcome

	if outcome == donation.StatusCompleted && f.Number(1, 10) == 1 {
		refunded, err := s.ledger.UpdateDonationStatus(ctx, appdonation.UpdateStatusInput{
			DonationID:  d.ID,
			RequesterID: donorID,
			Status:      string(donation.StatusRefunded),
			Reason:      "Donor requested refund",
		})
		if err != nil {
			return nil, fmt.Errorf("refund donation: %w", err)
		}
		return refunded, nil
	}
	return d, nil
}
