package donation

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/donortrack/backend/internal/domain/donation"
	"github.com/donortrack/backend/internal/domain/project"
	"github.com/donortrack/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// memoryDonationRepo is an in-memory donation.DonationRepository
type memoryDonationRepo struct {
	mu        sync.Mutex
	donations map[uuid.UUID]donation.Donation
	saveErr   error
}

func newMemoryDonationRepo() *memoryDonationRepo {
	return &memoryDonationRepo{donations: make(map[uuid.UUID]donation.Donation)}
}

func (r *memoryDonationRepo) Create(_ context.Context, d *donation.Donation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.donations[d.ID] = *d
	return nil
}

func (r *memoryDonationRepo) Save(_ context.Context, d *donation.Donation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	stored, ok := r.donations[d.ID]
	if !ok {
		return shared.NewNotFoundError("Donation")
	}
	if stored.Version != d.Version-1 {
		return shared.ErrConcurrentModification
	}
	r.donations[d.ID] = *d
	return nil
}

func (r *memoryDonationRepo) FindByID(_ context.Context, id uuid.UUID) (*donation.Donation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.donations[id]
	if !ok {
		return nil, nil
	}
	d.ClearDomainEvents()
	return &d, nil
}

func (r *memoryDonationRepo) FindByDonor(_ context.Context, donorID uuid.UUID, filter donation.ListFilter) ([]*donation.Donation, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*donation.Donation
	for _, d := range r.donations {
		if d.DonorID != donorID {
			continue
		}
		if filter.Status != nil && d.Status != *filter.Status {
			continue
		}
		if filter.ProjectID != nil && (d.ProjectID == nil || *d.ProjectID != *filter.ProjectID) {
			continue
		}
		d := d
		out = append(out, &d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	total := int64(len(out))
	start := (filter.Page - 1) * filter.PageSize
	if start > len(out) {
		start = len(out)
	}
	end := start + filter.PageSize
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], total, nil
}

func (r *memoryDonationRepo) FindCompletedInRange(_ context.Context, donorID uuid.UUID, start, end time.Time) ([]*donation.Donation, error) {
	return nil, nil
}

func (r *memoryDonationRepo) FindRecentCompletedByProject(_ context.Context, projectID uuid.UUID, limit int) ([]*donation.Donation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*donation.Donation
	for _, d := range r.donations {
		if d.Status == donation.StatusCompleted && d.ProjectID != nil && *d.ProjectID == projectID {
			d := d
			out = append(out, &d)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memoryDonationRepo) CountByProject(_ context.Context, projectID uuid.UUID) (int64, error) {
	return 0, nil
}

func (r *memoryDonationRepo) CompletedTotals(_ context.Context, donorID uuid.UUID) (int64, decimal.Decimal, error) {
	return 0, decimal.Zero, nil
}

// memoryProjectRepo is an in-memory project.ProjectRepository tracking running totals
type memoryProjectRepo struct {
	mu       sync.Mutex
	projects map[uuid.UUID]*project.Project
}

func newMemoryProjectRepo() *memoryProjectRepo {
	return &memoryProjectRepo{projects: make(map[uuid.UUID]*project.Project)}
}

func (r *memoryProjectRepo) add(p *project.Project) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.projects[p.ID] = p
}

func (r *memoryProjectRepo) total(id uuid.UUID) decimal.Decimal {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.projects[id].CurrentAmount
}

func (r *memoryProjectRepo) Create(_ context.Context, p *project.Project) error {
	r.add(p)
	return nil
}

func (r *memoryProjectRepo) Update(_ context.Context, p *project.Project) error {
	r.add(p)
	return nil
}

func (r *memoryProjectRepo) FindByID(_ context.Context, id uuid.UUID) (*project.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *memoryProjectRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]*project.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*project.Project
	for _, id := range ids {
		if p, ok := r.projects[id]; ok {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memoryProjectRepo) FindAll(_ context.Context, _ project.Filter) ([]*project.Project, int64, error) {
	return nil, 0, nil
}

func (r *memoryProjectRepo) FindRelated(_ context.Context, _ *project.Project, _ int) ([]*project.Project, error) {
	return nil, nil
}

func (r *memoryProjectRepo) AdjustCurrentAmount(_ context.Context, id uuid.UUID, delta decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[id]
	if !ok {
		return nil
	}
	p.CurrentAmount = p.CurrentAmount.Add(delta)
	return nil
}

func (r *memoryProjectRepo) CountActiveByNGO(_ context.Context, _ uuid.UUID) (int64, error) {
	return 0, nil
}

func (r *memoryProjectRepo) AddMilestone(_ context.Context, _ *project.Milestone) error { return nil }
func (r *memoryProjectRepo) AddUpdate(_ context.Context, _ *project.Update) error       { return nil }
func (r *memoryProjectRepo) AddImpactMetric(_ context.Context, _ *project.ImpactMetric) error {
	return nil
}

func (r *memoryProjectRepo) Milestones(_ context.Context, _ uuid.UUID) ([]*project.Milestone, error) {
	return nil, nil
}

func (r *memoryProjectRepo) LatestUpdates(_ context.Context, _ uuid.UUID, _ int) ([]*project.Update, error) {
	return nil, nil
}

func (r *memoryProjectRepo) LatestImpactMetrics(_ context.Context, _ uuid.UUID, _ int) ([]*project.ImpactMetric, error) {
	return nil, nil
}

// memoryIdempotencyStore is a minimal shared.IdempotencyStore
type memoryIdempotencyStore struct {
	mu   sync.Mutex
	keys map[string]bool
}

func newMemoryIdempotencyStore() *memoryIdempotencyStore {
	return &memoryIdempotencyStore{keys: make(map[string]bool)}
}

func (s *memoryIdempotencyStore) MarkProcessed(_ context.Context, key string, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.keys[key] {
		return false, nil
	}
	s.keys[key] = true
	return true, nil
}

func (s *memoryIdempotencyStore) IsProcessed(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keys[key], nil
}

func (s *memoryIdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
	return nil
}

func (s *memoryIdempotencyStore) Close() error { return nil }

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}
