package donation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/donortrack/backend/internal/domain/donation"
	"github.com/donortrack/backend/internal/domain/shared"
	"github.com/donortrack/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SettlementService applies payment-side settlement notices. Notices are
// deduplicated by donation and outcome so redeliveries are harmless.
type SettlementService struct {
	ledger *LedgerService
	store  shared.IdempotencyStore
	ttl    time.Duration
	logger *zap.Logger
}

// SettlementServiceConfig holds dependencies for the settlement service
type SettlementServiceConfig struct {
	Ledger *LedgerService
	Store  shared.IdempotencyStore
	// TTL bounds how long a processed notice is remembered
	TTL    time.Duration
	Logger *zap.Logger
}

// NewSettlementService creates a new SettlementService
func NewSettlementService(config SettlementServiceConfig) *SettlementService {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := config.TTL
	if ttl <= 0 {
		ttl = shared.DefaultIdempotencyTTL
	}
	return &SettlementService{
		ledger: config.Ledger,
		store:  config.Store,
		ttl:    ttl,
		logger: logger,
	}
}

// SettlementKey is the idempotency key of a notice
func SettlementKey(donationID uuid.UUID, outcome donation.Status) string {
	return fmt.Sprintf("settlement:%s:%s", donationID, outcome)
}

// ParseOutcome accepts COMPLETED or FAILED
func ParseOutcome(s string) (donation.Status, error) {
	outcome := donation.Status(strings.ToUpper(strings.TrimSpace(s)))
	if outcome != donation.StatusCompleted && outcome != donation.StatusFailed {
		return "", shared.NewValidationError("Settlement outcome must be COMPLETED or FAILED, got %q", s)
	}
	return outcome, nil
}

// SettleDonation completes or fails a pending donation. A donation that has
// already left PENDING, or a notice seen before, is a no-op reported with
// AlreadyProcessed rather than an error.
func (s *SettlementService) SettleDonation(ctx context.Context, notice SettlementNotice) (*SettlementResult, error) {
	if notice.DonationID == uuid.Nil {
		return nil, shared.NewValidationError("Donation ID is required")
	}
	outcome, err := ParseOutcome(notice.Outcome)
	if err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "settlement", "settle_donation",
		telemetry.SpanAttrDonationID, notice.DonationID.String(),
		telemetry.SpanAttrOutcome, string(outcome))
	defer span.End()

	key := SettlementKey(notice.DonationID, outcome)
	fresh, err := s.store.MarkProcessed(ctx, key, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to check settlement idempotency: %w", err)
	}
	if !fresh {
		s.logger.Info("Settlement notice already processed (idempotency check)",
			zap.String("idempotency_key", key))
		return &SettlementResult{AlreadyProcessed: true}, nil
	}

	d, applied, err := s.ledger.settle(ctx, notice.DonationID, outcome, notice.TransactionID, notice.Reason)
	if err != nil {
		// Release so the payment side can retry
		if relErr := s.store.Release(ctx, key); relErr != nil {
			s.logger.Warn("Failed to release settlement key",
				zap.String("idempotency_key", key),
				zap.Error(relErr))
		}
		telemetry.RecordError(span, err)
		s.logger.Error("Failed to settle donation",
			zap.String("donation_id", notice.DonationID.String()),
			zap.String("outcome", string(outcome)),
			zap.Error(err))
		return nil, err
	}

	if !applied {
		telemetry.AddEvent(span, "already_settled", telemetry.SpanAttrStatus, string(d.Status))
		s.logger.Info("Donation already settled",
			zap.String("donation_id", d.ID.String()),
			zap.String("status", string(d.Status)),
			zap.String("outcome", string(outcome)))
		return &SettlementResult{Donation: d, AlreadyProcessed: true}, nil
	}

	s.logger.Info("Donation settled",
		zap.String("donation_id", d.ID.String()),
		zap.String("status", string(d.Status)),
		zap.String("transaction_id", d.TransactionID))
	return &SettlementResult{Donation: d}, nil
}
