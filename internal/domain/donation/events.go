package donation

import (
	"github.com/donortrack/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant for Donation
const AggregateTypeDonation = "Donation"

// Donation domain event types
const (
	EventTypeDonationCreated   = "DonationCreated"
	EventTypeDonationCompleted = "DonationCompleted"
	EventTypeDonationFailed    = "DonationFailed"
	EventTypeDonationRefunded  = "DonationRefunded"
)

// DonationCreatedEvent is published when a donation is recorded
type DonationCreatedEvent struct {
	shared.BaseDomainEvent
	DonorID   uuid.UUID       `json:"donor_id"`
	ProjectID *uuid.UUID      `json:"project_id,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
}

// NewDonationCreatedEvent creates a new DonationCreatedEvent
func NewDonationCreatedEvent(d *Donation) *DonationCreatedEvent {
	return &DonationCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDonationCreated, AggregateTypeDonation, d.ID),
		DonorID:         d.DonorID,
		ProjectID:       d.ProjectID,
		Amount:          d.Amount,
		Currency:        d.Currency,
	}
}

// DonationCompletedEvent is published when a donation is settled
type DonationCompletedEvent struct {
	shared.BaseDomainEvent
	From          Status          `json:"from"`
	Amount        decimal.Decimal `json:"amount"`
	TransactionID string          `json:"transaction_id,omitempty"`
}

// NewDonationCompletedEvent creates a new DonationCompletedEvent
func NewDonationCompletedEvent(d *Donation, from Status) *DonationCompletedEvent {
	return &DonationCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDonationCompleted, AggregateTypeDonation, d.ID),
		From:            from,
		Amount:          d.Amount,
		TransactionID:   d.TransactionID,
	}
}

// DonationFailedEvent is published when settlement fails
type DonationFailedEvent struct {
	shared.BaseDomainEvent
	From   Status          `json:"from"`
	Amount decimal.Decimal `json:"amount"`
	Reason string          `json:"reason,omitempty"`
}

// NewDonationFailedEvent creates a new DonationFailedEvent
func NewDonationFailedEvent(d *Donation, from Status, reason string) *DonationFailedEvent {
	return &DonationFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDonationFailed, AggregateTypeDonation, d.ID),
		From:            from,
		Amount:          d.Amount,
		Reason:          reason,
	}
}

// DonationRefundedEvent is published when a completed donation is refunded
type DonationRefundedEvent struct {
	shared.BaseDomainEvent
	ProjectID *uuid.UUID      `json:"project_id,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	Reason    string          `json:"reason,omitempty"`
}

// NewDonationRefundedEvent creates a new DonationRefundedEvent
func NewDonationRefundedEvent(d *Donation, reason string) *DonationRefundedEvent {
	return &DonationRefundedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDonationRefunded, AggregateTypeDonation, d.ID),
		ProjectID:       d.ProjectID,
		Amount:          d.Amount,
		Reason:          reason,
	}
}
