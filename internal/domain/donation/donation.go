package donation

import (
	"strings"

	"github.com/donortrack/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a donation
type Status string

const (
	StatusPending   Status = "PENDING"   // Created, awaiting settlement
	StatusCompleted Status = "COMPLETED" // Payment captured
	StatusFailed    Status = "FAILED"    // Payment failed, terminal
	StatusRefunded  Status = "REFUNDED"  // Refunded after completion, terminal
)

// DefaultCurrency is used when a donation is created without one
const DefaultCurrency = "USD"

// MaxAmount is the largest amount a DECIMAL(12,2) ledger column holds
var MaxAmount = decimal.RequireFromString("9999999999.99")

// allowedTransitions is the donation state machine.
var allowedTransitions = map[Status][]Status{
	StatusPending:   {StatusCompleted, StatusFailed},
	StatusCompleted: {StatusRefunded},
}

// ParseStatus converts a raw status label into a Status.
func ParseStatus(s string) (Status, error) {
	status := Status(strings.ToUpper(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", shared.NewValidationError("Invalid donation status %q", s)
	}
	return status, nil
}

// IsValid checks if the status is a known value
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed, StatusRefunded:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is possible
func (s Status) IsTerminal() bool {
	return s == StatusFailed || s == StatusRefunded
}

// CanTransitionTo reports whether the state machine allows s -> target
func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range allowedTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// String returns the status label
func (s Status) String() string {
	return string(s)
}

// Donation is the aggregate root for a single gift to a project.
// ProjectID is nil when the funded project has since been deleted.
type Donation struct {
	shared.BaseAggregateRoot
	Amount        decimal.Decimal
	Currency      string
	DonorID       uuid.UUID
	ProjectID     *uuid.UUID
	PaymentMethod string
	Status        Status
	Notes         string
	TransactionID string
}

// NewDonation creates a PENDING donation after validating its inputs
func NewDonation(donorID uuid.UUID, projectID uuid.UUID, amount decimal.Decimal, currency, paymentMethod, notes string) (*Donation, error) {
	if donorID == uuid.Nil {
		return nil, shared.NewValidationError("Donor is required")
	}
	if projectID == uuid.Nil {
		return nil, shared.NewValidationError("Project is required")
	}
	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}
	paymentMethod = strings.TrimSpace(paymentMethod)
	if paymentMethod == "" {
		return nil, shared.NewValidationError("Payment method is required")
	}
	if len(paymentMethod) > 50 {
		return nil, shared.NewValidationError("Payment method cannot exceed 50 characters")
	}

	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = DefaultCurrency
	}
	if len(currency) != 3 {
		return nil, shared.NewValidationError("Currency must be a 3-letter ISO code")
	}

	pid := projectID
	d := &Donation{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Amount:            amount,
		Currency:          currency,
		DonorID:           donorID,
		ProjectID:         &pid,
		PaymentMethod:     paymentMethod,
		Status:            StatusPending,
		Notes:             strings.TrimSpace(notes),
	}

	d.AddDomainEvent(NewDonationCreatedEvent(d))
	return d, nil
}

// ValidateAmount accepts positive amounts in whole cents up to MaxAmount
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewValidationError("Amount must be greater than zero")
	}
	if !amount.Equal(amount.Truncate(2)) {
		return shared.NewValidationError("Amount cannot have more than 2 decimal places")
	}
	if amount.GreaterThan(MaxAmount) {
		return shared.NewValidationError("Amount cannot exceed %s", MaxAmount.StringFixed(2))
	}
	return nil
}

// IsOwnedBy reports whether the donation belongs to the given donor
func (d *Donation) IsOwnedBy(donorID uuid.UUID) bool {
	return d.DonorID == donorID
}

// HasProject reports whether the donation still references a project
func (d *Donation) HasProject() bool {
	return d.ProjectID != nil && *d.ProjectID != uuid.Nil
}

// TransitionTo moves the donation to target, recording reason into the notes.
func (d *Donation) TransitionTo(target Status, reason string) error {
	if !target.IsValid() {
		return shared.NewValidationError("Invalid donation status %q", target)
	}
	if !d.Status.CanTransitionTo(target) {
		return shared.NewInvalidTransitionError(string(d.Status), string(target))
	}

	from := d.Status
	d.Status = target
	d.appendNote(reason)
	d.MarkModified()

	switch target {
	case StatusCompleted:
		d.AddDomainEvent(NewDonationCompletedEvent(d, from))
	case StatusFailed:
		d.AddDomainEvent(NewDonationFailedEvent(d, from, reason))
	case StatusRefunded:
		d.AddDomainEvent(NewDonationRefundedEvent(d, reason))
	}
	return nil
}

// Complete marks a pending donation as captured
func (d *Donation) Complete(transactionID string) error {
	if !d.Status.CanTransitionTo(StatusCompleted) {
		return shared.NewInvalidTransitionError(string(d.Status), string(StatusCompleted))
	}
	if transactionID != "" {
		d.TransactionID = transactionID
	}
	return d.TransitionTo(StatusCompleted, "")
}

// Fail marks a pending donation as failed
func (d *Donation) Fail(reason string) error {
	return d.TransitionTo(StatusFailed, reason)
}

// Refund reverses a completed donation
func (d *Donation) Refund(reason string) error {
	return d.TransitionTo(StatusRefunded, reason)
}

func (d *Donation) appendNote(note string) {
	note = strings.TrimSpace(note)
	if note == "" {
		return
	}
	if d.Notes == "" {
		d.Notes = note
		return
	}
	d.Notes = d.Notes + "\n" + note
}
