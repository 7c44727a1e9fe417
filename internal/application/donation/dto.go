package donation

import (
	"time"

	"github.com/donortrack/backend/internal/domain/donation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateDonationInput contains the input for creating a donation
type CreateDonationInput struct {
	DonorID       uuid.UUID
	ProjectID     uuid.UUID
	Amount        decimal.Decimal
	Currency      string
	PaymentMethod string
	Notes         string
}

// UpdateStatusInput contains the input for a donor-initiated status change
type UpdateStatusInput struct {
	DonationID  uuid.UUID
	RequesterID uuid.UUID
	Status      string
	Reason      string
}

// ListInput contains paging and filters for a donor's donation list
type ListInput struct {
	DonorID   uuid.UUID
	Page      int
	Limit     int
	Status    string
	ProjectID *uuid.UUID
}

// ProjectRef is the project summary embedded in donation responses
type ProjectRef struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	Organization string    `json:"organization"`
}

// DonationView is a donation with its project summary. Project is nil when
// the project was deleted.
type DonationView struct {
	ID            uuid.UUID       `json:"id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Status        donation.Status `json:"status"`
	PaymentMethod string          `json:"paymentMethod"`
	Notes         string          `json:"notes,omitempty"`
	TransactionID string          `json:"transactionId,omitempty"`
	DonorID       uuid.UUID       `json:"donorId"`
	ProjectID     *uuid.UUID      `json:"projectId"`
	Project       *ProjectRef     `json:"project"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// UnknownOrganization names the NGO of a project whose owner cannot be resolved
const UnknownOrganization = "Unknown Organization"

// ToDonationView converts a donation; ref may be nil
func ToDonationView(d *donation.Donation, ref *ProjectRef) DonationView {
	return DonationView{
		ID:            d.ID,
		Amount:        d.Amount,
		Currency:      d.Currency,
		Status:        d.Status,
		PaymentMethod: d.PaymentMethod,
		Notes:         d.Notes,
		TransactionID: d.TransactionID,
		DonorID:       d.DonorID,
		ProjectID:     d.ProjectID,
		Project:       ref,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

// SettlementNotice is the payment side's verdict on a pending donation
type SettlementNotice struct {
	DonationID    uuid.UUID `json:"donationId"`
	Outcome       string    `json:"outcome"`
	TransactionID string    `json:"transactionId,omitempty"`
	Reason        string    `json:"reason,omitempty"`
}

// SettlementResult reports what a settlement notice did
type SettlementResult struct {
	Donation         *donation.Donation
	AlreadyProcessed bool
}
