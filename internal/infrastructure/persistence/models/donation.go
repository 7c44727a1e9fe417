package models

import (
	"github.com/donortrack/backend/internal/domain/donation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DonationModel is the persistence model for donations
type DonationModel struct {
	AggregateModel
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Currency      string          `gorm:"type:varchar(3);not null;default:'USD'"`
	DonorID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProjectID     *uuid.UUID      `gorm:"type:uuid;index"`
	PaymentMethod string          `gorm:"type:varchar(50);not null"`
	Status        string          `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	Notes         string          `gorm:"type:text"`
	TransactionID string          `gorm:"type:varchar(200)"`
}

// TableName returns the table name for GORM
func (DonationModel) TableName() string {
	return "donations"
}

// ToDomain converts to the domain aggregate
func (m *DonationModel) ToDomain() *donation.Donation {
	return &donation.Donation{
		BaseAggregateRoot: m.ToDomainAggregate(),
		Amount:            m.Amount,
		Currency:          m.Currency,
		DonorID:           m.DonorID,
		ProjectID:         m.ProjectID,
		PaymentMethod:     m.PaymentMethod,
		Status:            donation.Status(m.Status),
		Notes:             m.Notes,
		TransactionID:     m.TransactionID,
	}
}

// FromDomain populates the model from the domain aggregate
func (m *DonationModel) FromDomain(d *donation.Donation) {
	m.FromDomainAggregateRoot(d.BaseAggregateRoot)
	m.Amount = d.Amount
	m.Currency = d.Currency
	m.DonorID = d.DonorID
	m.ProjectID = d.ProjectID
	m.PaymentMethod = d.PaymentMethod
	m.Status = string(d.Status)
	m.Notes = d.Notes
	m.TransactionID = d.TransactionID
}

// DonationModelFromDomain creates a model from the domain aggregate
func DonationModelFromDomain(d *donation.Donation) *DonationModel {
	m := &DonationModel{}
	m.FromDomain(d)
	return m
}
