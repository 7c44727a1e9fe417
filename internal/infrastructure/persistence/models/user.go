package models

import (
	"github.com/donortrack/backend/internal/domain/identity"
)

// UserModel is the persistence model for users
type UserModel struct {
	AggregateModel
	Name         string `gorm:"type:varchar(200);not null"`
	Email        string `gorm:"type:varchar(200);not null;uniqueIndex"`
	PasswordHash string `gorm:"type:varchar(255);not null"`
	Role         string `gorm:"type:varchar(20);not null;default:'DONOR'"`
	Image        string `gorm:"type:varchar(500)"`
	Phone        string `gorm:"type:varchar(50)"`
	Location     string `gorm:"type:varchar(200)"`
	Bio          string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts to the domain aggregate
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseAggregateRoot: m.ToDomainAggregate(),
		Name:              m.Name,
		Email:             m.Email,
		PasswordHash:      m.PasswordHash,
		Role:              identity.Role(m.Role),
		Image:             m.Image,
		Phone:             m.Phone,
		Location:          m.Location,
		Bio:               m.Bio,
	}
}

// FromDomain populates the model from the domain aggregate
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	m.Name = u.Name
	m.Email = u.Email
	m.PasswordHash = u.PasswordHash
	m.Role = string(u.Role)
	m.Image = u.Image
	m.Phone = u.Phone
	m.Location = u.Location
	m.Bio = u.Bio
}

// UserModelFromDomain creates a model from the domain aggregate
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}
