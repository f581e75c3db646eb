package models

import (
	"time"
)

// User is a landlord account. The user's ID doubles as the landlord ID that
// scopes every tenant, invoice, ledger entry and payment in the system.
type User struct {
	ID             uint `gorm:"primaryKey"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      *time.Time `gorm:"index"`
	Username       string     `gorm:"size:255;not null;unique"`
	HashedPassword []byte     `gorm:"not null"`
	Tenants        []Tenant   `gorm:"foreignKey:LandlordID"`
	RoleID         *uint      `gorm:"index"`
	Role           Role       `gorm:"foreignKey:RoleID;references:ID"`
}
