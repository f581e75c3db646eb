package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TenantUnit is a tenancy: a tenant occupying a unit under a landlord.
// Payments that require a tenant/unit association point here.
type TenantUnit struct {
	ID         uint `gorm:"primaryKey"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	LandlordID uint            `gorm:"index;not null"`
	TenantID   uint            `gorm:"index;not null"`
	Tenant     Tenant          `gorm:"foreignKey:TenantID;references:ID"`
	UnitLabel  string          `gorm:"size:128;not null"` // e.g. "G-02", "Hulhumale Tower 3-A"
	RentAmount decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Active     bool            `gorm:"default:true;not null"`
}
