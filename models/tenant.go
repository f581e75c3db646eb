package models

import "time"

// Tenant is a person renting from a landlord. Owned by exactly one landlord;
// ledger entries and invoices hang off the tenant.
type Tenant struct {
	ID         uint `gorm:"primaryKey"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	LandlordID uint   `gorm:"index;not null"`
	Name       string `gorm:"size:255;not null"`
	Phone      string `gorm:"size:64"`
	Email      string `gorm:"size:255"`
	IDCardNo   string `gorm:"size:64"`
	Active     bool   `gorm:"default:true;not null"`
	Entries    []LedgerEntry `gorm:"foreignKey:TenantID"`
}
