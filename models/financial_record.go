package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Financial record types and categories. Categories outside this set collapse
// to "other" when a payment entry is mirrored.
const (
	RecordTypeRent    = "rent"
	RecordTypeFee     = "fee"
	RecordTypeExpense = "expense"

	RecordStatusPending   = "pending"
	RecordStatusPartial   = "partial"
	RecordStatusCompleted = "completed"
)

// RecordCategories is the closed set of bookkeeping categories.
var RecordCategories = map[string]bool{
	"monthly_rent":   true,
	"advance_rent":   true,
	"late_fee":       true,
	"processing_fee": true,
	"maintenance":    true,
	"utilities":      true,
	"deposit":        true,
	"parking":        true,
	"other":          true,
}

// FinancialRecord is one bookkeeping row, independent of the tenant ledger.
// Rows are created by CRUD screens or mirrored from completed payments.
type FinancialRecord struct {
	ID              uint `gorm:"primaryKey"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	LandlordID      uint            `gorm:"index;not null"`
	TenantUnitID    *uint           `gorm:"index"`
	Type            string          `gorm:"size:32;not null;index"`
	Category        string          `gorm:"size:64;not null"`
	Amount          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Status          string          `gorm:"size:32;not null;default:'pending';index"`
	TransactionDate time.Time       `gorm:"type:date;not null"`
	PaidDate        *time.Time      `gorm:"type:date"`
	PaymentMethod   string          `gorm:"size:64"`
	ReferenceNumber string          `gorm:"size:128;index"`
	Description     string          `gorm:"size:512"`
}
