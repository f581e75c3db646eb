package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry is one debit or credit transaction for a tenant, carrying the
// running balance after this entry. Exactly one of DebitAmount/CreditAmount is
// positive; the other is zero. Entries order by (TransactionDate, ID), with ID
// breaking ties within a day.
type LedgerEntry struct {
	ID                  uint `gorm:"primaryKey"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
	TenantID            uint         `gorm:"not null;index:idx_ledger_tenant_date,priority:1"`
	PaymentTypeID       *uint        `gorm:"index"`
	PaymentType         *PaymentType `gorm:"foreignKey:PaymentTypeID;references:ID"`
	TransactionDate     time.Time    `gorm:"type:date;not null;index:idx_ledger_tenant_date,priority:2"`
	Description         string       `gorm:"size:512"`
	ReferenceNo         string       `gorm:"size:64;index"` // soft link to an invoice number
	DebitAmount         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreditAmount        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Balance             decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PaymentMethod       string          `gorm:"size:64"`
	TransferReferenceNo string          `gorm:"size:128"`
	Remarks             string          `gorm:"size:512"`
	CreatedBy           string          `gorm:"size:255"`
}
