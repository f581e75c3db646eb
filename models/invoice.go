package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice statuses shared by rent and maintenance invoices.
const (
	InvoiceStatusDraft   = "draft"
	InvoiceStatusSent    = "sent"
	InvoiceStatusOverdue = "overdue"
	InvoiceStatusPaid    = "paid"
)

// RentInvoice is a monthly rent bill for a tenancy. This module only flips
// status/paid_date/payment_method when a payment settles it; everything else
// belongs to the invoicing CRUD.
type RentInvoice struct {
	ID            uint `gorm:"primaryKey"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	InvoiceNumber string          `gorm:"size:64;not null;index"`
	LandlordID    uint            `gorm:"index;not null"`
	TenantID      uint            `gorm:"index;not null"`
	TenantUnitID  uint            `gorm:"index;not null"`
	RentAmount    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	LateFee       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Status        string          `gorm:"size:32;not null;default:'sent';index"`
	DueDate       *time.Time      `gorm:"type:date"`
	PaidDate      *time.Time      `gorm:"type:date"`
	PaymentMethod string          `gorm:"size:64"`
}

// TotalAmount is rent plus late fee.
func (i *RentInvoice) TotalAmount() decimal.Decimal {
	return i.RentAmount.Add(i.LateFee)
}

// MaintenanceInvoice mirrors RentInvoice for the maintenance domain.
type MaintenanceInvoice struct {
	ID            uint `gorm:"primaryKey"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	InvoiceNumber string          `gorm:"size:64;not null;index"`
	LandlordID    uint            `gorm:"index;not null"`
	TenantID      uint            `gorm:"index;not null"`
	TenantUnitID  uint            `gorm:"index;not null"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	LateFee       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Status        string          `gorm:"size:32;not null;default:'sent';index"`
	DueDate       *time.Time      `gorm:"type:date"`
	PaidDate      *time.Time      `gorm:"type:date"`
	PaymentMethod string          `gorm:"size:64"`
}

// TotalAmount is amount plus late fee.
func (i *MaintenanceInvoice) TotalAmount() decimal.Decimal {
	return i.Amount.Add(i.LateFee)
}
