package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Meta is an open key/value bag stored as a JSON column. Handlers merge
// payload metadata into it on capture; the engine records void_reason here.
type Meta map[string]string

// Value implements driver.Valuer.
func (m Meta) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	return string(b), err
}

// Scan implements sql.Scanner.
func (m *Meta) Scan(src any) error {
	if src == nil {
		*m = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	}
	return errors.New("meta: unsupported scan source")
}

// PaymentEntry is the unified payment record spanning all payment types
// (rent, maintenance expense, security refund, fee, other income/outgoing).
// FlowDirection is derived from PaymentType and never set independently.
// Once voided (cancelled/failed/refunded) an entry is terminal.
type PaymentEntry struct {
	ID              uint `gorm:"primaryKey"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	EntryNumber     string          `gorm:"size:64;uniqueIndex;not null"`
	LandlordID      uint            `gorm:"index;not null"`
	TenantUnitID    *uint           `gorm:"index"`
	TenantUnit      *TenantUnit     `gorm:"foreignKey:TenantUnitID;references:ID"`
	PaymentType     string          `gorm:"size:32;not null;index"`
	FlowDirection   string          `gorm:"size:16;not null"` // income | outgoing
	Amount          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Currency        string          `gorm:"size:3;not null"`
	Description     string          `gorm:"size:512"`
	TransactionDate *time.Time      `gorm:"type:date"`
	DueDate         *time.Time      `gorm:"type:date"`
	Status          string          `gorm:"size:32;not null;index"`
	PaymentMethod   string          `gorm:"size:64"`
	ReferenceNumber string          `gorm:"size:128;index"`
	SourceType      string          `gorm:"size:32"` // rent_invoice | financial_record | ""
	SourceID        string          `gorm:"size:64"` // numeric or "type:id" composite
	Metadata        Meta            `gorm:"type:jsonb"`
	CreatedBy       string          `gorm:"size:255"`
	CapturedAt      *time.Time
	VoidedAt        *time.Time
}
