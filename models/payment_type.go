package models

import (
	"strings"
	"time"
)

// Payment type kinds. Each PaymentType carries an explicit Kind tag set at
// configuration time; nothing downstream classifies types by name.
const (
	PaymentKindRent        = "rent"
	PaymentKindMaintenance = "maintenance"
	PaymentKindOther       = "other"
)

// PaymentType is a master lookup for ledger entry categories (Rent Payment,
// Maintenance Charge, Advance, ...). Kind decides which invoice family a
// credit against this type can settle.
type PaymentType struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Name        string `gorm:"size:128;uniqueIndex;not null"`
	Kind        string `gorm:"size:32;not null;default:'other';index"`
	Description string `gorm:"size:255"`
}

// KindFromName derives a Kind tag from a free-form type name. Used only when
// seeding or backfilling rows that predate the Kind column; request paths
// always read the stored tag.
func KindFromName(name string) string {
	n := strings.ToLower(name)
	for _, w := range []string{"rent", "payment", "advance"} {
		if strings.Contains(n, w) {
			return PaymentKindRent
		}
	}
	for _, w := range []string{"maintenance", "repair", "fix", "service"} {
		if strings.Contains(n, w) {
			return PaymentKindMaintenance
		}
	}
	return PaymentKindOther
}
