package ledger

import (
	"errors"
	"fmt"

	"pmoffice/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// amountTolerance absorbs rounding noise when matching a credit against an
// invoice total.
var amountTolerance = decimal.NewFromFloat(0.01)

// LinkResult classifies what the invoice linker did with a new entry.
type LinkResult string

const (
	Linked             LinkResult = "linked"
	LinkAmountMismatch LinkResult = "amount_mismatch"
	LinkNotFound       LinkResult = "not_found"
	LinkSkipped        LinkResult = "skipped"
)

// LinkOutcome is returned alongside every ledger create. Reference-number
// correlation is a soft link, so misses are observable outcomes for the
// caller to log, never errors that fail the create.
type LinkOutcome struct {
	Result    LinkResult `json:"result"`
	Invoice   string     `json:"invoice,omitempty"` // "rent" | "maintenance"
	InvoiceID uint       `json:"invoice_id,omitempty"`
	Detail    string     `json:"detail,omitempty"`
}

// LinkInvoice inspects a freshly created credit entry and, when its payment
// type points at the rent or maintenance domain and the entry carries a
// reference number, settles the matching unpaid invoice if the credited
// amount equals the invoice total within tolerance.
func (s *Store) LinkInvoice(e *models.LedgerEntry) LinkOutcome {
	if !e.CreditAmount.IsPositive() {
		return LinkOutcome{Result: LinkSkipped, Detail: "entry is not a credit"}
	}
	if e.PaymentTypeID == nil {
		return LinkOutcome{Result: LinkSkipped, Detail: "entry has no payment type"}
	}
	var pt models.PaymentType
	if err := s.db.First(&pt, *e.PaymentTypeID).Error; err != nil {
		return LinkOutcome{Result: LinkSkipped, Detail: "payment type lookup failed: " + err.Error()}
	}
	if pt.Kind != models.PaymentKindRent && pt.Kind != models.PaymentKindMaintenance {
		return LinkOutcome{Result: LinkSkipped, Detail: "payment type is not invoice-backed"}
	}
	if e.ReferenceNo == "" {
		return LinkOutcome{Result: LinkSkipped, Detail: "entry has no reference number"}
	}
	if pt.Kind == models.PaymentKindRent {
		return s.linkRentInvoice(e)
	}
	return s.linkMaintenanceInvoice(e)
}

func (s *Store) linkRentInvoice(e *models.LedgerEntry) LinkOutcome {
	var inv models.RentInvoice
	err := s.db.Where("invoice_number = ? AND tenant_id = ? AND status <> ?",
		e.ReferenceNo, e.TenantID, models.InvoiceStatusPaid).
		First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return LinkOutcome{Result: LinkNotFound, Invoice: "rent",
			Detail: fmt.Sprintf("no unpaid rent invoice %q for tenant %d", e.ReferenceNo, e.TenantID)}
	}
	if err != nil {
		return LinkOutcome{Result: LinkSkipped, Invoice: "rent", Detail: "invoice lookup failed: " + err.Error()}
	}
	if inv.TotalAmount().Sub(e.CreditAmount).Abs().GreaterThanOrEqual(amountTolerance) {
		return LinkOutcome{Result: LinkAmountMismatch, Invoice: "rent", InvoiceID: inv.ID,
			Detail: fmt.Sprintf("invoice %s total %s != credited %s", inv.InvoiceNumber, inv.TotalAmount(), e.CreditAmount)}
	}
	paid := e.TransactionDate
	updates := map[string]any{
		"status":    models.InvoiceStatusPaid,
		"paid_date": &paid,
	}
	if e.PaymentMethod != "" {
		updates["payment_method"] = e.PaymentMethod
	}
	if err := s.db.Model(&inv).Updates(updates).Error; err != nil {
		return LinkOutcome{Result: LinkSkipped, Invoice: "rent", InvoiceID: inv.ID, Detail: "invoice update failed: " + err.Error()}
	}
	return LinkOutcome{Result: Linked, Invoice: "rent", InvoiceID: inv.ID}
}

func (s *Store) linkMaintenanceInvoice(e *models.LedgerEntry) LinkOutcome {
	var inv models.MaintenanceInvoice
	err := s.db.Where("invoice_number = ? AND tenant_id = ? AND status <> ?",
		e.ReferenceNo, e.TenantID, models.InvoiceStatusPaid).
		First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return LinkOutcome{Result: LinkNotFound, Invoice: "maintenance",
			Detail: fmt.Sprintf("no unpaid maintenance invoice %q for tenant %d", e.ReferenceNo, e.TenantID)}
	}
	if err != nil {
		return LinkOutcome{Result: LinkSkipped, Invoice: "maintenance", Detail: "invoice lookup failed: " + err.Error()}
	}
	if inv.TotalAmount().Sub(e.CreditAmount).Abs().GreaterThanOrEqual(amountTolerance) {
		return LinkOutcome{Result: LinkAmountMismatch, Invoice: "maintenance", InvoiceID: inv.ID,
			Detail: fmt.Sprintf("invoice %s total %s != credited %s", inv.InvoiceNumber, inv.TotalAmount(), e.CreditAmount)}
	}
	paid := e.TransactionDate
	updates := map[string]any{
		"status":    models.InvoiceStatusPaid,
		"paid_date": &paid,
	}
	if e.PaymentMethod != "" {
		updates["payment_method"] = e.PaymentMethod
	}
	if err := s.db.Model(&inv).Updates(updates).Error; err != nil {
		return LinkOutcome{Result: LinkSkipped, Invoice: "maintenance", InvoiceID: inv.ID, Detail: "invoice update failed: " + err.Error()}
	}
	return LinkOutcome{Result: Linked, Invoice: "maintenance", InvoiceID: inv.ID}
}
