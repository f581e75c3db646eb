package payments

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"pmoffice/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// settleTolerance absorbs rounding noise in the fully-paid test.
var settleTolerance = decimal.NewFromFloat(0.01)

// SourceKind identifies the document a payment entry settles.
type SourceKind string

const (
	SourceNone            SourceKind = ""
	SourceRentInvoice     SourceKind = "rent_invoice"
	SourceFinancialRecord SourceKind = "financial_record"
)

// SourceRef is the typed form of the entry's source_type/source_id pair,
// resolved once at the boundary instead of re-parsed ad hoc. A zero ID means
// there is nothing to settle.
type SourceRef struct {
	Kind SourceKind
	ID   uint
}

// ResolveSourceRef reads source_type/source_id from the entry or, when
// absent, from its metadata. source_id may be a composite "type:123" string;
// the numeric suffix wins. Anything unparseable resolves to a zero ref.
func ResolveSourceRef(e *models.PaymentEntry) SourceRef {
	st := e.SourceType
	sid := e.SourceID
	if st == "" {
		st = e.Metadata["source_type"]
	}
	if sid == "" {
		sid = e.Metadata["source_id"]
	}
	var kind SourceKind
	switch st {
	case string(SourceRentInvoice):
		kind = SourceRentInvoice
	case string(SourceFinancialRecord):
		kind = SourceFinancialRecord
	default:
		return SourceRef{}
	}
	if i := strings.LastIndexByte(sid, ':'); i >= 0 {
		sid = sid[i+1:]
	}
	n, err := strconv.ParseInt(strings.TrimSpace(sid), 10, 64)
	if err != nil || n <= 0 {
		return SourceRef{Kind: kind}
	}
	return SourceRef{Kind: kind, ID: uint(n)}
}

// SourceResult classifies what happened to the linked source document.
type SourceResult string

const (
	SourceSettled  SourceResult = "settled"
	SourcePartial  SourceResult = "partial"
	SourceNotFound SourceResult = "not_found"
	SourceSkipped  SourceResult = "skipped"
)

// SourceOutcome reports the settlement attempt for logging. Misses are
// observable outcomes, never errors.
type SourceOutcome struct {
	Result SourceResult `json:"result"`
	Kind   SourceKind   `json:"kind,omitempty"`
	ID     uint         `json:"id,omitempty"`
	Detail string       `json:"detail,omitempty"`
}

func (en *Engine) applySource(e *models.PaymentEntry) SourceOutcome {
	ref := ResolveSourceRef(e)
	if ref.Kind == SourceNone {
		return SourceOutcome{Result: SourceSkipped, Detail: "no source document"}
	}
	if ref.ID == 0 {
		return SourceOutcome{Result: SourceSkipped, Kind: ref.Kind, Detail: "source id is not a positive number"}
	}
	switch ref.Kind {
	case SourceRentInvoice:
		return en.settleRentInvoice(e, ref)
	default:
		return en.settleFinancialRecord(e, ref)
	}
}

func (en *Engine) paidDateFor(entry *models.PaymentEntry) time.Time {
	if entry.TransactionDate != nil {
		return *entry.TransactionDate
	}
	return today()
}

// fullyPaid: a partial-status payment never fully settles, otherwise the
// payment amount must reach the document total within tolerance.
func fullyPaid(entry *models.PaymentEntry, total decimal.Decimal) bool {
	if entry.Status == StatusPartial {
		return false
	}
	return entry.Amount.GreaterThanOrEqual(total.Sub(settleTolerance))
}

func (en *Engine) settleRentInvoice(entry *models.PaymentEntry, ref SourceRef) SourceOutcome {
	var inv models.RentInvoice
	err := en.db.Where("id = ? AND landlord_id = ?", ref.ID, entry.LandlordID).First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return SourceOutcome{Result: SourceNotFound, Kind: ref.Kind, ID: ref.ID}
	}
	if err != nil {
		return SourceOutcome{Result: SourceSkipped, Kind: ref.Kind, ID: ref.ID, Detail: "invoice lookup failed: " + err.Error()}
	}
	if !fullyPaid(entry, inv.TotalAmount()) {
		// partial rent payments are not tracked on the invoice; it stays
		// sent/overdue until a full payment arrives
		return SourceOutcome{Result: SourcePartial, Kind: ref.Kind, ID: inv.ID,
			Detail: fmt.Sprintf("payment %s below invoice total %s", entry.Amount, inv.TotalAmount())}
	}
	paid := en.paidDateFor(entry)
	updates := map[string]any{
		"status":    models.InvoiceStatusPaid,
		"paid_date": &paid,
	}
	if entry.PaymentMethod != "" {
		updates["payment_method"] = entry.PaymentMethod
	}
	if err := en.db.Model(&inv).Updates(updates).Error; err != nil {
		return SourceOutcome{Result: SourceSkipped, Kind: ref.Kind, ID: inv.ID, Detail: "invoice update failed: " + err.Error()}
	}
	return SourceOutcome{Result: SourceSettled, Kind: ref.Kind, ID: inv.ID}
}

func (en *Engine) settleFinancialRecord(entry *models.PaymentEntry, ref SourceRef) SourceOutcome {
	var rec models.FinancialRecord
	err := en.db.Where("id = ? AND landlord_id = ?", ref.ID, entry.LandlordID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return SourceOutcome{Result: SourceNotFound, Kind: ref.Kind, ID: ref.ID}
	}
	if err != nil {
		return SourceOutcome{Result: SourceSkipped, Kind: ref.Kind, ID: ref.ID, Detail: "record lookup failed: " + err.Error()}
	}
	paid := en.paidDateFor(entry)
	updates := map[string]any{}
	result := SourcePartial
	if fullyPaid(entry, rec.Amount) {
		updates["status"] = models.RecordStatusCompleted
		updates["paid_date"] = &paid
		result = SourceSettled
	} else {
		updates["status"] = models.RecordStatusPartial
		if rec.PaidDate == nil {
			updates["paid_date"] = &paid
		}
	}
	if entry.PaymentMethod != "" {
		updates["payment_method"] = entry.PaymentMethod
	}
	if err := en.db.Model(&rec).Updates(updates).Error; err != nil {
		return SourceOutcome{Result: SourceSkipped, Kind: ref.Kind, ID: rec.ID, Detail: "record update failed: " + err.Error()}
	}
	return SourceOutcome{Result: result, Kind: ref.Kind, ID: rec.ID}
}
