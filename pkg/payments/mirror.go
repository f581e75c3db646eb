package payments

import (
	"errors"
	"fmt"
	"time"

	"pmoffice/models"

	"gorm.io/gorm"
)

// MirrorResult classifies what the financial-record mirror did.
type MirrorResult string

const (
	Mirrored        MirrorResult = "mirrored"
	MirrorDuplicate MirrorResult = "duplicate"
	MirrorSkipped   MirrorResult = "skipped"
)

// MirrorOutcome reports the mirroring attempt for logging.
type MirrorOutcome struct {
	Result   MirrorResult `json:"result"`
	RecordID uint         `json:"record_id,omitempty"`
	Detail   string       `json:"detail,omitempty"`
}

var feeCategories = map[string]bool{
	"late_fee":       true,
	"processing_fee": true,
}

// recordClass maps a payment type plus an optional metadata category hint to
// the bookkeeping (type, category) pair. The bool is false for types that are
// never mirrored.
func recordClass(paymentType, categoryHint string) (string, string, bool) {
	switch paymentType {
	case TypeRent:
		return models.RecordTypeRent, "monthly_rent", true
	case TypeFee:
		if feeCategories[categoryHint] {
			return models.RecordTypeFee, categoryHint, true
		}
		return models.RecordTypeFee, "late_fee", true
	case TypeMaintenanceExpense:
		return models.RecordTypeExpense, "maintenance", true
	case TypeOtherIncome:
		recType := models.RecordTypeRent
		if feeCategories[categoryHint] {
			recType = models.RecordTypeFee
		}
		category := "other"
		if models.RecordCategories[categoryHint] {
			category = categoryHint
		}
		return recType, category, true
	case TypeOtherOutgoing:
		category := "other"
		if models.RecordCategories[categoryHint] {
			category = categoryHint
		}
		return models.RecordTypeExpense, category, true
	default:
		// security refunds live in their own refund model
		return "", "", false
	}
}

// mirror materializes a bookkeeping row from a settled payment entry.
// It is idempotent: an existing record with the same identifying tuple means
// the payment was already mirrored and the insert is skipped.
func (en *Engine) mirror(entry *models.PaymentEntry) MirrorOutcome {
	if entry.TenantUnitID == nil {
		return MirrorOutcome{Result: MirrorSkipped, Detail: "entry has no tenant/unit"}
	}
	switch ResolveSourceRef(entry).Kind {
	case SourceFinancialRecord:
		return MirrorOutcome{Result: MirrorSkipped, Detail: "entry already settles a financial record"}
	case SourceRentInvoice:
		return MirrorOutcome{Result: MirrorSkipped, Detail: "invoice payments are tracked on the invoice"}
	}
	recType, category, ok := recordClass(entry.PaymentType, entry.Metadata["category"])
	if !ok {
		return MirrorOutcome{Result: MirrorSkipped, Detail: "payment type is not mirrored"}
	}

	txDate := today()
	if entry.TransactionDate != nil {
		txDate = *entry.TransactionDate
	}

	var existing models.FinancialRecord
	err := en.db.Where(
		"landlord_id = ? AND tenant_unit_id = ? AND type = ? AND category = ? AND amount = ? AND transaction_date = ? AND reference_number = ?",
		entry.LandlordID, *entry.TenantUnitID, recType, category, entry.Amount, txDate, entry.ReferenceNumber,
	).First(&existing).Error
	if err == nil {
		return MirrorOutcome{Result: MirrorDuplicate, RecordID: existing.ID}
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return MirrorOutcome{Result: MirrorSkipped, Detail: "dedup lookup failed: " + err.Error()}
	}

	status := models.RecordStatusPending
	if IsSettled(entry.Status) {
		status = entry.Status // completed/partial map 1:1
	}
	desc := entry.Description
	if desc == "" {
		ref := entry.ReferenceNumber
		if ref == "" {
			ref = "No reference"
		}
		desc = fmt.Sprintf("%s - %s", TypeLabel(entry.PaymentType), ref)
	}
	var paidDate *time.Time
	if status == models.RecordStatusCompleted || status == models.RecordStatusPartial {
		d := en.paidDateFor(entry)
		paidDate = &d
	}
	rec := models.FinancialRecord{
		LandlordID:      entry.LandlordID,
		TenantUnitID:    entry.TenantUnitID,
		Type:            recType,
		Category:        category,
		Amount:          entry.Amount,
		Status:          status,
		TransactionDate: txDate,
		PaidDate:        paidDate,
		PaymentMethod:   entry.PaymentMethod,
		ReferenceNumber: entry.ReferenceNumber,
		Description:     desc,
	}
	if err := en.db.Create(&rec).Error; err != nil {
		return MirrorOutcome{Result: MirrorSkipped, Detail: "record insert failed: " + err.Error()}
	}
	return MirrorOutcome{Result: Mirrored, RecordID: rec.ID}
}
