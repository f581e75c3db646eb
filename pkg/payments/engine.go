package payments

import (
	"errors"
	"strings"
	"time"

	"pmoffice/models"
	"pmoffice/pkg/apperr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const defaultCurrency = "MVR"

// Engine owns the unified payment entry lifecycle.
type Engine struct {
	db *gorm.DB
}

func NewEngine(db *gorm.DB) *Engine {
	return &Engine{db: db}
}

// SideEffects describes what happened to the linked source document and the
// financial-record mirror after a settling create or capture. Both are
// best-effort; the caller logs them and the primary write stands regardless.
type SideEffects struct {
	Source SourceOutcome `json:"source"`
	Mirror MirrorOutcome `json:"mirror"`
}

// CreateInput is the caller-facing payload for a new payment entry. Dates
// arrive as strings ("2006-01-02" or RFC3339) and are stored date-only.
type CreateInput struct {
	PaymentType     string            `json:"payment_type" binding:"required"`
	TenantUnitID    *uint             `json:"tenant_unit_id"`
	Amount          decimal.Decimal   `json:"amount"`
	Currency        string            `json:"currency"`
	Description     string            `json:"description"`
	TransactionDate string            `json:"transaction_date"`
	DueDate         string            `json:"due_date"`
	Status          string            `json:"status"`
	PaymentMethod   string            `json:"payment_method"`
	ReferenceNumber string            `json:"reference_number"`
	SourceType      string            `json:"source_type"`
	SourceID        string            `json:"source_id"`
	Metadata        map[string]string `json:"metadata"`
	CreatedBy       string            `json:"-"`
}

// CapturePayload moves an entry to completed or partial.
type CapturePayload struct {
	Status          string            `json:"status"`
	PaymentMethod   string            `json:"payment_method"`
	ReferenceNumber string            `json:"reference_number"`
	Metadata        map[string]string `json:"metadata"`
}

// VoidPayload moves an entry to a terminal status.
type VoidPayload struct {
	Status   string `json:"status"`
	Reason   string `json:"reason"`
	VoidedAt string `json:"voided_at"`
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d, nil
		}
	}
	return nil, errors.New("invalid date")
}

func today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func newEntryNumber() string {
	return "PMT-" + strings.ToUpper(uuid.NewString()[:8])
}

// Create validates and persists a new payment entry. When the resulting
// status is completed or partial the linked source document is updated and
// the entry is mirrored into the financial records; both outcomes are
// returned for logging.
func (en *Engine) Create(landlordID uint, in CreateInput) (*models.PaymentEntry, SideEffects, error) {
	var fx SideEffects
	spec, ok := typeSpecs[in.PaymentType]
	if !ok {
		return nil, fx, apperr.NewValidation("payment_type", "Unsupported payment type")
	}
	if spec.RequiresTenantUnit {
		if in.TenantUnitID == nil || *in.TenantUnitID == 0 {
			return nil, fx, apperr.NewValidation("tenant_unit_id", "A tenant/unit association is required for this payment type")
		}
		var unit models.TenantUnit
		err := en.db.Where("id = ? AND landlord_id = ?", *in.TenantUnitID, landlordID).First(&unit).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fx, apperr.NewValidation("tenant_unit_id", "The selected tenant/unit does not belong to this landlord")
		}
		if err != nil {
			return nil, fx, err
		}
	}
	status := in.Status
	if status == "" {
		status = spec.DefaultStatus
	}
	if !allowedStatuses[status] {
		return nil, fx, apperr.NewValidation("status", "Invalid payment status")
	}
	if !in.Amount.IsPositive() {
		return nil, fx, apperr.NewValidation("amount", "Amount must be greater than zero")
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = defaultCurrency
	}
	if len(currency) != 3 {
		return nil, fx, apperr.NewValidation("currency", "Currency must be a 3-letter ISO code")
	}
	txDate, err := parseDate(in.TransactionDate)
	if err != nil {
		return nil, fx, apperr.NewValidation("transaction_date", "Transaction date must be YYYY-MM-DD")
	}
	if txDate == nil && IsSettled(status) {
		d := today()
		txDate = &d
	}
	dueDate, err := parseDate(in.DueDate)
	if err != nil {
		return nil, fx, apperr.NewValidation("due_date", "Due date must be YYYY-MM-DD")
	}

	entry := &models.PaymentEntry{
		EntryNumber:     newEntryNumber(),
		LandlordID:      landlordID,
		TenantUnitID:    in.TenantUnitID,
		PaymentType:     in.PaymentType,
		FlowDirection:   spec.Flow,
		Amount:          in.Amount,
		Currency:        currency,
		Description:     in.Description,
		TransactionDate: txDate,
		DueDate:         dueDate,
		Status:          status,
		PaymentMethod:   in.PaymentMethod,
		ReferenceNumber: in.ReferenceNumber,
		SourceType:      in.SourceType,
		SourceID:        in.SourceID,
		Metadata:        models.Meta(in.Metadata),
		CreatedBy:       in.CreatedBy,
	}
	now := time.Now()
	if status == StatusCompleted && entry.CapturedAt == nil {
		entry.CapturedAt = &now
	}
	if status == StatusCancelled && entry.VoidedAt == nil {
		entry.VoidedAt = &now
	}
	if err := en.db.Create(entry).Error; err != nil {
		return nil, fx, err
	}
	if IsSettled(entry.Status) {
		fx = en.runSideEffects(entry)
	} else {
		fx = SideEffects{
			Source: SourceOutcome{Result: SourceSkipped, Detail: "status is not completed or partial"},
			Mirror: MirrorOutcome{Result: MirrorSkipped, Detail: "status is not completed or partial"},
		}
	}
	return entry, fx, nil
}

// Capture moves a non-terminal entry to completed or partial, stamping
// captured_at and merging payload metadata, then runs the settlement side
// effects.
func (en *Engine) Capture(id, landlordID uint, p CapturePayload) (*models.PaymentEntry, SideEffects, error) {
	var fx SideEffects
	entry, err := en.get(id, landlordID)
	if err != nil {
		return nil, fx, err
	}
	if IsTerminal(entry.Status) {
		return nil, fx, apperr.NewValidation("status", "This payment entry has already been voided and cannot be captured")
	}
	target := p.Status
	if target == "" {
		target = StatusCompleted
	}
	if !IsSettled(target) {
		return nil, fx, apperr.NewValidation("status", "Capture status must be completed or partial")
	}
	now := time.Now()
	entry.Status = target
	entry.CapturedAt = &now
	entry.VoidedAt = nil
	if entry.TransactionDate == nil {
		d := today()
		entry.TransactionDate = &d
	}
	if p.PaymentMethod != "" {
		entry.PaymentMethod = p.PaymentMethod
	}
	if p.ReferenceNumber != "" {
		entry.ReferenceNumber = p.ReferenceNumber
	}
	if len(p.Metadata) > 0 {
		if entry.Metadata == nil {
			entry.Metadata = models.Meta{}
		}
		for k, v := range p.Metadata {
			entry.Metadata[k] = v
		}
	}
	if err := en.db.Save(entry).Error; err != nil {
		return nil, fx, err
	}
	return entry, en.runSideEffects(entry), nil
}

// Void moves a non-terminal entry to cancelled, failed or refunded. Voided
// entries are terminal; no further capture or void is permitted.
func (en *Engine) Void(id, landlordID uint, p VoidPayload) (*models.PaymentEntry, error) {
	entry, err := en.get(id, landlordID)
	if err != nil {
		return nil, err
	}
	if IsTerminal(entry.Status) {
		return nil, apperr.NewValidation("status", "This payment entry has already been voided")
	}
	target := p.Status
	if target == "" {
		target = StatusCancelled
	}
	if !IsTerminal(target) {
		return nil, apperr.NewValidation("status", "Void status must be cancelled, failed or refunded")
	}
	voidedAt, err := parseDate(p.VoidedAt)
	if err != nil {
		return nil, apperr.NewValidation("voided_at", "Voided-at must be YYYY-MM-DD")
	}
	if voidedAt == nil {
		now := time.Now()
		voidedAt = &now
	}
	entry.Status = target
	entry.VoidedAt = voidedAt
	if p.Reason != "" {
		if entry.Metadata == nil {
			entry.Metadata = models.Meta{}
		}
		entry.Metadata["void_reason"] = p.Reason
	}
	if err := en.db.Save(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

// Get returns a payment entry scoped to a landlord.
func (en *Engine) Get(id, landlordID uint) (*models.PaymentEntry, error) {
	return en.get(id, landlordID)
}

func (en *Engine) get(id, landlordID uint) (*models.PaymentEntry, error) {
	var entry models.PaymentEntry
	err := en.db.Where("id = ? AND landlord_id = ?", id, landlordID).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NewNotFound("payment entry", id)
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// List returns a page of a landlord's payment entries, newest first.
func (en *Engine) List(landlordID uint, limit, offset int) ([]models.PaymentEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 200
	}
	var entries []models.PaymentEntry
	err := en.db.Where("landlord_id = ?", landlordID).
		Order("id desc").
		Limit(limit).Offset(offset).
		Find(&entries).Error
	return entries, err
}

// FlowSummary aggregates settled payments by direction for a landlord.
type FlowSummary struct {
	Income   decimal.Decimal `json:"income"`
	Outgoing decimal.Decimal `json:"outgoing"`
	Net      decimal.Decimal `json:"net"`
}

// Summarize sums completed/partial entries per flow direction.
func (en *Engine) Summarize(landlordID uint) (FlowSummary, error) {
	var out FlowSummary
	row := en.db.Model(&models.PaymentEntry{}).
		Where("landlord_id = ? AND status IN ?", landlordID, []string{StatusCompleted, StatusPartial}).
		Select(
			"COALESCE(SUM(CASE WHEN flow_direction = 'income' THEN amount ELSE 0 END),0), " +
				"COALESCE(SUM(CASE WHEN flow_direction = 'outgoing' THEN amount ELSE 0 END),0)").
		Row()
	if err := row.Scan(&out.Income, &out.Outgoing); err != nil {
		return out, err
	}
	out.Net = out.Income.Sub(out.Outgoing)
	return out, nil
}

func (en *Engine) runSideEffects(entry *models.PaymentEntry) SideEffects {
	return SideEffects{
		Source: en.applySource(entry),
		Mirror: en.mirror(entry),
	}
}
