// Package ledger implements the tenant running-balance ledger: validated
// debit/credit entries, balance recalculation after any mutation, and
// best-effort settlement of invoices referenced by credit entries.
package ledger

import (
	"errors"
	"time"

	"pmoffice/models"
	"pmoffice/pkg/apperr"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Store owns all reads and writes of tenant ledger entries.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DateOnly truncates a timestamp to midnight UTC. Ledger ordering works on
// calendar dates; the entry ID breaks ties within a day.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func validateEntry(e *models.LedgerEntry) error {
	ve := &apperr.ValidationError{}
	if e.TenantID == 0 {
		ve.Add("tenant_id", "A tenant is required")
	}
	if e.TransactionDate.IsZero() {
		ve.Add("transaction_date", "A transaction date is required")
	}
	if e.DebitAmount.IsNegative() {
		ve.Add("debit_amount", "Debit amount cannot be negative")
	}
	if e.CreditAmount.IsNegative() {
		ve.Add("credit_amount", "Credit amount cannot be negative")
	}
	debit := e.DebitAmount.IsPositive()
	credit := e.CreditAmount.IsPositive()
	if debit && credit {
		ve.Add("debit_amount", "An entry cannot carry both a debit and a credit")
	}
	if !debit && !credit {
		ve.Add("amount", "Either a debit or a credit amount is required")
	}
	if len(ve.Fields) > 0 {
		return ve
	}
	return nil
}

// previousBalance returns the balance of the latest entry at or before the
// given date, zero when the tenant has no earlier entries.
func previousBalance(tx *gorm.DB, tenantID uint, date time.Time) (decimal.Decimal, error) {
	var prev models.LedgerEntry
	err := tx.Where("tenant_id = ? AND transaction_date <= ?", tenantID, date).
		Order("transaction_date desc, id desc").
		First(&prev).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return prev.Balance, nil
}

// recalcFrom rewrites running balances for a tenant from a date forward,
// anchored on the last entry strictly before that date. Safe to call for any
// range; rows whose balance is already correct are left untouched.
func recalcFrom(tx *gorm.DB, tenantID uint, from time.Time) error {
	var anchor models.LedgerEntry
	running := decimal.Zero
	err := tx.Where("tenant_id = ? AND transaction_date < ?", tenantID, from).
		Order("transaction_date desc, id desc").
		First(&anchor).Error
	if err == nil {
		running = anchor.Balance
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	var entries []models.LedgerEntry
	if err := tx.Where("tenant_id = ? AND transaction_date >= ?", tenantID, from).
		Order("transaction_date asc, id asc").
		Find(&entries).Error; err != nil {
		return err
	}
	for i := range entries {
		running = running.Add(entries[i].DebitAmount).Sub(entries[i].CreditAmount)
		if !running.Equal(entries[i].Balance) {
			if err := tx.Model(&models.LedgerEntry{}).
				Where("id = ?", entries[i].ID).
				Update("balance", running).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// Create validates and persists a new entry, computing its running balance
// from the previous entry for the tenant. When the entry lands before
// existing entries (back-dated), later balances are recalculated in the same
// transaction. After commit the invoice linker runs; its outcome is returned
// for the caller to log and never fails the create.
func (s *Store) Create(e *models.LedgerEntry) (LinkOutcome, error) {
	if err := validateEntry(e); err != nil {
		return LinkOutcome{Result: LinkSkipped}, err
	}
	e.TransactionDate = DateOnly(e.TransactionDate)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		prev, err := previousBalance(tx, e.TenantID, e.TransactionDate)
		if err != nil {
			return err
		}
		e.Balance = prev.Add(e.DebitAmount).Sub(e.CreditAmount)
		if err := tx.Create(e).Error; err != nil {
			return err
		}
		var later int64
		if err := tx.Model(&models.LedgerEntry{}).
			Where("tenant_id = ? AND transaction_date > ?", e.TenantID, e.TransactionDate).
			Count(&later).Error; err != nil {
			return err
		}
		if later > 0 {
			return recalcFrom(tx, e.TenantID, e.TransactionDate)
		}
		return nil
	})
	if err != nil {
		return LinkOutcome{Result: LinkSkipped}, err
	}
	return s.LinkInvoice(e), nil
}

// Update re-validates and saves an edited entry, then recalculates balances
// from the earlier of the old and new transaction dates, so date and amount
// edits never leave stale balances downstream.
func (s *Store) Update(id uint, in *models.LedgerEntry) (*models.LedgerEntry, error) {
	if err := validateEntry(in); err != nil {
		return nil, err
	}
	var cur models.LedgerEntry
	if err := s.db.First(&cur, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFound("ledger entry", id)
		}
		return nil, err
	}
	oldDate := cur.TransactionDate
	cur.PaymentTypeID = in.PaymentTypeID
	cur.TransactionDate = DateOnly(in.TransactionDate)
	cur.Description = in.Description
	cur.ReferenceNo = in.ReferenceNo
	cur.DebitAmount = in.DebitAmount
	cur.CreditAmount = in.CreditAmount
	cur.PaymentMethod = in.PaymentMethod
	cur.TransferReferenceNo = in.TransferReferenceNo
	cur.Remarks = in.Remarks

	from := cur.TransactionDate
	if oldDate.Before(from) {
		from = oldDate
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&cur).Error; err != nil {
			return err
		}
		return recalcFrom(tx, cur.TenantID, from)
	})
	if err != nil {
		return nil, err
	}
	// recalc may have rewritten this entry's balance
	if err := s.db.First(&cur, id).Error; err != nil {
		return nil, err
	}
	return &cur, nil
}

// Delete removes an entry and recalculates the tenant's balances from the
// deleted entry's date forward so no gap is left in the chain.
func (s *Store) Delete(id uint) error {
	var cur models.LedgerEntry
	if err := s.db.First(&cur, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NewNotFound("ledger entry", id)
		}
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.LedgerEntry{}, id).Error; err != nil {
			return err
		}
		return recalcFrom(tx, cur.TenantID, cur.TransactionDate)
	})
}

// RecalculateTenant rewrites the whole balance chain for a tenant from the
// first entry. Used by the audit tool to repair drift.
func (s *Store) RecalculateTenant(tenantID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return recalcFrom(tx, tenantID, time.Time{})
	})
}

// TenantBalance returns the balance of the tenant's most recent entry by
// (transaction_date desc, id desc), zero when none exist.
func (s *Store) TenantBalance(tenantID uint) (decimal.Decimal, error) {
	var last models.LedgerEntry
	err := s.db.Where("tenant_id = ?", tenantID).
		Order("transaction_date desc, id desc").
		First(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return last.Balance, nil
}

// List returns a page of the tenant's entries in chronological order.
func (s *Store) List(tenantID uint, limit, offset int) ([]models.LedgerEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 200
	}
	var entries []models.LedgerEntry
	err := s.db.Where("tenant_id = ?", tenantID).
		Order("transaction_date asc, id asc").
		Limit(limit).Offset(offset).
		Find(&entries).Error
	return entries, err
}

// Summary aggregates a tenant's ledger server-side.
type Summary struct {
	TotalDebit  decimal.Decimal `json:"total_debit"`
	TotalCredit decimal.Decimal `json:"total_credit"`
	Net         decimal.Decimal `json:"net"`
	Count       int64           `json:"count"`
}

// Summarize computes sum of debits, sum of credits and the net for a tenant.
func (s *Store) Summarize(tenantID uint) (Summary, error) {
	var out Summary
	row := s.db.Model(&models.LedgerEntry{}).
		Where("tenant_id = ?", tenantID).
		Select("COALESCE(SUM(debit_amount),0), COALESCE(SUM(credit_amount),0), COUNT(*)").
		Row()
	if err := row.Scan(&out.TotalDebit, &out.TotalCredit, &out.Count); err != nil {
		return out, err
	}
	out.Net = out.TotalDebit.Sub(out.TotalCredit)
	return out, nil
}
