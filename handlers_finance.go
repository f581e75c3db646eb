package main

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"pmoffice/models"
	"pmoffice/pkg/apperr"
	"pmoffice/pkg/ledger"
	"pmoffice/pkg/payments"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func parseUintParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(v), true
}

func pageParams(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func parseDateField(c *gin.Context, field, value string) (time.Time, bool) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return ledger.DateOnly(t), true
		}
	}
	respondErr(c, apperr.NewValidation(field, "must be a YYYY-MM-DD date"))
	return time.Time{}, false
}

// tenantOwnedBy loads a tenant scoped to the landlord; a miss (wrong owner or
// no such tenant) looks identical to the caller.
func tenantOwnedBy(tenantID, landlordID uint) (*models.Tenant, error) {
	var t models.Tenant
	if err := db.Where("id = ? AND landlord_id = ?", tenantID, landlordID).First(&t).Error; err != nil {
		return nil, apperr.NewNotFound("tenant", tenantID)
	}
	return &t, nil
}

// --- tenants & units ---

func createTenantHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var req struct {
		Name     string `json:"name" binding:"required"`
		Phone    string `json:"phone"`
		Email    string `json:"email"`
		IDCardNo string `json:"id_card_no"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t := models.Tenant{LandlordID: user.ID, Name: req.Name, Phone: req.Phone, Email: req.Email, IDCardNo: req.IDCardNo, Active: true}
	if err := db.Create(&t).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusOK, t)
}

func listTenantsHandler(c *gin.Context) {
	role, _ := c.Get("role")
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	limit, offset := pageParams(c)
	if limit <= 0 || limit > 200 {
		limit = 200
	}
	var tenants []models.Tenant
	q := db.Model(&models.Tenant{})
	if role != "administrator" {
		q = q.Where("landlord_id = ?", user.ID)
	}
	if err := q.Order("id desc").Limit(limit).Offset(offset).Find(&tenants).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, tenants)
}

func createUnitHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var req struct {
		TenantID   uint            `json:"tenant_id" binding:"required"`
		UnitLabel  string          `json:"unit_label" binding:"required"`
		RentAmount decimal.Decimal `json:"rent_amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, err := tenantOwnedBy(req.TenantID, user.ID); err != nil {
		respondErr(c, err)
		return
	}
	u := models.TenantUnit{LandlordID: user.ID, TenantID: req.TenantID, UnitLabel: req.UnitLabel, RentAmount: req.RentAmount, Active: true}
	if err := db.Create(&u).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusOK, u)
}

func listUnitsHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	limit, offset := pageParams(c)
	if limit <= 0 || limit > 200 {
		limit = 200
	}
	var units []models.TenantUnit
	if err := db.Where("landlord_id = ?", user.ID).Order("id desc").Limit(limit).Offset(offset).Find(&units).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, units)
}

// --- invoices (collaborator CRUD, enough to exercise linking end-to-end) ---

type invoiceRequest struct {
	InvoiceNumber string          `json:"invoice_number" binding:"required"`
	TenantID      uint            `json:"tenant_id" binding:"required"`
	TenantUnitID  uint            `json:"tenant_unit_id" binding:"required"`
	Amount        decimal.Decimal `json:"amount"`
	LateFee       decimal.Decimal `json:"late_fee"`
	DueDate       string          `json:"due_date"`
}

func (r *invoiceRequest) check(c *gin.Context, landlordID uint) bool {
	if !r.Amount.IsPositive() {
		respondErr(c, apperr.NewValidation("amount", "Amount must be greater than zero"))
		return false
	}
	if r.LateFee.IsNegative() {
		respondErr(c, apperr.NewValidation("late_fee", "Late fee cannot be negative"))
		return false
	}
	if _, err := tenantOwnedBy(r.TenantID, landlordID); err != nil {
		respondErr(c, err)
		return false
	}
	return true
}

func createRentInvoiceHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var req invoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.check(c, user.ID) {
		return
	}
	inv := models.RentInvoice{
		InvoiceNumber: req.InvoiceNumber,
		LandlordID:    user.ID,
		TenantID:      req.TenantID,
		TenantUnitID:  req.TenantUnitID,
		RentAmount:    req.Amount,
		LateFee:       req.LateFee,
		Status:        models.InvoiceStatusSent,
	}
	if req.DueDate != "" {
		d, ok := parseDateField(c, "due_date", req.DueDate)
		if !ok {
			return
		}
		inv.DueDate = &d
	}
	if err := db.Create(&inv).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusOK, inv)
}

func listRentInvoicesHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	limit, offset := pageParams(c)
	if limit <= 0 || limit > 200 {
		limit = 200
	}
	var invoices []models.RentInvoice
	if err := db.Where("landlord_id = ?", user.ID).Order("id desc").Limit(limit).Offset(offset).Find(&invoices).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, invoices)
}

func createMaintenanceInvoiceHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var req invoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.check(c, user.ID) {
		return
	}
	inv := models.MaintenanceInvoice{
		InvoiceNumber: req.InvoiceNumber,
		LandlordID:    user.ID,
		TenantID:      req.TenantID,
		TenantUnitID:  req.TenantUnitID,
		Amount:        req.Amount,
		LateFee:       req.LateFee,
		Status:        models.InvoiceStatusSent,
	}
	if req.DueDate != "" {
		d, ok := parseDateField(c, "due_date", req.DueDate)
		if !ok {
			return
		}
		inv.DueDate = &d
	}
	if err := db.Create(&inv).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusOK, inv)
}

func listMaintenanceInvoicesHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	limit, offset := pageParams(c)
	if limit <= 0 || limit > 200 {
		limit = 200
	}
	var invoices []models.MaintenanceInvoice
	if err := db.Where("landlord_id = ?", user.ID).Order("id desc").Limit(limit).Offset(offset).Find(&invoices).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, invoices)
}

// --- ledger ---

type ledgerEntryRequest struct {
	TenantID            uint            `json:"tenant_id" binding:"required"`
	PaymentTypeID       *uint           `json:"payment_type_id"`
	TransactionDate     string          `json:"transaction_date" binding:"required"`
	Description         string          `json:"description"`
	ReferenceNo         string          `json:"reference_no"`
	DebitAmount         decimal.Decimal `json:"debit_amount"`
	CreditAmount        decimal.Decimal `json:"credit_amount"`
	PaymentMethod       string          `json:"payment_method"`
	TransferReferenceNo string          `json:"transfer_reference_no"`
	Remarks             string          `json:"remarks"`
}

func (r *ledgerEntryRequest) toModel(c *gin.Context, createdBy string) (*models.LedgerEntry, bool) {
	date, ok := parseDateField(c, "transaction_date", r.TransactionDate)
	if !ok {
		return nil, false
	}
	return &models.LedgerEntry{
		TenantID:            r.TenantID,
		PaymentTypeID:       r.PaymentTypeID,
		TransactionDate:     date,
		Description:         r.Description,
		ReferenceNo:         r.ReferenceNo,
		DebitAmount:         r.DebitAmount,
		CreditAmount:        r.CreditAmount,
		PaymentMethod:       r.PaymentMethod,
		TransferReferenceNo: r.TransferReferenceNo,
		Remarks:             r.Remarks,
		CreatedBy:           createdBy,
	}, true
}

func createLedgerEntryHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var req ledgerEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, err := tenantOwnedBy(req.TenantID, user.ID); err != nil {
		respondErr(c, err)
		return
	}
	entry, ok := req.toModel(c, user.Username)
	if !ok {
		return
	}
	outcome, err := ledgerStore.Create(entry)
	if err != nil {
		respondErr(c, err)
		return
	}
	if outcome.Result == ledger.LinkAmountMismatch || outcome.Result == ledger.LinkNotFound {
		log.Printf("invoice link miss for ledger entry %d: %s (%s)", entry.ID, outcome.Result, outcome.Detail)
	}
	c.JSON(http.StatusOK, gin.H{"entry": entry, "link": outcome})
}

// ledgerEntryOwnedBy checks the entry exists and its tenant belongs to the landlord.
func ledgerEntryOwnedBy(id, landlordID uint) (*models.LedgerEntry, error) {
	var e models.LedgerEntry
	if err := db.First(&e, id).Error; err != nil {
		return nil, apperr.NewNotFound("ledger entry", id)
	}
	if _, err := tenantOwnedBy(e.TenantID, landlordID); err != nil {
		return nil, apperr.NewNotFound("ledger entry", id)
	}
	return &e, nil
}

func updateLedgerEntryHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	cur, err := ledgerEntryOwnedBy(id, user.ID)
	if err != nil {
		respondErr(c, err)
		return
	}
	var req ledgerEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	// entries never move between tenants
	req.TenantID = cur.TenantID
	in, ok := req.toModel(c, cur.CreatedBy)
	if !ok {
		return
	}
	updated, err := ledgerStore.Update(id, in)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func deleteLedgerEntryHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	if _, err := ledgerEntryOwnedBy(id, user.ID); err != nil {
		respondErr(c, err)
		return
	}
	if err := ledgerStore.Delete(id); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "ledger entry deleted"})
}

func listLedgerHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	tenantID, ok := parseUintParam(c, "tenant_id")
	if !ok {
		return
	}
	if _, err := tenantOwnedBy(tenantID, user.ID); err != nil {
		respondErr(c, err)
		return
	}
	limit, offset := pageParams(c)
	entries, err := ledgerStore.List(tenantID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, entries)
}

func tenantBalanceHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	tenantID, ok := parseUintParam(c, "tenant_id")
	if !ok {
		return
	}
	if _, err := tenantOwnedBy(tenantID, user.ID); err != nil {
		respondErr(c, err)
		return
	}
	balance, err := ledgerStore.TenantBalance(tenantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tenant_id": tenantID, "balance": balance})
}

func ledgerSummaryHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	tenantID, ok := parseUintParam(c, "tenant_id")
	if !ok {
		return
	}
	if _, err := tenantOwnedBy(tenantID, user.ID); err != nil {
		respondErr(c, err)
		return
	}
	summary, err := ledgerStore.Summarize(tenantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// --- unified payments ---

func createPaymentHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var in payments.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	in.CreatedBy = user.Username
	entry, fx, err := payEngine.Create(user.ID, in)
	if err != nil {
		respondErr(c, err)
		return
	}
	logSideEffects(entry, fx)
	c.JSON(http.StatusOK, gin.H{"entry": entry, "effects": fx})
}

func capturePaymentHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var p payments.CapturePayload
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	entry, fx, err := payEngine.Capture(id, user.ID, p)
	if err != nil {
		respondErr(c, err)
		return
	}
	logSideEffects(entry, fx)
	c.JSON(http.StatusOK, gin.H{"entry": entry, "effects": fx})
}

func voidPaymentHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var p payments.VoidPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	entry, err := payEngine.Void(id, user.ID, p)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func getPaymentHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	entry, err := payEngine.Get(id, user.ID)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func listPaymentsHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	limit, offset := pageParams(c)
	entries, err := payEngine.List(user.ID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, entries)
}

func paymentSummaryHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	summary, err := payEngine.Summarize(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

func logSideEffects(entry *models.PaymentEntry, fx payments.SideEffects) {
	if !payments.IsSettled(entry.Status) {
		return
	}
	if fx.Source.Result == payments.SourceNotFound || (fx.Source.Result == payments.SourceSkipped && fx.Source.Kind != payments.SourceNone) {
		log.Printf("payment %d source update: %s (%s)", entry.ID, fx.Source.Result, fx.Source.Detail)
	}
	if fx.Mirror.Result == payments.MirrorSkipped && fx.Mirror.Detail != "" {
		log.Printf("payment %d mirror: %s (%s)", entry.ID, fx.Mirror.Result, fx.Mirror.Detail)
	}
}
