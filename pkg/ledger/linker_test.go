package ledger

import (
	"testing"

	"pmoffice/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedPaymentType(t *testing.T, gdb *gorm.DB, name, kind string) models.PaymentType {
	t.Helper()
	pt := models.PaymentType{Name: name, Kind: kind}
	require.NoError(t, gdb.Create(&pt).Error)
	return pt
}

func seedRentInvoice(t *testing.T, gdb *gorm.DB, tenantID uint, number, rent, lateFee string) models.RentInvoice {
	t.Helper()
	inv := models.RentInvoice{
		InvoiceNumber: number,
		LandlordID:    1,
		TenantID:      tenantID,
		TenantUnitID:  1,
		RentAmount:    dec(rent),
		LateFee:       dec(lateFee),
		Status:        models.InvoiceStatusSent,
	}
	require.NoError(t, gdb.Create(&inv).Error)
	return inv
}

func TestLinkSettlesRentInvoice(t *testing.T) {
	gdb := testDB(t)
	s := NewStore(gdb)
	tenant := seedTenant(t, gdb)
	pt := seedPaymentType(t, gdb, "Rent Payment", models.PaymentKindRent)
	inv := seedRentInvoice(t, gdb, tenant.ID, "INV-2024-11-001", "15000", "0")

	// charge then pay, referencing the invoice number
	mustCreate(t, s, &models.LedgerEntry{TenantID: tenant.ID, TransactionDate: date("2024-11-01"), DebitAmount: dec("15000")})
	out := mustCreate(t, s, &models.LedgerEntry{
		TenantID:        tenant.ID,
		PaymentTypeID:   &pt.ID,
		TransactionDate: date("2024-11-05"),
		CreditAmount:    dec("15000"),
		ReferenceNo:     "INV-2024-11-001",
		PaymentMethod:   "bank_transfer",
	})

	require.Equal(t, Linked, out.Result)
	require.Equal(t, "rent", out.Invoice)
	require.Equal(t, inv.ID, out.InvoiceID)

	var got models.RentInvoice
	require.NoError(t, gdb.First(&got, inv.ID).Error)
	require.Equal(t, models.InvoiceStatusPaid, got.Status)
	require.NotNil(t, got.PaidDate)
	require.Equal(t, "2024-11-05", got.PaidDate.Format("2006-01-02"))
	require.Equal(t, "bank_transfer", got.PaymentMethod)

	bal, err := s.TenantBalance(tenant.ID)
	require.NoError(t, err)
	require.True(t, bal.IsZero(), "tenant balance should return to zero, got %s", bal)
}

func TestLinkAmountMismatchLeavesInvoiceUnpaid(t *testing.T) {
	gdb := testDB(t)
	s := NewStore(gdb)
	tenant := seedTenant(t, gdb)
	pt := seedPaymentType(t, gdb, "Rent Payment", models.PaymentKindRent)
	inv := seedRentInvoice(t, gdb, tenant.ID, "INV-7", "15000", "500")

	out := mustCreate(t, s, &models.LedgerEntry{
		TenantID:        tenant.ID,
		PaymentTypeID:   &pt.ID,
		TransactionDate: date("2024-11-05"),
		CreditAmount:    dec("15000"), // invoice total is 15500
		ReferenceNo:     "INV-7",
	})

	require.Equal(t, LinkAmountMismatch, out.Result)
	require.Equal(t, inv.ID, out.InvoiceID)

	var got models.RentInvoice
	require.NoError(t, gdb.First(&got, inv.ID).Error)
	require.Equal(t, models.InvoiceStatusSent, got.Status)
	require.Nil(t, got.PaidDate)
}

func TestLinkWithinTolerance(t *testing.T) {
	gdb := testDB(t)
	s := NewStore(gdb)
	tenant := seedTenant(t, gdb)
	pt := seedPaymentType(t, gdb, "Rent Payment", models.PaymentKindRent)
	inv := seedRentInvoice(t, gdb, tenant.ID, "INV-8", "15000", "0")

	out := mustCreate(t, s, &models.LedgerEntry{
		TenantID:        tenant.ID,
		PaymentTypeID:   &pt.ID,
		TransactionDate: date("2024-11-05"),
		CreditAmount:    dec("15000.005"),
		ReferenceNo:     "INV-8",
	})
	require.Equal(t, Linked, out.Result)

	var got models.RentInvoice
	require.NoError(t, gdb.First(&got, inv.ID).Error)
	require.Equal(t, models.InvoiceStatusPaid, got.Status)
}

func TestLinkSkipsDebitsAndUnreferencedEntries(t *testing.T) {
	gdb := testDB(t)
	s := NewStore(gdb)
	tenant := seedTenant(t, gdb)
	pt := seedPaymentType(t, gdb, "Rent Payment", models.PaymentKindRent)

	out := mustCreate(t, s, &models.LedgerEntry{
		TenantID: tenant.ID, PaymentTypeID: &pt.ID,
		TransactionDate: date("2024-11-01"), DebitAmount: dec("100"), ReferenceNo: "INV-1",
	})
	require.Equal(t, LinkSkipped, out.Result)

	out = mustCreate(t, s, &models.LedgerEntry{
		TenantID: tenant.ID, PaymentTypeID: &pt.ID,
		TransactionDate: date("2024-11-02"), CreditAmount: dec("100"),
	})
	require.Equal(t, LinkSkipped, out.Result)

	// other-kind types are never invoice-backed
	other := seedPaymentType(t, gdb, "Security Deposit", models.PaymentKindOther)
	out = mustCreate(t, s, &models.LedgerEntry{
		TenantID: tenant.ID, PaymentTypeID: &other.ID,
		TransactionDate: date("2024-11-03"), CreditAmount: dec("100"), ReferenceNo: "INV-1",
	})
	require.Equal(t, LinkSkipped, out.Result)
}

func TestLinkNotFoundForWrongTenantOrPaidInvoice(t *testing.T) {
	gdb := testDB(t)
	s := NewStore(gdb)
	tenant := seedTenant(t, gdb)
	pt := seedPaymentType(t, gdb, "Rent Payment", models.PaymentKindRent)

	other := models.Tenant{LandlordID: 1, Name: "Hussain Manik", Active: true}
	require.NoError(t, gdb.Create(&other).Error)
	seedRentInvoice(t, gdb, other.ID, "INV-OTHER", "9000", "0")

	out := mustCreate(t, s, &models.LedgerEntry{
		TenantID: tenant.ID, PaymentTypeID: &pt.ID,
		TransactionDate: date("2024-11-05"), CreditAmount: dec("9000"), ReferenceNo: "INV-OTHER",
	})
	require.Equal(t, LinkNotFound, out.Result)

	paid := seedRentInvoice(t, gdb, tenant.ID, "INV-PAID", "9000", "0")
	require.NoError(t, gdb.Model(&paid).Update("status", models.InvoiceStatusPaid).Error)
	out = mustCreate(t, s, &models.LedgerEntry{
		TenantID: tenant.ID, PaymentTypeID: &pt.ID,
		TransactionDate: date("2024-11-06"), CreditAmount: dec("9000"), ReferenceNo: "INV-PAID",
	})
	require.Equal(t, LinkNotFound, out.Result)
}

func TestLinkSettlesMaintenanceInvoice(t *testing.T) {
	gdb := testDB(t)
	s := NewStore(gdb)
	tenant := seedTenant(t, gdb)
	pt := seedPaymentType(t, gdb, "Repair Service", models.PaymentKindMaintenance)

	inv := models.MaintenanceInvoice{
		InvoiceNumber: "MNT-3",
		LandlordID:    1,
		TenantID:      tenant.ID,
		TenantUnitID:  1,
		Amount:        dec("2500"),
		LateFee:       dec("0"),
		Status:        models.InvoiceStatusOverdue,
	}
	require.NoError(t, gdb.Create(&inv).Error)

	out := mustCreate(t, s, &models.LedgerEntry{
		TenantID: tenant.ID, PaymentTypeID: &pt.ID,
		TransactionDate: date("2024-11-06"), CreditAmount: dec("2500"), ReferenceNo: "MNT-3",
		PaymentMethod: "cash",
	})
	require.Equal(t, Linked, out.Result)
	require.Equal(t, "maintenance", out.Invoice)

	var got models.MaintenanceInvoice
	require.NoError(t, gdb.First(&got, inv.ID).Error)
	require.Equal(t, models.InvoiceStatusPaid, got.Status)
	require.Equal(t, "cash", got.PaymentMethod)
}
