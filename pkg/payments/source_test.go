package payments

import (
	"testing"

	"pmoffice/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestResolveSourceRef(t *testing.T) {
	cases := []struct {
		name  string
		entry models.PaymentEntry
		want  SourceRef
	}{
		{
			"plain numeric id",
			models.PaymentEntry{SourceType: "rent_invoice", SourceID: "42"},
			SourceRef{Kind: SourceRentInvoice, ID: 42},
		},
		{
			"composite type:id string",
			models.PaymentEntry{SourceType: "financial_record", SourceID: "financial_record:7"},
			SourceRef{Kind: SourceFinancialRecord, ID: 7},
		},
		{
			"falls back to metadata",
			models.PaymentEntry{Metadata: models.Meta{"source_type": "rent_invoice", "source_id": "13"}},
			SourceRef{Kind: SourceRentInvoice, ID: 13},
		},
		{
			"unknown source type",
			models.PaymentEntry{SourceType: "lease", SourceID: "5"},
			SourceRef{},
		},
		{
			"zero id",
			models.PaymentEntry{SourceType: "rent_invoice", SourceID: "0"},
			SourceRef{Kind: SourceRentInvoice},
		},
		{
			"negative id",
			models.PaymentEntry{SourceType: "rent_invoice", SourceID: "rent_invoice:-3"},
			SourceRef{Kind: SourceRentInvoice},
		},
		{
			"garbage id",
			models.PaymentEntry{SourceType: "rent_invoice", SourceID: "abc"},
			SourceRef{Kind: SourceRentInvoice},
		},
		{
			"no source at all",
			models.PaymentEntry{},
			SourceRef{},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ResolveSourceRef(&tc.entry))
		})
	}
}

func seedRentInvoice(t *testing.T, gdb *gorm.DB, unit models.TenantUnit, rent, lateFee string) models.RentInvoice {
	t.Helper()
	inv := models.RentInvoice{
		InvoiceNumber: "INV-2024-11-001",
		LandlordID:    landlordID,
		TenantID:      unit.TenantID,
		TenantUnitID:  unit.ID,
		RentAmount:    dec(rent),
		LateFee:       dec(lateFee),
		Status:        models.InvoiceStatusSent,
	}
	require.NoError(t, gdb.Create(&inv).Error)
	return inv
}

func TestCompletedPaymentSettlesRentInvoice(t *testing.T) {
	gdb := testDB(t)
	en := NewEngine(gdb)
	unit := seedUnit(t, gdb)
	inv := seedRentInvoice(t, gdb, unit, "15000", "500")

	entry, fx, err := en.Create(landlordID, CreateInput{
		PaymentType:     TypeRent,
		TenantUnitID:    &unit.ID,
		Amount:          dec("15500"), // rent + late fee
		Status:          StatusCompleted,
		TransactionDate: "2024-11-05",
		PaymentMethod:   "bank_transfer",
		SourceType:      "rent_invoice",
		SourceID:        "rent_invoice:1",
	})
	require.NoError(t, err)
	require.Equal(t, SourceSettled, fx.Source.Result)
	require.Equal(t, inv.ID, fx.Source.ID)

	var got models.RentInvoice
	require.NoError(t, gdb.First(&got, inv.ID).Error)
	require.Equal(t, models.InvoiceStatusPaid, got.Status)
	require.NotNil(t, got.PaidDate)
	require.Equal(t, "2024-11-05", got.PaidDate.Format("2006-01-02"))
	require.Equal(t, "bank_transfer", got.PaymentMethod)
	require.NotNil(t, entry.CapturedAt)
}

func TestPartialPaymentNeverPaysInvoice(t *testing.T) {
	gdb := testDB(t)
	en := NewEngine(gdb)
	unit := seedUnit(t, gdb)
	inv := seedRentInvoice(t, gdb, unit, "15000", "0")

	// full amount but explicit partial status: the invoice stays unpaid
	_, fx, err := en.Create(landlordID, CreateInput{
		PaymentType:  TypeRent,
		TenantUnitID: &unit.ID,
		Amount:       dec("15000"),
		Status:       StatusPartial,
		SourceType:   "rent_invoice",
		SourceID:     "1",
	})
	require.NoError(t, err)
	require.Equal(t, SourcePartial, fx.Source.Result)

	var got models.RentInvoice
	require.NoError(t, gdb.First(&got, inv.ID).Error)
	require.Equal(t, models.InvoiceStatusSent, got.Status)
	require.Nil(t, got.PaidDate)
}

func TestUnderpaymentLeavesInvoiceOpen(t *testing.T) {
	gdb := testDB(t)
	en := NewEngine(gdb)
	unit := seedUnit(t, gdb)
	inv := seedRentInvoice(t, gdb, unit, "15000", "500")

	_, fx, err := en.Create(landlordID, CreateInput{
		PaymentType:  TypeRent,
		TenantUnitID: &unit.ID,
		Amount:       dec("15000"), // 500 short of the total
		Status:       StatusCompleted,
		SourceType:   "rent_invoice",
		SourceID:     "1",
	})
	require.NoError(t, err)
	require.Equal(t, SourcePartial, fx.Source.Result)

	var got models.RentInvoice
	require.NoError(t, gdb.First(&got, inv.ID).Error)
	require.Equal(t, models.InvoiceStatusSent, got.Status)
}

func TestSourceNotFoundIsObservableOnly(t *testing.T) {
	gdb := testDB(t)
	en := NewEngine(gdb)
	unit := seedUnit(t, gdb)

	entry, fx, err := en.Create(landlordID, CreateInput{
		PaymentType:  TypeRent,
		TenantUnitID: &unit.ID,
		Amount:       dec("15000"),
		Status:       StatusCompleted,
		SourceType:   "rent_invoice",
		SourceID:     "777",
	})
	require.NoError(t, err, "a missing source never fails the create")
	require.Equal(t, StatusCompleted, entry.Status)
	require.Equal(t, SourceNotFound, fx.Source.Result)
}

func TestPartialPaymentMarksFinancialRecordPartial(t *testing.T) {
	gdb := testDB(t)
	en := NewEngine(gdb)
	unit := seedUnit(t, gdb)

	rec := models.FinancialRecord{
		LandlordID:      landlordID,
		TenantUnitID:    &unit.ID,
		Type:            models.RecordTypeFee,
		Category:        "late_fee",
		Amount:          dec("10000"),
		Status:          models.RecordStatusPending,
		TransactionDate: today(),
	}
	require.NoError(t, gdb.Create(&rec).Error)

	_, fx, err := en.Create(landlordID, CreateInput{
		PaymentType:   TypeFee,
		TenantUnitID:  &unit.ID,
		Amount:        dec("5000"),
		Status:        StatusPartial,
		PaymentMethod: "cash",
		SourceType:    "financial_record",
		SourceID:      "1",
	})
	require.NoError(t, err)
	require.Equal(t, SourcePartial, fx.Source.Result)
	// settling a financial record never also mirrors into one
	require.Equal(t, MirrorSkipped, fx.Mirror.Result)

	var got models.FinancialRecord
	require.NoError(t, gdb.First(&got, rec.ID).Error)
	require.Equal(t, models.RecordStatusPartial, got.Status)
	require.NotNil(t, got.PaidDate)
	require.Equal(t, "cash", got.PaymentMethod)
	require.NotEqual(t, models.RecordStatusCompleted, got.Status)
}

func TestFullPaymentCompletesFinancialRecord(t *testing.T) {
	gdb := testDB(t)
	en := NewEngine(gdb)
	unit := seedUnit(t, gdb)

	rec := models.FinancialRecord{
		LandlordID:      landlordID,
		TenantUnitID:    &unit.ID,
		Type:            models.RecordTypeExpense,
		Category:        "maintenance",
		Amount:          dec("2500"),
		Status:          models.RecordStatusPending,
		TransactionDate: today(),
	}
	require.NoError(t, gdb.Create(&rec).Error)

	_, fx, err := en.Create(landlordID, CreateInput{
		PaymentType:  TypeMaintenanceExpense,
		TenantUnitID: &unit.ID,
		Amount:       dec("2500"),
		Status:       StatusCompleted,
		SourceType:   "financial_record",
		SourceID:     "1",
	})
	require.NoError(t, err)
	require.Equal(t, SourceSettled, fx.Source.Result)

	var got models.FinancialRecord
	require.NoError(t, gdb.First(&got, rec.ID).Error)
	require.Equal(t, models.RecordStatusCompleted, got.Status)
	require.NotNil(t, got.PaidDate)
}
