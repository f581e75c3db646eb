package payments

import (
	"testing"

	"pmoffice/models"

	"github.com/stretchr/testify/require"
)

func TestRentPaymentMirrorsToFinancialRecord(t *testing.T) {
	gdb := testDB(t)
	en := NewEngine(gdb)
	unit := seedUnit(t, gdb)

	in := CreateInput{
		PaymentType:     TypeRent,
		TenantUnitID:    &unit.ID,
		Amount:          dec("15000"),
		Status:          StatusCompleted,
		TransactionDate: "2024-11-05",
		ReferenceNumber: "TRX-100",
	}
	_, fx, err := en.Create(landlordID, in)
	require.NoError(t, err)
	require.Equal(t, Mirrored, fx.Mirror.Result)

	var records []models.FinancialRecord
	require.NoError(t, gdb.Find(&records).Error)
	require.Len(t, records, 1)
	require.Equal(t, models.RecordTypeRent, records[0].Type)
	require.Equal(t, "monthly_rent", records[0].Category)
	require.Equal(t, models.RecordStatusCompleted, records[0].Status)
	require.True(t, records[0].Amount.Equal(dec("15000")))

	// identical create again: dedup skips the insert
	_, fx, err = en.Create(landlordID, in)
	require.NoError(t, err)
	require.Equal(t, MirrorDuplicate, fx.Mirror.Result)
	require.NoError(t, gdb.Find(&records).Error)
	require.Len(t, records, 1)
}

func TestMirrorGeneratesDescription(t *testing.T) {
	gdb := testDB(t)
	en := NewEngine(gdb)
	unit := seedUnit(t, gdb)

	_, fx, err := en.Create(landlordID, CreateInput{
		PaymentType:  TypeRent,
		TenantUnitID: &unit.ID,
		Amount:       dec("15000"),
		Status:       StatusCompleted,
	})
	require.NoError(t, err)

	var rec models.FinancialRecord
	require.NoError(t, gdb.First(&rec, fx.Mirror.RecordID).Error)
	require.Equal(t, "Rent - No reference", rec.Description)
}

func TestMirrorSkipsWithoutTenantUnit(t *testing.T) {
	gdb := testDB(t)
	en := NewEngine(gdb)

	_, fx, err := en.Create(landlordID, CreateInput{
		PaymentType: TypeOtherIncome,
		Amount:      dec("300"),
		Status:      StatusCompleted,
	})
	require.NoError(t, err)
	require.Equal(t, MirrorSkipped, fx.Mirror.Result)

	var count int64
	gdb.Model(&models.FinancialRecord{}).Count(&count)
	require.Zero(t, count)
}

func TestMirrorSkipsInvoiceBackedPayments(t *testing.T) {
	gdb := testDB(t)
	en := NewEngine(gdb)
	unit := seedUnit(t, gdb)
	seedRentInvoice(t, gdb, unit, "15000", "0")

	_, fx, err := en.Create(landlordID, CreateInput{
		PaymentType:  TypeRent,
		TenantUnitID: &unit.ID,
		Amount:       dec("15000"),
		Status:       StatusCompleted,
		SourceType:   "rent_invoice",
		SourceID:     "1",
	})
	require.NoError(t, err)
	require.Equal(t, MirrorSkipped, fx.Mirror.Result)

	var count int64
	gdb.Model(&models.FinancialRecord{}).Count(&count)
	require.Zero(t, count)
}

func TestSecurityRefundNeverMirrored(t *testing.T) {
	gdb := testDB(t)
	en := NewEngine(gdb)
	unit := seedUnit(t, gdb)

	_, fx, err := en.Create(landlordID, CreateInput{
		PaymentType:  TypeSecurityRefund,
		TenantUnitID: &unit.ID,
		Amount:       dec("10000"),
		Status:       StatusCompleted,
	})
	require.NoError(t, err)
	require.Equal(t, MirrorSkipped, fx.Mirror.Result)

	var count int64
	gdb.Model(&models.FinancialRecord{}).Count(&count)
	require.Zero(t, count)
}

func TestRecordClassMapping(t *testing.T) {
	cases := []struct {
		paymentType  string
		categoryHint string
		wantType     string
		wantCategory string
		wantMirrored bool
	}{
		{TypeRent, "", models.RecordTypeRent, "monthly_rent", true},
		{TypeRent, "utilities", models.RecordTypeRent, "monthly_rent", true},
		{TypeFee, "", models.RecordTypeFee, "late_fee", true},
		{TypeFee, "processing_fee", models.RecordTypeFee, "processing_fee", true},
		{TypeFee, "utilities", models.RecordTypeFee, "late_fee", true},
		{TypeMaintenanceExpense, "", models.RecordTypeExpense, "maintenance", true},
		{TypeOtherIncome, "", models.RecordTypeRent, "other", true},
		{TypeOtherIncome, "late_fee", models.RecordTypeFee, "late_fee", true},
		{TypeOtherIncome, "utilities", models.RecordTypeRent, "utilities", true},
		{TypeOtherIncome, "made-up", models.RecordTypeRent, "other", true},
		{TypeOtherOutgoing, "utilities", models.RecordTypeExpense, "utilities", true},
		{TypeOtherOutgoing, "made-up", models.RecordTypeExpense, "other", true},
		{TypeSecurityRefund, "", "", "", false},
	}
	for _, tc := range cases {
		gotType, gotCategory, mirrored := recordClass(tc.paymentType, tc.categoryHint)
		require.Equal(t, tc.wantMirrored, mirrored, "%s/%s", tc.paymentType, tc.categoryHint)
		require.Equal(t, tc.wantType, gotType, "%s/%s", tc.paymentType, tc.categoryHint)
		require.Equal(t, tc.wantCategory, gotCategory, "%s/%s", tc.paymentType, tc.categoryHint)
	}
}

func TestMirrorPartialStatusMapsOneToOne(t *testing.T) {
	gdb := testDB(t)
	en := NewEngine(gdb)
	unit := seedUnit(t, gdb)

	_, fx, err := en.Create(landlordID, CreateInput{
		PaymentType:  TypeFee,
		TenantUnitID: &unit.ID,
		Amount:       dec("500"),
		Status:       StatusPartial,
		Metadata:     map[string]string{"category": "processing_fee"},
	})
	require.NoError(t, err)
	require.Equal(t, Mirrored, fx.Mirror.Result)

	var rec models.FinancialRecord
	require.NoError(t, gdb.First(&rec, fx.Mirror.RecordID).Error)
	require.Equal(t, models.RecordStatusPartial, rec.Status)
	require.Equal(t, "processing_fee", rec.Category)
}
