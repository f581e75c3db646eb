package report

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"pmoffice/models"
	"pmoffice/pkg/payments"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func mustDBFromEnv() *gorm.DB {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN not set in env")
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	return gdb
}

// RunReport prints a month-bounded income/outgoing report for the landlord
// identified by username (month in YYYY-MM) and optionally lists the settled
// payment entries behind the totals.
func RunReport(username, month string, list bool) {
	gdb := mustDBFromEnv()

	var user models.User
	if err := gdb.Where("username = ?", username).First(&user).Error; err != nil {
		log.Fatalf("landlord not found: %v", err)
	}

	t, err := time.Parse("2006-01", month)
	if err != nil {
		log.Fatalf("invalid month format, expected YYYY-MM: %v", err)
	}
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	var income, outgoing sql.NullFloat64
	var cnt int64
	err = gdb.Raw(`SELECT
			COALESCE(SUM(CASE WHEN flow_direction = ? THEN amount ELSE 0 END),0) AS income,
			COALESCE(SUM(CASE WHEN flow_direction = ? THEN amount ELSE 0 END),0) AS outgoing,
			COUNT(*) AS cnt
		FROM payment_entries
		WHERE landlord_id = ? AND status IN (?, ?) AND transaction_date >= ? AND transaction_date < ?`,
		payments.FlowIncome, payments.FlowOutgoing,
		user.ID, payments.StatusCompleted, payments.StatusPartial, start, end).
		Row().Scan(&income, &outgoing, &cnt)
	if err != nil {
		log.Fatalf("query failed: %v", err)
	}

	fmt.Printf("Report for landlord=%s month=%s (UTC):\n", user.Username, month)
	fmt.Printf("  settled_entries=%d income=%.2f outgoing=%.2f net=%.2f\n",
		cnt, income.Float64, outgoing.Float64, income.Float64-outgoing.Float64)

	if list {
		var rows []models.PaymentEntry
		err := gdb.Where("landlord_id = ? AND status IN (?, ?) AND transaction_date >= ? AND transaction_date < ?",
			user.ID, payments.StatusCompleted, payments.StatusPartial, start, end).
			Order("id").Find(&rows).Error
		if err != nil {
			log.Fatalf("fetch rows failed: %v", err)
		}
		for _, r := range rows {
			date := ""
			if r.TransactionDate != nil {
				date = r.TransactionDate.Format("2006-01-02")
			}
			fmt.Printf("%d|%s|%s|%s|%s|%s|%s\n", r.ID, r.EntryNumber, r.PaymentType, r.FlowDirection, r.Amount.String(), r.Status, date)
		}
	}
}
