package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"pmoffice/models"
	"pmoffice/pkg/ledger"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	tenantID := flag.Uint("tenant", 0, "audit a single tenant id (0 = all)")
	fix := flag.Bool("fix", false, "rewrite drifted balance chains")
	flag.Parse()

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	store := ledger.NewStore(db)

	var tenants []models.Tenant
	q := db.Order("id")
	if *tenantID != 0 {
		q = q.Where("id = ?", *tenantID)
	}
	if err := q.Find(&tenants).Error; err != nil {
		log.Fatalf("load tenants: %v", err)
	}

	drifted := 0
	for _, t := range tenants {
		var entries []models.LedgerEntry
		err := db.Where("tenant_id = ?", t.ID).
			Order("transaction_date asc, id asc").
			Find(&entries).Error
		if err != nil {
			log.Printf("tenant %d: load entries: %v", t.ID, err)
			continue
		}

		// re-derive the chain and compare against stored balances
		running := decimal.Zero
		bad := 0
		for _, e := range entries {
			running = running.Add(e.DebitAmount).Sub(e.CreditAmount)
			if !running.Equal(e.Balance) {
				bad++
				fmt.Printf("tenant %d entry %d (%s): stored=%s derived=%s\n",
					t.ID, e.ID, e.TransactionDate.Format("2006-01-02"), e.Balance.String(), running.String())
			}
		}
		if bad == 0 {
			continue
		}
		drifted++
		if *fix {
			if err := store.RecalculateTenant(t.ID); err != nil {
				log.Printf("tenant %d: recalculate: %v", t.ID, err)
				continue
			}
			fmt.Printf("tenant %d: rewrote %d drifted balances\n", t.ID, bad)
		}
	}

	if drifted == 0 {
		fmt.Println("all balance chains intact")
	} else if !*fix {
		fmt.Printf("%d tenant(s) drifted; re-run with -fix to repair\n", drifted)
	}
}
