package main

import (
	"log"
	"os"
	"strings"

	"pmoffice/models"
	"pmoffice/pkg/ledger"
	"pmoffice/pkg/payments"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var db *gorm.DB
var ledgerStore *ledger.Store
var payEngine *payments.Engine

func initDB() {
	var err error
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN is not set. This project requires a Postgres DSN in DB_DSN.")
	}
	db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect postgres database:", err)
	}
	// Control schema migrations with env DB_AUTO_MIGRATE (default true). Any permission errors will be logged and ignored.
	shouldMigrate := true
	if v := os.Getenv("DB_AUTO_MIGRATE"); v != "" {
		lv := strings.ToLower(v)
		if lv == "false" || lv == "0" || lv == "no" {
			shouldMigrate = false
		}
	}
	if shouldMigrate {
		migrateAll(db)
	}
	seedDB()
	ledgerStore = ledger.NewStore(db)
	payEngine = payments.NewEngine(db)
}

// migrateAll runs AutoMigrate model by model so a failure on one doesn't block others.
func migrateAll(gdb *gorm.DB) {
	type named struct {
		name  string
		model any
	}
	for _, m := range []named{
		{"roles", &models.Role{}},
		{"users", &models.User{}},
		{"refresh_tokens", &models.RefreshToken{}},
		{"tenants", &models.Tenant{}},
		{"tenant_units", &models.TenantUnit{}},
		{"payment_types", &models.PaymentType{}},
		{"ledger_entries", &models.LedgerEntry{}},
		{"rent_invoices", &models.RentInvoice{}},
		{"maintenance_invoices", &models.MaintenanceInvoice{}},
		{"financial_records", &models.FinancialRecord{}},
		{"payment_entries", &models.PaymentEntry{}},
	} {
		if err := gdb.AutoMigrate(m.model); err != nil {
			log.Printf("migration warning (%s): %v", m.name, err)
		}
	}
}

func seedDB() {
	// Ensure master roles exist
	roles := []models.Role{{Name: "administrator", Description: "full access"}, {Name: "landlord", Description: "property owner"}}
	for _, r := range roles {
		var cnt int64
		db.Model(&models.Role{}).Where("name = ?", r.Name).Count(&cnt)
		if cnt == 0 {
			db.Create(&r)
		}
	}

	seedPaymentTypes()

	// Check if admin user exists
	var count int64
	db.Model(&models.User{}).Where("username = ?", "admin").Count(&count)
	if count == 0 {
		var role models.Role
		if err := db.Where("name = ?", "administrator").First(&role).Error; err != nil {
			log.Printf("failed to find administrator role: %v", err)
		}
		rid := role.ID
		admin := models.User{
			Username: "admin",
			RoleID:   &rid,
		}
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
		admin.HashedPassword = hashedPassword
		db.Create(&admin)
		log.Println("Seeded admin user: username=admin, password=admin123")
	}
}

// seedPaymentTypes creates the master payment type rows. Kind is fixed here,
// at configuration time; request paths never classify by name.
func seedPaymentTypes() {
	names := []string{
		"Rent Payment",
		"Advance Payment",
		"Maintenance Charge",
		"Repair Service",
		"Security Deposit",
		"Miscellaneous",
	}
	for _, name := range names {
		var cnt int64
		db.Model(&models.PaymentType{}).Where("name = ?", name).Count(&cnt)
		if cnt == 0 {
			db.Create(&models.PaymentType{Name: name, Kind: models.KindFromName(name)})
		}
	}
	// Backfill rows that predate the kind column.
	var untagged []models.PaymentType
	if err := db.Where("kind = '' OR kind IS NULL").Find(&untagged).Error; err == nil {
		for _, pt := range untagged {
			db.Model(&models.PaymentType{}).Where("id = ?", pt.ID).Update("kind", models.KindFromName(pt.Name))
		}
	}
}
