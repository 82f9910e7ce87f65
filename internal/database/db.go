package database

import (
	"log"

	"garage-backend/internal/config"
	"garage-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Could not connect to database: %v", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}

	log.Println("Database connected, migrations complete.")
}

// Migrate is separate from Init so tests can run it against sqlite.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.TechnicianProfile{},
		&models.OTP{},
		&models.Customer{},
		&models.Supplier{},
		&models.Category{},
		&models.Part{},
		&models.InventoryTransaction{},
		&models.Job{},
		&models.JobStatusHistory{},
		&models.JobReassignment{},
		&models.JobPart{},
		&models.JobProgress{},
		&models.PartsRequest{},
		&models.TechnicianMessage{},
		&models.Sale{},
		&models.SaleItem{},
	)
}
