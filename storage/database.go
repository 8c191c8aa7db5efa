package storage

import (
	"os"

	"boarding-marketplace-server/models"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var DB *gorm.DB

func connectToDB() *gorm.DB {
	// Only load .env in development (when RENDER env var is not set)
	if os.Getenv("RENDER") == "" {
		if err := godotenv.Load(); err != nil {
			zap.S().Info("no .env file loaded, relying on process environment")
		}
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		zap.S().Panic("DB_CONNECTION_STRING environment variable is required")
	}

	db, dbError := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if dbError != nil {
		zap.S().Panicw("error connecting to db", "error", dbError)
	}

	DB = db
	return db
}

func PerformMigrations(db *gorm.DB) {
	db.AutoMigrate(
		&models.User{},
		&models.Boarding{},
		&models.Reservation{},
		&models.RentalPeriod{},
		&models.Payment{},
		&models.VisitRequest{},
		&models.Review{},
		&models.SavedBoarding{},
		&models.Notification{},
		&models.AuditLog{},
	)
}

func InitializeDB() *gorm.DB {
	db := connectToDB()
	PerformMigrations(db)
	return db
}

// LockForUpdate takes a row-level lock inside the surrounding transaction so
// that concurrent guarded read-modify-writes on the same row serialize.
// SQLite (used in tests) has no FOR UPDATE; its single-writer model already
// serializes them.
func LockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}
