package database

import (
	"log"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"finwell-go-be/models"
)

// Connect opens the database and runs migrations. Persistence is an
// optional capability: a missing DSN or a failed dial returns nil and the
// engine runs with session-local artifacts only.
func Connect(dsn string) *gorm.DB {
	if dsn == "" {
		log.Println("DATABASE_URL not set, running without persistence")
		return nil
	}
	if !strings.Contains(dsn, "sslmode") {
		dsn += "?sslmode=require" // Fixes Supabase connection refusal
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Printf("Failed to connect to database, running without persistence: %v", err)
		return nil
	}

	log.Println("Connected to database successfully")

	log.Println("Running migrations...")
	err = db.AutoMigrate(
		&models.User{},
		&models.Account{},
		&models.Goal{},
		&models.Transaction{},
		&models.HealthRule{},
		&models.HealthFlag{},
		&models.Insight{},
		&models.SmartWin{},
	)
	if err != nil {
		log.Printf("Failed to migrate database, running without persistence: %v", err)
		return nil
	}
	log.Println("Database migrated successfully")

	return db
}
