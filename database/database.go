// Package database wires the GORM connection and schema migration.
package database

import (
	"fmt"
	"log"
	"skillswap/config"
	"skillswap/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Connect opens the PostgreSQL connection and migrates the schema.
func Connect(cfg *config.Config) *gorm.DB {
	var err error

	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost,
		cfg.DBPort,
		cfg.DBUser,
		cfg.DBPassword,
		cfg.DBName,
	)

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})

	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	log.Println("Database connected successfully")

	if err := Migrate(DB); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	log.Println("Database migration completed")
	return DB
}

// Migrate runs AutoMigrate for every entity. Shared with the test setup so
// schema changes can never diverge between the two.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Skill{},
		&models.TeachSkill{},
		&models.LearnSkill{},
		&models.SwapRequest{},
		&models.Session{},
		&models.ProgressRecord{},
	); err != nil {
		return err
	}

	// Partial unique index backing the one-pending-request-per-pair rule, so
	// two concurrent creates cannot both slip past the handler's check.
	return db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_swap_requests_pending_pair
		 ON swap_requests (sender_id, receiver_id) WHERE status = 'PENDING'`,
	).Error
}
