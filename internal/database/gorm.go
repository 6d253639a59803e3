package database

import (
	"fmt"
	"log"
	"strings"

	"crm-gateway/internal/config"
	"crm-gateway/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitGorm connects to PostgreSQL and runs migrations. Fatal on failure,
// the server cannot run without storage.
func InitGorm(cfg *config.Config) *gorm.DB {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}

	log.Println("Connected to PostgreSQL successfully")

	if err := Migrate(db); err != nil {
		log.Fatalf("Failed to run auto-migration: %v", err)
	}

	log.Println("Database migration completed")
	return db
}

// OpenSQLite opens an SQLite database at the given path. Used by tests
// with an in-memory DSN; a memory database is pinned to a single
// connection so the pool cannot rotate it away.
func OpenSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if strings.Contains(path, ":memory:") {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, Migrate(db)
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Lead{},
		&models.Note{},
		&models.Interaction{},
		&models.Campaign{},
		&models.SendRecord{},
	)
}
