package database

import (
	"fmt"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/maasir554/fingertail/server/internal/config"
	logging "github.com/maasir554/fingertail/server/internal/logging"
	"github.com/maasir554/fingertail/server/internal/models"
)

// Open connects to the configured SQL backend and runs migrations.
func Open(driver string, dbConf config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			dbConf.Host, dbConf.User, dbConf.Password, dbConf.DBName, dbConf.Port)
		// lib/pq is the database/sql driver underneath GORM.
		dialector = postgres.New(postgres.Config{DriverName: "postgres", DSN: dsn})
	case "sqlite":
		dialector = sqlite.Open(dbConf.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported SQL driver %q", driver)
	}

	gormLogger := logging.NewGormZapLogger(log)
	gormLogger.LogLevel = logger.Warn

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Database connection established successfully.", zap.String("driver", driver))

	if err := Migrate(db); err != nil {
		return nil, err
	}
	log.Info("Database migrations completed successfully.")
	return db, nil
}

// Migrate creates the blob table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Blob{}); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}
	return nil
}
