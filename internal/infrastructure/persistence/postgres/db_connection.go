// Package postgres provides the GORM-backed implementation of the domain
// repositories. Production deployments run against PostgreSQL; tests use the
// same repository over an in-memory SQLite database.
package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/openjwks/jwksd/internal/config"
	"github.com/openjwks/jwksd/internal/domain/models"
	"github.com/openjwks/jwksd/pkg/errors"
	"github.com/openjwks/jwksd/pkg/logger"
)

// NewDBConnection opens a PostgreSQL connection pool, verifies it with a
// ping, and migrates the key_records table.
func NewDBConnection(ctx context.Context, cfg *config.DatabaseConfig, log logger.Logger) (*gorm.DB, error) {
	log.Info(ctx, "connecting to PostgreSQL",
		logger.String("host", cfg.Host),
		logger.Int("port", cfg.Port),
		logger.String("database", cfg.Database),
	)

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, errors.ErrPersistence("connect", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.ErrPersistence("connect", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxConns)
	sqlDB.SetMaxIdleConns(cfg.MinConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxConnLifetime) * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		return nil, errors.ErrPersistence("ping", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Info(ctx, "PostgreSQL connection established",
		logger.String("dsn", fmt.Sprintf("%s:%d/%s", cfg.Host, cfg.Port, cfg.Database)),
	)
	return db, nil
}

// Migrate creates or updates the key_records schema. The service owns a
// single table, so auto-migration on start is sufficient.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.KeyRecord{}); err != nil {
		return errors.ErrPersistence("migrate", err)
	}
	return nil
}
