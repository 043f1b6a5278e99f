package database

import (
	"fmt"
	"strings"

	"alyasmeen-backend/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the store and migrates the schema. The default is a local
// SQLite file so both front-ends can share one store file; a Postgres DSN is
// recognized and used as-is.
func Open(dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if isPostgresDSN(dsn) {
		dialector = postgres.Open(dsn)
	} else {
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	if err := db.AutoMigrate(
		&models.Product{},
		&models.Sale{},
		&models.User{},
	); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

func isPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") ||
		strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=")
}
