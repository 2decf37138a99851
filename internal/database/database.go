package database

import (
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// Connect opens the database behind the DSN. A postgres:// DSN selects
// PostgreSQL with a sized connection pool; anything else is treated as an
// SQLite path for local development and tests (cgo-free driver, single
// connection so concurrent writers queue instead of failing on a locked
// file).
func Connect(dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	isPostgres := strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")

	var db *gorm.DB
	var err error
	if isPostgres {
		log.Println("connecting to PostgreSQL")
		db, err = gorm.Open(postgres.Open(dsn), cfg)
	} else {
		log.Println("using SQLite:", dsn)
		db, err = gorm.Open(gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        dsn,
		}), cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("access connection pool: %w", err)
	}
	if isPostgres {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(time.Hour)
	} else {
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}
