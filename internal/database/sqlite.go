package database

import (
	"fmt"
	"sync/atomic"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var ephemeralSeq atomic.Uint64

// OpenEphemeral opens a private in-memory SQLite database with the engine
// schema applied. Used by tests and by the seeder's dry-run mode; production
// always runs on Postgres. Each call gets its own database so parallel tests
// never share state.
func OpenEphemeral() (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:ephemeral_%d?mode=memory&cache=shared", ephemeralSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate in-memory database: %w", err)
	}
	return db, nil
}
