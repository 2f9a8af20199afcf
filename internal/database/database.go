package database

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ticketeye/internal/models"
)

var (
	db   *gorm.DB
	once sync.Once
)

// Initialize opens the SQLite database and migrates the schema.
func Initialize(dbPath string) error {
	var initErr error
	once.Do(func() {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			initErr = fmt.Errorf("failed to create database directory: %v", err)
			return
		}

		var err error
		db, err = Open(dbPath)
		if err != nil {
			initErr = err
			return
		}

		log.Info().Str("path", dbPath).Msg("database initialized")
	})

	return initErr
}

// Open opens and migrates a database at the given DSN. Tests use this
// directly with the in-memory DSN instead of the shared instance.
func Open(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	if err := gdb.AutoMigrate(
		&models.Ticket{},
		&models.Alert{},
		&models.Acknowledgment{},
		&models.SLAConfig{},
		&models.User{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %v", err)
	}

	return gdb, nil
}

// GetDB returns the shared database instance.
func GetDB() *gorm.DB {
	if db == nil {
		panic("Database not initialized. Call Initialize() first")
	}
	return db
}

// Close closes the database connection.
func Close() error {
	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying *sql.DB: %v", err)
	}

	return sqlDB.Close()
}
