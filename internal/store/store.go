// Package store is the persistence layer: a SQLite database holding
// documents, the ledger, receipts and their items, reference data and chat
// history. All writes that span rows run inside transactions; partial
// persistence is never observable.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/porkytheblack/yuki/internal/domain"
)

// Store wraps the database handle. Construct with Open.
type Store struct {
	db *gorm.DB
}

// Open creates or opens the database at path, applies SQLite tuning, runs
// migrations and seeds reference data on first run.
func Open(path string, logMode bool) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	gormLogger := gormlogger.Default
	if !logMode {
		gormLogger = gormLogger.LogMode(gormlogger.Silent)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	_, _ = sqlDB.Exec("PRAGMA journal_mode = WAL;")
	_, _ = sqlDB.Exec("PRAGMA synchronous = NORMAL;")
	_, _ = sqlDB.Exec("PRAGMA foreign_keys = ON;")

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	if err := s.seed(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	if err := s.db.AutoMigrate(
		&domain.Document{},
		&domain.Account{},
		&domain.Category{},
		&domain.Currency{},
		&domain.LedgerEntry{},
		&domain.Receipt{},
		&domain.PurchasedItem{},
		&domain.ChatHistoryEntry{},
		&domain.ConversationSession{},
		&domain.ConversationMessage{},
		&domain.Setting{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
