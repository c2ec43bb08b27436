package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/chesadev/marketsim/internal/domain"
)

// Store wraps the relational datastore. All persisted exchange state
// (accounts, stocks, orders, holdings, transactions, news, and the
// market-state flag) is read and written through it.
type Store struct {
	db *gorm.DB
}

// Open connects to the SQLite database at path, runs migrations, and
// seeds the singleton market-state row (closed) if missing. Use
// ":memory:" for an ephemeral database.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create DB directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(
		&domain.Stock{},
		&domain.Account{},
		&domain.Order{},
		&domain.Holding{},
		&domain.Transaction{},
		&domain.MarketState{},
		&domain.News{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	s := &Store{db: db}
	if err := s.seedMarketState(); err != nil {
		return nil, fmt.Errorf("failed to seed market state: %w", err)
	}
	return s, nil
}

// seedMarketState inserts the singleton flag row when absent. The
// market starts closed; an admin must open it explicitly.
func (s *Store) seedMarketState() error {
	var count int64
	if err := s.db.Model(&domain.MarketState{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return s.db.Create(&domain.MarketState{ID: domain.MarketStateID, IsActive: false}).Error
}

// Transaction runs fn inside a single database transaction. The Store
// passed to fn is bound to that transaction; any error rolls back
// every write made through it.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}
