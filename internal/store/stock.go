package store

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/chesadev/marketsim/internal/domain"
)

// CreateStock inserts a new stock listing. Returns
// domain.ErrStockAlreadyExists when the symbol is taken.
func (s *Store) CreateStock(ctx context.Context, stock *domain.Stock) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&domain.Stock{}).
		Where("symbol = ?", stock.Symbol).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return domain.ErrStockAlreadyExists
	}
	return s.db.WithContext(ctx).Create(stock).Error
}

// GetStock retrieves a stock by ID. Returns domain.ErrStockNotFound
// if no such stock exists.
func (s *Store) GetStock(ctx context.Context, id string) (*domain.Stock, error) {
	var stock domain.Stock
	err := s.db.WithContext(ctx).First(&stock, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrStockNotFound
	}
	if err != nil {
		return nil, err
	}
	return &stock, nil
}

// ListStocks returns every listed stock ordered by symbol.
func (s *Store) ListStocks(ctx context.Context) ([]domain.Stock, error) {
	var stocks []domain.Stock
	err := s.db.WithContext(ctx).Order("symbol asc").Find(&stocks).Error
	return stocks, err
}

// UpdateStockPrice persists a stock's new price and percent change.
func (s *Store) UpdateStockPrice(ctx context.Context, id string, price, changePct decimal.Decimal) error {
	return s.db.WithContext(ctx).Model(&domain.Stock{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"current_price":    price,
			"price_change_pct": changePct,
		}).Error
}
