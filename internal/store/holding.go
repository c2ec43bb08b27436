package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chesadev/marketsim/internal/domain"
)

// GetHolding retrieves a user's holding in one stock. Returns
// domain.ErrHoldingNotFound when no row exists, which is equivalent to
// a quantity of zero.
func (s *Store) GetHolding(ctx context.Context, userID, stockID string) (*domain.Holding, error) {
	var holding domain.Holding
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND stock_id = ?", userID, stockID).
		First(&holding).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrHoldingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &holding, nil
}

// ListHoldingsByUser returns a user's holdings with stocks preloaded.
func (s *Store) ListHoldingsByUser(ctx context.Context, userID string) ([]domain.Holding, error) {
	var holdings []domain.Holding
	err := s.db.WithContext(ctx).Preload("Stock").
		Where("user_id = ?", userID).
		Find(&holdings).Error
	return holdings, err
}

// ListHoldings returns every holding row with stocks preloaded.
func (s *Store) ListHoldings(ctx context.Context) ([]domain.Holding, error) {
	var holdings []domain.Holding
	err := s.db.WithContext(ctx).Preload("Stock").Find(&holdings).Error
	return holdings, err
}

// AddToHolding increments a user's holding by quantity, creating the
// row if absent.
func (s *Store) AddToHolding(ctx context.Context, userID, stockID string, quantity int64) error {
	holding, err := s.GetHolding(ctx, userID, stockID)
	if errors.Is(err, domain.ErrHoldingNotFound) {
		return s.db.WithContext(ctx).Create(&domain.Holding{
			ID:       uuid.NewString(),
			UserID:   userID,
			StockID:  stockID,
			Quantity: quantity,
		}).Error
	}
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(&domain.Holding{}).
		Where("id = ?", holding.ID).
		Update("quantity", holding.Quantity+quantity).Error
}

// ReduceHolding decrements a user's holding by quantity, deleting the
// row when the result reaches zero. Returns domain.ErrInsufficientShares
// when the row is absent or holds fewer shares than requested.
func (s *Store) ReduceHolding(ctx context.Context, userID, stockID string, quantity int64) error {
	holding, err := s.GetHolding(ctx, userID, stockID)
	if errors.Is(err, domain.ErrHoldingNotFound) {
		return domain.ErrInsufficientShares
	}
	if err != nil {
		return err
	}
	if holding.Quantity < quantity {
		return domain.ErrInsufficientShares
	}
	remaining := holding.Quantity - quantity
	if remaining == 0 {
		return s.db.WithContext(ctx).Delete(&domain.Holding{}, "id = ?", holding.ID).Error
	}
	return s.db.WithContext(ctx).Model(&domain.Holding{}).
		Where("id = ?", holding.ID).
		Update("quantity", remaining).Error
}
