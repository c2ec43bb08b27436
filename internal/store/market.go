package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/chesadev/marketsim/internal/domain"
)

// MarketActive reads the persisted market flag. A missing row reads
// as closed.
func (s *Store) MarketActive(ctx context.Context) (bool, error) {
	var state domain.MarketState
	err := s.db.WithContext(ctx).First(&state, "id = ?", domain.MarketStateID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return state.IsActive, nil
}

// SetMarketActive overwrites the persisted market flag.
func (s *Store) SetMarketActive(ctx context.Context, active bool) error {
	return s.db.WithContext(ctx).Model(&domain.MarketState{}).
		Where("id = ?", domain.MarketStateID).
		Update("is_active", active).Error
}
