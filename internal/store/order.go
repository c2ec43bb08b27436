package store

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/chesadev/marketsim/internal/domain"
)

// CreateOrder inserts a new pending order.
func (s *Store) CreateOrder(ctx context.Context, order *domain.Order) error {
	return s.db.WithContext(ctx).Create(order).Error
}

// GetOrder retrieves an order by ID. Returns domain.ErrOrderNotFound
// if no such order exists.
func (s *Store) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	var order domain.Order
	err := s.db.WithContext(ctx).First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrdersByUser returns a user's orders, newest first, with the
// referenced stock preloaded.
func (s *Store) ListOrdersByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	var orders []domain.Order
	err := s.db.WithContext(ctx).Preload("Stock").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&orders).Error
	return orders, err
}

// PendingOrdersByStock returns all pending orders for a stock in
// submission order.
func (s *Store) PendingOrdersByStock(ctx context.Context, stockID string) ([]domain.Order, error) {
	var orders []domain.Order
	err := s.db.WithContext(ctx).
		Where("stock_id = ? AND status = ?", stockID, domain.OrderStatusPending).
		Order("created_at asc").
		Find(&orders).Error
	return orders, err
}

// PendingOrdersByStockBefore returns the pending orders for a stock
// submitted at or before cutoff. Batch membership for a clearing cycle
// is defined by this submission-timestamp window, so inclusion does not
// depend on when the re-read happens to run.
func (s *Store) PendingOrdersByStockBefore(ctx context.Context, stockID string, cutoff time.Time) ([]domain.Order, error) {
	var orders []domain.Order
	err := s.db.WithContext(ctx).
		Where("stock_id = ? AND status = ? AND created_at <= ?", stockID, domain.OrderStatusPending, cutoff).
		Order("created_at asc").
		Find(&orders).Error
	return orders, err
}

// AllPendingOrders returns every pending order across all stocks.
func (s *Store) AllPendingOrders(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order
	err := s.db.WithContext(ctx).
		Where("status = ?", domain.OrderStatusPending).
		Order("created_at asc").
		Find(&orders).Error
	return orders, err
}

// PendingQuantities returns the total pending buy quantity (demand)
// and sell quantity (supply) for a stock.
func (s *Store) PendingQuantities(ctx context.Context, stockID string) (demand, supply int64, err error) {
	if err = s.pendingQuantity(ctx, stockID, domain.OrderSideBuy, &demand); err != nil {
		return 0, 0, err
	}
	if err = s.pendingQuantity(ctx, stockID, domain.OrderSideSell, &supply); err != nil {
		return 0, 0, err
	}
	return demand, supply, nil
}

func (s *Store) pendingQuantity(ctx context.Context, stockID string, side domain.OrderSide, out *int64) error {
	return s.db.WithContext(ctx).Model(&domain.Order{}).
		Where("stock_id = ? AND side = ? AND status = ?", stockID, side, domain.OrderStatusPending).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(out).Error
}

// FinalizeOrder transitions a pending order to a terminal status,
// optionally recording the executed price. The WHERE clause on the
// pending status enforces monotonic transitions: finalizing an order
// already in a terminal state affects no rows and returns false.
func (s *Store) FinalizeOrder(ctx context.Context, id string, status domain.OrderStatus, executedPrice *decimal.Decimal) (bool, error) {
	updates := map[string]any{"status": status}
	if executedPrice != nil {
		updates["price"] = *executedPrice
	}
	res := s.db.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ? AND status = ?", id, domain.OrderStatusPending).
		Updates(updates)
	return res.RowsAffected > 0, res.Error
}
