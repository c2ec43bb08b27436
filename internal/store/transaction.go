package store

import (
	"context"

	"github.com/chesadev/marketsim/internal/domain"
)

// CreateTransaction appends a ledger entry. The unique index on
// order_id guarantees at most one transaction per order.
func (s *Store) CreateTransaction(ctx context.Context, txn *domain.Transaction) error {
	return s.db.WithContext(ctx).Create(txn).Error
}

// ListTransactionsByUser returns a user's ledger entries, newest first.
func (s *Store) ListTransactionsByUser(ctx context.Context, userID string) ([]domain.Transaction, error) {
	var txns []domain.Transaction
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&txns).Error
	return txns, err
}

// TransactionByOrder returns the ledger entry linked to an order, or
// nil when none exists.
func (s *Store) TransactionByOrder(ctx context.Context, orderID string) (*domain.Transaction, error) {
	var txns []domain.Transaction
	err := s.db.WithContext(ctx).Where("order_id = ?", orderID).Limit(1).Find(&txns).Error
	if err != nil {
		return nil, err
	}
	if len(txns) == 0 {
		return nil, nil
	}
	return &txns[0], nil
}
