package store

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/chesadev/marketsim/internal/domain"
)

// CreateAccount inserts a new account. Returns domain.ErrAccountExists
// when an account with the same email already exists.
func (s *Store) CreateAccount(ctx context.Context, account *domain.Account) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&domain.Account{}).
		Where("email = ?", account.Email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return domain.ErrAccountExists
	}
	return s.db.WithContext(ctx).Create(account).Error
}

// GetAccount retrieves an account by user ID. Returns
// domain.ErrAccountNotFound if no such account exists.
func (s *Store) GetAccount(ctx context.Context, userID string) (*domain.Account, error) {
	var account domain.Account
	err := s.db.WithContext(ctx).First(&account, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// ListAccounts returns every registered account.
func (s *Store) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	var accounts []domain.Account
	err := s.db.WithContext(ctx).Find(&accounts).Error
	return accounts, err
}

// UpdateAccountBalance overwrites an account's cash balance.
func (s *Store) UpdateAccountBalance(ctx context.Context, userID string, balance decimal.Decimal) error {
	return s.db.WithContext(ctx).Model(&domain.Account{}).
		Where("user_id = ?", userID).
		Update("balance", balance).Error
}
