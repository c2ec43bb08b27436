package domain

import "errors"

// Sentinel errors for domain-level error handling.
// The handler layer maps these to HTTP status codes.
var (
	ErrMarketClosed       = errors.New("market_closed")
	ErrStockNotFound      = errors.New("stock_not_found")
	ErrStockAlreadyExists = errors.New("stock_already_exists")
	ErrAccountNotFound    = errors.New("account_not_found")
	ErrAccountExists      = errors.New("account_already_exists")
	ErrOrderNotFound      = errors.New("order_not_found")
	ErrHoldingNotFound    = errors.New("holding_not_found")
	ErrInsufficientFunds  = errors.New("insufficient_funds")
	ErrInsufficientShares = errors.New("insufficient_shares")
	ErrAdminRequired      = errors.New("admin_required")
)

// ValidationError represents a request validation failure. It is
// raised before any state mutation.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
