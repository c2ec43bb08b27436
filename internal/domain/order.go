package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderSide indicates whether an order buys or sells stock.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

// OrderStatus represents the lifecycle state of an order. Transitions
// are monotonic: pending → completed or pending → cancelled. Terminal
// states are immutable.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// CancelReason records why the execution engine cancelled an order.
// Reasons are surfaced in logs only; the persisted order carries just
// its terminal status.
type CancelReason string

const (
	CancelReasonAccountNotFound    CancelReason = "account_not_found"
	CancelReasonInsufficientFunds  CancelReason = "insufficient_funds"
	CancelReasonInsufficientShares CancelReason = "insufficient_shares"
	CancelReasonMarketClosed       CancelReason = "market_closed"
	CancelReasonDataFault          CancelReason = "data_fault"
)

// Order is a buy or sell instruction awaiting batch clearing. Price is
// the stock's price at submission time; when the order completes it is
// overwritten with the executed clearing price.
type Order struct {
	ID        string          `gorm:"primaryKey" json:"id"`
	UserID    string          `gorm:"index" json:"user_id"`
	StockID   string          `gorm:"index" json:"stock_id"`
	Side      OrderSide       `json:"side"`
	Quantity  int64           `json:"quantity"`
	Price     decimal.Decimal `gorm:"type:decimal(20,2)" json:"price"`
	Status    OrderStatus     `gorm:"index" json:"status"`
	CreatedAt time.Time       `json:"created_at"`

	Stock *Stock `gorm:"foreignKey:StockID" json:"-"`
}

// IsTerminal reports whether the order has reached a final state.
func (o *Order) IsTerminal() bool {
	return o.Status == OrderStatusCompleted || o.Status == OrderStatusCancelled
}
