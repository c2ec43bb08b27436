package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is an append-only ledger entry. Exactly one transaction
// exists per completed order, with the same quantity and executed
// price; cancelled orders never produce one.
type Transaction struct {
	ID          string          `gorm:"primaryKey" json:"id"`
	UserID      string          `gorm:"index" json:"user_id"`
	StockID     string          `gorm:"index" json:"stock_id"`
	Side        OrderSide       `json:"side"`
	Quantity    int64           `json:"quantity"`
	Price       decimal.Decimal `gorm:"type:decimal(20,2)" json:"price"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(20,2)" json:"total_amount"`
	OrderID     string          `gorm:"uniqueIndex" json:"order_id"`
	CreatedAt   time.Time       `json:"created_at"`
}
