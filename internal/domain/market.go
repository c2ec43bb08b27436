package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MarketStateID is the primary key of the singleton market state row.
const MarketStateID = 1

// MarketState is the persisted global open/closed flag. While inactive,
// order intake rejects new orders and the clearing loop cancels every
// pending order instead of executing batches.
type MarketState struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	IsActive  bool      `json:"is_active"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PriceTick is a point-in-time price observation published to stream
// subscribers whenever a stock's price is rewritten.
type PriceTick struct {
	StockID   string          `json:"stock_id"`
	Symbol    string          `json:"symbol"`
	Price     decimal.Decimal `json:"price"`
	ChangePct decimal.Decimal `json:"change_pct"`
	At        time.Time       `json:"at"`
}
