package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stock represents a synthetic listed instrument. CurrentPrice is the
// last price produced by either the price-formation cycle or a batch
// clearing cycle, and never drops below FloorPrice.
type Stock struct {
	ID             string          `gorm:"primaryKey" json:"id"`
	Symbol         string          `gorm:"uniqueIndex" json:"symbol"`
	Name           string          `json:"name"`
	CurrentPrice   decimal.Decimal `gorm:"type:decimal(20,2)" json:"current_price"`
	PriceChangePct decimal.Decimal `gorm:"type:decimal(10,2)" json:"price_change_pct"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// FloorPrice is the minimum price any stock can trade at. Price
// updates that would result in a lower value are clamped to it.
var FloorPrice = decimal.New(100, -2) // 1.00
