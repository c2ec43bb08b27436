package engine

import (
	"github.com/shopspring/decimal"

	"github.com/chesadev/marketsim/internal/domain"
)

var (
	one     = decimal.NewFromInt(1)
	two     = decimal.NewFromInt(2)
	hundred = decimal.NewFromInt(100)

	// maxFormationChange caps a single price-formation move at ±5%.
	maxFormationChange = decimal.New(5, -2) // 0.05

	// imbalanceStep and imbalanceScale define the clearing delta:
	// 0.01 per 1000 shares of net imbalance.
	imbalanceStep  = decimal.New(1, -2) // 0.01
	imbalanceScale = decimal.NewFromInt(1000)
)

// FormationChange computes the fractional price change for one
// price-formation cycle from pending-order demand and supply:
// clamp((demand/supply − 1) × 2, −0.05, +0.05). With zero supply the
// price does not move.
func FormationChange(demand, supply int64) decimal.Decimal {
	if supply == 0 {
		return decimal.Zero
	}
	ratio := decimal.NewFromInt(demand).Div(decimal.NewFromInt(supply))
	change := ratio.Sub(one).Mul(two)
	if change.GreaterThan(maxFormationChange) {
		return maxFormationChange
	}
	if change.LessThan(maxFormationChange.Neg()) {
		return maxFormationChange.Neg()
	}
	return change
}

// ClearingDelta computes the fractional price change applied by a
// clearing cycle: sign(Qb−Qs) × 0.01 × |Qb−Qs| / 1000, linear in the
// batch's net imbalance.
func ClearingDelta(buyQty, sellQty int64) decimal.Decimal {
	diff := decimal.NewFromInt(buyQty - sellQty)
	return imbalanceStep.Mul(diff).Div(imbalanceScale)
}

// ApplyChange derives the next price: round(price × (1 + change), 2),
// floored at 1.00.
func ApplyChange(price, change decimal.Decimal) decimal.Decimal {
	next := price.Mul(one.Add(change)).Round(2)
	if next.LessThan(domain.FloorPrice) {
		return domain.FloorPrice
	}
	return next
}

// ChangePct converts a fractional change to the percentage persisted
// alongside the price.
func ChangePct(change decimal.Decimal) decimal.Decimal {
	return change.Mul(hundred).Round(2)
}
