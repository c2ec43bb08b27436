package domain

// Holding is a user's owned quantity of one stock. A row exists only
// while the quantity is positive; absence of a row and a quantity of
// zero are equivalent states.
type Holding struct {
	ID       string `gorm:"primaryKey" json:"id"`
	UserID   string `gorm:"index;uniqueIndex:idx_user_stock" json:"user_id"`
	StockID  string `gorm:"uniqueIndex:idx_user_stock" json:"stock_id"`
	Quantity int64  `json:"quantity"`

	Stock *Stock `gorm:"foreignKey:StockID" json:"-"`
}
