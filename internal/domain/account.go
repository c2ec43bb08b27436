package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role controls access to administrative operations.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Account holds a user's cash balance. Balance is mutated only by the
// order execution engine and the instant-trade path, always inside a
// store transaction, and must never go negative.
type Account struct {
	UserID    string          `gorm:"primaryKey" json:"user_id"`
	Email     string          `gorm:"uniqueIndex" json:"email"`
	Role      Role            `json:"role"`
	Balance   decimal.Decimal `gorm:"type:decimal(20,2)" json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
}

// IsAdmin reports whether the account may use admin-only operations.
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}
