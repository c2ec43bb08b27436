package service

import (
	"context"
	"regexp"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chesadev/marketsim/internal/domain"
	"github.com/chesadev/marketsim/internal/store"
)

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Starting balances and the admin seed position, applied at account
// provisioning time.
var (
	initialUserBalance  = decimal.NewFromInt(10000)
	initialAdminBalance = decimal.NewFromInt(1_000_000_000)
)

const adminSeedShares int64 = 1000

// CreateAccountRequest represents the input for account provisioning.
// Authentication happens upstream; this boundary only records the
// identity it is handed.
type CreateAccountRequest struct {
	Email string
	Role  domain.Role
}

// ProfileView summarizes an account's cash and portfolio value.
type ProfileView struct {
	Balance             decimal.Decimal
	TotalPortfolioValue decimal.Decimal
}

// HoldingView is one holding joined with its stock's current price.
type HoldingView struct {
	StockID      string
	StockSymbol  string
	StockName    string
	Quantity     int64
	CurrentPrice decimal.Decimal
	TotalValue   decimal.Decimal
}

// LeaderboardEntry ranks one account by total portfolio value.
type LeaderboardEntry struct {
	UserID     string
	Email      string
	TotalValue decimal.Decimal
}

// AccountService provisions accounts and serves the read-only
// portfolio projections.
type AccountService struct {
	store *store.Store
}

// NewAccountService creates an AccountService.
func NewAccountService(s *store.Store) *AccountService {
	return &AccountService{store: s}
}

// Create provisions a new account with the role's starting balance.
// Admin accounts are additionally seeded with a position in every
// listed stock.
func (s *AccountService) Create(ctx context.Context, req CreateAccountRequest) (*domain.Account, error) {
	if !emailRegex.MatchString(req.Email) {
		return nil, &domain.ValidationError{Message: "email must be a valid address"}
	}
	if req.Role == "" {
		req.Role = domain.RoleUser
	}
	if req.Role != domain.RoleUser && req.Role != domain.RoleAdmin {
		return nil, &domain.ValidationError{Message: "role must be 'user' or 'admin'"}
	}

	balance := initialUserBalance
	if req.Role == domain.RoleAdmin {
		balance = initialAdminBalance
	}

	account := &domain.Account{
		UserID:    uuid.NewString(),
		Email:     req.Email,
		Role:      req.Role,
		Balance:   balance,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateAccount(ctx, account); err != nil {
		return nil, err
	}

	if req.Role == domain.RoleAdmin {
		if err := s.seedAdminHoldings(ctx, account.UserID); err != nil {
			return nil, err
		}
	}
	return account, nil
}

// seedAdminHoldings gives an admin account the seed position in every
// listed stock, so the market has initial sell-side inventory.
func (s *AccountService) seedAdminHoldings(ctx context.Context, userID string) error {
	stocks, err := s.store.ListStocks(ctx)
	if err != nil {
		return err
	}
	for i := range stocks {
		if err := s.store.AddToHolding(ctx, userID, stocks[i].ID, adminSeedShares); err != nil {
			return err
		}
	}
	return nil
}

// Profile returns the account's balance and total portfolio value
// (cash plus holdings at current prices).
func (s *AccountService) Profile(ctx context.Context, userID string) (*ProfileView, error) {
	account, err := s.store.GetAccount(ctx, userID)
	if err != nil {
		return nil, err
	}
	holdings, err := s.store.ListHoldingsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	total := account.Balance
	for i := range holdings {
		if holdings[i].Stock == nil {
			continue
		}
		total = total.Add(holdings[i].Stock.CurrentPrice.Mul(decimal.NewFromInt(holdings[i].Quantity)))
	}
	return &ProfileView{Balance: account.Balance, TotalPortfolioValue: total}, nil
}

// Holdings returns the user's positions priced at current stock
// prices.
func (s *AccountService) Holdings(ctx context.Context, userID string) ([]HoldingView, error) {
	if _, err := s.store.GetAccount(ctx, userID); err != nil {
		return nil, err
	}
	holdings, err := s.store.ListHoldingsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	views := make([]HoldingView, 0, len(holdings))
	for i := range holdings {
		h := holdings[i]
		if h.Stock == nil {
			continue
		}
		views = append(views, HoldingView{
			StockID:      h.StockID,
			StockSymbol:  h.Stock.Symbol,
			StockName:    h.Stock.Name,
			Quantity:     h.Quantity,
			CurrentPrice: h.Stock.CurrentPrice,
			TotalValue:   h.Stock.CurrentPrice.Mul(decimal.NewFromInt(h.Quantity)),
		})
	}
	return views, nil
}

// Leaderboard ranks every account by cash plus holdings value,
// descending.
func (s *AccountService) Leaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	accounts, err := s.store.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	holdings, err := s.store.ListHoldings(ctx)
	if err != nil {
		return nil, err
	}

	holdingValue := make(map[string]decimal.Decimal, len(accounts))
	for i := range holdings {
		h := holdings[i]
		if h.Stock == nil {
			continue
		}
		value := h.Stock.CurrentPrice.Mul(decimal.NewFromInt(h.Quantity))
		holdingValue[h.UserID] = holdingValue[h.UserID].Add(value)
	}

	entries := make([]LeaderboardEntry, 0, len(accounts))
	for i := range accounts {
		a := accounts[i]
		entries = append(entries, LeaderboardEntry{
			UserID:     a.UserID,
			Email:      a.Email,
			TotalValue: a.Balance.Add(holdingValue[a.UserID]),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].TotalValue.GreaterThan(entries[j].TotalValue)
	})
	return entries, nil
}

// requireAdmin verifies the acting account exists and holds the admin
// role.
func requireAdmin(ctx context.Context, s *store.Store, userID string) error {
	account, err := s.GetAccount(ctx, userID)
	if err != nil {
		return err
	}
	if !account.IsAdmin() {
		return domain.ErrAdminRequired
	}
	return nil
}
