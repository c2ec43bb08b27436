package service

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chesadev/marketsim/internal/domain"
	"github.com/chesadev/marketsim/internal/store"
)

var stockSymbolRegex = regexp.MustCompile(`^[A-Z]{1,10}$`)

// AddStockRequest represents the input for listing a new stock.
type AddStockRequest struct {
	Symbol       string
	Name         string
	InitialPrice decimal.Decimal
}

// StockService serves the stock list projection and admin listing
// management.
type StockService struct {
	store *store.Store
}

// NewStockService creates a StockService.
func NewStockService(s *store.Store) *StockService {
	return &StockService{store: s}
}

// List returns every listed stock with current price and percent
// change.
func (s *StockService) List(ctx context.Context) ([]domain.Stock, error) {
	return s.store.ListStocks(ctx)
}

// Add lists a new stock and seeds the acting admin with the standard
// starting position in it. Admin only.
func (s *StockService) Add(ctx context.Context, actorID string, req AddStockRequest) (*domain.Stock, error) {
	if err := requireAdmin(ctx, s.store, actorID); err != nil {
		return nil, err
	}

	symbol := strings.ToUpper(req.Symbol)
	if !stockSymbolRegex.MatchString(symbol) {
		return nil, &domain.ValidationError{Message: "symbol must match ^[A-Z]{1,10}$"}
	}
	if req.Name == "" {
		return nil, &domain.ValidationError{Message: "name is required"}
	}
	if req.InitialPrice.LessThan(domain.FloorPrice) {
		return nil, &domain.ValidationError{Message: "initial price must be at least 1.00"}
	}

	stock := &domain.Stock{
		ID:             uuid.NewString(),
		Symbol:         symbol,
		Name:           req.Name,
		CurrentPrice:   req.InitialPrice.Round(2),
		PriceChangePct: decimal.Zero,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.store.CreateStock(ctx, stock); err != nil {
		return nil, err
	}
	if err := s.store.AddToHolding(ctx, actorID, stock.ID, adminSeedShares); err != nil {
		return nil, err
	}
	return stock, nil
}
