package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chesadev/marketsim/internal/domain"
	"github.com/chesadev/marketsim/internal/engine"
	"github.com/chesadev/marketsim/internal/store"
)

// SubmitOrderRequest represents the input for order submission.
type SubmitOrderRequest struct {
	UserID   string
	StockID  string
	Side     domain.OrderSide
	Quantity int64
}

// OrderService handles order intake and the order/transaction
// projections. Pending orders it creates are settled later by the
// clearing loop; the instant-trade path settles through the executor
// immediately.
type OrderService struct {
	store    *store.Store
	gate     *engine.MarketGate
	executor *engine.Executor
}

// NewOrderService creates an OrderService.
func NewOrderService(s *store.Store, gate *engine.MarketGate, executor *engine.Executor) *OrderService {
	return &OrderService{store: s, gate: gate, executor: executor}
}

// SubmitOrder validates the request, consults the market gate, and
// creates a pending order carrying the stock's price at submission
// time as its reference price.
func (s *OrderService) SubmitOrder(ctx context.Context, req SubmitOrderRequest) (*domain.Order, error) {
	if err := validateOrderInput(req.Side, req.Quantity); err != nil {
		return nil, err
	}
	if !s.gate.Active() {
		return nil, domain.ErrMarketClosed
	}
	if _, err := s.store.GetAccount(ctx, req.UserID); err != nil {
		return nil, err
	}
	stock, err := s.store.GetStock(ctx, req.StockID)
	if err != nil {
		return nil, err
	}

	order := &domain.Order{
		ID:        uuid.NewString(),
		UserID:    req.UserID,
		StockID:   req.StockID,
		Side:      req.Side,
		Quantity:  req.Quantity,
		Price:     stock.CurrentPrice,
		Status:    domain.OrderStatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateOrder(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// GetOrder returns one of the user's orders by ID. Orders belonging
// to other users read as not found.
func (s *OrderService) GetOrder(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}

// ListOrders returns the user's orders, newest first.
func (s *OrderService) ListOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.store.ListOrdersByUser(ctx, userID)
}

// ListTransactions returns the user's ledger entries, newest first.
func (s *OrderService) ListTransactions(ctx context.Context, userID string) ([]domain.Transaction, error) {
	return s.store.ListTransactionsByUser(ctx, userID)
}

// InstantBuy buys quantity shares at the stock's current price,
// settling immediately through the executor's transactional path.
// Returns the account's new balance.
func (s *OrderService) InstantBuy(ctx context.Context, userID, stockID string, quantity int64) (decimal.Decimal, error) {
	return s.instantTrade(ctx, userID, stockID, domain.OrderSideBuy, quantity)
}

// InstantSell sells quantity shares at the stock's current price,
// settling immediately through the executor's transactional path.
// Returns the account's new balance.
func (s *OrderService) InstantSell(ctx context.Context, userID, stockID string, quantity int64) (decimal.Decimal, error) {
	return s.instantTrade(ctx, userID, stockID, domain.OrderSideSell, quantity)
}

// instantTrade creates an order and drives it straight through the
// executor at the stock's current price. A business-rule cancellation
// surfaces as the matching sentinel error instead of a cancelled
// order left behind silently.
func (s *OrderService) instantTrade(ctx context.Context, userID, stockID string, side domain.OrderSide, quantity int64) (decimal.Decimal, error) {
	if err := validateOrderInput(side, quantity); err != nil {
		return decimal.Zero, err
	}
	if _, err := s.store.GetAccount(ctx, userID); err != nil {
		return decimal.Zero, err
	}
	stock, err := s.store.GetStock(ctx, stockID)
	if err != nil {
		return decimal.Zero, err
	}

	order := &domain.Order{
		ID:        uuid.NewString(),
		UserID:    userID,
		StockID:   stockID,
		Side:      side,
		Quantity:  quantity,
		Price:     stock.CurrentPrice,
		Status:    domain.OrderStatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateOrder(ctx, order); err != nil {
		return decimal.Zero, err
	}

	out := s.executor.Execute(ctx, order.ID, stock.CurrentPrice)
	if out.Status != domain.OrderStatusCompleted {
		switch out.Reason {
		case domain.CancelReasonInsufficientFunds:
			return decimal.Zero, domain.ErrInsufficientFunds
		case domain.CancelReasonInsufficientShares:
			return decimal.Zero, domain.ErrInsufficientShares
		case domain.CancelReasonAccountNotFound:
			return decimal.Zero, domain.ErrAccountNotFound
		default:
			return decimal.Zero, &domain.ValidationError{Message: "trade could not be settled"}
		}
	}

	account, err := s.store.GetAccount(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return account.Balance, nil
}

func validateOrderInput(side domain.OrderSide, quantity int64) error {
	if side != domain.OrderSideBuy && side != domain.OrderSideSell {
		return &domain.ValidationError{Message: "side must be 'buy' or 'sell'"}
	}
	if quantity <= 0 {
		return &domain.ValidationError{Message: "quantity must be a positive integer"}
	}
	return nil
}
