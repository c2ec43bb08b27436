package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/chesadev/marketsim/internal/domain"
	"github.com/chesadev/marketsim/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("opening in-memory store: %v", err)
	}
	return s
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedStock(t *testing.T, s *store.Store, symbol, price string) *domain.Stock {
	t.Helper()
	stock := &domain.Stock{
		ID:           uuid.NewString(),
		Symbol:       symbol,
		Name:         symbol + " Corp",
		CurrentPrice: dec(t, price),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.CreateStock(context.Background(), stock); err != nil {
		t.Fatalf("seeding stock %s: %v", symbol, err)
	}
	return stock
}

func seedAccount(t *testing.T, s *store.Store, email, balance string) *domain.Account {
	t.Helper()
	account := &domain.Account{
		UserID:    uuid.NewString(),
		Email:     email,
		Role:      domain.RoleUser,
		Balance:   dec(t, balance),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.CreateAccount(context.Background(), account); err != nil {
		t.Fatalf("seeding account %s: %v", email, err)
	}
	return account
}

func seedOrder(t *testing.T, s *store.Store, userID, stockID string, side domain.OrderSide, quantity int64, price string) *domain.Order {
	t.Helper()
	order := &domain.Order{
		ID:        uuid.NewString(),
		UserID:    userID,
		StockID:   stockID,
		Side:      side,
		Quantity:  quantity,
		Price:     dec(t, price),
		Status:    domain.OrderStatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.CreateOrder(context.Background(), order); err != nil {
		t.Fatalf("seeding order: %v", err)
	}
	return order
}

func seedHolding(t *testing.T, s *store.Store, userID, stockID string, quantity int64) {
	t.Helper()
	if err := s.AddToHolding(context.Background(), userID, stockID, quantity); err != nil {
		t.Fatalf("seeding holding: %v", err)
	}
}

func TestExecutor_BuySuccess(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	exec := NewExecutor(s, testLogger())

	stock := seedStock(t, s, "ACME", "50.00")
	account := seedAccount(t, s, "buyer@example.com", "500.00")
	order := seedOrder(t, s, account.UserID, stock.ID, domain.OrderSideBuy, 10, "50.00")

	out := exec.Execute(ctx, order.ID, dec(t, "50.00"))
	if out.NoOp || out.Status != domain.OrderStatusCompleted {
		t.Fatalf("got outcome %+v, want completed", out)
	}

	got, err := s.GetAccount(ctx, account.UserID)
	if err != nil {
		t.Fatalf("reloading account: %v", err)
	}
	if !got.Balance.Equal(dec(t, "0.00")) {
		t.Errorf("got balance %s, want 0.00", got.Balance)
	}

	holding, err := s.GetHolding(ctx, account.UserID, stock.ID)
	if err != nil {
		t.Fatalf("reading holding: %v", err)
	}
	if holding.Quantity != 10 {
		t.Errorf("got holding quantity %d, want 10", holding.Quantity)
	}

	txn, err := s.TransactionByOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("reading transaction: %v", err)
	}
	if txn == nil {
		t.Fatal("completed order produced no ledger entry")
	}
	if !txn.TotalAmount.Equal(dec(t, "500.00")) {
		t.Errorf("got total %s, want 500.00", txn.TotalAmount)
	}
}

func TestExecutor_BuyInsufficientFunds_Cancels(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	exec := NewExecutor(s, testLogger())

	stock := seedStock(t, s, "ACME", "50.00")
	account := seedAccount(t, s, "broke@example.com", "100.00")
	order := seedOrder(t, s, account.UserID, stock.ID, domain.OrderSideBuy, 10, "50.00")

	out := exec.Execute(ctx, order.ID, dec(t, "50.00"))
	if out.Status != domain.OrderStatusCancelled || out.Reason != domain.CancelReasonInsufficientFunds {
		t.Fatalf("got outcome %+v, want cancelled/insufficient_funds", out)
	}

	got, err := s.GetAccount(ctx, account.UserID)
	if err != nil {
		t.Fatalf("reloading account: %v", err)
	}
	if !got.Balance.Equal(dec(t, "100.00")) {
		t.Errorf("balance moved on a cancelled order: got %s, want 100.00", got.Balance)
	}
	if _, err := s.GetHolding(ctx, account.UserID, stock.ID); !errors.Is(err, domain.ErrHoldingNotFound) {
		t.Errorf("cancelled buy created a holding: err=%v", err)
	}
	txn, err := s.TransactionByOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("reading transaction: %v", err)
	}
	if txn != nil {
		t.Error("cancelled order produced a ledger entry")
	}
}

func TestExecutor_SellSuccess(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	exec := NewExecutor(s, testLogger())

	stock := seedStock(t, s, "ACME", "50.00")
	account := seedAccount(t, s, "seller@example.com", "100.00")
	seedHolding(t, s, account.UserID, stock.ID, 25)
	order := seedOrder(t, s, account.UserID, stock.ID, domain.OrderSideSell, 10, "50.00")

	out := exec.Execute(ctx, order.ID, dec(t, "52.00"))
	if out.Status != domain.OrderStatusCompleted {
		t.Fatalf("got outcome %+v, want completed", out)
	}

	got, err := s.GetAccount(ctx, account.UserID)
	if err != nil {
		t.Fatalf("reloading account: %v", err)
	}
	if !got.Balance.Equal(dec(t, "620.00")) {
		t.Errorf("got balance %s, want 620.00", got.Balance)
	}

	holding, err := s.GetHolding(ctx, account.UserID, stock.ID)
	if err != nil {
		t.Fatalf("reading holding: %v", err)
	}
	if holding.Quantity != 15 {
		t.Errorf("got holding quantity %d, want 15", holding.Quantity)
	}

	reloaded, err := s.GetOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("reloading order: %v", err)
	}
	if !reloaded.Price.Equal(dec(t, "52.00")) {
		t.Errorf("executed price not recorded: got %s, want 52.00", reloaded.Price)
	}
}

func TestExecutor_SellEntireHolding_DeletesRow(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	exec := NewExecutor(s, testLogger())

	stock := seedStock(t, s, "ACME", "50.00")
	account := seedAccount(t, s, "allout@example.com", "0.00")
	seedHolding(t, s, account.UserID, stock.ID, 10)
	order := seedOrder(t, s, account.UserID, stock.ID, domain.OrderSideSell, 10, "50.00")

	out := exec.Execute(ctx, order.ID, dec(t, "50.00"))
	if out.Status != domain.OrderStatusCompleted {
		t.Fatalf("got outcome %+v, want completed", out)
	}
	if _, err := s.GetHolding(ctx, account.UserID, stock.ID); !errors.Is(err, domain.ErrHoldingNotFound) {
		t.Errorf("empty holding row not deleted: err=%v", err)
	}
}

func TestExecutor_SellInsufficientShares_Cancels(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	exec := NewExecutor(s, testLogger())

	stock := seedStock(t, s, "ACME", "50.00")
	account := seedAccount(t, s, "short@example.com", "100.00")
	seedHolding(t, s, account.UserID, stock.ID, 5)
	order := seedOrder(t, s, account.UserID, stock.ID, domain.OrderSideSell, 10, "50.00")

	out := exec.Execute(ctx, order.ID, dec(t, "50.00"))
	if out.Status != domain.OrderStatusCancelled || out.Reason != domain.CancelReasonInsufficientShares {
		t.Fatalf("got outcome %+v, want cancelled/insufficient_shares", out)
	}

	holding, err := s.GetHolding(ctx, account.UserID, stock.ID)
	if err != nil {
		t.Fatalf("reading holding: %v", err)
	}
	if holding.Quantity != 5 {
		t.Errorf("holding moved on a cancelled sell: got %d, want 5", holding.Quantity)
	}
	got, err := s.GetAccount(ctx, account.UserID)
	if err != nil {
		t.Fatalf("reloading account: %v", err)
	}
	if !got.Balance.Equal(dec(t, "100.00")) {
		t.Errorf("balance moved on a cancelled sell: got %s, want 100.00", got.Balance)
	}
}

func TestExecutor_MissingAccount_Cancels(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	exec := NewExecutor(s, testLogger())

	stock := seedStock(t, s, "ACME", "50.00")
	order := seedOrder(t, s, uuid.NewString(), stock.ID, domain.OrderSideBuy, 1, "50.00")

	out := exec.Execute(ctx, order.ID, dec(t, "50.00"))
	if out.Status != domain.OrderStatusCancelled || out.Reason != domain.CancelReasonAccountNotFound {
		t.Fatalf("got outcome %+v, want cancelled/account_not_found", out)
	}
}

func TestExecutor_MissingOrder_NoOp(t *testing.T) {
	s := newTestStore(t)
	exec := NewExecutor(s, testLogger())

	out := exec.Execute(context.Background(), uuid.NewString(), dec(t, "50.00"))
	if !out.NoOp {
		t.Fatalf("got outcome %+v, want no-op", out)
	}
}

func TestExecutor_TerminalOrder_NoOp(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	exec := NewExecutor(s, testLogger())

	stock := seedStock(t, s, "ACME", "50.00")
	account := seedAccount(t, s, "done@example.com", "500.00")
	order := seedOrder(t, s, account.UserID, stock.ID, domain.OrderSideBuy, 10, "50.00")

	first := exec.Execute(ctx, order.ID, dec(t, "50.00"))
	if first.Status != domain.OrderStatusCompleted {
		t.Fatalf("setup execute failed: %+v", first)
	}

	second := exec.Execute(ctx, order.ID, dec(t, "50.00"))
	if !second.NoOp {
		t.Fatalf("re-executing a completed order mutated state: %+v", second)
	}

	// The balance must not be debited twice.
	got, err := s.GetAccount(ctx, account.UserID)
	if err != nil {
		t.Fatalf("reloading account: %v", err)
	}
	if !got.Balance.Equal(dec(t, "0.00")) {
		t.Errorf("got balance %s, want 0.00", got.Balance)
	}
}

func TestExecutor_StoreFault_RollsBackAndCancels(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	exec := NewExecutor(s, testLogger())

	stock := seedStock(t, s, "ACME", "50.00")
	account := seedAccount(t, s, "faulted@example.com", "500.00")
	order := seedOrder(t, s, account.UserID, stock.ID, domain.OrderSideBuy, 10, "50.00")

	// A ledger row already linked to the order makes the final
	// CreateTransaction hit the order_id unique index mid-settle,
	// after the debit and holding writes.
	if err := s.CreateTransaction(ctx, &domain.Transaction{
		ID:          uuid.NewString(),
		UserID:      account.UserID,
		StockID:     stock.ID,
		Side:        domain.OrderSideBuy,
		Quantity:    10,
		Price:       dec(t, "50.00"),
		TotalAmount: dec(t, "500.00"),
		OrderID:     order.ID,
		CreatedAt:   time.Now().UTC(),
	}); err != nil {
		t.Fatalf("seeding conflicting ledger row: %v", err)
	}

	out := exec.Execute(ctx, order.ID, dec(t, "50.00"))
	if out.Status != domain.OrderStatusCancelled || out.Reason != domain.CancelReasonDataFault {
		t.Fatalf("got outcome %+v, want cancelled/data_fault", out)
	}

	// The whole settle rolled back: balance and holding untouched.
	got, err := s.GetAccount(ctx, account.UserID)
	if err != nil {
		t.Fatalf("reloading account: %v", err)
	}
	if !got.Balance.Equal(dec(t, "500.00")) {
		t.Errorf("balance moved on a rolled-back settle: got %s, want 500.00", got.Balance)
	}
	if _, err := s.GetHolding(ctx, account.UserID, stock.ID); !errors.Is(err, domain.ErrHoldingNotFound) {
		t.Errorf("rolled-back settle left a holding: err=%v", err)
	}

	// The order reached exactly one terminal state.
	reloaded, err := s.GetOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("reloading order: %v", err)
	}
	if reloaded.Status != domain.OrderStatusCancelled {
		t.Errorf("got status %s, want cancelled", reloaded.Status)
	}
}

func TestExecutor_Cancel_PendingOnly(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	exec := NewExecutor(s, testLogger())

	stock := seedStock(t, s, "ACME", "50.00")
	account := seedAccount(t, s, "sweep@example.com", "500.00")
	order := seedOrder(t, s, account.UserID, stock.ID, domain.OrderSideBuy, 1, "50.00")

	out := exec.Cancel(ctx, order.ID, domain.CancelReasonMarketClosed)
	if out.Status != domain.OrderStatusCancelled || out.Reason != domain.CancelReasonMarketClosed {
		t.Fatalf("got outcome %+v, want cancelled/market_closed", out)
	}

	// A second cancel hits a terminal order and reports a plain
	// no-op, with no terminal status or reason claimed.
	again := exec.Cancel(ctx, order.ID, domain.CancelReasonMarketClosed)
	if !again.NoOp {
		t.Fatalf("cancelling a terminal order reported %+v, want no-op", again)
	}
	if again.Status != "" || again.Reason != "" {
		t.Fatalf("no-op outcome claims a terminal state: %+v", again)
	}
}
