package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chesadev/marketsim/internal/domain"
	"github.com/chesadev/marketsim/internal/store"
)

// Outcome is the terminal result of one Execute call. Exactly one of
// three shapes occurs: the order completed (balance and holding moved,
// ledger entry written), the order was cancelled with a reason, or the
// call was a no-op because the order was missing or already terminal.
type Outcome struct {
	Status domain.OrderStatus
	Reason domain.CancelReason // set only when Status is cancelled
	NoOp   bool
}

// Executor applies a clearing price to a single order, mutating
// account, holding, order, and transaction state as one unit. All
// mutation happens inside one store transaction so a mid-sequence
// fault can never leave a balance debited against a pending order.
type Executor struct {
	store *store.Store
	log   *slog.Logger
}

// NewExecutor creates an Executor.
func NewExecutor(s *store.Store, log *slog.Logger) *Executor {
	return &Executor{store: s, log: log}
}

// Execute settles one order at the given price. Business-rule
// failures (missing account, insufficient funds or shares) cancel the
// order; unexpected store faults roll the attempt back, cancel the
// order in a separate write, and are logged rather than returned. The
// caller always receives a terminal outcome.
func (e *Executor) Execute(ctx context.Context, orderID string, price decimal.Decimal) Outcome {
	var out Outcome
	err := e.store.Transaction(ctx, func(tx *store.Store) error {
		return e.settle(ctx, tx, orderID, price, &out)
	})
	if err != nil {
		e.log.Error("order execution failed, cancelling",
			slog.String("order_id", orderID),
			slog.String("error", err.Error()))
		return e.cancelNow(ctx, orderID, domain.CancelReasonDataFault)
	}
	return out
}

// settle runs the execution sequence inside tx. Returning nil commits;
// returning an error rolls back every write.
func (e *Executor) settle(ctx context.Context, tx *store.Store, orderID string, price decimal.Decimal, out *Outcome) error {
	order, err := tx.GetOrder(ctx, orderID)
	if errors.Is(err, domain.ErrOrderNotFound) {
		// Already handled elsewhere; nothing to do.
		*out = Outcome{NoOp: true}
		return nil
	}
	if err != nil {
		return err
	}
	if order.IsTerminal() {
		*out = Outcome{Status: order.Status, NoOp: true}
		return nil
	}

	account, err := tx.GetAccount(ctx, order.UserID)
	if errors.Is(err, domain.ErrAccountNotFound) {
		return e.cancelInTx(ctx, tx, order.ID, domain.CancelReasonAccountNotFound, out)
	}
	if err != nil {
		return err
	}

	total := price.Mul(decimal.NewFromInt(order.Quantity))

	switch order.Side {
	case domain.OrderSideBuy:
		if account.Balance.LessThan(total) {
			return e.cancelInTx(ctx, tx, order.ID, domain.CancelReasonInsufficientFunds, out)
		}
		if err := tx.UpdateAccountBalance(ctx, account.UserID, account.Balance.Sub(total)); err != nil {
			return err
		}
		if err := tx.AddToHolding(ctx, order.UserID, order.StockID, order.Quantity); err != nil {
			return err
		}
	case domain.OrderSideSell:
		err := tx.ReduceHolding(ctx, order.UserID, order.StockID, order.Quantity)
		if errors.Is(err, domain.ErrInsufficientShares) {
			return e.cancelInTx(ctx, tx, order.ID, domain.CancelReasonInsufficientShares, out)
		}
		if err != nil {
			return err
		}
		if err := tx.UpdateAccountBalance(ctx, account.UserID, account.Balance.Add(total)); err != nil {
			return err
		}
	default:
		return e.cancelInTx(ctx, tx, order.ID, domain.CancelReasonDataFault, out)
	}

	if _, err := tx.FinalizeOrder(ctx, order.ID, domain.OrderStatusCompleted, &price); err != nil {
		return err
	}
	if err := tx.CreateTransaction(ctx, &domain.Transaction{
		ID:          uuid.NewString(),
		UserID:      order.UserID,
		StockID:     order.StockID,
		Side:        order.Side,
		Quantity:    order.Quantity,
		Price:       price,
		TotalAmount: total,
		OrderID:     order.ID,
		CreatedAt:   time.Now().UTC(),
	}); err != nil {
		return err
	}

	*out = Outcome{Status: domain.OrderStatusCompleted}
	return nil
}

// cancelInTx marks the order cancelled as the sole mutation of the
// enclosing transaction, records the outcome, and commits.
func (e *Executor) cancelInTx(ctx context.Context, tx *store.Store, orderID string, reason domain.CancelReason, out *Outcome) error {
	if _, err := tx.FinalizeOrder(ctx, orderID, domain.OrderStatusCancelled, nil); err != nil {
		return err
	}
	e.log.Info("order cancelled",
		slog.String("order_id", orderID),
		slog.String("reason", string(reason)))
	*out = Outcome{Status: domain.OrderStatusCancelled, Reason: reason}
	return nil
}

// Cancel transitions a pending order straight to cancelled with no
// execution. Used by the clearing loop's closed-market sweep.
func (e *Executor) Cancel(ctx context.Context, orderID string, reason domain.CancelReason) Outcome {
	return e.cancelNow(ctx, orderID, reason)
}

func (e *Executor) cancelNow(ctx context.Context, orderID string, reason domain.CancelReason) Outcome {
	changed, err := e.store.FinalizeOrder(ctx, orderID, domain.OrderStatusCancelled, nil)
	if err != nil {
		e.log.Error("order cancel failed",
			slog.String("order_id", orderID),
			slog.String("error", err.Error()))
		return Outcome{NoOp: true}
	}
	if !changed {
		return Outcome{NoOp: true}
	}
	e.log.Info("order cancelled",
		slog.String("order_id", orderID),
		slog.String("reason", string(reason)))
	return Outcome{Status: domain.OrderStatusCancelled, Reason: reason}
}
