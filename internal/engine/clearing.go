package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/chesadev/marketsim/internal/domain"
	"github.com/chesadev/marketsim/internal/store"
)

// ClearingLoop batches pending orders per stock over a collection
// window, computes one clearing price for the batch, and drives the
// executor over every order in it, strictly sequentially. While the
// market gate is closed it instead cancels every pending order and
// backs off.
type ClearingLoop struct {
	store     *store.Store
	executor  *Executor
	gate      *MarketGate
	authority *PriceAuthority
	log       *slog.Logger

	window        time.Duration // collection window per stock
	passDelay     time.Duration // sleep between full passes
	closedBackoff time.Duration // sleep after a closed-market sweep
}

// NewClearingLoop creates a ClearingLoop.
func NewClearingLoop(
	s *store.Store,
	executor *Executor,
	gate *MarketGate,
	authority *PriceAuthority,
	window, passDelay, closedBackoff time.Duration,
	log *slog.Logger,
) *ClearingLoop {
	return &ClearingLoop{
		store:         s,
		executor:      executor,
		gate:          gate,
		authority:     authority,
		log:           log,
		window:        window,
		passDelay:     passDelay,
		closedBackoff: closedBackoff,
	}
}

// Start launches the loop in its own goroutine. Each iteration runs
// one full pass and then sleeps: the short pass delay normally, the
// long backoff after a closed-market sweep. The loop stops only when
// ctx is cancelled.
func (l *ClearingLoop) Start(ctx context.Context) {
	go func() {
		for {
			delay := l.passDelay
			if err := l.RunPass(ctx); err != nil {
				if err == domain.ErrMarketClosed {
					delay = l.closedBackoff
				} else if ctx.Err() != nil {
					return
				} else {
					l.log.Error("clearing pass failed",
						slog.String("error", err.Error()))
				}
			}
			if err := sleepCtx(ctx, delay); err != nil {
				return
			}
		}
	}()
}

// RunPass executes one full clearing pass. With the gate closed it
// cancels every pending order and returns domain.ErrMarketClosed so
// the caller applies the long backoff. Otherwise it clears each stock
// sequentially; per-stock failures are logged and the pass moves on.
func (l *ClearingLoop) RunPass(ctx context.Context) error {
	if !l.gate.Active() {
		l.cancelAllPending(ctx)
		return domain.ErrMarketClosed
	}

	stocks, err := l.store.ListStocks(ctx)
	if err != nil {
		return err
	}

	for i := range stocks {
		if err := l.clearStock(ctx, &stocks[i]); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			l.log.Error("stock clearing failed",
				slog.String("symbol", stocks[i].Symbol),
				slog.String("error", err.Error()))
		}
	}
	return nil
}

// clearStock runs one stock's collect-and-clear cycle. The price lease
// is held from the start of the collection window until every order in
// the batch has been executed, so the formation loop cannot rewrite
// the price mid-batch.
func (l *ClearingLoop) clearStock(ctx context.Context, stock *domain.Stock) error {
	pending, err := l.store.PendingOrdersByStock(ctx, stock.ID)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return nil
	}

	if !l.authority.Acquire(stock.ID, OwnerClearing) {
		return nil
	}
	defer l.authority.Release(stock.ID, OwnerClearing)

	// Re-read under the lease: a formation write may have landed
	// between the pass's stock listing and the acquire.
	stock, err = l.store.GetStock(ctx, stock.ID)
	if err != nil {
		return err
	}

	l.log.Info("collecting orders",
		slog.String("symbol", stock.Symbol),
		slog.Int("pending", len(pending)))

	// Batch membership is every pending order submitted at or before
	// the end of the collection window.
	cutoff := time.Now().Add(l.window)
	if err := sleepCtx(ctx, l.window); err != nil {
		return err
	}

	batch, err := l.store.PendingOrdersByStockBefore(ctx, stock.ID, cutoff)
	if err != nil {
		return err
	}
	if len(batch) == 0 {
		return nil
	}

	var buyQty, sellQty int64
	for i := range batch {
		if batch[i].Side == domain.OrderSideBuy {
			buyQty += batch[i].Quantity
		} else {
			sellQty += batch[i].Quantity
		}
	}

	delta := ClearingDelta(buyQty, sellQty)
	clearingPrice := ApplyChange(stock.CurrentPrice, delta)
	if err := l.authority.SetPrice(ctx, stock, clearingPrice, ChangePct(delta), OwnerClearing); err != nil {
		return err
	}

	l.log.Info("clearing batch",
		slog.String("symbol", stock.Symbol),
		slog.Int("orders", len(batch)),
		slog.Int64("buy_qty", buyQty),
		slog.Int64("sell_qty", sellQty),
		slog.String("price", clearingPrice.StringFixed(2)))

	// Strictly sequential: at most one in-flight mutation per account
	// from this loop.
	for i := range batch {
		out := l.executor.Execute(ctx, batch[i].ID, clearingPrice)
		if out.NoOp {
			continue
		}
		l.log.Info("order settled",
			slog.String("order_id", batch[i].ID),
			slog.String("status", string(out.Status)),
			slog.String("reason", string(out.Reason)))
	}
	return nil
}

// cancelAllPending sweeps every pending order into cancelled while the
// market is closed. No execution and no ledger entries occur.
func (l *ClearingLoop) cancelAllPending(ctx context.Context) {
	pending, err := l.store.AllPendingOrders(ctx)
	if err != nil {
		l.log.Error("closed-market sweep: listing pending orders failed",
			slog.String("error", err.Error()))
		return
	}
	if len(pending) == 0 {
		return
	}

	l.log.Info("market closed, cancelling pending orders",
		slog.Int("count", len(pending)))
	for i := range pending {
		l.executor.Cancel(ctx, pending[i].ID, domain.CancelReasonMarketClosed)
	}
}

// sleepCtx blocks for d or until ctx is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
