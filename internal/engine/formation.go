package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/chesadev/marketsim/internal/domain"
	"github.com/chesadev/marketsim/internal/store"
)

// FormationLoop periodically nudges each stock's price from the
// imbalance between pending buy and sell quantity. It runs on its own
// timer, independent of any clearing state, and coordinates with the
// clearing loop only through the price authority's leases.
type FormationLoop struct {
	store     *store.Store
	authority *PriceAuthority
	interval  time.Duration
	log       *slog.Logger
}

// NewFormationLoop creates a FormationLoop ticking at interval.
func NewFormationLoop(s *store.Store, authority *PriceAuthority, interval time.Duration, log *slog.Logger) *FormationLoop {
	return &FormationLoop{
		store:     s,
		authority: authority,
		interval:  interval,
		log:       log,
	}
}

// Start launches the loop in its own goroutine. It stops when ctx is
// cancelled; no error ever terminates it early.
func (f *FormationLoop) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(f.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				f.cycle(ctx)
			}
		}
	}()
}

// cycle runs one price-formation pass over every stock. Per-stock
// failures are logged and skipped; the pass always reaches the end.
func (f *FormationLoop) cycle(ctx context.Context) {
	stocks, err := f.store.ListStocks(ctx)
	if err != nil {
		f.log.Error("price formation: listing stocks failed",
			slog.String("error", err.Error()))
		return
	}

	for i := range stocks {
		if err := f.adjust(ctx, &stocks[i]); err != nil {
			if err == ErrPriceLeased {
				// Clearing owns this stock's price right now.
				f.log.Debug("price formation: stock leased, skipping",
					slog.String("symbol", stocks[i].Symbol))
				continue
			}
			f.log.Error("price formation: stock update failed",
				slog.String("symbol", stocks[i].Symbol),
				slog.String("error", err.Error()))
		}
	}
}

// adjust recomputes one stock's price from current pending demand and
// supply. Zero supply, or a ratio of exactly one, leaves the price
// untouched this cycle.
func (f *FormationLoop) adjust(ctx context.Context, stock *domain.Stock) error {
	demand, supply, err := f.store.PendingQuantities(ctx, stock.ID)
	if err != nil {
		return err
	}

	change := FormationChange(demand, supply)
	if change.IsZero() {
		return nil
	}

	newPrice := ApplyChange(stock.CurrentPrice, change)
	return f.authority.SetPrice(ctx, stock, newPrice, ChangePct(change), OwnerFormation)
}
