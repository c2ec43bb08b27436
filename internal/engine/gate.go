package engine

import (
	"context"
	"sync"

	"github.com/chesadev/marketsim/internal/store"
)

// MarketGate serves the global open/closed flag. It is the single
// writer of the persisted market-state row and caches the flag behind
// an RWMutex so the intake path and the clearing loop read it without
// re-querying the store.
type MarketGate struct {
	mu     sync.RWMutex
	active bool
	store  *store.Store
}

// NewMarketGate creates a gate backed by the store. Call Load before
// serving reads.
func NewMarketGate(s *store.Store) *MarketGate {
	return &MarketGate{store: s}
}

// Load primes the cache from the persisted flag. A missing row loads
// as closed.
func (g *MarketGate) Load(ctx context.Context) error {
	active, err := g.store.MarketActive(ctx)
	if err != nil {
		return err
	}
	g.mu.Lock()
	g.active = active
	g.mu.Unlock()
	return nil
}

// Active reports whether the market is open.
func (g *MarketGate) Active() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.active
}

// SetActive writes the flag through to the store and updates the
// cache. The cache is only updated after a successful persist so the
// two never diverge.
func (g *MarketGate) SetActive(ctx context.Context, active bool) error {
	if err := g.store.SetMarketActive(ctx, active); err != nil {
		return err
	}
	g.mu.Lock()
	g.active = active
	g.mu.Unlock()
	return nil
}
