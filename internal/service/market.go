package service

import (
	"context"

	"github.com/chesadev/marketsim/internal/engine"
	"github.com/chesadev/marketsim/internal/store"
)

// MarketService exposes the market gate to the HTTP boundary.
type MarketService struct {
	store *store.Store
	gate  *engine.MarketGate
}

// NewMarketService creates a MarketService.
func NewMarketService(s *store.Store, gate *engine.MarketGate) *MarketService {
	return &MarketService{store: s, gate: gate}
}

// Active reports whether the market is currently open.
func (s *MarketService) Active() bool {
	return s.gate.Active()
}

// SetActive opens or closes the market. Admin only.
func (s *MarketService) SetActive(ctx context.Context, actorID string, active bool) error {
	if err := requireAdmin(ctx, s.store, actorID); err != nil {
		return err
	}
	return s.gate.SetActive(ctx, active)
}
