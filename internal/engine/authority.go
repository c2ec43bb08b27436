package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/chesadev/marketsim/internal/domain"
	"github.com/chesadev/marketsim/internal/store"
)

// Price-writer identities. The clearing loop leases a stock's price
// for the duration of its collection and clearing window; the
// formation loop writes only while no lease is held.
const (
	OwnerFormation = "formation"
	OwnerClearing  = "clearing"
)

// ErrPriceLeased is returned when a price write is attempted on a
// stock whose price is currently leased to another writer.
var ErrPriceLeased = errors.New("stock price leased to another writer")

// TickPublisher receives a tick for every successful price write.
type TickPublisher interface {
	PublishTick(tick domain.PriceTick)
}

// PriceAuthority is the single write path for stock prices. The
// formation and clearing loops run on independent timers; routing both
// through the authority and partitioning ownership with per-stock
// leases keeps them from racing on the same stock's price.
type PriceAuthority struct {
	mu     sync.Mutex
	leases map[string]string // stock ID → owner
	store  *store.Store
	pub    TickPublisher
}

// NewPriceAuthority creates a PriceAuthority. pub may be nil when no
// stream subscribers exist.
func NewPriceAuthority(s *store.Store, pub TickPublisher) *PriceAuthority {
	return &PriceAuthority{
		leases: make(map[string]string),
		store:  s,
		pub:    pub,
	}
}

// Acquire takes the price lease for a stock. It reports false when
// another owner already holds it. Acquiring a lease you already hold
// is a no-op.
func (a *PriceAuthority) Acquire(stockID, owner string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	holder, held := a.leases[stockID]
	if held && holder != owner {
		return false
	}
	a.leases[stockID] = owner
	return true
}

// Release drops the lease if owner still holds it.
func (a *PriceAuthority) Release(stockID, owner string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.leases[stockID] == owner {
		delete(a.leases, stockID)
	}
}

// SetPrice persists a stock's new price and percent change on behalf
// of owner. Writes against a stock leased to a different owner fail
// with ErrPriceLeased before touching the store. On success the stock
// struct is updated in place and a tick is published.
func (a *PriceAuthority) SetPrice(ctx context.Context, stock *domain.Stock, price, changePct decimal.Decimal, owner string) error {
	a.mu.Lock()
	holder, held := a.leases[stock.ID]
	a.mu.Unlock()
	if held && holder != owner {
		return ErrPriceLeased
	}

	if err := a.store.UpdateStockPrice(ctx, stock.ID, price, changePct); err != nil {
		return err
	}
	stock.CurrentPrice = price
	stock.PriceChangePct = changePct

	if a.pub != nil {
		a.pub.PublishTick(domain.PriceTick{
			StockID:   stock.ID,
			Symbol:    stock.Symbol,
			Price:     price,
			ChangePct: changePct,
			At:        time.Now().UTC(),
		})
	}
	return nil
}
