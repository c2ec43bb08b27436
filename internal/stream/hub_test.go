package stream

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/chesadev/marketsim/internal/domain"
)

func newTestHub() *Hub {
	return NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func tick(symbol string) domain.PriceTick {
	return domain.PriceTick{
		StockID:   symbol + "-id",
		Symbol:    symbol,
		Price:     decimal.NewFromInt(100),
		ChangePct: decimal.NewFromInt(2),
		At:        time.Now().UTC(),
	}
}

func TestHub_DeliversToAllSubscribers(t *testing.T) {
	h := newTestHub()
	_, ch1 := h.Subscribe()
	_, ch2 := h.Subscribe()

	h.PublishTick(tick("ACME"))

	for i, ch := range []<-chan domain.PriceTick{ch1, ch2} {
		select {
		case got := <-ch:
			if got.Symbol != "ACME" {
				t.Errorf("subscriber %d got tick for %s", i, got.Symbol)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d received nothing", i)
		}
	}
}

func TestHub_UnsubscribeClosesChannel(t *testing.T) {
	h := newTestHub()
	id, ch := h.Subscribe()
	if h.SubscriberCount() != 1 {
		t.Fatalf("got %d subscribers, want 1", h.SubscriberCount())
	}

	h.Unsubscribe(id)
	if h.SubscriberCount() != 0 {
		t.Fatalf("got %d subscribers after unsubscribe, want 0", h.SubscriberCount())
	}
	if _, open := <-ch; open {
		t.Error("channel still open after unsubscribe")
	}

	// Unsubscribing twice is harmless.
	h.Unsubscribe(id)
}

func TestHub_DropsLaggingSubscriber(t *testing.T) {
	h := newTestHub()
	_, slow := h.Subscribe()
	_, fast := h.Subscribe()

	// Fill the slow subscriber's buffer without draining, then publish
	// one more tick to trip the disconnect.
	for i := 0; i < 128; i++ {
		h.PublishTick(tick("ACME"))
		<-fast
	}
	h.PublishTick(tick("ACME"))
	<-fast

	if h.SubscriberCount() != 1 {
		t.Fatalf("got %d subscribers, want the lagging one dropped", h.SubscriberCount())
	}

	// The dropped subscriber's channel drains its buffer and then
	// reports closed.
	drained := 0
	for range slow {
		drained++
	}
	if drained != 128 {
		t.Errorf("drained %d buffered ticks, want 128", drained)
	}
}

func TestHub_PublishWithNoSubscribers(t *testing.T) {
	h := newTestHub()
	h.PublishTick(tick("ACME")) // must not panic or block
}
