package engine

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal literal %q: %v", s, err)
	}
	return d
}

// --- FormationChange ---

func TestFormationChange_ZeroSupply_NoChange(t *testing.T) {
	change := FormationChange(5000, 0)
	if !change.IsZero() {
		t.Errorf("got change %s, want 0 with zero supply", change)
	}
}

func TestFormationChange_BalancedMarket_NoChange(t *testing.T) {
	change := FormationChange(1000, 1000)
	if !change.IsZero() {
		t.Errorf("got change %s, want 0 when demand equals supply", change)
	}
}

func TestFormationChange_ExcessDemand_CappedAtFivePercent(t *testing.T) {
	// ratio = 3, raw change = (3-1)*2 = 4, capped at 0.05.
	change := FormationChange(3000, 1000)
	if !change.Equal(dec(t, "0.05")) {
		t.Errorf("got change %s, want 0.05", change)
	}
}

func TestFormationChange_ExcessSupply_CappedAtMinusFivePercent(t *testing.T) {
	// ratio = 0.1, raw change = -1.8, capped at -0.05.
	change := FormationChange(100, 1000)
	if !change.Equal(dec(t, "-0.05")) {
		t.Errorf("got change %s, want -0.05", change)
	}
}

func TestFormationChange_SmallImbalance_Uncapped(t *testing.T) {
	// ratio = 1.01, change = 0.02: inside the cap.
	change := FormationChange(1010, 1000)
	if !change.Equal(dec(t, "0.02")) {
		t.Errorf("got change %s, want 0.02", change)
	}
}

// --- ClearingDelta ---

func TestClearingDelta_WorkedExample(t *testing.T) {
	// Qb=3000, Qs=1000: delta = 0.01 × 2000 / 1000 = 0.02.
	delta := ClearingDelta(3000, 1000)
	if !delta.Equal(dec(t, "0.02")) {
		t.Errorf("got delta %s, want 0.02", delta)
	}
}

func TestClearingDelta_ExcessSupply_Negative(t *testing.T) {
	delta := ClearingDelta(1000, 3000)
	if !delta.Equal(dec(t, "-0.02")) {
		t.Errorf("got delta %s, want -0.02", delta)
	}
}

func TestClearingDelta_Balanced_Zero(t *testing.T) {
	delta := ClearingDelta(500, 500)
	if !delta.IsZero() {
		t.Errorf("got delta %s, want 0", delta)
	}
}

// --- ApplyChange ---

func TestApplyChange_WorkedExample(t *testing.T) {
	// price=100.00, delta=0.02 → 102.00.
	next := ApplyChange(dec(t, "100.00"), dec(t, "0.02"))
	if !next.Equal(dec(t, "102.00")) {
		t.Errorf("got price %s, want 102.00", next)
	}
}

func TestApplyChange_RoundsToTwoPlaces(t *testing.T) {
	// 3.33 × 1.015 = 3.379995 → 3.38.
	next := ApplyChange(dec(t, "3.33"), dec(t, "0.015"))
	if !next.Equal(dec(t, "3.38")) {
		t.Errorf("got price %s, want 3.38", next)
	}
}

func TestApplyChange_FloorsAtOne(t *testing.T) {
	next := ApplyChange(dec(t, "1.01"), dec(t, "-0.05"))
	if !next.Equal(dec(t, "1.00")) {
		t.Errorf("got price %s, want floor 1.00", next)
	}
}

func TestChangePct(t *testing.T) {
	pct := ChangePct(dec(t, "0.02"))
	if !pct.Equal(dec(t, "2.00")) {
		t.Errorf("got pct %s, want 2.00", pct)
	}
	pct = ChangePct(dec(t, "-0.05"))
	if !pct.Equal(dec(t, "-5.00")) {
		t.Errorf("got pct %s, want -5.00", pct)
	}
}
