package counters

import "testing"

func TestSetOverwrites(t *testing.T) {
	ts := NewTallies()
	ts.Set(PileReserveDeck, 30)
	ts.Set(PileReserveDeck, 28)

	if got := ts.Get(PileReserveDeck); got != 28 {
		t.Errorf("Get(%s) = %d, want 28", PileReserveDeck, got)
	}
}

func TestSetClampsNegative(t *testing.T) {
	ts := NewTallies()
	ts.Set(PileForcePile, -3)

	if got := ts.Get(PileForcePile); got != 0 {
		t.Errorf("Get(%s) = %d, want 0", PileForcePile, got)
	}
}

func TestGetUnreported(t *testing.T) {
	ts := NewTallies()
	if got := ts.Get(PileLostPile); got != 0 {
		t.Errorf("Get(%s) = %d, want 0", PileLostPile, got)
	}
}

func TestTotal(t *testing.T) {
	ts := NewTallies()
	ts.Set(PileReserveDeck, 20)
	ts.Set(PileForcePile, 6)
	ts.Set(PileUsedPile, 3)

	if got := ts.Total(); got != 29 {
		t.Errorf("Total() = %d, want 29", got)
	}
}

func TestCopyIsIndependent(t *testing.T) {
	ts := NewTallies()
	ts.Set(PileHand, 8)

	cp := ts.Copy()
	cp.Set(PileHand, 2)

	if got := ts.Get(PileHand); got != 8 {
		t.Errorf("original mutated by copy: Get(%s) = %d, want 8", PileHand, got)
	}
}
