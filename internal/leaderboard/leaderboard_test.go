package leaderboard

import (
	"testing"

	"perpdash/internal/model"
)

func roster() []model.TraderSummary {
	return []model.TraderSummary{
		{ID: 1, Address: "0xa", PnL: 100},
		{ID: 2, Address: "0xb", PnL: -50},
		{ID: 3, Address: "0xc", PnL: 300},
		{ID: 4, Address: "0xd", PnL: 0},
		{ID: 5, Address: "0xe", PnL: -200},
		{ID: 6, Address: "0xf", PnL: 40},
		{ID: 7, Address: "0xg", PnL: 250},
	}
}

func TestBuildTopAndBottom(t *testing.T) {
	b := Build(roster())

	wantGainers := []int64{3, 7, 1}
	if len(b.Gainers) != len(wantGainers) {
		t.Fatalf("got %d gainers, want %d", len(b.Gainers), len(wantGainers))
	}
	for i, id := range wantGainers {
		if b.Gainers[i].ID != id {
			t.Fatalf("gainers[%d].ID = %d, want %d", i, b.Gainers[i].ID, id)
		}
	}

	wantLosers := []int64{5, 2}
	if len(b.Losers) != len(wantLosers) {
		t.Fatalf("got %d losers, want %d", len(b.Losers), len(wantLosers))
	}
	for i, id := range wantLosers {
		if b.Losers[i].ID != id {
			t.Fatalf("losers[%d].ID = %d, want %d", i, b.Losers[i].ID, id)
		}
	}
}

func TestBuildBreakEvenRosterIsEmpty(t *testing.T) {
	b := Build([]model.TraderSummary{{ID: 1, PnL: 0}, {ID: 2, PnL: 0}})
	if len(b.Gainers) != 0 || len(b.Losers) != 0 {
		t.Fatalf("break-even roster produced %+v, want empty board", b)
	}
}

func TestBuildDoesNotMutateInput(t *testing.T) {
	r := roster()
	Build(r)
	if r[0].ID != 1 || r[len(r)-1].ID != 7 {
		t.Fatal("Build reordered the caller's roster")
	}
}

func TestRank(t *testing.T) {
	r := roster()
	if got := Rank(r, 3); got != 1 {
		t.Fatalf("Rank(3) = %d, want 1", got)
	}
	if got := Rank(r, 5); got != 7 {
		t.Fatalf("Rank(5) = %d, want 7", got)
	}
	if got := Rank(r, 42); got != 0 {
		t.Fatalf("Rank(42) = %d, want 0 for unknown account", got)
	}
}
