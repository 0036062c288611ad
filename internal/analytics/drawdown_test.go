package analytics

import (
	"testing"

	"perpdash/internal/model"
)

func TestMaxDrawdownReferenceCase(t *testing.T) {
	// +10 peaks at 10, -30 drops the running sum to -20 (drawdown 30),
	// +5 recovers to -15 without setting a larger gap.
	history := []model.ClosedPosition{
		pos("X", 10, 0, 1),
		pos("X", -30, 0, 2),
		pos("X", 5, 0, 3),
	}

	if got := MaxDrawdown(history, OrderEncounter); got != 30 {
		t.Fatalf("encounter drawdown = %v, want 30", got)
	}
	if got := MaxDrawdown(history, OrderChronological); got != 30 {
		t.Fatalf("chronological drawdown = %v, want 30", got)
	}
}

func TestMaxDrawdownEmpty(t *testing.T) {
	if got := MaxDrawdown(nil, OrderChronological); got != 0 {
		t.Fatalf("drawdown of empty history = %v, want 0", got)
	}
}

func TestMaxDrawdownAllLosses(t *testing.T) {
	history := []model.ClosedPosition{
		pos("X", -10, 0, 1),
		pos("X", -5, 0, 2),
	}
	// Peak stays at the initial zero; the full loss is the drawdown.
	if got := MaxDrawdown(history, OrderEncounter); got != 15 {
		t.Fatalf("drawdown = %v, want 15", got)
	}
}

func TestMaxDrawdownOrderingMatters(t *testing.T) {
	// Fetch order differs from close order, and so does the drawdown.
	history := []model.ClosedPosition{
		pos("X", -10, 0, 300), // closed last, fetched first
		pos("X", 20, 0, 100),
		pos("X", -15, 0, 200),
	}

	// Encounter replay: -10 (dd 10), +10, -5 (peak 10, dd 15).
	if got := MaxDrawdown(history, OrderEncounter); got != 15 {
		t.Fatalf("encounter drawdown = %v, want 15", got)
	}
	// Chronological replay: +20 (peak), +5 (dd 15), -5 (dd 25).
	if got := MaxDrawdown(history, OrderChronological); got != 25 {
		t.Fatalf("chronological drawdown = %v, want 25", got)
	}
}

func TestMaxDrawdownDoesNotMutateInput(t *testing.T) {
	history := []model.ClosedPosition{
		pos("X", 1, 0, 300),
		pos("X", 2, 0, 100),
	}
	MaxDrawdown(history, OrderChronological)
	if history[0].UpdatedAt != 300 {
		t.Fatal("chronological ordering must sort a copy, not the caller's slice")
	}
}
