package symbols

import (
	"context"
	"errors"
	"testing"
	"time"

	"perpdash/internal/model"
	"perpdash/logger"
)

func testEntry() *logger.Entry {
	return logger.Logger().WithComponent("symbols_test")
}

func TestMapperResolvesAndCaches(t *testing.T) {
	calls := 0
	fetch := func(ctx context.Context) ([]model.Symbol, error) {
		calls++
		return []model.Symbol{
			{ID: 1, Name: "BTC-USD"},
			{ID: 2, Name: "ETH-USD"},
		}, nil
	}
	m := NewMapper(fetch, time.Hour, testEntry())

	ctx := context.Background()
	if got := m.Name(ctx, 1); got != "BTC-USD" {
		t.Fatalf("Name(1) = %q, want BTC-USD", got)
	}
	if got := m.Name(ctx, 2); got != "ETH-USD" {
		t.Fatalf("Name(2) = %q, want ETH-USD", got)
	}
	if calls != 1 {
		t.Fatalf("listing fetched %d times, want 1", calls)
	}
}

func TestMapperUnknownIDFallsBack(t *testing.T) {
	fetch := func(ctx context.Context) ([]model.Symbol, error) {
		return []model.Symbol{{ID: 1, Name: "BTC-USD"}}, nil
	}
	m := NewMapper(fetch, time.Hour, testEntry())
	if got := m.Name(context.Background(), 99); got != "Symbol-99" {
		t.Fatalf("Name(99) = %q, want Symbol-99", got)
	}
}

func TestMapperFetchErrorDegrades(t *testing.T) {
	fetch := func(ctx context.Context) ([]model.Symbol, error) {
		return nil, errors.New("upstream down")
	}
	m := NewMapper(fetch, time.Hour, testEntry())
	if got := m.Name(context.Background(), 7); got != "Symbol-7" {
		t.Fatalf("Name(7) = %q, want Symbol-7 on fetch error", got)
	}
}

func TestMapperRefreshesAfterTTL(t *testing.T) {
	calls := 0
	fetch := func(ctx context.Context) ([]model.Symbol, error) {
		calls++
		return []model.Symbol{{ID: 1, Name: "BTC-USD"}}, nil
	}
	now := time.Unix(1_700_000_000, 0)
	m := NewMapperWithClock(fetch, time.Hour, func() time.Time { return now }, testEntry())

	ctx := context.Background()
	m.Name(ctx, 1)
	m.Name(ctx, 1)
	if calls != 1 {
		t.Fatalf("listing fetched %d times inside TTL, want 1", calls)
	}

	now = now.Add(2 * time.Hour)
	m.Name(ctx, 1)
	if calls != 2 {
		t.Fatalf("listing fetched %d times after TTL, want 2", calls)
	}
}

func TestResolveFillsMissingNames(t *testing.T) {
	fetch := func(ctx context.Context) ([]model.Symbol, error) {
		return []model.Symbol{{ID: 5, Name: "SOL-USD"}}, nil
	}
	m := NewMapper(fetch, time.Hour, testEntry())

	history := []model.ClosedPosition{
		{SymbolID: 5},
		{SymbolID: 5, SymbolName: "ALREADY-SET"},
		{SymbolID: 6},
	}
	m.Resolve(context.Background(), history)

	if history[0].SymbolName != "SOL-USD" {
		t.Fatalf("history[0] = %q, want SOL-USD", history[0].SymbolName)
	}
	if history[1].SymbolName != "ALREADY-SET" {
		t.Fatalf("history[1] = %q, existing name must be kept", history[1].SymbolName)
	}
	if history[2].SymbolName != "Symbol-6" {
		t.Fatalf("history[2] = %q, want Symbol-6", history[2].SymbolName)
	}
}
