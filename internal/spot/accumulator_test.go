package spot

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"perpdash/internal/model"
)

func singlePage(trades []model.SpotTrade) func(context.Context, string) ([]model.SpotTrade, string, error) {
	return func(_ context.Context, cursor string) ([]model.SpotTrade, string, error) {
		if cursor != "" {
			return nil, "", nil
		}
		return trades, "", nil
	}
}

func wantDecimal(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Fatalf("%s = %s, want %s", name, got, want)
	}
}

// The key fee regression: identical price/qty/fee, opposite sides, different
// fee totals. A buy fee is denominated in the base asset and must be converted
// through the price; a sell fee is already in quote.
func TestBuyFeeConvertedThroughPrice(t *testing.T) {
	r := Accumulate(context.Background(), "acct", singlePage([]model.SpotTrade{
		{Price: "100", Quantity: "2", Fee: "0.01", Side: model.TradeBuy},
	}), 0, nil)

	wantDecimal(t, "volume", r.Volume, "200")
	wantDecimal(t, "buy fees", r.Fees, "1")
}

func TestSellFeeTakenAsIs(t *testing.T) {
	r := Accumulate(context.Background(), "acct", singlePage([]model.SpotTrade{
		{Price: "100", Quantity: "2", Fee: "0.01", Side: model.TradeSell},
	}), 0, nil)

	wantDecimal(t, "volume", r.Volume, "200")
	wantDecimal(t, "sell fees", r.Fees, "0.01")
}

func TestAccumulateAcrossPages(t *testing.T) {
	pages := [][]model.SpotTrade{
		{{Price: "10", Quantity: "1", Fee: "0.1", Side: model.TradeSell}},
		{{Price: "20", Quantity: "3", Fee: "0.2", Side: model.TradeSell}},
	}
	fetch := func(_ context.Context, cursor string) ([]model.SpotTrade, string, error) {
		if cursor == "" {
			return pages[0], "p2", nil
		}
		return pages[1], "", nil
	}

	r := Accumulate(context.Background(), "acct", fetch, 0, nil)
	if r.Pages != 2 {
		t.Fatalf("pages = %d, want 2", r.Pages)
	}
	wantDecimal(t, "volume", r.Volume, "70")
	wantDecimal(t, "fees", r.Fees, "0.3")
	if r.IsTeam {
		t.Fatal("account with fees must not be flagged as team")
	}
}

func TestEmptyPageStopsWalkDespiteCursor(t *testing.T) {
	calls := 0
	fetch := func(_ context.Context, cursor string) ([]model.SpotTrade, string, error) {
		calls++
		return nil, "there-is-more", nil
	}

	Accumulate(context.Background(), "acct", fetch, 0, nil)
	if calls != 1 {
		t.Fatalf("fetch called %d times, want 1 (empty page ends walk)", calls)
	}
}

// An account with no spot history reports zero pages, the same as a first-page
// fetch error, while the zero fee total still flags is_team.
func TestEmptyHistoryReportsZeroPages(t *testing.T) {
	r := Accumulate(context.Background(), "acct", singlePage(nil), 0, nil)

	if r.Pages != 0 {
		t.Fatalf("pages = %d, want 0 for empty history", r.Pages)
	}
	if !r.IsTeam {
		t.Fatal("zero-fee history should flag is_team")
	}
	wantDecimal(t, "volume", r.Volume, "0")
	wantDecimal(t, "fees", r.Fees, "0")
}

func TestZeroFeesFlagsTeam(t *testing.T) {
	r := Accumulate(context.Background(), "acct", singlePage([]model.SpotTrade{
		{Price: "100", Quantity: "5", Fee: "0", Side: model.TradeSell},
	}), 0, nil)

	if !r.IsTeam {
		t.Fatal("zero total fees must flag is_team")
	}
	wantDecimal(t, "volume", r.Volume, "500")
}

func TestMalformedAmountsSkipContribution(t *testing.T) {
	r := Accumulate(context.Background(), "acct", singlePage([]model.SpotTrade{
		{Price: "abc", Quantity: "2", Fee: "xyz", Side: model.TradeBuy},
		{Price: "50", Quantity: "2", Fee: "0.5", Side: model.TradeSell},
	}), 0, nil)

	wantDecimal(t, "volume", r.Volume, "100")
	wantDecimal(t, "fees", r.Fees, "0.5")
}

// Many small fee multiplications must not drift. 10000 buys of fee 0.0001 at
// price 3.33 come out to exactly 3.33 in quote terms.
func TestNoDriftOverManyTrades(t *testing.T) {
	trades := make([]model.SpotTrade, 10_000)
	for i := range trades {
		trades[i] = model.SpotTrade{Price: "3.33", Quantity: "0.001", Fee: "0.0001", Side: model.TradeBuy}
	}

	r := Accumulate(context.Background(), "acct", singlePage(trades), 0, nil)
	wantDecimal(t, "fees", r.Fees, "3.33")
	wantDecimal(t, "volume", r.Volume, "33.3")
}
