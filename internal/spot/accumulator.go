// Package spot accumulates notional volume and fees over an account's spot
// trade history. Fee accumulation is a long running sum of many small
// multiplications, so everything here uses arbitrary-precision decimals
// instead of binary floats.
package spot

import (
	"context"

	"github.com/shopspring/decimal"

	"perpdash/internal/model"
	"perpdash/internal/paginate"
	"perpdash/logger"
)

func init() {
	// Match the upstream ledger's 50-digit decimal context. Addition and
	// multiplication are exact in this representation; the precision only
	// bounds division, which Result consumers may perform later.
	if decimal.DivisionPrecision < 50 {
		decimal.DivisionPrecision = 50
	}
}

// Result is the accumulated spot activity for one account.
type Result struct {
	AccountID string          `json:"account_id"`
	Volume    decimal.Decimal `json:"volume_usd"`
	Fees      decimal.Decimal `json:"fees_usd"`
	IsTeam    bool            `json:"is_team"`
	Pages     int             `json:"pages"`
}

// Accumulate walks the account's trade pages and folds every trade into
// running volume and fee totals.
//
// Volume is quantity x price. The fee currency depends on the trade side:
// a buy (side 1) pays its fee in the base asset, so the fee is converted to
// quote by multiplying with the trade price; a sell (side 2) pays in quote
// already and is added as-is. This asymmetry is the venue's fee model and must
// be preserved exactly.
//
// IsTeam flags accounts whose fetched history carries literally zero fees.
// Venue-operated accounts trade fee-free, so this is a useful heuristic for
// spotting them, but it is only a heuristic: a fee-free promotion or an empty
// history flags the same way.
func Accumulate(ctx context.Context, accountID string, fetch paginate.PageFunc[model.SpotTrade], maxPages int, log *logger.Log) Result {
	volume := decimal.Zero
	fees := decimal.Zero
	trades := 0

	// An empty page ends the walk even when the venue still hands back a
	// cursor.
	stopOnEmpty := func(ctx context.Context, cursor string) ([]model.SpotTrade, string, error) {
		items, next, err := fetch(ctx, cursor)
		if err != nil {
			return nil, "", err
		}
		if len(items) == 0 {
			next = ""
		}
		return items, next, nil
	}

	pages := paginate.Walk(ctx, stopOnEmpty, maxPages, log, func(items []model.SpotTrade) {
		trades += len(items)
		for _, trade := range items {
			price := parseAmount(trade.Price)
			quantity := parseAmount(trade.Quantity)
			fee := parseAmount(trade.Fee)

			volume = volume.Add(quantity.Mul(price))
			if trade.Side == model.TradeBuy {
				fees = fees.Add(fee.Mul(price))
			} else {
				fees = fees.Add(fee)
			}
		}
	})

	// A history with no trades at all reports zero pages, matching how the
	// walk treats a first-page fetch error.
	if trades == 0 {
		pages = 0
	}

	return Result{
		AccountID: accountID,
		Volume:    volume.Round(2),
		Fees:      fees.Round(6),
		IsTeam:    fees.IsZero(),
		Pages:     pages,
	}
}

// parseAmount reads a venue amount string, treating malformed values as zero
// so one bad record never poisons the running totals.
func parseAmount(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
