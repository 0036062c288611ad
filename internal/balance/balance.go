// Package balance values an account's spot holdings in USD using the venue's
// public mark-price feed.
package balance

import (
	"strings"

	"perpdash/internal/model"
)

// Holding is one coin position with its resolved USD value.
type Holding struct {
	Coin     string  `json:"coin"`
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price"`
	ValueUSD float64 `json:"value_usd"`
}

// Valuation is the full valued balance sheet for one account.
type Valuation struct {
	Holdings []Holding `json:"holdings"`
	TotalUSD float64   `json:"total_usd"`
}

// stablecoins are valued at 1 USD without a mark-price lookup.
var stablecoins = map[string]struct{}{
	"USDC": {},
	"USDT": {},
	"UST":  {},
}

// NormalizeCoin maps a venue coin ticker to the base used in mark-price
// symbols. Vault and wrapped tickers carry a single v/w prefix, and staked
// assets a ".ssi" suffix; both resolve to the underlying coin's price.
func NormalizeCoin(coin string) string {
	c := strings.ToUpper(strings.TrimSpace(coin))
	c = strings.TrimSuffix(c, ".SSI")
	if len(c) > 1 && (c[0] == 'V' || c[0] == 'W') {
		c = c[1:]
	}
	return c
}

// priceFor resolves the USD price of a coin from the mark-price table, or
// 0 when no price is known.
func priceFor(coin string, prices map[string]float64) float64 {
	base := NormalizeCoin(coin)
	if _, ok := stablecoins[base]; ok {
		return 1
	}
	return prices[base+"-USD"]
}

// Value prices every balance entry against the mark-price table. Coins with
// no known price contribute zero value but stay in the listing. Zero-quantity
// entries are dropped.
func Value(balances []model.SpotBalance, marks []model.MarkPrice) Valuation {
	prices := make(map[string]float64, len(marks))
	for _, mk := range marks {
		prices[mk.Symbol] = float64(mk.Price)
	}

	var v Valuation
	for _, b := range balances {
		qty := float64(b.Balance)
		if qty == 0 {
			continue
		}
		price := priceFor(b.Coin, prices)
		h := Holding{
			Coin:     b.Coin,
			Quantity: qty,
			Price:    price,
			ValueUSD: qty * price,
		}
		v.Holdings = append(v.Holdings, h)
		v.TotalUSD += h.ValueUSD
	}
	return v
}
