// Package model holds the immutable data entities exchanged between the venue
// client and the calculation packages. Records are created by the upstream
// venue and are read-only inside this service.
package model

import "strconv"

// Position side codes as used by the venue's perps API.
const (
	SideShort = 1
	SideLong  = 2
)

// Margin mode codes as used by the venue's perps API.
const (
	MarginIsolated = 1
	MarginCross    = 2
)

// ClosedPosition is one fully or partially closed perps position from the
// account history listing. Sequences of these are concatenated page by page;
// callers resort by UpdatedAt when chronological order matters.
type ClosedPosition struct {
	PositionID    string      `json:"position_id"`
	SymbolID      int64       `json:"symbol_id,omitempty"`
	SymbolName    string      `json:"symbol_name"`
	MarginMode    int         `json:"margin_mode"`
	PositionSide  int         `json:"position_side"`
	AvgEntryPrice Float       `json:"avg_entry_price"`
	AvgClosePrice Float       `json:"avg_close_price"`
	CumClosedSize Float       `json:"cum_closed_size"`
	CumTradingFee Float       `json:"cum_trading_fee"`
	RealizedPnL   Float       `json:"realized_pnl"`
	Leverage      Float       `json:"leverage"`
	CreatedAt     EpochMillis `json:"created_at"`
	UpdatedAt     EpochMillis `json:"updated_at"`
}

// Symbol returns the display symbol, falling back to a synthetic name when
// the venue omitted symbol_name from the record.
func (p ClosedPosition) Symbol() string {
	if p.SymbolName != "" {
		return p.SymbolName
	}
	return SyntheticSymbol(p.SymbolID)
}

// HoldingMinutes is the position's holding time in minutes.
func (p ClosedPosition) HoldingMinutes() float64 {
	return float64(p.UpdatedAt-p.CreatedAt) / 60_000
}

// HoldingHours is the position's holding time in hours.
func (p ClosedPosition) HoldingHours() float64 {
	return float64(p.UpdatedAt-p.CreatedAt) / 3_600_000
}

// SpotTrade is a single fill from the spot trade history. Price, quantity and
// fee stay raw strings because the fee/volume accumulator parses them with
// arbitrary-precision decimals; side selects the fee currency (see spot
// package).
type SpotTrade struct {
	Price    string `json:"price"`
	Quantity string `json:"quantity"`
	Fee      string `json:"fee"`
	Side     int    `json:"side"`
}

// Spot trade side codes.
const (
	TradeBuy  = 1
	TradeSell = 2
)

// MarketDaySnapshot is one calendar day of per-market traded volume from the
// venue's dashboard volume endpoint. Market symbols disambiguate spot from
// futures purely by separator: "BTC/USDC" is spot, "BTC-USD" is futures.
type MarketDaySnapshot struct {
	Timestamp EpochMillis       `json:"timestamp"`
	Markets   map[string]string `json:"markets"`
}

// PnLOverview is the venue's authoritative per-account ledger summary. Total
// PnL and volume are taken from here rather than recomputed from history to
// avoid double counting partially closed positions.
type PnLOverview struct {
	CumulativeQuoteVolume Float `json:"cumulative_quote_volume"`
	CumulativePnL         Float `json:"cumulative_pnl"`
}

// SpotBalance is one coin entry from the account balance listing.
type SpotBalance struct {
	Coin    string `json:"coin"`
	Balance Float  `json:"balance"`
}

// MarkPrice is one entry of the public mark-price feed.
type MarkPrice struct {
	Symbol string      `json:"s"`
	Price  Float       `json:"p"`
	Time   EpochMillis `json:"t"`
}

// Symbol is one entry of the venue symbol listing, used to resolve numeric
// symbol ids in history records to display names.
type Symbol struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// AccountDetails is the venue's account record, of which only the equity
// balance matters here. Balance feeds the risk and drawdown ratios.
type AccountDetails struct {
	ID      int64  `json:"id"`
	Address string `json:"address"`
	Balance Float  `json:"balance"`
}

// TraderSummary is one leaderboard roster entry (account, ledger PnL and
// volume) used for ranking.
type TraderSummary struct {
	ID      int64  `json:"id"`
	Address string `json:"address"`
	PnL     Float  `json:"pnl"`
	Volume  Float  `json:"volume"`
}

// SyntheticSymbol builds the placeholder name used when a numeric symbol id
// cannot be resolved.
func SyntheticSymbol(id int64) string {
	return "Symbol-" + strconv.FormatInt(id, 10)
}
