// Package archetype assigns a behavioural label to a trader from their
// closed-position history. Classification is a fixed ordered decision table
// over sixteen derived metrics, not a scored model: rules are evaluated top to
// bottom and the first match wins, so the same inputs always produce the same
// label.
package archetype

import (
	"math"

	"perpdash/internal/analytics"
	"perpdash/internal/model"
)

// Metrics is the full metric record the classifier consumes.
//
// TotalPnL here is summed from the history records, unlike the analytics
// report which passes the venue ledger figure through. The two can disagree on
// partially closed positions; both are kept, deliberately, under different
// names (history PnL vs ledger PnL).
type Metrics struct {
	TotalTrades    int     `json:"total_trades"`
	ActiveDays     int     `json:"active_days"`
	TradesPerDay   float64 `json:"trades_per_day"`
	TotalPnL       float64 `json:"total_pnl"`
	TotalFees      float64 `json:"total_fees"`
	FeeBurn        float64 `json:"fee_burn"`
	WinRate        float64 `json:"win_rate"`
	AvgPnL         float64 `json:"avg_pnl"`
	AvgHoldMinutes float64 `json:"avg_hold_minutes"`
	RiskScore      float64 `json:"risk_score"`
	SizeVariance   float64 `json:"size_variance"`
	TimeVariance   float64 `json:"time_variance"`
	MaxDrawdown    float64 `json:"max_drawdown"`
	DirectionFlip  float64 `json:"direction_flip"`
	TotalVolume    float64 `json:"total_volume"`
	PnLToVolume    float64 `json:"pnl_to_volume"`
}

// ComputeMetrics derives the classification metrics from a history and the
// account's balance. An empty history yields the zero record.
func ComputeMetrics(history []model.ClosedPosition, balance float64) Metrics {
	if len(history) == 0 {
		return Metrics{}
	}

	m := Metrics{TotalTrades: len(history)}
	total := float64(m.TotalTrades)

	// Holding time statistics in minutes.
	holdMinutes := make([]float64, len(history))
	for i, p := range history {
		holdMinutes[i] = p.HoldingMinutes()
	}
	mean, stddev := meanAndStddev(holdMinutes)
	m.AvgHoldMinutes = mean
	if mean > 0 {
		m.TimeVariance = stddev / mean
	}

	// Active days from distinct UTC close-open dates.
	days := make(map[string]struct{})
	for _, p := range history {
		if !p.CreatedAt.IsZero() {
			days[p.CreatedAt.Date()] = struct{}{}
		}
	}
	m.ActiveDays = len(days)
	if m.ActiveDays < 1 {
		m.ActiveDays = 1
	}
	m.TradesPerDay = total / float64(m.ActiveDays)

	// PnL, fees and win rate from history records.
	var wins int
	for _, p := range history {
		pnl := float64(p.RealizedPnL)
		m.TotalPnL += pnl
		m.TotalFees += float64(p.CumTradingFee)
		if pnl > 0 {
			wins++
		}
	}
	// |PnL| floored at 1 keeps the ratio defined for break-even traders.
	m.FeeBurn = m.TotalFees / math.Max(math.Abs(m.TotalPnL), 1)
	m.WinRate = float64(wins) / total
	m.AvgPnL = m.TotalPnL / total

	// Notional exposure per trade: size x entry x leverage.
	notionals := make([]float64, len(history))
	for i, p := range history {
		notionals[i] = float64(p.CumClosedSize) * float64(p.AvgEntryPrice) * float64(p.Leverage)
	}
	sizeMean, sizeStddev := meanAndStddev(notionals)
	if sizeMean > 0 {
		m.SizeVariance = sizeStddev / sizeMean
	}
	if balance > 0 {
		m.RiskScore = sizeMean / balance
	}

	m.DirectionFlip = directionFlipRatio(history)

	if balance > 0 {
		m.MaxDrawdown = analytics.MaxDrawdown(history, analytics.OrderEncounter) / balance
	}

	// Volume approximated per trade as size x mid of entry and close price.
	for _, p := range history {
		mid := (float64(p.AvgEntryPrice) + float64(p.AvgClosePrice)) / 2
		m.TotalVolume += float64(p.CumClosedSize) * mid
	}
	if m.TotalVolume > 0 {
		m.PnLToVolume = math.Abs(m.TotalPnL) / m.TotalVolume
	}

	return m
}

// meanAndStddev returns the mean and population standard deviation.
func meanAndStddev(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return mean, math.Sqrt(sq / float64(len(values)))
}

// directionFlipRatio groups positions by symbol in encounter order and counts
// how often consecutive positions on the same symbol change side, over all
// adjacent pairs combined.
func directionFlipRatio(history []model.ClosedPosition) float64 {
	sides := make(map[string][]int)
	var order []string
	for _, p := range history {
		symbol := p.Symbol()
		if _, seen := sides[symbol]; !seen {
			order = append(order, symbol)
		}
		sides[symbol] = append(sides[symbol], p.PositionSide)
	}

	var flips, pairs int
	for _, symbol := range order {
		s := sides[symbol]
		for i := 1; i < len(s); i++ {
			if s[i] != s[i-1] {
				flips++
			}
			pairs++
		}
	}
	if pairs == 0 {
		return 0
	}
	return float64(flips) / float64(pairs)
}
