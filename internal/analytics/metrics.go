// Package analytics computes the per-trader derived metrics shown on the
// dashboard: fee totals, ROI, holding times, best and worst trades, drawdown,
// win/loss statistics, daily PnL buckets and the cumulative PnL series.
//
// Every function is a pure transform over a fully materialised history slice;
// nothing here performs I/O or keeps state between calls.
package analytics

import (
	"sort"

	"perpdash/internal/model"
)

// Report is the flat derived-metrics record for one trader.
//
// TotalPnL and Volume are the venue ledger's cumulative figures passed
// through unchanged, not sums over the history: the ledger is authoritative
// and summing partially-closed positions would double count. The archetype
// package deliberately sums history instead; keep the two apart.
type Report struct {
	TotalFeesPaid   float64               `json:"total_fees_paid"`
	TotalPnL        float64               `json:"total_pnl"`
	ROI             float64               `json:"roi"`
	AvgHoldingHours float64               `json:"avg_holding_hours"`
	MaxDrawdown     float64               `json:"max_drawdown"`
	BestTrade       *model.ClosedPosition `json:"best_trade"`
	WorstTrade      *model.ClosedPosition `json:"worst_trade"`
	Volume          float64               `json:"volume"`
	MostTradedPair  string                `json:"most_traded_pair,omitempty"`
}

// Compute builds the derived-metrics report from a trader's closed-position
// history plus the ledger's cumulative quote volume and cumulative PnL.
// An empty history yields an all-zero report with nil best/worst trade and no
// most-traded pair.
func Compute(history []model.ClosedPosition, ledgerVolume, ledgerPnL float64) Report {
	if len(history) == 0 {
		return Report{}
	}

	var totalFees float64
	for _, p := range history {
		totalFees += float64(p.CumTradingFee)
	}

	roi := 0.0
	if ledgerVolume > 0 {
		roi = ledgerPnL / ledgerVolume * 100
	}

	var holdingSum float64
	for _, p := range history {
		holdingSum += p.HoldingHours()
	}
	avgHolding := holdingSum / float64(len(history))

	best, worst := bestAndWorst(history)

	return Report{
		TotalFeesPaid:   totalFees,
		TotalPnL:        ledgerPnL,
		ROI:             roi,
		AvgHoldingHours: avgHolding,
		MaxDrawdown:     MaxDrawdown(history, OrderChronological),
		BestTrade:       best,
		WorstTrade:      worst,
		Volume:          ledgerVolume,
		MostTradedPair:  MostTradedPair(history),
	}
}

// bestAndWorst picks the positions with the highest and lowest realized PnL.
// The full sort keeps ties in original order.
func bestAndWorst(history []model.ClosedPosition) (best, worst *model.ClosedPosition) {
	sorted := make([]model.ClosedPosition, len(history))
	copy(sorted, history)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].RealizedPnL > sorted[j].RealizedPnL
	})

	b := sorted[0]
	w := sorted[len(sorted)-1]
	return &b, &w
}

// MostTradedPair returns the symbol closed most often, ties broken by first
// encounter. Empty history returns "".
func MostTradedPair(history []model.ClosedPosition) string {
	counts := make(map[string]int)
	var order []string
	for _, p := range history {
		symbol := p.Symbol()
		if _, seen := counts[symbol]; !seen {
			order = append(order, symbol)
		}
		counts[symbol]++
	}

	top := ""
	topCount := 0
	for _, symbol := range order {
		if counts[symbol] > topCount {
			top = symbol
			topCount = counts[symbol]
		}
	}
	return top
}
