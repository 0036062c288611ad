package analytics

import (
	"sort"

	"perpdash/internal/model"
)

// TradeStats summarises wins and losses over a history. Positions with an
// exactly zero realized PnL count toward neither side, matching the original
// dashboard card.
type TradeStats struct {
	TotalTrades int     `json:"total_trades"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	WinRate     float64 `json:"win_rate"`
	LossRate    float64 `json:"loss_rate"`
	AvgWin      float64 `json:"avg_win"`
	AvgLoss     float64 `json:"avg_loss"`
}

// Statistics computes win/loss counts and averages. AvgLoss is reported as a
// positive magnitude.
func Statistics(history []model.ClosedPosition) TradeStats {
	if len(history) == 0 {
		return TradeStats{}
	}

	stats := TradeStats{TotalTrades: len(history)}
	var winSum, lossSum float64
	for _, p := range history {
		pnl := float64(p.RealizedPnL)
		switch {
		case pnl > 0:
			stats.Wins++
			winSum += pnl
		case pnl < 0:
			stats.Losses++
			lossSum += pnl
		}
	}

	total := float64(stats.TotalTrades)
	stats.WinRate = float64(stats.Wins) / total * 100
	stats.LossRate = float64(stats.Losses) / total * 100
	if stats.Wins > 0 {
		stats.AvgWin = winSum / float64(stats.Wins)
	}
	if stats.Losses > 0 {
		stats.AvgLoss = -lossSum / float64(stats.Losses)
	}
	return stats
}

// DayBucket is one calendar day of trading activity.
type DayBucket struct {
	Date    string  `json:"date"`
	PnL     float64 `json:"pnl"`
	Trades  int     `json:"trades"`
	WinRate float64 `json:"win_rate"`
}

// DailyPnL buckets the history by UTC close date, summing realized PnL and
// computing a per-day win rate. Buckets come back sorted by date.
func DailyPnL(history []model.ClosedPosition) []DayBucket {
	type bucket struct {
		pnl    float64
		trades int
		wins   int
	}
	byDate := make(map[string]*bucket)
	for _, p := range history {
		if p.UpdatedAt.IsZero() {
			continue
		}
		date := p.UpdatedAt.Date()
		b := byDate[date]
		if b == nil {
			b = &bucket{}
			byDate[date] = b
		}
		pnl := float64(p.RealizedPnL)
		b.pnl += pnl
		b.trades++
		if pnl > 0 {
			b.wins++
		}
	}

	out := make([]DayBucket, 0, len(byDate))
	for date, b := range byDate {
		winRate := 0.0
		if b.trades > 0 {
			winRate = float64(b.wins) / float64(b.trades) * 100
		}
		out = append(out, DayBucket{Date: date, PnL: b.pnl, Trades: b.trades, WinRate: winRate})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// SeriesPoint is one step of the cumulative PnL curve.
type SeriesPoint struct {
	Index      int               `json:"index"`
	Timestamp  model.EpochMillis `json:"timestamp"`
	Cumulative float64           `json:"cumulative_pnl"`
}

// Series builds the cumulative PnL curve in chronological close order. Unlike
// drawdown, this has always sorted by time upstream.
func Series(history []model.ClosedPosition) []SeriesPoint {
	if len(history) == 0 {
		return []SeriesPoint{}
	}

	sorted := make([]model.ClosedPosition, len(history))
	copy(sorted, history)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].UpdatedAt < sorted[j].UpdatedAt
	})

	points := make([]SeriesPoint, len(sorted))
	var cumulative float64
	for i, p := range sorted {
		cumulative += float64(p.RealizedPnL)
		points[i] = SeriesPoint{Index: i + 1, Timestamp: p.UpdatedAt, Cumulative: cumulative}
	}
	return points
}
