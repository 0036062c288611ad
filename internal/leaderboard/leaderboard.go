// Package leaderboard ranks traders by ledger PnL.
package leaderboard

import (
	"sort"

	"perpdash/internal/model"
)

// Board is a PnL-ordered roster snapshot.
type Board struct {
	Gainers []model.TraderSummary `json:"gainers"`
	Losers  []model.TraderSummary `json:"losers"`
}

const boardSize = 3

// Build sorts the roster by PnL and extracts the top and bottom entries.
// Gainers require a positive PnL and losers a negative one; a roster of
// break-even accounts yields empty lists. The input is not modified.
func Build(roster []model.TraderSummary) Board {
	sorted := make([]model.TraderSummary, len(roster))
	copy(sorted, roster)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PnL > sorted[j].PnL
	})

	var b Board
	for _, t := range sorted {
		if len(b.Gainers) == boardSize {
			break
		}
		if t.PnL <= 0 {
			break
		}
		b.Gainers = append(b.Gainers, t)
	}
	for i := len(sorted) - 1; i >= 0; i-- {
		if len(b.Losers) == boardSize {
			break
		}
		if sorted[i].PnL >= 0 {
			break
		}
		b.Losers = append(b.Losers, sorted[i])
	}
	return b
}

// Rank returns the 1-based PnL rank of the given account within the roster,
// or 0 when the account is not on it.
func Rank(roster []model.TraderSummary, accountID int64) int {
	sorted := make([]model.TraderSummary, len(roster))
	copy(sorted, roster)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PnL > sorted[j].PnL
	})
	for i, t := range sorted {
		if t.ID == accountID {
			return i + 1
		}
	}
	return 0
}
