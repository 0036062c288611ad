package analytics

import (
	"sort"

	"perpdash/internal/model"
)

// Ordering selects how positions are replayed when computing drawdown.
type Ordering int

const (
	// OrderEncounter replays positions exactly as the venue returned them.
	// This matches the original dashboard's behaviour.
	OrderEncounter Ordering = iota
	// OrderChronological sorts by close time before replaying. The two
	// orderings disagree whenever the venue pages out of close order, so
	// served figures use chronological while the archetype ratio keeps
	// encounter order.
	OrderChronological
)

// MaxDrawdown replays cumulative realized PnL over the history and returns
// the largest observed decline from a running peak. The peak starts at zero,
// so a history that only loses money draws down by its full loss.
func MaxDrawdown(history []model.ClosedPosition, ordering Ordering) float64 {
	if len(history) == 0 {
		return 0
	}

	positions := history
	if ordering == OrderChronological {
		positions = make([]model.ClosedPosition, len(history))
		copy(positions, history)
		sort.SliceStable(positions, func(i, j int) bool {
			return positions[i].UpdatedAt < positions[j].UpdatedAt
		})
	}

	var running, peak, maxDrawdown float64
	for _, p := range positions {
		running += float64(p.RealizedPnL)
		if running > peak {
			peak = running
		}
		if dd := peak - running; dd > maxDrawdown {
			maxDrawdown = dd
		}
	}
	return maxDrawdown
}
