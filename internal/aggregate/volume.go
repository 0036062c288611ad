// Package aggregate folds daily market snapshots into the dashboard's volume
// figures: all-time sums, top-pair and top-token rankings, and the 24h view
// built from the most recent day.
package aggregate

import (
	"sort"
	"strconv"
	"strings"

	"perpdash/internal/model"
)

// Category tells spot and futures markets apart. The venue encodes the market
// type in the symbol itself: a "/" separator means spot, a "-" separator
// (without "/") means futures, anything else is ignored.
type Category int

const (
	CategoryNone Category = iota
	CategorySpot
	CategoryFutures
)

// Classify maps a market symbol to its category.
func Classify(symbol string) Category {
	switch {
	case strings.Contains(symbol, "/"):
		return CategorySpot
	case strings.Contains(symbol, "-"):
		return CategoryFutures
	default:
		return CategoryNone
	}
}

// BaseToken extracts the token name before the first "/" or "-" separator,
// e.g. "BTC" from both "BTC/USDC" and "BTC-USD".
func BaseToken(symbol string) string {
	if i := strings.IndexAny(symbol, "/-"); i >= 0 {
		return symbol[:i]
	}
	return symbol
}

// Ranked is one entry of a volume ranking.
type Ranked struct {
	Name   string  `json:"name"`
	Volume float64 `json:"volume"`
}

// Summary aggregates a full snapshot range: every day, every market.
type Summary struct {
	SpotVolume        float64  `json:"spot_volume"`
	FuturesVolume     float64  `json:"futures_volume"`
	TopSpotMarkets    []Ranked `json:"top_spot_markets"`
	TopFuturesMarkets []Ranked `json:"top_futures_markets"`
	TopSpotTokens     []Ranked `json:"top_spot_tokens"`
	TopFuturesTokens  []Ranked `json:"top_futures_tokens"`
}

// DayFigures is the 24h view derived from the chronologically last snapshot.
type DayFigures struct {
	Timestamp        model.EpochMillis `json:"timestamp"`
	SpotVolume       float64           `json:"spot_volume"`
	FuturesVolume    float64           `json:"futures_volume"`
	TotalVolume      float64           `json:"total_volume"`
	TopSpotTokens    []Ranked          `json:"top_spot_tokens"`
	TopFuturesTokens []Ranked          `json:"top_futures_tokens"`
}

const (
	topMarkets = 5
	topTokens  = 3
)

// accumulator tracks per-key volume while remembering first-encounter order
// so that ties rank stably.
type accumulator struct {
	totals map[string]float64
	order  []string
}

func newAccumulator() *accumulator {
	return &accumulator{totals: make(map[string]float64)}
}

func (a *accumulator) add(key string, volume float64) {
	if _, seen := a.totals[key]; !seen {
		a.order = append(a.order, key)
	}
	a.totals[key] += volume
}

// top returns the n largest entries, descending by volume, ties in
// first-encounter order.
func (a *accumulator) top(n int) []Ranked {
	ranked := make([]Ranked, 0, len(a.order))
	for _, key := range a.order {
		ranked = append(ranked, Ranked{Name: key, Volume: a.totals[key]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Volume > ranked[j].Volume
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// Summarize folds every day of the range into all-time sums and rankings.
// Non-numeric volume strings are skipped, never errored; an empty range yields
// zero sums and empty rankings.
func Summarize(days []model.MarketDaySnapshot) Summary {
	spotMarkets := newAccumulator()
	futMarkets := newAccumulator()
	spotTokens := newAccumulator()
	futTokens := newAccumulator()

	var spotTotal, futTotal float64
	for _, day := range days {
		eachMarket(day, func(symbol string, volume float64, cat Category) {
			switch cat {
			case CategorySpot:
				spotTotal += volume
				spotMarkets.add(symbol, volume)
				spotTokens.add(BaseToken(symbol), volume)
			case CategoryFutures:
				futTotal += volume
				futMarkets.add(symbol, volume)
				futTokens.add(BaseToken(symbol), volume)
			}
		})
	}

	return Summary{
		SpotVolume:        spotTotal,
		FuturesVolume:     futTotal,
		TopSpotMarkets:    spotMarkets.top(topMarkets),
		TopFuturesMarkets: futMarkets.top(topMarkets),
		TopSpotTokens:     spotTokens.top(topTokens),
		TopFuturesTokens:  futTokens.top(topTokens),
	}
}

// Last24h derives the 24h figures from the last snapshot of the range. The
// volume endpoint returns days in chronological order, so the last entry is
// the most recent one.
func Last24h(days []model.MarketDaySnapshot) DayFigures {
	if len(days) == 0 {
		return DayFigures{
			TopSpotTokens:    []Ranked{},
			TopFuturesTokens: []Ranked{},
		}
	}

	latest := days[len(days)-1]
	spotTokens := newAccumulator()
	futTokens := newAccumulator()

	var spotTotal, futTotal float64
	eachMarket(latest, func(symbol string, volume float64, cat Category) {
		switch cat {
		case CategorySpot:
			spotTotal += volume
			spotTokens.add(BaseToken(symbol), volume)
		case CategoryFutures:
			futTotal += volume
			futTokens.add(BaseToken(symbol), volume)
		}
	})

	return DayFigures{
		Timestamp:        latest.Timestamp,
		SpotVolume:       spotTotal,
		FuturesVolume:    futTotal,
		TotalVolume:      spotTotal + futTotal,
		TopSpotTokens:    spotTokens.top(topTokens),
		TopFuturesTokens: futTokens.top(topTokens),
	}
}

// eachMarket walks one day's markets in a deterministic order, parsing the
// volume string and skipping entries that do not classify or do not parse.
func eachMarket(day model.MarketDaySnapshot, fn func(symbol string, volume float64, cat Category)) {
	symbols := make([]string, 0, len(day.Markets))
	for symbol := range day.Markets {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	for _, symbol := range symbols {
		cat := Classify(symbol)
		if cat == CategoryNone {
			continue
		}
		volume, err := strconv.ParseFloat(day.Markets[symbol], 64)
		if err != nil {
			continue
		}
		fn(symbol, volume, cat)
	}
}
