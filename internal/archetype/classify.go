package archetype

import "math"

// Profile is the classifier output: the matched archetype plus four bounded
// sub-scores derived from the same metrics.
type Profile struct {
	Archetype   string  `json:"archetype"`
	Description string  `json:"description"`
	Skill       float64 `json:"skill"`
	Discipline  float64 `json:"discipline"`
	Efficiency  float64 `json:"efficiency"`
	Risk        float64 `json:"risk"`
	Metrics     Metrics `json:"metrics"`
}

// rule is one row of the decision table.
type rule struct {
	name        string
	description string
	match       func(m Metrics) bool
}

// rules is evaluated in order; the first matching row wins. Ordering is part
// of the contract: a history that satisfies both the Alpha Trader and the
// Scalper rows is an Alpha Trader.
var rules = []rule{
	{
		name:        "Alpha Trader",
		description: "Consistently profitable with controlled risk and fees",
		match: func(m Metrics) bool {
			return m.TotalPnL > 0 &&
				m.WinRate >= 0.60 &&
				m.FeeBurn <= 0.30 &&
				m.AvgHoldMinutes >= 30 &&
				m.RiskScore <= 0.25
		},
	},
	{
		name:        "Scalper",
		description: "High-frequency short holds with moderate fee burn",
		match: func(m Metrics) bool {
			return m.AvgHoldMinutes <= 20 &&
				m.TradesPerDay >= 10 &&
				m.FeeBurn >= 0.30 && m.FeeBurn <= 0.80 &&
				m.WinRate >= 0.45
		},
	},
	{
		name:        "Overtrader",
		description: "Excessive churn where fees eat the results",
		match: func(m Metrics) bool {
			return m.TradesPerDay >= 15 &&
				m.AvgHoldMinutes <= 15 &&
				m.FeeBurn >= 1.0 &&
				m.TotalFees >= m.TotalPnL
		},
	},
	{
		name:        "Swing Trader",
		description: "Few, long, meaningful positions",
		match: func(m Metrics) bool {
			return m.AvgHoldMinutes >= 240 &&
				m.TradesPerDay <= 3 &&
				math.Abs(m.AvgPnL) >= 0.005 &&
				m.WinRate >= 0.50
		},
	},
	{
		name:        "Gambler",
		description: "Oversized positions, deep drawdowns, poor hit rate",
		match: func(m Metrics) bool {
			return m.RiskScore >= 0.30 &&
				m.MaxDrawdown >= 0.30 &&
				m.WinRate <= 0.45 &&
				m.FeeBurn >= 0.60
		},
	},
	{
		name:        "Bot / Farming",
		description: "Mechanically uniform sizing and timing at high frequency",
		match: func(m Metrics) bool {
			return m.SizeVariance < 0.05 &&
				m.TimeVariance < 0.10 &&
				m.TradesPerDay >= 20 &&
				math.Abs(m.TotalPnL) <= 0.01*m.TotalVolume
		},
	},
}

const (
	unclassifiedName        = "Unclassified"
	unclassifiedDescription = "No dominant behavioural pattern"
)

// Classify runs the decision table over the metrics and attaches sub-scores.
func Classify(m Metrics) Profile {
	p := Profile{
		Archetype:   unclassifiedName,
		Description: unclassifiedDescription,
		Metrics:     m,
	}
	for _, r := range rules {
		if r.match(m) {
			p.Archetype = r.name
			p.Description = r.description
			break
		}
	}

	p.Skill = math.Min(1, m.WinRate*(1-math.Min(1, m.FeeBurn)))
	p.Discipline = math.Min(1, 1-m.DirectionFlip)
	p.Efficiency = m.PnLToVolume
	p.Risk = m.RiskScore
	return p
}
