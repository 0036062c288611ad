// Package service assembles the dashboard views from venue data and the
// calculation packages. Fetch failures degrade the affected field to its zero
// value; aggregate views never fail outright.
package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	"perpdash/internal/aggregate"
	"perpdash/internal/analytics"
	"perpdash/internal/archetype"
	"perpdash/internal/balance"
	"perpdash/internal/cache"
	"perpdash/internal/leaderboard"
	"perpdash/internal/metrics"
	"perpdash/internal/model"
	"perpdash/internal/paginate"
	"perpdash/internal/spot"
	"perpdash/internal/symbols"
	"perpdash/internal/venue"
	"perpdash/logger"
)

// volumeWindowDays is how far back the volume overview reaches.
const volumeWindowDays = 30

// Options carries the tunables the service reads from config.
type Options struct {
	MaxPages  int
	VolumeTTL time.Duration
	PricesTTL time.Duration
	// Roster is the account id list the leaderboard ranks.
	Roster []int64
}

// Service owns the venue client, the shared caches and the symbol mapper.
type Service struct {
	client      *venue.Client
	mapper      *symbols.Mapper
	volumeCache *cache.Store[string, []model.MarketDaySnapshot]
	pricesCache *cache.Store[string, []model.MarkPrice]
	maxPages    int
	roster      []int64
	log         *logger.Log
	now         func() time.Time
}

// New builds a service around the given venue client.
func New(client *venue.Client, mapper *symbols.Mapper, opts Options) *Service {
	if opts.MaxPages <= 0 {
		opts.MaxPages = paginate.DefaultMaxPages
	}
	return &Service{
		client:      client,
		mapper:      mapper,
		volumeCache: cache.New[string, []model.MarketDaySnapshot](opts.VolumeTTL),
		pricesCache: cache.New[string, []model.MarkPrice](opts.PricesTTL),
		maxPages:    opts.MaxPages,
		roster:      opts.Roster,
		log:         logger.GetLogger(),
		now:         time.Now,
	}
}

// TraderView is the full analytics payload for one account.
type TraderView struct {
	AccountID int64                   `json:"account_id"`
	Balance   float64                 `json:"balance"`
	Report    analytics.Report        `json:"report"`
	Stats     analytics.TradeStats    `json:"stats"`
	Calendar  []analytics.DayBucket   `json:"calendar"`
	Series    []analytics.SeriesPoint `json:"series"`
	Trades    int                     `json:"trades"`
}

// TraderView fetches the ledger overview, the position history and the
// account record concurrently, then derives the analytics payload. Any
// sub-fetch failure leaves its field zero.
func (s *Service) TraderView(ctx context.Context, accountID int64) TraderView {
	var (
		wg       sync.WaitGroup
		overview model.PnLOverview
		history  []model.ClosedPosition
		details  model.AccountDetails
	)
	log := s.log.WithComponent("service").WithFields(logger.Fields{"account_id": accountID})

	wg.Add(3)
	go func() {
		defer wg.Done()
		ov, err := s.client.PnLOverview(ctx, accountID)
		if err != nil {
			log.WithError(err).Warn("pnl overview unavailable, using zeros")
			return
		}
		overview = ov
	}()
	go func() {
		defer wg.Done()
		pages := paginate.Walk(ctx, s.client.PositionsPage(accountID), s.maxPages, s.log, func(items []model.ClosedPosition) {
			history = append(history, items...)
		})
		metrics.ObservePages("/api/v1/perps/positions", pages)
		logger.LogDataFlowEntry(log, "venue", "analytics", len(history), "positions")
	}()
	go func() {
		defer wg.Done()
		d, err := s.client.AccountDetails(ctx, accountID)
		if err != nil {
			log.WithError(err).Warn("account details unavailable, using zeros")
			return
		}
		details = d
	}()
	wg.Wait()

	s.mapper.Resolve(ctx, history)

	return TraderView{
		AccountID: accountID,
		Balance:   float64(details.Balance),
		Report:    analytics.Compute(history, float64(overview.CumulativeQuoteVolume), float64(overview.CumulativePnL)),
		Stats:     analytics.Statistics(history),
		Calendar:  analytics.DailyPnL(history),
		Series:    analytics.Series(history),
		Trades:    len(history),
	}
}

// ArchetypeView classifies the account's trading behaviour.
func (s *Service) ArchetypeView(ctx context.Context, accountID int64) archetype.Profile {
	history := paginate.Collect(ctx, s.client.PositionsPage(accountID), s.maxPages, s.log)
	s.mapper.Resolve(ctx, history)

	var bal float64
	if details, err := s.client.AccountDetails(ctx, accountID); err == nil {
		bal = float64(details.Balance)
	} else {
		s.log.WithComponent("service").WithError(err).Warn("account details unavailable for archetype, risk ratios zeroed")
	}
	return archetype.Classify(archetype.ComputeMetrics(history, bal))
}

// SpotSummary accumulates spot fee and volume for the account.
func (s *Service) SpotSummary(ctx context.Context, accountID int64) spot.Result {
	res := spot.Accumulate(ctx, strconv.FormatInt(accountID, 10), s.client.SpotTradesPage(accountID), s.maxPages, s.log)
	metrics.ObservePages("/api/v1/spot/trades", res.Pages)
	return res
}

// BalanceSheet values the account's spot holdings against cached mark prices.
func (s *Service) BalanceSheet(ctx context.Context, accountID int64) balance.Valuation {
	log := s.log.WithComponent("service").WithFields(logger.Fields{"account_id": accountID})

	balances, err := s.client.BalanceList(ctx, accountID)
	if err != nil {
		log.WithError(err).Warn("balance list unavailable, returning empty valuation")
		return balance.Valuation{}
	}

	marks, ok := s.pricesCache.Get("marks")
	if ok {
		metrics.CacheHit("prices")
	} else {
		metrics.CacheMiss("prices")
		marks, err = s.client.MarkPrices(ctx)
		if err != nil {
			log.WithError(err).Warn("mark prices unavailable, holdings valued at zero")
			marks = nil
		} else {
			s.pricesCache.Set("marks", marks)
		}
	}
	return balance.Value(balances, marks)
}

// volumeDays fetches the volume snapshot window, serving repeats from the
// TTL cache.
func (s *Service) volumeDays(ctx context.Context) ([]model.MarketDaySnapshot, error) {
	end := s.now().UTC()
	start := end.AddDate(0, 0, -volumeWindowDays)
	key := start.Format("2006-01-02") + "/" + end.Format("2006-01-02")

	if days, ok := s.volumeCache.Get(key); ok {
		metrics.CacheHit("volume")
		return days, nil
	}
	metrics.CacheMiss("volume")

	days, err := s.client.VolumeByDay(ctx, start.Format("2006-01-02"), end.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	s.volumeCache.Set(key, days)
	logger.LogDataFlowEntry(s.log.WithComponent("service"), "venue", "volume_cache", len(days), "volume_snapshots")
	return days, nil
}

// VolumeSummary aggregates the windowed per-day snapshots into exchange-wide
// totals and rankings. Upstream failure degrades to the empty summary.
func (s *Service) VolumeSummary(ctx context.Context) aggregate.Summary {
	days, err := s.volumeDays(ctx)
	if err != nil {
		s.log.WithComponent("service").WithError(err).Warn("volume snapshots unavailable, returning empty summary")
		return aggregate.Summary{}
	}
	return aggregate.Summarize(days)
}

// LeaderboardView ranks the configured roster by ledger PnL. Roster entries
// whose sub-fetches fail rank with zero figures; an unconfigured roster
// yields the empty board.
func (s *Service) LeaderboardView(ctx context.Context) leaderboard.Board {
	if len(s.roster) == 0 {
		return leaderboard.Board{}
	}

	summaries := make([]model.TraderSummary, len(s.roster))
	var wg sync.WaitGroup
	for i, id := range s.roster {
		wg.Add(1)
		go func(i int, id int64) {
			defer wg.Done()
			summaries[i] = model.TraderSummary{ID: id}
			if details, err := s.client.AccountDetails(ctx, id); err == nil {
				summaries[i].Address = details.Address
			}
			ov, err := s.client.PnLOverview(ctx, id)
			if err != nil {
				s.log.WithComponent("service").WithFields(logger.Fields{
					"account_id": id,
				}).WithError(err).Warn("roster pnl unavailable, ranking with zeros")
				return
			}
			summaries[i].PnL = ov.CumulativePnL
			summaries[i].Volume = ov.CumulativeQuoteVolume
		}(i, id)
	}
	wg.Wait()

	return leaderboard.Build(summaries)
}

// Volume24h extracts the most recent day's figures from the snapshot window.
func (s *Service) Volume24h(ctx context.Context) aggregate.DayFigures {
	days, err := s.volumeDays(ctx)
	if err != nil {
		s.log.WithComponent("service").WithError(err).Warn("volume snapshots unavailable, returning empty figures")
		return aggregate.DayFigures{}
	}
	return aggregate.Last24h(days)
}
