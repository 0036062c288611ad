// Package symbols resolves numeric venue symbol ids to display names. The
// venue omits symbol_name from older history records, so the mapper fetches
// the symbol listing once per TTL and answers lookups from memory.
package symbols

import (
	"context"
	"time"

	"perpdash/internal/cache"
	"perpdash/internal/model"
	"perpdash/logger"
)

// listKey is the single cache key under which the full id->name table lives.
const listKey = "symbols"

// ListFunc fetches the full venue symbol listing.
type ListFunc func(ctx context.Context) ([]model.Symbol, error)

// Mapper answers id->name lookups against a cached venue symbol listing.
type Mapper struct {
	fetch ListFunc
	store *cache.Store[string, map[int64]string]
	log   *logger.Entry
}

// NewMapper builds a mapper that refreshes its table from fetch at most once
// per ttl.
func NewMapper(fetch ListFunc, ttl time.Duration, log *logger.Entry) *Mapper {
	return NewMapperWithClock(fetch, ttl, time.Now, log)
}

// NewMapperWithClock is NewMapper with an explicit clock, for tests.
func NewMapperWithClock(fetch ListFunc, ttl time.Duration, now cache.Clock, log *logger.Entry) *Mapper {
	return &Mapper{
		fetch: fetch,
		store: cache.NewWithClock[string, map[int64]string](ttl, now),
		log:   log,
	}
}

// Name resolves id to its display name, falling back to a synthetic
// "Symbol-<id>" placeholder when the listing is unavailable or lacks the id.
// A fetch failure is logged and degrades to the placeholder; it never fails
// the caller.
func (m *Mapper) Name(ctx context.Context, id int64) string {
	table, ok := m.store.Get(listKey)
	if !ok {
		listing, err := m.fetch(ctx)
		if err != nil {
			m.log.WithError(err).Warn("symbol listing fetch failed, using placeholder names")
			return model.SyntheticSymbol(id)
		}
		table = make(map[int64]string, len(listing))
		for _, s := range listing {
			table[s.ID] = s.Name
		}
		m.store.Set(listKey, table)
	}
	if name, found := table[id]; found && name != "" {
		return name
	}
	return model.SyntheticSymbol(id)
}

// Resolve fills in SymbolName on every history record that lacks one.
func (m *Mapper) Resolve(ctx context.Context, history []model.ClosedPosition) {
	for i := range history {
		if history[i].SymbolName == "" {
			history[i].SymbolName = m.Name(ctx, history[i].SymbolID)
		}
	}
}
