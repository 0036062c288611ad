// Package paginate walks the venue's cursor-paginated listings. The first
// request carries no cursor; every later request passes the cursor returned by
// the previous page. A hard page cap bounds runaway cursors.
package paginate

import (
	"context"

	"perpdash/logger"
)

// DefaultMaxPages is the safety bound on pages consumed per walk. Hitting the
// cap returns the partial result, it is not a failure.
const DefaultMaxPages = 10

// PageFunc fetches one page for the given cursor. The empty cursor requests
// the first page. An empty next cursor ends the walk.
type PageFunc[T any] func(ctx context.Context, cursor string) (items []T, next string, err error)

// Walk fetches pages until the cursor runs out or maxPages is reached and
// hands each page to visit in order. It returns the number of pages fetched.
//
// An error on the first page is treated as "no data"; an error on a later page
// truncates the walk. Both degrade to a partial (possibly empty) result so a
// slow or flaky upstream never fails the whole request.
func Walk[T any](ctx context.Context, fetch PageFunc[T], maxPages int, log *logger.Log, visit func(items []T)) int {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	if log == nil {
		log = logger.GetLogger()
	}

	cursor := ""
	pages := 0
	for pages < maxPages {
		items, next, err := fetch(ctx, cursor)
		if err != nil {
			if pages > 0 {
				log.WithComponent("paginate").WithError(err).WithFields(logger.Fields{
					"page": pages + 1,
				}).Warn("page fetch failed, returning partial result")
			}
			return pages
		}
		pages++

		if len(items) > 0 {
			visit(items)
		}
		if next == "" {
			return pages
		}
		cursor = next
	}

	log.WithComponent("paginate").WithFields(logger.Fields{
		"pages": pages,
	}).Warn("page cap reached, result truncated")
	return pages
}

// Collect concatenates every page into one slice, preserving page order and
// within-page order.
func Collect[T any](ctx context.Context, fetch PageFunc[T], maxPages int, log *logger.Log) []T {
	var out []T
	Walk(ctx, fetch, maxPages, log, func(items []T) {
		out = append(out, items...)
	})
	return out
}
