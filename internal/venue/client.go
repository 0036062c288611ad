// Package venue is the REST client for the exchange's two public hosts: the
// data host (positions, trades, dashboard volume, PnL ledger) and the gateway
// host (balances, mark prices, symbol listing). All calls are read-only,
// context-aware and rate limited.
package venue

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"perpdash/internal/metrics"
	"perpdash/internal/model"
	"perpdash/logger"
)

// Options configures a Client. Zero fields fall back to defaults.
type Options struct {
	DataBaseURL    string
	GatewayBaseURL string
	UserAgent      string
	Timeout        time.Duration
	RequestsPerSec float64
	Burst          int
	PageLimit      int
}

const (
	defaultDataBaseURL    = "https://mainnet-data.sodex.dev"
	defaultGatewayBaseURL = "https://mainnet-gw.sodex.dev"
	defaultUserAgent      = "perpdash/1.0"
	defaultTimeout        = 15 * time.Second
	defaultPageLimit      = 1000
)

// userAgentTransport wraps an existing RoundTripper and sets a custom
// User-Agent header on all outgoing requests.
type userAgentTransport struct {
	agent string
	base  http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.agent != "" {
		req.Header.Set("User-Agent", t.agent)
	}
	if t.base != nil {
		return t.base.RoundTrip(req)
	}
	return http.DefaultTransport.RoundTrip(req)
}

// Client talks to the venue hosts.
type Client struct {
	dataBase    string
	gatewayBase string
	pageLimit   int
	httpClient  *http.Client
	limiter     *rate.Limiter
	log         *logger.Entry
}

// NewClient builds a client from opts.
func NewClient(opts Options) *Client {
	if opts.DataBaseURL == "" {
		opts.DataBaseURL = defaultDataBaseURL
	}
	if opts.GatewayBaseURL == "" {
		opts.GatewayBaseURL = defaultGatewayBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.RequestsPerSec <= 0 {
		opts.RequestsPerSec = 5
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	if opts.PageLimit <= 0 {
		opts.PageLimit = defaultPageLimit
	}

	return &Client{
		dataBase:    opts.DataBaseURL,
		gatewayBase: opts.GatewayBaseURL,
		pageLimit:   opts.PageLimit,
		httpClient: &http.Client{
			Timeout:   opts.Timeout,
			Transport: userAgentTransport{agent: opts.UserAgent},
		},
		limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSec), opts.Burst),
		log:     logger.GetLogger().WithComponent("venue_client"),
	}
}

// getJSON performs one rate-limited GET against base+path and decodes the
// body into out.
func (c *Client) getJSON(ctx context.Context, base, path string, query url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	u := base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveUpstream(path, 0, time.Since(start).Seconds())
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()
	metrics.ObserveUpstream(path, resp.StatusCode, time.Since(start).Seconds())

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("get %s: unexpected status %d", path, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	logger.IncrementVenueFetch(path, len(body))
	logger.LogPerformanceEntry(c.log, "venue_client", path, time.Since(start), nil)

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// pageEnvelope is the venue's cursor-paginated listing shape.
type pageEnvelope[T any] struct {
	Data []T `json:"data"`
	Meta struct {
		NextCursor string `json:"next_cursor"`
	} `json:"meta"`
}

// PositionsPage fetches one page of closed positions for the account. It
// satisfies paginate.PageFunc.
func (c *Client) PositionsPage(accountID int64) func(ctx context.Context, cursor string) ([]model.ClosedPosition, string, error) {
	return func(ctx context.Context, cursor string) ([]model.ClosedPosition, string, error) {
		q := url.Values{
			"account_id": {strconv.FormatInt(accountID, 10)},
			"limit":      {strconv.Itoa(c.pageLimit)},
		}
		if cursor != "" {
			q.Set("cursor", cursor)
		}
		var env pageEnvelope[model.ClosedPosition]
		if err := c.getJSON(ctx, c.dataBase, "/api/v1/perps/positions", q, &env); err != nil {
			return nil, "", err
		}
		return env.Data, env.Meta.NextCursor, nil
	}
}

// SpotTradesPage fetches one page of spot trade fills for the account. It
// satisfies paginate.PageFunc.
func (c *Client) SpotTradesPage(accountID int64) func(ctx context.Context, cursor string) ([]model.SpotTrade, string, error) {
	return func(ctx context.Context, cursor string) ([]model.SpotTrade, string, error) {
		q := url.Values{
			"account_id": {strconv.FormatInt(accountID, 10)},
			"limit":      {strconv.Itoa(c.pageLimit)},
		}
		if cursor != "" {
			q.Set("cursor", cursor)
		}
		var env pageEnvelope[model.SpotTrade]
		if err := c.getJSON(ctx, c.dataBase, "/api/v1/spot/trades", q, &env); err != nil {
			return nil, "", err
		}
		return env.Data, env.Meta.NextCursor, nil
	}
}

// VolumeByDay fetches the per-day per-market volume snapshots for the given
// date range (YYYY-MM-DD, inclusive). The endpoint wraps the day list in a
// double data envelope.
func (c *Client) VolumeByDay(ctx context.Context, startDate, endDate string) ([]model.MarketDaySnapshot, error) {
	q := url.Values{
		"start_date":  {startDate},
		"end_date":    {endDate},
		"market_type": {"all"},
	}
	var env struct {
		Data struct {
			Data []model.MarketDaySnapshot `json:"data"`
		} `json:"data"`
	}
	if err := c.getJSON(ctx, c.dataBase, "/api/v1/dashboard/volume", q, &env); err != nil {
		return nil, err
	}
	return env.Data.Data, nil
}

// PnLOverview fetches the venue's authoritative cumulative PnL and quote
// volume for the account.
func (c *Client) PnLOverview(ctx context.Context, accountID int64) (model.PnLOverview, error) {
	q := url.Values{"account_id": {strconv.FormatInt(accountID, 10)}}
	var env struct {
		Data model.PnLOverview `json:"data"`
	}
	if err := c.getJSON(ctx, c.dataBase, "/api/v1/perps/pnl/overview", q, &env); err != nil {
		return model.PnLOverview{}, err
	}
	return env.Data, nil
}

// AccountDetails fetches the account record, including its equity balance.
func (c *Client) AccountDetails(ctx context.Context, accountID int64) (model.AccountDetails, error) {
	var env struct {
		Data model.AccountDetails `json:"data"`
	}
	path := "/api/v1/accounts/" + strconv.FormatInt(accountID, 10)
	if err := c.getJSON(ctx, c.dataBase, path, nil, &env); err != nil {
		return model.AccountDetails{}, err
	}
	return env.Data, nil
}

// BalanceList fetches the account's spot balances from the gateway host.
func (c *Client) BalanceList(ctx context.Context, accountID int64) ([]model.SpotBalance, error) {
	q := url.Values{"account_id": {strconv.FormatInt(accountID, 10)}}
	var env struct {
		Data []model.SpotBalance `json:"data"`
	}
	if err := c.getJSON(ctx, c.gatewayBase, "/pro/p/user/balance/list", q, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// MarkPrices fetches the public mark-price table from the gateway host.
func (c *Client) MarkPrices(ctx context.Context) ([]model.MarkPrice, error) {
	var prices []model.MarkPrice
	if err := c.getJSON(ctx, c.gatewayBase, "/pro/p/mark-price", nil, &prices); err != nil {
		return nil, err
	}
	return prices, nil
}

// Symbols fetches the id to display-name symbol listing from the gateway
// host.
func (c *Client) Symbols(ctx context.Context) ([]model.Symbol, error) {
	var env struct {
		Data []model.Symbol `json:"data"`
	}
	if err := c.getJSON(ctx, c.gatewayBase, "/bolt/symbols", nil, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}
