package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"perpdash/config"
	"perpdash/internal/service"
	"perpdash/internal/symbols"
	"perpdash/internal/venue"
	"perpdash/logger"
)

// fakeVenue answers every dashboard fetch with a minimal valid payload.
func fakeVenue() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/perps/positions":
			w.Write([]byte(`{"data":[{"position_id":"p1","symbol_name":"BTC-USD","position_side":2,"avg_entry_price":"100","avg_close_price":"110","cum_closed_size":"1","cum_trading_fee":"2","realized_pnl":"10","leverage":"2","created_at":1700000000,"updated_at":1700003600}],"meta":{"next_cursor":""}}`))
		case "/api/v1/perps/pnl/overview":
			w.Write([]byte(`{"data":{"cumulative_quote_volume":"500","cumulative_pnl":"10"}}`))
		case "/api/v1/spot/trades":
			w.Write([]byte(`{"data":[{"price":"2","quantity":"10","fee":"0","side":1}],"meta":{"next_cursor":""}}`))
		case "/api/v1/dashboard/volume":
			w.Write([]byte(`{"data":{"data":[{"timestamp":1700000000,"markets":{"BTC/USDC":"100","ETH-USD":"200"}}]}}`))
		case "/pro/p/user/balance/list":
			w.Write([]byte(`{"data":[{"coin":"USDC","balance":"100"}]}`))
		case "/pro/p/mark-price":
			w.Write([]byte(`[]`))
		case "/bolt/symbols":
			w.Write([]byte(`{"data":[]}`))
		default:
			// Account details and anything else unmodelled.
			w.Write([]byte(`{"data":{"id":42,"address":"0xabc","balance":"1000"}}`))
		}
	}))
}

func testRouter(t *testing.T, venueURL string) http.Handler {
	t.Helper()
	client := venue.NewClient(venue.Options{
		DataBaseURL:    venueURL,
		GatewayBaseURL: venueURL,
		RequestsPerSec: 1000,
		Burst:          100,
	})
	mapper := symbols.NewMapper(client.Symbols, time.Hour, logger.Logger().WithComponent("server_test"))
	svc := service.New(client, mapper, service.Options{})

	srv := New(config.ServerConfig{Address: ":0"}, svc, logger.GetLogger())
	router, err := srv.buildRouter()
	if err != nil {
		t.Fatalf("buildRouter: %v", err)
	}
	return router
}

func getJSON(t *testing.T, router http.Handler, path string, out any) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if out != nil && rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
	}
	return rec
}

func TestVolumeEndpoints(t *testing.T) {
	upstream := fakeVenue()
	defer upstream.Close()
	router := testRouter(t, upstream.URL)

	var sum struct {
		SpotVolume    float64 `json:"spot_volume"`
		FuturesVolume float64 `json:"futures_volume"`
	}
	rec := getJSON(t, router, "/api/v1/volume/summary", &sum)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if sum.SpotVolume != 100 || sum.FuturesVolume != 200 {
		t.Fatalf("summary = %+v", sum)
	}

	rec = getJSON(t, router, "/api/v1/volume/24h", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("24h status = %d", rec.Code)
	}

	var pairs struct {
		SpotMarkets []struct {
			Name string `json:"name"`
		} `json:"spot_markets"`
	}
	getJSON(t, router, "/api/v1/volume/top-pairs", &pairs)
	if len(pairs.SpotMarkets) != 1 || pairs.SpotMarkets[0].Name != "BTC/USDC" {
		t.Fatalf("top pairs = %+v", pairs)
	}
}

func TestAccountEndpoints(t *testing.T) {
	upstream := fakeVenue()
	defer upstream.Close()
	router := testRouter(t, upstream.URL)

	var analytics struct {
		AccountID int64 `json:"account_id"`
		Trades    int   `json:"trades"`
		Report    struct {
			TotalPnL float64 `json:"total_pnl"`
		} `json:"report"`
	}
	rec := getJSON(t, router, "/api/v1/accounts/42/analytics", &analytics)
	if rec.Code != http.StatusOK {
		t.Fatalf("analytics status = %d", rec.Code)
	}
	if analytics.AccountID != 42 || analytics.Trades != 1 || analytics.Report.TotalPnL != 10 {
		t.Fatalf("analytics = %+v", analytics)
	}

	var arch struct {
		Archetype string `json:"archetype"`
	}
	getJSON(t, router, "/api/v1/accounts/42/archetype", &arch)
	if arch.Archetype == "" {
		t.Fatal("empty archetype")
	}

	var spotRes struct {
		IsTeam bool `json:"is_team"`
	}
	getJSON(t, router, "/api/v1/accounts/42/spot", &spotRes)
	if !spotRes.IsTeam {
		t.Fatal("zero-fee history must flag is_team")
	}

	var val struct {
		TotalUSD float64 `json:"total_usd"`
	}
	getJSON(t, router, "/api/v1/accounts/42/balance", &val)
	if val.TotalUSD != 100 {
		t.Fatalf("balance total = %v, want 100 (stablecoin at 1)", val.TotalUSD)
	}
}

func TestInvalidAccountIDIs400(t *testing.T) {
	upstream := fakeVenue()
	defer upstream.Close()
	router := testRouter(t, upstream.URL)

	for _, path := range []string{
		"/api/v1/accounts/abc/analytics",
		"/api/v1/accounts/-1/spot",
		"/api/v1/accounts/0/balance",
	} {
		rec := getJSON(t, router, path, nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s status = %d, want 400", path, rec.Code)
		}
	}
}

func TestUpstreamFailureDegradesNot5xx(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer upstream.Close()
	router := testRouter(t, upstream.URL)

	for _, path := range []string{
		"/api/v1/volume/summary",
		"/api/v1/accounts/42/analytics",
		"/api/v1/accounts/42/balance",
	} {
		rec := getJSON(t, router, path, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s status = %d, want 200 with degraded payload", path, rec.Code)
		}
	}
}

func TestHealthz(t *testing.T) {
	upstream := fakeVenue()
	defer upstream.Close()
	router := testRouter(t, upstream.URL)

	var health struct {
		Status string `json:"status"`
	}
	rec := getJSON(t, router, "/healthz", &health)
	if rec.Code != http.StatusOK || health.Status != "ok" {
		t.Fatalf("healthz = %d %+v", rec.Code, health)
	}
}

func TestServerTimeoutsApplied(t *testing.T) {
	srv := New(config.ServerConfig{
		Address:      "8080",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}, nil, logger.GetLogger())

	hs := srv.newHTTPServer(nil)
	if hs.Addr != ":8080" {
		t.Fatalf("addr = %q, want :8080", hs.Addr)
	}
	if hs.ReadTimeout != 15*time.Second || hs.WriteTimeout != 30*time.Second {
		t.Fatalf("timeouts = %v/%v, want 15s/30s", hs.ReadTimeout, hs.WriteTimeout)
	}
}

func TestRequestIDHeader(t *testing.T) {
	upstream := fakeVenue()
	defer upstream.Close()
	router := testRouter(t, upstream.URL)

	rec := getJSON(t, router, "/healthz", nil)
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatal("missing X-Request-Id header")
	}
}
