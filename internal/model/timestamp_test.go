package model

import (
	"encoding/json"
	"testing"
)

func TestNormalizeEpochSeconds(t *testing.T) {
	got := NormalizeEpoch(1_700_000_000)
	if got != 1_700_000_000_000 {
		t.Fatalf("NormalizeEpoch(seconds) = %d, want 1700000000000", got)
	}
}

func TestNormalizeEpochMillisUntouched(t *testing.T) {
	got := NormalizeEpoch(1_700_000_000_123)
	if got != 1_700_000_000_123 {
		t.Fatalf("NormalizeEpoch(millis) = %d, want value unchanged", got)
	}
}

func TestEpochMillisUnmarshal(t *testing.T) {
	cases := map[string]EpochMillis{
		`1700000000`:     1_700_000_000_000,
		`1700000000123`:  1_700_000_000_123,
		`"1700000000"`:   1_700_000_000_000,
		`1700000000.5`:   1_700_000_000_000,
		`null`:           0,
		`"not-a-number"`: 0,
		`""`:             0,
		`0`:              0,
	}

	for input, want := range cases {
		var ts EpochMillis
		if err := json.Unmarshal([]byte(input), &ts); err != nil {
			t.Fatalf("unmarshal %q returned error: %v", input, err)
		}
		if ts != want {
			t.Fatalf("unmarshal %q = %d, want %d", input, ts, want)
		}
	}
}

func TestEpochMillisDate(t *testing.T) {
	// 2023-11-14T22:13:20Z
	ts := EpochMillis(1_700_000_000_000)
	if got := ts.Date(); got != "2023-11-14" {
		t.Fatalf("Date() = %q, want 2023-11-14", got)
	}
}

func TestFloatUnmarshalLenient(t *testing.T) {
	cases := map[string]float64{
		`"123.45"`: 123.45,
		`123.45`:   123.45,
		`"-1e3"`:   -1000,
		`""`:       0,
		`"abc"`:    0,
		`null`:     0,
	}

	for input, want := range cases {
		var f Float
		if err := json.Unmarshal([]byte(input), &f); err != nil {
			t.Fatalf("unmarshal %q returned error: %v", input, err)
		}
		if float64(f) != want {
			t.Fatalf("unmarshal %q = %v, want %v", input, f, want)
		}
	}
}

func TestClosedPositionHolding(t *testing.T) {
	p := ClosedPosition{
		CreatedAt: EpochMillis(1_700_000_000_000),
		UpdatedAt: EpochMillis(1_700_000_000_000 + 90*60_000),
	}
	if got := p.HoldingMinutes(); got != 90 {
		t.Fatalf("HoldingMinutes() = %v, want 90", got)
	}
	if got := p.HoldingHours(); got != 1.5 {
		t.Fatalf("HoldingHours() = %v, want 1.5", got)
	}
}

func TestClosedPositionSymbolFallback(t *testing.T) {
	p := ClosedPosition{SymbolID: 42}
	if got := p.Symbol(); got != "Symbol-42" {
		t.Fatalf("Symbol() = %q, want Symbol-42", got)
	}
	p.SymbolName = "BTC-USD"
	if got := p.Symbol(); got != "BTC-USD" {
		t.Fatalf("Symbol() = %q, want BTC-USD", got)
	}
}
